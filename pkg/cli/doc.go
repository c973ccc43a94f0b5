// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cli implements the command-line interface for the bondctl tool.
//
// # Commands
//
// collect - Sample the local node's bonds:
//
//	bondctl collect [--bond NAME] [--output FILE|cm://NS/NAME] [--format json|yaml|table]
//
// Enumerates the node's bonding devices, reads the rx_cache counter
// family of every member interface via ethtool, and emits a SampleSet
// document. This is what runs inside the per-node collector Jobs.
//
// report - Analyze bond balance across the fleet:
//
//	bondctl report [--node-selector SELECTOR] [--samples FILE ...] [--local]
//
// Fans out collector Jobs across the cluster's nodes, aggregates the
// returned samples per bond, and reports which bonds are imbalanced:
// one interface dominating the rx_cache_reuse total, or busy/full
// counters heavily skewed between members. With --samples the cluster
// is not touched and previously collected SampleSet files are analyzed
// instead; with --local only the current node's bonds are sampled and
// analyzed.
//
// # Global Flags
//
//	--debug        Enable debug logging
//	--log-level    Log level: debug, info, warn, error (default: info)
//	--help, -h     Show command help
//	--version, -v  Show version information
//
// # Environment Variables
//
//	LOG_LEVEL             Set logging verbosity (debug, info, warn, error)
//	KUBECONFIG            Path to the kubeconfig file
//	BONDCTL_NAMESPACE     Namespace for the collector Jobs
//	BONDCTL_IMAGE         Container image for the collector Jobs
//	NODE_NAME             Override node name during collection
//
// # Exit Codes
//
//	0  Success
//	1  General error (invalid arguments, execution failure)
package cli
