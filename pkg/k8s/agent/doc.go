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

// Package agent deploys the per-node collector Jobs used by the fleet
// report.
//
// For every target node the Deployer creates a Job pinned to that node
// via spec.nodeName. The Job runs "bondctl collect" in the host network
// namespace with /sys mounted read-only, and writes the resulting
// SampleSet to a ConfigMap in the collector namespace. The report
// command then reads the ConfigMaps back and deletes the Jobs and
// ConfigMaps unless cleanup is disabled.
//
// Job and ConfigMap names are scoped by a per-run ID, so two report
// invocations against the same cluster do not interfere.
//
// Deployment flow:
//
//	d := agent.NewDeployer(clientset, agent.Config{...})
//	if err := d.EnsurePrerequisites(ctx); err != nil { ... }
//	err := d.CollectNode(ctx, node, timeout)
//	set, err := serializer.ReadConfigMap[sample.Set](ctx, kc, ns, d.ConfigMapName(node))
//	_ = d.Cleanup(ctx, nodes, agent.CleanupOptions{Enabled: true})
package agent
