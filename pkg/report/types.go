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

// Package report assembles the aggregation store and analyzer verdicts
// into the immutable result tree handed to rendering. The JSON shape of
// Model is a published contract; field names are not incidental.
package report

// Model is the root of the report tree: nodes ordered by name, bonds
// ordered by name within each node, interfaces ordered by name within
// each bond. Built once per run and never mutated afterward.
type Model struct {
	Nodes []NodeRecord `json:"nodes" yaml:"nodes"`
}

// NodeRecord holds the bonds observed on one node.
type NodeRecord struct {
	Name  string       `json:"name" yaml:"name"`
	Bonds []BondRecord `json:"bonds" yaml:"bonds"`
}

// BondRecord holds one bond's member interfaces and its imbalance verdict.
type BondRecord struct {
	Name             string            `json:"name" yaml:"name"`
	Imbalance        bool              `json:"imbalance" yaml:"imbalance"`
	ImbalanceReasons []string          `json:"imbalanceReasons" yaml:"imbalanceReasons"`
	TopReuse         TopReuse          `json:"topReuse" yaml:"topReuse"`
	BusySkewRatio    uint64            `json:"busySkewRatio" yaml:"busySkewRatio"`
	FullSkewRatio    uint64            `json:"fullSkewRatio" yaml:"fullSkewRatio"`
	Interfaces       []InterfaceRecord `json:"interfaces" yaml:"interfaces"`
}

// TopReuse names the interface holding the largest share of the bond-wide
// rx_cache_reuse total. Interface is empty and SharePercent 0 when the
// total is zero.
type TopReuse struct {
	Interface    string `json:"interface" yaml:"interface"`
	SharePercent int    `json:"sharePercent" yaml:"sharePercent"`
}

// InterfaceRecord holds the rx_cache counter mapping for one member
// interface. Issue is derived from the configured flag threshold.
type InterfaceRecord struct {
	Name    string            `json:"name" yaml:"name"`
	RxCache map[string]uint64 `json:"rx_cache" yaml:"rx_cache"`
	Issue   bool              `json:"issue" yaml:"issue"`
}
