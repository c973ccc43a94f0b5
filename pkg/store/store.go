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

// Package store aggregates normalized counter samples into the
// node/bond/interface/metric hierarchy used by the analyzer and the
// report builder. The store is built once per collection pass, after
// fan-in completes; it is not safe for concurrent mutation.
package store

import (
	"sort"

	"github.com/NVIDIA/bondctl/pkg/sample"
)

// Store owns the nested node -> bond -> interface -> metric -> value
// hierarchy. Enumeration is always lexicographic so identical inputs yield
// identical reports regardless of collection order.
type Store struct {
	nodes map[string]map[string]map[string]map[string]uint64
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		nodes: make(map[string]map[string]map[string]map[string]uint64),
	}
}

// Insert records one sample. Re-inserting the same (node, bond, interface,
// metric) key replaces the value, which makes upstream re-collection and
// retries idempotent without any dedup logic here.
func (s *Store) Insert(smp sample.Sample) {
	bonds, ok := s.nodes[smp.Node]
	if !ok {
		bonds = make(map[string]map[string]map[string]uint64)
		s.nodes[smp.Node] = bonds
	}

	ifaces, ok := bonds[smp.Bond]
	if !ok {
		ifaces = make(map[string]map[string]uint64)
		bonds[smp.Bond] = ifaces
	}

	metrics, ok := ifaces[smp.Interface]
	if !ok {
		metrics = make(map[string]uint64)
		ifaces[smp.Interface] = metrics
	}

	metrics[smp.Metric] = smp.Value
}

// InsertBatch records a batch of samples in order, last write wins.
func (s *Store) InsertBatch(samples []sample.Sample) {
	for _, smp := range samples {
		s.Insert(smp)
	}
}

// Empty reports whether the store holds no samples at all.
func (s *Store) Empty() bool {
	return len(s.nodes) == 0
}

// Nodes returns all node names in lexicographic order.
func (s *Store) Nodes() []string {
	return sortedKeys(s.nodes)
}

// Bonds returns the bond names observed on a node in lexicographic order.
func (s *Store) Bonds(node string) []string {
	return sortedKeys(s.nodes[node])
}

// Interfaces returns the member interfaces of a (node, bond) pair in
// lexicographic order.
func (s *Store) Interfaces(node, bond string) []string {
	return sortedKeys(s.nodes[node][bond])
}

// MetricNames returns the metric names recorded for an interface in
// lexicographic order.
func (s *Store) MetricNames(node, bond, iface string) []string {
	return sortedKeys(s.nodes[node][bond][iface])
}

// Metrics returns a copy of the metric mapping for an interface. The copy
// keeps callers from mutating store state through the returned map.
func (s *Store) Metrics(node, bond, iface string) map[string]uint64 {
	src := s.nodes[node][bond][iface]
	dst := make(map[string]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// Value returns the recorded value for one metric and whether it exists.
func (s *Store) Value(node, bond, iface, metric string) (uint64, bool) {
	v, ok := s.nodes[node][bond][iface][metric]
	return v, ok
}

// InterfaceHasIssue reports whether any metric on the interface exceeds the
// caller-supplied flag threshold. The threshold is a parameter on purpose:
// the store never hard-codes sensitivity.
func (s *Store) InterfaceHasIssue(node, bond, iface string, threshold uint64) bool {
	for _, v := range s.nodes[node][bond][iface] {
		if v > threshold {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
