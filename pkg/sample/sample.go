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

// Package sample defines the raw counter sample tuple collected from bonded
// network devices and its normalization into the aggregation pipeline.
package sample

import (
	"strconv"
	"strings"

	"github.com/NVIDIA/bondctl/pkg/header"
)

// APIVersion is the schema version for SampleSet documents.
const APIVersion = "bondctl.nvidia.com/v1alpha1"

// Raw is one counter tuple as produced by a collection source, before
// validation. Value is kept as text so a present-but-unreadable counter
// can be normalized instead of rejected.
type Raw struct {
	Node      string `json:"node" yaml:"node"`
	Bond      string `json:"bond" yaml:"bond"`
	Interface string `json:"interface" yaml:"interface"`
	Metric    string `json:"metric" yaml:"metric"`
	Value     string `json:"value" yaml:"value"`
}

// Sample is one validated, normalized counter reading.
type Sample struct {
	Node      string
	Bond      string
	Interface string
	Metric    string
	Value     uint64
}

// Parse validates and normalizes a raw tuple. It returns false when any of
// node, bond, interface, or metric is empty after trimming; such tuples are
// dropped from aggregation without failing the run. A value that does not
// parse as a non-negative integer is coerced to 0 rather than dropped:
// an unreadable counter is evidence of no traffic, not of a missing
// interface.
func Parse(r Raw) (Sample, bool) {
	s := Sample{
		Node:      strings.TrimSpace(r.Node),
		Bond:      strings.TrimSpace(r.Bond),
		Interface: strings.TrimSpace(r.Interface),
		Metric:    strings.TrimSpace(r.Metric),
	}

	if s.Node == "" || s.Bond == "" || s.Interface == "" || s.Metric == "" {
		return Sample{}, false
	}

	v, err := strconv.ParseUint(strings.TrimSpace(r.Value), 10, 64)
	if err != nil {
		v = 0
	}
	s.Value = v

	return s, true
}

// ParseBatch normalizes a batch of raw tuples, returning the accepted
// samples and the number of dropped (malformed) tuples.
func ParseBatch(raws []Raw) ([]Sample, int) {
	samples := make([]Sample, 0, len(raws))
	dropped := 0
	for _, r := range raws {
		s, ok := Parse(r)
		if !ok {
			dropped++
			continue
		}
		samples = append(samples, s)
	}
	return samples, dropped
}

// Set is the serializable per-node sample document exchanged between the
// collect command and the fleet reporter.
type Set struct {
	header.Header `json:",inline" yaml:",inline"`

	// Samples contains the raw counter tuples collected on one node.
	Samples []Raw `json:"samples" yaml:"samples"`
}

// NewSet creates a SampleSet document for the given source node.
func NewSet(node, version string, samples []Raw) *Set {
	s := &Set{
		Samples: samples,
	}
	if s.Samples == nil {
		s.Samples = make([]Raw, 0)
	}
	s.Init(header.KindSampleSet, APIVersion, version)
	s.SetMetadata("source-node", node)
	return s
}
