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

package inspector

import (
	"context"
	"log/slog"

	"github.com/NVIDIA/bondctl/pkg/collector/sysfs"
	"github.com/NVIDIA/bondctl/pkg/errors"
	"github.com/NVIDIA/bondctl/pkg/sample"
	"github.com/NVIDIA/bondctl/pkg/serializer"
)

// Sampler collects the local node's bond counters and serializes them
// as a SampleSet document. This is what runs inside the per-node
// collector Jobs.
type Sampler struct {
	// Version stamps the produced SampleSet.
	Version string

	// Collector reads the local bonds. If nil, the default sysfs
	// collector is used.
	Collector *sysfs.Collector

	// Serializer writes the SampleSet. If nil, a stdout JSON
	// serializer is used.
	Serializer serializer.Serializer

	// Node overrides node name discovery, used in tests.
	Node string
}

// Run samples the local node and serializes the SampleSet.
func (s *Sampler) Run(ctx context.Context) error {
	c := s.Collector
	if c == nil {
		c = sysfs.New()
	}

	node := s.Node
	if node == "" {
		node = sysfs.GetNodeName()
	}

	raws, err := c.Collect(ctx, node)
	if err != nil {
		return errors.Wrap(errors.ErrCodeCollection, "failed to collect bond samples", err)
	}

	slog.Debug("collected local bond samples", "node", node, "samples", len(raws))

	set := sample.NewSet(node, s.Version, raws)

	out := s.Serializer
	if out == nil {
		out = serializer.NewStdoutWriter(serializer.FormatJSON)
	}

	if err := out.Serialize(ctx, set); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to serialize samples", err)
	}

	return nil
}
