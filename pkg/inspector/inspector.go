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

// Package inspector orchestrates the bond imbalance pipeline: raw
// samples flow from a Source through parsing into the counter store,
// every bond is analyzed, and the resulting report is serialized.
package inspector

import (
	"context"
	"log/slog"
	"time"

	"github.com/NVIDIA/bondctl/pkg/analyzer"
	"github.com/NVIDIA/bondctl/pkg/errors"
	"github.com/NVIDIA/bondctl/pkg/report"
	"github.com/NVIDIA/bondctl/pkg/sample"
	"github.com/NVIDIA/bondctl/pkg/serializer"
	"github.com/NVIDIA/bondctl/pkg/store"
)

// Source supplies raw counter samples to the inspector. The fleet
// collector is the usual source; sample files stand in for it when
// re-analyzing a previous collection.
type Source interface {
	Collect(ctx context.Context) ([]sample.Raw, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) ([]sample.Raw, error)

// Collect calls f.
func (f SourceFunc) Collect(ctx context.Context) ([]sample.Raw, error) {
	return f(ctx)
}

// Inspector runs the analysis pipeline over samples from a Source and
// serializes the resulting report.
type Inspector struct {
	// Source supplies the raw samples. Required.
	Source Source

	// AnalyzerConfig holds the imbalance thresholds. If nil, defaults
	// are used; a non-nil config is validated as given.
	AnalyzerConfig *analyzer.Config

	// Serializer writes the report. If nil, a stdout JSON serializer
	// is used.
	Serializer serializer.Serializer
}

// Run collects, analyzes, and serializes a fleet report.
func (i *Inspector) Run(ctx context.Context) error {
	start := time.Now()
	status := "success"
	defer func() {
		reportDuration.Observe(time.Since(start).Seconds())
		reportTotal.WithLabelValues(status).Inc()
	}()

	model, err := i.Inspect(ctx)
	if err != nil {
		status = "error"
		return err
	}

	s := i.Serializer
	if s == nil {
		s = serializer.NewStdoutWriter(serializer.FormatJSON)
	}

	if err := s.Serialize(ctx, model); err != nil {
		status = "error"
		return errors.Wrap(errors.ErrCodeInternal, "failed to serialize report", err)
	}

	return nil
}

// Inspect collects samples from the Source and builds the report model
// without serializing it.
func (i *Inspector) Inspect(ctx context.Context) (*report.Model, error) {
	if i.Source == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "inspector requires a sample source")
	}

	cfg := analyzer.DefaultConfig()
	if i.AnalyzerConfig != nil {
		cfg = *i.AnalyzerConfig
	}

	a, err := analyzer.New(cfg)
	if err != nil {
		return nil, err
	}

	raws, err := i.Source.Collect(ctx)
	if err != nil {
		return nil, err
	}

	samples, dropped := sample.ParseBatch(raws)
	samplesTotal.WithLabelValues("parsed").Add(float64(len(samples)))
	samplesTotal.WithLabelValues("dropped").Add(float64(dropped))
	if dropped > 0 {
		slog.Warn("dropped malformed samples", "count", dropped)
	}

	st := store.New()
	st.InsertBatch(samples)

	model := report.Build(st, a)

	imbalanced := 0
	for _, n := range model.Nodes {
		for _, b := range n.Bonds {
			if b.Imbalance {
				imbalanced++
			}
		}
	}
	imbalancedBonds.Set(float64(imbalanced))

	slog.Debug("report built",
		"nodes", len(model.Nodes),
		"samples", len(samples),
		"imbalancedBonds", imbalanced)

	return model, nil
}
