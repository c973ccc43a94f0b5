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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bondctl_report_duration_seconds",
			Help:    "Time taken to produce a complete fleet report",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	reportTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bondctl_report_total",
			Help: "Total number of report attempts",
		},
		[]string{"status"}, // success or error
	)

	samplesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bondctl_samples_total",
			Help: "Counter samples processed, by parse outcome",
		},
		[]string{"outcome"}, // parsed or dropped
	)

	imbalancedBonds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bondctl_imbalanced_bonds",
			Help: "Number of bonds flagged imbalanced in the last report",
		},
	)
)
