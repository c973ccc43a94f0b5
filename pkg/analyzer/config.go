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

package analyzer

import (
	"github.com/NVIDIA/bondctl/pkg/errors"
)

// Default thresholds. Operators tune sensitivity per environment, so every
// threshold is a parameter; these are only the starting points.
const (
	DefaultFlagThreshold             uint64 = 0
	DefaultImbalancePercentThreshold        = 80
	DefaultSkewRatioThreshold        uint64 = 10
)

// Config carries the analyzer tunables. It is passed explicitly through the
// pipeline; nothing reads thresholds from globals.
type Config struct {
	// FlagThreshold marks an interface as having an issue when any of its
	// metric values is strictly greater than this.
	FlagThreshold uint64 `json:"flagThreshold" yaml:"flagThreshold"`

	// ImbalancePercentThreshold flags a bond when the top interface's share
	// of the bond-wide rx_cache_reuse total reaches this percentage.
	ImbalancePercentThreshold int `json:"imbalancePercentThreshold" yaml:"imbalancePercentThreshold"`

	// SkewRatioThreshold flags a bond when the max/min ratio of
	// rx_cache_busy or rx_cache_full across its interfaces reaches this.
	SkewRatioThreshold uint64 `json:"skewRatioThreshold" yaml:"skewRatioThreshold"`
}

// DefaultConfig returns the default analyzer configuration.
func DefaultConfig() Config {
	return Config{
		FlagThreshold:             DefaultFlagThreshold,
		ImbalancePercentThreshold: DefaultImbalancePercentThreshold,
		SkewRatioThreshold:        DefaultSkewRatioThreshold,
	}
}

// Validate fails fast on thresholds outside their valid domain. Invalid
// configuration is never silently clamped.
func (c Config) Validate() error {
	if c.ImbalancePercentThreshold < 0 || c.ImbalancePercentThreshold > 100 {
		return errors.Newf(errors.ErrCodeInvalidConfiguration,
			"imbalance percent threshold must be between 0 and 100, got %d", c.ImbalancePercentThreshold)
	}
	if c.SkewRatioThreshold < 1 {
		return errors.Newf(errors.ErrCodeInvalidConfiguration,
			"skew ratio threshold must be a positive integer, got %d", c.SkewRatioThreshold)
	}
	return nil
}
