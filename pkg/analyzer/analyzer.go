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

// Package analyzer scores per-bond traffic imbalance from aggregated
// rx_cache counters: the reuse share concentrated on the top interface and
// the busy/full skew ratios between the hottest and coldest interfaces.
package analyzer

import (
	"fmt"
	"math/bits"

	"github.com/NVIDIA/bondctl/pkg/store"
)

// Counter metrics evaluated per bond.
const (
	MetricReuse = "rx_cache_reuse"
	MetricBusy  = "rx_cache_busy"
	MetricFull  = "rx_cache_full"
)

// SkewSentinel is the contractual stand-in for an unbounded skew ratio:
// one interface active while the bond-wide minimum is zero. It serializes
// as a plain integer so renderers never need a special value type.
const SkewSentinel uint64 = 999999

// Verdict is the per-bond analysis outcome.
type Verdict struct {
	// TopReuseInterface is the interface holding the largest share of the
	// bond's rx_cache_reuse total, empty when the total is zero. Ties go to
	// the lexicographically first interface.
	TopReuseInterface string

	// TopReuseSharePercent is floor(max*100/total), 0 when total is zero.
	TopReuseSharePercent int

	// BusySkewRatio is the rx_cache_busy max/min ratio across the bond.
	BusySkewRatio uint64

	// FullSkewRatio is the rx_cache_full max/min ratio across the bond.
	FullSkewRatio uint64

	// Imbalanced is true when at least one threshold fired.
	Imbalanced bool

	// Reasons holds one human-readable string per fired flag, ordered
	// reuse-share, busy-skew, full-skew.
	Reasons []string
}

// Analyzer computes imbalance verdicts for individual bonds. Bonds never
// interact and no state carries across bonds or runs.
type Analyzer struct {
	cfg Config
}

// New creates an Analyzer, validating the configuration before any
// aggregation work can start.
func New(cfg Config) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{cfg: cfg}, nil
}

// Config returns the analyzer configuration.
func (a *Analyzer) Config() Config {
	return a.cfg
}

// AnalyzeBond computes the verdict for one (node, bond) pair from the
// aggregated store.
func (a *Analyzer) AnalyzeBond(st *store.Store, node, bond string) Verdict {
	ifaces := st.Interfaces(node, bond)

	v := Verdict{
		Reasons: make([]string, 0, 3),
	}

	v.TopReuseInterface, v.TopReuseSharePercent = topReuseShare(st, node, bond, ifaces)
	v.BusySkewRatio = skewRatio(st, node, bond, ifaces, MetricBusy)
	v.FullSkewRatio = skewRatio(st, node, bond, ifaces, MetricFull)

	if v.TopReuseSharePercent >= a.cfg.ImbalancePercentThreshold && v.TopReuseInterface != "" {
		v.Reasons = append(v.Reasons, fmt.Sprintf("top %s share %d%% on %s (threshold %d%%)",
			MetricReuse, v.TopReuseSharePercent, v.TopReuseInterface, a.cfg.ImbalancePercentThreshold))
	}
	if v.BusySkewRatio >= a.cfg.SkewRatioThreshold {
		v.Reasons = append(v.Reasons, fmt.Sprintf("%s skew ratio %d (threshold %d)",
			MetricBusy, v.BusySkewRatio, a.cfg.SkewRatioThreshold))
	}
	if v.FullSkewRatio >= a.cfg.SkewRatioThreshold {
		v.Reasons = append(v.Reasons, fmt.Sprintf("%s skew ratio %d (threshold %d)",
			MetricFull, v.FullSkewRatio, a.cfg.SkewRatioThreshold))
	}

	v.Imbalanced = len(v.Reasons) > 0
	return v
}

// topReuseShare returns the interface with the largest rx_cache_reuse value
// and its integer percentage of the bond-wide total. A zero total means the
// share is undefined: reported as 0% with no interface named.
func topReuseShare(st *store.Store, node, bond string, ifaces []string) (string, int) {
	var totalHi, totalLo, maxVal uint64
	top := ""

	// ifaces is sorted, so strict greater-than keeps the lexicographically
	// first interface on ties. Counters near the uint64 ceiling are valid
	// samples, so the bond-wide total is carried in 128 bits.
	for _, iface := range ifaces {
		v, _ := st.Value(node, bond, iface, MetricReuse)
		var carry uint64
		totalLo, carry = bits.Add64(totalLo, v, 0)
		totalHi += carry
		if v > maxVal {
			maxVal = v
			top = iface
		}
	}

	if totalHi == 0 && totalLo == 0 {
		return "", 0
	}
	return top, percentOf(maxVal, totalHi, totalLo)
}

// percentOf returns floor(part*100/total) where total is a 128-bit sum
// that part contributed to. The product part*100 does not fit in 64 bits
// for large counters, so the division runs over the 128-bit product.
func percentOf(part, totalHi, totalLo uint64) int {
	hi, lo := bits.Mul64(part, 100)
	if totalHi == 0 {
		// part <= total, so the quotient is at most 100 and Div64
		// cannot overflow.
		q, _ := bits.Div64(hi, lo, totalLo)
		return int(q)
	}

	// total exceeds 64 bits while part does not, so the quotient is
	// below 100: subtract total out of the product until it no longer
	// fits.
	pct := 0
	for hi > totalHi || (hi == totalHi && lo >= totalLo) {
		var borrow uint64
		lo, borrow = bits.Sub64(lo, totalLo, 0)
		hi, _ = bits.Sub64(hi, totalHi, borrow)
		pct++
	}
	return pct
}

// skewRatio returns floor(max/min) for the given metric across the bond's
// interfaces, treating an absent counter as zero. A bond with no activity
// yields 0 (no signal); activity concentrated on some interfaces while the
// minimum stays zero yields the saturating sentinel instead of dividing
// by zero.
func skewRatio(st *store.Store, node, bond string, ifaces []string, metric string) uint64 {
	if len(ifaces) == 0 {
		return 0
	}

	var maxVal uint64
	minVal := ^uint64(0)
	for _, iface := range ifaces {
		v, _ := st.Value(node, bond, iface, metric)
		if v > maxVal {
			maxVal = v
		}
		if v < minVal {
			minVal = v
		}
	}

	if maxVal == 0 {
		return 0
	}
	if minVal == 0 {
		return SkewSentinel
	}
	return maxVal / minVal
}
