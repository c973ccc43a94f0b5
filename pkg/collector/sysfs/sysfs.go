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

// Package sysfs collects rx_cache counter samples for the bonded
// interfaces of the local node. Bonds and their member interfaces are
// enumerated from the kernel bonding driver's sysfs tree; per-interface
// counters come from the NIC driver via ethtool.
package sysfs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/NVIDIA/bondctl/pkg/sample"
)

// DefaultRoot is the sysfs network class directory.
const DefaultRoot = "/sys/class/net"

// MetricPrefix selects the counter family collected from each interface.
const MetricPrefix = "rx_cache_"

// StatsFunc returns the NIC statistics for an interface. The default
// implementation shells out to ethtool; tests inject fixtures.
type StatsFunc func(ctx context.Context, iface string) (map[string]uint64, error)

// Collector samples rx_cache counters for the local node's bonds.
type Collector struct {
	// Root is the sysfs network class directory, DefaultRoot when empty.
	Root string

	// BondFilter, when set, restricts collection to bonds with this name.
	BondFilter string

	// Stats overrides the interface statistics source. Defaults to
	// ethtool when nil.
	Stats StatsFunc
}

// New creates a Collector reading from the default sysfs tree and ethtool.
func New() *Collector {
	return &Collector{}
}

func (c *Collector) root() string {
	if c.Root == "" {
		return DefaultRoot
	}
	return c.Root
}

func (c *Collector) stats() StatsFunc {
	if c.Stats == nil {
		return ethtoolStats
	}
	return c.Stats
}

// Bonds enumerates the bonding master devices on the node, sorted by
// name. A node without the bonding driver loaded has no
// bonding_masters file and yields an empty list.
func (c *Collector) Bonds() ([]string, error) {
	content, err := os.ReadFile(filepath.Join(c.root(), "bonding_masters"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read bonding masters: %w", err)
	}

	bonds := strings.Fields(string(content))
	sort.Strings(bonds)
	return bonds, nil
}

// Members enumerates the member interfaces of a bond, sorted by name.
func (c *Collector) Members(bond string) ([]string, error) {
	content, err := os.ReadFile(filepath.Join(c.root(), bond, "bonding", "slaves"))
	if err != nil {
		return nil, fmt.Errorf("failed to read members of bond %s: %w", bond, err)
	}

	members := strings.Fields(string(content))
	sort.Strings(members)
	return members, nil
}

// Collect samples the rx_cache counters of every member interface of
// every bond on the node and returns them as raw samples attributed to
// node. Interfaces whose statistics cannot be read are logged and
// skipped; their counters are simply absent from the result.
func (c *Collector) Collect(ctx context.Context, node string) ([]sample.Raw, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bonds, err := c.Bonds()
	if err != nil {
		return nil, err
	}

	samples := make([]sample.Raw, 0, len(bonds)*8)
	for _, bond := range bonds {
		if c.BondFilter != "" && bond != c.BondFilter {
			continue
		}

		members, err := c.Members(bond)
		if err != nil {
			return nil, err
		}

		for _, iface := range members {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			stats, err := c.stats()(ctx, iface)
			if err != nil {
				slog.Warn("failed to read interface statistics, skipping",
					"bond", bond,
					"interface", iface,
					"error", err)
				continue
			}

			for _, metric := range sortedMetricNames(stats) {
				samples = append(samples, sample.Raw{
					Node:      node,
					Bond:      bond,
					Interface: iface,
					Metric:    metric,
					Value:     strconv.FormatUint(stats[metric], 10),
				})
			}
		}
	}

	return samples, nil
}

func sortedMetricNames(stats map[string]uint64) []string {
	names := make([]string, 0, len(stats))
	for name := range stats {
		if strings.HasPrefix(name, MetricPrefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
