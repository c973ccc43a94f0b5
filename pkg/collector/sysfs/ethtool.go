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

package sysfs

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ethtoolStats runs "ethtool -S iface" and parses the driver statistics.
func ethtoolStats(ctx context.Context, iface string) (map[string]uint64, error) {
	ethtoolPath, err := exec.LookPath("ethtool")
	if err != nil {
		return nil, fmt.Errorf("ethtool not found in PATH: %w", err)
	}

	cmd := exec.CommandContext(ctx, ethtoolPath, "-S", iface)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ethtool -S %s failed: %w", iface, err)
	}

	return parseEthtoolStats(string(output)), nil
}

// parseEthtoolStats parses ethtool -S output of the form:
//
//	NIC statistics:
//	     rx_cache_reuse: 4231
//	     rx_cache_full: 17
//
// Lines that do not look like counters are ignored, as are counters with
// non-numeric values.
func parseEthtoolStats(output string) map[string]uint64 {
	stats := make(map[string]uint64)

	for _, line := range strings.Split(output, "\n") {
		name, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}

		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name == "" || value == "" {
			continue
		}

		v, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			continue
		}
		stats[name] = v
	}

	return stats
}
