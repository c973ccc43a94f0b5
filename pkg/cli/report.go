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

package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/bondctl/pkg/analyzer"
	"github.com/NVIDIA/bondctl/pkg/collector/fleet"
	"github.com/NVIDIA/bondctl/pkg/collector/sysfs"
	"github.com/NVIDIA/bondctl/pkg/inspector"
	"github.com/NVIDIA/bondctl/pkg/sample"
	"github.com/NVIDIA/bondctl/pkg/serializer"
)

func reportCmd() *cli.Command {
	return &cli.Command{
		Name:                  "report",
		EnableShellCompletion: true,
		Usage:                 "Analyze rx_cache balance of bonded interfaces across the fleet",
		Description: `Collect rx_cache counter samples from every node in the cluster,
aggregate them per bond, and report which bonds look imbalanced.

A bond is flagged when a single member interface dominates the
rx_cache_reuse total, or when rx_cache_busy or rx_cache_full counters
are heavily skewed between members.

Collection fans out one Job per node; each Job samples its node's bonds
and hands the result back through a ConfigMap. Nodes that cannot be
collected are reported and skipped, they never fail the whole report.

# Examples

Report for the whole fleet:
  bondctl report

Only GPU nodes, custom thresholds:
  bondctl report --node-selector nodeGroup=gpu --reuse-threshold 90 --skew-threshold 5

Re-analyze previously collected samples without touching the cluster:
  bondctl report --samples worker-1.json --samples worker-2.json

Analyze only this machine's bonds, no cluster involved:
  bondctl report --local`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "namespace",
				Usage:   "Kubernetes namespace for the collector Jobs",
				Sources: cli.EnvVars("BONDCTL_NAMESPACE"),
				Value:   "default",
			},
			&cli.StringFlag{
				Name:    "image",
				Usage:   "container image for the collector Jobs",
				Sources: cli.EnvVars("BONDCTL_IMAGE"),
				Value:   "ghcr.io/nvidia/bondctl:latest",
			},
			&cli.StringFlag{
				Name:  "service-account-name",
				Usage: "override default ServiceAccount name",
				Value: "bondctl-collector",
			},
			&cli.StringFlag{
				Name:  "node-selector",
				Usage: "label selector restricting which nodes are collected",
			},
			&cli.StringSliceFlag{
				Name:  "toleration",
				Usage: "toleration for Job scheduling (format: key=value:effect, can be repeated; default: tolerate all)",
			},
			&cli.Int64Flag{
				Name:  "node-limit",
				Usage: "cap the number of nodes collected (0: all)",
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "how many nodes to collect in parallel",
				Value: fleet.DefaultConcurrency,
			},
			&cli.DurationFlag{
				Name:  "node-timeout",
				Usage: "per-node collection timeout",
				Value: fleet.DefaultNodeTimeout,
			},
			&cli.BoolFlag{
				Name:  "keep",
				Usage: "keep collector Jobs and sample ConfigMaps after the run",
			},
			&cli.StringSliceFlag{
				Name:  "samples",
				Usage: "analyze SampleSet file(s) instead of collecting from the cluster (can be repeated)",
			},
			&cli.BoolFlag{
				Name:  "local",
				Usage: "sample and analyze the current node's bonds without a cluster",
			},
			&cli.IntFlag{
				Name:  "reuse-threshold",
				Usage: "flag a bond when one interface holds this share of rx_cache_reuse, in percent",
				Value: analyzer.DefaultImbalancePercentThreshold,
			},
			&cli.Uint64Flag{
				Name:  "skew-threshold",
				Usage: "flag a bond when the busy or full max/min ratio reaches this",
				Value: analyzer.DefaultSkewRatioThreshold,
			},
			&cli.Uint64Flag{
				Name:  "flag-threshold",
				Usage: "mark an interface when any counter exceeds this value",
				Value: analyzer.DefaultFlagThreshold,
			},
			bondFlag,
			outputFlag,
			formatFlag,
			kubeconfigFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			source, err := sampleSource(cmd)
			if err != nil {
				return err
			}

			out := serializer.NewFileWriterOrStdout(format, cmd.String("output"))
			defer closeSerializer(out)

			i := &inspector.Inspector{
				Source: source,
				AnalyzerConfig: &analyzer.Config{
					FlagThreshold:             cmd.Uint64("flag-threshold"),
					ImbalancePercentThreshold: cmd.Int("reuse-threshold"),
					SkewRatioThreshold:        cmd.Uint64("skew-threshold"),
				},
				Serializer: out,
			}

			return i.Run(ctx)
		},
	}
}

// sampleSource picks where the report's samples come from: the current
// node when --local is given, SampleSet files when --samples is given,
// the fleet otherwise.
func sampleSource(cmd *cli.Command) (inspector.Source, error) {
	paths := cmd.StringSlice("samples")
	if cmd.Bool("local") {
		if len(paths) > 0 {
			return nil, fmt.Errorf("--local and --samples are mutually exclusive")
		}
		return localSource(&sysfs.Collector{BondFilter: cmd.String("bond")}), nil
	}
	if len(paths) > 0 {
		return fileSource(paths), nil
	}

	tolerations, err := fleet.ParseTolerations(cmd.StringSlice("toleration"))
	if err != nil {
		return nil, fmt.Errorf("invalid toleration: %w", err)
	}

	collector, err := fleet.New(fleet.Options{
		Namespace:          cmd.String("namespace"),
		ServiceAccountName: cmd.String("service-account-name"),
		Image:              cmd.String("image"),
		Kubeconfig:         cmd.String("kubeconfig"),
		LabelSelector:      cmd.String("node-selector"),
		NodeLimit:          cmd.Int64("node-limit"),
		BondFilter:         cmd.String("bond"),
		Tolerations:        tolerations,
		Concurrency:        cmd.Int("concurrency"),
		NodeTimeout:        cmd.Duration("node-timeout"),
		Keep:               cmd.Bool("keep"),
		Debug:              cmd.Bool("debug"),
	})
	if err != nil {
		return nil, err
	}

	return inspector.SourceFunc(func(ctx context.Context) ([]sample.Raw, error) {
		result, err := collector.Collect(ctx)
		if err != nil {
			return nil, err
		}
		return result.Samples, nil
	}), nil
}

// localSource samples this machine's bonds directly, the same reads the
// per-node collector Jobs perform.
func localSource(c *sysfs.Collector) inspector.Source {
	return inspector.SourceFunc(func(ctx context.Context) ([]sample.Raw, error) {
		return c.Collect(ctx, sysfs.GetNodeName())
	})
}

// fileSource loads raw samples from SampleSet files written by the
// collect command.
func fileSource(paths []string) inspector.Source {
	return inspector.SourceFunc(func(_ context.Context) ([]sample.Raw, error) {
		var raws []sample.Raw
		for _, path := range paths {
			set, err := serializer.FromFile[sample.Set](path)
			if err != nil {
				return nil, fmt.Errorf("failed to load samples from %q: %w", path, err)
			}
			raws = append(raws, set.Samples...)
		}
		return raws, nil
	})
}
