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

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/bondctl/pkg/collector/sysfs"
	"github.com/NVIDIA/bondctl/pkg/inspector"
	"github.com/NVIDIA/bondctl/pkg/serializer"
)

func collectCmd() *cli.Command {
	return &cli.Command{
		Name:                  "collect",
		EnableShellCompletion: true,
		Usage:                 "Sample rx_cache counters of the local node's bonds",
		Description: `Enumerate the bonding devices of the local node, read the rx_cache
counter family of every member interface, and emit the samples as a
SampleSet document.

This is the command the per-node collector Jobs run. Inside a cluster
the samples are written to a ConfigMap for the report command to pick
up:

  bondctl collect --output cm://fleet/bondctl-samples-worker-1

Locally the samples go to stdout or a file:

  bondctl collect --output samples.json`,
		Flags: []cli.Flag{
			bondFlag,
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			out := serializer.NewFileWriterOrStdout(format, cmd.String("output"))
			defer closeSerializer(out)

			s := &inspector.Sampler{
				Version: version,
				Collector: &sysfs.Collector{
					BondFilter: cmd.String("bond"),
				},
				Serializer: out,
			}

			return s.Run(ctx)
		},
	}
}
