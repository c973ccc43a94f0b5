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

package report

import (
	"github.com/NVIDIA/bondctl/pkg/analyzer"
	"github.com/NVIDIA/bondctl/pkg/store"
)

// Build assembles the report tree from the aggregated store and the
// analyzer. It is a pure function of its inputs: identical inputs yield an
// identical tree, which golden-file tests and report diffing rely on. Any
// malformed input was already normalized away upstream, so Build performs
// no I/O and returns no errors. An empty store yields a valid empty model.
func Build(st *store.Store, a *analyzer.Analyzer) *Model {
	m := &Model{
		Nodes: make([]NodeRecord, 0, len(st.Nodes())),
	}

	flagThreshold := a.Config().FlagThreshold

	for _, node := range st.Nodes() {
		nr := NodeRecord{
			Name:  node,
			Bonds: make([]BondRecord, 0, len(st.Bonds(node))),
		}

		for _, bond := range st.Bonds(node) {
			verdict := a.AnalyzeBond(st, node, bond)

			br := BondRecord{
				Name:             bond,
				Imbalance:        verdict.Imbalanced,
				ImbalanceReasons: verdict.Reasons,
				TopReuse: TopReuse{
					Interface:    verdict.TopReuseInterface,
					SharePercent: verdict.TopReuseSharePercent,
				},
				BusySkewRatio: verdict.BusySkewRatio,
				FullSkewRatio: verdict.FullSkewRatio,
				Interfaces:    make([]InterfaceRecord, 0, len(st.Interfaces(node, bond))),
			}

			for _, iface := range st.Interfaces(node, bond) {
				br.Interfaces = append(br.Interfaces, InterfaceRecord{
					Name:    iface,
					RxCache: st.Metrics(node, bond, iface),
					Issue:   st.InterfaceHasIssue(node, bond, iface, flagThreshold),
				})
			}

			nr.Bonds = append(nr.Bonds, br)
		}

		m.Nodes = append(m.Nodes, nr)
	}

	return m
}
