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

// Package node lists fleet nodes eligible for bond counter collection.
package node

import (
	"context"
	"fmt"
	"sort"

	v1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/NVIDIA/bondctl/pkg/k8s/client"
)

const (
	// pageSize balances API-server load and memory on large clusters.
	pageSize int64 = 500

	// absoluteMax is a hard cap to prevent memory exhaustion.
	absoluteMax int64 = 10000
)

// ListOptions configures node listing.
type ListOptions struct {
	// Kubeconfig is the path to the kubeconfig file.
	Kubeconfig string
	// LabelSelector filters nodes based on labels.
	LabelSelector string
	// Limit is the maximum number of nodes to return (0 means no limit
	// beyond the absolute cap).
	Limit int64
	// Client overrides the Kubernetes client, used for testing.
	Client client.Interface
}

// ListNames returns the names of matching nodes in lexicographic order.
func ListNames(ctx context.Context, opt ListOptions) ([]string, error) {
	nodes, err := List(ctx, opt)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, n.Name)
	}
	sort.Strings(names)
	return names, nil
}

func (o *ListOptions) client() (client.Interface, error) {
	if o.Client != nil {
		return o.Client, nil
	}
	kc, _, err := client.GetKubeClientWithConfig(o.Kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to get kubernetes client: %w", err)
	}
	return kc, nil
}

// List returns the matching nodes, paginating so large clusters do not
// require one giant response.
func List(ctx context.Context, opt ListOptions) ([]*v1.Node, error) {
	kc, err := opt.client()
	if err != nil {
		return nil, err
	}

	effectiveLimit := opt.Limit
	if effectiveLimit == 0 || effectiveLimit > absoluteMax {
		effectiveLimit = absoluteMax
	}

	var nodes []*v1.Node
	continueToken := ""

	for {
		list, err := kc.CoreV1().Nodes().List(ctx, metav1.ListOptions{
			LabelSelector: opt.LabelSelector,
			Limit:         pageSize,
			Continue:      continueToken,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list nodes: %w", err)
		}

		for i := range list.Items {
			nodes = append(nodes, &list.Items[i])
			if int64(len(nodes)) >= effectiveLimit {
				return nodes, nil
			}
		}

		continueToken = list.Continue
		if continueToken == "" {
			break
		}
	}

	return nodes, nil
}
