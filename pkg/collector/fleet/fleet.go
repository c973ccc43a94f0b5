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

// Package fleet gathers rx_cache counter samples from every node in the
// cluster by fanning out per-node collector Jobs and reading their
// sample ConfigMaps back.
package fleet

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	corev1 "k8s.io/api/core/v1"

	"github.com/NVIDIA/bondctl/pkg/errors"
	"github.com/NVIDIA/bondctl/pkg/k8s/agent"
	"github.com/NVIDIA/bondctl/pkg/k8s/client"
	"github.com/NVIDIA/bondctl/pkg/k8s/node"
	"github.com/NVIDIA/bondctl/pkg/sample"
	"github.com/NVIDIA/bondctl/pkg/serializer"
)

const (
	// DefaultConcurrency bounds how many nodes are collected at once.
	DefaultConcurrency = 10

	// DefaultNodeTimeout is how long a single node's collector Job may
	// take before the node is counted as failed.
	DefaultNodeTimeout = 5 * time.Minute

	// defaultAPIRequestsPerSecond paces Job creation so a large fleet
	// does not hammer the API server.
	defaultAPIRequestsPerSecond = 5
)

// Options configures a fleet collection run.
type Options struct {
	Namespace          string
	ServiceAccountName string
	Image              string
	Kubeconfig         string

	// LabelSelector restricts which nodes are collected.
	LabelSelector string

	// NodeLimit caps the number of nodes, 0 for all.
	NodeLimit int64

	// BondFilter restricts collection to bonds with this name.
	BondFilter string

	// Tolerations let the collector Jobs schedule onto tainted nodes.
	// Defaults to tolerating all taints so no node is silently skipped.
	Tolerations []corev1.Toleration

	// Concurrency bounds parallel node collections, DefaultConcurrency
	// when 0.
	Concurrency int

	// NodeTimeout bounds a single node's collection, DefaultNodeTimeout
	// when 0.
	NodeTimeout time.Duration

	// Keep leaves the Jobs and sample ConfigMaps in place after the run.
	Keep bool

	Debug bool

	// RunID scopes resource names; generated when empty.
	RunID string

	// Client overrides the kube client, used in tests.
	Client client.Interface
}

// Result holds the outcome of a fleet collection run.
type Result struct {
	// RunID identifies the collection run.
	RunID string

	// Samples are the raw counter samples from all reachable nodes.
	Samples []sample.Raw

	// Nodes are all nodes that were targeted, sorted.
	Nodes []string

	// FailedNodes are nodes whose collection did not produce samples,
	// sorted. A failed node contributes zero samples, it does not fail
	// the run.
	FailedNodes []string
}

// Collector orchestrates per-node collection Jobs across the fleet.
type Collector struct {
	opts     Options
	kc       client.Interface
	deployer *agent.Deployer
	limiter  *rate.Limiter
}

// New creates a fleet Collector.
func New(opts Options) (*Collector, error) {
	if opts.Namespace == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "namespace is required")
	}
	if opts.ServiceAccountName == "" {
		opts.ServiceAccountName = "bondctl-collector"
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.NodeTimeout <= 0 {
		opts.NodeTimeout = DefaultNodeTimeout
	}
	if opts.RunID == "" {
		opts.RunID = strings.SplitN(uuid.NewString(), "-", 2)[0]
	}

	kc := opts.Client
	if kc == nil {
		var err error
		kc, _, err = client.GetKubeClientWithConfig(opts.Kubeconfig)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, "failed to create kubernetes client", err)
		}
	}

	if len(opts.Tolerations) == 0 {
		opts.Tolerations = DefaultTolerations()
	}

	deployer := agent.NewDeployer(kc, agent.Config{
		Namespace:          opts.Namespace,
		ServiceAccountName: opts.ServiceAccountName,
		Image:              opts.Image,
		Tolerations:        opts.Tolerations,
		RunID:              opts.RunID,
		BondFilter:         opts.BondFilter,
		Debug:              opts.Debug,
	})

	return &Collector{
		opts:     opts,
		kc:       kc,
		deployer: deployer,
		limiter:  rate.NewLimiter(rate.Limit(defaultAPIRequestsPerSecond), 1),
	}, nil
}

// Collect runs the collection across all matching nodes and returns the
// gathered samples. Nodes that fail are logged and reported in the
// result; only cluster-level failures return an error.
func (c *Collector) Collect(ctx context.Context) (*Result, error) {
	nodes, err := node.ListNames(ctx, node.ListOptions{
		Client:        c.kc,
		LabelSelector: c.opts.LabelSelector,
		Limit:         c.opts.NodeLimit,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCollection, "failed to list nodes", err)
	}

	result := &Result{
		RunID:       c.opts.RunID,
		Samples:     []sample.Raw{},
		Nodes:       nodes,
		FailedNodes: []string{},
	}

	if len(nodes) == 0 {
		slog.Info("no nodes matched, nothing to collect", "selector", c.opts.LabelSelector)
		return result, nil
	}

	if err := c.deployer.EnsurePrerequisites(ctx); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCollection, "failed to prepare collector resources", err)
	}

	slog.Info("collecting bond samples across fleet",
		"run", c.opts.RunID,
		"nodes", len(nodes),
		"concurrency", c.opts.Concurrency)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Concurrency)

	for _, n := range nodes {
		g.Go(func() error {
			samples, err := c.collectNode(gctx, n)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Warn("node collection failed",
					"node", n,
					"error", err)
				result.FailedNodes = append(result.FailedNodes, n)
				return nil
			}
			result.Samples = append(result.Samples, samples...)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCollection, "fleet collection aborted", err)
	}

	if err := c.deployer.Cleanup(ctx, nodes, agent.CleanupOptions{Enabled: !c.opts.Keep}); err != nil {
		slog.Warn("failed to clean up collector resources", "error", err)
	}

	sort.Strings(result.FailedNodes)

	slog.Info("fleet collection done",
		"run", c.opts.RunID,
		"samples", len(result.Samples),
		"failedNodes", len(result.FailedNodes))

	return result, nil
}

// collectNode runs the collector Job on one node and reads its samples
// back from the node's ConfigMap.
func (c *Collector) collectNode(ctx context.Context, n string) ([]sample.Raw, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	if err := c.deployer.CollectNode(ctx, n, c.opts.NodeTimeout); err != nil {
		if logs, logErr := c.deployer.GetPodLogs(ctx, n); logErr == nil && logs != "" {
			slog.Debug("collector pod output", "node", n, "logs", logs)
		}
		return nil, errors.Wrap(errors.ErrCodeNodeUnreachable,
			fmt.Sprintf("collection on node %s failed", n), err)
	}

	set, err := serializer.ReadConfigMap[sample.Set](ctx, c.kc, c.opts.Namespace, c.deployer.ConfigMapName(n))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNodeUnreachable,
			fmt.Sprintf("failed to read samples from node %s", n), err)
	}

	return set.Samples, nil
}
