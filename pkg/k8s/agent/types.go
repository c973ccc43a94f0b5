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

package agent

import (
	"fmt"
	"strings"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes"
)

// appLabel identifies all resources created by the collector agent.
const appLabel = "bondctl"

// maxResourceNameLength is the DNS-1123 label limit enforced by the API
// server on Job and ConfigMap names.
const maxResourceNameLength = 63

// Config holds the configuration for deploying the per-node collector Jobs.
type Config struct {
	Namespace          string
	ServiceAccountName string
	Image              string
	ImagePullSecrets   []string
	Tolerations        []corev1.Toleration

	// RunID scopes Job and ConfigMap names to a single collection run so
	// concurrent reports do not trample each other's results.
	RunID string

	// BondFilter, when set, is passed to the collector to restrict
	// collection to bonds matching the pattern.
	BondFilter string

	Debug bool
}

// Deployer manages the lifecycle of per-node collector Jobs and their RBAC.
type Deployer struct {
	clientset kubernetes.Interface
	config    Config
}

// NewDeployer creates a new collector agent Deployer.
func NewDeployer(clientset kubernetes.Interface, config Config) *Deployer {
	return &Deployer{
		clientset: clientset,
		config:    config,
	}
}

// CleanupOptions controls what resources to remove after a collection run.
type CleanupOptions struct {
	Enabled bool // If false, Jobs and ConfigMaps are kept for debugging
}

// JobName returns the collector Job name for a node.
func (d *Deployer) JobName(node string) string {
	return truncateName(fmt.Sprintf("bondctl-collect-%s-%s", d.config.RunID, sanitizeNodeName(node)))
}

// ConfigMapName returns the ConfigMap name the collector on a node writes
// its samples to.
func (d *Deployer) ConfigMapName(node string) string {
	return truncateName(fmt.Sprintf("bondctl-samples-%s-%s", d.config.RunID, sanitizeNodeName(node)))
}

// OutputURI returns the cm:// URI the collector on a node writes to.
func (d *Deployer) OutputURI(node string) string {
	return fmt.Sprintf("cm://%s/%s", d.config.Namespace, d.ConfigMapName(node))
}

// sanitizeNodeName makes a node name safe for use inside a DNS-1123
// resource name. Node names are already DNS subdomains but may contain
// dots (FQDNs).
func sanitizeNodeName(node string) string {
	return strings.ReplaceAll(strings.ToLower(node), ".", "-")
}

func truncateName(name string) string {
	if len(name) <= maxResourceNameLength {
		return name
	}
	return strings.TrimRight(name[:maxResourceNameLength], "-")
}
