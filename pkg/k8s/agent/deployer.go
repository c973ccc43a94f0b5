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
	"context"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/api/errors"
)

// EnsurePrerequisites creates the RBAC resources the collector Jobs run
// under. Idempotent; existing resources are reused.
func (d *Deployer) EnsurePrerequisites(ctx context.Context) error {
	if _, err := d.CheckPermissions(ctx); err != nil {
		return fmt.Errorf("insufficient permissions to deploy collector: %w", err)
	}

	if err := d.ensureServiceAccount(ctx); err != nil {
		return fmt.Errorf("failed to create ServiceAccount: %w", err)
	}

	if err := d.ensureRole(ctx); err != nil {
		return fmt.Errorf("failed to create Role: %w", err)
	}

	if err := d.ensureRoleBinding(ctx); err != nil {
		return fmt.Errorf("failed to create RoleBinding: %w", err)
	}

	return nil
}

// CollectNode runs a collector Job pinned to the given node and waits for
// it to complete. The Job writes its samples to the ConfigMap named by
// ConfigMapName(node).
func (d *Deployer) CollectNode(ctx context.Context, node string, timeout time.Duration) error {
	if err := d.ensureJob(ctx, node); err != nil {
		return fmt.Errorf("failed to create collector Job for node %s: %w", node, err)
	}
	if err := d.waitForJobCompletion(ctx, node, timeout); err != nil {
		return fmt.Errorf("collector Job for node %s did not complete: %w", node, err)
	}
	return nil
}

// Cleanup removes the collector Jobs and ConfigMaps for the given nodes,
// plus the shared RBAC resources. No-op when opts.Enabled is false.
func (d *Deployer) Cleanup(ctx context.Context, nodes []string, opts CleanupOptions) error {
	if !opts.Enabled {
		return nil
	}

	for _, node := range nodes {
		if err := d.deleteJob(ctx, node); err != nil {
			return fmt.Errorf("failed to delete Job for node %s: %w", node, err)
		}
		if err := d.deleteConfigMap(ctx, node); err != nil {
			return fmt.Errorf("failed to delete ConfigMap for node %s: %w", node, err)
		}
	}

	if err := d.deleteServiceAccount(ctx); err != nil {
		return fmt.Errorf("failed to delete ServiceAccount: %w", err)
	}

	if err := d.deleteRole(ctx); err != nil {
		return fmt.Errorf("failed to delete Role: %w", err)
	}

	if err := d.deleteRoleBinding(ctx); err != nil {
		return fmt.Errorf("failed to delete RoleBinding: %w", err)
	}

	return nil
}

// ignoreAlreadyExists returns nil if the error is "already exists",
// making resource creation idempotent.
func ignoreAlreadyExists(err error) error {
	if errors.IsAlreadyExists(err) {
		return nil
	}
	return err
}

// ignoreNotFound returns nil if the error is "not found", making resource
// deletion idempotent.
func ignoreNotFound(err error) error {
	if errors.IsNotFound(err) {
		return nil
	}
	return err
}
