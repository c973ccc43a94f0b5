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
	"strings"

	authv1 "k8s.io/api/authorization/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// PermissionCheck represents a single permission check result.
type PermissionCheck struct {
	Resource string
	Verb     string
	Allowed  bool
	Reason   string
}

// CheckPermissions verifies the current user can create the collector
// Jobs and their RBAC, and read back the sample ConfigMaps. Returns the
// individual check results and an error listing any missing permissions.
func (d *Deployer) CheckPermissions(ctx context.Context) ([]PermissionCheck, error) {
	requiredChecks := []struct {
		resource string
		verb     string
	}{
		{"serviceaccounts", "create"},
		{"roles", "create"},
		{"rolebindings", "create"},
		{"jobs", "create"},
		{"jobs", "delete"},
		{"configmaps", "get"},
		{"configmaps", "delete"},
	}

	checks := make([]PermissionCheck, 0, len(requiredChecks))
	var missingPermissions []string

	for _, check := range requiredChecks {
		allowed, reason, err := d.checkPermission(ctx, check.resource, check.verb)
		if err != nil {
			return checks, fmt.Errorf("failed to check permission for %s %s: %w", check.verb, check.resource, err)
		}

		checks = append(checks, PermissionCheck{
			Resource: check.resource,
			Verb:     check.verb,
			Allowed:  allowed,
			Reason:   reason,
		})

		if !allowed {
			missingPermissions = append(missingPermissions,
				fmt.Sprintf("%s %s (namespace %q)", check.verb, check.resource, d.config.Namespace))
		}
	}

	if len(missingPermissions) > 0 {
		return checks, fmt.Errorf("missing required permissions:\n  - %s",
			strings.Join(missingPermissions, "\n  - "))
	}

	return checks, nil
}

// checkPermission checks a single verb/resource pair in the collector
// namespace via SelfSubjectAccessReview.
func (d *Deployer) checkPermission(ctx context.Context, resource, verb string) (bool, string, error) {
	review := &authv1.SelfSubjectAccessReview{
		Spec: authv1.SelfSubjectAccessReviewSpec{
			ResourceAttributes: &authv1.ResourceAttributes{
				Verb:      verb,
				Resource:  resource,
				Namespace: d.config.Namespace,
			},
		},
	}

	result, err := d.clientset.AuthorizationV1().SelfSubjectAccessReviews().Create(ctx, review, metav1.CreateOptions{})
	if err != nil {
		return false, "", err
	}

	return result.Status.Allowed, result.Status.Reason, nil
}
