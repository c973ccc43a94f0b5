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

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/utils/ptr"
)

// ensureJob deletes any stale collector Job for the node and creates a
// fresh one.
func (d *Deployer) ensureJob(ctx context.Context, node string) error {
	jobName := d.JobName(node)

	propagationPolicy := metav1.DeletePropagationForeground
	err := d.clientset.BatchV1().Jobs(d.config.Namespace).Delete(
		ctx,
		jobName,
		metav1.DeleteOptions{
			PropagationPolicy: &propagationPolicy,
		},
	)
	if err != nil && !errors.IsNotFound(err) {
		return fmt.Errorf("failed to delete existing Job: %w", err)
	}

	jobExisted := err == nil
	if jobExisted {
		if waitErr := d.waitForJobDeletion(ctx, jobName); waitErr != nil {
			return fmt.Errorf("timeout waiting for Job deletion: %w", waitErr)
		}
	}

	job := d.buildJob(node)
	_, err = d.clientset.BatchV1().Jobs(d.config.Namespace).
		Create(ctx, job, metav1.CreateOptions{})
	if err != nil {
		return fmt.Errorf("failed to create Job: %w", err)
	}

	return nil
}

// buildJob constructs the collector Job specification for a node. The Pod
// is pinned to the node with spec.nodeName and runs in the host network
// namespace so the bonding sysfs tree and ethtool stats describe the
// node's real interfaces.
func (d *Deployer) buildJob(node string) *batchv1.Job {
	jobName := d.JobName(node)

	args := fmt.Sprintf("/ko-app/bondctl collect -o %s", d.OutputURI(node))
	if d.config.BondFilter != "" {
		args = fmt.Sprintf("%s --bond %s", args, d.config.BondFilter)
	}
	if d.config.Debug {
		args = fmt.Sprintf("/ko-app/bondctl --debug collect -o %s", d.OutputURI(node))
	}

	labels := map[string]string{
		"app.kubernetes.io/name":     appLabel,
		"app.kubernetes.io/instance": jobName,
	}

	return &batchv1.Job{
		ObjectMeta: metav1.ObjectMeta{
			Name:      jobName,
			Namespace: d.config.Namespace,
			Labels:    labels,
		},
		Spec: batchv1.JobSpec{
			Completions:             ptr.To(int32(1)),
			Parallelism:             ptr.To(int32(1)),
			CompletionMode:          ptr.To(batchv1.NonIndexedCompletion),
			BackoffLimit:            ptr.To(int32(0)),
			TTLSecondsAfterFinished: ptr.To(int32(3600)),
			ActiveDeadlineSeconds:   ptr.To(int64(600)),
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels: labels,
				},
				Spec: corev1.PodSpec{
					ServiceAccountName: d.config.ServiceAccountName,
					RestartPolicy:      corev1.RestartPolicyNever,
					NodeName:           node,
					HostNetwork:        true,
					Tolerations:        d.config.Tolerations,
					ImagePullSecrets:   toLocalObjectReferences(d.config.ImagePullSecrets),
					Containers: []corev1.Container{
						{
							Name:    appLabel,
							Image:   d.config.Image,
							Command: []string{"/bin/sh", "-c"},
							Args:    []string{args},
							Env: []corev1.EnvVar{
								{
									Name: "NODE_NAME",
									ValueFrom: &corev1.EnvVarSource{
										FieldRef: &corev1.ObjectFieldSelector{
											FieldPath: "spec.nodeName",
										},
									},
								},
							},
							Resources: corev1.ResourceRequirements{
								Requests: corev1.ResourceList{
									corev1.ResourceCPU:    resource.MustParse("100m"),
									corev1.ResourceMemory: resource.MustParse("64Mi"),
								},
								Limits: corev1.ResourceList{
									corev1.ResourceCPU:    resource.MustParse("500m"),
									corev1.ResourceMemory: resource.MustParse("256Mi"),
								},
							},
							SecurityContext: &corev1.SecurityContext{
								// ethtool stats collection needs NET_ADMIN
								// in the host network namespace.
								Capabilities: &corev1.Capabilities{
									Add: []corev1.Capability{"NET_ADMIN"},
								},
							},
							VolumeMounts: []corev1.VolumeMount{
								{
									Name:      "sys",
									MountPath: "/sys",
									ReadOnly:  true,
								},
							},
						},
					},
					Volumes: []corev1.Volume{
						{
							Name: "sys",
							VolumeSource: corev1.VolumeSource{
								HostPath: &corev1.HostPathVolumeSource{
									Path: "/sys",
									Type: ptr.To(corev1.HostPathDirectory),
								},
							},
						},
					},
				},
			},
		},
	}
}

// deleteJob deletes the collector Job for a node. No-op if missing.
func (d *Deployer) deleteJob(ctx context.Context, node string) error {
	propagationPolicy := metav1.DeletePropagationForeground
	err := d.clientset.BatchV1().Jobs(d.config.Namespace).Delete(
		ctx,
		d.JobName(node),
		metav1.DeleteOptions{
			PropagationPolicy: &propagationPolicy,
		},
	)
	return ignoreNotFound(err)
}

// deleteConfigMap deletes the sample ConfigMap for a node. No-op if missing.
func (d *Deployer) deleteConfigMap(ctx context.Context, node string) error {
	err := d.clientset.CoreV1().ConfigMaps(d.config.Namespace).
		Delete(ctx, d.ConfigMapName(node), metav1.DeleteOptions{})
	return ignoreNotFound(err)
}

// waitForJobDeletion waits for a Job to be fully removed before a
// replacement is created.
func (d *Deployer) waitForJobDeletion(ctx context.Context, jobName string) error {
	timeout := 30 * time.Second
	return wait.PollUntilContextTimeout(ctx, 500*time.Millisecond, timeout, true,
		func(ctx context.Context) (bool, error) {
			_, err := d.clientset.BatchV1().Jobs(d.config.Namespace).
				Get(ctx, jobName, metav1.GetOptions{})
			if errors.IsNotFound(err) {
				return true, nil
			}
			if err != nil {
				return false, err
			}
			return false, nil
		},
	)
}

// toLocalObjectReferences converts secret names to LocalObjectReferences.
func toLocalObjectReferences(names []string) []corev1.LocalObjectReference {
	if len(names) == 0 {
		return nil
	}
	refs := make([]corev1.LocalObjectReference, len(names))
	for i, name := range names {
		refs[i] = corev1.LocalObjectReference{Name: name}
	}
	return refs
}
