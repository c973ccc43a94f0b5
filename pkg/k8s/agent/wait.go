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
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/watch"
)

// waitForJobCompletion waits for the node's collector Job to complete
// successfully or fail, using the watch API rather than polling.
func (d *Deployer) waitForJobCompletion(ctx context.Context, node string, timeout time.Duration) error {
	jobName := d.JobName(node)

	watcher, err := d.clientset.BatchV1().Jobs(d.config.Namespace).Watch(
		ctx,
		metav1.ListOptions{
			FieldSelector: fmt.Sprintf("metadata.name=%s", jobName),
			Watch:         true,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to watch Job: %w", err)
	}
	defer watcher.Stop()

	// The Job may have finished before the watch was established.
	current, err := d.clientset.BatchV1().Jobs(d.config.Namespace).Get(ctx, jobName, metav1.GetOptions{})
	if err == nil {
		if done, jobErr := jobFinished(current); done {
			return jobErr
		}
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		select {
		case <-timeoutCtx.Done():
			return fmt.Errorf("timeout waiting for Job completion after %v", timeout)

		case event, ok := <-watcher.ResultChan():
			if !ok {
				return fmt.Errorf("watch channel closed unexpectedly")
			}

			if event.Type == watch.Error {
				return fmt.Errorf("watch error: %v", event.Object)
			}

			job, ok := event.Object.(*batchv1.Job)
			if !ok || job.Name != jobName {
				continue
			}

			if done, jobErr := jobFinished(job); done {
				return jobErr
			}
		}
	}
}

// jobFinished reports whether the Job has reached a terminal condition,
// returning the failure as an error.
func jobFinished(job *batchv1.Job) (bool, error) {
	for _, condition := range job.Status.Conditions {
		if condition.Type == batchv1.JobComplete && condition.Status == corev1.ConditionTrue {
			return true, nil
		}
		if condition.Type == batchv1.JobFailed && condition.Status == corev1.ConditionTrue {
			return true, fmt.Errorf("job failed: %s", condition.Message)
		}
	}
	return false, nil
}

// GetPodLogs retrieves logs from a node's collector Pod, used to surface
// the failure cause when a Job does not complete.
func (d *Deployer) GetPodLogs(ctx context.Context, node string) (string, error) {
	pods, err := d.clientset.CoreV1().Pods(d.config.Namespace).List(ctx, metav1.ListOptions{
		LabelSelector: fmt.Sprintf("app.kubernetes.io/instance=%s", d.JobName(node)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to list Pods: %w", err)
	}

	if len(pods.Items) == 0 {
		return "", fmt.Errorf("no Pods found for Job %s", d.JobName(node))
	}

	pod := pods.Items[0]
	req := d.clientset.CoreV1().Pods(d.config.Namespace).GetLogs(pod.Name, &corev1.PodLogOptions{})

	logs, err := req.Stream(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to stream logs: %w", err)
	}
	defer logs.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, logs); err != nil {
		return "", fmt.Errorf("failed to read logs: %w", err)
	}

	return buf.String(), nil
}
