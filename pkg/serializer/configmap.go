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

package serializer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	accorev1 "k8s.io/client-go/applyconfigurations/core/v1"

	"github.com/NVIDIA/bondctl/pkg/header"
	"github.com/NVIDIA/bondctl/pkg/k8s/client"
)

// ConfigMapURIScheme prefixes output/input paths that address a
// Kubernetes ConfigMap instead of the filesystem.
const ConfigMapURIScheme = "cm://"

// configMapWriteTimeout bounds a single ConfigMap apply.
const configMapWriteTimeout = 30 * time.Second

// fieldManager identifies bondctl in Server-Side Apply operations.
const fieldManager = "bondctl"

// ConfigMapWriter writes serialized data to a Kubernetes ConfigMap.
// The ConfigMap is created if it doesn't exist, or updated if it does.
type ConfigMapWriter struct {
	namespace string
	name      string
	format    Format

	// Client overrides the kube client, used in tests. When nil the
	// singleton client is used.
	Client client.Interface
}

// NewConfigMapWriter creates a ConfigMapWriter targeting the given
// namespace and ConfigMap name.
func NewConfigMapWriter(namespace, name string, format Format) *ConfigMapWriter {
	if format.IsUnknown() {
		slog.Warn("unknown format, defaulting to JSON", "format", format)
		format = FormatJSON
	}
	return &ConfigMapWriter{
		namespace: namespace,
		name:      name,
		format:    format,
	}
}

// Serialize writes the document to the ConfigMap. The data holds:
//   - samples.{json|yaml|txt}: the serialized content
//   - format: the format used
//   - timestamp: RFC 3339 creation time
func (w *ConfigMapWriter) Serialize(ctx context.Context, doc any) error {
	writeCtx, cancel := context.WithTimeout(ctx, configMapWriteTimeout)
	defer cancel()

	kc := w.Client
	if kc == nil {
		var err error
		kc, _, err = client.GetKubeClient()
		if err != nil {
			return fmt.Errorf("failed to get kubernetes client: %w", err)
		}
	}

	content, err := encode(w.format, doc)
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	kind := ""
	timestamp := ""
	if hdr, ok := doc.(interface {
		GetKind() header.Kind
		GetMetadata() map[string]string
	}); ok {
		kind = hdr.GetKind().String()
		timestamp = hdr.GetMetadata()["timestamp"]
	}
	if timestamp == "" {
		timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	labels := map[string]string{
		"app.kubernetes.io/name": "bondctl",
	}
	if kind != "" {
		labels["app.kubernetes.io/component"] = kind
	}

	cm := accorev1.ConfigMap(w.name, w.namespace).
		WithLabels(labels).
		WithData(map[string]string{
			fmt.Sprintf("samples.%s", extension(w.format)): string(content),
			"format":    string(w.format),
			"timestamp": timestamp,
		})

	slog.Debug("applying ConfigMap",
		"namespace", w.namespace,
		"name", w.name,
		"format", w.format)

	// Server-Side Apply makes create-or-update atomic; Force takes field
	// ownership from a previous writer (CLI vs in-cluster agent).
	_, err = kc.CoreV1().ConfigMaps(w.namespace).Apply(
		writeCtx,
		cm,
		metav1.ApplyOptions{
			FieldManager: fieldManager,
			Force:        true,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to apply ConfigMap %s/%s: %w", w.namespace, w.name, err)
	}

	return nil
}

// Close is a no-op; the ConfigMapWriter holds no resources.
func (w *ConfigMapWriter) Close() error {
	return nil
}

func extension(format Format) string {
	switch format {
	case FormatYAML:
		return "yaml"
	case FormatTable:
		return "txt"
	default:
		return "json"
	}
}

// ParseConfigMapURI parses a cm://namespace/name URI into its namespace
// and name components.
func ParseConfigMapURI(uri string) (namespace, name string, err error) {
	if !strings.HasPrefix(uri, ConfigMapURIScheme) {
		return "", "", fmt.Errorf("invalid ConfigMap URI: must start with %s", ConfigMapURIScheme)
	}

	path := strings.TrimPrefix(uri, ConfigMapURIScheme)
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid ConfigMap URI format: expected %snamespace/name, got %s", ConfigMapURIScheme, uri)
	}

	namespace = strings.TrimSpace(parts[0])
	name = strings.TrimSpace(parts[1])

	if namespace == "" {
		return "", "", fmt.Errorf("invalid ConfigMap URI: namespace cannot be empty")
	}
	if name == "" {
		return "", "", fmt.Errorf("invalid ConfigMap URI: name cannot be empty")
	}

	return namespace, name, nil
}

// ReadConfigMap fetches a ConfigMap written by ConfigMapWriter and
// deserializes its content into type T.
func ReadConfigMap[T any](ctx context.Context, kc client.Interface, namespace, name string) (*T, error) {
	cm, err := kc.CoreV1().ConfigMaps(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get ConfigMap %s/%s: %w", namespace, name, err)
	}

	format := FormatJSON
	if f, ok := cm.Data["format"]; ok && !Format(f).IsUnknown() {
		format = Format(f)
	}

	content, ok := cm.Data[fmt.Sprintf("samples.%s", extension(format))]
	if !ok {
		for _, ext := range []string{"json", "yaml"} {
			if data, found := cm.Data["samples."+ext]; found {
				content = data
				format = Format(ext)
				ok = true
				break
			}
		}
	}
	if !ok {
		return nil, fmt.Errorf("ConfigMap %s/%s has no samples data", namespace, name)
	}

	reader, err := NewReader(format, strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to create reader for ConfigMap data: %w", err)
	}

	var result T
	if err := reader.Deserialize(&result); err != nil {
		return nil, fmt.Errorf("failed to deserialize ConfigMap data: %w", err)
	}

	return &result, nil
}
