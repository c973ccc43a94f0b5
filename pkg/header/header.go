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

// Package header provides the kind/apiVersion/metadata envelope shared by
// bondctl documents, following Kubernetes-style resource conventions.
package header

import (
	"time"
)

// Kind represents the type of a bondctl document.
type Kind string

// Valid Kind constants.
const (
	// KindSampleSet identifies the raw per-node counter sample document
	// produced by the collect command and handed to the fleet reporter.
	KindSampleSet Kind = "SampleSet"
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	return string(k)
}

// IsValid checks if the Kind is one of the recognized kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindSampleSet:
		return true
	default:
		return false
	}
}

// Header contains metadata and versioning information for bondctl documents.
type Header struct {
	// Kind is the type of the document.
	Kind Kind `json:"kind,omitempty" yaml:"kind,omitempty"`

	// APIVersion is the schema version of the document.
	APIVersion string `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`

	// Metadata contains key-value pairs with metadata about the document.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Init initializes the Header with the specified kind, apiVersion, and
// tool version, stamping the current UTC time into Metadata.
func (h *Header) Init(kind Kind, apiVersion, version string) {
	h.Kind = kind
	h.APIVersion = apiVersion
	h.Metadata = make(map[string]string)

	h.Metadata["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	if version != "" {
		h.Metadata["version"] = version
	}
}

// GetKind returns the document kind.
func (h Header) GetKind() Kind {
	return h.Kind
}

// GetMetadata returns the document metadata, never nil.
func (h Header) GetMetadata() map[string]string {
	if h.Metadata == nil {
		return map[string]string{}
	}
	return h.Metadata
}

// SetMetadata adds a metadata key-value pair, initializing the map if needed.
func (h *Header) SetMetadata(key, value string) {
	if h.Metadata == nil {
		h.Metadata = make(map[string]string)
	}
	h.Metadata[key] = value
}
