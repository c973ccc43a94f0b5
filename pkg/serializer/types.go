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

// Package serializer renders bondctl documents to JSON, YAML, or a
// flattened table, writing to stdout, files, or Kubernetes ConfigMaps
// (cm://namespace/name URIs), and reads them back for the fleet pipeline.
package serializer

import "context"

// Serializer is an interface for rendering a finished document. The
// context matters for implementations that perform I/O against the
// Kubernetes API.
type Serializer interface {
	Serialize(ctx context.Context, doc any) error
}

// Closer is an optional interface that Serializers can implement
// if they need to release resources (e.g., close file handles).
type Closer interface {
	Close() error
}
