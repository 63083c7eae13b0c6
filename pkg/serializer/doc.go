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

// Package serializer provides encoding and decoding of structured data in multiple formats.
//
// # Supported Formats
//
// JSON:
//   - Machine-parseable, used for API responses and --format json output
//
// YAML:
//   - Human-readable, used for model files, cluster registry files and CLI output
//   - Goes through sigs.k8s.io/yaml, so json struct tags and custom JSON
//     (un)marshalers apply in both directions
//
// Table:
//   - Flattened FIELD/VALUE listing for terminals
//   - Write-only (no deserialization support)
//
// Manifest text itself never goes through this package for encoding: manifests
// are rendered by pkg/manifest, which owns field order and comments. ReadSource
// hands raw manifest text to callers unchanged.
//
// # Usage - Encoding
//
//	w := serializer.NewFileWriterOrStdout(serializer.FormatYAML, path)
//	defer w.Close()
//	if err := w.Serialize(ctx, model); err != nil {
//	    return err
//	}
//
// # Usage - Decoding
//
//	model, err := serializer.FromFile[workload.Model]("web.yaml")
//
// # HTTP
//
//	var req createRequest
//	if err := serializer.ReadJSON(r, &req); err != nil { ... }
//	serializer.RespondJSON(w, http.StatusOK, snapshot)
package serializer
