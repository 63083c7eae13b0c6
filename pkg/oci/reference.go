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

package oci

import (
	"fmt"
	"strings"

	"github.com/distribution/reference"

	apperrors "github.com/NVIDIA/kubeconsole/pkg/errors"
)

// URIScheme is the URI scheme for OCI registry output (e.g., "oci://ghcr.io/org/repo:tag").
const URIScheme = "oci://"

// Reference represents a parsed output target, which can be either an OCI registry
// reference or a local file path.
type Reference struct {
	// IsOCI indicates whether this is an OCI registry reference (true) or local path (false).
	IsOCI bool
	// Registry is the OCI registry host (e.g., "ghcr.io", "localhost:5000").
	Registry string
	// Repository is the repository path (e.g., "nvidia/workloads").
	Repository string
	// Tag is the artifact tag. Empty means the caller applies a default.
	Tag string
	// LocalPath is the local path for non-OCI output.
	LocalPath string
}

// IsOCITarget reports whether target uses the oci:// scheme.
func IsOCITarget(target string) bool {
	return strings.HasPrefix(target, URIScheme)
}

// ParseOutputTarget parses an output target string to detect an OCI URI or local path.
// For OCI URIs (oci://registry/repository:tag), it extracts the components.
// Digest references are rejected since a push needs a tag.
func ParseOutputTarget(target string) (*Reference, error) {
	if !IsOCITarget(target) {
		return &Reference{
			IsOCI:     false,
			LocalPath: target,
		}, nil
	}

	ref, err := reference.ParseNormalizedNamed(strings.TrimPrefix(target, URIScheme))
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeInvalidRequest, "invalid OCI reference", err,
			map[string]any{"target": target})
	}
	if _, ok := ref.(reference.Digested); ok {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest, "OCI reference must use a tag, not a digest",
			map[string]any{"target": target})
	}

	out := &Reference{
		IsOCI:      true,
		Registry:   reference.Domain(ref),
		Repository: reference.Path(ref),
	}
	if tagged, ok := ref.(reference.Tagged); ok {
		out.Tag = tagged.Tag()
	}
	return out, nil
}

// String returns the full reference string.
// For OCI references: "oci://registry/repository:tag" (or without tag if empty).
// For local paths: the local path.
func (r *Reference) String() string {
	if !r.IsOCI {
		return r.LocalPath
	}
	return URIScheme + r.ImageReference()
}

// Repo returns "registry/repository".
func (r *Reference) Repo() string {
	return fmt.Sprintf("%s/%s", r.Registry, r.Repository)
}

// ImageReference returns the image reference without the oci:// scheme.
// Returns empty string for non-OCI references.
func (r *Reference) ImageReference() string {
	if !r.IsOCI {
		return ""
	}
	if r.Tag == "" {
		return r.Repo()
	}
	return fmt.Sprintf("%s:%s", r.Repo(), r.Tag)
}

// WithTag returns a copy of the reference with the specified tag.
// For non-OCI references, returns the same reference unchanged.
func (r *Reference) WithTag(tag string) *Reference {
	if !r.IsOCI {
		return r
	}
	out := *r
	out.Tag = tag
	return &out
}

// WithDefaultTag returns r, or a copy tagged with tag when r has no tag.
func (r *Reference) WithDefaultTag(tag string) *Reference {
	if !r.IsOCI || r.Tag != "" {
		return r
	}
	return r.WithTag(tag)
}
