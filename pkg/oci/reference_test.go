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
	"testing"

	apperrors "github.com/NVIDIA/kubeconsole/pkg/errors"
)

func TestParseOutputTarget(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantIsOCI bool
		wantReg   string
		wantRepo  string
		wantTag   string
		wantPath  string
		wantErr   bool
	}{
		{
			name:     "local file",
			input:    "./web.yaml",
			wantPath: "./web.yaml",
		},
		{
			name:     "stdout",
			input:    "-",
			wantPath: "-",
		},
		{
			name:      "OCI with tag",
			input:     "oci://ghcr.io/nvidia/workloads:v1.0.0",
			wantIsOCI: true,
			wantReg:   "ghcr.io",
			wantRepo:  "nvidia/workloads",
			wantTag:   "v1.0.0",
		},
		{
			name:      "OCI without tag",
			input:     "oci://ghcr.io/nvidia/workloads",
			wantIsOCI: true,
			wantReg:   "ghcr.io",
			wantRepo:  "nvidia/workloads",
		},
		{
			name:      "OCI with port and tag",
			input:     "oci://localhost:5000/test/web:v1",
			wantIsOCI: true,
			wantReg:   "localhost:5000",
			wantRepo:  "test/web",
			wantTag:   "v1",
		},
		{
			name:      "OCI short name is normalized",
			input:     "oci://web:v2",
			wantIsOCI: true,
			wantReg:   "docker.io",
			wantRepo:  "library/web",
			wantTag:   "v2",
		},
		{
			name:    "OCI uppercase repository",
			input:   "oci://ghcr.io/NVIDIA/Web:v1",
			wantErr: true,
		},
		{
			name:    "OCI digest",
			input:   "oci://ghcr.io/nvidia/web@sha256:" + "a3ed95caeb02ffe68cdd9fd84406680ae93d633cb16422d00e8a7c22955b46d4",
			wantErr: true,
		},
		{
			name:    "OCI empty",
			input:   "oci://",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseOutputTarget(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %+v", tt.input, ref)
				}
				if !apperrors.HasCode(err, apperrors.ErrCodeInvalidRequest) {
					t.Errorf("expected INVALID_REQUEST, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ref.IsOCI != tt.wantIsOCI {
				t.Errorf("IsOCI = %v, want %v", ref.IsOCI, tt.wantIsOCI)
			}
			if ref.Registry != tt.wantReg {
				t.Errorf("Registry = %q, want %q", ref.Registry, tt.wantReg)
			}
			if ref.Repository != tt.wantRepo {
				t.Errorf("Repository = %q, want %q", ref.Repository, tt.wantRepo)
			}
			if ref.Tag != tt.wantTag {
				t.Errorf("Tag = %q, want %q", ref.Tag, tt.wantTag)
			}
			if ref.LocalPath != tt.wantPath {
				t.Errorf("LocalPath = %q, want %q", ref.LocalPath, tt.wantPath)
			}
		})
	}
}

func TestReferenceFormatting(t *testing.T) {
	ref := &Reference{IsOCI: true, Registry: "ghcr.io", Repository: "nvidia/workloads"}

	if got := ref.String(); got != "oci://ghcr.io/nvidia/workloads" {
		t.Errorf("String() = %q", got)
	}
	if got := ref.Repo(); got != "ghcr.io/nvidia/workloads" {
		t.Errorf("Repo() = %q", got)
	}

	tagged := ref.WithDefaultTag("v0.3.0")
	if got := tagged.ImageReference(); got != "ghcr.io/nvidia/workloads:v0.3.0" {
		t.Errorf("ImageReference() = %q", got)
	}
	if ref.Tag != "" {
		t.Error("WithDefaultTag must not modify the receiver")
	}
	if got := tagged.WithDefaultTag("latest").Tag; got != "v0.3.0" {
		t.Errorf("WithDefaultTag kept %q, want v0.3.0", got)
	}
	if got := tagged.WithTag("v2").String(); got != "oci://ghcr.io/nvidia/workloads:v2" {
		t.Errorf("WithTag().String() = %q", got)
	}

	local := &Reference{LocalPath: "out.yaml"}
	if local.String() != "out.yaml" || local.ImageReference() != "" {
		t.Errorf("unexpected local formatting %q %q", local.String(), local.ImageReference())
	}
	if local.WithTag("v1") != local {
		t.Error("WithTag on a local reference should return it unchanged")
	}
}

func TestIsOCITarget(t *testing.T) {
	if !IsOCITarget("oci://ghcr.io/a/b") {
		t.Error("expected oci target")
	}
	if IsOCITarget("ghcr.io/a/b") {
		t.Error("expected non-oci target")
	}
}
