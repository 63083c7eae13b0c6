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
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content"
	"oras.land/oras-go/v2/content/memory"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"

	"github.com/NVIDIA/kubeconsole/pkg/defaults"
	apperrors "github.com/NVIDIA/kubeconsole/pkg/errors"
)

const (
	// ArtifactType is the artifact type of published workload manifests.
	ArtifactType = "application/vnd.nvidia.kubeconsole.manifests.v1"
	// ManifestMediaType is the layer media type of a single manifest file.
	ManifestMediaType = "application/vnd.nvidia.kubeconsole.manifest.v1+yaml"
)

// File is a manifest file carried as one artifact layer.
type File struct {
	Name    string
	Content []byte
}

// PushOptions configures the OCI push operation.
type PushOptions struct {
	// Reference is the tagged registry target.
	Reference *Reference
	// PlainHTTP uses HTTP instead of HTTPS for the registry connection.
	PlainHTTP bool
	// InsecureTLS skips TLS certificate verification.
	InsecureTLS bool
	// Annotations are added to the artifact manifest.
	Annotations map[string]string
}

// PushResult contains the result of a successful OCI push.
type PushResult struct {
	// Digest is the SHA256 digest of the pushed artifact manifest.
	Digest string
	// Reference is the full image reference (registry/repository:tag).
	Reference string
}

// Push publishes files as one artifact to the registry named by opts.
// Docker credential helpers supply authentication.
func Push(ctx context.Context, files []File, opts PushOptions) (*PushResult, error) {
	ref := opts.Reference
	if ref == nil || !ref.IsOCI {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "OCI reference is required")
	}
	if ref.Tag == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "tag is required to push OCI artifact")
	}

	repo, err := remote.NewRepository(ref.Repo())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "failed to initialize remote repository", err)
	}
	repo.PlainHTTP = opts.PlainHTTP
	repo.Client = createAuthClient(opts.PlainHTTP, opts.InsecureTLS)

	slog.Info("pushing manifests as OCI artifact",
		"reference", ref.ImageReference(),
		"files", len(files),
	)

	desc, err := PushTo(ctx, repo, ref.Tag, files, opts.Annotations)
	if err != nil {
		return nil, err
	}

	slog.Info("OCI artifact pushed", "reference", ref.ImageReference(), "digest", desc.Digest.String())
	return &PushResult{
		Digest:    desc.Digest.String(),
		Reference: ref.ImageReference(),
	}, nil
}

// PushTo packs files in memory and copies the tagged artifact to dst.
func PushTo(ctx context.Context, dst oras.Target, tag string, files []File, annotations map[string]string) (ociv1.Descriptor, error) {
	if len(files) == 0 {
		return ociv1.Descriptor{}, apperrors.New(apperrors.ErrCodeInvalidRequest, "no manifests to push")
	}

	store := memory.New()
	desc, err := pack(ctx, store, files, annotations)
	if err != nil {
		return ociv1.Descriptor{}, err
	}
	if err := store.Tag(ctx, desc, tag); err != nil {
		return ociv1.Descriptor{}, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to tag artifact", err)
	}

	out, err := oras.Copy(ctx, store, tag, dst, tag, oras.DefaultCopyOptions)
	if err != nil {
		return ociv1.Descriptor{}, apperrors.WrapWithContext(apperrors.ErrCodeUnavailable,
			"failed to push artifact to registry", err, map[string]any{"tag": tag})
	}
	return out, nil
}

// pack stores one layer per file and an OCI 1.1 manifest referencing them.
func pack(ctx context.Context, store content.Pusher, files []File, annotations map[string]string) (ociv1.Descriptor, error) {
	seen := make(map[string]bool, len(files))
	layers := make([]ociv1.Descriptor, 0, len(files))
	for _, f := range files {
		if f.Name == "" || seen[f.Name] {
			return ociv1.Descriptor{}, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest,
				"manifest file names must be unique and non-empty", map[string]any{"name": f.Name})
		}
		seen[f.Name] = true

		layer, err := oras.PushBytes(ctx, store, ManifestMediaType, f.Content)
		if err != nil {
			return ociv1.Descriptor{}, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to store manifest layer", err)
		}
		layer.Annotations = map[string]string{ociv1.AnnotationTitle: f.Name}
		layers = append(layers, layer)
	}

	desc, err := oras.PackManifest(ctx, store, oras.PackManifestVersion1_1, ArtifactType, oras.PackManifestOptions{
		Layers:              layers,
		ManifestAnnotations: annotations,
	})
	if err != nil {
		return ociv1.Descriptor{}, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to pack manifest", err)
	}
	return desc, nil
}

// Fetch reads the manifest files of the artifact tagged tag in src.
func Fetch(ctx context.Context, src oras.ReadOnlyTarget, tag string) ([]File, error) {
	desc, err := src.Resolve(ctx, tag)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeNotFound, "artifact not found", err,
			map[string]any{"tag": tag})
	}

	raw, err := content.FetchAll(ctx, src, desc)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeUnavailable, "failed to fetch artifact manifest", err)
	}
	var m ociv1.Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid artifact manifest", err)
	}
	if m.ArtifactType != ArtifactType {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest, "unexpected artifact type",
			map[string]any{"artifactType": m.ArtifactType, "expected": ArtifactType})
	}

	files := make([]File, 0, len(m.Layers))
	for i, layer := range m.Layers {
		if layer.MediaType != ManifestMediaType {
			continue
		}
		b, err := content.FetchAll(ctx, src, layer)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeUnavailable, "failed to fetch manifest layer", err)
		}
		name := layer.Annotations[ociv1.AnnotationTitle]
		if name == "" {
			name = fmt.Sprintf("manifest-%d.yaml", i)
		}
		files = append(files, File{Name: name, Content: b})
	}
	return files, nil
}

// createAuthClient creates an HTTP client with optional TLS configuration
// and Docker credential support.
func createAuthClient(plainHTTP, insecureTLS bool) *auth.Client {
	credStore, err := credentials.NewStoreFromDocker(credentials.StoreOptions{})
	if err != nil {
		slog.Debug("docker credentials unavailable", "error", err)
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   defaults.HTTPConnectTimeout,
			KeepAlive: defaults.HTTPKeepAlive,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		TLSHandshakeTimeout:   defaults.HTTPTLSHandshakeTimeout,
		ResponseHeaderTimeout: defaults.HTTPResponseHeaderTimeout,
		IdleConnTimeout:       defaults.HTTPIdleConnTimeout,
	}
	if !plainHTTP && insecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for test registries
	}

	c := &auth.Client{
		Client: &http.Client{Transport: transport, Timeout: defaults.HTTPClientTimeout},
		Cache:  auth.NewCache(),
	}
	if credStore != nil {
		c.Credential = credentials.Credential(credStore)
	}
	return c
}
