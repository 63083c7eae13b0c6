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

// Package oci publishes rendered workload manifests to OCI registries.
//
// Each manifest file becomes one layer with media type
// "application/vnd.nvidia.kubeconsole.manifest.v1+yaml", titled with the
// file name. The layers are referenced by an OCI 1.1 image manifest whose
// artifact type is "application/vnd.nvidia.kubeconsole.manifests.v1", so
// registries store the set as a non-runnable artifact.
//
// # Usage
//
//	ref, err := oci.ParseOutputTarget("oci://ghcr.io/acme/workloads:v1")
//	if err != nil {
//	    return err
//	}
//	res, err := oci.Push(ctx, []oci.File{{Name: "deployment-web.yaml", Content: text}},
//	    oci.PushOptions{Reference: ref})
//
// PushTo and Fetch work against any oras.Target, such as an in-memory store
// or an OCI image layout.
//
// # Authentication
//
// Credentials are loaded from the Docker configuration (~/.docker/config.json)
// through the ORAS credentials package. PlainHTTP and InsecureTLS support
// local development registries.
package oci
