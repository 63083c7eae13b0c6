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

// Package store connects the apply workflow to Kubernetes clusters.
//
// Store implements workflow.Store over the dynamic client, so every supported
// workload kind, Argo Rollouts included, goes through the same code path:
//
//	s, err := store.ForCluster(registry, "prod")
//	text, err := s.Load(ctx, workload.KindDeployment, "default", "web")
//	res, err := s.Apply(ctx, text, true) // server-side dry run
//
// Loaded manifests drop managedFields and status; resourceVersion is kept so
// an update made from a stale manifest fails with a conflict. Apply creates
// objects that do not exist and updates those that do. API server rejections
// come back as an unsuccessful ApplyResult carrying the server's message, while
// transport failures are returned as SERVICE_UNAVAILABLE errors.
//
// Directory serves the namespace and secret pickers, optionally dropping
// namespaces the caller may not use according to an AccessChecker built on
// SelfSubjectAccessReview.
package store
