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

// Package k8s provides Kubernetes integration for kubeconsole.
//
// # Sub-packages
//
// client: cluster registry with typed and dynamic clients per cluster
//
//	reg, err := client.LoadRegistry(path)
//	c, err := reg.Get("prod")
//
// Workload reads and writes live in pkg/store, which consumes these clients.
package k8s
