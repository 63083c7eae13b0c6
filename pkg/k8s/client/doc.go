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

// Package client builds Kubernetes clients and resolves cluster IDs to them.
//
// A console can manage several clusters. The Registry maps each cluster ID to
// a kubeconfig path and context, builds typed and dynamic clients on first use
// and caches them for the life of the process:
//
//	reg, err := client.LoadRegistry("/etc/kubeconsole/clusters.yaml")
//	if err != nil {
//	    return err
//	}
//	c, err := reg.Get("prod")
//	if err != nil {
//	    return err
//	}
//	obj, err := c.Dynamic.Resource(gvr).Namespace("default").Get(ctx, "web", metav1.GetOptions{})
//
// Without a registry file the registry holds one cluster, "default", resolved by
// auto-discovery:
//   - KUBECONFIG environment variable
//   - ~/.kube/config
//   - In-cluster service account (when running as a Pod)
//
// Unknown cluster IDs yield NOT_FOUND errors; clusters whose clients cannot be
// built yield SERVICE_UNAVAILABLE and are retried on the next call.
//
// For tests, inject fakes with WithBuildFunc or Register:
//
//	reg.Register("test", &client.Clients{
//	    Kube:    fake.NewClientset(),
//	    Dynamic: dynamicfake.NewSimpleDynamicClient(scheme),
//	})
package client
