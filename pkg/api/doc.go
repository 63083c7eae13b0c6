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

// Package api wires the kcd daemon: structured logging, the cluster registry,
// manifest stores and the session API, served by pkg/server.
//
// Usage:
//
//	import (
//	    "log"
//	    "github.com/NVIDIA/kubeconsole/pkg/api"
//	)
//
//	func main() {
//	    if err := api.Serve(); err != nil {
//	        log.Fatalf("server error: %v", err)
//	    }
//	}
//
// # Endpoints
//
// Application endpoints (with rate limiting) are listed in pkg/session.
// System endpoints (no rate limiting):
//   - GET /health  - Health check (liveness probe)
//   - GET /ready   - Readiness check
//   - GET /metrics - Prometheus metrics
//
// # Configuration
//
// The server is configured via environment variables:
//   - PORT: HTTP server port (default: 8080)
//   - LOG_LEVEL: Logging level (debug, info, warn, error)
//   - KCD_CLUSTERS: cluster registry file (YAML or JSON); without it the
//     local kubeconfig or in-cluster config is the only cluster
//   - KCD_NAMESPACE_FILTER: when true, namespace listings only include
//     namespaces where the caller may list deployments
//
// A cluster registry file looks like:
//
//	clusters:
//	  - id: prod
//	    kubeconfig: /etc/kcd/prod.kubeconfig
//	  - id: staging
//	    context: staging-admin
//
// Under a systemd Type=notify unit, kcd reports READY=1 once listening and
// STOPPING=1 on shutdown.
//
// Version information is set at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/kubeconsole/pkg/api.version=1.0.0'"
package api
