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

// Package cli implements kcctl, the command-line client of the workload
// manifest console.
//
// # Commands
//
// render - Render a manifest from a workload model:
//
//	kcctl render --kind deployment --model web.yaml [--base live.yaml] [-o web-deploy.yaml]
//
// Without --model the default model of the kind is rendered. With --base the
// model is overlaid onto an existing manifest and unknown fields are kept.
// An output of the form oci://registry/repository[:tag] publishes the
// manifest as an OCI artifact instead of writing a file.
//
// parse - Parse a manifest into a workload model:
//
//	kubectl get deploy web -o yaml | kcctl parse --format json
//
// diff - Compare a live and a proposed manifest:
//
//	kcctl diff --live live.yaml --proposed web.yaml [--exit-code]
//
// apply - Dry-run, review, confirm and apply a manifest:
//
//	kcctl apply -f web.yaml [--dry-run] [--yes]
//
// The apply flow drives the same workflow controller as the session API:
// nothing is persisted before the reviewed text is confirmed, and a
// rejected apply leaves the cluster untouched.
//
// kinds, namespaces, secrets - List supported kinds, the namespaces of a
// cluster and the secret names of a namespace.
//
// # Global Flags
//
//	--log-level    Log level: debug, info, warn, error (env: LOG_LEVEL)
//	--help, -h     Show command help
//	--version, -v  Show version information
//
// # Cluster Selection
//
//	--clusters     Cluster registry file (env: KCCTL_CLUSTERS)
//	--cluster, -c  Cluster ID within the registry (env: KCCTL_CLUSTER)
//	--kubeconfig   Kubeconfig path when no registry is given (env: KUBECONFIG)
//	--context      Kubeconfig context when no registry is given
//
// # Output Formats
//
// Structured output (parse, kinds, namespaces, secrets, diff --format) is
// written as YAML (default), JSON or a flattened table. Manifests are always
// written as YAML text.
//
// # Exit Codes
//
//	0  Success, or an apply declined at the prompt
//	1  Error, or differing manifests with diff --exit-code
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/kubeconsole/pkg/cli.version=1.0.0'"
package cli
