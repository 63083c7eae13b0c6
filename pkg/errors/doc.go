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

// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// The manifest engine and the apply workflow classify every failure with an
// ErrorCode so callers (CLI, HTTP handlers) can decide how to surface it:
//
//   - ErrCodeManifestSyntax: text could not be decoded; blocks mode switches and submit
//   - ErrCodeUnsupportedKind: kind outside Deployment, StatefulSet, DaemonSet, Rollout, Job, CronJob
//   - ErrCodeDryRunRejected: validation failed; advisory, edits stay intact
//   - ErrCodeApplyRejected: the cluster refused the write (conflict, admission)
//   - ErrCodeUnavailable: the cluster could not be reached
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeApplyRejected,
//	    "apply rejected",
//	    cause,
//	    map[string]any{
//	        "kind": "Deployment",
//	        "name": name,
//	    },
//	)
//
//	if errors.CodeOf(err) == errors.ErrCodeApplyRejected {
//	    // keep the editor open
//	}
package errors
