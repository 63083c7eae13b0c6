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

package workflow

import (
	"context"

	"github.com/NVIDIA/kubeconsole/pkg/manifest"
	"github.com/NVIDIA/kubeconsole/pkg/workload"
)

// State is a step of the apply workflow.
type State string

const (
	StateLoading        State = "Loading"
	StateReady          State = "Ready"
	StateDryRunning     State = "DryRunning"
	StateConfirmPending State = "ConfirmPending"
	StateSubmitting     State = "Submitting"
	StateDone           State = "Done"
	// StateFailed follows a failed submit. It accepts the same operations as
	// StateReady; the editable buffer is left untouched.
	StateFailed State = "Failed"
)

// Mode selects the editable representation.
type Mode string

const (
	ModeForm Mode = "form"
	ModeYAML Mode = "yaml"
)

// ParseMode resolves a mode name.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeForm, ModeYAML:
		return Mode(s), true
	default:
		return "", false
	}
}

// Store loads and applies manifests against a live cluster.
type Store interface {
	// Load returns the stored manifest text of an existing workload.
	Load(ctx context.Context, kind workload.Kind, namespace, name string) (string, error)

	// Apply creates or updates the object described by text. Cluster-side
	// rejections are reported through ApplyResult; the error is reserved for
	// transport failures.
	Apply(ctx context.Context, text string, dryRun bool) (*ApplyResult, error)
}

// ApplyResult is the outcome of a dry-run or apply.
type ApplyResult struct {
	Success bool   `json:"success"`
	Created bool   `json:"created"`
	Message string `json:"message,omitempty"`
}

// DryRunResult is the advisory result of the last dry-run.
type DryRunResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	// Local is set when the manifest was rejected before reaching the cluster.
	Local bool `json:"local,omitempty"`
}

// Review is what the user confirms before a submit.
type Review struct {
	Text string `json:"text"`
	// Diff against the loaded manifest; nil when creating.
	Diff *manifest.Diff `json:"diff,omitempty"`
}

// Failure is the error attached to a session.
type Failure struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Snapshot is a point-in-time copy of the controller state.
type Snapshot struct {
	State          State            `json:"state"`
	Mode           Mode             `json:"mode"`
	Kind           workload.Kind    `json:"kind"`
	Editing        bool             `json:"editing"`
	Namespace      string           `json:"namespace,omitempty"`
	Name           string           `json:"name,omitempty"`
	Model          *workload.Model  `json:"model,omitempty"`
	Text           string           `json:"text,omitempty"`
	Original       string           `json:"original,omitempty"`
	Issues         []workload.Issue `json:"issues,omitempty"`
	DryRun         *DryRunResult    `json:"dryRun,omitempty"`
	DryRunInFlight bool             `json:"dryRunInFlight"`
	Review         *Review          `json:"review,omitempty"`
	Result         *ApplyResult     `json:"result,omitempty"`
	Error          *Failure         `json:"error,omitempty"`
}
