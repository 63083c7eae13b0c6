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

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeNotFound, "resource not found")

	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.Message != "resource not found" {
		t.Errorf("expected message 'resource not found', got %s", err.Message)
	}
	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeInternal, "operation failed", cause)

	if err.Code != ErrCodeInternal {
		t.Errorf("expected code %s, got %s", ErrCodeInternal, err.Code)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be wrapped")
	}
}

func TestWrapWithContext(t *testing.T) {
	cause := errors.New("conflict")
	ctx := map[string]any{
		"kind": "Deployment",
		"name": "web",
	}

	err := WrapWithContext(ErrCodeApplyRejected, "apply rejected", cause, ctx)

	if err.Code != ErrCodeApplyRejected {
		t.Errorf("expected code %s, got %s", ErrCodeApplyRejected, err.Code)
	}
	if err.Context == nil {
		t.Fatal("expected context to be set")
	}
	if err.Context["name"] != "web" {
		t.Errorf("expected name to be web")
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		err      *StructuredError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(ErrCodeNotFound, "not found"),
			expected: "[NOT_FOUND] not found",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeInternal, "failed", errors.New("root cause")),
			expected: "[INTERNAL] failed: root cause",
		},
		{
			name:     "syntax error",
			err:      Wrap(ErrCodeManifestSyntax, "invalid manifest", errors.New("yaml: line 3: did not find expected key")),
			expected: "[MANIFEST_SYNTAX] invalid manifest: yaml: line 3: did not find expected key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("boom"), ""},
		{"structured", New(ErrCodeBusy, "busy"), ErrCodeBusy},
		{"wrapped with fmt", fmt.Errorf("outer: %w", New(ErrCodeUnsupportedKind, "kind")), ErrCodeUnsupportedKind},
		{"outermost wins", Wrap(ErrCodeDryRunRejected, "dry-run", New(ErrCodeManifestSyntax, "syntax")), ErrCodeDryRunRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHasCode(t *testing.T) {
	if HasCode(nil, ErrCodeInternal) {
		t.Error("nil error should not carry a code")
	}
	if !HasCode(fmt.Errorf("x: %w", New(ErrCodeInvalidState, "state")), ErrCodeInvalidState) {
		t.Error("expected wrapped code to be found")
	}
}
