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

package cli

import (
	"encoding/json"
	"strings"
	"testing"

	apperrors "github.com/NVIDIA/kubeconsole/pkg/errors"
	"github.com/NVIDIA/kubeconsole/pkg/workload"
)

func TestParseManifest(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantKind   workload.Kind
		wantName   string
		wantIssues bool
		wantCode   apperrors.ErrorCode
	}{
		{
			name:     "deployment",
			text:     "",
			wantKind: workload.KindDeployment,
			wantName: "web",
		},
		{
			name:       "job with an invalid image",
			text:       "apiVersion: batch/v1\nkind: Job\nmetadata:\n  name: migrate\nspec:\n  template:\n    spec:\n      restartPolicy: Never\n      containers:\n        - name: migrate\n          image: UPPER/case\n",
			wantKind:   workload.KindJob,
			wantName:   "migrate",
			wantIssues: true,
		},
		{
			name:     "unsupported kind",
			text:     "apiVersion: v1\nkind: Pod\nmetadata:\n  name: p\n",
			wantCode: apperrors.ErrCodeUnsupportedKind,
		},
		{
			name:     "syntax error",
			text:     "kind: Deployment\nmetadata: [\n",
			wantCode: apperrors.ErrCodeManifestSyntax,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := tt.text
			if text == "" {
				text = webManifest(t, 2)
			}

			got, err := parseManifest(text)
			if tt.wantCode != "" {
				if !apperrors.HasCode(err, tt.wantCode) {
					t.Fatalf("parseManifest() error = %v, want code %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseManifest() error = %v", err)
			}
			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", got.Kind, tt.wantKind)
			}
			if got.Model.Name != tt.wantName {
				t.Errorf("Model.Name = %s, want %s", got.Model.Name, tt.wantName)
			}
			if (len(got.Issues) > 0) != tt.wantIssues {
				t.Errorf("Issues = %v, wantIssues %v", got.Issues, tt.wantIssues)
			}
		})
	}
}

func TestParseManifest_RendersBack(t *testing.T) {
	text := webManifest(t, 4)
	parsed, err := parseManifest(text)
	if err != nil {
		t.Fatalf("parseManifest() error = %v", err)
	}
	if parsed.Model.Replicas == nil || *parsed.Model.Replicas != 4 {
		t.Fatalf("Replicas = %v, want 4", parsed.Model.Replicas)
	}

	path := writeFile(t, "web-model.json", mustJSON(t, parsed.Model))
	r, err := renderManifest(string(parsed.Kind), path, "")
	if err != nil {
		t.Fatalf("renderManifest() error = %v", err)
	}
	if r.Text != text {
		t.Errorf("rendered manifest differs from the original:\n%s\nwant:\n%s", r.Text, text)
	}
	if strings.Contains(r.Text, "status:") {
		t.Errorf("rendered manifest carries status")
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	return string(b)
}
