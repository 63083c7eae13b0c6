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
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"k8s.io/utils/ptr"

	apperrors "github.com/NVIDIA/kubeconsole/pkg/errors"
	"github.com/NVIDIA/kubeconsole/pkg/manifest"
	"github.com/NVIDIA/kubeconsole/pkg/workload"
)

const cronJobModel = `name: backup
namespace: ops
template:
  containers:
    - name: backup
      image: busybox:1.36
cronJob:
  schedule: "*/5 * * * *"
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func webManifest(t *testing.T, replicas int32) string {
	t.Helper()
	text, err := manifest.Synthesize(workload.KindDeployment, &workload.Model{
		Name:      "web",
		Namespace: "default",
		Replicas:  ptr.To(replicas),
		Template: workload.PodTemplate{
			Containers: []workload.Container{{Name: "web", Image: "nginx:1.25"}},
		},
	})
	if err != nil {
		t.Fatalf("failed to synthesize: %v", err)
	}
	return text
}

func TestRenderManifest(t *testing.T) {
	modelPath := writeFile(t, "backup.yaml", cronJobModel)
	base := webManifest(t, 3)
	basePath := writeFile(t, "web.yaml", base)
	scaledPath := writeFile(t, "scaled.yaml", "name: web\nnamespace: default\nreplicas: 5\ntemplate:\n  containers:\n    - name: web\n      image: nginx:1.25\n")

	tests := []struct {
		name      string
		kind      string
		model     string
		base      string
		wantKind  workload.Kind
		wantFile  string
		contains  []string
		wantText  string
		wantCode  apperrors.ErrorCode
		wantError bool
	}{
		{
			name:     "default model of kind",
			kind:     "deployment",
			wantKind: workload.KindDeployment,
			wantFile: "deployment-my-deployment.yaml",
			contains: []string{"kind: Deployment", "name: my-deployment", "image: nginx:latest"},
		},
		{
			name:     "model file",
			kind:     "CronJob",
			model:    modelPath,
			wantKind: workload.KindCronJob,
			wantFile: "cronjob-backup.yaml",
			contains: []string{"kind: CronJob", "namespace: ops", "image: busybox:1.36", "*/5 * * * *"},
		},
		{
			name:     "base without model is returned unchanged",
			base:     basePath,
			wantKind: workload.KindDeployment,
			wantFile: "deployment-web.yaml",
			wantText: base,
		},
		{
			name:     "model overlaid onto base",
			base:     basePath,
			model:    scaledPath,
			kind:     "deployment",
			wantKind: workload.KindDeployment,
			wantFile: "deployment-web.yaml",
			contains: []string{"replicas: 5"},
		},
		{
			name:     "kind is required without base",
			wantCode: apperrors.ErrCodeInvalidRequest,
		},
		{
			name:     "unsupported kind",
			kind:     "Pod",
			wantCode: apperrors.ErrCodeUnsupportedKind,
		},
		{
			name:     "kind does not match base",
			kind:     "job",
			base:     basePath,
			wantCode: apperrors.ErrCodeInvalidRequest,
		},
		{
			name:      "missing model file",
			kind:      "job",
			model:     filepath.Join(t.TempDir(), "missing.yaml"),
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := renderManifest(tt.kind, tt.model, tt.base)
			if tt.wantCode != "" || tt.wantError {
				if err == nil {
					t.Fatalf("renderManifest() expected error")
				}
				if tt.wantCode != "" && !apperrors.HasCode(err, tt.wantCode) {
					t.Errorf("renderManifest() error = %v, want code %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("renderManifest() error = %v", err)
			}
			if r.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", r.Kind, tt.wantKind)
			}
			if got := r.FileName(); got != tt.wantFile {
				t.Errorf("FileName() = %s, want %s", got, tt.wantFile)
			}
			if tt.wantText != "" && r.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", r.Text, tt.wantText)
			}
			for _, s := range tt.contains {
				if !strings.Contains(r.Text, s) {
					t.Errorf("Text does not contain %q:\n%s", s, r.Text)
				}
			}
			if len(r.Issues) != 0 {
				t.Errorf("unexpected issues: %v", r.Issues)
			}
		})
	}
}

func TestRenderManifest_ReportsIssues(t *testing.T) {
	path := writeFile(t, "bad.yaml", "name: Not_Valid\ntemplate:\n  containers:\n    - name: app\n      image: nginx\n")

	r, err := renderManifest("job", path, "")
	if err != nil {
		t.Fatalf("renderManifest() error = %v", err)
	}
	if len(r.Issues) == 0 {
		t.Fatal("expected validation issues for an invalid name")
	}
	if !strings.Contains(r.Text, "name: Not_Valid") {
		t.Errorf("manifest is rendered despite issues:\n%s", r.Text)
	}
}

func TestCommand_Render(t *testing.T) {
	var sb strings.Builder
	cmd := Command()
	cmd.Writer = &sb

	if err := cmd.Run(context.Background(), []string{name, "render", "--kind", "job"}); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	for _, s := range []string{"apiVersion: batch/v1", "kind: Job", "name: my-job", "restartPolicy: Never"} {
		if !strings.Contains(sb.String(), s) {
			t.Errorf("output does not contain %q:\n%s", s, sb.String())
		}
	}
}

func TestCommand_Subcommands(t *testing.T) {
	cmd := Command()
	want := []string{"render", "parse", "diff", "apply", "kinds", "namespaces", "secrets"}
	if len(cmd.Commands) != len(want) {
		t.Fatalf("got %d subcommands, want %d", len(cmd.Commands), len(want))
	}
	for i, w := range want {
		if cmd.Commands[i].Name != w {
			t.Errorf("Commands[%d] = %s, want %s", i, cmd.Commands[i].Name, w)
		}
		if cmd.Commands[i].Action == nil {
			t.Errorf("%s has no action", w)
		}
	}
}
