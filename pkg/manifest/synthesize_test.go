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

package manifest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"k8s.io/utils/ptr"

	apperrors "github.com/NVIDIA/kubeconsole/pkg/errors"
	"github.com/NVIDIA/kubeconsole/pkg/workload"
)

func decodeMap(t *testing.T, text string) object {
	t.Helper()
	var out map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(text), &out))
	return out
}

func TestSynthesize_RoundTrip(t *testing.T) {
	for _, kind := range workload.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			m := fullModel(kind)

			text, err := Synthesize(kind, m)
			require.NoError(t, err)

			gotKind, got, err := Parse(text)
			require.NoError(t, err)
			assert.Equal(t, kind, gotKind)
			assert.Equal(t, workload.Normalize(kind, m), got)
		})
	}
}

func TestSynthesize_RoundTripMinimal(t *testing.T) {
	for _, kind := range workload.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			m := minimalModel("api", "ghcr.io/acme/api:v2")

			text, err := Synthesize(kind, m)
			require.NoError(t, err)

			_, got, err := Parse(text)
			require.NoError(t, err)
			assert.Equal(t, workload.Normalize(kind, m), got)
		})
	}
}

func TestSynthesize_Deterministic(t *testing.T) {
	for _, kind := range workload.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			m := fullModel(kind)
			first, err := Synthesize(kind, m)
			require.NoError(t, err)
			second, err := Synthesize(kind, m)
			require.NoError(t, err)
			assert.Equal(t, first, second)

			_, parsed, err := Parse(first)
			require.NoError(t, err)
			again, err := Synthesize(kind, parsed)
			require.NoError(t, err)
			assert.Equal(t, first, again, "re-synthesizing a parsed manifest must be byte identical")
		})
	}
}

func TestSynthesize_Deployment(t *testing.T) {
	m := minimalModel("web", "nginx:1.25")
	m.Namespace = "default"
	m.Replicas = ptr.To[int32](3)

	text, err := Synthesize(workload.KindDeployment, m)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(text, "apiVersion: apps/v1\nkind: Deployment\n"))
	assert.Contains(t, text, "replicas: 3\n")

	obj := decodeMap(t, text)
	assert.Equal(t, "web", str(obj.mapAt("metadata"), "name"))
	assert.Equal(t, "default", str(obj.mapAt("metadata"), "namespace"))
	assert.Equal(t, map[string]string{"app": "web"}, strMap(obj.mapAt("spec", "selector"), "matchLabels"))

	containers := list(obj.mapAt("spec", "template", "spec"), "containers")
	require.Len(t, containers, 1)
	assert.Equal(t, "nginx:1.25", str(containers[0], "image"))
}

func TestSynthesize_DefaultLabels(t *testing.T) {
	for _, kind := range workload.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			text, err := Synthesize(kind, minimalModel("worker", "busybox"))
			require.NoError(t, err)

			obj := decodeMap(t, text)
			want := map[string]string{"app": "worker"}
			assert.Equal(t, want, strMap(obj.mapAt("metadata"), "labels"))

			spec := obj.mapAt("spec")
			if kind == workload.KindCronJob {
				spec = spec.mapAt("jobTemplate", "spec")
			}
			podLabels := strMap(spec.mapAt("template", "metadata"), "labels")
			assert.Equal(t, want, podLabels)

			if kind.HasSelector() {
				assert.Equal(t, podLabels, strMap(spec.mapAt("selector"), "matchLabels"))
			} else {
				assert.Nil(t, spec.mapAt("selector"), "jobs get a server-generated selector")
			}
		})
	}
}

func TestSynthesize_SelectorTracksLabels(t *testing.T) {
	m := minimalModel("web", "nginx")
	m.Labels = map[string]string{"app": "web", "tier": "frontend"}

	text, err := Synthesize(workload.KindRollout, m)
	require.NoError(t, err)

	obj := decodeMap(t, text)
	assert.Equal(t, m.Labels, strMap(obj.mapAt("spec", "selector"), "matchLabels"))
	assert.Equal(t, m.Labels, strMap(obj.mapAt("spec", "template", "metadata"), "labels"))
}

func TestSynthesize_KindShapes(t *testing.T) {
	tests := []struct {
		kind     workload.Kind
		contains []string
		absent   []string
	}{
		{workload.KindDeployment, []string{"replicas: 1\n", "selector:"}, []string{"jobTemplate", "serviceName"}},
		{workload.KindDaemonSet, []string{"selector:"}, []string{"replicas:", "strategy:"}},
		{workload.KindRollout, []string{"apiVersion: argoproj.io/v1alpha1\n", "replicas: 1\n"}, []string{"jobTemplate"}},
		{workload.KindJob, []string{"apiVersion: batch/v1\n", "restartPolicy: Never\n"}, []string{"replicas:", "selector:"}},
		{workload.KindCronJob, []string{"jobTemplate:", "restartPolicy: Never\n"}, []string{"replicas:", "selector:"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			text, err := Synthesize(tt.kind, minimalModel("x", "busybox"))
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, text, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, text, s)
			}
		})
	}
}

func TestSynthesize_OptionalFieldsOmitted(t *testing.T) {
	text, err := Synthesize(workload.KindDeployment, minimalModel("web", "nginx"))
	require.NoError(t, err)

	for _, s := range []string{"annotations", "strategy", "null", "{}", "env:", "resources:", `""`} {
		assert.NotContains(t, text, s)
	}
}

func TestSynthesize_EmptyContainerSettingsOmitted(t *testing.T) {
	m := minimalModel("web", "nginx")
	m.Template.Containers[0].Lifecycle = &workload.Lifecycle{}
	m.Template.Containers[0].SecurityContext = &workload.SecurityContext{}

	text, err := Synthesize(workload.KindDeployment, m)
	require.NoError(t, err)
	assert.NotContains(t, text, "lifecycle")
	assert.NotContains(t, text, "securityContext")
	assert.NotContains(t, text, "{}")

	_, got, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, workload.Normalize(workload.KindDeployment, m), got)

	_, explicit, err := Parse(`apiVersion: apps/v1
kind: Deployment
metadata:
  name: web
spec:
  template:
    spec:
      containers:
        - name: app
          image: nginx
          lifecycle: {}
          securityContext: {}
`)
	require.NoError(t, err)
	assert.Nil(t, explicit.Template.Containers[0].Lifecycle)
	assert.Nil(t, explicit.Template.Containers[0].SecurityContext)
}

func TestSynthesize_Literals(t *testing.T) {
	m := fullModel(workload.KindCronJob)

	text, err := Synthesize(workload.KindCronJob, m)
	require.NoError(t, err)

	assert.Contains(t, text, `schedule: "*/5 * * * *"`)
	assert.Contains(t, text, "suspend: false\n")
	assert.Contains(t, text, "backoffLimit: 1\n")
	assert.Contains(t, text, "containerPort: 8080\n")
	assert.Contains(t, text, `value: "8080"`, "string env values that look numeric stay strings")
	assert.Contains(t, text, `version: "1.0"`)
}

func TestSynthesize_UnsupportedKind(t *testing.T) {
	_, err := Synthesize(workload.Kind("Pod"), minimalModel("x", "busybox"))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnsupportedKind))
}

func TestSynthesize_DefaultsNameAndNamespace(t *testing.T) {
	text, err := Synthesize(workload.KindStatefulSet, &workload.Model{})
	require.NoError(t, err)

	meta := decodeMap(t, text).mapAt("metadata")
	assert.Equal(t, "my-statefulset", str(meta, "name"))
	assert.Equal(t, "default", str(meta, "namespace"))
}

func TestEncodeObject(t *testing.T) {
	obj := map[string]any{
		"kind":       "Deployment",
		"apiVersion": "apps/v1",
		"metadata":   map[string]any{"name": "web", "resourceVersion": "42"},
		"spec":       map[string]any{"replicas": int64(2)},
	}

	text, err := EncodeObject(obj)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "apiVersion: apps/v1\nkind: Deployment\n"))
	assert.Contains(t, text, `resourceVersion: "42"`)
	assert.Contains(t, text, "replicas: 2\n")

	again, err := EncodeObject(map[string]any(decodeMap(t, text)))
	require.NoError(t, err)
	assert.Equal(t, text, again)
}
