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

package workload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/NVIDIA/kubeconsole/pkg/errors"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"Deployment", KindDeployment, false},
		{"deployment", KindDeployment, false},
		{"STATEFULSET", KindStatefulSet, false},
		{" daemonset ", KindDaemonSet, false},
		{"rollout", KindRollout, false},
		{"job", KindJob, false},
		{"cronJob", KindCronJob, false},
		{"Pod", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnsupportedKind))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseKind_Suggestion(t *testing.T) {
	_, err := ParseKind("Deploymnet")
	require.Error(t, err)

	var se *apperrors.StructuredError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Deployment", se.Context["suggestion"])

	_, err = ParseKind("ConfigMap")
	require.ErrorAs(t, err, &se)
	assert.NotContains(t, se.Context, "suggestion")
}

func TestKind_Properties(t *testing.T) {
	tests := []struct {
		kind       Kind
		scalable   bool
		batch      bool
		apiVersion string
		resource   string
	}{
		{KindDeployment, true, false, "apps/v1", "deployments"},
		{KindStatefulSet, true, false, "apps/v1", "statefulsets"},
		{KindDaemonSet, false, false, "apps/v1", "daemonsets"},
		{KindRollout, true, false, "argoproj.io/v1alpha1", "rollouts"},
		{KindJob, false, true, "batch/v1", "jobs"},
		{KindCronJob, false, true, "batch/v1", "cronjobs"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.True(t, tt.kind.IsValid())
			assert.Equal(t, tt.scalable, tt.kind.Scalable())
			assert.Equal(t, tt.batch, tt.kind.Batch())
			assert.Equal(t, !tt.batch, tt.kind.HasSelector())
			assert.Equal(t, tt.apiVersion, tt.kind.APIVersion())
			assert.Equal(t, tt.resource, tt.kind.GroupVersionResource().Resource)
		})
	}

	assert.False(t, Kind("Pod").IsValid())
	assert.Len(t, Kinds(), 6)
}
