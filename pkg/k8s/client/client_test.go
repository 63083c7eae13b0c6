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

package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKubeconfig = `apiVersion: v1
kind: Config
clusters:
- name: a
  cluster:
    server: https://a.example:6443
- name: b
  cluster:
    server: https://b.example:6443
users:
- name: u
  user:
    token: t
contexts:
- name: ctx-a
  context:
    cluster: a
    user: u
- name: ctx-b
  context:
    cluster: b
    user: u
current-context: ctx-a
`

func writeKubeconfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kubeconfig")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestBuildClients_Contexts(t *testing.T) {
	path := writeKubeconfig(t, testKubeconfig)

	tests := []struct {
		name    string
		context string
		host    string
		wantErr string
	}{
		{name: "current context", host: "https://a.example:6443"},
		{name: "explicit context", context: "ctx-b", host: "https://b.example:6443"},
		{name: "unknown context", context: "ctx-c", wantErr: "failed to build kube config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := BuildClients(path, tt.context)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.host, c.Config.Host)
			assert.NotNil(t, c.Kube)
			assert.NotNil(t, c.Dynamic)
		})
	}
}

func TestBuildClients_PathResolution(t *testing.T) {
	tests := []struct {
		name          string
		kubeconfigArg string
		kubeconfigEnv string
		errorContains string
	}{
		{
			name:          "explicit invalid path",
			kubeconfigArg: "/nonexistent/path/to/kubeconfig",
			errorContains: "failed to build kube config",
		},
		{
			name:          "env var with invalid path",
			kubeconfigEnv: "/nonexistent/env/kubeconfig",
			errorContains: "failed to build kube config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("KUBECONFIG", tt.kubeconfigEnv)

			_, err := BuildClients(tt.kubeconfigArg, "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestBuildClients_InvalidContent(t *testing.T) {
	path := writeKubeconfig(t, "invalid yaml content")

	_, err := BuildClients(path, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to build kube config")
}

func TestResolveKubeconfig(t *testing.T) {
	t.Setenv("KUBECONFIG", "/from/env")
	assert.Equal(t, "/explicit", resolveKubeconfig("/explicit"))
	assert.Equal(t, "/from/env", resolveKubeconfig(""))
}
