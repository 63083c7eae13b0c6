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

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	authv1 "k8s.io/api/authorization/v1"
	corev1 "k8s.io/api/core/v1"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	apperrors "github.com/NVIDIA/kubeconsole/pkg/errors"
	"github.com/NVIDIA/kubeconsole/pkg/k8s/client"
)

type mockAccessChecker struct {
	mock.Mock
}

func (m *mockAccessChecker) Allowed(ctx context.Context, cluster, resource, verb, namespace string) (bool, error) {
	args := m.Called(ctx, cluster, resource, verb, namespace)
	return args.Bool(0), args.Error(1)
}

func testRegistry(t *testing.T, cs *fake.Clientset) *client.Registry {
	t.Helper()
	reg, err := client.NewRegistry(client.RegistryConfig{
		Clusters: []client.ClusterConfig{{ID: "test"}},
	}, client.WithBuildFunc(func(client.ClusterConfig) (*client.Clients, error) {
		return &client.Clients{Kube: cs}, nil
	}))
	require.NoError(t, err)
	return reg
}

func namespace(name string) *corev1.Namespace {
	return &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: name}}
}

func secret(ns, name string, typ corev1.SecretType) *corev1.Secret {
	return &corev1.Secret{ObjectMeta: metav1.ObjectMeta{Namespace: ns, Name: name}, Type: typ}
}

func TestDirectory_ListNamespaces(t *testing.T) {
	cs := fake.NewClientset(namespace("kube-system"), namespace("apps"), namespace("default"))
	d := NewDirectory(testRegistry(t, cs))

	names, err := d.ListNamespaces(context.Background(), "test")
	require.NoError(t, err)
	assert.Equal(t, []string{"apps", "default", "kube-system"}, names)

	names, err = d.ListNamespaces(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, names, 3, "empty cluster id selects the default cluster")
}

func TestDirectory_ListNamespacesFiltered(t *testing.T) {
	cs := fake.NewClientset(namespace("kube-system"), namespace("apps"), namespace("default"))

	access := &mockAccessChecker{}
	access.On("Allowed", mock.Anything, "test", "deployments", "list", "apps").Return(true, nil)
	access.On("Allowed", mock.Anything, "test", "deployments", "list", "default").Return(true, nil)
	access.On("Allowed", mock.Anything, "test", "deployments", "list", "kube-system").Return(false, nil)

	d := NewDirectory(testRegistry(t, cs), WithNamespaceFilter(access, "deployments", "list"))

	names, err := d.ListNamespaces(context.Background(), "test")
	require.NoError(t, err)
	assert.Equal(t, []string{"apps", "default"}, names)
	access.AssertNumberOfCalls(t, "Allowed", 3)
}

func TestDirectory_ListNamespacesFilterError(t *testing.T) {
	cs := fake.NewClientset(namespace("apps"))

	access := &mockAccessChecker{}
	access.On("Allowed", mock.Anything, "test", "deployments", "list", "apps").
		Return(false, errors.New("review failed"))

	d := NewDirectory(testRegistry(t, cs), WithNamespaceFilter(access, "deployments", "list"))

	_, err := d.ListNamespaces(context.Background(), "test")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnavailable, apperrors.CodeOf(err))
}

func TestDirectory_ListNamespacesErrors(t *testing.T) {
	cs := fake.NewClientset()
	cs.PrependReactor("list", "namespaces", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("connection refused")
	})
	d := NewDirectory(testRegistry(t, cs))

	_, err := d.ListNamespaces(context.Background(), "test")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnavailable, apperrors.CodeOf(err))

	_, err = d.ListNamespaces(context.Background(), "other")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.CodeOf(err))
}

func TestDirectory_ListSecrets(t *testing.T) {
	cs := fake.NewClientset(
		secret("apps", "registry-b", corev1.SecretTypeDockerConfigJson),
		secret("apps", "registry-a", corev1.SecretTypeDockerConfigJson),
		secret("apps", "db-password", corev1.SecretTypeOpaque),
		secret("other", "registry-c", corev1.SecretTypeDockerConfigJson),
	)
	d := NewDirectory(testRegistry(t, cs))

	tests := []struct {
		name       string
		secretType string
		want       []string
	}{
		{"all types", "", []string{"db-password", "registry-a", "registry-b"}},
		{"pull secrets", string(corev1.SecretTypeDockerConfigJson), []string{"registry-a", "registry-b"}},
		{"no match", string(corev1.SecretTypeTLS), []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names, err := d.ListSecrets(context.Background(), "test", "apps", tt.secretType)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestDirectory_ListSecretsForbidden(t *testing.T) {
	cs := fake.NewClientset()
	cs.PrependReactor("list", "secrets", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, k8serrors.NewForbidden(schema.GroupResource{Resource: "secrets"}, "", errors.New("rbac"))
	})
	d := NewDirectory(testRegistry(t, cs))

	_, err := d.ListSecrets(context.Background(), "test", "apps", "")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.CodeOf(err))
}

func TestSelfAccessChecker(t *testing.T) {
	tests := []struct {
		name    string
		allowed bool
		reason  string
	}{
		{"allowed", true, "RBAC: allowed by RoleBinding"},
		{"denied", false, "no matching rule"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := fake.NewClientset()

			var got *authv1.ResourceAttributes
			cs.PrependReactor("create", "selfsubjectaccessreviews", func(action k8stesting.Action) (bool, runtime.Object, error) {
				review := action.(k8stesting.CreateAction).GetObject().(*authv1.SelfSubjectAccessReview)
				got = review.Spec.ResourceAttributes
				return true, &authv1.SelfSubjectAccessReview{
					Status: authv1.SubjectAccessReviewStatus{
						Allowed: tt.allowed,
						Reason:  tt.reason,
					},
				}, nil
			})

			checker := NewSelfAccessChecker(testRegistry(t, cs))

			check, err := checker.Check(context.Background(), "test", "deployments", "update", "apps")
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, check.Allowed)
			assert.Equal(t, tt.reason, check.Reason)
			require.NotNil(t, got)
			assert.Equal(t, "update", got.Verb)
			assert.Equal(t, "deployments", got.Resource)
			assert.Equal(t, "apps", got.Namespace)

			allowed, err := checker.Allowed(context.Background(), "test", "deployments", "update", "apps")
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, allowed)
		})
	}
}

func TestSelfAccessChecker_Errors(t *testing.T) {
	cs := fake.NewClientset()
	cs.PrependReactor("create", "selfsubjectaccessreviews", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("connection refused")
	})
	checker := NewSelfAccessChecker(testRegistry(t, cs))

	_, err := checker.Allowed(context.Background(), "test", "deployments", "list", "apps")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to check permission for list deployments")

	_, err = checker.Allowed(context.Background(), "missing", "deployments", "list", "apps")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.CodeOf(err))
}
