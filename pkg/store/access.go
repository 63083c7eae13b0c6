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
	"fmt"
	"log/slog"

	authv1 "k8s.io/api/authorization/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/NVIDIA/kubeconsole/pkg/defaults"
	"github.com/NVIDIA/kubeconsole/pkg/k8s/client"
)

// AccessChecker decides whether the caller may perform verb on resource in
// namespace. An empty namespace checks cluster scope.
type AccessChecker interface {
	Allowed(ctx context.Context, cluster, resource, verb, namespace string) (bool, error)
}

// PermissionCheck represents a single permission check result.
type PermissionCheck struct {
	Resource  string `json:"resource"`
	Verb      string `json:"verb"`
	Namespace string `json:"namespace,omitempty"`
	Allowed   bool   `json:"allowed"`
	Reason    string `json:"reason,omitempty"`
}

// SelfAccessChecker answers access questions with SelfSubjectAccessReviews,
// so the answers reflect the identity of the cluster credentials in use.
type SelfAccessChecker struct {
	registry *client.Registry
}

var _ AccessChecker = (*SelfAccessChecker)(nil)

// NewSelfAccessChecker creates an AccessChecker for the registry's clusters.
func NewSelfAccessChecker(reg *client.Registry) *SelfAccessChecker {
	return &SelfAccessChecker{registry: reg}
}

// Allowed implements AccessChecker.
func (c *SelfAccessChecker) Allowed(ctx context.Context, cluster, resource, verb, namespace string) (bool, error) {
	check, err := c.Check(ctx, cluster, resource, verb, namespace)
	if err != nil {
		return false, err
	}
	return check.Allowed, nil
}

// Check runs one SelfSubjectAccessReview and reports the decision with its reason.
func (c *SelfAccessChecker) Check(ctx context.Context, cluster, resource, verb, namespace string) (*PermissionCheck, error) {
	clients, err := c.registry.Get(cluster)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.AccessReviewTimeout)
	defer cancel()

	review := &authv1.SelfSubjectAccessReview{
		Spec: authv1.SelfSubjectAccessReviewSpec{
			ResourceAttributes: &authv1.ResourceAttributes{
				Verb:      verb,
				Resource:  resource,
				Namespace: namespace,
			},
		},
	}

	result, err := clients.Kube.AuthorizationV1().SelfSubjectAccessReviews().Create(ctx, review, metav1.CreateOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to check permission for %s %s: %w", verb, resource, err)
	}

	slog.Debug("access review",
		"cluster", cluster,
		"resource", resource,
		"verb", verb,
		"namespace", namespace,
		"allowed", result.Status.Allowed)

	return &PermissionCheck{
		Resource:  resource,
		Verb:      verb,
		Namespace: namespace,
		Allowed:   result.Status.Allowed,
		Reason:    result.Status.Reason,
	}, nil
}
