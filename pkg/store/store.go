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
	"fmt"
	"log/slog"
	"strings"

	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/client-go/dynamic"
	"sigs.k8s.io/yaml"

	"github.com/NVIDIA/kubeconsole/pkg/defaults"
	apperrors "github.com/NVIDIA/kubeconsole/pkg/errors"
	"github.com/NVIDIA/kubeconsole/pkg/k8s/client"
	"github.com/NVIDIA/kubeconsole/pkg/manifest"
	"github.com/NVIDIA/kubeconsole/pkg/workflow"
	"github.com/NVIDIA/kubeconsole/pkg/workload"
)

// Server-populated fields dropped from loaded manifests. resourceVersion is
// kept so updates fail on conflict instead of overwriting newer state.
var strippedFields = [][]string{
	{"metadata", "managedFields"},
	{"status"},
}

// Store loads and applies workload manifests on one cluster through the
// dynamic client. It implements workflow.Store.
type Store struct {
	client  dynamic.Interface
	cluster string
}

var _ workflow.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithCluster sets the cluster ID reported in logs and error context.
func WithCluster(id string) Option {
	return func(s *Store) {
		s.cluster = id
	}
}

// New creates a Store backed by the given dynamic client.
func New(c dynamic.Interface, opts ...Option) *Store {
	s := &Store{client: c}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ForCluster creates a Store for a registered cluster.
func ForCluster(reg *client.Registry, id string) (*Store, error) {
	c, err := reg.Get(id)
	if err != nil {
		return nil, err
	}
	if id == "" {
		id = reg.Default()
	}
	return New(c.Dynamic, WithCluster(id)), nil
}

// Load fetches a live workload and renders it as manifest text.
func (s *Store) Load(ctx context.Context, kind workload.Kind, namespace, name string) (string, error) {
	if !kind.IsValid() {
		return "", apperrors.NewWithContext(apperrors.ErrCodeUnsupportedKind,
			"unsupported workload kind", map[string]any{"kind": string(kind)})
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.StoreLoadTimeout)
	defer cancel()

	obj, err := s.client.Resource(kind.GroupVersionResource()).Namespace(namespace).
		Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return "", classify(err, "failed to load workload", s.errorContext(kind, namespace, name))
	}

	for _, path := range strippedFields {
		unstructured.RemoveNestedField(obj.Object, path...)
	}

	text, err := manifest.EncodeObject(obj.Object)
	if err != nil {
		return "", err
	}

	slog.Debug("workload loaded",
		"cluster", s.cluster,
		"kind", kind,
		"namespace", namespace,
		"name", name,
		"resourceVersion", obj.GetResourceVersion())

	return text, nil
}

// Apply creates the object described by text when it does not exist and
// updates it otherwise. With dryRun set, the API server validates and admits
// the request without persisting it.
//
// Rejections by the API server (validation, conflicts, admission, RBAC) are
// returned as an unsuccessful ApplyResult. The error return is reserved for
// manifests that cannot be decoded and for transport failures.
func (s *Store) Apply(ctx context.Context, text string, dryRun bool) (*workflow.ApplyResult, error) {
	obj, err := decode(text)
	if err != nil {
		return nil, err
	}

	kind, err := workload.ParseKind(obj.GetKind())
	if err != nil {
		return nil, err
	}
	if obj.GetAPIVersion() != kind.APIVersion() {
		return rejected(fmt.Sprintf("apiVersion %q does not serve %s, expected %q",
			obj.GetAPIVersion(), kind, kind.APIVersion())), nil
	}
	name := obj.GetName()
	if name == "" {
		return rejected("metadata.name is required"), nil
	}
	namespace := obj.GetNamespace()
	if namespace == "" {
		namespace = workload.DefaultNamespace
		obj.SetNamespace(namespace)
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.StoreApplyTimeout)
	defer cancel()

	var dryRunOpt []string
	if dryRun {
		dryRunOpt = []string{metav1.DryRunAll}
	}

	res := s.client.Resource(kind.GroupVersionResource()).Namespace(namespace)

	created := false
	_, err = res.Get(ctx, name, metav1.GetOptions{})
	switch {
	case k8serrors.IsNotFound(err):
		created = true
		_, err = res.Create(ctx, obj, metav1.CreateOptions{DryRun: dryRunOpt})
	case err == nil:
		_, err = res.Update(ctx, obj, metav1.UpdateOptions{DryRun: dryRunOpt})
	}

	if err != nil {
		if !isRejection(err) {
			return nil, classify(err, "failed to apply workload", s.errorContext(kind, namespace, name))
		}
		slog.Info("workload rejected",
			"cluster", s.cluster,
			"kind", kind,
			"namespace", namespace,
			"name", name,
			"dryRun", dryRun,
			"reason", k8serrors.ReasonForError(err))
		return rejected(err.Error()), nil
	}

	verb := "configured"
	if created {
		verb = "created"
	}
	msg := fmt.Sprintf("%s/%s %s", resourceName(kind), name, verb)
	if dryRun {
		msg += " (server dry run)"
	}

	slog.Info("workload applied",
		"cluster", s.cluster,
		"kind", kind,
		"namespace", namespace,
		"name", name,
		"dryRun", dryRun,
		"created", created)

	return &workflow.ApplyResult{Success: true, Created: created, Message: msg}, nil
}

func decode(text string) (*unstructured.Unstructured, error) {
	raw, err := yaml.YAMLToJSON([]byte(text))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeManifestSyntax, "invalid manifest syntax", err)
	}
	var obj unstructured.Unstructured
	if err := obj.UnmarshalJSON(raw); err != nil {
		if strings.Contains(err.Error(), "'Kind' is missing") {
			return nil, apperrors.New(apperrors.ErrCodeUnsupportedKind, "manifest has no kind")
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeManifestSyntax, "invalid manifest", err)
	}
	return &obj, nil
}

func rejected(msg string) *workflow.ApplyResult {
	return &workflow.ApplyResult{Success: false, Message: msg}
}

// resourceName renders kind.group the way kubectl reports applied objects.
func resourceName(kind workload.Kind) string {
	return strings.ToLower(string(kind)) + "." + kind.GroupVersionResource().Group
}

// isRejection reports whether the API server answered with a decision about
// the object itself rather than failing to serve the request.
func isRejection(err error) bool {
	var status k8serrors.APIStatus
	if !errors.As(err, &status) {
		return false
	}
	switch {
	case k8serrors.IsServiceUnavailable(err),
		k8serrors.IsInternalError(err),
		k8serrors.IsServerTimeout(err),
		k8serrors.IsTimeout(err),
		k8serrors.IsTooManyRequests(err),
		k8serrors.IsUnauthorized(err):
		return false
	default:
		return true
	}
}

func (s *Store) errorContext(kind workload.Kind, namespace, name string) map[string]any {
	return map[string]any{
		"cluster":   s.cluster,
		"kind":      string(kind),
		"namespace": namespace,
		"name":      name,
	}
}

// classify maps a Kubernetes client error to a structured error code.
func classify(err error, msg string, ctx map[string]any) error {
	switch {
	case k8serrors.IsNotFound(err):
		return apperrors.WrapWithContext(apperrors.ErrCodeNotFound, msg, err, ctx)
	case k8serrors.IsForbidden(err), k8serrors.IsUnauthorized(err):
		return apperrors.WrapWithContext(apperrors.ErrCodeUnauthorized, msg, err, ctx)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.WrapWithContext(apperrors.ErrCodeTimeout, msg, err, ctx)
	default:
		return apperrors.WrapWithContext(apperrors.ErrCodeUnavailable, msg, err, ctx)
	}
}
