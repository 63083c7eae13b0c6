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
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/fields"

	"github.com/NVIDIA/kubeconsole/pkg/defaults"
	apperrors "github.com/NVIDIA/kubeconsole/pkg/errors"
	"github.com/NVIDIA/kubeconsole/pkg/k8s/client"
)

// maxConcurrentReviews bounds access reviews issued while filtering namespaces.
const maxConcurrentReviews = 8

// Directory lists namespaces and secrets for the form's pickers.
type Directory struct {
	registry *client.Registry
	access   AccessChecker
	resource string
	verb     string
}

// DirectoryOption configures a Directory.
type DirectoryOption func(*Directory)

// WithNamespaceFilter drops namespaces in which the caller may not perform
// verb on resource, for example "list" on "deployments".
func WithNamespaceFilter(access AccessChecker, resource, verb string) DirectoryOption {
	return func(d *Directory) {
		d.access = access
		d.resource = resource
		d.verb = verb
	}
}

// NewDirectory creates a Directory over the registry's clusters.
func NewDirectory(reg *client.Registry, opts ...DirectoryOption) *Directory {
	d := &Directory{registry: reg}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ListNamespaces returns the sorted namespace names of a cluster.
func (d *Directory) ListNamespaces(ctx context.Context, cluster string) ([]string, error) {
	clients, err := d.registry.Get(cluster)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.StoreListTimeout)
	defer cancel()

	list, err := clients.Kube.CoreV1().Namespaces().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, classify(err, "failed to list namespaces", map[string]any{"cluster": cluster})
	}

	names := make([]string, 0, len(list.Items))
	for _, ns := range list.Items {
		names = append(names, ns.Name)
	}

	if d.access != nil {
		if names, err = d.filter(ctx, cluster, names); err != nil {
			return nil, err
		}
	}

	slices.Sort(names)
	return names, nil
}

func (d *Directory) filter(ctx context.Context, cluster string, names []string) ([]string, error) {
	var (
		mu      sync.Mutex
		allowed = make([]string, 0, len(names))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReviews)
	for _, ns := range names {
		g.Go(func() error {
			ok, err := d.access.Allowed(gctx, cluster, d.resource, d.verb, ns)
			if err != nil {
				return err
			}
			if ok {
				mu.Lock()
				allowed = append(allowed, ns)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeUnavailable,
			"failed to filter namespaces", err, map[string]any{"cluster": cluster})
	}

	slog.Debug("namespaces filtered",
		"cluster", cluster,
		"total", len(names),
		"allowed", len(allowed))
	return allowed, nil
}

// ListSecrets returns the sorted names of the secrets in namespace. A
// non-empty secretType keeps only secrets of that type, for example
// kubernetes.io/dockerconfigjson for image pull secrets.
func (d *Directory) ListSecrets(ctx context.Context, cluster, namespace, secretType string) ([]string, error) {
	clients, err := d.registry.Get(cluster)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.StoreListTimeout)
	defer cancel()

	opts := metav1.ListOptions{}
	if secretType != "" {
		opts.FieldSelector = fields.OneTermEqualSelector("type", secretType).String()
	}

	list, err := clients.Kube.CoreV1().Secrets(namespace).List(ctx, opts)
	if err != nil {
		return nil, classify(err, "failed to list secrets",
			map[string]any{"cluster": cluster, "namespace": namespace})
	}

	names := make([]string, 0, len(list.Items))
	for _, s := range list.Items {
		// field selectors are advisory for some API servers and for fakes
		if secretType != "" && s.Type != corev1.SecretType(secretType) {
			continue
		}
		names = append(names, s.Name)
	}

	slices.Sort(names)
	return names, nil
}
