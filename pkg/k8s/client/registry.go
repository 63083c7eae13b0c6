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
	"fmt"
	"log/slog"
	"sync"

	apperrors "github.com/NVIDIA/kubeconsole/pkg/errors"
	"github.com/NVIDIA/kubeconsole/pkg/serializer"
)

// DefaultClusterID names the single cluster of a registry built without a
// cluster list. It resolves through BuildClients auto-discovery.
const DefaultClusterID = "default"

// ClusterConfig identifies one cluster the console can reach.
type ClusterConfig struct {
	ID         string `json:"id"`
	Kubeconfig string `json:"kubeconfig,omitempty"`
	Context    string `json:"context,omitempty"`
}

// RegistryConfig is the on-disk cluster registry:
//
//	clusters:
//	  - id: prod
//	    kubeconfig: /etc/kubeconsole/prod.kubeconfig
//	  - id: staging
//	    context: staging-admin
type RegistryConfig struct {
	Clusters []ClusterConfig `json:"clusters"`
}

// BuildFunc creates the clients for a cluster.
type BuildFunc func(cfg ClusterConfig) (*Clients, error)

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithBuildFunc overrides how clients are created; tests use it to hand out fakes.
func WithBuildFunc(fn BuildFunc) RegistryOption {
	return func(r *Registry) {
		r.build = fn
	}
}

// Registry resolves cluster IDs to clients. Clients are built on first use
// and cached; a failed build is retried on the next call.
type Registry struct {
	mu       sync.Mutex
	order    []string
	clusters map[string]ClusterConfig
	cache    map[string]*Clients
	build    BuildFunc
}

// NewRegistry creates a registry for the configured clusters. An empty list
// yields a single DefaultClusterID cluster using auto-discovery.
func NewRegistry(cfg RegistryConfig, opts ...RegistryOption) (*Registry, error) {
	r := &Registry{
		clusters: make(map[string]ClusterConfig),
		cache:    make(map[string]*Clients),
		build: func(c ClusterConfig) (*Clients, error) {
			return BuildClients(c.Kubeconfig, c.Context)
		},
	}
	for _, opt := range opts {
		opt(r)
	}

	clusters := cfg.Clusters
	if len(clusters) == 0 {
		clusters = []ClusterConfig{{ID: DefaultClusterID}}
	}

	for i, c := range clusters {
		if c.ID == "" {
			return nil, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest,
				"cluster id is required", map[string]any{"index": i})
		}
		if _, dup := r.clusters[c.ID]; dup {
			return nil, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest,
				"duplicate cluster id", map[string]any{"cluster": c.ID})
		}
		r.clusters[c.ID] = c
		r.order = append(r.order, c.ID)
	}

	return r, nil
}

// LoadRegistry reads a RegistryConfig from a YAML or JSON file.
// An empty path yields the single default cluster.
func LoadRegistry(path string, opts ...RegistryOption) (*Registry, error) {
	if path == "" {
		return NewRegistry(RegistryConfig{}, opts...)
	}
	cfg, err := serializer.FromFile[RegistryConfig](path)
	if err != nil {
		return nil, fmt.Errorf("failed to load cluster registry: %w", err)
	}
	slog.Debug("loaded cluster registry", "path", path, "clusters", len(cfg.Clusters))
	return NewRegistry(*cfg, opts...)
}

// IDs returns the configured cluster IDs in configuration order.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// Default returns the first configured cluster ID.
func (r *Registry) Default() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.order[0]
}

// Register adds a cluster with prebuilt clients, replacing any existing entry.
func (r *Registry) Register(id string, c *Clients) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clusters[id]; !ok {
		r.order = append(r.order, id)
	}
	r.clusters[id] = ClusterConfig{ID: id}
	r.cache[id] = c
}

// Get returns the clients for a cluster. An empty id selects Default.
func (r *Registry) Get(id string) (*Clients, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id == "" {
		id = r.order[0]
	}
	if c, ok := r.cache[id]; ok {
		return c, nil
	}

	cfg, ok := r.clusters[id]
	if !ok {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeNotFound,
			"unknown cluster", map[string]any{"cluster": id})
	}

	c, err := r.build(cfg)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeUnavailable,
			"failed to connect to cluster", err, map[string]any{"cluster": id})
	}
	slog.Info("cluster clients created", "cluster", id, "host", hostOf(c))
	r.cache[id] = c
	return c, nil
}

func hostOf(c *Clients) string {
	if c == nil || c.Config == nil {
		return ""
	}
	return c.Config.Host
}
