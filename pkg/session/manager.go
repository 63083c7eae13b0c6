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

package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/NVIDIA/kubeconsole/pkg/defaults"
	apperrors "github.com/NVIDIA/kubeconsole/pkg/errors"
	"github.com/NVIDIA/kubeconsole/pkg/workflow"
	"github.com/NVIDIA/kubeconsole/pkg/workload"
)

// StoreFactory returns the manifest store for a cluster ID.
type StoreFactory func(cluster string) (workflow.Store, error)

// Session is one editing session bound to a cluster.
type Session struct {
	ID         string
	Cluster    string
	Controller *workflow.Controller

	lastUsed time.Time
}

// CreateRequest opens a session. Namespace and Name select an existing
// workload to edit; without them the session creates a new one.
type CreateRequest struct {
	Cluster   string `json:"cluster,omitempty"`
	Kind      string `json:"kind"`
	Namespace string `json:"namespace,omitempty"`
	Name      string `json:"name,omitempty"`
}

// Editing reports whether the request targets an existing workload.
func (r CreateRequest) Editing() bool {
	return r.Name != ""
}

// Manager owns the open sessions and expires idle ones.
type Manager struct {
	stores      StoreFactory
	idleTTL     time.Duration
	maxSessions int
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// Option configures a Manager.
type Option func(*Manager)

// WithIdleTTL sets how long an untouched session survives.
func WithIdleTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.idleTTL = ttl
	}
}

// WithMaxSessions caps the number of open sessions.
func WithMaxSessions(n int) Option {
	return func(m *Manager) {
		m.maxSessions = n
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager returns a Manager creating stores with stores.
func NewManager(stores StoreFactory, opts ...Option) *Manager {
	m := &Manager{
		stores:      stores,
		idleTTL:     defaults.SessionIdleTTL,
		maxSessions: defaults.SessionMaxCount,
		now:         time.Now,
		sessions:    make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create opens a session. Edit sessions load the workload before the
// session is registered, so a failed load leaves nothing behind.
func (m *Manager) Create(ctx context.Context, req CreateRequest) (*Session, error) {
	kind, err := workload.ParseKind(req.Kind)
	if err != nil {
		return nil, err
	}
	if req.Editing() && req.Namespace == "" {
		req.Namespace = workload.DefaultNamespace
	}

	if err := m.reserve(); err != nil {
		return nil, err
	}

	store, err := m.stores(req.Cluster)
	if err != nil {
		return nil, err
	}

	ctrl := workflow.New(store)
	if req.Editing() {
		err = ctrl.LoadExisting(ctx, kind, req.Namespace, req.Name)
	} else {
		err = ctrl.LoadNew(kind)
	}
	if err != nil {
		_ = ctrl.Abandon()
		return nil, err
	}

	s := &Session{
		ID:         uuid.New().String(),
		Cluster:    req.Cluster,
		Controller: ctrl,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sessions) >= m.maxSessions {
		_ = ctrl.Abandon()
		return nil, tooManySessions(m.maxSessions)
	}
	s.lastUsed = m.now()
	m.sessions[s.ID] = s
	sessionsActive.Set(float64(len(m.sessions)))

	slog.Info("session opened",
		"session", s.ID, "cluster", s.Cluster, "kind", kind,
		"namespace", req.Namespace, "name", req.Name, "editing", req.Editing())
	return s, nil
}

// reserve sweeps expired sessions when the manager is full.
func (m *Manager) reserve() error {
	m.mu.Lock()
	full := len(m.sessions) >= m.maxSessions
	m.mu.Unlock()
	if !full {
		return nil
	}
	m.Sweep()

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sessions) >= m.maxSessions {
		return tooManySessions(m.maxSessions)
	}
	return nil
}

// Get returns an open session and marks it used.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeNotFound, "session not found",
			map[string]any{"session": id})
	}
	s.lastUsed = m.now()
	return s, nil
}

// Delete abandons and removes a session. A session with a submit in flight
// cannot be deleted.
func (m *Manager) Delete(id string) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	if err := s.Controller.Abandon(); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.sessions, id)
	sessionsActive.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	slog.Info("session closed", "session", id)
	return nil
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep abandons sessions idle for longer than the TTL and returns how many
// were removed. Sessions with a submit in flight are kept.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.idleTTL)
	removed := 0
	for id, s := range m.sessions {
		if s.lastUsed.After(cutoff) {
			continue
		}
		if err := s.Controller.Abandon(); err != nil {
			slog.Debug("keeping idle session", "session", id, "error", err)
			continue
		}
		delete(m.sessions, id)
		removed++
	}
	if removed > 0 {
		sessionsExpired.Add(float64(removed))
		sessionsActive.Set(float64(len(m.sessions)))
		slog.Info("expired idle sessions", "count", removed, "remaining", len(m.sessions))
	}
	return removed
}

// Run sweeps idle sessions every interval until ctx is canceled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func tooManySessions(limit int) error {
	return apperrors.NewWithContext(apperrors.ErrCodeUnavailable, "too many open sessions",
		map[string]any{"limit": limit})
}
