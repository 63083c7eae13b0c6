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
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/NVIDIA/kubeconsole/pkg/defaults"
	apperrors "github.com/NVIDIA/kubeconsole/pkg/errors"
	"github.com/NVIDIA/kubeconsole/pkg/serializer"
	"github.com/NVIDIA/kubeconsole/pkg/server"
	"github.com/NVIDIA/kubeconsole/pkg/workflow"
	"github.com/NVIDIA/kubeconsole/pkg/workload"
)

// Directory lists the namespaces and secrets a form offers as choices.
type Directory interface {
	ListNamespaces(ctx context.Context, cluster string) ([]string, error)
	ListSecrets(ctx context.Context, cluster, namespace, secretType string) ([]string, error)
}

// Response is the session representation returned by every session route.
type Response struct {
	ID      string `json:"id"`
	Cluster string `json:"cluster,omitempty"`
	workflow.Snapshot
}

// TextRequest replaces the YAML buffer.
type TextRequest struct {
	Text string `json:"text"`
}

// ModeRequest switches the editing mode.
type ModeRequest struct {
	Mode string `json:"mode"`
}

// KindInfo describes a supported workload kind.
type KindInfo struct {
	Kind       workload.Kind `json:"kind"`
	APIVersion string        `json:"apiVersion"`
	Resource   string        `json:"resource"`
}

// Handler serves the session API.
type Handler struct {
	sessions  *Manager
	directory Directory
	timeout   time.Duration
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithTimeout bounds the store calls made on behalf of a request.
func WithTimeout(d time.Duration) HandlerOption {
	return func(h *Handler) {
		h.timeout = d
	}
}

// NewHandler returns a Handler over sessions. A nil directory disables the
// cluster listing routes.
func NewHandler(sessions *Manager, directory Directory, opts ...HandlerOption) *Handler {
	h := &Handler{
		sessions:  sessions,
		directory: directory,
		timeout:   defaults.SessionHandlerTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the handlers keyed by mux pattern.
func (h *Handler) Routes() map[string]http.HandlerFunc {
	routes := map[string]http.HandlerFunc{
		"GET /v1/kinds":                  h.listKinds,
		"POST /v1/sessions":              h.create,
		"GET /v1/sessions/{id}":          h.withSession(h.get),
		"DELETE /v1/sessions/{id}":       h.remove,
		"GET /v1/sessions/{id}/text":     h.withSession(h.getText),
		"PUT /v1/sessions/{id}/text":     h.withSession(h.setText),
		"PUT /v1/sessions/{id}/model":    h.withSession(h.setModel),
		"POST /v1/sessions/{id}/mode":    h.withSession(h.switchMode),
		"POST /v1/sessions/{id}/dryrun":  h.withSession(h.dryRun),
		"POST /v1/sessions/{id}/submit":  h.withSession(h.submit),
		"POST /v1/sessions/{id}/confirm": h.withSession(h.confirm),
		"POST /v1/sessions/{id}/cancel":  h.withSession(h.cancelSubmit),
		"GET /v1/sessions/{id}/events":   h.withSession(h.events),
	}
	if h.directory != nil {
		routes["GET /v1/clusters/{cluster}/namespaces"] = h.listNamespaces
		routes["GET /v1/clusters/{cluster}/namespaces/{namespace}/secrets"] = h.listSecrets
	}
	return routes
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, s *Session)

func (h *Handler) withSession(fn sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := h.sessions.Get(r.PathValue("id"))
		if err != nil {
			server.WriteErrorFromErr(w, r, err, "failed to get session", nil)
			return
		}
		fn(w, r, s)
	}
}

func (h *Handler) respond(w http.ResponseWriter, status int, s *Session) {
	serializer.RespondJSON(w, status, Response{
		ID:       s.ID,
		Cluster:  s.Cluster,
		Snapshot: s.Controller.Snapshot(),
	})
}

func (h *Handler) listKinds(w http.ResponseWriter, _ *http.Request) {
	kinds := make([]KindInfo, 0, len(workload.Kinds()))
	for _, k := range workload.Kinds() {
		kinds = append(kinds, KindInfo{
			Kind:       k,
			APIVersion: k.APIVersion(),
			Resource:   k.GroupVersionResource().Resource,
		})
	}
	serializer.RespondJSON(w, http.StatusOK, kinds)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := serializer.ReadJSON(r, &req); err != nil {
		server.WriteErrorFromErr(w, r, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid session request", err), "", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, err := h.sessions.Create(ctx, req)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "failed to open session", map[string]any{"kind": req.Kind})
		return
	}

	w.Header().Set("Location", "/v1/sessions/"+s.ID)
	h.respond(w, http.StatusCreated, s)
}

func (h *Handler) get(w http.ResponseWriter, _ *http.Request, s *Session) {
	h.respond(w, http.StatusOK, s)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(r.PathValue("id")); err != nil {
		server.WriteErrorFromErr(w, r, err, "failed to close session", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getText returns the manifest a dry-run or submit would send.
func (h *Handler) getText(w http.ResponseWriter, r *http.Request, s *Session) {
	text, err := s.Controller.CurrentText()
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "failed to render manifest", nil)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, text); err != nil {
		slog.Warn("response write failed", "error", err)
	}
}

// setText accepts either a TextRequest or a raw YAML body.
func (h *Handler) setText(w http.ResponseWriter, r *http.Request, s *Session) {
	text, err := readText(r)
	if err != nil {
		server.WriteErrorFromErr(w, r, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid text request", err), "", nil)
		return
	}
	if err := s.Controller.SetText(text); err != nil {
		server.WriteErrorFromErr(w, r, err, "failed to set text", nil)
		return
	}
	h.respond(w, http.StatusOK, s)
}

func readText(r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/yaml", "application/x-yaml", "text/yaml", "text/plain":
		b, err := io.ReadAll(io.LimitReader(r.Body, serializer.DefaultMaxBodyBytes))
		if err != nil {
			return "", fmt.Errorf("failed to read request body: %w", err)
		}
		return string(b), nil
	default:
		var req TextRequest
		if err := serializer.ReadJSON(r, &req); err != nil {
			return "", err
		}
		return req.Text, nil
	}
}

func (h *Handler) setModel(w http.ResponseWriter, r *http.Request, s *Session) {
	var model workload.Model
	if err := serializer.ReadJSON(r, &model); err != nil {
		server.WriteErrorFromErr(w, r, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid model", err), "", nil)
		return
	}
	if err := s.Controller.SetModel(&model); err != nil {
		server.WriteErrorFromErr(w, r, err, "failed to set model", nil)
		return
	}
	h.respond(w, http.StatusOK, s)
}

func (h *Handler) switchMode(w http.ResponseWriter, r *http.Request, s *Session) {
	var req ModeRequest
	if err := serializer.ReadJSON(r, &req); err != nil {
		server.WriteErrorFromErr(w, r, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid mode request", err), "", nil)
		return
	}
	mode, ok := workflow.ParseMode(req.Mode)
	if !ok {
		server.WriteErrorFromErr(w, r, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest,
			"unknown mode", map[string]any{"mode": req.Mode}), "", nil)
		return
	}
	if err := s.Controller.SwitchMode(mode); err != nil {
		server.WriteErrorFromErr(w, r, err, "failed to switch mode", nil)
		return
	}
	h.respond(w, http.StatusOK, s)
}

func (h *Handler) dryRun(w http.ResponseWriter, r *http.Request, s *Session) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if _, err := s.Controller.DryRun(ctx); err != nil {
		server.WriteErrorFromErr(w, r, err, "dry-run failed", nil)
		return
	}
	h.respond(w, http.StatusOK, s)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, s *Session) {
	if _, err := s.Controller.RequestSubmit(); err != nil {
		server.WriteErrorFromErr(w, r, err, "failed to prepare submit", nil)
		return
	}
	h.respond(w, http.StatusOK, s)
}

// confirm applies the reviewed manifest. The apply is detached from the
// client connection so a disconnect cannot abort it halfway.
func (h *Handler) confirm(w http.ResponseWriter, r *http.Request, s *Session) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.timeout)
	defer cancel()

	if _, err := s.Controller.Confirm(ctx); err != nil {
		server.WriteErrorFromErr(w, r, err, "apply failed", nil)
		return
	}
	h.respond(w, http.StatusOK, s)
}

func (h *Handler) cancelSubmit(w http.ResponseWriter, r *http.Request, s *Session) {
	if err := s.Controller.Cancel(); err != nil {
		server.WriteErrorFromErr(w, r, err, "failed to cancel submit", nil)
		return
	}
	h.respond(w, http.StatusOK, s)
}

// events streams a snapshot after every change as server-sent events. The
// stream ends when the session is closed or the client goes away.
func (h *Handler) events(w http.ResponseWriter, r *http.Request, s *Session) {
	updates, unsubscribe := s.Controller.Subscribe()
	defer unsubscribe()

	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		slog.Debug("write deadline not supported", "error", err)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, rc, s, s.Controller.Snapshot()); err != nil {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if err := writeEvent(w, rc, s, snap); err != nil {
				slog.Debug("event stream closed", "session", s.ID, "error", err)
				return
			}
		}
	}
}

func writeEvent(w io.Writer, rc *http.ResponseController, s *Session, snap workflow.Snapshot) error {
	data, err := json.Marshal(Response{ID: s.ID, Cluster: s.Cluster, Snapshot: snap})
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data); err != nil {
		return err
	}
	return rc.Flush()
}

func (h *Handler) listNamespaces(w http.ResponseWriter, r *http.Request) {
	cluster := r.PathValue("cluster")

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	names, err := h.directory.ListNamespaces(ctx, cluster)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "failed to list namespaces", map[string]any{"cluster": cluster})
		return
	}
	serializer.RespondJSON(w, http.StatusOK, map[string]any{
		"cluster":    cluster,
		"namespaces": names,
	})
}

func (h *Handler) listSecrets(w http.ResponseWriter, r *http.Request) {
	cluster, namespace := r.PathValue("cluster"), r.PathValue("namespace")
	secretType := r.URL.Query().Get("type")

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	names, err := h.directory.ListSecrets(ctx, cluster, namespace, secretType)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "failed to list secrets",
			map[string]any{"cluster": cluster, "namespace": namespace})
		return
	}
	serializer.RespondJSON(w, http.StatusOK, map[string]any{
		"cluster":   cluster,
		"namespace": namespace,
		"type":      secretType,
		"secrets":   names,
	})
}
