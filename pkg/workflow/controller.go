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

package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/NVIDIA/kubeconsole/pkg/errors"
	"github.com/NVIDIA/kubeconsole/pkg/manifest"
	"github.com/NVIDIA/kubeconsole/pkg/workload"
)

// subscriberBuffer is the number of snapshots queued per subscriber before
// older ones are dropped.
const subscriberBuffer = 8

// Controller drives one editing session of a workload manifest from load to
// apply. Every mutation of a live object passes through a review of the
// exact text to be applied; Confirm is the only path to the store's
// non-dry-run apply.
//
// Store calls run without holding the controller lock, so edits and mode
// switches stay available while a dry-run is outstanding.
type Controller struct {
	store Store

	mu    sync.Mutex
	state State
	mode  Mode

	kind      workload.Kind
	editing   bool
	namespace string
	name      string

	// original is the manifest text as loaded. Only a new load replaces it.
	original string
	// base is the manifest the form model is overlaid onto when editing.
	base   string
	model  *workload.Model
	buffer string

	dryRun         *DryRunResult
	dryRunInFlight bool
	review         *Review
	result         *ApplyResult
	failure        *Failure

	// generation invalidates results of store calls started before a reload
	// or abandon.
	generation uint64
	closed     bool

	subs    map[int]chan Snapshot
	nextSub int
}

// New returns a controller in the Loading state.
func New(store Store) *Controller {
	return &Controller{
		store: store,
		state: StateLoading,
		mode:  ModeForm,
		subs:  make(map[int]chan Snapshot),
	}
}

// LoadExisting fetches a live workload and starts an edit session on it.
func (c *Controller) LoadExisting(ctx context.Context, kind workload.Kind, namespace, name string) error {
	c.mu.Lock()
	if err := c.openLocked("load"); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.state == StateSubmitting {
		c.mu.Unlock()
		return invalidState("load", c.state)
	}
	c.generation++
	gen := c.generation
	c.dryRunInFlight = false
	c.kind, c.namespace, c.name, c.editing = kind, namespace, name, true
	c.transitionLocked(StateLoading)
	c.mu.Unlock()

	start := time.Now()
	text, err := c.store.Load(ctx, kind, namespace, name)
	observeStoreCall("load", start, err == nil, err)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return apperrors.New(apperrors.ErrCodeInvalidState, "load superseded")
	}
	if err != nil {
		err = storeError(err)
		c.failLocked(err)
		return err
	}

	parsedKind, model, err := manifest.Parse(text)
	if err == nil && parsedKind != kind {
		err = apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest, "loaded manifest has a different kind",
			map[string]any{"expected": string(kind), "actual": string(parsedKind)})
	}
	if err != nil {
		c.failLocked(err)
		return err
	}

	c.original, c.base, c.model, c.buffer = text, text, model, ""
	c.mode = ModeForm
	c.resetResultsLocked()
	c.transitionLocked(StateReady)
	slog.Debug("loaded workload", "kind", kind, "namespace", namespace, "name", name, "bytes", len(text))
	return nil
}

// LoadNew starts a create session from the default model of kind.
func (c *Controller) LoadNew(kind workload.Kind) error {
	if !kind.IsValid() {
		return apperrors.NewWithContext(apperrors.ErrCodeUnsupportedKind, "unsupported workload kind",
			map[string]any{"kind": string(kind)})
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.openLocked("load"); err != nil {
		return err
	}
	if c.state == StateSubmitting {
		return invalidState("load", c.state)
	}
	c.generation++
	c.dryRunInFlight = false

	model := workload.NewModel(kind)
	c.kind, c.namespace, c.name, c.editing = kind, model.Namespace, model.Name, false
	c.original, c.base, c.model, c.buffer = "", "", model, ""
	c.mode = ModeForm
	c.resetResultsLocked()
	c.transitionLocked(StateReady)
	return nil
}

// UpdateModel applies fn to a copy of the form model and keeps the result.
// It requires form mode.
func (c *Controller) UpdateModel(fn func(m *workload.Model)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editableLocked("update model"); err != nil {
		return err
	}
	if c.mode != ModeForm {
		return apperrors.New(apperrors.ErrCodeInvalidState, "model edits require form mode")
	}

	next := c.model.DeepCopy()
	fn(next)
	c.model = next
	c.editedLocked()
	return nil
}

// SetModel replaces the form model. It requires form mode.
func (c *Controller) SetModel(m *workload.Model) error {
	if m == nil {
		return apperrors.New(apperrors.ErrCodeInvalidRequest, "model is required")
	}
	return c.UpdateModel(func(dst *workload.Model) {
		*dst = *m.DeepCopy()
	})
}

// SetText replaces the YAML buffer. It requires YAML mode.
func (c *Controller) SetText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editableLocked("set text"); err != nil {
		return err
	}
	if c.mode != ModeYAML {
		return apperrors.New(apperrors.ErrCodeInvalidState, "text edits require yaml mode")
	}
	c.buffer = text
	c.editedLocked()
	return nil
}

// SwitchMode toggles between form and YAML editing. Entering YAML mode
// renders the model into the buffer; leaving it parses the buffer, and a
// syntax error keeps the controller in YAML mode.
func (c *Controller) SwitchMode(target Mode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editableLocked("switch mode"); err != nil {
		return err
	}
	if target == c.mode {
		return nil
	}

	switch target {
	case ModeYAML:
		text, err := c.renderLocked()
		if err != nil {
			return err
		}
		c.buffer = text
	case ModeForm:
		kind, model, err := c.parseBufferLocked()
		if err != nil {
			c.failure = failureOf(err)
			c.publishLocked()
			return err
		}
		c.kind, c.model = kind, model
		if c.editing {
			c.base = c.buffer
		}
		c.buffer = ""
	default:
		return apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest, "unknown mode",
			map[string]any{"mode": string(target)})
	}

	c.mode = target
	c.editedLocked()
	return nil
}

// CurrentText returns the manifest text that a dry-run or submit would send.
func (c *Controller) CurrentText() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.model == nil && c.mode == ModeForm {
		return "", apperrors.New(apperrors.ErrCodeInvalidState, "nothing loaded")
	}
	if c.mode == ModeYAML {
		return c.buffer, nil
	}
	return c.renderLocked()
}

// DryRun validates the current text against the cluster without persisting
// it. A manifest with a syntax error, or a container without an image, is
// rejected locally without calling the store.
func (c *Controller) DryRun(ctx context.Context) (*DryRunResult, error) {
	c.mu.Lock()
	if c.dryRunInFlight {
		c.mu.Unlock()
		return nil, busy("dry-run")
	}
	if err := c.readyLocked("dry-run"); err != nil {
		c.mu.Unlock()
		return nil, err
	}

	text, model, err := c.candidateLocked()
	if err != nil {
		c.failure = failureOf(err)
		c.publishLocked()
		c.mu.Unlock()
		return nil, err
	}
	if !model.HasImage() {
		res := &DryRunResult{Local: true, Message: "every container requires an image"}
		c.dryRun = res
		c.publishLocked()
		c.mu.Unlock()
		return res, apperrors.New(apperrors.ErrCodeDryRunRejected, res.Message)
	}

	gen := c.generation
	c.failure = nil
	c.dryRunInFlight = true
	c.transitionLocked(StateDryRunning)
	c.mu.Unlock()

	start := time.Now()
	res, err := c.store.Apply(ctx, text, true)
	observeStoreCall("dry_run", start, err == nil && res != nil && res.Success, err)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return nil, apperrors.New(apperrors.ErrCodeInvalidState, "dry-run result discarded")
	}
	c.dryRunInFlight = false
	if c.state == StateDryRunning {
		c.transitionLocked(StateReady)
	}
	if err != nil {
		err = storeError(err)
		c.dryRun = &DryRunResult{Message: failureOf(err).Message}
		c.failure = failureOf(err)
		c.publishLocked()
		return nil, err
	}

	out := &DryRunResult{Success: res.Success, Message: res.Message}
	c.dryRun = out
	c.publishLocked()
	if !res.Success {
		return out, apperrors.New(apperrors.ErrCodeDryRunRejected, res.Message)
	}
	return out, nil
}

// RequestSubmit freezes the current text for review and moves to
// ConfirmPending. When editing, the review carries the diff against the
// loaded manifest.
func (c *Controller) RequestSubmit() (*Review, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dryRunInFlight {
		return nil, busy("submit")
	}
	if err := c.readyLocked("submit"); err != nil {
		return nil, err
	}

	text, model, err := c.candidateLocked()
	if err != nil {
		c.failure = failureOf(err)
		c.publishLocked()
		return nil, err
	}
	if !model.HasImage() {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "every container requires an image")
	}

	review := &Review{Text: text}
	if c.editing {
		d, err := manifest.Compare(c.original, text)
		if err != nil {
			return nil, err
		}
		review.Diff = d
	}
	c.review = review
	c.failure = nil
	c.transitionLocked(StateConfirmPending)

	out := *review
	return &out, nil
}

// Confirm applies the reviewed text. It is only valid in ConfirmPending and
// calls the store at most once per review.
func (c *Controller) Confirm(ctx context.Context) (*ApplyResult, error) {
	c.mu.Lock()
	if err := c.openLocked("confirm"); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	switch c.state {
	case StateConfirmPending:
	case StateSubmitting:
		c.mu.Unlock()
		return nil, busy("submit")
	default:
		state := c.state
		c.mu.Unlock()
		return nil, invalidState("confirm", state)
	}
	text := c.review.Text
	c.transitionLocked(StateSubmitting)
	c.mu.Unlock()

	start := time.Now()
	res, err := c.store.Apply(ctx, text, false)
	observeStoreCall("apply", start, err == nil && res != nil && res.Success, err)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.review = nil
	if err != nil {
		err = storeError(err)
		c.failLocked(err)
		return nil, err
	}
	if !res.Success {
		rejected := apperrors.New(apperrors.ErrCodeApplyRejected, res.Message)
		c.failLocked(rejected)
		return res, rejected
	}

	c.result = res
	c.transitionLocked(StateDone)
	slog.Info("workload applied",
		"kind", c.kind, "namespace", c.namespace, "name", c.name, "created", res.Created)
	return res, nil
}

// Cancel leaves ConfirmPending without applying.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.openLocked("cancel"); err != nil {
		return err
	}
	if c.state != StateConfirmPending {
		return invalidState("cancel", c.state)
	}
	c.review = nil
	c.transitionLocked(StateReady)
	return nil
}

// Abandon ends the session. Results of an outstanding dry-run are
// discarded. A submit in flight cannot be abandoned.
func (c *Controller) Abandon() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	if c.state == StateSubmitting {
		return invalidState("abandon", c.state)
	}
	c.generation++
	c.dryRunInFlight = false
	c.closed = true
	for id, ch := range c.subs {
		close(ch)
		delete(c.subs, id)
	}
	return nil
}

// Closed reports whether the session was abandoned.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Original returns the manifest text as loaded, empty when creating.
func (c *Controller) Original() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.original
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe returns a channel receiving a snapshot after every change. Slow
// subscribers only see the most recent snapshots. The returned func
// unsubscribes.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan Snapshot, subscriberBuffer)
	if c.closed {
		close(ch)
		return ch, func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subs[id]; ok {
				close(sub)
				delete(c.subs, id)
			}
		})
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		State:          c.state,
		Mode:           c.mode,
		Kind:           c.kind,
		Editing:        c.editing,
		Namespace:      c.namespace,
		Name:           c.name,
		Model:          c.model.DeepCopy(),
		Original:       c.original,
		DryRun:         c.dryRun,
		DryRunInFlight: c.dryRunInFlight,
		Review:         c.review,
		Result:         c.result,
		Error:          c.failure,
	}
	if c.model != nil {
		s.Issues = workload.Validate(c.kind, c.model)
	}
	if c.mode == ModeYAML {
		s.Text = c.buffer
	} else if c.model != nil {
		if text, err := c.renderLocked(); err == nil {
			s.Text = text
		}
	}
	return s
}

func (c *Controller) publishLocked() {
	if len(c.subs) == 0 {
		return
	}
	snap := c.snapshotLocked()
	for _, ch := range c.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func (c *Controller) transitionLocked(to State) {
	if c.state != to {
		slog.Debug("workflow transition", "from", c.state, "to", to, "kind", c.kind, "name", c.name)
		workflowTransitions.WithLabelValues(string(to)).Inc()
	}
	c.state = to
	c.publishLocked()
}

func (c *Controller) failLocked(err error) {
	c.failure = failureOf(err)
	slog.Warn("workflow failed", "kind", c.kind, "name", c.name, "code", c.failure.Code, "error", c.failure.Message)
	c.transitionLocked(StateFailed)
}

func (c *Controller) resetResultsLocked() {
	c.dryRun, c.review, c.result, c.failure = nil, nil, nil, nil
}

// editedLocked records a user edit; it clears a previous submit failure.
func (c *Controller) editedLocked() {
	if c.state == StateFailed {
		c.failure = nil
		c.transitionLocked(StateReady)
		return
	}
	c.publishLocked()
}

func (c *Controller) openLocked(op string) error {
	if c.closed {
		return apperrors.NewWithContext(apperrors.ErrCodeInvalidState, "session closed",
			map[string]any{"operation": op})
	}
	return nil
}

// editableLocked allows edits in Ready, Failed and during a dry-run.
func (c *Controller) editableLocked(op string) error {
	if err := c.openLocked(op); err != nil {
		return err
	}
	switch c.state {
	case StateReady, StateFailed, StateDryRunning:
	default:
		return invalidState(op, c.state)
	}
	if c.model == nil {
		return apperrors.New(apperrors.ErrCodeInvalidState, "nothing loaded")
	}
	return nil
}

// readyLocked allows dry-run and submit from Ready and Failed.
func (c *Controller) readyLocked(op string) error {
	if err := c.openLocked(op); err != nil {
		return err
	}
	if c.state != StateReady && c.state != StateFailed {
		return invalidState(op, c.state)
	}
	if c.model == nil {
		return apperrors.New(apperrors.ErrCodeInvalidState, "nothing loaded")
	}
	return nil
}

// renderLocked renders the form model. Edit sessions overlay the model onto
// the loaded manifest; create sessions synthesize from scratch.
func (c *Controller) renderLocked() (string, error) {
	if c.editing && c.base != "" {
		return manifest.Overlay(c.base, c.model)
	}
	return manifest.Synthesize(c.kind, c.model)
}

func (c *Controller) parseBufferLocked() (workload.Kind, *workload.Model, error) {
	kind, model, err := manifest.Parse(c.buffer)
	if err != nil {
		return "", nil, err
	}
	if c.editing && kind != c.kind {
		return "", nil, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest,
			"the kind of an existing workload cannot change",
			map[string]any{"expected": string(c.kind), "actual": string(kind)})
	}
	return kind, model, nil
}

// candidateLocked returns the text to send and the model it describes.
func (c *Controller) candidateLocked() (string, *workload.Model, error) {
	if c.mode == ModeYAML {
		_, model, err := c.parseBufferLocked()
		if err != nil {
			return "", nil, err
		}
		return c.buffer, model, nil
	}
	text, err := c.renderLocked()
	if err != nil {
		return "", nil, err
	}
	return text, c.model, nil
}

func invalidState(op string, s State) error {
	return apperrors.NewWithContext(apperrors.ErrCodeInvalidState,
		fmt.Sprintf("%s is not allowed in state %s", op, s),
		map[string]any{"operation": op, "state": string(s)})
}

func busy(op string) error {
	return apperrors.NewWithContext(apperrors.ErrCodeBusy,
		fmt.Sprintf("%s already in progress", op),
		map[string]any{"operation": op})
}

// storeError classifies store errors without a code as transport failures.
func storeError(err error) error {
	if apperrors.CodeOf(err) != "" {
		return err
	}
	return apperrors.Wrap(apperrors.ErrCodeUnavailable, "manifest store request failed", err)
}

func failureOf(err error) *Failure {
	code := apperrors.CodeOf(err)
	if code == "" {
		code = apperrors.ErrCodeInternal
	}
	msg := err.Error()
	var se *apperrors.StructuredError
	if errors.As(err, &se) {
		msg = se.Message
		if se.Cause != nil {
			msg = fmt.Sprintf("%s: %v", se.Message, se.Cause)
		}
	}
	return &Failure{Code: string(code), Message: msg}
}
