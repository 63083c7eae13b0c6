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
	"encoding/json"
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/api/equality"
	"k8s.io/utils/ptr"
)

const (
	// DefaultNamespace is used when a model names no namespace.
	DefaultNamespace = "default"

	// DefaultImage seeds the first container of a new model.
	DefaultImage = "nginx:latest"

	// DefaultContainerName seeds the first container of a new model.
	DefaultContainerName = "app"

	// DefaultSchedule seeds the schedule of a new CronJob.
	DefaultSchedule = "0 * * * *"

	// DefaultLabelKey is the label key synthesized from the name when a model has no labels.
	DefaultLabelKey = "app"

	// DefaultReplicas applies to scalable kinds without an explicit count.
	DefaultReplicas int32 = 1

	// DefaultBatchRestartPolicy applies to Job and CronJob pod templates.
	DefaultBatchRestartPolicy = "Never"
)

// DefaultName returns the placeholder name of a new workload, e.g. my-deployment.
func DefaultName(kind Kind) string {
	return "my-" + strings.ToLower(string(kind))
}

// NewModel returns the starting model of a create session.
func NewModel(kind Kind) *Model {
	m := &Model{
		Name:      DefaultName(kind),
		Namespace: DefaultNamespace,
		Template: PodTemplate{
			Containers: []Container{{Name: DefaultContainerName, Image: DefaultImage}},
		},
	}
	if kind == KindCronJob {
		m.CronJob = &CronJobSpec{Schedule: DefaultSchedule}
	}
	return Normalize(kind, m)
}

// DeepCopy returns an independent copy of the model. Empty collections are
// dropped in the copy.
func (m *Model) DeepCopy() *Model {
	if m == nil {
		return nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		c := *m
		return &c
	}
	var out Model
	if err := json.Unmarshal(b, &out); err != nil {
		c := *m
		return &c
	}
	return &out
}

// Equal reports whether two models describe the same workload.
func Equal(a, b *Model) bool {
	return equality.Semantic.DeepEqual(a, b)
}

// Normalize returns a copy of m with defaults applied and settings that do
// not apply to kind removed. The synthesizer renders the normalized model,
// and parsing a synthesized manifest yields it back unchanged.
func Normalize(kind Kind, m *Model) *Model {
	out := m.DeepCopy()
	if out == nil {
		out = &Model{}
	}

	if out.Name == "" {
		out.Name = DefaultName(kind)
	}
	if out.Namespace == "" {
		out.Namespace = DefaultNamespace
	}
	if len(out.Labels) == 0 {
		out.Labels = map[string]string{DefaultLabelKey: out.Name}
	}

	if kind.Scalable() {
		if out.Replicas == nil {
			out.Replicas = ptr.To(DefaultReplicas)
		}
	} else {
		out.Replicas = nil
	}

	out.Strategy = normalizeStrategy(kind, out.Strategy)

	if kind.Batch() {
		out.MinReadySeconds = nil
		out.RevisionHistoryLimit = nil
	}
	if kind != KindDeployment && kind != KindRollout {
		out.ProgressDeadlineSeconds = nil
	}

	if kind != KindStatefulSet || (out.StatefulSet != nil && *out.StatefulSet == (StatefulSetSpec{})) {
		out.StatefulSet = nil
	}
	if !kind.Batch() || out.Job.IsZero() {
		out.Job = nil
	}
	switch {
	case kind != KindCronJob:
		out.CronJob = nil
	case out.CronJob == nil:
		out.CronJob = &CronJobSpec{}
	}

	if kind.Batch() && out.Template.RestartPolicy == "" {
		out.Template.RestartPolicy = DefaultBatchRestartPolicy
	}
	normalizeContainers(out.Template.Containers, "container")
	normalizeContainers(out.Template.InitContainers, "init")

	return out
}

// normalizeContainers names unnamed containers and drops lifecycle and
// security settings that carry no fields.
func normalizeContainers(cs []Container, prefix string) {
	for i := range cs {
		c := &cs[i]
		if c.Name == "" {
			c.Name = fmt.Sprintf("%s-%d", prefix, i)
		}
		if c.Lifecycle != nil && *c.Lifecycle == (Lifecycle{}) {
			c.Lifecycle = nil
		}
		if c.SecurityContext != nil && *c.SecurityContext == (SecurityContext{}) {
			c.SecurityContext = nil
		}
	}
}

func normalizeStrategy(kind Kind, s *Strategy) *Strategy {
	if s == nil {
		return nil
	}

	switch kind {
	case KindDeployment:
		if s.Type == "" && (s.MaxSurge != nil || s.MaxUnavailable != nil) {
			s.Type = StrategyRollingUpdate
		}
		switch s.Type {
		case StrategyRecreate:
			return &Strategy{Type: StrategyRecreate}
		case StrategyRollingUpdate:
			return &Strategy{Type: StrategyRollingUpdate, MaxSurge: s.MaxSurge, MaxUnavailable: s.MaxUnavailable}
		default:
			return nil
		}
	case KindRollout:
		if s.Type == StrategyRollingUpdate || (s.Type == "" && (s.MaxSurge != nil || s.MaxUnavailable != nil || len(s.Steps) > 0)) {
			s.Type = StrategyCanary
		}
		switch s.Type {
		case StrategyCanary:
			return &Strategy{Type: StrategyCanary, MaxSurge: s.MaxSurge, MaxUnavailable: s.MaxUnavailable, Steps: s.Steps}
		case StrategyBlueGreen:
			bg := s.BlueGreen
			if bg == nil {
				bg = &BlueGreen{}
			}
			return &Strategy{Type: StrategyBlueGreen, BlueGreen: bg}
		default:
			return nil
		}
	default:
		return nil
	}
}
