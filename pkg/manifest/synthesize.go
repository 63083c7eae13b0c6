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

package manifest

import (
	"gopkg.in/yaml.v3"

	apperrors "github.com/NVIDIA/kubeconsole/pkg/errors"
	"github.com/NVIDIA/kubeconsole/pkg/workload"
)

// Synthesize renders the manifest for kind from model. The model is
// normalized first, so equal models always produce identical text.
func Synthesize(kind workload.Kind, model *workload.Model) (string, error) {
	if !kind.IsValid() {
		return "", apperrors.NewWithContext(apperrors.ErrCodeUnsupportedKind,
			"unsupported workload kind", map[string]any{"kind": string(kind)})
	}
	return Encode(synthesizeNode(kind, workload.Normalize(kind, model)))
}

// synthesizeNode builds the manifest tree of an already normalized model.
func synthesizeNode(kind workload.Kind, m *workload.Model) *yaml.Node {
	root := newMapping().
		set("apiVersion", strNode(kind.APIVersion())).
		set("kind", strNode(string(kind))).
		setMapping("metadata", objectMeta(m))

	var spec *mapping
	switch kind {
	case workload.KindCronJob:
		spec = cronJobSpec(m)
	case workload.KindJob:
		spec = jobSpec(m)
	default:
		spec = workloadSpec(kind, m)
	}
	return root.setMapping("spec", spec).node
}

func objectMeta(m *workload.Model) *mapping {
	return newMapping().
		set("name", strNode(m.Name)).
		set("namespace", strNode(m.Namespace)).
		set("labels", optStringMap(m.Labels)).
		set("annotations", optStringMap(m.Annotations))
}

// podTemplate renders spec.template; the pod labels always mirror the
// workload labels so they match the selector.
func podTemplate(m *workload.Model) *mapping {
	return newMapping().
		setMapping("metadata", newMapping().set("labels", optStringMap(m.Labels))).
		setMapping("spec", podSpec(&m.Template))
}

func selector(m *workload.Model) *mapping {
	return newMapping().set("matchLabels", optStringMap(m.Labels))
}

// workloadSpec renders the spec of the long-running kinds.
func workloadSpec(kind workload.Kind, m *workload.Model) *mapping {
	spec := newMapping()
	if kind.Scalable() {
		spec.set("replicas", optInt32(m.Replicas))
	}
	spec.setMapping("selector", selector(m)).
		setMapping("template", podTemplate(m))

	switch kind {
	case workload.KindDeployment:
		spec.setMapping("strategy", deploymentStrategy(m.Strategy))
	case workload.KindRollout:
		spec.setMapping("strategy", rolloutStrategy(m.Strategy))
	case workload.KindStatefulSet:
		if sts := m.StatefulSet; sts != nil {
			spec.set("serviceName", optStr(sts.ServiceName)).
				set("podManagementPolicy", optStr(sts.PodManagementPolicy))
		}
	}

	spec.set("minReadySeconds", optInt32(m.MinReadySeconds)).
		set("revisionHistoryLimit", optInt32(m.RevisionHistoryLimit)).
		set("progressDeadlineSeconds", optInt32(m.ProgressDeadlineSeconds))
	return spec
}

func deploymentStrategy(s *workload.Strategy) *mapping {
	if s == nil {
		return nil
	}
	out := newMapping().set("type", strNode(string(s.Type)))
	if s.Type == workload.StrategyRollingUpdate {
		out.setNonEmpty("rollingUpdate", newMapping().
			set("maxSurge", optIntOrString(s.MaxSurge)).
			set("maxUnavailable", optIntOrString(s.MaxUnavailable)))
	}
	return out
}

func rolloutStrategy(s *workload.Strategy) *mapping {
	if s == nil {
		return nil
	}
	switch s.Type {
	case workload.StrategyCanary:
		canary := newMapping().
			set("maxSurge", optIntOrString(s.MaxSurge)).
			set("maxUnavailable", optIntOrString(s.MaxUnavailable))
		if len(s.Steps) > 0 {
			steps := make([]*yaml.Node, 0, len(s.Steps))
			for _, st := range s.Steps {
				step := newMapping().set("setWeight", optInt32(st.SetWeight))
				if st.Pause != nil {
					step.setMapping("pause", newMapping().set("duration", optStr(st.Pause.Duration)))
				}
				steps = append(steps, step.node)
			}
			canary.set("steps", seqNode(steps...))
		}
		return newMapping().setMapping("canary", canary)
	case workload.StrategyBlueGreen:
		bg := s.BlueGreen
		if bg == nil {
			bg = &workload.BlueGreen{}
		}
		return newMapping().setMapping("blueGreen", newMapping().
			set("activeService", strNode(bg.ActiveService)).
			set("previewService", optStr(bg.PreviewService)).
			set("autoPromotionEnabled", optBool(bg.AutoPromotionEnabled)))
	default:
		return nil
	}
}

// jobSpec renders a Job spec: pod template followed by run-to-completion settings.
func jobSpec(m *workload.Model) *mapping {
	spec := newMapping().setMapping("template", podTemplate(m))
	if j := m.Job; j != nil {
		spec.set("completions", optInt32(j.Completions)).
			set("parallelism", optInt32(j.Parallelism)).
			set("backoffLimit", optInt32(j.BackoffLimit)).
			set("activeDeadlineSeconds", optInt64(j.ActiveDeadlineSeconds)).
			set("ttlSecondsAfterFinished", optInt32(j.TTLSecondsAfterFinished))
	}
	return spec
}

// cronJobSpec renders a CronJob spec. The schedule is always double quoted.
func cronJobSpec(m *workload.Model) *mapping {
	c := m.CronJob
	if c == nil {
		c = &workload.CronJobSpec{}
	}
	return newMapping().
		set("schedule", quotedNode(c.Schedule)).
		set("timeZone", optStr(c.TimeZone)).
		set("suspend", optBool(c.Suspend)).
		set("concurrencyPolicy", optStr(c.ConcurrencyPolicy)).
		set("startingDeadlineSeconds", optInt64(c.StartingDeadlineSeconds)).
		set("successfulJobsHistoryLimit", optInt32(c.SuccessfulJobsHistoryLimit)).
		set("failedJobsHistoryLimit", optInt32(c.FailedJobsHistoryLimit)).
		setMapping("jobTemplate", newMapping().setMapping("spec", jobSpec(m)))
}
