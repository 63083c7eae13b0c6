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
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/distribution/reference"
	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/apimachinery/pkg/util/validation"
)

// maxCronJobNameLength leaves room for the suffix appended to spawned Jobs.
const maxCronJobNameLength = 52

// Issue is a single advisory validation finding.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Field, i.Message)
}

// Validate reports problems that would make the cluster reject the model.
// It is advisory: synthesis never depends on it, and the authoritative
// check is the server-side dry-run.
func Validate(kind Kind, m *Model) []Issue {
	v := &validator{}
	if !kind.IsValid() {
		v.add("kind", "unsupported workload kind %q", kind)
		return v.issues
	}
	if m == nil {
		v.add("model", "model is required")
		return v.issues
	}

	v.errs("name", validation.IsDNS1123Label(m.Name))
	if kind == KindCronJob && len(m.Name) > maxCronJobNameLength {
		v.add("name", "must be no more than %d characters", maxCronJobNameLength)
	}
	if m.Namespace != "" {
		v.errs("namespace", validation.IsDNS1123Label(m.Namespace))
	}
	for _, k := range slices.Sorted(maps.Keys(m.Labels)) {
		v.errs("labels."+k, validation.IsQualifiedName(k))
		v.errs("labels."+k, validation.IsValidLabelValue(m.Labels[k]))
	}
	for _, k := range slices.Sorted(maps.Keys(m.Annotations)) {
		v.errs("annotations."+k, validation.IsQualifiedName(k))
	}
	if m.Replicas != nil && *m.Replicas < 0 {
		v.add("replicas", "must be greater than or equal to 0")
	}

	v.strategy(kind, m.Strategy)
	v.podTemplate(kind, &m.Template)

	if kind == KindCronJob {
		if m.CronJob == nil || strings.TrimSpace(m.CronJob.Schedule) == "" {
			v.add("cronJob.schedule", "is required")
		} else if n := len(strings.Fields(m.CronJob.Schedule)); n != 5 && !strings.HasPrefix(m.CronJob.Schedule, "@") {
			v.add("cronJob.schedule", "expected 5 fields, got %d", n)
		}
	}

	return v.issues
}

type validator struct {
	issues []Issue
}

func (v *validator) add(field, format string, args ...any) {
	v.issues = append(v.issues, Issue{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) errs(field string, msgs []string) {
	for _, msg := range msgs {
		v.issues = append(v.issues, Issue{Field: field, Message: msg})
	}
}

func (v *validator) strategy(kind Kind, s *Strategy) {
	if s == nil {
		return
	}
	switch kind {
	case KindDeployment:
		if s.Type == StrategyCanary || s.Type == StrategyBlueGreen {
			v.add("strategy.type", "%s is only supported by Rollout", s.Type)
		}
	case KindRollout:
		if s.Type == StrategyRecreate {
			v.add("strategy.type", "Recreate is not supported by Rollout")
		}
		if s.Type == StrategyBlueGreen && (s.BlueGreen == nil || s.BlueGreen.ActiveService == "") {
			v.add("strategy.blueGreen.activeService", "is required")
		}
	default:
		v.add("strategy", "not supported by %s", kind)
	}
}

func (v *validator) podTemplate(kind Kind, t *PodTemplate) {
	if len(t.Containers) == 0 {
		v.add("template.containers", "at least one container is required")
	}

	volumes := make(map[string]bool, len(t.Volumes))
	for i, vol := range t.Volumes {
		field := fmt.Sprintf("template.volumes[%d]", i)
		v.errs(field+".name", validation.IsDNS1123Label(vol.Name))
		if volumes[vol.Name] {
			v.add(field+".name", "duplicate volume %q", vol.Name)
		}
		volumes[vol.Name] = true
		if vol.Source() == VolumeSourceNone {
			v.add(field, "a volume source is required")
		}
	}

	names := make(map[string]bool)
	for i := range t.InitContainers {
		v.container(fmt.Sprintf("template.initContainers[%d]", i), &t.InitContainers[i], names, volumes)
	}
	for i := range t.Containers {
		v.container(fmt.Sprintf("template.containers[%d]", i), &t.Containers[i], names, volumes)
	}

	if kind.Batch() && t.RestartPolicy == "Always" {
		v.add("template.restartPolicy", "must be OnFailure or Never for %s", kind)
	}
}

func (v *validator) container(field string, c *Container, names, volumes map[string]bool) {
	v.errs(field+".name", validation.IsDNS1123Label(c.Name))
	if names[c.Name] {
		v.add(field+".name", "duplicate container %q", c.Name)
	}
	names[c.Name] = true

	if c.Image == "" {
		v.add(field+".image", "is required")
	} else if _, err := reference.ParseNormalizedNamed(c.Image); err != nil {
		v.add(field+".image", "invalid image reference: %v", err)
	}

	for i, p := range c.Ports {
		v.errs(fmt.Sprintf("%s.ports[%d].containerPort", field, i), validation.IsValidPortNum(int(p.ContainerPort)))
	}
	for i, e := range c.Env {
		v.errs(fmt.Sprintf("%s.env[%d].name", field, i), validation.IsEnvVarName(e.Name))
		if e.Source() == EnvSourceUnknown {
			v.add(fmt.Sprintf("%s.env[%d].valueFrom", field, i), "a value source is required")
		}
	}
	quantities(v, field+".resources.requests", c.Resources.Requests)
	quantities(v, field+".resources.limits", c.Resources.Limits)
	for i, vm := range c.VolumeMounts {
		if !volumes[vm.Name] {
			v.add(fmt.Sprintf("%s.volumeMounts[%d].name", field, i), "references unknown volume %q", vm.Name)
		}
	}
}

func quantities(v *validator, field string, q map[string]string) {
	for _, name := range slices.Sorted(maps.Keys(q)) {
		val := q[name]
		if _, err := resource.ParseQuantity(val); err != nil {
			v.add(field+"."+name, "invalid quantity %q", val)
		}
	}
}
