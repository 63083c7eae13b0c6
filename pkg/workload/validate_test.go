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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"k8s.io/utils/ptr"
)

func fields(issues []Issue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.Field)
	}
	return out
}

func TestValidate(t *testing.T) {
	valid := func() *Model { return NewModel(KindDeployment) }

	tests := []struct {
		name   string
		kind   Kind
		mutate func(*Model)
		want   []string
	}{
		{"valid", KindDeployment, func(*Model) {}, nil},
		{"bad name", KindDeployment, func(m *Model) { m.Name = "Web_App" }, []string{"name"}},
		{"bad namespace", KindDeployment, func(m *Model) { m.Namespace = "ns.with.dots" }, []string{"namespace"}},
		{"negative replicas", KindDeployment, func(m *Model) { m.Replicas = ptr.To[int32](-1) }, []string{"replicas"}},
		{"no containers", KindDeployment, func(m *Model) { m.Template.Containers = nil }, []string{"template.containers"}},
		{"empty image", KindDeployment, func(m *Model) { m.Template.Containers[0].Image = "" }, []string{"template.containers[0].image"}},
		{"invalid image", KindDeployment, func(m *Model) { m.Template.Containers[0].Image = "Nginx:Latest" }, []string{"template.containers[0].image"}},
		{"bad port", KindDeployment, func(m *Model) {
			m.Template.Containers[0].Ports = []Port{{ContainerPort: 70000}}
		}, []string{"template.containers[0].ports[0].containerPort"}},
		{"bad quantity", KindDeployment, func(m *Model) {
			m.Template.Containers[0].Resources.Limits = map[string]string{"cpu": "lots"}
		}, []string{"template.containers[0].resources.limits.cpu"}},
		{"unknown volume mount", KindDeployment, func(m *Model) {
			m.Template.Containers[0].VolumeMounts = []VolumeMount{{Name: "data", MountPath: "/data"}}
		}, []string{"template.containers[0].volumeMounts[0].name"}},
		{"volume without source", KindDeployment, func(m *Model) {
			m.Template.Volumes = []Volume{{Name: "data"}}
		}, []string{"template.volumes[0]"}},
		{"duplicate container", KindDeployment, func(m *Model) {
			m.Template.Containers = append(m.Template.Containers, Container{Name: "app", Image: "busybox"})
		}, []string{"template.containers[1].name"}},
		{"canary on deployment", KindDeployment, func(m *Model) {
			m.Strategy = &Strategy{Type: StrategyCanary}
		}, []string{"strategy.type"}},
		{"recreate on rollout", KindRollout, func(m *Model) {
			m.Strategy = &Strategy{Type: StrategyRecreate}
		}, []string{"strategy.type"}},
		{"blue green without service", KindRollout, func(m *Model) {
			m.Strategy = &Strategy{Type: StrategyBlueGreen}
		}, []string{"strategy.blueGreen.activeService"}},
		{"strategy on job", KindJob, func(m *Model) {
			m.Strategy = &Strategy{Type: StrategyRecreate}
		}, []string{"strategy"}},
		{"always restart on job", KindJob, func(m *Model) {
			m.Template.RestartPolicy = "Always"
		}, []string{"template.restartPolicy"}},
		{"missing schedule", KindCronJob, func(m *Model) {
			m.CronJob = &CronJobSpec{}
		}, []string{"cronJob.schedule"}},
		{"short schedule", KindCronJob, func(m *Model) {
			m.CronJob = &CronJobSpec{Schedule: "* * *"}
		}, []string{"cronJob.schedule"}},
		{"macro schedule", KindCronJob, func(m *Model) {
			m.CronJob = &CronJobSpec{Schedule: "@hourly"}
		}, nil},
		{"long cronjob name", KindCronJob, func(m *Model) {
			m.Name = strings.Repeat("a", 60)
		}, []string{"name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid()
			tt.mutate(m)
			got := fields(Validate(tt.kind, m))
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			for _, f := range tt.want {
				assert.Contains(t, got, f)
			}
		})
	}
}

func TestValidate_UnsupportedKind(t *testing.T) {
	issues := Validate(Kind("Pod"), NewModel(KindDeployment))
	assert.Equal(t, []string{"kind"}, fields(issues))

	issues = Validate(KindJob, nil)
	assert.Equal(t, []string{"model"}, fields(issues))
}

func TestIssue_String(t *testing.T) {
	assert.Equal(t, "name: is required", Issue{Field: "name", Message: "is required"}.String())
}
