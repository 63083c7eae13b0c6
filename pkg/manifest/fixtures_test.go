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
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/utils/ptr"

	"github.com/NVIDIA/kubeconsole/pkg/workload"
)

// fullModel populates every field the kind supports.
func fullModel(kind workload.Kind) *workload.Model {
	m := &workload.Model{
		Name:        "web",
		Namespace:   "apps",
		Labels:      map[string]string{"app": "web", "tier": "frontend", "version": "1.0"},
		Annotations: map[string]string{"owner": "platform", "retries": "3"},
		Template: workload.PodTemplate{
			Containers: []workload.Container{{
				Name:            "nginx",
				Image:           "nginx:1.25",
				ImagePullPolicy: "IfNotPresent",
				Command:         []string{"/bin/sh", "-c"},
				Args:            []string{"exec nginx -g 'daemon off;'"},
				Env: []workload.EnvVar{
					{Name: "PORT", Value: "8080"},
					{Name: "DEBUG", Value: "true"},
					{Name: "EMPTY"},
					{Name: "CONFIG", ValueFrom: &workload.EnvValueFrom{
						ConfigMapKeyRef: &workload.KeySelector{Name: "web-config", Key: "mode", Optional: ptr.To(true)}}},
					{Name: "TOKEN", ValueFrom: &workload.EnvValueFrom{
						SecretKeyRef: &workload.KeySelector{Name: "web-secret", Key: "token"}}},
					{Name: "POD_NAME", ValueFrom: &workload.EnvValueFrom{
						FieldRef: &workload.FieldSelector{FieldPath: "metadata.name", APIVersion: "v1"}}},
					{Name: "CPU_LIMIT", ValueFrom: &workload.EnvValueFrom{
						ResourceFieldRef: &workload.ResourceSelector{ContainerName: "nginx", Resource: "limits.cpu", Divisor: "1m"}}},
				},
				Ports: []workload.Port{
					{Name: "http", ContainerPort: 8080, Protocol: "TCP"},
					{ContainerPort: 9090, HostPort: 19090},
				},
				Resources: workload.Resources{
					Requests: map[string]string{"cpu": "100m", "memory": "128Mi"},
					Limits:   map[string]string{"cpu": "1", "memory": "1Gi"},
				},
				VolumeMounts: []workload.VolumeMount{
					{Name: "cache", MountPath: "/cache"},
					{Name: "config", MountPath: "/etc/nginx/conf.d", SubPath: "site", ReadOnly: true},
				},
				LivenessProbe: &workload.Probe{
					Handler:             workload.Handler{HTTPGet: &workload.HTTPGetAction{Path: "/healthz", Port: intstr.FromString("http"), Scheme: "HTTP"}},
					InitialDelaySeconds: ptr.To[int32](5),
					PeriodSeconds:       ptr.To[int32](10),
				},
				ReadinessProbe: &workload.Probe{
					Handler:          workload.Handler{TCPSocket: &workload.TCPSocketAction{Port: intstr.FromInt32(8080)}},
					TimeoutSeconds:   ptr.To[int32](2),
					SuccessThreshold: ptr.To[int32](1),
					FailureThreshold: ptr.To[int32](3),
				},
				StartupProbe: &workload.Probe{
					Handler: workload.Handler{GRPC: &workload.GRPCAction{Port: 9090, Service: ptr.To("health")}},
				},
				Lifecycle: &workload.Lifecycle{
					PreStop: &workload.Handler{Exec: &workload.ExecAction{Command: []string{"nginx", "-s", "quit"}}},
				},
				SecurityContext: &workload.SecurityContext{
					RunAsNonRoot:             ptr.To(true),
					RunAsUser:                ptr.To[int64](1000),
					ReadOnlyRootFilesystem:   ptr.To(true),
					AllowPrivilegeEscalation: ptr.To(false),
				},
			}},
			InitContainers: []workload.Container{{
				Name:    "migrate",
				Image:   "busybox:1.36",
				Command: []string{"sh", "-c", "echo ready"},
			}},
			Volumes: []workload.Volume{
				{Name: "cache", EmptyDir: &workload.EmptyDirSource{Medium: "Memory", SizeLimit: "64Mi"}},
				{Name: "scratch", EmptyDir: &workload.EmptyDirSource{}},
				{Name: "config", ConfigMap: &workload.ConfigMapSource{Name: "web-config", DefaultMode: ptr.To[int32](420)}},
				{Name: "tls", Secret: &workload.SecretSource{SecretName: "web-tls", Optional: ptr.To(false)}},
				{Name: "data", PersistentVolumeClaim: &workload.PersistentClaimSource{ClaimName: "web-data", ReadOnly: true}},
				{Name: "logs", HostPath: &workload.HostPathSource{Path: "/var/log", Type: "Directory"}},
			},
			ImagePullSecrets:   []string{"regcred"},
			ServiceAccountName: "web",
			NodeSelector:       map[string]string{"kubernetes.io/os": "linux"},
			Tolerations: []workload.Toleration{
				{Key: "dedicated", Operator: "Equal", Value: "web", Effect: "NoSchedule"},
				{Operator: "Exists", Effect: "NoExecute", TolerationSeconds: ptr.To[int64](300)},
			},
			DNSPolicy: "ClusterFirst",
			DNSConfig: &workload.DNSConfig{
				Nameservers: []string{"1.1.1.1"},
				Searches:    []string{"svc.cluster.local"},
				Options:     []workload.DNSOption{{Name: "ndots", Value: ptr.To("2")}, {Name: "edns0"}},
			},
			TerminationGracePeriodSeconds: ptr.To[int64](45),
		},
	}

	switch kind {
	case workload.KindDeployment:
		m.Replicas = ptr.To[int32](3)
		m.Strategy = &workload.Strategy{
			Type:           workload.StrategyRollingUpdate,
			MaxSurge:       ptr.To(intstr.FromString("25%")),
			MaxUnavailable: ptr.To(intstr.FromInt32(0)),
		}
		m.MinReadySeconds = ptr.To[int32](10)
		m.RevisionHistoryLimit = ptr.To[int32](5)
		m.ProgressDeadlineSeconds = ptr.To[int32](600)
	case workload.KindRollout:
		m.Replicas = ptr.To[int32](4)
		m.Strategy = &workload.Strategy{
			Type:     workload.StrategyCanary,
			MaxSurge: ptr.To(intstr.FromInt32(1)),
			Steps: []workload.CanaryStep{
				{SetWeight: ptr.To[int32](20)},
				{Pause: &workload.CanaryPause{Duration: "10m"}},
				{SetWeight: ptr.To[int32](50)},
				{Pause: &workload.CanaryPause{}},
			},
		}
		m.ProgressDeadlineSeconds = ptr.To[int32](300)
	case workload.KindStatefulSet:
		m.Replicas = ptr.To[int32](3)
		m.StatefulSet = &workload.StatefulSetSpec{ServiceName: "web-headless", PodManagementPolicy: "Parallel"}
		m.RevisionHistoryLimit = ptr.To[int32](2)
	case workload.KindDaemonSet:
		m.MinReadySeconds = ptr.To[int32](15)
	case workload.KindJob:
		m.Template.RestartPolicy = "OnFailure"
		m.Job = &workload.JobSpec{
			Completions:             ptr.To[int32](5),
			Parallelism:             ptr.To[int32](2),
			BackoffLimit:            ptr.To[int32](4),
			ActiveDeadlineSeconds:   ptr.To[int64](3600),
			TTLSecondsAfterFinished: ptr.To[int32](120),
		}
	case workload.KindCronJob:
		m.CronJob = &workload.CronJobSpec{
			Schedule:                   "*/5 * * * *",
			TimeZone:                   "Etc/UTC",
			Suspend:                    ptr.To(false),
			ConcurrencyPolicy:          "Forbid",
			StartingDeadlineSeconds:    ptr.To[int64](60),
			SuccessfulJobsHistoryLimit: ptr.To[int32](3),
			FailedJobsHistoryLimit:     ptr.To[int32](1),
		}
		m.Job = &workload.JobSpec{BackoffLimit: ptr.To[int32](1)}
	}
	return m
}

// minimalModel is the smallest model a user can submit.
func minimalModel(name, image string) *workload.Model {
	return &workload.Model{
		Name:     name,
		Template: workload.PodTemplate{Containers: []workload.Container{{Name: "app", Image: image}}},
	}
}
