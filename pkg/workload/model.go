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
	"k8s.io/apimachinery/pkg/util/intstr"
)

// Model is the form representation of a single workload manifest. The same
// shape serves every kind; kind-specific settings live in optional sub-structs
// that are ignored for kinds they do not apply to.
type Model struct {
	Name        string            `json:"name,omitempty"`
	Namespace   string            `json:"namespace,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`

	// Replicas applies to Deployment, StatefulSet and Rollout.
	Replicas *int32 `json:"replicas,omitempty"`

	Template PodTemplate `json:"template"`

	// Strategy applies to Deployment and Rollout.
	Strategy *Strategy `json:"strategy,omitempty"`

	MinReadySeconds         *int32 `json:"minReadySeconds,omitempty"`
	RevisionHistoryLimit    *int32 `json:"revisionHistoryLimit,omitempty"`
	ProgressDeadlineSeconds *int32 `json:"progressDeadlineSeconds,omitempty"`

	StatefulSet *StatefulSetSpec `json:"statefulSet,omitempty"`
	Job         *JobSpec         `json:"job,omitempty"`
	CronJob     *CronJobSpec     `json:"cronJob,omitempty"`
}

// PodTemplate captures the pod spec shared by all kinds.
type PodTemplate struct {
	Containers                    []Container       `json:"containers,omitempty"`
	InitContainers                []Container       `json:"initContainers,omitempty"`
	Volumes                       []Volume          `json:"volumes,omitempty"`
	ImagePullSecrets              []string          `json:"imagePullSecrets,omitempty"`
	ServiceAccountName            string            `json:"serviceAccountName,omitempty"`
	RestartPolicy                 string            `json:"restartPolicy,omitempty"`
	NodeSelector                  map[string]string `json:"nodeSelector,omitempty"`
	Tolerations                   []Toleration      `json:"tolerations,omitempty"`
	DNSPolicy                     string            `json:"dnsPolicy,omitempty"`
	DNSConfig                     *DNSConfig        `json:"dnsConfig,omitempty"`
	TerminationGracePeriodSeconds *int64            `json:"terminationGracePeriodSeconds,omitempty"`
}

// Container describes a regular or init container.
type Container struct {
	Name            string           `json:"name,omitempty"`
	Image           string           `json:"image,omitempty"`
	ImagePullPolicy string           `json:"imagePullPolicy,omitempty"`
	Command         []string         `json:"command,omitempty"`
	Args            []string         `json:"args,omitempty"`
	Env             []EnvVar         `json:"env,omitempty"`
	Ports           []Port           `json:"ports,omitempty"`
	Resources       Resources        `json:"resources,omitzero"`
	VolumeMounts    []VolumeMount    `json:"volumeMounts,omitempty"`
	LivenessProbe   *Probe           `json:"livenessProbe,omitempty"`
	ReadinessProbe  *Probe           `json:"readinessProbe,omitempty"`
	StartupProbe    *Probe           `json:"startupProbe,omitempty"`
	Lifecycle       *Lifecycle       `json:"lifecycle,omitempty"`
	SecurityContext *SecurityContext `json:"securityContext,omitempty"`
}

// EnvVar is a container environment variable. Either Value or ValueFrom is set.
type EnvVar struct {
	Name      string        `json:"name"`
	Value     string        `json:"value,omitempty"`
	ValueFrom *EnvValueFrom `json:"valueFrom,omitempty"`
}

// EnvSourceType tags the variant held by an EnvVar.
type EnvSourceType string

const (
	EnvSourceLiteral       EnvSourceType = "literal"
	EnvSourceConfigMapKey  EnvSourceType = "configMapKeyRef"
	EnvSourceSecretKey     EnvSourceType = "secretKeyRef"
	EnvSourceField         EnvSourceType = "fieldRef"
	EnvSourceResourceField EnvSourceType = "resourceFieldRef"
	EnvSourceUnknown       EnvSourceType = ""
)

// EnvValueFrom holds exactly one reference source.
type EnvValueFrom struct {
	ConfigMapKeyRef  *KeySelector      `json:"configMapKeyRef,omitempty"`
	SecretKeyRef     *KeySelector      `json:"secretKeyRef,omitempty"`
	FieldRef         *FieldSelector    `json:"fieldRef,omitempty"`
	ResourceFieldRef *ResourceSelector `json:"resourceFieldRef,omitempty"`
}

// Source returns the variant the variable uses.
func (e EnvVar) Source() EnvSourceType {
	if e.ValueFrom == nil {
		return EnvSourceLiteral
	}
	switch {
	case e.ValueFrom.ConfigMapKeyRef != nil:
		return EnvSourceConfigMapKey
	case e.ValueFrom.SecretKeyRef != nil:
		return EnvSourceSecretKey
	case e.ValueFrom.FieldRef != nil:
		return EnvSourceField
	case e.ValueFrom.ResourceFieldRef != nil:
		return EnvSourceResourceField
	default:
		return EnvSourceUnknown
	}
}

// KeySelector references a key of a ConfigMap or Secret.
type KeySelector struct {
	Name     string `json:"name"`
	Key      string `json:"key"`
	Optional *bool  `json:"optional,omitempty"`
}

// FieldSelector references a pod field, e.g. metadata.name.
type FieldSelector struct {
	FieldPath  string `json:"fieldPath"`
	APIVersion string `json:"apiVersion,omitempty"`
}

// ResourceSelector references a container resource, e.g. limits.cpu.
type ResourceSelector struct {
	ContainerName string `json:"containerName,omitempty"`
	Resource      string `json:"resource"`
	Divisor       string `json:"divisor,omitempty"`
}

// Port is a container port.
type Port struct {
	Name          string `json:"name,omitempty"`
	ContainerPort int32  `json:"containerPort"`
	Protocol      string `json:"protocol,omitempty"`
	HostPort      int32  `json:"hostPort,omitempty"`
}

// Resources holds quantity strings keyed by resource name (cpu, memory, ...).
type Resources struct {
	Requests map[string]string `json:"requests,omitempty"`
	Limits   map[string]string `json:"limits,omitempty"`
}

// IsZero reports whether no requests or limits are set.
func (r Resources) IsZero() bool {
	return len(r.Requests) == 0 && len(r.Limits) == 0
}

// VolumeMount mounts a pod volume into a container.
type VolumeMount struct {
	Name      string `json:"name"`
	MountPath string `json:"mountPath"`
	SubPath   string `json:"subPath,omitempty"`
	ReadOnly  bool   `json:"readOnly,omitempty"`
}

// Probe is a liveness, readiness or startup check.
type Probe struct {
	Handler             `json:",inline"`
	InitialDelaySeconds *int32 `json:"initialDelaySeconds,omitempty"`
	PeriodSeconds       *int32 `json:"periodSeconds,omitempty"`
	TimeoutSeconds      *int32 `json:"timeoutSeconds,omitempty"`
	SuccessThreshold    *int32 `json:"successThreshold,omitempty"`
	FailureThreshold    *int32 `json:"failureThreshold,omitempty"`
}

// Handler is the action of a probe or lifecycle hook. One of the fields is set.
type Handler struct {
	Exec      *ExecAction      `json:"exec,omitempty"`
	HTTPGet   *HTTPGetAction   `json:"httpGet,omitempty"`
	TCPSocket *TCPSocketAction `json:"tcpSocket,omitempty"`
	GRPC      *GRPCAction      `json:"grpc,omitempty"`
}

// ExecAction runs a command in the container.
type ExecAction struct {
	Command []string `json:"command,omitempty"`
}

// HTTPGetAction performs an HTTP GET against the container.
type HTTPGetAction struct {
	Path   string             `json:"path,omitempty"`
	Port   intstr.IntOrString `json:"port"`
	Host   string             `json:"host,omitempty"`
	Scheme string             `json:"scheme,omitempty"`
}

// TCPSocketAction opens a TCP connection to the container.
type TCPSocketAction struct {
	Port intstr.IntOrString `json:"port"`
	Host string             `json:"host,omitempty"`
}

// GRPCAction calls the gRPC health service.
type GRPCAction struct {
	Port    int32   `json:"port"`
	Service *string `json:"service,omitempty"`
}

// Lifecycle holds container lifecycle hooks.
type Lifecycle struct {
	PostStart *Handler `json:"postStart,omitempty"`
	PreStop   *Handler `json:"preStop,omitempty"`
}

// SecurityContext is the container-level security context.
type SecurityContext struct {
	Privileged               *bool  `json:"privileged,omitempty"`
	RunAsNonRoot             *bool  `json:"runAsNonRoot,omitempty"`
	RunAsUser                *int64 `json:"runAsUser,omitempty"`
	RunAsGroup               *int64 `json:"runAsGroup,omitempty"`
	ReadOnlyRootFilesystem   *bool  `json:"readOnlyRootFilesystem,omitempty"`
	AllowPrivilegeEscalation *bool  `json:"allowPrivilegeEscalation,omitempty"`
}

// Volume is a pod volume. Exactly one source is set.
type Volume struct {
	Name                  string                 `json:"name"`
	EmptyDir              *EmptyDirSource        `json:"emptyDir,omitempty"`
	HostPath              *HostPathSource        `json:"hostPath,omitempty"`
	ConfigMap             *ConfigMapSource       `json:"configMap,omitempty"`
	Secret                *SecretSource          `json:"secret,omitempty"`
	PersistentVolumeClaim *PersistentClaimSource `json:"persistentVolumeClaim,omitempty"`
}

// VolumeSourceType tags the variant held by a Volume.
type VolumeSourceType string

const (
	VolumeSourceNone                  VolumeSourceType = ""
	VolumeSourceEmptyDir              VolumeSourceType = "emptyDir"
	VolumeSourceHostPath              VolumeSourceType = "hostPath"
	VolumeSourceConfigMap             VolumeSourceType = "configMap"
	VolumeSourceSecret                VolumeSourceType = "secret"
	VolumeSourcePersistentVolumeClaim VolumeSourceType = "persistentVolumeClaim"
)

// Source returns the variant the volume uses.
func (v Volume) Source() VolumeSourceType {
	switch {
	case v.EmptyDir != nil:
		return VolumeSourceEmptyDir
	case v.HostPath != nil:
		return VolumeSourceHostPath
	case v.ConfigMap != nil:
		return VolumeSourceConfigMap
	case v.Secret != nil:
		return VolumeSourceSecret
	case v.PersistentVolumeClaim != nil:
		return VolumeSourcePersistentVolumeClaim
	default:
		return VolumeSourceNone
	}
}

type EmptyDirSource struct {
	Medium    string `json:"medium,omitempty"`
	SizeLimit string `json:"sizeLimit,omitempty"`
}

type HostPathSource struct {
	Path string `json:"path"`
	Type string `json:"type,omitempty"`
}

type ConfigMapSource struct {
	Name        string `json:"name"`
	DefaultMode *int32 `json:"defaultMode,omitempty"`
	Optional    *bool  `json:"optional,omitempty"`
}

type SecretSource struct {
	SecretName  string `json:"secretName"`
	DefaultMode *int32 `json:"defaultMode,omitempty"`
	Optional    *bool  `json:"optional,omitempty"`
}

type PersistentClaimSource struct {
	ClaimName string `json:"claimName"`
	ReadOnly  bool   `json:"readOnly,omitempty"`
}

// Toleration lets pods schedule onto tainted nodes.
type Toleration struct {
	Key               string `json:"key,omitempty"`
	Operator          string `json:"operator,omitempty"`
	Value             string `json:"value,omitempty"`
	Effect            string `json:"effect,omitempty"`
	TolerationSeconds *int64 `json:"tolerationSeconds,omitempty"`
}

// DNSConfig customizes pod DNS resolution.
type DNSConfig struct {
	Nameservers []string    `json:"nameservers,omitempty"`
	Searches    []string    `json:"searches,omitempty"`
	Options     []DNSOption `json:"options,omitempty"`
}

type DNSOption struct {
	Name  string  `json:"name"`
	Value *string `json:"value,omitempty"`
}

// StrategyType names a rollout strategy.
type StrategyType string

const (
	StrategyRecreate      StrategyType = "Recreate"
	StrategyRollingUpdate StrategyType = "RollingUpdate"
	StrategyCanary        StrategyType = "Canary"
	StrategyBlueGreen     StrategyType = "BlueGreen"
)

// Strategy is the update strategy of a Deployment or Rollout. Deployments
// accept Recreate and RollingUpdate; Rollouts accept Canary and BlueGreen.
type Strategy struct {
	Type           StrategyType        `json:"type,omitempty"`
	MaxSurge       *intstr.IntOrString `json:"maxSurge,omitempty"`
	MaxUnavailable *intstr.IntOrString `json:"maxUnavailable,omitempty"`
	Steps          []CanaryStep        `json:"steps,omitempty"`
	BlueGreen      *BlueGreen          `json:"blueGreen,omitempty"`
}

// CanaryStep is one step of a canary rollout. One field is set.
type CanaryStep struct {
	SetWeight *int32       `json:"setWeight,omitempty"`
	Pause     *CanaryPause `json:"pause,omitempty"`
}

// CanaryPause pauses a canary rollout, indefinitely when Duration is empty.
type CanaryPause struct {
	Duration string `json:"duration,omitempty"`
}

// BlueGreen configures a blue-green Rollout.
type BlueGreen struct {
	ActiveService        string `json:"activeService"`
	PreviewService       string `json:"previewService,omitempty"`
	AutoPromotionEnabled *bool  `json:"autoPromotionEnabled,omitempty"`
}

// StatefulSetSpec holds StatefulSet-only settings.
type StatefulSetSpec struct {
	ServiceName         string `json:"serviceName,omitempty"`
	PodManagementPolicy string `json:"podManagementPolicy,omitempty"`
}

// JobSpec holds the run-to-completion settings of a Job, or of the job
// template of a CronJob.
type JobSpec struct {
	Completions             *int32 `json:"completions,omitempty"`
	Parallelism             *int32 `json:"parallelism,omitempty"`
	BackoffLimit            *int32 `json:"backoffLimit,omitempty"`
	ActiveDeadlineSeconds   *int64 `json:"activeDeadlineSeconds,omitempty"`
	TTLSecondsAfterFinished *int32 `json:"ttlSecondsAfterFinished,omitempty"`
}

// IsZero reports whether no job setting is present.
func (j *JobSpec) IsZero() bool {
	return j == nil || (j.Completions == nil && j.Parallelism == nil && j.BackoffLimit == nil &&
		j.ActiveDeadlineSeconds == nil && j.TTLSecondsAfterFinished == nil)
}

// CronJobSpec holds CronJob scheduling settings.
type CronJobSpec struct {
	Schedule                   string `json:"schedule"`
	TimeZone                   string `json:"timeZone,omitempty"`
	Suspend                    *bool  `json:"suspend,omitempty"`
	ConcurrencyPolicy          string `json:"concurrencyPolicy,omitempty"`
	StartingDeadlineSeconds    *int64 `json:"startingDeadlineSeconds,omitempty"`
	SuccessfulJobsHistoryLimit *int32 `json:"successfulJobsHistoryLimit,omitempty"`
	FailedJobsHistoryLimit     *int32 `json:"failedJobsHistoryLimit,omitempty"`
}

// HasImage reports whether every container names an image.
func (m *Model) HasImage() bool {
	if m == nil || len(m.Template.Containers) == 0 {
		return false
	}
	for _, c := range m.Template.Containers {
		if c.Image == "" {
			return false
		}
	}
	return true
}
