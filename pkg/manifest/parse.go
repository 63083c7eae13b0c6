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

// Parse reads manifest text back into the form model. The returned model is
// normalized; sections the model does not cover are ignored, and fields of
// an unexpected type are skipped rather than reported.
//
// Syntax failures carry ErrCodeManifestSyntax. A manifest without a kind, or
// with a kind outside the supported set, yields ErrCodeUnsupportedKind.
func Parse(text string) (workload.Kind, *workload.Model, error) {
	_, root, err := decodeDocument(text)
	if err != nil {
		return "", nil, err
	}
	return parseNode(root)
}

func parseNode(root *yaml.Node) (workload.Kind, *workload.Model, error) {
	var obj map[string]any
	if err := root.Decode(&obj); err != nil {
		return "", nil, syntaxError(err)
	}
	return ParseObject(obj)
}

// ParseObject reads a generic object, such as an unstructured API response,
// into the form model.
func ParseObject(raw map[string]any) (workload.Kind, *workload.Model, error) {
	obj := object(raw)
	rawKind := str(obj, "kind")
	if rawKind == "" {
		return "", nil, apperrors.New(apperrors.ErrCodeUnsupportedKind, "manifest has no kind")
	}
	kind, err := workload.ParseKind(rawKind)
	if err != nil {
		return "", nil, err
	}

	m := &workload.Model{}
	meta := obj.mapAt("metadata")
	m.Name = str(meta, "name")
	m.Namespace = str(meta, "namespace")
	m.Labels = strMap(meta, "labels")
	m.Annotations = strMap(meta, "annotations")

	spec := obj.mapAt("spec")
	switch kind {
	case workload.KindCronJob:
		m.CronJob = &workload.CronJobSpec{
			Schedule:                   str(spec, "schedule"),
			TimeZone:                   str(spec, "timeZone"),
			Suspend:                    boolPtr(spec, "suspend"),
			ConcurrencyPolicy:          str(spec, "concurrencyPolicy"),
			StartingDeadlineSeconds:    int64Ptr(spec, "startingDeadlineSeconds"),
			SuccessfulJobsHistoryLimit: int32Ptr(spec, "successfulJobsHistoryLimit"),
			FailedJobsHistoryLimit:     int32Ptr(spec, "failedJobsHistoryLimit"),
		}
		parseJob(m, spec.mapAt("jobTemplate", "spec"))
	case workload.KindJob:
		parseJob(m, spec)
	default:
		parseWorkload(kind, m, spec)
	}

	return kind, workload.Normalize(kind, m), nil
}

func parseWorkload(kind workload.Kind, m *workload.Model, spec object) {
	m.Replicas = int32Ptr(spec, "replicas")
	m.MinReadySeconds = int32Ptr(spec, "minReadySeconds")
	m.RevisionHistoryLimit = int32Ptr(spec, "revisionHistoryLimit")
	m.ProgressDeadlineSeconds = int32Ptr(spec, "progressDeadlineSeconds")
	m.Template = parsePodSpec(spec.mapAt("template", "spec"))

	switch kind {
	case workload.KindDeployment:
		if s := spec.mapAt("strategy"); s != nil {
			ru := s.mapAt("rollingUpdate")
			m.Strategy = &workload.Strategy{
				Type:           workload.StrategyType(str(s, "type")),
				MaxSurge:       intOrString(ru, "maxSurge"),
				MaxUnavailable: intOrString(ru, "maxUnavailable"),
			}
		}
	case workload.KindRollout:
		m.Strategy = parseRolloutStrategy(spec.mapAt("strategy"))
	case workload.KindStatefulSet:
		m.StatefulSet = &workload.StatefulSetSpec{
			ServiceName:         str(spec, "serviceName"),
			PodManagementPolicy: str(spec, "podManagementPolicy"),
		}
	}
}

func parseRolloutStrategy(s object) *workload.Strategy {
	if bg := s.mapAt("blueGreen"); bg != nil {
		return &workload.Strategy{
			Type: workload.StrategyBlueGreen,
			BlueGreen: &workload.BlueGreen{
				ActiveService:        str(bg, "activeService"),
				PreviewService:       str(bg, "previewService"),
				AutoPromotionEnabled: boolPtr(bg, "autoPromotionEnabled"),
			},
		}
	}
	canary := s.mapAt("canary")
	if canary == nil {
		return nil
	}
	out := &workload.Strategy{
		Type:           workload.StrategyCanary,
		MaxSurge:       intOrString(canary, "maxSurge"),
		MaxUnavailable: intOrString(canary, "maxUnavailable"),
	}
	for _, step := range list(canary, "steps") {
		cs := workload.CanaryStep{SetWeight: int32Ptr(step, "setWeight")}
		if p := step.mapAt("pause"); p != nil {
			cs.Pause = &workload.CanaryPause{Duration: str(p, "duration")}
		}
		out.Steps = append(out.Steps, cs)
	}
	return out
}

func parseJob(m *workload.Model, spec object) {
	m.Job = &workload.JobSpec{
		Completions:             int32Ptr(spec, "completions"),
		Parallelism:             int32Ptr(spec, "parallelism"),
		BackoffLimit:            int32Ptr(spec, "backoffLimit"),
		ActiveDeadlineSeconds:   int64Ptr(spec, "activeDeadlineSeconds"),
		TTLSecondsAfterFinished: int32Ptr(spec, "ttlSecondsAfterFinished"),
	}
	m.Template = parsePodSpec(spec.mapAt("template", "spec"))
}

func parsePodSpec(spec object) workload.PodTemplate {
	t := workload.PodTemplate{
		Containers:                    parseContainers(spec, "containers"),
		InitContainers:                parseContainers(spec, "initContainers"),
		ServiceAccountName:            str(spec, "serviceAccountName"),
		RestartPolicy:                 str(spec, "restartPolicy"),
		NodeSelector:                  strMap(spec, "nodeSelector"),
		DNSPolicy:                     str(spec, "dnsPolicy"),
		TerminationGracePeriodSeconds: int64Ptr(spec, "terminationGracePeriodSeconds"),
	}

	for _, v := range list(spec, "volumes") {
		t.Volumes = append(t.Volumes, parseVolume(v))
	}
	for _, ref := range list(spec, "imagePullSecrets") {
		if name := str(ref, "name"); name != "" {
			t.ImagePullSecrets = append(t.ImagePullSecrets, name)
		}
	}
	for _, tol := range list(spec, "tolerations") {
		t.Tolerations = append(t.Tolerations, workload.Toleration{
			Key:               str(tol, "key"),
			Operator:          str(tol, "operator"),
			Value:             str(tol, "value"),
			Effect:            str(tol, "effect"),
			TolerationSeconds: int64Ptr(tol, "tolerationSeconds"),
		})
	}
	if dns := spec.mapAt("dnsConfig"); dns != nil {
		cfg := &workload.DNSConfig{
			Nameservers: strSlice(dns, "nameservers"),
			Searches:    strSlice(dns, "searches"),
		}
		for _, o := range list(dns, "options") {
			opt := workload.DNSOption{Name: str(o, "name")}
			if v, ok := scalar(o["value"]); ok {
				opt.Value = &v
			}
			cfg.Options = append(cfg.Options, opt)
		}
		t.DNSConfig = cfg
	}
	return t
}

func parseContainers(spec object, key string) []workload.Container {
	var out []workload.Container
	for _, c := range list(spec, key) {
		out = append(out, parseContainer(c))
	}
	return out
}

func parseContainer(c object) workload.Container {
	res := c.mapAt("resources")
	out := workload.Container{
		Name:            str(c, "name"),
		Image:           str(c, "image"),
		ImagePullPolicy: str(c, "imagePullPolicy"),
		Command:         strSlice(c, "command"),
		Args:            strSlice(c, "args"),
		Resources: workload.Resources{
			Requests: strMap(res, "requests"),
			Limits:   strMap(res, "limits"),
		},
		LivenessProbe:  parseProbe(c.mapAt("livenessProbe")),
		ReadinessProbe: parseProbe(c.mapAt("readinessProbe")),
		StartupProbe:   parseProbe(c.mapAt("startupProbe")),
	}

	for _, e := range list(c, "env") {
		ev := workload.EnvVar{Name: str(e, "name"), Value: str(e, "value")}
		if from := e.mapAt("valueFrom"); from != nil {
			ev.Value = ""
			ev.ValueFrom = parseEnvSource(from)
		}
		out.Env = append(out.Env, ev)
	}
	for _, p := range list(c, "ports") {
		out.Ports = append(out.Ports, workload.Port{
			Name:          str(p, "name"),
			ContainerPort: int32Val(p, "containerPort"),
			Protocol:      str(p, "protocol"),
			HostPort:      int32Val(p, "hostPort"),
		})
	}
	for _, vm := range list(c, "volumeMounts") {
		out.VolumeMounts = append(out.VolumeMounts, workload.VolumeMount{
			Name:      str(vm, "name"),
			MountPath: str(vm, "mountPath"),
			SubPath:   str(vm, "subPath"),
			ReadOnly:  boolVal(vm, "readOnly"),
		})
	}
	if lc := c.mapAt("lifecycle"); lc != nil {
		out.Lifecycle = &workload.Lifecycle{
			PostStart: parseHandlerPtr(lc.mapAt("postStart")),
			PreStop:   parseHandlerPtr(lc.mapAt("preStop")),
		}
	}
	if sc := c.mapAt("securityContext"); sc != nil {
		out.SecurityContext = &workload.SecurityContext{
			Privileged:               boolPtr(sc, "privileged"),
			RunAsNonRoot:             boolPtr(sc, "runAsNonRoot"),
			RunAsUser:                int64Ptr(sc, "runAsUser"),
			RunAsGroup:               int64Ptr(sc, "runAsGroup"),
			ReadOnlyRootFilesystem:   boolPtr(sc, "readOnlyRootFilesystem"),
			AllowPrivilegeEscalation: boolPtr(sc, "allowPrivilegeEscalation"),
		}
	}
	return out
}

func parseEnvSource(from object) *workload.EnvValueFrom {
	out := &workload.EnvValueFrom{}
	if ref := from.mapAt("configMapKeyRef"); ref != nil {
		out.ConfigMapKeyRef = parseKeySelector(ref)
	}
	if ref := from.mapAt("secretKeyRef"); ref != nil {
		out.SecretKeyRef = parseKeySelector(ref)
	}
	if ref := from.mapAt("fieldRef"); ref != nil {
		out.FieldRef = &workload.FieldSelector{
			FieldPath:  str(ref, "fieldPath"),
			APIVersion: str(ref, "apiVersion"),
		}
	}
	if ref := from.mapAt("resourceFieldRef"); ref != nil {
		out.ResourceFieldRef = &workload.ResourceSelector{
			ContainerName: str(ref, "containerName"),
			Resource:      str(ref, "resource"),
			Divisor:       str(ref, "divisor"),
		}
	}
	return out
}

func parseKeySelector(ref object) *workload.KeySelector {
	return &workload.KeySelector{
		Name:     str(ref, "name"),
		Key:      str(ref, "key"),
		Optional: boolPtr(ref, "optional"),
	}
}

func parseProbe(p object) *workload.Probe {
	if p == nil {
		return nil
	}
	return &workload.Probe{
		Handler:             parseHandler(p),
		InitialDelaySeconds: int32Ptr(p, "initialDelaySeconds"),
		PeriodSeconds:       int32Ptr(p, "periodSeconds"),
		TimeoutSeconds:      int32Ptr(p, "timeoutSeconds"),
		SuccessThreshold:    int32Ptr(p, "successThreshold"),
		FailureThreshold:    int32Ptr(p, "failureThreshold"),
	}
}

func parseHandlerPtr(h object) *workload.Handler {
	if h == nil {
		return nil
	}
	out := parseHandler(h)
	return &out
}

func parseHandler(h object) workload.Handler {
	var out workload.Handler
	if e := h.mapAt("exec"); e != nil {
		out.Exec = &workload.ExecAction{Command: strSlice(e, "command")}
	}
	if g := h.mapAt("httpGet"); g != nil {
		out.HTTPGet = &workload.HTTPGetAction{
			Path:   str(g, "path"),
			Port:   intOrStringVal(g, "port"),
			Host:   str(g, "host"),
			Scheme: str(g, "scheme"),
		}
	}
	if s := h.mapAt("tcpSocket"); s != nil {
		out.TCPSocket = &workload.TCPSocketAction{
			Port: intOrStringVal(s, "port"),
			Host: str(s, "host"),
		}
	}
	if g := h.mapAt("grpc"); g != nil {
		grpc := &workload.GRPCAction{Port: int32Val(g, "port")}
		if svc, ok := scalar(g["service"]); ok {
			grpc.Service = &svc
		}
		out.GRPC = grpc
	}
	return out
}

func parseVolume(v object) workload.Volume {
	out := workload.Volume{Name: str(v, "name")}
	switch {
	case v.mapAt("emptyDir") != nil:
		ed := v.mapAt("emptyDir")
		out.EmptyDir = &workload.EmptyDirSource{Medium: str(ed, "medium"), SizeLimit: str(ed, "sizeLimit")}
	case v.mapAt("hostPath") != nil:
		hp := v.mapAt("hostPath")
		out.HostPath = &workload.HostPathSource{Path: str(hp, "path"), Type: str(hp, "type")}
	case v.mapAt("configMap") != nil:
		cm := v.mapAt("configMap")
		out.ConfigMap = &workload.ConfigMapSource{
			Name:        str(cm, "name"),
			DefaultMode: int32Ptr(cm, "defaultMode"),
			Optional:    boolPtr(cm, "optional"),
		}
	case v.mapAt("secret") != nil:
		s := v.mapAt("secret")
		out.Secret = &workload.SecretSource{
			SecretName:  str(s, "secretName"),
			DefaultMode: int32Ptr(s, "defaultMode"),
			Optional:    boolPtr(s, "optional"),
		}
	case v.mapAt("persistentVolumeClaim") != nil:
		pvc := v.mapAt("persistentVolumeClaim")
		out.PersistentVolumeClaim = &workload.PersistentClaimSource{
			ClaimName: str(pvc, "claimName"),
			ReadOnly:  boolVal(pvc, "readOnly"),
		}
	}
	return out
}
