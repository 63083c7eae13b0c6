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

	"github.com/NVIDIA/kubeconsole/pkg/workload"
)

func podSpec(t *workload.PodTemplate) *mapping {
	spec := newMapping().
		set("containers", containers(t.Containers)).
		set("initContainers", containers(t.InitContainers)).
		set("volumes", volumes(t.Volumes))

	if len(t.ImagePullSecrets) > 0 {
		refs := make([]*yaml.Node, 0, len(t.ImagePullSecrets))
		for _, name := range t.ImagePullSecrets {
			refs = append(refs, newMapping().set("name", strNode(name)).node)
		}
		spec.set("imagePullSecrets", seqNode(refs...))
	}

	spec.set("serviceAccountName", optStr(t.ServiceAccountName)).
		set("restartPolicy", optStr(t.RestartPolicy)).
		set("nodeSelector", optStringMap(t.NodeSelector)).
		set("tolerations", tolerations(t.Tolerations)).
		set("dnsPolicy", optStr(t.DNSPolicy))

	if dns := t.DNSConfig; dns != nil {
		cfg := newMapping().
			set("nameservers", optStrings(dns.Nameservers)).
			set("searches", optStrings(dns.Searches))
		if len(dns.Options) > 0 {
			opts := make([]*yaml.Node, 0, len(dns.Options))
			for _, o := range dns.Options {
				opt := newMapping().set("name", strNode(o.Name))
				if o.Value != nil {
					opt.set("value", strNode(*o.Value))
				}
				opts = append(opts, opt.node)
			}
			cfg.set("options", seqNode(opts...))
		}
		spec.setMapping("dnsConfig", cfg)
	}

	return spec.set("terminationGracePeriodSeconds", optInt64(t.TerminationGracePeriodSeconds))
}

func containers(cs []workload.Container) *yaml.Node {
	if len(cs) == 0 {
		return nil
	}
	items := make([]*yaml.Node, 0, len(cs))
	for i := range cs {
		items = append(items, container(&cs[i]).node)
	}
	return seqNode(items...)
}

func container(c *workload.Container) *mapping {
	out := newMapping().
		set("name", strNode(c.Name)).
		set("image", strNode(c.Image)).
		set("imagePullPolicy", optStr(c.ImagePullPolicy)).
		set("command", optStrings(c.Command)).
		set("args", optStrings(c.Args)).
		set("env", envVars(c.Env)).
		set("ports", ports(c.Ports))

	out.setNonEmpty("resources", newMapping().
		set("requests", optStringMap(c.Resources.Requests)).
		set("limits", optStringMap(c.Resources.Limits)))

	out.set("volumeMounts", volumeMounts(c.VolumeMounts)).
		setMapping("livenessProbe", probe(c.LivenessProbe)).
		setMapping("readinessProbe", probe(c.ReadinessProbe)).
		setMapping("startupProbe", probe(c.StartupProbe))

	if lc := c.Lifecycle; lc != nil {
		out.setNonEmpty("lifecycle", newMapping().
			setMapping("postStart", handlerPtr(lc.PostStart)).
			setMapping("preStop", handlerPtr(lc.PreStop)))
	}

	if sc := c.SecurityContext; sc != nil {
		out.setNonEmpty("securityContext", newMapping().
			set("privileged", optBool(sc.Privileged)).
			set("runAsNonRoot", optBool(sc.RunAsNonRoot)).
			set("runAsUser", optInt64(sc.RunAsUser)).
			set("runAsGroup", optInt64(sc.RunAsGroup)).
			set("readOnlyRootFilesystem", optBool(sc.ReadOnlyRootFilesystem)).
			set("allowPrivilegeEscalation", optBool(sc.AllowPrivilegeEscalation)))
	}
	return out
}

func envVars(env []workload.EnvVar) *yaml.Node {
	if len(env) == 0 {
		return nil
	}
	items := make([]*yaml.Node, 0, len(env))
	for _, e := range env {
		item := newMapping().set("name", strNode(e.Name))
		if e.ValueFrom == nil {
			item.set("value", optStr(e.Value))
		} else {
			item.setMapping("valueFrom", envSource(e.ValueFrom))
		}
		items = append(items, item.node)
	}
	return seqNode(items...)
}

func envSource(src *workload.EnvValueFrom) *mapping {
	out := newMapping()
	if ref := src.ConfigMapKeyRef; ref != nil {
		out.setMapping("configMapKeyRef", keySelector(ref))
	}
	if ref := src.SecretKeyRef; ref != nil {
		out.setMapping("secretKeyRef", keySelector(ref))
	}
	if ref := src.FieldRef; ref != nil {
		out.setMapping("fieldRef", newMapping().
			set("apiVersion", optStr(ref.APIVersion)).
			set("fieldPath", strNode(ref.FieldPath)))
	}
	if ref := src.ResourceFieldRef; ref != nil {
		out.setMapping("resourceFieldRef", newMapping().
			set("containerName", optStr(ref.ContainerName)).
			set("resource", strNode(ref.Resource)).
			set("divisor", optStr(ref.Divisor)))
	}
	return out
}

func keySelector(ref *workload.KeySelector) *mapping {
	return newMapping().
		set("name", strNode(ref.Name)).
		set("key", strNode(ref.Key)).
		set("optional", optBool(ref.Optional))
}

func ports(ps []workload.Port) *yaml.Node {
	if len(ps) == 0 {
		return nil
	}
	items := make([]*yaml.Node, 0, len(ps))
	for _, p := range ps {
		items = append(items, newMapping().
			set("name", optStr(p.Name)).
			set("containerPort", intNode(int64(p.ContainerPort))).
			set("protocol", optStr(p.Protocol)).
			set("hostPort", optNonZero(p.HostPort)).node)
	}
	return seqNode(items...)
}

func volumeMounts(vms []workload.VolumeMount) *yaml.Node {
	if len(vms) == 0 {
		return nil
	}
	items := make([]*yaml.Node, 0, len(vms))
	for _, vm := range vms {
		items = append(items, newMapping().
			set("name", strNode(vm.Name)).
			set("mountPath", strNode(vm.MountPath)).
			set("subPath", optStr(vm.SubPath)).
			set("readOnly", optTrue(vm.ReadOnly)).node)
	}
	return seqNode(items...)
}

func probe(p *workload.Probe) *mapping {
	if p == nil {
		return nil
	}
	return handler(&p.Handler).
		set("initialDelaySeconds", optInt32(p.InitialDelaySeconds)).
		set("periodSeconds", optInt32(p.PeriodSeconds)).
		set("timeoutSeconds", optInt32(p.TimeoutSeconds)).
		set("successThreshold", optInt32(p.SuccessThreshold)).
		set("failureThreshold", optInt32(p.FailureThreshold))
}

func handlerPtr(h *workload.Handler) *mapping {
	if h == nil {
		return nil
	}
	return handler(h)
}

func handler(h *workload.Handler) *mapping {
	out := newMapping()
	if h.Exec != nil {
		out.setMapping("exec", newMapping().set("command", optStrings(h.Exec.Command)))
	}
	if g := h.HTTPGet; g != nil {
		out.setMapping("httpGet", newMapping().
			set("path", optStr(g.Path)).
			set("port", intOrStringNode(g.Port)).
			set("host", optStr(g.Host)).
			set("scheme", optStr(g.Scheme)))
	}
	if s := h.TCPSocket; s != nil {
		out.setMapping("tcpSocket", newMapping().
			set("port", intOrStringNode(s.Port)).
			set("host", optStr(s.Host)))
	}
	if g := h.GRPC; g != nil {
		grpc := newMapping().set("port", intNode(int64(g.Port)))
		if g.Service != nil {
			grpc.set("service", strNode(*g.Service))
		}
		out.setMapping("grpc", grpc)
	}
	return out
}

func volumes(vs []workload.Volume) *yaml.Node {
	if len(vs) == 0 {
		return nil
	}
	items := make([]*yaml.Node, 0, len(vs))
	for _, v := range vs {
		item := newMapping().set("name", strNode(v.Name))
		switch v.Source() {
		case workload.VolumeSourceEmptyDir:
			item.setMapping("emptyDir", newMapping().
				set("medium", optStr(v.EmptyDir.Medium)).
				set("sizeLimit", optStr(v.EmptyDir.SizeLimit)))
		case workload.VolumeSourceHostPath:
			item.setMapping("hostPath", newMapping().
				set("path", strNode(v.HostPath.Path)).
				set("type", optStr(v.HostPath.Type)))
		case workload.VolumeSourceConfigMap:
			item.setMapping("configMap", newMapping().
				set("name", strNode(v.ConfigMap.Name)).
				set("defaultMode", optInt32(v.ConfigMap.DefaultMode)).
				set("optional", optBool(v.ConfigMap.Optional)))
		case workload.VolumeSourceSecret:
			item.setMapping("secret", newMapping().
				set("secretName", strNode(v.Secret.SecretName)).
				set("defaultMode", optInt32(v.Secret.DefaultMode)).
				set("optional", optBool(v.Secret.Optional)))
		case workload.VolumeSourcePersistentVolumeClaim:
			item.setMapping("persistentVolumeClaim", newMapping().
				set("claimName", strNode(v.PersistentVolumeClaim.ClaimName)).
				set("readOnly", optTrue(v.PersistentVolumeClaim.ReadOnly)))
		}
		items = append(items, item.node)
	}
	return seqNode(items...)
}

func tolerations(ts []workload.Toleration) *yaml.Node {
	if len(ts) == 0 {
		return nil
	}
	items := make([]*yaml.Node, 0, len(ts))
	for _, t := range ts {
		items = append(items, newMapping().
			set("key", optStr(t.Key)).
			set("operator", optStr(t.Operator)).
			set("value", optStr(t.Value)).
			set("effect", optStr(t.Effect)).
			set("tolerationSeconds", optInt64(t.TolerationSeconds)).node)
	}
	return seqNode(items...)
}
