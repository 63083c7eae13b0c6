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

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"k8s.io/apimachinery/pkg/runtime/schema"

	apperrors "github.com/NVIDIA/kubeconsole/pkg/errors"
)

// Kind is the closed set of workload resource types handled by the manifest engine.
type Kind string

const (
	KindDeployment  Kind = "Deployment"
	KindStatefulSet Kind = "StatefulSet"
	KindDaemonSet   Kind = "DaemonSet"
	KindRollout     Kind = "Rollout"
	KindJob         Kind = "Job"
	KindCronJob     Kind = "CronJob"
)

// Kinds returns every supported kind in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindDeployment,
		KindStatefulSet,
		KindDaemonSet,
		KindRollout,
		KindJob,
		KindCronJob,
	}
}

// IsValid reports whether k is one of the supported kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindDeployment, KindStatefulSet, KindDaemonSet, KindRollout, KindJob, KindCronJob:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	return string(k)
}

var kindFolder = cases.Fold()

// ParseKind resolves a kind name case-insensitively ("cronjob", "CronJob", "CRONJOB").
// Unknown names yield an ErrCodeUnsupportedKind error carrying the closest
// supported kind as a suggestion.
func ParseKind(s string) (Kind, error) {
	folded := kindFolder.String(strings.TrimSpace(s))
	for _, k := range Kinds() {
		if kindFolder.String(string(k)) == folded {
			return k, nil
		}
	}
	ctx := map[string]any{"kind": s}
	if k, ok := closestKind(folded); ok {
		ctx["suggestion"] = string(k)
	}
	return "", apperrors.NewWithContext(apperrors.ErrCodeUnsupportedKind,
		"unsupported workload kind", ctx)
}

// closestKind returns the kind within edit distance 3 of folded, if any.
func closestKind(folded string) (Kind, bool) {
	const maxDistance = 3
	best, bestDist := Kind(""), maxDistance+1
	for _, k := range Kinds() {
		if d := levenshtein.ComputeDistance(folded, kindFolder.String(string(k))); d < bestDist {
			best, bestDist = k, d
		}
	}
	return best, best != ""
}

// Scalable reports whether the kind carries spec.replicas.
func (k Kind) Scalable() bool {
	return k == KindDeployment || k == KindStatefulSet || k == KindRollout
}

// Batch reports whether the kind runs to completion (Job, CronJob).
func (k Kind) Batch() bool {
	return k == KindJob || k == KindCronJob
}

// HasSelector reports whether manifests of this kind declare spec.selector.
// Jobs get a server-generated selector.
func (k Kind) HasSelector() bool {
	return !k.Batch()
}

// GroupVersionResource returns the API resource backing the kind.
func (k Kind) GroupVersionResource() schema.GroupVersionResource {
	switch k {
	case KindDeployment:
		return schema.GroupVersionResource{Group: "apps", Version: "v1", Resource: "deployments"}
	case KindStatefulSet:
		return schema.GroupVersionResource{Group: "apps", Version: "v1", Resource: "statefulsets"}
	case KindDaemonSet:
		return schema.GroupVersionResource{Group: "apps", Version: "v1", Resource: "daemonsets"}
	case KindRollout:
		return schema.GroupVersionResource{Group: "argoproj.io", Version: "v1alpha1", Resource: "rollouts"}
	case KindJob:
		return schema.GroupVersionResource{Group: "batch", Version: "v1", Resource: "jobs"}
	case KindCronJob:
		return schema.GroupVersionResource{Group: "batch", Version: "v1", Resource: "cronjobs"}
	default:
		return schema.GroupVersionResource{}
	}
}

// APIVersion returns the apiVersion emitted in manifests of this kind.
func (k Kind) APIVersion() string {
	return k.GroupVersionResource().GroupVersion().String()
}
