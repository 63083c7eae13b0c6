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
	"fmt"
	"math"
	"strconv"

	"k8s.io/apimachinery/pkg/util/intstr"
)

// object is a decoded mapping. Accessors tolerate nil receivers and values of
// the wrong type.
type object map[string]any

func asObject(v any) object {
	switch t := v.(type) {
	case map[string]any:
		return t
	case object:
		return t
	case map[any]any:
		out := make(object, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = val
		}
		return out
	default:
		return nil
	}
}

// mapAt follows keys through nested mappings.
func (o object) mapAt(keys ...string) object {
	cur := o
	for _, k := range keys {
		if cur == nil {
			return nil
		}
		cur = asObject(cur[k])
	}
	return cur
}

func list(o object, key string) []object {
	items, ok := o[key].([]any)
	if !ok {
		return nil
	}
	out := make([]object, 0, len(items))
	for _, item := range items {
		if obj := asObject(item); obj != nil {
			out = append(out, obj)
		}
	}
	return out
}

// scalar renders a scalar value as a string. Non-scalars report false.
func scalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}

func str(o object, key string) string {
	s, _ := scalar(o[key])
	return s
}

func strSlice(o object, key string) []string {
	items, ok := o[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := scalar(item); ok {
			out = append(out, s)
		}
	}
	return out
}

func strMap(o object, key string) map[string]string {
	m := asObject(o[key])
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := scalar(v); ok {
			out[k] = s
		}
	}
	return out
}

func integer(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int64:
		return t, true
	case uint64:
		if t > math.MaxInt64 {
			return 0, false
		}
		return int64(t), true
	case float64:
		if t != math.Trunc(t) {
			return 0, false
		}
		return int64(t), true
	default:
		return 0, false
	}
}

func int64Ptr(o object, key string) *int64 {
	v, ok := integer(o[key])
	if !ok {
		return nil
	}
	return &v
}

func int32Ptr(o object, key string) *int32 {
	v, ok := integer(o[key])
	if !ok || v < math.MinInt32 || v > math.MaxInt32 {
		return nil
	}
	i := int32(v)
	return &i
}

func int32Val(o object, key string) int32 {
	if p := int32Ptr(o, key); p != nil {
		return *p
	}
	return 0
}

func boolPtr(o object, key string) *bool {
	b, ok := o[key].(bool)
	if !ok {
		return nil
	}
	return &b
}

func boolVal(o object, key string) bool {
	b, _ := o[key].(bool)
	return b
}

func intOrString(o object, key string) *intstr.IntOrString {
	if _, ok := o[key]; !ok {
		return nil
	}
	if i := int32Ptr(o, key); i != nil {
		v := intstr.FromInt32(*i)
		return &v
	}
	if s, ok := o[key].(string); ok {
		v := intstr.FromString(s)
		return &v
	}
	return nil
}

func intOrStringVal(o object, key string) intstr.IntOrString {
	if v := intOrString(o, key); v != nil {
		return *v
	}
	return intstr.IntOrString{}
}
