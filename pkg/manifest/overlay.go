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

// Overlay renders model onto base, an existing manifest of the same
// workload. Only the fields where model differs from the model parsed out of
// base are rewritten: everything else in base, including fields the form
// model does not cover, server-populated metadata and comments, is kept as
// is. When model equals the parsed base, base is returned byte for byte.
func Overlay(base string, model *workload.Model) (string, error) {
	doc, root, err := decodeDocument(base)
	if err != nil {
		return "", err
	}
	kind, baseModel, err := parseNode(root)
	if err != nil {
		return "", err
	}

	next := workload.Normalize(kind, model)
	if workload.Equal(baseModel, next) {
		return base, nil
	}

	mergeMapping(root, synthesizeNode(kind, baseModel), synthesizeNode(kind, next))
	return Encode(doc)
}

// merge applies the change from o (what base looked like to the model) to n
// (what the model wants now) onto b, and returns the node to keep in b's slot.
func merge(b, o, n *yaml.Node) *yaml.Node {
	if o != nil && equalNode(o, n) {
		return b
	}
	switch {
	case b.Kind == yaml.MappingNode && n.Kind == yaml.MappingNode:
		if o == nil || o.Kind != yaml.MappingNode {
			o = newMapping().node
		}
		mergeMapping(b, o, n)
		return b
	case b.Kind == yaml.SequenceNode && n.Kind == yaml.SequenceNode && isNamedList(n):
		mergeNamedList(b, o, n)
		return b
	default:
		return adopt(b, n)
	}
}

func mergeMapping(b, o, n *yaml.Node) {
	for i := 0; i+1 < len(o.Content); i += 2 {
		key := o.Content[i].Value
		if lookup(n, key) == nil {
			deleteKey(b, key)
		}
	}

	for i := 0; i+1 < len(n.Content); i += 2 {
		key, nv := n.Content[i].Value, n.Content[i+1]
		idx := indexOf(b, key)
		if idx < 0 {
			if ov := lookup(o, key); ov == nil || !equalNode(ov, nv) {
				b.Content = append(b.Content, strNode(key), nv)
			}
			continue
		}
		b.Content[idx+1] = merge(b.Content[idx+1], lookup(o, key), nv)
	}
}

// mergeNamedList merges sequences of mappings keyed by name, such as
// containers, env or volumes. The result follows n's order; items of b
// missing from n are dropped.
func mergeNamedList(b, o, n *yaml.Node) {
	out := make([]*yaml.Node, 0, len(n.Content))
	for _, ni := range n.Content {
		name := itemName(ni)
		bi := findNamed(b, name)
		if bi == nil {
			out = append(out, ni)
			continue
		}
		out = append(out, merge(bi, findNamed(o, name), ni))
	}
	b.Content = out
}

// isNamedList reports whether every item is a mapping with a unique name.
func isNamedList(n *yaml.Node) bool {
	if len(n.Content) == 0 {
		return false
	}
	seen := make(map[string]bool, len(n.Content))
	for _, item := range n.Content {
		name := itemName(item)
		if name == "" || seen[name] {
			return false
		}
		seen[name] = true
	}
	return true
}

func itemName(item *yaml.Node) string {
	if item.Kind != yaml.MappingNode {
		return ""
	}
	if v := lookup(item, "name"); v != nil && v.Kind == yaml.ScalarNode {
		return v.Value
	}
	return ""
}

func findNamed(seq *yaml.Node, name string) *yaml.Node {
	if seq == nil || seq.Kind != yaml.SequenceNode {
		return nil
	}
	for _, item := range seq.Content {
		if itemName(item) == name {
			return item
		}
	}
	return nil
}

// adopt returns n carrying over b's comments.
func adopt(b, n *yaml.Node) *yaml.Node {
	if n.HeadComment == "" {
		n.HeadComment = b.HeadComment
	}
	if n.LineComment == "" {
		n.LineComment = b.LineComment
	}
	if n.FootComment == "" {
		n.FootComment = b.FootComment
	}
	return n
}

func indexOf(n *yaml.Node, key string) int {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return i
		}
	}
	return -1
}

func deleteKey(n *yaml.Node, key string) {
	if i := indexOf(n, key); i >= 0 {
		n.Content = append(n.Content[:i], n.Content[i+2:]...)
	}
}

// equalNode compares two trees by value, ignoring style and position.
func equalNode(a, b *yaml.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || len(a.Content) != len(b.Content) {
		return false
	}
	if a.Kind == yaml.ScalarNode {
		return a.ShortTag() == b.ShortTag() && a.Value == b.Value
	}
	for i := range a.Content {
		if !equalNode(a.Content[i], b.Content[i]) {
			return false
		}
	}
	return true
}
