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
	"bytes"
	"errors"
	"io"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/util/intstr"

	apperrors "github.com/NVIDIA/kubeconsole/pkg/errors"
)

// indent is the emitter indentation used for every manifest this package writes.
const indent = 2

var (
	syntaxLine = regexp.MustCompile(`line (\d+)`)

	// sexagesimal matches YAML 1.1 base 60 numbers such as 12:30.
	sexagesimal = regexp.MustCompile(`^[-+]?[0-9][0-9_]*(?::[0-5]?[0-9])+(?:\.[0-9_]*)?$`)
)

// Encode renders a node tree as manifest text.
func Encode(node *yaml.Node) (string, error) {
	doc := node
	if node.Kind != yaml.DocumentNode {
		doc = &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{node}}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)
	if err := enc.Encode(doc); err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeInternal, "failed to encode manifest", err)
	}
	if err := enc.Close(); err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeInternal, "failed to flush manifest encoder", err)
	}
	return buf.String(), nil
}

// EncodeObject renders a generic object, such as one returned by the API
// server, with the same emitter the synthesizer uses. Keys are sorted.
func EncodeObject(obj map[string]any) (string, error) {
	var node yaml.Node
	if err := node.Encode(obj); err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeInternal, "failed to encode object", err)
	}
	return Encode(&node)
}

// decodeDocument returns the first non-empty document of text along with its
// root mapping. Failures carry ErrCodeManifestSyntax and, when known, the
// offending line.
func decodeDocument(text string) (*yaml.Node, *yaml.Node, error) {
	dec := yaml.NewDecoder(strings.NewReader(text))
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return nil, nil, apperrors.New(apperrors.ErrCodeManifestSyntax, "manifest is empty")
		}
		if err != nil {
			return nil, nil, syntaxError(err)
		}
		if len(doc.Content) == 0 || isNull(doc.Content[0]) {
			continue
		}
		root := doc.Content[0]
		if root.Kind != yaml.MappingNode {
			return nil, nil, apperrors.NewWithContext(apperrors.ErrCodeManifestSyntax,
				"manifest must be a mapping", map[string]any{"line": root.Line})
		}
		return &doc, root, nil
	}
}

func syntaxError(err error) error {
	ctx := map[string]any{}
	if m := syntaxLine.FindStringSubmatch(err.Error()); m != nil {
		if line, convErr := strconv.Atoi(m[1]); convErr == nil {
			ctx["line"] = line
		}
	}
	return apperrors.WrapWithContext(apperrors.ErrCodeManifestSyntax, "invalid manifest syntax", err, ctx)
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

// mapping builds a mapping node in insertion order. Nil values are skipped so
// optional fields can be passed straight from the opt* helpers.
type mapping struct {
	node *yaml.Node
}

func newMapping() *mapping {
	return &mapping{node: &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}}
}

func (m *mapping) set(key string, value *yaml.Node) *mapping {
	if value == nil {
		return m
	}
	m.node.Content = append(m.node.Content, strNode(key), value)
	return m
}

func (m *mapping) setMapping(key string, value *mapping) *mapping {
	if value == nil {
		return m
	}
	return m.set(key, value.node)
}

// setNonEmpty adds value only when it has children.
func (m *mapping) setNonEmpty(key string, value *mapping) *mapping {
	if value == nil || len(value.node.Content) == 0 {
		return m
	}
	return m.set(key, value.node)
}

// strNode renders s as a string scalar. Values a YAML 1.1 reader such as
// sigs.k8s.io/yaml or kubectl would resolve to another type are quoted.
func strNode(s string) *yaml.Node {
	if ambiguousScalar(s) {
		return quotedNode(s)
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func ambiguousScalar(s string) bool {
	switch s {
	case "y", "Y", "yes", "Yes", "YES", "on", "On", "ON",
		"n", "N", "no", "No", "NO", "off", "Off", "OFF":
		return true
	}
	return strings.IndexByte(s, ':') > 0 && sexagesimal.MatchString(s)
}

func quotedNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s, Style: yaml.DoubleQuotedStyle}
}

func intNode(v int64) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(v, 10)}
}

func boolNode(v bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v)}
}

func seqNode(items ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: items}
}

func optStr(s string) *yaml.Node {
	if s == "" {
		return nil
	}
	return strNode(s)
}

func optInt32(p *int32) *yaml.Node {
	if p == nil {
		return nil
	}
	return intNode(int64(*p))
}

func optInt64(p *int64) *yaml.Node {
	if p == nil {
		return nil
	}
	return intNode(*p)
}

func optBool(p *bool) *yaml.Node {
	if p == nil {
		return nil
	}
	return boolNode(*p)
}

func optTrue(b bool) *yaml.Node {
	if !b {
		return nil
	}
	return boolNode(true)
}

func optNonZero(v int32) *yaml.Node {
	if v == 0 {
		return nil
	}
	return intNode(int64(v))
}

func optStrings(ss []string) *yaml.Node {
	if len(ss) == 0 {
		return nil
	}
	items := make([]*yaml.Node, 0, len(ss))
	for _, s := range ss {
		items = append(items, strNode(s))
	}
	return seqNode(items...)
}

// optStringMap renders a string map with sorted keys.
func optStringMap(m map[string]string) *yaml.Node {
	if len(m) == 0 {
		return nil
	}
	out := newMapping()
	for _, k := range slices.Sorted(maps.Keys(m)) {
		out.set(k, strNode(m[k]))
	}
	return out.node
}

func optIntOrString(v *intstr.IntOrString) *yaml.Node {
	if v == nil {
		return nil
	}
	return intOrStringNode(*v)
}

func intOrStringNode(v intstr.IntOrString) *yaml.Node {
	if v.Type == intstr.String {
		return strNode(v.StrVal)
	}
	return intNode(int64(v.IntVal))
}

// lookup returns the value node of key in mapping n, or nil.
func lookup(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}
