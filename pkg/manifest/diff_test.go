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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name        string
		a, b        string
		added       int
		removed     int
		wantChanged bool
	}{
		{"identical", "a: 1\nb: 2\n", "a: 1\nb: 2\n", 0, 0, false},
		{"changed line", "a: 1\nb: 2\n", "a: 1\nb: 3\n", 1, 1, true},
		{"added line", "a: 1\n", "a: 1\nb: 2\n", 1, 0, true},
		{"removed line", "a: 1\nb: 2\nc: 3\n", "a: 1\nc: 3\n", 0, 1, true},
		{"from empty", "", "a: 1\n", 1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Compare(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.added, d.Added)
			assert.Equal(t, tt.removed, d.Removed)
			assert.Equal(t, tt.wantChanged, d.Changed())
			if tt.wantChanged {
				assert.Contains(t, d.Unified, "--- live")
				assert.Contains(t, d.Unified, "+++ proposed")
			} else {
				assert.Empty(t, d.Unified)
			}
		})
	}
}

func TestCompare_RowsAlign(t *testing.T) {
	d, err := Compare("a: 1\nb: 2\nc: 3\n", "a: 1\nb: 20\nc: 3\nd: 4\n")
	require.NoError(t, err)

	var ops []RowOp
	for _, r := range d.Rows {
		ops = append(ops, r.Op)
	}
	// SplitLines terminates both sides with an empty line.
	assert.Equal(t, []RowOp{RowEqual, RowChanged, RowEqual, RowAdded, RowEqual}, ops)

	changed := d.Rows[1]
	assert.Equal(t, "b: 2", changed.Left)
	assert.Equal(t, "b: 20", changed.Right)
	assert.Equal(t, 2, changed.LeftLine)
	assert.Equal(t, 2, changed.RightLine)

	added := d.Rows[3]
	assert.Equal(t, "d: 4", added.Right)
	assert.Zero(t, added.LeftLine)
	assert.Equal(t, 4, added.RightLine)
}
