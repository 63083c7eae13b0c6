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
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	apperrors "github.com/NVIDIA/kubeconsole/pkg/errors"
)

const (
	diffFromFile = "live"
	diffToFile   = "proposed"
	diffContext  = 3
)

// RowOp classifies a side-by-side diff row.
type RowOp string

const (
	RowEqual   RowOp = "equal"
	RowChanged RowOp = "changed"
	RowRemoved RowOp = "removed"
	RowAdded   RowOp = "added"
)

// Row is one line pair of a side-by-side diff. Line numbers are 1-based and
// zero on the side a row does not exist.
type Row struct {
	Op        RowOp  `json:"op"`
	Left      string `json:"left,omitempty"`
	Right     string `json:"right,omitempty"`
	LeftLine  int    `json:"leftLine,omitempty"`
	RightLine int    `json:"rightLine,omitempty"`
}

// Diff compares the live manifest with the proposed one.
type Diff struct {
	Unified string `json:"unified"`
	Rows    []Row  `json:"rows"`
	Added   int    `json:"added"`
	Removed int    `json:"removed"`
}

// Changed reports whether the two sides differ.
func (d *Diff) Changed() bool {
	return d.Added > 0 || d.Removed > 0
}

// Compare produces a line diff of original against candidate.
func Compare(original, candidate string) (*Diff, error) {
	a := difflib.SplitLines(original)
	b := difflib.SplitLines(candidate)

	unified, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        a,
		B:        b,
		FromFile: diffFromFile,
		ToFile:   diffToFile,
		Context:  diffContext,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to render diff", err)
	}

	d := &Diff{Unified: unified}
	for _, op := range difflib.NewMatcher(a, b).GetOpCodes() {
		switch op.Tag {
		case 'e':
			for i, j := op.I1, op.J1; i < op.I2; i, j = i+1, j+1 {
				d.Rows = append(d.Rows, Row{Op: RowEqual, Left: trimEOL(a[i]), Right: trimEOL(b[j]), LeftLine: i + 1, RightLine: j + 1})
			}
		case 'd':
			d.removed(a, op.I1, op.I2)
		case 'i':
			d.added(b, op.J1, op.J2)
		case 'r':
			n := min(op.I2-op.I1, op.J2-op.J1)
			for k := 0; k < n; k++ {
				i, j := op.I1+k, op.J1+k
				d.Rows = append(d.Rows, Row{Op: RowChanged, Left: trimEOL(a[i]), Right: trimEOL(b[j]), LeftLine: i + 1, RightLine: j + 1})
			}
			d.Removed += n
			d.Added += n
			d.removed(a, op.I1+n, op.I2)
			d.added(b, op.J1+n, op.J2)
		}
	}
	return d, nil
}

func (d *Diff) removed(a []string, from, to int) {
	for i := from; i < to; i++ {
		d.Rows = append(d.Rows, Row{Op: RowRemoved, Left: trimEOL(a[i]), LeftLine: i + 1})
		d.Removed++
	}
}

func (d *Diff) added(b []string, from, to int) {
	for j := from; j < to; j++ {
		d.Rows = append(d.Rows, Row{Op: RowAdded, Right: trimEOL(b[j]), RightLine: j + 1})
		d.Added++
	}
}

func trimEOL(s string) string {
	return strings.TrimSuffix(s, "\n")
}
