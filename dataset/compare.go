// Copyright 2020 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dataset

import (
	"fmt"
	"math"
	"slices"

	"github.com/gorse-io/ml2h5/base"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

// Tolerance of numeric comparison.
const Tolerance = 1e-15

func equalFloat(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return a == b
	}
	return scalar.EqualWithinAbs(a, b, Tolerance)
}

type cursor struct {
	d    *Dataset
	key  int
	attr int
}

func (c *cursor) next() (Column, int, bool) {
	for c.key < len(c.d.Ordering) {
		col := c.d.Columns[c.d.Ordering[c.key]]
		if c.attr < col.Attributes() {
			attr := c.attr
			c.attr++
			return col, attr, true
		}
		c.key++
		c.attr = 0
	}
	return nil, 0, false
}

func (c *cursor) skip(n int) {
	c.attr += n
}

// Equal compares two datasets attribute by attribute in ordering sequence.
// Multi-attribute blocks should be unmerged first when the sides were merged
// differently. The returned message explains the first difference.
func Equal(a, b *Dataset) (bool, string) {
	na, err := a.NumExamples()
	if err != nil {
		return false, err.Error()
	}
	nb, err := b.NumExamples()
	if err != nil {
		return false, err.Error()
	}
	if na != nb {
		return false, fmt.Sprintf("%d examples differ from %d examples", na, nb)
	}
	if a.NumAttributes() != b.NumAttributes() {
		return false, fmt.Sprintf("%d attributes differ from %d attributes", a.NumAttributes(), b.NumAttributes())
	}
	ca, cb := &cursor{d: a}, &cursor{d: b}
	for attr := 0; ; attr++ {
		colA, ia, okA := ca.next()
		colB, ib, okB := cb.next()
		if !okA || !okB {
			return okA == okB, ""
		}
		spA, isSparseA := colA.(*Sparse)
		spB, isSparseB := colB.(*Sparse)
		if isSparseA && isSparseB && ia == 0 && ib == 0 && spA.Rows == spB.Rows {
			if !equalSparse(spA, spB) {
				return false, fmt.Sprintf("sparse attributes from %d differ", attr)
			}
			ca.skip(spA.Rows - 1)
			cb.skip(spB.Rows - 1)
			attr += spA.Rows - 1
			continue
		}
		if !equalAttribute(colA, ia, colB, ib, na) {
			return false, fmt.Sprintf("attribute %d differs", attr)
		}
	}
}

func equalSparse(a, b *Sparse) bool {
	return a.Cols == b.Cols &&
		slices.Equal(a.Indptr, b.Indptr) &&
		slices.Equal(a.Indices, b.Indices) &&
		floats.EqualLengths(a.Data, b.Data) &&
		floats.EqualFunc(a.Data, b.Data, equalFloat)
}

func equalAttribute(a Column, ia int, b Column, ib int, n int) bool {
	fa, numA := Floats(a, ia)
	fb, numB := Floats(b, ib)
	switch {
	case numA && numB:
		return floats.EqualFunc(fa, fb, equalFloat)
	case numA:
		return equalMixed(fa, b, ib, n)
	case numB:
		return equalMixed(fb, a, ia, n)
	}
	for j := 0; j < n; j++ {
		if a.Cell(ia, j) != b.Cell(ib, j) {
			return false
		}
	}
	return true
}

func equalMixed(values []float64, col Column, attr int, n int) bool {
	for j := 0; j < n; j++ {
		text := col.Cell(attr, j)
		if text == base.FormatFloat(values[j]) {
			continue
		}
		v, err := base.ParseFloat(text)
		if err != nil || !equalFloat(v, values[j]) {
			return false
		}
	}
	return true
}
