// Copyright 2023 gorse Project Authors
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

package octave

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "ml2h5", []*Variable{
		{Name: "int0", Type: Int32Matrix, Rows: 2, Cols: 2, Ints: []int64{1, 2, 3, 4}},
		{Name: "double0", Type: Matrix, Rows: 1, Cols: 3, Floats: []float64{0.5, math.NaN(), 2}},
		{Name: "str0", Type: Cell, Strings: []string{"a b", ""}},
	}))
	assert.Equal(t, `# Created by ml2h5 for Octave 3.0.1
# name: int0
# type: int32 matrix
# ndims: 2
 2 2
 1
 3
 2
 4


# name: double0
# type: matrix
# rows: 1
# columns: 3
 0.5 NaN 2


# name: str0
# type: cell
# rows: 1
# columns: 2
# name: <cell-element>
# type: sq_string
# elements: 1
# length: 3
a b


# name: <cell-element>
# type: sq_string
# elements: 1
# length: 0





`, buf.String())
}

func TestRoundTrip(t *testing.T) {
	variables := []*Variable{
		{Name: "scalar", Type: Scalar, Rows: 1, Cols: 1, Floats: []float64{math.Inf(-1)}},
		{Name: "int0", Type: Int32Matrix, Rows: 2, Cols: 3, Ints: []int64{1, 2, 3, 4, 5, 6}},
		{Name: "int1", Type: Int64Matrix, Rows: 1, Cols: 2, Ints: []int64{math.MaxInt64, -1}},
		{Name: "double0", Type: Matrix, Rows: 2, Cols: 2, Floats: []float64{0.1, 1e-300, -3, 4}},
		{Name: "data", Type: SparseMatrix, Rows: 3, Cols: 2, Indices: []int{0, 2, 1}, Indptr: []int{0, 2, 3}, Floats: []float64{1, 3, 2.5}},
		{Name: "str0", Type: Cell, Rows: 1, Cols: 3, Strings: []string{"x", "two\nlines", ""}},
		{Name: "name", Type: SqString, Rows: 1, Cols: 1, Strings: []string{"iris"}},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "ml2h5", variables))
	result, diagnostics, err := Read(&buf)
	require.NoError(t, err)
	assert.Empty(t, diagnostics)
	assert.Equal(t, variables, result)
}

func TestReadOctave(t *testing.T) {
	// as written by Octave itself, in any order of types
	text := `# Created by Octave 3.0.1, Tue Jan 13 10:17:34 2009 CET <user@host>
# name: __nargin__
# type: scalar
0


# name: b
# type: bool
1


# name: s
# type: sparse matrix
# nnz: 3
# rows: 2
# columns: 2
2 2 4
1 1 1
2 1 3


# name: str
# type: string
# elements: 2
# length: 3
abc
# length: 2
de


`
	variables, diagnostics, err := Read(strings.NewReader(text))
	require.NoError(t, err)
	require.Len(t, variables, 2)
	assert.Len(t, diagnostics, 1)
	assert.Equal(t, []int{0, 1, 1}, variables[0].Indices)
	assert.Equal(t, []int{0, 2, 3}, variables[0].Indptr)
	assert.Equal(t, []float64{1, 3, 4}, variables[0].Floats)
	assert.Equal(t, []string{"abc", "de"}, variables[1].Strings)
}

func TestReadInvalid(t *testing.T) {
	_, _, err := Read(strings.NewReader("# name: x\n# type: scalar\n1\n"))
	assert.Error(t, err)
	_, _, err = Read(strings.NewReader(HeaderPrefix + "test\n# name: x\n# type: matrix\n# rows: 1\n# columns: 2\n 1 abc\n"))
	assert.Error(t, err)
	_, _, err = Read(strings.NewReader(HeaderPrefix + "test\n# name: x\n# type: sparse matrix\n# nnz: 1\n# rows: 1\n# columns: 1\n2 1 1\n"))
	assert.Error(t, err)
	_, _, err = Read(strings.NewReader(HeaderPrefix + "test\n# name: x\n# type: matrix\n# rows: 2\n# columns: 2\n 1 2\n"))
	assert.Error(t, err)
}
