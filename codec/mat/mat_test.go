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

package mat

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, compress bool, arrays ...*Array) []*Array {
	var buf bytes.Buffer
	w := NewWriter(&buf, compress)
	require.NoError(t, w.WriteHeader("GLNXA64"))
	for _, a := range arrays {
		require.NoError(t, w.Write(a))
	}
	header, result, err := Read(&buf)
	require.NoError(t, err)
	assert.Contains(t, header, "MATLAB 5.0 MAT-file")
	return result
}

func TestRoundTrip(t *testing.T) {
	for _, compress := range []bool{false, true} {
		arrays := roundTrip(t, compress,
			NewDouble("double0", 2, 3, []float64{1, 4, 2, 5, 3, math.Inf(1)}),
			NewInt32("int0", 1, 3, []int64{-1, 0, 1}),
			NewInt64("int1", 1, 2, []int64{math.MaxInt64, math.MinInt64}),
			NewCellOfStrings("str0", []string{"a", "", "naïve", "日本語テキスト"}),
			NewSparse("data", 3, 2, []int{0, 2, 1}, []int{0, 2, 3}, []float64{1, 3, 2}),
			NewChar("x", "y"),
		)
		require.Len(t, arrays, 6)

		assert.Equal(t, "double0", arrays[0].Name)
		assert.Equal(t, ClassDouble, arrays[0].Class)
		assert.Equal(t, []int{2, 3}, arrays[0].Dims)
		assert.Equal(t, []float64{1, 4, 2, 5, 3, math.Inf(1)}, arrays[0].Floats)

		assert.Equal(t, ClassInt32, arrays[1].Class)
		assert.Equal(t, []int64{-1, 0, 1}, arrays[1].Ints)
		assert.Equal(t, ClassInt64, arrays[2].Class)
		assert.Equal(t, []int64{math.MaxInt64, math.MinInt64}, arrays[2].Ints)

		values, err := arrays[3].Strings()
		assert.NoError(t, err)
		assert.Equal(t, []string{"a", "", "naïve", "日本語テキスト"}, values)

		assert.Equal(t, ClassSparse, arrays[4].Class)
		assert.Equal(t, []int{3, 2}, arrays[4].Dims)
		assert.Equal(t, []int{0, 2, 1}, arrays[4].Ir)
		assert.Equal(t, []int{0, 2, 3}, arrays[4].Jc)
		assert.Equal(t, []float64{1, 3, 2}, arrays[4].Floats)

		assert.Equal(t, "y", arrays[5].String())
	}
}

func TestEmptySparse(t *testing.T) {
	arrays := roundTrip(t, false, NewSparse("empty", 2, 2, []int{}, []int{0, 0, 0}, []float64{}))
	require.Len(t, arrays, 1)
	assert.Empty(t, arrays[0].Floats)
	assert.Equal(t, []int{0, 0, 0}, arrays[0].Jc)
}

func TestNarrowStorage(t *testing.T) {
	// doubles stored as uint8 are widened
	var body bytes.Buffer
	flags := make([]byte, 8)
	order.PutUint32(flags, uint32(ClassDouble))
	writeElement(&body, miUINT32, flags)
	writeElement(&body, miINT32, encodeInts(miINT32, []int64{1, 3}))
	writeElement(&body, miINT8, []byte("narrow"))
	writeElement(&body, miUINT8, []byte{7, 8, 9})
	var buf bytes.Buffer
	w := NewWriter(&buf, false)
	require.NoError(t, w.WriteHeader("GLNXA64"))
	writeElement(&buf, miMATRIX, body.Bytes())
	_, arrays, err := Read(&buf)
	require.NoError(t, err)
	require.Len(t, arrays, 1)
	assert.Equal(t, []float64{7, 8, 9}, arrays[0].Floats)
}

func TestReadInvalid(t *testing.T) {
	_, _, err := Read(bytes.NewReader([]byte("MATLAB")))
	assert.Error(t, err)
	_, _, err = Read(bytes.NewReader(bytes.Repeat([]byte{'x'}, 200)))
	assert.Error(t, err)
}

func TestWriteInvalid(t *testing.T) {
	w := NewWriter(&bytes.Buffer{}, false)
	assert.Error(t, w.Write(NewDouble("x", 2, 2, []float64{1})))
	assert.Error(t, w.Write(&Array{Name: "s", Class: ClassStruct, Dims: []int{1, 1}}))
}

func TestCharMatrix(t *testing.T) {
	// 2-by-3 char array in column-major order
	a := &Array{Class: ClassChar, Dims: []int{2, 3}, Runes: []rune("adbecf")}
	assert.Equal(t, "abc\ndef", a.String())
}

func TestTranspose(t *testing.T) {
	rowMajor := []int{1, 2, 3, 4, 5, 6}
	colMajor := Transpose(rowMajor, 2, 3)
	assert.Equal(t, []int{1, 4, 2, 5, 3, 6}, colMajor)
	assert.Equal(t, rowMajor, Transpose(colMajor, 3, 2))
}
