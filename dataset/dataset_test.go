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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIris() *Dataset {
	d := NewDataset("iris")
	d.Add("double0", NewVector([]float64{5.1, 4.9, 6.3}))
	d.Add("int1", NewVector([]int32{1, 2, 3}))
	d.Add("str2", NewStrings([]string{"setosa", "versicolor", "?"}))
	return d
}

func TestDataset(t *testing.T) {
	d := newIris()
	n, err := d.NumExamples()
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, d.NumAttributes())
	assert.NoError(t, d.Validate())
	assert.Equal(t, []string{"double0", "int1", "str2"}, d.AttributeNames())
	assert.Equal(t, []string{"4.9", "2", "versicolor"}, d.Row(1))

	// replace keeps the ordering
	d.Add("int1", NewVector([]int32{7, 8, 9}))
	assert.Equal(t, []string{"double0", "int1", "str2"}, d.Ordering)

	// mismatched example counts
	d.Add("double3", NewVector([]float64{1}))
	_, err = d.NumExamples()
	assert.Error(t, err)
	assert.Error(t, d.Validate())

	// missing column
	d = newIris()
	d.Ordering = append(d.Ordering, "missing")
	assert.Error(t, d.Validate())

	// duplicate key
	d = newIris()
	d.Ordering = append(d.Ordering, "int1")
	assert.Error(t, d.Validate())
}

func TestDatasetClone(t *testing.T) {
	d := newIris()
	c := d.Clone()
	c.Columns["int1"].(*Matrix[int32]).Data[0] = 100
	c.Ordering[0] = "x"
	assert.Equal(t, int32(1), d.Columns["int1"].(*Matrix[int32]).Data[0])
	assert.Equal(t, "double0", d.Ordering[0])
}

func TestDatasetExtract(t *testing.T) {
	d := NewDataset("long")
	d.Add("str0", NewStrings([]string{"abcdefghijklmnopqrstuvwxyz", "b"}))
	d.Add("double1", NewVector([]float64{math.NaN(), 1.5}))
	rows, err := d.Extract(10, 20)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"abcdefghijklmnopqrst", "NaN"}, {"b", "1.5"}}, rows)
	rows, err = d.Extract(1, 20)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestAttributeNames(t *testing.T) {
	d := NewDataset("block")
	m := NewMatrix[float64](2, 3)
	d.Add("double0", m)
	d.Add("str1", NewStrings([]string{"a", "b", "c"}))
	assert.Equal(t, []string{"double00", "double01", "str1"}, d.AttributeNames())
	d.Names = []string{"x", "y", "z"}
	assert.Equal(t, []string{"x", "y", "z"}, d.AttributeNames())
}

func TestSparse(t *testing.T) {
	// 3 attributes x 2 examples: [[1, 0], [0, 2], [3, 0]]
	s, err := NewSparse(3, 2, []float64{1, 3, 2}, []int{0, 2, 1}, []int{0, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 3, s.Attributes())
	assert.Equal(t, 3.0, s.At(2, 0))
	assert.Equal(t, 0.0, s.At(1, 0))
	assert.Equal(t, 0.5, s.Density())
	assert.Equal(t, []float64{1, 0, 0, 2, 3, 0}, s.Dense().Data)
	values, ok := Floats(s, 1)
	assert.True(t, ok)
	assert.Equal(t, []float64{0, 2}, values)

	_, err = NewSparse(3, 2, []float64{1}, []int{0}, []int{0, 1})
	assert.Error(t, err)
	_, err = NewSparse(3, 1, []float64{1}, []int{5}, []int{0, 1})
	assert.Error(t, err)
	_, err = NewSparse(3, 2, []float64{1, 2}, []int{0, 1}, []int{0, 2, 1})
	assert.Error(t, err)
}

func TestNominalValues(t *testing.T) {
	values, ok := NominalValues("nominal:a,b,c")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, values)
	_, ok = NominalValues("numeric")
	assert.False(t, ok)
}

func TestTaskGroup(t *testing.T) {
	d := NewDataset("task")
	d.Group = GroupTask
	d.Add(TrainIndex, NewVector([]int32{0, 1, 2}))
	d.Add(TestIndex, NewVector([]int32{3}))
	n, err := d.NumExamples()
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, "task", d.Group.String())
}
