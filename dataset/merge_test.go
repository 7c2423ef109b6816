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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	d := NewDataset("mixed")
	d.Add("int0", NewVector([]int32{1, 2}))
	d.Add("int1", NewVector([]int64{3, 4}))
	d.Add("double2", NewVector([]float64{0.5, 1.5}))
	d.Add("double3", NewVector([]float64{2.5, 3.5}))
	d.Add("a/b", NewStrings([]string{"x", "y"}))
	d.Add("int5", NewVector([]int32{5, 6}))
	d.Names = []string{"a", "b", "c", "d", "e", "f"}

	merged, err := Merge(d)
	require.NoError(t, err)
	assert.Equal(t, []string{"int0", "double0", "a+b", "int1"}, merged.Ordering)
	assert.Equal(t, &Matrix[int64]{Rows: 2, Cols: 2, Data: []int64{1, 2, 3, 4}}, merged.Columns["int0"])
	assert.Equal(t, &Matrix[float64]{Rows: 2, Cols: 2, Data: []float64{0.5, 1.5, 2.5, 3.5}}, merged.Columns["double0"])
	assert.Equal(t, &Matrix[int32]{Rows: 1, Cols: 2, Data: []int32{5, 6}}, merged.Columns["int1"])
	assert.Equal(t, d.Names, merged.Names)
	assert.Equal(t, 6, merged.NumAttributes())

	unmerged := Unmerge(merged)
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, unmerged.Ordering)
	assert.Equal(t, NewVector([]int64{3, 4}), unmerged.Columns["b"])
	assert.Equal(t, NewStrings([]string{"x", "y"}), unmerged.Columns["e"])
	equal, msg := Equal(d, unmerged)
	assert.True(t, equal, msg)
}

func TestMergeKeepsSparse(t *testing.T) {
	s, err := NewSparse(2, 2, []float64{1}, []int{1}, []int{0, 1, 1})
	require.NoError(t, err)
	d := NewDataset("libsvm")
	d.Add("label", NewVector([]int32{1, -1}))
	d.Add("data", s)
	merged, err := Merge(d)
	require.NoError(t, err)
	assert.Equal(t, []string{"int0", "data"}, merged.Ordering)
	assert.Same(t, s, merged.Columns["data"])
}

func TestMergeDuplicate(t *testing.T) {
	d := NewDataset("dup")
	d.Add("int0", NewStrings([]string{"a"}))
	d.Add("x", NewVector([]int32{1}))
	_, err := Merge(d)
	assert.Error(t, err)
}

func TestUnmergeKeepsSparseKey(t *testing.T) {
	s, err := NewSparse(2, 2, []float64{1}, []int{1}, []int{0, 1, 1})
	require.NoError(t, err)
	d := NewDataset("libsvm")
	d.Add("int0", NewVector([]int32{1, -1}))
	d.Add("data", s)
	d.Add("a+b", NewStrings([]string{"x", "y"}))
	d.Names = []string{"label", "f0", "f1", "note"}
	unmerged := Unmerge(d)
	assert.Equal(t, []string{"label", "data", "note"}, unmerged.Ordering)
	assert.Same(t, s, unmerged.Columns["data"])
}

func TestUnmergeWithoutNames(t *testing.T) {
	d := NewDataset("block")
	d.Add("double0", &Matrix[float64]{Rows: 2, Cols: 1, Data: []float64{1, 2}})
	unmerged := Unmerge(d)
	assert.Equal(t, []string{"double00", "double01"}, unmerged.Ordering)
}
