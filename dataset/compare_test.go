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

func TestEqual(t *testing.T) {
	a := NewDataset("a")
	a.Add("double0", NewVector([]float64{1, math.NaN(), 0.1 + 0.2}))
	a.Add("str1", NewStrings([]string{"x", "?", "z"}))
	b := NewDataset("b")
	b.Add("x", NewVector([]float64{1, math.NaN(), 0.3}))
	b.Add("y", NewStrings([]string{"x", "?", "z"}))
	equal, msg := Equal(a, b)
	assert.True(t, equal, msg)

	// strings are exact
	b.Columns["y"].(*Strings).Values[2] = "Z"
	equal, _ = Equal(a, b)
	assert.False(t, equal)

	// shape mismatch
	b.Add("z", NewVector([]float64{1, 2, 3}))
	equal, _ = Equal(a, b)
	assert.False(t, equal)
}

func TestEqualMixed(t *testing.T) {
	a := NewDataset("a")
	a.Add("int0", NewVector([]int32{1, 2}))
	b := NewDataset("b")
	b.Add("str0", NewStrings([]string{"1", "2.0"}))
	equal, msg := Equal(a, b)
	assert.True(t, equal, msg)
	b.Columns["str0"].(*Strings).Values[1] = "two"
	equal, _ = Equal(a, b)
	assert.False(t, equal)
}

func TestEqualSparse(t *testing.T) {
	s1, err := NewSparse(2, 2, []float64{1, 2}, []int{0, 1}, []int{0, 1, 2})
	require.NoError(t, err)
	s2, err := NewSparse(2, 2, []float64{1, 2}, []int{0, 1}, []int{0, 1, 2})
	require.NoError(t, err)
	a := NewDataset("a")
	a.Add("data", s1)
	b := NewDataset("b")
	b.Add("data", s2)
	equal, msg := Equal(a, b)
	assert.True(t, equal, msg)

	// sparse against dense
	c := NewDataset("c")
	c.Add("data", s1.Dense())
	equal, msg = Equal(Unmerge(c), a)
	assert.True(t, equal, msg)

	s2.Data[1] = 3
	equal, _ = Equal(a, b)
	assert.False(t, equal)
}
