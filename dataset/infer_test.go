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
)

func TestInfer(t *testing.T) {
	assert.Equal(t, NewVector([]int32{1, -2, 3}), Infer([]string{"1", "-2", "3"}, InferOptions{}))
	assert.Equal(t, NewVector([]int64{1, 3000000000}), Infer([]string{"1", "3000000000"}, InferOptions{}))
	assert.Equal(t, NewVector([]int64{1, 2}), Infer([]string{"1", "2"}, InferOptions{WideInts: true}))
	assert.Equal(t, NewVector([]float64{1, 2.5}), Infer([]string{"1", "2.5"}, InferOptions{}))
	assert.Equal(t, NewStrings([]string{"1", "a", "?"}), Infer([]string{"1", "a", "?"}, InferOptions{}))

	// missing values force doubles
	col := Infer([]string{"1", "?"}, InferOptions{})
	values := col.(*Matrix[float64]).Data
	assert.Equal(t, 1.0, values[0])
	assert.True(t, math.IsNaN(values[1]))

	// a column of missing values
	assert.Equal(t, KindFloat64, Infer([]string{"?", "?"}, InferOptions{}).Kind())
	assert.Equal(t, NewStrings([]string{"?", "?"}), Infer([]string{"?", "?"}, InferOptions{MissingAsString: true}))
}

func TestKeyPrefix(t *testing.T) {
	assert.Equal(t, "int", KeyPrefix(NewVector([]int64{1})))
	assert.Equal(t, "double", KeyPrefix(NewVector([]float64{1})))
	assert.Equal(t, "str", KeyPrefix(NewStrings(nil)))
}
