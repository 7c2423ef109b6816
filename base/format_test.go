// Copyright 2021 gorse Project Authors
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

package base

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateKey(t *testing.T) {
	assert.NotNil(t, ValidateKey(""))
	assert.NotNil(t, ValidateKey("  "))
	assert.Nil(t, ValidateKey("int0"))
}

func TestSplit(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "3"}, Split("1,2,3", ","))
	assert.Equal(t, []string{"1,2", "3,4", "5,6"}, Split("\"1,2\",\"3,4\",\"5,6\"", ","))
	assert.Equal(t, []string{"\"1,2\",\"3,4\",\"5,6\""}, Split("\"\"\"1,2\"\",\"\"3,4\"\",\"\"5,6\"\"\"", ","))
	assert.Equal(t, []string{"a", "b c", "d"}, Split("  a \"b c\"\td ", Whitespace))
	assert.Equal(t, []string{"", "x", ""}, Split("\tx\t", "\t"))
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "2.5", FormatFloat(2.5))
	assert.Equal(t, "1", FormatFloat(1))
	assert.Equal(t, "1e+20", FormatFloat(1e20))
	assert.Equal(t, "NaN", FormatFloat(math.NaN()))
	assert.Equal(t, "-Inf", FormatFloat(math.Inf(-1)))
}

func TestParseFloat(t *testing.T) {
	v, err := ParseFloat("?")
	assert.NoError(t, err)
	assert.True(t, math.IsNaN(v))
	v, err = ParseFloat("3.25")
	assert.NoError(t, err)
	assert.Equal(t, 3.25, v)
	v, err = ParseFloat("-inf")
	assert.NoError(t, err)
	assert.True(t, math.IsInf(v, -1))
	_, err = ParseFloat("abc")
	assert.Error(t, err)
}

func TestIsIntegral(t *testing.T) {
	assert.True(t, IsIntegral(3))
	assert.False(t, IsIntegral(3.5))
	assert.False(t, IsIntegral(math.NaN()))
	assert.False(t, IsIntegral(math.Inf(1)))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 20))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "日本", Truncate("日本語", 2))
}
