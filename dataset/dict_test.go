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
)

func TestLevels(t *testing.T) {
	levels := NewLevels("x", "y")
	assert.Equal(t, 0, levels.Id("x"))
	assert.Equal(t, 1, levels.Id("y"))
	assert.Equal(t, 1, levels.Id("y"))
	assert.Equal(t, 2, levels.Id("z"))
	assert.Equal(t, 3, levels.Count())
	assert.Equal(t, 1, levels.Freq(0))
	assert.Equal(t, 2, levels.Freq(1))
	assert.Equal(t, 1, levels.Freq(2))
	assert.Equal(t, 0, levels.Freq(5))
	assert.Equal(t, []string{"x", "y", "z"}, levels.Values())
	_, ok := levels.Lookup("w")
	assert.False(t, ok)
	s, ok := levels.String(2)
	assert.True(t, ok)
	assert.Equal(t, "z", s)
	_, ok = levels.String(3)
	assert.False(t, ok)
}
