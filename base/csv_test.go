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
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSeparator(t *testing.T) {
	sep, err := ParseSeparator(",")
	assert.NoError(t, err)
	assert.Equal(t, Separator(","), sep)
	sep, err = ParseSeparator("tab")
	assert.NoError(t, err)
	assert.Equal(t, Separator("\t"), sep)
	sep, err = ParseSeparator("whitespace")
	assert.NoError(t, err)
	assert.Equal(t, Whitespace, sep)
	_, err = ParseSeparator(";")
	assert.Error(t, err)
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "123", Escape("123", ","))
	assert.Equal(t, "\"\"\"123\"\"\"", Escape("\"123\"", ","))
	assert.Equal(t, "\"1,2,3\"", Escape("1,2,3", ","))
	assert.Equal(t, "1,2,3", Escape("1,2,3", "\t"))
	assert.Equal(t, "\"a b\"", Escape("a b", Whitespace))
	assert.Equal(t, "\"1\r\n2\r\n3\"", Escape("1\r\n2\r\n3", ","))
}

func splitLines(t *testing.T, text string, sep Separator) [][]string {
	sc := bufio.NewScanner(strings.NewReader(text))
	lines := make([][]string, 0)
	err := ReadLines(sc, sep, func(i int, i2 []string) bool {
		lines = append(lines, i2)
		return i2[0] != "STOP"
	})
	assert.NoError(t, err)
	return lines
}

func TestReadLines(t *testing.T) {
	assert.Equal(t, [][]string{{"1", "2", "3"}, {"4", "5", "6"}},
		splitLines(t, "1,2,3\r\n4,5,6\r\n", ","))
	assert.Equal(t, [][]string{{"1,2", "3,4", "5,6"}, {"2,3", "4,6", "6,9"}},
		splitLines(t, "\"1,2\",\"3,4\",\"5,6\"\r\n\"2,3\",\"4,6\",\"6,9\"", ","))
	assert.Equal(t, [][]string{{"1\n2", "3"}},
		splitLines(t, "\"1\n2\",3\n", ","))
	assert.Equal(t, [][]string{{"1", "2", "3"}, {"4", "5", "6"}, {"STOP"}},
		splitLines(t, "1,2,3\r\n\r\n4,5,6\r\nSTOP\r\n7,8,9", ","))
	assert.Equal(t, [][]string{{"1", "2.5", "a b"}},
		splitLines(t, "  1 \t 2.5   \"a b\"  \n", Whitespace))
	assert.Equal(t, [][]string{{"1", "", "3"}},
		splitLines(t, "1\t\t3\n", "\t"))
}

func TestReadLinesLineNumbers(t *testing.T) {
	sc := bufio.NewScanner(strings.NewReader("a,b\n\n\"c\nd\",e\nf,g\n"))
	var numbers []int
	assert.NoError(t, ReadLines(sc, ",", func(i int, _ []string) bool {
		numbers = append(numbers, i)
		return true
	}))
	assert.Equal(t, []int{1, 3, 5}, numbers)
}
