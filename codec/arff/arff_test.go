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

package arff

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const weather = `% weather data
% from the book
@relation weather

@attribute outlook {sunny, overcast, 'light rain'}
@attribute temperature real
@attribute 'wind speed' integer
@attribute note string
@attribute day date "yyyy-MM-dd"

@data
sunny,85,3,'hot, dry',2009-01-02
overcast,?,,calm,?
'light rain',70.5,1,"it's wet",2009-01-03
% a comment row
snow,60,1,x,2009-01-04
sunny,abc,1,x,2009-01-05
sunny,60,1
`

func TestParse(t *testing.T) {
	f, diagnostics, err := Parse(strings.NewReader(weather))
	require.NoError(t, err)
	assert.Equal(t, "weather", f.Relation)
	assert.Equal(t, "weather data\nfrom the book", f.Comment)
	assert.Equal(t, []string{"outlook", "temperature", "wind speed", "note", "day"},
		[]string{f.Attributes[0].Name, f.Attributes[1].Name, f.Attributes[2].Name, f.Attributes[3].Name, f.Attributes[4].Name})
	assert.Equal(t, "nominal:sunny,overcast,light rain", f.Attributes[0].Tag())
	assert.Equal(t, "numeric", f.Attributes[1].Tag())
	assert.Equal(t, "numeric", f.Attributes[2].Tag())
	assert.Equal(t, "string", f.Attributes[3].Tag())
	assert.Equal(t, "date:yyyy-MM-dd", f.Attributes[4].Tag())
	assert.Equal(t, [][]string{
		{"sunny", "85", "3", "hot, dry", "2009-01-02"},
		{"overcast", "?", "?", "calm", "?"},
		{"light rain", "70.5", "1", "it's wet", "2009-01-03"},
	}, f.Data)
	if assert.Len(t, diagnostics, 3) {
		assert.Equal(t, 16, diagnostics[0].Line)
		assert.Equal(t, 17, diagnostics[1].Line)
		assert.Equal(t, 18, diagnostics[2].Line)
	}
}

func TestParseWhitespaceRows(t *testing.T) {
	f, diagnostics, err := Parse(strings.NewReader("@relation r\n@attribute a numeric\n@attribute b numeric\n@data\n1 2\n3\t4\n"))
	require.NoError(t, err)
	assert.Empty(t, diagnostics)
	assert.Equal(t, [][]string{{"1", "2"}, {"3", "4"}}, f.Data)
}

func TestParseWithoutRelation(t *testing.T) {
	_, _, err := Parse(strings.NewReader("1,2,3\n4,5,6\n"))
	assert.Error(t, err)
}

func TestProbe(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weather")
	require.NoError(t, os.WriteFile(path, []byte(weather), 0o644))
	assert.True(t, Probe(path))
	path = filepath.Join(dir, "plain")
	require.NoError(t, os.WriteFile(path, []byte("1,2,3\n"), 0o644))
	assert.False(t, Probe(path))
	assert.False(t, Probe(filepath.Join(dir, "missing")))
}

func TestWrite(t *testing.T) {
	outlook, err := ParseTag("outlook", "nominal:sunny,light rain")
	require.NoError(t, err)
	day, err := ParseTag("day", "date:yyyy-MM-dd")
	require.NoError(t, err)
	f := &File{
		Relation: "weather report",
		Comment:  "line one\nline two",
		Attributes: []Attribute{
			outlook,
			NewAttribute("temperature", Numeric),
			NewAttribute("note", String),
			day,
		},
		Data: [][]string{
			{"sunny", "85", "hot, dry", "2009-01-02"},
			{"light rain", "?", "", "?"},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	assert.Equal(t, `% line one
% line two
@relation 'weather report'

@attribute outlook {sunny,'light rain'}
@attribute temperature numeric
@attribute note string
@attribute day date yyyy-MM-dd

@data
sunny,85,'hot, dry',2009-01-02
'light rain',?,'',?
`, buf.String())

	// read back
	g, diagnostics, err := Parse(&buf)
	require.NoError(t, err)
	assert.Empty(t, diagnostics)
	assert.Equal(t, f.Relation, g.Relation)
	assert.Equal(t, f.Comment, g.Comment)
	assert.Equal(t, f.Data, g.Data)
	assert.Equal(t, tags(f), tags(g))
}

func tags(f *File) []string {
	tags := make([]string, len(f.Attributes))
	for i, a := range f.Attributes {
		tags[i] = a.Name + "=" + a.Tag()
	}
	return tags
}

func TestParseTag(t *testing.T) {
	_, err := ParseTag("x", "relational")
	assert.Error(t, err)
	a, err := ParseTag("x", "date")
	assert.NoError(t, err)
	assert.Equal(t, "date", a.Tag())
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "abc", Escape("abc"))
	assert.Equal(t, "'a b'", Escape("a b"))
	assert.Equal(t, "\"it's\"", Escape("it's"))
	assert.Equal(t, "''", Escape(""))
}
