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

package container

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type ContainerTestSuite struct {
	suite.Suite
	compress bool
	path     string
}

func (suite *ContainerTestSuite) SetupTest() {
	suite.path = filepath.Join(suite.T().TempDir(), "test.h5")
}

func (suite *ContainerTestSuite) create() *Container {
	c, err := Create(suite.path, suite.compress)
	suite.Require().NoError(err)
	return c
}

func (suite *ContainerTestSuite) TestAttributes() {
	c := suite.create()
	suite.NoError(c.SetAttr(AttrName, "iris"))
	suite.NoError(c.SetAttr(AttrComment, "flowers"))
	suite.NoError(c.Close())

	c, err := Open(suite.path)
	suite.Require().NoError(err)
	defer c.Close()
	name, err := c.Attr(AttrName)
	suite.NoError(err)
	suite.Equal("iris", name)
	version, err := c.Attr(AttrVersion)
	suite.NoError(err)
	suite.Equal(Version, version)
	_, err = c.Attr("missing")
	suite.True(errors.Is(err, errors.NotFound))
	names, values, err := c.Attrs()
	suite.NoError(err)
	suite.Equal([]string{AttrComment, AttrVersion, AttrName}, names)
	suite.Equal([]string{"flowers", Version, "iris"}, values)
}

func (suite *ContainerTestSuite) TestEntries() {
	c := suite.create()
	suite.NoError(c.Put(GroupData, "int0", &Entry{Type: TypeInt32, Shape: []int{2, 3}, Ints: []int64{1, 2, 3, 4, 5, 6}}))
	suite.NoError(c.Put(GroupData, "double0", &Entry{Type: TypeFloat64, Shape: []int{2}, Floats: []float64{0.5, math.NaN()}}))
	suite.NoError(c.Put(GroupData, "data", &Entry{Type: TypeFloat64, Shape: []int{1}, Dims: []int{4, 2}, Floats: []float64{1}}))
	suite.NoError(c.PutStrings(GroupDataDescr, "ordering", []string{"int0", "double0"}))
	suite.Error(c.Put(GroupData, "bad", &Entry{Type: TypeInt32, Shape: []int{3}, Ints: []int64{1}}))
	suite.Error(c.Put(GroupData, "bad", &Entry{Type: "complex", Shape: []int{0}}))
	suite.NoError(c.Close())

	c, err := Open(suite.path)
	suite.Require().NoError(err)
	defer c.Close()
	e, err := c.Get(GroupData, "int0")
	suite.NoError(err)
	suite.Equal(&Entry{Type: TypeInt32, Shape: []int{2, 3}, Ints: []int64{1, 2, 3, 4, 5, 6}}, e)
	e, err = c.Get(GroupData, "data")
	suite.NoError(err)
	suite.Equal([]int{4, 2}, e.Dims)
	e, err = c.Get(GroupData, "double0")
	suite.NoError(err)
	suite.Equal(0.5, e.Floats[0])
	suite.True(math.IsNaN(e.Floats[1]))
	ordering, err := c.GetStrings(GroupDataDescr, "ordering")
	suite.NoError(err)
	suite.Equal([]string{"int0", "double0"}, ordering)
	_, err = c.GetStrings(GroupData, "int0")
	suite.Error(err)

	keys, err := c.Keys(GroupData)
	suite.NoError(err)
	suite.Equal([]string{"data", "double0", "int0"}, keys)
	suite.True(c.Has(GroupData, "int0"))
	suite.False(c.Has(GroupData, "int1"))
	suite.False(c.Has(GroupTask, "train_idx"))
	_, err = c.Get(GroupTask, "train_idx")
	suite.True(errors.Is(err, errors.NotFound))
	groups, err := c.Groups()
	suite.NoError(err)
	suite.Equal([]string{GroupData, GroupDataDescr}, groups)
}

func (suite *ContainerTestSuite) TestMagic() {
	suite.NoError(suite.create().Close())
	data, err := os.ReadFile(suite.path)
	suite.Require().NoError(err)
	suite.Equal(Magic, binary.LittleEndian.Uint32(data[16:20]))
}

func (suite *ContainerTestSuite) TestDumpXML() {
	c := suite.create()
	suite.NoError(c.SetAttr(AttrName, "tiny"))
	suite.NoError(c.Put(GroupData, "int0", &Entry{Type: TypeInt32, Shape: []int{2}, Ints: []int64{1, 2}}))
	suite.NoError(c.PutStrings(GroupData, "str1", []string{"a", "b<c"}))
	var buf bytes.Buffer
	suite.NoError(c.DumpXML(&buf))
	suite.NoError(c.Close())
	suite.Contains(buf.String(), `<Attribute name="name">tiny</Attribute>`)
	suite.Contains(buf.String(), `<Dataset name="int0" type="int32" shape="2">`)
	suite.Contains(buf.String(), `<Data>1 2</Data>`)
	suite.Contains(buf.String(), `<Value>b&lt;c</Value>`)
}

func TestRaw(t *testing.T) {
	suite.Run(t, &ContainerTestSuite{})
}

func TestCompressed(t *testing.T) {
	suite.Run(t, &ContainerTestSuite{compress: true})
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.h5"))
	assert.Error(t, err)

	// a file that is not a container
	path := filepath.Join(t.TempDir(), "plain.h5")
	assert.NoError(t, os.WriteFile(path, []byte("1,2,3\n"), 0o644))
	_, err = Open(path)
	assert.Error(t, err)
}
