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
	"os"
	"slices"
	"time"

	"github.com/juju/errors"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"
)

// Magic of the underlying bbolt file, found at byte 16 of the first page.
const Magic uint32 = 0xED0CDAED

// Version of the layout, stored in the "mldata" attribute.
const Version = "0"

const (
	GroupAttrs     = "attrs"
	GroupData      = "data"
	GroupDataDescr = "data_descr"
	GroupTask      = "task"
)

const (
	AttrName    = "name"
	AttrComment = "comment"
	AttrVersion = "mldata"
)

const (
	codecRaw  byte = 0
	codecZstd byte = 1
)

// Element types of entries.
const (
	TypeInt32   = "int32"
	TypeInt64   = "int64"
	TypeFloat64 = "float64"
	TypeString  = "string"
)

// Entry is an n-dimensional array stored under a key of a group. Data is laid
// out in row-major order and only the slice matching Type is used. Dims holds
// the logical dimensions of a sparse matrix whose stored values are the entry.
type Entry struct {
	Type    string    `msgpack:"type"`
	Shape   []int     `msgpack:"shape"`
	Dims    []int     `msgpack:"dims,omitempty"`
	Ints    []int64   `msgpack:"ints,omitempty"`
	Floats  []float64 `msgpack:"floats,omitempty"`
	Strings []string  `msgpack:"strings,omitempty"`
}

// Len returns the number of elements.
func (e *Entry) Len() int {
	switch e.Type {
	case TypeInt32, TypeInt64:
		return len(e.Ints)
	case TypeFloat64:
		return len(e.Floats)
	}
	return len(e.Strings)
}

func (e *Entry) Validate() error {
	n := 1
	for _, d := range e.Shape {
		n *= d
	}
	if n != e.Len() {
		return errors.NotValidf("entry of shape %v with %d elements", e.Shape, e.Len())
	}
	switch e.Type {
	case TypeInt32, TypeInt64, TypeFloat64, TypeString:
		return nil
	}
	return errors.NotValidf("entry type %q", e.Type)
}

// Container is a single-file hierarchical store of named groups of entries.
type Container struct {
	db       *bolt.DB
	compress bool
	encoder  *zstd.Encoder
	decoder  *zstd.Decoder
}

// Create creates a container, replacing any existing file. Entries are
// compressed with zstd if compress is set.
func Create(path string, compress bool) (*Container, error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, errors.Trace(err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Trace(err)
	}
	c := &Container{db: db, compress: compress}
	if compress {
		if c.encoder, err = zstd.NewWriter(nil); err != nil {
			_ = db.Close()
			return nil, errors.Trace(err)
		}
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, group := range []string{GroupAttrs, GroupDataDescr} {
			if _, err := tx.CreateBucketIfNotExists([]byte(group)); err != nil {
				return errors.Annotatef(err, "create group %s", group)
			}
		}
		return tx.Bucket([]byte(GroupAttrs)).Put([]byte(AttrVersion), []byte(Version))
	})
	if err != nil {
		_ = c.Close()
		return nil, errors.Trace(err)
	}
	return c, nil
}

// Open opens an existing container for reading.
func Open(path string) (*Container, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Trace(err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second, ReadOnly: true})
	if err != nil {
		return nil, errors.Annotatef(err, "open container %s", path)
	}
	c := &Container{db: db}
	if c.decoder, err = zstd.NewReader(nil); err != nil {
		_ = db.Close()
		return nil, errors.Trace(err)
	}
	if _, err = c.Attr(AttrVersion); err != nil {
		_ = c.Close()
		return nil, errors.Annotatef(err, "%s is not a dataset container", path)
	}
	return c, nil
}

func (c *Container) Close() error {
	if c.encoder != nil {
		_ = c.encoder.Close()
	}
	if c.decoder != nil {
		c.decoder.Close()
	}
	return errors.Trace(c.db.Close())
}

// SetAttr sets a root attribute.
func (c *Container) SetAttr(name, value string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(GroupAttrs)).Put([]byte(name), []byte(value))
	})
}

// Attr returns a root attribute.
func (c *Container) Attr(name string) (value string, err error) {
	err = c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(GroupAttrs))
		if b == nil {
			return errors.NotFoundf("attributes")
		}
		v := b.Get([]byte(name))
		if v == nil {
			return errors.NotFoundf("attribute %s", name)
		}
		value = string(v)
		return nil
	})
	return
}

// Attrs returns all root attributes sorted by name.
func (c *Container) Attrs() (names, values []string, err error) {
	err = c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(GroupAttrs))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			names = append(names, string(k))
			values = append(values, string(v))
			return nil
		})
	})
	return
}

// Put stores an entry under group/key.
func (c *Container) Put(group, key string, e *Entry) error {
	if err := e.Validate(); err != nil {
		return errors.Annotatef(err, "%s/%s", group, key)
	}
	value, err := c.encode(e)
	if err != nil {
		return errors.Trace(err)
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(group))
		if err != nil {
			return errors.Annotatef(err, "create group %s", group)
		}
		return b.Put([]byte(key), value)
	})
}

// Get loads the entry under group/key.
func (c *Container) Get(group, key string) (*Entry, error) {
	var value []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(group))
		if b == nil {
			return errors.NotFoundf("group %s", group)
		}
		v := b.Get([]byte(key))
		if v == nil {
			return errors.NotFoundf("entry %s/%s", group, key)
		}
		value = slices.Clone(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.decode(value)
}

// Has checks whether group/key exists.
func (c *Container) Has(group, key string) bool {
	found := false
	_ = c.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket([]byte(group)); b != nil {
			found = b.Get([]byte(key)) != nil
		}
		return nil
	})
	return found
}

// Keys lists the keys of a group in byte order.
func (c *Container) Keys(group string) (keys []string, err error) {
	err = c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(group))
		if b == nil {
			return errors.NotFoundf("group %s", group)
		}
		return b.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return
}

// Groups lists groups holding entries, excluding root attributes.
func (c *Container) Groups() (groups []string, err error) {
	err = c.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			if string(name) != GroupAttrs {
				groups = append(groups, string(name))
			}
			return nil
		})
	})
	return
}

func (c *Container) encode(e *Entry) ([]byte, error) {
	data, err := msgpack.Marshal(e)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if c.compress {
		return c.encoder.EncodeAll(data, []byte{codecZstd}), nil
	}
	return append([]byte{codecRaw}, data...), nil
}

func (c *Container) decode(value []byte) (*Entry, error) {
	if len(value) == 0 {
		return nil, errors.NotValidf("empty entry")
	}
	data := value[1:]
	switch value[0] {
	case codecRaw:
	case codecZstd:
		if c.decoder == nil {
			var err error
			if c.decoder, err = zstd.NewReader(nil); err != nil {
				return nil, errors.Trace(err)
			}
		}
		var err error
		if data, err = c.decoder.DecodeAll(data, nil); err != nil {
			return nil, errors.Annotatef(err, "decompress entry")
		}
	default:
		return nil, errors.NotSupportedf("entry codec %d", value[0])
	}
	var e Entry
	if err := msgpack.Unmarshal(data, &e); err != nil {
		return nil, errors.Trace(err)
	}
	return &e, nil
}

// PutStrings stores a string vector.
func (c *Container) PutStrings(group, key string, values []string) error {
	return c.Put(group, key, &Entry{Type: TypeString, Shape: []int{len(values)}, Strings: values})
}

// GetStrings loads a string vector.
func (c *Container) GetStrings(group, key string) ([]string, error) {
	e, err := c.Get(group, key)
	if err != nil {
		return nil, err
	}
	if e.Type != TypeString {
		return nil, errors.NotValidf("%s/%s of type %s", group, key, e.Type)
	}
	return e.Strings, nil
}
