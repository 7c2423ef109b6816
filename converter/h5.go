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

package converter

import (
	"io"

	"github.com/gorse-io/ml2h5/base"
	"github.com/gorse-io/ml2h5/dataset"
	"github.com/gorse-io/ml2h5/storage/container"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

const (
	descrKeyOrdering = "ordering"
	descrKeyNames    = "names"
	descrKeyTypes    = "types"

	suffixIndices = "_indices"
	suffixIndptr  = "_indptr"
)

// H5 handles the canonical dataset container.
type H5 struct {
	file
}

func newH5(path string, opts Options) (Handler, error) {
	return &H5{file{path: path, opts: opts}}, nil
}

func groupName(g dataset.Group) string {
	if g == dataset.GroupTask {
		return container.GroupTask
	}
	return container.GroupData
}

func toInt64s[T int | int32 | int64](values []T) []int64 {
	return lo.Map(values, func(v T, _ int) int64 { return int64(v) })
}

func toInts[T int | int32 | int64](values []int64) []T {
	return lo.Map(values, func(v int64, _ int) T { return T(v) })
}

// shape of a dense column as stored in the container.
func shape(rows, cols int, vector bool) []int {
	if vector {
		return []int{cols}
	}
	return []int{rows, cols}
}

// entries converts a column into one or more container entries keyed by
// their names.
func entries(key string, col dataset.Column) ([]string, []*container.Entry) {
	switch c := col.(type) {
	case *dataset.Matrix[int32]:
		return []string{key}, []*container.Entry{{Type: container.TypeInt32, Shape: shape(c.Rows, c.Cols, c.Vector), Ints: toInt64s(c.Data)}}
	case *dataset.Matrix[int64]:
		return []string{key}, []*container.Entry{{Type: container.TypeInt64, Shape: shape(c.Rows, c.Cols, c.Vector), Ints: c.Data}}
	case *dataset.Matrix[float64]:
		return []string{key}, []*container.Entry{{Type: container.TypeFloat64, Shape: shape(c.Rows, c.Cols, c.Vector), Floats: c.Data}}
	case *dataset.Strings:
		return []string{key}, []*container.Entry{{Type: container.TypeString, Shape: []int{len(c.Values)}, Strings: c.Values}}
	case *dataset.Sparse:
		return []string{key, key + suffixIndices, key + suffixIndptr}, []*container.Entry{
			{Type: container.TypeFloat64, Shape: []int{len(c.Data)}, Dims: []int{c.Rows, c.Cols}, Floats: c.Data},
			{Type: container.TypeInt64, Shape: []int{len(c.Indices)}, Ints: toInt64s(c.Indices)},
			{Type: container.TypeInt64, Shape: []int{len(c.Indptr)}, Ints: toInt64s(c.Indptr)},
		}
	}
	return nil, nil
}

func (h *H5) Write(d *dataset.Dataset) (err error) {
	if err = validate(d); err != nil {
		return errors.Trace(err)
	}
	if h.opts.Merge {
		if d, err = dataset.Merge(d); err != nil {
			return errors.Trace(err)
		}
	}

	c, err := container.Create(h.path, h.opts.Compression)
	if err != nil {
		return errors.Trace(err)
	}
	defer func() {
		if closeErr := c.Close(); closeErr != nil && err == nil {
			err = errors.Trace(closeErr)
		}
		if err != nil {
			base.RemoveFile(h.path)
		}
	}()
	if err = c.SetAttr(container.AttrName, d.Name); err != nil {
		return errors.Trace(err)
	}
	if err = c.SetAttr(container.AttrComment, d.Comment); err != nil {
		return errors.Trace(err)
	}
	group := groupName(d.Group)
	for _, key := range d.Ordering {
		names, values := entries(key, d.Columns[key])
		for i, name := range names {
			if c.Has(group, name) {
				return errors.AlreadyExistsf("entry %s/%s", group, name)
			}
			if err = c.Put(group, name, values[i]); err != nil {
				return errors.Trace(err)
			}
		}
	}
	if err = c.PutStrings(container.GroupDataDescr, descrKeyOrdering, d.Ordering); err != nil {
		return errors.Trace(err)
	}
	if len(d.Names) > 0 {
		if err = c.PutStrings(container.GroupDataDescr, descrKeyNames, d.Names); err != nil {
			return errors.Trace(err)
		}
	}
	if d.Types != nil {
		if err = c.PutStrings(container.GroupDataDescr, descrKeyTypes, d.Types); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// entryColumn converts a dense entry.
func entryColumn(e *container.Entry) (dataset.Column, error) {
	var rows, cols int
	switch len(e.Shape) {
	case 1:
		rows, cols = 1, e.Shape[0]
	case 2:
		rows, cols = e.Shape[0], e.Shape[1]
	default:
		return nil, errors.NotSupportedf("entry of %d dimensions", len(e.Shape))
	}
	vector := len(e.Shape) == 1
	switch e.Type {
	case container.TypeInt32:
		return &dataset.Matrix[int32]{Rows: rows, Cols: cols, Data: toInts[int32](e.Ints), Vector: vector}, nil
	case container.TypeInt64:
		return &dataset.Matrix[int64]{Rows: rows, Cols: cols, Data: e.Ints, Vector: vector}, nil
	case container.TypeFloat64:
		return &dataset.Matrix[float64]{Rows: rows, Cols: cols, Data: e.Floats, Vector: vector}, nil
	case container.TypeString:
		if !vector {
			return nil, errors.NotSupportedf("string entry of %d dimensions", len(e.Shape))
		}
		return dataset.NewStrings(lo.Ternary(e.Strings == nil, []string{}, e.Strings)), nil
	}
	return nil, errors.NotSupportedf("entry type %s", e.Type)
}

// sparseColumn loads a sparse column from its three entries. The number of
// attributes is one past the largest index unless dimensions are stored.
func sparseColumn(c *container.Container, group, key string) (dataset.Column, error) {
	data, err := c.Get(group, key)
	if err != nil {
		return nil, errors.Trace(err)
	}
	indices, err := c.Get(group, key+suffixIndices)
	if err != nil {
		return nil, errors.Trace(err)
	}
	indptr, err := c.Get(group, key+suffixIndptr)
	if err != nil {
		return nil, errors.Trace(err)
	}
	rows := 0
	if len(data.Dims) == 2 {
		rows = data.Dims[0]
	} else {
		for _, i := range indices.Ints {
			rows = max(rows, int(i)+1)
		}
	}
	return dataset.NewSparse(rows, len(indptr.Ints)-1, data.Floats, toInts[int](indices.Ints), toInts[int](indptr.Ints))
}

func (h *H5) Read() (d *dataset.Dataset, err error) {
	h.reset()
	c, err := container.Open(h.path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer c.Close()
	if version, _ := c.Attr(container.AttrVersion); version != container.Version {
		return nil, errors.NotSupportedf("container version %s", version)
	}

	d = dataset.NewDataset("")
	d.Name, _ = c.Attr(container.AttrName)
	d.Comment, _ = c.Attr(container.AttrComment)
	group := container.GroupData
	if !c.Has(container.GroupDataDescr, descrKeyOrdering) {
		return d, nil
	}
	ordering, err := c.GetStrings(container.GroupDataDescr, descrKeyOrdering)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if len(ordering) > 0 && !c.Has(group, ordering[0]) && c.Has(container.GroupTask, ordering[0]) {
		group = container.GroupTask
		d.Group = dataset.GroupTask
	}
	if c.Has(container.GroupDataDescr, descrKeyNames) {
		if d.Names, err = c.GetStrings(container.GroupDataDescr, descrKeyNames); err != nil {
			return nil, errors.Trace(err)
		}
	}
	if c.Has(container.GroupDataDescr, descrKeyTypes) {
		if d.Types, err = c.GetStrings(container.GroupDataDescr, descrKeyTypes); err != nil {
			return nil, errors.Trace(err)
		}
	}
	for _, key := range ordering {
		var col dataset.Column
		if c.Has(group, key+suffixIndices) && c.Has(group, key+suffixIndptr) {
			col, err = sparseColumn(c, group, key)
		} else {
			var e *container.Entry
			if e, err = c.Get(group, key); err == nil {
				col, err = entryColumn(e)
			}
		}
		if err != nil {
			return nil, errors.Annotatef(err, "read %s/%s", group, key)
		}
		d.Add(key, col)
	}
	return d, nil
}

// DumpXML writes the content of the container as XML.
func (h *H5) DumpXML(w io.Writer) error {
	c, err := container.Open(h.path)
	if err != nil {
		return errors.Trace(err)
	}
	defer c.Close()
	return errors.Trace(c.DumpXML(w))
}
