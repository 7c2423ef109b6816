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
	"cmp"
	"slices"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/ml2h5/base"
	"github.com/gorse-io/ml2h5/codec/mat"
	"github.com/gorse-io/ml2h5/dataset"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

// Variables describing the dataset, stored next to the columns in MAT-files
// and Octave files.
const (
	descrOrdering = "mldata_descr_ordering"
	descrNames    = "mldata_descr_names"
	descrTypes    = "mldata_descr_types"
)

const creator = "ml2h5"

// MAT handles MATLAB Level 5 MAT-files.
type MAT struct {
	file
}

func newMAT(path string, opts Options) (Handler, error) {
	return &MAT{file{path: path, opts: opts}}, nil
}

// suffixOrder sorts keys like int0, double1 and str2 by their index and other
// keys by name after them.
func suffixOrder(a, b string) int {
	ia, oka := keySuffix(a)
	ib, okb := keySuffix(b)
	switch {
	case oka && okb:
		return cmp.Or(cmp.Compare(ia, ib), cmp.Compare(a, b))
	case oka:
		return -1
	case okb:
		return 1
	}
	return cmp.Compare(a, b)
}

func keySuffix(key string) (int, bool) {
	for _, prefix := range []string{"double", "int", "str"} {
		if suffix, ok := strings.CutPrefix(key, prefix); ok {
			if n, err := strconv.Atoi(suffix); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// descrOrderingOf orders keys by a descriptor. Keys missing from the
// descriptor follow in suffix order.
func descrOrderingOf(keys []string, descr []string) []string {
	present := mapset.NewThreadUnsafeSet(keys...)
	ordering := lo.Filter(descr, func(key string, _ int) bool {
		return present.Contains(key)
	})
	rest := mapset.NewThreadUnsafeSet(keys...).Difference(mapset.NewThreadUnsafeSet(ordering...)).ToSlice()
	slices.SortFunc(rest, suffixOrder)
	return append(ordering, rest...)
}

// isTask checks whether keys are all task payload keys.
func isTask(keys []string) bool {
	return len(keys) > 0 && mapset.NewThreadUnsafeSet(dataset.TaskKeys...).Contains(keys...)
}

func arrayColumn(a *mat.Array) (dataset.Column, error) {
	rows, cols := a.Rows(), a.Cols()
	switch {
	case a.Class == mat.ClassCell:
		values, err := a.Strings()
		if err != nil {
			return nil, errors.Trace(err)
		}
		return dataset.NewStrings(values), nil
	case a.Class == mat.ClassChar:
		if rows > 1 {
			return dataset.NewStrings(strings.Split(a.String(), "\n")), nil
		}
		return dataset.NewStrings([]string{a.String()}), nil
	case a.Class == mat.ClassSparse:
		return dataset.NewSparse(rows, cols, a.Floats, a.Ir, a.Jc)
	case a.IsInteger():
		wide := a.Class == mat.ClassInt64 || a.Class == mat.ClassUint32 || a.Class == mat.ClassUint64
		if wide {
			return denseColumn(rows, cols, a.Ints, func(v int64) int64 { return v }), nil
		}
		return denseColumn(rows, cols, a.Ints, func(v int64) int32 { return int32(v) }), nil
	case a.Class == mat.ClassDouble || a.Class == mat.ClassSingle:
		return denseColumn(rows, cols, a.Floats, func(v float64) float64 { return v }), nil
	}
	return nil, errors.NotSupportedf("array %s of class %d", a.Name, a.Class)
}

// denseColumn converts column-major values. Row vectors become vectors, other
// matrices blocks of rows attributes, including a block of a single example.
func denseColumn[S any, T dataset.Number](rows, cols int, values []S, convert func(S) T) dataset.Column {
	data := lo.Map(mat.Transpose(values, cols, rows), func(v S, _ int) T { return convert(v) })
	if rows <= 1 {
		return dataset.NewVector(data)
	}
	return &dataset.Matrix[T]{Rows: rows, Cols: cols, Data: data}
}

func (h *MAT) Read() (*dataset.Dataset, error) {
	h.reset()
	r, err := base.OpenFile(h.path, h.opts.Progress)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer r.Close()
	_, arrays, err := mat.Read(r)
	if err != nil {
		return nil, errors.Trace(err)
	}

	d := dataset.NewDataset(datasetName(h.path))
	d.Comment = "matlab"
	columns := make(map[string]dataset.Column)
	var keys, ordering []string
	for _, a := range arrays {
		switch a.Name {
		case "__header__", "__globals__", "__version__":
			continue
		case descrOrdering, descrNames, descrTypes:
			values, err := a.Strings()
			if err != nil {
				return nil, errors.Trace(err)
			}
			switch a.Name {
			case descrOrdering:
				ordering = values
			case descrNames:
				d.Names = values
			default:
				d.Types = values
			}
			continue
		}
		col, err := arrayColumn(a)
		if err != nil {
			if errors.Is(err, errors.NotSupported) {
				h.add(dataset.Diagnostic{Message: err.Error()})
				continue
			}
			return nil, errors.Trace(err)
		}
		columns[a.Name] = col
		keys = append(keys, a.Name)
	}
	for _, key := range descrOrderingOf(keys, ordering) {
		d.Add(key, columns[key])
	}
	if isTask(d.Ordering) {
		d.Group = dataset.GroupTask
	}
	return d, nil
}

func columnArray(key string, col dataset.Column) (*mat.Array, error) {
	switch c := col.(type) {
	case *dataset.Matrix[float64]:
		if c.Vector || c.Rows == 1 {
			return mat.NewDouble(key, 1, c.Cols, c.Data), nil
		}
		return mat.NewDouble(key, c.Rows, c.Cols, mat.Transpose(c.Data, c.Rows, c.Cols)), nil
	case *dataset.Matrix[int32]:
		values := lo.Map(c.Data, func(v int32, _ int) int64 { return int64(v) })
		if c.Vector || c.Rows == 1 {
			return mat.NewInt32(key, 1, c.Cols, values), nil
		}
		return mat.NewInt32(key, c.Rows, c.Cols, mat.Transpose(values, c.Rows, c.Cols)), nil
	case *dataset.Matrix[int64]:
		if c.Vector || c.Rows == 1 {
			return mat.NewInt64(key, 1, c.Cols, c.Data), nil
		}
		return mat.NewInt64(key, c.Rows, c.Cols, mat.Transpose(c.Data, c.Rows, c.Cols)), nil
	case *dataset.Strings:
		return mat.NewCellOfStrings(key, c.Values), nil
	case *dataset.Sparse:
		return mat.NewSparse(key, c.Rows, c.Cols, c.Indices, c.Indptr, c.Data), nil
	}
	return nil, errors.NotSupportedf("column %s of kind %s", key, col.Kind())
}

// validate checks a dataset before writing variables. Task payloads may hold
// vectors of different lengths.
func validate(d *dataset.Dataset) error {
	if d.Group == dataset.GroupTask {
		return d.Validate()
	}
	_, err := writable(d)
	return errors.Trace(err)
}

func (h *MAT) Write(d *dataset.Dataset) (err error) {
	if err = validate(d); err != nil {
		return errors.Trace(err)
	}
	arrays := make([]*mat.Array, 0, len(d.Ordering)+3)
	for _, key := range d.Ordering {
		a, err := columnArray(key, d.Columns[key])
		if err != nil {
			return errors.Trace(err)
		}
		arrays = append(arrays, a)
	}
	arrays = append(arrays, mat.NewCellOfStrings(descrOrdering, d.Ordering))
	if len(d.Names) > 0 {
		arrays = append(arrays, mat.NewCellOfStrings(descrNames, d.Names))
	}
	if len(d.Types) > 0 {
		arrays = append(arrays, mat.NewCellOfStrings(descrTypes, d.Types))
	}

	out, err := base.CreateFile(h.path)
	if err != nil {
		return errors.Trace(err)
	}
	defer base.CloseFile(out, &err)
	w := mat.NewWriter(out, h.opts.Compression)
	if err = w.WriteHeader(creator); err != nil {
		return errors.Trace(err)
	}
	for _, a := range arrays {
		if err = w.Write(a); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}
