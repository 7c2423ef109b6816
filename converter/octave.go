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
	"github.com/gorse-io/ml2h5/base"
	"github.com/gorse-io/ml2h5/codec/octave"
	"github.com/gorse-io/ml2h5/dataset"
	"github.com/juju/errors"
)

// Octave handles Octave text files.
type Octave struct {
	file
}

func newOctave(path string, opts Options) (Handler, error) {
	return &Octave{file{path: path, opts: opts}}, nil
}

func variableColumn(v *octave.Variable) (dataset.Column, error) {
	vector := v.Rows <= 1
	switch v.Type {
	case octave.Scalar:
		return dataset.NewVector(v.Floats), nil
	case octave.Matrix:
		if vector {
			return dataset.NewVector(v.Floats), nil
		}
		return &dataset.Matrix[float64]{Rows: v.Rows, Cols: v.Cols, Data: v.Floats}, nil
	case octave.Int32Matrix:
		values := make([]int32, len(v.Ints))
		for i, x := range v.Ints {
			values[i] = int32(x)
		}
		if vector {
			return dataset.NewVector(values), nil
		}
		return &dataset.Matrix[int32]{Rows: v.Rows, Cols: v.Cols, Data: values}, nil
	case octave.Int64Matrix:
		if vector {
			return dataset.NewVector(v.Ints), nil
		}
		return &dataset.Matrix[int64]{Rows: v.Rows, Cols: v.Cols, Data: v.Ints}, nil
	case octave.SparseMatrix:
		return dataset.NewSparse(v.Rows, v.Cols, v.Floats, v.Indices, v.Indptr)
	case octave.Cell, octave.String, octave.SqString:
		return dataset.NewStrings(v.Strings), nil
	}
	return nil, errors.NotSupportedf("variable %s of type %s", v.Name, v.Type)
}

func (h *Octave) Read() (*dataset.Dataset, error) {
	h.reset()
	r, err := base.OpenFile(h.path, h.opts.Progress)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer r.Close()
	variables, diagnostics, err := octave.Read(r)
	h.add(diagnostics...)
	if err != nil {
		return nil, errors.Trace(err)
	}

	d := dataset.NewDataset(datasetName(h.path))
	d.Comment = "octave"
	columns := make(map[string]dataset.Column)
	var keys, ordering []string
	for _, v := range variables {
		switch v.Name {
		case descrOrdering:
			ordering = v.Strings
			continue
		case descrNames:
			d.Names = v.Strings
			continue
		case descrTypes:
			d.Types = v.Strings
			continue
		}
		col, err := variableColumn(v)
		if err != nil {
			return nil, errors.Trace(err)
		}
		columns[v.Name] = col
		keys = append(keys, v.Name)
	}
	if ordering != nil {
		keys = descrOrderingOf(keys, ordering)
	}
	for _, key := range keys {
		d.Add(key, columns[key])
	}
	if isTask(d.Ordering) {
		d.Group = dataset.GroupTask
	}
	return d, nil
}

func columnVariable(key string, col dataset.Column) (*octave.Variable, error) {
	v := &octave.Variable{Name: key}
	switch c := col.(type) {
	case *dataset.Matrix[float64]:
		v.Type, v.Rows, v.Cols, v.Floats = octave.Matrix, c.Rows, c.Cols, c.Data
	case *dataset.Matrix[int32]:
		v.Type, v.Rows, v.Cols = octave.Int32Matrix, c.Rows, c.Cols
		v.Ints = make([]int64, len(c.Data))
		for i, x := range c.Data {
			v.Ints[i] = int64(x)
		}
	case *dataset.Matrix[int64]:
		v.Type, v.Rows, v.Cols, v.Ints = octave.Int64Matrix, c.Rows, c.Cols, c.Data
	case *dataset.Strings:
		v.Type, v.Rows, v.Cols, v.Strings = octave.Cell, 1, len(c.Values), c.Values
	case *dataset.Sparse:
		v.Type, v.Rows, v.Cols = octave.SparseMatrix, c.Rows, c.Cols
		v.Floats, v.Indices, v.Indptr = c.Data, c.Indices, c.Indptr
	default:
		return nil, errors.NotSupportedf("column %s of kind %s", key, col.Kind())
	}
	return v, nil
}

func cellVariable(name string, values []string) *octave.Variable {
	return &octave.Variable{Name: name, Type: octave.Cell, Rows: 1, Cols: len(values), Strings: values}
}

func (h *Octave) Write(d *dataset.Dataset) (err error) {
	if err = validate(d); err != nil {
		return errors.Trace(err)
	}
	variables := make([]*octave.Variable, 0, len(d.Ordering)+3)
	for _, key := range d.Ordering {
		v, err := columnVariable(key, d.Columns[key])
		if err != nil {
			return errors.Trace(err)
		}
		variables = append(variables, v)
	}
	variables = append(variables, cellVariable(descrOrdering, d.Ordering))
	if len(d.Names) > 0 {
		variables = append(variables, cellVariable(descrNames, d.Names))
	}
	if len(d.Types) > 0 {
		variables = append(variables, cellVariable(descrTypes, d.Types))
	}

	out, err := base.CreateFile(h.path)
	if err != nil {
		return errors.Trace(err)
	}
	defer base.CloseFile(out, &err)
	return errors.Trace(octave.Write(out, creator, variables))
}
