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
	"github.com/gorse-io/ml2h5/codec/rdata"
	"github.com/gorse-io/ml2h5/dataset"
	"github.com/juju/errors"
)

// RData exports datasets as R workspaces. A data payload becomes a
// data.frame named after the dataset.
type RData struct {
	file
}

func newRData(path string, opts Options) (Handler, error) {
	return &RData{file{path: path, opts: opts}}, nil
}

func (h *RData) Read() (*dataset.Dataset, error) {
	return nil, errors.NotSupportedf("reading RData")
}

// attributeObject converts an attribute of a column. Nominal strings become
// factors.
func attributeObject(col dataset.Column, attr int, tag string) rdata.Object {
	if levels, ok := dataset.NominalValues(tag); ok {
		values := make([]string, col.Len())
		for j := range values {
			values[j] = col.Cell(attr, j)
			if dataset.IsNaN(col, attr, j) {
				values[j] = dataset.Missing
			}
		}
		return factor(values, levels)
	}
	switch c := col.(type) {
	case *dataset.Matrix[int32]:
		return rdata.NewIntegers(c.Row(attr))
	case *dataset.Strings:
		return rdata.NewStrings(c.Values...)
	}
	values, _ := dataset.Floats(col, attr)
	return rdata.NewDoubles(values)
}

// factor codes values by their levels. Undeclared values become NA, unless
// no level is declared.
func factor(values, declared []string) *rdata.Integers {
	levels := dataset.NewLevels(declared...)
	codes := make([]int32, len(values))
	for i, v := range values {
		if _, known := levels.Lookup(v); v == dataset.Missing || (!known && len(declared) > 0) {
			codes[i] = rdata.NAInteger
			continue
		}
		codes[i] = int32(levels.Id(v) + 1)
	}
	return rdata.Factor(codes, levels.Values())
}

// columnObject converts a whole column of a task payload.
func columnObject(col dataset.Column) rdata.Object {
	switch c := col.(type) {
	case *dataset.Strings:
		return rdata.NewStrings(c.Values...)
	case *dataset.Matrix[int32]:
		if c.Rows == 1 {
			return rdata.NewIntegers(c.Data)
		}
	}
	if col.Attributes() == 1 {
		return attributeObject(col, 0, "")
	}
	values := make([]float64, 0, col.Attributes()*col.Len())
	for a := 0; a < col.Attributes(); a++ {
		row, _ := dataset.Floats(col, a)
		values = append(values, row...)
	}
	return rdata.Matrix(col.Attributes(), col.Len(), values)
}

func (h *RData) Write(d *dataset.Dataset) (err error) {
	if err = validate(d); err != nil {
		return errors.Trace(err)
	}
	var variables []rdata.Variable
	if d.Group == dataset.GroupTask {
		for _, key := range d.Ordering {
			variables = append(variables, rdata.Variable{Name: key, Value: columnObject(d.Columns[key])})
		}
	} else {
		n, _ := d.NumExamples()
		var objects []rdata.Object
		for _, key := range d.Ordering {
			col := d.Columns[key]
			for a := 0; a < col.Attributes(); a++ {
				objects = append(objects, attributeObject(col, a, d.TypeOf(len(objects))))
			}
		}
		name := d.Name
		if name == "" {
			name = datasetName(h.path)
		}
		variables = append(variables, rdata.Variable{Name: name, Value: rdata.DataFrame(d.AttributeNames(), objects, n)})
	}

	out, err := base.CreateFile(h.path)
	if err != nil {
		return errors.Trace(err)
	}
	defer base.CloseFile(out, &err)
	return errors.Trace(rdata.Write(out, variables))
}
