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
	"strings"

	"github.com/gorse-io/ml2h5/base"
	"github.com/gorse-io/ml2h5/codec/arff"
	"github.com/gorse-io/ml2h5/dataset"
	"github.com/juju/errors"
)

// ARFF handles Weka attribute-relation files.
type ARFF struct {
	file
}

func newARFF(path string, opts Options) (Handler, error) {
	return &ARFF{file{path: path, opts: opts}}, nil
}

func (h *ARFF) Read() (*dataset.Dataset, error) {
	h.reset()
	r, err := base.OpenFile(h.path, h.opts.Progress)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer r.Close()
	f, diagnostics, err := arff.Parse(r)
	h.add(diagnostics...)
	if err != nil {
		return nil, errors.Trace(err)
	}

	d := dataset.NewDataset(f.Relation)
	d.Comment = f.Comment
	for i, a := range f.Attributes {
		values := make([]string, len(f.Data))
		for j, row := range f.Data {
			values[j] = row[i]
		}
		var col dataset.Column
		switch a.Type {
		case arff.Numeric:
			col = dataset.Infer(values, dataset.InferOptions{})
		case arff.Nominal:
			col = dataset.Infer(values, dataset.InferOptions{MissingAsString: true})
		default:
			col = dataset.NewStrings(values)
		}
		d.Add(a.Name, col)
		d.Names = append(d.Names, a.Name)
		d.Types = append(d.Types, a.Tag())
	}
	return d, nil
}

// attributeTag derives the type of an attribute without declared types.
func attributeTag(name string, col dataset.Column) string {
	switch {
	case strings.HasPrefix(name, "int"), strings.HasPrefix(name, "double"):
		return arff.Numeric
	case strings.HasPrefix(name, "date"):
		return arff.Date
	case col.Kind() == dataset.KindString:
		return arff.String
	}
	return arff.Numeric
}

func (h *ARFF) Write(d *dataset.Dataset) (err error) {
	if d.Group == dataset.GroupTask {
		return errors.NotSupportedf("writing task to ARFF")
	}
	n, err := writable(d)
	if err != nil {
		return errors.Trace(err)
	}
	f := &arff.File{Relation: d.Name, Comment: d.Comment}
	names := d.AttributeNames()
	attr := 0
	for _, key := range d.Ordering {
		col := d.Columns[key]
		if col.Kind() == dataset.KindSparse {
			return errors.NotSupportedf("sparse column %s in ARFF", key)
		}
		for i := 0; i < col.Attributes(); i++ {
			tag := d.TypeOf(attr)
			if len(d.Types) != d.NumAttributes() {
				tag = attributeTag(names[attr], col)
			}
			a, err := arff.ParseTag(names[attr], tag)
			if err != nil {
				return errors.Trace(err)
			}
			if a.Type == arff.Numeric && col.Kind() == dataset.KindString {
				a = arff.NewAttribute(a.Name, arff.String)
			}
			f.Attributes = append(f.Attributes, a)
			attr++
		}
	}
	f.Data = make([][]string, n)
	for j := range f.Data {
		f.Data[j] = textRow(d, j, nil)
	}

	out, err := base.CreateFile(h.path)
	if err != nil {
		return errors.Trace(err)
	}
	defer base.CloseFile(out, &err)
	return errors.Trace(f.Write(out))
}
