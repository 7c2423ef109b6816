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
	"bufio"
	"fmt"
	"io"
	"slices"

	"github.com/gorse-io/ml2h5/base"
	"github.com/gorse-io/ml2h5/dataset"
	"github.com/gorse-io/ml2h5/format"
	"github.com/juju/errors"
)

const maxLineLength = 64 << 20

// CSV handles comma (or otherwise) separated values.
type CSV struct {
	file
}

func newCSV(path string, opts Options) (Handler, error) {
	return &CSV{file{path: path, opts: opts}}, nil
}

func (h *CSV) separator() base.Separator {
	if h.opts.Separator != nil {
		return *h.opts.Separator
	}
	if sep, ok := format.InferSeparator(h.path); ok {
		return sep
	}
	return ","
}

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	return sc
}

func (h *CSV) Read() (*dataset.Dataset, error) {
	h.reset()
	r, err := base.OpenFile(h.path, h.opts.Progress)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer r.Close()

	var (
		header  []string
		columns [][]string
	)
	headerFirst := h.opts.HeaderFirst
	err = base.ReadLines(newScanner(r), h.separator(), func(line int, fields []string) bool {
		if headerFirst {
			header = fields
			headerFirst = false
			return true
		}
		if columns == nil {
			columns = make([][]string, len(fields))
		}
		if len(fields) != len(columns) {
			h.add(dataset.Diagnostic{Line: line, Message: fmt.Sprintf("expect %d fields but got %d", len(columns), len(fields))})
			return true
		}
		for i, field := range fields {
			columns[i] = append(columns[i], field)
		}
		return true
	})
	if err != nil {
		return nil, errors.Trace(err)
	}

	d := dataset.NewDataset(datasetName(h.path))
	d.Comment = "CSV"
	for i, values := range columns {
		col := dataset.Infer(values, dataset.InferOptions{})
		d.Add(fmt.Sprintf("%s%d", dataset.KeyPrefix(col), i), col)
	}
	if len(header) == len(d.Ordering) && len(header) > 0 {
		d.Names = header
	} else {
		d.Names = slices.Clone(d.Ordering)
	}
	return d, nil
}

func (h *CSV) Write(d *dataset.Dataset) (err error) {
	if d.Group == dataset.GroupTask {
		return errors.NotSupportedf("writing task to CSV")
	}
	for _, key := range d.Ordering {
		if col, ok := d.Columns[key]; ok && col.Kind() == dataset.KindSparse {
			return errors.NotSupportedf("sparse column %s in CSV", key)
		}
	}
	n, err := writable(d)
	if err != nil {
		return errors.Trace(err)
	}
	sep := base.Separator(",")
	if h.opts.Separator != nil {
		sep = *h.opts.Separator
	}

	out, err := base.CreateFile(h.path)
	if err != nil {
		return errors.Trace(err)
	}
	defer base.CloseFile(out, &err)
	w := bufio.NewWriter(out)
	if h.opts.HeaderFirst {
		names := d.AttributeNames()
		fields := make([]string, len(names))
		for i, name := range names {
			fields[i] = base.Escape(name, sep)
		}
		if _, err = w.WriteString(sep.Join(fields) + "\n"); err != nil {
			return errors.Trace(err)
		}
	}
	escape := func(v string) string {
		return base.Escape(v, sep)
	}
	for j := 0; j < n; j++ {
		if _, err = w.WriteString(sep.Join(textRow(d, j, escape)) + "\n"); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(w.Flush())
}

// textRow formats an example for text formats. NaN becomes "?" and strings
// pass through escape if given.
func textRow(d *dataset.Dataset, example int, escape func(string) string) []string {
	row := make([]string, 0, d.NumAttributes())
	for _, key := range d.Ordering {
		col := d.Columns[key]
		for a := 0; a < col.Attributes(); a++ {
			switch {
			case dataset.IsNaN(col, a, example):
				row = append(row, dataset.Missing)
			case col.Kind() == dataset.KindString && escape != nil:
				row = append(row, escape(col.Cell(a, example)))
			default:
				row = append(row, col.Cell(a, example))
			}
		}
	}
	return row
}
