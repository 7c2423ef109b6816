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
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gorse-io/ml2h5/base"
	"github.com/gorse-io/ml2h5/dataset"
	"github.com/juju/errors"
)

// UCI reads flat files of the UCI machine learning repository. The
// description in a companion .names or .info file becomes the comment.
type UCI struct {
	file
}

func newUCI(path string, opts Options) (Handler, error) {
	return &UCI{file{path: path, opts: opts}}, nil
}

// description reads the companion file of a data file.
func (h *UCI) description() string {
	dir, name := filepath.Split(h.path)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if stem == "" || stem == name {
		if i := strings.LastIndex(name, "-"); i > 0 {
			stem = name[:i]
		}
	}
	for _, ext := range []string{".names", ".info"} {
		if data, err := os.ReadFile(filepath.Join(dir, stem+ext)); err == nil {
			return string(data)
		}
	}
	return ""
}

func ignoreLine(line string) bool {
	return line == "" || strings.HasPrefix(line, ";;;")
}

func (h *UCI) Read() (*dataset.Dataset, error) {
	h.reset()
	r, err := base.OpenFile(h.path, h.opts.Progress)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer r.Close()

	sep := base.Whitespace
	if h.opts.Separator != nil {
		sep = *h.opts.Separator
	}
	var columns [][]string
	sc := newScanner(r)
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := strings.TrimSpace(sc.Text())
		if ignoreLine(line) {
			continue
		}
		items := base.Split(line, sep)
		if columns == nil {
			columns = make([][]string, len(items))
		}
		if len(items) != len(columns) {
			h.add(dataset.Diagnostic{Line: lineNo, Message: fmt.Sprintf("expect %d items but got %d", len(columns), len(items))})
			continue
		}
		for i, item := range items {
			columns[i] = append(columns[i], strings.TrimSpace(item))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Trace(err)
	}

	d := dataset.NewDataset(datasetName(h.path))
	d.Comment = h.description()
	for i, values := range columns {
		col := dataset.Infer(values, dataset.InferOptions{WideInts: true, MissingAsString: true})
		d.Add(fmt.Sprintf("%s%d", dataset.KeyPrefix(col), i), col)
	}
	d.Names = slices.Clone(d.Ordering)
	return d, nil
}

func (h *UCI) Write(*dataset.Dataset) error {
	return errors.NotSupportedf("writing UCI")
}
