// Copyright 2020 gorse Project Authors
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

package dataset

import (
	"fmt"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/ml2h5/base"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

// Group tells what a dataset carries.
type Group int

const (
	// GroupData is a regular table of examples.
	GroupData Group = iota
	// GroupTask is a task payload of index vectors.
	GroupTask
)

func (g Group) String() string {
	if g == GroupTask {
		return "task"
	}
	return "data"
}

// Task payload keys.
const (
	TrainIndex      = "train_idx"
	TestIndex       = "test_idx"
	ValidationIndex = "validation_idx"
	InputVariables  = "input_variables"
	OutputVariables = "output_variables"
)

var TaskKeys = []string{TrainIndex, TestIndex, ValidationIndex, InputVariables, OutputVariables}

// Diagnostic is a non-fatal problem found while reading a file.
type Diagnostic struct {
	Line    int
	Message string
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("line %d: %s", d.Line, d.Message)
	}
	return d.Message
}

// Dataset is the in-memory model shared by every format.
type Dataset struct {
	Name     string
	Comment  string
	Group    Group
	Ordering []string
	Names    []string
	Types    []string
	Columns  map[string]Column
}

func NewDataset(name string) *Dataset {
	return &Dataset{
		Name:    name,
		Columns: make(map[string]Column),
	}
}

// Add appends a column at the end of the ordering.
func (d *Dataset) Add(key string, col Column) {
	if d.Columns == nil {
		d.Columns = make(map[string]Column)
	}
	if _, exist := d.Columns[key]; !exist {
		d.Ordering = append(d.Ordering, key)
	}
	d.Columns[key] = col
}

// Column returns the column of a key in the ordering.
func (d *Dataset) Column(key string) (Column, error) {
	col, ok := d.Columns[key]
	if !ok {
		return nil, errors.NotFoundf("column %s", key)
	}
	return col, nil
}

// NumExamples returns the number of examples shared by all columns.
func (d *Dataset) NumExamples() (int, error) {
	n := -1
	for _, key := range d.Ordering {
		col, err := d.Column(key)
		if err != nil {
			return 0, errors.Trace(err)
		}
		if d.Group == GroupTask {
			continue
		}
		if n < 0 {
			n = col.Len()
		} else if n != col.Len() {
			return 0, errors.NotValidf("column %s has %d examples but %d expected", key, col.Len(), n)
		}
	}
	return max(n, 0), nil
}

// NumAttributes returns the number of attributes of all columns.
func (d *Dataset) NumAttributes() int {
	return lo.SumBy(d.Ordering, func(key string) int {
		if col, ok := d.Columns[key]; ok {
			return col.Attributes()
		}
		return 0
	})
}

// Validate checks the ordering against the columns.
func (d *Dataset) Validate() error {
	seen := mapset.NewThreadUnsafeSet[string]()
	for _, key := range d.Ordering {
		if err := base.ValidateKey(key); err != nil {
			return errors.Trace(err)
		}
		if !seen.Add(key) {
			return errors.NotValidf("duplicate key %s", key)
		}
	}
	_, err := d.NumExamples()
	return errors.Trace(err)
}

// Clone returns a deep copy.
func (d *Dataset) Clone() *Dataset {
	columns := make(map[string]Column, len(d.Columns))
	for key, col := range d.Columns {
		columns[key] = col.clone()
	}
	return &Dataset{
		Name:     d.Name,
		Comment:  d.Comment,
		Group:    d.Group,
		Ordering: slices.Clone(d.Ordering),
		Names:    slices.Clone(d.Names),
		Types:    slices.Clone(d.Types),
		Columns:  columns,
	}
}

// AttributeNames returns one label per attribute. Names are used when they
// cover every attribute, otherwise labels derive from the keys.
func (d *Dataset) AttributeNames() []string {
	if len(d.Names) == d.NumAttributes() {
		return d.Names
	}
	names := make([]string, 0, d.NumAttributes())
	for _, key := range d.Ordering {
		col := d.Columns[key]
		if col == nil {
			continue
		}
		if col.Attributes() == 1 {
			names = append(names, key)
			continue
		}
		for i := 0; i < col.Attributes(); i++ {
			names = append(names, fmt.Sprintf("%s%d", key, i))
		}
	}
	return names
}

// Row formats the attributes of an example in ordering sequence.
func (d *Dataset) Row(example int) []string {
	row := make([]string, 0, d.NumAttributes())
	for _, key := range d.Ordering {
		col := d.Columns[key]
		for i := 0; i < col.Attributes(); i++ {
			row = append(row, col.Cell(i, example))
		}
	}
	return row
}

// Extract previews at most n examples, cutting every value to width runes.
func (d *Dataset) Extract(n, width int) ([][]string, error) {
	total, err := d.NumExamples()
	if err != nil {
		return nil, errors.Trace(err)
	}
	rows := make([][]string, 0, min(n, total))
	for j := 0; j < min(n, total); j++ {
		rows = append(rows, lo.Map(d.Row(j), func(v string, _ int) string {
			return base.Truncate(v, width)
		}))
	}
	return rows, nil
}

// TypeOf returns the declared type of an attribute or an empty string.
func (d *Dataset) TypeOf(attr int) string {
	if attr < len(d.Types) {
		return d.Types[attr]
	}
	return ""
}

// NominalValues parses a "nominal:v1,v2" type tag.
func NominalValues(tag string) ([]string, bool) {
	values, ok := strings.CutPrefix(tag, "nominal:")
	if !ok {
		return nil, false
	}
	if values == "" {
		return []string{}, true
	}
	return strings.Split(values, ","), true
}
