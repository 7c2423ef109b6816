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
	"math"
	"slices"

	"github.com/gorse-io/ml2h5/base"
	"github.com/juju/errors"
)

// Kind of column storage.
type Kind string

const (
	KindInt32   Kind = "int32"
	KindInt64   Kind = "int64"
	KindFloat64 Kind = "float64"
	KindString  Kind = "string"
	KindSparse  Kind = "sparse"
)

// Column is one entry of a dataset. It is implemented by *Matrix[int32],
// *Matrix[int64], *Matrix[float64], *Strings and *Sparse only.
type Column interface {
	// Len returns the number of examples.
	Len() int
	// Attributes returns the number of attributes stored in the column.
	Attributes() int
	// Kind returns the storage kind.
	Kind() Kind
	// Cell formats a single value.
	Cell(attr, example int) string
	clone() Column
}

type Number interface {
	int32 | int64 | float64
}

// Matrix is a dense numeric block. Rows are attributes and columns are
// examples, stored in row-major order.
type Matrix[T Number] struct {
	Rows   int
	Cols   int
	Data   []T
	Vector bool
}

// NewVector creates a one-dimensional column.
func NewVector[T Number](values []T) *Matrix[T] {
	return &Matrix[T]{Rows: 1, Cols: len(values), Data: values, Vector: true}
}

// NewMatrix creates a zero block of rows attributes by cols examples.
func NewMatrix[T Number](rows, cols int) *Matrix[T] {
	return &Matrix[T]{Rows: rows, Cols: cols, Data: make([]T, rows*cols)}
}

func (m *Matrix[T]) Len() int {
	return m.Cols
}

func (m *Matrix[T]) Attributes() int {
	return m.Rows
}

func (m *Matrix[T]) Kind() Kind {
	var zero T
	switch any(zero).(type) {
	case int32:
		return KindInt32
	case int64:
		return KindInt64
	default:
		return KindFloat64
	}
}

func (m *Matrix[T]) At(attr, example int) T {
	return m.Data[attr*m.Cols+example]
}

func (m *Matrix[T]) Set(attr, example int, v T) {
	m.Data[attr*m.Cols+example] = v
}

// Row returns the values of an attribute. The slice aliases the block.
func (m *Matrix[T]) Row(attr int) []T {
	return m.Data[attr*m.Cols : (attr+1)*m.Cols]
}

func (m *Matrix[T]) Float(attr, example int) float64 {
	return float64(m.At(attr, example))
}

func (m *Matrix[T]) Cell(attr, example int) string {
	return base.FormatFloat(m.Float(attr, example))
}

func (m *Matrix[T]) clone() Column {
	return &Matrix[T]{Rows: m.Rows, Cols: m.Cols, Data: slices.Clone(m.Data), Vector: m.Vector}
}

// Strings is a vector of strings.
type Strings struct {
	Values []string
}

func NewStrings(values []string) *Strings {
	return &Strings{Values: values}
}

func (s *Strings) Len() int {
	return len(s.Values)
}

func (s *Strings) Attributes() int {
	return 1
}

func (s *Strings) Kind() Kind {
	return KindString
}

func (s *Strings) Cell(_, example int) string {
	return s.Values[example]
}

func (s *Strings) clone() Column {
	return &Strings{Values: slices.Clone(s.Values)}
}

// Sparse is a compressed sparse column matrix. Each example owns the segment
// Indptr[j]:Indptr[j+1] of Indices (attribute rows) and Data.
type Sparse struct {
	Rows    int
	Cols    int
	Data    []float64
	Indices []int
	Indptr  []int
}

// NewSparse checks the layout of a compressed sparse column matrix.
func NewSparse(rows, cols int, data []float64, indices, indptr []int) (*Sparse, error) {
	if len(indptr) != cols+1 {
		return nil, errors.NotValidf("indptr of length %d for %d columns", len(indptr), cols)
	}
	if len(data) != len(indices) {
		return nil, errors.NotValidf("%d values with %d indices", len(data), len(indices))
	}
	if indptr[0] != 0 || indptr[cols] != len(data) {
		return nil, errors.NotValidf("indptr bounds [%d, %d]", indptr[0], indptr[cols])
	}
	for j := 0; j < cols; j++ {
		if indptr[j] > indptr[j+1] {
			return nil, errors.NotValidf("decreasing indptr at %d", j)
		}
	}
	for _, i := range indices {
		if i < 0 || i >= rows {
			return nil, errors.NotValidf("index %d out of %d rows", i, rows)
		}
	}
	return &Sparse{Rows: rows, Cols: cols, Data: data, Indices: indices, Indptr: indptr}, nil
}

func (s *Sparse) Len() int {
	return s.Cols
}

func (s *Sparse) Attributes() int {
	return s.Rows
}

func (s *Sparse) Kind() Kind {
	return KindSparse
}

func (s *Sparse) NNZ() int {
	return len(s.Data)
}

func (s *Sparse) At(attr, example int) float64 {
	for k := s.Indptr[example]; k < s.Indptr[example+1]; k++ {
		if s.Indices[k] == attr {
			return s.Data[k]
		}
	}
	return 0
}

func (s *Sparse) Cell(attr, example int) string {
	return base.FormatFloat(s.At(attr, example))
}

// Dense expands the matrix into a dense block.
func (s *Sparse) Dense() *Matrix[float64] {
	m := NewMatrix[float64](s.Rows, s.Cols)
	for j := 0; j < s.Cols; j++ {
		for k := s.Indptr[j]; k < s.Indptr[j+1]; k++ {
			m.Set(s.Indices[k], j, m.At(s.Indices[k], j)+s.Data[k])
		}
	}
	return m
}

// Density returns the share of stored entries.
func (s *Sparse) Density() float64 {
	total := s.Rows * s.Cols
	if total == 0 {
		return 0
	}
	return float64(s.NNZ()) / float64(total)
}

func (s *Sparse) clone() Column {
	return &Sparse{
		Rows:    s.Rows,
		Cols:    s.Cols,
		Data:    slices.Clone(s.Data),
		Indices: slices.Clone(s.Indices),
		Indptr:  slices.Clone(s.Indptr),
	}
}

// Floats returns a numeric attribute as float64 values.
func Floats(col Column, attr int) ([]float64, bool) {
	switch c := col.(type) {
	case *Matrix[int32]:
		return toFloats(c.Row(attr)), true
	case *Matrix[int64]:
		return toFloats(c.Row(attr)), true
	case *Matrix[float64]:
		return slices.Clone(c.Row(attr)), true
	case *Sparse:
		values := make([]float64, c.Cols)
		for j := range values {
			values[j] = c.At(attr, j)
		}
		return values, true
	}
	return nil, false
}

func toFloats[T Number](values []T) []float64 {
	result := make([]float64, len(values))
	for i, v := range values {
		result[i] = float64(v)
	}
	return result
}

// IsNaN checks whether a cell holds a missing numeric value.
func IsNaN(col Column, attr, example int) bool {
	m, ok := col.(*Matrix[float64])
	return ok && math.IsNaN(m.At(attr, example))
}
