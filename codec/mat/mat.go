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

// Package mat reads and writes MATLAB Level 5 MAT-files.
package mat

import (
	"slices"
	"strings"
	"unicode/utf16"

	"github.com/juju/errors"
)

// Class of a MATLAB array.
type Class uint8

const (
	ClassCell   Class = 1
	ClassStruct Class = 2
	ClassObject Class = 3
	ClassChar   Class = 4
	ClassSparse Class = 5
	ClassDouble Class = 6
	ClassSingle Class = 7
	ClassInt8   Class = 8
	ClassUint8  Class = 9
	ClassInt16  Class = 10
	ClassUint16 Class = 11
	ClassInt32  Class = 12
	ClassUint32 Class = 13
	ClassInt64  Class = 14
	ClassUint64 Class = 15
)

// data types of elements
const (
	miINT8       uint32 = 1
	miUINT8      uint32 = 2
	miINT16      uint32 = 3
	miUINT16     uint32 = 4
	miINT32      uint32 = 5
	miUINT32     uint32 = 6
	miSINGLE     uint32 = 7
	miDOUBLE     uint32 = 9
	miINT64      uint32 = 12
	miUINT64     uint32 = 13
	miMATRIX     uint32 = 14
	miCOMPRESSED uint32 = 15
	miUTF8       uint32 = 16
	miUTF16      uint32 = 17
	miUTF32      uint32 = 18
)

const (
	headerSize    = 128
	headerText    = 116
	version       = 0x0100
	flagComplex   = 0x0800
	flagLogical   = 0x0200
	flagClassMask = 0xff
)

// Array is a named MATLAB array. Values are stored in column-major order.
type Array struct {
	Name  string
	Class Class
	Dims  []int
	// Floats holds values of floating point classes and sparse matrices.
	Floats []float64
	// Ints holds values of integer classes.
	Ints []int64
	// Runes holds characters of char arrays.
	Runes []rune
	// Cells holds elements of cell arrays.
	Cells []*Array
	// Ir and Jc index the values of sparse matrices.
	Ir []int
	Jc []int
}

// NewDouble creates a double matrix from column-major values.
func NewDouble(name string, rows, cols int, values []float64) *Array {
	return &Array{Name: name, Class: ClassDouble, Dims: []int{rows, cols}, Floats: values}
}

// NewInt32 creates an int32 matrix from column-major values.
func NewInt32(name string, rows, cols int, values []int64) *Array {
	return &Array{Name: name, Class: ClassInt32, Dims: []int{rows, cols}, Ints: values}
}

// NewInt64 creates an int64 matrix from column-major values.
func NewInt64(name string, rows, cols int, values []int64) *Array {
	return &Array{Name: name, Class: ClassInt64, Dims: []int{rows, cols}, Ints: values}
}

// NewChar creates a 1-by-n char array.
func NewChar(name, text string) *Array {
	runes := []rune(text)
	return &Array{Name: name, Class: ClassChar, Dims: []int{1, len(utf16.Encode(runes))}, Runes: runes}
}

// NewCellOfStrings creates a 1-by-n cell array of char arrays.
func NewCellOfStrings(name string, values []string) *Array {
	cells := make([]*Array, len(values))
	for i, v := range values {
		cells[i] = NewChar("", v)
	}
	return &Array{Name: name, Class: ClassCell, Dims: []int{1, len(values)}, Cells: cells}
}

// NewSparse creates a sparse double matrix in compressed sparse column form.
func NewSparse(name string, rows, cols int, ir, jc []int, values []float64) *Array {
	return &Array{Name: name, Class: ClassSparse, Dims: []int{rows, cols}, Ir: ir, Jc: jc, Floats: values}
}

// Rows returns the first dimension.
func (a *Array) Rows() int {
	if len(a.Dims) == 0 {
		return 0
	}
	return a.Dims[0]
}

// Cols returns the product of the trailing dimensions.
func (a *Array) Cols() int {
	if len(a.Dims) == 0 {
		return 0
	}
	n := 1
	for _, d := range a.Dims[1:] {
		n *= d
	}
	return n
}

// Len returns the number of elements.
func (a *Array) Len() int {
	return a.Rows() * a.Cols()
}

// IsInteger checks whether the class stores integers.
func (a *Array) IsInteger() bool {
	switch a.Class {
	case ClassInt8, ClassUint8, ClassInt16, ClassUint16, ClassInt32, ClassUint32, ClassInt64, ClassUint64:
		return true
	}
	return false
}

// String returns the rows of a char array joined by newlines.
func (a *Array) String() string {
	if a.Class != ClassChar {
		return ""
	}
	rows, cols := a.Rows(), a.Cols()
	units := utf16.Encode(a.Runes)
	if rows <= 1 {
		return string(a.Runes)
	}
	lines := make([]string, rows)
	for i := 0; i < rows; i++ {
		line := make([]uint16, 0, cols)
		for j := 0; j < cols && j*rows+i < len(units); j++ {
			line = append(line, units[j*rows+i])
		}
		lines[i] = strings.TrimRight(string(utf16.Decode(line)), " ")
	}
	return strings.Join(lines, "\n")
}

// Strings returns the elements of a cell array of char arrays.
func (a *Array) Strings() ([]string, error) {
	if a.Class != ClassCell {
		return nil, errors.NotValidf("%s of class %d as cell", a.Name, a.Class)
	}
	values := make([]string, len(a.Cells))
	for i, cell := range a.Cells {
		switch {
		case cell.Class == ClassChar:
			values[i] = cell.String()
		case cell.Len() == 0:
			values[i] = ""
		default:
			return nil, errors.NotSupportedf("cell element of class %d in %s", cell.Class, a.Name)
		}
	}
	return values, nil
}

// Transpose converts row-major values of a rows-by-cols matrix to
// column-major order and back.
func Transpose[T any](values []T, rows, cols int) []T {
	if rows <= 1 || cols <= 1 {
		return slices.Clone(values)
	}
	result := make([]T, len(values))
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			result[j*rows+i] = values[i*cols+j]
		}
	}
	return result
}
