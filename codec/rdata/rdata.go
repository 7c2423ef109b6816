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

// Package rdata writes R workspaces in the XDR serialization format.
package rdata

import "math"

// SEXP types.
const (
	NilSxp  = 0
	SymSxp  = 1
	ListSxp = 2
	CharSxp = 9
	LglSxp  = 10
	IntSxp  = 13
	RealSxp = 14
	StrSxp  = 16
	VecSxp  = 19

	NilValueSxp = 254
	RefSxp      = 255
)

const (
	isObject = 1 << 8
	hasAttr  = 1 << 9
	hasTag   = 1 << 10

	// gp levels of CHARSXP
	utf8Mask  = 1 << 3
	asciiMask = 1 << 6
)

const (
	Magic         = "RDX2\n"
	formatVersion = 2
	writerVersion = 3<<16 | 5<<8 | 0
	readerVersion = 2<<16 | 3<<8 | 0
)

// NA_real_ is a NaN with payload 1954.
var naReal = math.Float64frombits(0x7FF00000000007A2)

// NAInteger is NA_integer_.
const NAInteger = math.MinInt32

// Object is a serializable R object.
type Object interface {
	attributes() []Attribute
}

// Attribute is a tagged attribute of an object.
type Attribute struct {
	Name  string
	Value Object
}

type attrs []Attribute

func (a attrs) attributes() []Attribute {
	return a
}

// Doubles is a numeric vector. NaN is stored as NA.
type Doubles struct {
	Values []float64
	attrs
}

// Integers is an integer vector.
type Integers struct {
	Values []int32
	attrs
}

// Strings is a character vector.
type Strings struct {
	Values []string
	attrs
}

// List is a generic vector.
type List struct {
	Items []Object
	attrs
}

func NewDoubles(values []float64) *Doubles {
	return &Doubles{Values: values}
}

func NewIntegers(values []int32) *Integers {
	return &Integers{Values: values}
}

func NewStrings(values ...string) *Strings {
	return &Strings{Values: values}
}

// SetAttr sets an attribute, replacing an existing one.
func (a *attrs) SetAttr(name string, value Object) {
	for i := range *a {
		if (*a)[i].Name == name {
			(*a)[i].Value = value
			return
		}
	}
	*a = append(*a, Attribute{Name: name, Value: value})
}

// Attr returns an attribute or nil.
func (a *attrs) Attr(name string) Object {
	for _, attr := range *a {
		if attr.Name == name {
			return attr.Value
		}
	}
	return nil
}

// Factor creates a factor from 1-based codes into levels. NAInteger marks
// missing values.
func Factor(codes []int32, levels []string) *Integers {
	factor := NewIntegers(codes)
	factor.SetAttr("levels", NewStrings(levels...))
	factor.SetAttr("class", NewStrings("factor"))
	return factor
}

// Matrix creates a numeric matrix from rows x cols values in row-major order.
func Matrix(rows, cols int, values []float64) *Doubles {
	data := make([]float64, len(values))
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			data[j*rows+i] = values[i*cols+j]
		}
	}
	m := NewDoubles(data)
	m.SetAttr("dim", NewIntegers([]int32{int32(rows), int32(cols)}))
	return m
}

// DataFrame creates a data.frame of columns with n rows.
func DataFrame(names []string, columns []Object, n int) *List {
	frame := &List{Items: columns}
	frame.SetAttr("names", NewStrings(names...))
	frame.SetAttr("row.names", NewIntegers([]int32{NAInteger, int32(-n)}))
	frame.SetAttr("class", NewStrings("data.frame"))
	return frame
}

// Variable is a named object of a workspace.
type Variable struct {
	Name  string
	Value Object
}
