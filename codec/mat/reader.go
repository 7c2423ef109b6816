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

package mat

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/juju/errors"
	"github.com/klauspost/compress/zlib"
)

type reader struct {
	order binary.ByteOrder
}

// Read parses a MAT-file and returns its header text and variables.
func Read(r io.Reader) (string, []*Array, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", nil, errors.Trace(err)
	}
	if len(data) < headerSize {
		return "", nil, errors.NotValidf("MAT-file shorter than its header")
	}
	header := strings.TrimRight(string(data[:headerText]), " \x00")
	if !strings.HasPrefix(header, "MATLAB") {
		return "", nil, errors.NotValidf("MAT-file header %q", header)
	}
	p := &reader{}
	switch string(data[126:128]) {
	case "IM":
		p.order = binary.LittleEndian
	case "MI":
		p.order = binary.BigEndian
	default:
		return "", nil, errors.NotValidf("MAT-file endian indicator %q", data[126:128])
	}
	if v := p.order.Uint16(data[124:126]); v != version {
		return "", nil, errors.NotSupportedf("MAT-file version %#x", v)
	}
	arrays, err := p.readElements(data[headerSize:])
	if err != nil {
		return "", nil, errors.Trace(err)
	}
	return header, arrays, nil
}

func (p *reader) readElements(data []byte) ([]*Array, error) {
	var arrays []*Array
	for len(data) > 0 {
		typ, payload, rest, err := p.next(data)
		if err != nil {
			return nil, errors.Trace(err)
		}
		data = rest
		switch typ {
		case miCOMPRESSED:
			zr, err := zlib.NewReader(bytes.NewReader(payload))
			if err != nil {
				return nil, errors.Annotatef(err, "decompress element")
			}
			inflated, err := io.ReadAll(zr)
			_ = zr.Close()
			if err != nil {
				return nil, errors.Annotatef(err, "decompress element")
			}
			inner, err := p.readElements(inflated)
			if err != nil {
				return nil, errors.Trace(err)
			}
			arrays = append(arrays, inner...)
		case miMATRIX:
			a, err := p.readMatrix(payload)
			if err != nil {
				return nil, errors.Trace(err)
			}
			arrays = append(arrays, a)
		default:
			return nil, errors.NotSupportedf("top level element of type %d", typ)
		}
	}
	return arrays, nil
}

// next splits the first element from data.
func (p *reader) next(data []byte) (typ uint32, payload, rest []byte, err error) {
	if len(data) < 8 {
		return 0, nil, nil, errors.NotValidf("truncated element")
	}
	word := p.order.Uint32(data[:4])
	if word>>16 != 0 {
		// small data element
		n := int(word >> 16)
		if n > 4 {
			return 0, nil, nil, errors.NotValidf("small element of %d bytes", n)
		}
		return word & 0xffff, data[4 : 4+n], data[8:], nil
	}
	n := int(p.order.Uint32(data[4:8]))
	if 8+n > len(data) {
		return 0, nil, nil, errors.NotValidf("element of %d bytes exceeds file", n)
	}
	end := 8 + n
	if word != miCOMPRESSED {
		end = min(8+pad8(n), len(data))
	}
	return word, data[8 : 8+n], data[end:], nil
}

func pad8(n int) int {
	return (n + 7) / 8 * 8
}

func (p *reader) readMatrix(data []byte) (*Array, error) {
	if len(data) == 0 {
		return &Array{Class: ClassDouble, Dims: []int{0, 0}}, nil
	}
	// array flags
	typ, flags, data, err := p.next(data)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if typ != miUINT32 || len(flags) < 8 {
		return nil, errors.NotValidf("array flags")
	}
	word := p.order.Uint32(flags[:4])
	a := &Array{Class: Class(word & flagClassMask)}
	if word&flagComplex != 0 {
		return nil, errors.NotSupportedf("complex arrays")
	}
	// dimensions
	typ, dims, data, err := p.next(data)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if typ != miINT32 {
		return nil, errors.NotValidf("dimensions of type %d", typ)
	}
	_, ints, err := p.decode(typ, dims)
	if err != nil {
		return nil, errors.Trace(err)
	}
	for _, d := range ints {
		a.Dims = append(a.Dims, int(d))
	}
	// name
	typ, name, data, err := p.next(data)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if typ != miINT8 && typ != miUINT8 {
		return nil, errors.NotValidf("name of type %d", typ)
	}
	a.Name = string(name)

	switch a.Class {
	case ClassCell:
		for i := 0; i < a.Len(); i++ {
			typ, payload, rest, err := p.next(data)
			if err != nil {
				return nil, errors.Annotatef(err, "cell %s", a.Name)
			}
			if typ != miMATRIX {
				return nil, errors.NotValidf("cell element of type %d", typ)
			}
			cell, err := p.readMatrix(payload)
			if err != nil {
				return nil, errors.Trace(err)
			}
			a.Cells = append(a.Cells, cell)
			data = rest
		}
	case ClassChar:
		if a.Len() == 0 {
			return a, nil
		}
		typ, payload, _, err := p.next(data)
		if err != nil {
			return nil, errors.Trace(err)
		}
		if a.Runes, err = p.decodeChars(typ, payload); err != nil {
			return nil, errors.Annotatef(err, "char %s", a.Name)
		}
	case ClassSparse:
		var values [][]byte
		var types []uint32
		for i := 0; i < 3 && len(data) > 0; i++ {
			typ, payload, rest, err := p.next(data)
			if err != nil {
				return nil, errors.Trace(err)
			}
			types = append(types, typ)
			values = append(values, payload)
			data = rest
		}
		if len(values) < 3 {
			return nil, errors.NotValidf("sparse %s", a.Name)
		}
		_, ir, err := p.decode(types[0], values[0])
		if err != nil {
			return nil, errors.Trace(err)
		}
		_, jc, err := p.decode(types[1], values[1])
		if err != nil {
			return nil, errors.Trace(err)
		}
		if len(jc) != a.Cols()+1 {
			return nil, errors.NotValidf("sparse %s with %d column pointers", a.Name, len(jc))
		}
		nnz := int(jc[len(jc)-1])
		pr, err := p.decodeFloats(types[2], values[2])
		if err != nil {
			return nil, errors.Trace(err)
		}
		if nnz > len(ir) || nnz > len(pr) {
			return nil, errors.NotValidf("sparse %s with %d values", a.Name, nnz)
		}
		a.Ir = toInts(ir[:nnz])
		a.Jc = toInts(jc)
		a.Floats = pr[:nnz]
	case ClassDouble, ClassSingle, ClassInt8, ClassUint8, ClassInt16, ClassUint16,
		ClassInt32, ClassUint32, ClassInt64, ClassUint64:
		if a.Len() == 0 {
			return a, nil
		}
		typ, payload, _, err := p.next(data)
		if err != nil {
			return nil, errors.Trace(err)
		}
		floats, ints, err := p.decode(typ, payload)
		if err != nil {
			return nil, errors.Trace(err)
		}
		if a.IsInteger() {
			if ints == nil {
				ints = make([]int64, len(floats))
				for i, v := range floats {
					ints[i] = int64(v)
				}
			}
			a.Ints = ints
		} else {
			if floats == nil {
				floats = make([]float64, len(ints))
				for i, v := range ints {
					floats[i] = float64(v)
				}
			}
			a.Floats = floats
		}
		if n := max(len(a.Ints), len(a.Floats)); n != a.Len() {
			return nil, errors.NotValidf("%s with %d values for dimensions %v", a.Name, n, a.Dims)
		}
	default:
		return nil, errors.NotSupportedf("%s of class %d", a.Name, a.Class)
	}
	return a, nil
}

func toInts(values []int64) []int {
	result := make([]int, len(values))
	for i, v := range values {
		result[i] = int(v)
	}
	return result
}

func (p *reader) decodeFloats(typ uint32, data []byte) ([]float64, error) {
	floats, ints, err := p.decode(typ, data)
	if err != nil {
		return nil, err
	}
	if floats != nil {
		return floats, nil
	}
	floats = make([]float64, len(ints))
	for i, v := range ints {
		floats[i] = float64(v)
	}
	return floats, nil
}

// decode numeric data. Floating point types fill the first result and integer
// types fill the second.
func (p *reader) decode(typ uint32, data []byte) ([]float64, []int64, error) {
	size := map[uint32]int{
		miINT8: 1, miUINT8: 1, miINT16: 2, miUINT16: 2, miINT32: 4, miUINT32: 4,
		miSINGLE: 4, miDOUBLE: 8, miINT64: 8, miUINT64: 8,
	}[typ]
	if size == 0 {
		return nil, nil, errors.NotSupportedf("numeric data of type %d", typ)
	}
	n := len(data) / size
	switch typ {
	case miDOUBLE:
		values := make([]float64, n)
		for i := range values {
			values[i] = math.Float64frombits(p.order.Uint64(data[i*8:]))
		}
		return values, nil, nil
	case miSINGLE:
		values := make([]float64, n)
		for i := range values {
			values[i] = float64(math.Float32frombits(p.order.Uint32(data[i*4:])))
		}
		return values, nil, nil
	}
	values := make([]int64, n)
	for i := range values {
		switch typ {
		case miINT8:
			values[i] = int64(int8(data[i]))
		case miUINT8:
			values[i] = int64(data[i])
		case miINT16:
			values[i] = int64(int16(p.order.Uint16(data[i*2:])))
		case miUINT16:
			values[i] = int64(p.order.Uint16(data[i*2:]))
		case miINT32:
			values[i] = int64(int32(p.order.Uint32(data[i*4:])))
		case miUINT32:
			values[i] = int64(p.order.Uint32(data[i*4:]))
		case miINT64, miUINT64:
			values[i] = int64(p.order.Uint64(data[i*8:]))
		}
	}
	return nil, values, nil
}

func (p *reader) decodeChars(typ uint32, data []byte) ([]rune, error) {
	switch typ {
	case miUTF8:
		if !utf8.Valid(data) {
			return nil, errors.NotValidf("utf-8 text")
		}
		return []rune(string(data)), nil
	case miUINT8, miINT8:
		runes := make([]rune, len(data))
		for i, b := range data {
			runes[i] = rune(b)
		}
		return runes, nil
	case miUINT16, miUTF16:
		units := make([]uint16, len(data)/2)
		for i := range units {
			units[i] = p.order.Uint16(data[i*2:])
		}
		return utf16.Decode(units), nil
	case miUTF32, miINT32, miUINT32:
		runes := make([]rune, len(data)/4)
		for i := range runes {
			runes[i] = rune(p.order.Uint32(data[i*4:]))
		}
		return runes, nil
	}
	return nil, errors.NotSupportedf("char data of type %d", typ)
}
