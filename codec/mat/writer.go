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
	"fmt"
	"io"
	"math"
	"time"
	"unicode/utf16"

	"github.com/juju/errors"
	"github.com/klauspost/compress/zlib"
)

var order = binary.LittleEndian

// Writer writes variables of a MAT-file.
type Writer struct {
	w        io.Writer
	compress bool
}

// NewWriter creates a writer. Variables are stored as compressed elements if
// compress is set.
func NewWriter(w io.Writer, compress bool) *Writer {
	return &Writer{w: w, compress: compress}
}

// WriteHeader writes the 128 bytes file header.
func (w *Writer) WriteHeader(creator string) error {
	text := fmt.Sprintf("MATLAB 5.0 MAT-file, Platform: %s, Created on: %s",
		creator, time.Now().UTC().Format("Mon Jan 2 15:04:05 2006"))
	header := bytes.Repeat([]byte{' '}, headerSize)
	copy(header[:headerText], text)
	// no subsystem data
	for i := headerText; i < headerText+8; i++ {
		header[i] = 0
	}
	order.PutUint16(header[124:126], version)
	copy(header[126:128], "IM")
	_, err := w.w.Write(header)
	return errors.Trace(err)
}

// Write writes a variable.
func (w *Writer) Write(a *Array) error {
	var buf bytes.Buffer
	if err := writeMatrix(&buf, a); err != nil {
		return errors.Trace(err)
	}
	if !w.compress {
		_, err := w.w.Write(buf.Bytes())
		return errors.Trace(err)
	}
	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(buf.Bytes()); err != nil {
		return errors.Trace(err)
	}
	if err := zw.Close(); err != nil {
		return errors.Trace(err)
	}
	tag := make([]byte, 8)
	order.PutUint32(tag[:4], miCOMPRESSED)
	order.PutUint32(tag[4:], uint32(compressed.Len()))
	if _, err := w.w.Write(tag); err != nil {
		return errors.Trace(err)
	}
	_, err := w.w.Write(compressed.Bytes())
	return errors.Trace(err)
}

// writeElement writes a tagged element padded to 8 bytes.
func writeElement(buf *bytes.Buffer, typ uint32, data []byte) {
	if n := len(data); n > 0 && n <= 4 {
		tag := make([]byte, 4)
		order.PutUint32(tag, uint32(n)<<16|typ)
		buf.Write(tag)
		buf.Write(data)
		buf.Write(make([]byte, 4-n))
		return
	}
	tag := make([]byte, 8)
	order.PutUint32(tag[:4], typ)
	order.PutUint32(tag[4:], uint32(len(data)))
	buf.Write(tag)
	buf.Write(data)
	buf.Write(make([]byte, pad8(len(data))-len(data)))
}

func writeMatrix(buf *bytes.Buffer, a *Array) error {
	var body bytes.Buffer
	// array flags
	flags := make([]byte, 8)
	order.PutUint32(flags[:4], uint32(a.Class))
	if a.Class == ClassSparse {
		order.PutUint32(flags[4:], uint32(max(len(a.Floats), 1)))
	}
	writeElement(&body, miUINT32, flags)
	// dimensions
	dims := make([]int64, len(a.Dims))
	for i, d := range a.Dims {
		dims[i] = int64(d)
	}
	writeElement(&body, miINT32, encodeInts(miINT32, dims))
	// name
	writeElement(&body, miINT8, []byte(a.Name))

	switch a.Class {
	case ClassDouble:
		if len(a.Floats) != a.Len() {
			return errors.NotValidf("%s with %d values for dimensions %v", a.Name, len(a.Floats), a.Dims)
		}
		writeElement(&body, miDOUBLE, encodeFloats(a.Floats))
	case ClassInt32, ClassInt64:
		if len(a.Ints) != a.Len() {
			return errors.NotValidf("%s with %d values for dimensions %v", a.Name, len(a.Ints), a.Dims)
		}
		typ := miINT32
		if a.Class == ClassInt64 {
			typ = miINT64
		}
		writeElement(&body, typ, encodeInts(typ, a.Ints))
	case ClassChar:
		units := utf16.Encode(a.Runes)
		data := make([]byte, len(units)*2)
		for i, u := range units {
			order.PutUint16(data[i*2:], u)
		}
		writeElement(&body, miUINT16, data)
	case ClassCell:
		if len(a.Cells) != a.Len() {
			return errors.NotValidf("%s with %d cells for dimensions %v", a.Name, len(a.Cells), a.Dims)
		}
		for _, cell := range a.Cells {
			if err := writeMatrix(&body, cell); err != nil {
				return errors.Trace(err)
			}
		}
	case ClassSparse:
		if len(a.Jc) != a.Cols()+1 || len(a.Ir) != len(a.Floats) {
			return errors.NotValidf("sparse %s", a.Name)
		}
		ir := make([]int64, len(a.Ir))
		for i, v := range a.Ir {
			ir[i] = int64(v)
		}
		jc := make([]int64, len(a.Jc))
		for i, v := range a.Jc {
			jc[i] = int64(v)
		}
		writeElement(&body, miINT32, encodeInts(miINT32, ir))
		writeElement(&body, miINT32, encodeInts(miINT32, jc))
		writeElement(&body, miDOUBLE, encodeFloats(a.Floats))
	default:
		return errors.NotSupportedf("writing class %d", a.Class)
	}
	writeElement(buf, miMATRIX, body.Bytes())
	return nil
}

func encodeFloats(values []float64) []byte {
	data := make([]byte, len(values)*8)
	for i, v := range values {
		order.PutUint64(data[i*8:], math.Float64bits(v))
	}
	return data
}

func encodeInts(typ uint32, values []int64) []byte {
	if typ == miINT64 {
		data := make([]byte, len(values)*8)
		for i, v := range values {
			order.PutUint64(data[i*8:], uint64(v))
		}
		return data
	}
	data := make([]byte, len(values)*4)
	for i, v := range values {
		order.PutUint32(data[i*4:], uint32(int32(v)))
	}
	return data
}
