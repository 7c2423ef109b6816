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

package rdata

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"unicode/utf8"

	"github.com/juju/errors"
	"github.com/klauspost/compress/gzip"
)

// Write saves variables as a gzip compressed workspace, the way save() does.
func Write(w io.Writer, variables []Variable) error {
	zw := gzip.NewWriter(w)
	if err := Serialize(zw, variables); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(zw.Close())
}

// Serialize writes an uncompressed workspace.
func Serialize(w io.Writer, variables []Variable) error {
	e := &encoder{w: bufio.NewWriter(w), symbols: make(map[string]int)}
	e.writeString(Magic + "X\n")
	e.writeInt(formatVersion)
	e.writeInt(writerVersion)
	e.writeInt(readerVersion)
	for _, v := range variables {
		if v.Value == nil {
			return errors.NotValidf("variable %s without value", v.Name)
		}
		e.writeInt(ListSxp | hasTag)
		e.writeSymbol(v.Name)
		e.writeObject(v.Value)
	}
	e.writeInt(NilValueSxp)
	if e.err != nil {
		return errors.Trace(e.err)
	}
	return errors.Trace(e.w.Flush())
}

type encoder struct {
	w       *bufio.Writer
	buf     [8]byte
	symbols map[string]int
	err     error
}

func (e *encoder) write(b []byte) {
	if e.err == nil {
		_, e.err = e.w.Write(b)
	}
}

func (e *encoder) writeString(s string) {
	if e.err == nil {
		_, e.err = e.w.WriteString(s)
	}
}

func (e *encoder) writeInt(v int32) {
	binary.BigEndian.PutUint32(e.buf[:4], uint32(v))
	e.write(e.buf[:4])
}

func (e *encoder) writeDouble(v float64) {
	if math.IsNaN(v) {
		v = naReal
	}
	binary.BigEndian.PutUint64(e.buf[:], math.Float64bits(v))
	e.write(e.buf[:])
}

// writeSymbol writes a symbol or a reference to a symbol written before.
func (e *encoder) writeSymbol(name string) {
	if ref, ok := e.symbols[name]; ok {
		e.writeInt(int32(ref<<8 | RefSxp))
		return
	}
	e.symbols[name] = len(e.symbols) + 1
	e.writeInt(SymSxp)
	e.writeChars(name)
}

func (e *encoder) writeChars(s string) {
	level := int32(asciiMask)
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			level = utf8Mask
			break
		}
	}
	e.writeInt(CharSxp | level<<12)
	e.writeInt(int32(len(s)))
	e.writeString(s)
}

func flags(typ int32, obj Object) int32 {
	f := typ
	if len(obj.attributes()) > 0 {
		f |= hasAttr
	}
	for _, attr := range obj.attributes() {
		if attr.Name == "class" {
			f |= isObject
		}
	}
	return f
}

func (e *encoder) writeObject(obj Object) {
	switch o := obj.(type) {
	case *Doubles:
		e.writeInt(flags(RealSxp, o))
		e.writeInt(int32(len(o.Values)))
		for _, v := range o.Values {
			e.writeDouble(v)
		}
	case *Integers:
		e.writeInt(flags(IntSxp, o))
		e.writeInt(int32(len(o.Values)))
		for _, v := range o.Values {
			e.writeInt(v)
		}
	case *Strings:
		e.writeInt(flags(StrSxp, o))
		e.writeInt(int32(len(o.Values)))
		for _, v := range o.Values {
			e.writeChars(v)
		}
	case *List:
		e.writeInt(flags(VecSxp, o))
		e.writeInt(int32(len(o.Items)))
		for _, item := range o.Items {
			e.writeObject(item)
		}
	default:
		if e.err == nil {
			e.err = errors.NotSupportedf("object %T", obj)
		}
		return
	}
	e.writeAttributes(obj.attributes())
}

func (e *encoder) writeAttributes(attributes []Attribute) {
	if len(attributes) == 0 {
		return
	}
	for _, attr := range attributes {
		e.writeInt(ListSxp | hasTag)
		e.writeSymbol(attr.Name)
		e.writeObject(attr.Value)
	}
	e.writeInt(NilValueSxp)
}
