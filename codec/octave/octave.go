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

// Package octave reads and writes the Octave text format.
package octave

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/gorse-io/ml2h5/base"
	"github.com/gorse-io/ml2h5/dataset"
	"github.com/juju/errors"
)

// Variable types.
const (
	Scalar       = "scalar"
	Matrix       = "matrix"
	Int32Matrix  = "int32 matrix"
	Int64Matrix  = "int64 matrix"
	SparseMatrix = "sparse matrix"
	Cell         = "cell"
	String       = "string"
	SqString     = "sq_string"
)

// HeaderPrefix starts every Octave text file.
const HeaderPrefix = "# Created by "

const cellElement = "<cell-element>"

// Variable is a named Octave value. Matrices are stored in row-major order and
// sparse matrices in compressed sparse column form.
type Variable struct {
	Name    string
	Type    string
	Rows    int
	Cols    int
	Floats  []float64
	Ints    []int64
	Strings []string
	Indices []int
	Indptr  []int
}

type meta struct {
	name     string
	typ      string
	rows     int
	columns  int
	elements int
	length   int
	ndims    int
	nnz      int
}

// lexer hands out lines and remembers one line of lookahead.
type lexer struct {
	sc     *bufio.Scanner
	lineNo int
	peeked *string
}

func (l *lexer) next() (string, bool) {
	if l.peeked != nil {
		line := *l.peeked
		l.peeked = nil
		return line, true
	}
	if !l.sc.Scan() {
		return "", false
	}
	l.lineNo++
	return l.sc.Text(), true
}

func (l *lexer) unread(line string) {
	l.peeked = &line
}

type reader struct {
	lex         *lexer
	diagnostics []dataset.Diagnostic
}

func (r *reader) errorf(format string, args ...any) error {
	return errors.NotValidf("line %d: %s", r.lex.lineNo, fmt.Sprintf(format, args...))
}

// Read parses an Octave text file. The file must start with the Octave header.
// Variables of unsupported types are skipped and reported as diagnostics.
func Read(in io.Reader) ([]*Variable, []dataset.Diagnostic, error) {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 256*1024*1024)
	r := &reader{lex: &lexer{sc: sc}}
	header, ok := r.lex.next()
	if !ok || !strings.HasPrefix(header, HeaderPrefix) {
		if err := sc.Err(); err != nil {
			return nil, nil, errors.Trace(err)
		}
		return nil, nil, errors.NotValidf("missing Octave header")
	}
	var variables []*Variable
	for {
		m, ok, err := r.readMeta()
		if err != nil {
			return nil, r.diagnostics, errors.Trace(err)
		}
		if !ok {
			break
		}
		v, err := r.readValue(m)
		if err != nil {
			return nil, r.diagnostics, errors.Annotatef(err, "variable %s", m.name)
		}
		if v != nil && v.Name != "__nargin__" {
			variables = append(variables, v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, r.diagnostics, errors.Trace(err)
	}
	return variables, r.diagnostics, nil
}

// readMeta reads the header lines of the next variable.
func (r *reader) readMeta() (*meta, bool, error) {
	var line string
	var ok bool
	// skip blank lines and data of skipped variables
	for {
		if line, ok = r.lex.next(); !ok {
			return nil, false, nil
		}
		if strings.HasPrefix(line, "# name:") {
			break
		}
	}
	m := &meta{}
	for ok && strings.HasPrefix(line, "#") {
		key, value, found := strings.Cut(strings.TrimPrefix(line, "#"), ":")
		if !found {
			break
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "name" {
			if m.name != "" {
				break
			}
			m.name = value
		} else {
			var err error
			switch key {
			case "type":
				m.typ = value
			case "rows":
				m.rows, err = strconv.Atoi(value)
			case "columns":
				m.columns, err = strconv.Atoi(value)
			case "elements":
				m.elements, err = strconv.Atoi(value)
			case "length":
				m.length, err = strconv.Atoi(value)
			case "ndims":
				m.ndims, err = strconv.Atoi(value)
			case "nnz":
				m.nnz, err = strconv.Atoi(value)
			}
			if err != nil {
				return nil, false, r.errorf("header %s", line)
			}
			if key == "length" {
				// string data follows immediately
				return m, true, nil
			}
		}
		line, ok = r.lex.next()
	}
	if ok {
		r.lex.unread(line)
	}
	if m.typ == "" {
		return nil, false, r.errorf("variable %s without type", m.name)
	}
	return m, true, nil
}

func (r *reader) readValue(m *meta) (*Variable, error) {
	v := &Variable{Name: m.name, Type: m.typ}
	switch m.typ {
	case Scalar:
		v.Rows, v.Cols = 1, 1
		values, err := r.readFloatRows(1)
		if err != nil {
			return nil, errors.Trace(err)
		}
		if len(values) != 1 {
			return nil, r.errorf("scalar with %d values", len(values))
		}
		v.Floats = values
	case Matrix:
		v.Rows, v.Cols = m.rows, m.columns
		values, err := r.readFloatRows(m.rows)
		if err != nil {
			return nil, errors.Trace(err)
		}
		if len(values) != m.rows*m.columns {
			return nil, r.errorf("matrix of %dx%d with %d values", m.rows, m.columns, len(values))
		}
		v.Floats = values
	case Int32Matrix, Int64Matrix:
		if err := r.readIntMatrix(v); err != nil {
			return nil, errors.Trace(err)
		}
	case SparseMatrix:
		if err := r.readSparse(v, m); err != nil {
			return nil, errors.Trace(err)
		}
	case Cell:
		v.Rows, v.Cols = m.rows, m.columns
		for i := 0; i < m.rows*m.columns; i++ {
			em, ok, err := r.readMeta()
			if err != nil {
				return nil, errors.Trace(err)
			}
			if !ok {
				return nil, r.errorf("cell with %d of %d elements", i, m.rows*m.columns)
			}
			if em.typ != SqString && em.typ != String {
				return nil, errors.NotSupportedf("cell element of type %s", em.typ)
			}
			values, err := r.readStrings(em)
			if err != nil {
				return nil, errors.Trace(err)
			}
			v.Strings = append(v.Strings, strings.Join(values, "\n"))
		}
		v.Rows, v.Cols = 1, len(v.Strings)
	case String, SqString:
		values, err := r.readStrings(m)
		if err != nil {
			return nil, errors.Trace(err)
		}
		v.Strings = values
		v.Rows, v.Cols = 1, len(values)
	default:
		r.diagnostics = append(r.diagnostics, dataset.Diagnostic{
			Line:    r.lex.lineNo,
			Message: fmt.Sprintf("skip variable %s of unsupported type %s", m.name, m.typ),
		})
		return nil, nil
	}
	return v, nil
}

// readFloatRows reads up to n lines of numbers.
func (r *reader) readFloatRows(n int) ([]float64, error) {
	var values []float64
	for i := 0; i < n; i++ {
		line, ok := r.lex.next()
		if !ok {
			break
		}
		if strings.HasPrefix(line, "#") {
			r.lex.unread(line)
			break
		}
		for _, field := range strings.Fields(line) {
			v, err := base.ParseFloat(field)
			if err != nil {
				return nil, r.errorf("unexpected value %s", field)
			}
			values = append(values, v)
		}
	}
	return values, nil
}

func (r *reader) readIntMatrix(v *Variable) error {
	line, ok := r.lex.next()
	if !ok {
		return r.errorf("missing dimensions")
	}
	dims := strings.Fields(line)
	if len(dims) != 2 {
		return errors.NotSupportedf("integer matrix with %d dimensions", len(dims))
	}
	var err error
	if v.Rows, err = strconv.Atoi(dims[0]); err != nil {
		return r.errorf("dimensions %s", line)
	}
	if v.Cols, err = strconv.Atoi(dims[1]); err != nil {
		return r.errorf("dimensions %s", line)
	}
	colMajor := make([]int64, 0, v.Rows*v.Cols)
	for i := 0; i < v.Rows*v.Cols; i++ {
		line, ok := r.lex.next()
		if !ok {
			return r.errorf("integer matrix with %d of %d values", i, v.Rows*v.Cols)
		}
		n, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
		if err != nil {
			return r.errorf("unexpected value %s", line)
		}
		colMajor = append(colMajor, n)
	}
	v.Ints = make([]int64, len(colMajor))
	for j := 0; j < v.Cols; j++ {
		for i := 0; i < v.Rows; i++ {
			v.Ints[i*v.Cols+j] = colMajor[j*v.Rows+i]
		}
	}
	return nil
}

type triple struct {
	row, col int
	value    float64
}

func (r *reader) readSparse(v *Variable, m *meta) error {
	v.Rows, v.Cols = m.rows, m.columns
	triples := make([]triple, 0, m.nnz)
	for i := 0; i < m.nnz; i++ {
		line, ok := r.lex.next()
		if !ok {
			return r.errorf("sparse matrix with %d of %d values", i, m.nnz)
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return r.errorf("sparse entry %s", line)
		}
		row, err1 := strconv.Atoi(fields[0])
		col, err2 := strconv.Atoi(fields[1])
		value, err3 := base.ParseFloat(fields[2])
		if err1 != nil || err2 != nil || err3 != nil {
			return r.errorf("sparse entry %s", line)
		}
		if row < 1 || row > v.Rows || col < 1 || col > v.Cols {
			return r.errorf("sparse entry %s out of %dx%d", line, v.Rows, v.Cols)
		}
		triples = append(triples, triple{row: row - 1, col: col - 1, value: value})
	}
	sort.SliceStable(triples, func(i, j int) bool {
		if triples[i].col != triples[j].col {
			return triples[i].col < triples[j].col
		}
		return triples[i].row < triples[j].row
	})
	v.Indptr = make([]int, v.Cols+1)
	for _, t := range triples {
		v.Indptr[t.col+1]++
		v.Indices = append(v.Indices, t.row)
		v.Floats = append(v.Floats, t.value)
	}
	for j := 0; j < v.Cols; j++ {
		v.Indptr[j+1] += v.Indptr[j]
	}
	return nil
}

// readStrings reads the elements of a string variable. The meta of the first
// element has already consumed its length line.
func (r *reader) readStrings(m *meta) ([]string, error) {
	elements := max(m.elements, 1)
	values := make([]string, 0, elements)
	length := m.length
	for i := 0; i < elements; i++ {
		if i > 0 {
			line, ok := r.lex.next()
			if !ok {
				return nil, r.errorf("string with %d of %d elements", i, elements)
			}
			value, found := strings.CutPrefix(line, "# length:")
			if !found {
				return nil, r.errorf("missing length of string element")
			}
			var err error
			if length, err = strconv.Atoi(strings.TrimSpace(value)); err != nil {
				return nil, r.errorf("length %s", value)
			}
		}
		text, ok := r.lex.next()
		if !ok {
			return nil, r.errorf("missing string data")
		}
		for len(text) < length {
			line, ok := r.lex.next()
			if !ok {
				return nil, r.errorf("string shorter than %d bytes", length)
			}
			text += "\n" + line
		}
		values = append(values, text)
	}
	return values, nil
}

// Write serializes variables after the Octave header.
func Write(out io.Writer, creator string, variables []*Variable) error {
	w := bufio.NewWriter(out)
	fmt.Fprintf(w, "%s%s for Octave 3.0.1\n", HeaderPrefix, creator)
	for _, v := range variables {
		if err := writeVariable(w, v); err != nil {
			return errors.Annotatef(err, "variable %s", v.Name)
		}
	}
	return errors.Trace(w.Flush())
}

func writeVariable(w *bufio.Writer, v *Variable) error {
	fmt.Fprintf(w, "# name: %s\n# type: %s\n", v.Name, v.Type)
	switch v.Type {
	case Scalar:
		if len(v.Floats) != 1 {
			return errors.NotValidf("scalar with %d values", len(v.Floats))
		}
		fmt.Fprintf(w, "%s\n", base.FormatFloat(v.Floats[0]))
	case Matrix:
		if len(v.Floats) != v.Rows*v.Cols {
			return errors.NotValidf("matrix of %dx%d with %d values", v.Rows, v.Cols, len(v.Floats))
		}
		fmt.Fprintf(w, "# rows: %d\n# columns: %d\n", v.Rows, v.Cols)
		for i := 0; i < v.Rows; i++ {
			for j := 0; j < v.Cols; j++ {
				w.WriteString(" " + base.FormatFloat(v.Floats[i*v.Cols+j]))
			}
			w.WriteString("\n")
		}
	case Int32Matrix, Int64Matrix:
		if len(v.Ints) != v.Rows*v.Cols {
			return errors.NotValidf("matrix of %dx%d with %d values", v.Rows, v.Cols, len(v.Ints))
		}
		fmt.Fprintf(w, "# ndims: 2\n %d %d\n", v.Rows, v.Cols)
		for j := 0; j < v.Cols; j++ {
			for i := 0; i < v.Rows; i++ {
				fmt.Fprintf(w, " %d\n", v.Ints[i*v.Cols+j])
			}
		}
	case SparseMatrix:
		if len(v.Indptr) != v.Cols+1 || len(v.Indices) != len(v.Floats) {
			return errors.NotValidf("sparse matrix")
		}
		fmt.Fprintf(w, "# nnz: %d\n# rows: %d\n# columns: %d\n", len(v.Floats), v.Rows, v.Cols)
		for j := 0; j < v.Cols; j++ {
			for k := v.Indptr[j]; k < v.Indptr[j+1]; k++ {
				fmt.Fprintf(w, "%d %d %s\n", v.Indices[k]+1, j+1, base.FormatFloat(v.Floats[k]))
			}
		}
	case Cell:
		fmt.Fprintf(w, "# rows: 1\n# columns: %d\n", len(v.Strings))
		for _, s := range v.Strings {
			fmt.Fprintf(w, "# name: %s\n# type: %s\n# elements: 1\n# length: %d\n%s\n\n\n", cellElement, SqString, len(s), s)
		}
	case String, SqString:
		fmt.Fprintf(w, "# elements: %d\n", len(v.Strings))
		for _, s := range v.Strings {
			fmt.Fprintf(w, "# length: %d\n%s\n", len(s), s)
		}
	default:
		return errors.NotSupportedf("type %s", v.Type)
	}
	_, err := w.WriteString("\n\n")
	return errors.Trace(err)
}
