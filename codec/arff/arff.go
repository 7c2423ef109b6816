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

// Package arff reads and writes Attribute-Relation File Format files.
package arff

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/araddon/dateparse"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/ml2h5/base"
	"github.com/gorse-io/ml2h5/dataset"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

// Attribute types.
const (
	Numeric = "numeric"
	String  = "string"
	Date    = "date"
	Nominal = "nominal"
)

var attributePattern = regexp.MustCompile(`\{[^}]*\}|'[^']*'|"[^"]*"|[^\s{}'"]+`)

// Attribute declares a column.
type Attribute struct {
	Name   string
	Type   string
	Format string
	Values []string

	set mapset.Set[string]
}

// NewAttribute creates an attribute. Values are the closed set of nominal
// attributes.
func NewAttribute(name, typ string, values ...string) Attribute {
	a := Attribute{Name: name, Type: typ, Values: values}
	if typ == Nominal {
		a.set = mapset.NewThreadUnsafeSet(values...)
	}
	return a
}

// ParseTag creates an attribute from a type tag like "nominal:a,b" or
// "date:yyyy-MM-dd".
func ParseTag(name, tag string) (Attribute, error) {
	typ, data, _ := strings.Cut(tag, ":")
	switch typ {
	case Numeric, String:
		return NewAttribute(name, typ), nil
	case Date:
		a := NewAttribute(name, Date)
		a.Format = data
		return a, nil
	case Nominal:
		values, _ := dataset.NominalValues(tag)
		return NewAttribute(name, Nominal, values...), nil
	}
	return Attribute{}, errors.NotSupportedf("attribute type %q", tag)
}

// Tag returns the type tag of the attribute.
func (a Attribute) Tag() string {
	switch a.Type {
	case Date:
		if a.Format != "" {
			return Date + ":" + a.Format
		}
	case Nominal:
		return Nominal + ":" + strings.Join(a.Values, ",")
	}
	return a.Type
}

// Coerce checks a value against the attribute. Missing values are returned
// as "?".
func (a Attribute) Coerce(v string) (string, error) {
	switch a.Type {
	case Numeric:
		if v == "" || v == dataset.Missing {
			return dataset.Missing, nil
		}
		if _, err := base.ParseFloat(v); err != nil {
			return "", errors.NotValidf("non-numeric value %s for numeric attribute %s", v, a.Name)
		}
	case Nominal:
		if v != dataset.Missing && !a.set.Contains(v) {
			return "", errors.NotValidf("value %s for nominal attribute %s", v, a.Name)
		}
	}
	return v, nil
}

// File is the content of an ARFF file. Data holds rows of coerced values.
type File struct {
	Relation   string
	Comment    string
	Attributes []Attribute
	Data       [][]string
}

type parseState int

const (
	stateComment parseState = iota
	stateHeader
	stateData
)

type parser struct {
	file        *File
	state       parseState
	lineNo      int
	comment     []string
	diagnostics []dataset.Diagnostic
}

func (p *parser) warn(format string, args ...any) {
	p.diagnostics = append(p.diagnostics, dataset.Diagnostic{Line: p.lineNo, Message: fmt.Sprintf(format, args...)})
}

// Parse reads an ARFF file. Rows with a wrong number of values or values
// outside their attribute are dropped and reported as diagnostics.
func Parse(r io.Reader) (*File, []dataset.Diagnostic, error) {
	p := &parser{file: &File{}}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for sc.Scan() {
		p.lineNo++
		p.parseLine(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, p.diagnostics, errors.Trace(err)
	}
	if p.state == stateComment {
		p.file.Comment = strings.Join(p.comment, "\n")
	}
	if p.file.Relation == "" {
		return nil, p.diagnostics, errors.NotValidf("ARFF file without relation")
	}
	return p.file, p.diagnostics, nil
}

// Load parses an ARFF file on disk.
func Load(path string) (*File, []dataset.Diagnostic, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	defer f.Close()
	return Parse(f)
}

// Probe checks whether a file parses as ARFF.
func Probe(path string) bool {
	_, _, err := Load(path)
	return err == nil
}

func (p *parser) parseLine(l string) {
	switch p.state {
	case stateComment:
		if strings.HasPrefix(l, "%") {
			p.comment = append(p.comment, strings.TrimPrefix(l[1:], " "))
			return
		}
		p.file.Comment = strings.Join(p.comment, "\n")
		p.state = stateHeader
		p.parseLine(l)
	case stateHeader:
		ll := strings.ToLower(strings.TrimSpace(l))
		switch {
		case strings.HasPrefix(ll, "@relation"):
			if fields := strings.Fields(l); len(fields) > 1 {
				p.file.Relation = unquote(strings.Join(fields[1:], " "))
			}
		case strings.HasPrefix(ll, "@attribute"):
			p.parseAttribute(l)
		case strings.HasPrefix(ll, "@data"):
			p.state = stateData
		}
	case stateData:
		l = strings.TrimSpace(l)
		if len(l) > 0 && l[0] != '%' {
			p.parseData(l)
		}
	}
}

func (p *parser) parseAttribute(l string) {
	tokens := lo.Map(attributePattern.FindAllString(l, -1), func(s string, _ int) string {
		return strings.TrimSpace(s)
	})
	if len(tokens) < 3 {
		p.warn("incomplete attribute declaration")
		return
	}
	name := unquote(tokens[1])
	typ := tokens[2]
	switch strings.ToLower(typ) {
	case "real", "numeric", "integer":
		p.file.Attributes = append(p.file.Attributes, NewAttribute(name, Numeric))
	case "string":
		p.file.Attributes = append(p.file.Attributes, NewAttribute(name, String))
	case "date":
		a := NewAttribute(name, Date)
		if len(tokens) > 3 {
			a.Format = unquote(tokens[3])
		}
		p.file.Attributes = append(p.file.Attributes, a)
	default:
		if strings.HasPrefix(typ, "{") && strings.HasSuffix(typ, "}") {
			values := lo.Map(strings.Split(typ[1:len(typ)-1], ","), func(s string, _ int) string {
				return unquote(strings.TrimSpace(s))
			})
			p.file.Attributes = append(p.file.Attributes, NewAttribute(name, Nominal, values...))
		} else {
			p.warn("unsupported type %s for attribute %s", typ, name)
		}
	}
}

func (p *parser) parseData(line string) {
	values := splitRow(line, ',')
	if len(values) == 1 {
		values = splitRow(line, ' ')
	}
	if len(values) > 0 && values[len(values)-1] == "" {
		values = values[:len(values)-1]
	}
	if len(values) != len(p.file.Attributes) {
		p.warn("contains wrong number of values")
		return
	}
	row := make([]string, len(values))
	for i, v := range values {
		a := p.file.Attributes[i]
		coerced, err := a.Coerce(unquote(v))
		if err != nil {
			p.warn("%v", err)
			return
		}
		if a.Type == Date && coerced != dataset.Missing {
			if _, err := dateparse.ParseAny(coerced); err != nil {
				p.warn("unparsable date %s for attribute %s", coerced, a.Name)
			}
		}
		row[i] = coerced
	}
	p.file.Data = append(p.file.Data, row)
}

// splitRow splits a data line on sep outside of quotes. A space separator
// splits on runs of whitespace. Fields are trimmed and keep their quotes.
func splitRow(line string, sep rune) []string {
	var (
		fields  []string
		builder strings.Builder
		quote   rune
	)
	flush := func() {
		fields = append(fields, strings.TrimSpace(builder.String()))
		builder.Reset()
	}
	for _, c := range line {
		switch {
		case quote != 0:
			builder.WriteRune(c)
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
			builder.WriteRune(c)
		case sep == ' ' && unicode.IsSpace(c):
			if strings.TrimSpace(builder.String()) != "" {
				flush()
			}
		case c == sep:
			flush()
		default:
			builder.WriteRune(c)
		}
	}
	if sep != ' ' || strings.TrimSpace(builder.String()) != "" {
		flush()
	}
	return fields
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '\'' && s[len(s)-1] == '\'' || s[0] == '"' && s[len(s)-1] == '"') {
		return s[1 : len(s)-1]
	}
	return s
}

// Escape quotes a value holding whitespace, commas or quotes.
func Escape(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == '\'' || r == '"' || r == '%' || r == '{' || r == '}'
	}) {
		return s
	}
	if strings.ContainsRune(s, '\'') {
		return "\"" + s + "\""
	}
	return "'" + s + "'"
}

// Write serializes the file. Data rows hold formatted values; string and date
// values are quoted when necessary.
func (f *File) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if f.Comment != "" {
		for _, line := range strings.Split(f.Comment, "\n") {
			if _, err := fmt.Fprintf(bw, "%% %s\n", line); err != nil {
				return errors.Trace(err)
			}
		}
	}
	if _, err := fmt.Fprintf(bw, "@relation %s\n\n", Escape(f.Relation)); err != nil {
		return errors.Trace(err)
	}
	for _, a := range f.Attributes {
		var decl string
		switch a.Type {
		case Numeric, String:
			decl = a.Type
		case Date:
			decl = strings.TrimSpace("date " + lo.Ternary(a.Format == "", "", Escape(a.Format)))
		case Nominal:
			decl = "{" + strings.Join(lo.Map(a.Values, func(v string, _ int) string { return Escape(v) }), ",") + "}"
		default:
			return errors.NotSupportedf("type %s for writing", a.Type)
		}
		if _, err := fmt.Fprintf(bw, "@attribute %s %s\n", Escape(a.Name), decl); err != nil {
			return errors.Trace(err)
		}
	}
	if _, err := bw.WriteString("\n@data\n"); err != nil {
		return errors.Trace(err)
	}
	for _, row := range f.Data {
		if len(row) != len(f.Attributes) {
			return errors.NotValidf("row of %d values for %d attributes", len(row), len(f.Attributes))
		}
		values := make([]string, len(row))
		for i, v := range row {
			switch f.Attributes[i].Type {
			case String, Date, Nominal:
				if v != dataset.Missing {
					v = Escape(v)
				}
			}
			values[i] = v
		}
		if _, err := bw.WriteString(strings.Join(values, ",") + "\n"); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(bw.Flush())
}
