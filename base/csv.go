// Copyright 2021 gorse Project Authors
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

package base

import (
	"bufio"
	"strings"
	"unicode"

	"github.com/juju/errors"
)

// Separator separates fields of a line. The zero value splits on runs of whitespace.
type Separator string

const Whitespace Separator = ""

// AllowedSeparators are the separators accepted for text formats, in the order
// they are tried during inference.
var AllowedSeparators = []Separator{Whitespace, ",", " ", "\t"}

// ParseSeparator validates a separator given by users. "whitespace" and "none"
// select Whitespace, "tab" and "\t" select a tab.
func ParseSeparator(text string) (Separator, error) {
	switch text {
	case "whitespace", "none":
		return Whitespace, nil
	case "tab", `\t`:
		return "\t", nil
	case "space":
		return " ", nil
	}
	for _, sep := range AllowedSeparators {
		if sep != Whitespace && string(sep) == text {
			return sep, nil
		}
	}
	return Whitespace, errors.NotValidf("separator %q", text)
}

func (s Separator) String() string {
	switch s {
	case Whitespace:
		return "whitespace"
	case "\t":
		return "tab"
	}
	return string(s)
}

// Join joins fields with the separator. Whitespace joins with a single space.
func (s Separator) Join(fields []string) string {
	if s == Whitespace {
		return strings.Join(fields, " ")
	}
	return strings.Join(fields, string(s))
}

// Split splits a line without quote handling.
func (s Separator) Split(line string) []string {
	if s == Whitespace {
		return strings.Fields(line)
	}
	return strings.Split(line, string(s))
}

// Escape text for csv.
func Escape(text string, sep Separator) string {
	// check if need escape
	needQuote := strings.ContainsAny(text, "\"\n\r")
	if sep == Whitespace {
		needQuote = needQuote || strings.IndexFunc(text, unicode.IsSpace) >= 0
	} else {
		needQuote = needQuote || strings.Contains(text, string(sep))
	}
	if !needQuote {
		return text
	}
	// start to encode
	builder := strings.Builder{}
	builder.WriteRune('"')
	for _, c := range text {
		if c == '"' {
			builder.WriteString("\"\"")
		} else {
			builder.WriteRune(c)
		}
	}
	builder.WriteRune('"')
	return builder.String()
}

// ReadLines parse fields of each line for csv file. Lines are trimmed and blank
// lines are skipped. The handler receives the number of the first physical line
// of a record (starting from 1).
func ReadLines(sc *bufio.Scanner, sep Separator, handler func(int, []string) bool) error {
	lineCount := 0               // line number of current position
	startLine := 0               // line number where current record starts
	fields := make([]string, 0)  // fields for current line
	builder := strings.Builder{} // string builder for current field
	quoted := false              // whether current position in quote
	pending := false             // whether current field has content
	for sc.Scan() {
		lineCount++
		// read line
		lineStr := sc.Text()
		if quoted {
			builder.WriteString("\n")
		} else {
			lineStr = strings.TrimSpace(lineStr)
			if lineStr == "" {
				continue
			}
			startLine = lineCount
		}
		line := []rune(lineStr)
		// parse line
		for i := 0; i < len(line); i++ {
			if !quoted && isSeparator(line[i], sep) {
				if sep == Whitespace {
					// runs of blanks form one separator
					if pending {
						fields = append(fields, builder.String())
						builder.Reset()
						pending = false
					}
					continue
				}
				// end of field
				fields = append(fields, builder.String())
				builder.Reset()
			} else if line[i] == '"' {
				pending = true
				if quoted {
					if i+1 >= len(line) || line[i+1] != '"' {
						// end of quoted
						quoted = false
					} else {
						i++
						builder.WriteRune('"')
					}
				} else {
					// start of quoted
					quoted = true
				}
			} else {
				pending = true
				builder.WriteRune(line[i])
			}
		}
		// end of line
		if !quoted {
			if sep != Whitespace || pending {
				fields = append(fields, builder.String())
			}
			builder.Reset()
			pending = false
			if !handler(startLine, fields) {
				return nil
			}
			fields = []string{}
		}
	}
	return errors.Trace(sc.Err())
}

func isSeparator(c rune, sep Separator) bool {
	if sep == Whitespace {
		return unicode.IsSpace(c)
	}
	return string(c) == string(sep)
}
