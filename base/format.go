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
	"math"
	"strconv"
	"strings"

	"github.com/juju/errors"
)

// ValidateKey checks a column key.
func ValidateKey(text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.NotValidf("empty key")
	}
	return nil
}

// Split a single line on sep, honoring double quotes.
func Split(text string, sep Separator) []string {
	fields := make([]string, 0)
	builder := strings.Builder{}
	quoted := false
	pending := false
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if !quoted && isSeparator(runes[i], sep) {
			if sep == Whitespace && !pending {
				continue
			}
			// end of field
			fields = append(fields, builder.String())
			builder.Reset()
			pending = false
		} else if runes[i] == '"' {
			pending = true
			if quoted {
				if i+1 >= len(runes) || runes[i+1] != '"' {
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
			builder.WriteRune(runes[i])
		}
	}
	// end of line
	if sep != Whitespace || pending {
		fields = append(fields, builder.String())
	}
	return fields
}

// FormatFloat prints the shortest representation that parses back to v.
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ParseFloat parses a number. "?" and "nan" parse to NaN.
func ParseFloat(text string) (float64, error) {
	switch strings.ToLower(text) {
	case "?", "nan", "na":
		return math.NaN(), nil
	case "inf", "+inf":
		return math.Inf(1), nil
	case "-inf":
		return math.Inf(-1), nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, errors.Trace(err)
	}
	return v, nil
}

// IsIntegral checks whether v has no fractional part.
func IsIntegral(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v == math.Trunc(v)
}

// Truncate cuts text to at most n runes.
func Truncate(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
