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
	"strconv"
	"strings"
)

// Missing is the textual missing value.
const Missing = "?"

// InferOptions tunes type inference of a text column.
type InferOptions struct {
	// WideInts stores integers as int64 instead of int32.
	WideInts bool
	// MissingAsString stores a column of missing values only as strings.
	MissingAsString bool
}

// Infer picks the narrowest type of a column of text values: integers first,
// then doubles, then strings. A missing value forces doubles. String columns
// keep missing values literally.
func Infer(values []string, opts InferOptions) Column {
	allMissing := true
	hasMissing := false
	isInt, isFloat := true, true
	wide := opts.WideInts
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == Missing {
			hasMissing = true
			continue
		}
		allMissing = false
		if isInt {
			if _, err := strconv.ParseInt(v, 10, 32); err != nil {
				if _, err := strconv.ParseInt(v, 10, 64); err == nil {
					wide = true
				} else {
					isInt = false
				}
			}
		}
		if !isInt && isFloat {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				isFloat = false
				break
			}
		}
	}
	if allMissing && len(values) > 0 && opts.MissingAsString {
		return NewStrings(values)
	}
	switch {
	case isInt && !hasMissing && wide:
		return NewVector(parseInts[int64](values))
	case isInt && !hasMissing:
		return NewVector(parseInts[int32](values))
	case isInt || isFloat:
		return NewVector(parseFloats(values))
	}
	return NewStrings(values)
}

func parseInts[T int32 | int64](values []string) []T {
	result := make([]T, len(values))
	for i, v := range values {
		n, _ := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		result[i] = T(n)
	}
	return result
}

func parseFloats(values []string) []float64 {
	result := make([]float64, len(values))
	for i, v := range values {
		v = strings.TrimSpace(v)
		if v == Missing {
			result[i] = math.NaN()
			continue
		}
		result[i], _ = strconv.ParseFloat(v, 64)
	}
	return result
}

// KeyPrefix returns the key prefix conventionally used for a column kind.
func KeyPrefix(col Column) string {
	switch col.Kind() {
	case KindInt32, KindInt64:
		return "int"
	case KindFloat64:
		return "double"
	case KindSparse:
		return "sparse"
	}
	return "str"
}
