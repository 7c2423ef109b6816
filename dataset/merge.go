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
	"fmt"
	"strings"

	"github.com/juju/errors"
)

type mergeKind int

const (
	mergeNone mergeKind = iota
	mergeInt
	mergeDouble
)

type block struct {
	key     string
	kind    mergeKind
	members []Column
}

// Merge packs runs of consecutive integer vectors into int{n} blocks and runs of
// consecutive double vectors into double{n} blocks. Other columns are kept and
// keys with "/" are renamed with "+".
func Merge(d *Dataset) (*Dataset, error) {
	if d.Group == GroupTask {
		return d.Clone(), nil
	}
	if _, err := d.NumExamples(); err != nil {
		return nil, errors.Trace(err)
	}
	var (
		blocks    []*block
		current   *block
		intIdx    int
		doubleIdx int
	)
	for _, key := range d.Ordering {
		col := d.Columns[key]
		kind := mergeNone
		switch c := col.(type) {
		case *Matrix[int32]:
			if c.Vector || c.Rows == 1 {
				kind = mergeInt
			}
		case *Matrix[int64]:
			if c.Vector || c.Rows == 1 {
				kind = mergeInt
			}
		case *Matrix[float64]:
			if c.Vector || c.Rows == 1 {
				kind = mergeDouble
			}
		}
		if kind != mergeNone && current != nil && current.kind == kind {
			current.members = append(current.members, col)
			continue
		}
		switch kind {
		case mergeInt:
			current = &block{key: fmt.Sprintf("int%d", intIdx), kind: kind, members: []Column{col}}
			intIdx++
		case mergeDouble:
			current = &block{key: fmt.Sprintf("double%d", doubleIdx), kind: kind, members: []Column{col}}
			doubleIdx++
		default:
			current = nil
			blocks = append(blocks, &block{key: strings.ReplaceAll(key, "/", "+"), members: []Column{col}})
			continue
		}
		blocks = append(blocks, current)
	}

	merged := &Dataset{
		Name:    d.Name,
		Comment: d.Comment,
		Group:   d.Group,
		Names:   d.Names,
		Types:   d.Types,
		Columns: make(map[string]Column, len(blocks)),
	}
	for _, b := range blocks {
		if _, exist := merged.Columns[b.key]; exist {
			return nil, errors.AlreadyExistsf("merged key %s", b.key)
		}
		merged.Ordering = append(merged.Ordering, b.key)
		switch b.kind {
		case mergeInt:
			merged.Columns[b.key] = stackInts(b.members)
		case mergeDouble:
			merged.Columns[b.key] = stack[float64](b.members)
		default:
			merged.Columns[b.key] = b.members[0]
		}
	}
	return merged, nil
}

func stackInts(members []Column) Column {
	for _, col := range members {
		if col.Kind() == KindInt64 {
			return stack[int64](members)
		}
	}
	return stack[int32](members)
}

func stack[T Number](members []Column) Column {
	if len(members) == 1 {
		if m, ok := members[0].(*Matrix[T]); ok {
			return &Matrix[T]{Rows: 1, Cols: m.Cols, Data: m.Data}
		}
	}
	cols := members[0].Len()
	m := NewMatrix[T](len(members), cols)
	for i, col := range members {
		switch c := col.(type) {
		case *Matrix[int32]:
			copyRow(m.Row(i), c.Data)
		case *Matrix[int64]:
			copyRow(m.Row(i), c.Data)
		case *Matrix[float64]:
			copyRow(m.Row(i), c.Data)
		}
	}
	return m
}

func copyRow[T, S Number](dst []T, src []S) {
	for i, v := range src {
		dst[i] = T(v)
	}
}

// Unmerge splits every dense block of several attributes into vectors. If
// there is one name per attribute, single attribute columns take their names.
func Unmerge(d *Dataset) *Dataset {
	if d.Group == GroupTask {
		return d.Clone()
	}
	result := &Dataset{
		Name:    d.Name,
		Comment: d.Comment,
		Group:   d.Group,
		Names:   d.Names,
		Types:   d.Types,
		Columns: make(map[string]Column),
	}
	useNames := len(d.Names) == d.NumAttributes()
	attr := 0
	for _, key := range d.Ordering {
		col := d.Columns[key]
		var parts []Column
		switch c := col.(type) {
		case *Matrix[int32]:
			parts = split(c)
		case *Matrix[int64]:
			parts = split(c)
		case *Matrix[float64]:
			parts = split(c)
		}
		if parts == nil {
			name := key
			if useNames && col.Attributes() == 1 {
				name = d.Names[attr]
			}
			result.Add(uniqueKey(result, name), col)
			attr += col.Attributes()
			continue
		}
		for i, part := range parts {
			name := fmt.Sprintf("%s%d", key, i)
			if len(parts) == 1 {
				name = key
			}
			if useNames {
				name = d.Names[attr]
			}
			result.Add(uniqueKey(result, name), part)
			attr++
		}
	}
	return result
}

func split[T Number](m *Matrix[T]) []Column {
	if m.Rows == 1 {
		return []Column{NewVector(m.Data)}
	}
	parts := make([]Column, m.Rows)
	for i := range parts {
		parts[i] = NewVector(m.Row(i))
	}
	return parts
}

func uniqueKey(d *Dataset, key string) string {
	if _, exist := d.Columns[key]; !exist {
		return key
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d", key, i)
		if _, exist := d.Columns[candidate]; !exist {
			return candidate
		}
	}
}
