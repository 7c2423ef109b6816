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

// Levels maps the values of a nominal attribute to codes in order of first
// appearance and counts occurrences.
type Levels struct {
	si  map[string]int
	is  []string
	cnt []int
}

func NewLevels(declared ...string) *Levels {
	l := &Levels{map[string]int{}, []string{}, []int{}}
	for _, s := range declared {
		l.Declare(s)
	}
	return l
}

func (l *Levels) Count() int {
	return len(l.is)
}

// Id returns the code of s and counts an occurrence.
func (l *Levels) Id(s string) (y int) {
	if y, ok := l.si[s]; ok {
		l.cnt[y]++
		return y
	}

	y = len(l.is)
	l.si[s] = y
	l.is = append(l.is, s)
	l.cnt = append(l.cnt, 1)
	return
}

// Declare returns the code of s without counting it.
func (l *Levels) Declare(s string) (y int) {
	if y, ok := l.si[s]; ok {
		return y
	}

	y = len(l.is)
	l.si[s] = y
	l.is = append(l.is, s)
	l.cnt = append(l.cnt, 0)
	return
}

// Lookup returns the code of s if it is known.
func (l *Levels) Lookup(s string) (int, bool) {
	y, ok := l.si[s]
	return y, ok
}

func (l *Levels) String(id int) (s string, ok bool) {
	if id >= len(l.is) {
		return "", false
	}
	return l.is[id], true
}

func (l *Levels) Freq(id int) int {
	if id >= len(l.cnt) {
		return 0
	}
	return l.cnt[id]
}

// Values returns the levels in code order.
func (l *Levels) Values() []string {
	return l.is
}
