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

package converter

import (
	"bufio"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gorse-io/ml2h5/base"
	"github.com/gorse-io/ml2h5/dataset"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

const (
	libsvmLabel = "label"
	libsvmData  = "data"
)

// LibSVM handles "label idx:val ..." files. Multiple labels separated by
// commas make a multi-label dataset.
type LibSVM struct {
	file
}

func newLibSVM(path string, opts Options) (Handler, error) {
	return &LibSVM{file{path: path, opts: opts}}, nil
}

// libsvmParser is the state of a single read.
type libsvmParser struct {
	multiLabel bool
	labels     []float64
	// indicator entries of labels once multiLabel is set
	labelIndices []int
	labelIndptr  []int
	maxLabel     int

	data     []float64
	indices  []int
	indptr   []int
	maxIndex int
}

func newLibSVMParser() *libsvmParser {
	return &libsvmParser{labelIndptr: []int{0}, indptr: []int{0}, maxLabel: -1, maxIndex: -1}
}

// switchMultiLabel converts labels read so far into indicator entries. The
// parser is unchanged if a label is not a class index.
func (p *libsvmParser) switchMultiLabel() error {
	for _, label := range p.labels {
		if !base.IsIntegral(label) || label < 0 {
			return errors.NotValidf("label %v in multi-label data", label)
		}
	}
	p.multiLabel = true
	for _, label := range p.labels {
		p.labelIndices = append(p.labelIndices, int(label))
		p.labelIndptr = append(p.labelIndptr, len(p.labelIndices))
		p.maxLabel = max(p.maxLabel, int(label))
	}
	p.labels = nil
	return nil
}

func parseClasses(labels []string) ([]int, error) {
	codes := make([]int, 0, len(labels))
	for _, label := range labels {
		if label == "" {
			continue
		}
		code, err := strconv.Atoi(strings.TrimPrefix(label, "+"))
		if err != nil || code < 0 {
			return nil, errors.NotValidf("label %s in multi-label data", label)
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// parseLine parses an example. Nothing is kept if an error is returned.
func (p *libsvmParser) parseLine(line string) error {
	fields := strings.Fields(line)
	labels := strings.Split(fields[0], ",")
	features := fields[1:]

	values := make([]float64, len(features))
	indices := make([]int, len(features))
	for i, feature := range features {
		index, value, ok := strings.Cut(feature, ":")
		if !ok {
			return errors.NotValidf("feature %s", feature)
		}
		var err error
		if indices[i], err = strconv.Atoi(index); err != nil || indices[i] < 1 {
			return errors.NotValidf("feature index %s", index)
		}
		indices[i]--
		if values[i], err = base.ParseFloat(value); err != nil {
			return errors.NotValidf("feature value %s", value)
		}
	}

	if p.multiLabel || len(labels) > 1 {
		codes, err := parseClasses(labels)
		if err != nil {
			return errors.Trace(err)
		}
		if !p.multiLabel {
			if err = p.switchMultiLabel(); err != nil {
				return errors.Trace(err)
			}
		}
		for _, code := range codes {
			p.labelIndices = append(p.labelIndices, code)
			p.maxLabel = max(p.maxLabel, code)
		}
		p.labelIndptr = append(p.labelIndptr, len(p.labelIndices))
	} else {
		label, err := base.ParseFloat(labels[0])
		if err != nil {
			return errors.NotValidf("label %s", labels[0])
		}
		p.labels = append(p.labels, label)
	}

	p.data = append(p.data, values...)
	p.indices = append(p.indices, indices...)
	p.indptr = append(p.indptr, len(p.indices))
	for _, index := range indices {
		p.maxIndex = max(p.maxIndex, index)
	}
	return nil
}

func (p *libsvmParser) labelColumn() (dataset.Column, error) {
	if p.multiLabel {
		ones := make([]float64, len(p.labelIndices))
		for i := range ones {
			ones[i] = 1
		}
		return dataset.NewSparse(p.maxLabel+1, len(p.labelIndptr)-1, ones, p.labelIndices, p.labelIndptr)
	}
	if lo.EveryBy(p.labels, func(v float64) bool {
		return base.IsIntegral(v) && v >= math.MinInt32 && v <= math.MaxInt32
	}) {
		return dataset.NewVector(lo.Map(p.labels, func(v float64, _ int) int32 { return int32(v) })), nil
	}
	return dataset.NewVector(p.labels), nil
}

func (h *LibSVM) Read() (*dataset.Dataset, error) {
	h.reset()
	r, err := base.OpenFile(h.path, h.opts.Progress)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer r.Close()

	p := newLibSVMParser()
	sc := newScanner(r)
	for lineNo := 1; sc.Scan(); lineNo++ {
		line, _, _ := strings.Cut(sc.Text(), "#")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := p.parseLine(line); err != nil {
			h.add(dataset.Diagnostic{Line: lineNo, Message: err.Error()})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Trace(err)
	}

	label, err := p.labelColumn()
	if err != nil {
		return nil, errors.Trace(err)
	}
	var data dataset.Column
	sparse, err := dataset.NewSparse(p.maxIndex+1, len(p.indptr)-1, p.data, p.indices, p.indptr)
	if err != nil {
		return nil, errors.Trace(err)
	}
	data = sparse
	if h.opts.Densify && sparse.Density() >= 0.5 {
		data = sparse.Dense()
	}

	d := dataset.NewDataset(datasetName(h.path))
	d.Comment = "LibSVM"
	d.Add(libsvmLabel, label)
	d.Add(libsvmData, data)
	d.Names = []string{libsvmLabel, libsvmData}
	return d, nil
}

// columns finds the label and data columns by key, or by name for datasets
// whose keys were rewritten by merging.
func (h *LibSVM) columns(d *dataset.Dataset) (label, data dataset.Column, err error) {
	keys := make(map[string]string, len(d.Ordering))
	for i, key := range d.Ordering {
		name := key
		if name != libsvmLabel && name != libsvmData && len(d.Names) == len(d.Ordering) {
			name = d.Names[i]
		}
		if name != libsvmLabel && name != libsvmData {
			return nil, nil, errors.NotSupportedf("column %s in LibSVM", key)
		}
		if _, exist := keys[name]; exist {
			return nil, nil, errors.NotValidf("duplicate %s column", name)
		}
		keys[name] = key
	}
	if _, ok := keys[libsvmData]; !ok {
		return nil, nil, errors.NotSupportedf("LibSVM without data column")
	}
	data = d.Columns[keys[libsvmData]]
	if data.Kind() == dataset.KindString {
		return nil, nil, errors.NotSupportedf("string data in LibSVM")
	}
	if key, ok := keys[libsvmLabel]; ok {
		label = d.Columns[key]
		if label.Kind() == dataset.KindString {
			return nil, nil, errors.NotSupportedf("string label in LibSVM")
		}
	}
	return label, data, nil
}

func formatLabel(label dataset.Column, example int) string {
	if label.Attributes() == 1 && label.Kind() != dataset.KindSparse {
		return label.Cell(0, example)
	}
	var codes []string
	if s, ok := label.(*dataset.Sparse); ok {
		for k := s.Indptr[example]; k < s.Indptr[example+1]; k++ {
			if s.Data[k] != 0 {
				codes = append(codes, strconv.Itoa(s.Indices[k]))
			}
		}
	} else {
		for a := 0; a < label.Attributes(); a++ {
			if label.Cell(a, example) != "0" {
				codes = append(codes, strconv.Itoa(a))
			}
		}
	}
	// a trailing comma keeps examples with less than two labels multi-label
	if len(codes) < 2 {
		return strings.Join(codes, ",") + ","
	}
	return strings.Join(codes, ",")
}

func formatFeatures(data dataset.Column, example int) []string {
	var features []string
	if s, ok := data.(*dataset.Sparse); ok {
		for k := s.Indptr[example]; k < s.Indptr[example+1]; k++ {
			features = append(features, fmt.Sprintf("%d:%s", s.Indices[k]+1, base.FormatFloat(s.Data[k])))
		}
		return features
	}
	for a := 0; a < data.Attributes(); a++ {
		if dataset.IsNaN(data, a, example) || data.Cell(a, example) == "0" {
			continue
		}
		features = append(features, fmt.Sprintf("%d:%s", a+1, data.Cell(a, example)))
	}
	return features
}

func (h *LibSVM) Write(d *dataset.Dataset) (err error) {
	if d.Group == dataset.GroupTask {
		return errors.NotSupportedf("writing task to LibSVM")
	}
	label, data, err := h.columns(d)
	if err != nil {
		return errors.Trace(err)
	}
	n, err := writable(d)
	if err != nil {
		return errors.Trace(err)
	}

	out, err := base.CreateFile(h.path)
	if err != nil {
		return errors.Trace(err)
	}
	defer base.CloseFile(out, &err)
	w := bufio.NewWriter(out)
	for j := 0; j < n; j++ {
		fields := formatFeatures(data, j)
		if label != nil {
			fields = append([]string{formatLabel(label, j)}, fields...)
		} else {
			fields = append([]string{"0"}, fields...)
		}
		if _, err = w.WriteString(strings.Join(fields, " ") + "\n"); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(w.Flush())
}
