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
	"path/filepath"
	"strings"

	"github.com/gorse-io/ml2h5/base"
	"github.com/gorse-io/ml2h5/base/log"
	"github.com/gorse-io/ml2h5/dataset"
	"github.com/gorse-io/ml2h5/format"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// Handler reads and writes datasets in one file format.
type Handler interface {
	Read() (*dataset.Dataset, error)
	Write(d *dataset.Dataset) error
	// Diagnostics returns problems found by the last Read.
	Diagnostics() []dataset.Diagnostic
}

type Options struct {
	// Separator overrides the inferred separator of text formats.
	Separator *base.Separator
	// HeaderFirst tells that the first CSV line holds attribute names.
	HeaderFirst bool
	// Compression compresses entries of the canonical store and MAT-files.
	Compression bool
	// Merge merges consecutive numeric vectors when writing the canonical store.
	Merge bool
	// Densify turns dense enough LibSVM data into a dense block.
	Densify bool
	// Progress shows a progress bar while reading.
	Progress bool
}

type Option func(*Options)

func WithSeparator(sep base.Separator) Option {
	return func(o *Options) {
		o.Separator = &sep
	}
}

func WithHeaderFirst(headerFirst bool) Option {
	return func(o *Options) {
		o.HeaderFirst = headerFirst
	}
}

func WithCompression(compression bool) Option {
	return func(o *Options) {
		o.Compression = compression
	}
}

func WithMerge(merge bool) Option {
	return func(o *Options) {
		o.Merge = merge
	}
}

func WithDensify(densify bool) Option {
	return func(o *Options) {
		o.Densify = densify
	}
}

func WithProgress(progress bool) Option {
	return func(o *Options) {
		o.Progress = progress
	}
}

// NewOptions returns the default options (merge on) with opts applied.
func NewOptions(opts ...Option) Options {
	opt := Options{Merge: true}
	for _, o := range opts {
		o(&opt)
	}
	return opt
}

type constructor func(path string, opts Options) (Handler, error)

var handlers = map[format.Format]constructor{
	format.CSV:    newCSV,
	format.ARFF:   newARFF,
	format.LibSVM: newLibSVM,
	format.Matlab: newMAT,
	format.Octave: newOctave,
	format.UCI:    newUCI,
	format.RData:  newRData,
	format.H5:     newH5,
}

// newHandler creates the handler of a format.
func newHandler(f format.Format, path string, opts Options) (Handler, error) {
	create, ok := handlers[f]
	if !ok {
		return nil, errors.NotSupportedf("format %s", f)
	}
	return create(path, opts)
}

// file is embedded by handlers of a single file. It collects non-fatal
// problems of the last read.
type file struct {
	path  string
	opts  Options
	items []dataset.Diagnostic
}

func (f *file) Diagnostics() []dataset.Diagnostic {
	return f.items
}

func (f *file) reset() {
	f.items = nil
}

func (f *file) add(items ...dataset.Diagnostic) {
	for _, item := range items {
		log.FileLogger(f.path).Debug("skip invalid content", zap.Int("line", item.Line), zap.String("reason", item.Message))
	}
	f.items = append(f.items, items...)
}

// datasetName derives a dataset name from a file name.
func datasetName(path string) string {
	name, _, _ := strings.Cut(filepath.Base(path), ".")
	return name
}

// writable rejects datasets that can't be serialized row by row.
func writable(d *dataset.Dataset) (int, error) {
	if err := d.Validate(); err != nil {
		return 0, errors.Trace(err)
	}
	return d.NumExamples()
}
