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
	"os"
	"time"

	"github.com/gorse-io/ml2h5/base"
	"github.com/gorse-io/ml2h5/base/log"
	"github.com/gorse-io/ml2h5/dataset"
	"github.com/gorse-io/ml2h5/format"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

const (
	// NumExtract is the number of examples shown by Describe.
	NumExtract = 10
	// LenExtract is the number of characters kept per value by Describe.
	LenExtract = 20
)

// Converter converts one file into another. A Converter is used for a single
// conversion and is not safe for concurrent use.
type Converter struct {
	PathIn    string
	PathOut   string
	FormatIn  format.Format
	FormatOut format.Format

	opts Options
	in   Handler
	out  Handler
}

// New creates a converter, detecting both formats from the files.
func New(pathIn, pathOut string, opts Options) (*Converter, error) {
	return NewWithFormats(pathIn, pathOut, format.Unknown, format.Unknown, opts)
}

// NewWithFormats creates a converter. Formats left empty or unknown are
// detected.
func NewWithFormats(pathIn, pathOut string, formatIn, formatOut format.Format, opts Options) (*Converter, error) {
	if formatIn == "" || formatIn == format.Unknown {
		formatIn = format.Detect(pathIn)
	}
	if formatOut == "" || formatOut == format.Unknown {
		formatOut = format.Detect(pathOut)
	}
	c := &Converter{
		PathIn:    pathIn,
		PathOut:   pathOut,
		FormatIn:  formatIn,
		FormatOut: formatOut,
		opts:      opts,
	}
	if formatIn == format.H5 && formatOut == format.XML {
		c.in = &H5{file{path: pathIn, opts: opts}}
		return c, nil
	}
	if !canRead(formatIn) || !canWrite(formatOut) {
		return nil, errors.NotSupportedf("conversion from %s to %s", formatIn, formatOut)
	}
	var err error
	if c.in, err = newHandler(formatIn, pathIn, opts); err != nil {
		return nil, normalize(err, "create %s handler for %s", formatIn, pathIn)
	}
	if c.out, err = newHandler(formatOut, pathOut, opts); err != nil {
		return nil, normalize(err, "create %s handler for %s", formatOut, pathOut)
	}
	return c, nil
}

func canRead(f format.Format) bool {
	_, ok := handlers[f]
	return ok && f != format.RData
}

func canWrite(f format.Format) bool {
	_, ok := handlers[f]
	return ok && f != format.UCI
}

// Run converts the input file. An existing output file is deleted first if
// removeOut is set. An output file the conversion has started to write never
// survives a failure.
func (c *Converter) Run(removeOut bool) (err error) {
	logger := log.Logger().With(
		zap.String("in", c.PathIn), zap.Stringer("format_in", c.FormatIn),
		zap.String("out", c.PathOut), zap.Stringer("format_out", c.FormatOut))
	start := time.Now()
	if removeOut {
		base.RemoveFile(c.PathOut)
	}
	before, _ := os.Stat(c.PathOut)
	defer func() {
		if err != nil {
			if touched(before, c.PathOut) {
				base.RemoveFile(c.PathOut)
			}
			logger.Error("failed to convert", zap.Error(err))
		}
	}()

	if c.out == nil {
		err = c.dumpXML()
		return normalize(err, "dump %s as XML", c.PathIn)
	}
	d, err := c.in.Read()
	if err != nil {
		return normalize(err, "read %s", c.PathIn)
	}
	if diagnostics := c.in.Diagnostics(); len(diagnostics) > 0 {
		logger.Warn("skipped invalid content", zap.Int("count", len(diagnostics)))
	}
	if err = c.out.Write(d); err != nil {
		return normalize(err, "write %s", c.PathOut)
	}
	logger.Info("converted", zap.Int("attributes", d.NumAttributes()), zap.Duration("elapsed", time.Since(start)))
	return nil
}

// touched checks whether the file at path was created or rewritten since
// before was taken.
func touched(before os.FileInfo, path string) bool {
	after, err := os.Stat(path)
	if err != nil {
		return false
	}
	if before == nil {
		return true
	}
	return !os.SameFile(before, after) || before.Size() != after.Size() || !before.ModTime().Equal(after.ModTime())
}

func (c *Converter) dumpXML() (err error) {
	out, err := base.CreateFile(c.PathOut)
	if err != nil {
		return errors.Trace(err)
	}
	defer base.CloseFile(out, &err)
	return c.in.(*H5).DumpXML(out)
}

// Verify reads back both files and compares them attribute by attribute. A
// mismatch is reported with false and a *ConversionError.
func (c *Converter) Verify() (bool, error) {
	if c.FormatIn == format.UCI || c.FormatOut == format.UCI {
		return false, errors.NotSupportedf("verifying UCI")
	}
	if c.out == nil {
		return false, errors.NotSupportedf("verifying %s", c.FormatOut)
	}
	if c.FormatOut == format.RData {
		return false, errors.NotSupportedf("verifying %s", c.FormatOut)
	}
	a, err := c.in.Read()
	if err != nil {
		return false, normalize(err, "read %s", c.PathIn)
	}
	b, err := c.out.Read()
	if err != nil {
		return false, normalize(err, "read %s", c.PathOut)
	}
	if ok, reason := dataset.Equal(dataset.Unmerge(a), dataset.Unmerge(b)); !ok {
		return false, newConversionError(nil, "%s differs from %s: %s", c.PathOut, c.PathIn, reason)
	}
	return true, nil
}

// Diagnostics returns problems found while reading the input file.
func (c *Converter) Diagnostics() []dataset.Diagnostic {
	return c.in.Diagnostics()
}

// Convert converts a file in one call, verifying the result if asked to.
func Convert(pathIn, pathOut string, formatIn, formatOut format.Format, verify bool, opts Options) error {
	c, err := NewWithFormats(pathIn, pathOut, formatIn, formatOut, opts)
	if err != nil {
		return err
	}
	if err = c.Run(true); err != nil {
		return err
	}
	if verify {
		if _, err = c.Verify(); err != nil {
			return err
		}
	}
	return nil
}

// CanConvert checks whether the canonical store at path can be written as
// format f. Any canonical store converts to MATLAB and Octave, LibSVM needs
// label and data columns and the row formats need dense data.
func CanConvert(f format.Format, path string) bool {
	switch f {
	case format.Matlab, format.Octave, format.H5:
		return true
	case format.LibSVM, format.CSV, format.ARFF, format.RData:
	default:
		return false
	}
	d, err := (&H5{file{path: path}}).Read()
	if err != nil || d.Group == dataset.GroupTask {
		return false
	}
	if f == format.LibSVM {
		_, _, err = (&LibSVM{}).columns(d)
		return err == nil
	}
	for _, col := range d.Columns {
		if col.Kind() == dataset.KindSparse {
			return false
		}
	}
	return true
}

// Description summarizes a dataset file.
type Description struct {
	Format     format.Format
	Name       string
	Comment    string
	Group      dataset.Group
	Instances  int
	Attributes int
	Names      []string
	Extract    [][]string
}

// Describe reads a dataset file and summarizes it. Instances is -1 if the
// columns have different lengths.
func Describe(path string, opts Options) (*Description, error) {
	f := format.Detect(path)
	if !canRead(f) {
		return nil, errors.NotSupportedf("reading %s", f)
	}
	h, err := newHandler(f, path, opts)
	if err != nil {
		return nil, normalize(err, "create %s handler for %s", f, path)
	}
	d, err := h.Read()
	if err != nil {
		return nil, normalize(err, "read %s", path)
	}
	desc := &Description{
		Format:     f,
		Name:       d.Name,
		Comment:    d.Comment,
		Group:      d.Group,
		Instances:  -1,
		Attributes: d.NumAttributes(),
		Names:      d.AttributeNames(),
	}
	if n, err := d.NumExamples(); err == nil {
		desc.Instances = n
		if desc.Extract, err = d.Extract(NumExtract, LenExtract); err != nil {
			return nil, normalize(err, "extract %s", path)
		}
	}
	return desc, nil
}
