// Copyright 2022 gorse Project Authors
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

package format

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorse-io/ml2h5/base"
	"github.com/gorse-io/ml2h5/base/log"
	"github.com/gorse-io/ml2h5/codec/arff"
	"github.com/gorse-io/ml2h5/storage/container"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
)

const (
	DefaultMaxLines      = 100
	DefaultMaxLineLength = 1 << 20

	headerSize   = 8192
	octaveHeader = "# Created by "
)

var (
	containerType = filetype.NewType("ml2h5", "application/x-ml2h5")
	matlabType    = filetype.NewType("ml2h5-mat", "application/x-matlab-data")
)

func init() {
	filetype.AddMatcher(containerType, matchContainer)
	filetype.AddMatcher(matlabType, func(buf []byte) bool {
		return bytes.HasPrefix(buf, []byte("MATLAB"))
	})
}

func matchContainer(buf []byte) bool {
	if len(buf) < 20 {
		return false
	}
	magic := buf[16:20]
	return binary.LittleEndian.Uint32(magic) == container.Magic ||
		binary.BigEndian.Uint32(magic) == container.Magic
}

// Detector guesses formats of files.
type Detector struct {
	// MaxLines is the number of lines inspected to infer a separator.
	MaxLines int
	// MaxLineLength caps the bytes read per line.
	MaxLineLength int
}

var DefaultDetector = Detector{MaxLines: DefaultMaxLines, MaxLineLength: DefaultMaxLineLength}

// Detect the format of a file, trying its suffix first.
func Detect(path string) Format {
	return DefaultDetector.DetectWith(path, false)
}

// DetectWith detects the format of a file. The suffix is ignored if skipSuffix
// is set.
func DetectWith(path string, skipSuffix bool) Format {
	return DefaultDetector.DetectWith(path, skipSuffix)
}

// InferSeparator infers the field separator of a text file.
func InferSeparator(path string) (base.Separator, bool) {
	return DefaultDetector.InferSeparator(path)
}

func (d Detector) DetectWith(path string, skipSuffix bool) Format {
	if !skipSuffix {
		if f, ok := d.trySuffix(path); ok {
			return f
		}
	}
	header, err := readHeader(path)
	if err != nil {
		log.Logger().Debug("failed to read header", zap.String("path", path), zap.Error(err))
		return Unknown
	}
	switch {
	case filetype.IsType(header, containerType):
		return H5
	case filetype.IsType(header, matlabType):
		return Matlab
	case isRData(header):
		return RData
	case bytes.HasPrefix(header, []byte(octaveHeader)):
		return Octave
	case d.isLibSVM(path):
		return LibSVM
	}
	if sep, ok := d.InferSeparator(path); ok && sep == "," {
		return CSV
	}
	if arff.Probe(path) {
		return ARFF
	}
	if kind, err := filetype.Match(header); err == nil && filetype.IsArchive(header) {
		if f, err := Parse(kind.Extension); err == nil && f.IsArchive() {
			return f
		}
	}
	return Unknown
}

func (d Detector) trySuffix(path string) (Format, bool) {
	name := filepath.Base(path)
	parts := strings.Split(name, ".")
	if len(parts) < 2 {
		return Unknown, false
	}
	suffix := parts[len(parts)-1]
	switch suffix {
	case "svm", "libsvm", "light", "svmlight":
		return LibSVM, true
	case "arff":
		return ARFF, true
	case "h5", "hdf5":
		return H5, true
	case "csv", "tsv":
		return CSV, true
	case "data":
		return UCI, true
	case "zip":
		return Zip, true
	case "tgz":
		return Tgz, true
	case "gz", "bz2":
		if len(parts) > 2 && parts[len(parts)-2] == "tar" {
			return Format("tar." + suffix), true
		}
		return Format(suffix), true
	case "mat":
		return Matlab, true
	case "octave":
		return Octave, true
	case "m":
		header, err := readHeader(path)
		if err == nil && bytes.HasPrefix(header, []byte(octaveHeader)) {
			return Octave, true
		}
	case "xml":
		return XML, true
	case "RData", "rdata":
		return RData, true
	}
	return Unknown, false
}

func readHeader(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	buf := make([]byte, headerSize)
	n, err := io.ReadFull(file, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return buf[:n], nil
}

func isRData(header []byte) bool {
	if !filetype.IsType(header, types.Get("gz")) {
		return false
	}
	r, err := gzip.NewReader(bytes.NewReader(header))
	if err != nil {
		return false
	}
	magic := make([]byte, 4)
	if _, err = io.ReadFull(r, magic); err != nil {
		return false
	}
	return string(magic) == "RDX2" || string(magic) == "RDX3"
}

func (d Detector) isLibSVM(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()
	r := bufio.NewReader(file)
	for i := 0; i < d.MaxLines; i++ {
		line, _, err := readLine(r, d.MaxLineLength)
		if fields := strings.Fields(line); len(fields) > 0 {
			return len(fields) > 1 && strings.Count(fields[1], ":") == 1
		}
		if err != nil {
			break
		}
	}
	return false
}

// readLine reads a line of at most limit bytes. The flag tells whether the
// line ends with a newline.
func readLine(r *bufio.Reader, limit int) (string, bool, error) {
	var buf []byte
	for len(buf) < limit {
		c, err := r.ReadByte()
		if err != nil {
			return string(buf), false, err
		}
		buf = append(buf, c)
		if c == '\n' {
			return string(buf), true, nil
		}
	}
	return string(buf), false, nil
}

func (d Detector) InferSeparator(path string) (base.Separator, bool) {
	file, err := os.Open(path)
	if err != nil {
		return base.Whitespace, false
	}
	defer file.Close()
	r := bufio.NewReader(file)
	var (
		separator base.Separator
		found     bool
		minimum   = 1
	)
	for i := 0; i < d.MaxLines; i++ {
		line, newline, err := readLine(r, d.MaxLineLength)
		if line == "" {
			break
		}
		for _, sep := range base.AllowedSeparators {
			if n := len(sep.Split(line)); n > minimum {
				minimum = n
				separator = sep
				found = true
			}
		}
		// stop at the first decision or when lines are too long anyways
		if found || !newline || err != nil {
			break
		}
	}
	return separator, found
}
