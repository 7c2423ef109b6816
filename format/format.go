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
	"path/filepath"
	"strings"

	"github.com/juju/errors"
)

// Format of a dataset file.
type Format string

const (
	CSV     Format = "csv"
	ARFF    Format = "arff"
	H5      Format = "h5"
	LibSVM  Format = "libsvm"
	Matlab  Format = "matlab"
	Octave  Format = "octave"
	UCI     Format = "uci"
	RData   Format = "rdata"
	XML     Format = "xml"
	Zip     Format = "zip"
	Tgz     Format = "tgz"
	TarGz   Format = "tar.gz"
	TarBz2  Format = "tar.bz2"
	Gz      Format = "gz"
	Bz2     Format = "bz2"
	Unknown Format = "unknown"
)

var formats = []Format{CSV, ARFF, H5, LibSVM, Matlab, Octave, UCI, RData, XML, Zip, Tgz, TarGz, TarBz2, Gz, Bz2}

var aliases = map[string]Format{
	"tsv":      CSV,
	"hdf5":     H5,
	"svm":      LibSVM,
	"light":    LibSVM,
	"svmlight": LibSVM,
	"mat":      Matlab,
	"m":        Octave,
	"data":     UCI,
}

// Formats returns all known formats.
func Formats() []Format {
	return formats
}

// Parse a format name given by users.
func Parse(name string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, f := range formats {
		if string(f) == name {
			return f, nil
		}
	}
	if f, ok := aliases[name]; ok {
		return f, nil
	}
	return Unknown, errors.NotValidf("format %q", name)
}

func (f Format) String() string {
	return string(f)
}

// IsArchive checks whether the format is a compressed archive.
func (f Format) IsArchive() bool {
	switch f {
	case Zip, Tgz, TarGz, TarBz2, Gz, Bz2:
		return true
	}
	return false
}

// CanonicalName replaces the extension of path with .h5.
func CanonicalName(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".h5"
}
