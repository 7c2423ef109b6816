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

package base

import (
	"io"
	"os"
	"path/filepath"

	"github.com/gorse-io/ml2h5/base/log"
	"github.com/juju/errors"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// CreateFile creates a file for writing. Pair it with CloseFile.
func CreateFile(path string) (*os.File, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return file, nil
}

// CloseFile closes a file created by CreateFile. The file is removed if *err
// is not nil after closing, so a failed writer never leaves a partial file.
func CloseFile(file *os.File, err *error) {
	if closeErr := file.Close(); closeErr != nil && *err == nil {
		*err = errors.Trace(closeErr)
	}
	if *err != nil {
		RemoveFile(file.Name())
	}
}

// RemoveFile removes a file if it exists.
func RemoveFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Logger().Warn("failed to remove file", zap.String("path", path), zap.Error(err))
	}
}

// Exists checks whether a regular file exists.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ReplaceExt replaces the extension of path with ext.
func ReplaceExt(path, ext string) string {
	return path[:len(path)-len(filepath.Ext(path))] + ext
}

type progressReader struct {
	file *os.File
	bar  *progressbar.ProgressBar
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.file.Read(p)
	_ = r.bar.Add(n)
	return n, err
}

func (r *progressReader) Close() error {
	_ = r.bar.Finish()
	return r.file.Close()
}

// OpenFile opens a file for reading. A progress bar on stderr tracks consumed
// bytes if progress is set.
func OpenFile(path string, progress bool) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if !progress {
		return file, nil
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, errors.Trace(err)
	}
	bar := progressbar.NewOptions64(info.Size(),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetDescription(filepath.Base(path)))
	return &progressReader{file: file, bar: bar}, nil
}
