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
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func writeFile(path string, fail bool) (err error) {
	file, err := CreateFile(path)
	if err != nil {
		return err
	}
	defer CloseFile(file, &err)
	if _, err = file.WriteString("partial"); err != nil {
		return err
	}
	if fail {
		return errors.New("failed")
	}
	return nil
}

func TestCloseFile(t *testing.T) {
	dir := t.TempDir()
	ok := filepath.Join(dir, "ok.txt")
	assert.NoError(t, writeFile(ok, false))
	assert.True(t, Exists(ok))

	failed := filepath.Join(dir, "failed.txt")
	assert.Error(t, writeFile(failed, true))
	assert.False(t, Exists(failed))
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.csv")
	assert.NoError(t, os.WriteFile(path, []byte("1,2,3\n"), 0o644))
	for _, progress := range []bool{false, true} {
		r, err := OpenFile(path, progress)
		assert.NoError(t, err)
		data, err := io.ReadAll(r)
		assert.NoError(t, err)
		assert.Equal(t, "1,2,3\n", string(data))
		assert.NoError(t, r.Close())
	}
	_, err := OpenFile(filepath.Join(t.TempDir(), "missing"), false)
	assert.Error(t, err)
}

func TestReplaceExt(t *testing.T) {
	assert.Equal(t, "/tmp/iris.h5", ReplaceExt("/tmp/iris.csv", ".h5"))
	assert.Equal(t, "iris.h5", ReplaceExt("iris", ".h5"))
}
