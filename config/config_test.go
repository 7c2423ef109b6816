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

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorse-io/ml2h5/base"
	"github.com/gorse-io/ml2h5/format"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshal(t *testing.T) {
	viper.Reset()
	data, err := os.ReadFile("config.toml.template")
	assert.NoError(t, err)
	text := string(data)
	text = strings.Replace(text, "separator = \"\"", "separator = \"tab\"", -1)
	text = strings.Replace(text, "densify = false", "densify = true", -1)
	viper.SetConfigType("toml")
	err = viper.ReadConfig(strings.NewReader(text))
	assert.NoError(t, err)
	var config Config
	err = viper.Unmarshal(&config)
	assert.NoError(t, err)

	// [convert]
	assert.Equal(t, "tab", config.Convert.Separator)
	assert.False(t, config.Convert.HeaderFirst)
	assert.True(t, config.Convert.Merge)
	assert.False(t, config.Convert.Verify)
	assert.True(t, config.Convert.RemoveOut)
	assert.False(t, config.Convert.Compression)
	assert.True(t, config.Convert.Densify)
	assert.False(t, config.Convert.Progress)
	// [detect]
	assert.Equal(t, 100, config.Detect.MaxLines)
	assert.Equal(t, 1048576, config.Detect.MaxLineLength)
	assert.NoError(t, config.Validate())
}

func TestSetDefault(t *testing.T) {
	viper.Reset()
	setDefault()
	viper.SetConfigType("toml")
	err := viper.ReadConfig(strings.NewReader(""))
	assert.NoError(t, err)
	var config Config
	err = viper.Unmarshal(&config)
	assert.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), &config)
}

type environmentVariable struct {
	key   string
	value string
}

func TestBindEnv(t *testing.T) {
	viper.Reset()
	variables := []environmentVariable{
		{"ML2H5_SEPARATOR", ","},
		{"ML2H5_HEADER_FIRST", "true"},
		{"ML2H5_MERGE", "false"},
		{"ML2H5_COMPRESSION", "true"},
		{"ML2H5_DETECT_MAX_LINES", "7"},
	}
	for _, variable := range variables {
		t.Setenv(variable.key, variable.value)
	}

	config, err := LoadConfig("config.toml.template")
	require.NoError(t, err)
	assert.Equal(t, ",", config.Convert.Separator)
	assert.True(t, config.Convert.HeaderFirst)
	assert.False(t, config.Convert.Merge)
	assert.True(t, config.Convert.Compression)
	assert.Equal(t, 7, config.Detect.MaxLines)

	// check default values
	assert.True(t, config.Convert.RemoveOut)
	assert.Equal(t, format.DefaultMaxLineLength, config.Detect.MaxLineLength)
}

func TestLoadConfigWithoutFile(t *testing.T) {
	viper.Reset()
	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), config)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadInvalidConfig(t *testing.T) {
	viper.Reset()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[detect]\nmax_lines = 0\n"), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestNewSettings(t *testing.T) {
	config := GetDefaultConfig()
	config.Convert.Separator = "tab"
	config.Convert.Densify = true
	config.Detect.MaxLines = 3
	settings, err := NewSettings(config)
	require.NoError(t, err)
	assert.Equal(t, 3, settings.Detector.MaxLines)
	opts := settings.ConverterOptions()
	assert.True(t, opts.Merge)
	assert.True(t, opts.Densify)
	require.NotNil(t, opts.Separator)
	assert.Equal(t, base.Separator("\t"), *opts.Separator)

	settings, err = NewSettings(nil)
	require.NoError(t, err)
	assert.Nil(t, settings.ConverterOptions().Separator)
}
