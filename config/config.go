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

	"github.com/go-playground/validator/v10"
	"github.com/gorse-io/ml2h5/base/log"
	"github.com/gorse-io/ml2h5/format"
	"github.com/juju/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config is the configuration of ml2h5.
type Config struct {
	Convert ConvertConfig `mapstructure:"convert"`
	Detect  DetectConfig  `mapstructure:"detect"`
}

// ConvertConfig is the configuration of conversions.
type ConvertConfig struct {
	Separator   string `mapstructure:"separator" validate:"separator"`
	HeaderFirst bool   `mapstructure:"header_first"`
	Merge       bool   `mapstructure:"merge"`
	Verify      bool   `mapstructure:"verify"`
	RemoveOut   bool   `mapstructure:"remove_out"`
	Compression bool   `mapstructure:"compression"`
	Densify     bool   `mapstructure:"densify"`
	Progress    bool   `mapstructure:"progress"`
}

// DetectConfig is the configuration of format detection.
type DetectConfig struct {
	MaxLines      int `mapstructure:"max_lines" validate:"gt=0"`
	MaxLineLength int `mapstructure:"max_line_length" validate:"gt=0"`
}

func GetDefaultConfig() *Config {
	return &Config{
		Convert: ConvertConfig{
			Merge:     true,
			RemoveOut: true,
		},
		Detect: DetectConfig{
			MaxLines:      format.DefaultMaxLines,
			MaxLineLength: format.DefaultMaxLineLength,
		},
	}
}

func (config *Config) Validate() error {
	validate := validator.New()
	if err := registerValidations(validate); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(validate.Struct(config))
}

func setDefault() {
	defaultConfig := GetDefaultConfig()
	// [convert]
	viper.SetDefault("convert.separator", defaultConfig.Convert.Separator)
	viper.SetDefault("convert.header_first", defaultConfig.Convert.HeaderFirst)
	viper.SetDefault("convert.merge", defaultConfig.Convert.Merge)
	viper.SetDefault("convert.verify", defaultConfig.Convert.Verify)
	viper.SetDefault("convert.remove_out", defaultConfig.Convert.RemoveOut)
	viper.SetDefault("convert.compression", defaultConfig.Convert.Compression)
	viper.SetDefault("convert.densify", defaultConfig.Convert.Densify)
	viper.SetDefault("convert.progress", defaultConfig.Convert.Progress)
	// [detect]
	viper.SetDefault("detect.max_lines", defaultConfig.Detect.MaxLines)
	viper.SetDefault("detect.max_line_length", defaultConfig.Detect.MaxLineLength)
}

type configBinding struct {
	key    string
	envKey string
}

// LoadConfig loads configuration from toml file. Missing values are filled
// with defaults and ML2H5_* environment variables take precedence. An empty
// path loads defaults and environment variables only.
func LoadConfig(path string) (*Config, error) {
	// set default config
	setDefault()

	// bind environment bindings
	bindings := []configBinding{
		{"convert.separator", "ML2H5_SEPARATOR"},
		{"convert.header_first", "ML2H5_HEADER_FIRST"},
		{"convert.merge", "ML2H5_MERGE"},
		{"convert.verify", "ML2H5_VERIFY"},
		{"convert.remove_out", "ML2H5_REMOVE_OUT"},
		{"convert.compression", "ML2H5_COMPRESSION"},
		{"convert.densify", "ML2H5_DENSIFY"},
		{"convert.progress", "ML2H5_PROGRESS"},
		{"detect.max_lines", "ML2H5_DETECT_MAX_LINES"},
		{"detect.max_line_length", "ML2H5_DETECT_MAX_LINE_LENGTH"},
	}
	for _, binding := range bindings {
		err := viper.BindEnv(binding.key, binding.envKey)
		if err != nil {
			log.Logger().Fatal("failed to bind a Viper key to a ENV variable", zap.Error(err))
		}
	}

	if path != "" {
		// check if file exist
		if _, err := os.Stat(path); err != nil {
			return nil, errors.Trace(err)
		}
		// load config file
		viper.SetConfigType("toml")
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return nil, errors.Trace(err)
		}
	}

	// unmarshal config file
	var conf Config
	if err := viper.Unmarshal(&conf); err != nil {
		return nil, errors.Trace(err)
	}

	// validate config file
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}
