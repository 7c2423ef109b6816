// Copyright 2021 gorse Project Authors
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
	"slices"

	"github.com/gorse-io/ml2h5/base"
	"github.com/gorse-io/ml2h5/converter"
	"github.com/gorse-io/ml2h5/format"
	"github.com/juju/errors"
)

// Settings are resolved from a Config for the components.
type Settings struct {
	Config *Config

	Detector format.Detector
	Options  []converter.Option
}

func NewSettings(config *Config) (*Settings, error) {
	if config == nil {
		config = GetDefaultConfig()
	}
	s := &Settings{
		Config: config,
		Detector: format.Detector{
			MaxLines:      config.Detect.MaxLines,
			MaxLineLength: config.Detect.MaxLineLength,
		},
		Options: []converter.Option{
			converter.WithHeaderFirst(config.Convert.HeaderFirst),
			converter.WithMerge(config.Convert.Merge),
			converter.WithCompression(config.Convert.Compression),
			converter.WithDensify(config.Convert.Densify),
			converter.WithProgress(config.Convert.Progress),
		},
	}
	if config.Convert.Separator != "" {
		sep, err := base.ParseSeparator(config.Convert.Separator)
		if err != nil {
			return nil, errors.Trace(err)
		}
		s.Options = append(s.Options, converter.WithSeparator(sep))
	}
	return s, nil
}

// ConverterOptions returns the conversion options with overrides applied.
func (s *Settings) ConverterOptions(overrides ...converter.Option) converter.Options {
	return converter.NewOptions(slices.Concat(s.Options, overrides)...)
}
