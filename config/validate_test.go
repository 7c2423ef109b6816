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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSeparator(t *testing.T) {
	for _, sep := range []string{"", ",", "tab", "space", "whitespace"} {
		config := GetDefaultConfig()
		config.Convert.Separator = sep
		assert.NoError(t, config.Validate(), sep)
	}
	config := GetDefaultConfig()
	config.Convert.Separator = ";"
	assert.Error(t, config.Validate())
}

func TestValidateDetect(t *testing.T) {
	config := GetDefaultConfig()
	config.Detect.MaxLineLength = -1
	assert.Error(t, config.Validate())
}
