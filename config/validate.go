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
	"github.com/go-playground/validator/v10"
	"github.com/gorse-io/ml2h5/base"
	"github.com/juju/errors"
)

// validateSeparator accepts an empty separator, which means inferring it.
func validateSeparator(fl validator.FieldLevel) bool {
	text := fl.Field().String()
	if text == "" {
		return true
	}
	_, err := base.ParseSeparator(text)
	return err == nil
}

func registerValidations(validate *validator.Validate) error {
	return errors.Trace(validate.RegisterValidation("separator", validateSeparator))
}
