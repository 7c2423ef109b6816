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
	"fmt"

	"github.com/juju/errors"
)

// ConversionError reports a failed conversion or verification.
type ConversionError struct {
	Message string
	cause   error
}

func (e *ConversionError) Error() string {
	if e.cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.cause.Error()
}

func (e *ConversionError) Unwrap() error {
	return e.cause
}

func newConversionError(cause error, format string, args ...any) error {
	return &ConversionError{Message: fmt.Sprintf(format, args...), cause: cause}
}

// IsConversionError checks whether err is or wraps a *ConversionError.
func IsConversionError(err error) bool {
	var target *ConversionError
	return errors.As(err, &target)
}

// IsUnsupported checks whether err reports an unsupported format pairing or
// direction.
func IsUnsupported(err error) bool {
	return errors.Is(err, errors.NotSupported)
}

// normalize maps any error to one of the two kinds callers handle.
func normalize(err error, format string, args ...any) error {
	if err == nil || IsUnsupported(err) || IsConversionError(err) {
		return err
	}
	return newConversionError(err, format, args...)
}
