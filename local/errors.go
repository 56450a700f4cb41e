/*
Copyright © 2021 the odg authors.
This file is part of odg.

odg is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

odg is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with odg.  If not, see <http://www.gnu.org/licenses/>.
*/

package local

import (
	"fmt"

	"github.com/oceandata/odg/catalog"
)

// ConfigurationError is returned when a Reader is constructed with
// invalid arguments.
type ConfigurationError struct {
	// Field is the name of the offending argument.
	Field string
	Value interface{}

	// Reason describes what is wrong when there is no underlying error.
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	reason := e.Reason
	if e.Err != nil {
		reason = e.Err.Error()
	}
	if e.Value == nil {
		return fmt.Sprintf("local: invalid %s: %s", e.Field, reason)
	}
	return fmt.Sprintf("local: invalid %s %#v: %s", e.Field, e.Value, reason)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// BatchLoadError is returned when any dataset in a batch fails to load.
// It holds the first failure.
type BatchLoadError struct {
	ID  string
	Err error
}

func (e *BatchLoadError) Error() string {
	return fmt.Sprintf("local: loading dataset %s: %v", e.ID, e.Err)
}

func (e *BatchLoadError) Unwrap() error { return e.Err }

// NotFoundError is returned when a dataset identifier is not in the
// catalog.
type NotFoundError = catalog.NotFoundError
