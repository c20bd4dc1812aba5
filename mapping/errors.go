// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mapping

import (
	"errors"
	"fmt"
)

// Static errors for loading mappings.
var (
	ErrUnknownFormat  = errors.New("unknown mapping format")
	ErrInvalidMapping = errors.New("invalid mapping")
	ErrExtendsCycle   = errors.New("supertype cycle")
	ErrUnknownClass   = errors.New("unknown class")
)

// Error describes where loading a mapping failed.
type Error struct {
	Source    string // File path, "data[i]", "schema" or "class Name"
	Operation string // "read", "parse", "merge", "validate", "decode" or "build"
	Err       error
}

// Error implements error.
func (e *Error) Error() string {
	return fmt.Sprintf("mapping error in %s during %s: %v", e.Source, e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(source, operation string, err error) *Error {
	return &Error{Source: source, Operation: operation, Err: err}
}
