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

package codec

import (
	"errors"
	"fmt"
	"strings"

	"rivaas.dev/odm/document"
	"rivaas.dev/odm/types"
)

// Static errors for codec lookup and (de)serialization.
var (
	ErrCodecNotFound     = errors.New("no codec found")
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrInvalidValue      = errors.New("invalid value")
	ErrMaxDepthExceeded  = errors.New("exceeded maximum nesting depth")
	ErrUnmappedType      = errors.New("unmapped Go type")
	ErrDecodeUnsupported = errors.New("decoding not supported")
	ErrNotConcrete       = errors.New("type is not concrete")
)

// NotFoundError is returned when no provider yields a codec for a type.
type NotFoundError struct {
	Type types.Type
}

// Error implements error.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no codec found for type %s", e.Type)
}

// Unwrap returns ErrCodecNotFound.
func (e *NotFoundError) Unwrap() error {
	return ErrCodecNotFound
}

// TypeMismatchError is returned when the value in the document does not
// match the type expected by a codec.
type TypeMismatchError struct {
	Expected types.Type
	Actual   document.Type
}

// Error implements error.
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("expected %s, found %s", e.Expected, e.Actual)
}

// Unwrap returns ErrTypeMismatch.
func (e *TypeMismatchError) Unwrap() error {
	return ErrTypeMismatch
}

// DecodeError wraps a decode failure with the path of the property or
// element where it happened, outermost first.
type DecodeError struct {
	Path []string
	Err  error
}

// Error implements error.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %q: %v", e.PathString(), e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// PathString returns the dotted path, e.g. "items.2.value".
func (e *DecodeError) PathString() string {
	return strings.Join(e.Path, ".")
}

// EncodeError wraps an encode failure with the property path.
type EncodeError struct {
	Path []string
	Err  error
}

// Error implements error.
func (e *EncodeError) Error() string {
	return fmt.Sprintf("encoding %q: %v", e.PathString(), e.Err)
}

// Unwrap returns the underlying error.
func (e *EncodeError) Unwrap() error {
	return e.Err
}

// PathString returns the dotted path.
func (e *EncodeError) PathString() string {
	return strings.Join(e.Path, ".")
}

// WrapDecodeError prefixes the path of err with segment. Nested calls build
// the full path from the innermost failure outwards.
func WrapDecodeError(segment string, err error) error {
	if err == nil {
		return nil
	}
	if de, ok := err.(*DecodeError); ok {
		de.Path = append([]string{segment}, de.Path...)
		return de
	}

	return &DecodeError{Path: []string{segment}, Err: err}
}

// WrapEncodeError is the encode counterpart of WrapDecodeError.
func WrapEncodeError(segment string, err error) error {
	if err == nil {
		return nil
	}
	if ee, ok := err.(*EncodeError); ok {
		ee.Path = append([]string{segment}, ee.Path...)
		return ee
	}

	return &EncodeError{Path: []string{segment}, Err: err}
}

func mismatch(expected types.Type, actual document.Type) error {
	return &TypeMismatchError{Expected: expected, Actual: actual}
}

func invalidValue(v any, t types.Type) error {
	return fmt.Errorf("%w: cannot encode %T as %s", ErrInvalidValue, v, t)
}
