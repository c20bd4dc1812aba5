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

package pojo

import (
	"errors"
	"fmt"
	"strings"

	"rivaas.dev/odm/types"
)

// Static errors for model construction and resolution.
var (
	// ErrConflictingTypeParameters is returned when a type parameter map
	// combines a whole-property mapping with other entries.
	ErrConflictingTypeParameters = errors.New("a generic property cannot also have type parameters")

	ErrUnresolvableType              = errors.New("property type cannot be resolved")
	ErrUnmatchedConstructorParameter = errors.New("constructor parameter has no matching property")
	ErrDuplicateProperty             = errors.New("duplicate property")
	ErrDuplicateTypeParameter        = errors.New("duplicate type parameter")
	ErrMissingAccessor               = errors.New("property has no accessor")
	ErrMissingCreator                = errors.New("class has no way to create instances")
	ErrInvalidConstructor            = errors.New("invalid constructor")
	ErrInvalidOverflow               = errors.New("invalid overflow property")
	ErrNotStruct                     = errors.New("not a struct type")
	ErrDuplicateClass                = errors.New("class already registered")
	ErrTypeArgumentCount             = errors.New("too many type arguments")
	ErrNilInstance                   = errors.New("nil instance")
)

// MappingError reports a problem found while building a class model. It is
// raised at registration time, never during encode or decode.
type MappingError struct {
	Class    string
	Property string
	Reason   string
	Err      error
}

// Error implements error.
func (e *MappingError) Error() string {
	var sb strings.Builder
	sb.WriteString("mapping class ")
	sb.WriteString(e.Class)
	if e.Property != "" {
		fmt.Fprintf(&sb, " property %q", e.Property)
	}
	sb.WriteString(": ")
	if e.Reason != "" {
		sb.WriteString(e.Reason)
		if e.Err != nil {
			sb.WriteString(": ")
		}
	}
	if e.Err != nil {
		sb.WriteString(e.Err.Error())
	}

	return sb.String()
}

// Unwrap returns the underlying error.
func (e *MappingError) Unwrap() error {
	return e.Err
}

// ResolutionError reports a failure to specialize a class for concrete type
// arguments or to find a codec for one of its properties.
type ResolutionError struct {
	Type     types.Type
	Property string
	Err      error
}

// Error implements error.
func (e *ResolutionError) Error() string {
	if e.Property != "" {
		return fmt.Sprintf("resolving %s property %q: %v", e.Type, e.Property, e.Err)
	}
	return fmt.Sprintf("resolving %s: %v", e.Type, e.Err)
}

// Unwrap returns the underlying error.
func (e *ResolutionError) Unwrap() error {
	return e.Err
}

func unresolvableVar(name string) error {
	return fmt.Errorf("%w: type variable %s is not declared by the class", ErrUnresolvableType, name)
}

func mappingError(class, property string, err error) error {
	return &MappingError{Class: class, Property: property, Err: err}
}
