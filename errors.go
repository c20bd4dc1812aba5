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

package odm

import "errors"

var (
	// ErrInvalidMaxDepth is returned by [New] for a negative nesting limit.
	ErrInvalidMaxDepth = errors.New("max depth must not be negative")

	// ErrInvalidTarget is returned when a decode destination is not a
	// non-nil pointer.
	ErrInvalidTarget = errors.New("decode target must be a non-nil pointer")

	// ErrAlreadyMapped is returned by [Mapper.Map] for a Go type whose class
	// model has already been built.
	ErrAlreadyMapped = errors.New("type already mapped")
)
