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

package aggregation

import (
	"errors"
	"fmt"
)

// Static errors for pipeline construction.
var (
	ErrMixedProjection = errors.New("projection mixes inclusion and exclusion")
	ErrEmptyStage      = errors.New("stage has no fields")
	ErrInvalidStage    = errors.New("invalid stage argument")
	ErrNilExpression   = errors.New("nil expression")
)

// StageError reports a stage that failed to encode.
type StageError struct {
	Index int    // Position in the pipeline
	Stage string // Stage operator, e.g. "$project"
	Err   error
}

// Error implements error.
func (e *StageError) Error() string {
	return fmt.Sprintf("aggregation: stage %d (%s): %v", e.Index, e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}
