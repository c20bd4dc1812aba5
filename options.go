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

import (
	"errors"
	"fmt"
	"log/slog"

	"rivaas.dev/odm/codec"
	"rivaas.dev/odm/logging"
	"rivaas.dev/odm/mapping"
	"rivaas.dev/odm/pojo"
)

// config holds the settings collected from options.
type config struct {
	logger        *slog.Logger
	maxDepth      int
	unknownFields pojo.UnknownFieldPolicy
	omitNil       bool
	events        pojo.Events
	mappings      *mapping.Set
	providers     []codec.Provider
}

func defaultConfig() *config {
	return &config{
		logger:        logging.Discard(),
		maxDepth:      codec.DefaultMaxDepth,
		unknownFields: pojo.UnknownOverflow,
		omitNil:       true,
	}
}

func (c *config) validate() error {
	var errs []error
	if c.maxDepth < 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidMaxDepth, c.maxDepth))
	}
	for i, p := range c.providers {
		if p == nil {
			errs = append(errs, fmt.Errorf("provider %d is nil", i))
		}
	}

	return errors.Join(errs...)
}

// Option configures a [Mapper].
type Option func(*config)

// WithLogger sets the logger for discovery, registration and codec
// construction. Records are emitted at debug level. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxDepth bounds value nesting during encode and decode. Zero keeps
// [codec.DefaultMaxDepth].
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		if depth == 0 {
			depth = codec.DefaultMaxDepth
		}
		c.maxDepth = depth
	}
}

// WithUnknownFieldPolicy selects what decoding does with document fields
// that match no property. Unknown fields never cause an error.
func WithUnknownFieldPolicy(p pojo.UnknownFieldPolicy) Option {
	return func(c *config) { c.unknownFields = p }
}

// WithOmitNil controls whether nil property values are left out of encoded
// documents (the default) or written as null.
func WithOmitNil(omit bool) Option {
	return func(c *config) { c.omitNil = omit }
}

// WithEvents sets callbacks for discarded fields and new instantiations.
func WithEvents(e pojo.Events) Option {
	return func(c *config) { c.events = e }
}

// WithMappings applies class configuration loaded from mapping files to Go
// types whose class name matches.
func WithMappings(set *mapping.Set) Option {
	return func(c *config) { c.mappings = set }
}

// WithProvider adds a codec provider consulted before class models and
// builtin codecs.
func WithProvider(p codec.Provider) Option {
	return func(c *config) { c.providers = append(c.providers, p) }
}
