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
	"io"
	"log/slog"

	"rivaas.dev/odm/types"
)

// UnknownFieldPolicy selects what decoding does with document fields that
// match no property.
type UnknownFieldPolicy int

const (
	// UnknownOverflow stores unknown fields in the class's overflow
	// property, and discards them when the class has none.
	UnknownOverflow UnknownFieldPolicy = iota
	// UnknownDiscard skips unknown fields.
	UnknownDiscard
)

// String returns the policy name.
func (p UnknownFieldPolicy) String() string {
	switch p {
	case UnknownOverflow:
		return "overflow"
	case UnknownDiscard:
		return "discard"
	default:
		return "unknown"
	}
}

// Events holds optional callbacks. They run synchronously on the calling
// goroutine and must not block.
type Events struct {
	// UnknownField is called for every field that is discarded while
	// decoding an instance of class.
	UnknownField func(class, field string)
	// Specialized is called once per new class instantiation.
	Specialized func(t types.Type)
}

// Options configures a Provider.
type Options struct {
	UnknownFields UnknownFieldPolicy
	OmitNil       bool
	Events        Events
	Logger        *slog.Logger
}

// Option configures Options.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		UnknownFields: UnknownOverflow,
		OmitNil:       true,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithUnknownFieldPolicy sets the unknown field policy.
func WithUnknownFieldPolicy(p UnknownFieldPolicy) Option {
	return func(o *Options) {
		o.UnknownFields = p
	}
}

// WithOmitNil controls whether nil property values are left out of encoded
// documents (the default) or written as null.
func WithOmitNil(omit bool) Option {
	return func(o *Options) {
		o.OmitNil = omit
	}
}

// WithEvents sets the event callbacks.
func WithEvents(e Events) Option {
	return func(o *Options) {
		o.Events = e
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}
