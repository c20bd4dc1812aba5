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
	"fmt"
	"reflect"

	"rivaas.dev/odm/document"
	"rivaas.dev/odm/types"
)

// Encoder writes one value.
type Encoder interface {
	Encode(w document.Writer, v any, ctx EncodeContext) error
}

// Decoder reads the value under the reader cursor. Callers have already
// consumed the element name.
type Decoder interface {
	Decode(r document.Reader, ctx DecodeContext) (any, error)
}

// Codec encodes and decodes values of one concrete document type.
type Codec interface {
	Encoder
	Decoder

	// GoType is the type of the values returned by Decode. Container codecs
	// use it to build typed slices and maps.
	GoType() reflect.Type
}

// Provider builds codecs on demand. Codec returns (nil, nil) when the
// provider does not handle t, so the registry can try the next provider.
type Provider interface {
	Codec(t types.Type, reg *Registry) (Codec, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(t types.Type, reg *Registry) (Codec, error)

// Codec implements Provider.
func (f ProviderFunc) Codec(t types.Type, reg *Registry) (Codec, error) {
	return f(t, reg)
}

// EncodeContext is passed to every Encode call. It carries the registry and
// the current nesting depth.
type EncodeContext struct {
	Registry *Registry
	depth    int
}

// Nested returns the context for a child value.
func (c EncodeContext) Nested() (EncodeContext, error) {
	c.depth++
	if limit := c.Registry.MaxDepth(); c.depth > limit {
		return c, fmt.Errorf("%w (%d)", ErrMaxDepthExceeded, limit)
	}

	return c, nil
}

// Depth returns the nesting depth, 0 for the root value.
func (c EncodeContext) Depth() int {
	return c.depth
}

// DecodeContext is passed to every Decode call.
type DecodeContext struct {
	Registry *Registry
	depth    int
}

// Nested returns the context for a child value.
func (c DecodeContext) Nested() (DecodeContext, error) {
	c.depth++
	if limit := c.Registry.MaxDepth(); c.depth > limit {
		return c, fmt.Errorf("%w (%d)", ErrMaxDepthExceeded, limit)
	}

	return c, nil
}

// Depth returns the nesting depth, 0 for the root value.
func (c DecodeContext) Depth() int {
	return c.depth
}
