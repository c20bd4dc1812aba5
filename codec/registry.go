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
	"io"
	"log/slog"
	"maps"
	"reflect"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"rivaas.dev/odm/document"
	"rivaas.dev/odm/types"
)

// DefaultMaxDepth bounds value nesting during encode and decode.
const DefaultMaxDepth = 100

// TypeResolver maps Go types the registry does not know yet (typically
// struct types) to document types. It reports false when it does not
// handle rt.
type TypeResolver func(rt reflect.Type) (types.Type, bool, error)

// Option configures a Registry.
type Option func(*Registry)

// WithProvider adds a codec provider. Providers are consulted in the order
// they were added, before the builtin provider.
func WithProvider(p Provider) Option {
	return func(r *Registry) {
		r.providers = append(r.providers, p)
	}
}

// WithMaxDepth sets the maximum nesting depth. Values below 1 are ignored.
func WithMaxDepth(depth int) Option {
	return func(r *Registry) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// WithTypeResolver installs the fallback used by TypeOf for Go types that
// are neither registered nor builtin.
func WithTypeResolver(fn TypeResolver) Option {
	return func(r *Registry) {
		r.resolver = fn
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

type interfaceHook struct {
	iface reflect.Type
	typ   types.Type
}

// Registry resolves document types to codecs and Go types to document
// types.
//
// Both caches are append-only and read without locks: readers load an
// immutable map through an atomic pointer, writers copy it under a mutex
// and swap it in. Concurrent builds of the same type are collapsed with
// singleflight. Providers must not look up the type they are building.
type Registry struct {
	providers []Provider
	resolver  TypeResolver
	maxDepth  int
	logger    *slog.Logger

	mu      sync.Mutex
	codecs  atomic.Pointer[map[string]Codec]
	goTypes atomic.Pointer[map[reflect.Type]types.Type]
	hooks   atomic.Pointer[[]interfaceHook]
	group   singleflight.Group
}

// NewRegistry returns a registry with the builtin codecs and Go type
// mappings.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		maxDepth: DefaultMaxDepth,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.providers = append(r.providers, builtinProvider{})

	codecs := make(map[string]Codec)
	r.codecs.Store(&codecs)
	goTypes := defaultGoTypes()
	r.goTypes.Store(&goTypes)
	r.hooks.Store(&[]interfaceHook{})

	return r
}

// MaxDepth returns the configured nesting limit.
func (r *Registry) MaxDepth() int {
	return r.maxDepth
}

// Logger returns the registry logger.
func (r *Registry) Logger() *slog.Logger {
	return r.logger
}

// EncodeContext returns a root encode context.
func (r *Registry) EncodeContext() EncodeContext {
	return EncodeContext{Registry: r}
}

// DecodeContext returns a root decode context.
func (r *Registry) DecodeContext() DecodeContext {
	return DecodeContext{Registry: r}
}

// Lookup returns the codec for a concrete type, building and caching it on
// first use. A miss is reported as *NotFoundError.
func (r *Registry) Lookup(t types.Type) (Codec, error) {
	if t.IsZero() {
		return nil, fmt.Errorf("%w: empty type", ErrCodecNotFound)
	}
	if !t.IsConcrete() {
		return nil, fmt.Errorf("%w: %s", ErrNotConcrete, t)
	}

	key := t.String()
	if c, ok := (*r.codecs.Load())[key]; ok {
		return c, nil
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		if c, ok := (*r.codecs.Load())[key]; ok {
			return c, nil
		}
		c, err := r.build(t)
		if err != nil {
			return nil, err
		}
		r.store(key, c)
		r.logger.Debug("codec built", "type", key)

		return c, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(Codec), nil
}

func (r *Registry) build(t types.Type) (Codec, error) {
	for _, p := range r.providers {
		c, err := p.Codec(t, r)
		if err != nil {
			return nil, err
		}
		if c != nil {
			return c, nil
		}
	}

	return nil, &NotFoundError{Type: t}
}

func (r *Registry) store(key string, c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := *r.codecs.Load()
	if _, ok := old[key]; ok {
		return
	}
	next := make(map[string]Codec, len(old)+1)
	maps.Copy(next, old)
	next[key] = c
	r.codecs.Store(&next)
}

// RegisterCodec installs an explicit codec for a concrete type. It replaces
// any codec previously cached for t.
func (r *Registry) RegisterCodec(t types.Type, c Codec) {
	key := t.String()

	r.mu.Lock()
	defer r.mu.Unlock()

	old := *r.codecs.Load()
	next := make(map[string]Codec, len(old)+1)
	maps.Copy(next, old)
	next[key] = c
	r.codecs.Store(&next)
}

// RegisterType maps a Go type to a document type. Later registrations for
// the same Go type win.
func (r *Registry) RegisterType(rt reflect.Type, t types.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := *r.goTypes.Load()
	next := make(map[reflect.Type]types.Type, len(old)+1)
	maps.Copy(next, old)
	next[rt] = t
	r.goTypes.Store(&next)
}

// RegisterInterface maps every Go type implementing iface to t.
func (r *Registry) RegisterInterface(iface reflect.Type, t types.Type) {
	if iface.Kind() != reflect.Interface {
		panic(fmt.Sprintf("codec: RegisterInterface called with non-interface type %s", iface))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	old := *r.hooks.Load()
	next := make([]interfaceHook, len(old), len(old)+1)
	copy(next, old)
	next = append(next, interfaceHook{iface: iface, typ: t})
	r.hooks.Store(&next)
}

// LookupValue returns the codec for the dynamic type of v.
func (r *Registry) LookupValue(v any) (Codec, error) {
	if v == nil {
		return r.Lookup(types.Any)
	}
	t, err := r.TypeOf(reflect.TypeOf(v))
	if err != nil {
		return nil, err
	}

	return r.Lookup(t)
}

// EncodeValue writes v with the codec of its dynamic type.
func (r *Registry) EncodeValue(w document.Writer, v any) error {
	c, err := r.LookupValue(v)
	if err != nil {
		return err
	}

	return c.Encode(w, v, r.EncodeContext())
}

// Encode writes v with the codec of t.
func (r *Registry) Encode(w document.Writer, v any, t types.Type) error {
	c, err := r.Lookup(t)
	if err != nil {
		return err
	}

	return c.Encode(w, v, r.EncodeContext())
}

// Decode reads the value under the cursor with the codec of t.
func (r *Registry) Decode(rd document.Reader, t types.Type) (any, error) {
	c, err := r.Lookup(t)
	if err != nil {
		return nil, err
	}

	return c.Decode(rd, r.DecodeContext())
}
