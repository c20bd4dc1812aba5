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
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"rivaas.dev/odm/codec"
	"rivaas.dev/odm/types"
)

// Specialization is a class bound to concrete type arguments. Every
// property has a concrete type.
type Specialization struct {
	model     *ClassModel
	typ       types.Type
	args      []types.Type
	propTypes []types.Type
}

// Model returns the class model.
func (s *Specialization) Model() *ClassModel { return s.model }

// Type returns the concrete class type, with bounds filled in for missing
// arguments.
func (s *Specialization) Type() types.Type { return s.typ }

// Args returns the concrete type arguments.
func (s *Specialization) Args() []types.Type { return slices.Clone(s.args) }

// PropertyType returns the concrete type of a property.
func (s *Specialization) PropertyType(name string) (types.Type, bool) {
	i, ok := s.model.byName[name]
	if !ok {
		return types.Type{}, false
	}

	return s.propTypes[i], true
}

// Engine resolves class models against type arguments and caches the
// results. It is safe for concurrent use; lookups are lock-free.
type Engine struct {
	mu    sync.Mutex
	cache atomic.Pointer[map[string]*Specialization]
	opts  *Options
}

// NewEngine returns an empty engine.
func NewEngine(opts ...Option) *Engine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	return newEngine(o)
}

func newEngine(o *Options) *Engine {
	e := &Engine{opts: o}
	empty := make(map[string]*Specialization)
	e.cache.Store(&empty)

	return e
}

// Resolve binds m to args. Missing trailing arguments take the parameter
// bounds. Resolving the same class and arguments again returns the same
// *Specialization.
func (e *Engine) Resolve(m *ClassModel, args ...types.Type) (*Specialization, error) {
	if len(args) > len(m.typeParams) {
		return nil, &ResolutionError{
			Type: types.Named(m.name, args...),
			Err:  fmt.Errorf("%w: %s takes %d, got %d", ErrTypeArgumentCount, m.name, len(m.typeParams), len(args)),
		}
	}
	for _, a := range args {
		if !a.IsConcrete() {
			return nil, &ResolutionError{
				Type: types.Named(m.name, args...),
				Err:  fmt.Errorf("%w: argument %s", codec.ErrNotConcrete, a),
			}
		}
	}

	full := make([]types.Type, len(m.typeParams))
	for i, tp := range m.typeParams {
		if i < len(args) {
			full[i] = args[i]
		} else {
			full[i] = tp.Bound
		}
	}
	typ := types.Named(m.name, full...)
	key := typ.String()

	if s, ok := (*e.cache.Load())[key]; ok && s.model == m {
		return s, nil
	}

	propTypes := make([]types.Type, len(m.properties))
	for i, p := range m.properties {
		propTypes[i] = specialize(p.typ, p.typeParams, full)
	}
	s := &Specialization{model: m, typ: typ, args: full, propTypes: propTypes}

	e.mu.Lock()
	old := *e.cache.Load()
	if existing, ok := old[key]; ok && existing.model == m {
		e.mu.Unlock()
		return existing, nil
	}
	next := make(map[string]*Specialization, len(old)+1)
	maps.Copy(next, old)
	next[key] = s
	e.cache.Store(&next)
	e.mu.Unlock()

	e.opts.Logger.Debug("class specialized", "type", key)
	if fn := e.opts.Events.Specialized; fn != nil {
		fn(typ)
	}

	return s, nil
}

// Len returns the number of cached specializations.
func (e *Engine) Len() int {
	return len(*e.cache.Load())
}
