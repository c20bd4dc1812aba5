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

// Provider serves class codecs for registered class models. It implements
// codec.Provider and is safe for concurrent use.
type Provider struct {
	opts   *Options
	engine *Engine

	mu     sync.Mutex
	models atomic.Pointer[map[string]*ClassModel]
}

// NewProvider returns a provider with no registered classes.
func NewProvider(opts ...Option) *Provider {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	p := &Provider{opts: o, engine: newEngine(o)}
	empty := make(map[string]*ClassModel)
	p.models.Store(&empty)

	return p
}

// Register adds a class model. Registering the same model twice is a
// no-op; a different model with a taken name fails with ErrDuplicateClass.
func (p *Provider) Register(m *ClassModel) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	old := *p.models.Load()
	if existing, ok := old[m.name]; ok {
		if existing == m {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrDuplicateClass, m.name)
	}
	next := make(map[string]*ClassModel, len(old)+1)
	maps.Copy(next, old)
	next[m.name] = m
	p.models.Store(&next)

	p.opts.Logger.Debug("class registered",
		"class", m.name,
		"type_params", len(m.typeParams),
		"properties", len(m.properties),
	)

	return nil
}

// Model returns the registered model with the given class name.
func (p *Provider) Model(name string) (*ClassModel, bool) {
	m, ok := (*p.models.Load())[name]
	return m, ok
}

// Models returns all registered models sorted by name.
func (p *Provider) Models() []*ClassModel {
	models := *p.models.Load()
	names := slices.Sorted(maps.Keys(models))
	out := make([]*ClassModel, len(names))
	for i, n := range names {
		out[i] = models[n]
	}

	return out
}

// Engine returns the resolution engine.
func (p *Provider) Engine() *Engine {
	return p.engine
}

// Options returns the effective options.
func (p *Provider) Options() Options {
	return *p.opts
}

// Codec implements codec.Provider. It returns nil for types that name no
// registered class.
func (p *Provider) Codec(t types.Type, reg *codec.Registry) (codec.Codec, error) {
	m, ok := p.Model(t.Name())
	if !ok {
		return nil, nil
	}
	sp, err := p.engine.Resolve(m, t.Args()...)
	if err != nil {
		return nil, err
	}

	return newClassCodec(sp, p.opts), nil
}
