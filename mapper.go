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
	"fmt"
	"maps"
	"reflect"
	"sync"
	"sync/atomic"

	"rivaas.dev/odm/aggregation"
	"rivaas.dev/odm/codec"
	"rivaas.dev/odm/pojo"
	"rivaas.dev/odm/types"
)

// Mapper encodes and decodes values through class models.
//
// Use [New] or [MustNew] to create a Mapper. Struct types are discovered
// the first time they are met and cached for the lifetime of the Mapper.
//
// Mapper is safe for concurrent use by multiple goroutines.
//
// Note: Due to Go language limitations, generic methods are not supported.
// Use the generic helper functions [Register], [DecodeWith],
// [UnmarshalWith] and [FromDocumentWith].
type Mapper struct {
	cfg      *config
	classes  *pojo.Provider
	registry *codec.Registry

	// discoverMu serializes discovery sessions.
	discoverMu sync.Mutex

	// RCU pattern: atomic pointer to immutable map, mu guards writers.
	mu      sync.Mutex
	models  atomic.Pointer[map[reflect.Type]*pojo.ClassModel]
	configs map[reflect.Type]pojo.ClassConfig
}

var _ pojo.Resolver = (*Mapper)(nil)

// New creates a [Mapper] with the given options.
// Returns an error if configuration is invalid.
func New(opts ...Option) (*Mapper, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	m := &Mapper{
		cfg:     cfg,
		configs: make(map[reflect.Type]pojo.ClassConfig),
	}
	empty := make(map[reflect.Type]*pojo.ClassModel)
	m.models.Store(&empty)

	m.classes = pojo.NewProvider(
		pojo.WithUnknownFieldPolicy(cfg.unknownFields),
		pojo.WithOmitNil(cfg.omitNil),
		pojo.WithEvents(cfg.events),
		pojo.WithLogger(cfg.logger),
	)

	regOpts := make([]codec.Option, 0, len(cfg.providers)+4)
	for _, p := range cfg.providers {
		regOpts = append(regOpts, codec.WithProvider(p))
	}
	regOpts = append(regOpts,
		codec.WithProvider(m.classes),
		codec.WithMaxDepth(cfg.maxDepth),
		codec.WithLogger(cfg.logger),
		codec.WithTypeResolver(m.resolveType),
	)
	m.registry = codec.NewRegistry(regOpts...)
	aggregation.Register(m.registry)

	return m, nil
}

// MustNew creates a [Mapper] with the given options.
// Panics if configuration is invalid.
func MustNew(opts ...Option) *Mapper {
	m, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("odm.MustNew: %v", err))
	}

	return m
}

// Registry returns the codec registry. Codecs and Go type mappings
// registered on it are used by every Mapper operation.
func (m *Mapper) Registry() *codec.Registry {
	return m.registry
}

// Map sets the class configuration of a Go struct type. It must be called
// before the type is first used; afterwards it fails with
// [ErrAlreadyMapped]. Configuration from [WithMappings] for the same class
// name is applied underneath cfg.
func (m *Mapper) Map(rt reflect.Type, cfg pojo.ClassConfig) error {
	rt = structType(rt)
	if rt == nil || rt.Kind() != reflect.Struct {
		return &pojo.MappingError{Class: cfg.Name, Reason: fmt.Sprint(rt), Err: pojo.ErrNotStruct}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := (*m.models.Load())[rt]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyMapped, rt)
	}
	m.configs[rt] = cfg

	return nil
}

// Register maps T with the optional configurations, merged in order, and
// builds its class model right away.
func Register[T any](m *Mapper, cfgs ...pojo.ClassConfig) (*pojo.ClassModel, error) {
	rt := reflect.TypeFor[T]()
	if len(cfgs) > 0 {
		var cfg pojo.ClassConfig
		for _, c := range cfgs {
			cfg = cfg.Merge(c)
		}
		if err := m.Map(rt, cfg); err != nil {
			return nil, err
		}
	}

	return m.ModelOf(rt)
}

// RegisterModel adds a hand-built or map-backed class model. Models with a
// Go type are also used for values of that type.
func (m *Mapper) RegisterModel(cm *pojo.ClassModel) error {
	if err := m.classes.Register(cm); err != nil {
		return err
	}
	if rt := cm.GoType(); rt != nil {
		m.publish(map[reflect.Type]*pojo.ClassModel{rt: cm})
	}

	return nil
}

// Model returns the registered class model with the given name.
func (m *Mapper) Model(name string) (*pojo.ClassModel, bool) {
	return m.classes.Model(name)
}

// Classes returns all registered class models sorted by name.
func (m *Mapper) Classes() []*pojo.ClassModel {
	return m.classes.Models()
}

// TypeOf returns the document type used for values of Go type rt,
// discovering struct types on the way. It implements [pojo.Resolver].
func (m *Mapper) TypeOf(rt reflect.Type) (types.Type, error) {
	return m.registry.TypeOf(rt)
}

// ModelOf returns the class model of a struct type, discovering it and
// the struct types it references on first use. It implements
// [pojo.Resolver].
func (m *Mapper) ModelOf(rt reflect.Type) (*pojo.ClassModel, error) {
	rt = structType(rt)
	if cm, ok := m.model(rt); ok {
		return cm, nil
	}

	m.discoverMu.Lock()
	defer m.discoverMu.Unlock()

	// Double-check: another session may have built it.
	if cm, ok := m.model(rt); ok {
		return cm, nil
	}

	s := newSession(m)
	cm, err := s.ModelOf(rt)
	if err != nil {
		return nil, err
	}
	if err := s.commit(); err != nil {
		return nil, err
	}

	return cm, nil
}

// Warmup discovers the types of the given values ahead of first use.
func (m *Mapper) Warmup(values ...any) error {
	for _, v := range values {
		if _, err := m.ModelOf(reflect.TypeOf(v)); err != nil {
			return err
		}
	}

	return nil
}

// resolveType is the registry fallback for struct types.
func (m *Mapper) resolveType(rt reflect.Type) (types.Type, bool, error) {
	if rt.Kind() != reflect.Struct {
		return types.Type{}, false, nil
	}
	cm, err := m.ModelOf(rt)
	if err != nil {
		return types.Type{}, false, err
	}

	return types.Named(cm.Name()), true, nil
}

func (m *Mapper) model(rt reflect.Type) (*pojo.ClassModel, bool) {
	cm, ok := (*m.models.Load())[rt]
	return cm, ok
}

// publish adds models with copy-on-write.
func (m *Mapper) publish(built map[reflect.Type]*pojo.ClassModel) {
	m.mu.Lock()
	defer m.mu.Unlock()

	old := *m.models.Load()
	next := make(map[reflect.Type]*pojo.ClassModel, len(old)+len(built))
	maps.Copy(next, old)
	maps.Copy(next, built)
	m.models.Store(&next)
}

// classConfig returns the effective configuration of rt: mapping file
// settings for its class name with the code configuration on top.
func (m *Mapper) classConfig(rt reflect.Type) pojo.ClassConfig {
	m.mu.Lock()
	cfg := m.configs[rt]
	m.mu.Unlock()

	if m.cfg.mappings == nil {
		return cfg
	}
	name := cfg.Name
	if name == "" {
		name = pojo.ClassName(rt)
	}
	file, ok := m.cfg.mappings.ClassConfig(name)
	if !ok {
		return cfg
	}

	return file.Merge(cfg)
}

// structType strips pointers.
func structType(rt reflect.Type) reflect.Type {
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}

	return rt
}
