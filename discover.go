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
	"reflect"

	"rivaas.dev/odm/pojo"
	"rivaas.dev/odm/types"
)

// session discovers a struct type and every struct type it reaches. Models
// are collected privately and published together by commit, so a failed
// discovery leaves the Mapper unchanged.
//
// A session runs under Mapper.discoverMu and resolves nested types with its
// own registry fallback, never through Mapper.resolveType.
type session struct {
	m *Mapper
	// pending holds the class names of types being discovered, which makes
	// self-referencing types resolvable.
	pending map[reflect.Type]string
	built   map[reflect.Type]*pojo.ClassModel
	order   []reflect.Type
}

var _ pojo.Resolver = (*session)(nil)

func newSession(m *Mapper) *session {
	return &session{
		m:       m,
		pending: make(map[reflect.Type]string),
		built:   make(map[reflect.Type]*pojo.ClassModel),
	}
}

func (s *session) TypeOf(rt reflect.Type) (types.Type, error) {
	return s.m.registry.TypeOfWith(rt, s.resolve)
}

func (s *session) resolve(rt reflect.Type) (types.Type, bool, error) {
	if rt.Kind() != reflect.Struct {
		return types.Type{}, false, nil
	}
	if name, ok := s.pending[rt]; ok {
		return types.Named(name), true, nil
	}
	cm, err := s.ModelOf(rt)
	if err != nil {
		return types.Type{}, false, err
	}

	return types.Named(cm.Name()), true, nil
}

func (s *session) ModelOf(rt reflect.Type) (*pojo.ClassModel, error) {
	rt = structType(rt)
	if cm, ok := s.m.model(rt); ok {
		return cm, nil
	}
	if cm, ok := s.built[rt]; ok {
		return cm, nil
	}

	cfg := s.m.classConfig(rt)
	if rt == nil || rt.Kind() != reflect.Struct {
		return pojo.Discover(rt, cfg, s)
	}
	name := cfg.Name
	if name == "" {
		name = pojo.ClassName(rt)
	}
	if _, ok := s.pending[rt]; ok {
		return nil, &pojo.MappingError{Class: name, Reason: "type embeds itself", Err: pojo.ErrUnresolvableType}
	}

	s.pending[rt] = name
	cm, err := pojo.Discover(rt, cfg, s)
	delete(s.pending, rt)
	if err != nil {
		return nil, err
	}

	s.built[rt] = cm
	s.order = append(s.order, rt)
	s.m.cfg.logger.Debug("class discovered",
		"class", cm.Name(),
		"go_type", rt.String(),
		"type_params", len(cm.TypeParams()),
	)

	return cm, nil
}

// commit registers the collected models with the class provider and
// publishes them. Name clashes are checked before anything is registered.
func (s *session) commit() error {
	if len(s.order) == 0 {
		return nil
	}
	seen := make(map[string]reflect.Type, len(s.order))
	for _, rt := range s.order {
		name := s.built[rt].Name()
		var other any
		if prev, ok := seen[name]; ok {
			other = prev
		} else if existing, ok := s.m.classes.Model(name); ok {
			other = goTypeOf(existing)
		}
		if other != nil {
			return &pojo.MappingError{
				Class:  name,
				Reason: fmt.Sprintf("%s clashes with %v", rt, other),
				Err:    pojo.ErrDuplicateClass,
			}
		}
		seen[name] = rt
	}
	for _, rt := range s.order {
		if err := s.m.classes.Register(s.built[rt]); err != nil {
			return err
		}
	}
	s.m.publish(s.built)

	return nil
}

func goTypeOf(cm *pojo.ClassModel) any {
	if rt := cm.GoType(); rt != nil {
		return rt
	}
	return "a map-backed class"
}
