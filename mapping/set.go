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

package mapping

import (
	"fmt"
	"maps"
	"slices"

	"rivaas.dev/odm/pojo"
	"rivaas.dev/odm/types"
)

// Set is a validated collection of class specs. It is immutable.
type Set struct {
	classes map[string]ClassSpec
	// order lists class names with supertypes before subtypes.
	order []string
	// parsed holds the checked extends and bound types per class.
	parsed map[string]parsedClass
}

type parsedClass struct {
	extends types.Type
	bounds  map[string]types.Type
	props   []types.Type
}

func newSet(f File) (*Set, error) {
	s := &Set{
		classes: f.Classes,
		parsed:  make(map[string]parsedClass, len(f.Classes)),
	}
	if s.classes == nil {
		s.classes = map[string]ClassSpec{}
	}

	for _, name := range slices.Sorted(maps.Keys(s.classes)) {
		pc, err := s.check(name, s.classes[name])
		if err != nil {
			return nil, newError("class "+name, "validate", err)
		}
		s.parsed[name] = pc
	}

	state := make(map[string]int, len(s.classes))
	for _, name := range slices.Sorted(maps.Keys(s.classes)) {
		if err := s.visit(name, state, nil); err != nil {
			return nil, newError("class "+name, "validate", err)
		}
	}

	return s, nil
}

// check parses every type expression of a class.
func (s *Set) check(name string, cs ClassSpec) (parsedClass, error) {
	pc := parsedClass{bounds: make(map[string]types.Type, len(cs.Bounds))}
	for param, expr := range cs.Bounds {
		if !slices.Contains(cs.TypeParams, param) {
			return pc, fmt.Errorf("%w: bound for undeclared type parameter %q", ErrInvalidMapping, param)
		}
		t, err := types.Parse(expr)
		if err != nil {
			return pc, fmt.Errorf("%w: bound of %s: %w", ErrInvalidMapping, param, err)
		}
		pc.bounds[param] = t
	}

	if cs.Extends != "" {
		t, err := types.Parse(cs.Extends, cs.TypeParams...)
		if err != nil {
			return pc, fmt.Errorf("%w: extends: %w", ErrInvalidMapping, err)
		}
		if t.IsVar() {
			return pc, fmt.Errorf("%w: extends a type parameter", ErrInvalidMapping)
		}
		if _, ok := s.classes[t.Name()]; !ok {
			return pc, fmt.Errorf("%w: supertype %s", ErrUnknownClass, t.Name())
		}
		pc.extends = t
	}

	seen := make(map[string]bool, len(cs.Properties))
	for _, p := range cs.Properties {
		if seen[p.Name] {
			return pc, fmt.Errorf("%w: duplicate property %q", ErrInvalidMapping, p.Name)
		}
		seen[p.Name] = true

		t := types.Any
		if p.Type != "" {
			var err error
			if t, err = types.Parse(p.Type, cs.TypeParams...); err != nil {
				return pc, fmt.Errorf("%w: property %s: %w", ErrInvalidMapping, p.Name, err)
			}
		}
		pc.props = append(pc.props, t)
	}

	for field, expr := range cs.Embeds {
		if _, err := types.ParseList(expr, cs.TypeParams...); err != nil {
			return pc, fmt.Errorf("%w: embeds %s: %w", ErrInvalidMapping, field, err)
		}
	}

	return pc, nil
}

// visit orders classes depth first along extends and reports cycles.
func (s *Set) visit(name string, state map[string]int, path []string) error {
	const (
		visiting = 1
		done     = 2
	)
	switch state[name] {
	case done:
		return nil
	case visiting:
		return fmt.Errorf("%w: %v", ErrExtendsCycle, append(path, name))
	}

	state[name] = visiting
	if ext := s.parsed[name].extends; !ext.IsZero() {
		if err := s.visit(ext.Name(), state, append(path, name)); err != nil {
			return err
		}
	}
	state[name] = done
	s.order = append(s.order, name)

	return nil
}

// Names returns the class names in sorted order.
func (s *Set) Names() []string {
	return slices.Sorted(maps.Keys(s.classes))
}

// Len returns the number of classes.
func (s *Set) Len() int {
	return len(s.classes)
}

// Class returns the declaration of a class.
func (s *Set) Class(name string) (ClassSpec, bool) {
	cs, ok := s.classes[name]
	return cs, ok
}

// ClassConfig returns the configuration for a Go type mapped under name.
// Properties are keyed by Go field name.
func (s *Set) ClassConfig(name string) (pojo.ClassConfig, bool) {
	cs, ok := s.classes[name]
	if !ok {
		return pojo.ClassConfig{}, false
	}

	cfg := pojo.ClassConfig{
		TypeParams:        slices.Clone(cs.TypeParams),
		Embeds:            maps.Clone(cs.Embeds),
		ConstructorParams: slices.Clone(cs.Constructor),
	}
	if len(cs.Properties) > 0 {
		cfg.Properties = make(map[string]pojo.PropertyConfig, len(cs.Properties))
	}
	for _, p := range cs.Properties {
		cfg.Properties[p.Name] = pojo.PropertyConfig{
			SerializedName: p.SerializedName,
			OmitIfDefault:  p.OmitIfDefault,
			Type:           p.Type,
			Ignore:         p.Ignore,
			Overflow:       p.Overflow,
		}
	}

	return cfg, true
}

// Models builds a map-backed class model for every class, supertypes
// first. Instances are map[string]any keyed by property name.
func (s *Set) Models() ([]*pojo.ClassModel, error) {
	built := make(map[string]*pojo.ClassModel, len(s.order))
	out := make([]*pojo.ClassModel, 0, len(s.order))
	for _, name := range s.order {
		m, err := s.model(name, built)
		if err != nil {
			return nil, newError("class "+name, "build", err)
		}
		built[name] = m
		out = append(out, m)
	}

	return out, nil
}

func (s *Set) model(name string, built map[string]*pojo.ClassModel) (*pojo.ClassModel, error) {
	cs := s.classes[name]
	pc := s.parsed[name]

	dc := pojo.DynamicClass{Name: name}
	for _, tp := range cs.TypeParams {
		dc.TypeParams = append(dc.TypeParams, pojo.TypeParam{Name: tp, Bound: pc.bounds[tp]})
	}
	if !pc.extends.IsZero() {
		dc.Extends = built[pc.extends.Name()]
		dc.ExtendsArgs = pc.extends.Args()
	}
	for i, p := range cs.Properties {
		if p.Ignore {
			continue
		}
		dc.Properties = append(dc.Properties, pojo.DynamicProperty{
			Name:           p.Name,
			SerializedName: p.SerializedName,
			Type:           pc.props[i],
			OmitIfDefault:  p.OmitIfDefault,
			Overflow:       p.Overflow,
		})
	}

	return pojo.NewDynamicClass(dc)
}
