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
	"maps"
	"slices"
	"strconv"
	"strings"

	"rivaas.dev/odm/types"
)

// WholeProperty is the property index meaning "the property type itself is
// a class type parameter".
const WholeProperty = -1

type typeParamEntry struct {
	classIndex int
	nested     *TypeParameterMap
}

// TypeParameterMap records which positions of a property's declared type
// are filled by which type parameters of the owning class.
//
// For a class Pair<A,B> with property items of type list<A> the map is
// {0: 0}; for a property of type B it is {WholeProperty: 1}. A position may
// also hold a nested map when the argument at that position is itself a
// generic type, as in list<map<string,T>>.
//
// Maps are immutable once built. The zero value is the empty map.
type TypeParameterMap struct {
	entries map[int]typeParamEntry
}

// TypeParameterMapBuilder accumulates entries for a TypeParameterMap.
type TypeParameterMapBuilder struct {
	entries map[int]typeParamEntry
}

// NewTypeParameterMapBuilder returns an empty builder.
func NewTypeParameterMapBuilder() *TypeParameterMapBuilder {
	return &TypeParameterMapBuilder{entries: make(map[int]typeParamEntry)}
}

// AddIndex records that the whole property is class parameter classIndex.
// A later call replaces the earlier one.
func (b *TypeParameterMapBuilder) AddIndex(classIndex int) *TypeParameterMapBuilder {
	b.entries[WholeProperty] = typeParamEntry{classIndex: classIndex}
	return b
}

// AddPropertyIndex records that type argument propertyIndex of the
// property's type is class parameter classIndex.
func (b *TypeParameterMapBuilder) AddPropertyIndex(propertyIndex, classIndex int) *TypeParameterMapBuilder {
	b.entries[propertyIndex] = typeParamEntry{classIndex: classIndex}
	return b
}

// AddNested records that type argument propertyIndex is itself generic and
// is resolved through m.
func (b *TypeParameterMapBuilder) AddNested(propertyIndex int, m TypeParameterMap) *TypeParameterMapBuilder {
	b.entries[propertyIndex] = typeParamEntry{classIndex: -1, nested: &m}
	return b
}

// Build freezes the builder. It fails with ErrConflictingTypeParameters when
// a whole-property mapping is combined with any other entry. The builder
// may be reused afterwards without affecting the result.
func (b *TypeParameterMapBuilder) Build() (TypeParameterMap, error) {
	if _, ok := b.entries[WholeProperty]; ok && len(b.entries) > 1 {
		return TypeParameterMap{}, ErrConflictingTypeParameters
	}
	if len(b.entries) == 0 {
		return TypeParameterMap{}, nil
	}

	return TypeParameterMap{entries: maps.Clone(b.entries)}, nil
}

// MustBuild is like Build but panics on error.
func (b *TypeParameterMapBuilder) MustBuild() TypeParameterMap {
	m, err := b.Build()
	if err != nil {
		panic(err)
	}

	return m
}

// HasTypeParameters reports whether the map has any entry.
func (m TypeParameterMap) HasTypeParameters() bool {
	return len(m.entries) > 0
}

// WholeProperty returns the class parameter index that the whole property
// maps to, if any.
func (m TypeParameterMap) WholeProperty() (int, bool) {
	e, ok := m.entries[WholeProperty]
	return e.classIndex, ok
}

// ClassIndex returns the class parameter index for a type argument
// position, if the position maps directly to a class parameter.
func (m TypeParameterMap) ClassIndex(propertyIndex int) (int, bool) {
	e, ok := m.entries[propertyIndex]
	if !ok || e.nested != nil {
		return 0, false
	}

	return e.classIndex, true
}

// Nested returns the nested map for a type argument position, if any.
func (m TypeParameterMap) Nested(propertyIndex int) (TypeParameterMap, bool) {
	e, ok := m.entries[propertyIndex]
	if !ok || e.nested == nil {
		return TypeParameterMap{}, false
	}

	return *e.nested, true
}

// PropertyToClassParamIndexMap returns a copy of the direct entries,
// excluding nested ones.
func (m TypeParameterMap) PropertyToClassParamIndexMap() map[int]int {
	out := make(map[int]int, len(m.entries))
	for k, e := range m.entries {
		if e.nested == nil {
			out[k] = e.classIndex
		}
	}

	return out
}

// Equal reports structural equality.
func (m TypeParameterMap) Equal(o TypeParameterMap) bool {
	if len(m.entries) != len(o.entries) {
		return false
	}
	for k, e := range m.entries {
		f, ok := o.entries[k]
		if !ok || e.classIndex != f.classIndex || (e.nested == nil) != (f.nested == nil) {
			return false
		}
		if e.nested != nil && !e.nested.Equal(*f.nested) {
			return false
		}
	}

	return true
}

// Key returns a canonical string for the map. Equal maps have equal keys.
func (m TypeParameterMap) Key() string {
	return m.String()
}

// String renders the map as {-1:0} or {0:1,1:{0:0}}.
func (m TypeParameterMap) String() string {
	keys := slices.Sorted(maps.Keys(m.entries))

	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(k))
		sb.WriteByte(':')
		e := m.entries[k]
		if e.nested != nil {
			sb.WriteString(e.nested.String())
		} else {
			sb.WriteString(strconv.Itoa(e.classIndex))
		}
	}
	sb.WriteByte('}')

	return sb.String()
}

// typeParameterMapFor computes the map of a declared type against the
// owning class's parameter names. It fails with ErrUnresolvableType when
// the type references a variable the class does not declare.
func typeParameterMapFor(t types.Type, params []string) (TypeParameterMap, error) {
	b := NewTypeParameterMapBuilder()
	if t.IsVar() {
		idx := slices.Index(params, t.Name())
		if idx < 0 {
			return TypeParameterMap{}, unresolvableVar(t.Name())
		}
		return b.AddIndex(idx).Build()
	}

	for i := range t.NumArgs() {
		arg := t.Arg(i)
		switch {
		case arg.IsVar():
			idx := slices.Index(params, arg.Name())
			if idx < 0 {
				return TypeParameterMap{}, unresolvableVar(arg.Name())
			}
			b.AddPropertyIndex(i, idx)
		case !arg.IsConcrete():
			nested, err := typeParameterMapFor(arg, params)
			if err != nil {
				return TypeParameterMap{}, err
			}
			b.AddNested(i, nested)
		}
	}

	return b.Build()
}

// specialize substitutes class arguments into a declared type through its
// type parameter map.
func specialize(declared types.Type, m TypeParameterMap, args []types.Type) types.Type {
	if !m.HasTypeParameters() {
		return declared
	}
	if idx, ok := m.WholeProperty(); ok {
		return args[idx]
	}

	out := declared.Args()
	for i := range out {
		if idx, ok := m.ClassIndex(i); ok {
			out[i] = args[idx]
		} else if nested, ok := m.Nested(i); ok {
			out[i] = specialize(out[i], nested, args)
		}
	}

	return declared.WithArgs(out...)
}
