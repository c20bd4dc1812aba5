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
	"reflect"
	"slices"

	"rivaas.dev/odm/types"
)

// TypeParam is a declared class type parameter. A zero Bound means any.
type TypeParam struct {
	Name  string
	Bound types.Type
}

// Constructor creates instances from decoded property values. Params names
// the properties passed to New, in order; each must match a property name or
// serialized name. Missing values are passed as nil.
type Constructor struct {
	Params []string
	New    func(args []any) (any, error)
}

// NewInstance returns an instance function allocating a zero *T.
func NewInstance[T any]() func() any {
	return func() any { return new(T) }
}

// ClassModel is the immutable description of a mapped class.
type ClassModel struct {
	name         string
	typeParams   []TypeParam
	paramNames   []string
	properties   []*PropertyModel
	byName       map[string]int
	bySerialized map[string]int
	overflow     int
	newInstance  func() any
	ctor         *Constructor
	ctorArgs     []int
	consumed     []bool
	goType       reflect.Type
}

// Name returns the class name.
func (m *ClassModel) Name() string { return m.name }

// TypeParams returns the declared type parameters.
func (m *ClassModel) TypeParams() []TypeParam { return slices.Clone(m.typeParams) }

// TypeParamNames returns the names of the declared type parameters.
func (m *ClassModel) TypeParamNames() []string { return slices.Clone(m.paramNames) }

// HasTypeParameters reports whether the class is generic.
func (m *ClassModel) HasTypeParameters() bool { return len(m.typeParams) > 0 }

// Properties returns the properties in declaration order, inherited ones
// first.
func (m *ClassModel) Properties() []*PropertyModel { return slices.Clone(m.properties) }

// Property returns the property with the given name.
func (m *ClassModel) Property(name string) (*PropertyModel, bool) {
	i, ok := m.byName[name]
	if !ok {
		return nil, false
	}

	return m.properties[i], true
}

// PropertyBySerializedName returns the property stored under a document
// field name.
func (m *ClassModel) PropertyBySerializedName(name string) (*PropertyModel, bool) {
	i, ok := m.bySerialized[name]
	if !ok {
		return nil, false
	}

	return m.properties[i], true
}

// Overflow returns the overflow property, or nil.
func (m *ClassModel) Overflow() *PropertyModel {
	if m.overflow < 0 {
		return nil
	}

	return m.properties[m.overflow]
}

// GoType returns the Go struct type backing the class, or nil for classes
// built without one.
func (m *ClassModel) GoType() reflect.Type { return m.goType }

// Constructor returns the designated constructor, or nil.
func (m *ClassModel) Constructor() *Constructor { return m.ctor }

// Type returns the class type with its own parameters as arguments, as in
// Pair<A,B>.
func (m *ClassModel) Type() types.Type {
	args := make([]types.Type, len(m.paramNames))
	for i, n := range m.paramNames {
		args[i] = types.Var(n)
	}

	return types.Named(m.name, args...)
}

func (m *ClassModel) String() string {
	return m.Type().String()
}

type superRef struct {
	model *ClassModel
	args  []types.Type
	wrap  func(Accessor) Accessor
}

// ClassModelBuilder assembles a ClassModel.
type ClassModelBuilder struct {
	name        string
	typeParams  []TypeParam
	props       []*PropertyModelBuilder
	supers      []superRef
	newInstance func() any
	ctor        *Constructor
	goType      reflect.Type
}

// NewClassModelBuilder starts a class called name.
func NewClassModelBuilder(name string) *ClassModelBuilder {
	return &ClassModelBuilder{name: name}
}

// TypeParams declares unbounded type parameters.
func (b *ClassModelBuilder) TypeParams(names ...string) *ClassModelBuilder {
	for _, n := range names {
		b.typeParams = append(b.typeParams, TypeParam{Name: n})
	}

	return b
}

// TypeParam declares a type parameter with a bound used when the class is
// resolved without that argument.
func (b *ClassModelBuilder) TypeParam(name string, bound types.Type) *ClassModelBuilder {
	b.typeParams = append(b.typeParams, TypeParam{Name: name, Bound: bound})
	return b
}

// Property adds a property. Properties are kept in the order added.
func (b *ClassModelBuilder) Property(p *PropertyModelBuilder) *ClassModelBuilder {
	b.props = append(b.props, p)
	return b
}

// Extends inherits the properties of super, binding its type parameters to
// args. Arguments may reference this class's type parameters. Missing
// trailing arguments fall back to the super's bounds.
func (b *ClassModelBuilder) Extends(super *ClassModel, args ...types.Type) *ClassModelBuilder {
	return b.extends(super, nil, args)
}

func (b *ClassModelBuilder) extends(super *ClassModel, wrap func(Accessor) Accessor, args []types.Type) *ClassModelBuilder {
	b.supers = append(b.supers, superRef{model: super, args: args, wrap: wrap})
	return b
}

// Instance sets the function allocating empty instances. Decoded values
// are stored through the property accessors.
func (b *ClassModelBuilder) Instance(fn func() any) *ClassModelBuilder {
	b.newInstance = fn
	return b
}

// Constructor designates a constructor. Properties it does not consume are
// still set through their accessors.
func (b *ClassModelBuilder) Constructor(c Constructor) *ClassModelBuilder {
	b.ctor = &c
	return b
}

// GoType records the Go type of instances.
func (b *ClassModelBuilder) GoType(rt reflect.Type) *ClassModelBuilder {
	b.goType = rt
	return b
}

// Build validates the configuration and returns the model. All problems
// are reported as *MappingError.
func (b *ClassModelBuilder) Build() (*ClassModel, error) {
	if b.name == "" {
		return nil, &MappingError{Reason: "class without a name"}
	}

	params := make([]string, 0, len(b.typeParams))
	typeParams := make([]TypeParam, 0, len(b.typeParams))
	for _, tp := range b.typeParams {
		if tp.Name == "" || slices.Contains(params, tp.Name) {
			return nil, &MappingError{Class: b.name, Reason: fmt.Sprintf("type parameter %q", tp.Name), Err: ErrDuplicateTypeParameter}
		}
		if tp.Bound.IsZero() {
			tp.Bound = types.Any
		}
		if !tp.Bound.IsConcrete() {
			return nil, &MappingError{Class: b.name, Reason: fmt.Sprintf("bound of %s is not concrete", tp.Name), Err: ErrUnresolvableType}
		}
		params = append(params, tp.Name)
		typeParams = append(typeParams, tp)
	}

	props, err := b.inherited(params)
	if err != nil {
		return nil, err
	}

	own := make(map[string]bool, len(b.props))
	for _, pb := range b.props {
		if own[pb.name] {
			return nil, mappingError(b.name, pb.name, ErrDuplicateProperty)
		}
		own[pb.name] = true

		p, err := pb.build(b.name, params)
		if err != nil {
			return nil, err
		}
		if i := slices.IndexFunc(props, func(q *PropertyModel) bool { return q.name == p.name }); i >= 0 {
			props[i] = p
		} else {
			props = append(props, p)
		}
	}

	m := &ClassModel{
		name:         b.name,
		typeParams:   typeParams,
		paramNames:   params,
		properties:   props,
		byName:       make(map[string]int, len(props)),
		bySerialized: make(map[string]int, len(props)),
		overflow:     -1,
		newInstance:  b.newInstance,
		goType:       b.goType,
	}
	for i, p := range props {
		m.byName[p.name] = i
		if j, dup := m.bySerialized[p.serializedName]; dup {
			return nil, &MappingError{
				Class:    b.name,
				Property: p.name,
				Reason:   fmt.Sprintf("serialized name %q already used by %s", p.serializedName, props[j].name),
				Err:      ErrDuplicateProperty,
			}
		}
		m.bySerialized[p.serializedName] = i
		if p.overflow {
			if m.overflow >= 0 {
				return nil, &MappingError{Class: b.name, Property: p.name, Reason: "more than one overflow property", Err: ErrInvalidOverflow}
			}
			m.overflow = i
		}
	}

	if err := m.bindCreator(b.ctor); err != nil {
		return nil, err
	}

	return m, nil
}

// MustBuild is like Build but panics on error.
func (b *ClassModelBuilder) MustBuild() *ClassModel {
	m, err := b.Build()
	if err != nil {
		panic(err)
	}

	return m
}

func (m *ClassModel) bindCreator(ctor *Constructor) error {
	if ctor == nil {
		if m.newInstance == nil {
			return mappingError(m.name, "", ErrMissingCreator)
		}
		return nil
	}
	if ctor.New == nil {
		return &MappingError{Class: m.name, Reason: "constructor without a function", Err: ErrInvalidConstructor}
	}

	m.ctor = ctor
	m.ctorArgs = make([]int, len(ctor.Params))
	m.consumed = make([]bool, len(m.properties))
	for i, param := range ctor.Params {
		idx, ok := m.byName[param]
		if !ok {
			idx, ok = m.bySerialized[param]
		}
		if !ok {
			return &MappingError{Class: m.name, Reason: fmt.Sprintf("parameter %q", param), Err: ErrUnmatchedConstructorParameter}
		}
		if m.consumed[idx] {
			return &MappingError{Class: m.name, Property: m.properties[idx].name, Reason: "bound to more than one constructor parameter", Err: ErrInvalidConstructor}
		}
		m.ctorArgs[i] = idx
		m.consumed[idx] = true
	}

	return nil
}
