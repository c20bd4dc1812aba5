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

	"rivaas.dev/odm/codec"
	"rivaas.dev/odm/types"
)

// PropertyModel describes one property of a class. It is immutable and
// owned by a single ClassModel.
type PropertyModel struct {
	name           string
	serializedName string
	typ            types.Type
	typeParams     TypeParameterMap
	accessor       Accessor
	omitIfDefault  bool
	codec          codec.Codec
	overflow       bool
}

// Name returns the property name.
func (p *PropertyModel) Name() string { return p.name }

// SerializedName returns the document field name.
func (p *PropertyModel) SerializedName() string { return p.serializedName }

// Type returns the declared type, which may reference class type
// parameters.
func (p *PropertyModel) Type() types.Type { return p.typ }

// TypeParameters returns the property's type parameter map.
func (p *PropertyModel) TypeParameters() TypeParameterMap { return p.typeParams }

// Accessor returns the property accessor.
func (p *PropertyModel) Accessor() Accessor { return p.accessor }

// OmitIfDefault reports whether zero values are left out when encoding.
func (p *PropertyModel) OmitIfDefault() bool { return p.omitIfDefault }

// Codec returns the codec override, or nil.
func (p *PropertyModel) Codec() codec.Codec { return p.codec }

// IsOverflow reports whether the property collects unknown fields.
func (p *PropertyModel) IsOverflow() bool { return p.overflow }

// Writable reports whether decoded values can be stored through the
// accessor.
func (p *PropertyModel) Writable() bool {
	w, ok := p.accessor.(writable)
	return !ok || w.CanSet()
}

func (p *PropertyModel) String() string {
	return fmt.Sprintf("%s %s", p.name, p.typ)
}

// PropertyModelBuilder configures a PropertyModel. The owning
// ClassModelBuilder builds it.
type PropertyModelBuilder struct {
	name           string
	serializedName string
	typ            types.Type
	accessor       Accessor
	omitIfDefault  bool
	codec          codec.Codec
	overflow       bool
}

// NewPropertyModelBuilder starts a property called name. The serialized
// name defaults to name.
func NewPropertyModelBuilder(name string) *PropertyModelBuilder {
	return &PropertyModelBuilder{name: name}
}

// SerializedName sets the document field name.
func (b *PropertyModelBuilder) SerializedName(name string) *PropertyModelBuilder {
	b.serializedName = name
	return b
}

// Type sets the declared type.
func (b *PropertyModelBuilder) Type(t types.Type) *PropertyModelBuilder {
	b.typ = t
	return b
}

// Accessor sets the accessor.
func (b *PropertyModelBuilder) Accessor(a Accessor) *PropertyModelBuilder {
	b.accessor = a
	return b
}

// OmitIfDefault leaves zero values out of encoded documents.
func (b *PropertyModelBuilder) OmitIfDefault(omit bool) *PropertyModelBuilder {
	b.omitIfDefault = omit
	return b
}

// Codec overrides the codec resolved from the property type.
func (b *PropertyModelBuilder) Codec(c codec.Codec) *PropertyModelBuilder {
	b.codec = c
	return b
}

// Overflow marks the property as the sink for unknown fields. Its type
// must be document, any or map<string,V> and defaults to map<string,any>.
func (b *PropertyModelBuilder) Overflow() *PropertyModelBuilder {
	b.overflow = true
	return b
}

func (b *PropertyModelBuilder) build(class string, params []string) (*PropertyModel, error) {
	if b.name == "" {
		return nil, &MappingError{Class: class, Reason: "property without a name"}
	}
	if b.accessor == nil {
		return nil, mappingError(class, b.name, ErrMissingAccessor)
	}

	typ := b.typ
	if b.overflow {
		if typ.IsZero() {
			typ = types.Map(types.String, types.Any)
		}
		if !isOverflowType(typ) {
			return nil, &MappingError{Class: class, Property: b.name, Reason: fmt.Sprintf("type %s", typ), Err: ErrInvalidOverflow}
		}
	}
	if typ.IsZero() {
		return nil, &MappingError{Class: class, Property: b.name, Reason: "no type", Err: ErrUnresolvableType}
	}

	return newPropertyModel(class, propertyFields{
		name:           b.name,
		serializedName: b.serializedName,
		typ:            typ,
		accessor:       b.accessor,
		omitIfDefault:  b.omitIfDefault,
		codec:          b.codec,
		overflow:       b.overflow,
	}, params)
}

type propertyFields struct {
	name           string
	serializedName string
	typ            types.Type
	accessor       Accessor
	omitIfDefault  bool
	codec          codec.Codec
	overflow       bool
}

func newPropertyModel(class string, f propertyFields, params []string) (*PropertyModel, error) {
	tpm, err := typeParameterMapFor(f.typ, params)
	if err != nil {
		return nil, mappingError(class, f.name, err)
	}
	if f.serializedName == "" {
		f.serializedName = f.name
	}

	return &PropertyModel{
		name:           f.name,
		serializedName: f.serializedName,
		typ:            f.typ,
		typeParams:     tpm,
		accessor:       f.accessor,
		omitIfDefault:  f.omitIfDefault,
		codec:          f.codec,
		overflow:       f.overflow,
	}, nil
}

func isOverflowType(t types.Type) bool {
	switch t.Name() {
	case types.NameDocument, types.NameAny:
		return t.NumArgs() == 0
	case types.NameMap:
		return t.NumArgs() == 2 && t.Arg(0).Equal(types.String)
	}

	return false
}

func (p *PropertyModel) fields() propertyFields {
	return propertyFields{
		name:           p.name,
		serializedName: p.serializedName,
		typ:            p.typ,
		accessor:       p.accessor,
		omitIfDefault:  p.omitIfDefault,
		codec:          p.codec,
		overflow:       p.overflow,
	}
}
