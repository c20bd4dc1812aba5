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

	"rivaas.dev/odm/codec"
)

// ClassConfig adjusts how a Go struct is mapped. The zero value maps every
// exported field under its lowercased name.
type ClassConfig struct {
	// Name overrides the class name derived from the Go type.
	Name string
	// TypeParams declares the class type parameters, in order. Field types
	// refer to them through PropertyConfig.Type or the odmtype tag.
	TypeParams []string
	// Properties configures fields by Go field name.
	Properties map[string]PropertyConfig
	// Embeds gives the type arguments of embedded generic supertypes, keyed
	// by embedded field name, as a type expression such as "list<T>" or
	// "string,T".
	Embeds map[string]string
	// Constructor is a Go func returning T, *T, (T, error) or (*T, error).
	// Its parameters receive the properties named in ConstructorParams.
	Constructor any
	// ConstructorParams names the properties passed to Constructor.
	ConstructorParams []string
}

// PropertyConfig adjusts one property.
type PropertyConfig struct {
	SerializedName string
	OmitIfDefault  bool
	// Type is a type expression that replaces the type inferred from the
	// field's Go type. It may reference class type parameters.
	Type     string
	Codec    codec.Codec
	Ignore   bool
	Overflow bool
}

// Merge returns c with the non-zero settings of override applied on top.
// Property settings merge per field.
func (c ClassConfig) Merge(override ClassConfig) ClassConfig {
	out := c
	if override.Name != "" {
		out.Name = override.Name
	}
	if len(override.TypeParams) > 0 {
		out.TypeParams = slices.Clone(override.TypeParams)
	}
	if override.Constructor != nil {
		out.Constructor = override.Constructor
	}
	if len(override.ConstructorParams) > 0 {
		out.ConstructorParams = slices.Clone(override.ConstructorParams)
	}

	out.Embeds = maps.Clone(c.Embeds)
	if len(override.Embeds) > 0 && out.Embeds == nil {
		out.Embeds = make(map[string]string, len(override.Embeds))
	}
	maps.Copy(out.Embeds, override.Embeds)

	out.Properties = maps.Clone(c.Properties)
	if len(override.Properties) > 0 && out.Properties == nil {
		out.Properties = make(map[string]PropertyConfig, len(override.Properties))
	}
	for name, p := range override.Properties {
		out.Properties[name] = out.Properties[name].merge(p)
	}

	return out
}

func (p PropertyConfig) merge(o PropertyConfig) PropertyConfig {
	if o.SerializedName != "" {
		p.SerializedName = o.SerializedName
	}
	if o.Type != "" {
		p.Type = o.Type
	}
	if o.Codec != nil {
		p.Codec = o.Codec
	}
	p.OmitIfDefault = p.OmitIfDefault || o.OmitIfDefault
	p.Ignore = p.Ignore || o.Ignore
	p.Overflow = p.Overflow || o.Overflow

	return p
}
