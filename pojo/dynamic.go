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
	"rivaas.dev/odm/types"
)

// DynamicClass describes a class without a Go type. Instances are
// map[string]any keyed by property name.
type DynamicClass struct {
	Name       string
	TypeParams []TypeParam
	// Extends is an optional dynamic supertype, bound to ExtendsArgs.
	Extends     *ClassModel
	ExtendsArgs []types.Type
	Properties  []DynamicProperty
}

// DynamicProperty describes one property of a DynamicClass.
type DynamicProperty struct {
	Name           string
	SerializedName string
	Type           types.Type
	OmitIfDefault  bool
	Overflow       bool
}

// NewDynamicClass builds a map-backed class model.
func NewDynamicClass(dc DynamicClass) (*ClassModel, error) {
	b := NewClassModelBuilder(dc.Name).
		Instance(func() any { return make(map[string]any) })
	for _, tp := range dc.TypeParams {
		b.TypeParam(tp.Name, tp.Bound)
	}
	if dc.Extends != nil {
		b.Extends(dc.Extends, dc.ExtendsArgs...)
	}

	for _, dp := range dc.Properties {
		pb := NewPropertyModelBuilder(dp.Name).
			SerializedName(dp.SerializedName).
			Type(dp.Type).
			Accessor(MapKey(dp.Name)).
			OmitIfDefault(dp.OmitIfDefault)
		if dp.Overflow {
			pb.Overflow()
		}
		b.Property(pb)
	}

	return b.Build()
}
