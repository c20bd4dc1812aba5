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

// File is the decoded form of a mapping document.
type File struct {
	Classes map[string]ClassSpec `mapstructure:"classes"`
}

// ClassSpec describes one class.
type ClassSpec struct {
	// TypeParams declares the type parameters in order.
	TypeParams []string `mapstructure:"typeParams"`
	// Bounds maps a type parameter to the type used when the class is
	// resolved without that argument.
	Bounds map[string]string `mapstructure:"bounds"`
	// Extends is the supertype with its arguments, e.g. "Base<list<T>>".
	// Only map-backed models use it; Go types declare supertypes by
	// embedding.
	Extends string `mapstructure:"extends"`
	// Properties in encoding order.
	Properties []PropertySpec `mapstructure:"properties"`
	// Constructor names the properties passed to a Go constructor.
	Constructor []string `mapstructure:"constructor"`
	// Embeds gives the type arguments of embedded Go structs by field name.
	Embeds map[string]string `mapstructure:"embeds"`
}

// PropertySpec describes one property. For Go types, Name is the Go field
// name.
type PropertySpec struct {
	Name           string `mapstructure:"name"`
	SerializedName string `mapstructure:"serializedName"`
	// Type is a type expression; empty means any for map-backed models and
	// the inferred type for Go fields.
	Type          string `mapstructure:"type"`
	OmitIfDefault bool   `mapstructure:"omitIfDefault"`
	Ignore        bool   `mapstructure:"ignore"`
	Overflow      bool   `mapstructure:"overflow"`
}
