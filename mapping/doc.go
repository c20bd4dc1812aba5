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

// Package mapping loads class mappings from YAML, TOML or JSON files.
//
// A mapping file lists classes by name:
//
//	classes:
//	  Box:
//	    typeParams: [T]
//	    properties:
//	      - name: value
//	        type: T
//	  Labeled:
//	    typeParams: [V]
//	    extends: Box<list<V>>
//	    properties:
//	      - name: label
//	        serializedName: lbl
//	        type: string
//	        omitIfDefault: true
//
// Files are merged in order: later files override scalar settings and
// replace lists, while nested maps merge key by key. The merged document is
// validated against the embedded JSON Schema before it is decoded.
//
// A [Set] serves two uses. [Set.ClassConfig] turns a class into a
// [pojo.ClassConfig] that configures a Go struct with the same class name.
// [Set.Models] builds map-backed class models for every class, supertypes
// first, for tools that work without Go types.
package mapping
