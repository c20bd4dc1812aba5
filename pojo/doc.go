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

// Package pojo maps application classes to documents.
//
// A [ClassModel] lists the properties of a class with their declared
// types. Declared types may reference the class's type parameters, and
// each property records where in its type they occur in a
// [TypeParameterMap]. When a class is used with concrete arguments, the
// [Engine] substitutes them and the class codec looks up one codec per
// property in the [codec.Registry].
//
// # Building Models
//
// Models are built by hand:
//
//	box := pojo.NewClassModelBuilder("Box").
//	    TypeParams("T").
//	    Instance(pojo.NewInstance[Box]()).
//	    Property(pojo.NewPropertyModelBuilder("value").
//	        Type(types.Var("T")).
//	        Accessor(pojo.Field(
//	            func(b *Box) any { return b.Value },
//	            func(b *Box, v any) { b.Value = v },
//	        ))).
//	    MustBuild()
//
// or discovered from Go struct types with [Discover], configured through
// struct tags and [ClassConfig]:
//
//	type Box struct {
//	    Value any `odm:"value" odmtype:"T"`
//	}
//
// Embedded structs are inherited. Their type arguments are given in
// [ClassConfig.Embeds] and may reference the embedding class's own
// parameters, to any depth.
//
// # Codecs
//
// A [Provider] holds registered models and serves their codecs:
//
//	classes := pojo.NewProvider()
//	_ = classes.Register(box)
//	reg := codec.NewRegistry(codec.WithProvider(classes))
//	c, err := reg.Lookup(types.Named("Box", types.Int32))
//
// Decoding stages all values before creating the instance, either with
// the instance function and accessors or with a designated [Constructor].
// On failure no instance is returned. Unknown fields never fail a decode:
// they are collected by the overflow property or discarded, per
// [UnknownFieldPolicy].
package pojo
