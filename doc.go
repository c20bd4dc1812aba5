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

// Package odm maps Go values to documents and back.
//
// A [Mapper] ties together the class models of package pojo, the codec
// registry of package codec, the document backends of package document and
// the pipeline builders of package aggregation. Struct types are discovered
// on first use; no registration is needed for plain structs:
//
//	type Account struct {
//	    ID   primitive.ObjectID `odm:"_id"`
//	    Name string
//	}
//
//	m := odm.MustNew()
//	data, err := m.Marshal(Account{Name: "ann"})
//	acct, err := odm.UnmarshalWith[Account](m, data)
//
// # Generic Classes
//
// Classes with type parameters declare them through [pojo.ClassConfig] and
// reference them in odmtype tags. Their instantiations are selected with a
// type descriptor:
//
//	type Box struct {
//	    Value any `odm:"value" odmtype:"T"`
//	}
//
//	m.Map(reflect.TypeFor[Box](), pojo.ClassConfig{TypeParams: []string{"T"}})
//	data, err := m.MarshalAs(Box{Value: int32(1)}, types.Named("Box", types.Int32))
//
// # Mapping Files
//
// Class configuration can live in YAML, TOML or JSON files loaded with
// package mapping and passed with [WithMappings]. Settings given in code
// with [Mapper.Map] win per property.
//
// # Formats
//
// BSON ([Mapper.Marshal]), Extended JSON ([Mapper.MarshalExtJSON]),
// MessagePack ([Mapper.MarshalMsgPack]) and in-memory documents
// ([Mapper.ToDocument]) share the same codecs.
package odm
