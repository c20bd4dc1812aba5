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

// Package codec provides the codec registry and the builtin codecs.
//
// A [Codec] encodes values of one concrete document type to a
// [document.Writer] and decodes them back from a [document.Reader].
// Codecs are obtained from a [Registry], which asks its providers in order
// and caches the result per type:
//
//	reg := codec.NewRegistry(codec.WithProvider(classes))
//	c, err := reg.Lookup(types.List(types.Int32))
//
// # Builtin Types
//
// The builtin provider serves int32, int64, double, string, bool,
// datetime, objectid, binary, decimal128, document, any, list<E> and
// map<string,V>. Numeric codecs accept lossless conversions between BSON
// number types on decode; anything else is a [TypeMismatchError].
//
// # Go Types
//
// [Registry.TypeOf] maps Go types to document types. Registered types win,
// then registered interfaces, then Go kinds (slices become lists, maps with
// string keys become maps). Struct types are handed to the optional
// [TypeResolver].
//
// # Errors
//
// Decode failures are returned as [DecodeError] values carrying the path to
// the failing element, e.g. "items.2.value".
package codec
