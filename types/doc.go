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

// Package types describes document-level types, including generic ones.
//
// A [Type] is either a named type with ordered arguments or a type variable:
//
//	types.Int32                                  // int32
//	types.List(types.Var("T"))                   // list<T>
//	types.Named("Pair", types.String, types.Any) // Pair<string,any>
//
// Expressions can also be parsed; identifiers passed as vars become type
// variables:
//
//	t := types.MustParse("map<string,list<T>>", "T")
//
// Substitution replaces variables by concrete types and is how generic class
// properties are specialized:
//
//	t.Substitute(map[string]types.Type{"T": types.Int32}) // map<string,list<int32>>
package types
