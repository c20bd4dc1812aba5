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

package types

import "strings"

// Builtin type names understood by the default codec provider.
const (
	NameInt32      = "int32"
	NameInt64      = "int64"
	NameDouble     = "double"
	NameString     = "string"
	NameBool       = "bool"
	NameDateTime   = "datetime"
	NameObjectID   = "objectid"
	NameBinary     = "binary"
	NameDecimal128 = "decimal128"
	NameDocument   = "document"
	NameAny        = "any"
	NameList       = "list"
	NameMap        = "map"
)

// Predeclared scalar types.
var (
	Int32      = Named(NameInt32)
	Int64      = Named(NameInt64)
	Double     = Named(NameDouble)
	String     = Named(NameString)
	Bool       = Named(NameBool)
	DateTime   = Named(NameDateTime)
	ObjectID   = Named(NameObjectID)
	Binary     = Named(NameBinary)
	Decimal128 = Named(NameDecimal128)
	Document   = Named(NameDocument)
	Any        = Named(NameAny)
)

// Type describes a document-level type: either a named type with ordered
// type arguments (e.g. map<string,list<T>>) or a type variable (T).
//
// Type values are immutable. The zero Type is invalid and reports IsZero.
type Type struct {
	name  string
	args  []Type
	isVar bool
}

// Named returns the named type with the given arguments.
func Named(name string, args ...Type) Type {
	t := Type{name: name}
	if len(args) > 0 {
		t.args = append([]Type(nil), args...)
	}

	return t
}

// Var returns the type variable with the given name.
func Var(name string) Type {
	return Type{name: name, isVar: true}
}

// List returns list<elem>.
func List(elem Type) Type {
	return Named(NameList, elem)
}

// Map returns map<key,value>.
func Map(key, value Type) Type {
	return Named(NameMap, key, value)
}

// Name returns the type name, or the variable name for type variables.
func (t Type) Name() string {
	return t.name
}

// Args returns a copy of the type arguments.
func (t Type) Args() []Type {
	if len(t.args) == 0 {
		return nil
	}

	return append([]Type(nil), t.args...)
}

// Arg returns the i-th type argument.
func (t Type) Arg(i int) Type {
	return t.args[i]
}

// NumArgs returns the number of type arguments.
func (t Type) NumArgs() int {
	return len(t.args)
}

// IsVar reports whether t is a type variable.
func (t Type) IsVar() bool {
	return t.isVar
}

// IsZero reports whether t is the zero Type.
func (t Type) IsZero() bool {
	return t.name == "" && !t.isVar && len(t.args) == 0
}

// IsConcrete reports whether t contains no type variables.
func (t Type) IsConcrete() bool {
	if t.isVar {
		return false
	}
	for _, a := range t.args {
		if !a.IsConcrete() {
			return false
		}
	}

	return true
}

// Vars returns the names of the type variables referenced by t, in order of
// first appearance.
func (t Type) Vars() []string {
	var out []string
	seen := make(map[string]bool)
	t.collectVars(&out, seen)

	return out
}

func (t Type) collectVars(out *[]string, seen map[string]bool) {
	if t.isVar {
		if !seen[t.name] {
			seen[t.name] = true
			*out = append(*out, t.name)
		}
		return
	}
	for _, a := range t.args {
		a.collectVars(out, seen)
	}
}

// Equal reports whether t and o describe the same type.
func (t Type) Equal(o Type) bool {
	if t.name != o.name || t.isVar != o.isVar || len(t.args) != len(o.args) {
		return false
	}
	for i := range t.args {
		if !t.args[i].Equal(o.args[i]) {
			return false
		}
	}

	return true
}

// WithArgs returns a copy of t with its arguments replaced.
func (t Type) WithArgs(args ...Type) Type {
	return Named(t.name, args...)
}

// Substitute replaces type variables by their bindings. Unbound variables are
// left in place.
func (t Type) Substitute(bindings map[string]Type) Type {
	if t.isVar {
		if b, ok := bindings[t.name]; ok {
			return b
		}
		return t
	}
	if len(t.args) == 0 {
		return t
	}
	args := make([]Type, len(t.args))
	for i, a := range t.args {
		args[i] = a.Substitute(bindings)
	}

	return Type{name: t.name, args: args}
}

// String renders t in the same syntax accepted by Parse. The result of a
// concrete type is used as a cache key.
func (t Type) String() string {
	if len(t.args) == 0 {
		return t.name
	}
	var sb strings.Builder
	t.write(&sb)

	return sb.String()
}

func (t Type) write(sb *strings.Builder) {
	sb.WriteString(t.name)
	if len(t.args) == 0 {
		return
	}
	sb.WriteByte('<')
	for i, a := range t.args {
		if i > 0 {
			sb.WriteByte(',')
		}
		a.write(sb)
	}
	sb.WriteByte('>')
}
