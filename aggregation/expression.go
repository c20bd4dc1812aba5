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

package aggregation

import (
	"strings"

	"rivaas.dev/odm/codec"
	"rivaas.dev/odm/document"
	"rivaas.dev/odm/internal/reflectx"
)

// Expression is a node of an aggregation expression. Encode writes the
// expression as one value.
type Expression interface {
	Encode(w document.Writer, ctx codec.EncodeContext) error
}

type fieldExpr struct {
	path string
}

// Field references a document field by its dotted path. A leading "$" is
// added unless present, so variables such as "$$ROOT" pass through.
func Field(path string) Expression {
	if !strings.HasPrefix(path, "$") {
		path = "$" + path
	}
	return fieldExpr{path: path}
}

func (e fieldExpr) Encode(w document.Writer, _ codec.EncodeContext) error {
	return w.WriteString(e.path)
}

type valueExpr struct {
	v any
}

// Value is a constant operand encoded with the codec of its Go type.
func Value(v any) Expression {
	return valueExpr{v: v}
}

func (e valueExpr) Encode(w document.Writer, ctx codec.EncodeContext) error {
	return encodeValue(w, e.v, ctx)
}

func encodeValue(w document.Writer, v any, ctx codec.EncodeContext) error {
	if reflectx.IsNil(v) {
		return w.WriteNull()
	}
	c, err := ctx.Registry.LookupValue(v)
	if err != nil {
		return err
	}

	return c.Encode(w, v, ctx)
}

// Literal is a constant that is not parsed as an expression, written as
// {"$literal": v}. Use it for strings starting with "$".
func Literal(v any) Expression {
	return op("$literal", Value(v))
}

// DocumentExpression builds a document whose values are expressions.
type DocumentExpression struct {
	fields []namedExpr
}

type namedExpr struct {
	name string
	expr Expression
}

// Doc returns an empty document expression.
func Doc() *DocumentExpression {
	return &DocumentExpression{}
}

// Add appends a field. Fields are written in insertion order.
func (d *DocumentExpression) Add(name string, expr Expression) *DocumentExpression {
	d.fields = append(d.fields, namedExpr{name: name, expr: expr})
	return d
}

// Len returns the number of fields.
func (d *DocumentExpression) Len() int {
	return len(d.fields)
}

// Encode implements Expression.
func (d *DocumentExpression) Encode(w document.Writer, ctx codec.EncodeContext) error {
	return writeFields(w, d.fields, ctx)
}

// writeFields writes a document of named expressions. A nil expression is
// written as null.
func writeFields(w document.Writer, fields []namedExpr, ctx codec.EncodeContext) error {
	nested, err := ctx.Nested()
	if err != nil {
		return err
	}
	if err := w.WriteStartDocument(); err != nil {
		return err
	}
	for _, f := range fields {
		if err := w.WriteName(f.name); err != nil {
			return err
		}
		if err := writeExpr(w, f.expr, nested); err != nil {
			return codec.WrapEncodeError(f.name, err)
		}
	}

	return w.WriteEndDocument()
}

func writeExpr(w document.Writer, e Expression, ctx codec.EncodeContext) error {
	if reflectx.IsNil(e) {
		return w.WriteNull()
	}

	return e.Encode(w, ctx)
}

// operator is {name: operand} or {name: [operands...]}.
type operator struct {
	name  string
	args  []Expression
	array bool
}

func op(name string, args ...Expression) *operator {
	return &operator{name: name, args: args, array: len(args) != 1}
}

func (o *operator) Encode(w document.Writer, ctx codec.EncodeContext) error {
	nested, err := ctx.Nested()
	if err != nil {
		return err
	}
	if err := w.WriteStartDocument(); err != nil {
		return err
	}
	if err := w.WriteName(o.name); err != nil {
		return err
	}
	if !o.array {
		if err := writeExpr(w, o.args[0], nested); err != nil {
			return codec.WrapEncodeError(o.name, err)
		}
		return w.WriteEndDocument()
	}

	inner, err := nested.Nested()
	if err != nil {
		return err
	}
	if err := w.WriteStartArray(); err != nil {
		return err
	}
	for _, a := range o.args {
		if err := writeExpr(w, a, inner); err != nil {
			return codec.WrapEncodeError(o.name, err)
		}
	}
	if err := w.WriteEndArray(); err != nil {
		return err
	}

	return w.WriteEndDocument()
}
