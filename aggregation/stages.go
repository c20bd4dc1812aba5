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
	"fmt"
	"strings"

	"rivaas.dev/odm/codec"
	"rivaas.dev/odm/document"
)

// Stage is one step of a pipeline. Encode writes the whole stage
// document, {"$project": {...}} for example.
type Stage interface {
	Expression

	// Operator returns the stage operator, e.g. "$match".
	Operator() string
}

// writeStage writes {name: body}.
func writeStage(w document.Writer, name string, body Expression, ctx codec.EncodeContext) error {
	return writeFields(w, []namedExpr{{name: name, expr: body}}, ctx)
}

// ProjectionStage is a $project stage. Fields are either included or
// excluded; computed fields count as included. Only _id may be excluded
// alongside inclusions.
type ProjectionStage struct {
	fields   []namedExpr
	included bool
	excluded bool
}

// Project returns an empty $project stage.
func Project() *ProjectionStage {
	return &ProjectionStage{}
}

// Include keeps the named fields.
func (p *ProjectionStage) Include(names ...string) *ProjectionStage {
	for _, n := range names {
		p.fields = append(p.fields, namedExpr{name: n, expr: Value(true)})
		p.included = true
	}
	return p
}

// Exclude removes the named fields.
func (p *ProjectionStage) Exclude(names ...string) *ProjectionStage {
	for _, n := range names {
		p.fields = append(p.fields, namedExpr{name: n, expr: Value(false)})
		if n != "_id" {
			p.excluded = true
		}
	}
	return p
}

// Add sets a computed field.
func (p *ProjectionStage) Add(name string, expr Expression) *ProjectionStage {
	p.fields = append(p.fields, namedExpr{name: name, expr: expr})
	p.included = true
	return p
}

// Operator implements Stage.
func (p *ProjectionStage) Operator() string { return "$project" }

// Validate reports an empty or mixed projection.
func (p *ProjectionStage) Validate() error {
	if len(p.fields) == 0 {
		return fmt.Errorf("%w: $project", ErrEmptyStage)
	}
	if p.included && p.excluded {
		return ErrMixedProjection
	}
	return nil
}

// Encode implements Expression.
func (p *ProjectionStage) Encode(w document.Writer, ctx codec.EncodeContext) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return writeStage(w, p.Operator(), fieldsExpr(p.fields), ctx)
}

// AddFieldsStage is an $addFields stage.
type AddFieldsStage struct {
	fields []namedExpr
}

// AddFields returns an empty $addFields stage.
func AddFields() *AddFieldsStage {
	return &AddFieldsStage{}
}

// Add sets a field to the value of expr.
func (s *AddFieldsStage) Add(name string, expr Expression) *AddFieldsStage {
	s.fields = append(s.fields, namedExpr{name: name, expr: expr})
	return s
}

// Operator implements Stage.
func (s *AddFieldsStage) Operator() string { return "$addFields" }

// Encode implements Expression.
func (s *AddFieldsStage) Encode(w document.Writer, ctx codec.EncodeContext) error {
	if len(s.fields) == 0 {
		return fmt.Errorf("%w: $addFields", ErrEmptyStage)
	}
	return writeStage(w, s.Operator(), fieldsExpr(s.fields), ctx)
}

type matchStage struct {
	cond Expression
}

// Match filters documents by an expression, written as
// {"$match": {"$expr": cond}}.
func Match(cond Expression) Stage {
	return &matchStage{cond: cond}
}

func (s *matchStage) Operator() string { return "$match" }

func (s *matchStage) Encode(w document.Writer, ctx codec.EncodeContext) error {
	if s.cond == nil {
		return fmt.Errorf("%w: $match", ErrNilExpression)
	}
	return writeStage(w, s.Operator(), fieldsExpr{{name: "$expr", expr: s.cond}}, ctx)
}

// GroupStage is a $group stage.
type GroupStage struct {
	id     Expression
	fields []namedExpr
}

// Group groups by id. A nil id puts all documents in one group.
func Group(id Expression) *GroupStage {
	return &GroupStage{id: id}
}

// Add sets an accumulated field.
func (g *GroupStage) Add(name string, acc Expression) *GroupStage {
	g.fields = append(g.fields, namedExpr{name: name, expr: acc})
	return g
}

// Operator implements Stage.
func (g *GroupStage) Operator() string { return "$group" }

// Encode implements Expression.
func (g *GroupStage) Encode(w document.Writer, ctx codec.EncodeContext) error {
	body := make(fieldsExpr, 0, len(g.fields)+1)
	body = append(body, namedExpr{name: "_id", expr: g.id})
	body = append(body, g.fields...)
	return writeStage(w, g.Operator(), body, ctx)
}

// SortStage is a $sort stage.
type SortStage struct {
	fields []namedExpr
}

// Sort returns an empty $sort stage.
func Sort() *SortStage {
	return &SortStage{}
}

// Asc sorts by the named fields in ascending order.
func (s *SortStage) Asc(names ...string) *SortStage {
	for _, n := range names {
		s.fields = append(s.fields, namedExpr{name: n, expr: Value(int32(1))})
	}
	return s
}

// Desc sorts by the named fields in descending order.
func (s *SortStage) Desc(names ...string) *SortStage {
	for _, n := range names {
		s.fields = append(s.fields, namedExpr{name: n, expr: Value(int32(-1))})
	}
	return s
}

// Operator implements Stage.
func (s *SortStage) Operator() string { return "$sort" }

// Encode implements Expression.
func (s *SortStage) Encode(w document.Writer, ctx codec.EncodeContext) error {
	if len(s.fields) == 0 {
		return fmt.Errorf("%w: $sort", ErrEmptyStage)
	}
	return writeStage(w, s.Operator(), fieldsExpr(s.fields), ctx)
}

// countStage covers the stages taking one number: $limit, $skip and
// $sample.
type countStage struct {
	name  string
	n     int64
	least int64
}

// Limit passes the first n documents. n must be positive.
func Limit(n int64) Stage { return &countStage{name: "$limit", n: n, least: 1} }

// Skip drops the first n documents. n must not be negative.
func Skip(n int64) Stage { return &countStage{name: "$skip", n: n} }

// Sample picks n random documents. n must be positive.
func Sample(n int64) Stage { return &countStage{name: "$sample", n: n, least: 1} }

func (s *countStage) Operator() string { return s.name }

func (s *countStage) Encode(w document.Writer, ctx codec.EncodeContext) error {
	if s.n < s.least {
		return fmt.Errorf("%w: %s %d (minimum %d)", ErrInvalidStage, s.name, s.n, s.least)
	}
	var body Expression = Value(s.n)
	if s.name == "$sample" {
		body = fieldsExpr{{name: "size", expr: body}}
	}
	return writeStage(w, s.name, body, ctx)
}

type countFieldStage struct {
	field string
}

// Count writes the number of documents to field.
func Count(field string) Stage {
	return &countFieldStage{field: field}
}

func (s *countFieldStage) Operator() string { return "$count" }

func (s *countFieldStage) Encode(w document.Writer, ctx codec.EncodeContext) error {
	if s.field == "" || strings.HasPrefix(s.field, "$") || strings.Contains(s.field, ".") {
		return fmt.Errorf("%w: $count field %q", ErrInvalidStage, s.field)
	}
	return writeStage(w, s.Operator(), Value(s.field), ctx)
}

// UnwindStage is an $unwind stage. Without options it is written in the
// short form {"$unwind": "$path"}.
type UnwindStage struct {
	path       string
	indexField string
	preserve   *bool
}

// Unwind deconstructs the array at path into one document per element.
func Unwind(path string) *UnwindStage {
	return &UnwindStage{path: path}
}

// IncludeArrayIndex stores the element index in field.
func (u *UnwindStage) IncludeArrayIndex(field string) *UnwindStage {
	u.indexField = field
	return u
}

// PreserveNullAndEmptyArrays keeps documents whose path is missing, null
// or an empty array.
func (u *UnwindStage) PreserveNullAndEmptyArrays(preserve bool) *UnwindStage {
	u.preserve = &preserve
	return u
}

// Operator implements Stage.
func (u *UnwindStage) Operator() string { return "$unwind" }

// Encode implements Expression.
func (u *UnwindStage) Encode(w document.Writer, ctx codec.EncodeContext) error {
	if strings.TrimPrefix(u.path, "$") == "" {
		return fmt.Errorf("%w: $unwind without a path", ErrInvalidStage)
	}
	path := Field(u.path)
	if u.indexField == "" && u.preserve == nil {
		return writeStage(w, u.Operator(), path, ctx)
	}

	body := fieldsExpr{{name: "path", expr: path}}
	if u.indexField != "" {
		body = append(body, namedExpr{name: "includeArrayIndex", expr: Value(u.indexField)})
	}
	if u.preserve != nil {
		body = append(body, namedExpr{name: "preserveNullAndEmptyArrays", expr: Value(*u.preserve)})
	}
	return writeStage(w, u.Operator(), body, ctx)
}

type replaceRootStage struct {
	root Expression
}

// ReplaceRoot replaces each document with the document root evaluates to.
func ReplaceRoot(root Expression) Stage {
	return &replaceRootStage{root: root}
}

func (s *replaceRootStage) Operator() string { return "$replaceRoot" }

func (s *replaceRootStage) Encode(w document.Writer, ctx codec.EncodeContext) error {
	if s.root == nil {
		return fmt.Errorf("%w: $replaceRoot", ErrNilExpression)
	}
	return writeStage(w, s.Operator(), fieldsExpr{{name: "newRoot", expr: s.root}}, ctx)
}
