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

import (
	"errors"
	"fmt"
	"slices"
)

// ErrSyntax is returned (wrapped in a *ParseError) for malformed type
// expressions.
var ErrSyntax = errors.New("invalid type expression")

// ParseError reports where a type expression failed to parse.
type ParseError struct {
	Expr   string
	Pos    int
	Reason string
}

// Error implements error.
func (e *ParseError) Error() string {
	return fmt.Sprintf("types: %s at offset %d in %q", e.Reason, e.Pos, e.Expr)
}

// Unwrap returns ErrSyntax.
func (e *ParseError) Unwrap() error {
	return ErrSyntax
}

// Parse parses a type expression such as "map<string,list<T>>".
// Identifiers listed in vars are parsed as type variables; every other
// identifier is a named type. Whitespace is ignored.
func Parse(expr string, vars ...string) (Type, error) {
	p := &parser{src: expr, vars: vars}
	t, err := p.parseType()
	if err != nil {
		return Type{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return Type{}, p.errorf("unexpected %q", p.src[p.pos])
	}

	return t, nil
}

// ParseList parses a comma separated list of type expressions, as in
// "string,list<T>". An empty or blank expression yields no types.
func ParseList(expr string, vars ...string) ([]Type, error) {
	p := &parser{src: expr, vars: vars}
	p.skipSpace()
	if p.pos == len(p.src) {
		return nil, nil
	}

	var out []Type
	for {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		p.skipSpace()
		if p.pos == len(p.src) {
			return out, nil
		}
		if p.src[p.pos] != ',' {
			return nil, p.errorf("expected ',', found %q", p.src[p.pos])
		}
		p.pos++
	}
}

// MustParse is like Parse but panics on error.
func MustParse(expr string, vars ...string) Type {
	t, err := Parse(expr, vars...)
	if err != nil {
		panic(err)
	}

	return t
}

type parser struct {
	src  string
	pos  int
	vars []string
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Expr: p.src, Pos: p.pos, Reason: fmt.Sprintf(format, args...)}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) parseType() (Type, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && isIdentByte(p.src[p.pos]) {
		p.pos++
	}
	if start == p.pos {
		if p.pos == len(p.src) {
			return Type{}, p.errorf("unexpected end of expression")
		}
		return Type{}, p.errorf("expected identifier, found %q", p.src[p.pos])
	}
	name := p.src[start:p.pos]

	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '<' {
		if slices.Contains(p.vars, name) {
			return Var(name), nil
		}
		return Named(name), nil
	}
	if slices.Contains(p.vars, name) {
		return Type{}, p.errorf("type variable %s cannot take arguments", name)
	}
	p.pos++ // '<'

	var args []Type
	for {
		arg, err := p.parseType()
		if err != nil {
			return Type{}, err
		}
		args = append(args, arg)
		p.skipSpace()
		if p.pos >= len(p.src) {
			return Type{}, p.errorf("unterminated argument list")
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case '>':
			p.pos++
			return Named(name, args...), nil
		default:
			return Type{}, p.errorf("expected ',' or '>', found %q", p.src[p.pos])
		}
	}
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '.' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
