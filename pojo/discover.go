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

package pojo

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"rivaas.dev/odm/codec"
	"rivaas.dev/odm/internal/reflectx"
	"rivaas.dev/odm/types"
)

// Struct tags read by Discover.
const (
	// TagName holds the serialized name and options, as in
	// `odm:"name,omitempty"`. Options are omitempty and overflow. A value
	// of "-" skips the field.
	TagName = "odm"
	// TagType holds a type expression replacing the inferred type, as in
	// `odmtype:"list<T>"`.
	TagType = "odmtype"
)

var errorType = reflect.TypeFor[error]()

// Resolver supplies the types of fields met during discovery.
type Resolver interface {
	// TypeOf returns the document type of a field's Go type.
	TypeOf(rt reflect.Type) (types.Type, error)
	// ModelOf returns the class model of an embedded struct type.
	ModelOf(rt reflect.Type) (*ClassModel, error)
}

// Discover builds a class model from a Go struct type.
//
// Exported fields become properties named after the Go field, serialized
// under the lowercased field name unless the odm tag or cfg says otherwise.
// Embedded structs become supertypes whose properties are inherited.
// Field types come from res unless overridden by cfg or the odmtype tag,
// which may reference cfg.TypeParams.
//
// Parameters:
//   - rt: the struct type, or a pointer to it
//   - cfg: per-class configuration
//   - res: resolves field types and embedded models
//
// Errors are *MappingError.
func Discover(rt reflect.Type, cfg ClassConfig, res Resolver) (*ClassModel, error) {
	if rt == nil {
		return nil, &MappingError{Reason: "nil type", Err: ErrNotStruct}
	}
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	name := cfg.Name
	if name == "" {
		name = ClassName(rt)
	}
	if rt.Kind() != reflect.Struct {
		return nil, &MappingError{Class: name, Reason: rt.String(), Err: ErrNotStruct}
	}

	b := NewClassModelBuilder(name).
		TypeParams(cfg.TypeParams...).
		GoType(rt).
		Instance(func() any { return reflect.New(rt).Interface() })

	seen := make(map[string]bool, rt.NumField())
	for i := range rt.NumField() {
		f := rt.Field(i)
		seen[f.Name] = true
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get(TagName)
		if tag == "-" {
			continue
		}
		pc := cfg.Properties[f.Name]
		if pc.Ignore {
			continue
		}
		tagName, tagOpts, _ := strings.Cut(tag, ",")

		if st, ptr, ok := embeddedStruct(f); ok && tagName == "" && pc.Type == "" {
			if err := discoverSuper(b, cfg, res, f, i, st, ptr); err != nil {
				return nil, err
			}
			continue
		}

		typ, err := fieldType(f, pc, cfg.TypeParams, res)
		if err != nil {
			return nil, &MappingError{Class: name, Property: f.Name, Reason: "field type", Err: err}
		}

		serialized := pc.SerializedName
		if serialized == "" {
			serialized = tagName
		}
		if serialized == "" {
			serialized = strings.ToLower(f.Name)
		}

		pb := NewPropertyModelBuilder(f.Name).
			SerializedName(serialized).
			Type(typ).
			Accessor(&fieldAccessor{index: i}).
			OmitIfDefault(pc.OmitIfDefault || hasOption(tagOpts, "omitempty")).
			Codec(pc.Codec)
		if pc.Overflow || hasOption(tagOpts, "overflow") {
			pb.Overflow()
		}
		b.Property(pb)
	}

	for field := range cfg.Properties {
		if !seen[field] {
			return nil, &MappingError{Class: name, Property: field, Reason: "no such field"}
		}
	}

	if cfg.Constructor != nil {
		c, err := reflectConstructor(rt, cfg.Constructor, cfg.ConstructorParams)
		if err != nil {
			return nil, &MappingError{Class: name, Err: err}
		}
		b.Constructor(c)
	}

	return b.Build()
}

func discoverSuper(b *ClassModelBuilder, cfg ClassConfig, res Resolver, f reflect.StructField, index int, st reflect.Type, ptr bool) error {
	super, err := res.ModelOf(st)
	if err != nil {
		return &MappingError{Class: b.name, Property: f.Name, Reason: "embedded type", Err: err}
	}
	args, err := types.ParseList(cfg.Embeds[f.Name], cfg.TypeParams...)
	if err != nil {
		return &MappingError{Class: b.name, Property: f.Name, Reason: "embedded type arguments", Err: err}
	}
	b.extends(super, embeddedWrap(index, ptr), args)

	return nil
}

func embeddedStruct(f reflect.StructField) (reflect.Type, bool, bool) {
	if !f.Anonymous {
		return nil, false, false
	}
	t := f.Type
	ptr := t.Kind() == reflect.Pointer
	if ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || t.PkgPath() == "time" {
		return nil, false, false
	}

	return t, ptr, true
}

func fieldType(f reflect.StructField, pc PropertyConfig, params []string, res Resolver) (types.Type, error) {
	expr := pc.Type
	if expr == "" {
		expr = f.Tag.Get(TagType)
	}
	if expr != "" {
		return types.Parse(expr, params...)
	}

	t, err := res.TypeOf(f.Type)
	if err != nil {
		return types.Type{}, fmt.Errorf("%w: %w", ErrUnresolvableType, err)
	}

	return t, nil
}

func hasOption(opts, name string) bool {
	for opt := range strings.SplitSeq(opts, ",") {
		if strings.TrimSpace(opt) == name {
			return true
		}
	}

	return false
}

// ClassName derives a class name from a Go type. Instantiations of generic
// Go types are flattened, so Box[int32] becomes Box_int32.
func ClassName(rt reflect.Type) string {
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	name := rt.Name()
	if name == "" {
		name = rt.String()
	}

	var sb strings.Builder
	for _, r := range name {
		switch {
		case r == '[' || r == ',' || r == '.' || r == '/' || r == ' ':
			sb.WriteByte('_')
		case r == ']' || r == '*':
		default:
			sb.WriteRune(r)
		}
	}

	return strings.TrimRight(sb.String(), "_")
}

// reflectConstructor adapts a Go func returning T, *T, (T, error) or
// (*T, error) to a Constructor. Arguments are converted to the parameter
// types; a failed conversion is reported under the parameter's name.
func reflectConstructor(rt reflect.Type, fn any, params []string) (Constructor, error) {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func || fv.IsNil() {
		return Constructor{}, fmt.Errorf("%w: %T is not a func", ErrInvalidConstructor, fn)
	}
	ft := fv.Type()
	if ft.IsVariadic() {
		return Constructor{}, fmt.Errorf("%w: variadic constructors are not supported", ErrInvalidConstructor)
	}
	if ft.NumIn() != len(params) {
		return Constructor{}, fmt.Errorf("%w: func takes %d parameters, %d names given", ErrInvalidConstructor, ft.NumIn(), len(params))
	}
	if ft.NumOut() < 1 || ft.NumOut() > 2 ||
		(ft.Out(0) != rt && ft.Out(0) != reflect.PointerTo(rt)) ||
		(ft.NumOut() == 2 && ft.Out(1) != errorType) {
		return Constructor{}, fmt.Errorf("%w: func must return %s or *%s, optionally with an error", ErrInvalidConstructor, rt, rt)
	}

	newFn := func(args []any) (any, error) {
		in := make([]reflect.Value, ft.NumIn())
		for i := range in {
			v := reflect.New(ft.In(i)).Elem()
			if err := reflectx.Assign(v, args[i]); err != nil {
				return nil, codec.WrapDecodeError(params[i], err)
			}
			in[i] = v
		}

		out := fv.Call(in)
		if len(out) == 2 && !out[1].IsNil() {
			return nil, out[1].Interface().(error)
		}
		if out[0].Kind() == reflect.Pointer {
			if out[0].IsNil() {
				return nil, ErrNilInstance
			}
			return out[0].Interface(), nil
		}
		p := reflect.New(rt)
		p.Elem().Set(out[0])

		return p.Interface(), nil
	}

	return Constructor{Params: slices.Clone(params), New: newFn}, nil
}

// asDecodeError reports whether err already carries a document path.
func asDecodeError(err error) bool {
	var de *codec.DecodeError
	return errors.As(err, &de)
}
