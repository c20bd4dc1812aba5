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

package codec

import (
	"reflect"
	"slices"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"

	"rivaas.dev/odm/document"
	"rivaas.dev/odm/internal/reflectx"
	"rivaas.dev/odm/types"
)

// listCodec handles list<E>. Decoded values are slices of E's Go type.
type listCodec struct {
	typ    types.Type
	elem   Codec
	goType reflect.Type
}

// NewListCodec returns the codec for list<elem>.
func NewListCodec(elem Codec, elemType types.Type) Codec {
	return &listCodec{
		typ:    types.List(elemType),
		elem:   elem,
		goType: reflect.SliceOf(elem.GoType()),
	}
}

func (c *listCodec) GoType() reflect.Type { return c.goType }

func (c *listCodec) Encode(w document.Writer, v any, ctx EncodeContext) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return invalidValue(v, c.typ)
	}
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		return w.WriteNull()
	}
	nested, err := ctx.Nested()
	if err != nil {
		return err
	}

	if err := w.WriteStartArray(); err != nil {
		return err
	}
	for i := range rv.Len() {
		e := rv.Index(i).Interface()
		if reflectx.IsNil(e) {
			if err := w.WriteNull(); err != nil {
				return err
			}
			continue
		}
		if err := c.elem.Encode(w, e, nested); err != nil {
			return WrapEncodeError(strconv.Itoa(i), err)
		}
	}

	return w.WriteEndArray()
}

func (c *listCodec) Decode(r document.Reader, ctx DecodeContext) (any, error) {
	if t := r.CurrentType(); t != document.TypeArray {
		return nil, mismatch(c.typ, t)
	}
	nested, err := ctx.Nested()
	if err != nil {
		return nil, err
	}
	if err := r.ReadStartArray(); err != nil {
		return nil, err
	}

	elemType := c.goType.Elem()
	out := reflect.MakeSlice(c.goType, 0, 4)
	for i := 0; ; i++ {
		t, err := r.ReadType()
		if err != nil {
			return nil, err
		}
		if t == document.EndOfDocument {
			break
		}
		ev := reflect.New(elemType).Elem()
		if t == document.TypeNull {
			if err := r.ReadNull(); err != nil {
				return nil, err
			}
			out = reflect.Append(out, ev)
			continue
		}
		v, err := c.elem.Decode(r, nested)
		if err != nil {
			return nil, WrapDecodeError(strconv.Itoa(i), err)
		}
		if err := reflectx.Assign(ev, v); err != nil {
			return nil, WrapDecodeError(strconv.Itoa(i), err)
		}
		out = reflect.Append(out, ev)
	}
	if err := r.ReadEndArray(); err != nil {
		return nil, err
	}

	return out.Interface(), nil
}

// mapCodec handles map<string,V>. Decoded values are maps from string to
// V's Go type. Encoding writes keys in sorted order; ordered bson.D input
// keeps its order.
type mapCodec struct {
	typ    types.Type
	value  Codec
	goType reflect.Type
}

// NewMapCodec returns the codec for map<string,value>.
func NewMapCodec(value Codec, valueType types.Type) Codec {
	return &mapCodec{
		typ:    types.Map(types.String, valueType),
		value:  value,
		goType: reflect.MapOf(stringType, value.GoType()),
	}
}

func (c *mapCodec) GoType() reflect.Type { return c.goType }

func (c *mapCodec) Encode(w document.Writer, v any, ctx EncodeContext) error {
	entries, ok := Entries(v)
	if !ok {
		return invalidValue(v, c.typ)
	}
	if entries == nil {
		return w.WriteNull()
	}
	nested, err := ctx.Nested()
	if err != nil {
		return err
	}

	if err := w.WriteStartDocument(); err != nil {
		return err
	}
	for _, e := range entries {
		if err := w.WriteName(e.Key); err != nil {
			return err
		}
		if reflectx.IsNil(e.Value) {
			if err := w.WriteNull(); err != nil {
				return err
			}
			continue
		}
		if err := c.value.Encode(w, e.Value, nested); err != nil {
			return WrapEncodeError(e.Key, err)
		}
	}

	return w.WriteEndDocument()
}

func (c *mapCodec) Decode(r document.Reader, ctx DecodeContext) (any, error) {
	if t := r.CurrentType(); t != document.TypeDocument {
		return nil, mismatch(c.typ, t)
	}
	nested, err := ctx.Nested()
	if err != nil {
		return nil, err
	}
	if err := r.ReadStartDocument(); err != nil {
		return nil, err
	}

	elemType := c.goType.Elem()
	out := reflect.MakeMap(c.goType)
	for {
		t, err := r.ReadType()
		if err != nil {
			return nil, err
		}
		if t == document.EndOfDocument {
			break
		}
		name, err := r.ReadName()
		if err != nil {
			return nil, err
		}
		ev := reflect.New(elemType).Elem()
		if t == document.TypeNull {
			if err := r.ReadNull(); err != nil {
				return nil, err
			}
			out.SetMapIndex(reflect.ValueOf(name), ev)
			continue
		}
		v, err := c.value.Decode(r, nested)
		if err != nil {
			return nil, WrapDecodeError(name, err)
		}
		if err := reflectx.Assign(ev, v); err != nil {
			return nil, WrapDecodeError(name, err)
		}
		out.SetMapIndex(reflect.ValueOf(name), ev)
	}
	if err := r.ReadEndDocument(); err != nil {
		return nil, err
	}

	return out.Interface(), nil
}

// Entries returns the entries of a document-like value: bson.D keeps
// its order, maps with string keys are sorted. A nil map yields nil, true.
func Entries(v any) (bson.D, bool) {
	if d, ok := v.(bson.D); ok {
		if d == nil {
			return nil, true
		}
		return d, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	if rv.IsNil() {
		return nil, true
	}
	keys := make([]string, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		keys = append(keys, k.String())
	}
	slices.Sort(keys)

	entries := make(bson.D, 0, len(keys))
	for _, k := range keys {
		val := rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()))
		entries = append(entries, bson.E{Key: k, Value: val.Interface()})
	}

	return entries, true
}
