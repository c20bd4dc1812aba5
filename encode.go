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

package odm

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"

	"rivaas.dev/odm/aggregation"
	"rivaas.dev/odm/codec"
	"rivaas.dev/odm/document"
	"rivaas.dev/odm/internal/reflectx"
	"rivaas.dev/odm/types"
)

// Encode writes v with the codec of its Go type.
func (m *Mapper) Encode(w document.Writer, v any) error {
	t, err := m.TypeOf(reflect.TypeOf(v))
	if err != nil {
		return err
	}

	return m.registry.Encode(w, v, t)
}

// EncodeAs writes v with the codec of t. Use it for instantiations of
// generic classes, e.g. types.Named("Box", types.Int32).
func (m *Mapper) EncodeAs(w document.Writer, v any, t types.Type) error {
	if err := m.prepare(reflect.TypeOf(v)); err != nil {
		return err
	}

	return m.registry.Encode(w, v, t)
}

// Decode reads the value under the cursor with the codec of t. Class
// instances are returned as pointers to their Go type, or as map[string]any
// for map-backed classes.
func (m *Mapper) Decode(r document.Reader, t types.Type) (any, error) {
	return m.registry.Decode(r, t)
}

// DecodeInto reads the value under the cursor into dst, which must be a
// non-nil pointer. The codec follows from the type dst points to.
func (m *Mapper) DecodeInto(r document.Reader, dst any) error {
	target, err := targetOf(dst)
	if err != nil {
		return err
	}
	t, err := m.TypeOf(target.Type())
	if err != nil {
		return err
	}

	return m.decodeInto(r, t, target)
}

// DecodeAsInto reads the value under the cursor with the codec of t and
// stores it in dst.
func (m *Mapper) DecodeAsInto(r document.Reader, t types.Type, dst any) error {
	target, err := targetOf(dst)
	if err != nil {
		return err
	}
	if err := m.prepare(target.Type()); err != nil {
		return err
	}

	return m.decodeInto(r, t, target)
}

func (m *Mapper) decodeInto(r document.Reader, t types.Type, target reflect.Value) error {
	v, err := m.registry.Decode(r, t)
	if err != nil {
		return err
	}

	return reflectx.Assign(target, v)
}

// DecodeWith decodes the value under the cursor into a new T.
func DecodeWith[T any](m *Mapper, r document.Reader) (T, error) {
	var out T
	err := m.DecodeInto(r, &out)

	return out, err
}

// Marshal encodes v as a BSON document.
func (m *Mapper) Marshal(v any) ([]byte, error) {
	return m.marshal(func(w document.Writer) error { return m.Encode(w, v) })
}

// MarshalAs encodes v as a BSON document with the codec of t.
func (m *Mapper) MarshalAs(v any, t types.Type) ([]byte, error) {
	return m.marshal(func(w document.Writer) error { return m.EncodeAs(w, v, t) })
}

func (m *Mapper) marshal(encode func(document.Writer) error) ([]byte, error) {
	var buf bytes.Buffer
	w, err := document.NewBSONWriter(&buf)
	if err != nil {
		return nil, err
	}
	if err := encode(w); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Unmarshal decodes a BSON document into dst.
func (m *Mapper) Unmarshal(data []byte, dst any) error {
	return m.DecodeInto(document.NewBSONReader(data), dst)
}

// UnmarshalAs decodes a BSON document with the codec of t.
func (m *Mapper) UnmarshalAs(data []byte, t types.Type) (any, error) {
	return m.Decode(document.NewBSONReader(data), t)
}

// UnmarshalWith decodes a BSON document into a new T.
func UnmarshalWith[T any](m *Mapper, data []byte) (T, error) {
	return DecodeWith[T](m, document.NewBSONReader(data))
}

// MarshalExtJSON encodes v as Extended JSON, canonical or relaxed.
func (m *Mapper) MarshalExtJSON(v any, canonical bool) ([]byte, error) {
	var buf bytes.Buffer
	w, err := document.NewExtJSONWriter(&buf, canonical)
	if err != nil {
		return nil, err
	}
	if err := m.Encode(w, v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// UnmarshalExtJSON decodes Extended JSON, canonical or relaxed, into dst.
func (m *Mapper) UnmarshalExtJSON(data []byte, dst any) error {
	r, err := document.NewExtJSONReader(bytes.NewReader(data), false)
	if err != nil {
		return err
	}

	return m.DecodeInto(r, dst)
}

// MarshalMsgPack encodes v as a MessagePack map.
func (m *Mapper) MarshalMsgPack(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := m.Encode(document.NewMsgPackWriter(&buf), v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// UnmarshalMsgPack decodes a MessagePack map into dst.
func (m *Mapper) UnmarshalMsgPack(data []byte, dst any) error {
	r, err := document.NewMsgPackReader(data)
	if err != nil {
		return err
	}

	return m.DecodeInto(r, dst)
}

// ToDocument encodes v into an in-memory document.
func (m *Mapper) ToDocument(v any) (bson.D, error) {
	w := document.NewWriter()
	if err := m.Encode(w, v); err != nil {
		return nil, err
	}

	return w.Document(), nil
}

// FromDocument decodes an in-memory document into dst.
func (m *Mapper) FromDocument(d bson.D, dst any) error {
	return m.DecodeInto(document.NewReader(d), dst)
}

// FromDocumentWith decodes an in-memory document into a new T.
func FromDocumentWith[T any](m *Mapper, d bson.D) (T, error) {
	return DecodeWith[T](m, document.NewReader(d))
}

// Pipeline encodes aggregation stages. Values embedded in expressions are
// encoded with this Mapper's codecs.
func (m *Mapper) Pipeline(stages ...aggregation.Stage) (bson.A, error) {
	return aggregation.Encode(m.registry, stages...)
}

// prepare discovers the struct types within rt so that codecs looked up
// by name find them registered. Types the registry cannot map are left to
// the codec selected by the caller.
func (m *Mapper) prepare(rt reflect.Type) error {
	if _, err := m.TypeOf(rt); err != nil && !errors.Is(err, codec.ErrUnmappedType) {
		return err
	}

	return nil
}

func targetOf(dst any) (reflect.Value, error) {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return reflect.Value{}, fmt.Errorf("%w: got %T", ErrInvalidTarget, dst)
	}

	return rv.Elem(), nil
}
