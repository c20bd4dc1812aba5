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

package document

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type readFrame struct {
	doc   bson.D
	arr   []any
	isDoc bool
	idx   int
	name  string
	named bool
	ended bool
}

func (f *readFrame) len() int {
	if f.isDoc {
		return len(f.doc)
	}
	return len(f.arr)
}

// MemoryReader reads native driver values (bson.D, bson.M, bson.A, Go
// scalars) through the Reader interface.
type MemoryReader struct {
	stack   []*readFrame
	cur     any
	curType Type
	pending bool
}

var _ Reader = (*MemoryReader)(nil)

// NewReader returns a reader positioned on the document d.
func NewReader(d bson.D) *MemoryReader {
	return NewValueReader(d)
}

// NewValueReader returns a reader positioned on an arbitrary value.
// Unsupported values surface as ErrUnsupportedType on the first read.
func NewValueReader(v any) *MemoryReader {
	t, _ := TypeOf(v)
	return &MemoryReader{cur: v, curType: t, pending: true}
}

func (r *MemoryReader) top() *readFrame {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

func (r *MemoryReader) take(want Type) (any, error) {
	if !r.pending {
		return nil, fmt.Errorf("%w: no value under the cursor", ErrInvalidState)
	}
	if r.curType != want {
		if r.curType == 0 {
			return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, r.cur)
		}
		return nil, fmt.Errorf("%w: cannot read %s as %s", ErrTypeMismatch, r.curType, want)
	}
	r.pending = false
	if f := r.top(); f != nil {
		f.named = false
	}

	return r.cur, nil
}

func (r *MemoryReader) ReadStartDocument() error {
	v, err := r.take(TypeDocument)
	if err != nil {
		return err
	}
	r.stack = append(r.stack, &readFrame{doc: toD(v), isDoc: true})

	return nil
}

func (r *MemoryReader) ReadEndDocument() error {
	f := r.top()
	if f == nil || !f.isDoc || !f.ended {
		return fmt.Errorf("%w: document not exhausted", ErrInvalidState)
	}
	r.stack = r.stack[:len(r.stack)-1]
	r.curType = TypeDocument

	return nil
}

func (r *MemoryReader) ReadStartArray() error {
	v, err := r.take(TypeArray)
	if err != nil {
		return err
	}
	r.stack = append(r.stack, &readFrame{arr: toA(v)})

	return nil
}

func (r *MemoryReader) ReadEndArray() error {
	f := r.top()
	if f == nil || f.isDoc || !f.ended {
		return fmt.Errorf("%w: array not exhausted", ErrInvalidState)
	}
	r.stack = r.stack[:len(r.stack)-1]
	r.curType = TypeArray

	return nil
}

func (r *MemoryReader) ReadType() (Type, error) {
	f := r.top()
	if f == nil {
		return 0, fmt.Errorf("%w: ReadType outside a container", ErrInvalidState)
	}
	if r.pending {
		return 0, fmt.Errorf("%w: previous value was neither read nor skipped", ErrInvalidState)
	}
	if f.idx >= f.len() {
		f.ended = true
		r.curType = EndOfDocument
		return EndOfDocument, nil
	}
	if f.isDoc {
		e := f.doc[f.idx]
		f.name, f.named = e.Key, true
		r.cur = e.Value
	} else {
		r.cur = f.arr[f.idx]
	}
	f.idx++
	r.pending = true

	t, err := TypeOf(r.cur)
	if err != nil {
		r.curType = 0
		return 0, err
	}
	r.curType = t

	return t, nil
}

func (r *MemoryReader) CurrentType() Type {
	return r.curType
}

func (r *MemoryReader) ReadName() (string, error) {
	f := r.top()
	if f == nil || !f.isDoc || !f.named {
		return "", fmt.Errorf("%w: no element name under the cursor", ErrInvalidState)
	}
	f.named = false

	return f.name, nil
}

func (r *MemoryReader) ReadNull() error {
	_, err := r.take(TypeNull)
	return err
}

func (r *MemoryReader) ReadBoolean() (bool, error) {
	v, err := r.take(TypeBoolean)
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (r *MemoryReader) ReadInt32() (int32, error) {
	v, err := r.take(TypeInt32)
	if err != nil {
		return 0, err
	}
	i, _ := asInt64(v)

	return int32(i), nil
}

func (r *MemoryReader) ReadInt64() (int64, error) {
	v, err := r.take(TypeInt64)
	if err != nil {
		return 0, err
	}
	i, _ := asInt64(v)

	return i, nil
}

func (r *MemoryReader) ReadDouble() (float64, error) {
	v, err := r.take(TypeDouble)
	if err != nil {
		return 0, err
	}
	if f, ok := v.(float32); ok {
		return float64(f), nil
	}

	return v.(float64), nil
}

func (r *MemoryReader) ReadString() (string, error) {
	v, err := r.take(TypeString)
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (r *MemoryReader) ReadDateTime() (int64, error) {
	v, err := r.take(TypeDateTime)
	if err != nil {
		return 0, err
	}
	if t, ok := v.(time.Time); ok {
		return t.UnixMilli(), nil
	}

	return int64(v.(primitive.DateTime)), nil
}

func (r *MemoryReader) ReadObjectID() (primitive.ObjectID, error) {
	v, err := r.take(TypeObjectID)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return v.(primitive.ObjectID), nil
}

func (r *MemoryReader) ReadBinary() (byte, []byte, error) {
	v, err := r.take(TypeBinary)
	if err != nil {
		return 0, nil, err
	}
	if b, ok := v.(primitive.Binary); ok {
		return b.Subtype, b.Data, nil
	}

	return 0, v.([]byte), nil
}

func (r *MemoryReader) ReadDecimal128() (primitive.Decimal128, error) {
	v, err := r.take(TypeDecimal128)
	if err != nil {
		return primitive.Decimal128{}, err
	}
	return v.(primitive.Decimal128), nil
}

func (r *MemoryReader) Skip() error {
	if !r.pending {
		return fmt.Errorf("%w: no value to skip", ErrInvalidState)
	}
	r.pending = false
	if f := r.top(); f != nil {
		f.named = false
	}

	return nil
}

// TypeOf classifies a native value. Plain Go ints that fit in 32 bits are
// reported as int32, matching the driver's default encoding.
func TypeOf(v any) (Type, error) {
	switch x := v.(type) {
	case nil, primitive.Null:
		return TypeNull, nil
	case bool:
		return TypeBoolean, nil
	case int8, int16, int32, uint8, uint16:
		return TypeInt32, nil
	case int:
		if x >= math.MinInt32 && x <= math.MaxInt32 {
			return TypeInt32, nil
		}
		return TypeInt64, nil
	case int64, uint32:
		return TypeInt64, nil
	case uint, uint64:
		if _, ok := asInt64(x); !ok {
			return 0, fmt.Errorf("%w: %v overflows int64", ErrUnsupportedType, x)
		}
		return TypeInt64, nil
	case float32, float64:
		return TypeDouble, nil
	case string:
		return TypeString, nil
	case primitive.DateTime, time.Time:
		return TypeDateTime, nil
	case primitive.ObjectID:
		return TypeObjectID, nil
	case primitive.Binary, []byte:
		return TypeBinary, nil
	case primitive.Decimal128:
		return TypeDecimal128, nil
	case bson.D, bson.M, map[string]any:
		return TypeDocument, nil
	case bson.A, []any:
		return TypeArray, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return TypeArray, nil
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return TypeDocument, nil
		}
	}

	return 0, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint:
		return int64(x), uint64(x) <= math.MaxInt64
	case uint64:
		return int64(x), x <= math.MaxInt64
	}

	return 0, false
}

// toD normalizes a document value. Unordered maps are read in sorted key
// order so that decoding is deterministic.
func toD(v any) bson.D {
	switch x := v.(type) {
	case bson.D:
		return x
	case bson.M:
		return sortedD(x)
	case map[string]any:
		return sortedD(x)
	}

	rv := reflect.ValueOf(v)
	keys := make([]string, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		keys = append(keys, k.String())
	}
	slices.Sort(keys)
	d := make(bson.D, 0, len(keys))
	for _, k := range keys {
		d = append(d, bson.E{Key: k, Value: rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface()})
	}

	return d
}

func sortedD(m map[string]any) bson.D {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	d := make(bson.D, 0, len(keys))
	for _, k := range keys {
		d = append(d, bson.E{Key: k, Value: m[k]})
	}

	return d
}

func toA(v any) []any {
	switch x := v.(type) {
	case bson.A:
		return x
	case []any:
		return x
	}

	rv := reflect.ValueOf(v)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}

	return out
}
