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
	"fmt"
	"math"
	"reflect"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"rivaas.dev/odm/document"
	"rivaas.dev/odm/types"
)

// intOf extracts an integer from any Go integer kind.
func intOf(v any) (int64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		return int64(u), u <= math.MaxInt64
	}

	return 0, false
}

// readInteger reads an int32, int64 or integral double.
func readInteger(r document.Reader, expected types.Type) (int64, error) {
	switch t := r.CurrentType(); t {
	case document.TypeInt32:
		i, err := r.ReadInt32()
		return int64(i), err
	case document.TypeInt64:
		return r.ReadInt64()
	case document.TypeDouble:
		f, err := r.ReadDouble()
		if err != nil {
			return 0, err
		}
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, fmt.Errorf("%w: %v is not a lossless %s", ErrTypeMismatch, f, expected)
		}
		return int64(f), nil
	default:
		return 0, mismatch(expected, t)
	}
}

type int32Codec struct{}

func (int32Codec) GoType() reflect.Type { return int32Type }

func (int32Codec) Encode(w document.Writer, v any, _ EncodeContext) error {
	n, ok := intOf(v)
	if !ok || n < math.MinInt32 || n > math.MaxInt32 {
		return invalidValue(v, types.Int32)
	}

	return w.WriteInt32(int32(n))
}

func (int32Codec) Decode(r document.Reader, _ DecodeContext) (any, error) {
	n, err := readInteger(r, types.Int32)
	if err != nil {
		return nil, err
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %d overflows int32", ErrTypeMismatch, n)
	}

	return int32(n), nil
}

type int64Codec struct{}

func (int64Codec) GoType() reflect.Type { return int64Type }

func (int64Codec) Encode(w document.Writer, v any, _ EncodeContext) error {
	n, ok := intOf(v)
	if !ok {
		return invalidValue(v, types.Int64)
	}

	return w.WriteInt64(n)
}

func (int64Codec) Decode(r document.Reader, _ DecodeContext) (any, error) {
	return readInteger(r, types.Int64)
}

// maxExactDouble is the largest integer magnitude a float64 holds exactly.
const maxExactDouble = 1 << 53

type doubleCodec struct{}

func (doubleCodec) GoType() reflect.Type { return float64Type }

func (doubleCodec) Encode(w document.Writer, v any, _ EncodeContext) error {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return w.WriteDouble(rv.Float())
	}
	if n, ok := intOf(v); ok && n >= -maxExactDouble && n <= maxExactDouble {
		return w.WriteDouble(float64(n))
	}

	return invalidValue(v, types.Double)
}

func (doubleCodec) Decode(r document.Reader, _ DecodeContext) (any, error) {
	switch t := r.CurrentType(); t {
	case document.TypeDouble:
		return r.ReadDouble()
	case document.TypeInt32:
		i, err := r.ReadInt32()
		return float64(i), err
	case document.TypeInt64:
		i, err := r.ReadInt64()
		if err != nil {
			return nil, err
		}
		if i < -maxExactDouble || i > maxExactDouble {
			return nil, fmt.Errorf("%w: %d is not a lossless double", ErrTypeMismatch, i)
		}
		return float64(i), nil
	default:
		return nil, mismatch(types.Double, t)
	}
}

type stringCodec struct{}

func (stringCodec) GoType() reflect.Type { return stringType }

func (stringCodec) Encode(w document.Writer, v any, _ EncodeContext) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.String {
		return invalidValue(v, types.String)
	}

	return w.WriteString(rv.String())
}

func (stringCodec) Decode(r document.Reader, _ DecodeContext) (any, error) {
	if t := r.CurrentType(); t != document.TypeString {
		return nil, mismatch(types.String, t)
	}
	return r.ReadString()
}

type boolCodec struct{}

func (boolCodec) GoType() reflect.Type { return boolType }

func (boolCodec) Encode(w document.Writer, v any, _ EncodeContext) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Bool {
		return invalidValue(v, types.Bool)
	}

	return w.WriteBoolean(rv.Bool())
}

func (boolCodec) Decode(r document.Reader, _ DecodeContext) (any, error) {
	if t := r.CurrentType(); t != document.TypeBoolean {
		return nil, mismatch(types.Bool, t)
	}
	return r.ReadBoolean()
}

// dateTimeCodec stores millisecond precision datetimes and decodes them as
// UTC time.Time values.
type dateTimeCodec struct{}

func (dateTimeCodec) GoType() reflect.Type { return timeType }

func (dateTimeCodec) Encode(w document.Writer, v any, _ EncodeContext) error {
	switch x := v.(type) {
	case time.Time:
		return w.WriteDateTime(x.UnixMilli())
	case *time.Time:
		return w.WriteDateTime(x.UnixMilli())
	case primitive.DateTime:
		return w.WriteDateTime(int64(x))
	}

	return invalidValue(v, types.DateTime)
}

func (dateTimeCodec) Decode(r document.Reader, _ DecodeContext) (any, error) {
	if t := r.CurrentType(); t != document.TypeDateTime {
		return nil, mismatch(types.DateTime, t)
	}
	ms, err := r.ReadDateTime()
	if err != nil {
		return nil, err
	}

	return time.UnixMilli(ms).UTC(), nil
}

type objectIDCodec struct{}

func (objectIDCodec) GoType() reflect.Type { return objectIDType }

func (objectIDCodec) Encode(w document.Writer, v any, _ EncodeContext) error {
	id, ok := v.(primitive.ObjectID)
	if !ok {
		return invalidValue(v, types.ObjectID)
	}

	return w.WriteObjectID(id)
}

func (objectIDCodec) Decode(r document.Reader, _ DecodeContext) (any, error) {
	if t := r.CurrentType(); t != document.TypeObjectID {
		return nil, mismatch(types.ObjectID, t)
	}
	return r.ReadObjectID()
}

// binaryCodec decodes to []byte; the subtype is kept only when encoding a
// primitive.Binary.
type binaryCodec struct{}

func (binaryCodec) GoType() reflect.Type { return bytesType }

func (binaryCodec) Encode(w document.Writer, v any, _ EncodeContext) error {
	switch x := v.(type) {
	case primitive.Binary:
		return w.WriteBinary(x.Subtype, x.Data)
	case []byte:
		return w.WriteBinary(0, x)
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8:
		return w.WriteBinary(0, rv.Bytes())
	case rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8:
		b := make([]byte, rv.Len())
		reflect.Copy(reflect.ValueOf(b), rv)
		return w.WriteBinary(0, b)
	}

	return invalidValue(v, types.Binary)
}

func (binaryCodec) Decode(r document.Reader, _ DecodeContext) (any, error) {
	if t := r.CurrentType(); t != document.TypeBinary {
		return nil, mismatch(types.Binary, t)
	}
	_, data, err := r.ReadBinary()

	return data, err
}

type decimal128Codec struct{}

func (decimal128Codec) GoType() reflect.Type { return decimalType }

func (decimal128Codec) Encode(w document.Writer, v any, _ EncodeContext) error {
	d, ok := v.(primitive.Decimal128)
	if !ok {
		return invalidValue(v, types.Decimal128)
	}

	return w.WriteDecimal128(d)
}

func (decimal128Codec) Decode(r document.Reader, _ DecodeContext) (any, error) {
	if t := r.CurrentType(); t != document.TypeDecimal128 {
		return nil, mismatch(types.Decimal128, t)
	}
	return r.ReadDecimal128()
}
