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
	"reflect"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rivaas.dev/odm/document"
	"rivaas.dev/odm/internal/reflectx"
	"rivaas.dev/odm/types"
)

// anyCodec encodes values by their dynamic Go type and decodes into the
// driver's native representation: bson.D, bson.A, int32, int64, float64,
// string, bool, primitive.DateTime, primitive.ObjectID, primitive.Binary,
// primitive.Decimal128 or nil.
type anyCodec struct{}

func (anyCodec) GoType() reflect.Type { return anyType }

func (anyCodec) Encode(w document.Writer, v any, ctx EncodeContext) error {
	if reflectx.IsNil(v) {
		return w.WriteNull()
	}
	c, err := ctx.Registry.LookupValue(v)
	if err != nil {
		return err
	}
	if _, ok := c.(anyCodec); ok {
		return invalidValue(v, types.Any)
	}

	return c.Encode(w, v, ctx)
}

func (anyCodec) Decode(r document.Reader, ctx DecodeContext) (any, error) {
	return decodeDynamic(r, ctx)
}

// DecodeDynamic reads the value under the cursor into native driver
// values without type information.
func DecodeDynamic(r document.Reader, ctx DecodeContext) (any, error) {
	return decodeDynamic(r, ctx)
}

func decodeDynamic(r document.Reader, ctx DecodeContext) (any, error) {
	switch t := r.CurrentType(); t {
	case document.TypeDocument:
		return documentCodec{}.Decode(r, ctx)
	case document.TypeArray:
		return decodeArray(r, ctx)
	case document.TypeInt32:
		return r.ReadInt32()
	case document.TypeInt64:
		return r.ReadInt64()
	case document.TypeDouble:
		return r.ReadDouble()
	case document.TypeString:
		return r.ReadString()
	case document.TypeBoolean:
		return r.ReadBoolean()
	case document.TypeDateTime:
		ms, err := r.ReadDateTime()
		return primitive.DateTime(ms), err
	case document.TypeObjectID:
		return r.ReadObjectID()
	case document.TypeBinary:
		subtype, data, err := r.ReadBinary()
		return primitive.Binary{Subtype: subtype, Data: data}, err
	case document.TypeDecimal128:
		return r.ReadDecimal128()
	case document.TypeNull:
		return nil, r.ReadNull()
	default:
		return nil, fmt.Errorf("%w: %s", document.ErrUnsupportedType, t)
	}
}

func decodeArray(r document.Reader, ctx DecodeContext) (any, error) {
	nested, err := ctx.Nested()
	if err != nil {
		return nil, err
	}
	if err := r.ReadStartArray(); err != nil {
		return nil, err
	}
	a := bson.A{}
	for i := 0; ; i++ {
		t, err := r.ReadType()
		if err != nil {
			return nil, err
		}
		if t == document.EndOfDocument {
			break
		}
		v, err := decodeDynamic(r, nested)
		if err != nil {
			return nil, WrapDecodeError(strconv.Itoa(i), err)
		}
		a = append(a, v)
	}
	if err := r.ReadEndArray(); err != nil {
		return nil, err
	}

	return a, nil
}

// documentCodec handles the untyped "document" type as bson.D.
type documentCodec struct{}

func (documentCodec) GoType() reflect.Type { return documentType }

func (documentCodec) Encode(w document.Writer, v any, ctx EncodeContext) error {
	entries, ok := Entries(v)
	if !ok {
		return invalidValue(v, types.Document)
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
		if err := (anyCodec{}).Encode(w, e.Value, nested); err != nil {
			return WrapEncodeError(e.Key, err)
		}
	}

	return w.WriteEndDocument()
}

func (documentCodec) Decode(r document.Reader, ctx DecodeContext) (any, error) {
	if t := r.CurrentType(); t != document.TypeDocument {
		return nil, mismatch(types.Document, t)
	}
	nested, err := ctx.Nested()
	if err != nil {
		return nil, err
	}
	if err := r.ReadStartDocument(); err != nil {
		return nil, err
	}

	d := bson.D{}
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
		v, err := decodeDynamic(r, nested)
		if err != nil {
			return nil, WrapDecodeError(name, err)
		}
		d = append(d, bson.E{Key: name, Value: v})
	}
	if err := r.ReadEndDocument(); err != nil {
		return nil, err
	}

	return d, nil
}
