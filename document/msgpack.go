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
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessagePack extension type IDs for BSON values that have no native
// MessagePack representation.
const (
	msgpackObjectIDExt   int8 = 1
	msgpackDecimal128Ext int8 = 2
	msgpackBinaryExt     int8 = 3
)

func init() {
	msgpack.RegisterExt(msgpackObjectIDExt, (*objectIDExt)(nil))
	msgpack.RegisterExt(msgpackDecimal128Ext, (*decimal128Ext)(nil))
	msgpack.RegisterExt(msgpackBinaryExt, (*binaryExt)(nil))
}

type objectIDExt primitive.ObjectID

func (o *objectIDExt) MarshalMsgpack() ([]byte, error) {
	return o[:], nil
}

func (o *objectIDExt) UnmarshalMsgpack(b []byte) error {
	if len(b) != len(o) {
		return fmt.Errorf("document: objectid extension has %d bytes, want %d", len(b), len(o))
	}
	copy(o[:], b)

	return nil
}

type decimal128Ext primitive.Decimal128

func (d *decimal128Ext) MarshalMsgpack() ([]byte, error) {
	high, low := primitive.Decimal128(*d).GetBytes()
	b := make([]byte, 16)
	binary.BigEndian.PutUint64(b[:8], high)
	binary.BigEndian.PutUint64(b[8:], low)

	return b, nil
}

func (d *decimal128Ext) UnmarshalMsgpack(b []byte) error {
	if len(b) != 16 {
		return fmt.Errorf("document: decimal128 extension has %d bytes, want 16", len(b))
	}
	*d = decimal128Ext(primitive.NewDecimal128(binary.BigEndian.Uint64(b[:8]), binary.BigEndian.Uint64(b[8:])))

	return nil
}

// binaryExt carries BSON binary values with a non-generic subtype.
type binaryExt primitive.Binary

func (e *binaryExt) MarshalMsgpack() ([]byte, error) {
	return append([]byte{e.Subtype}, e.Data...), nil
}

func (e *binaryExt) UnmarshalMsgpack(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("document: empty binary extension")
	}
	e.Subtype = b[0]
	e.Data = append([]byte(nil), b[1:]...)

	return nil
}

// MarshalMsgPack encodes a document as a MessagePack map, preserving
// element order.
func MarshalMsgPack(d bson.D) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeMsgPack(msgpack.NewEncoder(&buf), d); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func encodeMsgPack(enc *msgpack.Encoder, v any) error {
	switch x := v.(type) {
	case nil, primitive.Null:
		return enc.EncodeNil()
	case bson.D:
		if err := enc.EncodeMapLen(len(x)); err != nil {
			return err
		}
		for _, e := range x {
			if err := enc.EncodeString(e.Key); err != nil {
				return err
			}
			if err := encodeMsgPack(enc, e.Value); err != nil {
				return err
			}
		}
		return nil
	case bson.M, map[string]any:
		return encodeMsgPack(enc, toD(x))
	case bson.A, []any:
		arr := toA(x)
		if err := enc.EncodeArrayLen(len(arr)); err != nil {
			return err
		}
		for _, e := range arr {
			if err := encodeMsgPack(enc, e); err != nil {
				return err
			}
		}
		return nil
	case int32:
		return enc.EncodeInt32(x)
	case int64:
		return enc.EncodeInt64(x)
	case float64:
		return enc.EncodeFloat64(x)
	case string:
		return enc.EncodeString(x)
	case bool:
		return enc.EncodeBool(x)
	case primitive.DateTime:
		return enc.EncodeTime(x.Time().UTC())
	case time.Time:
		return enc.EncodeTime(x.UTC())
	case primitive.ObjectID:
		ext := objectIDExt(x)
		return enc.Encode(&ext)
	case primitive.Decimal128:
		ext := decimal128Ext(x)
		return enc.Encode(&ext)
	case primitive.Binary:
		if x.Subtype == 0 {
			return enc.EncodeBytes(x.Data)
		}
		ext := binaryExt(x)
		return enc.Encode(&ext)
	case []byte:
		return enc.EncodeBytes(x)
	}

	t, err := TypeOf(v)
	if err != nil {
		return err
	}
	switch t {
	case TypeInt32:
		i, _ := asInt64(v)
		return enc.EncodeInt32(int32(i))
	case TypeInt64:
		i, _ := asInt64(v)
		return enc.EncodeInt64(i)
	case TypeDouble:
		return enc.EncodeFloat64(float64(v.(float32)))
	case TypeDocument:
		return encodeMsgPack(enc, toD(v))
	case TypeArray:
		return encodeMsgPack(enc, bson.A(toA(v)))
	}

	return fmt.Errorf("%w: %T", ErrUnsupportedType, v)
}

// UnmarshalMsgPack decodes a MessagePack map into an ordered document.
func UnmarshalMsgPack(b []byte) (bson.D, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.SetMapDecoder(decodeMsgPackMap)

	v, err := dec.DecodeInterface()
	if err != nil {
		return nil, fmt.Errorf("document: msgpack: %w", err)
	}
	d, ok := v.(bson.D)
	if !ok {
		return nil, fmt.Errorf("%w: msgpack root is %T, not a map", ErrTypeMismatch, v)
	}

	return d, nil
}

func decodeMsgPackMap(dec *msgpack.Decoder) (any, error) {
	n, err := dec.DecodeMapLen()
	if err != nil {
		return nil, err
	}
	if n == -1 {
		return nil, nil
	}
	d := make(bson.D, 0, n)
	for range n {
		key, err := dec.DecodeString()
		if err != nil {
			return nil, err
		}
		v, err := dec.DecodeInterface()
		if err != nil {
			return nil, err
		}
		d = append(d, bson.E{Key: key, Value: fromMsgPack(v)})
	}

	return d, nil
}

// fromMsgPack maps decoded MessagePack values onto BSON value types.
func fromMsgPack(v any) any {
	switch x := v.(type) {
	case []any:
		a := make(bson.A, len(x))
		for i, e := range x {
			a[i] = fromMsgPack(e)
		}
		return a
	case int8:
		return int32(x)
	case int16:
		return int32(x)
	case uint8:
		return int32(x)
	case uint16:
		return int32(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	case float32:
		return float64(x)
	case time.Time:
		return primitive.NewDateTimeFromTime(x)
	case []byte:
		return primitive.Binary{Data: x}
	case *objectIDExt:
		return primitive.ObjectID(*x)
	case objectIDExt:
		return primitive.ObjectID(x)
	case *decimal128Ext:
		return primitive.Decimal128(*x)
	case decimal128Ext:
		return primitive.Decimal128(x)
	case *binaryExt:
		return primitive.Binary(*x)
	case binaryExt:
		return primitive.Binary(x)
	}

	return v
}

// MsgPackWriter collects a document in memory and writes it as
// MessagePack to the underlying writer once the root document is closed.
type MsgPackWriter struct {
	*MemoryWriter
	w io.Writer
}

// NewMsgPackWriter returns a Writer producing MessagePack on w.
func NewMsgPackWriter(w io.Writer) *MsgPackWriter {
	return &MsgPackWriter{MemoryWriter: NewWriter(), w: w}
}

// WriteEndDocument closes the current document and flushes the result
// when it was the root.
func (w *MsgPackWriter) WriteEndDocument() error {
	if err := w.MemoryWriter.WriteEndDocument(); err != nil {
		return err
	}
	if !w.Done() {
		return nil
	}
	b, err := MarshalMsgPack(w.Document())
	if err != nil {
		return err
	}
	_, err = w.w.Write(b)

	return err
}

// NewMsgPackReader returns a Reader over a MessagePack encoded document.
func NewMsgPackReader(b []byte) (Reader, error) {
	d, err := UnmarshalMsgPack(b)
	if err != nil {
		return nil, err
	}

	return NewReader(d), nil
}
