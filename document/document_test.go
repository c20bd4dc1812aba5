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
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// writeSample writes {name: "box", n: 42, tags: ["a", "b"], inner: {ok: true}}.
func writeSample(t *testing.T, w Writer) {
	t.Helper()

	require.NoError(t, w.WriteStartDocument())
	require.NoError(t, w.WriteName("name"))
	require.NoError(t, w.WriteString("box"))
	require.NoError(t, w.WriteName("n"))
	require.NoError(t, w.WriteInt32(42))
	require.NoError(t, w.WriteName("tags"))
	require.NoError(t, w.WriteStartArray())
	require.NoError(t, w.WriteString("a"))
	require.NoError(t, w.WriteString("b"))
	require.NoError(t, w.WriteEndArray())
	require.NoError(t, w.WriteName("inner"))
	require.NoError(t, w.WriteStartDocument())
	require.NoError(t, w.WriteName("ok"))
	require.NoError(t, w.WriteBoolean(true))
	require.NoError(t, w.WriteEndDocument())
	require.NoError(t, w.WriteEndDocument())
}

// readSample reads any document into a bson.D using only the Reader
// interface.
func readSample(t *testing.T, r Reader) bson.D {
	t.Helper()

	v, err := readValue(r)
	require.NoError(t, err)
	d, ok := v.(bson.D)
	require.True(t, ok, "root is %T", v)

	return d
}

func readValue(r Reader) (any, error) {
	switch r.CurrentType() {
	case TypeDocument:
		if err := r.ReadStartDocument(); err != nil {
			return nil, err
		}
		d := bson.D{}
		for {
			t, err := r.ReadType()
			if err != nil {
				return nil, err
			}
			if t == EndOfDocument {
				break
			}
			name, err := r.ReadName()
			if err != nil {
				return nil, err
			}
			v, err := readValue(r)
			if err != nil {
				return nil, err
			}
			d = append(d, bson.E{Key: name, Value: v})
		}
		return d, r.ReadEndDocument()
	case TypeArray:
		if err := r.ReadStartArray(); err != nil {
			return nil, err
		}
		a := bson.A{}
		for {
			t, err := r.ReadType()
			if err != nil {
				return nil, err
			}
			if t == EndOfDocument {
				break
			}
			v, err := readValue(r)
			if err != nil {
				return nil, err
			}
			a = append(a, v)
		}
		return a, r.ReadEndArray()
	case TypeString:
		return r.ReadString()
	case TypeInt32:
		return r.ReadInt32()
	case TypeInt64:
		return r.ReadInt64()
	case TypeBoolean:
		return r.ReadBoolean()
	case TypeNull:
		return nil, r.ReadNull()
	default:
		return nil, r.Skip()
	}
}

var sample = bson.D{
	{Key: "name", Value: "box"},
	{Key: "n", Value: int32(42)},
	{Key: "tags", Value: bson.A{"a", "b"}},
	{Key: "inner", Value: bson.D{{Key: "ok", Value: true}}},
}

func TestMemoryWriter(t *testing.T) {
	t.Parallel()

	w := NewWriter()
	writeSample(t, w)

	assert.Equal(t, sample, w.Document())
	assert.Equal(t, 0, w.DocsLevel())
	assert.Equal(t, 0, w.ArraysLevel())
	assert.True(t, w.Done())
}

func TestMemoryWriter_Levels(t *testing.T) {
	t.Parallel()

	w := NewWriter()
	require.NoError(t, w.WriteStartDocument())
	require.NoError(t, w.WriteName("a"))
	require.NoError(t, w.WriteStartArray())
	require.NoError(t, w.WriteStartDocument())

	assert.Equal(t, 2, w.DocsLevel())
	assert.Equal(t, 1, w.ArraysLevel())
}

func TestMemoryWriter_InvalidState(t *testing.T) {
	t.Parallel()

	t.Run("value without name", func(t *testing.T) {
		t.Parallel()
		w := NewWriter()
		require.NoError(t, w.WriteStartDocument())
		assert.ErrorIs(t, w.WriteInt32(1), ErrInvalidState)
	})

	t.Run("name outside document", func(t *testing.T) {
		t.Parallel()
		w := NewWriter()
		assert.ErrorIs(t, w.WriteName("x"), ErrInvalidState)
	})

	t.Run("dangling name", func(t *testing.T) {
		t.Parallel()
		w := NewWriter()
		require.NoError(t, w.WriteStartDocument())
		require.NoError(t, w.WriteName("x"))
		assert.ErrorIs(t, w.WriteEndDocument(), ErrInvalidState)
	})

	t.Run("mismatched end", func(t *testing.T) {
		t.Parallel()
		w := NewWriter()
		require.NoError(t, w.WriteStartDocument())
		assert.ErrorIs(t, w.WriteEndArray(), ErrInvalidState)
	})

	t.Run("second root", func(t *testing.T) {
		t.Parallel()
		w := NewWriter()
		require.NoError(t, w.WriteInt32(1))
		assert.ErrorIs(t, w.WriteInt32(2), ErrInvalidState)
	})
}

func TestMemoryReader(t *testing.T) {
	t.Parallel()

	assert.Equal(t, sample, readSample(t, NewReader(sample)))
}

func TestMemoryReader_MapIsSorted(t *testing.T) {
	t.Parallel()

	r := NewValueReader(bson.M{"b": 2, "a": 1, "c": []string{"x"}})
	got := readSample(t, r)

	assert.Equal(t, bson.D{
		{Key: "a", Value: int32(1)},
		{Key: "b", Value: int32(2)},
		{Key: "c", Value: bson.A{"x"}},
	}, got)
}

func TestMemoryReader_MustConsumeValue(t *testing.T) {
	t.Parallel()

	r := NewReader(bson.D{{Key: "a", Value: int32(1)}, {Key: "b", Value: int32(2)}})
	require.NoError(t, r.ReadStartDocument())
	_, err := r.ReadType()
	require.NoError(t, err)

	_, err = r.ReadType()
	require.ErrorIs(t, err, ErrInvalidState)

	require.NoError(t, r.Skip())
	typ, err := r.ReadType()
	require.NoError(t, err)
	assert.Equal(t, TypeInt32, typ)
}

func TestMemoryReader_TypeMismatch(t *testing.T) {
	t.Parallel()

	r := NewReader(bson.D{{Key: "a", Value: "text"}})
	require.NoError(t, r.ReadStartDocument())
	_, err := r.ReadType()
	require.NoError(t, err)

	_, err = r.ReadInt32()
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestMemoryReader_EndBeforeExhausted(t *testing.T) {
	t.Parallel()

	r := NewReader(sample)
	require.NoError(t, r.ReadStartDocument())
	assert.ErrorIs(t, r.ReadEndDocument(), ErrInvalidState)
}

func TestBSONWriterReader(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w, err := NewBSONWriter(&buf)
	require.NoError(t, err)
	writeSample(t, w)

	var fromDriver bson.D
	require.NoError(t, bson.Unmarshal(buf.Bytes(), &fromDriver))
	assert.Equal(t, "box", fromDriver[0].Value)

	assert.Equal(t, sample, readSample(t, NewBSONReader(buf.Bytes())))
}

func TestBSONReader_Scalars(t *testing.T) {
	t.Parallel()

	id := primitive.NewObjectID()
	dec, err := primitive.ParseDecimal128("12.50")
	require.NoError(t, err)
	now := time.UnixMilli(1_700_000_000_123).UTC()

	raw, err := bson.Marshal(bson.D{
		{Key: "id", Value: id},
		{Key: "at", Value: primitive.NewDateTimeFromTime(now)},
		{Key: "bin", Value: primitive.Binary{Subtype: 4, Data: []byte{1, 2}}},
		{Key: "dec", Value: dec},
		{Key: "f", Value: 1.5},
		{Key: "big", Value: int64(1) << 40},
		{Key: "nil", Value: nil},
	})
	require.NoError(t, err)

	r := NewBSONReader(raw)
	require.NoError(t, r.ReadStartDocument())

	next := func(want Type) {
		typ, err := r.ReadType()
		require.NoError(t, err)
		require.Equal(t, want, typ)
		_, err = r.ReadName()
		require.NoError(t, err)
	}

	next(TypeObjectID)
	gotID, err := r.ReadObjectID()
	require.NoError(t, err)
	assert.Equal(t, id, gotID)

	next(TypeDateTime)
	ms, err := r.ReadDateTime()
	require.NoError(t, err)
	assert.Equal(t, now.UnixMilli(), ms)

	next(TypeBinary)
	subtype, data, err := r.ReadBinary()
	require.NoError(t, err)
	assert.Equal(t, byte(4), subtype)
	assert.Equal(t, []byte{1, 2}, data)

	next(TypeDecimal128)
	gotDec, err := r.ReadDecimal128()
	require.NoError(t, err)
	assert.Equal(t, dec.String(), gotDec.String())

	next(TypeDouble)
	f, err := r.ReadDouble()
	require.NoError(t, err)
	assert.InDelta(t, 1.5, f, 0)

	next(TypeInt64)
	big, err := r.ReadInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(1)<<40, big)

	next(TypeNull)
	require.NoError(t, r.ReadNull())

	typ, err := r.ReadType()
	require.NoError(t, err)
	assert.Equal(t, EndOfDocument, typ)
	require.NoError(t, r.ReadEndDocument())
}

func TestExtJSONWriterReader(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w, err := NewExtJSONWriter(&buf, false)
	require.NoError(t, err)
	writeSample(t, w)

	assert.JSONEq(t, `{"name":"box","n":42,"tags":["a","b"],"inner":{"ok":true}}`, buf.String())

	r, err := NewExtJSONReader(strings.NewReader(buf.String()), false)
	require.NoError(t, err)
	assert.Equal(t, sample, readSample(t, r))
}

func TestMsgPack_RoundTrip(t *testing.T) {
	t.Parallel()

	id := primitive.NewObjectID()
	dec, err := primitive.ParseDecimal128("3.14")
	require.NoError(t, err)
	at := primitive.DateTime(1_700_000_000_000)

	in := bson.D{
		{Key: "z", Value: int32(7)},
		{Key: "a", Value: int64(1) << 35},
		{Key: "id", Value: id},
		{Key: "dec", Value: dec},
		{Key: "at", Value: at},
		{Key: "bin", Value: primitive.Binary{Data: []byte("raw")}},
		{Key: "uuid", Value: primitive.Binary{Subtype: 4, Data: []byte{9, 9}}},
		{Key: "list", Value: bson.A{"x", 1.5, nil}},
		{Key: "doc", Value: bson.D{{Key: "k", Value: "v"}}},
	}

	b, err := MarshalMsgPack(in)
	require.NoError(t, err)

	out, err := UnmarshalMsgPack(b)
	require.NoError(t, err)

	require.Len(t, out, len(in))
	for i := range in {
		assert.Equal(t, in[i].Key, out[i].Key, "order must be preserved")
	}
	assert.Equal(t, int32(7), out[0].Value)
	assert.Equal(t, int64(1)<<35, out[1].Value)
	assert.Equal(t, id, out[2].Value)
	assert.Equal(t, dec.String(), out[3].Value.(primitive.Decimal128).String())
	assert.Equal(t, at, out[4].Value)
	assert.Equal(t, primitive.Binary{Data: []byte("raw")}, out[5].Value)
	assert.Equal(t, primitive.Binary{Subtype: 4, Data: []byte{9, 9}}, out[6].Value)
	assert.Equal(t, bson.A{"x", 1.5, nil}, out[7].Value)
	assert.Equal(t, bson.D{{Key: "k", Value: "v"}}, out[8].Value)
}

func TestMsgPackWriterReader(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewMsgPackWriter(&buf)
	writeSample(t, w)
	require.NotZero(t, buf.Len())

	r, err := NewMsgPackReader(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, sample, readSample(t, r))
}

func TestUnmarshalMsgPack_NotAMap(t *testing.T) {
	t.Parallel()

	_, err := UnmarshalMsgPack([]byte{0x01})
	assert.ErrorIs(t, err, ErrTypeMismatch)
}
