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
	"errors"

	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Type is the BSON type of the value under the reader cursor.
type Type = bsontype.Type

// EndOfDocument is returned by [Reader.ReadType] once the current document or
// array has no more elements.
const EndOfDocument Type = 0

// Re-exported BSON types used by codecs.
const (
	TypeDouble     = bsontype.Double
	TypeString     = bsontype.String
	TypeDocument   = bsontype.EmbeddedDocument
	TypeArray      = bsontype.Array
	TypeBinary     = bsontype.Binary
	TypeObjectID   = bsontype.ObjectID
	TypeBoolean    = bsontype.Boolean
	TypeDateTime   = bsontype.DateTime
	TypeNull       = bsontype.Null
	TypeInt32      = bsontype.Int32
	TypeInt64      = bsontype.Int64
	TypeDecimal128 = bsontype.Decimal128
)

// Static errors.
var (
	// ErrInvalidState is returned when a call does not fit the current
	// position, e.g. ReadName outside a document or an unbalanced end marker.
	ErrInvalidState = errors.New("document: invalid reader or writer state")

	// ErrUnsupportedType is returned for BSON types the codec layer does not
	// model (JavaScript, symbols, DB pointers and the like).
	ErrUnsupportedType = errors.New("document: unsupported value type")

	// ErrTypeMismatch is returned when a typed read does not match the
	// current value.
	ErrTypeMismatch = errors.New("document: value type mismatch")
)

// Reader is a forward-only, token-oriented document reader.
//
// Inside a document, callers loop on ReadType until it returns
// EndOfDocument; after each element type they call ReadName and then
// exactly one value read (or Skip). Arrays follow the same loop without
// names. Every value must be read or skipped before advancing.
type Reader interface {
	ReadStartDocument() error
	ReadEndDocument() error
	ReadStartArray() error
	ReadEndArray() error

	// ReadType advances to the next element of the current container and
	// returns its type, or EndOfDocument when there are no more elements.
	ReadType() (Type, error)

	// CurrentType returns the type of the value under the cursor without
	// advancing.
	CurrentType() Type

	ReadName() (string, error)
	ReadNull() error
	ReadBoolean() (bool, error)
	ReadInt32() (int32, error)
	ReadInt64() (int64, error)
	ReadDouble() (float64, error)
	ReadString() (string, error)
	ReadDateTime() (int64, error)
	ReadObjectID() (primitive.ObjectID, error)
	ReadBinary() (subtype byte, data []byte, err error)
	ReadDecimal128() (primitive.Decimal128, error)

	// Skip discards the value under the cursor, including nested
	// containers.
	Skip() error
}

// Writer is the mirror of Reader. Inside a document every value must be
// preceded by WriteName.
type Writer interface {
	WriteStartDocument() error
	WriteEndDocument() error
	WriteStartArray() error
	WriteEndArray() error
	WriteName(name string) error
	WriteNull() error
	WriteBoolean(b bool) error
	WriteInt32(i int32) error
	WriteInt64(i int64) error
	WriteDouble(f float64) error
	WriteString(s string) error
	WriteDateTime(ms int64) error
	WriteObjectID(id primitive.ObjectID) error
	WriteBinary(subtype byte, data []byte) error
	WriteDecimal128(d primitive.Decimal128) error
}
