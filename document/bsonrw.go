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
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type valueFrame struct {
	dr    bsonrw.DocumentReader
	ar    bsonrw.ArrayReader
	ended bool
}

// valueReader adapts the driver's bsonrw.ValueReader tree of document and
// array readers to the flat Reader interface.
type valueReader struct {
	stack   []*valueFrame
	vr      bsonrw.ValueReader
	cur     Type
	name    string
	named   bool
	pending bool
}

var _ Reader = (*valueReader)(nil)

// NewBSONReader returns a Reader over a single BSON document.
func NewBSONReader(b []byte) Reader {
	return &valueReader{vr: bsonrw.NewBSONDocumentReader(b), cur: TypeDocument, pending: true}
}

// NewExtJSONReader returns a Reader over one Extended JSON document.
// Relaxed input is accepted in both modes; canonical only changes how
// ambiguous numbers are interpreted.
func NewExtJSONReader(r io.Reader, canonical bool) (Reader, error) {
	vr, err := bsonrw.NewExtJSONValueReader(r, canonical)
	if err != nil {
		return nil, fmt.Errorf("document: extended JSON reader: %w", err)
	}

	return &valueReader{vr: vr, cur: TypeDocument, pending: true}, nil
}

func (r *valueReader) top() *valueFrame {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

func (r *valueReader) value() (bsonrw.ValueReader, error) {
	if !r.pending {
		return nil, fmt.Errorf("%w: no value under the cursor", ErrInvalidState)
	}
	r.pending = false
	r.named = false

	return r.vr, nil
}

func (r *valueReader) ReadStartDocument() error {
	vr, err := r.value()
	if err != nil {
		return err
	}
	dr, err := vr.ReadDocument()
	if err != nil {
		return err
	}
	r.stack = append(r.stack, &valueFrame{dr: dr})

	return nil
}

func (r *valueReader) ReadEndDocument() error {
	f := r.top()
	if f == nil || f.dr == nil || !f.ended {
		return fmt.Errorf("%w: document not exhausted", ErrInvalidState)
	}
	r.stack = r.stack[:len(r.stack)-1]

	return nil
}

func (r *valueReader) ReadStartArray() error {
	vr, err := r.value()
	if err != nil {
		return err
	}
	ar, err := vr.ReadArray()
	if err != nil {
		return err
	}
	r.stack = append(r.stack, &valueFrame{ar: ar})

	return nil
}

func (r *valueReader) ReadEndArray() error {
	f := r.top()
	if f == nil || f.ar == nil || !f.ended {
		return fmt.Errorf("%w: array not exhausted", ErrInvalidState)
	}
	r.stack = r.stack[:len(r.stack)-1]

	return nil
}

func (r *valueReader) ReadType() (Type, error) {
	f := r.top()
	if f == nil {
		return 0, fmt.Errorf("%w: ReadType outside a container", ErrInvalidState)
	}
	if r.pending {
		return 0, fmt.Errorf("%w: previous value was neither read nor skipped", ErrInvalidState)
	}
	if f.ended {
		return EndOfDocument, nil
	}

	if f.dr != nil {
		name, vr, err := f.dr.ReadElement()
		if errors.Is(err, bsonrw.ErrEOD) {
			f.ended = true
			r.cur = EndOfDocument
			return EndOfDocument, nil
		}
		if err != nil {
			return 0, err
		}
		r.vr, r.name, r.named = vr, name, true
	} else {
		vr, err := f.ar.ReadValue()
		if errors.Is(err, bsonrw.ErrEOA) {
			f.ended = true
			r.cur = EndOfDocument
			return EndOfDocument, nil
		}
		if err != nil {
			return 0, err
		}
		r.vr = vr
	}
	r.pending = true
	r.cur = r.vr.Type()

	return r.cur, nil
}

func (r *valueReader) CurrentType() Type {
	return r.cur
}

func (r *valueReader) ReadName() (string, error) {
	if !r.named {
		return "", fmt.Errorf("%w: no element name under the cursor", ErrInvalidState)
	}
	r.named = false

	return r.name, nil
}

func (r *valueReader) ReadNull() error {
	vr, err := r.value()
	if err != nil {
		return err
	}
	return vr.ReadNull()
}

func (r *valueReader) ReadBoolean() (bool, error) {
	vr, err := r.value()
	if err != nil {
		return false, err
	}
	return vr.ReadBoolean()
}

func (r *valueReader) ReadInt32() (int32, error) {
	vr, err := r.value()
	if err != nil {
		return 0, err
	}
	return vr.ReadInt32()
}

func (r *valueReader) ReadInt64() (int64, error) {
	vr, err := r.value()
	if err != nil {
		return 0, err
	}
	return vr.ReadInt64()
}

func (r *valueReader) ReadDouble() (float64, error) {
	vr, err := r.value()
	if err != nil {
		return 0, err
	}
	return vr.ReadDouble()
}

func (r *valueReader) ReadString() (string, error) {
	vr, err := r.value()
	if err != nil {
		return "", err
	}
	return vr.ReadString()
}

func (r *valueReader) ReadDateTime() (int64, error) {
	vr, err := r.value()
	if err != nil {
		return 0, err
	}
	return vr.ReadDateTime()
}

func (r *valueReader) ReadObjectID() (primitive.ObjectID, error) {
	vr, err := r.value()
	if err != nil {
		return primitive.NilObjectID, err
	}
	return vr.ReadObjectID()
}

func (r *valueReader) ReadBinary() (byte, []byte, error) {
	vr, err := r.value()
	if err != nil {
		return 0, nil, err
	}
	data, subtype, err := vr.ReadBinary()

	return subtype, data, err
}

func (r *valueReader) ReadDecimal128() (primitive.Decimal128, error) {
	vr, err := r.value()
	if err != nil {
		return primitive.Decimal128{}, err
	}
	return vr.ReadDecimal128()
}

func (r *valueReader) Skip() error {
	vr, err := r.value()
	if err != nil {
		return err
	}
	return vr.Skip()
}

type writerFrame struct {
	dw bsonrw.DocumentWriter
	aw bsonrw.ArrayWriter
}

// valueWriter adapts bsonrw.ValueWriter to the flat Writer interface.
type valueWriter struct {
	stack []*writerFrame
	root  bsonrw.ValueWriter
	next  bsonrw.ValueWriter
}

var _ Writer = (*valueWriter)(nil)

// NewBSONWriter returns a Writer producing one BSON document on w. The
// document is buffered and written once it is complete.
func NewBSONWriter(w io.Writer) (Writer, error) {
	vw, err := bsonrw.NewBSONValueWriter(w)
	if err != nil {
		return nil, fmt.Errorf("document: BSON writer: %w", err)
	}

	return &valueWriter{root: vw}, nil
}

// NewExtJSONWriter returns a Writer producing Extended JSON on w.
func NewExtJSONWriter(w io.Writer, canonical bool) (Writer, error) {
	vw, err := bsonrw.NewExtJSONValueWriter(w, canonical, false)
	if err != nil {
		return nil, fmt.Errorf("document: extended JSON writer: %w", err)
	}

	return &valueWriter{root: vw}, nil
}

func (w *valueWriter) value() (bsonrw.ValueWriter, error) {
	if len(w.stack) == 0 {
		if w.root == nil {
			return nil, fmt.Errorf("%w: root value already written", ErrInvalidState)
		}
		vw := w.root
		w.root = nil
		return vw, nil
	}
	top := w.stack[len(w.stack)-1]
	if top.aw != nil {
		return top.aw.WriteArrayElement()
	}
	if w.next == nil {
		return nil, fmt.Errorf("%w: value written without a name", ErrInvalidState)
	}
	vw := w.next
	w.next = nil

	return vw, nil
}

func (w *valueWriter) WriteStartDocument() error {
	vw, err := w.value()
	if err != nil {
		return err
	}
	dw, err := vw.WriteDocument()
	if err != nil {
		return err
	}
	w.stack = append(w.stack, &writerFrame{dw: dw})

	return nil
}

func (w *valueWriter) WriteEndDocument() error {
	if len(w.stack) == 0 || w.stack[len(w.stack)-1].dw == nil {
		return fmt.Errorf("%w: no open document", ErrInvalidState)
	}
	if w.next != nil {
		return fmt.Errorf("%w: name has no value", ErrInvalidState)
	}
	top := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]

	return top.dw.WriteDocumentEnd()
}

func (w *valueWriter) WriteStartArray() error {
	vw, err := w.value()
	if err != nil {
		return err
	}
	aw, err := vw.WriteArray()
	if err != nil {
		return err
	}
	w.stack = append(w.stack, &writerFrame{aw: aw})

	return nil
}

func (w *valueWriter) WriteEndArray() error {
	if len(w.stack) == 0 || w.stack[len(w.stack)-1].aw == nil {
		return fmt.Errorf("%w: no open array", ErrInvalidState)
	}
	top := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]

	return top.aw.WriteArrayEnd()
}

func (w *valueWriter) WriteName(name string) error {
	if len(w.stack) == 0 || w.stack[len(w.stack)-1].dw == nil {
		return fmt.Errorf("%w: WriteName outside a document", ErrInvalidState)
	}
	if w.next != nil {
		return fmt.Errorf("%w: previous name has no value", ErrInvalidState)
	}
	vw, err := w.stack[len(w.stack)-1].dw.WriteDocumentElement(name)
	if err != nil {
		return err
	}
	w.next = vw

	return nil
}

func (w *valueWriter) WriteNull() error {
	vw, err := w.value()
	if err != nil {
		return err
	}
	return vw.WriteNull()
}

func (w *valueWriter) WriteBoolean(b bool) error {
	vw, err := w.value()
	if err != nil {
		return err
	}
	return vw.WriteBoolean(b)
}

func (w *valueWriter) WriteInt32(i int32) error {
	vw, err := w.value()
	if err != nil {
		return err
	}
	return vw.WriteInt32(i)
}

func (w *valueWriter) WriteInt64(i int64) error {
	vw, err := w.value()
	if err != nil {
		return err
	}
	return vw.WriteInt64(i)
}

func (w *valueWriter) WriteDouble(f float64) error {
	vw, err := w.value()
	if err != nil {
		return err
	}
	return vw.WriteDouble(f)
}

func (w *valueWriter) WriteString(s string) error {
	vw, err := w.value()
	if err != nil {
		return err
	}
	return vw.WriteString(s)
}

func (w *valueWriter) WriteDateTime(ms int64) error {
	vw, err := w.value()
	if err != nil {
		return err
	}
	return vw.WriteDateTime(ms)
}

func (w *valueWriter) WriteObjectID(id primitive.ObjectID) error {
	vw, err := w.value()
	if err != nil {
		return err
	}
	return vw.WriteObjectID(id)
}

func (w *valueWriter) WriteBinary(subtype byte, data []byte) error {
	vw, err := w.value()
	if err != nil {
		return err
	}
	return vw.WriteBinaryWithSubtype(data, subtype)
}

func (w *valueWriter) WriteDecimal128(d primitive.Decimal128) error {
	vw, err := w.value()
	if err != nil {
		return err
	}
	return vw.WriteDecimal128(d)
}
