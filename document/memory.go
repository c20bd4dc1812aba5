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

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type writeFrame struct {
	doc   bson.D
	arr   bson.A
	isDoc bool
	name  string
	named bool
}

// MemoryWriter builds native driver values (bson.D, bson.A and scalars) in
// memory. It tracks the current document and array nesting, which is
// useful to check that encoders leave the writer balanced.
type MemoryWriter struct {
	stack  []*writeFrame
	root   any
	done   bool
	docs   int
	arrays int
}

var _ Writer = (*MemoryWriter)(nil)

// NewWriter returns an empty MemoryWriter.
func NewWriter() *MemoryWriter {
	return &MemoryWriter{}
}

// Document returns the written root value if it is a document, nil
// otherwise.
func (w *MemoryWriter) Document() bson.D {
	d, _ := w.root.(bson.D)
	return d
}

// Value returns the written root value.
func (w *MemoryWriter) Value() any {
	return w.root
}

// Done reports whether a complete root value has been written.
func (w *MemoryWriter) Done() bool {
	return w.done
}

// DocsLevel returns the number of currently open documents.
func (w *MemoryWriter) DocsLevel() int {
	return w.docs
}

// ArraysLevel returns the number of currently open arrays.
func (w *MemoryWriter) ArraysLevel() int {
	return w.arrays
}

// Reset discards everything written so far.
func (w *MemoryWriter) Reset() {
	*w = MemoryWriter{}
}

// checkValuePosition verifies that a value may be written now.
func (w *MemoryWriter) checkValuePosition() error {
	if len(w.stack) == 0 {
		if w.done {
			return fmt.Errorf("%w: root value already written", ErrInvalidState)
		}
		return nil
	}
	top := w.stack[len(w.stack)-1]
	if top.isDoc && !top.named {
		return fmt.Errorf("%w: value written without a name", ErrInvalidState)
	}

	return nil
}

func (w *MemoryWriter) put(v any) error {
	if err := w.checkValuePosition(); err != nil {
		return err
	}
	if len(w.stack) == 0 {
		w.root = v
		w.done = true
		return nil
	}
	top := w.stack[len(w.stack)-1]
	if top.isDoc {
		top.doc = append(top.doc, bson.E{Key: top.name, Value: v})
		top.named = false
		return nil
	}
	top.arr = append(top.arr, v)

	return nil
}

func (w *MemoryWriter) WriteStartDocument() error {
	if err := w.checkValuePosition(); err != nil {
		return err
	}
	w.stack = append(w.stack, &writeFrame{doc: bson.D{}, isDoc: true})
	w.docs++

	return nil
}

func (w *MemoryWriter) WriteEndDocument() error {
	if len(w.stack) == 0 || !w.stack[len(w.stack)-1].isDoc {
		return fmt.Errorf("%w: no open document", ErrInvalidState)
	}
	top := w.stack[len(w.stack)-1]
	if top.named {
		return fmt.Errorf("%w: name %q has no value", ErrInvalidState, top.name)
	}
	w.stack = w.stack[:len(w.stack)-1]
	w.docs--

	return w.put(top.doc)
}

func (w *MemoryWriter) WriteStartArray() error {
	if err := w.checkValuePosition(); err != nil {
		return err
	}
	w.stack = append(w.stack, &writeFrame{arr: bson.A{}})
	w.arrays++

	return nil
}

func (w *MemoryWriter) WriteEndArray() error {
	if len(w.stack) == 0 || w.stack[len(w.stack)-1].isDoc {
		return fmt.Errorf("%w: no open array", ErrInvalidState)
	}
	top := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	w.arrays--

	return w.put(top.arr)
}

func (w *MemoryWriter) WriteName(name string) error {
	if len(w.stack) == 0 || !w.stack[len(w.stack)-1].isDoc {
		return fmt.Errorf("%w: WriteName outside a document", ErrInvalidState)
	}
	top := w.stack[len(w.stack)-1]
	if top.named {
		return fmt.Errorf("%w: name %q has no value", ErrInvalidState, top.name)
	}
	top.name = name
	top.named = true

	return nil
}

func (w *MemoryWriter) WriteNull() error {
	return w.put(nil)
}

func (w *MemoryWriter) WriteBoolean(b bool) error {
	return w.put(b)
}

func (w *MemoryWriter) WriteInt32(i int32) error {
	return w.put(i)
}

func (w *MemoryWriter) WriteInt64(i int64) error {
	return w.put(i)
}

func (w *MemoryWriter) WriteDouble(f float64) error {
	return w.put(f)
}

func (w *MemoryWriter) WriteString(s string) error {
	return w.put(s)
}

func (w *MemoryWriter) WriteDateTime(ms int64) error {
	return w.put(primitive.DateTime(ms))
}

func (w *MemoryWriter) WriteObjectID(id primitive.ObjectID) error {
	return w.put(id)
}

func (w *MemoryWriter) WriteBinary(subtype byte, data []byte) error {
	return w.put(primitive.Binary{Subtype: subtype, Data: data})
}

func (w *MemoryWriter) WriteDecimal128(d primitive.Decimal128) error {
	return w.put(d)
}
