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

package pojo

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/bson"

	"rivaas.dev/odm/codec"
	"rivaas.dev/odm/document"
	"rivaas.dev/odm/internal/reflectx"
	"rivaas.dev/odm/types"
)

// propertyCodecs is the resolved codec set of one specialization. It is
// computed as a whole and published with a single store.
type propertyCodecs struct {
	props    []codec.Codec
	overflow codec.Codec
}

// classCodec encodes and decodes instances of one specialization.
type classCodec struct {
	sp     *Specialization
	opts   *Options
	goType reflect.Type

	resolved atomic.Pointer[propertyCodecs]
}

func newClassCodec(sp *Specialization, opts *Options) *classCodec {
	m := sp.model

	var goType reflect.Type
	switch {
	case m.goType != nil:
		goType = reflect.PointerTo(m.goType)
	case m.newInstance != nil:
		goType = reflect.TypeOf(m.newInstance())
	}
	if goType == nil {
		goType = reflect.TypeFor[any]()
	}

	return &classCodec{sp: sp, opts: opts, goType: goType}
}

func (c *classCodec) GoType() reflect.Type { return c.goType }

// codecs resolves property codecs on first use. Resolution is deferred so
// that self-referencing classes can be looked up while they are being
// built.
func (c *classCodec) codecs(reg *codec.Registry) (*propertyCodecs, error) {
	if pc := c.resolved.Load(); pc != nil {
		return pc, nil
	}

	m := c.sp.model
	pc := &propertyCodecs{props: make([]codec.Codec, len(m.properties))}
	for i, p := range m.properties {
		if p.overflow {
			vt := types.Any
			if t := c.sp.propTypes[i]; t.Name() == types.NameMap {
				vt = t.Arg(1)
			}
			vc, err := reg.Lookup(vt)
			if err != nil {
				return nil, &ResolutionError{Type: c.sp.typ, Property: p.name, Err: err}
			}
			pc.overflow = vc
			continue
		}
		if p.codec != nil {
			pc.props[i] = p.codec
			continue
		}
		pcodec, err := reg.Lookup(c.sp.propTypes[i])
		if err != nil {
			return nil, &ResolutionError{Type: c.sp.typ, Property: p.name, Err: err}
		}
		pc.props[i] = pcodec
	}
	c.resolved.Store(pc)

	return pc, nil
}

func (c *classCodec) Encode(w document.Writer, v any, ctx codec.EncodeContext) error {
	if reflectx.IsNil(v) {
		return w.WriteNull()
	}
	pc, err := c.codecs(ctx.Registry)
	if err != nil {
		return err
	}
	nested, err := ctx.Nested()
	if err != nil {
		return err
	}

	m := c.sp.model
	if err := w.WriteStartDocument(); err != nil {
		return err
	}
	for i, p := range m.properties {
		if p.overflow {
			continue
		}
		val, err := p.accessor.Get(v)
		if err != nil {
			return err
		}
		if reflectx.IsNil(val) {
			if c.opts.OmitNil || p.omitIfDefault {
				continue
			}
			if err := w.WriteName(p.serializedName); err != nil {
				return err
			}
			if err := w.WriteNull(); err != nil {
				return err
			}
			continue
		}
		if p.omitIfDefault && reflectx.IsZero(val) {
			continue
		}
		if err := w.WriteName(p.serializedName); err != nil {
			return err
		}
		if err := pc.props[i].Encode(w, val, nested); err != nil {
			return codec.WrapEncodeError(p.serializedName, err)
		}
	}
	if err := c.encodeOverflow(w, v, pc, nested); err != nil {
		return err
	}

	return w.WriteEndDocument()
}

// encodeOverflow writes the entries of the overflow property after the
// declared properties. Entries named like a declared property are dropped.
func (c *classCodec) encodeOverflow(w document.Writer, v any, pc *propertyCodecs, ctx codec.EncodeContext) error {
	ov := c.sp.model.Overflow()
	if ov == nil {
		return nil
	}
	val, err := ov.accessor.Get(v)
	if err != nil {
		return err
	}
	if reflectx.IsNil(val) {
		return nil
	}
	entries, ok := codec.Entries(val)
	if !ok {
		return codec.WrapEncodeError(ov.serializedName,
			fmt.Errorf("%w: overflow value %T is not a document", codec.ErrInvalidValue, val))
	}

	for _, e := range entries {
		if _, declared := c.sp.model.bySerialized[e.Key]; declared {
			continue
		}
		if err := w.WriteName(e.Key); err != nil {
			return err
		}
		if reflectx.IsNil(e.Value) {
			if err := w.WriteNull(); err != nil {
				return err
			}
			continue
		}
		if err := pc.overflow.Encode(w, e.Value, ctx); err != nil {
			return codec.WrapEncodeError(e.Key, err)
		}
	}

	return nil
}

func (c *classCodec) Decode(r document.Reader, ctx codec.DecodeContext) (any, error) {
	if t := r.CurrentType(); t != document.TypeDocument {
		return nil, &codec.TypeMismatchError{Expected: c.sp.typ, Actual: t}
	}
	pc, err := c.codecs(ctx.Registry)
	if err != nil {
		return nil, err
	}
	nested, err := ctx.Nested()
	if err != nil {
		return nil, err
	}
	if err := r.ReadStartDocument(); err != nil {
		return nil, err
	}

	m := c.sp.model
	sink := m.overflow >= 0 && c.opts.UnknownFields == UnknownOverflow
	values := make([]any, len(m.properties))
	present := make([]bool, len(m.properties))
	var extra bson.D

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

		idx, known := m.bySerialized[name]
		if known && idx == m.overflow {
			known = false
		}
		if !known {
			if !sink {
				if err := r.Skip(); err != nil {
					return nil, codec.WrapDecodeError(name, err)
				}
				c.discarded(name)
				continue
			}
			var v any
			if t == document.TypeNull {
				err = r.ReadNull()
			} else {
				v, err = pc.overflow.Decode(r, nested)
			}
			if err != nil {
				return nil, codec.WrapDecodeError(name, err)
			}
			extra = append(extra, bson.E{Key: name, Value: v})
			continue
		}

		p := m.properties[idx]
		present[idx] = true
		if t == document.TypeNull {
			values[idx] = nil
			if err := r.ReadNull(); err != nil {
				return nil, codec.WrapDecodeError(p.serializedName, err)
			}
			continue
		}
		v, err := pc.props[idx].Decode(r, nested)
		if err != nil {
			return nil, codec.WrapDecodeError(p.serializedName, err)
		}
		values[idx] = v
	}
	if err := r.ReadEndDocument(); err != nil {
		return nil, err
	}

	return c.instantiate(values, present, extra)
}

func (c *classCodec) discarded(field string) {
	m := c.sp.model
	c.opts.Logger.Debug("unknown field discarded", "class", m.name, "field", field)
	if fn := c.opts.Events.UnknownField; fn != nil {
		fn(m.name, field)
	}
}

// instantiate creates the instance and stores the staged values. Nothing
// is returned on failure.
func (c *classCodec) instantiate(values []any, present []bool, extra bson.D) (any, error) {
	m := c.sp.model

	var inst any
	if m.ctor != nil {
		args := make([]any, len(m.ctorArgs))
		for i, idx := range m.ctorArgs {
			if present[idx] {
				args[i] = values[idx]
			}
		}
		v, err := m.ctor.New(args)
		if err != nil {
			if asDecodeError(err) {
				return nil, err
			}
			return nil, fmt.Errorf("constructing %s: %w", c.sp.typ, err)
		}
		inst = v
	} else {
		inst = m.newInstance()
	}
	if reflectx.IsNil(inst) {
		return nil, fmt.Errorf("constructing %s: %w", c.sp.typ, ErrNilInstance)
	}

	for i, p := range m.properties {
		if !present[i] || p.overflow || (m.consumed != nil && m.consumed[i]) || !p.Writable() {
			continue
		}
		if err := p.accessor.Set(inst, values[i]); err != nil {
			return nil, codec.WrapDecodeError(p.serializedName, err)
		}
	}

	if ov := m.Overflow(); ov != nil && len(extra) > 0 && ov.Writable() {
		if err := ov.accessor.Set(inst, c.overflowValue(extra)); err != nil {
			return nil, codec.WrapDecodeError(ov.serializedName, err)
		}
	}

	return inst, nil
}

// overflowValue converts collected entries to the shape of the overflow
// property's type.
func (c *classCodec) overflowValue(extra bson.D) any {
	if c.sp.propTypes[c.sp.model.overflow].Name() != types.NameMap {
		return extra
	}
	out := make(map[string]any, len(extra))
	for _, e := range extra {
		out[e.Key] = e.Value
	}

	return out
}
