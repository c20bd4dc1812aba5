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
	"errors"
	"fmt"
	"reflect"

	"rivaas.dev/odm/internal/reflectx"
)

// Static errors returned by accessors.
var (
	ErrInstanceType = errors.New("unexpected instance type")
	ErrReadOnly     = errors.New("property is read-only")
)

// Accessor reads and writes one property of an instance.
//
// Get errors are returned to the encode caller unchanged. Set receives the
// decoded value, which may need conversion to the property's Go type.
type Accessor interface {
	Get(instance any) (any, error)
	Set(instance any, value any) error
}

// writable is implemented by accessors that may refuse writes.
type writable interface {
	CanSet() bool
}

type funcAccessor[T, V any] struct {
	get func(*T) V
	set func(*T, V)
}

// Field returns an accessor backed by typed functions. Instances are *T;
// a T value is accepted by Get. A nil set makes the property read-only,
// which suits properties filled by a constructor.
func Field[T, V any](get func(*T) V, set func(*T, V)) Accessor {
	return &funcAccessor[T, V]{get: get, set: set}
}

func instancePtr[T any](inst any) (*T, error) {
	switch x := inst.(type) {
	case *T:
		if x == nil {
			return nil, ErrNilInstance
		}
		return x, nil
	case T:
		return &x, nil
	}

	return nil, fmt.Errorf("%w: expected *%s, got %T", ErrInstanceType, reflect.TypeFor[T](), inst)
}

func (a *funcAccessor[T, V]) Get(inst any) (any, error) {
	p, err := instancePtr[T](inst)
	if err != nil {
		return nil, err
	}

	return a.get(p), nil
}

func (a *funcAccessor[T, V]) Set(inst any, value any) error {
	if a.set == nil {
		return ErrReadOnly
	}
	p, err := instancePtr[T](inst)
	if err != nil {
		return err
	}
	var v V
	if err := reflectx.Assign(reflect.ValueOf(&v).Elem(), value); err != nil {
		return err
	}
	a.set(p, v)

	return nil
}

func (a *funcAccessor[T, V]) CanSet() bool {
	return a.set != nil
}

// fieldAccessor reads a struct field by index through reflection.
type fieldAccessor struct {
	index int
}

func structValue(inst any) (reflect.Value, error) {
	v, ok := reflectx.Indirect(reflect.ValueOf(inst))
	if !ok {
		return reflect.Value{}, ErrNilInstance
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%w: %T is not a struct", ErrInstanceType, inst)
	}

	return v, nil
}

func settableStruct(inst any) (reflect.Value, error) {
	rv := reflect.ValueOf(inst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return reflect.Value{}, fmt.Errorf("%w: setting a field requires a non-nil pointer, got %T", ErrInstanceType, inst)
	}
	v := rv.Elem()
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%w: %T is not a struct pointer", ErrInstanceType, inst)
	}

	return v, nil
}

func (a *fieldAccessor) Get(inst any) (any, error) {
	v, err := structValue(inst)
	if err != nil {
		return nil, err
	}

	return v.Field(a.index).Interface(), nil
}

func (a *fieldAccessor) Set(inst any, value any) error {
	v, err := settableStruct(inst)
	if err != nil {
		return err
	}

	return reflectx.Assign(v.Field(a.index), value)
}

// embeddedAccessor reaches a property promoted from an embedded struct.
type embeddedAccessor struct {
	index int
	ptr   bool
	inner Accessor
}

func embeddedWrap(index int, ptr bool) func(Accessor) Accessor {
	return func(inner Accessor) Accessor {
		return &embeddedAccessor{index: index, ptr: ptr, inner: inner}
	}
}

func (a *embeddedAccessor) Get(inst any) (any, error) {
	v, err := structValue(inst)
	if err != nil {
		return nil, err
	}
	f := v.Field(a.index)
	if a.ptr {
		if f.IsNil() {
			return nil, nil
		}
		return a.inner.Get(f.Interface())
	}
	if f.CanAddr() {
		return a.inner.Get(f.Addr().Interface())
	}

	return a.inner.Get(f.Interface())
}

func (a *embeddedAccessor) Set(inst any, value any) error {
	v, err := settableStruct(inst)
	if err != nil {
		return err
	}
	f := v.Field(a.index)
	if a.ptr {
		if f.IsNil() {
			if value == nil {
				return nil
			}
			f.Set(reflect.New(f.Type().Elem()))
		}
		return a.inner.Set(f.Interface(), value)
	}

	return a.inner.Set(f.Addr().Interface(), value)
}

func (a *embeddedAccessor) CanSet() bool {
	w, ok := a.inner.(writable)
	return !ok || w.CanSet()
}

// mapAccessor stores a property under a key of a map[string]any instance.
type mapAccessor struct {
	key string
}

// MapKey returns an accessor for instances of type map[string]any.
func MapKey(key string) Accessor {
	return &mapAccessor{key: key}
}

func (a *mapAccessor) Get(inst any) (any, error) {
	m, ok := inst.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected map[string]any, got %T", ErrInstanceType, inst)
	}

	return m[a.key], nil
}

func (a *mapAccessor) Set(inst any, value any) error {
	m, ok := inst.(map[string]any)
	if !ok || m == nil {
		return fmt.Errorf("%w: expected non-nil map[string]any, got %T", ErrInstanceType, inst)
	}
	m[a.key] = value

	return nil
}
