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

// Package reflectx holds the reflection helpers shared by the codec and
// class-model packages.
package reflectx

import (
	"errors"
	"fmt"
	"math"
	"reflect"
)

// ErrNotAssignable is returned when a decoded value cannot be stored in the
// destination.
var ErrNotAssignable = errors.New("value not assignable")

// AssignError describes a failed assignment.
type AssignError struct {
	From reflect.Type
	To   reflect.Type
}

// Error implements error.
func (e *AssignError) Error() string {
	from := "nil"
	if e.From != nil {
		from = e.From.String()
	}
	return fmt.Sprintf("cannot assign %s to %s", from, e.To)
}

// Unwrap returns ErrNotAssignable.
func (e *AssignError) Unwrap() error {
	return ErrNotAssignable
}

// Assign stores v into dst, converting where no information is lost:
// numeric kinds (range checked), named types sharing a kind, pointers,
// and slices, arrays and maps element by element. Arrays take only
// sources of the same length. A nil v zeroes dst.
func Assign(dst reflect.Value, v any) error {
	if v == nil {
		dst.SetZero()
		return nil
	}

	return assign(dst, reflect.ValueOf(v))
}

func assign(dst, src reflect.Value) error {
	if src.Kind() == reflect.Interface {
		if src.IsNil() {
			dst.SetZero()
			return nil
		}
		src = src.Elem()
	}
	if src.Type().AssignableTo(dst.Type()) {
		dst.Set(src)
		return nil
	}

	switch {
	case src.Kind() == reflect.Pointer:
		if src.IsNil() {
			dst.SetZero()
			return nil
		}
		return assign(dst, src.Elem())

	case dst.Kind() == reflect.Pointer:
		p := reflect.New(dst.Type().Elem())
		if err := assign(p.Elem(), src); err != nil {
			return err
		}
		dst.Set(p)
		return nil

	case dst.Kind() == reflect.Slice && (src.Kind() == reflect.Slice || src.Kind() == reflect.Array):
		if src.Kind() == reflect.Slice && src.IsNil() {
			dst.SetZero()
			return nil
		}
		out := reflect.MakeSlice(dst.Type(), src.Len(), src.Len())
		for i := range src.Len() {
			if err := assign(out.Index(i), src.Index(i)); err != nil {
				return err
			}
		}
		dst.Set(out)
		return nil

	case dst.Kind() == reflect.Array && (src.Kind() == reflect.Slice || src.Kind() == reflect.Array):
		if src.Len() != dst.Len() {
			return &AssignError{From: src.Type(), To: dst.Type()}
		}
		out := reflect.New(dst.Type()).Elem()
		for i := range src.Len() {
			if err := assign(out.Index(i), src.Index(i)); err != nil {
				return err
			}
		}
		dst.Set(out)
		return nil

	case dst.Kind() == reflect.Map && src.Kind() == reflect.Map:
		if src.IsNil() {
			dst.SetZero()
			return nil
		}
		out := reflect.MakeMapWithSize(dst.Type(), src.Len())
		iter := src.MapRange()
		for iter.Next() {
			k := reflect.New(dst.Type().Key()).Elem()
			if err := assign(k, iter.Key()); err != nil {
				return err
			}
			e := reflect.New(dst.Type().Elem()).Elem()
			if err := assign(e, iter.Value()); err != nil {
				return err
			}
			out.SetMapIndex(k, e)
		}
		dst.Set(out)
		return nil
	}

	if convertScalar(dst, src) {
		return nil
	}

	return &AssignError{From: src.Type(), To: dst.Type()}
}

// convertScalar handles conversions between kinds of the same family.
func convertScalar(dst, src reflect.Value) bool {
	switch {
	case isInt(dst.Kind()) && isInt(src.Kind()):
		n := src.Int()
		if dst.OverflowInt(n) {
			return false
		}
		dst.SetInt(n)
	case isInt(dst.Kind()) && isUint(src.Kind()):
		u := src.Uint()
		if u > math.MaxInt64 || dst.OverflowInt(int64(u)) {
			return false
		}
		dst.SetInt(int64(u))
	case isUint(dst.Kind()) && isInt(src.Kind()):
		n := src.Int()
		if n < 0 || dst.OverflowUint(uint64(n)) {
			return false
		}
		dst.SetUint(uint64(n))
	case isUint(dst.Kind()) && isUint(src.Kind()):
		u := src.Uint()
		if dst.OverflowUint(u) {
			return false
		}
		dst.SetUint(u)
	case isFloat(dst.Kind()) && isFloat(src.Kind()):
		dst.SetFloat(src.Float())
	case isFloat(dst.Kind()) && isInt(src.Kind()):
		dst.SetFloat(float64(src.Int()))
	case isInt(dst.Kind()) && isFloat(src.Kind()):
		f := src.Float()
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 || dst.OverflowInt(int64(f)) {
			return false
		}
		dst.SetInt(int64(f))
	case dst.Kind() == reflect.String && src.Kind() == reflect.String:
		dst.SetString(src.String())
	case dst.Kind() == reflect.Bool && src.Kind() == reflect.Bool:
		dst.SetBool(src.Bool())
	case dst.Kind() == reflect.Struct && src.Type().ConvertibleTo(dst.Type()):
		dst.Set(src.Convert(dst.Type()))
	default:
		return false
	}

	return true
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

// IsNil reports whether v is nil or a nil pointer, map, slice, interface,
// func or channel.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}

	return false
}

// IsZero reports whether v is nil or the zero value of its type. Empty
// slices and maps count as zero.
func IsZero(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	}

	return rv.IsZero()
}

// Indirect dereferences pointers until it reaches a non-pointer value. It
// returns false when a nil pointer is met.
func Indirect(v reflect.Value) (reflect.Value, bool) {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return v, false
		}
		v = v.Elem()
	}

	return v, v.IsValid()
}
