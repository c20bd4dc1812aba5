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

package reflectx

import (
	"math"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type status string

func TestAssign(t *testing.T) {
	t.Parallel()

	t.Run("same type", func(t *testing.T) {
		t.Parallel()
		var s string
		require.NoError(t, Assign(reflect.ValueOf(&s).Elem(), "x"))
		assert.Equal(t, "x", s)
	})

	t.Run("named string", func(t *testing.T) {
		t.Parallel()
		var s status
		require.NoError(t, Assign(reflect.ValueOf(&s).Elem(), "active"))
		assert.Equal(t, status("active"), s)
	})

	t.Run("widening int", func(t *testing.T) {
		t.Parallel()
		var n int
		require.NoError(t, Assign(reflect.ValueOf(&n).Elem(), int32(7)))
		assert.Equal(t, 7, n)
	})

	t.Run("narrowing overflow", func(t *testing.T) {
		t.Parallel()
		var n int8
		err := Assign(reflect.ValueOf(&n).Elem(), int32(300))
		require.ErrorIs(t, err, ErrNotAssignable)
	})

	t.Run("integral float", func(t *testing.T) {
		t.Parallel()
		var n int64
		require.NoError(t, Assign(reflect.ValueOf(&n).Elem(), 3.0))
		assert.Equal(t, int64(3), n)
		require.Error(t, Assign(reflect.ValueOf(&n).Elem(), 3.5))
	})

	t.Run("float at int64 bound", func(t *testing.T) {
		t.Parallel()
		var n int64
		err := Assign(reflect.ValueOf(&n).Elem(), float64(math.MaxInt64))
		require.ErrorIs(t, err, ErrNotAssignable)
		assert.Zero(t, n)
	})

	t.Run("pointer destination", func(t *testing.T) {
		t.Parallel()
		var p *int32
		require.NoError(t, Assign(reflect.ValueOf(&p).Elem(), int32(5)))
		require.NotNil(t, p)
		assert.Equal(t, int32(5), *p)
	})

	t.Run("slice elementwise", func(t *testing.T) {
		t.Parallel()
		var xs []any
		require.NoError(t, Assign(reflect.ValueOf(&xs).Elem(), []string{"a", "b"}))
		assert.Equal(t, []any{"a", "b"}, xs)

		var ys []int64
		require.NoError(t, Assign(reflect.ValueOf(&ys).Elem(), []any{int32(1), int64(2)}))
		assert.Equal(t, []int64{1, 2}, ys)
	})

	t.Run("array from slice", func(t *testing.T) {
		t.Parallel()
		var key [4]byte
		require.NoError(t, Assign(reflect.ValueOf(&key).Elem(), []byte{1, 2, 3, 4}))
		assert.Equal(t, [4]byte{1, 2, 3, 4}, key)

		err := Assign(reflect.ValueOf(&key).Elem(), []byte{1, 2})
		require.ErrorIs(t, err, ErrNotAssignable)
		assert.Equal(t, [4]byte{1, 2, 3, 4}, key, "a failed assignment leaves dst unchanged")
	})

	t.Run("map elementwise", func(t *testing.T) {
		t.Parallel()
		var m map[string]float64
		require.NoError(t, Assign(reflect.ValueOf(&m).Elem(), map[string]any{"a": int32(1)}))
		assert.Equal(t, map[string]float64{"a": 1}, m)
	})

	t.Run("nil zeroes", func(t *testing.T) {
		t.Parallel()
		s := "set"
		require.NoError(t, Assign(reflect.ValueOf(&s).Elem(), nil))
		assert.Empty(t, s)
	})

	t.Run("int to string rejected", func(t *testing.T) {
		t.Parallel()
		var s string
		err := Assign(reflect.ValueOf(&s).Elem(), 65)
		var ae *AssignError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, reflect.TypeFor[string](), ae.To)
	})
}

func TestIsNilIsZero(t *testing.T) {
	t.Parallel()

	var p *int
	var m map[string]int
	assert.True(t, IsNil(nil))
	assert.True(t, IsNil(p))
	assert.True(t, IsNil(m))
	assert.False(t, IsNil(0))

	assert.True(t, IsZero(0))
	assert.True(t, IsZero(""))
	assert.True(t, IsZero([]int{}))
	assert.False(t, IsZero([]int{1}))
	assert.False(t, IsZero("x"))
}

func TestIndirect(t *testing.T) {
	t.Parallel()

	n := 3
	p := &n
	v, ok := Indirect(reflect.ValueOf(&p))
	require.True(t, ok)
	assert.Equal(t, 3, v.Interface())

	var nilPtr *int
	_, ok = Indirect(reflect.ValueOf(nilPtr))
	assert.False(t, ok)
}
