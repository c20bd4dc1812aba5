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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"rivaas.dev/odm/codec"
	"rivaas.dev/odm/types"
)

func TestClassCodec_Box(t *testing.T) {
	t.Parallel()

	reg, _ := newTestRegistry(t, nil, boxModel(t))
	typ := types.Named("Box", types.Int32)

	d, err := encodeDoc(reg, &box{Value: int32(42)}, typ)
	require.NoError(t, err)
	assert.Equal(t, bson.D{{Key: "value", Value: int32(42)}}, d)

	got, err := decodeDoc(reg, d, typ)
	require.NoError(t, err)
	assert.Equal(t, &box{Value: int32(42)}, got)

	c, err := reg.Lookup(typ)
	require.NoError(t, err)
	assert.Equal(t, "*pojo.box", c.GoType().String())
}

func TestClassCodec_PairUsesArgumentCodecs(t *testing.T) {
	t.Parallel()

	reg, p := newTestRegistry(t, nil, pairModel(t))
	typ := types.Named("Pair", types.String, types.Int32)

	in := &pair{First: "a", Items: []any{"x", "y"}, Second: int32(7)}
	d, err := encodeDoc(reg, in, typ)
	require.NoError(t, err)
	assert.Equal(t, bson.D{
		{Key: "first", Value: "a"},
		{Key: "items", Value: bson.A{"x", "y"}},
		{Key: "second", Value: int32(7)},
	}, d)

	got, err := decodeDoc(reg, d, typ)
	require.NoError(t, err)
	assert.Equal(t, in, got)

	sp, err := p.Engine().Resolve(p.mustModel(t, "Pair"), types.String, types.Int32)
	require.NoError(t, err)
	items, ok := sp.PropertyType("items")
	require.True(t, ok)
	assert.Equal(t, "list<string>", items.String())

	// An int in the list is rejected by the string codec.
	_, err = decodeDoc(reg, bson.D{{Key: "items", Value: bson.A{"x", int32(1)}}}, typ)
	var de *codec.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "items.1", de.PathString())
	assert.ErrorIs(t, err, codec.ErrTypeMismatch)
}

func (p *Provider) mustModel(t testing.TB, name string) *ClassModel {
	t.Helper()
	m, ok := p.Model(name)
	require.True(t, ok, name)

	return m
}

func TestClassCodec_DecodeErrorHasPathAndNoResult(t *testing.T) {
	t.Parallel()

	reg, _ := newTestRegistry(t, nil, boxModel(t))

	got, err := decodeDoc(reg, bson.D{{Key: "value", Value: "not-a-number"}}, types.Named("Box", types.Int32))
	require.Error(t, err)
	assert.Nil(t, got)

	var de *codec.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, []string{"value"}, de.Path)
	assert.ErrorIs(t, err, codec.ErrTypeMismatch)

	var tm *codec.TypeMismatchError
	require.ErrorAs(t, err, &tm)
	assert.True(t, tm.Expected.Equal(types.Int32))
}

func TestClassCodec_NestedErrorPath(t *testing.T) {
	t.Parallel()

	holder := dynamic(t, DynamicClass{
		Name: "Holder",
		Properties: []DynamicProperty{
			{Name: "items", Type: types.List(types.Named("Box", types.Int32))},
		},
	})
	reg, _ := newTestRegistry(t, nil, boxModel(t), holder)

	_, err := decodeDoc(reg, bson.D{{Key: "items", Value: bson.A{
		bson.D{{Key: "value", Value: int32(1)}},
		bson.D{{Key: "value", Value: int32(2)}},
		bson.D{{Key: "value", Value: "three"}},
	}}}, types.Named("Holder"))

	var de *codec.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "items.2.value", de.PathString())
}

func TestClassCodec_NotADocument(t *testing.T) {
	t.Parallel()

	reg, _ := newTestRegistry(t, nil, boxModel(t))

	_, err := decodeDoc(reg, bson.D{{Key: "value", Value: "scalar"}}, types.Named("Box", types.Named("Box", types.Int32)))
	var tm *codec.TypeMismatchError
	require.ErrorAs(t, err, &tm)
	assert.Equal(t, "Box<int32>", tm.Expected.String())
}

func TestClassCodec_SelfReference(t *testing.T) {
	t.Parallel()

	reg, _ := newTestRegistry(t, nil, nodeModel(t))
	typ := types.Named("Node")

	in := &node{Value: 1, Next: &node{Value: 2, Next: &node{Value: 3}}}
	d, err := encodeDoc(reg, in, typ)
	require.NoError(t, err)
	assert.Equal(t, bson.D{
		{Key: "value", Value: int32(1)},
		{Key: "next", Value: bson.D{
			{Key: "value", Value: int32(2)},
			{Key: "next", Value: bson.D{{Key: "value", Value: int32(3)}}},
		}},
	}, d)

	got, err := decodeDoc(reg, d, typ)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestClassCodec_MaxDepth(t *testing.T) {
	t.Parallel()

	p := NewProvider()
	require.NoError(t, p.Register(nodeModel(t)))
	reg := codec.NewRegistry(codec.WithProvider(p), codec.WithMaxDepth(3))

	deep := &node{}
	for i := range 5 {
		deep = &node{Value: int32(i), Next: deep}
	}
	_, err := encodeDoc(reg, deep, types.Named("Node"))
	require.ErrorIs(t, err, codec.ErrMaxDepthExceeded)
}

func TestClassCodec_UnknownFields(t *testing.T) {
	t.Parallel()

	withSink := dynamic(t, DynamicClass{
		Name: "Doc",
		Properties: []DynamicProperty{
			{Name: "name", Type: types.String},
			{Name: "extra", Overflow: true},
		},
	})
	withoutSink := dynamic(t, DynamicClass{
		Name:       "Plain",
		Properties: []DynamicProperty{{Name: "name", Type: types.String}},
	})
	in := bson.D{
		{Key: "foo", Value: int32(1)},
		{Key: "name", Value: "x"},
		{Key: "bar", Value: bson.D{{Key: "deep", Value: bson.A{true}}}},
		{Key: "nothing", Value: nil},
	}

	t.Run("overflow collects", func(t *testing.T) {
		t.Parallel()
		reg, _ := newTestRegistry(t, nil, withSink)
		got, err := decodeDoc(reg, in, types.Named("Doc"))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"name": "x",
			"extra": map[string]any{
				"foo":     int32(1),
				"bar":     bson.D{{Key: "deep", Value: bson.A{true}}},
				"nothing": nil,
			},
		}, got)
	})

	t.Run("overflow without sink discards", func(t *testing.T) {
		t.Parallel()
		var (
			mu     sync.Mutex
			fields []string
		)
		events := Events{UnknownField: func(class, field string) {
			mu.Lock()
			defer mu.Unlock()
			fields = append(fields, class+"."+field)
		}}
		reg, _ := newTestRegistry(t, []Option{WithEvents(events)}, withoutSink)
		got, err := decodeDoc(reg, in, types.Named("Plain"))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"name": "x"}, got)
		assert.Equal(t, []string{"Plain.foo", "Plain.bar", "Plain.nothing"}, fields)
	})

	t.Run("discard policy ignores sink", func(t *testing.T) {
		t.Parallel()
		reg, _ := newTestRegistry(t, []Option{WithUnknownFieldPolicy(UnknownDiscard)}, withSink)
		got, err := decodeDoc(reg, in, types.Named("Doc"))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"name": "x"}, got)
	})

	t.Run("overflow is encoded after declared properties", func(t *testing.T) {
		t.Parallel()
		reg, _ := newTestRegistry(t, nil, withSink)
		d, err := encodeDoc(reg, map[string]any{
			"name":  "x",
			"extra": map[string]any{"zeta": int32(1), "name": "shadowed", "alpha": nil},
		}, types.Named("Doc"))
		require.NoError(t, err)
		assert.Equal(t, bson.D{
			{Key: "name", Value: "x"},
			{Key: "alpha", Value: nil},
			{Key: "zeta", Value: int32(1)},
		}, d)
	})
}

func TestClassCodec_TypedOverflow(t *testing.T) {
	t.Parallel()

	counters := dynamic(t, DynamicClass{
		Name: "Counters",
		Properties: []DynamicProperty{
			{Name: "total", Type: types.Int64},
			{Name: "rest", Type: types.Map(types.String, types.Int64), Overflow: true},
		},
	})
	reg, _ := newTestRegistry(t, nil, counters)

	got, err := decodeDoc(reg, bson.D{{Key: "total", Value: int32(3)}, {Key: "a", Value: int32(1)}}, types.Named("Counters"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"total": int64(3), "rest": map[string]any{"a": int64(1)}}, got)

	_, err = decodeDoc(reg, bson.D{{Key: "b", Value: "x"}}, types.Named("Counters"))
	var de *codec.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "b", de.PathString())
}

func TestClassCodec_OmitNilAndDefaults(t *testing.T) {
	t.Parallel()

	m := dynamic(t, DynamicClass{
		Name: "Opt",
		Properties: []DynamicProperty{
			{Name: "a", Type: types.String},
			{Name: "n", Type: types.Int32, OmitIfDefault: true},
			{Name: "tags", Type: types.List(types.String), OmitIfDefault: true},
		},
	})
	in := map[string]any{"a": nil, "n": int32(0), "tags": []string{}}

	t.Run("omit nil", func(t *testing.T) {
		t.Parallel()
		reg, _ := newTestRegistry(t, nil, m)
		d, err := encodeDoc(reg, in, types.Named("Opt"))
		require.NoError(t, err)
		assert.Equal(t, bson.D{}, d)
	})

	t.Run("write nil as null", func(t *testing.T) {
		t.Parallel()
		reg, _ := newTestRegistry(t, []Option{WithOmitNil(false)}, m)
		d, err := encodeDoc(reg, in, types.Named("Opt"))
		require.NoError(t, err)
		assert.Equal(t, bson.D{{Key: "a", Value: nil}}, d)

		got, err := decodeDoc(reg, d, types.Named("Opt"))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": nil}, got)
	})
}

type point struct {
	x, y  int32
	Label string
}

func TestClassCodec_Constructor(t *testing.T) {
	t.Parallel()

	m, err := NewClassModelBuilder("Point").
		Property(NewPropertyModelBuilder("x").Type(types.Int32).
			Accessor(Field[point, int32](func(p *point) int32 { return p.x }, nil))).
		Property(NewPropertyModelBuilder("y").Type(types.Int32).
			Accessor(Field[point, int32](func(p *point) int32 { return p.y }, nil))).
		Property(NewPropertyModelBuilder("label").Type(types.String).
			Accessor(Field(func(p *point) string { return p.Label }, func(p *point, v string) { p.Label = v }))).
		Constructor(Constructor{
			Params: []string{"x", "y"},
			New: func(args []any) (any, error) {
				p := &point{}
				if v, ok := args[0].(int32); ok {
					p.x = v
				}
				if v, ok := args[1].(int32); ok {
					p.y = v
				}
				return p, nil
			},
		}).
		Build()
	require.NoError(t, err)
	reg, _ := newTestRegistry(t, nil, m)

	got, err := decodeDoc(reg, bson.D{{Key: "label", Value: "p"}, {Key: "x", Value: int32(4)}}, types.Named("Point"))
	require.NoError(t, err)
	assert.Equal(t, &point{x: 4, Label: "p"}, got)

	d, err := encodeDoc(reg, &point{x: 1, y: 2, Label: "q"}, types.Named("Point"))
	require.NoError(t, err)
	assert.Equal(t, bson.D{
		{Key: "x", Value: int32(1)},
		{Key: "y", Value: int32(2)},
		{Key: "label", Value: "q"},
	}, d)
}

func TestClassCodec_ConstructorError(t *testing.T) {
	t.Parallel()

	errInvalid := errors.New("negative radius")
	m := NewClassModelBuilder("Circle").
		Property(NewPropertyModelBuilder("r").Type(types.Double).Accessor(MapKey("r"))).
		Constructor(Constructor{
			Params: []string{"r"},
			New: func(args []any) (any, error) {
				if r, _ := args[0].(float64); r < 0 {
					return nil, errInvalid
				}
				return map[string]any{"r": args[0]}, nil
			},
		}).
		MustBuild()
	reg, _ := newTestRegistry(t, nil, m)

	got, err := decodeDoc(reg, bson.D{{Key: "r", Value: -1.0}}, types.Named("Circle"))
	require.ErrorIs(t, err, errInvalid)
	assert.Nil(t, got)
}

type failingAccessor struct {
	err error
}

func (a failingAccessor) Get(any) (any, error) { return nil, a.err }
func (a failingAccessor) Set(any, any) error   { return a.err }

func TestClassCodec_AccessorErrors(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	m := NewClassModelBuilder("Broken").
		Instance(func() any { return map[string]any{} }).
		Property(NewPropertyModelBuilder("v").Type(types.Int32).Accessor(failingAccessor{err: errBoom})).
		MustBuild()
	reg, _ := newTestRegistry(t, nil, m)

	_, err := encodeDoc(reg, map[string]any{}, types.Named("Broken"))
	assert.Same(t, errBoom, err)

	got, err := decodeDoc(reg, bson.D{{Key: "v", Value: int32(1)}}, types.Named("Broken"))
	require.ErrorIs(t, err, errBoom)
	assert.Nil(t, got)
	var de *codec.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "v", de.PathString())
}

func TestClassCodec_ResolutionErrors(t *testing.T) {
	t.Parallel()

	reg, _ := newTestRegistry(t, nil, boxModel(t))

	t.Run("unknown argument type", func(t *testing.T) {
		t.Parallel()
		_, err := encodeDoc(reg, &box{Value: 1}, types.Named("Box", types.Named("Nope")))
		var re *ResolutionError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, "value", re.Property)
		assert.ErrorIs(t, err, codec.ErrCodecNotFound)
	})

	t.Run("too many arguments", func(t *testing.T) {
		t.Parallel()
		_, err := reg.Lookup(types.Named("Box", types.Int32, types.Int32))
		require.ErrorIs(t, err, ErrTypeArgumentCount)
	})

	t.Run("raw usage takes the bound", func(t *testing.T) {
		t.Parallel()
		d, err := encodeDoc(reg, &box{Value: "s"}, types.Named("Box"))
		require.NoError(t, err)
		assert.Equal(t, bson.D{{Key: "value", Value: "s"}}, d)
	})
}

func TestEngine_ResolveIsDeterministic(t *testing.T) {
	t.Parallel()

	var (
		mu          sync.Mutex
		specialized []string
	)
	e := NewEngine(WithEvents(Events{Specialized: func(t types.Type) {
		mu.Lock()
		defer mu.Unlock()
		specialized = append(specialized, t.String())
	}}))
	m := pairModel(t)

	const n = 16
	results := make([]*Specialization, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Go(func() {
			s, err := e.Resolve(m, types.String, types.Int32)
			assert.NoError(t, err)
			results[i] = s
		})
	}
	wg.Wait()

	for _, s := range results {
		assert.Same(t, results[0], s)
	}
	assert.Equal(t, 1, e.Len())
	assert.Equal(t, []string{"Pair<string,int32>"}, specialized)

	raw, err := e.Resolve(m, types.String)
	require.NoError(t, err)
	assert.Equal(t, "Pair<string,any>", raw.Type().String())
	assert.Len(t, raw.Args(), 2)

	_, err = e.Resolve(m, types.Var("T"))
	require.ErrorIs(t, err, codec.ErrNotConcrete)
}

func TestProvider_Register(t *testing.T) {
	t.Parallel()

	p := NewProvider()
	m := boxModel(t)
	require.NoError(t, p.Register(m))
	require.NoError(t, p.Register(m))
	require.ErrorIs(t, p.Register(boxModel(t)), ErrDuplicateClass)
	require.NoError(t, p.Register(pairModel(t)))

	models := p.Models()
	require.Len(t, models, 2)
	assert.Equal(t, "Box", models[0].Name())
	assert.Equal(t, "Pair", models[1].Name())

	c, err := p.Codec(types.Named("Unknown"), codec.NewRegistry())
	require.NoError(t, err)
	assert.Nil(t, c)
}
