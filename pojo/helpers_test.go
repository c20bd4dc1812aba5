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
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"rivaas.dev/odm/codec"
	"rivaas.dev/odm/document"
	"rivaas.dev/odm/types"
)

type box struct {
	Value any
}

type pair struct {
	First  any
	Items  []any
	Second any
}

type node struct {
	Value int32
	Next  *node
}

func boxModel(t testing.TB) *ClassModel {
	t.Helper()

	m, err := NewClassModelBuilder("Box").
		TypeParams("T").
		Instance(NewInstance[box]()).
		Property(NewPropertyModelBuilder("value").
			Type(types.Var("T")).
			Accessor(Field(
				func(b *box) any { return b.Value },
				func(b *box, v any) { b.Value = v },
			))).
		Build()
	require.NoError(t, err)

	return m
}

func pairModel(t testing.TB) *ClassModel {
	t.Helper()

	m, err := NewClassModelBuilder("Pair").
		TypeParams("A", "B").
		Instance(NewInstance[pair]()).
		Property(NewPropertyModelBuilder("first").
			Type(types.Var("A")).
			Accessor(Field(func(p *pair) any { return p.First }, func(p *pair, v any) { p.First = v }))).
		Property(NewPropertyModelBuilder("items").
			Type(types.List(types.Var("A"))).
			Accessor(Field(func(p *pair) []any { return p.Items }, func(p *pair, v []any) { p.Items = v }))).
		Property(NewPropertyModelBuilder("second").
			Type(types.Var("B")).
			Accessor(Field(func(p *pair) any { return p.Second }, func(p *pair, v any) { p.Second = v }))).
		Build()
	require.NoError(t, err)

	return m
}

func nodeModel(t testing.TB) *ClassModel {
	t.Helper()

	m, err := NewClassModelBuilder("Node").
		Instance(NewInstance[node]()).
		Property(NewPropertyModelBuilder("value").
			Type(types.Int32).
			Accessor(Field(func(n *node) int32 { return n.Value }, func(n *node, v int32) { n.Value = v }))).
		Property(NewPropertyModelBuilder("next").
			Type(types.Named("Node")).
			Accessor(Field(func(n *node) *node { return n.Next }, func(n *node, v *node) { n.Next = v }))).
		Build()
	require.NoError(t, err)

	return m
}

// dynamic builds a map-backed class and fails the test on error.
func dynamic(t testing.TB, dc DynamicClass) *ClassModel {
	t.Helper()

	m, err := NewDynamicClass(dc)
	require.NoError(t, err)

	return m
}

func newTestRegistry(t testing.TB, opts []Option, models ...*ClassModel) (*codec.Registry, *Provider) {
	t.Helper()

	p := NewProvider(opts...)
	for _, m := range models {
		require.NoError(t, p.Register(m))
	}

	return codec.NewRegistry(codec.WithProvider(p)), p
}

func encodeDoc(reg *codec.Registry, v any, typ types.Type) (bson.D, error) {
	w := document.NewWriter()
	if err := reg.Encode(w, v, typ); err != nil {
		return nil, err
	}
	if w.DocsLevel() != 0 || w.ArraysLevel() != 0 {
		return nil, fmt.Errorf("writer left unbalanced: %d documents, %d arrays open", w.DocsLevel(), w.ArraysLevel())
	}

	return w.Document(), nil
}

func decodeDoc(reg *codec.Registry, d bson.D, typ types.Type) (any, error) {
	return reg.Decode(document.NewReader(d), typ)
}

// testResolver resolves field types through a registry and embedded structs
// by discovering them with the configs it was given.
type testResolver struct {
	reg     *codec.Registry
	configs map[reflect.Type]ClassConfig

	mu     sync.Mutex
	models map[reflect.Type]*ClassModel
}

func newTestResolver(configs map[reflect.Type]ClassConfig) *testResolver {
	return &testResolver{
		reg:     codec.NewRegistry(),
		configs: configs,
		models:  make(map[reflect.Type]*ClassModel),
	}
}

func (r *testResolver) TypeOf(rt reflect.Type) (types.Type, error) {
	t, err := r.reg.TypeOf(rt)
	if err == nil || !errors.Is(err, codec.ErrUnmappedType) || rt.Kind() != reflect.Struct {
		return t, err
	}
	m, err := r.ModelOf(rt)
	if err != nil {
		return types.Type{}, err
	}

	return types.Named(m.Name()), nil
}

func (r *testResolver) ModelOf(rt reflect.Type) (*ClassModel, error) {
	r.mu.Lock()
	m, ok := r.models[rt]
	r.mu.Unlock()
	if ok {
		return m, nil
	}

	m, err := Discover(rt, r.configs[rt], r)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.models[rt] = m
	r.mu.Unlock()

	return m, nil
}
