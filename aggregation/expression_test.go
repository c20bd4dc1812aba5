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

package aggregation

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rivaas.dev/odm/codec"
	"rivaas.dev/odm/document"
)

// encode writes e and checks that the writer is left balanced.
func encode(t *testing.T, reg *codec.Registry, e Expression) (any, error) {
	t.Helper()

	w := document.NewWriter()
	if err := e.Encode(w, reg.EncodeContext()); err != nil {
		return nil, err
	}
	assert.Equal(t, 0, w.DocsLevel())
	assert.Equal(t, 0, w.ArraysLevel())

	return w.Value(), nil
}

func TestExpression_Encode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		expr Expression
		want any
	}{
		{"field", Field("qty"), "$qty"},
		{"field with prefix", Field("$$ROOT"), "$$ROOT"},
		{"value", Value(int32(5)), int32(5)},
		{"nil value", Value(nil), nil},
		{"datetime value", Value(time.UnixMilli(1000).UTC()), primitive.DateTime(1000)},
		{"list value", Value([]int32{1, 2}), bson.A{int32(1), int32(2)}},
		{"map value", Value(map[string]any{"b": int32(2), "a": "x"}), bson.D{{Key: "a", Value: "x"}, {Key: "b", Value: int32(2)}}},
		{"literal", Literal("$x"), bson.D{{Key: "$literal", Value: "$x"}}},
		{"single operand", Abs(Field("x")), bson.D{{Key: "$abs", Value: "$x"}}},
		{"variadic with one operand", Add(Field("a")), bson.D{{Key: "$add", Value: "$a"}}},
		{"variadic", Add(Field("a"), Value(int32(1))), bson.D{{Key: "$add", Value: bson.A{"$a", int32(1)}}}},
		{"no operands", And(), bson.D{{Key: "$and", Value: bson.A{}}}},
		{"binary", Divide(Field("a"), Field("b")), bson.D{{Key: "$divide", Value: bson.A{"$a", "$b"}}}},
		{"round to integer", Round(Field("x"), nil), bson.D{{Key: "$round", Value: "$x"}}},
		{"round to place", Round(Field("x"), Value(int32(2))), bson.D{{Key: "$round", Value: bson.A{"$x", int32(2)}}}},
		{"trunc", Trunc(Field("x"), nil), bson.D{{Key: "$trunc", Value: "$x"}}},
		{"log", Log(Field("x"), Value(int32(2))), bson.D{{Key: "$log", Value: bson.A{"$x", int32(2)}}}},
		{"cmp", Cmp(Field("a"), Value("b")), bson.D{{Key: "$cmp", Value: bson.A{"$a", "b"}}}},
		{"not", Not(Field("flag")), bson.D{{Key: "$not", Value: "$flag"}}},
		{"substr", Substr(Field("s"), Value(int32(0)), Value(int32(3))), bson.D{{Key: "$substrCP", Value: bson.A{"$s", int32(0), int32(3)}}}},
		{"strlen", StrLen(Field("s")), bson.D{{Key: "$strLenCP", Value: "$s"}}},
		{"if null", IfNull(Field("a"), Value("none")), bson.D{{Key: "$ifNull", Value: bson.A{"$a", "none"}}}},
		{
			"cond",
			Cond(Gte(Field("qty"), Value(int32(250))), Value(int32(30)), Value(int32(20))),
			bson.D{{Key: "$cond", Value: bson.D{
				{Key: "if", Value: bson.D{{Key: "$gte", Value: bson.A{"$qty", int32(250)}}}},
				{Key: "then", Value: int32(30)},
				{Key: "else", Value: int32(20)},
			}}},
		},
		{
			"nested",
			Multiply(Add(Field("a"), Field("b")), Sqrt(Field("c"))),
			bson.D{{Key: "$multiply", Value: bson.A{
				bson.D{{Key: "$add", Value: bson.A{"$a", "$b"}}},
				bson.D{{Key: "$sqrt", Value: "$c"}},
			}}},
		},
		{
			"document",
			Doc().Add("name", ToUpper(Field("name"))).Add("n", Value(int64(1))),
			bson.D{{Key: "name", Value: bson.D{{Key: "$toUpper", Value: "$name"}}}, {Key: "n", Value: int64(1)}},
		},
		{"accumulator", Sum(Field("qty")), bson.D{{Key: "$sum", Value: "$qty"}}},
		{"accumulator over operands", Max(Field("a"), Field("b")), bson.D{{Key: "$max", Value: bson.A{"$a", "$b"}}}},
		{"push", Push(Doc().Add("sku", Field("sku"))), bson.D{{Key: "$push", Value: bson.D{{Key: "sku", Value: "$sku"}}}}},
	}

	reg := codec.NewRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := encode(t, reg, tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpression_EncodeErrors(t *testing.T) {
	t.Parallel()

	_, err := encode(t, codec.NewRegistry(), Add(Field("a"), Value(make(chan int))))
	require.ErrorIs(t, err, codec.ErrUnmappedType)
	var ee *codec.EncodeError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "$add", ee.PathString())

	deep := Field("x")
	for range 5 {
		deep = Abs(deep)
	}
	_, err = encode(t, codec.NewRegistry(codec.WithMaxDepth(3)), deep)
	require.ErrorIs(t, err, codec.ErrMaxDepthExceeded)
}

func TestRegister(t *testing.T) {
	t.Parallel()

	reg := codec.NewRegistry()
	Register(reg)

	typ, err := reg.TypeOf(reflect.TypeOf(Field("x")))
	require.NoError(t, err)
	assert.True(t, typ.Equal(ExpressionType))

	typ, err = reg.TypeOf(reflect.TypeOf(Limit(1)))
	require.NoError(t, err)
	assert.True(t, typ.Equal(StageType))

	// Expressions nested in plain values go through the registered codec.
	got, err := encode(t, reg, Value(map[string]any{"e": Add(Field("x"), Value(int32(1)))}))
	require.NoError(t, err)
	assert.Equal(t, bson.D{{Key: "e", Value: bson.D{{Key: "$add", Value: bson.A{"$x", int32(1)}}}}}, got)

	w := document.NewWriter()
	require.NoError(t, reg.EncodeValue(w, Project().Include("a")))
	assert.Equal(t, bson.D{{Key: "$project", Value: bson.D{{Key: "a", Value: true}}}}, w.Document())

	c, err := reg.Lookup(ExpressionType)
	require.NoError(t, err)
	_, err = c.Decode(document.NewValueReader("$x"), reg.DecodeContext())
	require.ErrorIs(t, err, codec.ErrDecodeUnsupported)

	err = c.Encode(document.NewWriter(), 42, reg.EncodeContext())
	require.ErrorIs(t, err, codec.ErrInvalidValue)
}
