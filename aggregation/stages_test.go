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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"rivaas.dev/odm/codec"
)

func TestStage_Encode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		stage Stage
		want  bson.D
	}{
		{
			name:  "project",
			stage: Project().Exclude("_id").Include("name").Add("total", Add(Field("a"), Field("b"))),
			want: bson.D{{Key: "$project", Value: bson.D{
				{Key: "_id", Value: false},
				{Key: "name", Value: true},
				{Key: "total", Value: bson.D{{Key: "$add", Value: bson.A{"$a", "$b"}}}},
			}}},
		},
		{
			name:  "project exclusion",
			stage: Project().Exclude("secret", "_id"),
			want:  bson.D{{Key: "$project", Value: bson.D{{Key: "secret", Value: false}, {Key: "_id", Value: false}}}},
		},
		{
			name:  "add fields",
			stage: AddFields().Add("flag", Value(true)),
			want:  bson.D{{Key: "$addFields", Value: bson.D{{Key: "flag", Value: true}}}},
		},
		{
			name:  "match",
			stage: Match(Gt(Field("qty"), Value(int32(0)))),
			want: bson.D{{Key: "$match", Value: bson.D{
				{Key: "$expr", Value: bson.D{{Key: "$gt", Value: bson.A{"$qty", int32(0)}}}},
			}}},
		},
		{
			name:  "group",
			stage: Group(Field("sku")).Add("total", Sum(Field("qty"))).Add("names", AddToSet(Field("name"))),
			want: bson.D{{Key: "$group", Value: bson.D{
				{Key: "_id", Value: "$sku"},
				{Key: "total", Value: bson.D{{Key: "$sum", Value: "$qty"}}},
				{Key: "names", Value: bson.D{{Key: "$addToSet", Value: "$name"}}},
			}}},
		},
		{
			name:  "group all",
			stage: Group(nil).Add("n", Sum(Value(int32(1)))),
			want: bson.D{{Key: "$group", Value: bson.D{
				{Key: "_id", Value: nil},
				{Key: "n", Value: bson.D{{Key: "$sum", Value: int32(1)}}},
			}}},
		},
		{
			name:  "sort",
			stage: Sort().Asc("a").Desc("b"),
			want:  bson.D{{Key: "$sort", Value: bson.D{{Key: "a", Value: int32(1)}, {Key: "b", Value: int32(-1)}}}},
		},
		{"limit", Limit(10), bson.D{{Key: "$limit", Value: int64(10)}}},
		{"skip", Skip(0), bson.D{{Key: "$skip", Value: int64(0)}}},
		{"sample", Sample(3), bson.D{{Key: "$sample", Value: bson.D{{Key: "size", Value: int64(3)}}}}},
		{"count", Count("n"), bson.D{{Key: "$count", Value: "n"}}},
		{"unwind", Unwind("tags"), bson.D{{Key: "$unwind", Value: "$tags"}}},
		{
			name:  "unwind long form",
			stage: Unwind("$tags").IncludeArrayIndex("idx").PreserveNullAndEmptyArrays(true),
			want: bson.D{{Key: "$unwind", Value: bson.D{
				{Key: "path", Value: "$tags"},
				{Key: "includeArrayIndex", Value: "idx"},
				{Key: "preserveNullAndEmptyArrays", Value: true},
			}}},
		},
		{
			name:  "replace root",
			stage: ReplaceRoot(Field("inner")),
			want:  bson.D{{Key: "$replaceRoot", Value: bson.D{{Key: "newRoot", Value: "$inner"}}}},
		},
	}

	reg := codec.NewRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := encode(t, reg, tt.stage)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStage_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		stage Stage
		want  error
	}{
		{"mixed projection", Project().Include("a").Exclude("b"), ErrMixedProjection},
		{"computed and excluded", Project().Add("x", Field("y")).Exclude("b"), ErrMixedProjection},
		{"empty projection", Project(), ErrEmptyStage},
		{"empty add fields", AddFields(), ErrEmptyStage},
		{"empty sort", Sort(), ErrEmptyStage},
		{"nil match", Match(nil), ErrNilExpression},
		{"nil root", ReplaceRoot(nil), ErrNilExpression},
		{"zero limit", Limit(0), ErrInvalidStage},
		{"negative skip", Skip(-1), ErrInvalidStage},
		{"zero sample", Sample(0), ErrInvalidStage},
		{"count path", Count("a.b"), ErrInvalidStage},
		{"count variable", Count("$n"), ErrInvalidStage},
		{"unwind without path", Unwind("$"), ErrInvalidStage},
	}

	reg := codec.NewRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := encode(t, reg, tt.stage)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	reg := codec.NewRegistry()
	pipeline, err := Encode(reg,
		Match(Eq(Field("status"), Value("A"))),
		Group(Field("cust")).Add("total", Sum(Field("amount"))),
		Sort().Desc("total"),
		Limit(5),
	)
	require.NoError(t, err)
	assert.Equal(t, bson.A{
		bson.D{{Key: "$match", Value: bson.D{{Key: "$expr", Value: bson.D{{Key: "$eq", Value: bson.A{"$status", "A"}}}}}}},
		bson.D{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$cust"}, {Key: "total", Value: bson.D{{Key: "$sum", Value: "$amount"}}}}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "total", Value: int32(-1)}}}},
		bson.D{{Key: "$limit", Value: int64(5)}},
	}, pipeline)

	empty, err := Encode(reg)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = Encode(reg, Limit(1), Project().Include("a").Exclude("b"))
	require.ErrorIs(t, err, ErrMixedProjection)
	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 1, se.Index)
	assert.Equal(t, "$project", se.Stage)

	_, err = Encode(reg, nil)
	require.ErrorIs(t, err, ErrNilExpression)
}
