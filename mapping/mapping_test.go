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

package mapping

import (
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"rivaas.dev/odm/codec"
	"rivaas.dev/odm/document"
	"rivaas.dev/odm/pojo"
	"rivaas.dev/odm/types"
)

func testdata(name string) string {
	return filepath.Join("testdata", name)
}

func TestLoad_MergesFormats(t *testing.T) {
	t.Parallel()

	set, err := Load(testdata("base.yaml"), testdata("override.toml"), testdata("extra.json"))
	require.NoError(t, err)

	assert.Equal(t, []string{"Box", "Labeled", "Pair", "account"}, set.Names())
	assert.Equal(t, 4, set.Len())

	box, ok := set.Class("Box")
	require.True(t, ok)
	assert.Equal(t, []string{"T"}, box.TypeParams, "nested maps merge")
	assert.Equal(t, map[string]string{"T": "string"}, box.Bounds)
	require.Len(t, box.Properties, 1)

	cfg, ok := set.ClassConfig("account")
	require.True(t, ok)
	assert.Equal(t, map[string]pojo.PropertyConfig{
		"Name":   {SerializedName: "n"},
		"Secret": {Ignore: true},
	}, cfg.Properties, "lists are replaced")
	assert.Equal(t, []string{"Name"}, cfg.ConstructorParams)

	_, ok = set.ClassConfig("missing")
	assert.False(t, ok)
}

func TestLoadBytes_Empty(t *testing.T) {
	t.Parallel()

	set, err := LoadBytes(FormatYAML)
	require.NoError(t, err)
	assert.Zero(t, set.Len())

	set, err = LoadBytes(FormatYAML, []byte(""))
	require.NoError(t, err)
	assert.Empty(t, set.Names())

	models, err := set.Models()
	require.NoError(t, err)
	assert.Empty(t, models)
}

func TestSet_Models(t *testing.T) {
	t.Parallel()

	set, err := Load(testdata("base.yaml"))
	require.NoError(t, err)

	models, err := set.Models()
	require.NoError(t, err)
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.Name()
	}
	assert.Equal(t, []string{"Box", "Labeled", "account"}, names)

	labeled := models[1]
	value, ok := labeled.Property("value")
	require.True(t, ok)
	assert.Equal(t, "list<V>", value.Type().String())
	label, ok := labeled.Property("label")
	require.True(t, ok)
	assert.Equal(t, "lbl", label.SerializedName())
	assert.True(t, label.OmitIfDefault())

	name, ok := models[2].Property("Name")
	require.True(t, ok)
	assert.True(t, name.Type().Equal(types.Any))

	p := pojo.NewProvider()
	for _, m := range models {
		require.NoError(t, p.Register(m))
	}
	reg := codec.NewRegistry(codec.WithProvider(p))

	w := document.NewWriter()
	err = reg.Encode(w, map[string]any{"value": []int32{1, 2}, "label": "x"}, types.Named("Labeled", types.Int32))
	require.NoError(t, err)
	assert.Equal(t, bson.D{
		{Key: "value", Value: bson.A{int32(1), int32(2)}},
		{Key: "lbl", Value: "x"},
	}, w.Document())

	got, err := reg.Decode(document.NewReader(w.Document()), types.Named("Labeled", types.Int32))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"value": []int32{1, 2}, "label": "x"}, got)
}

func TestSet_ModelsBuildError(t *testing.T) {
	t.Parallel()

	set, err := LoadBytes(FormatYAML, []byte(`
classes:
  Bad:
    properties:
      - name: rest
        type: list<string>
        overflow: true
`))
	require.NoError(t, err)

	_, err = set.Models()
	require.ErrorIs(t, err, pojo.ErrInvalidOverflow)
	var me *Error
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "class Bad", me.Source)
	assert.Equal(t, "build", me.Operation)
}

func TestLoadBytes_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		format Format
		data   string
		want   error
		op     string
	}{
		{"unknown format", "xml", "<classes/>", ErrUnknownFormat, "parse"},
		{"wrong type", FormatYAML, "classes: {Box: {typeParams: T}}", ErrInvalidMapping, "validate"},
		{"unknown key", FormatYAML, "classes: {Box: {fields: []}}", ErrInvalidMapping, "validate"},
		{"unknown top-level key", FormatJSON, `{"types": {}}`, ErrInvalidMapping, "validate"},
		{"property without name", FormatYAML, "classes: {Box: {properties: [{type: int32}]}}", ErrInvalidMapping, "validate"},
		{"bad type expression", FormatYAML, "classes: {Box: {properties: [{name: v, type: 'list<'}]}}", types.ErrSyntax, "validate"},
		{"bad extends", FormatYAML, "classes: {Box: {typeParams: [T], extends: T}}", ErrInvalidMapping, "validate"},
		{"unknown supertype", FormatYAML, "classes: {Box: {extends: Base}}", ErrUnknownClass, "validate"},
		{"undeclared bound", FormatTOML, "[classes.Box.bounds]\nT = \"int32\"", ErrInvalidMapping, "validate"},
		{"duplicate property", FormatYAML, "classes: {Box: {properties: [{name: a}, {name: a}]}}", ErrInvalidMapping, "validate"},
		{"bad embeds", FormatYAML, "classes: {Box: {embeds: {Base: 'map<'}}}", types.ErrSyntax, "validate"},
		{"cycle", FormatYAML, "classes: {A: {extends: B}, B: {extends: C}, C: {extends: A}}", ErrExtendsCycle, "validate"},
		{"self cycle", FormatYAML, "classes: {A: {extends: A}}", ErrExtendsCycle, "validate"},
		{"malformed yaml", FormatYAML, "classes: [", nil, "parse"},
		{"malformed toml", FormatTOML, "[classes", nil, "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			set, err := LoadBytes(tt.format, []byte(tt.data))
			require.Error(t, err)
			assert.Nil(t, set)
			if tt.want != nil {
				require.ErrorIs(t, err, tt.want)
			}
			var me *Error
			require.ErrorAs(t, err, &me)
			assert.Equal(t, tt.op, me.Operation)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	_, err := Load("classes.xml")
	require.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Load(testdata("missing.yaml"))
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestFormatOf(t *testing.T) {
	t.Parallel()

	for path, want := range map[string]Format{
		"a.yaml": FormatYAML,
		"a.YML":  FormatYAML,
		"a.toml": FormatTOML,
		"a.json": FormatJSON,
	} {
		got, err := FormatOf(path)
		require.NoError(t, err)
		assert.Equal(t, want, got, path)
	}
	_, err := FormatOf("a.ini")
	require.ErrorIs(t, err, ErrUnknownFormat)
}
