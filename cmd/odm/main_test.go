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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var classesFile = filepath.Join("testdata", "classes.yaml")

// execute runs the CLI and returns its exit status and output streams.
func execute(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)

	return code, stdout.String(), stderr.String()
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	code, out, errOut := execute(t, "", "--mapping", classesFile, "describe", "Labeled")
	require.Equal(t, 0, code, errOut)

	var views []classView
	require.NoError(t, yaml.Unmarshal([]byte(out), &views))
	require.Len(t, views, 1)
	assert.Equal(t, classView{
		Name:       "Labeled",
		TypeParams: []paramView{{Name: "V"}},
		Properties: []propertyView{
			{Name: "value", SerializedName: "value", Type: "list<V>", TypeParameters: "{0:0}"},
			{Name: "label", SerializedName: "lbl", Type: "string", OmitIfDefault: true},
		},
	}, views[0])
}

func TestDescribe_All(t *testing.T) {
	t.Parallel()

	code, out, errOut := execute(t, "", "-m", classesFile, "describe")
	require.Equal(t, 0, code, errOut)

	var views []classView
	require.NoError(t, yaml.Unmarshal([]byte(out), &views))
	require.Len(t, views, 3)
	assert.Equal(t, "Box", views[0].Name)
	assert.Equal(t, []paramView{{Name: "T"}}, views[0].TypeParams, "unbounded parameters print no bound")
	assert.Equal(t, "{-1:0}", views[0].Properties[0].TypeParameters)
	assert.Equal(t, "Tagged", views[2].Name)
	assert.Equal(t, []paramView{{Name: "N", Bound: "string"}}, views[2].TypeParams)
}

func TestDescribe_UnknownClass(t *testing.T) {
	t.Parallel()

	code, out, errOut := execute(t, "", "-m", classesFile, "--log-format", "text", "describe", "Nope")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "unknown class: Nope")
	assert.Contains(t, errOut, "level=ERROR")
}

func TestConvert(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bin := filepath.Join(dir, "box.bson")

	code, _, errOut := execute(t, `{"value": 7, "extra": true}`,
		"-m", classesFile, "convert", "--type", "Box<int32>", "--to", "bson", "--out", bin)
	require.Equal(t, 0, code, errOut)

	code, out, errOut := execute(t, "",
		"-m", classesFile, "convert", "-t", "Box<int32>", "--from", "bson", "--in", bin, "--canonical")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, `{"value":{"$numberInt":"7"}}`+"\n", out)

	msgpack := filepath.Join(dir, "labeled.msgpack")
	code, _, errOut = execute(t, `{"value": [1, 2], "lbl": "x"}`,
		"-m", classesFile, "convert", "-t", "Labeled<int64>", "--to", "msgpack", "-o", msgpack)
	require.Equal(t, 0, code, errOut)

	data, err := os.ReadFile(msgpack)
	require.NoError(t, err)
	code, out, errOut = execute(t, string(data),
		"-m", classesFile, "convert", "-t", "Labeled<int64>", "--from", "msgpack")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, `{"value":[1,2],"lbl":"x"}`+"\n", out)
}

func TestConvert_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"missing type", "{}", []string{"convert"}, "required flag(s)"},
		{"empty type", "{}", []string{"convert", "-t", ""}, "--type"},
		{"bad type", "{}", []string{"convert", "-t", "Box<"}, "Box<"},
		{"unknown class", "{}", []string{"convert", "-t", "Nope"}, "Nope"},
		{"wrong value", `{"value": "seven"}`, []string{"convert", "-t", "Box<int32>"}, `decoding \"value\"`},
		{"bad input format", "{}", []string{"convert", "-t", "Box<int32>", "--from", "xml"}, "unknown document format"},
		{"bad output format", "{}", []string{"convert", "-t", "Box<int32>", "--to", "xml"}, "unknown document format"},
		{"bad log level", "{}", []string{"--log-level", "loud", "convert", "-t", "Box<int32>"}, "invalid log level"},
		{"missing mapping", "{}", []string{"-m", "missing.yaml", "convert", "-t", "Box<int32>"}, "missing.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			args := append([]string{"-m", classesFile, "--log-format", "text"}, tt.args...)
			code, out, errOut := execute(t, tt.stdin, args...)
			assert.Equal(t, 1, code)
			assert.Empty(t, out)
			assert.Contains(t, errOut, tt.want)
		})
	}
}
