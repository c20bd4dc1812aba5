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
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"github.com/go-viper/mapstructure/v2"
	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Format is a mapping file format.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatOf derives the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

//go:embed schema.json
var schemaJSON []byte

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("mapping.schema.json", doc); err != nil {
		return nil, err
	}
	return c.Compile("mapping.schema.json")
})

// Load reads, merges and validates mapping files. The format of each file
// follows from its extension.
func Load(paths ...string) (*Set, error) {
	docs := make([]map[string]any, 0, len(paths))
	for _, p := range paths {
		format, err := FormatOf(p)
		if err != nil {
			return nil, newError(p, "read", err)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, newError(p, "read", err)
		}
		doc, err := parse(format, data)
		if err != nil {
			return nil, newError(p, "parse", err)
		}
		docs = append(docs, doc)
	}

	return build(docs)
}

// LoadBytes merges and validates mapping documents of one format.
func LoadBytes(format Format, data ...[]byte) (*Set, error) {
	docs := make([]map[string]any, 0, len(data))
	for i, d := range data {
		doc, err := parse(format, d)
		if err != nil {
			return nil, newError(fmt.Sprintf("data[%d]", i), "parse", err)
		}
		docs = append(docs, doc)
	}

	return build(docs)
}

// parse decodes one document into plain JSON values.
func parse(format Format, data []byte) (map[string]any, error) {
	var raw map[string]any
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	case FormatTOML:
		err = toml.Unmarshal(data, &raw)
	case FormatJSON:
		err = json.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return map[string]any{}, nil
	}

	// Round-trip through JSON so every format yields map[string]any and
	// []any trees, which is what the schema validator expects.
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}

	return doc, nil
}

func build(docs []map[string]any) (*Set, error) {
	merged := make(map[string]any)
	for i, doc := range docs {
		if err := mergo.Map(&merged, doc, mergo.WithOverride); err != nil {
			return nil, newError(fmt.Sprintf("document[%d]", i), "merge", err)
		}
	}

	schema, err := compiledSchema()
	if err != nil {
		return nil, newError("schema", "compile", err)
	}
	if err := schema.Validate(any(merged)); err != nil {
		return nil, newError("schema", "validate", fmt.Errorf("%w: %w", ErrInvalidMapping, err))
	}

	var file File
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &file,
	})
	if err != nil {
		return nil, newError("mapping", "decode", err)
	}
	if err := dec.Decode(merged); err != nil {
		return nil, newError("mapping", "decode", fmt.Errorf("%w: %w", ErrInvalidMapping, err))
	}

	return newSet(file)
}
