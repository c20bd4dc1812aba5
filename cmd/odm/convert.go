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
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"rivaas.dev/odm/document"
	"rivaas.dev/odm/types"
)

var errUnknownFormat = errors.New("unknown document format")

// Document formats accepted by convert.
const (
	formatExtJSON = "extjson"
	formatBSON    = "bson"
	formatMsgPack = "msgpack"
)

type convertOptions struct {
	Type      string `flag:"type" validate:"required"`
	From      string `flag:"from" validate:"oneof=extjson bson msgpack"`
	To        string `flag:"to" validate:"oneof=extjson bson msgpack"`
	In        string `flag:"in" validate:"required"`
	Out       string `flag:"out" validate:"required"`
	Canonical bool
}

var optionsValidator = newOptionsValidator()

// newOptionsValidator reports fields by their flag names.
func newOptionsValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("flag")
	})
	return v
}

func (o convertOptions) validate() error {
	err := optionsValidator.Struct(o)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "oneof" {
			errs = append(errs, fmt.Errorf("%w: --%s %q", errUnknownFormat, fe.Field(), fe.Value()))
			continue
		}
		errs = append(errs, fmt.Errorf("--%s: failed %q check", fe.Field(), fe.Tag()))
	}
	return errors.Join(errs...)
}

func (c *cli) convertCommand() *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "convert --type TYPE [OPTIONS]",
		Short: "Convert a document through a class codec",
		Long: `Decode one document with the codec of --type, which validates and
coerces every property, and encode the result in the --to format.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runConvert(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Type, "type", "t", "", "Document type, e.g. 'Box<int32>'")
	flags.StringVar(&opts.From, "from", formatExtJSON, "Input format: extjson, bson or msgpack")
	flags.StringVar(&opts.To, "to", formatExtJSON, "Output format: extjson, bson or msgpack")
	flags.StringVarP(&opts.In, "in", "i", "-", "Input file, - for stdin")
	flags.StringVarP(&opts.Out, "out", "o", "-", "Output file, - for stdout")
	flags.BoolVar(&opts.Canonical, "canonical", false, "Read and write canonical instead of relaxed Extended JSON")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func (c *cli) runConvert(cmd *cobra.Command, opts convertOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}
	typ, err := types.Parse(opts.Type)
	if err != nil {
		return err
	}

	data, err := readInput(cmd.InOrStdin(), opts.In)
	if err != nil {
		return err
	}
	r, err := newReader(opts.From, data, opts.Canonical)
	if err != nil {
		return err
	}
	v, err := c.mapper.Decode(r, typ)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	w, err := newWriter(opts.To, &buf, opts.Canonical)
	if err != nil {
		return err
	}
	if err := c.mapper.EncodeAs(w, v, typ); err != nil {
		return err
	}
	c.logger.Debug("document converted", "type", typ.String(), "from", opts.From, "to", opts.To, "bytes", buf.Len())

	return writeOutput(cmd.OutOrStdout(), opts.Out, buf.Bytes())
}

func newReader(format string, data []byte, canonical bool) (document.Reader, error) {
	switch format {
	case formatExtJSON:
		return document.NewExtJSONReader(bytes.NewReader(data), canonical)
	case formatBSON:
		return document.NewBSONReader(data), nil
	case formatMsgPack:
		return document.NewMsgPackReader(data)
	}
	return nil, fmt.Errorf("%w: %q", errUnknownFormat, format)
}

func newWriter(format string, w io.Writer, canonical bool) (document.Writer, error) {
	switch format {
	case formatExtJSON:
		return document.NewExtJSONWriter(w, canonical)
	case formatBSON:
		return document.NewBSONWriter(w)
	case formatMsgPack:
		return document.NewMsgPackWriter(w), nil
	}
	return nil, fmt.Errorf("%w: %q", errUnknownFormat, format)
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
