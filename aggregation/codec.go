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
	"fmt"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"

	"rivaas.dev/odm/codec"
	"rivaas.dev/odm/document"
	"rivaas.dev/odm/types"
)

// Document types under which expressions and stages are registered.
var (
	ExpressionType = types.Named("expression")
	StageType      = types.Named("stage")
)

var (
	expressionGoType = reflect.TypeFor[Expression]()
	stageGoType      = reflect.TypeFor[Stage]()
)

// expressionCodec encodes any Expression. It cannot decode.
type expressionCodec struct {
	typ    types.Type
	goType reflect.Type
}

func (c expressionCodec) GoType() reflect.Type { return c.goType }

func (c expressionCodec) Encode(w document.Writer, v any, ctx codec.EncodeContext) error {
	e, ok := v.(Expression)
	if !ok {
		return fmt.Errorf("%w: %T is not an %s", codec.ErrInvalidValue, v, c.typ)
	}
	return e.Encode(w, ctx)
}

func (c expressionCodec) Decode(document.Reader, codec.DecodeContext) (any, error) {
	return nil, fmt.Errorf("%w: %s", codec.ErrDecodeUnsupported, c.typ)
}

// Register installs the expression and stage codecs in reg and maps every
// Go type implementing Expression or Stage to them. Stages are matched
// first.
func Register(reg *codec.Registry) {
	reg.RegisterCodec(StageType, expressionCodec{typ: StageType, goType: stageGoType})
	reg.RegisterCodec(ExpressionType, expressionCodec{typ: ExpressionType, goType: expressionGoType})
	reg.RegisterInterface(stageGoType, StageType)
	reg.RegisterInterface(expressionGoType, ExpressionType)
}

// Encode writes the stages as a pipeline. A failing stage is reported as
// a *StageError.
func Encode(reg *codec.Registry, stages ...Stage) (bson.A, error) {
	ctx := reg.EncodeContext()
	out := make(bson.A, 0, len(stages))
	for i, s := range stages {
		if s == nil {
			return nil, &StageError{Index: i, Err: ErrNilExpression}
		}
		w := document.NewWriter()
		if err := s.Encode(w, ctx); err != nil {
			return nil, &StageError{Index: i, Stage: s.Operator(), Err: err}
		}
		out = append(out, w.Document())
	}
	reg.Logger().Debug("pipeline encoded", "stages", len(out))

	return out, nil
}
