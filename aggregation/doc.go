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

// Package aggregation builds aggregation pipelines as typed expression and
// stage values that encode themselves through a [codec.Registry].
//
// Expressions are composed from field references, literal values and
// operators:
//
//	total := aggregation.Multiply(aggregation.Field("price"), aggregation.Field("qty"))
//
// An operator with a single operand writes it directly ({"$abs": "$x"});
// operators with several operands write an array ({"$add": ["$a", 1]}).
// Literal operands are encoded with the registry, so registered classes
// may appear inside expressions.
//
// Stages are built the same way and encoded as a pipeline with [Encode]:
//
//	pipeline, err := aggregation.Encode(reg,
//	    aggregation.Match(aggregation.Gt(aggregation.Field("qty"), aggregation.Value(int32(0)))),
//	    aggregation.Group(aggregation.Field("sku")).Add("total", aggregation.Sum(total)),
//	    aggregation.Sort().Desc("total"),
//	)
//
// [Register] installs the expression and stage codecs in a registry so that
// expressions can also be encoded as values of other documents. Decoding
// expressions is not supported.
package aggregation
