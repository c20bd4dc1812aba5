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

// Accumulators are used in [GroupStage] fields. Sum, Avg, Min and Max also
// work as plain expressions over several operands or an array.

// Sum adds numeric values, ignoring non-numeric ones.
func Sum(args ...Expression) Expression { return op("$sum", args...) }

// Avg averages numeric values.
func Avg(args ...Expression) Expression { return op("$avg", args...) }

// Min returns the lowest value.
func Min(args ...Expression) Expression { return op("$min", args...) }

// Max returns the highest value.
func Max(args ...Expression) Expression { return op("$max", args...) }

// First returns the value from the first document of each group.
func First(e Expression) Expression { return op("$first", e) }

// Last returns the value from the last document of each group.
func Last(e Expression) Expression { return op("$last", e) }

// Push collects the values of each group into an array.
func Push(e Expression) Expression { return op("$push", e) }

// AddToSet collects the distinct values of each group into an array.
func AddToSet(e Expression) Expression { return op("$addToSet", e) }
