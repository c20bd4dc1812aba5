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
	"rivaas.dev/odm/codec"
	"rivaas.dev/odm/document"
)

// Math operators.

// Abs returns the absolute value of a number.
func Abs(e Expression) Expression { return op("$abs", e) }

// Add sums numbers, or adds milliseconds to a date.
func Add(args ...Expression) Expression { return op("$add", args...) }

// Ceil rounds up to the nearest integer.
func Ceil(e Expression) Expression { return op("$ceil", e) }

// Divide divides dividend by divisor.
func Divide(dividend, divisor Expression) Expression { return op("$divide", dividend, divisor) }

// Exp raises Euler's number to the given exponent.
func Exp(e Expression) Expression { return op("$exp", e) }

// Floor rounds down to the nearest integer.
func Floor(e Expression) Expression { return op("$floor", e) }

// Ln is the natural logarithm.
func Ln(e Expression) Expression { return op("$ln", e) }

// Log is the logarithm of number in base.
func Log(number, base Expression) Expression { return op("$log", number, base) }

// Log10 is the base 10 logarithm.
func Log10(e Expression) Expression { return op("$log10", e) }

// Mod is the remainder of dividend divided by divisor.
func Mod(dividend, divisor Expression) Expression { return op("$mod", dividend, divisor) }

// Multiply multiplies numbers.
func Multiply(args ...Expression) Expression { return op("$multiply", args...) }

// Pow raises number to exponent.
func Pow(number, exponent Expression) Expression { return op("$pow", number, exponent) }

// Round rounds number to place decimal places. A nil place rounds to an
// integer.
func Round(number, place Expression) Expression { return withPlace("$round", number, place) }

// Sqrt is the square root.
func Sqrt(e Expression) Expression { return op("$sqrt", e) }

// Subtract subtracts b from a.
func Subtract(a, b Expression) Expression { return op("$subtract", a, b) }

// Trunc truncates number to place decimal places. A nil place truncates to
// an integer.
func Trunc(number, place Expression) Expression { return withPlace("$trunc", number, place) }

func withPlace(name string, number, place Expression) Expression {
	if place == nil {
		return op(name, number)
	}
	return op(name, number, place)
}

// Comparison operators.

// Eq is true when both values are equivalent.
func Eq(a, b Expression) Expression { return op("$eq", a, b) }

// Ne is true when the values differ.
func Ne(a, b Expression) Expression { return op("$ne", a, b) }

// Gt is true when a > b.
func Gt(a, b Expression) Expression { return op("$gt", a, b) }

// Gte is true when a >= b.
func Gte(a, b Expression) Expression { return op("$gte", a, b) }

// Lt is true when a < b.
func Lt(a, b Expression) Expression { return op("$lt", a, b) }

// Lte is true when a <= b.
func Lte(a, b Expression) Expression { return op("$lte", a, b) }

// Cmp returns -1, 0 or 1 comparing a to b.
func Cmp(a, b Expression) Expression { return op("$cmp", a, b) }

// Boolean operators.

// And is true when all arguments are true.
func And(args ...Expression) Expression { return op("$and", args...) }

// Or is true when any argument is true.
func Or(args ...Expression) Expression { return op("$or", args...) }

// Not negates its argument.
func Not(e Expression) Expression { return op("$not", e) }

// String operators.

// Concat concatenates strings.
func Concat(args ...Expression) Expression { return op("$concat", args...) }

// ToLower converts a string to lowercase.
func ToLower(e Expression) Expression { return op("$toLower", e) }

// ToUpper converts a string to uppercase.
func ToUpper(e Expression) Expression { return op("$toUpper", e) }

// Substr returns length code points of s starting at start.
func Substr(s, start, length Expression) Expression { return op("$substrCP", s, start, length) }

// StrLen returns the number of code points in a string.
func StrLen(e Expression) Expression { return op("$strLenCP", e) }

// Conditional operators.

// Cond evaluates then when cond is true and otherwise els.
func Cond(cond, then, els Expression) Expression {
	return op("$cond", fieldsExpr{{"if", cond}, {"then", then}, {"else", els}})
}

// IfNull evaluates to replacement when e is null or missing.
func IfNull(e, replacement Expression) Expression { return op("$ifNull", e, replacement) }

// fieldsExpr adapts a field list to an Expression.
type fieldsExpr []namedExpr

func (f fieldsExpr) Encode(w document.Writer, ctx codec.EncodeContext) error {
	return writeFields(w, f, ctx)
}
