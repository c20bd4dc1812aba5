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

package codec

import (
	"fmt"
	"reflect"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rivaas.dev/odm/types"
)

var (
	timeType     = reflect.TypeFor[time.Time]()
	dateTimeType = reflect.TypeFor[primitive.DateTime]()
	objectIDType = reflect.TypeFor[primitive.ObjectID]()
	decimalType  = reflect.TypeFor[primitive.Decimal128]()
	binaryType   = reflect.TypeFor[primitive.Binary]()
	bytesType    = reflect.TypeFor[[]byte]()
	documentType = reflect.TypeFor[bson.D]()
	arrayType    = reflect.TypeFor[bson.A]()
	anyType      = reflect.TypeFor[any]()
	int32Type    = reflect.TypeFor[int32]()
	int64Type    = reflect.TypeFor[int64]()
	float64Type  = reflect.TypeFor[float64]()
	stringType   = reflect.TypeFor[string]()
	boolType     = reflect.TypeFor[bool]()
)

func defaultGoTypes() map[reflect.Type]types.Type {
	return map[reflect.Type]types.Type{
		timeType:     types.DateTime,
		dateTimeType: types.DateTime,
		objectIDType: types.ObjectID,
		decimalType:  types.Decimal128,
		binaryType:   types.Binary,
		bytesType:    types.Binary,
		documentType: types.Document,
		arrayType:    types.List(types.Any),
	}
}

// TypeOf returns the document type used for values of Go type rt.
//
// Lookup order: registered types, registered interfaces, builtin kinds,
// then the TypeResolver. Pointers map to their element type and interface
// types to any. Unhandled types fail with ErrUnmappedType.
func (r *Registry) TypeOf(rt reflect.Type) (types.Type, error) {
	return r.typeOf(rt, r.resolver)
}

// TypeOfWith is TypeOf with fallback in place of the configured
// TypeResolver, for rt and every nested element type. A resolver that
// discovers types itself uses it to recurse without re-entering its own
// entry point.
func (r *Registry) TypeOfWith(rt reflect.Type, fallback TypeResolver) (types.Type, error) {
	return r.typeOf(rt, fallback)
}

func (r *Registry) typeOf(rt reflect.Type, fallback TypeResolver) (types.Type, error) {
	if rt == nil {
		return types.Any, nil
	}
	if t, ok := (*r.goTypes.Load())[rt]; ok {
		return t, nil
	}
	for _, h := range *r.hooks.Load() {
		if rt == h.iface || (rt.Kind() != reflect.Interface && rt.Implements(h.iface)) {
			return h.typ, nil
		}
	}

	switch rt.Kind() {
	case reflect.Pointer:
		return r.typeOf(rt.Elem(), fallback)
	case reflect.Interface:
		return types.Any, nil
	case reflect.Bool:
		return types.Bool, nil
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Uint8, reflect.Uint16:
		return types.Int32, nil
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint32, reflect.Uint64:
		return types.Int64, nil
	case reflect.Float32, reflect.Float64:
		return types.Double, nil
	case reflect.String:
		return types.String, nil
	case reflect.Slice, reflect.Array:
		if rt.Elem().Kind() == reflect.Uint8 {
			return types.Binary, nil
		}
		elem, err := r.typeOf(rt.Elem(), fallback)
		if err != nil {
			return types.Type{}, err
		}
		return types.List(elem), nil
	case reflect.Map:
		if rt.Key().Kind() != reflect.String {
			return types.Type{}, fmt.Errorf("%w: %s (map keys must be strings)", ErrUnmappedType, rt)
		}
		elem, err := r.typeOf(rt.Elem(), fallback)
		if err != nil {
			return types.Type{}, err
		}
		return types.Map(types.String, elem), nil
	}

	if fallback != nil {
		t, ok, err := fallback(rt)
		if err != nil {
			return types.Type{}, err
		}
		if ok {
			return t, nil
		}
	}

	return types.Type{}, fmt.Errorf("%w: %s", ErrUnmappedType, rt)
}
