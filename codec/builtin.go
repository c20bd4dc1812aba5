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

	"rivaas.dev/odm/types"
)

var scalarCodecs = map[string]Codec{
	types.NameInt32:      int32Codec{},
	types.NameInt64:      int64Codec{},
	types.NameDouble:     doubleCodec{},
	types.NameString:     stringCodec{},
	types.NameBool:       boolCodec{},
	types.NameDateTime:   dateTimeCodec{},
	types.NameObjectID:   objectIDCodec{},
	types.NameBinary:     binaryCodec{},
	types.NameDecimal128: decimal128Codec{},
	types.NameDocument:   documentCodec{},
	types.NameAny:        anyCodec{},
}

// builtinProvider serves scalars, any, document, list<E> and map<string,V>.
type builtinProvider struct{}

func (builtinProvider) Codec(t types.Type, reg *Registry) (Codec, error) {
	if c, ok := scalarCodecs[t.Name()]; ok {
		if t.NumArgs() != 0 {
			return nil, fmt.Errorf("%w: %s takes no type arguments", ErrCodecNotFound, t.Name())
		}
		return c, nil
	}

	switch t.Name() {
	case types.NameList:
		if t.NumArgs() != 1 {
			return nil, fmt.Errorf("%w: %s: list takes exactly one type argument", ErrCodecNotFound, t)
		}
		elem, err := reg.Lookup(t.Arg(0))
		if err != nil {
			return nil, err
		}
		return NewListCodec(elem, t.Arg(0)), nil

	case types.NameMap:
		if t.NumArgs() != 2 {
			return nil, fmt.Errorf("%w: %s: map takes exactly two type arguments", ErrCodecNotFound, t)
		}
		if !t.Arg(0).Equal(types.String) {
			return nil, fmt.Errorf("%w: %s: map keys must be string", ErrCodecNotFound, t)
		}
		value, err := reg.Lookup(t.Arg(1))
		if err != nil {
			return nil, err
		}
		return NewMapCodec(value, t.Arg(1)), nil
	}

	return nil, nil
}
