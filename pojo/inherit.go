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

package pojo

import (
	"fmt"
	"slices"

	"rivaas.dev/odm/types"
)

// inherited collects the properties of every supertype, with their declared
// types rewritten in terms of this class's parameters.
//
// A super's property types already mention only the super's own
// parameters, because the super was built the same way. Substituting the
// super's parameters by this class's arguments is therefore enough to
// translate through any number of levels: for C<X> extends B<map<string,X>>
// extends A<list<U>>, A's property "value T" is stored in B as list<U> and
// becomes list<map<string,X>> in C.
func (b *ClassModelBuilder) inherited(params []string) ([]*PropertyModel, error) {
	var props []*PropertyModel
	for _, ref := range b.supers {
		if ref.model == nil {
			return nil, &MappingError{Class: b.name, Reason: "nil supertype"}
		}
		bindings, err := b.superBindings(ref, params)
		if err != nil {
			return nil, err
		}

		for _, sp := range ref.model.properties {
			f := sp.fields()
			f.typ = f.typ.Substitute(bindings)
			if ref.wrap != nil {
				f.accessor = ref.wrap(f.accessor)
			}
			p, err := newPropertyModel(b.name, f, params)
			if err != nil {
				return nil, err
			}
			if i := slices.IndexFunc(props, func(q *PropertyModel) bool { return q.name == p.name }); i >= 0 {
				props[i] = p
			} else {
				props = append(props, p)
			}
		}
	}

	return props, nil
}

func (b *ClassModelBuilder) superBindings(ref superRef, params []string) (map[string]types.Type, error) {
	super := ref.model
	if len(ref.args) > len(super.typeParams) {
		return nil, &MappingError{
			Class:  b.name,
			Reason: fmt.Sprintf("%s takes %d type arguments, got %d", super.name, len(super.typeParams), len(ref.args)),
			Err:    ErrTypeArgumentCount,
		}
	}

	bindings := make(map[string]types.Type, len(super.typeParams))
	for i, tp := range super.typeParams {
		arg := tp.Bound
		if i < len(ref.args) && !ref.args[i].IsZero() {
			arg = ref.args[i]
		}
		for _, v := range arg.Vars() {
			if !slices.Contains(params, v) {
				return nil, &MappingError{
					Class:  b.name,
					Reason: fmt.Sprintf("argument %s of %s", arg, super.name),
					Err:    unresolvableVar(v),
				}
			}
		}
		bindings[tp.Name] = arg
	}

	return bindings, nil
}
