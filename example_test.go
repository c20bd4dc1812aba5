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

package odm_test

import (
	"fmt"
	"reflect"

	"rivaas.dev/odm"
	"rivaas.dev/odm/pojo"
	"rivaas.dev/odm/types"
)

type Item struct {
	SKU string `odm:"sku"`
	Qty int32  `odm:"qty"`
}

type Page struct {
	Items []any `odm:"items" odmtype:"list<T>"`
	Next  string `odm:"next,omitempty"`
}

func Example() {
	m := odm.MustNew()
	if err := m.Map(reflect.TypeFor[Page](), pojo.ClassConfig{TypeParams: []string{"T"}}); err != nil {
		fmt.Println(err)
		return
	}
	if err := m.Warmup(Item{}); err != nil {
		fmt.Println(err)
		return
	}

	pageOfItems := types.Named("Page", types.Named("Item"))
	in := Page{Items: []any{Item{SKU: "a", Qty: 2}}}

	data, err := m.MarshalAs(in, pageOfItems)
	if err != nil {
		fmt.Println(err)
		return
	}
	out, err := m.UnmarshalAs(data, pageOfItems)
	if err != nil {
		fmt.Println(err)
		return
	}
	page := out.(*Page)
	fmt.Printf("%d item(s), first is %+v\n", len(page.Items), page.Items[0])
	// Output: 1 item(s), first is &{SKU:a Qty:2}
}
