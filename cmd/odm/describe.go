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
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"rivaas.dev/odm/pojo"
	"rivaas.dev/odm/types"
)

var errUnknownClass = errors.New("unknown class")

type classView struct {
	Name       string         `yaml:"name"`
	TypeParams []paramView    `yaml:"typeParams,omitempty"`
	Properties []propertyView `yaml:"properties"`
}

type paramView struct {
	Name  string `yaml:"name"`
	Bound string `yaml:"bound,omitempty"`
}

type propertyView struct {
	Name           string `yaml:"name"`
	SerializedName string `yaml:"serializedName"`
	Type           string `yaml:"type"`
	TypeParameters string `yaml:"typeParameters,omitempty"`
	OmitIfDefault  bool   `yaml:"omitIfDefault,omitempty"`
	Overflow       bool   `yaml:"overflow,omitempty"`
}

func (c *cli) describeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "describe [CLASS...]",
		Short: "Print class models as YAML",
		Long: `Print the class models loaded from the mapping files: type parameters,
properties with their declared types, serialized names and type parameter
maps. Without arguments every class is printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			models, err := c.selectModels(args)
			if err != nil {
				return err
			}
			views := make([]classView, len(models))
			for i, m := range models {
				views[i] = describe(m)
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(views); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func (c *cli) selectModels(names []string) ([]*pojo.ClassModel, error) {
	if len(names) == 0 {
		return c.mapper.Classes(), nil
	}
	out := make([]*pojo.ClassModel, 0, len(names))
	for _, n := range names {
		m, ok := c.mapper.Model(n)
		if !ok {
			return nil, fmt.Errorf("%w: %s", errUnknownClass, n)
		}
		out = append(out, m)
	}

	return out, nil
}

func describe(m *pojo.ClassModel) classView {
	v := classView{Name: m.Name(), Properties: []propertyView{}}
	for _, tp := range m.TypeParams() {
		pv := paramView{Name: tp.Name}
		if !tp.Bound.IsZero() && !tp.Bound.Equal(types.Any) {
			pv.Bound = tp.Bound.String()
		}
		v.TypeParams = append(v.TypeParams, pv)
	}
	for _, p := range m.Properties() {
		pv := propertyView{
			Name:           p.Name(),
			SerializedName: p.SerializedName(),
			Type:           p.Type().String(),
			OmitIfDefault:  p.OmitIfDefault(),
			Overflow:       p.IsOverflow(),
		}
		if tpm := p.TypeParameters(); tpm.HasTypeParameters() {
			pv.TypeParameters = tpm.String()
		}
		v.Properties = append(v.Properties, pv)
	}

	return v
}
