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
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"rivaas.dev/odm"
	"rivaas.dev/odm/logging"
	"rivaas.dev/odm/mapping"
)

type rootOptions struct {
	mappings  []string
	logLevel  string
	logFormat string
}

// cli holds the streams and the state built before a subcommand runs.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	opts   rootOptions
	logger *logging.Logger
	mapper *odm.Mapper
}

func newCLI(stdin io.Reader, stdout, stderr io.Writer) *cli {
	return &cli{stdin: stdin, stdout: stdout, stderr: stderr}
}

func (c *cli) rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "odm",
		Short:         "Inspect class mappings and convert documents",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return c.setup()
		},
	}
	cmd.SetIn(c.stdin)
	cmd.SetOut(c.stdout)
	cmd.SetErr(c.stderr)

	flags := cmd.PersistentFlags()
	flags.StringArrayVarP(&c.opts.mappings, "mapping", "m", nil, "Mapping file (YAML, TOML or JSON); repeat to merge several")
	flags.StringVar(&c.opts.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	flags.StringVar(&c.opts.logFormat, "log-format", string(logging.ConsoleHandler), "Log format: console, text or json")

	cmd.AddCommand(c.describeCommand(), c.convertCommand())

	return cmd
}

// setup builds the logger, loads the mapping files and registers their
// classes.
func (c *cli) setup() error {
	level, err := logging.ParseLevel(c.opts.logLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseHandlerType(c.opts.logFormat)
	if err != nil {
		return err
	}
	c.logger, err = logging.New(
		logging.WithHandlerType(format),
		logging.WithLevel(level),
		logging.WithOutput(c.stderr),
		logging.WithServiceName("odm"),
	)
	if err != nil {
		return err
	}

	set, err := mapping.Load(c.opts.mappings...)
	if err != nil {
		return err
	}
	c.logger.Debug("mappings loaded", "files", len(c.opts.mappings), "classes", set.Len())

	c.mapper, err = odm.New(odm.WithLogger(c.logger.Logger()), odm.WithMappings(set))
	if err != nil {
		return err
	}
	models, err := set.Models()
	if err != nil {
		return err
	}
	for _, m := range models {
		if err := c.mapper.RegisterModel(m); err != nil {
			return fmt.Errorf("registering %s: %w", m.Name(), err)
		}
	}

	return nil
}
