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

// Command odm inspects class mappings and converts documents between BSON,
// Extended JSON and MessagePack through typed class codecs.
//
// Usage:
//
//	odm --mapping classes.yaml describe Box
//	odm --mapping classes.yaml convert --type 'Box<int32>' --from extjson --to bson --in box.json --out box.bson
package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command line and returns the exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cli := newCLI(stdin, stdout, stderr)
	cmd := cli.rootCommand()
	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		if cli.logger != nil {
			cli.logger.Error("command failed", "error", err)
		} else {
			fmt.Fprintf(stderr, "odm: %v\n", err)
		}
		return 1
	}

	return 0
}
