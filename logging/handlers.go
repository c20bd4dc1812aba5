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

package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// consoleTimeFormat is time.TimeOnly plus milliseconds.
const consoleTimeFormat = "15:04:05.000"

// newConsoleHandler creates a human-readable handler. Colors are enabled only
// when w is a terminal and noColor is false. On Windows consoles the writer is
// wrapped so ANSI sequences are translated.
func newConsoleHandler(w io.Writer, opts *slog.HandlerOptions, noColor bool) slog.Handler {
	color := false
	if f, ok := w.(*os.File); ok && isTerminal(f) {
		color = !noColor
		w = colorable.NewColorable(f)
	}

	return tint.NewHandler(w, &tint.Options{
		Level:       opts.Level,
		AddSource:   opts.AddSource,
		ReplaceAttr: opts.ReplaceAttr,
		TimeFormat:  consoleTimeFormat,
		NoColor:     !color,
	})
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
