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

// Package logging builds [log/slog] loggers for the ODM tools and libraries.
//
// Library packages accept a plain [*slog.Logger]; this package is how
// binaries and tests produce one with consistent handlers, levels and
// redaction.
//
// # Basic Usage
//
//	logger := logging.MustNew(logging.WithConsoleHandler())
//	defer logger.Shutdown(context.Background())
//	logger.Info("mapping loaded", "classes", 4)
//
// # Handlers
//
// Three handler types are supported:
//   - [JSONHandler]: one JSON object per line (default)
//   - [TextHandler]: key=value pairs
//   - [ConsoleHandler]: colored, human-readable output via tint
//
// Colors are disabled automatically when the output is not a terminal, or
// explicitly with [WithNoColor].
//
// # Dynamic Log Levels
//
// Change log levels at runtime:
//
//	logger.SetLevel(logging.LevelDebug)
//
// Levels can be parsed from flags with [ParseLevel].
//
// # Trace Correlation
//
// Records logged with a context that carries a valid OpenTelemetry span
// get trace_id and span_id attributes:
//
//	logger.Logger().InfoContext(ctx, "document decoded")
//
// # Redaction
//
// Attributes named password, token, secret, api_key or authorization are
// always replaced with "***REDACTED***" before any custom replacer runs.
package logging
