// Copyright 2015 Matthew Holt and The Caddy Authors
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

// Package ptext implements the line-oriented text codecs for the path
// and probe wire formats consumed by package loader: one path per line
// (src, dst, tstamp, pipe-separated hops of semicolon-separated
// interfaces) and one probe per line (tstamp|dst|ttl|flowid|ip|detection,
// or a legacy "#"-prefixed space-separated form). Parse errors are
// reported as *ParseError, never a bare error, so callers can report the
// offending line and field.
package ptext
