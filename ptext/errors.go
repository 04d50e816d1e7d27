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

package ptext

import "fmt"

// ParseError reports a failure to parse one field of one line of a path or
// probe stream. Line is the raw, unmodified input line so callers can log
// or re-surface it without having to reconstruct it from whatever partial
// state the parser reached.
type ParseError struct {
	Line  string
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ptext: line %q: field %s: %v", e.Line, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
