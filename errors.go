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

package pathwatch

import "fmt"

// InvariantViolation reports a broken precondition inside the core model
// or diff engine: a programming error, never a data-quality issue. Core
// code panics with a value of this type; no package in this module
// recovers it.
type InvariantViolation struct {
	Msg string
}

func (e InvariantViolation) Error() string {
	return fmt.Sprintf("pathwatch: invariant violation: %s", e.Msg)
}

func invariant(cond bool, format string, args ...any) {
	if !cond {
		panic(InvariantViolation{Msg: fmt.Sprintf(format, args...)})
	}
}
