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

import (
	"fmt"
	"strconv"
	"strings"
)

// Address is a 32-bit network address, stored host-endian for fast
// comparison. The all-ones value is reserved as the Star sentinel.
type Address uint32

// Star marks an unresponsive traceroute reply. It never legitimately
// identifies a destination or a routable interface.
const Star Address = 0xFFFFFFFF

// IsStar reports whether a is the Star sentinel.
func (a Address) IsStar() bool {
	return a == Star
}

// String renders a in dotted-quad form.
func (a Address) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", byte(a>>24), byte(a>>16), byte(a>>8), byte(a))
}

// ParseAddress parses a dotted-quad string into an Address.
func ParseAddress(s string) (Address, error) {
	octets := strings.Split(s, ".")
	if len(octets) != 4 {
		return 0, fmt.Errorf("pathwatch: malformed address %q: want 4 dotted octets", s)
	}
	var a uint32
	for i, o := range octets {
		v, err := strconv.ParseUint(o, 10, 8)
		if err != nil {
			return 0, fmt.Errorf("pathwatch: malformed address %q: octet %d: %w", s, i, err)
		}
		a = a<<8 | uint32(v)
	}
	return Address(a), nil
}
