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

// Hop is the ordered collection of interfaces observed replying at one
// TTL. A hop is load-balanced when it carries more than one interface. A
// star hop carries exactly one interface whose address is Star.
type Hop struct {
	TTL        int
	Interfaces []Interface
}

// NewHop builds a Hop from the given interfaces, sorted by address
// ascending. The caller's slice is not retained.
func NewHop(ttl int, ifaces []Interface) Hop {
	cp := make([]Interface, len(ifaces))
	copy(cp, ifaces)
	sortInterfaces(cp)
	return Hop{TTL: ttl, Interfaces: cp}
}

// StarHop builds the star hop for ttl: a single interface with address
// Star and no RTT/flow data.
func StarHop(ttl int) Hop {
	return Hop{TTL: ttl, Interfaces: []Interface{{Addr: Star, TTL: ttl}}}
}

// IsStar reports whether h is a star hop: exactly one interface, at
// address Star.
func (h Hop) IsStar() bool {
	return len(h.Interfaces) == 1 && h.Interfaces[0].Addr == Star
}

// IsBalanced reports whether h carries more than one interface.
func (h Hop) IsBalanced() bool {
	return len(h.Interfaces) > 1
}

// Contains reports whether any interface of h has the given address.
func (h Hop) Contains(addr Address) bool {
	for _, iface := range h.Interfaces {
		if iface.Addr == addr {
			return true
		}
	}
	return false
}

// Copy returns a deep copy of h.
func (h Hop) Copy() Hop {
	cp := make([]Interface, len(h.Interfaces))
	copy(cp, h.Interfaces)
	for i := range cp {
		ids := make([]uint32, len(cp[i].FlowIDs))
		copy(ids, cp[i].FlowIDs)
		cp[i].FlowIDs = ids
	}
	return Hop{TTL: h.TTL, Interfaces: cp}
}

// SetFirst moves the interface at addr to index 0. Precondition:
// h.Contains(addr).
func (h *Hop) SetFirst(addr Address) {
	for i, iface := range h.Interfaces {
		if iface.Addr == addr {
			if i != 0 {
				h.Interfaces[0], h.Interfaces[i] = h.Interfaces[i], h.Interfaces[0]
			}
			return
		}
	}
	panic(InvariantViolation{Msg: "SetFirst: address not present in hop"})
}

// AddressSet returns the set of addresses carried by h's interfaces.
func (h Hop) AddressSet() map[Address]struct{} {
	set := make(map[Address]struct{}, len(h.Interfaces))
	for _, iface := range h.Interfaces {
		set[iface.Addr] = struct{}{}
	}
	return set
}

// Equal compares two hops by their address sets. With
// ignoreBalancers false, the sets must be identical (every address in one
// hop appears in the other and vice versa). With ignoreBalancers true, the
// hops are considered equal when their address sets merely intersect —
// this coalesces load-balancing differences across flows.
func (h Hop) Equal(other Hop, ignoreBalancers bool) bool {
	a := h.AddressSet()
	b := other.AddressSet()
	if ignoreBalancers {
		for addr := range a {
			if _, ok := b[addr]; ok {
				return true
			}
		}
		return false
	}
	if len(a) != len(b) {
		return false
	}
	for addr := range a {
		if _, ok := b[addr]; !ok {
			return false
		}
	}
	return true
}
