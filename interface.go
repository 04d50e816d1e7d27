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

import "sort"

// RTT summarizes round-trip-time samples backing an Interface observation.
// All four fields travel together on the wire (see package ptext), so they
// are grouped rather than carried as four loose float64 fields.
type RTT struct {
	Min float64
	Avg float64
	Max float64
	Var float64
}

// Interface is a single responsive reply observed at some TTL: the
// replying address, the flow identifiers that elicited it, a free-form
// flag string, and an RTT summary.
//
// Interfaces compare and hash by Addr only; FlowIDs, Flags and RTT are
// payload, not identity.
type Interface struct {
	Addr    Address
	TTL     int
	FlowIDs []uint32
	Flags   string
	RTT     RTT
}

// NewInterface builds an Interface, copying flowIDs so the caller's slice
// can be reused or mutated afterward.
func NewInterface(addr Address, ttl int, flowIDs []uint32, flags string, rtt RTT) Interface {
	ids := make([]uint32, len(flowIDs))
	copy(ids, flowIDs)
	return Interface{Addr: addr, TTL: ttl, FlowIDs: ids, Flags: flags, RTT: rtt}
}

// Equal reports whether two interfaces share the same address. Identity
// ignores flow ids, flags and RTT.
func (i Interface) Equal(other Interface) bool {
	return i.Addr == other.Addr
}

// sortInterfaces orders a slice of interfaces by address ascending, stably
// (so pre-existing relative order of equal addresses, e.g. duplicate
// flow-balanced replies, is preserved).
func sortInterfaces(ifaces []Interface) {
	sort.SliceStable(ifaces, func(i, j int) bool {
		return ifaces[i].Addr < ifaces[j].Addr
	})
}
