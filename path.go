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

// FlagNoReachability marks a Path whose last hop does not contain its
// destination address, after star-tail removal. It is maintained
// automatically by normalization; callers never set or clear it directly.
const FlagNoReachability = "no-reachability"

// Path is a source, destination, timestamp, an ordered list of hops, a
// set of free-form flags, and an alias id assigned by a PathDB (-1 until
// then). Paths auto-normalize at construction and after any in-place hop
// rewrite (star fixing, extension): the star tail is trimmed and
// FlagNoReachability is kept in sync with whether the destination
// actually appears in the last hop.
type Path struct {
	Src    Address
	Dst    Address
	Tstamp int64
	Hops   []Hop
	Flags  map[string]struct{}
	Alias  int
}

// NewPath constructs a Path from src/dst/tstamp/hops, normalizes it (star
// tail removal, reachability flag, dst-first ordering of the last hop) and
// returns it. The hops slice is copied; extraFlags seeds any additional
// flags the caller wants to carry (FlagNoReachability is recomputed
// regardless of what's passed here).
func NewPath(src, dst Address, tstamp int64, hops []Hop, extraFlags ...string) *Path {
	cp := make([]Hop, len(hops))
	for i, h := range hops {
		cp[i] = h.Copy()
	}
	flags := make(map[string]struct{}, len(extraFlags))
	for _, f := range extraFlags {
		flags[f] = struct{}{}
	}
	p := &Path{Src: src, Dst: dst, Tstamp: tstamp, Hops: cp, Flags: flags, Alias: -1}
	p.checkReachability()
	return p
}

// HasFlag reports whether f is set on p.
func (p *Path) HasFlag(f string) bool {
	_, ok := p.Flags[f]
	return ok
}

// Copy returns a deep copy of p, including its alias id.
func (p *Path) Copy() *Path {
	hops := make([]Hop, len(p.Hops))
	for i, h := range p.Hops {
		hops[i] = h.Copy()
	}
	flags := make(map[string]struct{}, len(p.Flags))
	for f := range p.Flags {
		flags[f] = struct{}{}
	}
	return &Path{Src: p.Src, Dst: p.Dst, Tstamp: p.Tstamp, Hops: hops, Flags: flags, Alias: p.Alias}
}

// Len returns the number of hops in p.
func (p *Path) Len() int {
	return len(p.Hops)
}

// Timestamp returns p.Tstamp. It exists so Path satisfies the loader
// package's Timestamped constraint without loader needing to know about
// Path's field layout.
func (p *Path) Timestamp() int64 {
	return p.Tstamp
}

// checkReachability removes the star tail and recomputes
// FlagNoReachability; called after construction and after any in-place
// hop rewrite (star fixing, extension).
func (p *Path) checkReachability() {
	p.removeStarTail()
	if len(p.Hops) == 0 || !p.Hops[len(p.Hops)-1].Contains(p.Dst) {
		p.Flags[FlagNoReachability] = struct{}{}
		return
	}
	delete(p.Flags, FlagNoReachability)
	p.Hops[len(p.Hops)-1].SetFirst(p.Dst)
}

func (p *Path) removeStarTail() {
	for len(p.Hops) > 0 && p.Hops[len(p.Hops)-1].IsStar() {
		p.Hops = p.Hops[:len(p.Hops)-1]
	}
}

// HopAt returns the hop at ttl, saturating: ttl within range returns that
// hop directly; ttl at or past the end returns nil if FlagNoReachability
// is set, else the last hop (the destination is assumed reachable via a
// repeat of the final hop). An empty path returns nil for any ttl.
func (p *Path) HopAt(ttl int) *Hop {
	if ttl >= 0 && ttl < len(p.Hops) {
		return &p.Hops[ttl]
	}
	if p.HasFlag(FlagNoReachability) || len(p.Hops) == 0 {
		return nil
	}
	return &p.Hops[len(p.Hops)-1]
}

// HopTTL returns the first index i such that p.Hops[i] equals hop under
// the given equality mode, or -1 if none matches. Undefined (panics) for
// star hops.
func (p *Path) HopTTL(hop Hop, ignoreBalancers bool) int {
	invariant(!hop.IsStar(), "HopTTL is undefined for star hops")
	for i, h := range p.Hops {
		if h.Equal(hop, ignoreBalancers) {
			return i
		}
	}
	return -1
}

// Interfaces returns the union of interfaces across p's non-star hops,
// keyed by address.
func (p *Path) Interfaces() map[Address]Interface {
	out := make(map[Address]Interface)
	for _, h := range p.Hops {
		if h.IsStar() {
			continue
		}
		for _, iface := range h.Interfaces {
			out[iface.Addr] = iface
		}
	}
	return out
}

// HasLoop scans p left to right, tracking confirmed single-hop addresses.
// A non-star hop whose addresses intersect the confirmed set indicates a
// loop. Balanced hops (more than one interface) are checked against the
// confirmed set but are not folded into it until a subsequent unbalanced
// hop commits them — load-balanced replies alone don't prove a loop.
func (p *Path) HasLoop() bool {
	confirmed := make(map[Address]struct{})
	var pendingBalancers []Address
	for _, h := range p.Hops {
		if h.IsStar() {
			continue
		}
		for _, iface := range h.Interfaces {
			if _, ok := confirmed[iface.Addr]; ok {
				return true
			}
		}
		if len(h.Interfaces) == 1 {
			for _, a := range pendingBalancers {
				confirmed[a] = struct{}{}
			}
			pendingBalancers = pendingBalancers[:0]
			confirmed[h.Interfaces[0].Addr] = struct{}{}
		} else {
			for _, iface := range h.Interfaces {
				pendingBalancers = append(pendingBalancers, iface.Addr)
			}
		}
	}
	return false
}

// DetectsChange reports whether, at ttl only, p1 and p2 present an
// observable change. Precondition: ttl <= p1.Len().
func DetectsChange(p1, p2 *Path, ttl int, ignoreBalancers bool) bool {
	invariant(ttl <= p1.Len(), "DetectsChange: ttl %d exceeds p1 length %d", ttl, p1.Len())

	if ttl == p1.Len() {
		invariant(p1.HasFlag(FlagNoReachability), "DetectsChange: ttl at p1 end but p1 is reachable")
		if ttl >= p2.Len() && p2.HasFlag(FlagNoReachability) {
			return false
		}
		if ttl < p2.Len() && p2.Hops[ttl].IsStar() {
			return false
		}
		return true
	}

	hop1 := p1.Hops[ttl]
	if ttl >= p2.Len() {
		if p2.HasFlag(FlagNoReachability) {
			return true
		}
		if hop1.Contains(p2.Dst) {
			return false
		}
		return true
	}

	hop2 := p2.Hops[ttl]
	if hop2.IsStar() {
		return false
	}
	if hop1.IsStar() && !hop2.IsStar() && p1.HopTTL(hop2, ignoreBalancers) != -1 {
		return true
	}
	return !hop1.Equal(hop2, ignoreBalancers)
}

// Inversion walks p2's non-star hops and reports whether any of them
// appears in p1 at a strictly decreasing index relative to the last
// match — i.e. route order inverted between the two paths.
func Inversion(p1, p2 *Path, ignoreBalancers bool) bool {
	marker := -1
	for _, hop := range p2.Hops {
		if hop.IsStar() {
			continue
		}
		ttl := p1.HopTTL(hop, ignoreBalancers)
		if ttl == -1 {
			continue
		}
		if ttl < marker {
			return true
		}
		marker = ttl
	}
	return false
}
