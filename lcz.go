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

// LCZ (Localized Change Zone) is a maximal contiguous window in which two
// paths to the same destination differ, anchored by a branch hop (the
// last matching hop before the change, I1) and a join hop (the first
// matching hop after it, J1/J2), or by path ends.
//
// I1 and I2 are stored already shifted to index the branch hop itself
// (one less than the cursor position at which Diff detected the
// mismatch); I1/I2 of -1 means the change starts at the very first hop of
// the respective path, i.e. there is no branch hop.
type LCZ struct {
	P1, P2        *Path
	I1, I2        int
	J1, J2        int
	NMeasurements int
}

// newLCZ builds an LCZ from the cursor positions Diff was at when it
// detected a mismatch (i1, i2) and the join it found (j1, j2), shifting
// i1/i2 down by one to index the branch hop.
func newLCZ(p1, p2 *Path, i1, i2, j1, j2 int) *LCZ {
	return &LCZ{P1: p1, P2: p2, I1: i1 - 1, I2: i2 - 1, J1: j1, J2: j2}
}

// BranchHop returns the last hop common to both paths before the change,
// or nil if the change starts at the very first hop (no branch exists).
func (l *LCZ) BranchHop() *Hop {
	if l.I1 < 0 {
		return nil
	}
	return l.P1.HopAt(l.I1)
}

// JoinHop returns the first hop common to both paths after the change, or
// nil if the change runs to the end of p1 and p1 is unreachable there.
func (l *LCZ) JoinHop() *Hop {
	return l.P1.HopAt(l.J1)
}

// Added returns the hops (and their addresses) present in p2's window
// (I2+1, J2) that do not appear at any hop index of p1 within [I1, J1].
// Star hops are never reported as added.
func (l *LCZ) Added() ([]Hop, map[Address]struct{}) {
	return windowExclusive(l.P2, l.I2, l.J2, l.P1, l.I1, l.J1)
}

// Removed is the symmetric view of Added from p1's side.
func (l *LCZ) Removed() ([]Hop, map[Address]struct{}) {
	return windowExclusive(l.P1, l.I1, l.J1, l.P2, l.I2, l.J2)
}

// windowExclusive collects the non-star hops of src.Hops[(srcI+1):srcJ]
// that are not equal to any hop of other.Hops within [otherI, otherJ]
// (clamped to a valid range; otherI may be -1).
func windowExclusive(src *Path, srcI, srcJ int, other *Path, otherI, otherJ int) ([]Hop, map[Address]struct{}) {
	var hops []Hop
	addrs := make(map[Address]struct{})
	lo := otherI
	if lo < 0 {
		lo = 0
	}
	hi := otherJ
	if hi > len(other.Hops) {
		hi = len(other.Hops)
	}
	for idx := srcI + 1; idx < srcJ; idx++ {
		hop := src.Hops[idx]
		if hop.IsStar() {
			continue
		}
		found := false
		for k := lo; k <= hi && k < len(other.Hops); k++ {
			if other.Hops[k].Equal(hop, false) {
				found = true
				break
			}
		}
		if found {
			continue
		}
		hops = append(hops, hop)
		for addr := range hop.AddressSet() {
			addrs[addr] = struct{}{}
		}
	}
	return hops, addrs
}

// DetectableAt reports whether this change would be observed by probing
// at ttl alone.
func (l *LCZ) DetectableAt(ttl int) bool {
	return ttl > l.I1 && (ttl < l.J1 || l.DetectableAfterJoin())
}

// ChangesLength reports whether the change altered the hop-count of the
// window (as opposed to a same-length hop substitution).
func (l *LCZ) ChangesLength() bool {
	return (l.J1 - l.I1) != (l.J2 - l.I2)
}

// DetectableAfterJoin reports whether the join point itself moved between
// the two paths.
func (l *LCZ) DetectableAfterJoin() bool {
	return l.J1 != l.J2
}

// AtEnd reports whether the change runs to the end of either path.
func (l *LCZ) AtEnd() bool {
	return l.J1 == l.P1.Len() || l.J2 == l.P2.Len()
}
