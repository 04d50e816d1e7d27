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

// DiffFlag controls Diff's policy. The zero value compares paths
// structurally with no star resolution or extension — that is the mode
// PathDB uses to test two paths for equality.
type DiffFlag uint8

const (
	// FixStars attempts to rewrite a star hop to match its counterpart
	// before treating a window as a real change.
	FixStars DiffFlag = 1 << iota
	// Extend copies the longer path's trailing hops onto the shorter one
	// when the whole walk matched but one path simply ran out of hops.
	Extend
	// IgnoreBalancers switches hop equality to non-empty address-set
	// intersection instead of exact set equality.
	IgnoreBalancers
	// NoFixBalancer refuses to star-fix a load-balanced source hop.
	NoFixBalancer
)

// Diff compares p1 (the older path) to p2 (the newer path) to the same
// destination and returns the ordered list of LCZs between them.
// Precondition: p1.Dst == p2.Dst and p1.Tstamp <= p2.Tstamp. When FixStars
// is set, Diff may rewrite star hops of p1 and/or p2 in place (the only
// place a star hop's content is ever mutated) and re-normalize them; when
// Extend is set and no LCZ was found, Diff may append copies of the
// longer path's trailing hops onto the shorter path.
func Diff(p1, p2 *Path, flags DiffFlag) []*LCZ {
	invariant(p1.Dst == p2.Dst, "Diff: destination mismatch")
	invariant(p1.Tstamp <= p2.Tstamp, "Diff: p1 must not be newer than p2")

	ignoreBalancers := flags&IgnoreBalancers != 0
	var changes []*LCZ

	i1, i2 := 0, 0
	for i1 < p1.Len() && i2 < p2.Len() {
		if p1.Hops[i1].Equal(p2.Hops[i2], ignoreBalancers) {
			i1++
			i2++
			continue
		}

		j1, j2 := diffJoin(p1, p2, i1, i2, ignoreBalancers)
		if flags&FixStars != 0 {
			i1, i2, j1, j2 = diffFixStars(p1, p2, i1, i2, j1, j2, flags)
		}
		if j1 > i1 || j2 > i2 {
			changes = append(changes, newLCZ(p1, p2, i1, i2, j1, j2))
		}
		i1, i2 = j1, j2
	}

	if len(changes) == 0 && flags&Extend != 0 {
		invariant(i1 == i2, "Diff: extend reached with mismatched cursors")
		diffExtend(p1, p2, i1)
	} else if i1 != p1.Len() || i2 != p2.Len() {
		changes = append(changes, newLCZ(p1, p2, i1, i2, p1.Len(), p2.Len()))
	}
	return changes
}

// diffJoin finds the earliest pair (j1, j2), j1 >= i1 and j2 >= i2, of a
// non-star hop in p2 at j2 equal (under the given mode) to some non-star
// hop in p1 at j1. If none exists, it returns the ends of both paths.
func diffJoin(p1, p2 *Path, i1, i2 int, ignoreBalancers bool) (int, int) {
	for j2 := i2; j2 < p2.Len(); j2++ {
		hop2 := p2.Hops[j2]
		if hop2.IsStar() {
			continue
		}
		for j1 := i1; j1 < p1.Len(); j1++ {
			hop1 := p1.Hops[j1]
			if hop1.Equal(hop2, ignoreBalancers) {
				return j1, j2
			}
		}
	}
	return p1.Len(), p2.Len()
}

// diffExtend appends copies of the longer path's trailing hops, starting
// at i, onto the shorter path, then re-normalizes it. Precondition:
// i == p1.Len() or i == p2.Len().
func diffExtend(p1, p2 *Path, i int) {
	invariant(i == p1.Len() || i == p2.Len(), "diffExtend: cursor not at either path's end")
	shorter, longer := p1, p2
	if p2.Len() < p1.Len() {
		shorter, longer = p2, p1
	}
	for ttl := i; ttl < longer.Len(); ttl++ {
		invariant(ttl == shorter.Len(), "diffExtend: shorter path length drifted")
		shorter.Hops = append(shorter.Hops, longer.Hops[ttl].Copy())
	}
	shorter.checkReachability()
}
