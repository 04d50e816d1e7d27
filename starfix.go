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

// diffFixStars runs star fixing across the window [i1,j1) x [i2,j2),
// independently from both ends. It may rewrite star hops of p1
// and/or p2 in place and narrow the window; the returned indices are the
// post-fix (i1, i2, j1, j2).
func diffFixStars(p1, p2 *Path, i1, i2, j1, j2 int, flags DiffFlag) (int, int, int, int) {
	threshold := j1 - i1
	if j2-i2 < threshold {
		threshold = j2 - i2
	}

	i := 0
	for i < threshold {
		if !fix1Hop(p1, p2, i1+i, i2+i, j1, j2, flags) {
			break
		}
		i++
	}
	i1 += i
	i2 += i
	threshold -= i

	i = 0
	for i < threshold {
		t1 := j1 - i - 1
		t2 := j2 - i - 1
		if !fix1Hop(p1, p2, t1, t2, j1, j2, flags) {
			break
		}
		i++
	}
	j1 -= i
	j2 -= i

	invariant(i1 <= j1, "diffFixStars: i1 crossed j1")
	invariant(i2 <= j2, "diffFixStars: i2 crossed j2")

	p1.checkReachability()
	p2.checkReachability()

	return i1, i2, j1, j2
}

// fix1Hop attempts to resolve the pair (p1.Hops[ttl1], p2.Hops[ttl2]) when
// exactly one side is a star hop, rewriting the star in place with a copy
// of the other side. j1/j2 bound the window currently being narrowed
// (used to decide whether a destination-address source hop sits at the
// window's last position). Returns whether the pair is now resolved
// (both were star hops, or the rewrite succeeded); a pair of two
// non-star hops always returns false.
func fix1Hop(p1, p2 *Path, ttl1, ttl2, j1, j2 int, flags DiffFlag) bool {
	h1 := p1.Hops[ttl1]
	h2 := p2.Hops[ttl2]

	if h1.IsStar() && h2.IsStar() {
		return true
	}
	if !h1.IsStar() && !h2.IsStar() {
		return false
	}

	var starPath *Path
	var starIdx, starEnd int
	var source Hop
	if h1.IsStar() {
		starPath, starIdx, starEnd, source = p1, ttl1, j1, h2
	} else {
		starPath, starIdx, starEnd, source = p2, ttl2, j2, h1
	}

	if flags&NoFixBalancer != 0 && source.IsBalanced() {
		return false
	}

	sourceAddr := source.Interfaces[0].Addr

	// Refuse to fix if the source's address already appears somewhere
	// else in the star path: we'd be introducing a duplicate, not
	// resolving an asterisk.
	for _, hop := range starPath.Hops {
		if hop.Contains(sourceAddr) {
			return false
		}
	}

	// Refuse to fix the destination address into a non-terminal
	// position of the window: that would fabricate an early arrival at
	// dst. Compared by address, since the destination can also
	// appear earlier in a genuine routing loop.
	if sourceAddr == starPath.Dst && starIdx+1 != starEnd {
		return false
	}

	starPath.Hops[starIdx] = source.Copy()
	return true
}
