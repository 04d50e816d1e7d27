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

package correlate

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pathwatch/pathwatch"
)

// SimilarityStats compares two LCZs (assumed already confirmed
// not-broken, per brokenLCZ) along eight Jaccard indices over their
// removed/added/impacted hop and address sets, plus two booleans: whether
// the two changes share the same branch or join hop.
type SimilarityStats struct {
	SameBranch bool
	SameJoin   bool

	RemovedHopsJ   float64
	AddedHopsJ     float64
	ImpactedHopsJ  float64
	GlobalHopsJ    float64
	RemovedIPsJ    float64
	AddedIPsJ      float64
	ImpactedIPsJ   float64
	GlobalIPsJ     float64
}

// hopKey canonicalizes a hop's address set into a comparable string, so
// Go's map-based sets can dedupe hops by address-set equality the way
// Python's Hop.__eq__/__hash__ do.
func hopKey(h pathwatch.Hop) string {
	addrs := make([]string, 0, len(h.Interfaces))
	seen := make(map[pathwatch.Address]struct{}, len(h.Interfaces))
	for _, iface := range h.Interfaces {
		if _, ok := seen[iface.Addr]; ok {
			continue
		}
		seen[iface.Addr] = struct{}{}
		addrs = append(addrs, strconv.FormatUint(uint64(iface.Addr), 10))
	}
	sort.Strings(addrs)
	return strings.Join(addrs, ",")
}

func hopSet(hops []pathwatch.Hop) map[string]struct{} {
	set := make(map[string]struct{}, len(hops))
	for _, h := range hops {
		set[hopKey(h)] = struct{}{}
	}
	return set
}

func addHop(set map[string]struct{}, h *pathwatch.Hop) {
	if h == nil {
		return
	}
	set[hopKey(*h)] = struct{}{}
}

func addHopIPs(set map[pathwatch.Address]struct{}, h *pathwatch.Hop) {
	if h == nil {
		return
	}
	for _, iface := range h.Interfaces {
		set[iface.Addr] = struct{}{}
	}
}

func jaccardStr(a, b map[string]struct{}) float64 {
	union := len(a) + len(b)
	if union == 0 {
		return 1
	}
	inter := 0
	small, big := a, b
	if len(b) < len(a) {
		small, big = b, a
	}
	for k := range small {
		if _, ok := big[k]; ok {
			inter++
		}
	}
	unionSize := len(a) + len(b) - inter
	if unionSize == 0 {
		return 1
	}
	return float64(inter) / float64(unionSize)
}

func jaccardAddr(a, b map[pathwatch.Address]struct{}) float64 {
	inter := 0
	small, big := a, b
	if len(b) < len(a) {
		small, big = b, a
	}
	for addr := range small {
		if _, ok := big[addr]; ok {
			inter++
		}
	}
	unionSize := len(a) + len(b) - inter
	if unionSize == 0 {
		return 1
	}
	return float64(inter) / float64(unionSize)
}

// NewSimilarityStats compares c1 to c2. Precondition: neither is a broken
// LCZ (see brokenLCZ) — callers filter before reaching here, which also
// means BranchHop/JoinHop never actually return nil at this point; the
// nil checks below are defensive rather than load-bearing.
func NewSimilarityStats(c1, c2 *pathwatch.LCZ) SimilarityStats {
	var s SimilarityStats

	branch1, join1 := c1.BranchHop(), c1.JoinHop()
	branch2, join2 := c2.BranchHop(), c2.JoinHop()

	s.SameBranch = branch1 != nil && branch2 != nil && branch1.Equal(*branch2, false)
	s.SameJoin = (c1.J1 >= c1.P1.Len() && c2.J1 >= c2.P1.Len()) ||
		(join1 != nil && join2 != nil && join1.Equal(*join2, false))

	removedHops1, removedIPs1 := c1.Removed()
	removedHops2, removedIPs2 := c2.Removed()
	addedHops1, addedIPs1 := c1.Added()
	addedHops2, addedIPs2 := c2.Added()

	rmhops1, rmhops2 := hopSet(removedHops1), hopSet(removedHops2)
	adhops1, adhops2 := hopSet(addedHops1), hopSet(addedHops2)

	imhops1 := hopSet(removedHops1)
	for k := range adhops1 {
		imhops1[k] = struct{}{}
	}
	imhops2 := hopSet(removedHops2)
	for k := range adhops2 {
		imhops2[k] = struct{}{}
	}

	imips1 := unionAddr(removedIPs1, addedIPs1)
	imips2 := unionAddr(removedIPs2, addedIPs2)

	s.RemovedHopsJ = jaccardStr(rmhops1, rmhops2)
	s.AddedHopsJ = jaccardStr(adhops1, adhops2)
	s.RemovedIPsJ = jaccardAddr(removedIPs1, removedIPs2)
	s.AddedIPsJ = jaccardAddr(addedIPs1, addedIPs2)
	s.ImpactedHopsJ = jaccardStr(imhops1, imhops2)
	s.ImpactedIPsJ = jaccardAddr(imips1, imips2)

	addHop(imhops1, branch1)
	addHop(imhops1, join1)
	addHop(imhops2, branch2)
	addHop(imhops2, join2)
	s.GlobalHopsJ = jaccardStr(imhops1, imhops2)

	addHopIPs(imips1, branch1)
	addHopIPs(imips1, join1)
	addHopIPs(imips2, branch2)
	addHopIPs(imips2, join2)
	s.GlobalIPsJ = jaccardAddr(imips1, imips2)

	return s
}
