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
	"github.com/pathwatch/pathwatch"
)

// ChangeStats summarizes the shape of a single LCZ: how many hops and
// addresses were removed or added, and three boolean classifiers.
type ChangeStats struct {
	RemovedHops     int
	AddedHops       int
	RemovedIPs      int
	AddedIPs        int
	ChangesLength   bool
	DetectAfterJoin bool
	AtEnd           bool
}

// NewChangeStats computes ChangeStats for lcz.
func NewChangeStats(lcz *pathwatch.LCZ) ChangeStats {
	removedHops, removedIPs := lcz.Removed()
	addedHops, addedIPs := lcz.Added()
	return ChangeStats{
		RemovedHops:     len(removedHops),
		AddedHops:       len(addedHops),
		RemovedIPs:      len(removedIPs),
		AddedIPs:        len(addedIPs),
		ChangesLength:   lcz.ChangesLength(),
		DetectAfterJoin: lcz.DetectableAfterJoin(),
		AtEnd:           lcz.AtEnd(),
	}
}

// SharedStats reports how much of lcz's branch/join context is also
// present in another path (the "overlap" destination's own path at the
// time of the change).
//
// Branch and Join are guarded against a nil branch/join hop rather than
// relying on Python's accidental negative-index wraparound (see
// DESIGN.md) — in practice this guard never fires here, since callers
// only build SharedStats for LCZs that already passed the broken-change
// filter, which guarantees both hops are non-nil and non-star.
type SharedStats struct {
	Branch           bool
	Join             bool
	AfterJoin        int
	BeforeBranch     int
	RemovedHopOverlap int
	RemovedHops       int
	RemovedIPOverlap  int
	RemovedIPs        int
}

// NewSharedStats computes SharedStats for lcz against path.
func NewSharedStats(lcz *pathwatch.LCZ, path *pathwatch.Path) SharedStats {
	var s SharedStats

	branch := lcz.BranchHop()
	join := lcz.JoinHop()

	s.Branch = branch != nil && path.HopTTL(*branch, false) != -1
	s.Join = join != nil && path.HopTTL(*join, false) != -1

	if s.Join {
		pttl := path.HopTTL(*join, false)
		cnt := 1
		for lcz.J1+cnt < lcz.P1.Len() && pttl+cnt < path.Len() &&
			lcz.P1.Hops[lcz.J1+cnt].Equal(path.Hops[pttl+cnt], false) {
			cnt++
		}
		s.AfterJoin = cnt - 1
	}
	if s.Branch {
		pttl := path.HopTTL(*branch, false)
		cnt := 1
		for lcz.I1-cnt >= 0 && pttl-cnt >= 0 &&
			lcz.P1.Hops[lcz.I1-cnt].Equal(path.Hops[pttl-cnt], false) {
			cnt++
		}
		s.BeforeBranch = cnt - 1
	}

	pifaces := path.Interfaces()
	ipOverlap := make(map[pathwatch.Address]struct{})
	ipSet := make(map[pathwatch.Address]struct{})
	removedHops, _ := lcz.Removed()
	for _, hop := range removedHops {
		s.RemovedHops++
		if path.HopTTL(hop, false) != -1 {
			s.RemovedHopOverlap++
		}
		for _, iface := range hop.Interfaces {
			ipSet[iface.Addr] = struct{}{}
			if _, ok := pifaces[iface.Addr]; ok {
				ipOverlap[iface.Addr] = struct{}{}
			}
		}
	}
	s.RemovedIPOverlap = len(ipOverlap)
	s.RemovedIPs = len(ipSet)

	return s
}

// ProbeStats summarizes how much active-measurement coverage an LCZ had:
// how many probes landed on cpath's destination around tstamp, how many
// distinct TTLs they covered, and how much of the impacted/added/removed
// hop set was actually probed.
type ProbeStats struct {
	NProbes             int
	NTTLs               int
	TTLsImpacted        int
	TTLsImpactedProbed  int
	TTLsAdded           int
	TTLsAddedProbed     int
	TTLsRemoved         int
	TTLsRemovedProbed   int
	ProbedAfterJoin     bool
}

// NewProbeStats computes ProbeStats for lcz against the probes observed
// for cpath.Dst around tstamp. probeLoader is advanced to tstamp first
// (never rewound — mirrors the original's "only advance" loader usage).
func NewProbeStats(lcz *pathwatch.LCZ, cpath *pathwatch.Path, tstamp int64, probeLoader *ProbeLoader) ProbeStats {
	if tstamp > probeLoader.Ctime() {
		probeLoader.SetTime(tstamp)
	}
	probes := probeLoader.Objects(cpath.Dst)

	probedTTLs := make(map[int]struct{}, len(probes))
	for _, p := range probes {
		probedTTLs[p.TTL] = struct{}{}
	}

	_, addedIPs := lcz.Added()
	_, removedIPs := lcz.Removed()
	impactedIPs := unionAddr(addedIPs, removedIPs)

	var s ProbeStats
	s.NProbes = len(probes)
	s.NTTLs = len(probedTTLs)

	for _, hop := range cpath.Hops {
		hopIPs := hop.AddressSet()
		if intersects(hopIPs, impactedIPs) {
			s.TTLsImpacted++
			if _, ok := probedTTLs[hop.TTL]; ok {
				s.TTLsImpactedProbed++
			}
		}
		if intersects(hopIPs, addedIPs) {
			s.TTLsAdded++
			if _, ok := probedTTLs[hop.TTL]; ok {
				s.TTLsAddedProbed++
			}
		}
		if intersects(hopIPs, removedIPs) {
			s.TTLsRemoved++
			if _, ok := probedTTLs[hop.TTL]; ok {
				s.TTLsRemovedProbed++
			}
		}
	}

	for ttl := range probedTTLs {
		if ttl >= lcz.J1 {
			s.ProbedAfterJoin = true
			break
		}
	}

	return s
}

func intersects(a, b map[pathwatch.Address]struct{}) bool {
	small, big := a, b
	if len(b) < len(a) {
		small, big = b, a
	}
	for addr := range small {
		if _, ok := big[addr]; ok {
			return true
		}
	}
	return false
}

func unionAddr(a, b map[pathwatch.Address]struct{}) map[pathwatch.Address]struct{} {
	out := make(map[pathwatch.Address]struct{}, len(a)+len(b))
	for addr := range a {
		out[addr] = struct{}{}
	}
	for addr := range b {
		out[addr] = struct{}{}
	}
	return out
}
