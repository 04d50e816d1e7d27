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

// Package correlate ties the loader and pathwatch packages together: it
// walks a path loader's event stream, diffs consecutive path snapshots
// into LCZs, and for every non-broken LCZ looks for destinations whose
// own current path shares an involved address, emitting one comparison
// record per such overlap.
package correlate

import (
	"fmt"
	"time"

	"github.com/pathwatch/pathwatch"
	"github.com/pathwatch/pathwatch/loader"
	"github.com/pathwatch/pathwatch/metrics"
	"github.com/pathwatch/pathwatch/ptext"
)

// PathLoader and ProbeLoader name the two concrete loader instantiations
// the correlator drives.
type PathLoader = loader.Loader[pathwatch.Address, *pathwatch.Path]
type ProbeLoader = loader.Loader[pathwatch.Address, ptext.Probe]

// defaultDiffFlags mirrors the original correlator's bare Path.diff(p1,
// p2) call, whose default flag set fixes star hops and extends a
// path that ran out of hops before its counterpart, but never ignores
// load balancers.
const defaultDiffFlags = pathwatch.FixStars | pathwatch.Extend

// brokenLCZ reports whether lcz's branch or join hop is missing (no
// branch/join exists) or is itself a star hop. Broken LCZs are excluded
// from correlation entirely, matching the original's broken_change.
func brokenLCZ(lcz *pathwatch.LCZ) bool {
	branch := lcz.BranchHop()
	if branch == nil || branch.IsStar() {
		return true
	}
	join := lcz.JoinHop()
	if join == nil || join.IsStar() {
		return true
	}
	return false
}

// mostSimilarChange scans ochanges for the one most similar to lcz by
// global IP Jaccard index, skipping any that are broken. Returns (nil,
// zero SimilarityStats) if ochanges contains no usable candidate.
func mostSimilarChange(lcz *pathwatch.LCZ, ochanges []*pathwatch.LCZ) (*pathwatch.LCZ, SimilarityStats) {
	var best *pathwatch.LCZ
	var bestStats SimilarityStats
	bestScore := 0.0
	for _, ochange := range ochanges {
		if brokenLCZ(ochange) {
			continue
		}
		stats := NewSimilarityStats(lcz, ochange)
		if stats.GlobalIPsJ > bestScore {
			bestScore = stats.GlobalIPsJ
			bestStats = stats
			best = ochange
		}
	}
	return best, bestStats
}

// Record is one emitted comparison between an LCZ and a single overlap
// destination's nearest surrounding path change.
type Record struct {
	Tstamp int64
	LCZID  int
	Change ChangeStats
	Shared SharedStats
	Probe  ProbeStats

	HasSimilar        bool
	OutsideTimespan   bool
	SimilarLCZID      int
	Similarity        SimilarityStats
	DetectableAtJoinMinus1 bool
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// String renders r in the original's whitespace-separated column layout
// (four pipe-separated groups). When no similar overlap LCZ was found the
// final group is eight placeholder zeros, the same field count the
// "found" branch writes; see DESIGN.md.
func (r Record) String() string {
	rmProbedRatio := 0.0
	if r.Probe.TTLsRemoved > 0 {
		rmProbedRatio = float64(r.Probe.TTLsRemovedProbed) / float64(r.Probe.TTLsRemoved)
	}
	probedAfterJoinDetectable := r.Probe.ProbedAfterJoin && r.Change.DetectAfterJoin

	group1 := fmt.Sprintf("%d %d %d %d %d %d %d %d %d",
		r.Tstamp, r.LCZID,
		r.Change.RemovedHops, r.Change.AddedHops, r.Change.RemovedIPs, r.Change.AddedIPs,
		boolInt(r.Change.ChangesLength), boolInt(r.Change.DetectAfterJoin), boolInt(r.Change.AtEnd))

	group2 := fmt.Sprintf("%d %d %d %d %d %d",
		boolInt(r.Shared.Branch), r.Shared.BeforeBranch, boolInt(r.Shared.Join), r.Shared.AfterJoin,
		r.Shared.RemovedHopOverlap, r.Shared.RemovedIPOverlap)

	group3 := fmt.Sprintf("%d %d %d %d %f %d %d",
		r.Probe.NProbes, r.Probe.NTTLs, r.Probe.TTLsRemovedProbed, r.Probe.TTLsRemoved,
		rmProbedRatio, boolInt(r.Probe.ProbedAfterJoin), boolInt(probedAfterJoinDetectable))

	var group4 string
	if r.HasSimilar {
		group4 = fmt.Sprintf("%d %d %d %d %f %f %f %d",
			boolInt(r.OutsideTimespan), r.SimilarLCZID,
			boolInt(r.Similarity.SameBranch), boolInt(r.Similarity.SameJoin),
			r.Similarity.RemovedIPsJ, r.Similarity.ImpactedIPsJ, r.Similarity.GlobalIPsJ,
			boolInt(r.DetectableAtJoinMinus1))
	} else {
		group4 = "0 0 0 0 0.0 0.0 0.0 0"
	}

	return group1 + " | " + group2 + " | " + group3 + " | " + group4
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// Run drains every event from pathLoader in chronological order, diffs
// each destination's consecutive path pair, and for every non-broken LCZ
// emits one Record per overlap destination (a destination whose current
// path shares an address removed or added by the LCZ). timespan bounds
// whether a too-distant overlap measurement is flagged OutsideTimespan;
// it does not exclude the comparison.
func Run(pathLoader *PathLoader, probeLoader *ProbeLoader, timespan int64, emit func(Record) error) error {
	ip2dsts := make(map[pathwatch.Address]map[pathwatch.Address]struct{})
	addIP2Dst := func(addr, dst pathwatch.Address) {
		set, ok := ip2dsts[addr]
		if !ok {
			set = make(map[pathwatch.Address]struct{})
			ip2dsts[addr] = set
		}
		set[dst] = struct{}{}
	}
	removeIP2Dst := func(addr, dst pathwatch.Address) {
		if set, ok := ip2dsts[addr]; ok {
			delete(set, dst)
		}
	}

	for _, dst := range pathLoader.Keys() {
		cur, ok := pathLoader.Current(dst)
		if !ok {
			continue
		}
		for addr := range cur.Interfaces() {
			addIP2Dst(addr, dst)
		}
	}

	lczdb := NewLCZDB()

	return pathLoader.Iterate(func(tstamp int64, dst pathwatch.Address, cpath, npath *pathwatch.Path) error {
		metrics.Collectors.EventsConsumed.Inc()
		metrics.Collectors.LoaderLagSeconds.Set(float64(time.Now().Unix() - pathLoader.Ctime()))
		changes := pathwatch.Diff(cpath, npath, defaultDiffFlags)

		for _, lcz := range changes {
			metrics.Collectors.LCZsDetected.Inc()
			_, addedIPs := lcz.Added()
			_, removedIPs := lcz.Removed()

			for addr := range removedIPs {
				removeIP2Dst(addr, dst)
			}
			for addr := range addedIPs {
				addIP2Dst(addr, dst)
			}

			if brokenLCZ(lcz) {
				metrics.Collectors.LCZsBroken.Inc()
				continue
			}
			lczdb.Assign(lcz)

			involvedIPs := unionAddr(addedIPs, removedIPs)
			overlapDsts := make(map[pathwatch.Address]struct{})
			for addr := range involvedIPs {
				for odst := range ip2dsts[addr] {
					overlapDsts[odst] = struct{}{}
				}
			}
			delete(overlapDsts, dst)

			for odst := range overlapDsts {
				rec, ok, err := buildRecord(pathLoader, probeLoader, lczdb, lcz, tstamp, odst, timespan)
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
				if err := emit(rec); err != nil {
					return err
				}
				metrics.Collectors.RecordsEmitted.Inc()
			}
		}
		return nil
	})
}

// buildRecord computes the overlap destination's nearest surrounding
// path pair (preferring whichever of current/next sits closer to
// tstamp, falling back to previous when current is the closer one), then
// diffs that pair and assembles the comparison Record. Returns ok=false
// when odst has no usable previous path yet (dataset warmup).
func buildRecord(pathLoader *PathLoader, probeLoader *ProbeLoader, lczdb *LCZDB, lcz *pathwatch.LCZ, tstamp int64, odst pathwatch.Address, timespan int64) (Record, bool, error) {
	onpath, onOK := pathLoader.Next(odst)
	ocpath, ocOK := pathLoader.Current(odst)
	if !ocOK {
		return Record{}, false, nil
	}

	if !onOK || absInt64(ocpath.Tstamp-tstamp) < absInt64(onpath.Tstamp-tstamp) {
		onpath = ocpath
		prev, prevOK := pathLoader.Previous(odst)
		if !prevOK {
			return Record{}, false, nil
		}
		ocpath = prev
	}

	ochanges := pathwatch.Diff(ocpath, onpath, defaultDiffFlags)

	rec := Record{
		Tstamp: tstamp,
		LCZID:  lczdb.ID(lcz),
		Change: NewChangeStats(lcz),
		Shared: NewSharedStats(lcz, ocpath),
		Probe:  NewProbeStats(lcz, ocpath, tstamp, probeLoader),
	}

	best, simStats := mostSimilarChange(lcz, ochanges)
	if best != nil {
		lczdb.Assign(best)
		rec.HasSimilar = true
		rec.OutsideTimespan = absInt64(onpath.Tstamp-tstamp) > timespan
		rec.SimilarLCZID = lczdb.ID(best)
		rec.Similarity = simStats
		rec.DetectableAtJoinMinus1 = best.DetectableAt(lcz.J1 - 1)
	}

	return rec, true, nil
}
