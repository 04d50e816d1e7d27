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
	"bytes"
	"fmt"
	"slices"

	"github.com/minio/highwayhash"
)

// pathDBHashKey is a fixed highwayhash key; PathDB only uses the hash as
// an internal fast-path equality pre-check, never as a persisted or
// externally compared value, so a constant key is fine here.
var pathDBHashKey = []byte("pathwatch-pathdb-hash-key-000001")[:32]

type pathDBRecord struct {
	path *Path
	hash uint64
}

type pathDBEntry struct {
	dst      Address
	records  []pathDBRecord
	maxAlias int
}

// PathDB assigns stable integer alias ids to distinct observed paths, per
// destination. Two paths are the same distinct path iff
// Diff(stored, candidate, 0) returns no LCZs. Entries are LRU-ordered:
// the most recently matched (or inserted) path moves to the end of its
// destination's list, and the capacity (when positive) evicts from the
// front.
type PathDB struct {
	capacity int
	entries  map[Address]*pathDBEntry
}

// NewPathDB constructs a PathDB. capacity <= 0 means unbounded per
// destination.
func NewPathDB(capacity int) *PathDB {
	return &PathDB{capacity: capacity, entries: make(map[Address]*pathDBEntry)}
}

func (db *PathDB) entry(dst Address) *pathDBEntry {
	e, ok := db.entries[dst]
	if !ok {
		e = &pathDBEntry{dst: dst}
		db.entries[dst] = e
	}
	return e
}

// Alias assigns p.Alias in place: locate p's destination entry,
// search for a stored path equal to p under an empty-flags Diff; if
// found, refresh its LRU position and copy its alias onto p; otherwise
// assign the next alias id, store a copy of p, and evict from the front
// if the entry now exceeds capacity.
func (db *PathDB) Alias(p *Path) {
	entry := db.entry(p.Dst)
	newp := p.Copy()
	newHash := contentHash(newp)

	idx := -1
	for i, rec := range entry.records {
		if rec.hash != newHash {
			continue
		}
		if len(Diff(rec.path, newp, 0)) == 0 {
			idx = i
			break
		}
	}

	if idx == -1 {
		newp.Alias = entry.maxAlias
		p.Alias = entry.maxAlias
		entry.maxAlias++
		entry.records = append(entry.records, pathDBRecord{path: newp, hash: newHash})
		if db.capacity > 0 {
			for len(entry.records) > db.capacity {
				entry.records = entry.records[1:]
			}
		}
		return
	}

	old := entry.records[idx]
	invariant(old.path.Alias >= 0, "PathDB: matched stored path has no alias")
	entry.records = append(entry.records[:idx], entry.records[idx+1:]...)
	entry.records = append(entry.records, old)
	p.Alias = old.path.Alias
}

// contentHash computes a cheap highwayhash over p's per-hop address sets
// only (never flowids, rtts or flags, which Diff's empty-flags equality
// ignores) so that a hash mismatch always implies a genuine Diff
// mismatch: this is strictly a performance pre-check and never changes
// Alias's result, since a hash collision still falls through to the real
// Diff comparison above.
func contentHash(p *Path) uint64 {
	h, err := highwayhash.New64(pathDBHashKey)
	if err != nil {
		return 0
	}
	h.Write(pathHashBytes(p))
	return h.Sum64()
}

func pathHashBytes(p *Path) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d:%d:", p.Dst, len(p.Hops))
	for _, hop := range p.Hops {
		addrs := make([]uint32, 0, len(hop.Interfaces))
		for addr := range hop.AddressSet() {
			addrs = append(addrs, uint32(addr))
		}
		slices.Sort(addrs)
		for _, a := range addrs {
			fmt.Fprintf(&buf, "%d,", a)
		}
		buf.WriteByte(';')
	}
	return buf.Bytes()
}
