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

import "github.com/pathwatch/pathwatch"

// lczKey identifies an LCZ independent of pointer identity: the newer
// path's destination and timestamp, plus the branch-side cursor into p2.
// Two *pathwatch.LCZ values describing the same change carry the same key.
type lczKey struct {
	dst    pathwatch.Address
	tstamp int64
	i2     int
}

func keyOf(lcz *pathwatch.LCZ) lczKey {
	return lczKey{dst: lcz.P2.Dst, tstamp: lcz.P2.Tstamp, i2: lcz.I2}
}

// LCZDB assigns a stable, incrementing integer id to every distinct LCZ it
// is shown, in first-seen order. It is the Go counterpart of the Python
// dict subclass that overloaded "<<" to assign and ">>" to look up.
type LCZDB struct {
	ids map[lczKey]int
}

// NewLCZDB returns an empty id table.
func NewLCZDB() *LCZDB {
	return &LCZDB{ids: make(map[lczKey]int)}
}

// Assign gives lcz an id if it doesn't already have one. Safe to call
// repeatedly on the same LCZ.
func (db *LCZDB) Assign(lcz *pathwatch.LCZ) {
	key := keyOf(lcz)
	if _, ok := db.ids[key]; !ok {
		db.ids[key] = len(db.ids)
	}
}

// ID returns lcz's assigned id. Precondition: Assign(lcz) was already
// called.
func (db *LCZDB) ID(lcz *pathwatch.LCZ) int {
	key := keyOf(lcz)
	id, ok := db.ids[key]
	invariant(ok, "ID: lcz for dst %s tstamp %d i2 %d was never assigned", key.dst, key.tstamp, key.i2)
	return id
}
