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

// Package loader multiplexes several timestamp-ordered gzip text streams
// (one per key — a destination address, in this codebase) into a single
// chronological event sequence, keeping only a rolling window of records
// around the current time in memory.
package loader

import (
	"bufio"
	"cmp"
	"container/heap"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// Timestamped is satisfied by any record type a Loader can multiplex.
// Both *pathwatch.Path and ptext.Probe implement it.
type Timestamped interface {
	Timestamp() int64
}

// FileKey pairs an input file with the key its records are filed under.
type FileKey[K cmp.Ordered] struct {
	Path string
	Key  K
}

type keyState[T Timestamped] struct {
	scanner  *bufio.Scanner
	closer   io.Closer
	next     *T
	objs     []T
	idx      int
	current  *T
	previous *T
	active   *T
	err      error
}

// Loader is the generic multi-stream temporal loader. Construct one with
// New, then drive it with PopEvent or Iterate.
type Loader[K cmp.Ordered, T Timestamped] struct {
	tspan    int64
	line2obj func(string) (T, error)
	ctime    int64
	states   map[K]*keyState[T]
	order    []K
	evheap   eventHeap[K, T]
}

// New opens every file in filekeys, seeds the current time as the maximum
// of each stream's first record, fills every key's window, and advances
// the heap until every key has produced at least one event — mirroring
// the constructor in the original Python Loader.
func New[K cmp.Ordered, T Timestamped](timespan int64, filekeys []FileKey[K], line2obj func(string) (T, error)) (*Loader[K, T], error) {
	l := &Loader[K, T]{
		tspan:    timespan,
		line2obj: line2obj,
		states:   make(map[K]*keyState[T], len(filekeys)),
	}

	for _, fk := range filekeys {
		f, err := os.Open(fk.Path)
		if err != nil {
			l.Close()
			return nil, fmt.Errorf("loader: open %s: %w", fk.Path, err)
		}
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			l.Close()
			return nil, fmt.Errorf("loader: gzip %s: %w", fk.Path, err)
		}
		st := &keyState[T]{scanner: bufio.NewScanner(gz), closer: f}
		obj, ok, err := readOne(st.scanner, line2obj)
		if err != nil {
			st.err = err
		} else if ok {
			st.next = &obj
			if obj.Timestamp() > l.ctime {
				l.ctime = obj.Timestamp()
			}
		}
		l.states[fk.Key] = st
		l.order = append(l.order, fk.Key)
	}

	for _, k := range l.order {
		l.fill(k)
	}

	for _, k := range l.order {
		if obj, ok := l.peekNext(k); ok {
			heap.Push(&l.evheap, event[K, T]{tstamp: obj.Timestamp(), key: k, obj: obj})
		}
	}

	if len(l.evheap) == 0 {
		return l, nil
	}
	starttime := l.ctime
	for len(l.evheap) > 0 && l.evheap[0].tstamp < starttime {
		if _, _, _, _, err := l.PopEvent(); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Keys returns every key the loader was constructed with, in the order
// given to New.
func (l *Loader[K, T]) Keys() []K {
	out := make([]K, len(l.order))
	copy(out, l.order)
	return out
}

// Close releases every open file handle. Safe to call more than once.
func (l *Loader[K, T]) Close() error {
	var firstErr error
	for _, st := range l.states {
		if st.closer == nil {
			continue
		}
		if err := st.closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		st.closer = nil
	}
	return firstErr
}

func readOne[T Timestamped](sc *bufio.Scanner, line2obj func(string) (T, error)) (T, bool, error) {
	var zero T
	if !sc.Scan() {
		return zero, false, sc.Err()
	}
	obj, err := line2obj(sc.Text())
	if err != nil {
		return zero, false, err
	}
	return obj, true, nil
}

// fill advances the given key's window so it covers [ctime-tspan,
// ctime+tspan], reading new records from disk as needed, evicting
// records that have fallen out of the trailing edge, and recomputing
// current/previous/active for ctime. A read error marks the key dead
// (its next is cleared) but never aborts other keys; see Err.
func (l *Loader[K, T]) fill(key K) {
	st := l.states[key]
	if st == nil {
		return
	}
	for st.next != nil && (*st.next).Timestamp() <= l.ctime+l.tspan {
		st.objs = append(st.objs, *st.next)
		obj, ok, err := readOne(st.scanner, l.line2obj)
		if err != nil {
			st.err = err
			st.next = nil
			break
		}
		if !ok {
			st.next = nil
		} else {
			st.next = &obj
		}
	}

	if st.current != nil && (*st.current).Timestamp() < l.ctime {
		st.active = st.current
	}

	for st.idx < len(st.objs) && st.objs[st.idx].Timestamp() <= l.ctime {
		st.previous = st.current
		cur := st.objs[st.idx]
		st.current = &cur
		st.idx++
	}

	if st.current != nil && (*st.current).Timestamp() < l.ctime {
		st.active = st.current
	}

	for len(st.objs) > 0 && st.objs[0].Timestamp() < l.ctime-l.tspan {
		st.objs = st.objs[1:]
		st.idx--
	}
}

// Err returns the I/O or parse error, if any, that killed key's stream.
func (l *Loader[K, T]) Err(key K) error {
	st := l.states[key]
	if st == nil {
		return nil
	}
	return st.err
}

// SetTime advances ctime. tstamp must not precede the current ctime.
func (l *Loader[K, T]) SetTime(tstamp int64) {
	invariant(tstamp >= l.ctime, "SetTime: tstamp %d precedes ctime %d", tstamp, l.ctime)
	l.ctime = tstamp
}

// Ctime returns the loader's current logical time.
func (l *Loader[K, T]) Ctime() int64 {
	return l.ctime
}

// Current returns the record with the largest timestamp <= ctime for key,
// or false if key has produced nothing yet.
func (l *Loader[K, T]) Current(key K) (T, bool) {
	l.fill(key)
	st := l.states[key]
	var zero T
	if st == nil || st.current == nil {
		return zero, false
	}
	return *st.current, true
}

// Previous returns the record observed immediately before Current(key).
func (l *Loader[K, T]) Previous(key K) (T, bool) {
	l.fill(key)
	st := l.states[key]
	var zero T
	if st == nil || st.previous == nil {
		return zero, false
	}
	return *st.previous, true
}

// Active returns the record with the largest timestamp strictly less
// than ctime for key (i.e. excludes a record landing exactly on ctime).
func (l *Loader[K, T]) Active(key K) (T, bool) {
	l.fill(key)
	st := l.states[key]
	var zero T
	if st == nil || st.active == nil {
		return zero, false
	}
	return *st.active, true
}

func (l *Loader[K, T]) peekNext(key K) (T, bool) {
	l.fill(key)
	st := l.states[key]
	var zero T
	if st == nil {
		return zero, false
	}
	if len(st.objs) == 0 && st.next == nil {
		return zero, false
	}
	if st.idx == len(st.objs) {
		if st.next == nil {
			return zero, false
		}
		return *st.next, true
	}
	return st.objs[st.idx], true
}

// Next returns the first not-yet-current record for key without
// consuming it.
func (l *Loader[K, T]) Next(key K) (T, bool) {
	return l.peekNext(key)
}

// Objects returns the full in-memory window for key.
func (l *Loader[K, T]) Objects(key K) []T {
	l.fill(key)
	st := l.states[key]
	if st == nil {
		return nil
	}
	return st.objs
}

// Forward returns every record at or after the current index for key, in
// chronological order.
func (l *Loader[K, T]) Forward(key K) []T {
	l.fill(key)
	st := l.states[key]
	if st == nil {
		return nil
	}
	out := make([]T, len(st.objs)-st.idx)
	copy(out, st.objs[st.idx:])
	return out
}

// Backward returns every record strictly before the current index for
// key, in reverse chronological order.
func (l *Loader[K, T]) Backward(key K) []T {
	l.fill(key)
	st := l.states[key]
	if st == nil {
		return nil
	}
	out := make([]T, st.idx)
	for i := 0; i < st.idx; i++ {
		out[i] = st.objs[st.idx-1-i]
	}
	return out
}

// PopEvent advances ctime to the earliest pending event, returning its
// key, its previous record (if any), and the event record itself.
func (l *Loader[K, T]) PopEvent() (tstamp int64, key K, previous T, obj T, err error) {
	if len(l.evheap) == 0 {
		var zeroK K
		var zeroT T
		return 0, zeroK, zeroT, zeroT, fmt.Errorf("loader: PopEvent: no pending events")
	}
	ev := heap.Pop(&l.evheap).(event[K, T])
	l.ctime = ev.tstamp

	if nextObj, ok := l.peekNext(ev.key); ok {
		heap.Push(&l.evheap, event[K, T]{tstamp: nextObj.Timestamp(), key: ev.key, obj: nextObj})
	}

	st := l.states[ev.key]
	var prev T
	if st != nil && st.previous != nil {
		prev = *st.previous
	}

	return ev.tstamp, ev.key, prev, ev.obj, nil
}

// Iterate drains every pending event in chronological order, calling fn
// for each. Iteration stops at the first error returned either by
// PopEvent or by fn.
func (l *Loader[K, T]) Iterate(fn func(tstamp int64, key K, previous T, obj T) error) error {
	for len(l.evheap) > 0 {
		tstamp, key, previous, obj, err := l.PopEvent()
		if err != nil {
			return err
		}
		if err := fn(tstamp, key, previous, obj); err != nil {
			return err
		}
	}
	return nil
}
