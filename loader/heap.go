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

package loader

import "cmp"

// event is one pending (tstamp, key) entry in a Loader's min-heap of next
// records to emit. Ties on tstamp break on key, matching the tuple
// ordering heapq imposes on Python's (tstamp, key, obj) entries.
type event[K cmp.Ordered, T Timestamped] struct {
	tstamp int64
	key    K
	obj    T
}

// eventHeap implements container/heap.Interface over a slice of events.
type eventHeap[K cmp.Ordered, T Timestamped] []event[K, T]

func (h eventHeap[K, T]) Len() int { return len(h) }

func (h eventHeap[K, T]) Less(i, j int) bool {
	if h[i].tstamp != h[j].tstamp {
		return h[i].tstamp < h[j].tstamp
	}
	return h[i].key < h[j].key
}

func (h eventHeap[K, T]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap[K, T]) Push(x any) {
	*h = append(*h, x.(event[K, T]))
}

func (h *eventHeap[K, T]) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
