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

// Package pathwatch reconstructs per-destination traceroute paths from a
// time series of snapshots, localizes the change zones (LCZs) between
// consecutive snapshots, and canonicalizes observed routes into a compact
// per-destination alias space.
//
// The core types are [Address], [Interface], [Hop], and [Path]. [Diff]
// compares two paths to the same destination and returns the [LCZ]s between
// them, resolving asterisks (unresponsive hops) and load-balancer noise
// according to the [DiffFlag]s passed in. [PathDB] assigns stable alias ids
// to distinct paths observed per destination.
//
// Sibling packages build on this core: package ptext implements the wire
// text formats for paths and probes (see the package doc there), package
// loader implements the multi-stream temporal loader, and package
// correlate cross-references concurrent LCZs across destinations.
package pathwatch
