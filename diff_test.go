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
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDiff_NoChange mirrors spec.md scenario 1: identical paths diff to
// nothing under any flag combination.
func TestDiff_NoChange(t *testing.T) {
	p1 := buildPath(t, "1.1.1.1 11.11.11.11 1 2.2.2.2:0:0.00,0.00,0.00,0.00:|3.3.3.3:0:0.00,0.00,0.00,0.00:|4.4.4.4:0:0.00,0.00,0.00,0.00:|5.5.5.5:0:0.00,0.00,0.00,0.00:|6.6.6.6:0:0.00,0.00,0.00,0.00:|7.7.7.7:0:0.00,0.00,0.00,0.00:|11.11.11.11:0:0.00,0.00,0.00,0.00:")
	p2 := buildPath(t, "1.1.1.1 11.11.11.11 2 2.2.2.2:0:0.00,0.00,0.00,0.00:|3.3.3.3:0:0.00,0.00,0.00,0.00:|4.4.4.4:0:0.00,0.00,0.00,0.00:|5.5.5.5:0:0.00,0.00,0.00,0.00:|6.6.6.6:0:0.00,0.00,0.00,0.00:|7.7.7.7:0:0.00,0.00,0.00,0.00:|11.11.11.11:0:0.00,0.00,0.00,0.00:")

	require.Empty(t, Diff(p1, p2, 0))
	require.Empty(t, Diff(p1, p2, FixStars|Extend))
}

// TestDiff_OneHopReplacement mirrors spec.md scenario 2.
func TestDiff_OneHopReplacement(t *testing.T) {
	p1 := buildPath(t, "1.1.1.1 11.11.11.11 1 2.2.2.2:0:0.00,0.00,0.00,0.00:|3.3.3.3:0:0.00,0.00,0.00,0.00:|4.4.4.4:0:0.00,0.00,0.00,0.00:|5.5.5.5:0:0.00,0.00,0.00,0.00:|6.6.6.6:0:0.00,0.00,0.00,0.00:|7.7.7.7:0:0.00,0.00,0.00,0.00:|11.11.11.11:0:0.00,0.00,0.00,0.00:")
	p2 := buildPath(t, "1.1.1.1 11.11.11.11 2 2.2.2.2:0:0.00,0.00,0.00,0.00:|3.3.3.3:0:0.00,0.00,0.00,0.00:|4.4.4.4:0:0.00,0.00,0.00,0.00:|12.12.12.12:0:0.00,0.00,0.00,0.00:|6.6.6.6:0:0.00,0.00,0.00,0.00:|7.7.7.7:0:0.00,0.00,0.00,0.00:|11.11.11.11:0:0.00,0.00,0.00,0.00:")

	changes := Diff(p1, p2, 0)
	require.Len(t, changes, 1)

	lcz := changes[0]
	removed, removedAddrs := lcz.Removed()
	added, addedAddrs := lcz.Added()
	require.Len(t, removed, 1)
	require.Len(t, added, 1)
	require.Contains(t, removedAddrs, mustAddr(t, "5.5.5.5"))
	require.Contains(t, addedAddrs, mustAddr(t, "12.12.12.12"))
	require.Equal(t, lcz.BranchHop().Interfaces[0].Addr, mustAddr(t, "4.4.4.4"))
	require.Equal(t, lcz.JoinHop().Interfaces[0].Addr, mustAddr(t, "6.6.6.6"))
}

// TestDiff_StarFixedToMatch mirrors spec.md scenario 3.
func TestDiff_StarFixedToMatch(t *testing.T) {
	p1 := buildPath(t, "1.1.1.1 11.11.11.11 1 2.2.2.2:0:0.00,0.00,0.00,0.00:|3.3.3.3:0:0.00,0.00,0.00,0.00:|255.255.255.255:0:0.00,0.00,0.00,0.00:|5.5.5.5:0:0.00,0.00,0.00,0.00:|6.6.6.6:0:0.00,0.00,0.00,0.00:|11.11.11.11:0:0.00,0.00,0.00,0.00:")
	p2 := buildPath(t, "1.1.1.1 11.11.11.11 1 2.2.2.2:0:0.00,0.00,0.00,0.00:|3.3.3.3:0:0.00,0.00,0.00,0.00:|4.4.4.4:0:0.00,0.00,0.00,0.00:|5.5.5.5:0:0.00,0.00,0.00,0.00:|6.6.6.6:0:0.00,0.00,0.00,0.00:|11.11.11.11:0:0.00,0.00,0.00,0.00:")

	changes := Diff(p1, p2, FixStars)
	require.Empty(t, changes)
	require.Equal(t, mustAddr(t, "4.4.4.4"), p1.Hops[2].Interfaces[0].Addr)
}

// TestDiff_StarFixRefusedWhenAddressAlreadyInPath mirrors spec.md
// scenario 4: the star isn't rewritten, and the mismatch surfaces as a
// real LCZ instead.
func TestDiff_StarFixRefusedWhenAddressAlreadyInPath(t *testing.T) {
	p1 := buildPath(t, "1.1.1.1 11.11.11.11 1 2.2.2.2:0:0.00,0.00,0.00,0.00:|3.3.3.3:0:0.00,0.00,0.00,0.00:|255.255.255.255:0:0.00,0.00,0.00,0.00:|5.5.5.5:0:0.00,0.00,0.00,0.00:|6.6.6.6:0:0.00,0.00,0.00,0.00:|11.11.11.11:0:0.00,0.00,0.00,0.00:")
	p2 := buildPath(t, "1.1.1.1 11.11.11.11 1 2.2.2.2:0:0.00,0.00,0.00,0.00:|3.3.3.3:0:0.00,0.00,0.00,0.00:|3.3.3.3:0:0.00,0.00,0.00,0.00:|5.5.5.5:0:0.00,0.00,0.00,0.00:|6.6.6.6:0:0.00,0.00,0.00,0.00:|11.11.11.11:0:0.00,0.00,0.00,0.00:")

	changes := Diff(p1, p2, FixStars)
	require.NotEmpty(t, changes)
	require.True(t, p1.Hops[2].IsStar(), "star must not have been rewritten")
}

// TestDiff_ExtendShortenedPath mirrors spec.md scenario 5.
func TestDiff_ExtendShortenedPath(t *testing.T) {
	p1 := buildPath(t, "1.1.1.1 11.11.11.11 1 2.2.2.2:0:0.00,0.00,0.00,0.00:|3.3.3.3:0:0.00,0.00,0.00,0.00:|4.4.4.4:0:0.00,0.00,0.00,0.00:|5.5.5.5:0:0.00,0.00,0.00,0.00:|6.6.6.6:0:0.00,0.00,0.00,0.00:|11.11.11.11:0:0.00,0.00,0.00,0.00:")
	p2 := buildPath(t, "1.1.1.1 11.11.11.11 1 2.2.2.2:0:0.00,0.00,0.00,0.00:|3.3.3.3:0:0.00,0.00,0.00,0.00:|4.4.4.4:0:0.00,0.00,0.00,0.00:")

	changes := Diff(p1, p2, FixStars|Extend)
	require.Empty(t, changes)
	require.Equal(t, p1.Len(), p2.Len())
}

// TestDiff_AliasStabilityAcrossThreeObservations mirrors spec.md scenario
// 6: a star-fixable repeat gets the same alias, a genuinely different
// path gets the next one.
func TestDiff_AliasStabilityAcrossThreeObservations(t *testing.T) {
	db := NewPathDB(0)

	p1 := buildPath(t, "1.1.1.1 11.11.11.11 1 2.2.2.2:0:0.00,0.00,0.00,0.00:|3.3.3.3:0:0.00,0.00,0.00,0.00:|255.255.255.255:0:0.00,0.00,0.00,0.00:|5.5.5.5:0:0.00,0.00,0.00,0.00:|6.6.6.6:0:0.00,0.00,0.00,0.00:|11.11.11.11:0:0.00,0.00,0.00,0.00:")
	p2 := buildPath(t, "1.1.1.1 11.11.11.11 2 2.2.2.2:0:0.00,0.00,0.00,0.00:|3.3.3.3:0:0.00,0.00,0.00,0.00:|4.4.4.4:0:0.00,0.00,0.00,0.00:|5.5.5.5:0:0.00,0.00,0.00,0.00:|6.6.6.6:0:0.00,0.00,0.00,0.00:|11.11.11.11:0:0.00,0.00,0.00,0.00:")
	p3 := buildPath(t, "1.1.1.1 11.11.11.11 3 2.2.2.2:0:0.00,0.00,0.00,0.00:|13.13.13.13:0:0.00,0.00,0.00,0.00:|4.4.4.4:0:0.00,0.00,0.00,0.00:|5.5.5.5:0:0.00,0.00,0.00,0.00:|6.6.6.6:0:0.00,0.00,0.00,0.00:|11.11.11.11:0:0.00,0.00,0.00,0.00:")

	db.Alias(p1)
	db.Alias(p2)
	db.Alias(p3)

	require.Equal(t, 0, p1.Alias)
	require.Equal(t, 0, p2.Alias)
	require.Equal(t, 1, p3.Alias)
}

// TestDiff_ReflexiveEmpty checks that diffing a path against itself
// returns an empty list for every well-formed Path p.
func TestDiff_ReflexiveEmpty(t *testing.T) {
	p := buildPath(t, "1.1.1.1 11.11.11.11 1 2.2.2.2:0:0.00,0.00,0.00,0.00:|3.3.3.3:0:0.00,0.00,0.00,0.00:|11.11.11.11:0:0.00,0.00,0.00,0.00:")
	require.Empty(t, Diff(p, p.Copy(), 0))
}

// TestDiff_IgnoreBalancersCoalescesFlowSplit checks that a balanced-hop
// reshuffle is a real change under exact equality but disappears under
// IgnoreBalancers.
func TestDiff_IgnoreBalancersCoalescesFlowSplit(t *testing.T) {
	p1 := buildPath(t, "1.1.1.1 11.11.11.11 1 2.2.2.2:0:0.00,0.00,0.00,0.00:|3.3.3.3:0:0.00,0.00,0.00,0.00:;11.11.11.11:1:0.00,0.00,0.00,0.00:")
	p2 := buildPath(t, "1.1.1.1 11.11.11.11 1 2.2.2.2:0:0.00,0.00,0.00,0.00:|4.4.4.4:0:0.00,0.00,0.00,0.00:;11.11.11.11:1:0.00,0.00,0.00,0.00:")

	require.Len(t, Diff(p1, p2, 0), 1)
	require.Empty(t, Diff(p1, p2, IgnoreBalancers))
}

// TestDiff_PreconditionPanics enforces the Diff precondition panics on a
// destination mismatch.
func TestDiff_PreconditionPanics(t *testing.T) {
	p1 := buildPath(t, "1.1.1.1 11.11.11.11 1 2.2.2.2:0:0.00,0.00,0.00,0.00:|11.11.11.11:0:0.00,0.00,0.00,0.00:")
	p2 := buildPath(t, "1.1.1.1 22.22.22.22 1 2.2.2.2:0:0.00,0.00,0.00,0.00:|22.22.22.22:0:0.00,0.00,0.00,0.00:")
	require.Panics(t, func() { Diff(p1, p2, 0) })
}

// TestLCZ_InvariantBounds asserts the LCZ index-ordering invariant for
// every LCZ a diff with FixStars|Extend can produce.
func TestLCZ_InvariantBounds(t *testing.T) {
	p1 := buildPath(t, "1.1.1.1 9.9.9.9 0 1.1.1.1:0:0.0,0.0,0.0,0.0:|2.2.2.2:0:0.0,0.0,0.0,0.0:|3.3.3.3:0:0.0,0.0,0.0,0.0:|4.4.4.4:0:0.0,0.0,0.0,0.0:|5.5.5.5:0:0.0,0.0,0.0,0.0:|6.6.6.6:0:0.0,0.0,0.0,0.0:|7.7.7.7:0:0.0,0.0,0.0,0.0:|8.8.8.8:0:0.0,0.0,0.0,0.0:|9.9.9.9:0:0.0,0.0,0.0,0.0:")
	p2 := buildPath(t, "1.1.1.1 9.9.9.9 0 1.1.1.1:0:0.0,0.0,0.0,0.0:|12.12.12.12:0:0.0,0.0,0.0,0.0:|255.255.255.255:0:0.0,0.0,0.0,0.0:|14.14.14.14:0:0.0,0.0,0.0,0.0:|6.6.6.6:0:0.0,0.0,0.0,0.0:|17.17.17.17:0:0.0,0.0,0.0,0.0:|255.255.255.255:0:0.0,0.0,0.0,0.0:|18.18.18.18:0:0.0,0.0,0.0,0.0:|9.9.9.9:0:0.0,0.0,0.0,0.0:")

	changes := Diff(p1, p2, FixStars|Extend)
	require.Len(t, changes, 2)
	for _, lcz := range changes {
		require.GreaterOrEqual(t, lcz.I1+1, 0)
		require.LessOrEqual(t, lcz.I1+1, lcz.J1)
		require.LessOrEqual(t, lcz.J1, p1.Len())
		require.GreaterOrEqual(t, lcz.I2+1, 0)
		require.LessOrEqual(t, lcz.I2+1, lcz.J2)
		require.LessOrEqual(t, lcz.J2, p2.Len())
		require.True(t, lcz.J1 > lcz.I1 || lcz.J2 > lcz.I2)
	}
}
