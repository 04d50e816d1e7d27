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

func iface(t *testing.T, addr string) Interface {
	return NewInterface(mustAddr(t, addr), 0, nil, "", RTT{})
}

func TestHop_IsStar(t *testing.T) {
	require.True(t, StarHop(3).IsStar())

	h := NewHop(3, []Interface{iface(t, "1.1.1.1")})
	require.False(t, h.IsStar())
}

func TestHop_SortsByAddress(t *testing.T) {
	h := NewHop(0, []Interface{iface(t, "9.9.9.9"), iface(t, "1.1.1.1"), iface(t, "5.5.5.5")})
	require.Equal(t, []Address{mustAddr(t, "1.1.1.1"), mustAddr(t, "5.5.5.5"), mustAddr(t, "9.9.9.9")},
		[]Address{h.Interfaces[0].Addr, h.Interfaces[1].Addr, h.Interfaces[2].Addr})
}

func TestHop_ContainsAndSetFirst(t *testing.T) {
	h := NewHop(0, []Interface{iface(t, "3.3.3.3"), iface(t, "1.1.1.1"), iface(t, "2.2.2.2")})
	require.True(t, h.Contains(mustAddr(t, "2.2.2.2")))
	require.False(t, h.Contains(mustAddr(t, "9.9.9.9")))

	h.SetFirst(mustAddr(t, "2.2.2.2"))
	require.Equal(t, mustAddr(t, "2.2.2.2"), h.Interfaces[0].Addr)
}

func TestHop_SetFirstPanicsWhenAbsent(t *testing.T) {
	h := NewHop(0, []Interface{iface(t, "1.1.1.1")})
	require.Panics(t, func() { h.SetFirst(mustAddr(t, "9.9.9.9")) })
}

func TestHop_EqualExactSets(t *testing.T) {
	h1 := NewHop(0, []Interface{iface(t, "1.1.1.1"), iface(t, "2.2.2.2")})
	h2 := NewHop(0, []Interface{iface(t, "2.2.2.2"), iface(t, "1.1.1.1")})
	h3 := NewHop(0, []Interface{iface(t, "1.1.1.1")})

	require.True(t, h1.Equal(h2, false))
	require.False(t, h1.Equal(h3, false))
}

func TestHop_EqualIgnoreBalancers(t *testing.T) {
	h1 := NewHop(0, []Interface{iface(t, "1.1.1.1"), iface(t, "2.2.2.2")})
	h2 := NewHop(0, []Interface{iface(t, "2.2.2.2"), iface(t, "3.3.3.3")})
	h3 := NewHop(0, []Interface{iface(t, "4.4.4.4")})

	require.False(t, h1.Equal(h2, false))
	require.True(t, h1.Equal(h2, true))
	require.False(t, h1.Equal(h3, true))
}

func TestHop_Copy(t *testing.T) {
	h := NewHop(0, []Interface{iface(t, "1.1.1.1")})
	cp := h.Copy()
	cp.Interfaces[0].Flags = "mutated"
	require.NotEqual(t, h.Interfaces[0].Flags, cp.Interfaces[0].Flags)
}
