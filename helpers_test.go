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
	"strconv"
	"strings"
	"testing"
)

// buildPath parses the same textual path form package ptext implements,
// kept as an independent, deliberately minimal fixture builder so the
// core package's tests don't need to import ptext.
func buildPath(t *testing.T, s string) *Path {
	t.Helper()
	fields := strings.Fields(s)
	if len(fields) < 3 {
		t.Fatalf("buildPath: malformed fixture %q", s)
	}
	src, err := ParseAddress(fields[0])
	if err != nil {
		t.Fatalf("buildPath: src: %v", err)
	}
	dst, err := ParseAddress(fields[1])
	if err != nil {
		t.Fatalf("buildPath: dst: %v", err)
	}
	tstamp, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		t.Fatalf("buildPath: tstamp: %v", err)
	}
	var hops []Hop
	if len(fields) > 3 {
		for ttl, hopStr := range strings.Split(fields[3], "|") {
			var ifaces []Interface
			for _, ifStr := range strings.Split(hopStr, ";") {
				parts := strings.Split(ifStr, ":")
				if len(parts) != 4 {
					t.Fatalf("buildPath: malformed interface %q", ifStr)
				}
				addr, err := ParseAddress(parts[0])
				if err != nil {
					t.Fatalf("buildPath: iface addr: %v", err)
				}
				var flowids []uint32
				if parts[1] != "" {
					for _, f := range strings.Split(parts[1], ",") {
						v, err := strconv.ParseUint(f, 10, 32)
						if err != nil {
							t.Fatalf("buildPath: flowid: %v", err)
						}
						flowids = append(flowids, uint32(v))
					}
				}
				rtt := RTT{}
				rparts := strings.Split(parts[2], ",")
				if len(rparts) == 4 {
					rtt.Min = mustFloat(t, rparts[0])
					rtt.Avg = mustFloat(t, rparts[1])
					rtt.Max = mustFloat(t, rparts[2])
					rtt.Var = mustFloat(t, rparts[3])
				}
				ifaces = append(ifaces, NewInterface(addr, ttl, flowids, parts[3], rtt))
			}
			hops = append(hops, NewHop(ttl, ifaces))
		}
	}
	return NewPath(src, dst, tstamp, hops)
}

func mustFloat(t *testing.T, s string) float64 {
	t.Helper()
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		t.Fatalf("buildPath: float: %v", err)
	}
	return v
}

func mustAddr(t *testing.T, s string) Address {
	t.Helper()
	a, err := ParseAddress(s)
	if err != nil {
		t.Fatalf("mustAddr: %v", err)
	}
	return a
}
