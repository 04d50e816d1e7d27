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

package ptext

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pathwatch/pathwatch"
)

// ParsePath parses one line of the path text format:
//
//	<src> <dst> <tstamp> <hop>|<hop>|...
//
// where <hop> is <iface>;<iface>;... and <iface> is
// <addr>:<flowid>,<flowid>,...:<min>,<avg>,<max>,<var>:<flags>. The hop
// field is omitted entirely for a path with no hops.
func ParsePath(line string) (*pathwatch.Path, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return nil, &ParseError{Line: line, Field: "line", Err: fmt.Errorf("expected at least 3 space-separated fields, got %d", len(fields))}
	}

	src, err := pathwatch.ParseAddress(fields[0])
	if err != nil {
		return nil, &ParseError{Line: line, Field: "src", Err: err}
	}
	dst, err := pathwatch.ParseAddress(fields[1])
	if err != nil {
		return nil, &ParseError{Line: line, Field: "dst", Err: err}
	}
	tstamp, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return nil, &ParseError{Line: line, Field: "tstamp", Err: err}
	}

	var hops []pathwatch.Hop
	if len(fields) > 3 {
		for ttl, hopStr := range strings.Split(fields[3], "|") {
			hop, err := parseHop(line, ttl, hopStr)
			if err != nil {
				return nil, err
			}
			hops = append(hops, hop)
		}
	}

	return pathwatch.NewPath(src, dst, tstamp, hops), nil
}

func parseHop(line string, ttl int, s string) (pathwatch.Hop, error) {
	var ifaces []pathwatch.Interface
	for _, ifStr := range strings.Split(s, ";") {
		iface, err := parseInterface(line, ttl, ifStr)
		if err != nil {
			return pathwatch.Hop{}, err
		}
		ifaces = append(ifaces, iface)
	}
	return pathwatch.NewHop(ttl, ifaces), nil
}

func parseInterface(line string, ttl int, s string) (pathwatch.Interface, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return pathwatch.Interface{}, &ParseError{Line: line, Field: "interface", Err: fmt.Errorf("expected 4 colon-separated parts, got %d in %q", len(parts), s)}
	}

	addr, err := pathwatch.ParseAddress(parts[0])
	if err != nil {
		return pathwatch.Interface{}, &ParseError{Line: line, Field: "interface.addr", Err: err}
	}

	var flowIDs []uint32
	if parts[1] != "" {
		for _, f := range strings.Split(parts[1], ",") {
			v, err := strconv.ParseUint(f, 10, 32)
			if err != nil {
				return pathwatch.Interface{}, &ParseError{Line: line, Field: "interface.flowid", Err: err}
			}
			flowIDs = append(flowIDs, uint32(v))
		}
	}

	rtt, err := parseRTT(parts[2])
	if err != nil {
		return pathwatch.Interface{}, &ParseError{Line: line, Field: "interface.rtt", Err: err}
	}

	return pathwatch.NewInterface(addr, ttl, flowIDs, parts[3], rtt), nil
}

func parseRTT(s string) (pathwatch.RTT, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return pathwatch.RTT{}, fmt.Errorf("expected 4 comma-separated values, got %d in %q", len(parts), s)
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return pathwatch.RTT{}, err
		}
		vals[i] = v
	}
	return pathwatch.RTT{Min: vals[0], Avg: vals[1], Max: vals[2], Var: vals[3]}, nil
}

// FormatPath renders p in the same textual form ParsePath consumes. The
// hop field is omitted when p has no hops, matching ParsePath's handling
// of a 3-field line.
func FormatPath(p *pathwatch.Path) string {
	parts := []string{p.Src.String(), p.Dst.String(), strconv.FormatInt(p.Tstamp, 10)}
	if len(p.Hops) > 0 {
		hopStrs := make([]string, len(p.Hops))
		for i, h := range p.Hops {
			hopStrs[i] = formatHop(h)
		}
		parts = append(parts, strings.Join(hopStrs, "|"))
	}
	return strings.Join(parts, " ")
}

func formatHop(h pathwatch.Hop) string {
	ifaceStrs := make([]string, len(h.Interfaces))
	for i, iface := range h.Interfaces {
		ifaceStrs[i] = formatInterface(iface)
	}
	return strings.Join(ifaceStrs, ";")
}

func formatInterface(i pathwatch.Interface) string {
	ids := make([]string, len(i.FlowIDs))
	for j, id := range i.FlowIDs {
		ids[j] = strconv.FormatUint(uint64(id), 10)
	}
	rtt := strings.Join([]string{
		formatFloat(i.RTT.Min),
		formatFloat(i.RTT.Avg),
		formatFloat(i.RTT.Max),
		formatFloat(i.RTT.Var),
	}, ",")
	return i.Addr.String() + ":" + strings.Join(ids, ",") + ":" + rtt + ":" + i.Flags
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
