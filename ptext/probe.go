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

// Probe is a single traceroute response: the destination being probed, the
// TTL and flow id that elicited the reply, the replying address, and
// whether a downstream detector already flagged it as a path change.
type Probe struct {
	Tstamp    int64
	Dst       pathwatch.Address
	TTL       int
	FlowID    uint32
	IP        pathwatch.Address
	Detection bool
}

// Timestamp returns p.Tstamp. It exists so Probe satisfies the loader
// package's Timestamped constraint.
func (p Probe) Timestamp() int64 {
	return p.Tstamp
}

// String renders p in the standard pipe-delimited wire form.
func (p Probe) String() string {
	return fmt.Sprintf("%d|%s|%d|%d|%s|%s", p.Tstamp, p.Dst, p.TTL, p.FlowID, p.IP, strconv.FormatBool(p.Detection))
}

// ParseProbe parses the standard pipe-delimited probe form:
//
//	<tstamp>|<dst>|<ttl>|<flowid>|<ip>|<detection>
func ParseProbe(line string) (Probe, error) {
	fields := strings.Split(line, "|")
	if len(fields) != 6 {
		return Probe{}, &ParseError{Line: line, Field: "line", Err: fmt.Errorf("expected 6 pipe-separated fields, got %d", len(fields))}
	}

	tstamp, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Probe{}, &ParseError{Line: line, Field: "tstamp", Err: err}
	}
	dst, err := pathwatch.ParseAddress(fields[1])
	if err != nil {
		return Probe{}, &ParseError{Line: line, Field: "dst", Err: err}
	}
	ttl, err := strconv.Atoi(fields[2])
	if err != nil {
		return Probe{}, &ParseError{Line: line, Field: "ttl", Err: err}
	}
	flowid, err := strconv.ParseUint(fields[3], 10, 32)
	if err != nil {
		return Probe{}, &ParseError{Line: line, Field: "flowid", Err: err}
	}
	ip, err := pathwatch.ParseAddress(fields[4])
	if err != nil {
		return Probe{}, &ParseError{Line: line, Field: "ip", Err: err}
	}
	detection, err := strconv.ParseBool(fields[5])
	if err != nil {
		return Probe{}, &ParseError{Line: line, Field: "detection", Err: err}
	}

	return Probe{Tstamp: tstamp, Dst: dst, TTL: ttl, FlowID: uint32(flowid), IP: ip, Detection: detection}, nil
}

// ParseProbeLine dispatches between the standard pipe-delimited form and
// the legacy '#'-prefixed TON dataset form, based on the line's first
// byte. Loaders reading archival data should call this instead of
// ParseProbe directly, since older datasets mix both forms across files.
func ParseProbeLine(line string) (Probe, error) {
	if strings.HasPrefix(line, "#") {
		return parseProbeTON(line)
	}
	return ParseProbe(line)
}

// parseProbeTON parses the legacy, space-delimited TON dataset form,
// emitted by the first Python-based DTrack:
//
//	# <change|match> <tstamp> <dst> <ttl> <flowid> <ip>
func parseProbeTON(line string) (Probe, error) {
	fields := strings.Fields(line)
	if len(fields) != 7 {
		return Probe{}, &ParseError{Line: line, Field: "line", Err: fmt.Errorf("expected 7 space-separated fields, got %d", len(fields))}
	}

	var detection bool
	switch fields[1] {
	case "change":
		detection = true
	case "match":
		detection = false
	default:
		return Probe{}, &ParseError{Line: line, Field: "response", Err: fmt.Errorf("unrecognized response %q, want change or match", fields[1])}
	}

	tstamp, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return Probe{}, &ParseError{Line: line, Field: "tstamp", Err: err}
	}
	dst, err := pathwatch.ParseAddress(fields[3])
	if err != nil {
		return Probe{}, &ParseError{Line: line, Field: "dst", Err: err}
	}
	ttl, err := strconv.Atoi(fields[4])
	if err != nil {
		return Probe{}, &ParseError{Line: line, Field: "ttl", Err: err}
	}
	flowid, err := strconv.ParseUint(fields[5], 10, 32)
	if err != nil {
		return Probe{}, &ParseError{Line: line, Field: "flowid", Err: err}
	}
	ip, err := pathwatch.ParseAddress(fields[6])
	if err != nil {
		return Probe{}, &ParseError{Line: line, Field: "ip", Err: err}
	}

	return Probe{Tstamp: tstamp, Dst: dst, TTL: ttl, FlowID: uint32(flowid), IP: ip, Detection: detection}, nil
}
