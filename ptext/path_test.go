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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePath_RoundTripsCanonicalForm(t *testing.T) {
	line := "1.1.1.1 11.11.11.11 1 2.2.2.2:0:0,0,0,0:|3.3.3.3:1:0,0,0,0:;4.4.4.4:0:0,0,0,0:|11.11.11.11:0:0,0,0,0:"
	p, err := ParsePath(line)
	require.NoError(t, err)
	require.Equal(t, line, FormatPath(p))
}

func TestParsePath_NoHops(t *testing.T) {
	p, err := ParsePath("1.1.1.1 11.11.11.11 5")
	require.NoError(t, err)
	require.Empty(t, p.Hops)
	require.Equal(t, "1.1.1.1 11.11.11.11 5", FormatPath(p))
}

func TestParsePath_MultiFlowIDs(t *testing.T) {
	p, err := ParsePath("1.1.1.1 11.11.11.11 1 2.2.2.2:1,2,3:0,0,0,0:flag|11.11.11.11:0:0,0,0,0:")
	require.NoError(t, err)
	require.Equal(t, []uint32{1, 2, 3}, p.Hops[0].Interfaces[0].FlowIDs)
	require.Equal(t, "flag", p.Hops[0].Interfaces[0].Flags)
}

func TestParsePath_RejectsTooFewFields(t *testing.T) {
	_, err := ParsePath("1.1.1.1 11.11.11.11")
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "line", pe.Field)
}

func TestParsePath_RejectsMalformedAddress(t *testing.T) {
	_, err := ParsePath("not-an-ip 11.11.11.11 1")
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "src", pe.Field)
}

func TestParsePath_RejectsMalformedInterface(t *testing.T) {
	_, err := ParsePath("1.1.1.1 11.11.11.11 1 2.2.2.2:0:0,0,0,0")
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "interface", pe.Field)
}

func TestFormatPath_MinimalFloatRendering(t *testing.T) {
	p, err := ParsePath("1.1.1.1 11.11.11.11 1 2.2.2.2:0:1.5,2,3.25,0:|11.11.11.11:0:0,0,0,0:")
	require.NoError(t, err)
	require.Contains(t, FormatPath(p), "1.5,2,3.25,0")
}
