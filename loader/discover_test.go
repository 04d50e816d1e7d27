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

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pathwatch/pathwatch"
	"github.com/stretchr/testify/require"
)

func TestDiscoverFiles_ParsesDestinationFromFilename(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"paths.11.11.11.11.gz", "paths.22.22.22.22.gz", "probes.11.11.11.11.gz"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	keys, err := DiscoverFiles(dir, "paths")
	require.NoError(t, err)
	require.Len(t, keys, 2)

	got := map[pathwatch.Address]bool{}
	for _, k := range keys {
		got[k.Key] = true
	}
	require.True(t, got[mustAddr(t, "11.11.11.11")])
	require.True(t, got[mustAddr(t, "22.22.22.22")])
}

func TestDiscoverFiles_EmptyDirYieldsNoKeys(t *testing.T) {
	keys, err := DiscoverFiles(t.TempDir(), "paths")
	require.NoError(t, err)
	require.Empty(t, keys)
}

func mustAddr(t *testing.T, s string) pathwatch.Address {
	t.Helper()
	a, err := pathwatch.ParseAddress(s)
	require.NoError(t, err)
	return a
}
