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
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pathwatch/pathwatch"
)

// DiscoverFiles globs dir for files named "<prefix>.<dst>.gz" and returns
// one FileKey per match, with Key parsed from the dotted address embedded
// in the filename. Grounded on the original create_file_list.
func DiscoverFiles(dir, prefix string) ([]FileKey[pathwatch.Address], error) {
	pattern := filepath.Join(dir, prefix+".*.gz")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("loader: glob %s: %w", pattern, err)
	}

	out := make([]FileKey[pathwatch.Address], 0, len(matches))
	for _, fpath := range matches {
		base := filepath.Base(fpath)
		key := strings.TrimSuffix(base, ".gz")
		key = strings.TrimPrefix(key, prefix+".")
		addr, err := pathwatch.ParseAddress(key)
		if err != nil {
			return nil, fmt.Errorf("loader: %s: key %q: %w", fpath, key, err)
		}
		out = append(out, FileKey[pathwatch.Address]{Path: fpath, Key: addr})
	}
	return out, nil
}
