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
	"sync"

	"go.uber.org/zap"
)

var (
	logMu  sync.RWMutex
	logger = newDefaultLog()
)

func newDefaultLog() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		// zap.NewProduction only fails on a broken encoder config, which
		// never happens with the built-in preset.
		l = zap.NewNop()
	}
	return l
}

// Log returns the package-level logger; the cmd package logs through it.
// It defaults to a production zap logger writing to stderr; SetLog lets a
// host program install its own.
func Log() *zap.Logger {
	logMu.RLock()
	defer logMu.RUnlock()
	return logger
}

// SetLog installs l as the package-level logger. Passing nil restores the
// default production logger.
func SetLog(l *zap.Logger) {
	logMu.Lock()
	defer logMu.Unlock()
	if l == nil {
		l = newDefaultLog()
	}
	logger = l
}
