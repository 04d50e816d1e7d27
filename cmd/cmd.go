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

// Package pathwatchcmd wraps the pathwatch/loader/correlate packages in a
// cobra-based command-line interface: a deferred root-command factory plus
// a process bootstrap that tunes the runtime before handing off to cobra.
package pathwatchcmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ExitCodeSuccess and ExitCodeFailedStartup are the only two process exit
// codes: a normal run, or a fatal startup error (bad flags, missing input
// directory, unreadable config).
const (
	ExitCodeSuccess       = 0
	ExitCodeFailedStartup = 1
)

// exitError carries a process exit code alongside the error that caused it.
type exitError struct {
	ExitCode int
	Err      error
}

func (e *exitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exiting with status %d", e.ExitCode)
	}
	return e.Err.Error()
}

func (e *exitError) Unwrap() error { return e.Err }

// rootCommandFactory is a constructor plus a list of deferred option
// functions, so init() functions in sibling files can register
// subcommands without import cycles.
type rootCommandFactory struct {
	constructor func() *cobra.Command
	options     []func(*cobra.Command)
}

func newRootCommandFactory(fn func() *cobra.Command) *rootCommandFactory {
	return &rootCommandFactory{constructor: fn}
}

func (f *rootCommandFactory) Use(fn func(cmd *cobra.Command)) {
	f.options = append(f.options, fn)
}

func (f *rootCommandFactory) Build() *cobra.Command {
	root := f.constructor()
	for _, opt := range f.options {
		opt(root)
	}
	return root
}

var defaultFactory = newRootCommandFactory(func() *cobra.Command {
	return &cobra.Command{
		Use:   "pathwatch",
		Short: "Detects and correlates traceroute path changes across destinations",
		Long: `pathwatch reconstructs per-destination traceroute paths from a time
series of snapshots, localizes the change zones between consecutive
snapshots, and cross-correlates concurrent changes across destinations to
surface shared infrastructure events.

Typical usage:

	$ pathwatch run --mondir ./data --timespan 1800 -o changes

which reads "paths.<dst>.gz" (and, if present, "probes.<dst>.gz") files
from --mondir and writes one correlation record per line to <prefix>.out.

The "diff" subcommand compares two path files directly and prints a
human-readable unified diff of the hop-level changes, for debugging a
single destination without running the full correlator.`,
		SilenceUsage: true,
	}
})
