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

package pathwatchcmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aryann/difflib"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/pathwatch/pathwatch"
	"github.com/pathwatch/pathwatch/correlate"
	"github.com/pathwatch/pathwatch/loader"
	"github.com/pathwatch/pathwatch/ptext"
)

func init() {
	defaultFactory.Use(func(root *cobra.Command) {
		root.AddCommand(newRunCommand())
		root.AddCommand(newDiffCommand())
		root.AddCommand(newAliasCommand())
	})
}

// runConfig is the shape of the optional --config YAML file: the same
// --mondir/--timespan/-o flags the run command exposes, plus an admin
// listen address for driving a long-running process.
type runConfig struct {
	MonDir   string `yaml:"mondir"`
	Timespan int64  `yaml:"timespan"`
	Prefix   string `yaml:"prefix"`
	Admin    string `yaml:"admin"`
}

func newRunCommand() *cobra.Command {
	var cfgFile string
	cfg := runConfig{Timespan: 1800, Prefix: "changes"}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Correlate path changes across a directory of monitor files",
		Long: `run discovers "paths.<dst>.gz" (and "probes.<dst>.gz", if present)
files under --mondir, drives the multi-stream loader and LCZ correlator
over them, and writes one correlation record per line to "<prefix>.out"
(stdout if --out is cleared).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile != "" {
				if err := loadYAMLConfig(cfgFile, &cfg); err != nil {
					return &exitError{ExitCode: ExitCodeFailedStartup, Err: err}
				}
			}
			if cfg.MonDir == "" {
				return &exitError{ExitCode: ExitCodeFailedStartup, Err: fmt.Errorf("--mondir is required")}
			}

			runID := uuid.New()
			start := time.Now()
			pathwatch.Log().Info("starting run",
				zap.String("run_id", runID.String()),
				zap.String("mondir", cfg.MonDir),
				zap.Int64("timespan", cfg.Timespan))

			if cfg.Admin != "" {
				srv := newAdminServer(cfg.Admin)
				go func() {
					if err := srv.ListenAndServe(); err != nil {
						pathwatch.Log().Warn("admin server stopped", zap.Error(err))
					}
				}()
				defer srv.Close()
			}

			nRecords, err := runCorrelate(cfg, cmd.OutOrStdout())
			if err != nil {
				return &exitError{ExitCode: ExitCodeFailedStartup, Err: err}
			}

			pathwatch.Log().Info("run complete",
				zap.String("run_id", runID.String()),
				zap.Int("records", nRecords),
				zap.Duration("elapsed", time.Since(start)))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s records in %s\n",
				humanize.Comma(int64(nRecords)), time.Since(start).Round(time.Millisecond))
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&cfgFile, "config", "", "YAML config file (overrides flags below when set)")
	fs.StringVar(&cfg.MonDir, "mondir", cfg.MonDir, "Directory of <prefix>.<dst>.gz monitor files")
	fs.Int64Var(&cfg.Timespan, "timespan", cfg.Timespan, "Sliding window width in seconds")
	fs.StringVarP(&cfg.Prefix, "out", "o", cfg.Prefix, "Output record file prefix; records are written to <prefix>.out")
	fs.StringVar(&cfg.Admin, "admin", "", "Admin HTTP listen address, e.g. localhost:2223 (empty disables it)")
	return cmd
}

func loadYAMLConfig(path string, cfg *runConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// runCorrelate discovers the path (and optional probe) files under
// cfg.MonDir, builds the two loaders, and drives correlate.Run. Records
// are written one per line to "<prefix>.out" when cfg.Prefix is set, or
// to statusOut otherwise. Returns the number of records written.
func runCorrelate(cfg runConfig, statusOut io.Writer) (int, error) {
	pathKeys, err := loader.DiscoverFiles(cfg.MonDir, "paths")
	if err != nil {
		return 0, err
	}
	if len(pathKeys) == 0 {
		return 0, fmt.Errorf("no paths.*.gz files found in %s", cfg.MonDir)
	}

	pathLoader, err := loader.New(cfg.Timespan, pathKeys, ptext.ParsePath)
	if err != nil {
		return 0, fmt.Errorf("opening path loader: %w", err)
	}
	defer pathLoader.Close()

	// A probe loader is always constructed, even with zero files, since
	// correlate.Run's ProbeStats unconditionally calls Ctime/Objects on it
	// (probes.*.gz is an optional input, not an optional loader).
	probeKeys, err := loader.DiscoverFiles(cfg.MonDir, "probes")
	if err != nil {
		probeKeys = nil
	}
	probeLoader, err := loader.New(cfg.Timespan, probeKeys, ptext.ParseProbeLine)
	if err != nil {
		return 0, fmt.Errorf("opening probe loader: %w", err)
	}
	defer probeLoader.Close()

	out := statusOut
	if cfg.Prefix != "" {
		f, err := os.Create(cfg.Prefix + ".out")
		if err != nil {
			return 0, fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	n := 0
	err = correlate.Run(pathLoader, probeLoader, cfg.Timespan, func(rec correlate.Record) error {
		n++
		_, werr := fmt.Fprintln(out, rec.String())
		return werr
	})
	return n, err
}

func newDiffCommand() *cobra.Command {
	var ignoreBalancers, fixStars, extend bool

	cmd := &cobra.Command{
		Use:   "diff <old-path-line-file> <new-path-line-file>",
		Short: "Print a human-readable diff between two single-line path files",
		Long: `diff parses one path (one text line in the monitor wire format) from
each of the two given files and prints the hop-level differences as a
unified diff, for debugging a single destination's change without running
the full correlator.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p1, err := readSinglePath(args[0])
			if err != nil {
				return &exitError{ExitCode: ExitCodeFailedStartup, Err: err}
			}
			p2, err := readSinglePath(args[1])
			if err != nil {
				return &exitError{ExitCode: ExitCodeFailedStartup, Err: err}
			}

			var flags pathwatch.DiffFlag
			if fixStars {
				flags |= pathwatch.FixStars
			}
			if extend {
				flags |= pathwatch.Extend
			}
			if ignoreBalancers {
				flags |= pathwatch.IgnoreBalancers
			}

			changes := pathwatch.Diff(p1, p2, flags)
			if len(changes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no change detected")
				return nil
			}
			for _, lcz := range changes {
				printLCZDiff(cmd, p1, p2, lcz)
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.BoolVar(&fixStars, "fix-stars", true, "Attempt to resolve star hops before reporting a change")
	fs.BoolVar(&extend, "extend", true, "Extend the shorter path when only its tail differs")
	fs.BoolVar(&ignoreBalancers, "ignore-balancers", false, "Treat load-balanced hops as equal on any shared address")
	return cmd
}

func readSinglePath(file string) (*pathwatch.Path, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}
	return ptext.ParsePath(string(data))
}

// printLCZDiff renders the branch-to-join window of p1 and p2 as
// hop-per-line slices and feeds them through aryann/difflib's sequence
// diff so a reviewer sees the familiar "-"/"+" unified diff shape even
// though the underlying algorithm is pathwatch's own branch/join/star-fix
// logic, not a line-based LCS.
func printLCZDiff(cmd *cobra.Command, p1, p2 *pathwatch.Path, lcz *pathwatch.LCZ) {
	lhs := hopLines(p1, lcz.I1+1, lcz.J1)
	rhs := hopLines(p2, lcz.I2+1, lcz.J2)

	fmt.Fprintf(cmd.OutOrStdout(), "--- change at branch=%d join=(%d,%d) ---\n", lcz.I1, lcz.J1, lcz.J2)
	for _, rec := range difflib.Diff(lhs, rhs) {
		fmt.Fprintln(cmd.OutOrStdout(), rec.String())
	}
}

func newAliasCommand() *cobra.Command {
	var mondir string
	var timespan int64
	var capacity int

	cmd := &cobra.Command{
		Use:   "alias",
		Short: "Assign per-destination alias ids to a directory of path files",
		Long: `alias drains "paths.<dst>.gz" files under --mondir through the alias
database and prints "<tstamp> <dst> <alias>", one line per path snapshot:
first each destination's starting snapshot (its latest one at or before
the loader's start time), then every later snapshot in chronological
order. Snapshots older than a destination's starting snapshot are not
printed. Repeated snapshots of
the same distinct route (up to star-fixing) receive the same alias id;
--capacity bounds how many distinct routes per destination are
remembered before the least-recently-matched one is evicted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pathKeys, err := loader.DiscoverFiles(mondir, "paths")
			if err != nil {
				return &exitError{ExitCode: ExitCodeFailedStartup, Err: err}
			}
			if len(pathKeys) == 0 {
				return &exitError{ExitCode: ExitCodeFailedStartup, Err: fmt.Errorf("no paths.*.gz files found in %s", mondir)}
			}

			pathLoader, err := loader.New(timespan, pathKeys, ptext.ParsePath)
			if err != nil {
				return &exitError{ExitCode: ExitCodeFailedStartup, Err: err}
			}
			defer pathLoader.Close()

			db := pathwatch.NewPathDB(capacity)
			out := cmd.OutOrStdout()
			for _, dst := range pathLoader.Keys() {
				cur, ok := pathLoader.Current(dst)
				if !ok {
					continue
				}
				db.Alias(cur)
				if _, err := fmt.Fprintf(out, "%d %s %d\n", cur.Tstamp, dst, cur.Alias); err != nil {
					return &exitError{ExitCode: ExitCodeFailedStartup, Err: err}
				}
			}
			err = pathLoader.Iterate(func(tstamp int64, dst pathwatch.Address, _, npath *pathwatch.Path) error {
				db.Alias(npath)
				_, werr := fmt.Fprintf(out, "%d %s %d\n", tstamp, dst, npath.Alias)
				return werr
			})
			if err != nil {
				return &exitError{ExitCode: ExitCodeFailedStartup, Err: err}
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&mondir, "mondir", "", "Directory of paths.<dst>.gz monitor files")
	fs.Int64Var(&timespan, "timespan", 1800, "Sliding window width in seconds")
	fs.IntVar(&capacity, "capacity", 0, "Distinct-route capacity per destination (0 = unbounded)")
	return cmd
}

func hopLines(p *pathwatch.Path, from, to int) []string {
	lines := make([]string, 0, to-from)
	for ttl := from; ttl < to && ttl < p.Len(); ttl++ {
		h := p.HopAt(ttl)
		if h == nil {
			continue
		}
		addrs := make([]string, len(h.Interfaces))
		for i, iface := range h.Interfaces {
			addrs[i] = iface.Addr.String()
		}
		lines = append(lines, fmt.Sprintf("ttl=%d %s", ttl, strings.Join(addrs, ";")))
	}
	return lines
}
