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

// Package metrics defines the Prometheus collectors exported by a running
// pathwatch correlator: a struct of collectors, built by promauto
// constructors and registered once at init time.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors is the set of metrics a correlate.Run driver updates as it
// consumes loader events. This package's init function creates and
// registers them.
var Collectors = struct {
	EventsConsumed   prometheus.Counter
	LCZsDetected     prometheus.Counter
	LCZsBroken       prometheus.Counter
	RecordsEmitted   prometheus.Counter
	LoaderLagSeconds prometheus.Gauge
}{}

func init() {
	const ns = "pathwatch"

	Collectors.EventsConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: ns,
		Subsystem: "loader",
		Name:      "events_consumed_total",
		Help:      "Number of path events popped off the loader's event heap.",
	})
	Collectors.LoaderLagSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: ns,
		Subsystem: "loader",
		Name:      "ctime_lag_seconds",
		Help:      "Difference between wall-clock time and the loader's logical ctime.",
	})
	Collectors.LCZsDetected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: ns,
		Subsystem: "correlate",
		Name:      "lczs_detected_total",
		Help:      "Number of LCZs produced by diffing consecutive path snapshots.",
	})
	Collectors.LCZsBroken = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: ns,
		Subsystem: "correlate",
		Name:      "lczs_broken_total",
		Help:      "Number of LCZs excluded from correlation because their branch or join hop is missing or a star.",
	})
	Collectors.RecordsEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: ns,
		Subsystem: "correlate",
		Name:      "records_emitted_total",
		Help:      "Number of LCZ x overlap-destination comparison records emitted.",
	})
}
