// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/icmptrace/internal/traceroute"
	"github.com/telekom/icmptrace/pkg/checks"
)

// metrics defines the metric collectors of the traceroute check
type metrics struct {
	hops         *prometheus.GaugeVec
	unresponsive *prometheus.GaugeVec
	reached      *prometheus.GaugeVec
	duration     prometheus.Histogram
}

// newMetrics initializes metric collectors of the traceroute check
func newMetrics() metrics {
	return metrics{
		hops: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "icmptrace_traceroute_hops",
				Help: "Number of hops to the target, or the number of probed hops if it was not reached.",
			},
			[]string{"target"},
		),
		unresponsive: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "icmptrace_traceroute_unresponsive_hops",
				Help: "Number of hops that did not answer within the timeout.",
			},
			[]string{"target"},
		),
		reached: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "icmptrace_traceroute_reached",
				Help: "Specifies if the target answered the last traceroute (1) or not (0).",
			},
			[]string{"target"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "icmptrace_traceroute_check_duration_seconds",
				Help:    "Duration of a complete traceroute check run over all targets in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), //nolint:mnd // 100ms to ~51s
			},
		),
	}
}

// List returns all metric collectors
func (m *metrics) List() []prometheus.Collector {
	return []prometheus.Collector{
		m.hops,
		m.unresponsive,
		m.reached,
		m.duration,
	}
}

// Set sets the metrics of one traceroute target
func (m *metrics) Set(target string, hops []traceroute.Hop) {
	var unresponsive, reached float64
	for _, hop := range hops {
		if hop.Absent() {
			unresponsive++
		}
		if hop.Reached {
			reached = 1
		}
	}

	m.hops.WithLabelValues(target).Set(float64(len(hops)))
	m.unresponsive.WithLabelValues(target).Set(unresponsive)
	m.reached.WithLabelValues(target).Set(reached)
}

// Observe records the duration of a check run
func (m *metrics) Observe(d time.Duration) {
	m.duration.Observe(d.Seconds())
}

// Remove removes the metrics of one traceroute target
func (m *metrics) Remove(target string) error {
	if !m.hops.DeleteLabelValues(target) {
		return checks.ErrMetricNotFound{Label: target}
	}

	if !m.unresponsive.DeleteLabelValues(target) {
		return checks.ErrMetricNotFound{Label: target}
	}

	if !m.reached.DeleteLabelValues(target) {
		return checks.ErrMetricNotFound{Label: target}
	}

	return nil
}
