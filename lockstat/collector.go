//go:build !solution

package lockstat

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports Stats as Prometheus counters labelled by primitive.
type Collector struct {
	stats *Stats

	contended *prometheus.Desc
	sleeps    *prometheus.Desc
	wakes     *prometheus.Desc
	waited    *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a Collector for s. A nil s means Default.
func NewCollector(s *Stats) *Collector {
	if s == nil {
		s = Default
	}
	labels := []string{"primitive"}
	return &Collector{
		stats: s,
		contended: prometheus.NewDesc(
			"atomsync_contended_total",
			"Number of acquisitions that found the lock taken.",
			labels, nil,
		),
		sleeps: prometheus.NewDesc(
			"atomsync_sleeps_total",
			"Number of times a goroutine blocked on a futex word.",
			labels, nil,
		),
		wakes: prometheus.NewDesc(
			"atomsync_wakes_total",
			"Number of wakeups issued on futex words.",
			labels, nil,
		),
		waited: prometheus.NewDesc(
			"atomsync_wait_seconds_total",
			"Total time spent blocked on futex words.",
			labels, nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.contended
	ch <- c.sleeps
	ch <- c.wakes
	ch <- c.waited
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, k := range Kinds() {
		snap := c.stats.Snapshot(k)
		label := k.String()
		ch <- prometheus.MustNewConstMetric(c.contended, prometheus.CounterValue, float64(snap.Contended), label)
		ch <- prometheus.MustNewConstMetric(c.sleeps, prometheus.CounterValue, float64(snap.Sleeps), label)
		ch <- prometheus.MustNewConstMetric(c.wakes, prometheus.CounterValue, float64(snap.Wakes), label)
		ch <- prometheus.MustNewConstMetric(c.waited, prometheus.CounterValue, snap.Waited.Seconds(), label)
	}
}
