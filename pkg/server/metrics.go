package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ressample/pkg/models"
)

const metricsNamespace = "ressample"

// registerMetrics exposes the latest snapshot and sampler counters. Values are
// read at scrape time, so nothing has to be pushed from the sampling loop.
func (s *StatusServer) registerMetrics() {
	gauge := func(name, help string, value func(models.Snapshot) float64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      name,
			Help:      help,
		}, func() float64 {
			if s.latest == nil {
				return 0
			}
			snap, _ := s.latest.Get()
			return value(snap)
		})
	}

	counter := func(name, help string, value func() uint64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      name,
			Help:      help,
		}, func() float64 {
			if s.stats == nil {
				return 0
			}
			return float64(value())
		})
	}

	s.registry.MustRegister(
		gauge("cpu_used_percent", "Mean utilization across logical CPUs.",
			func(snap models.Snapshot) float64 { return snap.CPUUsed }),
		gauge("memory_used_bytes", "Memory in use.",
			func(snap models.Snapshot) float64 { return float64(snap.MemUsed) }),
		gauge("memory_total_bytes", "Total memory.",
			func(snap models.Snapshot) float64 { return float64(snap.MemTotal) }),
		gauge("disk_used_bytes", "Bytes used on tracked volumes.",
			func(snap models.Snapshot) float64 { return float64(snap.DiskUsed) }),
		gauge("disk_total_bytes", "Capacity of tracked volumes.",
			func(snap models.Snapshot) float64 { return float64(snap.DiskTotal) }),
		gauge("last_sample_timestamp_seconds", "Unix time of the latest snapshot.",
			func(snap models.Snapshot) float64 { return snap.Timestamp }),
		counter("ticks_total", "Sampling iterations completed.",
			func() uint64 { return s.stats.Stats().Ticks }),
		counter("sink_failures_total", "Snapshots that could not be recorded.",
			func() uint64 { return s.stats.Stats().SinkFailures }),
		counter("refresh_failures_total", "Ticks whose host counters were partially stale.",
			func() uint64 { return s.stats.Stats().RefreshFailures }),
	)
}

func (s *StatusServer) metricsHandler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
