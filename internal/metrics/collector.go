package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// GraphStats gives the collector read access to the session's graph size
// at scrape time, without metrics importing the session package — *
// session.Session satisfies this structurally.
type GraphStats interface {
	SinkCount() int
	SourceCount() int
	PlaybackStreamCount() int
	CaptureStreamCount() int
	ActiveCaptureCount() int
}

// Collector implements prometheus.Collector to read live gauges at scrape
// time: graph size from the session, connection pool saturation from the
// audit log's pgx pool.
type Collector struct {
	pool  *pgxpool.Pool
	stats GraphStats

	sinks           *prometheus.Desc
	sources         *prometheus.Desc
	playbackStreams *prometheus.Desc
	captureStreams  *prometheus.Desc
	activeCaptures  *prometheus.Desc
	dbTotalConns    *prometheus.Desc
	dbAcquiredConns *prometheus.Desc
	dbIdleConns     *prometheus.Desc
}

// NewCollector creates a collector that reads live state at scrape time.
// pool may be nil if the audit log is disabled; stats may be nil before the
// session has published its first View.
func NewCollector(pool *pgxpool.Pool, stats GraphStats) *Collector {
	return &Collector{
		pool:  pool,
		stats: stats,
		sinks: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "graph", "sinks"),
			"Current number of sinks in the graph.",
			nil, nil,
		),
		sources: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "graph", "sources"),
			"Current number of sources in the graph.",
			nil, nil,
		),
		playbackStreams: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "graph", "playback_streams"),
			"Current number of playback streams in the graph.",
			nil, nil,
		),
		captureStreams: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "graph", "capture_streams"),
			"Current number of capture streams in the graph.",
			nil, nil,
		),
		activeCaptures: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "active_peak_captures"),
			"Nodes currently instrumented with a live peak-capture stream.",
			nil, nil,
		),
		dbTotalConns: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "db_pool", "total_conns"),
			"Total audit database pool connections.",
			nil, nil,
		),
		dbAcquiredConns: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "db_pool", "acquired_conns"),
			"Audit database pool connections currently in use.",
			nil, nil,
		),
		dbIdleConns: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "db_pool", "idle_conns"),
			"Audit database pool idle connections.",
			nil, nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.sinks
	ch <- c.sources
	ch <- c.playbackStreams
	ch <- c.captureStreams
	ch <- c.activeCaptures
	ch <- c.dbTotalConns
	ch <- c.dbAcquiredConns
	ch <- c.dbIdleConns
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c.stats != nil {
		ch <- prometheus.MustNewConstMetric(c.sinks, prometheus.GaugeValue, float64(c.stats.SinkCount()))
		ch <- prometheus.MustNewConstMetric(c.sources, prometheus.GaugeValue, float64(c.stats.SourceCount()))
		ch <- prometheus.MustNewConstMetric(c.playbackStreams, prometheus.GaugeValue, float64(c.stats.PlaybackStreamCount()))
		ch <- prometheus.MustNewConstMetric(c.captureStreams, prometheus.GaugeValue, float64(c.stats.CaptureStreamCount()))
		ch <- prometheus.MustNewConstMetric(c.activeCaptures, prometheus.GaugeValue, float64(c.stats.ActiveCaptureCount()))
	} else {
		ch <- prometheus.MustNewConstMetric(c.sinks, prometheus.GaugeValue, 0)
		ch <- prometheus.MustNewConstMetric(c.sources, prometheus.GaugeValue, 0)
		ch <- prometheus.MustNewConstMetric(c.playbackStreams, prometheus.GaugeValue, 0)
		ch <- prometheus.MustNewConstMetric(c.captureStreams, prometheus.GaugeValue, 0)
		ch <- prometheus.MustNewConstMetric(c.activeCaptures, prometheus.GaugeValue, 0)
	}

	if c.pool != nil {
		stat := c.pool.Stat()
		ch <- prometheus.MustNewConstMetric(c.dbTotalConns, prometheus.GaugeValue, float64(stat.TotalConns()))
		ch <- prometheus.MustNewConstMetric(c.dbAcquiredConns, prometheus.GaugeValue, float64(stat.AcquiredConns()))
		ch <- prometheus.MustNewConstMetric(c.dbIdleConns, prometheus.GaugeValue, float64(stat.IdleConns()))
	} else {
		ch <- prometheus.MustNewConstMetric(c.dbTotalConns, prometheus.GaugeValue, 0)
		ch <- prometheus.MustNewConstMetric(c.dbAcquiredConns, prometheus.GaugeValue, 0)
		ch <- prometheus.MustNewConstMetric(c.dbIdleConns, prometheus.GaugeValue, 0)
	}
}
