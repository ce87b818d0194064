package database

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// PoolStats is the part of *pgxpool.Pool the collector reads.
type PoolStats interface {
	Stat() *pgxpool.Stat
}

// PoolStatsCollector exports pgxpool connection statistics.
type PoolStatsCollector struct {
	pool    PoolStats
	service string

	acquired *prometheus.Desc
	idle     *prometheus.Desc
	total    *prometheus.Desc
	max      *prometheus.Desc
	acquires *prometheus.Desc
	waitSecs *prometheus.Desc
}

// NewPoolStatsCollector creates a collector labelled with service.
func NewPoolStatsCollector(pool PoolStats, service string) *PoolStatsCollector {
	labels := []string{"service"}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc("db_pool_"+name, help, labels, nil)
	}
	return &PoolStatsCollector{
		pool:     pool,
		service:  service,
		acquired: desc("acquired_connections", "Number of currently acquired connections"),
		idle:     desc("idle_connections", "Number of currently idle connections"),
		total:    desc("total_connections", "Total number of connections in the pool"),
		max:      desc("max_connections", "Maximum size of the pool"),
		acquires: desc("acquire_total", "Cumulative count of successful acquires"),
		waitSecs: desc("acquire_duration_seconds_total", "Total time spent waiting for a connection"),
	}
}

// Describe implements prometheus.Collector.
func (c *PoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{c.acquired, c.idle, c.total, c.max, c.acquires, c.waitSecs} {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *PoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.pool.Stat()
	ch <- prometheus.MustNewConstMetric(c.acquired, prometheus.GaugeValue, float64(s.AcquiredConns()), c.service)
	ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(s.IdleConns()), c.service)
	ch <- prometheus.MustNewConstMetric(c.total, prometheus.GaugeValue, float64(s.TotalConns()), c.service)
	ch <- prometheus.MustNewConstMetric(c.max, prometheus.GaugeValue, float64(s.MaxConns()), c.service)
	ch <- prometheus.MustNewConstMetric(c.acquires, prometheus.CounterValue, float64(s.AcquireCount()), c.service)
	ch <- prometheus.MustNewConstMetric(c.waitSecs, prometheus.CounterValue, s.AcquireDuration().Seconds(), c.service)
}
