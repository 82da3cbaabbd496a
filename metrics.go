// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

package rocecc

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var flowLabels = []string{"sip", "dip", "sport", "dport", "pg"}

type flowMetrics struct {
	rate           Bitrate
	win            Bytes
	cnp, ecn, nack uint64
}

// MetricsCollector is a prometheus.Collector exposing per-QP rate and
// window gauges, CNP/ECN/NACK counters, and process-wide completion
// counts and a flow-completion-time histogram.
type MetricsCollector struct {
	mu    sync.Mutex
	flows map[FlowKey]*flowMetrics

	rateDesc *prometheus.Desc
	winDesc  *prometheus.Desc
	cnpDesc  *prometheus.Desc
	ecnDesc  *prometheus.Desc
	nackDesc *prometheus.Desc

	completions prometheus.Counter
	fct         prometheus.Histogram
}

// NewMetricsCollector returns an unregistered MetricsCollector; the
// caller registers it with a prometheus.Registry.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		flows: make(map[FlowKey]*flowMetrics),
		rateDesc: prometheus.NewDesc("rocecc_qp_rate_bps",
			"Current QP send rate in bits per second.", flowLabels, nil),
		winDesc: prometheus.NewDesc("rocecc_qp_window_bytes",
			"Current QP window in bytes.", flowLabels, nil),
		cnpDesc: prometheus.NewDesc("rocecc_qp_cnp_total",
			"CNPs received on this QP.", flowLabels, nil),
		ecnDesc: prometheus.NewDesc("rocecc_qp_ecn_marked_total",
			"ECN-marked ACKs received on this QP.", flowLabels, nil),
		nackDesc: prometheus.NewDesc("rocecc_qp_nack_total",
			"NACKs received on this QP.", flowLabels, nil),
		completions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rocecc_flow_completions_total",
			Help: "Flows that reached snd_una == size.",
		}),
		fct: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rocecc_flow_completion_seconds",
			Help:    "Flow completion time in seconds.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12),
		}),
	}
}

// Describe implements prometheus.Collector.
func (c *MetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.rateDesc
	ch <- c.winDesc
	ch <- c.cnpDesc
	ch <- c.ecnDesc
	ch <- c.nackDesc
	c.completions.Describe(ch)
	c.fct.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *MetricsCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, m := range c.flows {
		labels := flowLabelValues(key)
		ch <- prometheus.MustNewConstMetric(c.rateDesc, prometheus.GaugeValue, float64(m.rate), labels...)
		ch <- prometheus.MustNewConstMetric(c.winDesc, prometheus.GaugeValue, float64(m.win), labels...)
		ch <- prometheus.MustNewConstMetric(c.cnpDesc, prometheus.CounterValue, float64(m.cnp), labels...)
		ch <- prometheus.MustNewConstMetric(c.ecnDesc, prometheus.CounterValue, float64(m.ecn), labels...)
		ch <- prometheus.MustNewConstMetric(c.nackDesc, prometheus.CounterValue, float64(m.nack), labels...)
	}
	c.completions.Collect(ch)
	c.fct.Collect(ch)
}

func flowLabelValues(key FlowKey) []string {
	return []string{
		strconv.FormatUint(uint64(key.Sip), 10),
		strconv.FormatUint(uint64(key.Dip), 10),
		strconv.FormatUint(uint64(key.Sport), 10),
		strconv.FormatUint(uint64(key.Dport), 10),
		strconv.FormatUint(uint64(key.Pg), 10),
	}
}

func (c *MetricsCollector) entry(key FlowKey) *flowMetrics {
	m, ok := c.flows[key]
	if !ok {
		m = &flowMetrics{}
		c.flows[key] = m
	}
	return m
}

// Observe records qp's current rate and window.
func (c *MetricsCollector) Observe(qp *QP) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := c.entry(qp.Key)
	m.rate = qp.Rate
	m.win = qp.Win
}

// RecordCNP increments the CNP counter for qp's flow.
func (c *MetricsCollector) RecordCNP(qp *QP) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry(qp.Key).cnp++
}

// RecordEcn increments the ECN-marked-ACK counter for qp's flow.
func (c *MetricsCollector) RecordEcn(qp *QP) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry(qp.Key).ecn++
}

// RecordNack increments the NACK counter for qp's flow.
func (c *MetricsCollector) RecordNack(qp *QP) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry(qp.Key).nack++
}

// RecordCompletion retires qp's flow entry, increments the process-wide
// completion counter, and observes fct in the FCT histogram.
func (c *MetricsCollector) RecordCompletion(qp *QP, fct Clock) {
	c.mu.Lock()
	delete(c.flows, qp.Key)
	c.mu.Unlock()
	c.completions.Inc()
	c.fct.Observe(fct.Seconds())
}
