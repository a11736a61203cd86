package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	framesReceived *prometheus.CounterVec
	parseErrors    prometheus.Counter
	dataBytes      *prometheus.CounterVec
	ioSamples      *prometheus.CounterVec
	rssi           *prometheus.GaugeVec
	requestSeconds prometheus.Histogram
	nodeInfo       *prometheus.GaugeVec

	remoteFrames   *persistentGaugeVec
	remoteLastSeen *persistentGaugeVec
}

func newMetrics(reg prometheus.Registerer, pm *persistentMetrics) *metrics {
	f := promauto.With(reg)
	return &metrics{
		framesReceived: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xbee",
			Name:      "frames_received_total",
		}, []string{"type"}),
		parseErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: "xbee",
			Name:      "parse_errors_total",
		}),
		dataBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xbee",
			Name:      "data_received_bytes_total",
		}, []string{"remote"}),
		ioSamples: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xbee",
			Name:      "io_samples_received_total",
		}, []string{"remote"}),
		rssi: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "xbee",
			Name:      "remote_rssi_dbm",
		}, []string{"remote"}),
		requestSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "xbee",
			Name:      "at_command_duration_seconds",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
		nodeInfo: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "xbee",
			Name:      "node_info",
		}, []string{"addr", "ni"}),
		remoteFrames: pm.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "xbee",
			Name:      "remote_frames_received",
		}, []string{"remote"}),
		remoteLastSeen: pm.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "xbee",
			Name:      "remote_last_seen_seconds",
		}, []string{"remote"}),
	}
}
