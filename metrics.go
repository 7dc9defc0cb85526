package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tslgw_reader_connected",
		Help: "Whether the RFID reader connection is currently up.",
	})

	metricReconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tslgw_reader_reconnects_total",
		Help: "Number of times the reader connection was re-established.",
	})

	metricTransactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tslgw_transactions_total",
		Help: "Completed command transactions by outcome.",
	}, []string{"command", "outcome"})

	metricLines = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tslgw_unsolicited_lines_total",
		Help: "Unsolicited reader lines surfaced outside any transaction.",
	})

	metricTagReads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tslgw_tag_reads_total",
		Help: "Individual tag sightings reported by the reader.",
	})

	metricUniqueTags = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tslgw_unique_tags",
		Help: "Distinct tags currently held in the aggregate store.",
	})

	metricWSClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tslgw_websocket_clients",
		Help: "Currently connected websocket clients.",
	})
)
