package utils

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts what a pipeline run did
type Metrics struct {
	registry *prometheus.Registry

	SuppliersDiscovered prometheus.Counter
	Downloads           *prometheus.CounterVec
	RowsWritten         *prometheus.CounterVec
	RowsDropped         *prometheus.CounterVec
}

// NewMetrics registers the run counters on a private registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SuppliersDiscovered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pricelist_suppliers_discovered_total",
			Help: "Supplier download actions found on the landing page",
		}),
		Downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricelist_downloads_total",
			Help: "Download attempts by outcome and resolving strategy",
		}, []string{"outcome", "strategy"}),
		RowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricelist_rows_written_total",
			Help: "Canonical rows written per supplier",
		}, []string{"supplier"}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricelist_rows_dropped_total",
			Help: "Data rows discarded by normalization per supplier",
		}, []string{"supplier"}),
	}
	m.registry.MustRegister(m.SuppliersDiscovered, m.Downloads, m.RowsWritten, m.RowsDropped)
	return m
}

// Gatherer exposes the registry for inspection
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile dumps the counters in the node-exporter textfile format
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
