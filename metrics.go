package altupdater

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks a single run. Each Updater owns its registry, so runs do not
// share process-wide collectors.
type Metrics struct {
	registry *prometheus.Registry

	FilesScanned    prometheus.Counter
	FilesChanged    prometheus.Counter
	FilesSkipped    *prometheus.CounterVec
	ImageUpdates    *prometheus.CounterVec
	MappingRows     prometheus.Gauge
	RunDuration     prometheus.Histogram
	DocumentsPruned prometheus.Counter
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		FilesScanned: factory.NewCounter(prometheus.CounterOpts{
			Name: "altupdater_files_scanned_total",
			Help: "Total number of JSON files scanned.",
		}),
		FilesChanged: factory.NewCounter(prometheus.CounterOpts{
			Name: "altupdater_files_changed_total",
			Help: "Total number of JSON files with at least one change.",
		}),
		FilesSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "altupdater_files_skipped_total",
			Help: "Total number of JSON files skipped.",
		}, []string{"reason"}), // read, decode, write
		ImageUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "altupdater_image_updates_total",
			Help: "Total number of image nodes updated.",
		}, []string{"rewritten"}),
		MappingRows: factory.NewGauge(prometheus.GaugeOpts{
			Name: "altupdater_mapping_rows",
			Help: "Number of mapping rows that contributed at least one key.",
		}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "altupdater_run_duration_seconds",
			Help:    "Duration of update runs.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		}),
		DocumentsPruned: factory.NewCounter(prometheus.CounterOpts{
			Name: "altupdater_documents_pruned_total",
			Help: "Total number of documents with duplicate image shapes removed.",
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current values in the node exporter textfile
// format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) observeUpdates(updates []Update) {
	for _, u := range updates {
		label := "no"
		if u.Rewritten() {
			label = "yes"
		}
		m.ImageUpdates.WithLabelValues(label).Inc()
	}
}
