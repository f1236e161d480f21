package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recipe outcome label values.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Manager owns the pipeline metrics on a single registry.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         *prometheus.Registry

	recipes             *prometheus.CounterVec
	rows                *prometheus.GaugeVec
	preparationDuration *prometheus.HistogramVec
	publishedFiles      *prometheus.CounterVec
}

// Default duration buckets in milliseconds.
var defaultBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 10000}

// Custom registry so the textfile holds pipeline metrics only.
var (
	customRegistry = prometheus.NewRegistry()                          //nolint:gochecknoglobals // process-wide registry
	globalManager  = NewManager(WithPrometheusRegistry(customRegistry)) //nolint:gochecknoglobals // process-wide manager
)

// NewManager creates a Manager and registers its metrics. Without
// WithPrometheusRegistry a fresh registry is used.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "growtho",
		subsystem:        "pipeline",
		histogramBuckets: defaultBuckets,
		constLabels:      map[string]string{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.recipes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "recipes_total",
		Help:        "Recipes run, by recipe and outcome",
		ConstLabels: m.constLabels,
	}, []string{"recipe", "status"})

	m.rows = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rows",
		Help:        "Rows in the last prepared table, by recipe and table",
		ConstLabels: m.constLabels,
	}, []string{"recipe", "table"})

	m.preparationDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "preparation_duration_milliseconds",
		Help:        "Time to prepare, store and publish one recipe",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"recipe"})

	m.publishedFiles = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "published_files_total",
		Help:        "Files uploaded to the blob store, by recipe and driver",
		ConstLabels: m.constLabels,
	}, []string{"recipe", "driver"})
}

// RecordRecipe counts one recipe run with status success or failure.
func (m *Manager) RecordRecipe(recipe, status string) {
	m.recipes.WithLabelValues(recipe, status).Inc()
}

// SetRows records the row count of a prepared table.
func (m *Manager) SetRows(recipe, table string, n int) {
	m.rows.WithLabelValues(recipe, table).Set(float64(n))
}

// ObservePreparationDuration records a recipe duration in milliseconds.
func (m *Manager) ObservePreparationDuration(recipe string, ms float64) {
	m.preparationDuration.WithLabelValues(recipe).Observe(ms)
}

// RecordPublishedFiles adds n uploaded files.
func (m *Manager) RecordPublishedFiles(recipe, driver string, n int) {
	m.publishedFiles.WithLabelValues(recipe, driver).Add(float64(n))
}

// Registry returns the registry the manager's metrics live on.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// WriteTextfile writes the registry in the text exposition format, for the
// node_exporter textfile collector. The write is atomic.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %w", ErrTextfile, err)
	}
	return nil
}

// Default returns the process-wide manager.
func Default() *Manager { return globalManager }

// GetRegistry returns the process-wide custom registry.
func GetRegistry() *prometheus.Registry { return customRegistry }
