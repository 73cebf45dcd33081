package stores

import (
	"context"
	"time"

	"widget-canvas/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Operations *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
}

// NewMetrics registers the store metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "canvas_store_operations_total",
			Help: "Total number of store operations by result",
		}, []string{"op", "result"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "canvas_store_operation_duration_seconds",
			Help:    "Duration of store operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
	}
}

func (m *Metrics) observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Operations.WithLabelValues(op, result).Inc()
	m.Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

type instrumentedStore struct {
	next    Store
	metrics *Metrics
}

// Instrument wraps store so that every operation is counted and timed.
func Instrument(store Store, metrics *Metrics) Store {
	return &instrumentedStore{next: store, metrics: metrics}
}

func (s *instrumentedStore) SaveCanvas(ctx context.Context, doc *core.CanvasDocument) error {
	start := time.Now()
	err := s.next.SaveCanvas(ctx, doc)
	s.metrics.observe("save_canvas", start, err)
	return err
}

func (s *instrumentedStore) LoadCanvas(ctx context.Context) (*core.CanvasDocument, error) {
	start := time.Now()
	doc, err := s.next.LoadCanvas(ctx)
	s.metrics.observe("load_canvas", start, err)
	return doc, err
}

func (s *instrumentedStore) SaveHeaderImage(ctx context.Context, dataURL string) error {
	start := time.Now()
	err := s.next.SaveHeaderImage(ctx, dataURL)
	s.metrics.observe("save_header_image", start, err)
	return err
}

func (s *instrumentedStore) LoadHeaderImage(ctx context.Context) (string, bool, error) {
	start := time.Now()
	dataURL, ok, err := s.next.LoadHeaderImage(ctx)
	s.metrics.observe("load_header_image", start, err)
	return dataURL, ok, err
}

func (s *instrumentedStore) DeleteHeaderImage(ctx context.Context) error {
	start := time.Now()
	err := s.next.DeleteHeaderImage(ctx)
	s.metrics.observe("delete_header_image", start, err)
	return err
}

func (s *instrumentedStore) Close() error {
	return Close(s.next)
}
