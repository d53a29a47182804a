package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	InvoiceStatusNone       = "none"
	InvoiceStatusGenerated  = "generated"
	InvoiceStatusRaised     = "raised"
	InvoiceStatusDownloaded = "downloaded"
	InvoiceStatusDeleted    = "deleted"
)

const (
	GenerateOutcomeCreated  = "created"
	GenerateOutcomeExisting = "existing"
	GenerateOutcomeFailed   = "failed"
)

// InvoiceMetrics is the Prometheus view of the invoice lifecycle.
type InvoiceMetrics struct {
	transitions       *prometheus.CounterVec
	generate          *prometheus.CounterVec
	renderDuration    prometheus.Histogram
	integrityMismatch prometheus.Counter
	settingsDegraded  prometheus.Counter
	lockContended     prometheus.Counter
}

var (
	invoiceMetricsOnce sync.Once
	invoiceMetrics     *InvoiceMetrics
)

// Invoice returns the process-wide invoice metrics registered on the default registry.
func Invoice() *InvoiceMetrics {
	return InvoiceWithConfig(Config{})
}

func InvoiceWithConfig(cfg Config) *InvoiceMetrics {
	invoiceMetricsOnce.Do(func() {
		invoiceMetrics = NewInvoiceMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return invoiceMetrics
}

// NewInvoiceMetrics registers a fresh set of collectors on registerer.
func NewInvoiceMetrics(registerer prometheus.Registerer, cfg Config) *InvoiceMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "storefront"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	m := &InvoiceMetrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "storefront_invoice_transitions_total",
			Help:        "Invoice lifecycle transitions.",
			ConstLabels: constLabels,
		}, []string{"from", "to"}),
		generate: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "storefront_invoice_generate_total",
			Help:        "Invoice generation attempts by outcome.",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
		renderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "storefront_invoice_render_duration_seconds",
			Help:        "Time spent rendering one invoice PDF.",
			Buckets:     []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			ConstLabels: constLabels,
		}),
		integrityMismatch: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "storefront_invoice_integrity_mismatch_total",
			Help:        "Generated invoices whose recomputed total differs from the order total.",
			ConstLabels: constLabels,
		}),
		settingsDegraded: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "storefront_settings_degraded_total",
			Help:        "Settings reads that fell back to defaults.",
			ConstLabels: constLabels,
		}),
		lockContended: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "storefront_invoice_lock_contended_total",
			Help:        "Generation requests that found another node holding the order lock.",
			ConstLabels: constLabels,
		}),
	}

	registerer.MustRegister(
		m.transitions,
		m.generate,
		m.renderDuration,
		m.integrityMismatch,
		m.settingsDegraded,
		m.lockContended,
	)
	return m
}

func (m *InvoiceMetrics) RecordTransition(from, to string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.transitions.WithLabelValues(from, to).Add(float64(count))
}

func (m *InvoiceMetrics) RecordGenerate(outcome string) {
	if m == nil {
		return
	}
	m.generate.WithLabelValues(outcome).Inc()
}

func (m *InvoiceMetrics) ObserveRender(d time.Duration) {
	if m == nil {
		return
	}
	m.renderDuration.Observe(d.Seconds())
}

func (m *InvoiceMetrics) RecordIntegrityMismatch() {
	if m == nil {
		return
	}
	m.integrityMismatch.Inc()
}

func (m *InvoiceMetrics) RecordSettingsDegraded() {
	if m == nil {
		return
	}
	m.settingsDegraded.Inc()
}

func (m *InvoiceMetrics) RecordLockContended() {
	if m == nil {
		return
	}
	m.lockContended.Inc()
}
