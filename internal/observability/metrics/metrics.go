package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes OTLP instruments for invoice operations.
type Metrics struct {
	operations   metric.Int64Counter
	bulkItems    metric.Int64Counter
	settingsRead metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "storefront"
	}
	meter := provider.Meter(name)

	operations, err := meter.Int64Counter("storefront_invoice_operations_total")
	if err != nil {
		return nil, err
	}
	bulkItems, err := meter.Int64Counter("storefront_invoice_bulk_items_total")
	if err != nil {
		return nil, err
	}
	settingsRead, err := meter.Int64Counter("storefront_settings_reads_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		operations:   operations,
		bulkItems:    bulkItems,
		settingsRead: settingsRead,
	}, nil
}

// RecordOperation counts one invoice operation by outcome code.
func (m *Metrics) RecordOperation(ctx context.Context, operation, code string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("operation", strings.TrimSpace(operation)),
		attribute.String("code", outcomeCode(code)),
	)
	m.operations.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordBulkItems counts items processed by a bulk operation.
func (m *Metrics) RecordBulkItems(ctx context.Context, operation string, succeeded, failed int) {
	if m == nil {
		return
	}
	if succeeded > 0 {
		m.bulkItems.Add(ctx, int64(succeeded), metric.WithAttributes(FilterAttributes(
			attribute.String("operation", operation),
			attribute.String("outcome", "success"),
		)...))
	}
	if failed > 0 {
		m.bulkItems.Add(ctx, int64(failed), metric.WithAttributes(FilterAttributes(
			attribute.String("operation", operation),
			attribute.String("outcome", "failure"),
		)...))
	}
}

// RecordSettingsRead counts settings resolutions by source.
func (m *Metrics) RecordSettingsRead(ctx context.Context, source string) {
	if m == nil {
		return
	}
	m.settingsRead.Add(ctx, 1, metric.WithAttributes(FilterAttributes(
		attribute.String("source", strings.TrimSpace(source)),
	)...))
}

func outcomeCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "ok"
	}
	return code
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"operation": {},
	"code":      {},
	"outcome":   {},
	"source":    {},
	"status":    {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
