package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("operation", "generate"),
		attribute.String("order_id", "456"),
		attribute.String("code", "not_found"),
	)
	require.Len(t, attrs, 2)
	keys := []attribute.Key{attrs[0].Key, attrs[1].Key}
	assert.Contains(t, keys, attribute.Key("operation"))
	assert.Contains(t, keys, attribute.Key("code"))
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{}, noop.NewMeterProvider())
	require.NoError(t, err)

	m.RecordOperation(context.Background(), "generate", "")
	m.RecordBulkItems(context.Background(), "bulk_raise", 2, 1)
	m.RecordSettingsRead(context.Background(), "cache")

	var nilMetrics *Metrics
	nilMetrics.RecordOperation(context.Background(), "generate", "")
}
