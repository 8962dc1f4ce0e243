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

// Metrics exposes application-level instruments.
type Metrics struct {
	factsIngested metric.Int64Counter
	factFlushes   metric.Int64Counter
	flushFailures metric.Int64Counter
	scopeDenied   metric.Int64Counter
	dimensionMiss metric.Int64Counter
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
		name = "costlens"
	}
	meter := provider.Meter(name)

	factsIngested, err := meter.Int64Counter("costlens_facts_ingested_total")
	if err != nil {
		return nil, err
	}
	factFlushes, err := meter.Int64Counter("costlens_fact_flushes_total")
	if err != nil {
		return nil, err
	}
	flushFailures, err := meter.Int64Counter("costlens_fact_flush_failures_total")
	if err != nil {
		return nil, err
	}
	scopeDenied, err := meter.Int64Counter("costlens_upload_scope_denied_total")
	if err != nil {
		return nil, err
	}
	dimensionMiss, err := meter.Int64Counter("costlens_dimension_misses_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		factsIngested: factsIngested,
		factFlushes:   factFlushes,
		flushFailures: flushFailures,
		scopeDenied:   scopeDenied,
		dimensionMiss: dimensionMiss,
	}, nil
}

// RecordFlush increments flush counts and the flushed fact total.
func (m *Metrics) RecordFlush(ctx context.Context, batchSize int) {
	if m == nil {
		return
	}
	m.factFlushes.Add(ctx, 1)
	if batchSize > 0 {
		m.factsIngested.Add(ctx, int64(batchSize))
	}
}

// RecordFlushFailure increments flush failure counts.
func (m *Metrics) RecordFlushFailure(ctx context.Context) {
	if m == nil {
		return
	}
	m.flushFailures.Add(ctx, 1)
}

// RecordScopeDenied increments upload scope denial counts.
func (m *Metrics) RecordScopeDenied(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("reason", strings.TrimSpace(reason)))
	m.scopeDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordDimensionMiss increments unresolved dimension counts.
func (m *Metrics) RecordDimensionMiss(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("dimension_kind", strings.TrimSpace(kind)))
	m.dimensionMiss.Add(ctx, 1, metric.WithAttributes(attrs...))
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
	"reason":         {},
	"dimension_kind": {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
// Upload ids in particular are unbounded and must never become labels.
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
