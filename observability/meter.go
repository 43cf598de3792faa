package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/Gajesh2007/ai-debate-judge/logger"
	"github.com/Gajesh2007/ai-debate-judge/version"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: version.Short(),
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the metric instruments for adjudication runs.
type Metrics struct {
	runTotal       metric.Int64Counter
	runDuration    metric.Float64Histogram
	runActive      metric.Int64UpDownCounter
	stageDuration  metric.Float64Histogram
	judgeTotal     metric.Int64Counter
	chunkTotal     metric.Int64Counter
	moderationHits metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	runTotal, err := meter.Int64Counter("adjudication.run.total",
		metric.WithDescription("Total number of adjudication runs by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating adjudication.run.total counter: %w", err)
	}

	runDuration, err := meter.Float64Histogram("adjudication.run.duration",
		metric.WithDescription("Duration of adjudication runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating adjudication.run.duration histogram: %w", err)
	}

	runActive, err := meter.Int64UpDownCounter("adjudication.run.active",
		metric.WithDescription("Number of currently active adjudication runs"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating adjudication.run.active gauge: %w", err)
	}

	stageDuration, err := meter.Float64Histogram("adjudication.stage.duration",
		metric.WithDescription("Duration of pipeline stages in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating adjudication.stage.duration histogram: %w", err)
	}

	judgeTotal, err := meter.Int64Counter("council.judge.total",
		metric.WithDescription("Judge evaluations by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating council.judge.total counter: %w", err)
	}

	chunkTotal, err := meter.Int64Counter("transcription.chunk.total",
		metric.WithDescription("Audio chunks transcribed by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transcription.chunk.total counter: %w", err)
	}

	moderationHits, err := meter.Int64Counter("moderation.rejection.total",
		metric.WithDescription("Transcripts rejected by the moderation gate"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating moderation.rejection.total counter: %w", err)
	}

	return &Metrics{
		runTotal:       runTotal,
		runDuration:    runDuration,
		runActive:      runActive,
		stageDuration:  stageDuration,
		judgeTotal:     judgeTotal,
		chunkTotal:     chunkTotal,
		moderationHits: moderationHits,
	}, nil
}

// RecordRunStart increments the active run count.
func (m *Metrics) RecordRunStart(ctx context.Context) {
	m.runActive.Add(ctx, 1)
}

// RecordRunEnd decrements active runs and records the completed run.
func (m *Metrics) RecordRunEnd(ctx context.Context, status string, duration time.Duration) {
	m.runActive.Add(ctx, -1)
	m.runTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	m.runDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("status", status),
	))
}

// RecordStage records one pipeline stage execution.
func (m *Metrics) RecordStage(ctx context.Context, stage, status string, duration time.Duration) {
	m.stageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("status", status),
	))
}

// RecordJudge records one judge evaluation outcome.
func (m *Metrics) RecordJudge(ctx context.Context, judge, status string) {
	m.judgeTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("judge", judge),
		attribute.String("status", status),
	))
}

// RecordChunk records one transcribed chunk outcome.
func (m *Metrics) RecordChunk(ctx context.Context, status string) {
	m.chunkTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordModerationRejection counts a moderation rejection.
func (m *Metrics) RecordModerationRejection(ctx context.Context, flags []string) {
	m.moderationHits.Add(ctx, 1, metric.WithAttributes(
		attribute.StringSlice("flags", flags),
	))
}
