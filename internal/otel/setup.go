package otel

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/agoda-com/opentelemetry-go/otelslog"
	logsOtel "github.com/agoda-com/opentelemetry-logs-go"
	"github.com/agoda-com/opentelemetry-logs-go/exporters/otlp/otlplogs"
	logsSdk "github.com/agoda-com/opentelemetry-logs-go/sdk/logs"
	"github.com/google/uuid"
	runtimeMetrics "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	metricSdk "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	traceSdk "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/semconv/v1.4.0"

	"ely.by/tailor/internal/version"
)

const ServiceName = "tailor"

// Config selects the signals exported through OTLP. Endpoints, headers and protocols
// of the exporters come from the standard OTEL_EXPORTER_OTLP_* env variables
type Config struct {
	Traces  bool
	Metrics bool
	Logs    bool
	// Records below this level aren't sent into the logs pipeline
	LogLevel slog.Level
	// Sent with every signal as the service.instance.id resource attribute.
	// A random id is used when it's empty
	InstanceId string
}

// SDK keeps the installed providers until Shutdown is called
type SDK struct {
	// Logger writes into the logs pipeline. It's nil when the logs aren't exported
	Logger *slog.Logger

	shutdownFuncs []func(context.Context) error
}

// Shutdown flushes and stops all installed providers. It's safe to call it more than once
func (s *SDK) Shutdown(ctx context.Context) error {
	var err error
	for _, fn := range s.shutdownFuncs {
		err = errors.Join(err, fn(ctx))
	}

	s.shutdownFuncs = nil

	return err
}

type pipeline func(ctx context.Context, sdk *SDK, res *resource.Resource) error

// SetupSDK installs the global propagator and a provider for each enabled signal.
// When one of the pipelines can't be started, the already installed ones are shut down
func SetupSDK(ctx context.Context, config Config) (*SDK, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	res, err := newResource(ctx, config.InstanceId)
	if err != nil {
		return nil, err
	}

	var pipelines []pipeline
	if config.Logs {
		pipelines = append(pipelines, logsPipeline(config.LogLevel))
	}

	if config.Traces {
		pipelines = append(pipelines, tracesPipeline)
	}

	if config.Metrics {
		pipelines = append(pipelines, metricsPipeline)
	}

	sdk := &SDK{}
	for _, start := range pipelines {
		err = start(ctx, sdk, res)
		if err != nil {
			return nil, errors.Join(err, sdk.Shutdown(ctx))
		}
	}

	return sdk, nil
}

func newResource(ctx context.Context, instanceId string) (*resource.Resource, error) {
	if instanceId == "" {
		instanceId = uuid.NewString()
	}

	attrs := []attribute.KeyValue{
		semconv.ServiceNameKey.String(ServiceName),
		semconv.ServiceVersionKey.String(version.Version()),
		semconv.ServiceInstanceIDKey.String(instanceId),
	}

	if commit := version.Commit(); commit != "" {
		attrs = append(attrs, attribute.String("service.commit", commit))
	}

	return resource.New(
		ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithOS(),
		resource.WithContainer(),
		resource.WithHost(),
		resource.WithAttributes(attrs...),
	)
}

func logsPipeline(level slog.Level) pipeline {
	return func(ctx context.Context, sdk *SDK, res *resource.Resource) error {
		exporter, err := otlplogs.NewExporter(ctx)
		if err != nil {
			return err
		}

		provider := logsSdk.NewLoggerProvider(
			logsSdk.WithBatcher(exporter),
			logsSdk.WithResource(res),
		)

		sdk.shutdownFuncs = append(sdk.shutdownFuncs, provider.Shutdown)
		logsOtel.SetLoggerProvider(provider)
		sdk.Logger = slog.New(otelslog.NewOtelHandler(provider, &otelslog.HandlerOptions{Level: level}))

		return nil
	}
}

func tracesPipeline(ctx context.Context, sdk *SDK, res *resource.Resource) error {
	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return err
	}

	provider := traceSdk.NewTracerProvider(
		traceSdk.WithResource(res),
		traceSdk.WithBatcher(exporter),
	)

	sdk.shutdownFuncs = append(sdk.shutdownFuncs, provider.Shutdown)
	otel.SetTracerProvider(provider)

	return nil
}

// Go runtime metrics are exported together with the application ones
func metricsPipeline(ctx context.Context, sdk *SDK, res *resource.Resource) error {
	exporter, err := otlpmetrichttp.New(ctx)
	if err != nil {
		return err
	}

	provider := metricSdk.NewMeterProvider(
		metricSdk.WithResource(res),
		metricSdk.WithReader(metricSdk.NewPeriodicReader(exporter)),
	)

	sdk.shutdownFuncs = append(sdk.shutdownFuncs, provider.Shutdown)
	otel.SetMeterProvider(provider)

	return runtimeMetrics.Start(
		runtimeMetrics.WithMeterProvider(provider),
		runtimeMetrics.WithMinimumReadMemStatsInterval(time.Second),
	)
}
