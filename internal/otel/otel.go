package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const Scope = "ely.by/tailor"

func GetMeter(opts ...metric.MeterOption) metric.Meter {
	return otel.GetMeterProvider().Meter(Scope, opts...)
}

func GetTracer(opts ...trace.TracerOption) trace.Tracer {
	return otel.GetTracerProvider().Tracer(Scope, opts...)
}

// FailSpan records the error as the span event and sets the span status to Error
// with the error message as its description
func FailSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
