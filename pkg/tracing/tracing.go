package tracing

import (
	"browser-agent/pkg/apperr"
	"browser-agent/pkg/logg"
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	AttrErrorCode   = "error.code"
	AttrErrorReason = "error.reason"
)

// Span pairs an otel span with the operation logger so that every finished
// step leaves a debug line carrying its duration and error code.
type Span struct {
	span    trace.Span
	logger  *zap.Logger
	name    string
	started time.Time
}

func StartSpan(ctx context.Context, tracer trace.Tracer, logger *zap.Logger, name string, attrs ...attribute.KeyValue) (context.Context, *Span) {
	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(attrs...))

	return ctx, &Span{
		span:    span,
		logger:  logger,
		name:    name,
		started: time.Now(),
	}
}

// End closes the span. A non-nil err marks it failed and stamps the
// apperr code and reason onto it.
func (s *Span) End(err error) {
	elapsed := time.Since(s.started)

	if err != nil {
		code := apperr.CodeOf(err)
		attrs := []attribute.KeyValue{attribute.String(AttrErrorCode, code)}

		if reason := apperr.Reason(err); reason != "" {
			attrs = append(attrs, attribute.String(AttrErrorReason, reason))
		}

		s.span.SetAttributes(attrs...)
		s.span.SetStatus(codes.Error, err.Error())
		s.span.RecordError(err)

		s.logger.Debug("Span failed",
			zap.String(logg.Span, s.name),
			zap.Duration(logg.Duration, elapsed),
			zap.String(logg.ErrorCode, code),
		)
	} else {
		s.span.SetStatus(codes.Ok, "")

		s.logger.Debug("Span finished",
			zap.String(logg.Span, s.name),
			zap.Duration(logg.Duration, elapsed),
		)
	}

	s.span.End()
}

func (s *Span) AddEvent(name string, attrs ...attribute.KeyValue) {
	s.span.AddEvent(name, trace.WithAttributes(attrs...))
}

func (s *Span) SetAttributes(attrs ...attribute.KeyValue) {
	s.span.SetAttributes(attrs...)
}

// TraceID is empty when the span is not sampled.
func (s *Span) TraceID() string {
	sc := s.span.SpanContext()
	if !sc.HasTraceID() {
		return ""
	}

	return sc.TraceID().String()
}
