package api

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName         = "taskboard/api"
	requestEventName   = "taskboard.api.request"
	requestEventDomain = "taskboard"
)

// requestMetrics collects per-request timings and emits them as a span plus a
// structured log entry when the handler finishes.
type requestMetrics struct {
	logger         *log.Logger
	route          string
	method         string
	span           trace.Span
	start          time.Time
	storeDuration  time.Duration
	encodeDuration time.Duration
	tasksReturned  int
	errorStage     string
}

func newRequestMetrics(ctx context.Context, logger *log.Logger, method, route string) (*requestMetrics, context.Context) {
	m := &requestMetrics{
		logger:        logger,
		route:         route,
		method:        method,
		start:         time.Now(),
		tasksReturned: -1,
	}
	spanCtx, span := otel.Tracer(tracerName).Start(ctx, method+" "+route)
	m.span = span
	return m, spanCtx
}

func (m *requestMetrics) ObserveStore(d time.Duration) {
	if d <= 0 {
		return
	}
	m.storeDuration = d
}

func (m *requestMetrics) ObserveEncode(d time.Duration) {
	if d <= 0 {
		return
	}
	m.encodeDuration = d
}

func (m *requestMetrics) SetTasksReturned(count int) {
	if count < 0 {
		count = 0
	}
	m.tasksReturned = count
}

func (m *requestMetrics) SetErrorStage(stage string) {
	if stage == "" {
		return
	}
	m.errorStage = stage
}

// Log finishes the span and writes the observability event. Safe to call from
// a deferred statement with the final response status.
func (m *requestMetrics) Log(status int, err error) {
	if m == nil {
		return
	}
	total := time.Since(m.start)

	attrs := []attribute.KeyValue{
		attribute.String("http.method", m.method),
		attribute.String("http.route", m.route),
		attribute.Int("http.status_code", status),
		attribute.Float64("taskboard.request.total_ms", durationToMillis(total)),
		attribute.Float64("taskboard.request.store_ms", durationToMillis(m.storeDuration)),
		attribute.Float64("taskboard.request.encode_ms", durationToMillis(m.encodeDuration)),
	}
	if m.tasksReturned >= 0 {
		attrs = append(attrs, attribute.Int("taskboard.request.tasks_returned", m.tasksReturned))
	}
	if m.errorStage != "" {
		attrs = append(attrs, attribute.String("taskboard.request.error_stage", m.errorStage))
	}

	if m.span != nil {
		m.span.SetAttributes(attrs...)
		m.span.AddEvent(requestEventName)
		if err != nil || status >= http.StatusInternalServerError {
			m.span.SetStatus(codes.Error, m.errorStage)
		} else {
			m.span.SetStatus(codes.Ok, "")
		}
		m.span.End()
	}

	if m.logger == nil {
		return
	}
	fields := log.Fields{
		"event.name":   requestEventName,
		"event.domain": requestEventDomain,
		"http.method":  m.method,
		"http.route":   m.route,
		"status":       status,
		"total_ms":     durationToMillis(total),
		"store_ms":     durationToMillis(m.storeDuration),
		"encode_ms":    durationToMillis(m.encodeDuration),
	}
	if m.tasksReturned >= 0 {
		fields["tasks_returned"] = m.tasksReturned
	}
	if m.errorStage != "" {
		fields["error_stage"] = m.errorStage
	}
	if m.span != nil {
		if sc := m.span.SpanContext(); sc.HasTraceID() {
			fields["trace_id"] = sc.TraceID().String()
		}
	}
	entry := m.logger.WithFields(fields)
	if err != nil {
		entry.WithError(err).Error(requestEventName)
		return
	}
	entry.Info(requestEventName)
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
