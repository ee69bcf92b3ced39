package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/settle/internal/domain"
)

// TracingPublisher wraps a domain.NotificationPublisher with OpenTelemetry tracing.
type TracingPublisher struct {
	next   domain.NotificationPublisher
	tracer trace.Tracer
}

// Compile-time check: TracingPublisher implements domain.NotificationPublisher.
var _ domain.NotificationPublisher = (*TracingPublisher)(nil)

// NewTracingPublisher creates a tracing decorator around the given publisher.
func NewTracingPublisher(next domain.NotificationPublisher) *TracingPublisher {
	return &TracingPublisher{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (p *TracingPublisher) Publish(ctx context.Context, n domain.Notification) error {
	ctx, span := p.tracer.Start(ctx, "NotificationPublisher.Publish",
		trace.WithAttributes(
			attribute.String("notification.kind", string(n.Kind)),
			attribute.String("tenant.id", n.TenantID),
		),
	)
	defer span.End()

	err := p.next.Publish(ctx, n)
	recordError(span, err)
	return err
}
