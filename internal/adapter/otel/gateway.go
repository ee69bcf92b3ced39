package otel

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/settle/internal/domain"
)

// TracingGateway wraps a domain.PaymentGateway with a client span per call
// and counts calls by operation and outcome.
type TracingGateway struct {
	next   domain.PaymentGateway
	tracer trace.Tracer
	calls  metric.Int64Counter
}

// Compile-time check: TracingGateway implements domain.PaymentGateway.
var _ domain.PaymentGateway = (*TracingGateway)(nil)

// NewTracingGateway creates a tracing decorator around the given gateway.
func NewTracingGateway(next domain.PaymentGateway) (*TracingGateway, error) {
	calls, err := otel.Meter(tracerName).Int64Counter("settle.gateway.calls",
		metric.WithDescription("Payment gateway API calls by operation and outcome."),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}
	return &TracingGateway{
		next:   next,
		tracer: otel.Tracer(tracerName),
		calls:  calls,
	}, nil
}

func (g *TracingGateway) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return g.tracer.Start(ctx, "PaymentGateway."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

// finish records the outcome on the span and in the call counter.
func (g *TracingGateway) finish(ctx context.Context, span trace.Span, op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		var gwErr *domain.GatewayError
		if errors.As(err, &gwErr) && gwErr.Temporary {
			outcome = "temporary_error"
		}
	}
	recordError(span, err)
	g.calls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("gateway.operation", op),
		attribute.String("gateway.outcome", outcome),
	))
}

func (g *TracingGateway) CreateAccount(ctx context.Context, p domain.AccountParams) (string, error) {
	const op = "CreateAccount"
	ctx, span := g.start(ctx, op, attribute.String("tenant.id", p.TenantID))
	defer span.End()

	id, err := g.next.CreateAccount(ctx, p)
	if err == nil {
		span.SetAttributes(attribute.String("stripe.account_id", id))
	}
	g.finish(ctx, span, op, err)
	return id, err
}

func (g *TracingGateway) CreateOnboardingLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	const op = "CreateOnboardingLink"
	ctx, span := g.start(ctx, op, attribute.String("stripe.account_id", accountID))
	defer span.End()

	url, err := g.next.CreateOnboardingLink(ctx, accountID, refreshURL, returnURL)
	g.finish(ctx, span, op, err)
	return url, err
}

func (g *TracingGateway) FindCustomerByEmail(ctx context.Context, email string) (string, bool, error) {
	const op = "FindCustomerByEmail"
	ctx, span := g.start(ctx, op)
	defer span.End()

	id, found, err := g.next.FindCustomerByEmail(ctx, email)
	span.SetAttributes(attribute.Bool("customer.found", found))
	g.finish(ctx, span, op, err)
	return id, found, err
}

func (g *TracingGateway) CreateCustomer(ctx context.Context, p domain.CustomerParams) (string, error) {
	const op = "CreateCustomer"
	ctx, span := g.start(ctx, op, attribute.String("tenant.id", p.TenantID))
	defer span.End()

	id, err := g.next.CreateCustomer(ctx, p)
	g.finish(ctx, span, op, err)
	return id, err
}

func (g *TracingGateway) CreateCheckoutSession(ctx context.Context, p domain.SessionParams) (domain.CheckoutSession, error) {
	const op = "CreateCheckoutSession"
	ctx, span := g.start(ctx, op,
		attribute.String("checkout.mode", string(p.Mode)),
		attribute.Int64("checkout.amount", p.Amount),
		attribute.Int64("checkout.platform_fee", p.PlatformFee),
		attribute.String("tenant.id", p.Metadata["tenant_id"]),
	)
	defer span.End()

	session, err := g.next.CreateCheckoutSession(ctx, p)
	if err == nil {
		span.SetAttributes(attribute.String("checkout.session_id", session.ID))
	}
	g.finish(ctx, span, op, err)
	return session, err
}
