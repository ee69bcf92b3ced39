package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/settle/internal/domain"
)

const tracerName = "github.com/neomorfeo/settle/internal/adapter/otel"

// TracingRepository wraps a domain.TenantRepository with OpenTelemetry tracing.
// Each method creates a span with semantic attributes and records errors.
type TracingRepository struct {
	next   domain.TenantRepository
	tracer trace.Tracer
}

// Compile-time check: TracingRepository implements domain.TenantRepository.
var _ domain.TenantRepository = (*TracingRepository)(nil)

// NewTracingRepository creates a tracing decorator around the given repository.
func NewTracingRepository(next domain.TenantRepository) *TracingRepository {
	return &TracingRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingRepository) Create(ctx context.Context, tenant domain.Tenant) error {
	ctx, span := r.tracer.Start(ctx, "TenantRepository.Create",
		trace.WithAttributes(
			attribute.String("tenant.id", tenant.ID),
			attribute.String("tenant.billing_status", string(tenant.Status)),
		),
	)
	defer span.End()

	err := r.next.Create(ctx, tenant)
	recordError(span, err)
	return err
}

func (r *TracingRepository) GetByID(ctx context.Context, id string) (domain.Tenant, error) {
	ctx, span := r.tracer.Start(ctx, "TenantRepository.GetByID",
		trace.WithAttributes(attribute.String("tenant.id", id)),
	)
	defer span.End()

	tenant, err := r.next.GetByID(ctx, id)
	recordError(span, err)
	return tenant, err
}

func (r *TracingRepository) GetByConnectAccountID(ctx context.Context, accountID string) (domain.Tenant, error) {
	ctx, span := r.tracer.Start(ctx, "TenantRepository.GetByConnectAccountID",
		trace.WithAttributes(attribute.String("stripe.account_id", accountID)),
	)
	defer span.End()

	tenant, err := r.next.GetByConnectAccountID(ctx, accountID)
	if err == nil {
		span.SetAttributes(attribute.String("tenant.id", tenant.ID))
	}
	recordError(span, err)
	return tenant, err
}

func (r *TracingRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Tenant, error) {
	ctx, span := r.tracer.Start(ctx, "TenantRepository.List",
		trace.WithAttributes(
			attribute.Int("filter.limit", filter.Limit),
			attribute.Int("filter.offset", filter.Offset),
		),
	)
	defer span.End()

	if filter.Status != nil {
		span.SetAttributes(attribute.String("filter.status", string(*filter.Status)))
	}

	tenants, err := r.next.List(ctx, filter)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(tenants)))
	}
	recordError(span, err)
	return tenants, err
}

func (r *TracingRepository) UpdateBilling(ctx context.Context, tenant domain.Tenant, from domain.Status) error {
	ctx, span := r.tracer.Start(ctx, "TenantRepository.UpdateBilling",
		trace.WithAttributes(
			attribute.String("tenant.id", tenant.ID),
			attribute.String("billing.from", string(from)),
			attribute.String("billing.to", string(tenant.Status)),
		),
	)
	defer span.End()

	err := r.next.UpdateBilling(ctx, tenant, from)
	recordError(span, err)
	return err
}

func (r *TracingRepository) AddContact(ctx context.Context, contact domain.Contact) error {
	ctx, span := r.tracer.Start(ctx, "TenantRepository.AddContact",
		trace.WithAttributes(
			attribute.String("tenant.id", contact.TenantID),
			attribute.String("contact.role", string(contact.Role)),
		),
	)
	defer span.End()

	err := r.next.AddContact(ctx, contact)
	recordError(span, err)
	return err
}

func (r *TracingRepository) AdminContact(ctx context.Context, tenantID string) (string, error) {
	ctx, span := r.tracer.Start(ctx, "TenantRepository.AdminContact",
		trace.WithAttributes(attribute.String("tenant.id", tenantID)),
	)
	defer span.End()

	email, err := r.next.AdminContact(ctx, tenantID)
	recordError(span, err)
	return email, err
}

// recordError marks the span failed when err is non-nil.
func recordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
