package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/neomorfeo/settle/internal/domain"
)

// IngestResult says what a webhook delivery led to.
type IngestResult string

const (
	ResultIgnored        IngestResult = "ignored"
	ResultDuplicate      IngestResult = "duplicate"
	ResultNotQualified   IngestResult = "not_qualified"
	ResultUnknownAccount IngestResult = "unknown_account"
	ResultAlreadyActive  IngestResult = "already_active"
	ResultActivated      IngestResult = "activated"
)

// WebhookService turns gateway account notifications into tenant activation.
type WebhookService struct {
	verifier     domain.EventVerifier
	tenants      domain.TenantRepository
	events       domain.WebhookEventLog
	validator    domain.TransitionValidator
	publisher    domain.NotificationPublisher
	fees         domain.FeeSchedule
	supportEmail string
}

// NewWebhookService creates a service. supportEmail receives the activation
// notice for tenants without an admin contact.
func NewWebhookService(
	verifier domain.EventVerifier,
	tenants domain.TenantRepository,
	events domain.WebhookEventLog,
	validator domain.TransitionValidator,
	publisher domain.NotificationPublisher,
	fees domain.FeeSchedule,
	supportEmail string,
) *WebhookService {
	return &WebhookService{
		verifier:     verifier,
		tenants:      tenants,
		events:       events,
		validator:    validator,
		publisher:    publisher,
		fees:         fees,
		supportEmail: supportEmail,
	}
}

// Ingest authenticates a delivery and applies it. Only an authentication
// failure (domain.ErrInvalidSignature) or a storage failure is returned as
// an error; every other outcome is reported through IngestResult.
func (s *WebhookService) Ingest(ctx context.Context, payload []byte, signature string) (IngestResult, error) {
	event, err := s.verifier.Verify(payload, signature)
	if err != nil {
		return "", err
	}

	if event.Type != domain.EventTypeAccountUpdated {
		slog.InfoContext(ctx, "webhook ignored", "event_id", event.ID, "type", event.Type)
		return ResultIgnored, nil
	}

	seen, err := s.events.Processed(ctx, event.ID)
	if err != nil {
		return "", err
	}
	if seen {
		slog.InfoContext(ctx, "webhook already processed", "event_id", event.ID)
		return ResultDuplicate, nil
	}

	result, err := s.applyAccountUpdate(ctx, event)
	if err != nil {
		return "", err
	}

	if err := s.events.MarkProcessed(ctx, event.ID, event.Type); err != nil {
		return "", err
	}
	return result, nil
}

func (s *WebhookService) applyAccountUpdate(ctx context.Context, event domain.GatewayEvent) (IngestResult, error) {
	if !event.Activates() {
		slog.InfoContext(ctx, "account not ready for charges",
			"event_id", event.ID,
			"account_id", event.AccountID,
			"details_submitted", event.DetailsSubmitted,
			"charges_enabled", event.ChargesEnabled,
		)
		return ResultNotQualified, nil
	}

	tenant, err := s.tenants.GetByConnectAccountID(ctx, event.AccountID)
	if errors.Is(err, domain.ErrTenantNotFound) {
		slog.WarnContext(ctx, "no tenant for connected account",
			"event_id", event.ID,
			"account_id", event.AccountID,
			"metadata_tenant_id", event.TenantID,
		)
		return ResultUnknownAccount, nil
	}
	if err != nil {
		return "", err
	}

	if tenant.StripeActive() {
		return ResultAlreadyActive, nil
	}

	next, err := s.validator.Apply(ctx, tenant.Status, domain.EventChargesEnabled)
	if err != nil {
		return "", err
	}

	from := tenant.Status
	tenant.Status = next
	if err := s.tenants.UpdateBilling(ctx, tenant, from); err != nil {
		if errors.Is(err, domain.ErrStaleState) {
			// Another delivery activated the tenant first and owns the notice.
			return ResultAlreadyActive, nil
		}
		return "", fmt.Errorf("activating tenant: %w", err)
	}

	slog.InfoContext(ctx, "tenant activated for payments",
		"tenant_id", tenant.ID,
		"account_id", event.AccountID,
		"event_id", event.ID,
	)

	s.notifyActivated(ctx, tenant)
	return ResultActivated, nil
}

// notifyActivated enqueues the welcome notice. Failures are logged only: the
// activation stands regardless.
func (s *WebhookService) notifyActivated(ctx context.Context, tenant domain.Tenant) {
	recipient, err := s.tenants.AdminContact(ctx, tenant.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrContactNotFound) {
			slog.WarnContext(ctx, "admin contact lookup failed", "tenant_id", tenant.ID, "error", err)
		}
		recipient = s.supportEmail
	}
	if recipient == "" {
		slog.WarnContext(ctx, "activation notice skipped, no recipient", "tenant_id", tenant.ID)
		return
	}

	err = s.publisher.Publish(ctx, domain.Notification{
		Kind:        domain.NotificationAccountActivated,
		TenantID:    tenant.ID,
		CompanyName: tenant.CompanyName,
		Recipient:   recipient,
		FlatFee:     s.fees.FlatFee,
		Currency:    s.fees.Currency,
	})
	if err != nil {
		slog.ErrorContext(ctx, "activation notice not sent",
			"tenant_id", tenant.ID,
			"recipient", recipient,
			"error", err,
		)
	}
}
