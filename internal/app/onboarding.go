package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/neomorfeo/settle/internal/domain"
)

// Paths on the client app that Stripe redirects back to after onboarding.
const (
	onboardingRefreshPath = "/settings/payments?onboarding=refresh"
	onboardingReturnPath  = "/settings/payments?onboarding=complete"
)

// OnboardingService connects tenants to the payment gateway.
type OnboardingService struct {
	repo      domain.TenantRepository
	gateway   domain.PaymentGateway
	validator domain.TransitionValidator
	publicURL string
}

// NewOnboardingService creates a service. publicURL is used for redirects
// when the caller does not supply an origin.
func NewOnboardingService(repo domain.TenantRepository, gateway domain.PaymentGateway, validator domain.TransitionValidator, publicURL string) *OnboardingService {
	return &OnboardingService{
		repo:      repo,
		gateway:   gateway,
		validator: validator,
		publicURL: publicURL,
	}
}

// BeginOnboarding makes sure the tenant has a connected account and returns
// a fresh onboarding link for it. The account id is stored before the link
// is requested, so a failed link request does not orphan the account.
func (s *OnboardingService) BeginOnboarding(ctx context.Context, tenantID, origin string) (domain.Onboarding, error) {
	tenant, err := s.repo.GetByID(ctx, tenantID)
	if err != nil {
		return domain.Onboarding{}, err
	}

	if !tenant.Connected() {
		tenant, err = s.connect(ctx, tenant)
		if err != nil {
			return domain.Onboarding{}, err
		}
	}

	base := redirectBase(origin, s.publicURL)
	url, err := s.gateway.CreateOnboardingLink(ctx, tenant.ConnectAccountID,
		base+onboardingRefreshPath, base+onboardingReturnPath)
	if err != nil {
		return domain.Onboarding{}, err
	}

	return domain.Onboarding{URL: url, AccountID: tenant.ConnectAccountID}, nil
}

func (s *OnboardingService) connect(ctx context.Context, tenant domain.Tenant) (domain.Tenant, error) {
	next, err := s.validator.Apply(ctx, tenant.Status, domain.EventAccountCreated)
	if err != nil {
		return domain.Tenant{}, err
	}

	email, err := s.repo.AdminContact(ctx, tenant.ID)
	if err != nil && !errors.Is(err, domain.ErrContactNotFound) {
		return domain.Tenant{}, fmt.Errorf("looking up admin contact: %w", err)
	}

	accountID, err := s.gateway.CreateAccount(ctx, domain.AccountParams{
		TenantID:       tenant.ID,
		CompanyName:    tenant.CompanyName,
		Email:          email,
		IdempotencyKey: accountKey(tenant.ID),
	})
	if err != nil {
		return domain.Tenant{}, err
	}

	from := tenant.Status
	tenant.ConnectAccountID = accountID
	tenant.Status = next
	if err := s.repo.UpdateBilling(ctx, tenant, from); err != nil {
		if errors.Is(err, domain.ErrStaleState) {
			// A concurrent request connected the tenant first. The shared
			// idempotency key means it stored the same account.
			current, getErr := s.repo.GetByID(ctx, tenant.ID)
			if getErr == nil && current.Connected() {
				return current, nil
			}
		}
		return domain.Tenant{}, fmt.Errorf("storing connected account: %w", err)
	}

	slog.InfoContext(ctx, "connected account created",
		"tenant_id", tenant.ID,
		"account_id", accountID,
	)
	return tenant, nil
}

// redirectBase picks the origin of the calling app, falling back to the
// configured public URL.
func redirectBase(origin, fallback string) string {
	base := strings.TrimSpace(origin)
	if base == "" {
		base = fallback
	}
	return strings.TrimRight(base, "/")
}
