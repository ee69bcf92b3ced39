package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/neomorfeo/settle/internal/domain"
)

// Paths on the client app used when the caller gives no explicit redirects.
const (
	checkoutSuccessPath = "/pos?checkout=success&session_id={CHECKOUT_SESSION_ID}"
	checkoutCancelPath  = "/pos?checkout=cancelled"
)

// CheckoutService opens hosted checkout sessions that settle into a
// tenant's connected account.
type CheckoutService struct {
	tenants   domain.TenantRepository
	customers domain.CustomerRepository
	gateway   domain.PaymentGateway
	fees      domain.FeeSchedule
	publicURL string

	// resolving collapses concurrent lookups of the same (tenant, email).
	resolving singleflight.Group
}

// NewCheckoutService creates a service charging the given fee schedule.
func NewCheckoutService(tenants domain.TenantRepository, customers domain.CustomerRepository, gateway domain.PaymentGateway, fees domain.FeeSchedule, publicURL string) *CheckoutService {
	return &CheckoutService{
		tenants:   tenants,
		customers: customers,
		gateway:   gateway,
		fees:      fees,
		publicURL: publicURL,
	}
}

// CreateCheckout creates a checkout session for req. A zero amount opens a
// setup session that only stores a card.
func (s *CheckoutService) CreateCheckout(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutSession, error) {
	if err := validateCheckout(req); err != nil {
		return domain.CheckoutSession{}, err
	}

	tenant, err := s.tenants.GetByID(ctx, req.TenantID)
	if err != nil {
		return domain.CheckoutSession{}, err
	}
	if !tenant.Connected() {
		return domain.CheckoutSession{}, domain.ErrStoreNotConnected
	}

	customerID, err := s.resolveCustomer(ctx, tenant.ID, req.Email, req.CustomerName)
	if err != nil {
		return domain.CheckoutSession{}, err
	}

	base := redirectBase(req.Origin, s.publicURL)
	if req.SuccessURL == "" {
		req.SuccessURL = base + checkoutSuccessPath
	}
	if req.CancelURL == "" {
		req.CancelURL = base + checkoutCancelPath
	}

	params := domain.BuildSessionParams(req, s.fees, tenant.ConnectAccountID, customerID)
	params.IdempotencyKey = sessionKey(tenant.ID, req.OrderID, params)

	session, err := s.gateway.CreateCheckoutSession(ctx, params)
	if err != nil {
		return domain.CheckoutSession{}, err
	}

	slog.InfoContext(ctx, "checkout session created",
		"tenant_id", tenant.ID,
		"session_id", session.ID,
		"mode", string(params.Mode),
		"amount", params.Amount,
		"platform_fee", params.PlatformFee,
	)
	return session, nil
}

func validateCheckout(req domain.CheckoutRequest) error {
	if req.TenantID == "" {
		return &domain.ValidationError{Field: "tenantId", Reason: "is required"}
	}
	if req.Amount < 0 {
		return &domain.ValidationError{Field: "amount", Reason: "must not be negative"}
	}
	if strings.TrimSpace(req.Email) == "" {
		return &domain.ValidationError{Field: "email", Reason: "is required"}
	}
	return nil
}

// resolveCustomer returns the gateway customer for (tenant, email): the
// stored one, else the first gateway match by email, else a new one. The
// result is persisted so later checkouts skip the gateway lookup.
func (s *CheckoutService) resolveCustomer(ctx context.Context, tenantID, email, name string) (string, error) {
	email = domain.NormalizeEmail(email)

	v, err, _ := s.resolving.Do(tenantID+"\x00"+email, func() (any, error) {
		// Callers joining this flight must not fail because the first one
		// went away.
		ctx := context.WithoutCancel(ctx)

		stored, err := s.customers.GetCustomer(ctx, tenantID, email)
		switch {
		case err == nil && stored.StripeCustomerID != "":
			return stored.StripeCustomerID, nil
		case err != nil && !errors.Is(err, domain.ErrCustomerNotFound):
			return "", fmt.Errorf("loading customer: %w", err)
		}

		customerID, found, err := s.gateway.FindCustomerByEmail(ctx, email)
		if err != nil {
			return "", err
		}
		if !found {
			customerID, err = s.gateway.CreateCustomer(ctx, domain.CustomerParams{
				TenantID:       tenantID,
				Email:          email,
				Name:           name,
				IdempotencyKey: customerKey(tenantID, email),
			})
			if err != nil {
				return "", err
			}
		}

		if err := s.customers.SaveCustomer(ctx, domain.Customer{
			TenantID:         tenantID,
			Email:            email,
			Name:             name,
			StripeCustomerID: customerID,
		}); err != nil {
			return "", fmt.Errorf("saving customer: %w", err)
		}
		return customerID, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
