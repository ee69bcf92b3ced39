// Package stripe adapts the Stripe API to the domain payment ports.
package stripe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	stripelib "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/neomorfeo/settle/internal/domain"
)

// Config holds the connection settings for the Stripe API.
type Config struct {
	SecretKey         string
	MaxNetworkRetries int64
	// BaseURL overrides the API endpoint. Empty means api.stripe.com.
	BaseURL string
	// Country is the ISO country new connected accounts are opened in.
	Country string
}

// Gateway implements domain.PaymentGateway on top of a Stripe client.
type Gateway struct {
	api     *client.API
	country string
}

// Compile-time check: Gateway implements domain.PaymentGateway.
var _ domain.PaymentGateway = (*Gateway)(nil)

// NewGateway creates a gateway client. The network retry budget is shared by
// every call; retried POSTs are safe because each carries an idempotency key.
func NewGateway(cfg Config) *Gateway {
	bc := &stripelib.BackendConfig{
		MaxNetworkRetries: stripelib.Int64(cfg.MaxNetworkRetries),
		LeveledLogger:     slogLogger{},
	}
	if cfg.BaseURL != "" {
		bc.URL = stripelib.String(cfg.BaseURL)
	}
	backend := stripelib.GetBackendWithConfig(stripelib.APIBackend, bc)

	api := &client.API{}
	api.Init(cfg.SecretKey, &stripelib.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	})

	country := cfg.Country
	if country == "" {
		country = "GB"
	}
	return &Gateway{api: api, country: country}
}

func (g *Gateway) CreateAccount(ctx context.Context, p domain.AccountParams) (string, error) {
	params := &stripelib.AccountParams{
		Type:    stripelib.String(string(stripelib.AccountTypeExpress)),
		Country: stripelib.String(g.country),
		Capabilities: &stripelib.AccountCapabilitiesParams{
			CardPayments: &stripelib.AccountCapabilitiesCardPaymentsParams{Requested: stripelib.Bool(true)},
			Transfers:    &stripelib.AccountCapabilitiesTransfersParams{Requested: stripelib.Bool(true)},
		},
		BusinessProfile: &stripelib.AccountBusinessProfileParams{
			Name: stripelib.String(p.CompanyName),
		},
	}
	if p.Email != "" {
		params.Email = stripelib.String(p.Email)
	}
	params.AddMetadata("tenant_id", p.TenantID)
	params.Context = ctx
	if p.IdempotencyKey != "" {
		params.SetIdempotencyKey(p.IdempotencyKey)
	}

	acct, err := g.api.Accounts.New(params)
	if err != nil {
		return "", gatewayError("create account", err)
	}
	return acct.ID, nil
}

func (g *Gateway) CreateOnboardingLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	params := &stripelib.AccountLinkParams{
		Account:    stripelib.String(accountID),
		RefreshURL: stripelib.String(refreshURL),
		ReturnURL:  stripelib.String(returnURL),
		Type:       stripelib.String(string(stripelib.AccountLinkTypeAccountOnboarding)),
	}
	params.Context = ctx

	link, err := g.api.AccountLinks.New(params)
	if err != nil {
		return "", gatewayError("create account link", err)
	}
	return link.URL, nil
}

// FindCustomerByEmail returns the most recent customer with the given email.
func (g *Gateway) FindCustomerByEmail(ctx context.Context, email string) (string, bool, error) {
	params := &stripelib.CustomerListParams{
		Email: stripelib.String(email),
	}
	params.Limit = stripelib.Int64(1)
	params.Context = ctx

	it := g.api.Customers.List(params)
	if it.Next() {
		return it.Customer().ID, true, nil
	}
	if err := it.Err(); err != nil {
		return "", false, gatewayError("list customers", err)
	}
	return "", false, nil
}

func (g *Gateway) CreateCustomer(ctx context.Context, p domain.CustomerParams) (string, error) {
	params := &stripelib.CustomerParams{
		Email: stripelib.String(p.Email),
	}
	if p.Name != "" {
		params.Name = stripelib.String(p.Name)
	}
	params.AddMetadata("tenant_id", p.TenantID)
	params.Context = ctx
	if p.IdempotencyKey != "" {
		params.SetIdempotencyKey(p.IdempotencyKey)
	}

	c, err := g.api.Customers.New(params)
	if err != nil {
		return "", gatewayError("create customer", err)
	}
	return c.ID, nil
}

func (g *Gateway) CreateCheckoutSession(ctx context.Context, p domain.SessionParams) (domain.CheckoutSession, error) {
	params := &stripelib.CheckoutSessionParams{
		Mode:       stripelib.String(string(p.Mode)),
		SuccessURL: stripelib.String(p.SuccessURL),
		CancelURL:  stripelib.String(p.CancelURL),
	}
	if p.CustomerID != "" {
		params.Customer = stripelib.String(p.CustomerID)
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}

	switch p.Mode {
	case domain.ModeSetup:
		params.Currency = stripelib.String(p.Currency)
		params.SetupIntentData = &stripelib.CheckoutSessionSetupIntentDataParams{
			Metadata: p.Metadata,
		}
	default:
		params.LineItems = []*stripelib.CheckoutSessionLineItemParams{
			{
				PriceData: &stripelib.CheckoutSessionLineItemPriceDataParams{
					Currency: stripelib.String(p.Currency),
					ProductData: &stripelib.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripelib.String(p.Description),
					},
					UnitAmount: stripelib.Int64(p.Amount),
				},
				Quantity: stripelib.Int64(1),
			},
		}
		pi := &stripelib.CheckoutSessionPaymentIntentDataParams{
			ApplicationFeeAmount: stripelib.Int64(p.PlatformFee),
			TransferData: &stripelib.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripelib.String(p.Destination),
			},
			Metadata: p.Metadata,
		}
		if p.OffSession {
			pi.SetupFutureUsage = stripelib.String(string(stripelib.PaymentIntentSetupFutureUsageOffSession))
		}
		params.PaymentIntentData = pi
	}

	params.Context = ctx
	if p.IdempotencyKey != "" {
		params.SetIdempotencyKey(p.IdempotencyKey)
	}

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return domain.CheckoutSession{}, gatewayError("create checkout session", err)
	}
	return domain.CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// gatewayError converts a Stripe failure into a domain.GatewayError. Errors
// that never reached an API response are network failures and temporary.
func gatewayError(op string, err error) error {
	var se *stripelib.Error
	if errors.As(err, &se) {
		msg := se.Msg
		if msg == "" {
			msg = fmt.Sprintf("stripe returned HTTP %d", se.HTTPStatusCode)
		}
		return &domain.GatewayError{
			Op:        op,
			Message:   msg,
			Temporary: se.HTTPStatusCode >= http.StatusInternalServerError || se.HTTPStatusCode == http.StatusTooManyRequests,
			Err:       err,
		}
	}
	return &domain.GatewayError{Op: op, Message: err.Error(), Temporary: true, Err: err}
}

// slogLogger routes the Stripe client's internal logging to slog.
type slogLogger struct{}

func (slogLogger) Debugf(format string, v ...interface{}) {
	slog.Debug(fmt.Sprintf(format, v...), "component", "stripe")
}

func (slogLogger) Infof(format string, v ...interface{}) {
	slog.Debug(fmt.Sprintf(format, v...), "component", "stripe")
}

func (slogLogger) Warnf(format string, v ...interface{}) {
	slog.Warn(fmt.Sprintf(format, v...), "component", "stripe")
}

func (slogLogger) Errorf(format string, v ...interface{}) {
	slog.Error(fmt.Sprintf(format, v...), "component", "stripe")
}
