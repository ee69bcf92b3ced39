package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/neomorfeo/settle/internal/app"
	"github.com/neomorfeo/settle/internal/domain"
)

// Billing actions accepted by the dispatcher endpoint.
const (
	ActionSetup          = "setup"
	ActionCreateCheckout = "create-checkout-session"
)

// BillingResponse carries a redirect URL plus whichever identifier the
// action produced.
type BillingResponse struct {
	URL       string `json:"url" doc:"Where to redirect the user"`
	AccountID string `json:"accountId,omitempty" doc:"Connected account (setup)"`
	SessionID string `json:"sessionId,omitempty" doc:"Checkout session (create-checkout-session)"`
}

type BillingOutput struct {
	Body BillingResponse
}

// --- Billing dispatcher ---

type BillingInput struct {
	Origin string `header:"Origin" required:"false" doc:"Base URL for redirects; falls back to the public URL"`
	Body   struct {
		Action       string `json:"action" enum:"setup,create-checkout-session" doc:"Operation to perform"`
		TenantID     string `json:"tenantId" minLength:"1" doc:"Tenant ID"`
		Amount       *int64 `json:"amount,omitempty" doc:"Charge in minor units; 0 stores a card without charging"`
		Email        string `json:"email,omitempty" doc:"Customer email"`
		CustomerName string `json:"customerName,omitempty" doc:"Customer display name"`
		Recurring    string `json:"recurring,omitempty" doc:"Recurring period; anything but none keeps the card for reuse"`
		OrderID      string `json:"orderId,omitempty" doc:"Order reference"`
		SuccessURL   string `json:"success_url,omitempty" doc:"Redirect after payment"`
		CancelURL    string `json:"cancel_url,omitempty" doc:"Redirect after cancellation"`
	}
}

// --- Tenant-scoped billing ---

type ConnectInput struct {
	ID     string `path:"id" doc:"Tenant ID"`
	Origin string `header:"Origin" required:"false"`
}

type CheckoutSessionInput struct {
	ID     string `path:"id" doc:"Tenant ID"`
	Origin string `header:"Origin" required:"false"`
	Body   struct {
		Amount       string `json:"amount" pattern:"^[0-9]+(\\.[0-9]{1,2})?$" doc:"Charge in major units, e.g. 12.50"`
		Email        string `json:"email" minLength:"1" doc:"Customer email"`
		CustomerName string `json:"customer_name,omitempty"`
		Recurring    string `json:"recurring,omitempty"`
		OrderID      string `json:"order_id,omitempty"`
		SuccessURL   string `json:"success_url,omitempty"`
		CancelURL    string `json:"cancel_url,omitempty"`
	}
}

func registerBilling(api huma.API, svc Services) {
	huma.Register(api, huma.Operation{
		OperationID: "billing",
		Method:      http.MethodPost,
		Path:        "/api/v1/billing",
		Summary:     "Start onboarding or open a checkout session",
		Tags:        []string{"Billing"},
	}, func(ctx context.Context, input *BillingInput) (*BillingOutput, error) {
		b := input.Body
		switch b.Action {
		case ActionSetup:
			return beginOnboarding(ctx, svc.Onboarding, b.TenantID, input.Origin)
		case ActionCreateCheckout:
			if b.Amount == nil {
				return nil, toHumaError(&domain.ValidationError{Field: "amount", Reason: "is required"})
			}
			return createCheckout(ctx, svc.Checkout, domain.CheckoutRequest{
				TenantID:     b.TenantID,
				Amount:       *b.Amount,
				Email:        b.Email,
				CustomerName: b.CustomerName,
				Recurring:    b.Recurring,
				OrderID:      b.OrderID,
				SuccessURL:   b.SuccessURL,
				CancelURL:    b.CancelURL,
				Origin:       input.Origin,
			})
		default:
			return nil, huma.Error400BadRequest("unknown action " + b.Action)
		}
	})

	huma.Register(api, huma.Operation{
		OperationID: "connect-tenant",
		Method:      http.MethodPost,
		Path:        "/api/v1/tenants/{id}/connect",
		Summary:     "Start or resume payment account onboarding",
		Tags:        []string{"Billing"},
	}, func(ctx context.Context, input *ConnectInput) (*BillingOutput, error) {
		return beginOnboarding(ctx, svc.Onboarding, input.ID, input.Origin)
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-checkout-session",
		Method:      http.MethodPost,
		Path:        "/api/v1/tenants/{id}/checkout-sessions",
		Summary:     "Open a hosted checkout session for a tenant",
		Tags:        []string{"Billing"},
	}, func(ctx context.Context, input *CheckoutSessionInput) (*BillingOutput, error) {
		b := input.Body
		major, err := decimal.NewFromString(b.Amount)
		if err != nil {
			return nil, toHumaError(&domain.ValidationError{Field: "amount", Reason: "must be a decimal amount"})
		}
		return createCheckout(ctx, svc.Checkout, domain.CheckoutRequest{
			TenantID:     input.ID,
			Amount:       domain.MinorUnits(major),
			Email:        b.Email,
			CustomerName: b.CustomerName,
			Recurring:    b.Recurring,
			OrderID:      b.OrderID,
			SuccessURL:   b.SuccessURL,
			CancelURL:    b.CancelURL,
			Origin:       input.Origin,
		})
	})
}

func beginOnboarding(ctx context.Context, svc *app.OnboardingService, tenantID, origin string) (*BillingOutput, error) {
	ob, err := svc.BeginOnboarding(ctx, tenantID, origin)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &BillingOutput{Body: BillingResponse{URL: ob.URL, AccountID: ob.AccountID}}, nil
}

func createCheckout(ctx context.Context, svc *app.CheckoutService, req domain.CheckoutRequest) (*BillingOutput, error) {
	session, err := svc.CreateCheckout(ctx, req)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &BillingOutput{Body: BillingResponse{URL: session.URL, SessionID: session.ID}}, nil
}
