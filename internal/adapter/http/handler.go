package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/settle/internal/app"
	"github.com/neomorfeo/settle/internal/domain"
)

// Services are the application services exposed over HTTP.
type Services struct {
	Tenants    *app.TenantService
	Onboarding *app.OnboardingService
	Checkout   *app.CheckoutService
}

// TenantResponse is the API representation of a tenant.
type TenantResponse struct {
	ID               string `json:"id" doc:"Unique identifier"`
	CompanyName      string `json:"company_name" doc:"Business name"`
	ConnectAccountID string `json:"stripe_connect_account_id,omitempty" doc:"Connected payment account, once onboarding started"`
	BillingStatus    string `json:"billing_status" doc:"Payment readiness" enum:"not_connected,pending,active"`
	CreatedAt        string `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt        string `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
}

func toTenantResponse(t domain.Tenant) TenantResponse {
	return TenantResponse{
		ID:               t.ID,
		CompanyName:      t.CompanyName,
		ConnectAccountID: t.ConnectAccountID,
		BillingStatus:    string(t.Status),
		CreatedAt:        t.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:        t.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// --- Create Tenant ---

type CreateTenantInput struct {
	Body struct {
		CompanyName string `json:"company_name" minLength:"1" maxLength:"255" doc:"Business name"`
		AdminEmail  string `json:"admin_email,omitempty" format:"email" doc:"Administrative contact for payment notices"`
	}
}

type CreateTenantOutput struct {
	Body TenantResponse
}

// --- Get Tenant ---

type GetTenantInput struct {
	ID string `path:"id" doc:"Tenant ID"`
}

type GetTenantOutput struct {
	Body TenantResponse
}

// --- List Tenants ---

type ListTenantsInput struct {
	Status string `query:"status" required:"false" enum:"not_connected,pending,active" doc:"Filter by billing status"`
	Limit  int    `query:"limit" required:"false" default:"50" minimum:"1" maximum:"500" doc:"Max results"`
	Offset int    `query:"offset" required:"false" default:"0" minimum:"0" doc:"Pagination offset"`
}

type ListTenantsOutput struct {
	Body []TenantResponse
}

// Register adds all tenant and billing API routes to the Huma API.
func Register(api huma.API, svc Services) {
	registerTenants(api, svc.Tenants)
	registerBilling(api, svc)
}

func registerTenants(api huma.API, svc *app.TenantService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-tenant",
		Method:      http.MethodPost,
		Path:        "/api/v1/tenants",
		Summary:     "Create a new tenant",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *CreateTenantInput) (*CreateTenantOutput, error) {
		tenant, err := svc.Create(ctx, input.Body.CompanyName, input.Body.AdminEmail)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateTenantOutput{Body: toTenantResponse(tenant)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-tenant",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants/{id}",
		Summary:     "Get a tenant by ID",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *GetTenantInput) (*GetTenantOutput, error) {
		tenant, err := svc.GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GetTenantOutput{Body: toTenantResponse(tenant)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tenants",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants",
		Summary:     "List tenants",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *ListTenantsInput) (*ListTenantsOutput, error) {
		filter := domain.ListFilter{
			Limit:  input.Limit,
			Offset: input.Offset,
		}
		if input.Status != "" {
			s := domain.Status(input.Status)
			filter.Status = &s
		}

		tenants, err := svc.List(ctx, filter)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]TenantResponse, len(tenants))
		for i, t := range tenants {
			resp[i] = toTenantResponse(t)
		}
		return &ListTenantsOutput{Body: resp}, nil
	})
}

// toHumaError translates domain errors to Huma HTTP errors. The client-facing
// message is carried in the problem's detail field.
func toHumaError(err error) error {
	if errors.Is(err, domain.ErrTenantNotFound) {
		return huma.Error404NotFound("tenant not found")
	}

	if errors.Is(err, domain.ErrStoreNotConnected) {
		return huma.Error400BadRequest(domain.ErrStoreNotConnected.Error())
	}

	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return huma.Error400BadRequest(vErr.Error())
	}

	var trErr *domain.TransitionError
	if errors.As(err, &trErr) {
		return huma.Error422UnprocessableEntity(trErr.Error())
	}

	var gwErr *domain.GatewayError
	if errors.As(err, &gwErr) {
		if gwErr.Temporary {
			return huma.Error502BadGateway(gwErr.Message)
		}
		return huma.Error400BadRequest(gwErr.Message)
	}

	return huma.Error500InternalServerError("internal server error")
}
