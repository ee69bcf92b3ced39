package domain

import "context"

// TenantRepository defines the persistence contract for tenants.
type TenantRepository interface {
	Create(ctx context.Context, tenant Tenant) error
	GetByID(ctx context.Context, id string) (Tenant, error)
	GetByConnectAccountID(ctx context.Context, accountID string) (Tenant, error)
	List(ctx context.Context, filter ListFilter) ([]Tenant, error)
	// UpdateBilling persists the account id and status, provided the stored
	// status still equals from. Otherwise it returns ErrStaleState.
	UpdateBilling(ctx context.Context, tenant Tenant, from Status) error
	AddContact(ctx context.Context, contact Contact) error
	// AdminContact returns the email of the tenant's first admin contact.
	AdminContact(ctx context.Context, tenantID string) (string, error)
}

// ListFilter holds optional criteria for listing tenants.
type ListFilter struct {
	Status *Status
	Limit  int
	Offset int
}

// CustomerRepository stores tenant-scoped gateway customers.
type CustomerRepository interface {
	GetCustomer(ctx context.Context, tenantID, email string) (Customer, error)
	SaveCustomer(ctx context.Context, customer Customer) error
}

// WebhookEventLog remembers gateway events that were fully processed.
type WebhookEventLog interface {
	Processed(ctx context.Context, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, eventID, eventType string) error
}

// PaymentGateway is the external payment processor.
type PaymentGateway interface {
	CreateAccount(ctx context.Context, params AccountParams) (string, error)
	CreateOnboardingLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error)
	FindCustomerByEmail(ctx context.Context, email string) (string, bool, error)
	CreateCustomer(ctx context.Context, params CustomerParams) (string, error)
	CreateCheckoutSession(ctx context.Context, params SessionParams) (CheckoutSession, error)
}

// EventVerifier authenticates and decodes gateway webhook deliveries.
type EventVerifier interface {
	Verify(payload []byte, signature string) (GatewayEvent, error)
}

// NotificationPublisher hands notifications off for delivery.
type NotificationPublisher interface {
	Publish(ctx context.Context, n Notification) error
}

// TransitionValidator applies billing events to a current status.
type TransitionValidator interface {
	Apply(ctx context.Context, current Status, event Event) (Status, error)
}
