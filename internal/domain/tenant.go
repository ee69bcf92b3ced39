package domain

import "time"

// Status represents the billing readiness of a tenant.
type Status string

const (
	StatusNotConnected Status = "not_connected"
	StatusPending      Status = "pending"
	StatusActive       Status = "active"
)

// Event represents an action that triggers a billing state transition.
type Event string

const (
	EventAccountCreated Event = "account_created"
	EventChargesEnabled Event = "charges_enabled"
)

// Transition defines a valid state change: an event moves a tenant from Src to Dst.
type Transition struct {
	Event Event
	Src   Status
	Dst   Status
}

// Transitions defines all valid state changes in the billing lifecycle.
// This is domain knowledge consumed by the FSM adapter.
var Transitions = []Transition{
	{Event: EventAccountCreated, Src: StatusNotConnected, Dst: StatusPending},
	{Event: EventChargesEnabled, Src: StatusPending, Dst: StatusActive},
}

// Tenant is a business using the platform to take payments through its own
// connected Stripe account.
type Tenant struct {
	ID               string
	CompanyName      string
	ConnectAccountID string
	Status           Status
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewTenant creates a tenant with no connected account.
func NewTenant(id, companyName string) Tenant {
	now := time.Now().UTC()
	return Tenant{
		ID:          id,
		CompanyName: companyName,
		Status:      StatusNotConnected,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Connected reports whether a connected account id is on file.
func (t Tenant) Connected() bool {
	return t.ConnectAccountID != ""
}

// StripeActive reports whether the tenant can accept charges.
func (t Tenant) StripeActive() bool {
	return t.Status == StatusActive
}

// Role of a tenant contact.
type Role string

const RoleAdmin Role = "admin"

// Contact is a person reachable on behalf of a tenant.
type Contact struct {
	TenantID string
	Email    string
	Role     Role
}
