package domain

// EventTypeAccountUpdated is the gateway event emitted when a connected
// account changes.
const EventTypeAccountUpdated = "account.updated"

// GatewayEvent is an authenticated notification from the payment gateway.
// Account fields are only populated for account events.
type GatewayEvent struct {
	ID               string
	Type             string
	AccountID        string
	DetailsSubmitted bool
	ChargesEnabled   bool
	TenantID         string // from account metadata, if present
}

// Activates reports whether the event shows an account able to take charges.
func (e GatewayEvent) Activates() bool {
	return e.Type == EventTypeAccountUpdated && e.DetailsSubmitted && e.ChargesEnabled
}

// NotificationKind identifies a notification template.
type NotificationKind string

const NotificationAccountActivated NotificationKind = "account_activated"

// Notification is a one-off message to a tenant's contact.
type Notification struct {
	Kind        NotificationKind
	TenantID    string
	CompanyName string
	Recipient   string
	FlatFee     int64
	Currency    string
}
