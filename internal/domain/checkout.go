package domain

// CheckoutMode selects what a hosted checkout page does.
type CheckoutMode string

const (
	// ModePayment charges the customer now.
	ModePayment CheckoutMode = "payment"
	// ModeSetup stores a card for later off-session charges without charging.
	ModeSetup CheckoutMode = "setup"
)

// RecurringNone is the recurring value meaning a one-off payment.
const RecurringNone = "none"

// CheckoutRequest is a request to take a payment on behalf of a tenant.
type CheckoutRequest struct {
	TenantID     string
	Amount       int64 // minor units
	Email        string
	CustomerName string
	Recurring    string
	OrderID      string
	SuccessURL   string
	CancelURL    string
	Origin       string
}

// OffSession reports whether the payment method should be kept for reuse.
func (r CheckoutRequest) OffSession() bool {
	return r.Recurring != "" && r.Recurring != RecurringNone
}

// SessionParams is everything the gateway needs to open a checkout session.
type SessionParams struct {
	Mode           CheckoutMode
	Amount         int64
	Currency       string
	PlatformFee    int64
	Destination    string
	CustomerID     string
	OffSession     bool
	Description    string
	SuccessURL     string
	CancelURL      string
	Metadata       map[string]string
	IdempotencyKey string
}

// BuildSessionParams derives gateway parameters for a checkout request.
// A zero amount becomes a setup session with no fee and no transfer.
func BuildSessionParams(req CheckoutRequest, fees FeeSchedule, destination, customerID string) SessionParams {
	p := SessionParams{
		Mode:       ModeSetup,
		Currency:   fees.Currency,
		CustomerID: customerID,
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
		Metadata: map[string]string{
			"tenant_id": req.TenantID,
			"order_id":  req.OrderID,
		},
	}
	if req.Amount == 0 {
		return p
	}

	p.Mode = ModePayment
	p.Amount = req.Amount
	p.PlatformFee = fees.PlatformFee(req.Amount)
	p.Destination = destination
	p.OffSession = req.OffSession()
	p.Description = "Order payment"
	if req.OrderID != "" {
		p.Description = "Order " + req.OrderID
	}
	return p
}

// CheckoutSession is a hosted checkout page created at the gateway.
type CheckoutSession struct {
	ID  string
	URL string
}

// AccountParams describes a connected account to create for a tenant.
type AccountParams struct {
	TenantID       string
	CompanyName    string
	Email          string
	IdempotencyKey string
}

// CustomerParams describes a gateway customer to create.
type CustomerParams struct {
	TenantID       string
	Email          string
	Name           string
	IdempotencyKey string
}

// Onboarding is the result of starting (or resuming) account onboarding.
type Onboarding struct {
	URL       string
	AccountID string
}
