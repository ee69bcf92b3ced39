package stripe

import (
	"encoding/json"
	"fmt"

	stripelib "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/neomorfeo/settle/internal/domain"
)

// Verifier authenticates Stripe webhook deliveries with the endpoint's
// signing secret.
type Verifier struct {
	secret string
}

// Compile-time check: Verifier implements domain.EventVerifier.
var _ domain.EventVerifier = (*Verifier)(nil)

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

// Verify checks the Stripe-Signature header against the raw payload and
// decodes the event. Signature failures wrap domain.ErrInvalidSignature.
func (v *Verifier) Verify(payload []byte, signature string) (domain.GatewayEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return domain.GatewayEvent{}, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}

	out := domain.GatewayEvent{
		ID:        event.ID,
		Type:      string(event.Type),
		AccountID: event.Account,
	}
	if out.Type != domain.EventTypeAccountUpdated || event.Data == nil {
		return out, nil
	}

	var acct stripelib.Account
	if err := json.Unmarshal(event.Data.Raw, &acct); err != nil {
		return domain.GatewayEvent{}, fmt.Errorf("decode account: %w", err)
	}
	if acct.ID != "" {
		out.AccountID = acct.ID
	}
	out.DetailsSubmitted = acct.DetailsSubmitted
	out.ChargesEnabled = acct.ChargesEnabled
	out.TenantID = acct.Metadata["tenant_id"]
	return out, nil
}
