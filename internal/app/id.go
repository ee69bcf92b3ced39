package app

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/neomorfeo/settle/internal/domain"
)

// keySpace namespaces deterministic idempotency keys sent to the gateway.
var keySpace = uuid.MustParse("8f0c2a52-7a41-4e0e-9d3e-5b1f6c1d2e90")

// generateID produces a random tenant identifier.
func generateID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// accountKey is stable per tenant so a retried onboarding reuses the
// account the gateway already created.
func accountKey(tenantID string) string {
	return uuid.NewSHA1(keySpace, []byte("account:"+tenantID)).String()
}

func customerKey(tenantID, email string) string {
	return uuid.NewSHA1(keySpace, []byte("customer:"+tenantID+":"+email)).String()
}

// sessionKey is stable for an order as long as nothing sent to the gateway
// changes. A re-issued checkout with a different customer, amount, reuse
// flag or redirect gets a new key. Without an order every attempt gets a
// fresh key.
func sessionKey(tenantID, orderID string, p domain.SessionParams) string {
	if orderID == "" {
		return uuid.NewString()
	}
	parts := []string{
		"session", tenantID, orderID,
		string(p.Mode),
		strconv.FormatInt(p.Amount, 10),
		p.Currency,
		p.CustomerID,
		strconv.FormatBool(p.OffSession),
		p.SuccessURL,
		p.CancelURL,
	}
	return uuid.NewSHA1(keySpace, []byte(strings.Join(parts, "\x00"))).String()
}
