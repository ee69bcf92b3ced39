package domain

import (
	"strings"
	"time"
)

// Customer is a payer of a tenant, identified by email within that tenant.
type Customer struct {
	TenantID         string
	Email            string
	Name             string
	StripeCustomerID string
	UpdatedAt        time.Time
}

// NormalizeEmail returns the canonical form used to key customers.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
