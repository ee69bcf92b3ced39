package domain_test

import (
	"testing"
	"time"

	"github.com/neomorfeo/settle/internal/domain"
)

func TestNewTenant(t *testing.T) {
	before := time.Now().UTC()
	tenant := domain.NewTenant("id-1", "Bright Cleaners")
	after := time.Now().UTC()

	if tenant.ID != "id-1" {
		t.Errorf("ID = %q, want %q", tenant.ID, "id-1")
	}
	if tenant.CompanyName != "Bright Cleaners" {
		t.Errorf("CompanyName = %q, want %q", tenant.CompanyName, "Bright Cleaners")
	}
	if tenant.Status != domain.StatusNotConnected {
		t.Errorf("Status = %q, want %q", tenant.Status, domain.StatusNotConnected)
	}
	if tenant.Connected() {
		t.Error("new tenant should not be connected")
	}
	if tenant.StripeActive() {
		t.Error("new tenant should not be active")
	}
	if tenant.CreatedAt.Before(before) || tenant.CreatedAt.After(after) {
		t.Errorf("CreatedAt = %v, want between %v and %v", tenant.CreatedAt, before, after)
	}
	if tenant.UpdatedAt != tenant.CreatedAt {
		t.Errorf("UpdatedAt should equal CreatedAt on new tenant")
	}
}

func TestTransitions_AllEventsHaveEntries(t *testing.T) {
	events := []domain.Event{
		domain.EventAccountCreated,
		domain.EventChargesEnabled,
	}

	for _, event := range events {
		found := false
		for _, tr := range domain.Transitions {
			if tr.Event == event {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("event %q has no transition defined", event)
		}
	}
}

func TestTransitions_InvalidPaths(t *testing.T) {
	// Activation without an account, and anything leaving active, must not exist.
	invalid := []struct {
		event domain.Event
		src   domain.Status
	}{
		{domain.EventChargesEnabled, domain.StatusNotConnected},
		{domain.EventChargesEnabled, domain.StatusActive},
		{domain.EventAccountCreated, domain.StatusPending},
		{domain.EventAccountCreated, domain.StatusActive},
	}

	for _, tc := range invalid {
		for _, tr := range domain.Transitions {
			if tr.Event == tc.event && tr.Src == tc.src {
				t.Errorf("unexpected transition: %q from %q should not exist", tc.event, tc.src)
			}
		}
	}
}

func TestTransitions_ActiveOnlyAfterAccount(t *testing.T) {
	for _, tr := range domain.Transitions {
		if tr.Dst == domain.StatusActive && tr.Src == domain.StatusNotConnected {
			t.Errorf("transition %q reaches active without an account", tr.Event)
		}
	}
}
