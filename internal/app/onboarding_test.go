package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/neomorfeo/settle/internal/app"
	"github.com/neomorfeo/settle/internal/domain"
)

func newOnboarding(store *mockStore, gw *mockGateway) *app.OnboardingService {
	return app.NewOnboardingService(store, gw, &testValidator{}, "https://pos.example.com")
}

func TestBeginOnboarding_CreatesAccount(t *testing.T) {
	store := newMockStore()
	store.put(domain.NewTenant("t-1", "Bright Cleaners"))
	gw := newMockGateway()

	got, err := newOnboarding(store, gw).BeginOnboarding(context.Background(), "t-1", "https://shop.example.com/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.AccountID != "acct_1" {
		t.Errorf("AccountID = %q, want %q", got.AccountID, "acct_1")
	}
	if !strings.HasSuffix(got.URL, "/acct_1") {
		t.Errorf("URL = %q, want onboarding link for acct_1", got.URL)
	}

	stored, _ := store.GetByID(context.Background(), "t-1")
	if stored.ConnectAccountID != "acct_1" {
		t.Errorf("stored ConnectAccountID = %q, want %q", stored.ConnectAccountID, "acct_1")
	}
	if stored.Status != domain.StatusPending {
		t.Errorf("stored Status = %q, want %q", stored.Status, domain.StatusPending)
	}

	if len(gw.accountParams) != 1 || gw.accountParams[0].TenantID != "t-1" {
		t.Fatalf("account params = %+v, want tenant t-1 tagged", gw.accountParams)
	}
	if gw.accountParams[0].IdempotencyKey == "" {
		t.Error("account creation should carry an idempotency key")
	}

	want := "https://shop.example.com/settings/payments?onboarding=refresh https://shop.example.com/settings/payments?onboarding=complete"
	if len(gw.links) != 1 || gw.links[0] != want {
		t.Errorf("links = %v, want [%s]", gw.links, want)
	}
}

func TestBeginOnboarding_ReusesExistingAccount(t *testing.T) {
	store := newMockStore()
	store.put(domain.NewTenant("t-1", "Acme"))
	gw := newMockGateway()
	svc := newOnboarding(store, gw)

	first, err := svc.BeginOnboarding(context.Background(), "t-1", "")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := svc.BeginOnboarding(context.Background(), "t-1", "")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if gw.accounts != 1 {
		t.Errorf("accounts created = %d, want 1", gw.accounts)
	}
	if first.AccountID != second.AccountID {
		t.Errorf("account changed between calls: %q vs %q", first.AccountID, second.AccountID)
	}
	if len(gw.links) != 2 {
		t.Errorf("links = %d, want a fresh link per call", len(gw.links))
	}
	if !strings.HasPrefix(gw.links[0], "https://pos.example.com/") {
		t.Errorf("link = %q, want fallback public URL", gw.links[0])
	}
}

func TestBeginOnboarding_TagsAdminEmail(t *testing.T) {
	store := newMockStore()
	store.put(domain.NewTenant("t-1", "Acme"))
	_ = store.AddContact(context.Background(), domain.Contact{TenantID: "t-1", Email: "boss@acme.test", Role: domain.RoleAdmin})
	gw := newMockGateway()

	if _, err := newOnboarding(store, gw).BeginOnboarding(context.Background(), "t-1", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gw.accountParams[0].Email != "boss@acme.test" {
		t.Errorf("Email = %q, want admin contact", gw.accountParams[0].Email)
	}
}

func TestBeginOnboarding_NotFound(t *testing.T) {
	gw := newMockGateway()
	_, err := newOnboarding(newMockStore(), gw).BeginOnboarding(context.Background(), "missing", "")
	if !errors.Is(err, domain.ErrTenantNotFound) {
		t.Errorf("expected ErrTenantNotFound, got %v", err)
	}
	if gw.calls() != 0 {
		t.Errorf("gateway calls = %d, want 0", gw.calls())
	}
}

func TestBeginOnboarding_GatewayFailure(t *testing.T) {
	store := newMockStore()
	store.put(domain.NewTenant("t-1", "Acme"))
	gw := newMockGateway()
	gw.failWith = &domain.GatewayError{Op: "create account", Message: "platform not enabled for Connect"}

	_, err := newOnboarding(store, gw).BeginOnboarding(context.Background(), "t-1", "")
	var gwErr *domain.GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected GatewayError, got %v", err)
	}
	if gwErr.Message != "platform not enabled for Connect" {
		t.Errorf("Message = %q", gwErr.Message)
	}

	stored, _ := store.GetByID(context.Background(), "t-1")
	if stored.Connected() {
		t.Error("tenant should stay unconnected after a failed account creation")
	}
}

func TestBeginOnboarding_ConcurrentConnectReusesWinner(t *testing.T) {
	store := newMockStore()
	store.put(domain.NewTenant("t-1", "Acme"))
	gw := newMockGateway()
	gw.beforeAccount = func() {
		// Another request stored the same account while this one waited
		// on the gateway.
		winner := domain.NewTenant("t-1", "Acme")
		winner.ConnectAccountID = "acct_1"
		winner.Status = domain.StatusPending
		store.put(winner)
	}

	got, err := newOnboarding(store, gw).BeginOnboarding(context.Background(), "t-1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AccountID != "acct_1" {
		t.Errorf("AccountID = %q, want %q", got.AccountID, "acct_1")
	}
	if len(gw.links) != 1 {
		t.Errorf("links = %v, want one onboarding link", gw.links)
	}

	stored, _ := store.GetByID(context.Background(), "t-1")
	if stored.Status != domain.StatusPending || stored.ConnectAccountID != "acct_1" {
		t.Errorf("stored = %+v, want pending with acct_1", stored)
	}
}
