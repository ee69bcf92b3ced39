package app_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/neomorfeo/settle/internal/domain"
)

// --- Store ---

type mockStore struct {
	mu        sync.Mutex
	tenants   map[string]domain.Tenant
	contacts  map[string][]string
	customers map[string]domain.Customer
	events    map[string]string
	writes    int
}

func newMockStore() *mockStore {
	return &mockStore{
		tenants:   make(map[string]domain.Tenant),
		contacts:  make(map[string][]string),
		customers: make(map[string]domain.Customer),
		events:    make(map[string]string),
	}
}

func (m *mockStore) Create(_ context.Context, t domain.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tenants[t.ID] = t
	m.writes++
	return nil
}

func (m *mockStore) GetByID(_ context.Context, id string) (domain.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tenants[id]
	if !ok {
		return domain.Tenant{}, domain.ErrTenantNotFound
	}
	return t, nil
}

func (m *mockStore) GetByConnectAccountID(_ context.Context, accountID string) (domain.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tenants {
		if accountID != "" && t.ConnectAccountID == accountID {
			return t, nil
		}
	}
	return domain.Tenant{}, domain.ErrTenantNotFound
}

func (m *mockStore) List(_ context.Context, _ domain.ListFilter) ([]domain.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Tenant, 0, len(m.tenants))
	for _, t := range m.tenants {
		out = append(out, t)
	}
	return out, nil
}

func (m *mockStore) UpdateBilling(_ context.Context, t domain.Tenant, from domain.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.tenants[t.ID]
	if !ok {
		return domain.ErrTenantNotFound
	}
	if current.Status != from {
		return domain.ErrStaleState
	}
	m.tenants[t.ID] = t
	m.writes++
	return nil
}

func (m *mockStore) AddContact(_ context.Context, c domain.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tenants[c.TenantID]; !ok {
		return domain.ErrTenantNotFound
	}
	m.contacts[c.TenantID] = append(m.contacts[c.TenantID], domain.NormalizeEmail(c.Email))
	m.writes++
	return nil
}

func (m *mockStore) AdminContact(_ context.Context, tenantID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c := m.contacts[tenantID]; len(c) > 0 {
		return c[0], nil
	}
	return "", domain.ErrContactNotFound
}

func (m *mockStore) GetCustomer(_ context.Context, tenantID, email string) (domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[tenantID+"|"+domain.NormalizeEmail(email)]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return c, nil
}

func (m *mockStore) SaveCustomer(_ context.Context, c domain.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers[c.TenantID+"|"+domain.NormalizeEmail(c.Email)] = c
	m.writes++
	return nil
}

func (m *mockStore) Processed(_ context.Context, eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.events[eventID]
	return ok, nil
}

func (m *mockStore) MarkProcessed(_ context.Context, eventID, eventType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[eventID] = eventType
	m.writes++
	return nil
}

func (m *mockStore) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *mockStore) put(t domain.Tenant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tenants[t.ID] = t
}

// --- Gateway ---

type mockGateway struct {
	mu               sync.Mutex
	accounts         int
	links            []string
	existing         map[string]string
	customersCreated []domain.CustomerParams
	lookups          int
	sessions         []domain.SessionParams
	accountParams    []domain.AccountParams
	failWith         error

	// beforeAccount runs inside CreateAccount, before the account id is
	// returned.
	beforeAccount func()
}

func newMockGateway() *mockGateway {
	return &mockGateway{existing: make(map[string]string)}
}

func (g *mockGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.accounts + len(g.links) + len(g.customersCreated) + g.lookups + len(g.sessions)
}

func (g *mockGateway) CreateAccount(_ context.Context, p domain.AccountParams) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWith != nil {
		return "", g.failWith
	}
	if g.beforeAccount != nil {
		g.beforeAccount()
	}
	g.accounts++
	g.accountParams = append(g.accountParams, p)
	return fmt.Sprintf("acct_%d", g.accounts), nil
}

func (g *mockGateway) CreateOnboardingLink(_ context.Context, accountID, refreshURL, returnURL string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.links = append(g.links, refreshURL+" "+returnURL)
	return "https://connect.stripe.test/setup/" + accountID, nil
}

func (g *mockGateway) FindCustomerByEmail(_ context.Context, email string) (string, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lookups++
	id, ok := g.existing[email]
	return id, ok, nil
}

func (g *mockGateway) CreateCustomer(_ context.Context, p domain.CustomerParams) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.customersCreated = append(g.customersCreated, p)
	id := fmt.Sprintf("cus_%d", len(g.customersCreated))
	g.existing[p.Email] = id
	return id, nil
}

func (g *mockGateway) CreateCheckoutSession(_ context.Context, p domain.SessionParams) (domain.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWith != nil {
		return domain.CheckoutSession{}, g.failWith
	}
	g.sessions = append(g.sessions, p)
	id := fmt.Sprintf("cs_%d", len(g.sessions))
	return domain.CheckoutSession{ID: id, URL: "https://checkout.stripe.test/" + id}, nil
}

// --- Verifier ---

// mockVerifier accepts deliveries whose signature equals "valid" and
// returns the queued event.
type mockVerifier struct {
	event domain.GatewayEvent
}

func (v *mockVerifier) Verify(_ []byte, signature string) (domain.GatewayEvent, error) {
	if signature != "valid" {
		return domain.GatewayEvent{}, fmt.Errorf("%w: bad digest", domain.ErrInvalidSignature)
	}
	return v.event, nil
}

// --- Publisher ---

type mockPublisher struct {
	mu            sync.Mutex
	notifications []domain.Notification
	err           error
}

func (p *mockPublisher) Publish(_ context.Context, n domain.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notifications = append(p.notifications, n)
	return p.err
}

func (p *mockPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.notifications)
}

// --- Validator ---

// testValidator walks domain.Transitions directly.
type testValidator struct{}

func (v *testValidator) Apply(_ context.Context, current domain.Status, event domain.Event) (domain.Status, error) {
	for _, t := range domain.Transitions {
		if t.Event == event && t.Src == current {
			return t.Dst, nil
		}
	}
	return "", &domain.TransitionError{Event: event, Current: current}
}

var errGatewayDown = &domain.GatewayError{Op: "create checkout session", Message: "api unavailable", Temporary: true, Err: errors.New("503")}
