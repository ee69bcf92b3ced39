package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/neomorfeo/settle/internal/domain"
)

// TenantService administers tenants and their contacts.
type TenantService struct {
	repo domain.TenantRepository
}

// NewTenantService creates a service with the given repository.
func NewTenantService(repo domain.TenantRepository) *TenantService {
	return &TenantService{repo: repo}
}

// Create persists a new, unconnected tenant. A non-empty adminEmail is
// registered as the tenant's administrative contact.
func (s *TenantService) Create(ctx context.Context, companyName, adminEmail string) (domain.Tenant, error) {
	if strings.TrimSpace(companyName) == "" {
		return domain.Tenant{}, &domain.ValidationError{Field: "company_name", Reason: "must not be empty"}
	}

	id, err := generateID()
	if err != nil {
		return domain.Tenant{}, fmt.Errorf("generating tenant id: %w", err)
	}

	tenant := domain.NewTenant(id, strings.TrimSpace(companyName))

	if err := s.repo.Create(ctx, tenant); err != nil {
		return domain.Tenant{}, fmt.Errorf("creating tenant: %w", err)
	}

	if adminEmail != "" {
		contact := domain.Contact{TenantID: id, Email: adminEmail, Role: domain.RoleAdmin}
		if err := s.repo.AddContact(ctx, contact); err != nil {
			return domain.Tenant{}, fmt.Errorf("adding admin contact: %w", err)
		}
	}

	return tenant, nil
}

// GetByID returns a tenant by its unique identifier.
func (s *TenantService) GetByID(ctx context.Context, id string) (domain.Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns tenants matching the given filter.
func (s *TenantService) List(ctx context.Context, filter domain.ListFilter) ([]domain.Tenant, error) {
	return s.repo.List(ctx, filter)
}
