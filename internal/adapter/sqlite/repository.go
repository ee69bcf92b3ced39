package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/neomorfeo/settle/internal/domain"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // Register SQLite driver.
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store implements the tenant, customer and webhook event ports using SQLite.
type Store struct {
	db *sql.DB
}

var (
	_ domain.TenantRepository   = (*Store)(nil)
	_ domain.CustomerRepository = (*Store)(nil)
	_ domain.WebhookEventLog    = (*Store)(nil)
)

// New opens a SQLite database, runs migrations, and returns a ready store.
func New(dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// An in-memory database exists per connection.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	// Enable foreign keys (off by default in SQLite).
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	return NewFromDB(db)
}

// NewFromDB wraps an existing database connection, runs migrations, and returns a ready store.
// Use this when the *sql.DB has been pre-configured (e.g., with otelsql instrumentation).
func NewFromDB(db *sql.DB) (*Store, error) {
	if err := runMigrations(db); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

const timeFormat = "2006-01-02T15:04:05Z"

const tenantColumns = `id, company_name, stripe_connect_account_id, billing_status, created_at, updated_at`

// --- Tenants ---

func (s *Store) Create(ctx context.Context, t domain.Tenant) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tenants (`+tenantColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.CompanyName, nullable(t.ConnectAccountID), string(t.Status),
		t.CreatedAt.Format(timeFormat),
		t.UpdatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting tenant: %w", err)
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (domain.Tenant, error) {
	return scanTenant(s.db.QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = ?`, id,
	))
}

func (s *Store) GetByConnectAccountID(ctx context.Context, accountID string) (domain.Tenant, error) {
	if accountID == "" {
		return domain.Tenant{}, domain.ErrTenantNotFound
	}
	return scanTenant(s.db.QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE stripe_connect_account_id = ?`, accountID,
	))
}

func (s *Store) List(ctx context.Context, filter domain.ListFilter) ([]domain.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants`
	var args []any

	if filter.Status != nil {
		query += ` WHERE billing_status = ?`
		args = append(args, string(*filter.Status))
	}

	query += ` ORDER BY created_at DESC, id`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	} else if filter.Offset > 0 {
		query += ` LIMIT -1`
	}

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tenants: %w", err)
	}
	defer rows.Close()

	var tenants []domain.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}

	return tenants, rows.Err()
}

func (s *Store) UpdateBilling(ctx context.Context, t domain.Tenant, from domain.Status) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE tenants SET stripe_connect_account_id = ?, billing_status = ?, updated_at = ?
		 WHERE id = ? AND billing_status = ?`,
		nullable(t.ConnectAccountID), string(t.Status),
		time.Now().UTC().Format(timeFormat), t.ID, string(from),
	)
	if err != nil {
		return fmt.Errorf("updating tenant billing: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	// Distinguish a missing tenant from one whose status moved underneath us.
	if _, err := s.GetByID(ctx, t.ID); err != nil {
		return err
	}
	return domain.ErrStaleState
}

func (s *Store) AddContact(ctx context.Context, c domain.Contact) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tenant_contacts (tenant_id, email, role, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (tenant_id, email, role) DO NOTHING`,
		c.TenantID, domain.NormalizeEmail(c.Email), string(c.Role),
		time.Now().UTC().Format(timeFormat),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrTenantNotFound
		}
		return fmt.Errorf("inserting contact: %w", err)
	}
	return nil
}

func (s *Store) AdminContact(ctx context.Context, tenantID string) (string, error) {
	var email string
	err := s.db.QueryRowContext(ctx,
		`SELECT email FROM tenant_contacts WHERE tenant_id = ? AND role = ? ORDER BY id LIMIT 1`,
		tenantID, string(domain.RoleAdmin),
	).Scan(&email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrContactNotFound
		}
		return "", fmt.Errorf("querying admin contact: %w", err)
	}
	return email, nil
}

// --- Customers ---

func (s *Store) GetCustomer(ctx context.Context, tenantID, email string) (domain.Customer, error) {
	var c domain.Customer
	var customerID sql.NullString
	var updatedAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT tenant_id, email, name, stripe_customer_id, updated_at
		 FROM customers WHERE tenant_id = ? AND email = ?`,
		tenantID, domain.NormalizeEmail(email),
	).Scan(&c.TenantID, &c.Email, &c.Name, &customerID, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("scanning customer: %w", err)
	}

	c.StripeCustomerID = customerID.String
	c.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)
	return c, nil
}

// SaveCustomer upserts on (tenant, email). A stored gateway id is never
// replaced by an empty one.
func (s *Store) SaveCustomer(ctx context.Context, c domain.Customer) error {
	now := time.Now().UTC().Format(timeFormat)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO customers (tenant_id, email, name, stripe_customer_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (tenant_id, email) DO UPDATE SET
		     name = CASE WHEN excluded.name <> '' THEN excluded.name ELSE customers.name END,
		     stripe_customer_id = COALESCE(excluded.stripe_customer_id, customers.stripe_customer_id),
		     updated_at = excluded.updated_at`,
		c.TenantID, domain.NormalizeEmail(c.Email), c.Name, nullable(c.StripeCustomerID), now, now,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrTenantNotFound
		}
		return fmt.Errorf("saving customer: %w", err)
	}
	return nil
}

// --- Webhook events ---

func (s *Store) Processed(ctx context.Context, eventID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM webhook_events WHERE id = ?`, eventID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking webhook event: %w", err)
	}
	return n > 0, nil
}

func (s *Store) MarkProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO webhook_events (id, type, processed_at) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO NOTHING`,
		eventID, eventType, time.Now().UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("recording webhook event: %w", err)
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTenant(row scanner) (domain.Tenant, error) {
	var t domain.Tenant
	var accountID sql.NullString
	var status, createdAt, updatedAt string

	err := row.Scan(&t.ID, &t.CompanyName, &accountID, &status, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Tenant{}, domain.ErrTenantNotFound
		}
		return domain.Tenant{}, fmt.Errorf("scanning tenant: %w", err)
	}

	t.ConnectAccountID = accountID.String
	t.Status = domain.Status(status)
	t.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	t.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)

	return t, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// isForeignKeyViolation checks if a SQLite error is a FOREIGN KEY constraint violation.
func isForeignKeyViolation(err error) bool {
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
