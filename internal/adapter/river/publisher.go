package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/settle/internal/domain"
)

// Compile-time check: Publisher implements domain.NotificationPublisher.
var _ domain.NotificationPublisher = (*Publisher)(nil)

// NotificationJobArgs carries a notification snapshot to the worker. It holds
// everything needed to render the message, so the worker never queries the
// database.
type NotificationJobArgs struct {
	Kind        string `json:"kind"`
	TenantID    string `json:"tenant_id"`
	CompanyName string `json:"company_name"`
	Recipient   string `json:"recipient"`
	FlatFee     int64  `json:"flat_fee"`
	Currency    string `json:"currency"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (NotificationJobArgs) Kind() string { return "notification.send" }

// InsertOpts caps delivery retries and collapses duplicate enqueues of the
// same notice for a tenant.
func (NotificationJobArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		MaxAttempts: 5,
		UniqueOpts:  river.UniqueOpts{ByArgs: true},
	}
}

func (a NotificationJobArgs) notification() domain.Notification {
	return domain.Notification{
		Kind:        domain.NotificationKind(a.Kind),
		TenantID:    a.TenantID,
		CompanyName: a.CompanyName,
		Recipient:   a.Recipient,
		FlatFee:     a.FlatFee,
		Currency:    a.Currency,
	}
}

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher implements domain.NotificationPublisher by enqueuing River jobs.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish enqueues a notification for asynchronous delivery.
func (p *Publisher) Publish(ctx context.Context, n domain.Notification) error {
	_, err := p.client.Insert(ctx, NotificationJobArgs{
		Kind:        string(n.Kind),
		TenantID:    n.TenantID,
		CompanyName: n.CompanyName,
		Recipient:   n.Recipient,
		FlatFee:     n.FlatFee,
		Currency:    n.Currency,
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing notification job: %w", err)
	}
	return nil
}
