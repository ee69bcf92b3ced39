package river

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/settle/internal/adapter/email"
	"github.com/neomorfeo/settle/internal/domain"
)

// NotificationWorker renders queued notifications and hands them to the
// email sender. A send failure is returned so River retries the job.
type NotificationWorker struct {
	river.WorkerDefaults[NotificationJobArgs]

	sender email.Sender
	from   string
}

// NewNotificationWorker creates a worker that sends mail from the given
// address.
func NewNotificationWorker(sender email.Sender, from string) *NotificationWorker {
	return &NotificationWorker{sender: sender, from: from}
}

// Work delivers a single notification.
func (w *NotificationWorker) Work(ctx context.Context, job *river.Job[NotificationJobArgs]) error {
	n := job.Args.notification()

	var msg email.Message
	switch n.Kind {
	case domain.NotificationAccountActivated:
		subject, html, text, err := email.RenderActivated(n)
		if err != nil {
			return river.JobCancel(err)
		}
		msg = email.Message{From: w.from, To: n.Recipient, Subject: subject, HTML: html, Text: text}
	default:
		return river.JobCancel(fmt.Errorf("unknown notification kind %q", n.Kind))
	}

	if err := w.sender.Send(ctx, msg); err != nil {
		slog.WarnContext(ctx, "notification delivery failed",
			"kind", n.Kind,
			"tenant_id", n.TenantID,
			"job_id", job.ID,
			"attempt", job.Attempt,
			"error", err,
		)
		return err
	}

	slog.InfoContext(ctx, "notification delivered",
		"kind", n.Kind,
		"tenant_id", n.TenantID,
		"recipient", n.Recipient,
		"job_id", job.ID,
	)
	return nil
}
