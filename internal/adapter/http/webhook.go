package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/neomorfeo/settle/internal/app"
	"github.com/neomorfeo/settle/internal/domain"
)

// WebhookPath is where Stripe delivers Connect account events.
const WebhookPath = "/api/v1/webhooks/stripe"

const webhookBodyLimit = 1 << 20 // 1 MiB

// Ingester applies an authenticated gateway delivery.
type Ingester interface {
	Ingest(ctx context.Context, payload []byte, signature string) (app.IngestResult, error)
}

// WebhookHandler receives Stripe webhooks. It is mounted on chi directly,
// outside Huma, because signature verification needs the raw body.
type WebhookHandler struct {
	ingester Ingester
}

func NewWebhookHandler(ingester Ingester) *WebhookHandler {
	return &WebhookHandler{ingester: ingester}
}

// ServeHTTP answers 400 with a plain-text reason when the delivery cannot be
// authenticated. Every authenticated delivery is acknowledged with 200, even
// if processing failed. Failures are logged.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, webhookBodyLimit)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Webhook Error: failed to read request body", http.StatusBadRequest)
		return
	}

	result, err := h.ingester.Ingest(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	switch {
	case errors.Is(err, domain.ErrInvalidSignature):
		slog.WarnContext(r.Context(), "webhook rejected", "error", err)
		http.Error(w, "Webhook Error: "+err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "webhook processing failed", "error", err)
	default:
		slog.InfoContext(r.Context(), "webhook handled", "result", string(result))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(struct {
		Received bool `json:"received"`
	}{Received: true})
}
