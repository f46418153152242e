package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/bookora/bookora/libs/httpx"
	"github.com/bookora/bookora/services/payments-service/internal/storage"
)

// StripeWebhook handles Stripe webhooks (no JWT auth; signature verification
// is the auth). Gateway should expose this path publicly.
func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.stripeWebhookSecret == "" {
		httpx.WriteError(w, http.StatusServiceUnavailable, "stripe webhook not configured")
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	if strings.TrimSpace(sigHeader) == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing Stripe-Signature header")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1 MiB hard cap
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	evt, err := webhook.ConstructEventWithTolerance(body, sigHeader, h.stripeWebhookSecret, h.stripeWebhookTolerance)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid signature")
		return
	}

	occurredAt := time.Unix(evt.Created, 0).UTC()
	evtType := string(evt.Type)
	h.logger.Info("payment provider event received",
		"provider", "stripe",
		"provider_event_id", evt.ID,
		"event_type", evtType,
		"occurred_at", occurredAt.Format(time.RFC3339),
	)

	tx, err := h.repo.Begin(r.Context())
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer func() { _ = tx.Rollback(r.Context()) }()

	// Idempotency: ignore replayed Stripe events.
	if err := h.repo.InsertProviderEvent(r.Context(), tx, storage.ProviderEvent{
		Provider:        "stripe",
		ProviderEventID: evt.ID,
		EventType:       evtType,
		Payload:         body,
	}); err != nil {
		if errors.Is(err, storage.ErrDuplicateProviderEvent) {
			h.logger.Info("payment provider event duplicate ignored", "provider", "stripe", "provider_event_id", evt.ID, "event_type", evtType)
			httpx.WriteJSON(w, http.StatusOK, map[string]any{"status": "duplicate"})
			_ = tx.Commit(r.Context())
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "failed to record provider event")
		return
	}

	switch evtType {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		paymentID, ok := h.paymentIDFromSession(r, evt)
		if !ok {
			break
		}
		if err := h.settle.ApplySucceeded(r.Context(), tx, paymentID, occurredAt); err != nil {
			if storage.IsNotFound(err) {
				h.logger.Warn("stripe: payment not found for session event", "payment_id", paymentID)
				break
			}
			httpx.WriteError(w, http.StatusInternalServerError, "failed to settle payment")
			return
		}

	case "checkout.session.async_payment_failed":
		paymentID, ok := h.paymentIDFromSession(r, evt)
		if !ok {
			break
		}
		if err := h.settle.ApplyFailed(r.Context(), tx, paymentID, storage.StatusFailed, "payment failed", occurredAt); err != nil {
			if storage.IsNotFound(err) {
				break
			}
			httpx.WriteError(w, http.StatusInternalServerError, "failed to settle payment")
			return
		}

	case "checkout.session.expired":
		paymentID, ok := h.paymentIDFromSession(r, evt)
		if !ok {
			break
		}
		if err := h.settle.ApplyFailed(r.Context(), tx, paymentID, storage.StatusExpired, "checkout session expired", occurredAt); err != nil {
			if storage.IsNotFound(err) {
				break
			}
			httpx.WriteError(w, http.StatusInternalServerError, "failed to settle payment")
			return
		}
	}

	if err := tx.Commit(r.Context()); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to commit")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) paymentIDFromSession(r *http.Request, evt stripe.Event) (string, bool) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(evt.Data.Raw, &session); err != nil {
		h.logger.Error("stripe: invalid checkout session payload", "err", err)
		return "", false
	}
	paymentID := strings.TrimSpace(session.Metadata["payment_id"])
	if paymentID == "" {
		h.logger.Warn("stripe: missing payment_id metadata on checkout session", "stripe_session_id", session.ID)
		return "", false
	}
	return paymentID, true
}
