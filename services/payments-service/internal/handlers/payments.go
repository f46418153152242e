package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bookora/bookora/libs/httpx"
	"github.com/bookora/bookora/services/payments-service/internal/settlement"
	"github.com/bookora/bookora/services/payments-service/internal/storage"
)

type Handler struct {
	repo                   *storage.Repository
	settle                 *settlement.Service
	logger                 *slog.Logger
	stripeWebhookSecret    string
	stripeWebhookTolerance time.Duration
}

type Config struct {
	StripeWebhookSecret           string
	StripeWebhookToleranceSeconds int
}

func New(repo *storage.Repository, settle *settlement.Service, logger *slog.Logger, cfg Config) *Handler {
	tolSeconds := cfg.StripeWebhookToleranceSeconds
	if tolSeconds <= 0 {
		tolSeconds = 300
	}
	return &Handler{
		repo:                   repo,
		settle:                 settle,
		logger:                 logger,
		stripeWebhookSecret:    strings.TrimSpace(cfg.StripeWebhookSecret),
		stripeWebhookTolerance: time.Duration(tolSeconds) * time.Second,
	}
}

type paymentResponse struct {
	PaymentID     string `json:"payment_id"`
	AppointmentID string `json:"appointment_id"`
	BusinessID    string `json:"business_id"`
	AmountCents   int64  `json:"amount_cents"`
	Currency      string `json:"currency"`
	Status        string `json:"status"`
	CheckoutURL   string `json:"checkout_url,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
	SettledAt     string `json:"settled_at,omitempty"`
}

// GetPayment is public by appointment id: the booking confirmation page polls
// it to pick up the checkout URL. Amounts and status are not sensitive.
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	appointmentID := strings.TrimSpace(r.URL.Query().Get("appointment_id"))
	if appointmentID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "appointment_id is required")
		return
	}

	p, err := h.repo.GetPaymentByAppointment(r.Context(), appointmentID)
	if err != nil {
		if storage.IsNotFound(err) {
			httpx.WriteError(w, http.StatusNotFound, "payment not found")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "failed to load payment")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toResponse(p))
}

type localWebhookRequest struct {
	EventID   string `json:"event_id"`
	Type      string `json:"type"` // deposit.succeeded | deposit.failed
	PaymentID string `json:"payment_id"`
	Reason    string `json:"reason"`
}

// LocalWebhook simulates provider settlement in environments without Stripe
// credentials. Only the admin role may call it.
func (h *Handler) LocalWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if r.Header.Get("X-Role") != "admin" {
		httpx.WriteError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req localWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.EventID = strings.TrimSpace(req.EventID)
	req.Type = strings.TrimSpace(req.Type)
	req.PaymentID = strings.TrimSpace(req.PaymentID)
	if req.EventID == "" || req.Type == "" || req.PaymentID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "event_id, type and payment_id are required")
		return
	}

	payloadRaw, _ := json.Marshal(req)

	tx, err := h.repo.Begin(r.Context())
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer func() { _ = tx.Rollback(r.Context()) }()

	if err := h.repo.InsertProviderEvent(r.Context(), tx, storage.ProviderEvent{
		Provider:        "local",
		ProviderEventID: req.EventID,
		EventType:       req.Type,
		Payload:         payloadRaw,
	}); err != nil {
		if errors.Is(err, storage.ErrDuplicateProviderEvent) {
			httpx.WriteJSON(w, http.StatusOK, map[string]any{"status": "duplicate"})
			_ = tx.Commit(r.Context())
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "failed to record provider event")
		return
	}

	now := time.Now().UTC()
	switch req.Type {
	case "deposit.succeeded":
		err = h.settle.ApplySucceeded(r.Context(), tx, req.PaymentID, now)
	case "deposit.failed":
		reason := strings.TrimSpace(req.Reason)
		if reason == "" {
			reason = "payment failed"
		}
		err = h.settle.ApplyFailed(r.Context(), tx, req.PaymentID, storage.StatusFailed, reason, now)
	default:
		httpx.WriteError(w, http.StatusBadRequest, "unsupported type")
		return
	}
	if err != nil {
		if storage.IsNotFound(err) {
			httpx.WriteError(w, http.StatusNotFound, "payment not found")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "failed to settle payment")
		return
	}

	if err := tx.Commit(r.Context()); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to commit")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func toResponse(p storage.Payment) paymentResponse {
	resp := paymentResponse{
		PaymentID:     p.ID,
		AppointmentID: p.AppointmentID,
		BusinessID:    p.BusinessID,
		AmountCents:   p.AmountCents,
		Currency:      p.Currency,
		Status:        p.Status,
		CheckoutURL:   p.CheckoutURL,
		FailureReason: p.FailureReason,
	}
	if p.SettledAt != nil {
		resp.SettledAt = p.SettledAt.UTC().Format(time.RFC3339)
	}
	return resp
}
