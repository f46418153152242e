package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"

	"github.com/bookora/bookora/services/payments-service/internal/storage"
)

type DepositConfig struct {
	StripeSecretKey    string
	CheckoutSuccessURL string
	CheckoutCancelURL  string
}

// DepositHandler opens a Stripe Checkout session for each deposit request
// coming off the booking flow.
type DepositHandler struct {
	repo   *storage.Repository
	logger *slog.Logger
	cfg    DepositConfig
}

func NewDepositHandler(repo *storage.Repository, logger *slog.Logger, cfg DepositConfig) *DepositHandler {
	cfg.StripeSecretKey = strings.TrimSpace(cfg.StripeSecretKey)
	return &DepositHandler{repo: repo, logger: logger, cfg: cfg}
}

type depositRequestedEvent struct {
	AppointmentID string `json:"appointment_id"`
	BusinessID    string `json:"business_id"`
	ServiceID     string `json:"service_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	AmountCents   int64  `json:"amount_cents"`
	Currency      string `json:"currency"`
	StartTime     string `json:"start_time"`
}

func (h *DepositHandler) DepositRequested(ctx context.Context, msg kafka.Message) error {
	var evt depositRequestedEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		return fmt.Errorf("decode deposit requested event: %w", err)
	}
	if evt.AppointmentID == "" || evt.BusinessID == "" || evt.AmountCents <= 0 {
		h.logger.Warn("deposit request missing fields, skipping", "appointment_id", evt.AppointmentID)
		return nil
	}
	currency := strings.ToLower(strings.TrimSpace(evt.Currency))
	if currency == "" {
		currency = "usd"
	}

	tx, err := h.repo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	payment, created, err := h.repo.CreatePayment(ctx, tx, storage.Payment{
		ID:            uuid.NewString(),
		AppointmentID: evt.AppointmentID,
		BusinessID:    evt.BusinessID,
		AmountCents:   evt.AmountCents,
		Currency:      currency,
	})
	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	if !created && payment.Status != storage.StatusCreated {
		// Redelivery after the checkout already opened (or settled).
		h.logger.Info("deposit request already handled",
			"payment_id", payment.ID,
			"appointment_id", payment.AppointmentID,
			"status", payment.Status,
		)
		return tx.Commit(ctx)
	}

	if h.cfg.StripeSecretKey == "" {
		// Local mode: the payment stays open and settles through the local
		// webhook (tools/stripe-webhook-sim).
		h.logger.Warn("stripe not configured, payment left open for local settlement",
			"payment_id", payment.ID,
			"appointment_id", payment.AppointmentID,
		)
		return tx.Commit(ctx)
	}

	stripe.Key = h.cfg.StripeSecretKey

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(h.cfg.CheckoutSuccessURL),
		CancelURL:         stripe.String(h.cfg.CheckoutCancelURL),
		ClientReferenceID: stripe.String(payment.AppointmentID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(payment.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Booking deposit"),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{
			"payment_id":     payment.ID,
			"appointment_id": payment.AppointmentID,
			"business_id":    payment.BusinessID,
		},
	}
	if evt.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(evt.CustomerEmail)
	}
	// Stripe-level idempotency keyed on the payment row: a retried message
	// reuses the same checkout session instead of opening another.
	params.IdempotencyKey = stripe.String("deposit:" + payment.ID)

	sess, err := checkoutsession.New(params)
	if err != nil {
		return fmt.Errorf("create checkout session: %w", err)
	}

	if err := h.repo.MarkCheckoutPending(ctx, tx, payment.ID, sess.ID, sess.URL); err != nil {
		return fmt.Errorf("mark checkout pending: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	h.logger.Info("deposit checkout opened",
		"payment_id", payment.ID,
		"appointment_id", payment.AppointmentID,
		"stripe_session_id", sess.ID,
		"amount_cents", payment.AmountCents,
		"currency", currency,
		"start_time", evt.StartTime,
		"opened_at", time.Now().UTC().Format(time.RFC3339),
	)
	return nil
}
