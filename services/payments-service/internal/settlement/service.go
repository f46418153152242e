package settlement

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bookora/bookora/services/payments-service/internal/outbox"
	"github.com/bookora/bookora/services/payments-service/internal/storage"
)

// Service encapsulates payment state transitions and the side effects (outbox
// events). Keeping this out of HTTP handlers makes it reusable for webhook +
// reconciliation flows.
type Service struct {
	repo       *storage.Repository
	outboxRepo *outbox.Repository
}

func New(repo *storage.Repository, outboxRepo *outbox.Repository) *Service {
	return &Service{repo: repo, outboxRepo: outboxRepo}
}

// ApplySucceeded settles the payment and emits payments.deposit.succeeded.v1.
// Payments already in a terminal state are left untouched, so provider replays
// and reconcile passes fan out at most one event.
func (s *Service) ApplySucceeded(ctx context.Context, tx pgx.Tx, paymentID string, settledAt time.Time) error {
	p, err := s.repo.GetPaymentForUpdate(ctx, tx, paymentID)
	if err != nil {
		return err
	}
	if terminal(p.Status) {
		return nil
	}

	if err := s.repo.MarkSucceeded(ctx, tx, p.ID, settledAt); err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]any{
		"payment_id":     p.ID,
		"appointment_id": p.AppointmentID,
		"business_id":    p.BusinessID,
		"amount_cents":   p.AmountCents,
		"currency":       p.Currency,
		"settled_at":     settledAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return s.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "payment",
		AggregateID:   p.ID,
		EventType:     "payments.deposit.succeeded.v1",
		Payload:       payload,
	})
}

// ApplyFailed settles the payment as failed (or expired) and emits
// payments.deposit.failed.v1.
func (s *Service) ApplyFailed(ctx context.Context, tx pgx.Tx, paymentID string, status string, reason string, settledAt time.Time) error {
	p, err := s.repo.GetPaymentForUpdate(ctx, tx, paymentID)
	if err != nil {
		return err
	}
	if terminal(p.Status) {
		return nil
	}

	if err := s.repo.MarkFailed(ctx, tx, p.ID, status, reason, settledAt); err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]any{
		"payment_id":     p.ID,
		"appointment_id": p.AppointmentID,
		"business_id":    p.BusinessID,
		"amount_cents":   p.AmountCents,
		"currency":       p.Currency,
		"reason":         reason,
		"settled_at":     settledAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return s.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "payment",
		AggregateID:   p.ID,
		EventType:     "payments.deposit.failed.v1",
		Payload:       payload,
	})
}

func terminal(status string) bool {
	switch status {
	case storage.StatusSucceeded, storage.StatusFailed, storage.StatusExpired:
		return true
	}
	return false
}
