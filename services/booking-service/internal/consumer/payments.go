package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/bookora/bookora/services/booking-service/internal/model"
	"github.com/bookora/bookora/services/booking-service/internal/outbox"
	"github.com/bookora/bookora/services/booking-service/internal/storage"
)

// PaymentsHandler applies deposit settlement events to pending appointments:
// a succeeded deposit flips pending_payment to booked, a failed deposit
// cancels the hold and frees the slot.
type PaymentsHandler struct {
	repo       *storage.BookingRepository
	outboxRepo *outbox.Repository
	logger     *slog.Logger
}

func NewPaymentsHandler(repo *storage.BookingRepository, outboxRepo *outbox.Repository, logger *slog.Logger) *PaymentsHandler {
	return &PaymentsHandler{repo: repo, outboxRepo: outboxRepo, logger: logger}
}

type depositEvent struct {
	PaymentID     string `json:"payment_id"`
	AppointmentID string `json:"appointment_id"`
	BusinessID    string `json:"business_id"`
	AmountCents   int64  `json:"amount_cents"`
	Currency      string `json:"currency"`
	Reason        string `json:"reason"`
}

func (h *PaymentsHandler) DepositSucceeded(ctx context.Context, msg kafka.Message) error {
	var evt depositEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		return fmt.Errorf("decode deposit succeeded event: %w", err)
	}
	if evt.AppointmentID == "" || evt.BusinessID == "" {
		h.logger.Warn("deposit succeeded event missing ids; skipping")
		return nil
	}

	tx, err := h.repo.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := h.repo.GetAppointmentForUpdate(ctx, tx, evt.BusinessID, evt.AppointmentID)
	if err != nil {
		if storage.IsNotFound(err) {
			h.logger.Warn("deposit succeeded for unknown appointment", "appointment_id", evt.AppointmentID)
			return nil
		}
		return err
	}
	if appt.Status != model.StatusPendingPayment {
		// Customer cancelled before the payment settled, or a redelivery
		// slipped past the inbox. Either way the slot state stands.
		h.logger.Info("deposit succeeded for non-pending appointment; ignoring",
			"appointment_id", appt.ID, "status", appt.Status)
		return nil
	}

	if err := h.repo.SetStatus(ctx, tx, evt.BusinessID, appt.ID, model.StatusBooked); err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]any{
		"appointment_id": appt.ID,
		"business_id":    appt.BusinessID,
		"staff_id":       appt.StaffID,
		"service_id":     appt.ServiceID,
		"customer_name":  appt.CustomerName,
		"customer_email": appt.CustomerEmail,
		"customer_phone": appt.CustomerPhone,
		"start_time":     appt.StartTime.UTC().Format(time.RFC3339),
		"end_time":       appt.EndTime.UTC().Format(time.RFC3339),
		"payment_id":     evt.PaymentID,
	})
	if err != nil {
		return err
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     "booking.confirmed.v1",
		Payload:       payload,
	}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (h *PaymentsHandler) DepositFailed(ctx context.Context, msg kafka.Message) error {
	var evt depositEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		return fmt.Errorf("decode deposit failed event: %w", err)
	}
	if evt.AppointmentID == "" || evt.BusinessID == "" {
		h.logger.Warn("deposit failed event missing ids; skipping")
		return nil
	}

	tx, err := h.repo.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := h.repo.GetAppointmentForUpdate(ctx, tx, evt.BusinessID, evt.AppointmentID)
	if err != nil {
		if storage.IsNotFound(err) {
			h.logger.Warn("deposit failed for unknown appointment", "appointment_id", evt.AppointmentID)
			return nil
		}
		return err
	}
	if appt.Status != model.StatusPendingPayment {
		h.logger.Info("deposit failed for non-pending appointment; ignoring",
			"appointment_id", appt.ID, "status", appt.Status)
		return nil
	}

	reason := evt.Reason
	if reason == "" {
		reason = "deposit payment failed"
	}
	cancelledAt, err := h.repo.CancelAppointment(ctx, tx, evt.BusinessID, appt.ID, reason)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]any{
		"appointment_id": appt.ID,
		"business_id":    appt.BusinessID,
		"staff_id":       appt.StaffID,
		"service_id":     appt.ServiceID,
		"customer_email": appt.CustomerEmail,
		"customer_phone": appt.CustomerPhone,
		"start_time":     appt.StartTime.UTC().Format(time.RFC3339),
		"end_time":       appt.EndTime.UTC().Format(time.RFC3339),
		"cancelled_at":   cancelledAt.UTC().Format(time.RFC3339),
		"reason":         reason,
	})
	if err != nil {
		return err
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     "booking.cancelled.v1",
		Payload:       payload,
	}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
