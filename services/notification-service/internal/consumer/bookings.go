package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/bookora/bookora/libs/db"
	"github.com/bookora/bookora/services/notification-service/internal/email"
	"github.com/bookora/bookora/services/notification-service/internal/outbox"
	"github.com/bookora/bookora/services/notification-service/internal/sms"
	"github.com/bookora/bookora/services/notification-service/internal/storage"
	"github.com/bookora/bookora/services/notification-service/internal/templates"
)

// BookingsHandler turns booking lifecycle events into customer emails and SMS.
type BookingsHandler struct {
	pool        *db.Pool
	repo        *storage.Repository
	outboxRepo  *outbox.Repository
	emailSender email.Sender
	emailID     string
	smsSender   sms.Sender
	logger      *slog.Logger
}

func NewBookingsHandler(
	pool *db.Pool,
	repo *storage.Repository,
	outboxRepo *outbox.Repository,
	emailSender email.Sender,
	smsSender sms.Sender,
	logger *slog.Logger,
) *BookingsHandler {
	return &BookingsHandler{
		pool:        pool,
		repo:        repo,
		outboxRepo:  outboxRepo,
		emailSender: emailSender,
		emailID:     "smtp",
		smsSender:   smsSender,
		logger:      logger,
	}
}

type bookingEvent struct {
	AppointmentID string `json:"appointment_id"`
	BusinessID    string `json:"business_id"`
	ServiceID     string `json:"service_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Reason        string `json:"reason"`
}

func (h *BookingsHandler) Confirmed(ctx context.Context, msg kafka.Message) error {
	return h.handle(ctx, msg, "confirmation")
}

func (h *BookingsHandler) Cancelled(ctx context.Context, msg kafka.Message) error {
	return h.handle(ctx, msg, "cancellation")
}

func (h *BookingsHandler) handle(ctx context.Context, msg kafka.Message, kind string) error {
	var evt bookingEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		h.logger.Error("invalid booking event payload", "err", err)
		return nil
	}
	if evt.AppointmentID == "" || evt.BusinessID == "" {
		h.logger.Error("missing booking event fields", "kind", kind)
		return nil
	}
	startTime, err := time.Parse(time.RFC3339, evt.StartTime)
	if err != nil {
		h.logger.Error("invalid start_time in booking event", "err", err, "appointment_id", evt.AppointmentID)
		return nil
	}

	data := templates.BookingData{
		CustomerName: evt.CustomerName,
		StartTime:    startTime,
		Reason:       evt.Reason,
	}

	if to := strings.TrimSpace(evt.CustomerEmail); to != "" {
		if err := h.deliverEmail(ctx, evt, kind, to, data); err != nil {
			return err
		}
	}
	if to := strings.TrimSpace(evt.CustomerPhone); to != "" {
		if err := h.deliverSMS(ctx, evt, kind, to, data); err != nil {
			return err
		}
	}
	return nil
}

func (h *BookingsHandler) deliverEmail(ctx context.Context, evt bookingEvent, kind string, to string, data templates.BookingData) error {
	var msg templates.Message
	var err error
	switch kind {
	case "confirmation":
		msg, err = templates.Confirmed(data)
	default:
		msg, err = templates.Cancelled(data)
	}
	if err != nil {
		return fmt.Errorf("render %s email: %w", kind, err)
	}

	sendErr := h.emailSender.Send(to, msg.Subject, msg.Body)
	if sendErr != nil {
		h.logger.Error("email send failed", "err", sendErr, "recipient", to, "appointment_id", evt.AppointmentID)
	}
	return h.record(ctx, evt, kind, "email", to, h.emailID, sendErr)
}

func (h *BookingsHandler) deliverSMS(ctx context.Context, evt bookingEvent, kind string, to string, data templates.BookingData) error {
	var body string
	switch kind {
	case "confirmation":
		body = templates.ConfirmedSMS(data)
	default:
		body = templates.CancelledSMS(data)
	}

	sendErr := h.smsSender.Send(ctx, to, body)
	if sendErr != nil {
		h.logger.Error("sms send failed", "err", sendErr, "recipient", to, "appointment_id", evt.AppointmentID)
	}
	return h.record(ctx, evt, kind, "sms", to, h.smsSender.ProviderID(), sendErr)
}

func (h *BookingsHandler) record(ctx context.Context, evt bookingEvent, kind string, channel string, recipient string, providerID string, sendErr error) error {
	status := "sent"
	if sendErr != nil {
		status = "failed"
	}

	if err := h.repo.Insert(ctx, storage.Notification{
		AppointmentID: evt.AppointmentID,
		BusinessID:    evt.BusinessID,
		Kind:          kind,
		Channel:       channel,
		Recipient:     recipient,
		Payload: map[string]any{
			"service_id": evt.ServiceID,
			"start_time": evt.StartTime,
			"reason":     evt.Reason,
		},
		Status: status,
	}); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}

	tx, err := h.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var eventType string
	var payload []byte
	if sendErr != nil {
		eventType = "notification.failed.v1"
		payload, err = json.Marshal(map[string]any{
			"appointment_id": evt.AppointmentID,
			"business_id":    evt.BusinessID,
			"kind":           kind,
			"channel":        channel,
			"error_reason":   sendErr.Error(),
			"failed_at":      time.Now().UTC().Format(time.RFC3339),
		})
	} else {
		eventType = "notification.sent.v1"
		payload, err = json.Marshal(map[string]any{
			"appointment_id": evt.AppointmentID,
			"business_id":    evt.BusinessID,
			"kind":           kind,
			"channel":        channel,
			"provider_id":    providerID,
			"sent_at":        time.Now().UTC().Format(time.RFC3339),
		})
	}
	if err != nil {
		return err
	}

	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "notification",
		AggregateID:   evt.AppointmentID,
		EventType:     eventType,
		Payload:       payload,
	}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
