package storage

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bookora/bookora/libs/db"
)

const (
	StatusCreated         = "created"
	StatusCheckoutPending = "checkout_pending"
	StatusSucceeded       = "succeeded"
	StatusFailed          = "failed"
	StatusExpired         = "expired"
)

type Payment struct {
	ID              string
	AppointmentID   string
	BusinessID      string
	AmountCents     int64
	Currency        string
	Status          string
	StripeSessionID string
	CheckoutURL     string
	FailureReason   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	SettledAt       *time.Time
}

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// CreatePayment inserts one payment per appointment. A redelivered request
// event lands on the existing row, so the caller sees the prior state instead
// of opening a second checkout.
func (r *Repository) CreatePayment(ctx context.Context, tx pgx.Tx, p Payment) (Payment, bool, error) {
	tag, err := tx.Exec(ctx, `
		INSERT INTO payments (id, appointment_id, business_id, amount_cents, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (appointment_id) DO NOTHING
	`, p.ID, p.AppointmentID, p.BusinessID, p.AmountCents, p.Currency, StatusCreated)
	if err != nil {
		return Payment{}, false, err
	}
	if tag.RowsAffected() == 0 {
		existing, err := r.getForUpdateBy(ctx, tx, "appointment_id", p.AppointmentID)
		if err != nil {
			return Payment{}, false, err
		}
		return existing, false, nil
	}
	p.Status = StatusCreated
	return p, true, nil
}

func (r *Repository) GetPaymentForUpdate(ctx context.Context, tx pgx.Tx, id string) (Payment, error) {
	return r.getForUpdateBy(ctx, tx, "id", id)
}

func (r *Repository) GetPaymentBySessionForUpdate(ctx context.Context, tx pgx.Tx, stripeSessionID string) (Payment, error) {
	return r.getForUpdateBy(ctx, tx, "stripe_session_id", stripeSessionID)
}

func (r *Repository) getForUpdateBy(ctx context.Context, tx pgx.Tx, column string, value string) (Payment, error) {
	var p Payment
	err := tx.QueryRow(ctx, `
		SELECT id::text, appointment_id::text, business_id::text, amount_cents, currency, status,
		       COALESCE(stripe_session_id, ''), COALESCE(checkout_url, ''), COALESCE(failure_reason, ''),
		       created_at, updated_at, settled_at
		FROM payments
		WHERE `+column+` = $1
		FOR UPDATE
	`, value).Scan(
		&p.ID, &p.AppointmentID, &p.BusinessID, &p.AmountCents, &p.Currency, &p.Status,
		&p.StripeSessionID, &p.CheckoutURL, &p.FailureReason,
		&p.CreatedAt, &p.UpdatedAt, &p.SettledAt,
	)
	if err != nil {
		return Payment{}, err
	}
	return p, nil
}

func (r *Repository) GetPayment(ctx context.Context, id string) (Payment, error) {
	var p Payment
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, appointment_id::text, business_id::text, amount_cents, currency, status,
		       COALESCE(stripe_session_id, ''), COALESCE(checkout_url, ''), COALESCE(failure_reason, ''),
		       created_at, updated_at, settled_at
		FROM payments
		WHERE id = $1
	`, id).Scan(
		&p.ID, &p.AppointmentID, &p.BusinessID, &p.AmountCents, &p.Currency, &p.Status,
		&p.StripeSessionID, &p.CheckoutURL, &p.FailureReason,
		&p.CreatedAt, &p.UpdatedAt, &p.SettledAt,
	)
	if err != nil {
		return Payment{}, err
	}
	return p, nil
}

func (r *Repository) GetPaymentByAppointment(ctx context.Context, appointmentID string) (Payment, error) {
	var p Payment
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, appointment_id::text, business_id::text, amount_cents, currency, status,
		       COALESCE(stripe_session_id, ''), COALESCE(checkout_url, ''), COALESCE(failure_reason, ''),
		       created_at, updated_at, settled_at
		FROM payments
		WHERE appointment_id = $1
	`, appointmentID).Scan(
		&p.ID, &p.AppointmentID, &p.BusinessID, &p.AmountCents, &p.Currency, &p.Status,
		&p.StripeSessionID, &p.CheckoutURL, &p.FailureReason,
		&p.CreatedAt, &p.UpdatedAt, &p.SettledAt,
	)
	if err != nil {
		return Payment{}, err
	}
	return p, nil
}

func (r *Repository) MarkCheckoutPending(ctx context.Context, tx pgx.Tx, id string, stripeSessionID string, checkoutURL string) error {
	_, err := tx.Exec(ctx, `
		UPDATE payments
		SET status = $2,
		    stripe_session_id = $3,
		    checkout_url = $4,
		    updated_at = now()
		WHERE id = $1
	`, id, StatusCheckoutPending, nullIfEmpty(stripeSessionID), nullIfEmpty(checkoutURL))
	return err
}

func (r *Repository) MarkSucceeded(ctx context.Context, tx pgx.Tx, id string, settledAt time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE payments
		SET status = $2,
		    settled_at = $3,
		    updated_at = now()
		WHERE id = $1
	`, id, StatusSucceeded, settledAt)
	return err
}

func (r *Repository) MarkFailed(ctx context.Context, tx pgx.Tx, id string, status string, reason string, settledAt time.Time) error {
	if status != StatusFailed && status != StatusExpired {
		return errors.New("invalid terminal status")
	}
	_, err := tx.Exec(ctx, `
		UPDATE payments
		SET status = $2,
		    failure_reason = $3,
		    settled_at = $4,
		    updated_at = now()
		WHERE id = $1
	`, id, status, nullIfEmpty(reason), settledAt)
	return err
}

// ListPendingCheckouts returns payments still waiting on Stripe, oldest first.
// Used by the reconciler to self-heal after missed webhooks.
func (r *Repository) ListPendingCheckouts(ctx context.Context, olderThan time.Time, limit int) ([]Payment, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, appointment_id::text, business_id::text, amount_cents, currency, status,
		       COALESCE(stripe_session_id, ''), COALESCE(checkout_url, ''), COALESCE(failure_reason, ''),
		       created_at, updated_at, settled_at
		FROM payments
		WHERE status = $1 AND stripe_session_id IS NOT NULL AND updated_at < $2
		ORDER BY updated_at ASC
		LIMIT $3
	`, StatusCheckoutPending, olderThan, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(
			&p.ID, &p.AppointmentID, &p.BusinessID, &p.AmountCents, &p.Currency, &p.Status,
			&p.StripeSessionID, &p.CheckoutURL, &p.FailureReason,
			&p.CreatedAt, &p.UpdatedAt, &p.SettledAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type ProviderEvent struct {
	Provider        string
	ProviderEventID string
	EventType       string
	Payload         []byte
}

var ErrDuplicateProviderEvent = errors.New("duplicate provider event")

func (r *Repository) InsertProviderEvent(ctx context.Context, tx pgx.Tx, evt ProviderEvent) error {
	var payload any
	if err := json.Unmarshal(evt.Payload, &payload); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO provider_events (provider, provider_event_id, event_type, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (provider, provider_event_id) DO NOTHING
	`, evt.Provider, evt.ProviderEventID, evt.EventType, payload)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicateProviderEvent
	}
	return nil
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
