package reconcile

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"

	"github.com/bookora/bookora/libs/db"
	"github.com/bookora/bookora/services/payments-service/internal/settlement"
	"github.com/bookora/bookora/services/payments-service/internal/storage"
)

// StripeReconciler periodically re-checks pending checkout sessions against
// Stripe so missed webhooks still settle.
type StripeReconciler struct {
	pool        *db.Pool
	repo        *storage.Repository
	settle      *settlement.Service
	logger      *slog.Logger
	stripeKey   string
	batchSize   int
	minAge      time.Duration
	advisoryKey int64
}

type StripeReconcilerConfig struct {
	StripeSecretKey string
	BatchSize       int
	MinAge          time.Duration
	AdvisoryLockKey int64
}

func NewStripeReconciler(pool *db.Pool, repo *storage.Repository, settle *settlement.Service, logger *slog.Logger, cfg StripeReconcilerConfig) *StripeReconciler {
	bs := cfg.BatchSize
	if bs <= 0 {
		bs = 50
	}
	minAge := cfg.MinAge
	if minAge <= 0 {
		minAge = 10 * time.Minute
	}
	lockKey := cfg.AdvisoryLockKey
	if lockKey == 0 {
		// Stable-ish default; override via env if you run multiple payments instances.
		lockKey = 4242002
	}
	return &StripeReconciler{
		pool:        pool,
		repo:        repo,
		settle:      settle,
		logger:      logger,
		stripeKey:   strings.TrimSpace(cfg.StripeSecretKey),
		batchSize:   bs,
		minAge:      minAge,
		advisoryKey: lockKey,
	}
}

func (r *StripeReconciler) Run(ctx context.Context, interval time.Duration) {
	if r.stripeKey == "" {
		r.logger.Warn("stripe reconcile disabled: STRIPE_SECRET_KEY missing")
		return
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	// Best-effort leader election for multi-instance deployments.
	// Only the instance holding the advisory lock will reconcile.
	for {
		if ctx.Err() != nil {
			return
		}
		var locked bool
		if err := r.pool.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, r.advisoryKey).Scan(&locked); err != nil {
			r.logger.Error("stripe reconcile: failed to acquire advisory lock", "err", err)
			time.Sleep(5 * time.Second)
			continue
		}
		if !locked {
			r.logger.Info("stripe reconcile: advisory lock held by another instance", "lock_key", r.advisoryKey)
			time.Sleep(30 * time.Second)
			continue
		}
		r.logger.Info("stripe reconcile: advisory lock acquired", "lock_key", r.advisoryKey)
		defer func() {
			_, _ = r.pool.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, r.advisoryKey)
		}()
		break
	}

	stripe.Key = r.stripeKey
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run immediately on startup to self-heal faster after downtime.
	r.reconcileOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.reconcileOnce(ctx)
		}
	}
}

func (r *StripeReconciler) reconcileOnce(ctx context.Context) {
	cutoff := time.Now().Add(-r.minAge)
	pending, err := r.repo.ListPendingCheckouts(ctx, cutoff, r.batchSize)
	if err != nil {
		r.logger.Error("stripe reconcile: failed to list pending payments", "err", err)
		return
	}

	for _, p := range pending {
		if ctx.Err() != nil {
			return
		}
		if p.StripeSessionID == "" {
			continue
		}

		sess, err := checkoutsession.Get(p.StripeSessionID, nil)
		if err != nil {
			r.logger.Warn("stripe reconcile: failed to fetch session", "err", err, "stripe_session_id", p.StripeSessionID, "payment_id", p.ID)
			continue
		}

		now := time.Now().UTC()
		var apply func(tx pgx.Tx) error
		switch {
		case sess.Status == stripe.CheckoutSessionStatusComplete && sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusUnpaid:
			apply = func(tx pgx.Tx) error { return r.settle.ApplySucceeded(ctx, tx, p.ID, now) }
		case sess.Status == stripe.CheckoutSessionStatusExpired:
			apply = func(tx pgx.Tx) error {
				return r.settle.ApplyFailed(ctx, tx, p.ID, storage.StatusExpired, "checkout session expired", now)
			}
		default:
			// Still open; leave it for the webhook or the next pass.
			continue
		}

		tx, err := r.repo.Begin(ctx)
		if err != nil {
			r.logger.Error("stripe reconcile: db begin failed", "err", err)
			return
		}
		if err := apply(tx); err != nil {
			_ = tx.Rollback(ctx)
			r.logger.Warn("stripe reconcile: settle failed", "err", err, "payment_id", p.ID)
			continue
		}
		if err := tx.Commit(ctx); err != nil {
			_ = tx.Rollback(ctx)
			r.logger.Warn("stripe reconcile: commit failed", "err", err, "payment_id", p.ID)
		}
	}
}
