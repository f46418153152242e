package main

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/bookora/bookora/libs/config"
	"github.com/bookora/bookora/libs/db"
	"github.com/bookora/bookora/libs/httpx"
	"github.com/bookora/bookora/libs/kafkax"
	otelx "github.com/bookora/bookora/libs/otel"
	"github.com/bookora/bookora/libs/runtime"
	"github.com/bookora/bookora/services/payments-service/internal/consumer"
	"github.com/bookora/bookora/services/payments-service/internal/handlers"
	"github.com/bookora/bookora/services/payments-service/internal/inbox"
	"github.com/bookora/bookora/services/payments-service/internal/outbox"
	"github.com/bookora/bookora/services/payments-service/internal/reconcile"
	"github.com/bookora/bookora/services/payments-service/internal/settlement"
	"github.com/bookora/bookora/services/payments-service/internal/storage"
)

func main() {
	service := config.String("SERVICE_NAME", "payments-service")
	port, err := config.Port("PORT", "8084")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	repo := storage.NewRepository(pool)
	outboxRepo := outbox.NewRepository(pool)
	inboxRepo := inbox.NewRepository(pool)
	settleSvc := settlement.New(repo, outboxRepo)
	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	brokers := config.String("KAFKA_BROKERS", "")
	if brokers != "" {
		depositHandler := consumer.NewDepositHandler(repo, logger, consumer.DepositConfig{
			StripeSecretKey:    config.String("STRIPE_SECRET_KEY", ""),
			CheckoutSuccessURL: config.String("CHECKOUT_SUCCESS_URL", "http://localhost:3000/booking/paid"),
			CheckoutCancelURL:  config.String("CHECKOUT_CANCEL_URL", "http://localhost:3000/booking/cancelled"),
		})
		depositConsumer := consumer.New(logger, inboxRepo, consumer.Config{
			Brokers: brokers,
			GroupID: config.String("KAFKA_GROUP_ID", "payments-service"),
			Topic:   "payments.deposit.requested.v1",
		}, depositHandler.DepositRequested)
		go depositConsumer.Run(ctx)
	}

	mux := runtime.NewBaseMux(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)},
	)
	h := handlers.New(repo, settleSvc, logger, handlers.Config{
		StripeWebhookSecret:           config.String("STRIPE_WEBHOOK_SECRET", ""),
		StripeWebhookToleranceSeconds: config.Int("STRIPE_WEBHOOK_TOLERANCE_SECONDS", 300),
	})
	mux.HandleFunc("/api/v1/payments/deposit", h.GetPayment)
	mux.HandleFunc("/api/v1/payments/webhooks/local", h.LocalWebhook)
	mux.HandleFunc("/api/v1/payments/webhooks/stripe", h.StripeWebhook)

	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	handler = otelhttp.NewHandler(handler, "payments")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	// Stripe reconciliation: periodically self-heal payment state if webhooks are missed.
	if config.Bool("PAYMENTS_STRIPE_RECONCILE_ENABLED", false) {
		intervalSeconds := config.Int("PAYMENTS_STRIPE_RECONCILE_INTERVAL_SECONDS", 300)
		if intervalSeconds <= 0 {
			intervalSeconds = 300
		}
		rec := reconcile.NewStripeReconciler(pool, repo, settleSvc, logger, reconcile.StripeReconcilerConfig{
			StripeSecretKey: config.String("STRIPE_SECRET_KEY", ""),
			BatchSize:       config.Int("PAYMENTS_STRIPE_RECONCILE_BATCH_SIZE", 50),
			MinAge:          time.Duration(config.Int("PAYMENTS_STRIPE_RECONCILE_MIN_AGE_SECONDS", 600)) * time.Second,
			AdvisoryLockKey: int64(config.Int("PAYMENTS_STRIPE_RECONCILE_LOCK_KEY", 4242002)),
		})
		go rec.Run(ctx, time.Duration(intervalSeconds)*time.Second)
	}

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
