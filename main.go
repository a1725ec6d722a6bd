package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/billbatista/expensebook/api"
	"github.com/billbatista/expensebook/config"
	"github.com/billbatista/expensebook/database"
	"github.com/billbatista/expensebook/ledger"
	"github.com/billbatista/expensebook/notify"
	"github.com/billbatista/expensebook/session"
	"github.com/billbatista/expensebook/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		printErrorAndExit("loading config", err)
	}
	if err := cfg.Validate(); err != nil {
		printErrorAndExit("validating config", err)
	}
	slog.SetDefault(cfg.Logger())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		printErrorAndExit("database connection", err)
	}
	defer db.Close()

	publisher := newPublisher(cfg)
	if c, ok := publisher.(io.Closer); ok {
		defer c.Close()
	}
	worker := notify.NewWorker(publisher, cfg.NotifyBuffer)
	worker.Start()
	defer worker.Shutdown()

	issuer := session.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	accounts, err := user.NewService(user.NewRepository(db), issuer, cfg.BcryptCost)
	if err != nil {
		printErrorAndExit("creating account service", err)
	}
	expenses := ledger.NewService(ledger.NewRepository(db), notify.NewBudgetAlerter(worker))

	router := api.NewRouter(api.NewHandler(accounts, expenses, db), api.RouterConfig{
		Verifier:    issuer,
		Accounts:    accounts,
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port, "db_driver", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-errCh:
		slog.Error("server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown", "error", err)
	}
}

// newPublisher sends alerts to RabbitMQ when AMQP_URL is set and to the log otherwise.
func newPublisher(cfg *config.Config) notify.Publisher {
	logPublisher := notify.NewLogPublisher(slog.Default())
	if cfg.AMQPURL == "" {
		return logPublisher
	}

	pub, err := notify.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPQueue)
	if err != nil {
		slog.Warn("amqp unavailable, logging budget alerts instead", "error", err)
		return logPublisher
	}
	return pub
}

func printErrorAndExit(msg string, e error) {
	slog.Error(msg, "error", e)
	os.Exit(1)
}
