package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/config"
	"fintrack/internal/database"
	"fintrack/internal/integrations/cbr"
	"fintrack/internal/logger"
	"fintrack/internal/notify"
	"fintrack/internal/scheduler"
	"fintrack/internal/server"
	"fintrack/internal/validator"
)

const shutdownTimeout = 30 * time.Second

// @title           FinTrack API
// @version         1.0
// @description     FinTrack tracks personal income and expenses by category with monthly limits, assets, savings, loans and goals.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

func main() {
	logger.Init(os.Getenv("ENV"), os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnw("failed to close database", "error", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	dispatcher, closeSenders, err := newDispatcher(cfg)
	if err != nil {
		return err
	}
	defer closeSenders()

	opts := server.Options{
		Dispatcher:           dispatcher,
		LargeIncomeThreshold: cfg.LargeIncomeThreshold,
	}
	if cfg.CBREnabled {
		opts.KeyRates = cbr.NewClient(cfg.CBRURL)
		log.Infow("central bank key rate enabled", "url", cfg.CBRURL)
	}

	validator.Register()
	svc := server.NewServices(dbManager.DB(), opts)
	router := server.NewRouter(svc, cfg.PipelineAPIKey)

	jobs, err := scheduler.New(cfg.ReminderCron, svc.Reminders)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("Starting FinTrack API on port %s", cfg.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		jobs.Start()
		log.Infow("reminder scheduler started", "cron", cfg.ReminderCron)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		if err := jobs.Stop(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("scheduler shutdown: %w", err))
		}
		if err := dispatcher.Wait(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("notification delivery: %w", err))
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Server stopped gracefully")
	return nil
}

// newDispatcher builds the notification fan-out from the configured channels.
// The returned func closes the channels that hold connections.
func newDispatcher(cfg *config.Config) (*notify.Dispatcher, func(), error) {
	log := logger.Get()
	var senders []notify.Sender
	closers := []func() error{}

	if cfg.SMTPEnabled() {
		senders = append(senders, notify.NewEmailSender(notify.EmailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}))
		log.Infow("e-mail notifications enabled", "host", cfg.SMTPHost)
	}

	if cfg.AMQPEnabled() {
		sender, err := notify.NewAMQPSender(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to AMQP broker: %w", err)
		}
		senders = append(senders, sender)
		closers = append(closers, sender.Close)
		log.Infow("AMQP notifications enabled", "exchange", cfg.AMQPExchange)
	}

	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Warnw("failed to close notification channel", "error", err)
			}
		}
	}
	return notify.NewDispatcher(senders...), closeAll, nil
}
