package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/carlog/internal/auth"
	"github.com/ukydev/carlog/internal/config"
	"github.com/ukydev/carlog/internal/dates"
	"github.com/ukydev/carlog/internal/db"
	"github.com/ukydev/carlog/internal/handlers"
	"github.com/ukydev/carlog/internal/notify"
	"github.com/ukydev/carlog/internal/schedule"
	"github.com/ukydev/carlog/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	logger := config.NewLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("CarLog API stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	if cfg.UsesDefaultSecret() {
		logger.Warn("JWT_SECRET is not set; using the built-in development secret")
	}

	authService, err := auth.NewService(cfg.Auth)
	if err != nil {
		return err
	}

	database, err := db.Open(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := database.Close(closeCtx); err != nil {
			logger.WithError(err).Warn("Failed to disconnect from MongoDB")
		}
	}()
	logger.WithField("database", cfg.Mongo.Database).Info("Connected to MongoDB")

	if err := database.EnsureIndexes(ctx); err != nil {
		return err
	}

	publisher, closePublisher := newPublisher(cfg.MQTT, logger)
	defer closePublisher()

	clock := dates.SystemClock
	sched := scheduler.New(cfg.Scheduler, database.Vehicles, schedule.NewEngine(clock), publisher, logger)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	router := handlers.NewRouter(collections(database), handlers.Options{
		Auth:       authService,
		Clock:      clock,
		Logger:     logger,
		Ping:       database.Ping,
		LoginLimit: cfg.Auth.LoginLimit,
		TrustProxy: cfg.Auth.TrustProxy,
	})

	return serve(ctx, &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}, logger)
}

func collections(d *db.Database) handlers.Collections {
	return handlers.Collections{
		Users:        d.Users,
		Vehicles:     d.Vehicles,
		Expenses:     d.Expenses,
		Maintenances: d.Maintenances,
		Invoices:     d.Invoices,
		Reminders:    d.Reminders,
		Workshops:    d.Workshops,
		Drivers:      d.DriverProfiles,
	}
}

// newPublisher connects to the MQTT broker when one is configured and falls
// back to logging events otherwise.
func newPublisher(cfg config.MQTTConfig, logger *log.Logger) (notify.Publisher, func()) {
	if cfg.Broker == "" {
		logger.Info("MQTT_BROKER not set; due-check events will only be logged")
		return notify.LogPublisher{Logger: logger}, func() {}
	}
	client, err := notify.ConnectMQTT(cfg, logger)
	if err != nil {
		logger.WithError(err).Warn("MQTT unavailable; due-check events will only be logged")
		return notify.LogPublisher{Logger: logger}, func() {}
	}
	p := notify.NewMQTTPublisher(client, cfg.TopicPrefix)
	return p, p.Close
}

// serve runs srv until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, logger log.FieldLogger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", srv.Addr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
