package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cargo-tracker/internal/core/config"
	"cargo-tracker/internal/core/logger"
	"cargo-tracker/internal/core/metrics"
	"cargo-tracker/internal/core/server"
	carrierhandler "cargo-tracker/internal/features/carriers/handler"
	carrierservice "cargo-tracker/internal/features/carriers/service"
	notificationservice "cargo-tracker/internal/features/notifications/service"
	shipmenthandler "cargo-tracker/internal/features/shipments/handler"
	shipmentservice "cargo-tracker/internal/features/shipments/service"
	"cargo-tracker/internal/features/tracking/domain"
	trackinghandler "cargo-tracker/internal/features/tracking/handler"
	trackingservice "cargo-tracker/internal/features/tracking/service"

	"go.uber.org/zap"
)

// shutdownTimeout bounds draining in-flight requests and queued notifications.
const shutdownTimeout = 15 * time.Second

// @title Cargo Tracker API
// @version 1.0
// @description Container status workflow: tracking event ledger, allowed transitions, shipment progress and customer notifications.
// @contact.name API Support
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
		zap.String("ledger_backend", cfg.Storage.Backend),
		zap.String("notify_sender", cfg.Notifications.Sender),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	graph := domain.DefaultGraph()
	if err := graph.Validate(); err != nil {
		l.Fatal("Transition graph is invalid", zap.Error(err))
	}

	m := metrics.New(metrics.DefaultConfig())

	stores, err := openStores(ctx, cfg.Storage)
	if err != nil {
		l.Fatal("Failed to open stores", zap.Error(err))
	}
	defer stores.Close()

	sender, err := newSender(cfg.Notifications)
	if err != nil {
		l.Fatal("Failed to create notification sender", zap.Error(err))
	}
	dispatcher := notificationservice.NewAsyncDispatcher(sender, notificationservice.Config{
		QueueSize:        cfg.Notifications.QueueSize,
		Workers:          cfg.Notifications.Workers,
		SendTimeout:      cfg.Notifications.SendTimeout,
		FailureThreshold: notificationservice.DefaultConfig().FailureThreshold,
		OpenTimeout:      notificationservice.DefaultConfig().OpenTimeout,
	}, notificationservice.WithMetrics(m))

	// Shipments double as the container directory the tracking workflow resolves ids against.
	shipmentSvc := shipmentservice.NewShipmentService(stores.Shipments)
	trackingSvc := trackingservice.NewTrackingService(graph, stores.Ledger, shipmentSvc,
		trackingservice.WithDispatcher(dispatcher),
		trackingservice.WithMetrics(m),
	)

	srv := server.New(cfg, m)
	srv.AddHealthCheck("ledger", stores.Ledger.Ping)
	srv.AddHealthCheck("shipments", stores.Shipments.Ping)

	trackinghandler.NewTrackingHandler(trackingSvc, graph).Routes(srv.App)
	shipmenthandler.NewShipmentHandler(shipmentSvc).Routes(srv.App)

	if cfg.Carrier.FeedURL != "" {
		feed, err := newMilestoneFeed(cfg, stores)
		if err != nil {
			l.Fatal("Failed to create carrier feed", zap.Error(err))
		}
		carrierhandler.NewCarrierHandler(carrierservice.NewSyncService(trackingSvc, feed, m)).Routes(srv.App)
		l.Info("Carrier sync enabled", zap.Bool("cached", stores.Cache != nil))
	}

	go func() {
		if err := srv.Run(); err != nil {
			l.Error("Server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	l.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error("HTTP shutdown failed", zap.Error(err))
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		l.Error("Notification dispatcher did not drain", zap.Error(err))
	}
}
