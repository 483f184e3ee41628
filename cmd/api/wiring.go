package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cargo-tracker/internal/core/cache"
	"cargo-tracker/internal/core/config"
	"cargo-tracker/internal/core/database"
	"cargo-tracker/internal/core/httpclient"
	carrieradapters "cargo-tracker/internal/features/carriers/adapters"
	carrierports "cargo-tracker/internal/features/carriers/ports"
	notificationadapters "cargo-tracker/internal/features/notifications/adapters"
	notificationports "cargo-tracker/internal/features/notifications/ports"
	shipmentadapters "cargo-tracker/internal/features/shipments/adapters"
	shipmentports "cargo-tracker/internal/features/shipments/ports"
	trackingadapters "cargo-tracker/internal/features/tracking/adapters"
	trackingports "cargo-tracker/internal/features/tracking/ports"
)

// backends bundles the backing stores selected by LEDGER_BACKEND.
type backends struct {
	Ledger    trackingports.LedgerStore
	Shipments shipmentports.ShipmentRepository
	// Cache is set whenever REDIS_URL is configured, whatever the backend.
	Cache  *cache.RedisAdapter
	closer func() error
}

func (s *backends) Close() error {
	var errs []error
	if s.closer != nil {
		errs = append(errs, s.closer())
	}
	if s.Cache != nil {
		errs = append(errs, s.Cache.Close())
	}
	return errors.Join(errs...)
}

func openStores(ctx context.Context, cfg config.StorageConfig) (*backends, error) {
	s := &backends{}
	if cfg.RedisURL != "" {
		c, err := cache.NewRedisAdapter(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		s.Cache = c
	}

	switch cfg.Backend {
	case "redis":
		client := s.Cache.Client()
		s.Ledger = trackingadapters.NewRedisLedgerStore(client)
		s.Shipments = shipmentadapters.NewRedisShipmentRepository(client)
	case "postgres":
		db, err := database.Connect(ctx, database.Postgres(cfg.DatabaseDSN), database.DefaultOptions())
		if err != nil {
			s.Close()
			return nil, err
		}
		ledger, err := trackingadapters.NewGormLedgerStore(db)
		if err != nil {
			s.Close()
			return nil, err
		}
		shipments, err := shipmentadapters.NewGormShipmentRepository(db)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.Ledger, s.Shipments = ledger, shipments
		s.closer = func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}
	default:
		s.Ledger = trackingadapters.NewMemoryLedgerStore()
		s.Shipments = shipmentadapters.NewMemoryShipmentRepository()
	}
	return s, nil
}

func newSender(cfg config.NotificationConfig) (notificationports.Sender, error) {
	switch cfg.Sender {
	case "kafka":
		return notificationadapters.NewKafkaSender(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	case "webhook":
		client, err := httpclient.NewClient(cfg.SendTimeout, httpclient.WithComponent("webhook"))
		if err != nil {
			return nil, err
		}
		return notificationadapters.NewWebhookSender(client, cfg.WebhookURL), nil
	case "log":
		return notificationadapters.NewLogSender(), nil
	default:
		return nil, fmt.Errorf("unknown notification sender %q", cfg.Sender)
	}
}

func newMilestoneFeed(cfg *config.AppConfig, s *backends) (carrierports.MilestoneFeed, error) {
	opts := []carrieradapters.BrowserFeedOption{
		carrieradapters.WithProxy(cfg.Proxy.Settings()),
		carrieradapters.WithTimeout(cfg.Carrier.Timeout),
	}
	if cfg.Carrier.APIPattern != "" {
		opts = append(opts, carrieradapters.WithAPIPattern(cfg.Carrier.APIPattern))
	}

	var feed carrierports.MilestoneFeed = carrieradapters.NewBrowserFeed(cfg.Carrier.FeedURL, opts...)
	if s.Cache != nil && cfg.Carrier.CacheTTL > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.Cache.Ping(ctx); err != nil {
			return nil, fmt.Errorf("carrier cache: %w", err)
		}
		feed = carrieradapters.NewCachedMilestoneFeed(feed, s.Cache, cfg.Carrier.CacheTTL)
	}
	return feed, nil
}
