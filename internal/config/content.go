package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/profiletwin/pkg/log"
)

type ContentConfig struct {
	StoreURL      string        `env:"CONTENT_STORE_URL"`
	StoreToken    string        `env:"CONTENT_STORE_TOKEN" secret:"true"`
	Collection    string        `env:"CONTENT_COLLECTION" envDefault:"content-chunks"`
	PageSize      int           `env:"CONTENT_PAGE_SIZE" envDefault:"100"`
	WebhookSecret string        `env:"CONTENT_WEBHOOK_SECRET" secret:"true"`
	SyncTimeout   time.Duration `env:"SYNC_TIMEOUT" envDefault:"30s"`
	// 0 disables periodic full resync
	ResyncInterval time.Duration `env:"SYNC_RESYNC_INTERVAL" envDefault:"1h"`
	ResyncWorkers  int           `env:"SYNC_RESYNC_WORKERS" envDefault:"4"`
}

func NewContentConfig(ctx context.Context) *ContentConfig {
	c := &ContentConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Content config")
	}
	return c
}

// HasStore reports whether a content store is configured for full resync.
func (c ContentConfig) HasStore() bool {
	return c.StoreURL != ""
}
