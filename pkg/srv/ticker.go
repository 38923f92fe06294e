package srv

import (
	"context"
	"sync"
	"time"

	"github.com/sandevgo/profiletwin/pkg/log"
)

// tickerService runs fn every interval until shut down.
type tickerService struct {
	name     string
	interval time.Duration
	fn       func(ctx context.Context) error

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func NewTicker(name string, interval time.Duration, fn func(ctx context.Context) error) Service {
	return &tickerService{
		name:     name,
		interval: interval,
		fn:       fn,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (t *tickerService) Start(ctx context.Context) error {
	defer close(t.done)
	logger := log.FromCtx(ctx)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	logger.Debug().Str("worker", t.name).Dur("interval", t.interval).Msg("worker started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.stop:
			return nil
		case <-ticker.C:
			if err := t.fn(ctx); err != nil {
				logger.Error().Err(err).Str("worker", t.name).Msg("worker tick failed")
			}
		}
	}
}

func (t *tickerService) Shutdown(ctx context.Context) error {
	t.once.Do(func() { close(t.stop) })

	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
