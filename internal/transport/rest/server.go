package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sandevgo/profiletwin/internal/config"
	"github.com/sandevgo/profiletwin/internal/core"
	"github.com/sandevgo/profiletwin/internal/service/chat"
	"github.com/sandevgo/profiletwin/internal/service/indexsync"
	"github.com/sandevgo/profiletwin/pkg/log"
)

type Chatter interface {
	Chat(ctx context.Context, req chat.Request) (*chat.Response, error)
}

type Syncer interface {
	OnChange(ctx context.Context, ev core.ChangeEvent) error
	Resync(ctx context.Context) (indexsync.ResyncReport, error)
	Failed(ctx context.Context, limit int) ([]core.SyncState, error)
}

type IndexStats interface {
	Info(ctx context.Context) (core.IndexInfo, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators behind the HTTP surface. Sync, Index and Ledger may be nil.
type Deps struct {
	Chat   Chatter
	Sync   Syncer
	Index  IndexStats
	Ledger Pinger
}

type Server struct {
	cfg           *config.AppConfig
	webhookSecret string
	deps          Deps

	http *http.Server
	// in-flight webhook syncs, drained on shutdown
	pending sync.WaitGroup
}

func NewServer(cfg *config.AppConfig, contentCfg *config.ContentConfig, deps Deps) *Server {
	s := &Server{
		cfg:           cfg,
		webhookSecret: contentCfg.WebhookSecret,
		deps:          deps,
	}
	s.http = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

// Handler builds the chi router. Exposed for tests.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recovery)
	r.Use(CORS(s.cfg.AllowedOrigins))

	r.Get("/health", s.handleHealth)
	r.Post("/chat", s.handleChat)

	if s.deps.Sync != nil {
		r.Post("/webhooks/content", s.handleContentWebhook)

		r.Route("/admin", func(r chi.Router) {
			r.Use(BearerAuth(s.cfg.AdminToken))
			r.Post("/resync", s.handleResync)
			r.Get("/sync", s.handleSyncFailures)
		})
	}

	return r
}

func (s *Server) Start(ctx context.Context) error {
	s.http.BaseContext = func(net.Listener) context.Context { return ctx }

	log.FromCtx(ctx).Info().Str("addr", s.http.Addr).Msg("http server listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)

	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		log.FromCtx(ctx).Warn().Msg("webhook syncs still running at shutdown")
	}
	return err
}
