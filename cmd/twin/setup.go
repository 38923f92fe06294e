package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sandevgo/profiletwin/internal/config"
	"github.com/sandevgo/profiletwin/internal/core"
	"github.com/sandevgo/profiletwin/internal/providers/content"
	"github.com/sandevgo/profiletwin/internal/providers/llm"
	"github.com/sandevgo/profiletwin/internal/providers/vector"
	"github.com/sandevgo/profiletwin/internal/service/answer"
	"github.com/sandevgo/profiletwin/internal/service/assembler"
	"github.com/sandevgo/profiletwin/internal/service/chat"
	"github.com/sandevgo/profiletwin/internal/service/command"
	"github.com/sandevgo/profiletwin/internal/service/indexsync"
	"github.com/sandevgo/profiletwin/internal/service/language"
	"github.com/sandevgo/profiletwin/internal/service/retrieval"
	"github.com/sandevgo/profiletwin/internal/service/router"
	"github.com/sandevgo/profiletwin/internal/service/session"
	"github.com/sandevgo/profiletwin/internal/storage/sqlite"
	"github.com/sandevgo/profiletwin/internal/transport/rest"
	"github.com/sandevgo/profiletwin/internal/transport/telegram"
	"github.com/sandevgo/profiletwin/pkg/log"
	"github.com/sandevgo/profiletwin/pkg/srv"
)

// App holds the wired components shared by every subcommand.
type App struct {
	AppCfg     *config.AppConfig
	LLMCfg     *config.LLMConfig
	RAGCfg     *config.RAGConfig
	ContentCfg *config.ContentConfig

	Index    *vector.Upstash
	Ledger   *sqlite.SyncLedger
	Sessions *session.Store
	Pipeline *chat.Pipeline
	Worker   *indexsync.Worker
	Commands *command.Router

	// released last on shutdown
	Cleanups []srv.Service
}

func NewApp(ctx context.Context) (*App, error) {
	// 1. Configuration
	a := &App{
		AppCfg:     config.NewAppConfig(ctx),
		LLMCfg:     config.NewLLMConfig(ctx),
		RAGCfg:     config.NewRAGConfig(ctx),
		ContentCfg: config.NewContentConfig(ctx),
	}
	vectorCfg := config.NewVectorConfig(ctx)

	// 2. Storage
	db, err := sqlite.NewDB(ctx, a.AppCfg.GetDatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.Cleanups = append(a.Cleanups, srv.NewCleanup(db.Close))
	a.Ledger = sqlite.NewSyncLedger(db)
	transcript := sqlite.NewMessagesRepo(db)

	// 3. External services
	provider, err := llm.NewProvider(ctx, a.LLMCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}
	a.Index = vector.NewUpstash(vectorCfg.URL, vectorCfg.Token, vectorCfg.Namespace)

	// 4. Content sync
	var source core.ContentSource
	if a.ContentCfg.HasStore() {
		source = content.NewPayload(
			a.ContentCfg.StoreURL,
			a.ContentCfg.StoreToken,
			a.ContentCfg.Collection,
			a.ContentCfg.PageSize,
		)
	}
	a.Worker = indexsync.NewWorker(a.Index, source, a.Ledger, a.ContentCfg)

	// 5. Question pipeline
	translator := language.NewLLMTranslator(provider, a.LLMCfg.GetTranslationModel())
	normalizer, err := language.NewNormalizer(a.AppCfg.WorkingLanguage, translator, a.RAGCfg.TranslationTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize language normalizer: %w", err)
	}

	a.Sessions = session.NewStore(a.AppCfg.SessionIdleTimeout, a.AppCfg.SessionMaxTurns)
	generator := answer.NewGenerator(
		provider,
		answer.NewSysPrompt(a.AppCfg, a.AppCfg.WorkingLanguage),
		a.LLMCfg,
		a.RAGCfg,
	)

	sizer, err := assembler.NewSizer()
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("tokenizer unavailable, budgeting context by characters")
	}

	a.Pipeline = chat.NewPipeline(
		normalizer,
		router.NewRuleClassifier(a.RAGCfg.Connectors, a.RAGCfg.KnownTerms),
		retrieval.NewRetriever(a.Index, a.RAGCfg),
		assembler.NewAssembler(sizer, a.RAGCfg.TieEpsilon),
		generator,
		a.Sessions,
		transcript,
		a.RAGCfg.ContextBudget,
	)

	// 6. Slash commands shared by the chat transports
	a.Commands = command.New(command.NewCommands(command.Deps{
		Sessions:   a.Sessions,
		Index:      a.Index,
		Transcript: transcript,
		Model:      modelLabel(a.LLMCfg),
	}))

	log.FromCtx(ctx).Debug().
		Str("working_language", a.AppCfg.WorkingLanguage).
		Bool("content_store", source != nil).
		Msg("components initialized")

	return a, nil
}

// Services returns the long-running services for `serve`, in start order.
func (a *App) Services(ctx context.Context) ([]srv.Service, error) {
	logger := log.FromCtx(ctx)
	services := append([]srv.Service{}, a.Cleanups...)

	// Background workers
	janitorEvery := max(a.AppCfg.SessionIdleTimeout/2, time.Minute)
	services = append(services, a.Sessions.NewJanitor(janitorEvery))

	if a.ContentCfg.HasStore() && a.ContentCfg.ResyncInterval > 0 {
		services = append(services, a.Worker.NewResyncService(a.ContentCfg.ResyncInterval))
	} else {
		logger.Info().Msg("periodic resync disabled")
	}

	// Transports
	if a.AppCfg.EnableHTTP {
		services = append(services, rest.NewServer(a.AppCfg, a.ContentCfg, rest.Deps{
			Chat:   a.Pipeline,
			Sync:   a.Worker,
			Index:  a.Index,
			Ledger: a.Ledger,
		}))
	}

	if a.AppCfg.EnableTelegram {
		bot, err := telegram.NewBot(ctx, config.NewTelegramConfig(ctx), a.Pipeline, a.Commands)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	return services, nil
}

func modelLabel(cfg *config.LLMConfig) string {
	if cfg.Model == "" {
		return cfg.Provider + " (default model)"
	}
	return cfg.Provider + "/" + cfg.Model
}
