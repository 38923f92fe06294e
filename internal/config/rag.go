package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/profiletwin/pkg/log"
)

// RAGConfig holds the tunable heuristics of the retrieval pipeline.
type RAGConfig struct {
	TopK            int     `env:"RAG_TOP_K" envDefault:"5"`
	SemanticWeight  float64 `env:"RAG_SEMANTIC_WEIGHT" envDefault:"0.7"`
	LiteralWeight   float64 `env:"RAG_LITERAL_WEIGHT" envDefault:"0.3"`
	TieEpsilon      float64 `env:"RAG_TIE_EPSILON" envDefault:"0.01"`
	CandidateFactor int     `env:"RAG_CANDIDATE_FACTOR" envDefault:"3"`

	// Context budget in tokens (cl100k_base)
	ContextBudget int `env:"RAG_CONTEXT_BUDGET" envDefault:"1500"`
	HistoryTurns  int `env:"RAG_HISTORY_TURNS" envDefault:"6"`

	Connectors []string `env:"RAG_CONNECTORS" envDefault:"and,vs,versus,compare,compared to,as well as,also" envSeparator:","`
	KnownTerms []string `env:"RAG_KNOWN_TERMS" envDefault:"python,java,javascript,typescript,golang,rust,react,next.js,node.js,docker,kubernetes,aws,gcp,azure,postgres,postgresql,mongodb,redis,graphql,tensorflow,pytorch,langchain,openai,llm,rag,sql,linux,git,figma" envSeparator:","`

	RetrievalTimeout   time.Duration `env:"RETRIEVAL_TIMEOUT" envDefault:"10s"`
	GenerationTimeout  time.Duration `env:"GENERATION_TIMEOUT" envDefault:"20s"`
	TranslationTimeout time.Duration `env:"TRANSLATION_TIMEOUT" envDefault:"5s"`
	GenerationRetries  int           `env:"GENERATION_RETRIES" envDefault:"2"`
}

func NewRAGConfig(ctx context.Context) *RAGConfig {
	cfg := &RAGConfig{}
	if err := env.Parse(cfg); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse RAG config")
	}
	return cfg
}
