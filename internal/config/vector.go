package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/profiletwin/pkg/log"
)

type VectorConfig struct {
	URL   string `env:"UPSTASH_VECTOR_REST_URL,required,notEmpty"`
	Token string `env:"UPSTASH_VECTOR_REST_TOKEN,required,notEmpty" secret:"true"`
	// Optional namespace, empty means the default one
	Namespace string `env:"UPSTASH_VECTOR_NAMESPACE"`
}

func NewVectorConfig(ctx context.Context) *VectorConfig {
	c := &VectorConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Vector config")
	}
	return c
}
