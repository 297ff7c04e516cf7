package config

import (
	"context"

	"github.com/caarlos0/env/v11"

	"github.com/avasile/mnemo/pkg/log"
)

type AppConfig struct {
	// Provider selects the generation backend: openai, openrouter or local.
	Provider string `env:"PROVIDER" envDefault:"openai"`

	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	// MemoryLimit bounds how many memory hits a chat turn may pull in.
	MemoryLimit int `env:"MEMORY_LIMIT" envDefault:"8"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse app config")
	}
	return c
}
