package config

import (
	"context"

	"github.com/caarlos0/env/v11"

	"github.com/avasile/mnemo/pkg/log"
)

type OpenAIConfig struct {
	APIKey string `env:"OPENAI_API_KEY,required,notEmpty"`
	Model  string `env:"OPENAI_MODEL" envDefault:"gpt-5"`
}

func NewOpenAIConfig(ctx context.Context) *OpenAIConfig {
	c := &OpenAIConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse OpenAI config")
	}
	return c
}

type OpenRouterConfig struct {
	APIKey string `env:"OPENROUTER_API_KEY,required,notEmpty"`
	Model  string `env:"OPENROUTER_MODEL" envDefault:"meta-llama/llama-3.1-70b-instruct"`
}

func NewOpenRouterConfig(ctx context.Context) *OpenRouterConfig {
	c := &OpenRouterConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse OpenRouter config")
	}
	return c
}

// LocalConfig points at any locally hosted OpenAI-compatible endpoint
// (vllm, llama.cpp server, ollama in compatibility mode). BaseURL is
// expected to already contain the /v1 path segment.
type LocalConfig struct {
	BaseURL string `env:"LOCAL_API_BASE" envDefault:"http://vllm:8000/v1"`
	APIKey  string `env:"LOCAL_API_KEY"`
	Model   string `env:"LOCAL_MODEL" envDefault:"local"`
}

func NewLocalConfig(ctx context.Context) *LocalConfig {
	c := &LocalConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse local backend config")
	}
	return c
}
