package llm

import (
	"context"
	"fmt"

	"github.com/avasile/mnemo/internal/config"
	"github.com/avasile/mnemo/internal/core"
	"github.com/avasile/mnemo/pkg/log"
)

// NewProvider creates the generation backend selected by configuration.
// Selection happens once per process; there is no per-request dispatch
// or failover between backends.
func NewProvider(ctx context.Context, cfg *config.AppConfig) (core.Provider, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Msg("starting llm provider")

	switch cfg.Provider {
	case "openai":
		c := config.NewOpenAIConfig(ctx)
		return NewOpenAI(c.APIKey, c.Model), nil
	case "openrouter":
		c := config.NewOpenRouterConfig(ctx)
		return NewOpenRouter(c.APIKey, c.Model), nil
	case "local":
		c := config.NewLocalConfig(ctx)
		return NewLocal(c.BaseURL, c.APIKey, c.Model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
