package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/avasile/mnemo/internal/config"
	"github.com/avasile/mnemo/internal/providers/llm"
	"github.com/avasile/mnemo/internal/service/chat"
	"github.com/avasile/mnemo/internal/service/importer"
	"github.com/avasile/mnemo/internal/storage/postgres"
	"github.com/avasile/mnemo/internal/transport/httpapi"
	"github.com/avasile/mnemo/pkg/log"
	"github.com/avasile/mnemo/pkg/srv"
)

// NewServices is the composition root: configuration is read once here
// and injected; nothing below reads the environment per request.
func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	if err := initEnv(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	pgCfg := config.NewPostgresConfig(ctx)

	// 2. Storage
	db, err := postgres.NewDB(ctx, pgCfg.DSN())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	conversations := postgres.NewConversationsRepo(db)
	memories := postgres.NewMemoriesRepo(db)

	// 3. Generation backend
	provider, err := llm.NewProvider(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize llm provider")
	}

	// 4. Services
	chatSvc := chat.NewService(conversations, memories, provider, appCfg.MemoryLimit)
	importSvc := importer.NewService(conversations, memories)

	// 5. Transport
	handlers := httpapi.NewHandlers(chatSvc, importSvc, conversations, memories)
	services = append(services, httpapi.NewServer(appCfg.HTTPAddr, handlers))

	return services
}

func initEnv(ctx context.Context) error {
	if _, err := os.Stat(".env"); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(".env"); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to load .env file")
		return err
	}

	log.FromCtx(ctx).Debug().Msg("loaded .env file")
	return nil
}
