package config

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/avasile/mnemo/pkg/log"
)

type PostgresConfig struct {
	Host     string `env:"PG_HOST" envDefault:"localhost"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"POSTGRES_USER" envDefault:"mnemo"`
	Password string `env:"POSTGRES_PASSWORD" envDefault:"mnemo"`
	Database string `env:"POSTGRES_DB" envDefault:"mnemo"`
	SSLMode  string `env:"PG_SSLMODE" envDefault:"disable"`
}

func NewPostgresConfig(ctx context.Context) *PostgresConfig {
	c := &PostgresConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse postgres config")
	}
	return c
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}
