// Package main runs the mass-balance API server configured entirely from
// the environment, for container deployments. The massbal CLI's serve
// command covers interactive use.
package main

import (
	"context"

	"massbal/api"
	"massbal/db/clickhouse"
	"massbal/db/postgres"
	"massbal/internal/criteria"
	"massbal/pkg/platform"
)

func main() {
	logger := platform.InitLogger(platform.GetEnv("MASSBAL_LOG_LEVEL", "info"))

	design, err := criteria.LoadDesign(platform.GetEnv("MASSBAL_CRITERIA", ""))
	if err != nil {
		platform.LogFatal(logger, "failed to load design criteria", err)
	}

	var scenarios *postgres.Store
	var runs *clickhouse.Store

	if platform.GetEnvBool("MASSBAL_WITH_STORES", false) {
		scenarios, err = postgres.NewStore(&postgres.Config{
			Host:     platform.GetEnv("POSTGRES_HOST", "localhost"),
			Port:     platform.GetEnvInt("POSTGRES_PORT", 5432),
			Database: platform.GetEnv("POSTGRES_DATABASE", "massbal"),
			Username: platform.GetEnv("POSTGRES_USER", "postgres"),
			Password: platform.GetEnv("POSTGRES_PASSWORD", ""),
			SSLMode:  platform.GetEnv("POSTGRES_SSLMODE", "disable"),
		})
		if err != nil {
			platform.LogFatal(logger, "failed to connect to postgres", err)
		}
		defer scenarios.Close()
		if err := scenarios.InitSchema(context.Background()); err != nil {
			platform.LogFatal(logger, "failed to init scenario schema", err)
		}

		runs, err = clickhouse.NewStore(&clickhouse.Config{
			Host:     platform.GetEnv("CLICKHOUSE_HOST", "localhost"),
			Port:     platform.GetEnvInt("CLICKHOUSE_PORT", 9000),
			Database: platform.GetEnv("CLICKHOUSE_DATABASE", "massbal"),
			Username: platform.GetEnv("CLICKHOUSE_USER", "default"),
			Password: platform.GetEnv("CLICKHOUSE_PASSWORD", ""),
		})
		if err != nil {
			platform.LogFatal(logger, "failed to connect to ClickHouse", err)
		}
		defer runs.Close()
		if err := runs.InitSchema(context.Background()); err != nil {
			platform.LogFatal(logger, "failed to init run archive schema", err)
		}
	}

	cfg := api.DefaultConfig()
	cfg.Port = platform.GetEnvInt("MASSBAL_PORT", 8080)

	server := api.NewServer(design, scenarios, runs, cfg)
	if err := server.StartWithGracefulShutdown(); err != nil {
		platform.LogFatal(logger, "server failed", err)
	}
}
