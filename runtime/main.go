package main

import (
	"os"

	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/lumen-learn/lumen_api/services"
)

// @title Lumen Progress Engine API
// @version 1.0
// @description Progress, quest and leaderboard engine for learning events
// @BasePath /
func main() {
	err := godotenv.Load()
	if err != nil {
		log.Warn().Err(err).Msg("No .env file loaded, using system environment")
	}

	ctx, err := newEngineCtx()
	if err != nil {
		log.Fatal().Err(err)
		return
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err)
		return
	}
}

// newEngineCtx wires the service container. DB_DRIVER=sqlite swaps the
// embedded database in for postgres; everything downstream resolves the
// store from whichever is registered.
func newEngineCtx() (*context.Context, error) {
	if os.Getenv("DB_DRIVER") == "sqlite" {
		return context.NewCtx(
			&services.SqliteService{},
			&services.RedisService{},
			&services.MonitoringService{},

			&services.LedgerService{},
			&services.NotificationService{},
			&services.LeaderboardService{},
			&services.AchievementService{},
			&services.QuestService{},
			&services.ProgressService{},
			&services.IngestService{},
			&services.RateLimitService{},

			&services.HttpService{},
		)
	}

	return context.NewCtx(
		&services.PostgresService{},
		&services.RedisService{},
		&services.MonitoringService{},

		&services.LedgerService{},
		&services.NotificationService{},
		&services.LeaderboardService{},
		&services.AchievementService{},
		&services.QuestService{},
		&services.ProgressService{},
		&services.IngestService{},
		&services.RateLimitService{},

		&services.HttpService{},
	)
}
