package services

import (
	"fmt"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberSwagger "github.com/gofiber/swagger"
	log "github.com/sirupsen/logrus"

	"github.com/lumen-learn/lumen_api/services/handlers"
	"github.com/lumen-learn/lumen_api/shared"
)

// HttpService is the API surface. Writes go through the ingest queue, reads
// hit the services directly. Registered last so its blocking listener keeps
// the process alive.
type HttpService struct {
	context.DefaultService

	ingestSvc      *IngestService
	progressSvc    *ProgressService
	questSvc       *QuestService
	achievementSvc *AchievementService
	leaderboardSvc *LeaderboardService
	rateLimitSvc   *RateLimitService
	monitoringSvc  *MonitoringService

	port   int
	server *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.ingestSvc = svc.Service(INGEST_SVC).(*IngestService)
	svc.progressSvc = svc.Service(PROGRESS_SVC).(*ProgressService)
	svc.questSvc = svc.Service(QUEST_SVC).(*QuestService)
	svc.achievementSvc = svc.Service(ACHIEVEMENT_SVC).(*AchievementService)
	svc.leaderboardSvc = svc.Service(LEADERBOARD_SVC).(*LeaderboardService)
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)
	if monitoringSvc, ok := svc.Service(MONITORING_SVC).(*MonitoringService); ok {
		svc.monitoringSvc = monitoringSvc
	}

	app := fiber.New(fiber.Config{
		AppName:      SERVICE_NAME,
		ErrorHandler: svc.handleError,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	if svc.monitoringSvc != nil {
		app.Use(MonitoringMiddleware(svc.monitoringSvc))
	}

	eventHandler := handlers.NewEventHandler(svc.ingestSvc)
	progressHandler := handlers.NewProgressHandler(svc.progressSvc)
	leaderboardHandler := handlers.NewLeaderboardHandler(svc.leaderboardSvc)
	questHandler := handlers.NewQuestHandler(svc.questSvc, svc.achievementSvc)

	app.Get("/ping", svc.ping)
	app.Get("/swagger/*", fiberSwagger.HandlerDefault)

	v1 := app.Group("/api/v1")
	v1.Get("/ping", svc.ping)

	v1.Post("/events", svc.rateLimitSvc.Middleware("ingest"), eventHandler.IngestEvent)

	v1.Get("/progress/:user_id", svc.rateLimitSvc.Middleware("read"), progressHandler.GetUserProgress)

	v1.Get("/leaderboard", svc.rateLimitSvc.Middleware("read"), leaderboardHandler.GetLeaderboard)
	v1.Get("/leaderboard/rank/:user_id", svc.rateLimitSvc.Middleware("read"), leaderboardHandler.GetRank)

	v1.Get("/quests/:user_id", svc.rateLimitSvc.Middleware("read"), questHandler.GetQuests)
	v1.Post("/quests/:user_id/:quest_id/claim", svc.rateLimitSvc.Middleware("claim"), questHandler.ClaimQuest)

	v1.Get("/achievements/:user_id", svc.rateLimitSvc.Middleware("read"), questHandler.GetAchievements)

	admin := v1.Group("/admin", svc.rateLimitSvc.Middleware("admin"))
	admin.Post("/quests", questHandler.CreateQuest)
	admin.Get("/quests", questHandler.ListQuests)
	admin.Post("/achievements", questHandler.CreateAchievement)

	app.Use(func(c *fiber.Ctx) error {
		return shared.ResponseNotFound(c)
	})

	svc.server = app

	log.WithField("port", svc.port).Info("HTTP server starting")
	return app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set("Cache-Control", "max-age=10")

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", "pong")
}

func (svc *HttpService) handleError(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	if fiberErr, ok := err.(*fiber.Error); ok {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	log.WithError(err).Error("Unhandled request error")
	return shared.ResponseInternalError(c, err)
}
