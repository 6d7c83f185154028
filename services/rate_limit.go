package services

import (
	goContext "context"
	"fmt"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/lumen-learn/lumen_api/shared"
)

// RateLimitService applies fixed-window limits per client IP, counted in
// redis so limits hold across replicas. With no redis available requests
// pass through.
type RateLimitService struct {
	context.DefaultService

	configs map[string]*RateLimitConfig
	mutex   sync.RWMutex

	redis *RedisService
}

// RateLimitConfig represents rate limiting configuration
type RateLimitConfig struct {
	EndpointType string
	MaxRequests  int
	WindowSize   time.Duration
	Description  string
	IsActive     bool
}

const RATE_LIMIT_SVC = "rate_limit_svc"

func (svc *RateLimitService) Id() string {
	return RATE_LIMIT_SVC
}

func (svc *RateLimitService) Configure(ctx *context.Context) error {
	svc.configs = make(map[string]*RateLimitConfig)
	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitService) Start() error {
	if redisSvc, ok := svc.Service(REDIS_SVC).(*RedisService); ok {
		svc.redis = redisSvc
	}
	svc.initDefaultConfigs()
	return nil
}

// ==================== CONFIGURATION MANAGEMENT ====================

func (svc *RateLimitService) initDefaultConfigs() {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	svc.configs = map[string]*RateLimitConfig{
		"ingest": {
			EndpointType: "ingest",
			MaxRequests:  600,
			WindowSize:   time.Minute,
			Description:  "Event ingest rate limit",
			IsActive:     true,
		},
		"read": {
			EndpointType: "read",
			MaxRequests:  300,
			WindowSize:   time.Minute,
			Description:  "Progress and leaderboard read rate limit",
			IsActive:     true,
		},
		"claim": {
			EndpointType: "claim",
			MaxRequests:  60,
			WindowSize:   time.Minute,
			Description:  "Quest claim rate limit",
			IsActive:     true,
		},
		"admin": {
			EndpointType: "admin",
			MaxRequests:  30,
			WindowSize:   time.Minute,
			Description:  "Admin authoring rate limit",
			IsActive:     true,
		},
	}
}

func (svc *RateLimitService) config(endpointType string) *RateLimitConfig {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()
	return svc.configs[endpointType]
}

// Allow counts one request against the window and reports whether it fits.
func (svc *RateLimitService) Allow(endpointType, clientIP string) bool {
	cfg := svc.config(endpointType)
	if cfg == nil || !cfg.IsActive || svc.redis == nil {
		return true
	}

	window := time.Now().Unix() / int64(cfg.WindowSize.Seconds())
	key := fmt.Sprintf("ratelimit:%s:%s:%d", endpointType, clientIP, window)

	ctx, cancel := goContext.WithTimeout(goContext.Background(), 200*time.Millisecond)
	defer cancel()

	count, err := svc.redis.Increment(ctx, key)
	if err != nil {
		log.WithError(err).Debug("Rate limit counter unavailable, allowing request")
		return true
	}
	if count == 1 {
		_ = svc.redis.Expire(ctx, key, cfg.WindowSize)
	}

	return count <= int64(cfg.MaxRequests)
}

// Middleware rejects requests over the limit with 429.
func (svc *RateLimitService) Middleware(endpointType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !svc.Allow(endpointType, c.IP()) {
			log.WithFields(log.Fields{
				"endpoint_type": endpointType,
				"client_ip":     c.IP(),
			}).Warn("Rate limit exceeded")
			return shared.ResponseJSON(c, fiber.StatusTooManyRequests, "Too many requests", nil)
		}
		return c.Next()
	}
}
