package services

import (
	goContext "context"
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/lumen-learn/lumen_api/model"
)

// Notifier hands notification intents to the real-time delivery
// collaborator. Delivery is best effort; engine state never depends on it.
type Notifier interface {
	Send(intent *model.NotificationIntent)
}

// NotificationService publishes intents on a redis channel per user. A
// delivery failure is logged and dropped.
type NotificationService struct {
	context.DefaultService

	redis *RedisService

	channelPrefix string
}

const NOTIFICATION_SVC = "notification_svc"

func (svc NotificationService) Id() string {
	return NOTIFICATION_SVC
}

func (svc *NotificationService) Configure(ctx *context.Context) error {
	svc.channelPrefix = "notifications:"
	return svc.DefaultService.Configure(ctx)
}

func (svc *NotificationService) Start() error {
	if redisSvc, ok := svc.Service(REDIS_SVC).(*RedisService); ok {
		svc.redis = redisSvc
	}
	return nil
}

func (svc *NotificationService) Send(intent *model.NotificationIntent) {
	if svc.redis == nil {
		log.WithFields(log.Fields{
			"type":    intent.Type,
			"user_id": intent.UserID,
		}).Debug("Notification intent dropped, no publisher configured")
		return
	}

	ctx, cancel := goContext.WithTimeout(goContext.Background(), 500*time.Millisecond)
	defer cancel()

	channel := svc.channelPrefix + intent.UserID
	if err := svc.redis.Publish(ctx, channel, intent); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"type":    intent.Type,
			"user_id": intent.UserID,
		}).Warn("Failed to publish notification intent")
		return
	}

	log.WithFields(log.Fields{
		"type":    intent.Type,
		"user_id": intent.UserID,
	}).Debug("Notification intent published")
}
