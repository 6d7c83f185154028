package dto

import (
	"time"

	"github.com/lumen-learn/lumen_api/model"
)

type AchievementResponse struct {
	AchievementID string    `json:"achievement_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	BadgeURL      string    `json:"badge_url,omitempty"`
	Metric        string    `json:"metric"`
	Threshold     int       `json:"threshold"`
	RewardPoints  int       `json:"reward_points"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}

func NewAchievementResponse(u *model.AchievementUnlock) *AchievementResponse {
	return &AchievementResponse{
		AchievementID: u.AchievementID,
		Name:          u.Achievement.Name,
		Description:   u.Achievement.Description,
		BadgeURL:      u.Achievement.BadgeURL,
		Metric:        u.Achievement.Metric,
		Threshold:     u.Achievement.Threshold,
		RewardPoints:  u.Achievement.RewardPoints,
		UnlockedAt:    u.UnlockedAt,
	}
}

type CreateAchievementRequest struct {
	Name         string `json:"name" validate:"required,max=120"`
	Description  string `json:"description" validate:"max=500"`
	BadgeURL     string `json:"badge_url" validate:"omitempty,url"`
	Metric       string `json:"metric" validate:"required,achievement_metric"`
	Threshold    int    `json:"threshold" validate:"required,gt=0"`
	RewardPoints int    `json:"reward_points" validate:"gte=0"`
}

func (r *CreateAchievementRequest) Validate() error {
	return validate.Struct(r)
}

func (r *CreateAchievementRequest) ToAchievement() *model.Achievement {
	return &model.Achievement{
		Name:         r.Name,
		Description:  r.Description,
		BadgeURL:     r.BadgeURL,
		Metric:       r.Metric,
		Threshold:    r.Threshold,
		RewardPoints: r.RewardPoints,
		IsActive:     true,
	}
}
