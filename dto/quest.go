package dto

import (
	"time"

	"github.com/lumen-learn/lumen_api/model"
)

type QuestProgressResponse struct {
	QuestID       string     `json:"quest_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Kind          string     `json:"kind"`
	Metric        string     `json:"metric"`
	Target        int        `json:"target"`
	RewardPoints  int        `json:"reward_points"`
	ProgressCount int        `json:"progress_count"`
	Status        string     `json:"status"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	ClaimedAt     *time.Time `json:"claimed_at,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

func NewQuestProgressResponse(qp *model.QuestProgress) *QuestProgressResponse {
	return &QuestProgressResponse{
		QuestID:       qp.QuestID,
		Title:         qp.Quest.Title,
		Description:   qp.Quest.Description,
		Kind:          qp.Quest.Kind,
		Metric:        qp.Quest.Metric,
		Target:        qp.Quest.Target,
		RewardPoints:  qp.Quest.RewardPoints,
		ProgressCount: qp.ProgressCount,
		Status:        qp.Status,
		CompletedAt:   qp.CompletedAt,
		ClaimedAt:     qp.ClaimedAt,
		ExpiresAt:     qp.Quest.ExpiresAt,
	}
}

type ClaimRewardResponse struct {
	QuestID       string    `json:"quest_id"`
	PointsAwarded int       `json:"points_awarded"`
	ClaimedAt     time.Time `json:"claimed_at"`
}

type CreateQuestRequest struct {
	Title        string     `json:"title" validate:"required,max=120"`
	Description  string     `json:"description" validate:"max=500"`
	Kind         string     `json:"kind" validate:"required,oneof=daily weekly achievement special"`
	Metric       string     `json:"metric" validate:"required,quest_metric"`
	Target       int        `json:"target" validate:"required,gt=0"`
	RewardPoints int        `json:"reward_points" validate:"required,gt=0"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

func (r *CreateQuestRequest) Validate() error {
	return validate.Struct(r)
}

func (r *CreateQuestRequest) ToQuest() *model.Quest {
	return &model.Quest{
		Title:        r.Title,
		Description:  r.Description,
		Kind:         r.Kind,
		Metric:       r.Metric,
		Target:       r.Target,
		RewardPoints: r.RewardPoints,
		ExpiresAt:    r.ExpiresAt,
		IsActive:     true,
	}
}
