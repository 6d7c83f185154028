package handlers

import (
	"github.com/lumen-learn/lumen_api/dto"
	"github.com/lumen-learn/lumen_api/model"
)

type IngestServiceInterface interface {
	Enqueue(event *model.Event) error
}

type ProgressServiceInterface interface {
	GetUserProgress(userID string) (*dto.UserProgressResponse, error)
}

type LeaderboardServiceInterface interface {
	GetLeaderboard(limit, offset int) (*dto.LeaderboardResponse, error)
	GetRank(userID string) (*dto.RankResponse, error)
}

type QuestServiceInterface interface {
	GetQuests(userID, status string) ([]*dto.QuestProgressResponse, error)
	Claim(userID, questID string) (*dto.ClaimRewardResponse, error)
	CreateQuest(req *dto.CreateQuestRequest) (*model.Quest, error)
	ListQuests() ([]model.Quest, error)
}

type AchievementServiceInterface interface {
	GetUserAchievements(userID string) ([]*dto.AchievementResponse, error)
	CreateAchievement(req *dto.CreateAchievementRequest) (*model.Achievement, error)
}
