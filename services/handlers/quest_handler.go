package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lumen-learn/lumen_api/dto"
	"github.com/lumen-learn/lumen_api/shared"
)

type QuestHandler struct {
	questSvc       QuestServiceInterface
	achievementSvc AchievementServiceInterface
}

func NewQuestHandler(questSvc QuestServiceInterface, achievementSvc AchievementServiceInterface) *QuestHandler {
	return &QuestHandler{
		questSvc:       questSvc,
		achievementSvc: achievementSvc,
	}
}

// @Summary Get User Quests
// @Description Get the user's quest board, optionally filtered by status
// @Tags quests
// @Accept json
// @Produce json
// @Param user_id path string true "User ID"
// @Param status query string false "Filter by status (available, in_progress, completed, claimed, expired)"
// @Success 200 {object} shared.Response{data=[]dto.QuestProgressResponse}
// @Router /api/v1/quests/{user_id} [get]
func (h *QuestHandler) GetQuests(c *fiber.Ctx) error {
	userID := c.Params(shared.UserID)
	if userID == "" {
		return shared.NewBadRequestError(nil, "user_id is required")
	}

	status := c.Query("status")
	switch status {
	case "", shared.QuestStatusAvailable, shared.QuestStatusInProgress,
		shared.QuestStatusCompleted, shared.QuestStatusClaimed, shared.QuestStatusExpired:
	default:
		return shared.NewBadRequestError(nil, "Invalid status filter")
	}

	quests, err := h.questSvc.GetQuests(userID, status)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", quests)
}

// @Summary Claim Quest Reward
// @Description Claim the reward for a completed quest
// @Tags quests
// @Accept json
// @Produce json
// @Param user_id path string true "User ID"
// @Param quest_id path string true "Quest ID"
// @Success 200 {object} shared.Response{data=dto.ClaimRewardResponse}
// @Failure 404 {object} shared.Response
// @Failure 409 {object} shared.Response
// @Router /api/v1/quests/{user_id}/{quest_id}/claim [post]
func (h *QuestHandler) ClaimQuest(c *fiber.Ctx) error {
	userID := c.Params(shared.UserID)
	questID := c.Params("quest_id")
	if userID == "" || questID == "" {
		return shared.NewBadRequestError(nil, "user_id and quest_id are required")
	}

	result, err := h.questSvc.Claim(userID, questID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", result)
}

// @Summary Get User Achievements
// @Description Get the achievements a user has unlocked
// @Tags achievements
// @Accept json
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} shared.Response{data=[]dto.AchievementResponse}
// @Router /api/v1/achievements/{user_id} [get]
func (h *QuestHandler) GetAchievements(c *fiber.Ctx) error {
	userID := c.Params(shared.UserID)
	if userID == "" {
		return shared.NewBadRequestError(nil, "user_id is required")
	}

	achievements, err := h.achievementSvc.GetUserAchievements(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", achievements)
}

// @Summary Create Quest
// @Description Register a new authored quest
// @Tags admin
// @Accept json
// @Produce json
// @Param request body dto.CreateQuestRequest true "Quest definition"
// @Success 201 {object} shared.Response{data=model.Quest}
// @Failure 400 {object} shared.Response
// @Router /api/v1/admin/quests [post]
func (h *QuestHandler) CreateQuest(c *fiber.Ctx) error {
	var req dto.CreateQuestRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	if err := req.Validate(); err != nil {
		return shared.NewValidationError(err, dto.FormatValidationErrors(err))
	}

	quest, err := h.questSvc.CreateQuest(&req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusCreated, "Created", quest)
}

// @Summary List Quests
// @Description List all active authored quests
// @Tags admin
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response{data=[]model.Quest}
// @Router /api/v1/admin/quests [get]
func (h *QuestHandler) ListQuests(c *fiber.Ctx) error {
	quests, err := h.questSvc.ListQuests()
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", quests)
}

// @Summary Create Achievement
// @Description Register a new authored achievement
// @Tags admin
// @Accept json
// @Produce json
// @Param request body dto.CreateAchievementRequest true "Achievement definition"
// @Success 201 {object} shared.Response{data=model.Achievement}
// @Failure 400 {object} shared.Response
// @Router /api/v1/admin/achievements [post]
func (h *QuestHandler) CreateAchievement(c *fiber.Ctx) error {
	var req dto.CreateAchievementRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	if err := req.Validate(); err != nil {
		return shared.NewValidationError(err, dto.FormatValidationErrors(err))
	}

	achievement, err := h.achievementSvc.CreateAchievement(&req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusCreated, "Created", achievement)
}
