package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/lumen-learn/lumen_api/shared"
)

type LeaderboardHandler struct {
	leaderboardSvc LeaderboardServiceInterface
}

func NewLeaderboardHandler(leaderboardSvc LeaderboardServiceInterface) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardSvc: leaderboardSvc}
}

// @Summary Get Leaderboard
// @Description Get a page of the points leaderboard
// @Tags leaderboard
// @Accept json
// @Produce json
// @Param limit query int false "Limit results (default 50, max 100)"
// @Param offset query int false "Offset into the ranking"
// @Success 200 {object} shared.Response{data=dto.LeaderboardResponse}
// @Router /api/v1/leaderboard [get]
func (h *LeaderboardHandler) GetLeaderboard(c *fiber.Ctx) error {
	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	offset := 0
	if o := c.Query("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	leaderboard, err := h.leaderboardSvc.GetLeaderboard(limit, offset)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", leaderboard)
}

// @Summary Get User Rank
// @Description Get a single user's leaderboard position
// @Tags leaderboard
// @Accept json
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} shared.Response{data=dto.RankResponse}
// @Failure 404 {object} shared.Response
// @Router /api/v1/leaderboard/rank/{user_id} [get]
func (h *LeaderboardHandler) GetRank(c *fiber.Ctx) error {
	userID := c.Params(shared.UserID)
	if userID == "" {
		return shared.NewBadRequestError(nil, "user_id is required")
	}

	rank, err := h.leaderboardSvc.GetRank(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", rank)
}
