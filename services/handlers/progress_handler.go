package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lumen-learn/lumen_api/shared"
)

type ProgressHandler struct {
	progressSvc ProgressServiceInterface
}

func NewProgressHandler(progressSvc ProgressServiceInterface) *ProgressHandler {
	return &ProgressHandler{progressSvc: progressSvc}
}

// @Summary Get User Progress
// @Description Get the aggregated progress state for a user
// @Tags progress
// @Accept json
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} shared.Response{data=dto.UserProgressResponse}
// @Failure 404 {object} shared.Response
// @Router /api/v1/progress/{user_id} [get]
func (h *ProgressHandler) GetUserProgress(c *fiber.Ctx) error {
	userID := c.Params(shared.UserID)
	if userID == "" {
		return shared.NewBadRequestError(nil, "user_id is required")
	}

	progress, err := h.progressSvc.GetUserProgress(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", progress)
}
