package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lumen-learn/lumen_api/dto"
	"github.com/lumen-learn/lumen_api/shared"
)

type EventHandler struct {
	ingestSvc IngestServiceInterface
}

func NewEventHandler(ingestSvc IngestServiceInterface) *EventHandler {
	return &EventHandler{ingestSvc: ingestSvc}
}

// @Summary Ingest Event
// @Description Accept a learning event for asynchronous processing
// @Tags events
// @Accept json
// @Produce json
// @Param request body dto.IngestEventRequest true "Learning event"
// @Success 202 {object} shared.Response{data=dto.IngestAcceptedResponse}
// @Failure 400 {object} shared.Response
// @Failure 503 {object} shared.Response
// @Router /api/v1/events [post]
func (h *EventHandler) IngestEvent(c *fiber.Ctx) error {
	var req dto.IngestEventRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	if err := req.Validate(); err != nil {
		return shared.NewValidationError(err, dto.FormatValidationErrors(err))
	}

	if err := h.ingestSvc.Enqueue(req.ToEvent()); err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusAccepted, "Accepted", dto.IngestAcceptedResponse{
		EventID: req.EventID,
		Status:  "queued",
	})
}
