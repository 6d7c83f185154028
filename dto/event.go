package dto

import (
	"fmt"
	"time"

	"github.com/lumen-learn/lumen_api/model"
	"github.com/lumen-learn/lumen_api/shared"
)

// IngestEventRequest is the wire form of a learning event. Payload fields are
// flat; which ones are required depends on event_type.
type IngestEventRequest struct {
	EventID    string    `json:"event_id" validate:"required"`
	EventType  string    `json:"event_type" validate:"required,oneof=TestCompleted MaterialViewed DailyLogin"`
	UserID     string    `json:"user_id" validate:"required"`
	OccurredAt time.Time `json:"occurred_at" validate:"required"`

	TestID     string `json:"test_id,omitempty"`
	Score      *int   `json:"score,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`

	MaterialID string `json:"material_id,omitempty"`
}

func (r *IngestEventRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}

	switch r.EventType {
	case shared.EventTestCompleted:
		if r.TestID == "" {
			return fmt.Errorf("test_id is required for %s events", r.EventType)
		}
		if r.Score == nil {
			return fmt.Errorf("score is required for %s events", r.EventType)
		}
		if *r.Score < 0 || *r.Score > 100 {
			return fmt.Errorf("score must be between 0 and 100")
		}
		switch r.Difficulty {
		case shared.DifficultyEasy, shared.DifficultyMedium, shared.DifficultyHard:
		default:
			return fmt.Errorf("difficulty must be one of: easy medium hard")
		}
	case shared.EventMaterialViewed:
		if r.MaterialID == "" {
			return fmt.Errorf("material_id is required for %s events", r.EventType)
		}
	}

	return nil
}

// ToEvent converts the validated request into the engine's event fact.
func (r *IngestEventRequest) ToEvent() *model.Event {
	e := &model.Event{
		ID:         r.EventID,
		Type:       r.EventType,
		UserID:     r.UserID,
		OccurredAt: r.OccurredAt,
		TestID:     r.TestID,
		Difficulty: r.Difficulty,
		MaterialID: r.MaterialID,
	}
	if r.Score != nil {
		e.Score = *r.Score
	}
	return e
}

type IngestAcceptedResponse struct {
	EventID string `json:"event_id"`
	Status  string `json:"status"`
}
