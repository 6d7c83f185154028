package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-learn/lumen_api/shared"
)

func intPtr(v int) *int { return &v }

func validTestRequest() IngestEventRequest {
	return IngestEventRequest{
		EventID:    "evt-1",
		EventType:  shared.EventTestCompleted,
		UserID:     "user-1",
		OccurredAt: time.Now().UTC(),
		TestID:     "test-1",
		Score:      intPtr(90),
		Difficulty: shared.DifficultyEasy,
	}
}

func TestIngestEventRequestValid(t *testing.T) {
	req := validTestRequest()
	require.NoError(t, req.Validate())

	event := req.ToEvent()
	assert.Equal(t, "evt-1", event.ID)
	assert.Equal(t, shared.EventTestCompleted, event.Type)
	assert.Equal(t, 90, event.Score)
	assert.Equal(t, shared.DifficultyEasy, event.Difficulty)
}

func TestIngestEventRequestMissingFields(t *testing.T) {
	req := validTestRequest()
	req.EventID = ""
	assert.Error(t, req.Validate())

	req = validTestRequest()
	req.UserID = ""
	assert.Error(t, req.Validate())

	req = validTestRequest()
	req.OccurredAt = time.Time{}
	assert.Error(t, req.Validate())
}

func TestIngestEventRequestUnknownType(t *testing.T) {
	req := validTestRequest()
	req.EventType = "SomethingElse"
	assert.Error(t, req.Validate())
}

func TestIngestEventRequestTestPayloadRules(t *testing.T) {
	req := validTestRequest()
	req.TestID = ""
	assert.Error(t, req.Validate())

	req = validTestRequest()
	req.Score = nil
	assert.Error(t, req.Validate())

	req = validTestRequest()
	req.Score = intPtr(101)
	assert.Error(t, req.Validate())

	req = validTestRequest()
	req.Score = intPtr(-1)
	assert.Error(t, req.Validate())

	req = validTestRequest()
	req.Difficulty = "extreme"
	assert.Error(t, req.Validate())

	req = validTestRequest()
	req.Score = intPtr(0)
	assert.NoError(t, req.Validate())
}

func TestIngestEventRequestMaterialPayloadRules(t *testing.T) {
	req := IngestEventRequest{
		EventID:    "evt-2",
		EventType:  shared.EventMaterialViewed,
		UserID:     "user-1",
		OccurredAt: time.Now().UTC(),
	}
	assert.Error(t, req.Validate(), "material_id is required")

	req.MaterialID = "mat-1"
	assert.NoError(t, req.Validate())
}

func TestIngestEventRequestDailyLogin(t *testing.T) {
	req := IngestEventRequest{
		EventID:    "evt-3",
		EventType:  shared.EventDailyLogin,
		UserID:     "user-1",
		OccurredAt: time.Now().UTC(),
	}
	assert.NoError(t, req.Validate())
}

func TestCreateQuestRequestValidation(t *testing.T) {
	req := CreateQuestRequest{
		Title:        "Daily Learner",
		Kind:         shared.QuestKindDaily,
		Metric:       shared.MetricTestsCompleted,
		Target:       3,
		RewardPoints: 50,
	}
	require.NoError(t, req.Validate())

	bad := req
	bad.Metric = "not_a_metric"
	assert.Error(t, bad.Validate())

	bad = req
	bad.Kind = "monthly"
	assert.Error(t, bad.Validate())

	bad = req
	bad.Target = 0
	assert.Error(t, bad.Validate())
}

func TestCreateAchievementRequestValidation(t *testing.T) {
	req := CreateAchievementRequest{
		Name:      "First Steps",
		Metric:    shared.MetricStreakMax,
		Threshold: 3,
	}
	require.NoError(t, req.Validate())

	bad := req
	bad.Metric = "hearts"
	assert.Error(t, bad.Validate())

	bad = req
	bad.BadgeURL = "not a url"
	assert.Error(t, bad.Validate())
}
