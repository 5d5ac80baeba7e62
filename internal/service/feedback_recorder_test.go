package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartwise/recommender/internal/behavior"
	"github.com/cartwise/recommender/internal/models"
)

func TestFeedbackRecorder_DrainsOnShutdown(t *testing.T) {
	store := behavior.NewMemoryStore()
	recorder := NewFeedbackRecorder(store)

	for i := 0; i < 50; i++ {
		recorder.Enqueue(models.FeedbackEvent{
			UserID:    "u1",
			ProductID: "p1",
			Action:    models.ActionClick,
			Context:   models.FeedbackContext{Category: "laptop", Brand: "dell", Price: 900},
			Timestamp: time.Now(),
		})
	}

	recorder.Shutdown()

	profile, ok := store.Profile("u1")
	require.True(t, ok)
	assert.Equal(t, 50, profile.Interactions)
	assert.Zero(t, recorder.Dropped())
}

func TestFeedbackRecorder_SetsMissingTimestamp(t *testing.T) {
	captured := make(chan models.FeedbackEvent, 1)
	recorder := NewFeedbackRecorder(recordFunc(func(event models.FeedbackEvent) error {
		captured <- event
		return nil
	}))

	recorder.Enqueue(models.FeedbackEvent{UserID: "u1", ProductID: "p1", Action: models.ActionView})
	recorder.Shutdown()

	event := <-captured
	assert.False(t, event.Timestamp.IsZero())
}

func TestFeedbackRecorder_BadEventDoesNotStopWorker(t *testing.T) {
	store := behavior.NewMemoryStore()
	recorder := NewFeedbackRecorder(store)

	recorder.Enqueue(models.FeedbackEvent{UserID: "u1", ProductID: "p1", Action: "teleport"})
	recorder.Enqueue(models.FeedbackEvent{
		UserID: "u1", ProductID: "p1", Action: models.ActionView,
		Context: models.FeedbackContext{Category: "laptop"},
	})
	recorder.Shutdown()

	profile, ok := store.Profile("u1")
	require.True(t, ok)
	assert.Equal(t, 1, profile.Interactions)
}

// recordFunc adapts a function to the BehaviorRecorder interface.
type recordFunc func(event models.FeedbackEvent) error

func (f recordFunc) Record(event models.FeedbackEvent) error { return f(event) }
