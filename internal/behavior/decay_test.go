package behavior

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cartwise/recommender/internal/models"
)

func TestDecay(t *testing.T) {
	assert.InDelta(t, 1.0, Decay(0, 30), 1e-12)
	assert.InDelta(t, 0.5, Decay(30, 30), 1e-12)
	assert.InDelta(t, 0.25, Decay(60, 30), 1e-12)

	// Strictly decreasing in age.
	prev := Decay(0, 30)
	for age := 1.0; age <= 120; age++ {
		cur := Decay(age, 30)
		assert.Less(t, cur, prev)
		prev = cur
	}
}

func TestConfidence(t *testing.T) {
	assert.InDelta(t, 0.5, Confidence(30, 30, 15), 1e-12)
	assert.Less(t, Confidence(0, 30, 15), 0.15)
	assert.Greater(t, Confidence(200, 30, 15), 0.999)

	// Strictly increasing in interaction count.
	prev := Confidence(0, 30, 15)
	for n := 1; n <= 100; n++ {
		cur := Confidence(n, 30, 15)
		assert.Greater(t, cur, prev)
		prev = cur
	}
}

func TestAddSignal_OutOfOrderEventsDecayAgainstWallTime(t *testing.T) {
	now := time.Now()

	// In order: old event then recent event.
	var inOrder models.DecayedSignal
	addSignal(&inOrder, 1.0, now.AddDate(0, 0, -30), 30)
	addSignal(&inOrder, 1.0, now, 30)

	// Same events arriving reversed.
	var reversed models.DecayedSignal
	addSignal(&reversed, 1.0, now, 30)
	addSignal(&reversed, 1.0, now.AddDate(0, 0, -30), 30)

	assert.InDelta(t, inOrder.Weight, reversed.Weight, 1e-9)
	assert.Equal(t, inOrder.LastEvent.Unix(), reversed.LastEvent.Unix())

	// The 30-day-old event contributes half weight either way.
	assert.InDelta(t, 1.5, inOrder.Weight, 1e-9)
}

func TestSignalValue_DecaysFromLastEvent(t *testing.T) {
	now := time.Now()

	var sig models.DecayedSignal
	addSignal(&sig, 1.0, now.AddDate(0, 0, -30), 30)

	assert.InDelta(t, 0.5, signalValue(sig, now, 30), 1e-6)
	assert.InDelta(t, 1.0, signalValue(sig, sig.LastEvent, 30), 1e-12)
}
