// Package behavior is the one piece of shared mutable state in the pipeline:
// a keyed store of per-user preference profiles learned from feedback events,
// plus product-level aggregates for collaborative and trending signals.
package behavior

import (
	"math"
	"time"

	"github.com/cartwise/recommender/internal/models"
)

// DefaultHalfLifeDays is the preference half-life: a signal loses half its
// weight every 30 days.
const DefaultHalfLifeDays = 30.0

// Default parameters of the confidence curve.
const (
	DefaultConfidenceMidpoint = 30.0
	DefaultConfidenceScale    = 15.0
)

// Decay returns the exponential decay factor for a signal ageDays old:
// exp(-ageDays * ln2 / halfLife). Decay(0) is exactly 1.
func Decay(ageDays, halfLifeDays float64) float64 {
	if ageDays <= 0 {
		return 1
	}
	return math.Exp(-ageDays * math.Ln2 / halfLifeDays)
}

// Confidence maps an interaction count onto [0,1) with a logistic curve:
// 1 / (1 + exp(-(n - midpoint)/scale)). No hard thresholds; confidence at the
// midpoint is exactly 0.5 and approaches 1 as n grows.
func Confidence(n int, midpoint, scale float64) float64 {
	return 1 / (1 + math.Exp(-(float64(n)-midpoint)/scale))
}

// addSignal folds a new contribution into a decayed signal. Contributions are
// kept decayed to the newest event timestamp seen, so out-of-order events
// still decay relative to wall time rather than insertion order.
func addSignal(sig *models.DecayedSignal, weight float64, at time.Time, halfLifeDays float64) {
	switch {
	case sig.LastEvent.IsZero():
		sig.Weight = weight
		sig.LastEvent = at
	case at.After(sig.LastEvent):
		age := at.Sub(sig.LastEvent).Hours() / 24
		sig.Weight = sig.Weight*Decay(age, halfLifeDays) + weight
		sig.LastEvent = at
	default:
		age := sig.LastEvent.Sub(at).Hours() / 24
		sig.Weight += weight * Decay(age, halfLifeDays)
	}

	sig.Events++
}

// signalValue returns a signal's weight decayed from its last event to now.
func signalValue(sig models.DecayedSignal, now time.Time, halfLifeDays float64) float64 {
	if sig.LastEvent.IsZero() || !now.After(sig.LastEvent) {
		return sig.Weight
	}

	age := now.Sub(sig.LastEvent).Hours() / 24
	return sig.Weight * Decay(age, halfLifeDays)
}
