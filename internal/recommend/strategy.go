// Forkcast - Personalized Recipe Recommendation Service
// Copyright 2026 Forkcast contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/forkcast/forkcast

package recommend

// Strategy names accepted on the request.
const (
	StrategyPersonalized = "personalized"
	StrategyDefault      = "default"
)

// PersonalizedStrategy is the full seven-factor model. It is the
// engine's default when the request names no strategy.
type PersonalizedStrategy struct {
	weights ScoreWeights
}

// NewPersonalizedStrategy builds the seven-factor strategy with the
// given weights. Weights are expected to be pre-validated.
func NewPersonalizedStrategy(weights ScoreWeights) *PersonalizedStrategy {
	return &PersonalizedStrategy{weights: weights}
}

// Name implements Strategy.
func (s *PersonalizedStrategy) Name() string { return StrategyPersonalized }

// Score implements Strategy.
func (s *PersonalizedStrategy) Score(r Recipe, snap *Snapshot) (float64, ScoreBreakdown) {
	breakdown := computeBreakdown(r, snap)
	return aggregate(s.weights, breakdown), breakdown
}

// DefaultStrategy is a lightweight fallback for users with no history:
// it blends nutrition quality, editorial points and pantry availability
// and skips every personalization signal.
type DefaultStrategy struct{}

// NewDefaultStrategy builds the fallback strategy.
func NewDefaultStrategy() *DefaultStrategy { return &DefaultStrategy{} }

// Name implements Strategy.
func (s *DefaultStrategy) Name() string { return StrategyDefault }

// Score implements Strategy.
func (s *DefaultStrategy) Score(r Recipe, snap *Snapshot) (float64, ScoreBreakdown) {
	nutrition := r.NutritionScore * 10
	if nutrition > 100 {
		nutrition = 100
	}
	points := float64(r.Points)
	if points > 100 {
		points = 100
	}
	ingredients := scoreIngredientMatch(r, snap)

	// Only the sub-scores this strategy actually weighs appear in the
	// breakdown; everything else stays zero.
	score := 0.35*nutrition + 0.35*points + 0.30*ingredients
	breakdown := ScoreBreakdown{IngredientMatch: ingredients}
	return clampScore(score), breakdown
}
