// Forkcast - Personalized Recipe Recommendation Service
// Copyright 2026 Forkcast contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/forkcast/forkcast

package recommend

import (
	"fmt"
	"math"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Weights defines the contribution of each sub-score to the
	// aggregate. Must sum to 1.0 so the aggregate stays in [0, 100].
	Weights ScoreWeights `json:"weights" koanf:"weights"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits" koanf:"limits"`

	// Cache contains response caching parameters.
	Cache CacheConfig `json:"cache" koanf:"cache"`
}

// ScoreWeights defines the convex combination of the seven sub-scores.
type ScoreWeights struct {
	// TagMatch weighs tag affinity. Default: 0.25.
	TagMatch float64 `json:"tag_match" koanf:"tag_match"`

	// IngredientMatch weighs pantry availability. Default: 0.20.
	IngredientMatch float64 `json:"ingredient_match" koanf:"ingredient_match"`

	// UserPreference weighs profile-level dietary fit. Default: 0.15.
	UserPreference float64 `json:"user_preference" koanf:"user_preference"`

	// CalorieAlignment weighs fit against the remaining calorie budget.
	// Default: 0.15.
	CalorieAlignment float64 `json:"calorie_alignment" koanf:"calorie_alignment"`

	// TimeRelevance weighs meal-slot and prep-time fit. Default: 0.10.
	TimeRelevance float64 `json:"time_relevance" koanf:"time_relevance"`

	// Popularity weighs global tag popularity and nutrition quality.
	// Default: 0.10.
	Popularity float64 `json:"popularity" koanf:"popularity"`

	// Novelty weighs not-yet-completed recipes. Default: 0.05.
	Novelty float64 `json:"novelty" koanf:"novelty"`
}

// Sum returns the total of all seven weights.
func (w ScoreWeights) Sum() float64 {
	return w.TagMatch + w.IngredientMatch + w.UserPreference +
		w.CalorieAlignment + w.TimeRelevance + w.Popularity + w.Novelty
}

// Normalize returns a copy with weights scaled to sum to 1.0. All-zero
// weights yield the defaults.
func (w ScoreWeights) Normalize() ScoreWeights {
	sum := w.Sum()
	if sum == 0 {
		return DefaultConfig().Weights
	}
	return ScoreWeights{
		TagMatch:         w.TagMatch / sum,
		IngredientMatch:  w.IngredientMatch / sum,
		UserPreference:   w.UserPreference / sum,
		CalorieAlignment: w.CalorieAlignment / sum,
		TimeRelevance:    w.TimeRelevance / sum,
		Popularity:       w.Popularity / sum,
		Novelty:          w.Novelty / sum,
	}
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultLimit is the number of recipes returned when the request
	// does not specify one. Default: 10.
	DefaultLimit int `json:"default_limit" koanf:"default_limit"`

	// MaxLimit is the maximum allowed limit. Default: 100.
	MaxLimit int `json:"max_limit" koanf:"max_limit"`

	// MaxCandidates bounds the catalog fetch. The engine never scores
	// more recipes than this per request. Default: 1000.
	MaxCandidates int `json:"max_candidates" koanf:"max_candidates"`

	// CatalogTimeout bounds the catalog fetch, the single largest and
	// most variable-cost operation per request. Default: 10s.
	CatalogTimeout time.Duration `json:"catalog_timeout" koanf:"catalog_timeout"`

	// ContextTimeout bounds the concurrent context fetches (profile,
	// settings, calorie log, preferences, completions). Default: 5s.
	ContextTimeout time.Duration `json:"context_timeout" koanf:"context_timeout"`

	// DefaultCalorieTarget is used when neither today's goal nor the
	// user's settings provide one. Default: 2000.
	DefaultCalorieTarget int `json:"default_calorie_target" koanf:"default_calorie_target"`
}

// CacheConfig contains response caching parameters.
type CacheConfig struct {
	// Enabled controls whether response caching is active.
	// Default: true.
	Enabled bool `json:"enabled" koanf:"enabled"`

	// TTL is the cache entry time-to-live. Default: 2m.
	TTL time.Duration `json:"ttl" koanf:"ttl"`

	// MaxEntries is the maximum number of cached responses.
	// Default: 4096.
	MaxEntries int `json:"max_entries" koanf:"max_entries"`
}

// DefaultConfig returns a Config with the production scoring weights.
func DefaultConfig() *Config {
	return &Config{
		Weights: ScoreWeights{
			TagMatch:         0.25,
			IngredientMatch:  0.20,
			UserPreference:   0.15,
			CalorieAlignment: 0.15,
			TimeRelevance:    0.10,
			Popularity:       0.10,
			Novelty:          0.05,
		},
		Limits: LimitsConfig{
			DefaultLimit:         10,
			MaxLimit:             100,
			MaxCandidates:        1000,
			CatalogTimeout:       10 * time.Second,
			ContextTimeout:       5 * time.Second,
			DefaultCalorieTarget: 2000,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        2 * time.Minute,
			MaxEntries: 4096,
		},
	}
}

// weightSumTolerance absorbs float accumulation error when validating
// that the weights form a convex combination.
const weightSumTolerance = 1e-9

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Weights.TagMatch < 0 || c.Weights.IngredientMatch < 0 ||
		c.Weights.UserPreference < 0 || c.Weights.CalorieAlignment < 0 ||
		c.Weights.TimeRelevance < 0 || c.Weights.Popularity < 0 ||
		c.Weights.Novelty < 0 {
		return fmt.Errorf("weights must be non-negative")
	}
	if sum := c.Weights.Sum(); math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("weights must sum to 1.0, got %f", sum)
	}

	if c.Limits.DefaultLimit < 1 {
		return fmt.Errorf("limits.default_limit must be positive, got %d", c.Limits.DefaultLimit)
	}
	if c.Limits.MaxLimit < c.Limits.DefaultLimit {
		return fmt.Errorf("limits.max_limit must be >= limits.default_limit, got %d < %d",
			c.Limits.MaxLimit, c.Limits.DefaultLimit)
	}
	if c.Limits.MaxCandidates < 1 {
		return fmt.Errorf("limits.max_candidates must be positive, got %d", c.Limits.MaxCandidates)
	}
	if c.Limits.CatalogTimeout <= 0 {
		return fmt.Errorf("limits.catalog_timeout must be positive, got %v", c.Limits.CatalogTimeout)
	}
	if c.Limits.ContextTimeout <= 0 {
		return fmt.Errorf("limits.context_timeout must be positive, got %v", c.Limits.ContextTimeout)
	}
	if c.Limits.DefaultCalorieTarget < 1 {
		return fmt.Errorf("limits.default_calorie_target must be positive, got %d", c.Limits.DefaultCalorieTarget)
	}

	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive, got %v", c.Cache.TTL)
		}
		if c.Cache.MaxEntries < 1 {
			return fmt.Errorf("cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
		}
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs contain only value types.
	return &Config{
		Weights: c.Weights,
		Limits:  c.Limits,
		Cache:   c.Cache,
	}
}
