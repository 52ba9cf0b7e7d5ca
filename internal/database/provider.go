// Forkcast - Personalized Recipe Recommendation Service
// Copyright 2026 Forkcast contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/forkcast/forkcast

package database

import (
	"context"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/forkcast/forkcast/internal/logging"
	"github.com/forkcast/forkcast/internal/recommend"
)

// RecipeDataProvider adapts DB to the recommendation engine's
// DataProvider interface. The catalog fetch - the single expensive
// query on the hot path - runs behind a circuit breaker so a degraded
// database fails fast instead of stacking up slow requests.
//
// Circuit breaker configuration:
//   - 1 minute measurement window
//   - 30 second timeout before attempting recovery
//   - Opens after 60% failure rate with minimum 5 requests
type RecipeDataProvider struct {
	db *DB
	cb *gobreaker.CircuitBreaker[[]recommend.Recipe]
}

// NewRecipeDataProvider wraps a DB for use by the engine.
func NewRecipeDataProvider(db *DB) *RecipeDataProvider {
	cb := gobreaker.NewCircuitBreaker[[]recommend.Recipe](gobreaker.Settings{
		Name:        "recipe-catalog",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("catalog circuit breaker state change")
		},
	})

	return &RecipeDataProvider{db: db, cb: cb}
}

// GetRecipes implements recommend.DataProvider via the circuit breaker.
func (p *RecipeDataProvider) GetRecipes(ctx context.Context, limit int) ([]recommend.Recipe, error) {
	return p.cb.Execute(func() ([]recommend.Recipe, error) {
		return p.db.GetRecipes(ctx, limit)
	})
}

// GetUserProfile implements recommend.DataProvider.
func (p *RecipeDataProvider) GetUserProfile(ctx context.Context, userID string) (recommend.UserProfile, error) {
	return p.db.GetUserProfile(ctx, userID)
}

// GetUserSettings implements recommend.DataProvider.
func (p *RecipeDataProvider) GetUserSettings(ctx context.Context, userID string) (recommend.UserSettings, error) {
	return p.db.GetUserSettings(ctx, userID)
}

// GetCalorieLog implements recommend.DataProvider.
func (p *RecipeDataProvider) GetCalorieLog(ctx context.Context, userID string, day time.Time) (recommend.CalorieLog, error) {
	return p.db.GetCalorieLog(ctx, userID, day)
}

// GetTagPreferences implements recommend.DataProvider.
func (p *RecipeDataProvider) GetTagPreferences(ctx context.Context, userID string) ([]recommend.TagPreference, error) {
	return p.db.GetTagPreferences(ctx, userID)
}

// GetTagPreference implements recommend.DataProvider.
func (p *RecipeDataProvider) GetTagPreference(ctx context.Context, userID string, tagID int) (*recommend.TagPreference, error) {
	return p.db.GetTagPreference(ctx, userID, tagID)
}

// GetCompletedRecipeIDs implements recommend.DataProvider.
func (p *RecipeDataProvider) GetCompletedRecipeIDs(ctx context.Context, userID string) ([]int, error) {
	return p.db.GetCompletedRecipeIDs(ctx, userID)
}

// GetRecipeTags implements recommend.DataProvider.
func (p *RecipeDataProvider) GetRecipeTags(ctx context.Context, recipeID int) ([]recommend.TagAssociation, error) {
	return p.db.GetRecipeTags(ctx, recipeID)
}

// UpsertTagPreference implements recommend.DataProvider.
func (p *RecipeDataProvider) UpsertTagPreference(ctx context.Context, pref recommend.TagPreference) error {
	return p.db.UpsertTagPreference(ctx, pref)
}

// RecordInteraction implements recommend.DataProvider.
func (p *RecipeDataProvider) RecordInteraction(ctx context.Context, inter recommend.Interaction) error {
	return p.db.RecordInteraction(ctx, inter)
}

// compile-time interface check
var _ recommend.DataProvider = (*RecipeDataProvider)(nil)
