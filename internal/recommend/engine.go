// Forkcast - Personalized Recipe Recommendation Service
// Copyright 2026 Forkcast contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/forkcast/forkcast

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrMissingUser is returned when a request carries no user ID.
	ErrMissingUser = errors.New("user_id is required")
	// ErrNoProvider is returned when no data provider has been set.
	ErrNoProvider = errors.New("data provider not set")
	// ErrUnknownStrategy is returned for an unregistered strategy name.
	ErrUnknownStrategy = errors.New("unknown strategy")
	// ErrInvalidRecipe is returned for a non-positive recipe ID.
	ErrInvalidRecipe = errors.New("recipe_id must be positive")
)

// Note: This package has no dependencies on other internal packages to
// maintain clean separation. The DataProvider interface allows
// integration with the database package without circular imports.

// Engine assembles per-request scoring snapshots, runs the selected
// strategy over the candidate catalog, and maintains learned tag
// preferences from interaction feedback. It is safe for concurrent use.
type Engine struct {
	// Configuration, swappable at runtime
	config   *Config
	configMu sync.RWMutex

	logger zerolog.Logger

	// Registered scoring strategies by name
	strategies map[string]Strategy
	stratMu    sync.RWMutex

	// Metrics
	requestCount     atomic.Int64
	cacheHits        atomic.Int64
	cacheMisses      atomic.Int64
	errorCount       atomic.Int64
	interactionCount atomic.Int64

	// Cache (simple in-memory TTL map)
	cache   map[string]cacheEntry
	cacheMu sync.RWMutex

	// Data provider interface
	dataProvider DataProvider
}

// cacheEntry holds a cached recommendation response.
type cacheEntry struct {
	response  *Response
	expiresAt time.Time
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		config:     cfg,
		logger:     logger.With().Str("component", "recommend").Logger(),
		strategies: make(map[string]Strategy),
		cache:      make(map[string]cacheEntry),
	}

	e.RegisterStrategy(NewPersonalizedStrategy(cfg.Weights))
	e.RegisterStrategy(NewDefaultStrategy())

	return e, nil
}

// SetDataProvider sets the data provider for catalog and user data.
func (e *Engine) SetDataProvider(dp DataProvider) {
	e.dataProvider = dp
}

// RegisterStrategy adds or replaces a scoring strategy by name.
func (e *Engine) RegisterStrategy(s Strategy) {
	e.stratMu.Lock()
	defer e.stratMu.Unlock()

	e.strategies[s.Name()] = s
	e.logger.Info().
		Str("strategy", s.Name()).
		Msg("registered strategy")
}

// Recommend generates ranked recipe recommendations for a user.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	if req.UserID == "" {
		e.errorCount.Add(1)
		return nil, ErrMissingUser
	}
	if e.dataProvider == nil {
		e.errorCount.Add(1)
		return nil, ErrNoProvider
	}

	req = e.prepareRequest(req)
	logger := e.createRequestLogger(req)
	logger.Debug().Msg("processing recommendation request")

	if resp := e.tryGetCachedResponse(req, start, logger); resp != nil {
		return resp, nil
	}

	strategy, err := e.selectStrategy(req.Strategy)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}

	snap, err := e.buildSnapshot(ctx, req, logger)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("build snapshot: %w", err)
	}

	candidates, err := e.getCandidates(ctx)
	if err != nil {
		// A catalog outage degrades to an empty list rather than a
		// request failure so clients keep a usable (if empty) feed.
		e.errorCount.Add(1)
		logger.Error().Err(err).Msg("catalog fetch failed")
		return e.emptyResponse(req, strategy.Name(), start), nil
	}

	if len(candidates) == 0 {
		logger.Debug().Msg("no candidates available")
		return e.emptyResponse(req, strategy.Name(), start), nil
	}

	kept, filtered := filterCandidates(candidates, snap)
	scored := e.scoreAndRank(strategy, kept, snap, req.Limit)

	resp := &Response{
		Recipes:         scored,
		TotalCandidates: len(candidates),
		Filtered:        filtered,
		Metadata:        e.buildResponseMetadata(req, strategy.Name(), start, false),
	}
	e.cacheResponse(req, resp)

	logger.Debug().
		Int("candidates", len(candidates)).
		Int("filtered", filtered).
		Int("returned", len(scored)).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

// prepareRequest applies defaults and generates a request ID if needed.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) Request {
	limits := e.getConfig().Limits

	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.Limit <= 0 {
		req.Limit = limits.DefaultLimit
	}
	if req.Limit > limits.MaxLimit {
		req.Limit = limits.MaxLimit
	}
	if req.Now.IsZero() {
		req.Now = time.Now()
	}
	if req.TimeOfDay == MealTimeUnspecified {
		req.TimeOfDay = MealTimeForHour(req.Now.Hour())
	}
	if req.Strategy == "" {
		req.Strategy = StrategyPersonalized
	}

	return req
}

// createRequestLogger creates a logger with request context.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) createRequestLogger(req Request) zerolog.Logger {
	return e.logger.With().
		Str("request_id", req.RequestID).
		Str("user_id", req.UserID).
		Str("strategy", req.Strategy).
		Str("time_of_day", req.TimeOfDay.String()).
		Logger()
}

// selectStrategy resolves a strategy name to a registered strategy.
func (e *Engine) selectStrategy(name string) (Strategy, error) {
	e.stratMu.RLock()
	defer e.stratMu.RUnlock()

	s, ok := e.strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return s, nil
}

// buildSnapshot assembles the scoring context for one request. The five
// user-data fetches run concurrently under one shared timeout; each
// fetch degrades to its zero value on error so one missing table never
// fails the whole request.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) buildSnapshot(ctx context.Context, req Request, logger zerolog.Logger) (*Snapshot, error) {
	limits := e.getConfig().Limits

	fetchCtx, cancel := context.WithTimeout(ctx, limits.ContextTimeout)
	defer cancel()

	var (
		wg       sync.WaitGroup
		profile  UserProfile
		settings UserSettings
		calories CalorieLog
		prefs    []TagPreference
		done     []int
	)

	fetch := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				logger.Warn().Err(err).Str("fetch", name).Msg("context fetch degraded to defaults")
			}
		}()
	}

	fetch("profile", func() (err error) {
		profile, err = e.dataProvider.GetUserProfile(fetchCtx, req.UserID)
		return err
	})
	fetch("settings", func() (err error) {
		settings, err = e.dataProvider.GetUserSettings(fetchCtx, req.UserID)
		return err
	})
	fetch("calorie_log", func() (err error) {
		calories, err = e.dataProvider.GetCalorieLog(fetchCtx, req.UserID, req.Now)
		return err
	})
	fetch("tag_preferences", func() (err error) {
		prefs, err = e.dataProvider.GetTagPreferences(fetchCtx, req.UserID)
		return err
	})
	fetch("completions", func() (err error) {
		done, err = e.dataProvider.GetCompletedRecipeIDs(fetchCtx, req.UserID)
		return err
	})

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return e.assembleSnapshot(req, profile, settings, calories, prefs, done), nil
}

// assembleSnapshot normalizes fetched user data into the scoring
// snapshot: names lowercased, lists converted to sets.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) assembleSnapshot(req Request, profile UserProfile, settings UserSettings,
	calories CalorieLog, prefs []TagPreference, done []int) *Snapshot {
	snap := &Snapshot{
		UserID:               req.UserID,
		TimeOfDay:            req.TimeOfDay,
		MaxPrepTime:          req.MaxPrepTime,
		RemainingCalories:    e.remainingCalories(req, settings, calories),
		AvailableIngredients: lowerSet(req.AvailableIngredients),
		DietaryPreferences:   lowerAll(profile.DietaryPreferences),
		DietaryRestrictions:  lowerAll(settings.DietaryRestrictions),
		TagPreferences:       make(map[int]float64, len(prefs)),
		PreferredTags:        intSet(req.PreferredTags),
		ExcludeTags:          intSet(req.ExcludeTags),
		Completed:            intSet(done),
	}
	for _, p := range prefs {
		snap.TagPreferences[p.TagID] = p.Score
	}
	return snap
}

// remainingCalories derives the calorie budget for the request: an
// explicit request target wins, otherwise today's goal minus today's
// intake, falling back through the settings target to the configured
// default. The derived value can go negative when the user has already
// exceeded the budget; the calorie band treats that as neutral.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) remainingCalories(req Request, settings UserSettings, calories CalorieLog) int {
	if req.CalorieTarget > 0 {
		return req.CalorieTarget
	}

	goal := calories.Goal
	if goal <= 0 {
		goal = settings.DailyCalorieTarget
	}
	if goal <= 0 {
		goal = e.getConfig().Limits.DefaultCalorieTarget
	}
	return goal - calories.Consumed
}

// getCandidates fetches the scoring catalog under its own timeout.
func (e *Engine) getCandidates(ctx context.Context) ([]Recipe, error) {
	limits := e.getConfig().Limits

	fetchCtx, cancel := context.WithTimeout(ctx, limits.CatalogTimeout)
	defer cancel()

	recipes, err := e.dataProvider.GetRecipes(fetchCtx, limits.MaxCandidates)
	if err != nil {
		return nil, fmt.Errorf("get recipes: %w", err)
	}
	return recipes, nil
}

// scoreAndRank scores every surviving candidate, sorts by score
// descending with recipe ID ascending as the deterministic tie-break,
// and truncates to the request limit.
func (e *Engine) scoreAndRank(strategy Strategy, candidates []Recipe, snap *Snapshot, limit int) []ScoredRecipe {
	scored := make([]ScoredRecipe, 0, len(candidates))
	for _, r := range candidates {
		score, breakdown := strategy.Score(r, snap)
		scored = append(scored, ScoredRecipe{
			Recipe:    r,
			Score:     score,
			Breakdown: breakdown,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Recipe.ID < scored[j].Recipe.ID
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// TrackInteraction records one user action and folds its signal into
// the user's tag preferences. View interactions are persisted for
// analytics but never move a preference score.
func (e *Engine) TrackInteraction(ctx context.Context, inter Interaction) error {
	if e.dataProvider == nil {
		return ErrNoProvider
	}
	if inter.UserID == "" {
		return ErrMissingUser
	}
	if inter.RecipeID <= 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidRecipe, inter.RecipeID)
	}
	if inter.Timestamp.IsZero() {
		inter.Timestamp = time.Now()
	}

	if err := e.dataProvider.RecordInteraction(ctx, inter); err != nil {
		e.errorCount.Add(1)
		return fmt.Errorf("record interaction: %w", err)
	}
	e.interactionCount.Add(1)

	if inter.Type.Signal() == 0 {
		return nil
	}

	if err := e.updateTagPreferences(ctx, inter); err != nil {
		e.errorCount.Add(1)
		return err
	}

	// Learned preferences changed; cached rankings are stale.
	e.clearCache()
	return nil
}

// updateTagPreferences applies one interaction's signal to every tag on
// the interacted recipe.
func (e *Engine) updateTagPreferences(ctx context.Context, inter Interaction) error {
	tags, err := e.dataProvider.GetRecipeTags(ctx, inter.RecipeID)
	if err != nil {
		return fmt.Errorf("get recipe tags: %w", err)
	}

	for _, tag := range tags {
		prev, err := e.dataProvider.GetTagPreference(ctx, inter.UserID, tag.TagID)
		if err != nil {
			return fmt.Errorf("get tag preference %d: %w", tag.TagID, err)
		}

		pref := ApplyInteraction(prev, inter.UserID, tag.TagID, inter.Type, inter.Timestamp)
		if err := e.dataProvider.UpsertTagPreference(ctx, pref); err != nil {
			return fmt.Errorf("upsert tag preference %d: %w", tag.TagID, err)
		}
	}

	e.logger.Debug().
		Str("user_id", inter.UserID).
		Int("recipe_id", inter.RecipeID).
		Str("type", inter.Type.String()).
		Int("tags_updated", len(tags)).
		Msg("tag preferences updated")

	return nil
}

// GetMetrics returns the current engine counters.
func (e *Engine) GetMetrics() Metrics {
	return Metrics{
		RequestCount:     e.requestCount.Load(),
		CacheHits:        e.cacheHits.Load(),
		CacheMisses:      e.cacheMisses.Load(),
		ErrorCount:       e.errorCount.Load(),
		InteractionCount: e.interactionCount.Load(),
	}
}

// GetConfig returns a copy of the current configuration.
func (e *Engine) GetConfig() *Config {
	return e.getConfig().Clone()
}

// UpdateConfig replaces the engine configuration after validation. The
// personalized strategy is rebuilt with the new weights and the cache
// cleared so no stale rankings survive the change.
func (e *Engine) UpdateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	e.configMu.Lock()
	e.config = cfg.Clone()
	e.configMu.Unlock()

	e.RegisterStrategy(NewPersonalizedStrategy(cfg.Weights))
	e.clearCache()
	e.logger.Info().Msg("configuration updated")

	return nil
}

func (e *Engine) getConfig() *Config {
	e.configMu.RLock()
	defer e.configMu.RUnlock()
	return e.config
}

// tryGetCachedResponse attempts to retrieve a cached response.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) tryGetCachedResponse(req Request, start time.Time, logger zerolog.Logger) *Response {
	if !e.getConfig().Cache.Enabled {
		return nil
	}

	key := e.cacheKey(req)
	resp := e.checkCache(key)
	if resp == nil {
		e.cacheMisses.Add(1)
		return nil
	}

	e.cacheHits.Add(1)
	resp.Metadata.RequestID = req.RequestID
	resp.Metadata.CacheHit = true
	resp.Metadata.LatencyMS = time.Since(start).Milliseconds()
	logger.Debug().Msg("cache hit")
	return resp
}

// cacheResponse stores the response in cache if enabled.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) cacheResponse(req Request, resp *Response) {
	if e.getConfig().Cache.Enabled {
		e.storeCache(e.cacheKey(req), resp)
	}
}

// cacheKey derives a cache key from everything that influences the
// ranking. Available ingredients are sorted so pantry order does not
// fragment the cache.
//
//nolint:gocritic // hugeParam: req passed by value for simplicity
func (e *Engine) cacheKey(req Request) string {
	ingredients := make([]string, len(req.AvailableIngredients))
	for i, ing := range req.AvailableIngredients {
		ingredients[i] = strings.ToLower(ing)
	}
	sort.Strings(ingredients)

	return fmt.Sprintf("rec:%s:%d:%s:%s:%d:%d:%v:%v:%s",
		req.UserID, req.Limit, req.Strategy, req.TimeOfDay.String(),
		req.MaxPrepTime, req.CalorieTarget,
		req.ExcludeTags, req.PreferredTags,
		strings.Join(ingredients, ","))
}

// checkCache returns a copy of a live cached response, or nil.
func (e *Engine) checkCache(key string) *Response {
	e.cacheMu.RLock()
	defer e.cacheMu.RUnlock()

	entry, ok := e.cache[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil
	}
	return e.copyCachedResponse(entry.response)
}

// copyCachedResponse creates a copy of a cached response so callers
// never mutate the cached value.
func (e *Engine) copyCachedResponse(resp *Response) *Response {
	recipes := make([]ScoredRecipe, len(resp.Recipes))
	copy(recipes, resp.Recipes)

	return &Response{
		Recipes:         recipes,
		TotalCandidates: resp.TotalCandidates,
		Filtered:        resp.Filtered,
		Metadata:        resp.Metadata, // value type, safe to copy
	}
}

// storeCache stores a response in the cache.
func (e *Engine) storeCache(key string, resp *Response) {
	cacheCfg := e.getConfig().Cache

	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()

	if len(e.cache) >= cacheCfg.MaxEntries {
		e.evictExpiredLocked()
	}

	e.cache[key] = cacheEntry{
		response:  resp,
		expiresAt: time.Now().Add(cacheCfg.TTL),
	}
}

// clearCache removes all cached entries.
func (e *Engine) clearCache() {
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()

	e.cache = make(map[string]cacheEntry)
}

// evictExpiredLocked removes expired cache entries.
// Must be called with cacheMu held.
func (e *Engine) evictExpiredLocked() {
	now := time.Now()
	for key, entry := range e.cache {
		if now.After(entry.expiresAt) {
			delete(e.cache, key)
		}
	}
}

// emptyResponse returns an empty response for cases with no candidates.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) emptyResponse(req Request, strategyName string, start time.Time) *Response {
	return &Response{
		Recipes:         []ScoredRecipe{},
		TotalCandidates: 0,
		Metadata:        e.buildResponseMetadata(req, strategyName, start, false),
	}
}

// buildResponseMetadata constructs response metadata.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) buildResponseMetadata(req Request, strategyName string, start time.Time, cacheHit bool) ResponseMetadata {
	return ResponseMetadata{
		RequestID: req.RequestID,
		UserID:    req.UserID,
		Strategy:  strategyName,
		TimeOfDay: req.TimeOfDay.String(),
		LatencyMS: time.Since(start).Milliseconds(),
		CacheHit:  cacheHit,
		Timestamp: time.Now(),
	}
}

// lowerAll lowercases every string in a slice.
func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return out
}

// lowerSet converts a string slice to a lowercased set, skipping blanks.
func lowerSet(in []string) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out[s] = struct{}{}
		}
	}
	return out
}

// intSet converts an int slice to a set.
func intSet(in []int) map[int]struct{} {
	out := make(map[int]struct{}, len(in))
	for _, v := range in {
		out[v] = struct{}{}
	}
	return out
}
