// Forkcast - Personalized Recipe Recommendation Service
// Copyright 2026 Forkcast contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/forkcast/forkcast

package recommend

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// mockDataProvider implements DataProvider for testing.
type mockDataProvider struct {
	mu sync.Mutex

	recipes       []Recipe
	profile       UserProfile
	settings      UserSettings
	calorieLog    CalorieLog
	preferences   []TagPreference
	completed     []int
	recipeTags    map[int][]TagAssociation
	upserted      []TagPreference
	recorded      []Interaction

	recipesErr     error
	profileErr     error
	settingsErr    error
	calorieErr     error
	preferencesErr error
	completedErr   error
	recipeTagsErr  error
	upsertErr      error
	recordErr      error

	getRecipesCalls int32
}

func (m *mockDataProvider) GetRecipes(ctx context.Context, limit int) ([]Recipe, error) {
	atomic.AddInt32(&m.getRecipesCalls, 1)
	if m.recipesErr != nil {
		return nil, m.recipesErr
	}
	if limit > 0 && len(m.recipes) > limit {
		return m.recipes[:limit], nil
	}
	return m.recipes, nil
}

func (m *mockDataProvider) GetUserProfile(ctx context.Context, userID string) (UserProfile, error) {
	if m.profileErr != nil {
		return UserProfile{}, m.profileErr
	}
	return m.profile, nil
}

func (m *mockDataProvider) GetUserSettings(ctx context.Context, userID string) (UserSettings, error) {
	if m.settingsErr != nil {
		return UserSettings{}, m.settingsErr
	}
	return m.settings, nil
}

func (m *mockDataProvider) GetCalorieLog(ctx context.Context, userID string, day time.Time) (CalorieLog, error) {
	if m.calorieErr != nil {
		return CalorieLog{}, m.calorieErr
	}
	return m.calorieLog, nil
}

func (m *mockDataProvider) GetTagPreferences(ctx context.Context, userID string) ([]TagPreference, error) {
	if m.preferencesErr != nil {
		return nil, m.preferencesErr
	}
	return m.preferences, nil
}

func (m *mockDataProvider) GetTagPreference(ctx context.Context, userID string, tagID int) (*TagPreference, error) {
	if m.preferencesErr != nil {
		return nil, m.preferencesErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.upserted {
		if m.upserted[i].UserID == userID && m.upserted[i].TagID == tagID {
			p := m.upserted[i]
			return &p, nil
		}
	}
	for i := range m.preferences {
		if m.preferences[i].UserID == userID && m.preferences[i].TagID == tagID {
			p := m.preferences[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (m *mockDataProvider) GetCompletedRecipeIDs(ctx context.Context, userID string) ([]int, error) {
	if m.completedErr != nil {
		return nil, m.completedErr
	}
	return m.completed, nil
}

func (m *mockDataProvider) GetRecipeTags(ctx context.Context, recipeID int) ([]TagAssociation, error) {
	if m.recipeTagsErr != nil {
		return nil, m.recipeTagsErr
	}
	return m.recipeTags[recipeID], nil
}

func (m *mockDataProvider) UpsertTagPreference(ctx context.Context, pref TagPreference) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.upserted {
		if m.upserted[i].UserID == pref.UserID && m.upserted[i].TagID == pref.TagID {
			m.upserted[i] = pref
			return nil
		}
	}
	m.upserted = append(m.upserted, pref)
	return nil
}

func (m *mockDataProvider) RecordInteraction(ctx context.Context, inter Interaction) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorded = append(m.recorded, inter)
	return nil
}

// testLogger returns a zerolog logger for testing.
func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// testCatalog builds a small catalog with varied tags and calories.
func testCatalog() []Recipe {
	return []Recipe{
		{
			ID: 1, Title: "Tofu Bowl", MealType: "Lunch", Calories: 350,
			PrepTimeMinutes: 20, NutritionScore: 8, Points: 30,
			Ingredients: []Ingredient{{Name: "tofu"}, {Name: "rice"}},
			Tags: []TagAssociation{
				{TagID: 1, Name: "vegan", BaseWeight: 1, RelevanceWeight: 1, Popularity: 60},
			},
		},
		{
			ID: 2, Title: "Steak Frites", MealType: "Dinner", Calories: 900,
			PrepTimeMinutes: 45, NutritionScore: 5, Points: 50,
			Ingredients: []Ingredient{{Name: "steak"}, {Name: "potato"}},
			Tags: []TagAssociation{
				{TagID: 2, Name: "high-protein", BaseWeight: 1, RelevanceWeight: 1, Popularity: 70},
			},
		},
		{
			ID: 3, Title: "Vegan Curry", MealType: "Dinner", Calories: 500,
			PrepTimeMinutes: 35, NutritionScore: 9, Points: 40,
			Ingredients: []Ingredient{{Name: "chickpeas"}, {Name: "coconut milk"}},
			Tags: []TagAssociation{
				{TagID: 1, Name: "vegan", BaseWeight: 1, RelevanceWeight: 1, Popularity: 60},
				{TagID: 3, Name: "spicy", BaseWeight: 1, RelevanceWeight: 0.5, Popularity: 40},
			},
		},
	}
}

func newTestEngine(t *testing.T, dp DataProvider) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultConfig(), testLogger())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	e.SetDataProvider(dp)
	return e
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{
			name:    "nil config uses defaults",
			cfg:     nil,
			wantErr: false,
		},
		{
			name:    "valid default config",
			cfg:     DefaultConfig(),
			wantErr: false,
		},
		{
			name: "invalid weights return error",
			cfg: func() *Config {
				c := DefaultConfig()
				c.Weights.TagMatch = 0.9
				return c
			}(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, err := NewEngine(tt.cfg, testLogger())
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewEngine() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			// Both built-in strategies are pre-registered.
			if _, err := e.selectStrategy(StrategyPersonalized); err != nil {
				t.Error("personalized strategy not registered")
			}
			if _, err := e.selectStrategy(StrategyDefault); err != nil {
				t.Error("default strategy not registered")
			}
		})
	}
}

func TestEngine_Recommend(t *testing.T) {
	t.Parallel()

	dp := &mockDataProvider{
		recipes:    testCatalog(),
		calorieLog: CalorieLog{Consumed: 800, Goal: 2000},
	}
	e := newTestEngine(t, dp)

	resp, err := e.Recommend(context.Background(), Request{
		UserID:    "u1",
		TimeOfDay: MealTimeDinner,
		Now:       time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if resp.TotalCandidates != 3 {
		t.Errorf("TotalCandidates = %d, want 3", resp.TotalCandidates)
	}
	if resp.Filtered != 0 {
		t.Errorf("Filtered = %d, want 0", resp.Filtered)
	}
	if len(resp.Recipes) != 3 {
		t.Fatalf("len(Recipes) = %d, want 3", len(resp.Recipes))
	}

	// Ranking is descending by score.
	for i := 1; i < len(resp.Recipes); i++ {
		if resp.Recipes[i].Score > resp.Recipes[i-1].Score {
			t.Errorf("recipes not sorted: %v before %v",
				resp.Recipes[i-1].Score, resp.Recipes[i].Score)
		}
	}

	if resp.Metadata.RequestID == "" {
		t.Error("request ID not generated")
	}
	if resp.Metadata.Strategy != StrategyPersonalized {
		t.Errorf("Strategy = %q, want %q", resp.Metadata.Strategy, StrategyPersonalized)
	}
	if resp.Metadata.TimeOfDay != "dinner" {
		t.Errorf("TimeOfDay = %q, want dinner", resp.Metadata.TimeOfDay)
	}
}

func TestEngine_Recommend_RequiresUser(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &mockDataProvider{})
	if _, err := e.Recommend(context.Background(), Request{}); err == nil {
		t.Error("expected error for missing user_id")
	}
}

func TestEngine_Recommend_NoProvider(t *testing.T) {
	t.Parallel()

	e, err := NewEngine(DefaultConfig(), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Recommend(context.Background(), Request{UserID: "u1"}); err == nil {
		t.Error("expected error when data provider is not set")
	}
}

func TestEngine_Recommend_UnknownStrategy(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &mockDataProvider{recipes: testCatalog()})
	_, err := e.Recommend(context.Background(), Request{UserID: "u1", Strategy: "mystery"})
	if err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestEngine_Recommend_CatalogFailureDegrades(t *testing.T) {
	t.Parallel()

	dp := &mockDataProvider{recipesErr: errors.New("catalog down")}
	e := newTestEngine(t, dp)

	resp, err := e.Recommend(context.Background(), Request{UserID: "u1"})
	if err != nil {
		t.Fatalf("Recommend() error = %v, want graceful degradation", err)
	}
	if len(resp.Recipes) != 0 || resp.TotalCandidates != 0 {
		t.Errorf("expected empty response, got %+v", resp)
	}
	if e.GetMetrics().ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1", e.GetMetrics().ErrorCount)
	}
}

func TestEngine_Recommend_DegradedUserData(t *testing.T) {
	t.Parallel()

	// Every user-data fetch fails; the request still succeeds with
	// neutral defaults.
	dp := &mockDataProvider{
		recipes:        testCatalog(),
		profileErr:     errors.New("no profile"),
		settingsErr:    errors.New("no settings"),
		calorieErr:     errors.New("no log"),
		preferencesErr: errors.New("no prefs"),
		completedErr:   errors.New("no completions"),
	}
	e := newTestEngine(t, dp)

	resp, err := e.Recommend(context.Background(), Request{UserID: "u1"})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(resp.Recipes) != 3 {
		t.Errorf("len(Recipes) = %d, want 3", len(resp.Recipes))
	}
}

func TestEngine_Recommend_DietaryFilter(t *testing.T) {
	t.Parallel()

	dp := &mockDataProvider{
		recipes:  testCatalog(),
		settings: UserSettings{DietaryRestrictions: []string{"vegan"}},
	}
	e := newTestEngine(t, dp)

	resp, err := e.Recommend(context.Background(), Request{UserID: "u1"})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	// Only recipes 1 and 3 carry the vegan tag.
	if resp.Filtered != 1 {
		t.Errorf("Filtered = %d, want 1", resp.Filtered)
	}
	for _, sr := range resp.Recipes {
		if sr.Recipe.ID == 2 {
			t.Error("restricted recipe leaked through the filter")
		}
	}
}

func TestEngine_Recommend_ProfilePreferenceDoesNotFilter(t *testing.T) {
	t.Parallel()

	// A profile-level diet is a scoring signal, not a restriction; no
	// candidate is removed even when none carries the preferred tag.
	dp := &mockDataProvider{
		recipes: testCatalog(),
		profile: UserProfile{UserID: "u1", DietaryPreferences: []string{"vegetarian"}},
	}
	e := newTestEngine(t, dp)

	resp, err := e.Recommend(context.Background(), Request{UserID: "u1"})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if resp.Filtered != 0 {
		t.Errorf("Filtered = %d, want 0", resp.Filtered)
	}
	if len(resp.Recipes) != 3 {
		t.Errorf("len(Recipes) = %d, want 3", len(resp.Recipes))
	}
}

func TestEngine_Recommend_ExcludeTags(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &mockDataProvider{recipes: testCatalog()})

	resp, err := e.Recommend(context.Background(), Request{
		UserID:      "u1",
		ExcludeTags: []int{1}, // vegan tag on recipes 1 and 3
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(resp.Recipes) != 1 || resp.Recipes[0].Recipe.ID != 2 {
		t.Errorf("expected only recipe 2, got %d recipes", len(resp.Recipes))
	}
	if resp.Filtered != 2 {
		t.Errorf("Filtered = %d, want 2", resp.Filtered)
	}
}

func TestEngine_Recommend_LimitTruncation(t *testing.T) {
	t.Parallel()

	recipes := make([]Recipe, 50)
	for i := range recipes {
		recipes[i] = Recipe{ID: i + 1, Title: "r", Calories: 400}
	}
	e := newTestEngine(t, &mockDataProvider{recipes: recipes})

	resp, err := e.Recommend(context.Background(), Request{UserID: "u1", Limit: 5})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(resp.Recipes) != 5 {
		t.Errorf("len(Recipes) = %d, want 5", len(resp.Recipes))
	}
	if resp.TotalCandidates != 50 {
		t.Errorf("TotalCandidates = %d, want 50", resp.TotalCandidates)
	}
}

func TestEngine_Recommend_TieBreakDeterminism(t *testing.T) {
	t.Parallel()

	// Identical recipes score identically; ranking must fall back to
	// ascending ID and stay stable across runs.
	recipes := []Recipe{
		{ID: 9, Calories: 400}, {ID: 3, Calories: 400}, {ID: 7, Calories: 400},
	}
	cfg := DefaultConfig()
	cfg.Cache.Enabled = false
	e, err := NewEngine(cfg, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	e.SetDataProvider(&mockDataProvider{recipes: recipes})

	for run := 0; run < 3; run++ {
		resp, err := e.Recommend(context.Background(), Request{UserID: "u1"})
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		ids := []int{resp.Recipes[0].Recipe.ID, resp.Recipes[1].Recipe.ID, resp.Recipes[2].Recipe.ID}
		if ids[0] != 3 || ids[1] != 7 || ids[2] != 9 {
			t.Errorf("run %d: ids = %v, want [3 7 9]", run, ids)
		}
	}
}

func TestEngine_Recommend_DefaultLimit(t *testing.T) {
	t.Parallel()

	recipes := make([]Recipe, 30)
	for i := range recipes {
		recipes[i] = Recipe{ID: i + 1, Calories: 400}
	}
	e := newTestEngine(t, &mockDataProvider{recipes: recipes})

	resp, err := e.Recommend(context.Background(), Request{UserID: "u1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Recipes) != DefaultConfig().Limits.DefaultLimit {
		t.Errorf("len(Recipes) = %d, want default %d",
			len(resp.Recipes), DefaultConfig().Limits.DefaultLimit)
	}
}

func TestEngine_Recommend_CacheHit(t *testing.T) {
	t.Parallel()

	dp := &mockDataProvider{recipes: testCatalog()}
	e := newTestEngine(t, dp)

	req := Request{UserID: "u1", TimeOfDay: MealTimeLunch}
	if _, err := e.Recommend(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	resp, err := e.Recommend(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}

	if !resp.Metadata.CacheHit {
		t.Error("second identical request should hit the cache")
	}
	if calls := atomic.LoadInt32(&dp.getRecipesCalls); calls != 1 {
		t.Errorf("GetRecipes calls = %d, want 1", calls)
	}

	m := e.GetMetrics()
	if m.CacheHits != 1 || m.CacheMisses != 1 {
		t.Errorf("cache hits/misses = %d/%d, want 1/1", m.CacheHits, m.CacheMisses)
	}
}

func TestEngine_Recommend_CacheDisabled(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Cache.Enabled = false
	e, err := NewEngine(cfg, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	dp := &mockDataProvider{recipes: testCatalog()}
	e.SetDataProvider(dp)

	req := Request{UserID: "u1", TimeOfDay: MealTimeLunch}
	for i := 0; i < 2; i++ {
		resp, err := e.Recommend(context.Background(), req)
		if err != nil {
			t.Fatal(err)
		}
		if resp.Metadata.CacheHit {
			t.Error("cache hit with caching disabled")
		}
	}
	if calls := atomic.LoadInt32(&dp.getRecipesCalls); calls != 2 {
		t.Errorf("GetRecipes calls = %d, want 2", calls)
	}
}

func TestEngine_Recommend_PantryFragmentation(t *testing.T) {
	t.Parallel()

	// Pantry order must not fragment the cache.
	e := newTestEngine(t, &mockDataProvider{recipes: testCatalog()})

	first := Request{UserID: "u1", TimeOfDay: MealTimeLunch, AvailableIngredients: []string{"Rice", "tofu"}}
	second := Request{UserID: "u1", TimeOfDay: MealTimeLunch, AvailableIngredients: []string{"tofu", "rice"}}

	if _, err := e.Recommend(context.Background(), first); err != nil {
		t.Fatal(err)
	}
	resp, err := e.Recommend(context.Background(), second)
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Metadata.CacheHit {
		t.Error("reordered pantry should hit the same cache entry")
	}
}

func TestEngine_TrackInteraction(t *testing.T) {
	t.Parallel()

	dp := &mockDataProvider{
		recipeTags: map[int][]TagAssociation{
			3: {
				{TagID: 1, Name: "vegan"},
				{TagID: 3, Name: "spicy"},
			},
		},
	}
	e := newTestEngine(t, dp)

	inter := Interaction{UserID: "u1", RecipeID: 3, Type: InteractionLike}
	if err := e.TrackInteraction(context.Background(), inter); err != nil {
		t.Fatalf("TrackInteraction() error = %v", err)
	}

	if len(dp.recorded) != 1 {
		t.Fatalf("recorded interactions = %d, want 1", len(dp.recorded))
	}
	if len(dp.upserted) != 2 {
		t.Fatalf("upserted preferences = %d, want 2 (one per tag)", len(dp.upserted))
	}
	for _, pref := range dp.upserted {
		if pref.Score != 1 || pref.PositiveCount != 1 {
			t.Errorf("pref for tag %d = %+v, want score 1", pref.TagID, pref)
		}
	}
	if e.GetMetrics().InteractionCount != 1 {
		t.Errorf("InteractionCount = %d, want 1", e.GetMetrics().InteractionCount)
	}
}

func TestEngine_TrackInteraction_ViewIsNoOp(t *testing.T) {
	t.Parallel()

	dp := &mockDataProvider{
		recipeTags: map[int][]TagAssociation{3: {{TagID: 1, Name: "vegan"}}},
	}
	e := newTestEngine(t, dp)

	inter := Interaction{UserID: "u1", RecipeID: 3, Type: InteractionView}
	if err := e.TrackInteraction(context.Background(), inter); err != nil {
		t.Fatalf("TrackInteraction() error = %v", err)
	}

	// The view is recorded for analytics but moves no preference.
	if len(dp.recorded) != 1 {
		t.Errorf("recorded = %d, want 1", len(dp.recorded))
	}
	if len(dp.upserted) != 0 {
		t.Errorf("upserted = %d, want 0", len(dp.upserted))
	}
}

func TestEngine_TrackInteraction_Accumulates(t *testing.T) {
	t.Parallel()

	dp := &mockDataProvider{
		recipeTags: map[int][]TagAssociation{3: {{TagID: 1, Name: "vegan"}}},
	}
	e := newTestEngine(t, dp)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := e.TrackInteraction(ctx, Interaction{UserID: "u1", RecipeID: 3, Type: InteractionLike}); err != nil {
			t.Fatal(err)
		}
	}
	if err := e.TrackInteraction(ctx, Interaction{UserID: "u1", RecipeID: 3, Type: InteractionSkip}); err != nil {
		t.Fatal(err)
	}

	if len(dp.upserted) != 1 {
		t.Fatalf("upserted rows = %d, want 1", len(dp.upserted))
	}
	pref := dp.upserted[0]
	if pref.PositiveCount != 3 || pref.NegativeCount != 1 || pref.TotalCount != 4 {
		t.Errorf("counts = %d/%d/%d, want 3/1/4",
			pref.PositiveCount, pref.NegativeCount, pref.TotalCount)
	}
	if pref.Score != 2 {
		t.Errorf("score = %v, want 2", pref.Score)
	}
}

func TestEngine_TrackInteraction_Validation(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &mockDataProvider{})

	if err := e.TrackInteraction(context.Background(), Interaction{RecipeID: 1, Type: InteractionLike}); err == nil {
		t.Error("expected error for missing user_id")
	}
	if err := e.TrackInteraction(context.Background(), Interaction{UserID: "u1", Type: InteractionLike}); err == nil {
		t.Error("expected error for missing recipe_id")
	}
}

func TestEngine_TrackInteraction_InvalidatesCache(t *testing.T) {
	t.Parallel()

	dp := &mockDataProvider{
		recipes:    testCatalog(),
		recipeTags: map[int][]TagAssociation{1: {{TagID: 1, Name: "vegan"}}},
	}
	e := newTestEngine(t, dp)

	req := Request{UserID: "u1", TimeOfDay: MealTimeLunch}
	if _, err := e.Recommend(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if err := e.TrackInteraction(context.Background(), Interaction{UserID: "u1", RecipeID: 1, Type: InteractionLike}); err != nil {
		t.Fatal(err)
	}

	resp, err := e.Recommend(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Metadata.CacheHit {
		t.Error("interaction with signal should invalidate cached rankings")
	}
}

func TestEngine_UpdateConfig(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &mockDataProvider{recipes: testCatalog()})

	bad := DefaultConfig()
	bad.Weights.Novelty = 0.5
	if err := e.UpdateConfig(bad); err == nil {
		t.Error("expected error for weights not summing to 1")
	}

	good := DefaultConfig()
	good.Limits.DefaultLimit = 25
	if err := e.UpdateConfig(good); err != nil {
		t.Fatalf("UpdateConfig() error = %v", err)
	}
	if got := e.GetConfig().Limits.DefaultLimit; got != 25 {
		t.Errorf("DefaultLimit = %d, want 25", got)
	}

	// GetConfig returns a copy; mutating it must not affect the engine.
	cfg := e.GetConfig()
	cfg.Limits.DefaultLimit = 1
	if got := e.GetConfig().Limits.DefaultLimit; got != 25 {
		t.Errorf("engine config mutated through copy: %d", got)
	}
}

func TestEngine_GetMetrics(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &mockDataProvider{recipes: testCatalog()})

	if _, err := e.Recommend(context.Background(), Request{UserID: "u1"}); err != nil {
		t.Fatal(err)
	}

	m := e.GetMetrics()
	if m.RequestCount != 1 {
		t.Errorf("RequestCount = %d, want 1", m.RequestCount)
	}
}

func TestEngine_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	dp := &mockDataProvider{
		recipes:    testCatalog(),
		recipeTags: map[int][]TagAssociation{1: {{TagID: 1, Name: "vegan"}}},
	}
	e := newTestEngine(t, dp)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = e.Recommend(context.Background(), Request{UserID: "u1"})
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = e.TrackInteraction(context.Background(), Interaction{
				UserID: "u1", RecipeID: 1, Type: InteractionLike,
			})
		}()
	}
	wg.Wait()

	if e.GetMetrics().RequestCount != 8 {
		t.Errorf("RequestCount = %d, want 8", e.GetMetrics().RequestCount)
	}
}

func TestEngine_PrepareRequest(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &mockDataProvider{})

	req := e.prepareRequest(Request{UserID: "u1", Now: time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)})
	if req.Limit != 10 {
		t.Errorf("Limit = %d, want default 10", req.Limit)
	}
	if req.TimeOfDay != MealTimeBreakfast {
		t.Errorf("TimeOfDay = %v, want breakfast (hour 8)", req.TimeOfDay)
	}
	if req.Strategy != StrategyPersonalized {
		t.Errorf("Strategy = %q, want personalized", req.Strategy)
	}
	if req.RequestID == "" {
		t.Error("RequestID not generated")
	}

	capped := e.prepareRequest(Request{UserID: "u1", Limit: 9999})
	if capped.Limit != 100 {
		t.Errorf("Limit = %d, want capped at 100", capped.Limit)
	}
}

func TestEngine_RemainingCalories(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &mockDataProvider{})

	tests := []struct {
		name     string
		req      Request
		settings UserSettings
		log      CalorieLog
		want     int
	}{
		{
			name: "request override wins",
			req:  Request{CalorieTarget: 600},
			log:  CalorieLog{Goal: 2000, Consumed: 500},
			want: 600,
		},
		{
			name: "goal minus consumed",
			log:  CalorieLog{Goal: 2000, Consumed: 800},
			want: 1200,
		},
		{
			name:     "settings target when no logged goal",
			settings: UserSettings{DailyCalorieTarget: 1800},
			log:      CalorieLog{Consumed: 300},
			want:     1500,
		},
		{
			name: "configured default as last resort",
			want: 2000,
		},
		{
			name: "overeaten budget goes negative",
			log:  CalorieLog{Goal: 2000, Consumed: 2400},
			want: -400,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := e.remainingCalories(tt.req, tt.settings, tt.log); got != tt.want {
				t.Errorf("remainingCalories() = %d, want %d", got, tt.want)
			}
		})
	}
}
