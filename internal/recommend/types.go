// Forkcast - Personalized Recipe Recommendation Service
// Copyright 2026 Forkcast contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/forkcast/forkcast

package recommend

import (
	"context"
	"strings"
	"time"
)

// MealTime identifies the meal slot a recommendation request targets.
type MealTime int

const (
	// MealTimeUnspecified means no explicit slot was given; the engine
	// infers one from the current hour.
	MealTimeUnspecified MealTime = iota
	// MealTimeBreakfast covers 06:00-10:59.
	MealTimeBreakfast
	// MealTimeLunch covers 11:00-15:59.
	MealTimeLunch
	// MealTimeDinner covers 16:00-21:59.
	MealTimeDinner
	// MealTimeSnack covers all remaining hours.
	MealTimeSnack
)

// String returns a human-readable name for the meal time.
func (m MealTime) String() string {
	switch m {
	case MealTimeBreakfast:
		return "breakfast"
	case MealTimeLunch:
		return "lunch"
	case MealTimeDinner:
		return "dinner"
	case MealTimeSnack:
		return "snack"
	default:
		return "unspecified"
	}
}

// ParseMealTime converts a string to a MealTime. Unknown strings map to
// MealTimeUnspecified.
func ParseMealTime(s string) MealTime {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "breakfast":
		return MealTimeBreakfast
	case "lunch":
		return MealTimeLunch
	case "dinner":
		return MealTimeDinner
	case "snack":
		return MealTimeSnack
	default:
		return MealTimeUnspecified
	}
}

// MealTimeForHour infers the meal slot from an hour of day (0-23) using
// four fixed bands: 06-10 breakfast, 11-15 lunch, 16-21 dinner, else snack.
func MealTimeForHour(hour int) MealTime {
	switch {
	case hour >= 6 && hour < 11:
		return MealTimeBreakfast
	case hour >= 11 && hour < 16:
		return MealTimeLunch
	case hour >= 16 && hour < 22:
		return MealTimeDinner
	default:
		return MealTimeSnack
	}
}

// InteractionType classifies user feedback on a recommended recipe.
type InteractionType int

const (
	// InteractionView indicates the user opened the recipe detail.
	InteractionView InteractionType = iota
	// InteractionLike indicates an explicit positive signal.
	InteractionLike
	// InteractionComplete indicates the user cooked the recipe.
	InteractionComplete
	// InteractionSkip indicates the user dismissed the recipe.
	InteractionSkip
)

// String returns a human-readable name for the interaction type.
func (t InteractionType) String() string {
	switch t {
	case InteractionView:
		return "view"
	case InteractionLike:
		return "like"
	case InteractionComplete:
		return "complete"
	case InteractionSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// Signal returns the preference signal for this interaction type:
// +1 for like/complete, -1 for skip, 0 for view. A bare view carries no
// signal; only explicit actions move the preference score.
func (t InteractionType) Signal() int {
	switch t {
	case InteractionLike, InteractionComplete:
		return 1
	case InteractionSkip:
		return -1
	default:
		return 0
	}
}

// ParseInteractionType converts a string to an InteractionType.
// The second return value reports whether the string was recognized.
func ParseInteractionType(s string) (InteractionType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "view":
		return InteractionView, true
	case "like":
		return InteractionLike, true
	case "complete":
		return InteractionComplete, true
	case "skip":
		return InteractionSkip, true
	default:
		return InteractionView, false
	}
}

// Tag categories as stored in the catalog.
const (
	CategoryDietary        = "dietary"
	CategoryCuisine        = "cuisine"
	CategoryCookingMethod  = "cooking_method"
	CategoryMealTime       = "meal_time"
	CategoryAllergen       = "allergen"
	CategoryIngredientType = "ingredient_type"
	CategoryTasteProfile   = "taste_profile"
	CategoryHealthBenefit  = "health_benefit"
)

// Ingredient is one line of a recipe's ingredient list.
type Ingredient struct {
	// Name is the ingredient name, matched case-insensitively against
	// the caller's available-ingredient list.
	Name string `json:"name"`

	// Category groups ingredients (produce, dairy, protein, ...).
	Category string `json:"category,omitempty"`

	// Amount is the quantity in the given unit.
	Amount float64 `json:"amount,omitempty"`

	// Unit is the measurement unit (g, ml, cup, ...).
	Unit string `json:"unit,omitempty"`
}

// TagAssociation is the flattened join of a recipe, a tag and their
// mapping row. It carries everything the scorer needs about one tag so
// scoring never touches the storage shape.
type TagAssociation struct {
	// TagID is the tag identifier.
	TagID int `json:"tag_id"`

	// Name is the tag name (e.g. "vegan", "high-protein").
	Name string `json:"name"`

	// Category is the tag's category name.
	Category string `json:"category"`

	// BaseWeight is the tag's intrinsic importance.
	BaseWeight float64 `json:"base_weight"`

	// RelevanceWeight is how central the tag is to this recipe.
	RelevanceWeight float64 `json:"relevance_weight"`

	// Confidence is the mapping confidence score.
	Confidence float64 `json:"confidence"`

	// Popularity is the tag's global usage-derived score.
	Popularity float64 `json:"popularity"`
}

// Recipe is a cookable catalog item. Immutable from the engine's
// perspective; owned by the catalog.
type Recipe struct {
	// ID is the recipe identifier.
	ID int `json:"id"`

	// Title is the recipe title.
	Title string `json:"title"`

	// MealType is the meal classification (Breakfast, Lunch, Dinner,
	// Snack, or Brunch).
	MealType string `json:"meal_type"`

	// PrepTimeMinutes is the preparation time estimate.
	PrepTimeMinutes int `json:"prep_time_minutes"`

	// Calories is the energy content per serving.
	Calories int `json:"calories"`

	// Protein, Carbs and Fat are grams per serving.
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`

	// Points is the gamification reward for completing the recipe.
	Points int `json:"points"`

	// NutritionScore is the quality score (0-10).
	NutritionScore float64 `json:"nutrition_score"`

	// Ingredients is the ordered ingredient list.
	Ingredients []Ingredient `json:"ingredients"`

	// Tags is the recipe's weighted tag associations.
	Tags []TagAssociation `json:"tags"`
}

// Tag is a classification label in the catalog. Relations to other tags
// are exposed for discovery only; the scorer never reads them.
type Tag struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	BaseWeight float64 `json:"base_weight"`
	Popularity float64 `json:"popularity"`

	// IsSystem distinguishes system-defined tags from user suggestions.
	IsSystem bool `json:"is_system"`

	// Approved reports whether a user-suggested tag has been approved.
	Approved bool `json:"approved"`
}

// TagRelation links two tags for discovery purposes.
type TagRelation struct {
	TagID        int     `json:"tag_id"`
	RelatedTagID int     `json:"related_tag_id"`
	RelatedName  string  `json:"related_name"`
	Relation     string  `json:"relation"` // similar, opposite, parent, child, implies, excludes
	Strength     float64 `json:"strength"`
}

// TagPreference is a per-user, per-tag affinity derived from historical
// interactions. The score is a clamped running difference of positive
// and negative interaction counts, never reset.
type TagPreference struct {
	UserID        string    `json:"user_id"`
	TagID         int       `json:"tag_id"`
	Score         float64   `json:"score"` // clamp(positive-negative, -10, 10)
	PositiveCount int       `json:"positive_count"`
	NegativeCount int       `json:"negative_count"`
	TotalCount    int       `json:"total_count"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UserProfile holds profile-level data the scorer consumes.
type UserProfile struct {
	UserID string `json:"user_id"`

	// DietaryPreferences are soft, profile-level preference tags
	// (scored, not filtered).
	DietaryPreferences []string `json:"dietary_preferences"`

	// Level is the gamification level. Unused by scoring; carried for
	// the API surface.
	Level int `json:"level"`
}

// UserSettings holds settings-level data the scorer consumes.
type UserSettings struct {
	// DietaryRestrictions are hard restrictions (filtered and scored as
	// automatic disqualifiers).
	DietaryRestrictions []string `json:"dietary_restrictions"`

	// DailyCalorieTarget is the configured daily budget. Zero means
	// unset.
	DailyCalorieTarget int `json:"daily_calorie_target"`

	// ActivityLevel is informational only.
	ActivityLevel string `json:"activity_level,omitempty"`
}

// CalorieLog is today's intake snapshot for one user.
type CalorieLog struct {
	Consumed int `json:"consumed"`
	Goal     int `json:"goal"`
}

// Interaction is one recorded user action on a recipe.
type Interaction struct {
	UserID    string          `json:"user_id"`
	RecipeID  int             `json:"recipe_id"`
	Type      InteractionType `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
}

// Request is one recommendation request.
type Request struct {
	// UserID is the user to recommend for. Required.
	UserID string `json:"user_id"`

	// Limit is the number of recipes to return.
	// Defaults to Config.Limits.DefaultLimit if zero.
	Limit int `json:"limit,omitempty"`

	// AvailableIngredients is the caller's pantry contents by name.
	// Matching is case-insensitive. Empty means unknown pantry.
	AvailableIngredients []string `json:"available_ingredients,omitempty"`

	// TimeOfDay overrides hour-based inference when set.
	TimeOfDay MealTime `json:"time_of_day,omitempty"`

	// MaxPrepTime is a preparation-time budget in minutes. Zero means
	// no budget.
	MaxPrepTime int `json:"max_prep_time,omitempty"`

	// CalorieTarget overrides the derived remaining-calorie budget when
	// positive.
	CalorieTarget int `json:"calorie_target,omitempty"`

	// ExcludeTags lists tag IDs that disqualify a recipe outright.
	ExcludeTags []int `json:"exclude_tags,omitempty"`

	// PreferredTags lists tag IDs that receive a scoring bonus.
	PreferredTags []int `json:"preferred_tags,omitempty"`

	// Strategy selects the ranking strategy. Defaults to
	// StrategyPersonalized.
	Strategy string `json:"strategy,omitempty"`

	// RequestID is a unique identifier for tracing.
	RequestID string `json:"request_id,omitempty"`

	// Now overrides the wall clock for time-of-day inference.
	// Zero means time.Now(). Used by tests for determinism.
	Now time.Time `json:"-"`
}

// Snapshot is the assembled scoring context for one request: everything
// the scorer needs about one user at one point in time. Built per
// request, never persisted.
type Snapshot struct {
	// UserID is the requesting user.
	UserID string

	// TimeOfDay is the explicit or inferred meal slot.
	TimeOfDay MealTime

	// MaxPrepTime is the preparation-time budget in minutes (0 = none).
	MaxPrepTime int

	// RemainingCalories is the derived or overridden calorie budget.
	RemainingCalories int

	// AvailableIngredients is the lowercased pantry set. Empty means
	// the pantry is unknown.
	AvailableIngredients map[string]struct{}

	// DietaryPreferences are lowercased soft preference tags.
	DietaryPreferences []string

	// DietaryRestrictions are lowercased hard restrictions.
	DietaryRestrictions []string

	// TagPreferences maps tag ID to the user's preference score.
	TagPreferences map[int]float64

	// PreferredTags is the request's force-prefer tag ID set.
	PreferredTags map[int]struct{}

	// ExcludeTags is the request's force-exclude tag ID set.
	ExcludeTags map[int]struct{}

	// Completed is the set of recipe IDs the user has ever completed.
	Completed map[int]struct{}
}

// ScoreBreakdown is the seven named sub-scores behind one aggregate
// recommendation score, exposed for UI transparency and debugging.
// Every sub-score is clamped to [0, 100].
type ScoreBreakdown struct {
	TagMatch         float64 `json:"tag_match"`
	IngredientMatch  float64 `json:"ingredient_match"`
	CalorieAlignment float64 `json:"calorie_alignment"`
	TimeRelevance    float64 `json:"time_relevance"`
	UserPreference   float64 `json:"user_preference"`
	Novelty          float64 `json:"novelty"`
	Popularity       float64 `json:"popularity"`
}

// ScoredRecipe is a recipe with its aggregate recommendation score and
// breakdown. Ephemeral per request; a view, not an entity.
type ScoredRecipe struct {
	Recipe Recipe `json:"recipe"`

	// Score is the aggregate recommendation score (0-100).
	Score float64 `json:"recommendation_score"`

	// Breakdown is the per-signal decomposition of Score.
	Breakdown ScoreBreakdown `json:"scoring_breakdown"`
}

// Response is one recommendation response.
type Response struct {
	// Recipes is the ranked, truncated result list.
	Recipes []ScoredRecipe `json:"recipes"`

	// TotalCandidates is the catalog size before filtering.
	TotalCandidates int `json:"total_candidates"`

	// Filtered is how many scored candidates the hard filter removed.
	Filtered int `json:"filtered"`

	// Metadata contains timing and diagnostic information.
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata contains timing and diagnostic information.
type ResponseMetadata struct {
	RequestID string    `json:"request_id"`
	UserID    string    `json:"user_id"`
	Strategy  string    `json:"strategy"`
	TimeOfDay string    `json:"time_of_day"`
	LatencyMS int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
}

// Metrics contains engine counters for observability.
type Metrics struct {
	RequestCount     int64 `json:"request_count"`
	CacheHits        int64 `json:"cache_hits"`
	CacheMisses      int64 `json:"cache_misses"`
	ErrorCount       int64 `json:"error_count"`
	InteractionCount int64 `json:"interaction_count"`
}

// DataProvider defines the interface for fetching scoring inputs and
// persisting feedback. Implemented by the database layer; the engine
// depends only on this interface to avoid circular imports.
type DataProvider interface {
	// GetRecipes returns the candidate catalog with ingredients and tag
	// associations joined in, up to limit recipes (0 = no limit).
	GetRecipes(ctx context.Context, limit int) ([]Recipe, error)

	// GetUserProfile returns the user's profile-level preferences.
	GetUserProfile(ctx context.Context, userID string) (UserProfile, error)

	// GetUserSettings returns the user's dietary restrictions and
	// calorie target.
	GetUserSettings(ctx context.Context, userID string) (UserSettings, error)

	// GetCalorieLog returns the user's intake for the given day.
	GetCalorieLog(ctx context.Context, userID string, day time.Time) (CalorieLog, error)

	// GetTagPreferences returns all tag preferences for a user.
	GetTagPreferences(ctx context.Context, userID string) ([]TagPreference, error)

	// GetTagPreference returns one preference row, or nil if the user
	// has never interacted with the tag.
	GetTagPreference(ctx context.Context, userID string, tagID int) (*TagPreference, error)

	// GetCompletedRecipeIDs returns the recipe IDs the user has
	// completed at least once.
	GetCompletedRecipeIDs(ctx context.Context, userID string) ([]int, error)

	// GetRecipeTags returns the tag associations for one recipe.
	GetRecipeTags(ctx context.Context, recipeID int) ([]TagAssociation, error)

	// UpsertTagPreference inserts or replaces a preference row keyed by
	// (user, tag).
	UpsertTagPreference(ctx context.Context, pref TagPreference) error

	// RecordInteraction appends an interaction event.
	RecordInteraction(ctx context.Context, inter Interaction) error
}

// Strategy scores one recipe against one snapshot. Implementations must
// be pure: no side effects, same inputs produce same outputs.
type Strategy interface {
	// Name returns the strategy identifier (e.g. "personalized",
	// "default").
	Name() string

	// Score returns the aggregate score (0-100) and its breakdown for
	// one recipe. Sub-scores a strategy does not compute are zero in
	// the breakdown.
	Score(recipe Recipe, snap *Snapshot) (float64, ScoreBreakdown)
}
