// Forkcast - Personalized Recipe Recommendation Service
// Copyright 2026 Forkcast contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/forkcast/forkcast

package recommend

import "strings"

// Scoring model: seven independent sub-scores, each clamped to [0, 100]
// (or returning exactly 0 to signal a hard violation), combined as a
// convex combination. All functions here are pure over their inputs.

const neutralScore = 50.0

// clampScore bounds a sub-score to [0, 100].
func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// scoreTagMatch scores how well the recipe's tags match the user's
// learned tag affinities. Each tag contributes a neutral base of 50,
// plus the preference score scaled by 3 and clamped into +/-30, plus 20
// when the tag is force-preferred, plus up to 10 from global popularity.
// Contributions are weighted by base_weight * relevance_weight; the
// result is the weighted average. Recipes with no tags score a neutral 50.
func scoreTagMatch(r Recipe, snap *Snapshot) float64 {
	if len(r.Tags) == 0 {
		return neutralScore
	}

	var weightedSum, totalWeight float64
	for _, tag := range r.Tags {
		value := neutralScore
		value += clamp(snap.TagPreferences[tag.TagID]*3, -30, 30)
		if _, ok := snap.PreferredTags[tag.TagID]; ok {
			value += 20
		}
		popBonus := tag.Popularity / 10
		if popBonus > 10 {
			popBonus = 10
		}
		value += popBonus

		weight := tag.BaseWeight * tag.RelevanceWeight
		weightedSum += value * weight
		totalWeight += weight
	}

	if totalWeight <= 0 {
		// Zero-weight mappings carry no signal.
		return neutralScore
	}
	return clampScore(weightedSum / totalWeight)
}

// scoreIngredientMatch scores pantry availability: the percentage of the
// recipe's ingredients present in the available set, matched by name
// case-insensitively. Recipes with no ingredients score 0. An unknown
// pantry (no ingredients given) scores a fixed 30 so availability never
// fully suppresses a recipe.
func scoreIngredientMatch(r Recipe, snap *Snapshot) float64 {
	if len(r.Ingredients) == 0 {
		return 0
	}
	if len(snap.AvailableIngredients) == 0 {
		return 30
	}

	matched := 0
	for _, ing := range r.Ingredients {
		if _, ok := snap.AvailableIngredients[strings.ToLower(ing.Name)]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(r.Ingredients)) * 100
}

// scoreCalorieAlignment scores the recipe's calories against the
// remaining budget as a band function of the ratio. The sweet spot is a
// recipe consuming 25-40% of the remaining budget. Non-positive values
// on either side yield a neutral 50.
func scoreCalorieAlignment(recipeCalories, remainingCalories int) float64 {
	if recipeCalories <= 0 || remainingCalories <= 0 {
		return neutralScore
	}

	ratio := float64(recipeCalories) / float64(remainingCalories)
	switch {
	case ratio < 0.25:
		return 70
	case ratio <= 0.40:
		return 100
	case ratio <= 0.60:
		return 80
	case ratio <= 0.80:
		return 60
	case ratio <= 1.00:
		return 40
	case ratio <= 1.20:
		return 20
	default:
		return 0
	}
}

// scoreTimeRelevance scores meal-slot fit. Base 50, +40 for an exact
// meal-type match, +20 for a Brunch recipe in a breakfast or lunch
// context. A prep-time budget adds +10 when the recipe fits and -20
// when it does not.
func scoreTimeRelevance(r Recipe, snap *Snapshot) float64 {
	score := neutralScore

	mealType := strings.ToLower(r.MealType)
	switch {
	case mealType == snap.TimeOfDay.String():
		score += 40
	case mealType == "brunch" &&
		(snap.TimeOfDay == MealTimeBreakfast || snap.TimeOfDay == MealTimeLunch):
		score += 20
	}

	if snap.MaxPrepTime > 0 {
		if r.PrepTimeMinutes <= snap.MaxPrepTime {
			score += 10
		} else {
			score -= 20
		}
	}

	return clampScore(score)
}

// scoreUserPreference scores profile-level dietary fit: base 50 plus 15
// per matching dietary preference tag, capped at 100. Any recipe tag
// matching a settings-level dietary restriction returns exactly 0 - a
// hard violation signal, independent of the filter stage.
func scoreUserPreference(r Recipe, snap *Snapshot) float64 {
	for _, tag := range r.Tags {
		name := strings.ToLower(tag.Name)
		for _, restriction := range snap.DietaryRestrictions {
			if name == restriction {
				return 0
			}
		}
	}

	score := neutralScore
	for _, tag := range r.Tags {
		name := strings.ToLower(tag.Name)
		for _, pref := range snap.DietaryPreferences {
			if name == pref {
				score += 15
				break
			}
		}
	}
	return clampScore(score)
}

// scoreNovelty favors recipes the user has never completed: 100 for new
// recipes, 30 for repeats. Repeats are discouraged, not forbidden.
func scoreNovelty(recipeID int, completed map[int]struct{}) float64 {
	if _, ok := completed[recipeID]; ok {
		return 30
	}
	return 100
}

// scorePopularity blends global tag popularity (70%) with nutrition
// quality (30%). Recipes with no tags default to 50.
func scorePopularity(r Recipe) float64 {
	if len(r.Tags) == 0 {
		return neutralScore
	}

	var popSum float64
	for _, tag := range r.Tags {
		popSum += tag.Popularity
	}
	avgPop := popSum / float64(len(r.Tags))
	if avgPop > 100 {
		avgPop = 100
	}

	nutrition := r.NutritionScore * 10
	if nutrition > 100 {
		nutrition = 100
	}

	return 0.7*avgPop + 0.3*nutrition
}

// computeBreakdown evaluates all seven sub-scores for one recipe.
func computeBreakdown(r Recipe, snap *Snapshot) ScoreBreakdown {
	return ScoreBreakdown{
		TagMatch:         scoreTagMatch(r, snap),
		IngredientMatch:  scoreIngredientMatch(r, snap),
		CalorieAlignment: scoreCalorieAlignment(r.Calories, snap.RemainingCalories),
		TimeRelevance:    scoreTimeRelevance(r, snap),
		UserPreference:   scoreUserPreference(r, snap),
		Novelty:          scoreNovelty(r.ID, snap.Completed),
		Popularity:       scorePopularity(r),
	}
}

// aggregate combines a breakdown into the single recommendation score.
// With weights summing to 1.0 and sub-scores in [0, 100], the result is
// bounded to [0, 100].
func aggregate(w ScoreWeights, b ScoreBreakdown) float64 {
	return w.TagMatch*b.TagMatch +
		w.IngredientMatch*b.IngredientMatch +
		w.UserPreference*b.UserPreference +
		w.CalorieAlignment*b.CalorieAlignment +
		w.TimeRelevance*b.TimeRelevance +
		w.Popularity*b.Popularity +
		w.Novelty*b.Novelty
}
