// Forkcast - Personalized Recipe Recommendation Service
// Copyright 2026 Forkcast contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/forkcast/forkcast

package database

import (
	"context"
	"fmt"

	"github.com/forkcast/forkcast/internal/logging"
	"github.com/forkcast/forkcast/internal/recommend"
)

// seedDemoData loads a small demo catalog on an empty database so the
// service is explorable without an import step. No-op when recipes
// already exist.
func (db *DB) seedDemoData() error {
	ctx := context.Background()

	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&count); err != nil {
		return fmt.Errorf("count recipes: %w", err)
	}
	if count > 0 {
		return nil
	}

	tagIDs := make(map[string]int)
	for _, t := range demoTags() {
		id, err := db.InsertTag(ctx, t)
		if err != nil {
			return fmt.Errorf("seed tag %q: %w", t.Name, err)
		}
		tagIDs[t.Name] = id
	}

	for _, d := range demoRecipes() {
		recipe := d.recipe
		for _, name := range d.tags {
			recipe.Tags = append(recipe.Tags, recommend.TagAssociation{
				TagID:           tagIDs[name],
				RelevanceWeight: 1.0,
				Confidence:      1.0,
			})
		}
		if _, err := db.InsertRecipe(ctx, recipe); err != nil {
			return fmt.Errorf("seed recipe %q: %w", recipe.Title, err)
		}
	}

	if err := db.RefreshTagPopularity(ctx); err != nil {
		return err
	}

	logging.Info().Int("recipes", len(demoRecipes())).Msg("seeded demo catalog")
	return nil
}

func demoTags() []recommend.Tag {
	system := func(name, category string, weight float64) recommend.Tag {
		return recommend.Tag{Name: name, Category: category, BaseWeight: weight, IsSystem: true, Approved: true}
	}
	return []recommend.Tag{
		system("vegan", recommend.CategoryDietary, 1.5),
		system("vegetarian", recommend.CategoryDietary, 1.5),
		system("gluten-free", recommend.CategoryDietary, 1.5),
		system("high-protein", recommend.CategoryHealthBenefit, 1.2),
		system("italian", recommend.CategoryCuisine, 1.0),
		system("thai", recommend.CategoryCuisine, 1.0),
		system("spicy", recommend.CategoryTasteProfile, 0.8),
		system("baked", recommend.CategoryCookingMethod, 0.6),
		system("quick", recommend.CategoryMealTime, 1.0),
	}
}

type demoRecipe struct {
	recipe recommend.Recipe
	tags   []string
}

func demoRecipes() []demoRecipe {
	return []demoRecipe{
		{
			recipe: recommend.Recipe{
				Title: "Overnight Oats", MealType: "Breakfast", PrepTimeMinutes: 10,
				Calories: 320, Protein: 12, Carbs: 52, Fat: 8, Points: 20, NutritionScore: 8.5,
				Ingredients: []recommend.Ingredient{
					{Name: "rolled oats", Category: "grain", Amount: 80, Unit: "g"},
					{Name: "oat milk", Category: "dairy-alternative", Amount: 200, Unit: "ml"},
					{Name: "chia seeds", Category: "seed", Amount: 15, Unit: "g"},
					{Name: "blueberries", Category: "produce", Amount: 50, Unit: "g"},
				},
			},
			tags: []string{"vegan", "vegetarian", "quick"},
		},
		{
			recipe: recommend.Recipe{
				Title: "Chicken Pad Thai", MealType: "Dinner", PrepTimeMinutes: 35,
				Calories: 620, Protein: 38, Carbs: 68, Fat: 20, Points: 45, NutritionScore: 6.5,
				Ingredients: []recommend.Ingredient{
					{Name: "rice noodles", Category: "grain", Amount: 200, Unit: "g"},
					{Name: "chicken breast", Category: "protein", Amount: 300, Unit: "g"},
					{Name: "tamarind paste", Category: "condiment", Amount: 30, Unit: "g"},
					{Name: "peanuts", Category: "nut", Amount: 40, Unit: "g"},
					{Name: "bean sprouts", Category: "produce", Amount: 100, Unit: "g"},
				},
			},
			tags: []string{"thai", "spicy", "high-protein"},
		},
		{
			recipe: recommend.Recipe{
				Title: "Margherita Flatbread", MealType: "Lunch", PrepTimeMinutes: 25,
				Calories: 480, Protein: 18, Carbs: 58, Fat: 19, Points: 30, NutritionScore: 5.5,
				Ingredients: []recommend.Ingredient{
					{Name: "flatbread", Category: "grain", Amount: 1, Unit: "piece"},
					{Name: "mozzarella", Category: "dairy", Amount: 120, Unit: "g"},
					{Name: "tomato", Category: "produce", Amount: 150, Unit: "g"},
					{Name: "basil", Category: "herb", Amount: 10, Unit: "g"},
				},
			},
			tags: []string{"italian", "vegetarian", "baked"},
		},
		{
			recipe: recommend.Recipe{
				Title: "Chickpea Coconut Curry", MealType: "Dinner", PrepTimeMinutes: 30,
				Calories: 520, Protein: 16, Carbs: 55, Fat: 26, Points: 40, NutritionScore: 8.0,
				Ingredients: []recommend.Ingredient{
					{Name: "chickpeas", Category: "legume", Amount: 400, Unit: "g"},
					{Name: "coconut milk", Category: "dairy-alternative", Amount: 400, Unit: "ml"},
					{Name: "spinach", Category: "produce", Amount: 150, Unit: "g"},
					{Name: "curry paste", Category: "condiment", Amount: 40, Unit: "g"},
				},
			},
			tags: []string{"vegan", "vegetarian", "gluten-free", "spicy"},
		},
		{
			recipe: recommend.Recipe{
				Title: "Baked Salmon Bowl", MealType: "Dinner", PrepTimeMinutes: 25,
				Calories: 560, Protein: 42, Carbs: 45, Fat: 22, Points: 45, NutritionScore: 9.0,
				Ingredients: []recommend.Ingredient{
					{Name: "salmon fillet", Category: "protein", Amount: 180, Unit: "g"},
					{Name: "quinoa", Category: "grain", Amount: 120, Unit: "g"},
					{Name: "avocado", Category: "produce", Amount: 80, Unit: "g"},
					{Name: "edamame", Category: "legume", Amount: 60, Unit: "g"},
				},
			},
			tags: []string{"gluten-free", "high-protein", "baked"},
		},
		{
			recipe: recommend.Recipe{
				Title: "Greek Yogurt Parfait", MealType: "Snack", PrepTimeMinutes: 5,
				Calories: 240, Protein: 18, Carbs: 28, Fat: 6, Points: 15, NutritionScore: 7.5,
				Ingredients: []recommend.Ingredient{
					{Name: "greek yogurt", Category: "dairy", Amount: 200, Unit: "g"},
					{Name: "honey", Category: "sweetener", Amount: 15, Unit: "g"},
					{Name: "granola", Category: "grain", Amount: 30, Unit: "g"},
				},
			},
			tags: []string{"vegetarian", "quick", "high-protein"},
		},
	}
}
