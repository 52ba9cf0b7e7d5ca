// Forkcast - Personalized Recipe Recommendation Service
// Copyright 2026 Forkcast contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/forkcast/forkcast

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/forkcast/forkcast/internal/metrics"
	"github.com/forkcast/forkcast/internal/recommend"
)

// GetRecipes returns the candidate catalog with ingredients and tag
// associations joined in, up to limit recipes (0 = no limit). Three
// bulk queries instead of per-recipe round trips.
func (db *DB) GetRecipes(ctx context.Context, limit int) ([]recommend.Recipe, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	recipes, err := db.queryRecipes(ctx, limit)
	if err != nil {
		metrics.RecordDBQuery("select", "recipes", time.Since(start), err)
		return nil, err
	}
	if len(recipes) == 0 {
		metrics.RecordDBQuery("select", "recipes", time.Since(start), nil)
		return recipes, nil
	}

	byID := make(map[int]*recommend.Recipe, len(recipes))
	for i := range recipes {
		byID[recipes[i].ID] = &recipes[i]
	}

	if err := db.attachIngredients(ctx, limit, byID); err != nil {
		metrics.RecordDBQuery("select", "recipes", time.Since(start), err)
		return nil, err
	}
	if err := db.attachTags(ctx, limit, byID); err != nil {
		metrics.RecordDBQuery("select", "recipes", time.Since(start), err)
		return nil, err
	}

	metrics.RecordDBQuery("select", "recipes", time.Since(start), nil)
	return recipes, nil
}

func (db *DB) queryRecipes(ctx context.Context, limit int) ([]recommend.Recipe, error) {
	query := `
		SELECT id, title, meal_type, prep_time_min, calories,
		       protein, carbs, fat, points, nutrition_score
		FROM recipes
		ORDER BY id
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	defer rows.Close()

	var recipes []recommend.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipes: %w", err)
	}
	return recipes, nil
}

// scanRecipe maps one recipes row to the domain type.
func scanRecipe(rows *sql.Rows) (recommend.Recipe, error) {
	var r recommend.Recipe
	if err := rows.Scan(&r.ID, &r.Title, &r.MealType, &r.PrepTimeMinutes,
		&r.Calories, &r.Protein, &r.Carbs, &r.Fat,
		&r.Points, &r.NutritionScore); err != nil {
		return recommend.Recipe{}, fmt.Errorf("scan recipe: %w", err)
	}
	return r, nil
}

func (db *DB) attachIngredients(ctx context.Context, limit int, byID map[int]*recommend.Recipe) error {
	query := `
		SELECT recipe_id, name, category, amount, unit
		FROM ingredients
		WHERE recipe_id IN (SELECT id FROM recipes ORDER BY id` + limitClause(limit) + `)
		ORDER BY recipe_id, position
	`
	args := []any{}
	if limit > 0 {
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query ingredients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			recipeID int
			ing      recommend.Ingredient
		)
		if err := rows.Scan(&recipeID, &ing.Name, &ing.Category, &ing.Amount, &ing.Unit); err != nil {
			return fmt.Errorf("scan ingredient: %w", err)
		}
		if r, ok := byID[recipeID]; ok {
			r.Ingredients = append(r.Ingredients, ing)
		}
	}
	return rows.Err()
}

func (db *DB) attachTags(ctx context.Context, limit int, byID map[int]*recommend.Recipe) error {
	query := `
		SELECT rt.recipe_id, t.id, t.name, t.category,
		       t.base_weight, rt.relevance_weight, rt.confidence, t.popularity
		FROM recipe_tags rt
		JOIN tags t ON t.id = rt.tag_id
		WHERE rt.recipe_id IN (SELECT id FROM recipes ORDER BY id` + limitClause(limit) + `)
		ORDER BY rt.recipe_id, t.id
	`
	args := []any{}
	if limit > 0 {
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query recipe tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			recipeID int
			ta       recommend.TagAssociation
		)
		if err := rows.Scan(&recipeID, &ta.TagID, &ta.Name, &ta.Category,
			&ta.BaseWeight, &ta.RelevanceWeight, &ta.Confidence, &ta.Popularity); err != nil {
			return fmt.Errorf("scan tag association: %w", err)
		}
		if r, ok := byID[recipeID]; ok {
			r.Tags = append(r.Tags, ta)
		}
	}
	return rows.Err()
}

func limitClause(limit int) string {
	if limit > 0 {
		return " LIMIT ?"
	}
	return ""
}

// GetRecipeTags returns the tag associations for one recipe.
func (db *DB) GetRecipeTags(ctx context.Context, recipeID int) ([]recommend.TagAssociation, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT t.id, t.name, t.category,
		       t.base_weight, rt.relevance_weight, rt.confidence, t.popularity
		FROM recipe_tags rt
		JOIN tags t ON t.id = rt.tag_id
		WHERE rt.recipe_id = ?
		ORDER BY t.id
	`, recipeID)
	metrics.RecordDBQuery("select", "recipe_tags", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query recipe tags: %w", err)
	}
	defer rows.Close()

	var tags []recommend.TagAssociation
	for rows.Next() {
		var ta recommend.TagAssociation
		if err := rows.Scan(&ta.TagID, &ta.Name, &ta.Category,
			&ta.BaseWeight, &ta.RelevanceWeight, &ta.Confidence, &ta.Popularity); err != nil {
			return nil, fmt.Errorf("scan tag association: %w", err)
		}
		tags = append(tags, ta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipe tags: %w", err)
	}
	return tags, nil
}

// InsertRecipe stores a recipe with its ingredients and tag mappings.
// Tags are matched by ID and must already exist.
func (db *DB) InsertRecipe(ctx context.Context, r recommend.Recipe) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert recipe: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	var id int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO recipes (title, meal_type, prep_time_min, calories,
		                     protein, carbs, fat, points, nutrition_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`, r.Title, r.MealType, r.PrepTimeMinutes, r.Calories,
		r.Protein, r.Carbs, r.Fat, r.Points, r.NutritionScore).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert recipe: %w", err)
	}

	for i, ing := range r.Ingredients {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO ingredients (recipe_id, name, category, amount, unit, position)
			VALUES (?, ?, ?, ?, ?, ?)
		`, id, ing.Name, ing.Category, ing.Amount, ing.Unit, i); err != nil {
			return 0, fmt.Errorf("insert ingredient: %w", err)
		}
	}

	for _, ta := range r.Tags {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO recipe_tags (recipe_id, tag_id, relevance_weight, confidence)
			VALUES (?, ?, ?, ?)
		`, id, ta.TagID, ta.RelevanceWeight, ta.Confidence); err != nil {
			return 0, fmt.Errorf("insert recipe tag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert recipe: %w", err)
	}
	return id, nil
}
