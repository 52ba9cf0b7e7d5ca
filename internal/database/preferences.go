// Forkcast - Personalized Recipe Recommendation Service
// Copyright 2026 Forkcast contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/forkcast/forkcast

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/forkcast/forkcast/internal/metrics"
	"github.com/forkcast/forkcast/internal/recommend"
)

// GetTagPreferences returns all tag preferences for a user.
func (db *DB) GetTagPreferences(ctx context.Context, userID string) ([]recommend.TagPreference, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT user_id, tag_id, score, positive_count, negative_count, total_count, updated_at
		FROM user_tag_preferences
		WHERE user_id = ?
		ORDER BY tag_id
	`, userID)
	metrics.RecordDBQuery("select", "user_tag_preferences", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query tag preferences: %w", err)
	}
	defer rows.Close()

	var prefs []recommend.TagPreference
	for rows.Next() {
		var p recommend.TagPreference
		if err := rows.Scan(&p.UserID, &p.TagID, &p.Score,
			&p.PositiveCount, &p.NegativeCount, &p.TotalCount, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan tag preference: %w", err)
		}
		prefs = append(prefs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tag preferences: %w", err)
	}
	return prefs, nil
}

// GetTagPreference returns one preference row, or nil if the user has
// never interacted with the tag.
func (db *DB) GetTagPreference(ctx context.Context, userID string, tagID int) (*recommend.TagPreference, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var p recommend.TagPreference
	err := db.conn.QueryRowContext(ctx, `
		SELECT user_id, tag_id, score, positive_count, negative_count, total_count, updated_at
		FROM user_tag_preferences
		WHERE user_id = ? AND tag_id = ?
	`, userID, tagID).Scan(&p.UserID, &p.TagID, &p.Score,
		&p.PositiveCount, &p.NegativeCount, &p.TotalCount, &p.UpdatedAt)
	metrics.RecordDBQuery("select", "user_tag_preferences", time.Since(start), ignoreNoRows(err))

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query tag preference: %w", err)
	}
	return &p, nil
}

// UpsertTagPreference inserts or replaces a preference row keyed by
// (user, tag).
func (db *DB) UpsertTagPreference(ctx context.Context, pref recommend.TagPreference) error {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO user_tag_preferences
			(user_id, tag_id, score, positive_count, negative_count, total_count, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, tag_id) DO UPDATE SET
			score = excluded.score,
			positive_count = excluded.positive_count,
			negative_count = excluded.negative_count,
			total_count = excluded.total_count,
			updated_at = excluded.updated_at
	`, pref.UserID, pref.TagID, pref.Score,
		pref.PositiveCount, pref.NegativeCount, pref.TotalCount, pref.UpdatedAt)
	metrics.RecordDBQuery("upsert", "user_tag_preferences", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("upsert tag preference: %w", err)
	}
	return nil
}

// RecordInteraction appends an interaction event.
func (db *DB) RecordInteraction(ctx context.Context, inter recommend.Interaction) error {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO interactions (user_id, recipe_id, kind, occurred_at)
		VALUES (?, ?, ?, ?)
	`, inter.UserID, inter.RecipeID, inter.Type.String(), inter.Timestamp)
	metrics.RecordDBQuery("insert", "interactions", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}

	metrics.RecordInteraction(inter.Type.String())
	return nil
}

// GetCompletedRecipeIDs returns the recipe IDs the user has completed
// at least once.
func (db *DB) GetCompletedRecipeIDs(ctx context.Context, userID string) ([]int, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT DISTINCT recipe_id FROM interactions
		WHERE user_id = ? AND kind = 'complete'
		ORDER BY recipe_id
	`, userID)
	metrics.RecordDBQuery("select", "interactions", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query completed recipes: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan completed recipe id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completed recipes: %w", err)
	}
	return ids, nil
}
