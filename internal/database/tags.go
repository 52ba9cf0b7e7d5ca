// Forkcast - Personalized Recipe Recommendation Service
// Copyright 2026 Forkcast contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/forkcast/forkcast

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/forkcast/forkcast/internal/metrics"
	"github.com/forkcast/forkcast/internal/recommend"
)

// ListTags returns all tags, optionally filtered by category.
func (db *DB) ListTags(ctx context.Context, category string) ([]recommend.Tag, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT id, name, category, base_weight, popularity, is_system, approved
		FROM tags
	`
	args := []any{}
	if category != "" {
		query += " WHERE category = ?"
		args = append(args, category)
	}
	query += " ORDER BY category, name"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("select", "tags", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	var tags []recommend.Tag
	for rows.Next() {
		var t recommend.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Category,
			&t.BaseWeight, &t.Popularity, &t.IsSystem, &t.Approved); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}
	return tags, nil
}

// GetRelatedTags returns the relations recorded for one tag.
func (db *DB) GetRelatedTags(ctx context.Context, tagID int) ([]recommend.TagRelation, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT tr.tag_id, tr.related_tag_id, t.name, tr.relation, tr.strength
		FROM tag_relations tr
		JOIN tags t ON t.id = tr.related_tag_id
		WHERE tr.tag_id = ?
		ORDER BY tr.strength DESC, tr.related_tag_id
	`, tagID)
	metrics.RecordDBQuery("select", "tag_relations", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query tag relations: %w", err)
	}
	defer rows.Close()

	var relations []recommend.TagRelation
	for rows.Next() {
		var rel recommend.TagRelation
		if err := rows.Scan(&rel.TagID, &rel.RelatedTagID, &rel.RelatedName,
			&rel.Relation, &rel.Strength); err != nil {
			return nil, fmt.Errorf("scan tag relation: %w", err)
		}
		relations = append(relations, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tag relations: %w", err)
	}
	return relations, nil
}

// TagNameExists reports whether a tag with the given name exists,
// matched case-insensitively.
func (db *DB) TagNameExists(ctx context.Context, name string) (bool, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var count int
	err := db.conn.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM tags WHERE lower(name) = ?
	`, strings.ToLower(name)).Scan(&count)
	metrics.RecordDBQuery("select", "tags", time.Since(start), err)
	if err != nil {
		return false, fmt.Errorf("query tag name: %w", err)
	}
	return count > 0, nil
}

// InsertTag stores a tag and returns its ID.
func (db *DB) InsertTag(ctx context.Context, t recommend.Tag) (int, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var id int
	err := db.conn.QueryRowContext(ctx, `
		INSERT INTO tags (name, category, base_weight, popularity, is_system, approved)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`, t.Name, t.Category, t.BaseWeight, t.Popularity, t.IsSystem, t.Approved).Scan(&id)
	metrics.RecordDBQuery("insert", "tags", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("insert tag: %w", err)
	}
	return id, nil
}

// InsertTagSuggestion stores a user-suggested tag pending approval and
// returns its ID. Suggested tags never enter scoring until approved.
func (db *DB) InsertTagSuggestion(ctx context.Context, name, category string) (int, error) {
	return db.InsertTag(ctx, recommend.Tag{
		Name:       strings.ToLower(strings.TrimSpace(name)),
		Category:   category,
		BaseWeight: 1.0,
		IsSystem:   false,
		Approved:   false,
	})
}

// InsertTagRelation records a relation between two tags.
func (db *DB) InsertTagRelation(ctx context.Context, rel recommend.TagRelation) error {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO tag_relations (tag_id, related_tag_id, relation, strength)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (tag_id, related_tag_id, relation) DO UPDATE SET
			strength = excluded.strength
	`, rel.TagID, rel.RelatedTagID, rel.Relation, rel.Strength)
	metrics.RecordDBQuery("upsert", "tag_relations", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("insert tag relation: %w", err)
	}
	return nil
}

// RefreshTagPopularity recomputes each tag's popularity from usage: the
// share of recipes carrying the tag, scaled to 0-100.
func (db *DB) RefreshTagPopularity(ctx context.Context) error {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, `
		UPDATE tags SET popularity = COALESCE((
			SELECT 100.0 * COUNT(*) / GREATEST((SELECT COUNT(*) FROM recipes), 1)
			FROM recipe_tags rt WHERE rt.tag_id = tags.id
		), 0)
	`)
	metrics.RecordDBQuery("update", "tags", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("refresh tag popularity: %w", err)
	}
	return nil
}
