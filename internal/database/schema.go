// Forkcast - Personalized Recipe Recommendation Service
// Copyright 2026 Forkcast contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/forkcast/forkcast

package database

import "fmt"

// schemaStatements creates all tables and sequences. Statements are
// idempotent so startup can run them unconditionally.
var schemaStatements = []string{
	`CREATE SEQUENCE IF NOT EXISTS seq_recipe_id START 1`,
	`CREATE SEQUENCE IF NOT EXISTS seq_tag_id START 1`,
	`CREATE SEQUENCE IF NOT EXISTS seq_interaction_id START 1`,

	`CREATE TABLE IF NOT EXISTS recipes (
		id              INTEGER PRIMARY KEY DEFAULT nextval('seq_recipe_id'),
		title           VARCHAR NOT NULL,
		meal_type       VARCHAR NOT NULL DEFAULT 'Dinner',
		prep_time_min   INTEGER NOT NULL DEFAULT 0,
		calories        INTEGER NOT NULL DEFAULT 0,
		protein         DOUBLE NOT NULL DEFAULT 0,
		carbs           DOUBLE NOT NULL DEFAULT 0,
		fat             DOUBLE NOT NULL DEFAULT 0,
		points          INTEGER NOT NULL DEFAULT 0,
		nutrition_score DOUBLE NOT NULL DEFAULT 0,
		created_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS ingredients (
		recipe_id INTEGER NOT NULL,
		name      VARCHAR NOT NULL,
		category  VARCHAR NOT NULL DEFAULT '',
		amount    DOUBLE NOT NULL DEFAULT 0,
		unit      VARCHAR NOT NULL DEFAULT '',
		position  INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS tags (
		id          INTEGER PRIMARY KEY DEFAULT nextval('seq_tag_id'),
		name        VARCHAR NOT NULL UNIQUE,
		category    VARCHAR NOT NULL,
		base_weight DOUBLE NOT NULL DEFAULT 1.0,
		popularity  DOUBLE NOT NULL DEFAULT 0,
		is_system   BOOLEAN NOT NULL DEFAULT false,
		approved    BOOLEAN NOT NULL DEFAULT true,
		created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS recipe_tags (
		recipe_id        INTEGER NOT NULL,
		tag_id           INTEGER NOT NULL,
		relevance_weight DOUBLE NOT NULL DEFAULT 1.0,
		confidence       DOUBLE NOT NULL DEFAULT 1.0,
		PRIMARY KEY (recipe_id, tag_id)
	)`,

	`CREATE TABLE IF NOT EXISTS tag_relations (
		tag_id         INTEGER NOT NULL,
		related_tag_id INTEGER NOT NULL,
		relation       VARCHAR NOT NULL,
		strength       DOUBLE NOT NULL DEFAULT 1.0,
		PRIMARY KEY (tag_id, related_tag_id, relation)
	)`,

	`CREATE TABLE IF NOT EXISTS user_profiles (
		user_id             VARCHAR PRIMARY KEY,
		dietary_preferences VARCHAR NOT NULL DEFAULT '',
		level               INTEGER NOT NULL DEFAULT 1
	)`,

	`CREATE TABLE IF NOT EXISTS user_settings (
		user_id              VARCHAR PRIMARY KEY,
		dietary_restrictions VARCHAR NOT NULL DEFAULT '',
		daily_calorie_target INTEGER NOT NULL DEFAULT 0,
		activity_level       VARCHAR NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS calorie_logs (
		user_id  VARCHAR NOT NULL,
		log_date DATE NOT NULL,
		consumed INTEGER NOT NULL DEFAULT 0,
		goal     INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, log_date)
	)`,

	`CREATE TABLE IF NOT EXISTS user_tag_preferences (
		user_id        VARCHAR NOT NULL,
		tag_id         INTEGER NOT NULL,
		score          DOUBLE NOT NULL DEFAULT 0,
		positive_count INTEGER NOT NULL DEFAULT 0,
		negative_count INTEGER NOT NULL DEFAULT 0,
		total_count    INTEGER NOT NULL DEFAULT 0,
		updated_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, tag_id)
	)`,

	`CREATE TABLE IF NOT EXISTS interactions (
		id          INTEGER PRIMARY KEY DEFAULT nextval('seq_interaction_id'),
		user_id     VARCHAR NOT NULL,
		recipe_id   INTEGER NOT NULL,
		kind        VARCHAR NOT NULL,
		occurred_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// indexStatements create secondary indexes for hot query paths.
var indexStatements = []string{
	`CREATE INDEX IF NOT EXISTS idx_ingredients_recipe ON ingredients(recipe_id)`,
	`CREATE INDEX IF NOT EXISTS idx_recipe_tags_tag ON recipe_tags(tag_id)`,
	`CREATE INDEX IF NOT EXISTS idx_interactions_user ON interactions(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_interactions_recipe ON interactions(recipe_id)`,
}

// initSchema creates all tables and indexes.
func (db *DB) initSchema() error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	for _, stmt := range indexStatements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("index statement failed: %w", err)
		}
	}
	return nil
}
