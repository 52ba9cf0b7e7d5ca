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
	"strings"
	"time"

	"github.com/forkcast/forkcast/internal/metrics"
	"github.com/forkcast/forkcast/internal/recommend"
)

// Dietary tag lists are stored as comma-separated strings. Small (a
// handful of entries), read-heavy, never queried by element.

func joinCSV(values []string) string {
	return strings.Join(values, ",")
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// GetUserProfile returns the user's profile, or a zero-value profile
// for unknown users.
func (db *DB) GetUserProfile(ctx context.Context, userID string) (recommend.UserProfile, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var (
		profile recommend.UserProfile
		prefs   string
	)
	err := db.conn.QueryRowContext(ctx, `
		SELECT user_id, dietary_preferences, level
		FROM user_profiles WHERE user_id = ?
	`, userID).Scan(&profile.UserID, &prefs, &profile.Level)
	metrics.RecordDBQuery("select", "user_profiles", time.Since(start), ignoreNoRows(err))

	if errors.Is(err, sql.ErrNoRows) {
		return recommend.UserProfile{UserID: userID}, nil
	}
	if err != nil {
		return recommend.UserProfile{}, fmt.Errorf("query user profile: %w", err)
	}

	profile.DietaryPreferences = splitCSV(prefs)
	return profile, nil
}

// UpsertUserProfile inserts or replaces a user profile.
func (db *DB) UpsertUserProfile(ctx context.Context, profile recommend.UserProfile) error {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO user_profiles (user_id, dietary_preferences, level)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			dietary_preferences = excluded.dietary_preferences,
			level = excluded.level
	`, profile.UserID, joinCSV(profile.DietaryPreferences), profile.Level)
	metrics.RecordDBQuery("upsert", "user_profiles", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("upsert user profile: %w", err)
	}
	return nil
}

// GetUserSettings returns the user's settings, or zero-value settings
// for unknown users.
func (db *DB) GetUserSettings(ctx context.Context, userID string) (recommend.UserSettings, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var (
		settings     recommend.UserSettings
		restrictions string
	)
	err := db.conn.QueryRowContext(ctx, `
		SELECT dietary_restrictions, daily_calorie_target, activity_level
		FROM user_settings WHERE user_id = ?
	`, userID).Scan(&restrictions, &settings.DailyCalorieTarget, &settings.ActivityLevel)
	metrics.RecordDBQuery("select", "user_settings", time.Since(start), ignoreNoRows(err))

	if errors.Is(err, sql.ErrNoRows) {
		return recommend.UserSettings{}, nil
	}
	if err != nil {
		return recommend.UserSettings{}, fmt.Errorf("query user settings: %w", err)
	}

	settings.DietaryRestrictions = splitCSV(restrictions)
	return settings, nil
}

// UpsertUserSettings inserts or replaces user settings.
func (db *DB) UpsertUserSettings(ctx context.Context, userID string, settings recommend.UserSettings) error {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, dietary_restrictions, daily_calorie_target, activity_level)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			dietary_restrictions = excluded.dietary_restrictions,
			daily_calorie_target = excluded.daily_calorie_target,
			activity_level = excluded.activity_level
	`, userID, joinCSV(settings.DietaryRestrictions), settings.DailyCalorieTarget, settings.ActivityLevel)
	metrics.RecordDBQuery("upsert", "user_settings", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("upsert user settings: %w", err)
	}
	return nil
}

// GetCalorieLog returns the user's intake for the given day, or a
// zero-value log when nothing was recorded.
func (db *DB) GetCalorieLog(ctx context.Context, userID string, day time.Time) (recommend.CalorieLog, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var log recommend.CalorieLog
	err := db.conn.QueryRowContext(ctx, `
		SELECT consumed, goal FROM calorie_logs
		WHERE user_id = ? AND log_date = ?
	`, userID, day.Format("2006-01-02")).Scan(&log.Consumed, &log.Goal)
	metrics.RecordDBQuery("select", "calorie_logs", time.Since(start), ignoreNoRows(err))

	if errors.Is(err, sql.ErrNoRows) {
		return recommend.CalorieLog{}, nil
	}
	if err != nil {
		return recommend.CalorieLog{}, fmt.Errorf("query calorie log: %w", err)
	}
	return log, nil
}

// UpsertCalorieLog inserts or replaces one day's intake record.
func (db *DB) UpsertCalorieLog(ctx context.Context, userID string, day time.Time, log recommend.CalorieLog) error {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO calorie_logs (user_id, log_date, consumed, goal)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, log_date) DO UPDATE SET
			consumed = excluded.consumed,
			goal = excluded.goal
	`, userID, day.Format("2006-01-02"), log.Consumed, log.Goal)
	metrics.RecordDBQuery("upsert", "calorie_logs", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("upsert calorie log: %w", err)
	}
	return nil
}

// ignoreNoRows strips sql.ErrNoRows so absent rows are not counted as
// query errors in metrics.
func ignoreNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}
