// Forkcast - Personalized Recipe Recommendation Service
// Copyright 2026 Forkcast contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/forkcast/forkcast

package database

import (
	"context"
	"testing"
	"time"

	"github.com/forkcast/forkcast/internal/recommend"
)

func TestUserProfileRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// Absent profile degrades to a zero value.
	profile, err := db.GetUserProfile(ctx, "nobody")
	if err != nil {
		t.Fatalf("GetUserProfile(absent) failed: %v", err)
	}
	if profile.UserID != "nobody" || len(profile.DietaryPreferences) != 0 {
		t.Errorf("absent profile = %+v, want zero value", profile)
	}

	want := recommend.UserProfile{
		UserID:             "alice",
		DietaryPreferences: []string{"vegan", "gluten-free"},
		Level:              3,
	}
	if err := db.UpsertUserProfile(ctx, want); err != nil {
		t.Fatalf("UpsertUserProfile() failed: %v", err)
	}

	got, err := db.GetUserProfile(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserProfile() failed: %v", err)
	}
	if got.Level != 3 {
		t.Errorf("level = %d, want 3", got.Level)
	}
	if len(got.DietaryPreferences) != 2 || got.DietaryPreferences[0] != "vegan" || got.DietaryPreferences[1] != "gluten-free" {
		t.Errorf("dietary preferences = %v", got.DietaryPreferences)
	}

	// Upsert replaces the existing row.
	want.DietaryPreferences = []string{"vegetarian"}
	want.Level = 4
	if err := db.UpsertUserProfile(ctx, want); err != nil {
		t.Fatalf("second UpsertUserProfile() failed: %v", err)
	}
	got, err = db.GetUserProfile(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserProfile() after upsert failed: %v", err)
	}
	if got.Level != 4 || len(got.DietaryPreferences) != 1 || got.DietaryPreferences[0] != "vegetarian" {
		t.Errorf("profile after upsert = %+v", got)
	}
}

func TestUserSettingsRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	settings, err := db.GetUserSettings(ctx, "nobody")
	if err != nil {
		t.Fatalf("GetUserSettings(absent) failed: %v", err)
	}
	if settings.DailyCalorieTarget != 0 || len(settings.DietaryRestrictions) != 0 {
		t.Errorf("absent settings = %+v, want zero value", settings)
	}

	want := recommend.UserSettings{
		DietaryRestrictions: []string{"nut-free", "dairy-free"},
		DailyCalorieTarget:  2200,
		ActivityLevel:       "moderate",
	}
	if err := db.UpsertUserSettings(ctx, "bob", want); err != nil {
		t.Fatalf("UpsertUserSettings() failed: %v", err)
	}

	got, err := db.GetUserSettings(ctx, "bob")
	if err != nil {
		t.Fatalf("GetUserSettings() failed: %v", err)
	}
	if got.DailyCalorieTarget != 2200 || got.ActivityLevel != "moderate" {
		t.Errorf("settings = %+v", got)
	}
	if len(got.DietaryRestrictions) != 2 || got.DietaryRestrictions[0] != "nut-free" {
		t.Errorf("restrictions = %v", got.DietaryRestrictions)
	}
}

func TestCalorieLogRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	log, err := db.GetCalorieLog(ctx, "carol", day)
	if err != nil {
		t.Fatalf("GetCalorieLog(absent) failed: %v", err)
	}
	if log.Consumed != 0 || log.Goal != 0 {
		t.Errorf("absent log = %+v, want zero value", log)
	}

	if err := db.UpsertCalorieLog(ctx, "carol", day, recommend.CalorieLog{Consumed: 1450, Goal: 2000}); err != nil {
		t.Fatalf("UpsertCalorieLog() failed: %v", err)
	}

	got, err := db.GetCalorieLog(ctx, "carol", day)
	if err != nil {
		t.Fatalf("GetCalorieLog() failed: %v", err)
	}
	if got.Consumed != 1450 || got.Goal != 2000 {
		t.Errorf("log = %+v", got)
	}

	// Logs are keyed per day.
	other, err := db.GetCalorieLog(ctx, "carol", day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("GetCalorieLog(next day) failed: %v", err)
	}
	if other.Consumed != 0 {
		t.Errorf("next day consumed = %d, want 0", other.Consumed)
	}

	// Upsert replaces the same day's row.
	if err := db.UpsertCalorieLog(ctx, "carol", day, recommend.CalorieLog{Consumed: 1800, Goal: 2000}); err != nil {
		t.Fatalf("second UpsertCalorieLog() failed: %v", err)
	}
	got, err = db.GetCalorieLog(ctx, "carol", day)
	if err != nil {
		t.Fatalf("GetCalorieLog() after upsert failed: %v", err)
	}
	if got.Consumed != 1800 {
		t.Errorf("consumed after upsert = %d, want 1800", got.Consumed)
	}
}

func TestSplitJoinCSV(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		csv  string
	}{
		{name: "empty", in: nil, csv: ""},
		{name: "single", in: []string{"vegan"}, csv: "vegan"},
		{name: "multiple", in: []string{"vegan", "nut-free", "halal"}, csv: "vegan,nut-free,halal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := joinCSV(tt.in); got != tt.csv {
				t.Errorf("joinCSV(%v) = %q, want %q", tt.in, got, tt.csv)
			}
			back := splitCSV(tt.csv)
			if len(back) != len(tt.in) {
				t.Fatalf("splitCSV(%q) = %v, want %v", tt.csv, back, tt.in)
			}
			for i := range back {
				if back[i] != tt.in[i] {
					t.Errorf("splitCSV(%q)[%d] = %q, want %q", tt.csv, i, back[i], tt.in[i])
				}
			}
		})
	}

	// Stray whitespace and empty segments are dropped.
	if got := splitCSV(" vegan , ,nut-free "); len(got) != 2 || got[0] != "vegan" || got[1] != "nut-free" {
		t.Errorf("splitCSV with whitespace = %v", got)
	}
}
