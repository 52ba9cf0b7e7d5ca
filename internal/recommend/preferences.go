// Forkcast - Personalized Recipe Recommendation Service
// Copyright 2026 Forkcast contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/forkcast/forkcast

package recommend

import "time"

// Tag preference learning. Every like/complete/skip interaction updates
// one counter per tag on the recipe; the preference score is the
// clamped difference positive - negative, so it always stays in
// [-10, 10] regardless of interaction volume.

const (
	// PreferenceScoreMin is the floor of a learned tag preference.
	PreferenceScoreMin = -10
	// PreferenceScoreMax is the ceiling of a learned tag preference.
	PreferenceScoreMax = 10
)

// clampPreference bounds a raw positive-negative difference to the
// preference score range.
func clampPreference(v int) int {
	if v < PreferenceScoreMin {
		return PreferenceScoreMin
	}
	if v > PreferenceScoreMax {
		return PreferenceScoreMax
	}
	return v
}

// ApplyInteraction folds one interaction signal into a tag preference,
// returning the updated record. A nil prev starts a fresh record for
// the user/tag pair. View interactions carry no signal and leave the
// counters untouched.
func ApplyInteraction(prev *TagPreference, userID string, tagID int, kind InteractionType, now time.Time) TagPreference {
	var pref TagPreference
	if prev != nil {
		pref = *prev
	} else {
		pref = TagPreference{UserID: userID, TagID: tagID}
	}

	switch kind.Signal() {
	case 1:
		pref.PositiveCount++
	case -1:
		pref.NegativeCount++
	}
	pref.TotalCount = pref.PositiveCount + pref.NegativeCount
	pref.Score = float64(clampPreference(pref.PositiveCount - pref.NegativeCount))
	pref.UpdatedAt = now
	return pref
}
