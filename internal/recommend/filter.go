// Forkcast - Personalized Recipe Recommendation Service
// Copyright 2026 Forkcast contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/forkcast/forkcast

package recommend

import "strings"

// Dietary filtering uses inclusion semantics: when a user declares a
// restriction from one of the known sets, a recipe must carry the
// matching tag to pass. Restrictions outside both sets are ignored
// rather than rejected, so new client-side labels degrade gracefully.

// dietaryPreferenceSet holds lifestyle diets. A user following one of
// these only sees recipes explicitly tagged as compatible.
var dietaryPreferenceSet = map[string]struct{}{
	"vegetarian":    {},
	"vegan":         {},
	"pescatarian":   {},
	"keto":          {},
	"paleo":         {},
	"low-carb":      {},
	"mediterranean": {},
}

// dietaryComplianceSet holds allergen and compliance restrictions.
// These are safety-relevant, so the same inclusion rule applies: no
// tag, no recommendation.
var dietaryComplianceSet = map[string]struct{}{
	"gluten-free":    {},
	"dairy-free":     {},
	"nut-free":       {},
	"soy-free":       {},
	"egg-free":       {},
	"shellfish-free": {},
	"halal":          {},
	"kosher":         {},
}

// isKnownRestriction reports whether name belongs to either restriction set.
func isKnownRestriction(name string) bool {
	if _, ok := dietaryPreferenceSet[name]; ok {
		return true
	}
	_, ok := dietaryComplianceSet[name]
	return ok
}

// passesRestrictions reports whether the recipe satisfies every known
// restriction in the snapshot. Only settings-level restrictions filter;
// profile-level dietary preferences stay a scoring signal. Restrictions
// come pre-lowercased from the snapshot builder; recipe tag names are
// lowercased here.
func passesRestrictions(r Recipe, snap *Snapshot) bool {
	var required []string
	for _, restriction := range snap.DietaryRestrictions {
		if isKnownRestriction(restriction) {
			required = append(required, restriction)
		}
	}
	if len(required) == 0 {
		return true
	}

	tagNames := make(map[string]struct{}, len(r.Tags))
	for _, tag := range r.Tags {
		tagNames[strings.ToLower(tag.Name)] = struct{}{}
	}

	for _, want := range required {
		if _, ok := tagNames[want]; !ok {
			return false
		}
	}
	return true
}

// passesExclusions reports whether the recipe avoids every explicitly
// excluded tag ID from the request.
func passesExclusions(r Recipe, snap *Snapshot) bool {
	if len(snap.ExcludeTags) == 0 {
		return true
	}
	for _, tag := range r.Tags {
		if _, ok := snap.ExcludeTags[tag.TagID]; ok {
			return false
		}
	}
	return true
}

// filterCandidates applies the hard dietary and exclusion filters,
// returning the surviving recipes and the number removed.
func filterCandidates(recipes []Recipe, snap *Snapshot) (kept []Recipe, filtered int) {
	kept = make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		if !passesRestrictions(r, snap) || !passesExclusions(r, snap) {
			filtered++
			continue
		}
		kept = append(kept, r)
	}
	return kept, filtered
}
