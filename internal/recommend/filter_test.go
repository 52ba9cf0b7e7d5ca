// Forkcast - Personalized Recipe Recommendation Service
// Copyright 2026 Forkcast contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/forkcast/forkcast

package recommend

import "testing"

func taggedRecipe(id int, names ...string) Recipe {
	r := Recipe{ID: id}
	for i, name := range names {
		r.Tags = append(r.Tags, TagAssociation{
			TagID: id*100 + i, Name: name, BaseWeight: 1, RelevanceWeight: 1,
		})
	}
	return r
}

func TestPassesRestrictions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		recipe       Recipe
		restrictions []string
		preferences  []string
		want         bool
	}{
		{
			name:   "no restrictions passes everything",
			recipe: taggedRecipe(1, "spicy"),
			want:   true,
		},
		{
			name:         "vegan user requires vegan tag",
			recipe:       taggedRecipe(1, "spicy"),
			restrictions: []string{"vegan"},
			want:         false,
		},
		{
			name:         "vegan tag satisfies vegan restriction",
			recipe:       taggedRecipe(1, "vegan", "spicy"),
			restrictions: []string{"vegan"},
			want:         true,
		},
		{
			name:         "allergen restriction requires explicit tag",
			recipe:       taggedRecipe(1, "vegan"),
			restrictions: []string{"gluten-free"},
			want:         false,
		},
		{
			name:         "all restrictions must be satisfied",
			recipe:       taggedRecipe(1, "vegan"),
			restrictions: []string{"vegan", "nut-free"},
			want:         false,
		},
		{
			name:         "multiple restrictions all tagged",
			recipe:       taggedRecipe(1, "vegan", "nut-free"),
			restrictions: []string{"vegan", "nut-free"},
			want:         true,
		},
		{
			name:         "unknown restriction is ignored",
			recipe:       taggedRecipe(1, "spicy"),
			restrictions: []string{"organic-only"},
			want:         true,
		},
		{
			name:        "profile-level preference never filters",
			recipe:      taggedRecipe(1, "spicy"),
			preferences: []string{"keto"},
			want:        true,
		},
		{
			name:        "vegetarian preference passes untagged recipe",
			recipe:      taggedRecipe(1, "quick"),
			preferences: []string{"vegetarian"},
			want:        true,
		},
		{
			name:         "only restrictions gate when both present",
			recipe:       taggedRecipe(1, "gluten-free"),
			restrictions: []string{"gluten-free"},
			preferences:  []string{"vegan"},
			want:         true,
		},
		{
			name:         "tag names match case-insensitively",
			recipe:       Recipe{ID: 1, Tags: []TagAssociation{{TagID: 1, Name: "Vegan"}}},
			restrictions: []string{"vegan"},
			want:         true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			snap := emptySnapshot()
			snap.DietaryRestrictions = tt.restrictions
			snap.DietaryPreferences = tt.preferences
			if got := passesRestrictions(tt.recipe, snap); got != tt.want {
				t.Errorf("passesRestrictions() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPassesExclusions(t *testing.T) {
	t.Parallel()

	recipe := Recipe{ID: 1, Tags: []TagAssociation{
		{TagID: 10, Name: "spicy"},
		{TagID: 20, Name: "thai"},
	}}

	snap := emptySnapshot()
	if !passesExclusions(recipe, snap) {
		t.Error("empty exclusion set should pass")
	}

	snap.ExcludeTags = map[int]struct{}{20: {}}
	if passesExclusions(recipe, snap) {
		t.Error("recipe carrying an excluded tag should fail")
	}

	snap.ExcludeTags = map[int]struct{}{99: {}}
	if !passesExclusions(recipe, snap) {
		t.Error("non-matching exclusion should pass")
	}
}

func TestFilterCandidates(t *testing.T) {
	t.Parallel()

	recipes := []Recipe{
		taggedRecipe(1, "vegan"),
		taggedRecipe(2, "spicy"),
		taggedRecipe(3, "vegan", "spicy"),
	}

	snap := emptySnapshot()
	snap.DietaryRestrictions = []string{"vegan"}

	kept, filtered := filterCandidates(recipes, snap)
	if filtered != 1 {
		t.Errorf("filtered = %d, want 1", filtered)
	}
	if len(kept) != 2 || kept[0].ID != 1 || kept[1].ID != 3 {
		t.Errorf("kept = %+v, want recipes 1 and 3", kept)
	}
}

func TestRestrictionSetsAreDisjoint(t *testing.T) {
	t.Parallel()

	for name := range dietaryPreferenceSet {
		if _, ok := dietaryComplianceSet[name]; ok {
			t.Errorf("restriction %q appears in both sets", name)
		}
	}
}
