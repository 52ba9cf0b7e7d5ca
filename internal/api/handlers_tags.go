// Forkcast - Personalized Recipe Recommendation Service
// Copyright 2026 Forkcast contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/forkcast/forkcast

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/forkcast/forkcast/internal/logging"
	"github.com/forkcast/forkcast/internal/metrics"
	"github.com/forkcast/forkcast/internal/recommend"
)

// tagCategories is the set of categories accepted for tag filtering
// and suggestions.
var tagCategories = map[string]struct{}{
	recommend.CategoryDietary:        {},
	recommend.CategoryCuisine:        {},
	recommend.CategoryCookingMethod:  {},
	recommend.CategoryMealTime:       {},
	recommend.CategoryAllergen:       {},
	recommend.CategoryIngredientType: {},
	recommend.CategoryTasteProfile:   {},
	recommend.CategoryHealthBenefit:  {},
}

// ListTags handles GET /api/v1/tags with an optional category filter.
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w)

	category := r.URL.Query().Get("category")
	if category != "" {
		if _, ok := tagCategories[category]; !ok {
			rw.BadRequest("invalid category " + strconv.Quote(category))
			return
		}
	}

	tags, err := h.tags.ListTags(r.Context(), category)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.Success(map[string]interface{}{
		"tags":  tags,
		"count": len(tags),
	})
}

// RelatedTags handles GET /api/v1/tags/{tagID}/related.
func (h *Handler) RelatedTags(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w)

	tagID, err := strconv.Atoi(chi.URLParam(r, "tagID"))
	if err != nil || tagID <= 0 {
		rw.BadRequest("invalid tag ID")
		return
	}

	relations, err := h.tags.GetRelatedTags(r.Context(), tagID)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.Success(map[string]interface{}{
		"tag_id":  tagID,
		"related": relations,
		"count":   len(relations),
	})
}

// tagSuggestionRequest is the POST body for community tag suggestions.
type tagSuggestionRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=30"`
	Category string `json:"category" validate:"required"`
}

// SuggestTag handles POST /api/v1/tags/suggest. Suggested tags are
// stored unapproved and excluded from scoring until reviewed.
func (h *Handler) SuggestTag(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w)

	var body tagSuggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		rw.BadRequest("invalid JSON body")
		return
	}
	body.Name = strings.TrimSpace(body.Name)

	if err := h.validate.Struct(body); err != nil {
		metrics.RecordTagSuggestion("rejected")
		rw.ValidationError("invalid tag suggestion", validationDetails(err))
		return
	}
	if _, ok := tagCategories[body.Category]; !ok {
		metrics.RecordTagSuggestion("rejected")
		rw.BadRequest("invalid category " + strconv.Quote(body.Category))
		return
	}

	exists, err := h.tags.TagNameExists(r.Context(), body.Name)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if exists {
		metrics.RecordTagSuggestion("duplicate")
		rw.Conflict("tag " + strconv.Quote(strings.ToLower(body.Name)) + " already exists")
		return
	}

	id, err := h.tags.InsertTagSuggestion(r.Context(), body.Name, body.Category)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	metrics.RecordTagSuggestion("accepted")
	logging.Info().Int("tag_id", id).Str("name", strings.ToLower(body.Name)).Msg("tag suggestion recorded")

	rw.Created(map[string]interface{}{
		"tag_id":   id,
		"name":     strings.ToLower(body.Name),
		"category": body.Category,
		"approved": false,
		"message":  "tag suggestion submitted for review",
	})
}
