// Forkcast - Personalized Recipe Recommendation Service
// Copyright 2026 Forkcast contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/forkcast/forkcast

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/forkcast/forkcast/internal/logging"
	"github.com/forkcast/forkcast/internal/metrics"
	"github.com/forkcast/forkcast/internal/recommend"
)

// Recommender is the engine surface the HTTP handlers depend on.
// Satisfied by *recommend.Engine.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
	TrackInteraction(ctx context.Context, inter recommend.Interaction) error
	GetMetrics() recommend.Metrics
	GetConfig() *recommend.Config
	UpdateConfig(cfg *recommend.Config) error
}

// TagDirectory is the storage surface for tag browsing and community
// tag suggestions. Satisfied by *database.DB.
type TagDirectory interface {
	ListTags(ctx context.Context, category string) ([]recommend.Tag, error)
	GetRelatedTags(ctx context.Context, tagID int) ([]recommend.TagRelation, error)
	TagNameExists(ctx context.Context, name string) (bool, error)
	InsertTagSuggestion(ctx context.Context, name, category string) (int, error)
}

// Handler holds dependencies for all HTTP handlers.
type Handler struct {
	engine   Recommender
	tags     TagDirectory
	validate *validator.Validate
	started  time.Time
}

// NewHandler creates a handler with the given engine and tag storage.
func NewHandler(engine Recommender, tags TagDirectory) *Handler {
	return &Handler{
		engine:   engine,
		tags:     tags,
		validate: validator.New(),
		started:  time.Now(),
	}
}

// Recommendations handles GET /api/v1/recommendations/user/{userID}.
//
// Query parameters:
//   - limit: maximum results (default 10, capped at 100)
//   - time_of_day: breakfast|lunch|dinner|snack (default: from server clock)
//   - max_prep_time: preparation budget in minutes
//   - calorie_target: overrides the user's remaining calorie budget
//   - ingredients: comma-separated pantry contents
//   - exclude_tags: comma-separated tag IDs to filter out
//   - prefer_tags: comma-separated tag IDs to boost
//   - strategy: scoring strategy name (default: personalized)
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w)
	start := time.Now()

	req, err := h.parseRecommendationRequest(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	resp, err := h.engine.Recommend(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, recommend.ErrUnknownStrategy):
			rw.BadRequest(err.Error())
		case errors.Is(err, recommend.ErrMissingUser):
			rw.BadRequest(err.Error())
		default:
			logging.Error().Err(err).Str("user_id", req.UserID).Msg("recommendation request failed")
			rw.InternalError("recommendation request failed")
		}
		return
	}

	metrics.RecordRecommendation(resp.Metadata.Strategy, resp.TotalCandidates, time.Since(start), resp.Metadata.CacheHit)

	if resp.Metadata.CacheHit {
		rw.SuccessCached(resp)
		return
	}
	rw.Success(resp)
}

func (h *Handler) parseRecommendationRequest(r *http.Request) (recommend.Request, error) {
	req := recommend.Request{
		UserID: chi.URLParam(r, "userID"),
	}

	q := r.URL.Query()

	var err error
	if req.Limit, err = parseIntParam(q.Get("limit"), "limit"); err != nil {
		return req, err
	}
	if req.MaxPrepTime, err = parseIntParam(q.Get("max_prep_time"), "max_prep_time"); err != nil {
		return req, err
	}
	if req.CalorieTarget, err = parseIntParam(q.Get("calorie_target"), "calorie_target"); err != nil {
		return req, err
	}

	if tod := q.Get("time_of_day"); tod != "" {
		mt := recommend.ParseMealTime(tod)
		if mt == recommend.MealTimeUnspecified {
			return req, fmt.Errorf("invalid time_of_day %q", tod)
		}
		req.TimeOfDay = mt
	}

	req.AvailableIngredients = splitListParam(q.Get("ingredients"))
	if req.ExcludeTags, err = parseIntListParam(q.Get("exclude_tags"), "exclude_tags"); err != nil {
		return req, err
	}
	if req.PreferredTags, err = parseIntListParam(q.Get("prefer_tags"), "prefer_tags"); err != nil {
		return req, err
	}
	req.Strategy = q.Get("strategy")

	return req, nil
}

// interactionRequest is the POST body for interaction tracking.
type interactionRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	RecipeID int    `json:"recipe_id" validate:"required,gt=0"`
	Type     string `json:"type" validate:"required"`
}

// TrackInteraction handles POST /api/v1/recommendations/interactions.
// Records the interaction and updates the user's learned tag
// preferences for signal-bearing interaction types.
func (h *Handler) TrackInteraction(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w)

	var body interactionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		rw.BadRequest("invalid JSON body")
		return
	}
	if err := h.validate.Struct(body); err != nil {
		rw.ValidationError("invalid interaction", validationDetails(err))
		return
	}

	kind, ok := recommend.ParseInteractionType(body.Type)
	if !ok {
		rw.BadRequest(fmt.Sprintf("invalid interaction type %q", body.Type))
		return
	}

	inter := recommend.Interaction{
		UserID:    body.UserID,
		RecipeID:  body.RecipeID,
		Type:      kind,
		Timestamp: time.Now(),
	}
	if err := h.engine.TrackInteraction(r.Context(), inter); err != nil {
		switch {
		case errors.Is(err, recommend.ErrMissingUser), errors.Is(err, recommend.ErrInvalidRecipe):
			rw.BadRequest(err.Error())
		default:
			logging.Error().Err(err).Str("user_id", body.UserID).Msg("interaction tracking failed")
			rw.InternalError("interaction tracking failed")
		}
		return
	}

	rw.Success(map[string]interface{}{
		"user_id":   inter.UserID,
		"recipe_id": inter.RecipeID,
		"type":      kind.String(),
		"recorded":  true,
	})
}

// GetScoringConfig handles GET /api/v1/recommendations/config.
func (h *Handler) GetScoringConfig(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w).Success(h.engine.GetConfig())
}

// UpdateScoringConfig handles PUT /api/v1/recommendations/config.
// The submitted config must pass validation; weights must sum to 1.
func (h *Handler) UpdateScoringConfig(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w)

	var cfg recommend.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		rw.BadRequest("invalid JSON body")
		return
	}

	if err := h.engine.UpdateConfig(&cfg); err != nil {
		rw.BadRequest(err.Error())
		return
	}

	logging.Info().Msg("scoring configuration updated")
	rw.Success(h.engine.GetConfig())
}

// Status handles GET /api/v1/recommendations/status with engine
// counters and uptime.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	m := h.engine.GetMetrics()
	NewResponseWriter(w).Success(map[string]interface{}{
		"status":            "ok",
		"uptime_seconds":    int64(time.Since(h.started).Seconds()),
		"request_count":     m.RequestCount,
		"cache_hits":        m.CacheHits,
		"cache_misses":      m.CacheMisses,
		"error_count":       m.ErrorCount,
		"interaction_count": m.InteractionCount,
	})
}

// Healthz handles GET /healthz for liveness probes.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func parseIntParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s must not be negative", name)
	}
	return v, nil
}

func parseIntListParam(raw, name string) ([]int, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s entry %q", name, p)
		}
		out = append(out, v)
	}
	return out, nil
}

func splitListParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// validationDetails converts validator errors into a field -> message map.
func validationDetails(err error) map[string]interface{} {
	details := make(map[string]interface{})
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			details[strings.ToLower(fe.Field())] = fmt.Sprintf("failed on %q validation", fe.Tag())
		}
	}
	return details
}
