// Forkcast - Personalized Recipe Recommendation Service
// Copyright 2026 Forkcast contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/forkcast/forkcast

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/forkcast/forkcast/internal/config"
	"github.com/forkcast/forkcast/internal/metrics"
)

// Router wires handlers into the HTTP routing tree.
type Router struct {
	handler *Handler
	cfg     config.APIConfig
}

// NewRouter creates a router for the given handler and API settings.
func NewRouter(handler *Handler, cfg config.APIConfig) *Router {
	return &Router{handler: handler, cfg: cfg}
}

// Setup builds the full routing tree with the global middleware stack.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied in order.
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   router.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Operational endpoints are exempt from rate limiting so probes
	// and scrapers are never throttled.
	r.Get("/healthz", router.handler.Healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(router.cfg.RateLimitReqs, router.cfg.RateLimitWindow))
		r.Use(prometheusMetrics)

		r.Route("/recommendations", func(r chi.Router) {
			r.Get("/user/{userID}", router.handler.Recommendations)
			r.Post("/interactions", router.handler.TrackInteraction)
			r.Get("/config", router.handler.GetScoringConfig)
			r.Put("/config", router.handler.UpdateScoringConfig)
			r.Get("/status", router.handler.Status)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", router.handler.ListTags)
			r.Get("/{tagID}/related", router.handler.RelatedTags)
			r.Post("/suggest", router.handler.SuggestTag)
		})
	})

	return r
}

// prometheusMetrics records request counts, durations and in-flight
// gauge per route pattern.
func prometheusMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := chi.RouteContext(r.Context()).RoutePattern()
		if endpoint == "" {
			endpoint = r.URL.Path
		}
		metrics.RecordAPIRequest(r.Method, endpoint, strconv.Itoa(ww.Status()), time.Since(start))
	})
}
