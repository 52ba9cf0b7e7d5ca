// Forkcast - Personalized Recipe Recommendation Service
// Copyright 2026 Forkcast contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/forkcast/forkcast

// Package recommend implements the recipe recommendation engine.
//
// # Architecture
//
// Each request builds a per-user scoring snapshot (pantry, dietary
// restrictions, learned tag preferences, calorie budget, completion
// history) and evaluates the candidate catalog through a strategy:
//
//   - Personalized: seven weighted sub-scores - tag affinity, pantry
//     availability, profile fit, calorie alignment, meal-slot fit,
//     popularity and novelty
//   - Default: a lightweight nutrition/points/availability blend for
//     users with no history
//
// Dietary restrictions filter with inclusion semantics before scoring:
// a restricted user only sees recipes explicitly tagged compatible.
//
// # Feedback Loop
//
// Likes, completions and skips move a per-user, per-tag preference
// score clamped to [-10, 10]; views are recorded but carry no signal.
// The learned scores feed back into the tag-affinity sub-score on the
// next request.
//
// # Design Principles
//
//   - Deterministic: same snapshot and catalog produce identical
//     rankings; ties break on recipe ID
//   - Bounded: every sub-score and aggregate stays inside [0, 100]
//   - Auditable: responses expose the full per-signal breakdown
//   - Degradable: missing user data falls back to neutral defaults
//     instead of failing the request
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), logger)
//	engine.SetDataProvider(provider)
//
//	resp, err := engine.Recommend(ctx, recommend.Request{
//	    UserID: userID,
//	    Limit:  10,
//	})
//
// # Thread Safety
//
// The engine is safe for concurrent use. Configuration updates swap the
// config under a lock and invalidate the response cache.
package recommend
