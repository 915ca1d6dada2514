// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

// Package recommend ranks unread forum threads for a single reader.
//
// # Architecture
//
// A request flows through a fixed pipeline over one snapshot of the
// collaborator data:
//
//   - Prefilter: publish window, forum, read/disliked exclusion, disliked tags
//   - Profile: time-decayed category, tag and hour preferences
//   - Scorer: TF-IDF content similarity, behavior match, freshness,
//     popularity, diversity, preferred-tag bonus and dislike penalty
//   - Ranker: thresholds, stable ordering, force-refresh shuffle, backfill
//
// Two branches share this snapshot. The content branch runs the full
// pipeline; the tag branch follows the reader's most-read tags. The mixer
// runs both concurrently and merges their results.
//
// # Adaptive Weights
//
// Factor weights depend on how many threads the reader has completed:
//
//	completed <  5: content 0.30  behavior 0.15  freshness 0.25  popularity 0.25
//	completed < 20: content 0.35  behavior 0.25  freshness 0.20  popularity 0.15
//	otherwise:      content 0.45  behavior 0.35  freshness 0.10  popularity 0.05
//
// The diversity weight is 0.05 in every tier.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), store, logger)
//	if err != nil {
//	    return err
//	}
//	recs, err := engine.Recommend(ctx, recommend.Request{Limit: 10, Forum: recommend.ForumAll})
//
// # Thread Safety
//
// The engine is safe for concurrent use. The similarity cache and random
// source are guarded by their own mutexes; collaborator snapshots are
// read-only once loaded.
package recommend
