// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DislikedEntry is a disliked thread enriched with its current record.
type DislikedEntry struct {
	DislikedThread
	URL     string `json:"url,omitempty"`
	ForumID string `json:"forum_id,omitempty"`
}

// BatchError reports the failure of one id in a batch operation.
type BatchError struct {
	ThreadID string `json:"thread_id"`
	Error    string `json:"error"`
}

// AddDislike marks threadID as disliked. The thread's title, category and
// tags are snapshotted when the thread is known. It reports whether the
// thread was newly disliked.
func (e *Engine) AddDislike(ctx context.Context, threadID, reason string) (bool, error) {
	threadID = strings.TrimSpace(threadID)
	if threadID == "" {
		return false, ErrInvalidThreadID
	}

	d := DislikedThread{
		ThreadID:  threadID,
		CreatedAt: e.now(),
		Reason:    reason,
	}
	t, err := e.store.GetThread(ctx, threadID)
	switch {
	case err == nil:
		d.Title, d.Category, d.Tags = t.Title, t.Category, t.Tags
	case errors.Is(err, ErrNotFound):
		// Dislikes may arrive before the thread is ingested.
	default:
		return false, fmt.Errorf("get thread %s: %w", threadID, err)
	}

	added, err := e.store.PutDisliked(ctx, d)
	if err != nil {
		return false, fmt.Errorf("put disliked %s: %w", threadID, err)
	}

	e.logger.Debug().Str("thread_id", threadID).Bool("added", added).Msg("thread disliked")
	return added, nil
}

// AddDislikes dislikes every id in threadIDs and returns the number newly
// added together with per-id failures. One failure does not stop the batch.
func (e *Engine) AddDislikes(ctx context.Context, threadIDs []string, reason string) (int, []BatchError) {
	added := 0
	var failures []BatchError
	for _, id := range threadIDs {
		ok, err := e.AddDislike(ctx, id, reason)
		if err != nil {
			failures = append(failures, BatchError{ThreadID: id, Error: err.Error()})
			continue
		}
		if ok {
			added++
		}
	}
	return added, failures
}

// RemoveDislike deletes threadID from the disliked set.
func (e *Engine) RemoveDislike(ctx context.Context, threadID string) error {
	if threadID == "" {
		return ErrInvalidThreadID
	}
	if err := e.store.DeleteDisliked(ctx, threadID); err != nil {
		return fmt.Errorf("delete disliked %s: %w", threadID, err)
	}
	return nil
}

// ListDislikes returns the disliked threads, newest first, enriched with
// the current thread record where one exists.
func (e *Engine) ListDislikes(ctx context.Context) ([]DislikedEntry, error) {
	disliked, err := e.store.AllDislikedThreads(ctx)
	if err != nil {
		return nil, fmt.Errorf("load disliked threads: %w", err)
	}
	threads, err := e.store.AllThreads(ctx)
	if err != nil {
		return nil, fmt.Errorf("load threads: %w", err)
	}
	byID := threadIndex(threads)

	out := make([]DislikedEntry, 0, len(disliked))
	for i := range disliked {
		entry := DislikedEntry{DislikedThread: disliked[i]}
		if t, ok := byID[entry.ThreadID]; ok {
			entry.Title = t.Title
			entry.Category = t.Category
			entry.Tags = t.Tags
			entry.URL = t.URL
			entry.ForumID = t.ForumID
		}
		out = append(out, entry)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
