// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package recommend

import (
	"sort"
	"time"
)

// PrefilterInput bundles the snapshot the prefilter works on.
type PrefilterInput struct {
	Threads      []Thread
	ReadEvents   []ReadEvent
	Disliked     []DislikedThread
	DislikedTags []string
	Forum        string
	Now          time.Time
}

// Prefilter reduces the thread set to the bounded working set scored by
// the content branch.
//
// Threads must fall inside the publish window, belong to the requested
// forum, be unread and not disliked, and carry no tag strictly matching a
// disliked tag. When fewer than MinCandidates survive, the pass is repeated
// rejecting only exact disliked-tag matches, which can only admit more
// threads. Oversized results keep the newest MaxCandidates.
//
// Threads with no known publish time are kept by the window check.
func Prefilter(cfg PrefilterConfig, in PrefilterInput) []Thread {
	read := readIDs(in.ReadEvents)
	disliked := dislikedIDs(in.Disliked)
	cutoff := in.Now.Add(-cfg.Window)

	pass := func(match TagMatcher) []Thread {
		out := make([]Thread, 0, len(in.Threads))
		for i := range in.Threads {
			t := &in.Threads[i]
			if pt := t.PublishTime(); !pt.IsZero() && !pt.After(cutoff) {
				continue
			}
			if !forumMatches(in.Forum, t.ForumID) {
				continue
			}
			if read.has(t.ThreadID) || disliked.has(t.ThreadID) {
				continue
			}
			if HasMatchingTag(t.Tags, in.DislikedTags, match) {
				continue
			}
			out = append(out, *t)
		}
		return out
	}

	filtered := pass(StrictTagMatcher(cfg.MinContainmentLen))
	if len(filtered) < cfg.MinCandidates {
		filtered = pass(ExactTagMatch)
	}

	if len(filtered) > cfg.MaxCandidates {
		SortByPublishTimeDesc(filtered)
		filtered = filtered[:cfg.MaxCandidates]
	}
	return filtered
}

// SortByPublishTimeDesc orders threads newest first, stable on ties.
// Threads without a publish time sort last.
func SortByPublishTimeDesc(threads []Thread) {
	sort.SliceStable(threads, func(i, j int) bool {
		return publishedBefore(threads[j].PublishTime(), threads[i].PublishTime())
	})
}

// publishedBefore reports whether a is strictly older than b, treating the
// zero time as older than everything.
func publishedBefore(a, b time.Time) bool {
	if a.IsZero() {
		return !b.IsZero()
	}
	if b.IsZero() {
		return false
	}
	return a.Before(b)
}

func forumMatches(forum, forumID string) bool {
	return forum == "" || forum == ForumAll || forum == forumID
}
