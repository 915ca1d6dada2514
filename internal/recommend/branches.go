// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package recommend

import (
	"math"
	"sort"
	"sync"
)

// contentBranch scores the prefiltered working set against the reader's
// history and profile and ranks the result.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) contentBranch(snap *snapshot, req Request) []ScoredCandidate {
	cfg := e.config
	loc := cfg.location()

	prefiltered := Prefilter(cfg.Prefilter, PrefilterInput{
		Threads:      snap.threads,
		ReadEvents:   snap.events,
		Disliked:     snap.disliked,
		DislikedTags: snap.settings.DislikedTags,
		Forum:        req.Forum,
		Now:          snap.now,
	})
	e.recorder.ObservePrefilter(len(snap.threads), len(prefiltered))
	if len(prefiltered) == 0 {
		return nil
	}

	byID := threadIndex(snap.threads)
	history := historyText(snap.events, byID, cfg.Ranking.HistoryContentChars)

	docs := make([]string, len(prefiltered))
	for i := range prefiltered {
		docs[i] = documentText(&prefiltered[i], cfg.Ranking.HistoryContentChars)
	}
	corpus := NewCorpus(docs)

	batch := truncate(prefiltered, cfg.Ranking.MaxScored)
	diversity := NewDiversityIndex(batch, loc)
	profile := BuildProfile(cfg.Profile, snap.events, snap.now, loc)
	weights := SelectWeights(cfg.WeightTiers, completedCount(snap.events))
	dislikedTexts := e.dislikedTexts(snap.disliked, byID)

	read := readIDs(snap.events)
	disliked := dislikedIDs(snap.disliked)
	strict := StrictTagMatcher(cfg.Prefilter.MinContainmentLen)
	penaltySim := func(a, b string) float64 { return e.cache.Similarity(a, b, nil) }

	scored := make([]ScoredCandidate, 0, len(batch))
	for i := range batch {
		t := &batch[i]
		if read.has(t.ThreadID) || disliked.has(t.ThreadID) {
			continue
		}
		if snap.clicked.has(t.ThreadID) && !req.ForceRefresh {
			continue
		}
		if HasMatchingTag(t.Tags, snap.settings.DislikedTags, strict) {
			continue
		}

		text := t.Text()
		s := Scores{
			ContentSimilarity:  e.cache.Similarity(history, text, corpus),
			BehaviorSimilarity: BehaviorSimilarity(profile, t, loc),
			FreshnessScore:     FreshnessScore(t.PublishTime(), snap.now),
			PopularityScore:    PopularityScore(t, snap.now),
			DiversityBonus:     diversity.Bonus(t),
			PreferredTagBonus:  PreferredTagBonus(t.Tags, snap.settings.PreferredTags),
			DislikePenalty:     DislikePenalty(text, dislikedTexts, penaltySim),
			AuthorAffinity:     AuthorAffinity(snap.events, t.AuthorID),
		}
		scored = append(scored, ScoredCandidate{
			Thread:     *t,
			Scores:     s,
			FinalScore: FinalScore(s, weights, cfg.AuthorAffinityWeight),
			Weights:    weights,
			Source:     SourceContent,
		})
	}

	// The relaxed prefilter pass can admit threads the strict matcher
	// rejects; they must not come back through the fallback either.
	fallback := make([]Thread, 0, len(prefiltered))
	for i := range prefiltered {
		if !HasMatchingTag(prefiltered[i].Tags, snap.settings.DislikedTags, strict) {
			fallback = append(fallback, prefiltered[i])
		}
	}

	return Rank(cfg.Ranking, scored, fallback, req.Limit, req.ForceRefresh, e.shuffle)
}

// tagBranch recommends the newest threads carrying the reader's most-read
// tags. It works on the full thread set, not the prefiltered one.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) tagBranch(snap *snapshot, req Request) []ScoredCandidate {
	if len(snap.events) == 0 {
		return nil
	}

	byID := threadIndex(snap.threads)
	tagCounts := newCounter[string]()
	for i := range snap.events {
		ev := &snap.events[i]
		if !ev.Completed {
			continue
		}
		if t, ok := byID[ev.ThreadID]; ok {
			for _, tag := range t.Tags {
				tagCounts.add(tag, 1)
			}
		}
	}
	topTags := tagCounts.top(e.config.Ranking.TopTagCount)
	if len(topTags) == 0 {
		return nil
	}

	read := readIDs(snap.events)
	disliked := dislikedIDs(snap.disliked)

	matches := make([]Thread, 0)
	for i := range snap.threads {
		t := &snap.threads[i]
		if !HasMatchingTag(t.Tags, topTags, func(a, b string) bool { return a == b }) {
			continue
		}
		if read.has(t.ThreadID) || disliked.has(t.ThreadID) {
			continue
		}
		if snap.clicked.has(t.ThreadID) && !req.ForceRefresh {
			continue
		}
		if HasMatchingTag(t.Tags, snap.settings.DislikedTags, LooseTagMatch) {
			continue
		}
		if !forumMatches(req.Forum, t.ForumID) {
			continue
		}
		matches = append(matches, *t)
	}

	SortByPublishTimeDesc(matches)
	if req.ForceRefresh && len(matches) > req.Limit {
		shuffleTail(len(matches), e.config.Ranking.KeepTopFraction, e.shuffle, func(i, j int) {
			matches[i], matches[j] = matches[j], matches[i]
		})
	}
	matches = truncate(matches, req.Limit)

	out := make([]ScoredCandidate, len(matches))
	for i := range matches {
		t := &matches[i]
		out[i] = ScoredCandidate{
			Thread: *t,
			Scores: Scores{
				FreshnessScore:  FreshnessScore(t.PublishTime(), snap.now),
				PopularityScore: PopularityScore(t, snap.now),
			},
			Source: SourceTags,
		}
	}
	return out
}

// mixed runs both branches concurrently on snap and merges them, content
// results first.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) mixed(snap *snapshot, req Request) []ScoredCandidate {
	if req.ForceRefresh {
		// The persisted set was cleared before the snapshot was taken.
		snap.clicked = idSet{}
	}

	contentReq := req
	contentReq.Limit = shareOf(req.Limit, e.config.Mixer.ContentShare)
	tagReq := req
	tagReq.Limit = shareOf(req.Limit, e.config.Mixer.TagShare)

	var contentRecs, tagRecs []ScoredCandidate
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		contentRecs = e.contentBranch(snap, contentReq)
	}()
	go func() {
		defer wg.Done()
		tagRecs = e.tagBranch(snap, tagReq)
	}()
	wg.Wait()

	merged := make([]ScoredCandidate, 0, len(contentRecs)+len(tagRecs))
	merged = append(merged, contentRecs...)
	merged = append(merged, tagRecs...)
	return truncate(dedupe(merged), req.Limit)
}

// popular oversamples the mixed list and orders it by popularity.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) popular(snap *snapshot, req Request) []ScoredCandidate {
	wide := req
	wide.Limit = req.Limit * e.config.Mixer.PopularOversample
	recs := e.mixed(snap, wide)

	for i := range recs {
		recs[i].Scores.PopularityScore = PopularityScore(&recs[i].Thread, snap.now)
		recs[i].Source = SourcePopular
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Scores.PopularityScore > recs[j].Scores.PopularityScore
	})
	return truncate(recs, req.Limit)
}

// dislikedTexts returns the similarity text of each disliked thread,
// filling missing snapshots from the thread set.
func (e *Engine) dislikedTexts(disliked []DislikedThread, byID map[string]*Thread) []string {
	texts := make([]string, 0, len(disliked))
	for i := range disliked {
		d := disliked[i]
		if d.Title == "" && d.Category == "" && len(d.Tags) == 0 {
			if t, ok := byID[d.ThreadID]; ok {
				d.Title, d.Category, d.Tags = t.Title, t.Category, t.Tags
			}
		}
		texts = append(texts, d.Text())
	}
	return texts
}

func threadIndex(threads []Thread) map[string]*Thread {
	idx := make(map[string]*Thread, len(threads))
	for i := range threads {
		idx[threads[i].ThreadID] = &threads[i]
	}
	return idx
}

func completedCount(events []ReadEvent) int {
	n := 0
	for i := range events {
		if events[i].Completed {
			n++
		}
	}
	return n
}

// shareOf returns ceil(limit*share).
func shareOf(limit int, share float64) int {
	return int(math.Ceil(float64(limit) * share))
}
