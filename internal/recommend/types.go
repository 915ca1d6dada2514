// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package recommend

import (
	"fmt"
	"strings"
	"time"
)

// Algorithm selects which recommendation strategy serves a request.
type Algorithm int

const (
	// AlgorithmMixed merges the content and tag branches.
	AlgorithmMixed Algorithm = iota
	// AlgorithmContent runs only the multi-factor content branch.
	AlgorithmContent
	// AlgorithmBehavior runs only the tag-frequency branch.
	AlgorithmBehavior
	// AlgorithmPopular re-sorts an oversized mixed list by popularity.
	AlgorithmPopular
)

// String returns the settings name of the algorithm.
func (a Algorithm) String() string {
	switch a {
	case AlgorithmMixed:
		return "mixed"
	case AlgorithmContent:
		return "content"
	case AlgorithmBehavior:
		return "behavior"
	case AlgorithmPopular:
		return "popular"
	default:
		return "unknown"
	}
}

// ParseAlgorithm converts a settings value to an Algorithm.
// The empty string maps to AlgorithmMixed.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mixed":
		return AlgorithmMixed, nil
	case "content":
		return AlgorithmContent, nil
	case "behavior":
		return AlgorithmBehavior, nil
	case "popular":
		return AlgorithmPopular, nil
	default:
		return AlgorithmMixed, fmt.Errorf("%w: %q", ErrInvalidAlgorithm, s)
	}
}

// Source records which branch produced a recommendation.
type Source string

const (
	SourceContent  Source = "content"
	SourceTags     Source = "tags"
	SourceFallback Source = "fallback"
	SourcePopular  Source = "popular"
)

// ForumAll disables the forum filter.
const ForumAll = "all"

// Thread is a forum discussion thread as ingested by the collector.
type Thread struct {
	// ThreadID is namespaced as "<forum>:<id>".
	ThreadID string `json:"thread_id" validate:"required,thread_id"`

	// ForumID identifies the source forum.
	ForumID string `json:"forum_id" validate:"required"`

	URL   string `json:"url,omitempty" validate:"omitempty,url"`
	Title string `json:"title" validate:"max=1000"`

	// Category may be empty.
	Category string   `json:"category,omitempty"`
	Tags     []string `json:"tags,omitempty" validate:"max=64,dive,max=128"`

	// Content is the raw (possibly HTML) body. Only a short stripped prefix
	// feeds the reading-history text.
	Content string `json:"content,omitempty"`

	AuthorID   string `json:"author_id,omitempty"`
	AuthorName string `json:"author_name,omitempty"`

	// PublishedAt is zero when the forum did not expose it.
	PublishedAt time.Time `json:"published_at,omitempty"`

	// CreatedAt is the ingestion time, used when PublishedAt is missing.
	CreatedAt time.Time `json:"created_at,omitempty"`

	ReplyCount    int `json:"reply_count" validate:"min=0"`
	LikeCount     int `json:"like_count" validate:"min=0"`
	ViewCount     int `json:"view_count" validate:"min=0"`
	ContentLength int `json:"content_length" validate:"min=0"`
}

// PublishTime returns PublishedAt, falling back to CreatedAt.
// The result is zero when neither is known.
//
//nolint:gocritic // hugeParam: Thread is passed by value throughout the scorer
func (t Thread) PublishTime() time.Time {
	if !t.PublishedAt.IsZero() {
		return t.PublishedAt
	}
	return t.CreatedAt
}

// Text returns the "title category tags" string used for similarity.
//
//nolint:gocritic // hugeParam: see PublishTime
func (t Thread) Text() string {
	return joinText(t.Title, t.Category, t.Tags)
}

// ReadEvent is a finalized reading session for one thread.
type ReadEvent struct {
	ThreadID  string `json:"thread_id" validate:"required,thread_id"`
	SessionID string `json:"session_id,omitempty"`

	// Completed is true when the reader finished the thread.
	Completed bool `json:"completed"`

	// DwellMsEffective is the active reading time in milliseconds.
	DwellMsEffective int64 `json:"dwell_ms_effective" validate:"min=0"`

	// MaxScrollPct is the deepest scroll position reached, 0-100.
	MaxScrollPct float64 `json:"max_scroll_pct" validate:"gte=0,lte=100"`

	CreatedAt time.Time `json:"created_at"`

	// Category, Tags and AuthorID are snapshotted at read time.
	Category string   `json:"category,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	AuthorID string   `json:"author_id,omitempty"`
}

// DislikedThread marks a thread the reader never wants recommended.
type DislikedThread struct {
	ThreadID  string    `json:"thread_id"`
	CreatedAt time.Time `json:"created_at"`
	Reason    string    `json:"reason,omitempty"`

	// Title, Category and Tags are optional snapshots. The engine fills
	// missing values from the thread set before computing penalties.
	Title    string   `json:"title,omitempty"`
	Category string   `json:"category,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// Text returns the similarity text of the disliked thread.
func (d *DislikedThread) Text() string {
	return joinText(d.Title, d.Category, d.Tags)
}

// Settings are the reader's persisted recommendation preferences.
type Settings struct {
	DislikedTags  []string `json:"disliked_tags"`
	PreferredTags []string `json:"preferred_tags"`

	// RecommendationCount overrides the request limit when positive.
	RecommendationCount int `json:"recommendation_count"`

	// Algorithm is one of content, behavior, mixed, popular.
	Algorithm string `json:"algorithm"`
}

// EffectiveLimit returns RecommendationCount when positive, else requested.
//
//nolint:gocritic // hugeParam: read-only accessor
func (s Settings) EffectiveLimit(requested int) int {
	if s.RecommendationCount > 0 {
		return s.RecommendationCount
	}
	return requested
}

// Scores is the per-factor breakdown of a candidate's final score.
type Scores struct {
	ContentSimilarity  float64 `json:"content_similarity"`
	BehaviorSimilarity float64 `json:"behavior_similarity"`
	FreshnessScore     float64 `json:"freshness_score"`
	PopularityScore    float64 `json:"popularity_score"`
	DiversityBonus     float64 `json:"diversity_bonus"`
	PreferredTagBonus  float64 `json:"preferred_tag_bonus"`
	DislikePenalty     float64 `json:"dislike_penalty"`
	AuthorAffinity     float64 `json:"author_affinity"`
}

// ScoredCandidate is a thread together with its score breakdown.
type ScoredCandidate struct {
	Thread

	Scores     Scores  `json:"scores"`
	FinalScore float64 `json:"final_score"`

	// Weights is the adaptive weight tier used for this candidate.
	Weights Weights `json:"weights"`

	Source Source `json:"source"`
}

// Request describes one recommendation call.
type Request struct {
	// Limit is the maximum number of results. Settings may override it.
	Limit int

	// Forum restricts candidates to one forum. Empty means ForumAll.
	Forum string

	// ForceRefresh ignores the clicked set and shuffles the lower half.
	ForceRefresh bool

	// Algorithm overrides the settings algorithm when non-empty.
	Algorithm string

	// RequestID is propagated into log lines.
	RequestID string
}

// CacheStats reports similarity cache occupancy.
type CacheStats struct {
	Size     int   `json:"size"`
	Capacity int   `json:"capacity"`
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
}

// Stats summarizes the reader's corpus and history.
type Stats struct {
	TotalThreads               int     `json:"total_threads"`
	ReadThreads                int     `json:"read_threads"`
	ReadEvents                 int     `json:"read_events"`
	CompletedReads             int     `json:"completed_reads"`
	DislikedThreads            int     `json:"disliked_threads"`
	AvailableForRecommendation int     `json:"available_for_recommendation"`
	CompletionRate             float64 `json:"completion_rate"`
	AvgDwellMs                 float64 `json:"avg_dwell_ms"`
	AvgScrollDepth             float64 `json:"avg_scroll_depth"`
	CacheSize                  int     `json:"cache_size"`
}

// joinText concatenates title, category and tags with single spaces,
// matching the layout the reading-history text uses.
func joinText(title, category string, tags []string) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteByte(' ')
	b.WriteString(category)
	b.WriteByte(' ')
	b.WriteString(strings.Join(tags, " "))
	return b.String()
}
