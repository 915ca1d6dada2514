// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package recommend

import (
	"math"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// Behavior factor weights.
const (
	behaviorCategoryWeight = 0.35
	behaviorTagWeight      = 0.30
	behaviorRecentWeight   = 0.20
	behaviorHourWeight     = 0.10
	behaviorDepthWeight    = 0.05
)

// BehaviorSimilarity scores how well t matches the reader's profile.
// The result is in [0, 1] and is 0 for a reader without history.
//
//nolint:gocritic // hugeParam: Profile is read-only here
func BehaviorSimilarity(p Profile, t *Thread, loc *time.Location) float64 {
	if p.EventCount == 0 {
		return 0
	}
	if loc == nil {
		loc = time.Local
	}

	score := 0.0
	if t.Category != "" && slices.Contains(p.PreferredCategories, t.Category) {
		score += behaviorCategoryWeight
	}

	if len(t.Tags) > 0 {
		matched := 0
		for _, tag := range t.Tags {
			if slices.Contains(p.PreferredTags, tag) {
				matched++
			}
		}
		score += behaviorTagWeight * float64(matched) / float64(len(t.Tags))
	}

	if t.Category != "" && slices.Contains(p.RecentCategories, t.Category) {
		score += behaviorRecentWeight
	}

	if pt := t.PublishTime(); !pt.IsZero() && slices.Contains(p.ActiveHours, pt.In(loc).Hour()) {
		score += behaviorHourWeight
	}

	if t.ContentLength > 0 {
		estimated := math.Min(100, float64(t.ContentLength)/1000*20)
		match := 1 - math.Abs(p.AvgScrollDepth-estimated)/100
		score += behaviorDepthWeight * math.Max(0, match)
	}

	return math.Min(1, score)
}

// FreshnessScore decays from 1 for threads up to a day old towards 0.
// A zero publish time scores 0.5.
func FreshnessScore(published, now time.Time) float64 {
	if published.IsZero() {
		return 0.5
	}
	days := ageDays(now.Sub(published))
	switch {
	case days <= 1:
		return 1.0
	case days <= 7:
		return 0.8 + 0.2*math.Exp(-days/3)
	case days <= 30:
		return 0.5 + 0.3*math.Exp(-(days-7)/10)
	default:
		return 0.2 * math.Exp(-(days-30)/30)
	}
}

// PopularityScore combines reply, like and view counts with a bonus for
// threads published within the last day. The result is capped at 1.
func PopularityScore(t *Thread, now time.Time) float64 {
	score := 0.0
	if t.ReplyCount > 0 {
		score += 0.4 * math.Min(1, float64(t.ReplyCount)/50)
	}
	if t.LikeCount > 0 {
		score += 0.3 * math.Min(1, float64(t.LikeCount)/20)
	}
	if t.ViewCount > 0 {
		score += 0.2 * math.Min(1, float64(t.ViewCount)/200)
	}
	if pt := t.PublishTime(); !pt.IsZero() {
		hours := now.Sub(pt).Hours()
		if hours <= 24 {
			score += 0.1 * (1 - hours/24)
		}
	}
	return math.Min(1, score)
}

// noHour buckets threads with unknown publish time.
const noHour = -1

// DiversityIndex holds category, tag and hour counts of a candidate batch.
type DiversityIndex struct {
	total      int
	categories map[string]int
	tags       map[string]int
	hours      map[int]int
	loc        *time.Location
}

// NewDiversityIndex counts the distribution of batch.
func NewDiversityIndex(batch []Thread, loc *time.Location) *DiversityIndex {
	if loc == nil {
		loc = time.Local
	}
	idx := &DiversityIndex{
		total:      len(batch),
		categories: make(map[string]int),
		tags:       make(map[string]int),
		hours:      make(map[int]int),
		loc:        loc,
	}
	for i := range batch {
		t := &batch[i]
		if t.Category != "" {
			idx.categories[t.Category]++
		}
		for _, tag := range t.Tags {
			idx.tags[tag]++
		}
		idx.hours[idx.hourOf(t)]++
	}
	return idx
}

func (d *DiversityIndex) hourOf(t *Thread) int {
	pt := t.PublishTime()
	if pt.IsZero() {
		return noHour
	}
	return pt.In(d.loc).Hour()
}

// Bonus returns the average of category, tag and hour rarity of t within
// the batch. Each component is 0.5 when it cannot be computed.
func (d *DiversityIndex) Bonus(t *Thread) float64 {
	category := 0.5
	if t.Category != "" && d.total > 0 {
		category = 1 - float64(d.categories[t.Category])/float64(d.total)
	}

	tag := 0.5
	if len(t.Tags) > 0 {
		rarity := 0.0
		for _, tg := range t.Tags {
			rarity += 1 / (1 + float64(d.tags[tg]))
		}
		tag = rarity / float64(len(t.Tags))
	}

	hour := 0.5
	if d.total > 0 {
		hour = 1 - float64(d.hours[d.hourOf(t)])/float64(d.total)
	}

	return (category + tag + hour) / 3
}

// DiversityBonus is a convenience wrapper for scoring a single thread.
func DiversityBonus(t *Thread, batch []Thread, loc *time.Location) float64 {
	return NewDiversityIndex(batch, loc).Bonus(t)
}

// PreferredTagBonus rewards threads carrying tags the reader asked for.
// Matching is case-insensitive containment in either direction. The bonus
// is 0 without a match and at most 0.5.
func PreferredTagBonus(tags, preferred []string) float64 {
	if len(preferred) == 0 || len(tags) == 0 {
		return 0
	}
	matched := 0
	for _, tag := range tags {
		for _, p := range preferred {
			if LooseTagMatch(tag, p) {
				matched++
				break
			}
		}
	}
	if matched == 0 {
		return 0
	}
	bonus := 0.2
	bonus += 0.3 * float64(matched) / float64(len(tags))
	bonus += math.Min(0.2, 0.2*float64(matched)/float64(len(preferred)))
	return math.Min(0.5, bonus)
}

// DislikePenaltyFromSimilarity maps the highest similarity to a disliked
// thread onto the penalty tiers.
func DislikePenaltyFromSimilarity(sim float64) float64 {
	switch {
	case sim > 0.7:
		return 0.8
	case sim > 0.5:
		return 0.5
	case sim > 0.3:
		return 0.2
	default:
		return 0
	}
}

// SimilarityFunc computes the similarity of two texts.
type SimilarityFunc func(a, b string) float64

// DislikePenalty returns the tiered penalty for the disliked text most
// similar to text.
func DislikePenalty(text string, dislikedTexts []string, sim SimilarityFunc) float64 {
	maxSim := 0.0
	for _, d := range dislikedTexts {
		if s := sim(text, d); s > maxSim {
			maxSim = s
		}
	}
	return DislikePenaltyFromSimilarity(maxSim)
}

// AuthorAffinity is the share of completed reads written by authorID.
func AuthorAffinity(events []ReadEvent, authorID string) float64 {
	if authorID == "" {
		return 0
	}
	completed, byAuthor := 0, 0
	for i := range events {
		if !events[i].Completed {
			continue
		}
		completed++
		if events[i].AuthorID == authorID {
			byAuthor++
		}
	}
	if completed == 0 {
		return 0
	}
	return math.Min(1, float64(byAuthor)/float64(completed))
}

// FinalScore combines the factor scores with w.
//
//nolint:gocritic // hugeParam: small value types
func FinalScore(s Scores, w Weights, affinityWeight float64) float64 {
	return w.Content*s.ContentSimilarity +
		w.Behavior*s.BehaviorSimilarity +
		w.Freshness*s.FreshnessScore +
		w.Popularity*s.PopularityScore +
		w.Diversity*s.DiversityBonus +
		s.PreferredTagBonus -
		s.DislikePenalty +
		affinityWeight*s.AuthorAffinity
}

// ContentSummary extracts the text of an HTML body and keeps the first n
// runes. Script and style contents are skipped; entities are decoded.
func ContentSummary(content string, n int) string {
	if content == "" || n <= 0 {
		return ""
	}

	var b strings.Builder
	runes, skip := 0, 0
	z := html.NewTokenizer(strings.NewReader(content))
	for runes < n {
		switch z.Next() {
		case html.ErrorToken:
			return runePrefix(b.String(), n)
		case html.StartTagToken:
			if name, _ := z.TagName(); isRawTextTag(name) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isRawTextTag(name) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				text := z.Text()
				b.Write(text)
				runes += utf8.RuneCount(text)
			}
		}
	}
	return runePrefix(b.String(), n)
}

func isRawTextTag(name []byte) bool {
	return string(name) == "script" || string(name) == "style"
}

// documentText is the IDF corpus document of a thread.
func documentText(t *Thread, summaryChars int) string {
	text := t.Text()
	if s := ContentSummary(t.Content, summaryChars); s != "" {
		text += " " + s
	}
	return text
}

// historyText concatenates the documents of completed reads found in
// threads, followed by each thread's author name.
func historyText(events []ReadEvent, threads map[string]*Thread, summaryChars int) string {
	parts := make([]string, 0, len(events))
	for i := range events {
		if !events[i].Completed {
			continue
		}
		t, ok := threads[events[i].ThreadID]
		if !ok {
			continue
		}
		text := documentText(t, summaryChars)
		if t.AuthorName != "" {
			text += " " + t.AuthorName
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " ")
}
