// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package recommend

import (
	"math"
	"reflect"
	"testing"
	"time"
)

const eps = 1e-9

func TestBuildProfile_Empty(t *testing.T) {
	t.Parallel()

	p := BuildProfile(DefaultConfig().Profile, nil, testNow, time.UTC)
	if p.AvgScrollDepth != 50 {
		t.Errorf("AvgScrollDepth = %f, want 50", p.AvgScrollDepth)
	}
	if p.EventCount != 0 || len(p.PreferredTags) != 0 || len(p.ActiveHours) != 0 {
		t.Errorf("BuildProfile(nil) = %+v, want zero profile", p)
	}
}

func TestBuildProfile_DecayAndRecent(t *testing.T) {
	t.Parallel()

	events := []ReadEvent{
		// Old events dominate by count but decay away.
		{ThreadID: "a", Category: "old", Tags: []string{"legacy"}, CreatedAt: testNow.Add(-60 * 24 * time.Hour), MaxScrollPct: 100},
		{ThreadID: "b", Category: "old", Tags: []string{"legacy"}, CreatedAt: testNow.Add(-60 * 24 * time.Hour), MaxScrollPct: 100},
		{ThreadID: "c", Category: "old", Tags: []string{"legacy"}, CreatedAt: testNow.Add(-60 * 24 * time.Hour), MaxScrollPct: 100},
		{ThreadID: "d", Category: "dev", Tags: []string{"go", "k8s"}, CreatedAt: testNow.Add(-time.Hour), MaxScrollPct: 40, DwellMsEffective: 1000},
		{ThreadID: "e", Category: "dev", Tags: []string{"go"}, CreatedAt: testNow.Add(-2 * time.Hour), MaxScrollPct: 60, DwellMsEffective: 3000},
	}
	p := BuildProfile(DefaultConfig().Profile, events, testNow, time.UTC)

	// dev: ~2 * 1.0, old: 3 * exp(-2) ~ 0.41
	if !reflect.DeepEqual(p.PreferredCategories, []string{"dev", "old"}) {
		t.Errorf("PreferredCategories = %v, want [dev old]", p.PreferredCategories)
	}
	if !reflect.DeepEqual(p.PreferredTags[:2], []string{"go", "k8s"}) {
		t.Errorf("PreferredTags = %v, want go then k8s first", p.PreferredTags)
	}
	if !reflect.DeepEqual(p.RecentCategories, []string{"dev"}) {
		t.Errorf("RecentCategories = %v, want [dev]", p.RecentCategories)
	}
	if !reflect.DeepEqual(p.RecentTags, []string{"go", "k8s"}) {
		t.Errorf("RecentTags = %v, want [go k8s]", p.RecentTags)
	}
	if got := p.ActiveHours[0]; got != 11 {
		t.Errorf("ActiveHours[0] = %d, want 11", got)
	}

	var wsum, scroll float64
	for _, ev := range events {
		w := math.Exp(-ageDays(testNow.Sub(ev.CreatedAt)) / 30)
		wsum += w
		scroll += w * ev.MaxScrollPct
	}
	if math.Abs(p.AvgScrollDepth-scroll/wsum) > eps {
		t.Errorf("AvgScrollDepth = %f, want %f", p.AvgScrollDepth, scroll/wsum)
	}
	if p.AvgDwellMs <= 0 {
		t.Errorf("AvgDwellMs = %f, want > 0", p.AvgDwellMs)
	}
}

func TestBuildProfile_TopLimitsAndTies(t *testing.T) {
	t.Parallel()

	var events []ReadEvent
	for _, tag := range []string{"t1", "t2", "t3", "t4", "t5", "t6", "t7", "t8", "t9", "t10", "t11", "t12"} {
		events = append(events, ReadEvent{Tags: []string{tag}, CreatedAt: testNow})
	}
	p := BuildProfile(DefaultConfig().Profile, events, testNow, time.UTC)
	if len(p.PreferredTags) != 10 {
		t.Fatalf("len(PreferredTags) = %d, want 10", len(p.PreferredTags))
	}
	if p.PreferredTags[0] != "t1" || p.PreferredTags[9] != "t10" {
		t.Errorf("ties should keep first-seen order, got %v", p.PreferredTags)
	}
	if len(p.RecentTags) != 5 {
		t.Errorf("len(RecentTags) = %d, want 5", len(p.RecentTags))
	}
}

func TestBehaviorSimilarity(t *testing.T) {
	t.Parallel()

	p := Profile{
		EventCount:          3,
		PreferredCategories: []string{"dev"},
		PreferredTags:       []string{"go", "rust"},
		RecentCategories:    []string{"dev"},
		ActiveHours:         []int{9},
		AvgScrollDepth:      50,
	}
	at9 := time.Date(2026, 6, 15, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		thread Thread
		want   float64
	}{
		{
			name:   "full match",
			thread: Thread{Category: "dev", Tags: []string{"go", "rust"}, PublishedAt: at9, ContentLength: 2500},
			want:   0.35 + 0.30 + 0.20 + 0.10 + 0.05,
		},
		{
			name:   "half tags",
			thread: Thread{Tags: []string{"go", "java"}},
			want:   0.15,
		},
		{
			name:   "depth mismatch",
			thread: Thread{ContentLength: 10000},
			want:   0.05 * 0.5,
		},
		{
			name:   "nothing",
			thread: Thread{Category: "ops"},
			want:   0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BehaviorSimilarity(p, &tt.thread, time.UTC); math.Abs(got-tt.want) > eps {
				t.Errorf("BehaviorSimilarity() = %f, want %f", got, tt.want)
			}
		})
	}

	empty := Profile{AvgScrollDepth: 50}
	full := tests[0].thread
	if got := BehaviorSimilarity(empty, &full, time.UTC); got != 0 {
		t.Errorf("BehaviorSimilarity(no events) = %f, want 0", got)
	}
}

func TestFreshnessScore(t *testing.T) {
	t.Parallel()

	if got := FreshnessScore(time.Time{}, testNow); got != 0.5 {
		t.Errorf("FreshnessScore(zero) = %f, want 0.5", got)
	}
	if got := FreshnessScore(testNow.Add(-2*time.Hour), testNow); got != 1 {
		t.Errorf("FreshnessScore(2h) = %f, want 1", got)
	}

	prev := math.Inf(1)
	for h := 0; h <= 24*90; h++ {
		got := FreshnessScore(testNow.Add(-time.Duration(h)*time.Hour), testNow)
		if got > prev+eps {
			t.Fatalf("FreshnessScore increased at %dh: %f > %f", h, got, prev)
		}
		if got < 0 || got > 1 {
			t.Fatalf("FreshnessScore(%dh) = %f outside [0,1]", h, got)
		}
		prev = got
	}
}

func TestPopularityScore(t *testing.T) {
	t.Parallel()

	t.Run("two hours old without engagement", func(t *testing.T) {
		th := Thread{PublishedAt: testNow.Add(-2 * time.Hour)}
		want := 0.1 * (1 - 2.0/24)
		if got := PopularityScore(&th, testNow); math.Abs(got-want) > eps {
			t.Errorf("PopularityScore() = %f, want %f", got, want)
		}
	})

	t.Run("saturated counts cap at one", func(t *testing.T) {
		th := Thread{ReplyCount: 500, LikeCount: 500, ViewCount: 5000, PublishedAt: testNow}
		if got := PopularityScore(&th, testNow); got != 1 {
			t.Errorf("PopularityScore() = %f, want 1", got)
		}
	})

	t.Run("old thread", func(t *testing.T) {
		th := Thread{ReplyCount: 25, LikeCount: 10, ViewCount: 100, PublishedAt: testNow.Add(-48 * time.Hour)}
		want := 0.4*0.5 + 0.3*0.5 + 0.2*0.5
		if got := PopularityScore(&th, testNow); math.Abs(got-want) > eps {
			t.Errorf("PopularityScore() = %f, want %f", got, want)
		}
	})
}

func TestDiversityBonus(t *testing.T) {
	t.Parallel()

	at := func(h int) time.Time { return time.Date(2026, 6, 15, h, 0, 0, 0, time.UTC) }
	batch := []Thread{
		{ThreadID: "1", Category: "dev", Tags: []string{"go"}, PublishedAt: at(9)},
		{ThreadID: "2", Category: "dev", Tags: []string{"go"}, PublishedAt: at(9)},
		{ThreadID: "3", Category: "life", Tags: []string{"food"}, PublishedAt: at(20)},
		{ThreadID: "4", Category: "dev", Tags: []string{"rust"}, PublishedAt: at(20)},
	}

	got := DiversityBonus(&batch[2], batch, time.UTC)
	want := ((1 - 1.0/4) + 1.0/2 + (1 - 2.0/4)) / 3
	if math.Abs(got-want) > eps {
		t.Errorf("DiversityBonus(life) = %f, want %f", got, want)
	}

	bare := Thread{PublishedAt: at(3)}
	if got := DiversityBonus(&bare, nil, time.UTC); got != 0.5 {
		t.Errorf("DiversityBonus(empty batch) = %f, want 0.5", got)
	}
}

func TestPreferredTagBonus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		tags      []string
		preferred []string
		want      float64
	}{
		{"no preferred", []string{"go"}, nil, 0},
		{"no tags", nil, []string{"go"}, 0},
		{"no match", []string{"java"}, []string{"go"}, 0},
		{"single full match", []string{"golang"}, []string{"go"}, 0.5},
		{"partial", []string{"go", "java", "c", "d"}, []string{"go", "rust", "zig", "py", "js"}, 0.2 + 0.3*0.25 + 0.2*0.2},
	}
	for _, tt := range tests {
		if got := PreferredTagBonus(tt.tags, tt.preferred); math.Abs(got-tt.want) > eps {
			t.Errorf("%s: PreferredTagBonus() = %f, want %f", tt.name, got, tt.want)
		}
	}
}

func TestDislikePenaltyFromSimilarity(t *testing.T) {
	t.Parallel()

	tests := []struct{ sim, want float64 }{
		{0.75, 0.8},
		{0.55, 0.5},
		{0.35, 0.2},
		{0.10, 0},
		{0.7, 0.5},
		{0.3, 0},
	}
	for _, tt := range tests {
		if got := DislikePenaltyFromSimilarity(tt.sim); got != tt.want {
			t.Errorf("DislikePenaltyFromSimilarity(%f) = %f, want %f", tt.sim, got, tt.want)
		}
	}
}

func TestDislikePenalty(t *testing.T) {
	t.Parallel()

	sim := func(a, b string) float64 { return Similarity(a, b, nil) }
	text := "bitcoin price crypto"
	if got := DislikePenalty(text, []string{"bitcoin price crypto"}, sim); got != 0.8 {
		t.Errorf("identical disliked text penalty = %f, want 0.8", got)
	}
	if got := DislikePenalty(text, []string{"sourdough baking"}, sim); got != 0 {
		t.Errorf("unrelated disliked text penalty = %f, want 0", got)
	}
	if got := DislikePenalty(text, nil, sim); got != 0 {
		t.Errorf("no disliked threads penalty = %f, want 0", got)
	}
}

func TestAuthorAffinity(t *testing.T) {
	t.Parallel()

	events := []ReadEvent{
		{AuthorID: "alice", Completed: true},
		{AuthorID: "alice", Completed: true},
		{AuthorID: "bob", Completed: true},
		{AuthorID: "alice", Completed: false},
	}
	if got := AuthorAffinity(events, "alice"); math.Abs(got-2.0/3) > eps {
		t.Errorf("AuthorAffinity(alice) = %f, want 2/3", got)
	}
	if got := AuthorAffinity(events, ""); got != 0 {
		t.Errorf("AuthorAffinity(\"\") = %f, want 0", got)
	}
	if got := AuthorAffinity(nil, "alice"); got != 0 {
		t.Errorf("AuthorAffinity(nil) = %f, want 0", got)
	}
}

func TestFinalScore(t *testing.T) {
	t.Parallel()

	s := Scores{
		ContentSimilarity:  1,
		BehaviorSimilarity: 1,
		FreshnessScore:     1,
		PopularityScore:    1,
		DiversityBonus:     1,
		PreferredTagBonus:  0.3,
		DislikePenalty:     0.5,
		AuthorAffinity:     1,
	}
	w := DefaultWeightTiers()[0].Weights
	if got := FinalScore(s, w, 0); math.Abs(got-0.8) > eps {
		t.Errorf("FinalScore() = %f, want 0.8", got)
	}
	if got := FinalScore(s, w, 0.1); math.Abs(got-0.9) > eps {
		t.Errorf("FinalScore(affinity) = %f, want 0.9", got)
	}
}

func TestContentSummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		n       int
		want    string
	}{
		{"nested tags", "<p>Hello <b>world</b></p>", 200, "Hello world"},
		{"cjk prefix", "<i>你好世界</i>", 2, "你好"},
		{"empty", "", 10, ""},
		{"plain text", "no markup here", 7, "no mark"},
		{"entities decoded", "<p>Tom &amp; Jerry</p>", 200, "Tom & Jerry"},
		{"script and style skipped", "<style>p{color:red}</style><p>visible</p><script>alert(1)</script>", 200, "visible"},
		{"quoted angle bracket in attribute", `<a title="a>b">link</a>`, 200, "link"},
		{"zero limit", "<p>text</p>", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ContentSummary(tt.content, tt.n); got != tt.want {
				t.Errorf("ContentSummary(%q, %d) = %q, want %q", tt.content, tt.n, got, tt.want)
			}
		})
	}
}
