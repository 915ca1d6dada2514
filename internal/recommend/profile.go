// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package recommend

import (
	"math"
	"sort"
	"time"
)

// defaultAvgScrollDepth is reported when no event carries scroll data.
const defaultAvgScrollDepth = 50.0

// Profile summarizes a reader's historical preferences.
type Profile struct {
	PreferredCategories []string `json:"preferred_categories"`
	PreferredTags       []string `json:"preferred_tags"`
	ActiveHours         []int    `json:"active_hours"`
	AvgScrollDepth      float64  `json:"avg_scroll_depth"`
	AvgDwellMs          float64  `json:"avg_dwell_ms"`
	RecentCategories    []string `json:"recent_categories"`
	RecentTags          []string `json:"recent_tags"`

	// EventCount is the number of events the profile was built from.
	EventCount int `json:"event_count"`
}

// BuildProfile aggregates read events into a Profile. Every event is
// weighted by exp(-ageDays/DecayDays); the recent preferences use unweighted
// counts of events inside RecentWindow. Ties keep first-seen order.
func BuildProfile(cfg ProfileConfig, events []ReadEvent, now time.Time, loc *time.Location) Profile {
	p := Profile{AvgScrollDepth: defaultAvgScrollDepth, EventCount: len(events)}
	if len(events) == 0 {
		return p
	}
	if loc == nil {
		loc = time.Local
	}

	categories := newCounter[string]()
	tags := newCounter[string]()
	hours := newCounter[int]()
	recentCategories := newCounter[string]()
	recentTags := newCounter[string]()

	var scrollSum, dwellSum, totalWeight float64
	for i := range events {
		ev := &events[i]
		age := now.Sub(ev.CreatedAt)
		weight := math.Exp(-ageDays(age) / cfg.DecayDays)

		if ev.Category != "" {
			categories.add(ev.Category, weight)
		}
		for _, tag := range ev.Tags {
			tags.add(tag, weight)
		}
		hours.add(ev.CreatedAt.In(loc).Hour(), weight)

		if ev.MaxScrollPct > 0 {
			scrollSum += ev.MaxScrollPct * weight
		}
		if ev.DwellMsEffective > 0 {
			dwellSum += float64(ev.DwellMsEffective) * weight
		}
		totalWeight += weight

		if age <= cfg.RecentWindow {
			if ev.Category != "" {
				recentCategories.add(ev.Category, 1)
			}
			for _, tag := range ev.Tags {
				recentTags.add(tag, 1)
			}
		}
	}

	p.PreferredCategories = categories.top(cfg.TopCategories)
	p.PreferredTags = tags.top(cfg.TopTags)
	p.ActiveHours = hours.top(cfg.TopHours)
	if totalWeight > 0 {
		p.AvgScrollDepth = scrollSum / totalWeight
		p.AvgDwellMs = dwellSum / totalWeight
	}
	p.RecentCategories = recentCategories.top(cfg.RecentTopCategories)
	p.RecentTags = recentTags.top(cfg.RecentTopTags)
	return p
}

func ageDays(d time.Duration) float64 {
	return d.Hours() / 24
}

// counter accumulates weights per key and remembers first-seen order.
type counter[K comparable] struct {
	order  []K
	counts map[K]float64
}

func newCounter[K comparable]() *counter[K] {
	return &counter[K]{counts: make(map[K]float64)}
}

func (c *counter[K]) add(key K, w float64) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key] += w
}

// top returns up to n keys by descending weight.
func (c *counter[K]) top(n int) []K {
	keys := append([]K(nil), c.order...)
	sort.SliceStable(keys, func(i, j int) bool {
		return c.counts[keys[i]] > c.counts[keys[j]]
	})
	if n >= 0 && len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
