// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package recommend

import (
	"strings"
	"unicode/utf8"
)

// TagMatcher decides whether a thread tag matches a configured tag.
type TagMatcher func(tag, configured string) bool

// ExactTagMatch compares tags after lowercasing and trimming.
func ExactTagMatch(tag, configured string) bool {
	return normalizeTag(tag) == normalizeTag(configured)
}

// StrictTagMatcher matches exactly, or by containment in either direction
// when the contained string has at least minLen runes.
func StrictTagMatcher(minLen int) TagMatcher {
	return func(tag, configured string) bool {
		t := normalizeTag(tag)
		c := normalizeTag(configured)
		if t == c {
			return true
		}
		if utf8.RuneCountInString(c) >= minLen && strings.Contains(t, c) {
			return true
		}
		return utf8.RuneCountInString(t) >= minLen && strings.Contains(c, t)
	}
}

// LooseTagMatch matches by case-insensitive containment in either direction.
// An empty string on either side matches everything.
func LooseTagMatch(tag, configured string) bool {
	t := strings.ToLower(tag)
	c := strings.ToLower(configured)
	return strings.Contains(t, c) || strings.Contains(c, t)
}

// HasMatchingTag reports whether any of tags matches any of configured.
func HasMatchingTag(tags, configured []string, match TagMatcher) bool {
	if len(tags) == 0 || len(configured) == 0 {
		return false
	}
	for _, tag := range tags {
		for _, c := range configured {
			if match(tag, c) {
				return true
			}
		}
	}
	return false
}

func normalizeTag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// idSet is a set of thread ids.
type idSet map[string]struct{}

func (s idSet) has(id string) bool {
	_, ok := s[id]
	return ok
}

func newIDSet(ids []string) idSet {
	s := make(idSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func readIDs(events []ReadEvent) idSet {
	s := make(idSet, len(events))
	for i := range events {
		s[events[i].ThreadID] = struct{}{}
	}
	return s
}

func dislikedIDs(disliked []DislikedThread) idSet {
	s := make(idSet, len(disliked))
	for i := range disliked {
		s[disliked[i].ThreadID] = struct{}{}
	}
	return s
}
