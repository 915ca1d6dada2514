// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package recommend

import (
	"math"
	"strings"
)

// Vector is a sparse term-weight vector.
type Vector map[string]float64

// TermFrequency returns count/total for every distinct token.
func TermFrequency(tokens []string) Vector {
	if len(tokens) == 0 {
		return Vector{}
	}
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}
	total := float64(len(tokens))
	tf := make(Vector, len(counts))
	for tok, c := range counts {
		tf[tok] = float64(c) / total
	}
	return tf
}

// Corpus is a set of reference documents used for document frequency.
// Documents are lowercased once at construction.
type Corpus struct {
	docs []string
}

// NewCorpus builds a corpus from raw document texts.
func NewCorpus(docs []string) *Corpus {
	lowered := make([]string, len(docs))
	for i, d := range docs {
		lowered[i] = strings.ToLower(d)
	}
	return &Corpus{docs: lowered}
}

// Len returns the number of documents.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.docs)
}

// DocumentFrequency counts documents containing term as a substring.
func (c *Corpus) DocumentFrequency(term string) int {
	if c == nil {
		return 0
	}
	term = strings.ToLower(term)
	n := 0
	for _, d := range c.docs {
		if d != "" && strings.Contains(d, term) {
			n++
		}
	}
	return n
}

// IDF returns ln(N/df). An empty corpus yields 1 and an unseen term 0.
func (c *Corpus) IDF(term string) float64 {
	n := c.Len()
	if n == 0 {
		return 1
	}
	df := c.DocumentFrequency(term)
	if df == 0 {
		return 0
	}
	return math.Log(float64(n) / float64(df))
}

// TFIDF weights the term frequencies of tokens by the corpus IDF.
func (c *Corpus) TFIDF(tokens []string) Vector {
	tf := TermFrequency(tokens)
	for term, f := range tf {
		tf[term] = f * c.IDF(term)
	}
	return tf
}

// CosineSimilarity returns the cosine of the angle between a and b,
// or 0 when either vector has zero norm.
func CosineSimilarity(a, b Vector) float64 {
	var dot, normA, normB float64
	for term, va := range a {
		normA += va * va
		if vb, ok := b[term]; ok {
			dot += va * vb
		}
	}
	for _, vb := range b {
		normB += vb * vb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Rounding can push identical vectors fractionally past 1.
	if sim > 1 {
		return 1
	}
	if sim < 0 {
		return 0
	}
	return sim
}

// Similarity computes TF-IDF cosine similarity of two texts without caching.
// Empty text on either side, or text that tokenizes to nothing, yields 0.
func Similarity(a, b string, corpus *Corpus) float64 {
	if a == "" || b == "" {
		return 0
	}
	ta := Tokenize(a)
	tb := Tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	return CosineSimilarity(corpus.TFIDF(ta), corpus.TFIDF(tb))
}

// Similarity returns the memoized TF-IDF similarity of a and b.
func (c *SimilarityCache) Similarity(a, b string, corpus *Corpus) float64 {
	if a == "" || b == "" {
		return 0
	}
	key := pairKey(a, b)
	if v, ok := c.Get(key); ok {
		return v
	}
	v := Similarity(a, b, corpus)
	c.Put(key, v)
	return v
}
