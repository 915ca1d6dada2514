// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package recommend

// DiversityWeight is the fixed weight of the diversity bonus in every tier.
const DiversityWeight = 0.05

// Weights are the per-factor multipliers of the final score.
type Weights struct {
	Content    float64 `json:"content"`
	Behavior   float64 `json:"behavior"`
	Freshness  float64 `json:"freshness"`
	Popularity float64 `json:"popularity"`
	Diversity  float64 `json:"diversity"`
}

// Sum returns the total of all five weights.
func (w Weights) Sum() float64 {
	return w.Content + w.Behavior + w.Freshness + w.Popularity + w.Diversity
}

// WeightTier applies Weights to readers with fewer than MaxCompleted
// completed reads. MaxCompleted <= 0 marks the catch-all tier.
type WeightTier struct {
	MaxCompleted int     `json:"max_completed"`
	Weights      Weights `json:"weights"`
}

// DefaultWeightTiers returns the reference tiers. New readers lean on
// freshness and popularity; established readers on content and behavior.
func DefaultWeightTiers() []WeightTier {
	return []WeightTier{
		{MaxCompleted: 5, Weights: Weights{Content: 0.30, Behavior: 0.15, Freshness: 0.25, Popularity: 0.25, Diversity: DiversityWeight}},
		{MaxCompleted: 20, Weights: Weights{Content: 0.35, Behavior: 0.25, Freshness: 0.20, Popularity: 0.15, Diversity: DiversityWeight}},
		{MaxCompleted: 0, Weights: Weights{Content: 0.45, Behavior: 0.35, Freshness: 0.10, Popularity: 0.05, Diversity: DiversityWeight}},
	}
}

// SelectWeights returns the weights of the first tier matching completed.
// If no tier matches, the last tier is used.
func SelectWeights(tiers []WeightTier, completed int) Weights {
	for _, tier := range tiers {
		if tier.MaxCompleted <= 0 || completed < tier.MaxCompleted {
			return tier.Weights
		}
	}
	if len(tiers) == 0 {
		return DefaultWeightTiers()[0].Weights
	}
	return tiers[len(tiers)-1].Weights
}
