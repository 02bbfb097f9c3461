package planning

import (
	"github.com/greenbite/engine/internal/domain/inventory"
)

// ScoreWeights tune how candidate scores reward inventory fit.
type ScoreWeights struct {
	Matched float64
	Ratio   float64
	Missing float64
}

// DefaultWeights are the production scoring weights.
var DefaultWeights = ScoreWeights{Matched: 3, Ratio: 10, Missing: 0.5}

// Scorer scores candidates against an inventory snapshot.
type Scorer struct {
	weights ScoreWeights
}

// NewScorer builds a scorer; zero-valued weights fall back to the defaults.
func NewScorer(weights ScoreWeights) *Scorer {
	if weights == (ScoreWeights{}) {
		weights = DefaultWeights
	}
	return &Scorer{weights: weights}
}

// Score computes the inventory-fit score of a candidate. The valid flag is
// false for candidates with no parseable ingredients, which never receive a
// score.
func (s *Scorer) Score(c *Candidate, snap *inventory.Snapshot) (float64, bool) {
	tokens := c.Tokens()
	if len(tokens) == 0 {
		return 0, false
	}

	inStock := snap.Tokens()
	quantities := snap.QuantityMap()

	matched := 0
	abundance := 0.0
	for _, t := range tokens {
		if _, ok := inStock[t]; !ok {
			continue
		}
		matched++
		switch q := quantities[t]; {
		case q > 1000:
			abundance += 2
		case q > 500:
			abundance += 1
		case q > 200:
			abundance += 0.5
		}
	}

	missing := len(tokens) - matched
	ratio := float64(matched) / float64(len(tokens))

	score := float64(matched)*s.weights.Matched +
		ratio*s.weights.Ratio -
		float64(missing)*s.weights.Missing +
		abundance
	return score, true
}

// urgency adds expiry pressure: candidates using soon-to-expire stock get a
// small boost proportional to the snapshot's expiry weights.
func (s *Scorer) urgency(c *Candidate, snap *inventory.Snapshot) float64 {
	total := 0.0
	for _, t := range c.Tokens() {
		total += snap.ExpiryWeight(t)
	}
	return total / 30
}

// ScoreAll scores every candidate in place, dropping unscorable ones and
// those that end at or below zero.
func (s *Scorer) ScoreAll(candidates []*Candidate, snap *inventory.Snapshot) []*Candidate {
	kept := make([]*Candidate, 0, len(candidates))
	for _, c := range candidates {
		base, ok := s.Score(c, snap)
		if !ok {
			continue
		}
		c.Score = base + s.urgency(c, snap)
		if c.Score <= 0 {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}
