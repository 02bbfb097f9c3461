// Package planning implements candidate scoring, diversity ranking and the
// greedy assembly of scored candidates into a plan's day-by-slot grid.
package planning

import (
	"sort"
	"strings"

	"github.com/greenbite/engine/internal/domain/ingredient"
	"github.com/greenbite/engine/internal/domain/mealplan"
)

// Candidate is a recipe under consideration for a plan slot. The metadata
// fields (external id, cuisine, category, thumbnail, calories, servings)
// are carried through from the source untouched.
type Candidate struct {
	Title        string
	Ingredients  []string
	Instructions string
	ExternalID   string
	Cuisine      string
	Category     string
	Thumbnail    string
	Calories     *int
	Servings     *int
	Source       mealplan.CandidateSource
	Score        float64

	tokens []string
}

// Tokens returns the normalized ingredient tokens of the candidate,
// computed once.
func (c *Candidate) Tokens() []string {
	if c.tokens == nil {
		seen := make(map[string]struct{}, len(c.Ingredients))
		tokens := make([]string, 0, len(c.Ingredients))
		for _, ing := range c.Ingredients {
			t := ingredient.Normalize(ing)
			if t == "" {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			tokens = append(tokens, t)
		}
		if tokens == nil {
			tokens = []string{}
		}
		c.tokens = tokens
	}
	return c.tokens
}

// Draft converts the candidate into the slot-level draft snapshot.
func (c *Candidate) Draft() mealplan.RecipeDraft {
	return mealplan.RecipeDraft{
		Title:        c.Title,
		Ingredients:  c.Ingredients,
		Instructions: c.Instructions,
		Cuisine:      c.Cuisine,
		Calories:     c.Calories,
		Servings:     c.Servings,
		Photo:        c.Thumbnail,
		ExternalID:   c.ExternalID,
		Score:        c.Score,
		Source:       c.Source,
	}
}

// dedupeKey identifies a candidate for duplicate collapsing: lowercase
// title plus source. Same-titled recipes from different sources survive.
func (c *Candidate) dedupeKey() string {
	return strings.ToLower(strings.TrimSpace(c.Title)) + "|" + string(c.Source)
}

// Dedupe collapses duplicate candidates, keeping the higher-scored one per
// key, and returns the survivors sorted by descending score.
func Dedupe(candidates []*Candidate) []*Candidate {
	best := make(map[string]*Candidate, len(candidates))
	order := make([]string, 0, len(candidates))
	for _, c := range candidates {
		key := c.dedupeKey()
		cur, ok := best[key]
		if !ok {
			best[key] = c
			order = append(order, key)
			continue
		}
		if c.Score > cur.Score {
			best[key] = c
		}
	}

	out := make([]*Candidate, 0, len(best))
	for _, key := range order {
		out = append(out, best[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}
