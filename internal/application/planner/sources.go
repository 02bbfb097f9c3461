// Package planner implements the meal planning engine: candidate sourcing,
// plan generation, day confirmation with inventory deduction, slot
// replacement and async job handling.
package planner

import (
	"context"

	"go.uber.org/zap"

	"github.com/greenbite/engine/internal/domain/inventory"
	"github.com/greenbite/engine/internal/domain/mealplan"
	"github.com/greenbite/engine/internal/domain/planning"
)

const (
	// catalogRowCap bounds the any-token catalog query.
	catalogRowCap = 600
	// generatedCount is how many recipes the generation service is asked for.
	generatedCount = 10
)

// collectCandidates gathers candidates from the catalog and, when enabled,
// the generation service, scores them against the snapshot and returns the
// deduplicated survivors sorted by descending score. The generation source
// only tops up: it is queried when the catalog leaves fewer candidates
// than needed.
//
// Source failures degrade rather than abort: a generation failure falls
// back to catalog-only, and vice versa. Only when both sources fail does an
// error reach the caller.
func (s *Service) collectCandidates(ctx context.Context, snap *inventory.Snapshot, allowGenerated bool, needed int) ([]*planning.Candidate, error) {
	var (
		candidates []*planning.Candidate
		genErr     error
	)

	fromCatalog, catalogErr := s.catalogCandidates(ctx, snap)
	if catalogErr != nil {
		s.logger.Warn("catalog source failed, continuing without it", zap.Error(catalogErr))
	} else {
		candidates = append(candidates, fromCatalog...)
	}

	topUp := needed - len(candidates)
	if allowGenerated && topUp > 0 {
		if topUp > generatedCount {
			topUp = generatedCount
		}
		fromAI, err := s.generatedCandidates(ctx, snap, topUp)
		if err != nil {
			genErr = err
			s.logger.Warn("generation source failed, continuing without it", zap.Error(err))
		} else {
			candidates = append(candidates, fromAI...)
		}
	}

	if catalogErr != nil && (genErr != nil || !allowGenerated) {
		return nil, catalogErr
	}

	scored := s.scorer.ScoreAll(candidates, snap)
	return planning.Dedupe(scored), nil
}

func (s *Service) catalogCandidates(ctx context.Context, snap *inventory.Snapshot) ([]*planning.Candidate, error) {
	tokens := make([]string, 0, len(snap.Tokens()))
	for t := range snap.Tokens() {
		tokens = append(tokens, t)
	}
	if len(tokens) == 0 {
		return nil, nil
	}

	rows, err := s.catalog.FindByTokens(ctx, tokens, catalogRowCap)
	if err != nil {
		return nil, err
	}

	out := make([]*planning.Candidate, 0, len(rows))
	for _, r := range rows {
		out = append(out, &planning.Candidate{
			Title:        r.Title,
			Ingredients:  r.Ingredients,
			Instructions: r.Instructions,
			ExternalID:   r.ID.String(),
			Cuisine:      r.Cuisine,
			Category:     r.Category,
			Thumbnail:    r.Thumbnail,
			Source:       mealplan.SourceCatalog,
		})
	}
	return out, nil
}

func (s *Service) generatedCandidates(ctx context.Context, snap *inventory.Snapshot, count int) ([]*planning.Candidate, error) {
	names := make([]string, 0, len(snap.Lots()))
	for _, l := range snap.Lots() {
		names = append(names, l.Name)
	}

	recipes, err := s.generator.GenerateRecipes(ctx, names, count)
	if err != nil {
		return nil, err
	}

	out := make([]*planning.Candidate, 0, len(recipes))
	for _, r := range recipes {
		if r.Title == "" || len(r.Ingredients) == 0 {
			continue
		}
		out = append(out, &planning.Candidate{
			Title:        r.Title,
			Ingredients:  r.Ingredients,
			Instructions: r.Instructions,
			Cuisine:      r.Cuisine,
			Source:       mealplan.SourceGenerated,
		})
	}
	return out, nil
}
