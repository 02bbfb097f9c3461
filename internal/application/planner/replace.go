package planner

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/greenbite/engine/pkg/errors"

	"github.com/greenbite/engine/internal/domain/inventory"
	"github.com/greenbite/engine/internal/domain/mealplan"
	"github.com/greenbite/engine/internal/domain/planning"
)

// ReplaceSlot swaps a slot's recipe for the highest-scored fresh candidate
// whose title differs from the current one. The slot's first draft is kept
// as the original across any number of replacements. Confirmed days reject
// replacement. allowGenerated lets the generation service top up the
// candidate pool when the catalog has no distinct alternative.
func (s *Service) ReplaceSlot(ctx context.Context, userID, slotID uuid.UUID, allowGenerated bool) (*mealplan.PlanSlot, error) {
	plan, err := s.plans.FindBySlot(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if plan == nil || plan.UserID != userID {
		return nil, apperrors.NewSlotNotFoundError(slotID.String())
	}
	day, slot, ok := locateSlot(plan, slotID)
	if !ok {
		return nil, apperrors.NewSlotNotFoundError(slotID.String())
	}
	if day.Confirmed {
		return nil, apperrors.NewDayConfirmedError(day.ID.String())
	}

	lots, err := s.lots.ActiveByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("load lots", err)
	}
	snap := inventory.NewSnapshot(lots, s.now())

	// The current recipe plus one distinct alternative.
	candidates, err := s.collectCandidates(ctx, snap, allowGenerated, 2)
	if err != nil {
		return nil, apperrors.NewUpstreamError("candidate sources", err)
	}

	alternative := pickAlternative(candidates, slot.Draft.Title)
	if alternative == nil {
		return nil, apperrors.NewNoAlternativeError(slotID.String())
	}

	slot.ApplyReplacement(alternative.Draft())
	if err := s.plans.UpdateSlot(ctx, slot); err != nil {
		return nil, apperrors.NewDatabaseError("update slot", err)
	}

	s.logger.Info("slot replaced",
		zap.String("slot_id", slotID.String()),
		zap.String("title", alternative.Title),
		zap.Float64("score", alternative.Score))
	return slot, nil
}

// pickAlternative returns the best-scored candidate whose title is not a
// case-insensitive match of the current one.
func pickAlternative(candidates []*planning.Candidate, currentTitle string) *planning.Candidate {
	current := strings.ToLower(strings.TrimSpace(currentTitle))
	var best *planning.Candidate
	for _, c := range candidates {
		if strings.ToLower(strings.TrimSpace(c.Title)) == current {
			continue
		}
		if best == nil || c.Score > best.Score {
			best = c
		}
	}
	return best
}
