package planner

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/greenbite/engine/pkg/errors"

	"github.com/greenbite/engine/internal/domain/ingredient"
	"github.com/greenbite/engine/internal/domain/inventory"
	"github.com/greenbite/engine/internal/domain/mealplan"
	"github.com/greenbite/engine/internal/ports/inbound"
	"github.com/greenbite/engine/internal/ports/outbound"
)

// defaultUsageQuantity is assumed for an ingredient whose slot carries no
// explicit planned usage link.
const defaultUsageQuantity = 100

// ConfirmDay materializes the day's non-skipped slots into meals and
// deducts the implied ingredient demand from the user's lots, all inside a
// single transaction with the day and lot rows locked. Confirmation is
// terminal and idempotent at the slot level: a retried call never creates
// a second meal for a slot that already has one.
//
// Demand that inventory cannot cover is recorded as a shortage, never an
// error; kitchens run out, plans do not fail.
func (s *Service) ConfirmDay(ctx context.Context, userID, dayID uuid.UUID) (*inbound.ConfirmDayResult, error) {
	// Precondition checks run before any transaction so obvious rejections
	// never touch locks.
	plan, err := s.plans.FindByDay(ctx, dayID)
	if err != nil {
		return nil, err
	}
	if plan == nil || plan.UserID != userID {
		return nil, apperrors.NewDayNotFoundError(dayID.String())
	}
	day, ok := plan.DayByID(dayID)
	if !ok {
		return nil, apperrors.NewDayNotFoundError(dayID.String())
	}
	if day.Confirmed {
		return nil, apperrors.NewDayConfirmedError(dayID.String())
	}

	var result *inbound.ConfirmDayResult
	err = s.uow.Do(ctx, func(ctx context.Context, repos outbound.TxRepositories) error {
		var txErr error
		result, txErr = s.confirmDayTx(ctx, repos, plan, dayID)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("day confirmed",
		zap.String("day_id", dayID.String()),
		zap.Int("meals_created", result.MealsCreated),
		zap.Int("shortages", len(result.Shortages)))
	return result, nil
}

func (s *Service) confirmDayTx(ctx context.Context, repos outbound.TxRepositories, plan *mealplan.MealPlan, dayID uuid.UUID) (*inbound.ConfirmDayResult, error) {
	day, err := repos.Plans.LockDay(ctx, dayID)
	if err != nil {
		return nil, err
	}
	if day == nil {
		return nil, apperrors.NewDayNotFoundError(dayID.String())
	}
	// Re-check under the lock: a concurrent confirm may have won the race.
	if day.Confirmed {
		return nil, apperrors.NewDayConfirmedError(dayID.String())
	}

	lots, err := repos.Lots.LockByUser(ctx, plan.UserID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	snap := inventory.NewSnapshot(lots, now)

	result := &inbound.ConfirmDayResult{DayID: dayID}

	for _, slot := range day.ActiveSlots() {
		meal, created, err := s.materializeSlot(ctx, repos, plan, day, slot, now)
		if err != nil {
			return nil, err
		}
		if created {
			result.MealsCreated++
		}

		takes, shortages := resolveSlotDemand(slot, snap)
		result.Shortages = append(result.Shortages, shortages...)
		for _, take := range takes {
			if err := s.recordDeduction(ctx, repos, plan.UserID, take, meal, now); err != nil {
				return nil, err
			}
			result.Deductions = append(result.Deductions, inbound.Deduction{
				LotID:      take.lot.ID,
				Ingredient: take.ingredient,
				Quantity:   take.taken,
			})
		}
	}

	if err := day.Confirm(now); err != nil {
		return nil, apperrors.NewDayConfirmedError(dayID.String())
	}
	if err := repos.Plans.UpdateDay(ctx, day); err != nil {
		return nil, apperrors.NewDatabaseError("update day", err)
	}

	// Replace the stale in-memory day before the all-confirmed check.
	for i, d := range plan.PlanDays {
		if d.ID == day.ID {
			plan.PlanDays[i] = day
		}
	}
	if plan.AllDaysConfirmed() && !plan.Confirmed {
		plan.Confirmed = true
		at := now
		plan.ConfirmedAt = &at
		if err := repos.Plans.UpdatePlan(ctx, plan); err != nil {
			return nil, apperrors.NewDatabaseError("update plan", err)
		}
	}
	return result, nil
}

func (s *Service) materializeSlot(ctx context.Context, repos outbound.TxRepositories, plan *mealplan.MealPlan, day *mealplan.PlanDay, slot *mealplan.PlanSlot, now time.Time) (*mealplan.Meal, bool, error) {
	if slot.MealID != nil {
		return &mealplan.Meal{ID: *slot.MealID}, false, nil
	}

	meal := &mealplan.Meal{
		ID:           uuid.New(),
		UserID:       plan.UserID,
		Title:        slot.Draft.Title,
		Ingredients:  slot.Draft.Ingredients,
		Instructions: slot.Draft.Instructions,
		Cuisine:      slot.Draft.Cuisine,
		Calories:     slot.Draft.Calories,
		Servings:     slot.Draft.Servings,
		Photo:        slot.Draft.Photo,
		ExternalID:   slot.Draft.ExternalID,
		MealTime:     slot.MealTime,
		Date:         day.Date,
		Source:       slot.Draft.Source,
		CreatedAt:    now,
	}
	if err := repos.Meals.Create(ctx, meal); err != nil {
		return nil, false, apperrors.NewDatabaseError("create meal", err)
	}
	slot.Materialize(meal)
	if err := repos.Plans.UpdateSlot(ctx, slot); err != nil {
		return nil, false, apperrors.NewDatabaseError("update slot", err)
	}
	return meal, true, nil
}

// lotTake is one deduction resolved against a concrete lot.
type lotTake struct {
	lot        *inventory.Lot
	ingredient string
	taken      float64
	shortage   float64
}

// resolveSlotDemand works out what the slot draws from inventory and
// deducts it from the snapshot's lots in place. Explicit planned-usage
// links are applied first, clamped per lot; every recipe ingredient not
// covered by one falls back to a token-based demand at the default
// quantity, satisfied across matching lots in ascending expiry order.
func resolveSlotDemand(slot *mealplan.PlanSlot, snap *inventory.Snapshot) ([]lotTake, []inbound.Shortage) {
	var (
		takes     []lotTake
		shortages []inbound.Shortage
	)

	byLot := make(map[uuid.UUID]*inventory.Lot, len(snap.Lots()))
	for _, l := range snap.Lots() {
		byLot[l.ID] = l
	}

	explicitTokens := make(map[string]struct{})
	for _, pu := range slot.PlannedUsages {
		lot, ok := byLot[pu.LotID]
		if !ok {
			// Lot vanished or was consumed since planning.
			shortages = append(shortages, inbound.Shortage{Ingredient: pu.Ingredient, Missing: pu.Quantity})
			continue
		}
		explicitTokens[lot.Token] = struct{}{}

		taken := lot.Deduct(pu.Quantity)
		missing := pu.Quantity - taken
		if taken > 0 {
			takes = append(takes, lotTake{lot: lot, ingredient: lot.Name, taken: taken, shortage: missing})
		}
		if missing > 0 {
			shortages = append(shortages, inbound.Shortage{Ingredient: lot.Name, Missing: missing})
		}
	}

	// Aggregate the fallback demand per token, then satisfy each bucket
	// across matching lots.
	demand := make(map[string]float64)
	var demandOrder []string
	for _, ing := range slot.Draft.Ingredients {
		token := ingredient.Normalize(ing)
		if token == "" {
			continue
		}
		if _, covered := explicitTokens[token]; covered {
			continue
		}
		if _, seen := demand[token]; !seen {
			demandOrder = append(demandOrder, token)
		}
		demand[token] += defaultUsageQuantity
	}

	for _, token := range demandOrder {
		remaining := demand[token]
		for _, lot := range snap.Lots() {
			if remaining <= 0 {
				break
			}
			if !lotMatchesToken(lot, token) {
				continue
			}
			taken := lot.Deduct(remaining)
			if taken <= 0 {
				continue
			}
			remaining -= taken
			takes = append(takes, lotTake{lot: lot, ingredient: token, taken: taken})
		}
		if remaining > 0 {
			shortages = append(shortages, inbound.Shortage{Ingredient: token, Missing: remaining})
		}
	}

	return takes, shortages
}

func (s *Service) recordDeduction(ctx context.Context, repos outbound.TxRepositories, userID uuid.UUID, take lotTake, meal *mealplan.Meal, now time.Time) error {
	if err := repos.Lots.Save(ctx, take.lot); err != nil {
		return apperrors.NewDatabaseError("save lot", err)
	}
	var mealID *uuid.UUID
	if meal != nil {
		id := meal.ID
		mealID = &id
	}
	record := &mealplan.UsageRecord{
		ID:         uuid.New(),
		UserID:     userID,
		LotID:      take.lot.ID,
		MealID:     mealID,
		Ingredient: take.ingredient,
		Quantity:   take.taken,
		Shortage:   take.shortage,
		UsedAt:     now,
	}
	if err := repos.Usages.Append(ctx, record); err != nil {
		return apperrors.NewDatabaseError("append usage record", err)
	}
	return nil
}

// lotMatchesToken reports whether a lot can satisfy demand for a token:
// exact token match, synonym-family match, or substring containment either
// way (the heuristic that lets "chicken breast" cover "chicken").
func lotMatchesToken(lot *inventory.Lot, token string) bool {
	if lot.Token == "" {
		return false
	}
	if lot.Token == token {
		return true
	}
	if ingredient.BaseForm(lot.Token) == ingredient.BaseForm(token) {
		return true
	}
	return strings.Contains(lot.Token, token) || strings.Contains(token, lot.Token)
}

// ConfirmPlan confirms every remaining unconfirmed day of a plan in date
// order. Already-confirmed days are passed over, so the call is a safe
// retry after a partial failure.
func (s *Service) ConfirmPlan(ctx context.Context, userID, planID uuid.UUID) ([]inbound.ConfirmDayResult, error) {
	plan, err := s.GetPlan(ctx, userID, planID)
	if err != nil {
		return nil, err
	}

	var results []inbound.ConfirmDayResult
	for _, day := range plan.PlanDays {
		if day.Confirmed {
			continue
		}
		res, err := s.ConfirmDay(ctx, userID, day.ID)
		if err != nil {
			return results, err
		}
		results = append(results, *res)
	}
	return results, nil
}

// PreviewDay computes the deductions and shortages confirming the day
// would produce, against copies of the current lots. Nothing is written.
func (s *Service) PreviewDay(ctx context.Context, userID, dayID uuid.UUID) (*inbound.DayPreview, error) {
	plan, err := s.plans.FindByDay(ctx, dayID)
	if err != nil {
		return nil, err
	}
	if plan == nil || plan.UserID != userID {
		return nil, apperrors.NewDayNotFoundError(dayID.String())
	}
	day, ok := plan.DayByID(dayID)
	if !ok {
		return nil, apperrors.NewDayNotFoundError(dayID.String())
	}
	if day.Confirmed {
		return nil, apperrors.NewDayConfirmedError(dayID.String())
	}

	lots, err := s.lots.ActiveByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("load lots", err)
	}
	// Work on copies so the dry run cannot leak mutations.
	copies := make([]*inventory.Lot, 0, len(lots))
	for _, l := range lots {
		c := *l
		copies = append(copies, &c)
	}
	snap := inventory.NewSnapshot(copies, s.now())

	preview := &inbound.DayPreview{DayID: dayID}
	for _, slot := range day.ActiveSlots() {
		takes, shortages := resolveSlotDemand(slot, snap)
		for _, take := range takes {
			preview.Deductions = append(preview.Deductions, inbound.Deduction{
				LotID:      take.lot.ID,
				Ingredient: take.ingredient,
				Quantity:   take.taken,
			})
		}
		preview.Shortages = append(preview.Shortages, shortages...)
	}
	return preview, nil
}
