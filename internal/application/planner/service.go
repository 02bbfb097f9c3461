package planner

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/greenbite/engine/pkg/errors"

	"github.com/greenbite/engine/internal/domain/inventory"
	"github.com/greenbite/engine/internal/domain/mealplan"
	"github.com/greenbite/engine/internal/domain/planning"
	"github.com/greenbite/engine/internal/ports/inbound"
	"github.com/greenbite/engine/internal/ports/outbound"
)

// Service implements the planning engine's public operations.
type Service struct {
	uow       outbound.UnitOfWork
	lots      outbound.LotRepository
	plans     outbound.MealPlanRepository
	catalog   outbound.RecipeCatalog
	generator outbound.GenerationService
	cache     outbound.CacheRepository
	scorer    *planning.Scorer
	validate  *validator.Validate
	logger    *zap.Logger

	// now is swappable in tests; everything time-based flows through it.
	now func() time.Time
}

// NewService wires a planning service from its driven ports.
func NewService(
	uow outbound.UnitOfWork,
	lots outbound.LotRepository,
	plans outbound.MealPlanRepository,
	catalog outbound.RecipeCatalog,
	generator outbound.GenerationService,
	cache outbound.CacheRepository,
	weights planning.ScoreWeights,
	logger *zap.Logger,
) *Service {
	return &Service{
		uow:       uow,
		lots:      lots,
		plans:     plans,
		catalog:   catalog,
		generator: generator,
		cache:     cache,
		scorer:    planning.NewScorer(weights),
		validate:  validator.New(),
		logger:    logger.Named("planner-service"),
		now:       time.Now,
	}
}

var _ inbound.PlannerService = (*Service)(nil)

// GeneratePlan builds a draft plan from the user's current inventory and
// persists the whole aggregate in one transaction. The returned plan is
// entirely unconfirmed; no meals exist and no inventory moves yet.
func (s *Service) GeneratePlan(ctx context.Context, cmd inbound.GeneratePlanCommand) (*mealplan.MealPlan, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	lots, err := s.lots.ActiveByUser(ctx, cmd.UserID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("load lots", err)
	}

	snap := inventory.NewSnapshot(lots, s.now())
	if snap.Empty() {
		return nil, apperrors.NewInventoryExhaustedError()
	}

	candidates, err := s.collectCandidates(ctx, snap, cmd.AllowGenerated, cmd.Days*cmd.MealsPerDay)
	if err != nil {
		return nil, apperrors.NewUpstreamError("candidate sources", err)
	}
	if len(candidates) == 0 {
		return nil, apperrors.NewNoCandidatesError()
	}

	ranked := planning.RankWithDiversity(candidates)
	plan := planning.Assemble(cmd.UserID, s.startOfDay(cmd.StartDate), cmd.Days, cmd.MealsPerDay, ranked, planning.AssemblyPolicy{
		AllowRepeats: cmd.AllowRepeats,
	})

	if err := s.uow.Do(ctx, func(ctx context.Context, repos outbound.TxRepositories) error {
		return repos.Plans.Create(ctx, plan)
	}); err != nil {
		return nil, apperrors.NewDatabaseError("create plan", err)
	}

	s.logger.Info("plan generated",
		zap.String("plan_id", plan.ID.String()),
		zap.String("user_id", cmd.UserID.String()),
		zap.Int("filled_slots", plan.FilledSlots),
		zap.Int("total_slots", plan.TotalSlots),
		zap.Bool("partial", plan.Partial),
		zap.Int("lots_expiring_soon", len(snap.ExpiringSoon())))
	return plan, nil
}

// GetPlan returns a user's plan aggregate.
func (s *Service) GetPlan(ctx context.Context, userID, planID uuid.UUID) (*mealplan.MealPlan, error) {
	plan, err := s.plans.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil || plan.UserID != userID {
		return nil, apperrors.NewPlanNotFoundError(planID.String())
	}
	return plan, nil
}

// SkipSlot excludes a slot from future confirmation. Rejected once the
// slot's day is confirmed.
func (s *Service) SkipSlot(ctx context.Context, userID, slotID uuid.UUID) error {
	plan, err := s.plans.FindBySlot(ctx, slotID)
	if err != nil {
		return err
	}
	if plan == nil || plan.UserID != userID {
		return apperrors.NewSlotNotFoundError(slotID.String())
	}

	day, slot, ok := locateSlot(plan, slotID)
	if !ok {
		return apperrors.NewSlotNotFoundError(slotID.String())
	}
	if day.Confirmed {
		return apperrors.NewDayConfirmedError(day.ID.String())
	}

	slot.Skip()
	if err := s.plans.UpdateSlot(ctx, slot); err != nil {
		return apperrors.NewDatabaseError("update slot", err)
	}
	return nil
}

func locateSlot(plan *mealplan.MealPlan, slotID uuid.UUID) (*mealplan.PlanDay, *mealplan.PlanSlot, bool) {
	for _, d := range plan.PlanDays {
		for _, sl := range d.Slots {
			if sl.ID == slotID {
				return d, sl, true
			}
		}
	}
	return nil, nil, false
}

func (s *Service) startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
