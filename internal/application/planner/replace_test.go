package planner

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	apperrors "github.com/greenbite/engine/pkg/errors"

	"github.com/greenbite/engine/internal/domain/inventory"
	"github.com/greenbite/engine/internal/domain/mealplan"
	"github.com/greenbite/engine/internal/domain/planning"
	"github.com/greenbite/engine/internal/infrastructure/persistence/memory"
	"github.com/greenbite/engine/internal/ports/outbound"
)

type ReplaceSuite struct {
	suite.Suite

	store     *memory.Store
	generator *stubGenerator
	service   *Service
	userID    uuid.UUID
}

func (s *ReplaceSuite) SetupTest() {
	s.store = memory.NewStore()
	s.generator = &stubGenerator{}
	s.userID = uuid.New()
	s.service = NewService(s.store, s.store, s.store, s.store, s.generator, memory.NewCache(), planning.ScoreWeights{}, zap.NewNop())
	s.service.now = func() time.Time { return testNow }
}

func (s *ReplaceSuite) seedLot(name string, qty float64, daysOut int) {
	s.store.AddLot(inventory.NewLot(s.userID, name, qty, "g", testNow.AddDate(0, 0, daysOut)))
}

func (s *ReplaceSuite) seedPlanWithSlot(title string) (*mealplan.MealPlan, *mealplan.PlanSlot) {
	plan := &mealplan.MealPlan{
		ID: uuid.New(), UserID: s.userID, StartDate: testNow,
		Days: 1, MealsPerDay: 1, TotalSlots: 1, FilledSlots: 1,
	}
	day := &mealplan.PlanDay{ID: uuid.New(), PlanID: plan.ID, Date: testNow}
	slot := &mealplan.PlanSlot{
		ID: uuid.New(), DayID: day.ID, MealTime: mealplan.Breakfast,
		Draft: mealplan.RecipeDraft{Title: title, Ingredients: []string{"rice"}, Source: mealplan.SourceCatalog},
	}
	day.Slots = []*mealplan.PlanSlot{slot}
	plan.PlanDays = []*mealplan.PlanDay{day}
	s.Require().NoError(s.store.Create(context.Background(), plan))
	return plan, slot
}

func TestReplaceSuite(t *testing.T) {
	suite.Run(t, new(ReplaceSuite))
}

func (s *ReplaceSuite) TestReplaceSlotPicksBestDistinctCandidate() {
	s.seedLot("rice", 1200, 20)
	s.store.SeedCatalog([]outbound.CatalogRecipe{
		{ID: uuid.New(), Title: "Rice Bowl", Ingredients: []string{"rice"}},
		{ID: uuid.New(), Title: "Rice Porridge", Ingredients: []string{"rice"}},
	})
	_, slot := s.seedPlanWithSlot("Rice Bowl")

	updated, err := s.service.ReplaceSlot(context.Background(), s.userID, slot.ID, false)
	s.Require().NoError(err)

	s.Equal("Rice Porridge", updated.Draft.Title)
	s.True(updated.Replaced)
	s.Require().NotNil(updated.OriginalRecipe)
	s.Equal("Rice Bowl", updated.OriginalRecipe.Title)
}

func (s *ReplaceSuite) TestReplaceSlotKeepsFirstOriginalAcrossReplacements() {
	s.seedLot("rice", 1200, 20)
	s.store.SeedCatalog([]outbound.CatalogRecipe{
		{ID: uuid.New(), Title: "Rice Bowl", Ingredients: []string{"rice"}},
		{ID: uuid.New(), Title: "Rice Porridge", Ingredients: []string{"rice"}},
		{ID: uuid.New(), Title: "Fried Rice", Ingredients: []string{"rice"}},
	})
	_, slot := s.seedPlanWithSlot("Rice Bowl")

	first, err := s.service.ReplaceSlot(context.Background(), s.userID, slot.ID, false)
	s.Require().NoError(err)
	second, err := s.service.ReplaceSlot(context.Background(), s.userID, slot.ID, false)
	s.Require().NoError(err)

	s.NotEqual(first.Draft.Title, second.Draft.Title)
	s.Equal("Rice Bowl", second.OriginalRecipe.Title)
}

func (s *ReplaceSuite) TestReplaceSlotNoDistinctAlternative() {
	s.seedLot("rice", 1200, 20)
	s.store.SeedCatalog([]outbound.CatalogRecipe{
		{ID: uuid.New(), Title: "Rice Bowl", Ingredients: []string{"rice"}},
	})
	_, slot := s.seedPlanWithSlot("rice bowl")

	_, err := s.service.ReplaceSlot(context.Background(), s.userID, slot.ID, false)
	s.Equal(apperrors.CodeNoAlternative, apperrors.GetCode(err))
}

func (s *ReplaceSuite) TestReplaceSlotWithoutGeneratedFallbackNeverCallsGenerator() {
	s.seedLot("rice", 1200, 20)
	s.store.SeedCatalog([]outbound.CatalogRecipe{
		{ID: uuid.New(), Title: "Rice Bowl", Ingredients: []string{"rice"}},
	})
	s.generator.recipes = []outbound.GeneratedRecipe{
		{Title: "Rice Pudding", Ingredients: []string{"rice"}},
	}
	_, slot := s.seedPlanWithSlot("Rice Bowl")

	_, err := s.service.ReplaceSlot(context.Background(), s.userID, slot.ID, false)
	s.Equal(apperrors.CodeNoAlternative, apperrors.GetCode(err))
	s.Zero(s.generator.calls)
}

func (s *ReplaceSuite) TestReplaceSlotGeneratedFallbackTopsUp() {
	s.seedLot("rice", 1200, 20)
	s.store.SeedCatalog([]outbound.CatalogRecipe{
		{ID: uuid.New(), Title: "Rice Bowl", Ingredients: []string{"rice"}},
	})
	s.generator.recipes = []outbound.GeneratedRecipe{
		{Title: "Rice Pudding", Ingredients: []string{"rice"}},
	}
	_, slot := s.seedPlanWithSlot("Rice Bowl")

	updated, err := s.service.ReplaceSlot(context.Background(), s.userID, slot.ID, true)
	s.Require().NoError(err)
	s.Equal("Rice Pudding", updated.Draft.Title)
	s.Equal(mealplan.SourceGenerated, updated.Draft.Source)
	s.Equal(1, s.generator.calls)
}

func (s *ReplaceSuite) TestReplaceSlotRejectsConfirmedDay() {
	s.seedLot("rice", 1200, 20)
	plan, slot := s.seedPlanWithSlot("Rice Bowl")
	day := plan.PlanDays[0]
	s.Require().NoError(day.Confirm(testNow))
	s.Require().NoError(s.store.UpdateDay(context.Background(), day))

	_, err := s.service.ReplaceSlot(context.Background(), s.userID, slot.ID, false)
	s.Equal(apperrors.CodeDayConfirmed, apperrors.GetCode(err))
}

func (s *ReplaceSuite) TestReplaceSlotOwnership() {
	s.seedLot("rice", 1200, 20)
	_, slot := s.seedPlanWithSlot("Rice Bowl")

	_, err := s.service.ReplaceSlot(context.Background(), uuid.New(), slot.ID, false)
	s.Equal(apperrors.CodeSlotNotFound, apperrors.GetCode(err))
}
