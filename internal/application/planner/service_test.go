package planner

import (
	"context"
	"errors"
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
	"github.com/greenbite/engine/internal/ports/inbound"
	"github.com/greenbite/engine/internal/ports/outbound"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// stubGenerator returns canned recipes or a canned error.
type stubGenerator struct {
	recipes []outbound.GeneratedRecipe
	err     error
	calls   int
}

func (g *stubGenerator) GenerateRecipes(ctx context.Context, ingredients []string, count int) ([]outbound.GeneratedRecipe, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.recipes, nil
}

// failingCatalog simulates a catalog outage.
type failingCatalog struct{}

func (failingCatalog) FindByTokens(ctx context.Context, tokens []string, limit int) ([]outbound.CatalogRecipe, error) {
	return nil, errors.New("catalog down")
}

type ServiceSuite struct {
	suite.Suite

	store     *memory.Store
	cache     *memory.Cache
	generator *stubGenerator
	service   *Service
	userID    uuid.UUID
}

func (s *ServiceSuite) SetupTest() {
	s.store = memory.NewStore()
	s.cache = memory.NewCache()
	s.generator = &stubGenerator{}
	s.userID = uuid.New()
	s.service = s.newService(s.store)
}

func (s *ServiceSuite) newService(catalog outbound.RecipeCatalog) *Service {
	svc := NewService(s.store, s.store, s.store, catalog, s.generator, s.cache, planning.ScoreWeights{}, zap.NewNop())
	svc.now = func() time.Time { return testNow }
	return svc
}

func (s *ServiceSuite) seedLot(name string, qty float64, daysOut int) *inventory.Lot {
	lot := inventory.NewLot(s.userID, name, qty, "g", testNow.AddDate(0, 0, daysOut))
	s.store.AddLot(lot)
	return lot
}

func (s *ServiceSuite) seedCatalog(recipes ...outbound.CatalogRecipe) {
	s.store.SeedCatalog(recipes)
}

func (s *ServiceSuite) generate(days, mealsPerDay int) (*inbound.GeneratePlanCommand, *mealplanResult) {
	cmd := inbound.GeneratePlanCommand{
		UserID:      s.userID,
		StartDate:   testNow,
		Days:        days,
		MealsPerDay: mealsPerDay,
	}
	plan, err := s.service.GeneratePlan(context.Background(), cmd)
	s.Require().NoError(err)
	return &cmd, &mealplanResult{plan: plan}
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) TestGeneratePlanFillsSlotsFromCatalog() {
	s.seedLot("eggs", 600, 5)
	s.seedLot("rice", 1200, 20)
	s.seedCatalog(
		outbound.CatalogRecipe{ID: uuid.New(), Title: "Egg Fried Rice", Ingredients: []string{"eggs", "rice"}},
		outbound.CatalogRecipe{ID: uuid.New(), Title: "Rice Porridge", Ingredients: []string{"rice"}},
		outbound.CatalogRecipe{ID: uuid.New(), Title: "Omelette", Ingredients: []string{"eggs"}},
	)

	_, res := s.generate(1, 3)
	plan := res.plan

	s.Equal(3, plan.TotalSlots)
	s.Equal(3, plan.FilledSlots)
	s.False(plan.Partial)
	s.Len(plan.PlanDays, 1)
	s.Equal("Egg Fried Rice", plan.PlanDays[0].Slots[0].Draft.Title)

	stored, err := s.store.FindByID(context.Background(), plan.ID)
	s.Require().NoError(err)
	s.NotNil(stored)
	s.Equal(plan.FilledSlots, stored.FilledSlots)
}

func (s *ServiceSuite) TestGeneratePlanCarriesRecipeMetadata() {
	s.seedLot("rice", 1200, 20)
	catalogID := uuid.New()
	s.seedCatalog(outbound.CatalogRecipe{
		ID:           catalogID,
		Title:        "Rice Bowl",
		Ingredients:  []string{"rice"},
		Instructions: "Cook.",
		Thumbnail:    "https://img.example/rice-bowl.jpg",
		Cuisine:      "Japanese",
		Category:     "Main",
	})

	_, res := s.generate(1, 1)
	draft := res.plan.PlanDays[0].Slots[0].Draft

	s.Equal("Japanese", draft.Cuisine)
	s.Equal("https://img.example/rice-bowl.jpg", draft.Photo)
	s.Equal(catalogID.String(), draft.ExternalID)
}

func (s *ServiceSuite) TestGeneratePlanValidation() {
	_, err := s.service.GeneratePlan(context.Background(), inbound.GeneratePlanCommand{
		UserID:      s.userID,
		StartDate:   testNow,
		Days:        31,
		MealsPerDay: 2,
	})
	s.Equal(apperrors.CodeValidationFailed, apperrors.GetCode(err))

	_, err = s.service.GeneratePlan(context.Background(), inbound.GeneratePlanCommand{
		UserID:      s.userID,
		StartDate:   testNow,
		Days:        3,
		MealsPerDay: 5,
	})
	s.Equal(apperrors.CodeValidationFailed, apperrors.GetCode(err))
}

func (s *ServiceSuite) TestGeneratePlanEmptyInventory() {
	_, err := s.service.GeneratePlan(context.Background(), inbound.GeneratePlanCommand{
		UserID:      s.userID,
		StartDate:   testNow,
		Days:        1,
		MealsPerDay: 2,
	})
	s.Equal(apperrors.CodeInventoryExhausted, apperrors.GetCode(err))
}

func (s *ServiceSuite) TestGeneratePlanPartialWhenCandidatesShort() {
	s.seedLot("rice", 500, 20)
	s.seedCatalog(outbound.CatalogRecipe{ID: uuid.New(), Title: "Rice Bowl", Ingredients: []string{"rice"}})

	cmd := inbound.GeneratePlanCommand{UserID: s.userID, StartDate: testNow, Days: 2, MealsPerDay: 2}
	plan, err := s.service.GeneratePlan(context.Background(), cmd)
	s.Require().NoError(err)

	s.True(plan.Partial)
	s.Equal(1, plan.FilledSlots)
	s.Equal(4, plan.TotalSlots)
}

func (s *ServiceSuite) TestGeneratePlanRepeatFill() {
	s.seedLot("rice", 500, 20)
	s.seedCatalog(outbound.CatalogRecipe{ID: uuid.New(), Title: "Rice Bowl", Ingredients: []string{"rice"}})

	cmd := inbound.GeneratePlanCommand{
		UserID:      s.userID,
		StartDate:   testNow,
		Days:        1,
		MealsPerDay: 2,
		AllowRepeats: true,
	}
	plan, err := s.service.GeneratePlan(context.Background(), cmd)
	s.Require().NoError(err)

	s.False(plan.Partial)
	s.Equal(2, plan.FilledSlots)
	second := plan.PlanDays[0].Slots[1]
	s.Equal("Rice Bowl", second.Draft.Title)
	s.Equal("repeat", string(second.Draft.Source))
}

func (s *ServiceSuite) TestGeneratedSourceFailureFallsBackToCatalog() {
	s.seedLot("rice", 500, 20)
	s.seedCatalog(outbound.CatalogRecipe{ID: uuid.New(), Title: "Rice Bowl", Ingredients: []string{"rice"}})
	s.generator.err = errors.New("model timeout")

	cmd := inbound.GeneratePlanCommand{
		UserID:         s.userID,
		StartDate:      testNow,
		Days:           1,
		MealsPerDay:    2,
		AllowGenerated: true,
	}
	plan, err := s.service.GeneratePlan(context.Background(), cmd)
	s.Require().NoError(err)
	s.Equal("Rice Bowl", plan.PlanDays[0].Slots[0].Draft.Title)
	s.Equal(1, s.generator.calls)
}

func (s *ServiceSuite) TestGenerationSkippedWhenCatalogSufficient() {
	s.seedLot("eggs", 600, 5)
	s.seedLot("rice", 1200, 20)
	s.seedCatalog(
		outbound.CatalogRecipe{ID: uuid.New(), Title: "Egg Fried Rice", Ingredients: []string{"eggs", "rice"}},
		outbound.CatalogRecipe{ID: uuid.New(), Title: "Omelette", Ingredients: []string{"eggs"}},
	)

	cmd := inbound.GeneratePlanCommand{
		UserID:         s.userID,
		StartDate:      testNow,
		Days:           1,
		MealsPerDay:    2,
		AllowGenerated: true,
	}
	plan, err := s.service.GeneratePlan(context.Background(), cmd)
	s.Require().NoError(err)
	s.Equal(2, plan.FilledSlots)
	s.Zero(s.generator.calls)
}

func (s *ServiceSuite) TestBothSourcesFailingSurfacesUpstream() {
	s.seedLot("rice", 500, 20)
	s.generator.err = errors.New("model timeout")
	svc := s.newService(failingCatalog{})

	cmd := inbound.GeneratePlanCommand{
		UserID:         s.userID,
		StartDate:      testNow,
		Days:           1,
		MealsPerDay:    1,
		AllowGenerated: true,
	}
	_, err := svc.GeneratePlan(context.Background(), cmd)
	s.Equal(apperrors.CodeUpstreamError, apperrors.GetCode(err))
}

func (s *ServiceSuite) TestGeneratedRecipesJoinThePool() {
	s.seedLot("tofu", 400, 5)
	s.generator.recipes = []outbound.GeneratedRecipe{
		{Title: "Crispy Tofu", Ingredients: []string{"tofu"}},
		{Title: "", Ingredients: []string{"tofu"}},
	}

	cmd := inbound.GeneratePlanCommand{
		UserID:         s.userID,
		StartDate:      testNow,
		Days:           1,
		MealsPerDay:    1,
		AllowGenerated: true,
	}
	plan, err := s.service.GeneratePlan(context.Background(), cmd)
	s.Require().NoError(err)
	s.Equal("Crispy Tofu", plan.PlanDays[0].Slots[0].Draft.Title)
	s.Equal("generated", string(plan.PlanDays[0].Slots[0].Draft.Source))
}

func (s *ServiceSuite) TestGetPlanScopedToOwner() {
	s.seedLot("rice", 500, 20)
	s.seedCatalog(outbound.CatalogRecipe{ID: uuid.New(), Title: "Rice Bowl", Ingredients: []string{"rice"}})
	_, res := s.generate(1, 1)

	_, err := s.service.GetPlan(context.Background(), uuid.New(), res.plan.ID)
	s.Equal(apperrors.CodePlanNotFound, apperrors.GetCode(err))

	got, err := s.service.GetPlan(context.Background(), s.userID, res.plan.ID)
	s.Require().NoError(err)
	s.Equal(res.plan.ID, got.ID)
}

func (s *ServiceSuite) TestSkipSlot() {
	s.seedLot("rice", 500, 20)
	s.seedCatalog(outbound.CatalogRecipe{ID: uuid.New(), Title: "Rice Bowl", Ingredients: []string{"rice"}})
	_, res := s.generate(1, 1)
	slotID := res.plan.PlanDays[0].Slots[0].ID

	s.Require().NoError(s.service.SkipSlot(context.Background(), s.userID, slotID))

	stored, err := s.store.FindByID(context.Background(), res.plan.ID)
	s.Require().NoError(err)
	s.True(stored.PlanDays[0].Slots[0].Skipped)
}

// mealplanResult keeps suite helpers terse.
type mealplanResult struct {
	plan *mealplan.MealPlan
}
