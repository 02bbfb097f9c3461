// Package outbound declares the driven-side ports: persistence, recipe
// sources and caching that the application core depends on.
package outbound

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/greenbite/engine/internal/domain/inventory"
	"github.com/greenbite/engine/internal/domain/mealplan"
)

// LotRepository provides access to a user's ingredient lots.
type LotRepository interface {
	// ActiveByUser returns the user's lots that are unconsumed and hold a
	// positive quantity; expiry filtering happens in the snapshot.
	ActiveByUser(ctx context.Context, userID uuid.UUID) ([]*inventory.Lot, error)
	// LockByUser loads the user's active lots under a write lock for the
	// duration of the surrounding transaction.
	LockByUser(ctx context.Context, userID uuid.UUID) ([]*inventory.Lot, error)
	Save(ctx context.Context, lot *inventory.Lot) error
}

// MealPlanRepository persists the plan aggregate. Create stores the whole
// draft aggregate atomically; the Find methods return the full aggregate
// including days and slots.
type MealPlanRepository interface {
	Create(ctx context.Context, plan *mealplan.MealPlan) error
	FindByID(ctx context.Context, id uuid.UUID) (*mealplan.MealPlan, error)
	FindByDay(ctx context.Context, dayID uuid.UUID) (*mealplan.MealPlan, error)
	FindBySlot(ctx context.Context, slotID uuid.UUID) (*mealplan.MealPlan, error)
	// LockDay re-reads one day under a write lock inside a transaction.
	LockDay(ctx context.Context, dayID uuid.UUID) (*mealplan.PlanDay, error)
	UpdateDay(ctx context.Context, day *mealplan.PlanDay) error
	UpdateSlot(ctx context.Context, slot *mealplan.PlanSlot) error
	UpdatePlan(ctx context.Context, plan *mealplan.MealPlan) error
}

// MealRepository stores materialized meals.
type MealRepository interface {
	Create(ctx context.Context, meal *mealplan.Meal) error
}

// UsageRecordRepository appends inventory deduction audit rows.
type UsageRecordRepository interface {
	Append(ctx context.Context, record *mealplan.UsageRecord) error
}

// TxRepositories bundles the repositories bound to one transaction.
type TxRepositories struct {
	Lots   LotRepository
	Plans  MealPlanRepository
	Meals  MealRepository
	Usages UsageRecordRepository
}

// UnitOfWork runs a function with transaction-bound repositories; the
// transaction commits when fn returns nil and rolls back otherwise.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error
}

// CatalogRecipe is a row from the stored recipe catalog. Thumbnail,
// cuisine and category ride along unmodified into the planning candidate.
type CatalogRecipe struct {
	ID           uuid.UUID
	Title        string
	Ingredients  []string
	Instructions string
	Thumbnail    string
	Cuisine      string
	Category     string
}

// RecipeCatalog searches stored recipes by ingredient token.
type RecipeCatalog interface {
	// FindByTokens returns recipes matching any of the tokens, capped at
	// limit rows.
	FindByTokens(ctx context.Context, tokens []string, limit int) ([]CatalogRecipe, error)
}

// GeneratedRecipe is one recipe proposed by the generation service.
// Cuisine is optional; generated recipes never carry images.
type GeneratedRecipe struct {
	Title        string
	Ingredients  []string
	Instructions string
	Cuisine      string
}

// GenerationService produces novel recipe candidates from a list of
// available ingredients.
type GenerationService interface {
	GenerateRecipes(ctx context.Context, ingredients []string, count int) ([]GeneratedRecipe, error)
}

// CacheRepository is a byte-oriented cache with TTLs, used for job records
// and hot reads.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
