package gorm

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/greenbite/engine/internal/domain/inventory"
	"github.com/greenbite/engine/internal/domain/mealplan"
	"github.com/greenbite/engine/internal/ports/outbound"
)

// forUpdate applies a row-level write lock on dialects that support it.
// SQLite, used in tests, relies on its single-writer model instead.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

// LotRepository implements the lot port on GORM.
type LotRepository struct {
	db *gorm.DB
}

// NewLotRepository creates a lot repository.
func NewLotRepository(db *gorm.DB) *LotRepository {
	return &LotRepository{db: db}
}

var _ outbound.LotRepository = (*LotRepository)(nil)

func (r *LotRepository) ActiveByUser(ctx context.Context, userID uuid.UUID) ([]*inventory.Lot, error) {
	var models []LotModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND consumed = ? AND quantity > 0", userID, false).
		Order("expiry_date ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	lots := make([]*inventory.Lot, 0, len(models))
	for i := range models {
		lots = append(lots, lotToDomain(&models[i]))
	}
	return lots, nil
}

func (r *LotRepository) LockByUser(ctx context.Context, userID uuid.UUID) ([]*inventory.Lot, error) {
	var models []LotModel
	err := forUpdate(r.db.WithContext(ctx)).
		Where("user_id = ? AND consumed = ? AND quantity > 0", userID, false).
		Order("expiry_date ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	lots := make([]*inventory.Lot, 0, len(models))
	for i := range models {
		lots = append(lots, lotToDomain(&models[i]))
	}
	return lots, nil
}

func (r *LotRepository) Save(ctx context.Context, lot *inventory.Lot) error {
	return r.db.WithContext(ctx).Save(lotToModel(lot)).Error
}

// MealPlanRepository implements the plan aggregate port on GORM.
type MealPlanRepository struct {
	db *gorm.DB
}

// NewMealPlanRepository creates a meal plan repository.
func NewMealPlanRepository(db *gorm.DB) *MealPlanRepository {
	return &MealPlanRepository{db: db}
}

var _ outbound.MealPlanRepository = (*MealPlanRepository)(nil)

// Create persists the whole aggregate; GORM cascades the nested days,
// slots and planned usages in the surrounding transaction.
func (r *MealPlanRepository) Create(ctx context.Context, plan *mealplan.MealPlan) error {
	return r.db.WithContext(ctx).Create(planToModel(plan)).Error
}

func (r *MealPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*mealplan.MealPlan, error) {
	var model MealPlanModel
	err := r.db.WithContext(ctx).
		Preload("PlanDays", func(db *gorm.DB) *gorm.DB { return db.Order("plan_days.date ASC") }).
		Preload("PlanDays.Slots").
		Preload("PlanDays.Slots.PlannedUsages").
		First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return planToDomain(&model), nil
}

func (r *MealPlanRepository) FindByDay(ctx context.Context, dayID uuid.UUID) (*mealplan.MealPlan, error) {
	var day PlanDayModel
	err := r.db.WithContext(ctx).Select("plan_id").First(&day, "id = ?", dayID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, day.PlanID)
}

func (r *MealPlanRepository) FindBySlot(ctx context.Context, slotID uuid.UUID) (*mealplan.MealPlan, error) {
	var slot PlanSlotModel
	err := r.db.WithContext(ctx).Select("day_id").First(&slot, "id = ?", slotID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.FindByDay(ctx, slot.DayID)
}

func (r *MealPlanRepository) LockDay(ctx context.Context, dayID uuid.UUID) (*mealplan.PlanDay, error) {
	var model PlanDayModel
	err := forUpdate(r.db.WithContext(ctx)).First(&model, "id = ?", dayID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Preload("PlannedUsages").
		Where("day_id = ?", dayID).
		Find(&model.Slots).Error; err != nil {
		return nil, err
	}
	return dayToDomain(&model), nil
}

func (r *MealPlanRepository) UpdateDay(ctx context.Context, day *mealplan.PlanDay) error {
	return r.db.WithContext(ctx).Model(&PlanDayModel{}).
		Where("id = ?", day.ID).
		Updates(map[string]interface{}{
			"confirmed":    day.Confirmed,
			"confirmed_at": day.ConfirmedAt,
		}).Error
}

func (r *MealPlanRepository) UpdateSlot(ctx context.Context, slot *mealplan.PlanSlot) error {
	model := slotToModel(slot)
	return r.db.WithContext(ctx).Model(&PlanSlotModel{}).
		Where("id = ?", slot.ID).
		Updates(map[string]interface{}{
			"title":           model.Title,
			"ingredients":     model.Ingredients,
			"instructions":    model.Instructions,
			"score":           model.Score,
			"source":          model.Source,
			"meal_id":         model.MealID,
			"skipped":         model.Skipped,
			"replaced":        model.Replaced,
			"original_recipe": model.OriginalRecipe,
		}).Error
}

func (r *MealPlanRepository) UpdatePlan(ctx context.Context, plan *mealplan.MealPlan) error {
	return r.db.WithContext(ctx).Model(&MealPlanModel{}).
		Where("id = ?", plan.ID).
		Updates(map[string]interface{}{
			"confirmed":    plan.Confirmed,
			"confirmed_at": plan.ConfirmedAt,
			"partial":      plan.Partial,
			"filled_slots": plan.FilledSlots,
		}).Error
}

// MealRepository implements the meal port on GORM.
type MealRepository struct {
	db *gorm.DB
}

// NewMealRepository creates a meal repository.
func NewMealRepository(db *gorm.DB) *MealRepository {
	return &MealRepository{db: db}
}

var _ outbound.MealRepository = (*MealRepository)(nil)

func (r *MealRepository) Create(ctx context.Context, meal *mealplan.Meal) error {
	return r.db.WithContext(ctx).Create(mealToModel(meal)).Error
}

// UsageRecordRepository implements the usage audit port on GORM.
type UsageRecordRepository struct {
	db *gorm.DB
}

// NewUsageRecordRepository creates a usage record repository.
func NewUsageRecordRepository(db *gorm.DB) *UsageRecordRepository {
	return &UsageRecordRepository{db: db}
}

var _ outbound.UsageRecordRepository = (*UsageRecordRepository)(nil)

func (r *UsageRecordRepository) Append(ctx context.Context, record *mealplan.UsageRecord) error {
	return r.db.WithContext(ctx).Create(usageToModel(record)).Error
}

// CatalogRepository implements the recipe catalog port on GORM.
type CatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a catalog repository.
func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

var _ outbound.RecipeCatalog = (*CatalogRepository)(nil)

// FindByTokens matches recipes whose token list contains any of the given
// tokens. Tokens are stored as a JSON array; matching uses substring
// containment on the serialized column, which the row cap keeps bounded.
func (r *CatalogRepository) FindByTokens(ctx context.Context, tokens []string, limit int) ([]outbound.CatalogRecipe, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	query := r.db.WithContext(ctx).Model(&CatalogRecipeModel{})
	conditions := r.db.Session(&gorm.Session{NewDB: true}).Model(&CatalogRecipeModel{})
	for i, t := range tokens {
		pattern := "%\"" + t + "\"%"
		if i == 0 {
			conditions = conditions.Where("tokens LIKE ?", pattern)
		} else {
			conditions = conditions.Or("tokens LIKE ?", pattern)
		}
	}

	var models []CatalogRecipeModel
	if err := query.Where(conditions).Limit(limit).Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]outbound.CatalogRecipe, 0, len(models))
	for i := range models {
		out = append(out, catalogToPort(&models[i]))
	}
	return out, nil
}

// SeedRecipes inserts catalog rows, normalizing tokens from ingredients.
func (r *CatalogRepository) SeedRecipes(ctx context.Context, recipes []outbound.CatalogRecipe, tokenize func(string) string) error {
	for _, rec := range recipes {
		model := &CatalogRecipeModel{
			ID:           rec.ID,
			Title:        rec.Title,
			Ingredients:  StringSlice(rec.Ingredients),
			Instructions: rec.Instructions,
			Thumbnail:    rec.Thumbnail,
			Cuisine:      rec.Cuisine,
			Category:     rec.Category,
		}
		for _, ing := range rec.Ingredients {
			if t := tokenize(ing); t != "" {
				model.Tokens = append(model.Tokens, t)
			}
		}
		if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
			return err
		}
	}
	return nil
}
