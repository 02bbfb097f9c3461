// Package memory provides in-memory implementations of the outbound
// persistence ports, used for tests and for running the engine without a
// database.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/greenbite/engine/internal/domain/ingredient"
	"github.com/greenbite/engine/internal/domain/inventory"
	"github.com/greenbite/engine/internal/domain/mealplan"
	"github.com/greenbite/engine/internal/ports/outbound"
)

// Store holds all in-memory state behind one mutex and implements every
// persistence port plus a trivial unit of work.
type Store struct {
	mu      sync.RWMutex
	lots    map[uuid.UUID]*inventory.Lot
	plans   map[uuid.UUID]*mealplan.MealPlan
	meals   map[uuid.UUID]*mealplan.Meal
	usages  []*mealplan.UsageRecord
	catalog []outbound.CatalogRecipe
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		lots:  make(map[uuid.UUID]*inventory.Lot),
		plans: make(map[uuid.UUID]*mealplan.MealPlan),
		meals: make(map[uuid.UUID]*mealplan.Meal),
	}
}

var (
	_ outbound.LotRepository         = (*Store)(nil)
	_ outbound.MealPlanRepository    = (*Store)(nil)
	_ outbound.UsageRecordRepository = (*Store)(nil)
	_ outbound.RecipeCatalog         = (*Store)(nil)
	_ outbound.UnitOfWork            = (*Store)(nil)
	_ outbound.MealRepository        = mealRepository{}
)

// mealRepository adapts the store to the meal port; the plan aggregate
// already claims the Create method name on Store itself.
type mealRepository struct {
	s *Store
}

func (m mealRepository) Create(ctx context.Context, meal *mealplan.Meal) error {
	return m.s.CreateMeal(ctx, meal)
}

// MealRepository returns the store's meal port.
func (s *Store) MealRepository() outbound.MealRepository {
	return mealRepository{s: s}
}

// Do runs fn against the store itself. The in-memory store offers no
// rollback; it exists for tests and single-process development.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, repos outbound.TxRepositories) error) error {
	return fn(ctx, outbound.TxRepositories{Lots: s, Plans: s, Meals: s.MealRepository(), Usages: s})
}

// AddLot seeds a lot.
func (s *Store) AddLot(lot *inventory.Lot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *lot
	s.lots[lot.ID] = &c
}

// Lot returns a copy of a stored lot.
func (s *Store) Lot(id uuid.UUID) (*inventory.Lot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.lots[id]
	if !ok {
		return nil, false
	}
	c := *l
	return &c, true
}

func (s *Store) ActiveByUser(ctx context.Context, userID uuid.UUID) ([]*inventory.Lot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*inventory.Lot
	for _, l := range s.lots {
		if l.UserID == userID && !l.Consumed && l.Quantity > 0 {
			c := *l
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s *Store) LockByUser(ctx context.Context, userID uuid.UUID) ([]*inventory.Lot, error) {
	return s.ActiveByUser(ctx, userID)
}

func (s *Store) Save(ctx context.Context, lot *inventory.Lot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *lot
	s.lots[lot.ID] = &c
	return nil
}

func (s *Store) Create(ctx context.Context, plan *mealplan.MealPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[plan.ID] = clonePlan(plan)
	return nil
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*mealplan.MealPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.plans[id]
	if !ok {
		return nil, nil
	}
	return clonePlan(p), nil
}

func (s *Store) FindByDay(ctx context.Context, dayID uuid.UUID) (*mealplan.MealPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.plans {
		for _, d := range p.PlanDays {
			if d.ID == dayID {
				return clonePlan(p), nil
			}
		}
	}
	return nil, nil
}

func (s *Store) FindBySlot(ctx context.Context, slotID uuid.UUID) (*mealplan.MealPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.plans {
		for _, d := range p.PlanDays {
			for _, sl := range d.Slots {
				if sl.ID == slotID {
					return clonePlan(p), nil
				}
			}
		}
	}
	return nil, nil
}

func (s *Store) LockDay(ctx context.Context, dayID uuid.UUID) (*mealplan.PlanDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.plans {
		for _, d := range p.PlanDays {
			if d.ID == dayID {
				return cloneDay(d), nil
			}
		}
	}
	return nil, nil
}

func (s *Store) UpdateDay(ctx context.Context, day *mealplan.PlanDay) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.plans {
		for i, d := range p.PlanDays {
			if d.ID == day.ID {
				p.PlanDays[i] = cloneDay(day)
				return nil
			}
		}
	}
	return nil
}

func (s *Store) UpdateSlot(ctx context.Context, slot *mealplan.PlanSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.plans {
		for _, d := range p.PlanDays {
			for i, sl := range d.Slots {
				if sl.ID == slot.ID {
					d.Slots[i] = cloneSlot(slot)
					return nil
				}
			}
		}
	}
	return nil
}

func (s *Store) UpdatePlan(ctx context.Context, plan *mealplan.MealPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.plans[plan.ID]; ok {
		existing.Confirmed = plan.Confirmed
		existing.ConfirmedAt = plan.ConfirmedAt
		existing.Partial = plan.Partial
		existing.FilledSlots = plan.FilledSlots
	}
	return nil
}

// CreateMeal stores a materialized meal.
func (s *Store) CreateMeal(ctx context.Context, meal *mealplan.Meal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *meal
	s.meals[meal.ID] = &c
	return nil
}

func (s *Store) Append(ctx context.Context, record *mealplan.UsageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *record
	s.usages = append(s.usages, &c)
	return nil
}

// Meals returns all materialized meals.
func (s *Store) Meals() []*mealplan.Meal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*mealplan.Meal, 0, len(s.meals))
	for _, m := range s.meals {
		c := *m
		out = append(out, &c)
	}
	return out
}

// Usages returns the appended usage records in order.
func (s *Store) Usages() []*mealplan.UsageRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*mealplan.UsageRecord, 0, len(s.usages))
	for _, u := range s.usages {
		c := *u
		out = append(out, &c)
	}
	return out
}

// SeedCatalog loads catalog recipes.
func (s *Store) SeedCatalog(recipes []outbound.CatalogRecipe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = append(s.catalog, recipes...)
}

// FindByTokens matches recipes whose normalized ingredients contain any of
// the tokens, capped at limit.
func (s *Store) FindByTokens(ctx context.Context, tokens []string, limit int) ([]outbound.CatalogRecipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		want[t] = struct{}{}
	}

	var out []outbound.CatalogRecipe
	for _, r := range s.catalog {
		if limit > 0 && len(out) >= limit {
			break
		}
		if recipeMatches(r, want) {
			out = append(out, r)
		}
	}
	return out, nil
}

func recipeMatches(r outbound.CatalogRecipe, want map[string]struct{}) bool {
	for _, ing := range r.Ingredients {
		token := ingredient.Normalize(ing)
		if token == "" {
			continue
		}
		if _, ok := want[token]; ok {
			return true
		}
		for w := range want {
			if strings.Contains(token, w) || strings.Contains(w, token) {
				return true
			}
		}
	}
	return false
}

func clonePlan(p *mealplan.MealPlan) *mealplan.MealPlan {
	c := *p
	c.PlanDays = make([]*mealplan.PlanDay, 0, len(p.PlanDays))
	for _, d := range p.PlanDays {
		c.PlanDays = append(c.PlanDays, cloneDay(d))
	}
	return &c
}

func cloneDay(d *mealplan.PlanDay) *mealplan.PlanDay {
	c := *d
	c.Slots = make([]*mealplan.PlanSlot, 0, len(d.Slots))
	for _, sl := range d.Slots {
		c.Slots = append(c.Slots, cloneSlot(sl))
	}
	return &c
}

func cloneSlot(sl *mealplan.PlanSlot) *mealplan.PlanSlot {
	c := *sl
	if sl.MealID != nil {
		id := *sl.MealID
		c.MealID = &id
	}
	if sl.OriginalRecipe != nil {
		orig := *sl.OriginalRecipe
		c.OriginalRecipe = &orig
	}
	c.PlannedUsages = append([]mealplan.PlannedUsage(nil), sl.PlannedUsages...)
	return &c
}
