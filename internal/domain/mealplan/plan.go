// Package mealplan holds the meal plan aggregate: a plan of days, each day a
// fixed set of meal-time slots carrying recipe drafts until confirmation
// materializes them into meals and deducts inventory.
package mealplan

import (
	"time"

	"github.com/google/uuid"
)

// MealTime identifies a slot within a day.
type MealTime string

const (
	Breakfast MealTime = "breakfast"
	Lunch     MealTime = "lunch"
	Dinner    MealTime = "dinner"
	Snack     MealTime = "snack"
)

// MealTimeOrder is the canonical slot order; a plan with N meals per day
// takes the first N entries.
var MealTimeOrder = []MealTime{Breakfast, Lunch, Dinner, Snack}

// SlotsPerDay returns the meal times for a day, in order.
func SlotsPerDay(mealsPerDay int) []MealTime {
	if mealsPerDay < 1 {
		mealsPerDay = 1
	}
	if mealsPerDay > len(MealTimeOrder) {
		mealsPerDay = len(MealTimeOrder)
	}
	return MealTimeOrder[:mealsPerDay]
}

// CandidateSource records where a slot's recipe came from.
type CandidateSource string

const (
	SourceCatalog   CandidateSource = "catalog"
	SourceGenerated CandidateSource = "generated"
	SourceRepeat    CandidateSource = "repeat"
)

// RecipeDraft is the slot-level snapshot of an assigned candidate. Drafts
// are plain data; no meal row exists until the day is confirmed.
// Cuisine, calories, servings, photo and external id are pass-through
// metadata from the candidate's source, never computed here.
type RecipeDraft struct {
	Title        string
	Ingredients  []string
	Instructions string
	Cuisine      string
	Calories     *int
	Servings     *int
	Photo        string
	ExternalID   string
	Score        float64
	Source       CandidateSource
}

// PlannedUsage links a slot to a specific lot it intends to draw from.
// Ingredient denormalizes the lot's name at link time so shortage warnings
// stay readable even after the lot is gone.
type PlannedUsage struct {
	ID         uuid.UUID
	SlotID     uuid.UUID
	LotID      uuid.UUID
	Ingredient string
	Quantity   float64
}

// PlanSlot is one meal assignment within a day.
type PlanSlot struct {
	ID             uuid.UUID
	DayID          uuid.UUID
	MealTime       MealTime
	Draft          RecipeDraft
	MealID         *uuid.UUID
	Skipped        bool
	Replaced       bool
	OriginalRecipe *RecipeDraft
	PlannedUsages  []PlannedUsage
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Skip excludes the slot from confirmation. Skipping after the day is
// confirmed is rejected upstream.
func (s *PlanSlot) Skip() {
	s.Skipped = true
}

// ApplyReplacement swaps the slot's draft for a new one, preserving the
// very first draft as the original across any number of replacements.
func (s *PlanSlot) ApplyReplacement(draft RecipeDraft) {
	if s.OriginalRecipe == nil {
		original := s.Draft
		s.OriginalRecipe = &original
	}
	s.Draft = draft
	s.Replaced = true
	s.MealID = nil
}

// Materialize binds a meal row to the slot. It is idempotent: a slot that
// already points at a meal keeps it, so a retried confirmation never
// duplicates meals.
func (s *PlanSlot) Materialize(meal *Meal) bool {
	if s.MealID != nil {
		return false
	}
	id := meal.ID
	s.MealID = &id
	return true
}

// Meal is the persistent record created when a slot is confirmed.
type Meal struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Title        string
	Ingredients  []string
	Instructions string
	Cuisine      string
	Calories     *int
	Servings     *int
	Photo        string
	ExternalID   string
	MealTime     MealTime
	Date         time.Time
	Source       CandidateSource
	CreatedAt    time.Time
}

// PlanDay groups one calendar day's slots. Confirmation is per-day and
// terminal.
type PlanDay struct {
	ID          uuid.UUID
	PlanID      uuid.UUID
	Date        time.Time
	Slots       []*PlanSlot
	Confirmed   bool
	ConfirmedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Confirm flips the day into its terminal confirmed state.
func (d *PlanDay) Confirm(now time.Time) error {
	if d.Confirmed {
		return ErrDayConfirmed
	}
	d.Confirmed = true
	at := now
	d.ConfirmedAt = &at
	return nil
}

// Slot returns the day's slot for a meal time.
func (d *PlanDay) Slot(mealTime MealTime) (*PlanSlot, bool) {
	for _, s := range d.Slots {
		if s.MealTime == mealTime {
			return s, true
		}
	}
	return nil, false
}

// ActiveSlots returns the slots that participate in confirmation.
func (d *PlanDay) ActiveSlots() []*PlanSlot {
	active := make([]*PlanSlot, 0, len(d.Slots))
	for _, s := range d.Slots {
		if !s.Skipped {
			active = append(active, s)
		}
	}
	return active
}

// MealPlan is the aggregate root spanning consecutive days.
type MealPlan struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	StartDate   time.Time
	Days        int
	MealsPerDay int
	Partial     bool
	FilledSlots int
	TotalSlots  int
	Confirmed   bool
	ConfirmedAt *time.Time
	PlanDays    []*PlanDay
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DayByID finds a day within the plan.
func (p *MealPlan) DayByID(dayID uuid.UUID) (*PlanDay, bool) {
	for _, d := range p.PlanDays {
		if d.ID == dayID {
			return d, true
		}
	}
	return nil, false
}

// DayByDate finds the day covering a calendar date.
func (p *MealPlan) DayByDate(date time.Time) (*PlanDay, bool) {
	y, m, dd := date.Date()
	for _, d := range p.PlanDays {
		dy, dm, ddd := d.Date.Date()
		if dy == y && dm == m && ddd == dd {
			return d, true
		}
	}
	return nil, false
}

// AllDaysConfirmed reports whether every day reached its terminal state.
func (p *MealPlan) AllDaysConfirmed() bool {
	for _, d := range p.PlanDays {
		if !d.Confirmed {
			return false
		}
	}
	return len(p.PlanDays) > 0
}

// UsageRecord is the audit trail of one inventory deduction made during
// confirmation.
type UsageRecord struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	LotID      uuid.UUID
	MealID     *uuid.UUID
	Ingredient string
	Quantity   float64
	Shortage   float64
	UsedAt     time.Time
}
