package planning

import (
	"time"

	"github.com/google/uuid"

	"github.com/greenbite/engine/internal/domain/mealplan"
)

// repeatPenalty discounts a candidate's score each time it is reused to
// fill a slot after the ranked list runs out.
const repeatPenalty = 0.9

// AssemblyPolicy controls how the assembler reacts to a candidate shortage.
type AssemblyPolicy struct {
	// AllowRepeats cycles already-used candidates (at a score discount)
	// into remaining slots instead of leaving the plan partial.
	AllowRepeats bool
}

// Assemble walks the ranked candidates once across the day-by-slot grid and
// returns a draft plan. When candidates run out, the plan is marked partial
// unless the policy allows repeat fills.
func Assemble(userID uuid.UUID, startDate time.Time, days, mealsPerDay int, ranked []*Candidate, policy AssemblyPolicy) *mealplan.MealPlan {
	mealTimes := mealplan.SlotsPerDay(mealsPerDay)
	plan := &mealplan.MealPlan{
		ID:          uuid.New(),
		UserID:      userID,
		StartDate:   startDate,
		Days:        days,
		MealsPerDay: len(mealTimes),
		TotalSlots:  days * len(mealTimes),
	}

	next := 0
	var usedOrder []*Candidate

	for dayIdx := 0; dayIdx < days; dayIdx++ {
		day := &mealplan.PlanDay{
			ID:     uuid.New(),
			PlanID: plan.ID,
			Date:   startDate.AddDate(0, 0, dayIdx),
		}
		for _, mt := range mealTimes {
			slot := &mealplan.PlanSlot{
				ID:       uuid.New(),
				DayID:    day.ID,
				MealTime: mt,
			}
			if next < len(ranked) {
				c := ranked[next]
				next++
				slot.Draft = c.Draft()
				usedOrder = append(usedOrder, c)
				plan.FilledSlots++
			} else if policy.AllowRepeats && len(usedOrder) > 0 {
				c := usedOrder[(next-len(ranked))%len(usedOrder)]
				next++
				draft := c.Draft()
				draft.Score *= repeatPenalty
				draft.Source = mealplan.SourceRepeat
				slot.Draft = draft
				plan.FilledSlots++
			} else {
				slot.Skip()
			}
			day.Slots = append(day.Slots, slot)
		}
		plan.PlanDays = append(plan.PlanDays, day)
	}

	plan.Partial = plan.FilledSlots < plan.TotalSlots
	return plan
}
