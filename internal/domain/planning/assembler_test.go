package planning

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbite/engine/internal/domain/mealplan"
)

func namedCandidates(titles ...string) []*Candidate {
	out := make([]*Candidate, 0, len(titles))
	for i, title := range titles {
		out = append(out, &Candidate{
			Title:       title,
			Ingredients: []string{"rice"},
			Source:      mealplan.SourceCatalog,
			Score:       float64(20 - i),
		})
	}
	return out
}

func TestAssembleFillsGridInRankedOrder(t *testing.T) {
	ranked := namedCandidates("A", "B", "C", "D")
	plan := Assemble(uuid.New(), today, 2, 2, ranked, AssemblyPolicy{})

	require.Len(t, plan.PlanDays, 2)
	assert.Equal(t, 4, plan.TotalSlots)
	assert.Equal(t, 4, plan.FilledSlots)
	assert.False(t, plan.Partial)

	day1 := plan.PlanDays[0]
	require.Len(t, day1.Slots, 2)
	assert.Equal(t, mealplan.Breakfast, day1.Slots[0].MealTime)
	assert.Equal(t, "A", day1.Slots[0].Draft.Title)
	assert.Equal(t, mealplan.Lunch, day1.Slots[1].MealTime)
	assert.Equal(t, "B", day1.Slots[1].Draft.Title)

	day2 := plan.PlanDays[1]
	assert.Equal(t, "C", day2.Slots[0].Draft.Title)
	assert.Equal(t, "D", day2.Slots[1].Draft.Title)
	assert.Equal(t, today.AddDate(0, 0, 1), day2.Date)
}

func TestAssemblePartialWhenCandidatesRunOut(t *testing.T) {
	ranked := namedCandidates("A", "B", "C")
	plan := Assemble(uuid.New(), today, 2, 2, ranked, AssemblyPolicy{})

	assert.Equal(t, 3, plan.FilledSlots)
	assert.Equal(t, 4, plan.TotalSlots)
	assert.True(t, plan.Partial)

	last := plan.PlanDays[1].Slots[1]
	assert.True(t, last.Skipped)
	assert.Empty(t, last.Draft.Title)
}

func TestAssembleRepeatFill(t *testing.T) {
	ranked := namedCandidates("A", "B")
	plan := Assemble(uuid.New(), today, 2, 2, ranked, AssemblyPolicy{AllowRepeats: true})

	assert.Equal(t, 4, plan.FilledSlots)
	assert.False(t, plan.Partial)

	repeat1 := plan.PlanDays[1].Slots[0]
	assert.Equal(t, "A", repeat1.Draft.Title)
	assert.Equal(t, mealplan.SourceRepeat, repeat1.Draft.Source)
	assert.InDelta(t, 20*0.9, repeat1.Draft.Score, 0.001)

	repeat2 := plan.PlanDays[1].Slots[1]
	assert.Equal(t, "B", repeat2.Draft.Title)
	assert.Equal(t, mealplan.SourceRepeat, repeat2.Draft.Source)
}

func TestAssembleRepeatFillWithNoCandidatesStaysPartial(t *testing.T) {
	plan := Assemble(uuid.New(), today, 1, 2, nil, AssemblyPolicy{AllowRepeats: true})

	assert.Zero(t, plan.FilledSlots)
	assert.True(t, plan.Partial)
	for _, s := range plan.PlanDays[0].Slots {
		assert.True(t, s.Skipped)
	}
}

func TestAssembleClampsMealsPerDay(t *testing.T) {
	ranked := namedCandidates("A", "B", "C", "D", "E")
	plan := Assemble(uuid.New(), today, 1, 9, ranked, AssemblyPolicy{})

	assert.Equal(t, 4, plan.MealsPerDay)
	require.Len(t, plan.PlanDays[0].Slots, 4)
	assert.Equal(t, mealplan.Snack, plan.PlanDays[0].Slots[3].MealTime)
}
