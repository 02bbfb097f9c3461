package gorm

import (
	"github.com/greenbite/engine/internal/domain/inventory"
	"github.com/greenbite/engine/internal/domain/mealplan"
	"github.com/greenbite/engine/internal/ports/outbound"
)

func lotToModel(l *inventory.Lot) *LotModel {
	return &LotModel{
		ID:         l.ID,
		UserID:     l.UserID,
		Name:       l.Name,
		Token:      l.Token,
		Quantity:   l.Quantity,
		Unit:       l.Unit,
		ExpiryDate: l.ExpiryDate,
		Consumed:   l.Consumed,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}

func lotToDomain(m *LotModel) *inventory.Lot {
	return &inventory.Lot{
		ID:         m.ID,
		UserID:     m.UserID,
		Name:       m.Name,
		Token:      m.Token,
		Quantity:   m.Quantity,
		Unit:       m.Unit,
		ExpiryDate: m.ExpiryDate,
		Consumed:   m.Consumed,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func planToModel(p *mealplan.MealPlan) *MealPlanModel {
	model := &MealPlanModel{
		ID:          p.ID,
		UserID:      p.UserID,
		StartDate:   p.StartDate,
		Days:        p.Days,
		MealsPerDay: p.MealsPerDay,
		Partial:     p.Partial,
		FilledSlots: p.FilledSlots,
		TotalSlots:  p.TotalSlots,
		Confirmed:   p.Confirmed,
		ConfirmedAt: p.ConfirmedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for _, d := range p.PlanDays {
		model.PlanDays = append(model.PlanDays, *dayToModel(d))
	}
	return model
}

func planToDomain(m *MealPlanModel) *mealplan.MealPlan {
	plan := &mealplan.MealPlan{
		ID:          m.ID,
		UserID:      m.UserID,
		StartDate:   m.StartDate,
		Days:        m.Days,
		MealsPerDay: m.MealsPerDay,
		Partial:     m.Partial,
		FilledSlots: m.FilledSlots,
		TotalSlots:  m.TotalSlots,
		Confirmed:   m.Confirmed,
		ConfirmedAt: m.ConfirmedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	for i := range m.PlanDays {
		plan.PlanDays = append(plan.PlanDays, dayToDomain(&m.PlanDays[i]))
	}
	return plan
}

func dayToModel(d *mealplan.PlanDay) *PlanDayModel {
	model := &PlanDayModel{
		ID:          d.ID,
		PlanID:      d.PlanID,
		Date:        d.Date,
		Confirmed:   d.Confirmed,
		ConfirmedAt: d.ConfirmedAt,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	for _, s := range d.Slots {
		model.Slots = append(model.Slots, *slotToModel(s))
	}
	return model
}

func dayToDomain(m *PlanDayModel) *mealplan.PlanDay {
	day := &mealplan.PlanDay{
		ID:          m.ID,
		PlanID:      m.PlanID,
		Date:        m.Date,
		Confirmed:   m.Confirmed,
		ConfirmedAt: m.ConfirmedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	for i := range m.Slots {
		day.Slots = append(day.Slots, slotToDomain(&m.Slots[i]))
	}
	return day
}

func slotToModel(s *mealplan.PlanSlot) *PlanSlotModel {
	model := &PlanSlotModel{
		ID:           s.ID,
		DayID:        s.DayID,
		MealTime:     string(s.MealTime),
		Title:        s.Draft.Title,
		Ingredients:  StringSlice(s.Draft.Ingredients),
		Instructions: s.Draft.Instructions,
		Cuisine:      s.Draft.Cuisine,
		Calories:     s.Draft.Calories,
		Servings:     s.Draft.Servings,
		Photo:        s.Draft.Photo,
		ExternalID:   s.Draft.ExternalID,
		Score:        s.Draft.Score,
		Source:       string(s.Draft.Source),
		MealID:       s.MealID,
		Skipped:      s.Skipped,
		Replaced:     s.Replaced,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
	if s.OriginalRecipe != nil {
		original := JSONField{
			"title":        s.OriginalRecipe.Title,
			"ingredients":  s.OriginalRecipe.Ingredients,
			"instructions": s.OriginalRecipe.Instructions,
			"cuisine":      s.OriginalRecipe.Cuisine,
			"photo":        s.OriginalRecipe.Photo,
			"external_id":  s.OriginalRecipe.ExternalID,
			"score":        s.OriginalRecipe.Score,
			"source":       string(s.OriginalRecipe.Source),
		}
		if s.OriginalRecipe.Calories != nil {
			original["calories"] = *s.OriginalRecipe.Calories
		}
		if s.OriginalRecipe.Servings != nil {
			original["servings"] = *s.OriginalRecipe.Servings
		}
		model.OriginalRecipe = original
	}
	for _, pu := range s.PlannedUsages {
		model.PlannedUsages = append(model.PlannedUsages, PlannedUsageModel{
			ID:         pu.ID,
			SlotID:     pu.SlotID,
			LotID:      pu.LotID,
			Ingredient: pu.Ingredient,
			Quantity:   pu.Quantity,
		})
	}
	return model
}

func slotToDomain(m *PlanSlotModel) *mealplan.PlanSlot {
	slot := &mealplan.PlanSlot{
		ID:       m.ID,
		DayID:    m.DayID,
		MealTime: mealplan.MealTime(m.MealTime),
		Draft: mealplan.RecipeDraft{
			Title:        m.Title,
			Ingredients:  []string(m.Ingredients),
			Instructions: m.Instructions,
			Cuisine:      m.Cuisine,
			Calories:     m.Calories,
			Servings:     m.Servings,
			Photo:        m.Photo,
			ExternalID:   m.ExternalID,
			Score:        m.Score,
			Source:       mealplan.CandidateSource(m.Source),
		},
		MealID:    m.MealID,
		Skipped:   m.Skipped,
		Replaced:  m.Replaced,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.OriginalRecipe != nil {
		slot.OriginalRecipe = originalFromJSON(m.OriginalRecipe)
	}
	for _, pu := range m.PlannedUsages {
		slot.PlannedUsages = append(slot.PlannedUsages, mealplan.PlannedUsage{
			ID:         pu.ID,
			SlotID:     pu.SlotID,
			LotID:      pu.LotID,
			Ingredient: pu.Ingredient,
			Quantity:   pu.Quantity,
		})
	}
	return slot
}

func originalFromJSON(j JSONField) *mealplan.RecipeDraft {
	draft := &mealplan.RecipeDraft{}
	if v, ok := j["title"].(string); ok {
		draft.Title = v
	}
	if v, ok := j["instructions"].(string); ok {
		draft.Instructions = v
	}
	if v, ok := j["cuisine"].(string); ok {
		draft.Cuisine = v
	}
	if v, ok := j["photo"].(string); ok {
		draft.Photo = v
	}
	if v, ok := j["external_id"].(string); ok {
		draft.ExternalID = v
	}
	if v, ok := j["calories"].(float64); ok {
		calories := int(v)
		draft.Calories = &calories
	}
	if v, ok := j["servings"].(float64); ok {
		servings := int(v)
		draft.Servings = &servings
	}
	if v, ok := j["score"].(float64); ok {
		draft.Score = v
	}
	if v, ok := j["source"].(string); ok {
		draft.Source = mealplan.CandidateSource(v)
	}
	if raw, ok := j["ingredients"].([]interface{}); ok {
		for _, item := range raw {
			if s, ok := item.(string); ok {
				draft.Ingredients = append(draft.Ingredients, s)
			}
		}
	}
	return draft
}

func mealToModel(m *mealplan.Meal) *MealModel {
	return &MealModel{
		ID:           m.ID,
		UserID:       m.UserID,
		Title:        m.Title,
		Ingredients:  StringSlice(m.Ingredients),
		Instructions: m.Instructions,
		Cuisine:      m.Cuisine,
		Calories:     m.Calories,
		Servings:     m.Servings,
		Photo:        m.Photo,
		ExternalID:   m.ExternalID,
		MealTime:     string(m.MealTime),
		Date:         m.Date,
		Source:       string(m.Source),
		CreatedAt:    m.CreatedAt,
	}
}

func usageToModel(u *mealplan.UsageRecord) *UsageRecordModel {
	return &UsageRecordModel{
		ID:         u.ID,
		UserID:     u.UserID,
		LotID:      u.LotID,
		MealID:     u.MealID,
		Ingredient: u.Ingredient,
		Quantity:   u.Quantity,
		Shortage:   u.Shortage,
		UsedAt:     u.UsedAt,
	}
}

func catalogToPort(m *CatalogRecipeModel) outbound.CatalogRecipe {
	return outbound.CatalogRecipe{
		ID:           m.ID,
		Title:        m.Title,
		Ingredients:  []string(m.Ingredients),
		Instructions: m.Instructions,
		Thumbnail:    m.Thumbnail,
		Cuisine:      m.Cuisine,
		Category:     m.Category,
	}
}
