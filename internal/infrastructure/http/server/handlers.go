package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	apperrors "github.com/greenbite/engine/pkg/errors"

	"github.com/greenbite/engine/internal/domain/mealplan"
	"github.com/greenbite/engine/internal/ports/inbound"
)

// userIDHeader carries the authenticated user id; authentication itself
// happens upstream of this service.
const userIDHeader = "X-User-ID"

type generatePlanRequest struct {
	StartDate      string `json:"start_date"`
	Days           int    `json:"days"`
	MealsPerDay    int    `json:"meals_per_day"`
	AllowGenerated bool   `json:"allow_generated"`
	AllowRepeats   bool   `json:"allow_repeats"`
}

func (s *Server) parseGenerateCommand(r *http.Request) (inbound.GeneratePlanCommand, error) {
	userID, err := userID(r)
	if err != nil {
		return inbound.GeneratePlanCommand{}, err
	}

	var req generatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return inbound.GeneratePlanCommand{}, apperrors.NewValidationError("invalid request body")
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return inbound.GeneratePlanCommand{}, apperrors.NewValidationError("start_date must be YYYY-MM-DD")
	}

	return inbound.GeneratePlanCommand{
		UserID:         userID,
		StartDate:      start,
		Days:           req.Days,
		MealsPerDay:    req.MealsPerDay,
		AllowGenerated: req.AllowGenerated,
		AllowRepeats:   req.AllowRepeats,
	}, nil
}

func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	cmd, err := s.parseGenerateCommand(r)
	if err != nil {
		writeError(w, err)
		return
	}
	plan, err := s.planner.GeneratePlan(r.Context(), cmd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, planResponse(plan))
}

func (s *Server) handleGeneratePlanAsync(w http.ResponseWriter, r *http.Request) {
	cmd, err := s.parseGenerateCommand(r)
	if err != nil {
		writeError(w, err)
		return
	}
	job, err := s.planner.GeneratePlanAsync(r.Context(), cmd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	userID, jobID, err := userAndPathID(r, "jobID")
	if err != nil {
		writeError(w, err)
		return
	}
	job, err := s.planner.GetJob(r.Context(), userID, jobID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	userID, planID, err := userAndPathID(r, "planID")
	if err != nil {
		writeError(w, err)
		return
	}
	plan, err := s.planner.GetPlan(r.Context(), userID, planID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, planResponse(plan))
}

func (s *Server) handleConfirmPlan(w http.ResponseWriter, r *http.Request) {
	userID, planID, err := userAndPathID(r, "planID")
	if err != nil {
		writeError(w, err)
		return
	}
	results, err := s.planner.ConfirmPlan(r.Context(), userID, planID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"days": results})
}

func (s *Server) handleConfirmDay(w http.ResponseWriter, r *http.Request) {
	userID, dayID, err := userAndPathID(r, "dayID")
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := s.planner.ConfirmDay(r.Context(), userID, dayID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handlePreviewDay(w http.ResponseWriter, r *http.Request) {
	userID, dayID, err := userAndPathID(r, "dayID")
	if err != nil {
		writeError(w, err)
		return
	}
	preview, err := s.planner.PreviewDay(r.Context(), userID, dayID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

type replaceSlotRequest struct {
	AllowGenerated bool `json:"allow_generated"`
}

func (s *Server) handleReplaceSlot(w http.ResponseWriter, r *http.Request) {
	userID, slotID, err := userAndPathID(r, "slotID")
	if err != nil {
		writeError(w, err)
		return
	}
	// The body is optional; an absent one means catalog-only replacement.
	var req replaceSlotRequest
	if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil && decodeErr != io.EOF {
		writeError(w, apperrors.NewValidationError("invalid request body"))
		return
	}
	slot, err := s.planner.ReplaceSlot(r.Context(), userID, slotID, req.AllowGenerated)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, slotResponse(slot))
}

func (s *Server) handleSkipSlot(w http.ResponseWriter, r *http.Request) {
	userID, slotID, err := userAndPathID(r, "slotID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.planner.SkipSlot(r.Context(), userID, slotID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func userID(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get(userIDHeader)
	if raw == "" {
		return uuid.Nil, apperrors.NewValidationError("missing " + userIDHeader + " header")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.NewValidationError("invalid " + userIDHeader + " header")
	}
	return id, nil
}

func userAndPathID(r *http.Request, param string) (uuid.UUID, uuid.UUID, error) {
	uid, err := userID(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	pathID, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, uuid.Nil, apperrors.NewValidationError("invalid " + param)
	}
	return uid, pathID, nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		writeJSON(w, appErr.StatusCode(), map[string]interface{}{
			"error": map[string]interface{}{
				"code":    appErr.Code,
				"message": appErr.Message,
				"details": appErr.Details,
			},
		})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    apperrors.CodeInternal,
			"message": "internal error",
		},
	})
}

// Response shapes keep internal domain fields out of the wire format.

type slotDTO struct {
	ID             uuid.UUID    `json:"id"`
	MealTime       string       `json:"meal_time"`
	Title          string       `json:"title"`
	Ingredients    []string     `json:"ingredients"`
	Instructions   string       `json:"instructions,omitempty"`
	Cuisine        string       `json:"cuisine,omitempty"`
	Calories       *int         `json:"calories,omitempty"`
	Servings       *int         `json:"servings,omitempty"`
	Photo          string       `json:"photo,omitempty"`
	ExternalID     string       `json:"external_id,omitempty"`
	Score          float64      `json:"score"`
	Source         string       `json:"source"`
	MealID         *uuid.UUID   `json:"meal_id,omitempty"`
	Skipped        bool         `json:"skipped"`
	Replaced       bool         `json:"replaced"`
	OriginalRecipe *originalDTO `json:"original_recipe,omitempty"`
}

type originalDTO struct {
	Title      string  `json:"title"`
	Cuisine    string  `json:"cuisine,omitempty"`
	Photo      string  `json:"photo,omitempty"`
	ExternalID string  `json:"external_id,omitempty"`
	Score      float64 `json:"score"`
	Source     string  `json:"source"`
}

type dayDTO struct {
	ID          uuid.UUID  `json:"id"`
	Date        string     `json:"date"`
	Confirmed   bool       `json:"confirmed"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	Slots       []slotDTO  `json:"slots"`
}

type planDTO struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	StartDate   string     `json:"start_date"`
	Days        int        `json:"days"`
	MealsPerDay int        `json:"meals_per_day"`
	Partial     bool       `json:"partial"`
	FilledSlots int        `json:"filled_slots"`
	TotalSlots  int        `json:"total_slots"`
	Confirmed   bool       `json:"confirmed"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	PlanDays    []dayDTO   `json:"plan_days"`
}

func slotResponse(s *mealplan.PlanSlot) slotDTO {
	dto := slotDTO{
		ID:           s.ID,
		MealTime:     string(s.MealTime),
		Title:        s.Draft.Title,
		Ingredients:  s.Draft.Ingredients,
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
	}
	if s.OriginalRecipe != nil {
		dto.OriginalRecipe = &originalDTO{
			Title:      s.OriginalRecipe.Title,
			Cuisine:    s.OriginalRecipe.Cuisine,
			Photo:      s.OriginalRecipe.Photo,
			ExternalID: s.OriginalRecipe.ExternalID,
			Score:      s.OriginalRecipe.Score,
			Source:     string(s.OriginalRecipe.Source),
		}
	}
	return dto
}

func planResponse(p *mealplan.MealPlan) planDTO {
	dto := planDTO{
		ID:          p.ID,
		UserID:      p.UserID,
		StartDate:   p.StartDate.Format("2006-01-02"),
		Days:        p.Days,
		MealsPerDay: p.MealsPerDay,
		Partial:     p.Partial,
		FilledSlots: p.FilledSlots,
		TotalSlots:  p.TotalSlots,
		Confirmed:   p.Confirmed,
		ConfirmedAt: p.ConfirmedAt,
	}
	for _, d := range p.PlanDays {
		day := dayDTO{
			ID:          d.ID,
			Date:        d.Date.Format("2006-01-02"),
			Confirmed:   d.Confirmed,
			ConfirmedAt: d.ConfirmedAt,
		}
		for _, sl := range d.Slots {
			day.Slots = append(day.Slots, slotResponse(sl))
		}
		dto.PlanDays = append(dto.PlanDays, day)
	}
	return dto
}
