// Package inbound declares the driving-side port of the planning engine:
// the operations adapters (HTTP, jobs) invoke on the application core.
package inbound

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/greenbite/engine/internal/domain/mealplan"
)

// GeneratePlanCommand carries the parameters of a plan generation request.
type GeneratePlanCommand struct {
	UserID         uuid.UUID `validate:"required"`
	StartDate      time.Time `validate:"required"`
	Days           int       `validate:"min=1,max=30"`
	MealsPerDay    int       `validate:"min=1,max=4"`
	AllowGenerated bool
	AllowRepeats   bool
}

// JobState is the lifecycle phase of an async generation job.
type JobState string

const (
	JobQueued  JobState = "queued"
	JobRunning JobState = "running"
	JobDone    JobState = "done"
	JobFailed  JobState = "failed"
)

// JobStatus is the pollable view of an async generation job.
type JobStatus struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	State     JobState   `json:"state"`
	PlanID    *uuid.UUID `json:"plan_id,omitempty"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ConfirmDayResult summarizes what one day's confirmation did.
type ConfirmDayResult struct {
	DayID        uuid.UUID   `json:"day_id"`
	MealsCreated int         `json:"meals_created"`
	Deductions   []Deduction `json:"deductions"`
	Shortages    []Shortage  `json:"shortages"`
}

// Deduction is one quantity taken from one lot.
type Deduction struct {
	LotID      uuid.UUID `json:"lot_id"`
	Ingredient string    `json:"ingredient"`
	Quantity   float64   `json:"quantity"`
}

// Shortage is demand that could not be met from inventory.
type Shortage struct {
	Ingredient string  `json:"ingredient"`
	Missing    float64 `json:"missing"`
}

// DayPreview shows what confirming a day would deduct, without mutating
// anything.
type DayPreview struct {
	DayID      uuid.UUID   `json:"day_id"`
	Deductions []Deduction `json:"deductions"`
	Shortages  []Shortage  `json:"shortages"`
}

// PlannerService is the engine's public operation surface.
type PlannerService interface {
	// GeneratePlan synchronously builds and persists a draft plan.
	GeneratePlan(ctx context.Context, cmd GeneratePlanCommand) (*mealplan.MealPlan, error)
	// GeneratePlanAsync enqueues generation and returns a pollable job id.
	GeneratePlanAsync(ctx context.Context, cmd GeneratePlanCommand) (*JobStatus, error)
	GetJob(ctx context.Context, userID, jobID uuid.UUID) (*JobStatus, error)
	GetPlan(ctx context.Context, userID, planID uuid.UUID) (*mealplan.MealPlan, error)
	// ConfirmDay materializes a day's meals and deducts inventory in one
	// transaction.
	ConfirmDay(ctx context.Context, userID, dayID uuid.UUID) (*ConfirmDayResult, error)
	// ConfirmPlan confirms every unconfirmed day of a plan in order.
	ConfirmPlan(ctx context.Context, userID, planID uuid.UUID) ([]ConfirmDayResult, error)
	// PreviewDay computes the deductions a confirmation would make.
	PreviewDay(ctx context.Context, userID, dayID uuid.UUID) (*DayPreview, error)
	// ReplaceSlot swaps a slot's recipe for the best distinct alternative.
	// allowGenerated opts in to AI-generated fallback candidates.
	ReplaceSlot(ctx context.Context, userID, slotID uuid.UUID, allowGenerated bool) (*mealplan.PlanSlot, error)
	SkipSlot(ctx context.Context, userID, slotID uuid.UUID) error
}
