// Package gorm provides GORM model definitions and repositories for the
// planning engine.
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LotModel represents the GORM model for ingredient lots
type LotModel struct {
	ID         uuid.UUID `gorm:"type:char(36);primaryKey"`
	UserID     uuid.UUID `gorm:"type:char(36);not null;index"`
	Name       string    `gorm:"type:varchar(255);not null"`
	Token      string    `gorm:"type:varchar(120);index"`
	Quantity   float64   `gorm:"not null;default:0"`
	Unit       string    `gorm:"type:varchar(20)"`
	ExpiryDate time.Time `gorm:"index"`
	Consumed   bool      `gorm:"default:false;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// MealPlanModel represents the GORM model for meal plans
type MealPlanModel struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey"`
	UserID      uuid.UUID `gorm:"type:char(36);not null;index"`
	StartDate   time.Time `gorm:"not null"`
	Days        int       `gorm:"not null"`
	MealsPerDay int       `gorm:"not null"`
	Partial     bool      `gorm:"default:false"`
	FilledSlots int       `gorm:"default:0"`
	TotalSlots  int       `gorm:"default:0"`
	Confirmed   bool      `gorm:"default:false;index"`
	ConfirmedAt *time.Time
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time

	// Relationships
	PlanDays []PlanDayModel `gorm:"foreignKey:PlanID"`
}

// PlanDayModel represents the GORM model for plan days
type PlanDayModel struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey"`
	PlanID      uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_plan_date"`
	Date        time.Time `gorm:"not null;uniqueIndex:idx_plan_date"`
	Confirmed   bool      `gorm:"default:false"`
	ConfirmedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Relationships
	Slots []PlanSlotModel `gorm:"foreignKey:DayID"`
}

// PlanSlotModel represents the GORM model for plan slots
type PlanSlotModel struct {
	ID       uuid.UUID `gorm:"type:char(36);primaryKey"`
	DayID    uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_day_mealtime"`
	MealTime string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_day_mealtime"`

	// Draft recipe snapshot
	Title        string      `gorm:"type:varchar(255)"`
	Ingredients  StringSlice `gorm:"type:json"`
	Instructions string      `gorm:"type:text"`
	Cuisine      string      `gorm:"type:varchar(100)"`
	Calories     *int
	Servings     *int
	Photo        string  `gorm:"type:text"`
	ExternalID   string  `gorm:"type:varchar(64)"`
	Score        float64 `gorm:"default:0"`
	Source       string  `gorm:"type:varchar(20)"`

	MealID         *uuid.UUID `gorm:"type:char(36);index"`
	Skipped        bool       `gorm:"default:false"`
	Replaced       bool       `gorm:"default:false"`
	OriginalRecipe JSONField  `gorm:"type:json"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Relationships
	PlannedUsages []PlannedUsageModel `gorm:"foreignKey:SlotID"`
}

// PlannedUsageModel represents the GORM model for slot-to-lot usage links
type PlannedUsageModel struct {
	ID         uuid.UUID `gorm:"type:char(36);primaryKey"`
	SlotID     uuid.UUID `gorm:"type:char(36);not null;index"`
	LotID      uuid.UUID `gorm:"type:char(36);not null;index"`
	Ingredient string    `gorm:"type:varchar(255)"`
	Quantity   float64   `gorm:"not null;default:0"`
}

// MealModel represents the GORM model for materialized meals
type MealModel struct {
	ID           uuid.UUID   `gorm:"type:char(36);primaryKey"`
	UserID       uuid.UUID   `gorm:"type:char(36);not null;index"`
	Title        string      `gorm:"type:varchar(255);not null"`
	Ingredients  StringSlice `gorm:"type:json"`
	Instructions string      `gorm:"type:text"`
	Cuisine      string      `gorm:"type:varchar(100)"`
	Calories     *int
	Servings     *int
	Photo        string    `gorm:"type:text"`
	ExternalID   string    `gorm:"type:varchar(64)"`
	MealTime     string    `gorm:"type:varchar(20);not null"`
	Date         time.Time `gorm:"index"`
	Source       string    `gorm:"type:varchar(20)"`
	CreatedAt    time.Time `gorm:"index"`
}

// UsageRecordModel represents the GORM model for inventory deductions
type UsageRecordModel struct {
	ID         uuid.UUID  `gorm:"type:char(36);primaryKey"`
	UserID     uuid.UUID  `gorm:"type:char(36);not null;index"`
	LotID      uuid.UUID  `gorm:"type:char(36);not null;index"`
	MealID     *uuid.UUID `gorm:"type:char(36);index"`
	Ingredient string     `gorm:"type:varchar(120)"`
	Quantity   float64    `gorm:"not null;default:0"`
	Shortage   float64    `gorm:"default:0"`
	UsedAt     time.Time  `gorm:"index"`
}

// CatalogRecipeModel represents the GORM model for stored catalog recipes
type CatalogRecipeModel struct {
	ID           uuid.UUID   `gorm:"type:char(36);primaryKey"`
	Title        string      `gorm:"type:varchar(255);not null;index"`
	Ingredients  StringSlice `gorm:"type:json"`
	Tokens       StringSlice `gorm:"type:json"`
	Instructions string      `gorm:"type:text"`
	Thumbnail    string      `gorm:"type:text"`
	Cuisine      string      `gorm:"type:varchar(100);index"`
	Category     string      `gorm:"type:varchar(100);index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StringSlice custom type for handling string slices in JSON
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	return json.Marshal(s)
}

// JSONField custom type for handling JSON fields
type JSONField map[string]interface{}

// Scan implements the sql.Scanner interface
func (j *JSONField) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return fmt.Errorf("cannot scan %T into JSONField", value)
	}
}

// Value implements the driver.Valuer interface
func (j JSONField) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// BeforeCreate hook for LotModel
func (l *LotModel) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for MealPlanModel
func (m *MealPlanModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for PlanDayModel
func (d *PlanDayModel) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for PlanSlotModel
func (s *PlanSlotModel) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for MealModel
func (m *MealModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for UsageRecordModel
func (u *UsageRecordModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for LotModel
func (LotModel) TableName() string {
	return "lots"
}

// TableName returns the table name for MealPlanModel
func (MealPlanModel) TableName() string {
	return "meal_plans"
}

// TableName returns the table name for PlanDayModel
func (PlanDayModel) TableName() string {
	return "plan_days"
}

// TableName returns the table name for PlanSlotModel
func (PlanSlotModel) TableName() string {
	return "plan_slots"
}

// TableName returns the table name for PlannedUsageModel
func (PlannedUsageModel) TableName() string {
	return "planned_usages"
}

// TableName returns the table name for MealModel
func (MealModel) TableName() string {
	return "meals"
}

// TableName returns the table name for UsageRecordModel
func (UsageRecordModel) TableName() string {
	return "usage_records"
}

// TableName returns the table name for CatalogRecipeModel
func (CatalogRecipeModel) TableName() string {
	return "catalog_recipes"
}

// AllModels lists every model for automigration.
func AllModels() []interface{} {
	return []interface{}{
		&LotModel{},
		&MealPlanModel{},
		&PlanDayModel{},
		&PlanSlotModel{},
		&PlannedUsageModel{},
		&MealModel{},
		&UsageRecordModel{},
		&CatalogRecipeModel{},
	}
}
