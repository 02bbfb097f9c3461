// Package inventory models stored ingredient lots and point-in-time views
// over them used during plan generation and confirmation.
package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/greenbite/engine/internal/domain/ingredient"
)

// Lot is a dated quantity of a single ingredient belonging to one user.
// Token carries the canonical matching form of Name.
type Lot struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Name       string
	Token      string
	Quantity   float64
	Unit       string
	ExpiryDate time.Time
	Consumed   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewLot builds a lot with its matching token derived from the name.
func NewLot(userID uuid.UUID, name string, quantity float64, unit string, expiry time.Time) *Lot {
	return &Lot{
		ID:         uuid.New(),
		UserID:     userID,
		Name:       name,
		Token:      ingredient.Normalize(name),
		Quantity:   quantity,
		Unit:       unit,
		ExpiryDate: expiry,
	}
}

// Active reports whether the lot still participates in planning: unexpired
// as of today, not consumed, and holding a positive quantity.
func (l *Lot) Active(today time.Time) bool {
	return !l.Consumed && l.Quantity > 0 && !l.ExpiryDate.Before(truncateDay(today))
}

// Deduct removes up to amount from the lot, clamping at the available
// quantity, and returns how much was actually taken. A lot drained to zero
// is marked consumed.
func (l *Lot) Deduct(amount float64) float64 {
	if amount <= 0 || l.Quantity <= 0 {
		return 0
	}
	taken := amount
	if taken > l.Quantity {
		taken = l.Quantity
	}
	l.Quantity -= taken
	if l.Quantity <= 0 {
		l.Quantity = 0
		l.Consumed = true
	}
	return taken
}

// DaysLeft returns whole days until expiry, negative when already expired.
func (l *Lot) DaysLeft(today time.Time) int {
	return int(truncateDay(l.ExpiryDate).Sub(truncateDay(today)).Hours() / 24)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
