package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/greenbite/engine/internal/ports/outbound"
)

// UnitOfWork runs planner operations inside one database transaction.
type UnitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork creates a transaction runner over the given connection.
func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

var _ outbound.UnitOfWork = (*UnitOfWork)(nil)

// Do opens a transaction, hands fn repositories bound to it, commits on a
// nil return and rolls back otherwise.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos outbound.TxRepositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, outbound.TxRepositories{
			Lots:   NewLotRepository(tx),
			Plans:  NewMealPlanRepository(tx),
			Meals:  NewMealRepository(tx),
			Usages: NewUsageRecordRepository(tx),
		})
	})
}
