// Package repo holds the pieces shared by the gorm-backed repositories.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Base carries the connection a repository queries through.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to ctx. A nil ctx yields the raw handle.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// WithTx returns a copy of the base that runs its queries on tx.
func (b Base) WithTx(tx *gorm.DB) Base {
	if tx == nil {
		return b
	}
	return Base{db: tx}
}

// CreatedBetween scopes a query to rows whose column falls in [start, end).
// Bounds are compared in UTC since timestamps are stored that way.
func CreatedBetween(column string, start, end time.Time) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where(column+" >= ? AND "+column+" < ?", start.UTC(), end.UTC())
	}
}
