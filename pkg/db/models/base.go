package models

import (
	"github.com/google/uuid"
)

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All lists every persisted model, in dependency order, for dev auto-migration and tests.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&MenuItem{},
		&Coupon{},
		&Cart{},
		&CartItem{},
		&OrderSequence{},
		&Order{},
		&OrderItem{},
		&OutboxEvent{},
		&OutboxDLQ{},
	}
}
