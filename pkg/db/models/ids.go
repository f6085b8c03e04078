package models

import (
	"github.com/google/uuid"
)

// assignID fills an empty primary key so inserts do not depend on
// gen_random_uuid(), which SQLite lacks.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All lists every persisted model, in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&Profile{},
		&Shop{},
		&Product{},
		&InventoryBatch{},
		&Transaction{},
		&Complaint{},
		&WishlistItem{},
		&Notification{},
		&AdminActivityLog{},
	}
}
