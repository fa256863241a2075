package model

import "time"

// BookingHistoryEntry is one immutable row of the audit ledger. Entries are
// appended after a state change commits and are never edited or removed;
// migrations may strip a deprecated metadata key but must preserve order
// and count.
type BookingHistoryEntry struct {
	ID        string            `json:"id,omitempty" bson:"_id,omitempty"`
	GigID     string            `json:"gig_id" bson:"gig_id" validate:"required,mongodb"`
	UserID    string            `json:"user_id" bson:"user_id" validate:"required"`
	Status    string            `json:"status" bson:"status" validate:"required,oneof=pending booked completed cancelled"`
	Role      string            `json:"role,omitempty" bson:"role,omitempty"`
	Actor     string            `json:"actor" bson:"actor" validate:"required"`
	Notes     string            `json:"notes,omitempty" bson:"notes,omitempty"`
	Price     float64           `json:"price,omitempty" bson:"price,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at" bson:"created_at"`
}
