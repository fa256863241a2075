package model

import "time"

// SlotLock is an advisory lock serializing regular-gig booking for one gig.
// A unique _id insert either succeeds (lock held) or fails with a duplicate
// key error (someone else is booking). Locks auto-expire via ExpiresAt.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
