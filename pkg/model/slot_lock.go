package model

import "time"

// SlotLock is an advisory lock preventing concurrent appointment creation
// against the same slot. The lock id encodes the slot being booked.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
