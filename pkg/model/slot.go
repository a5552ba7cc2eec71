package model

import "time"

// Slot is a bookable interval persisted in UTC. The pair
// (professional_id, start_time) is unique.
type Slot struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ProfessionalID string    `json:"professional_id" bson:"professional_id" validate:"required,mongodb"`
	StartTime      time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime        time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
