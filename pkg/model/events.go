package model

import "time"

const EventTypeAvailabilityChanged = "availability.changed"

// AvailabilityChangedEvent is published after any recurring rule or override
// mutation so slot reconciliation can be re-run for the professional.
type AvailabilityChangedEvent struct {
	ProfessionalID string    `json:"professional_id"`
	ChangedAt      time.Time `json:"changed_at"`
}
