package model

import "time"

const (
	AppointmentStatusScheduled = "scheduled"
	AppointmentStatusConfirmed = "confirmed"
	AppointmentStatusCompleted = "completed"
	AppointmentStatusCancelled = "cancelled"
)

type Appointment struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ProfessionalID string    `json:"professional_id" bson:"professional_id" validate:"required,mongodb"`
	SlotID         string    `json:"slot_id" bson:"slot_id" validate:"required,mongodb"`
	PatientName    string    `json:"patient_name" bson:"patient_name" validate:"required,min=2,max=100"`
	PatientPhone   string    `json:"patient_phone" bson:"patient_phone" validate:"required,e164"`
	Status         string    `json:"status" bson:"status" validate:"required,oneof=scheduled confirmed completed cancelled"`
	Notes          string    `json:"notes,omitempty" bson:"notes" validate:"omitempty,max=1000"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type AppointmentUpdate struct {
	Status string `json:"status,omitempty" validate:"omitempty,oneof=scheduled confirmed completed cancelled"`
	Notes  string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}
