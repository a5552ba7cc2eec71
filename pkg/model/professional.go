package model

import "time"

type Professional struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Specialty string    `json:"specialty" bson:"specialty" validate:"required,min=2,max=100"`
	// SpecialtyKey is the normalized lookup key derived from Specialty.
	SpecialtyKey string `json:"-" bson:"specialty_key,omitempty"`
	Phone     string    `json:"phone,omitempty" bson:"phone" validate:"omitempty,e164"`
	Email     string    `json:"email,omitempty" bson:"email" validate:"omitempty,email"`
	Active    bool      `json:"active" bson:"active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type ProfessionalUpdate struct {
	Name      string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Specialty string `json:"specialty,omitempty" validate:"omitempty,min=2,max=100"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,e164"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	Active    *bool  `json:"active,omitempty" validate:"omitempty"`
}
