package model

import "time"

// RecurringRule declares a weekly working window for a professional.
// DayOfWeek follows time.Weekday numbering: 0=Sunday .. 6=Saturday.
// Times are wall-clock strings in the clinic timezone.
type RecurringRule struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ProfessionalID string    `json:"professional_id" bson:"professional_id" validate:"required,mongodb"`
	DayOfWeek      int       `json:"day_of_week" bson:"day_of_week" validate:"min=0,max=6"`
	StartTime      string    `json:"start_time" bson:"start_time" validate:"required,clock_time"`
	EndTime        string    `json:"end_time" bson:"end_time" validate:"required,clock_time"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type RecurringRuleUpdate struct {
	DayOfWeek *int   `json:"day_of_week,omitempty" validate:"omitempty,min=0,max=6"`
	StartTime string `json:"start_time,omitempty" validate:"omitempty,clock_time"`
	EndTime   string `json:"end_time,omitempty" validate:"omitempty,clock_time"`
}

// AvailabilityOverride adjusts a single calendar date. IsAvailable true adds
// an extra working window on that date; false blocks the window.
type AvailabilityOverride struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ProfessionalID string    `json:"professional_id" bson:"professional_id" validate:"required,mongodb"`
	OverrideDate   string    `json:"override_date" bson:"override_date" validate:"required,date_ymd"`
	StartTime      string    `json:"start_time" bson:"start_time" validate:"required,clock_time"`
	EndTime        string    `json:"end_time" bson:"end_time" validate:"required,clock_time"`
	IsAvailable    bool      `json:"is_available" bson:"is_available"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type AvailabilityOverrideUpdate struct {
	OverrideDate string `json:"override_date,omitempty" validate:"omitempty,date_ymd"`
	StartTime    string `json:"start_time,omitempty" validate:"omitempty,clock_time"`
	EndTime      string `json:"end_time,omitempty" validate:"omitempty,clock_time"`
	IsAvailable  *bool  `json:"is_available,omitempty" validate:"omitempty"`
}
