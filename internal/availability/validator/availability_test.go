package validator

import (
	"testing"

	"flpsaude/pkg/logger"
	"flpsaude/pkg/model"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
}

func TestValidateRule(t *testing.T) {
	v := NewAvailabilityValidator(testLogger())

	tests := []struct {
		name    string
		rule    model.RecurringRule
		wantErr bool
	}{
		{
			name: "valid rule",
			rule: model.RecurringRule{
				ProfessionalID: "507f1f77bcf86cd799439011",
				DayOfWeek:      1,
				StartTime:      "09:00:00",
				EndTime:        "12:00:00",
			},
			wantErr: false,
		},
		{
			name: "valid rule without seconds",
			rule: model.RecurringRule{
				ProfessionalID: "507f1f77bcf86cd799439011",
				DayOfWeek:      6,
				StartTime:      "08:30",
				EndTime:        "11:00",
			},
			wantErr: false,
		},
		{
			name: "day of week out of range",
			rule: model.RecurringRule{
				ProfessionalID: "507f1f77bcf86cd799439011",
				DayOfWeek:      7,
				StartTime:      "09:00:00",
				EndTime:        "12:00:00",
			},
			wantErr: true,
		},
		{
			name: "malformed start time",
			rule: model.RecurringRule{
				ProfessionalID: "507f1f77bcf86cd799439011",
				DayOfWeek:      1,
				StartTime:      "25:00:00",
				EndTime:        "12:00:00",
			},
			wantErr: true,
		},
		{
			name: "end before start",
			rule: model.RecurringRule{
				ProfessionalID: "507f1f77bcf86cd799439011",
				DayOfWeek:      1,
				StartTime:      "12:00:00",
				EndTime:        "09:00:00",
			},
			wantErr: true,
		},
		{
			name: "end equals start",
			rule: model.RecurringRule{
				ProfessionalID: "507f1f77bcf86cd799439011",
				DayOfWeek:      1,
				StartTime:      "09:00:00",
				EndTime:        "09:00:00",
			},
			wantErr: true,
		},
		{
			name: "missing professional id",
			rule: model.RecurringRule{
				DayOfWeek: 1,
				StartTime: "09:00:00",
				EndTime:   "12:00:00",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateRule(&tt.rule)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRule() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateOverride(t *testing.T) {
	v := NewAvailabilityValidator(testLogger())

	tests := []struct {
		name     string
		override model.AvailabilityOverride
		wantErr  bool
	}{
		{
			name: "valid blocking override",
			override: model.AvailabilityOverride{
				ProfessionalID: "507f1f77bcf86cd799439011",
				OverrideDate:   "2026-09-07",
				StartTime:      "00:00:00",
				EndTime:        "23:59:59",
				IsAvailable:    false,
			},
			wantErr: false,
		},
		{
			name: "valid opening override",
			override: model.AvailabilityOverride{
				ProfessionalID: "507f1f77bcf86cd799439011",
				OverrideDate:   "2026-09-12",
				StartTime:      "14:00:00",
				EndTime:        "16:00:00",
				IsAvailable:    true,
			},
			wantErr: false,
		},
		{
			name: "malformed date",
			override: model.AvailabilityOverride{
				ProfessionalID: "507f1f77bcf86cd799439011",
				OverrideDate:   "07/09/2026",
				StartTime:      "09:00:00",
				EndTime:        "12:00:00",
			},
			wantErr: true,
		},
		{
			name: "end before start",
			override: model.AvailabilityOverride{
				ProfessionalID: "507f1f77bcf86cd799439011",
				OverrideDate:   "2026-09-07",
				StartTime:      "16:00:00",
				EndTime:        "14:00:00",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateOverride(&tt.override)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOverride() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseClockSeconds(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"00:00:00", 0, false},
		{"09:00:00", 9 * 3600, false},
		{"09:30", 9*3600 + 30*60, false},
		{"23:59:59", 23*3600 + 59*60 + 59, false},
		{"24:00:00", 0, true},
		{"9am", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseClockSeconds(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseClockSeconds(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseClockSeconds(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}
