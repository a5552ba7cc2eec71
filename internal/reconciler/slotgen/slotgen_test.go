package slotgen

import (
	"testing"
	"time"

	"flpsaude/pkg/model"
)

const slotDuration = 30 * time.Minute

func saoPaulo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}
	return loc
}

func mondayRule(start, end string) *model.RecurringRule {
	return &model.RecurringRule{
		ID:             "rule-1",
		ProfessionalID: "prof-1",
		DayOfWeek:      1,
		StartTime:      start,
		EndTime:        end,
	}
}

// 2026-09-07 is a Monday.
var testFrom = time.Date(2026, 9, 7, 8, 0, 0, 0, time.UTC)

func TestGenerate_WeeklyRuleOverHorizon(t *testing.T) {
	loc := saoPaulo(t)

	starts, err := Generate(
		[]*model.RecurringRule{mondayRule("09:00:00", "12:00:00")},
		nil,
		testFrom, 1, slotDuration, loc,
	)
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}

	// Five Mondays fall inside [2026-09-07, 2026-10-07], six slots each.
	if len(starts) != 30 {
		t.Fatalf("expected 30 slots, got %d", len(starts))
	}

	// São Paulo is UTC-3, so 09:00 local is 12:00 UTC.
	want := time.Date(2026, 9, 7, 12, 0, 0, 0, time.UTC)
	if !starts[0].Equal(want) {
		t.Errorf("first slot = %s, want %s", starts[0], want)
	}

	for i := 1; i < len(starts); i++ {
		if !starts[i].After(starts[i-1]) {
			t.Fatalf("starts not strictly ascending at index %d: %s then %s", i, starts[i-1], starts[i])
		}
	}
}

func TestGenerate_TrailingPartialDiscarded(t *testing.T) {
	loc := saoPaulo(t)

	starts, err := Generate(
		[]*model.RecurringRule{mondayRule("09:00:00", "09:45:00")},
		nil,
		testFrom, 0, slotDuration, loc,
	)
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}

	// Only 09:00-09:30 fits. The 09:30-10:00 slot would spill past the window.
	if len(starts) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(starts))
	}
	want := time.Date(2026, 9, 7, 12, 0, 0, 0, time.UTC)
	if !starts[0].Equal(want) {
		t.Errorf("slot = %s, want %s", starts[0], want)
	}
}

func TestGenerate_BlockingOverrideSuppressesOverlap(t *testing.T) {
	loc := saoPaulo(t)

	overrides := []*model.AvailabilityOverride{{
		ID:             "override-1",
		ProfessionalID: "prof-1",
		OverrideDate:   "2026-09-07",
		StartTime:      "10:15:00",
		EndTime:        "10:45:00",
		IsAvailable:    false,
	}}

	starts, err := Generate(
		[]*model.RecurringRule{mondayRule("09:00:00", "12:00:00")},
		overrides,
		testFrom, 0, slotDuration, loc,
	)
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}

	// The block clips both the 10:00 and 10:30 slots even though it only
	// partially overlaps each.
	if len(starts) != 4 {
		t.Fatalf("expected 4 slots, got %d", len(starts))
	}
	for _, s := range starts {
		local := s.In(loc)
		if local.Hour() == 10 {
			t.Errorf("slot %s overlaps the blocking override", local)
		}
	}
}

func TestGenerate_FullDayBlockRemovesEverything(t *testing.T) {
	loc := saoPaulo(t)

	overrides := []*model.AvailabilityOverride{{
		ID:           "override-1",
		OverrideDate: "2026-09-07",
		StartTime:    "00:00:00",
		EndTime:      "23:59:59",
		IsAvailable:  false,
	}}

	starts, err := Generate(
		[]*model.RecurringRule{mondayRule("09:00:00", "12:00:00")},
		overrides,
		testFrom, 0, slotDuration, loc,
	)
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}
	if len(starts) != 0 {
		t.Errorf("expected no slots on a fully blocked day, got %d", len(starts))
	}
}

func TestGenerate_OpeningOverrideIsAdditive(t *testing.T) {
	loc := saoPaulo(t)

	overrides := []*model.AvailabilityOverride{{
		ID:           "override-1",
		OverrideDate: "2026-09-07",
		StartTime:    "14:00:00",
		EndTime:      "15:00:00",
		IsAvailable:  true,
	}}

	starts, err := Generate(
		[]*model.RecurringRule{mondayRule("09:00:00", "10:00:00")},
		overrides,
		testFrom, 0, slotDuration, loc,
	)
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}

	// Two slots from the weekly rule plus two from the extra window.
	if len(starts) != 4 {
		t.Fatalf("expected 4 slots, got %d", len(starts))
	}
}

func TestGenerate_OverlappingSourcesDeduplicate(t *testing.T) {
	loc := saoPaulo(t)

	overrides := []*model.AvailabilityOverride{{
		ID:           "override-1",
		OverrideDate: "2026-09-07",
		StartTime:    "09:00:00",
		EndTime:      "10:00:00",
		IsAvailable:  true,
	}}

	starts, err := Generate(
		[]*model.RecurringRule{mondayRule("09:00:00", "10:00:00")},
		overrides,
		testFrom, 0, slotDuration, loc,
	)
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}

	if len(starts) != 2 {
		t.Fatalf("expected 2 de-duplicated slots, got %d", len(starts))
	}
}

func TestGenerate_DegenerateWindowYieldsNothing(t *testing.T) {
	loc := saoPaulo(t)

	starts, err := Generate(
		[]*model.RecurringRule{mondayRule("12:00:00", "09:00:00")},
		nil,
		testFrom, 1, slotDuration, loc,
	)
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}
	if len(starts) != 0 {
		t.Errorf("a window that ends before it starts should produce no slots, got %d", len(starts))
	}
}

func TestGenerate_MalformedRuleTime(t *testing.T) {
	loc := saoPaulo(t)

	_, err := Generate(
		[]*model.RecurringRule{mondayRule("9am", "12:00:00")},
		nil,
		testFrom, 0, slotDuration, loc,
	)
	if err == nil {
		t.Fatal("Generate() expected error for malformed rule time, got nil")
	}
}

func TestGenerate_MalformedOverrideDate(t *testing.T) {
	loc := saoPaulo(t)

	overrides := []*model.AvailabilityOverride{{
		ID:           "override-1",
		OverrideDate: "07/09/2026",
		StartTime:    "09:00:00",
		EndTime:      "10:00:00",
		IsAvailable:  false,
	}}

	_, err := Generate(nil, overrides, testFrom, 0, slotDuration, loc)
	if err == nil {
		t.Fatal("Generate() expected error for malformed override date, got nil")
	}
}

func TestGenerate_NoRulesNoSlots(t *testing.T) {
	loc := saoPaulo(t)

	starts, err := Generate(nil, nil, testFrom, 12, slotDuration, loc)
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}
	if len(starts) != 0 {
		t.Errorf("expected no slots without rules, got %d", len(starts))
	}
}

func TestGenerate_FallBackTransitionKeepsWallClock(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}

	// 2026-11-01 is the fall-back Sunday in America/New_York. A 09:00
	// wall-clock slot lands after the transition, so it maps to 14:00 UTC
	// (EST) rather than 13:00 UTC (EDT).
	from := time.Date(2026, 11, 1, 5, 0, 0, 0, time.UTC)
	rules := []*model.RecurringRule{{
		ID:        "rule-1",
		DayOfWeek: 0,
		StartTime: "09:00:00",
		EndTime:   "10:00:00",
	}}

	starts, err := Generate(rules, nil, from, 0, slotDuration, ny)
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}
	if len(starts) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(starts))
	}

	want := time.Date(2026, 11, 1, 14, 0, 0, 0, time.UTC)
	if !starts[0].Equal(want) {
		t.Errorf("first slot = %s, want %s", starts[0], want)
	}
}
