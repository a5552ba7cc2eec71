package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"flpsaude/pkg/config"
	"flpsaude/pkg/logger"
	"flpsaude/pkg/model"
)

// fakeStore keeps slot state in memory so runs can be exercised
// end-to-end, including the second-run idempotence property.
type fakeStore struct {
	professionals []*model.Professional
	rules         map[string][]*model.RecurringRule
	overrides     map[string][]*model.AvailabilityOverride
	slots         []*model.Slot
	booked        map[string]struct{}
	nextID        int

	failListProfessionals error
	failRulesFor          map[string]error
	failBookedCheck       bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rules:        map[string][]*model.RecurringRule{},
		overrides:    map[string][]*model.AvailabilityOverride{},
		booked:       map[string]struct{}{},
		failRulesFor: map[string]error{},
	}
}

func (f *fakeStore) ListProfessionals(ctx context.Context, professionalID string) ([]*model.Professional, error) {
	if f.failListProfessionals != nil {
		return nil, f.failListProfessionals
	}
	if professionalID == "" {
		return f.professionals, nil
	}
	for _, p := range f.professionals {
		if p.ID == professionalID {
			return []*model.Professional{p}, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListRecurringRules(ctx context.Context, professionalID string) ([]*model.RecurringRule, error) {
	if err := f.failRulesFor[professionalID]; err != nil {
		return nil, err
	}
	return f.rules[professionalID], nil
}

func (f *fakeStore) ListOverrides(ctx context.Context, professionalID string, fromDate, toDate string) ([]*model.AvailabilityOverride, error) {
	var result []*model.AvailabilityOverride
	for _, o := range f.overrides[professionalID] {
		if o.OverrideDate >= fromDate && o.OverrideDate <= toDate {
			result = append(result, o)
		}
	}
	return result, nil
}

func (f *fakeStore) ListSlotsInRange(ctx context.Context, professionalID string, from, to time.Time) ([]*model.Slot, error) {
	var result []*model.Slot
	for _, s := range f.slots {
		if s.ProfessionalID != professionalID {
			continue
		}
		if s.StartTime.Before(from) || s.StartTime.After(to) {
			continue
		}
		result = append(result, s)
	}
	return result, nil
}

func (f *fakeStore) BookedSlotIDs(ctx context.Context, slotIDs []string) (map[string]struct{}, error) {
	if f.failBookedCheck {
		return nil, errors.New("booked check unavailable")
	}
	result := map[string]struct{}{}
	for _, id := range slotIDs {
		if _, ok := f.booked[id]; ok {
			result[id] = struct{}{}
		}
	}
	return result, nil
}

func (f *fakeStore) DeleteSlots(ctx context.Context, slotIDs []string) (int64, error) {
	drop := map[string]struct{}{}
	for _, id := range slotIDs {
		drop[id] = struct{}{}
	}
	var kept []*model.Slot
	var deleted int64
	for _, s := range f.slots {
		if _, ok := drop[s.ID]; ok {
			deleted++
			continue
		}
		kept = append(kept, s)
	}
	f.slots = kept
	return deleted, nil
}

func (f *fakeStore) InsertSlots(ctx context.Context, slots []*model.Slot) (int, error) {
	existing := map[string]struct{}{}
	for _, s := range f.slots {
		existing[s.ProfessionalID+"|"+s.StartTime.UTC().Format(time.RFC3339)] = struct{}{}
	}
	inserted := 0
	for _, s := range slots {
		key := s.ProfessionalID + "|" + s.StartTime.UTC().Format(time.RFC3339)
		if _, dup := existing[key]; dup {
			continue
		}
		existing[key] = struct{}{}
		f.nextID++
		copied := *s
		copied.ID = fmt.Sprintf("slot-%d", f.nextID)
		f.slots = append(f.slots, &copied)
		inserted++
	}
	return inserted, nil
}

func (f *fakeStore) addSlot(professionalID string, start time.Time, booked bool) *model.Slot {
	f.nextID++
	slot := &model.Slot{
		ID:             fmt.Sprintf("slot-%d", f.nextID),
		ProfessionalID: professionalID,
		StartTime:      start,
		EndTime:        start.Add(30 * time.Minute),
	}
	f.slots = append(f.slots, slot)
	if booked {
		f.booked[slot.ID] = struct{}{}
	}
	return slot
}

func testConfig() *config.Config {
	return &config.Config{
		SlotDurationMin:        30,
		ReconcileHorizonMonths: 1,
		ReconcileDeleteBatch:   200,
		ReconcileInsertBatch:   500,
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
	}
}

func testLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}
	return loc
}

// 2026-09-07 is a Monday.
var fixedNow = time.Date(2026, 9, 7, 8, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, store *fakeStore) ReconcilerService {
	t.Helper()
	return NewReconcilerServiceWithClock(store, testConfig(), func() time.Time { return fixedNow }, testLocation(t))
}

func TestRun_GeneratesSlotsForWeeklyRule(t *testing.T) {
	store := newFakeStore()
	store.professionals = []*model.Professional{{ID: "prof-1", Name: "Dra. Ana Souza"}}
	store.rules["prof-1"] = []*model.RecurringRule{{
		ID: "rule-1", ProfessionalID: "prof-1", DayOfWeek: 1,
		StartTime: "09:00:00", EndTime: "12:00:00",
	}}

	svc := newTestService(t, store)
	summary, err := svc.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	// Five Mondays inside the one-month horizon, six slots each.
	if summary.Inserted != 30 {
		t.Errorf("expected 30 inserted, got %d", summary.Inserted)
	}
	if summary.Deleted != 0 || summary.Failed != 0 {
		t.Errorf("expected clean run, got deleted=%d failed=%d", summary.Deleted, summary.Failed)
	}
	if len(store.slots) != 30 {
		t.Errorf("expected 30 persisted slots, got %d", len(store.slots))
	}
}

func TestRun_SecondRunIsIdempotent(t *testing.T) {
	store := newFakeStore()
	store.professionals = []*model.Professional{{ID: "prof-1", Name: "Dra. Ana Souza"}}
	store.rules["prof-1"] = []*model.RecurringRule{{
		ID: "rule-1", ProfessionalID: "prof-1", DayOfWeek: 1,
		StartTime: "09:00:00", EndTime: "12:00:00",
	}}
	store.overrides["prof-1"] = []*model.AvailabilityOverride{{
		ID: "override-1", ProfessionalID: "prof-1", OverrideDate: "2026-09-14",
		StartTime: "10:00:00", EndTime: "11:00:00", IsAvailable: false,
	}}

	svc := newTestService(t, store)
	if _, err := svc.Run(context.Background(), ""); err != nil {
		t.Fatalf("first Run() unexpected error: %v", err)
	}
	countAfterFirst := len(store.slots)

	summary, err := svc.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("second Run() unexpected error: %v", err)
	}
	if summary.Inserted != 0 || summary.Deleted != 0 {
		t.Errorf("second run must be a no-op, got inserted=%d deleted=%d", summary.Inserted, summary.Deleted)
	}
	if len(store.slots) != countAfterFirst {
		t.Errorf("slot count changed across idempotent runs: %d -> %d", countAfterFirst, len(store.slots))
	}
}

func TestRun_DeletesOrphanedUnbookedSlots(t *testing.T) {
	store := newFakeStore()
	store.professionals = []*model.Professional{{ID: "prof-1", Name: "Dra. Ana Souza"}}
	// No rules: everything persisted in the horizon is an orphan.
	orphanStart := time.Date(2026, 9, 8, 12, 0, 0, 0, time.UTC)
	store.addSlot("prof-1", orphanStart, false)

	svc := newTestService(t, store)
	summary, err := svc.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	if summary.Deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", summary.Deleted)
	}
	if len(store.slots) != 0 {
		t.Errorf("orphan slot should be gone, still have %d slots", len(store.slots))
	}
}

func TestRun_PreservesBookedSlots(t *testing.T) {
	store := newFakeStore()
	store.professionals = []*model.Professional{{ID: "prof-1", Name: "Dra. Ana Souza"}}
	orphanStart := time.Date(2026, 9, 8, 12, 0, 0, 0, time.UTC)
	bookedSlot := store.addSlot("prof-1", orphanStart, true)

	svc := newTestService(t, store)
	summary, err := svc.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	if summary.Deleted != 0 {
		t.Errorf("booked slot must not be deleted, got deleted=%d", summary.Deleted)
	}
	if summary.Preserved != 1 {
		t.Errorf("expected 1 preserved, got %d", summary.Preserved)
	}
	if len(store.slots) != 1 || store.slots[0].ID != bookedSlot.ID {
		t.Errorf("booked slot missing from store after run")
	}
	if summary.Inserted != 0 {
		t.Errorf("preserved slot must not be re-inserted, got inserted=%d", summary.Inserted)
	}
}

func TestRun_ProfessionalFailureIsIsolated(t *testing.T) {
	store := newFakeStore()
	store.professionals = []*model.Professional{
		{ID: "prof-1", Name: "Dra. Ana Souza"},
		{ID: "prof-2", Name: "Dr. João Gonçalves"},
	}
	store.failRulesFor["prof-1"] = errors.New("store unavailable")
	store.rules["prof-2"] = []*model.RecurringRule{{
		ID: "rule-2", ProfessionalID: "prof-2", DayOfWeek: 1,
		StartTime: "09:00:00", EndTime: "10:00:00",
	}}

	svc := newTestService(t, store)
	summary, err := svc.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("Run() must not fail for a per-professional error: %v", err)
	}

	if summary.Failed != 1 {
		t.Errorf("expected 1 failed professional, got %d", summary.Failed)
	}
	if summary.Inserted == 0 {
		t.Error("second professional should still have been reconciled")
	}
	for _, s := range store.slots {
		if s.ProfessionalID != "prof-2" {
			t.Errorf("unexpected slot for %s", s.ProfessionalID)
		}
	}
}

func TestRun_MalformedRuleFailsOnlyThatProfessional(t *testing.T) {
	store := newFakeStore()
	store.professionals = []*model.Professional{
		{ID: "prof-1", Name: "Dra. Ana Souza"},
		{ID: "prof-2", Name: "Dr. João Gonçalves"},
	}
	store.rules["prof-1"] = []*model.RecurringRule{{
		ID: "rule-1", ProfessionalID: "prof-1", DayOfWeek: 1,
		StartTime: "9am", EndTime: "12:00:00",
	}}
	store.rules["prof-2"] = []*model.RecurringRule{{
		ID: "rule-2", ProfessionalID: "prof-2", DayOfWeek: 1,
		StartTime: "09:00:00", EndTime: "10:00:00",
	}}

	svc := newTestService(t, store)
	summary, err := svc.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if summary.Failed != 1 {
		t.Errorf("expected 1 failed professional, got %d", summary.Failed)
	}
	if summary.Inserted == 0 {
		t.Error("healthy professional should still gain slots")
	}
}

func TestRun_StructuralFailure(t *testing.T) {
	store := newFakeStore()
	store.failListProfessionals = errors.New("connection refused")

	svc := newTestService(t, store)
	summary, err := svc.Run(context.Background(), "")
	if err == nil {
		t.Fatal("Run() expected structural error, got nil")
	}
	if summary == nil || len(summary.Logs) == 0 {
		t.Error("structural failure should still report collected logs")
	}
}

func TestRun_BookedCheckFailureSkipsDeleteBatch(t *testing.T) {
	store := newFakeStore()
	store.professionals = []*model.Professional{{ID: "prof-1", Name: "Dra. Ana Souza"}}
	orphanStart := time.Date(2026, 9, 8, 12, 0, 0, 0, time.UTC)
	store.addSlot("prof-1", orphanStart, false)
	store.failBookedCheck = true

	svc := newTestService(t, store)
	summary, err := svc.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	// Without a booked verdict the batch is skipped rather than deleted.
	if summary.Deleted != 0 {
		t.Errorf("expected no deletions when the booked check fails, got %d", summary.Deleted)
	}
	if len(store.slots) != 1 {
		t.Errorf("slot should survive a skipped batch, have %d slots", len(store.slots))
	}
}

func TestRun_TargetedRunTouchesOnlyThatProfessional(t *testing.T) {
	store := newFakeStore()
	store.professionals = []*model.Professional{
		{ID: "prof-1", Name: "Dra. Ana Souza"},
		{ID: "prof-2", Name: "Dr. João Gonçalves"},
	}
	store.rules["prof-1"] = []*model.RecurringRule{{
		ID: "rule-1", ProfessionalID: "prof-1", DayOfWeek: 1,
		StartTime: "09:00:00", EndTime: "10:00:00",
	}}
	store.rules["prof-2"] = []*model.RecurringRule{{
		ID: "rule-2", ProfessionalID: "prof-2", DayOfWeek: 1,
		StartTime: "09:00:00", EndTime: "10:00:00",
	}}

	svc := newTestService(t, store)
	summary, err := svc.Run(context.Background(), "prof-1")
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	if summary.Professionals != 1 {
		t.Errorf("expected 1 professional in scope, got %d", summary.Professionals)
	}
	for _, s := range store.slots {
		if s.ProfessionalID != "prof-1" {
			t.Errorf("targeted run created slot for %s", s.ProfessionalID)
		}
	}
}
