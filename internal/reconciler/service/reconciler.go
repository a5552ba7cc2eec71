package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"flpsaude/internal/reconciler/repository"
	"flpsaude/internal/reconciler/slotgen"
	"flpsaude/pkg/config"
	"flpsaude/pkg/model"
)

// Summary aggregates the outcome of one reconciliation run. Logs holds
// one human-readable line per phase so operators can see what each
// professional's pass did.
type Summary struct {
	Professionals int
	Failed        int
	Inserted      int
	Deleted       int
	Preserved     int
	Logs          []string
}

func (s *Summary) logf(format string, args ...any) {
	s.Logs = append(s.Logs, fmt.Sprintf(format, args...))
}

type ReconcilerService interface {
	// Run reconciles slots for one professional, or for every
	// professional when professionalID is empty. A returned error
	// means the run failed structurally before any per-professional
	// work could complete; per-professional failures are recorded in
	// the summary instead.
	Run(ctx context.Context, professionalID string) (*Summary, error)
}

type reconcilerService struct {
	store repository.ReconcilerStore
	cfg   *config.Config
	loc   *time.Location
	now   func() time.Time
}

func NewReconcilerService(store repository.ReconcilerStore, cfg *config.Config) ReconcilerService {
	return NewReconcilerServiceWithClock(store, cfg, time.Now, cfg.ClinicLocation())
}

// NewReconcilerServiceWithClock injects the reference clock and
// timezone so runs are deterministic under test.
func NewReconcilerServiceWithClock(
	store repository.ReconcilerStore,
	cfg *config.Config,
	now func() time.Time,
	loc *time.Location,
) ReconcilerService {
	return &reconcilerService{
		store: store,
		cfg:   cfg,
		loc:   loc,
		now:   now,
	}
}

func (s *reconcilerService) Run(ctx context.Context, professionalID string) (*Summary, error) {
	summary := &Summary{}
	started := s.now()

	professionals, err := s.store.ListProfessionals(ctx, professionalID)
	if err != nil {
		s.cfg.Log.Error("Failed to list professionals for reconciliation", "error", err)
		summary.logf("fatal: failed to list professionals: %v", err)
		return summary, fmt.Errorf("failed to list professionals: %w", err)
	}

	if professionalID != "" {
		summary.logf("reconciling single professional %s", professionalID)
	} else {
		summary.logf("reconciling %d professionals", len(professionals))
	}
	summary.Professionals = len(professionals)

	for _, p := range professionals {
		if err := s.reconcileProfessional(ctx, p, summary); err != nil {
			summary.Failed++
			summary.logf("professional %s (%s): reconciliation failed: %v", p.ID, p.Name, err)
			s.cfg.Log.Error("Professional reconciliation failed",
				"professional_id", p.ID,
				"error", err,
			)
			continue
		}
	}

	summary.logf("run finished in %s: %d professionals, %d failed, %d inserted, %d deleted, %d preserved booked",
		s.now().Sub(started).Round(time.Millisecond),
		summary.Professionals, summary.Failed, summary.Inserted, summary.Deleted, summary.Preserved,
	)
	s.cfg.Log.Info("Reconciliation run finished",
		"professionals", summary.Professionals,
		"failed", summary.Failed,
		"inserted", summary.Inserted,
		"deleted", summary.Deleted,
		"preserved", summary.Preserved,
	)
	return summary, nil
}

func (s *reconcilerService) reconcileProfessional(ctx context.Context, p *model.Professional, summary *Summary) error {
	now := s.now()
	slotDuration := time.Duration(s.cfg.SlotDurationMin) * time.Minute
	horizonMonths := s.cfg.ReconcileHorizonMonths

	local := now.In(s.loc)
	year, month, day := local.Date()
	firstDay := time.Date(year, month, day, 0, 0, 0, 0, s.loc)
	lastDay := firstDay.AddDate(0, horizonMonths, 0)

	// Rules and overrides are independent reads
	var rules []*model.RecurringRule
	var overrides []*model.AvailabilityOverride
	var errRules, errOverrides error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		rules, errRules = s.store.ListRecurringRules(ctx, p.ID)
	}()
	go func() {
		defer wg.Done()
		overrides, errOverrides = s.store.ListOverrides(ctx, p.ID,
			firstDay.Format("2006-01-02"), lastDay.Format("2006-01-02"))
	}()
	wg.Wait()

	if errRules != nil {
		return fmt.Errorf("loading recurring rules: %w", errRules)
	}
	if errOverrides != nil {
		return fmt.Errorf("loading overrides: %w", errOverrides)
	}

	expected, err := slotgen.Generate(rules, overrides, now, horizonMonths, slotDuration, s.loc)
	if err != nil {
		return fmt.Errorf("expanding availability: %w", err)
	}

	rangeStart := firstDay.UTC()
	rangeEnd := time.Date(lastDay.Year(), lastDay.Month(), lastDay.Day(), 23, 59, 59, 0, s.loc).UTC()
	persisted, err := s.store.ListSlotsInRange(ctx, p.ID, rangeStart, rangeEnd)
	if err != nil {
		return fmt.Errorf("loading persisted slots: %w", err)
	}

	expectedSet := make(map[int64]time.Time, len(expected))
	for _, start := range expected {
		expectedSet[start.Unix()] = start
	}
	persistedSet := make(map[int64]struct{}, len(persisted))

	var toDelete []*model.Slot
	for _, slot := range persisted {
		key := slot.StartTime.Unix()
		persistedSet[key] = struct{}{}
		if _, ok := expectedSet[key]; !ok {
			toDelete = append(toDelete, slot)
		}
	}

	var toInsert []*model.Slot
	for _, start := range expected {
		if _, ok := persistedSet[start.Unix()]; ok {
			continue
		}
		toInsert = append(toInsert, &model.Slot{
			ProfessionalID: p.ID,
			StartTime:      start,
			EndTime:        start.Add(slotDuration),
		})
	}

	deleted, preserved := s.deleteUnbooked(ctx, toDelete, summary)
	inserted := s.insertMissing(ctx, toInsert, summary)

	summary.Deleted += deleted
	summary.Preserved += preserved
	summary.Inserted += inserted
	summary.logf("professional %s (%s): %d rules, %d overrides, %d expected, %d persisted, %d inserted, %d deleted, %d preserved booked",
		p.ID, p.Name, len(rules), len(overrides), len(expected), len(persisted), inserted, deleted, preserved)
	return nil
}

// deleteUnbooked removes stale slots in batches. The booked check runs
// per batch, immediately before the delete, to narrow the race window
// against concurrent bookings. A failed batch is logged and skipped;
// later batches still run.
func (s *reconcilerService) deleteUnbooked(ctx context.Context, toDelete []*model.Slot, summary *Summary) (deleted, preserved int) {
	batchSize := s.cfg.ReconcileDeleteBatch

	for start := 0; start < len(toDelete); start += batchSize {
		end := min(start+batchSize, len(toDelete))
		batch := toDelete[start:end]

		ids := make([]string, 0, len(batch))
		for _, slot := range batch {
			ids = append(ids, slot.ID)
		}

		booked, err := s.store.BookedSlotIDs(ctx, ids)
		if err != nil {
			summary.logf("delete batch %d-%d: booked check failed, batch skipped: %v", start, end, err)
			s.cfg.Log.Warn("Booked slot check failed, skipping delete batch", "error", err)
			continue
		}

		safe := make([]string, 0, len(ids))
		for _, id := range ids {
			if _, isBooked := booked[id]; isBooked {
				preserved++
				continue
			}
			safe = append(safe, id)
		}
		if len(safe) == 0 {
			continue
		}

		count, err := s.store.DeleteSlots(ctx, safe)
		if err != nil {
			summary.logf("delete batch %d-%d: delete failed, batch skipped: %v", start, end, err)
			s.cfg.Log.Warn("Slot delete batch failed", "error", err)
			continue
		}
		deleted += int(count)
	}

	return deleted, preserved
}

func (s *reconcilerService) insertMissing(ctx context.Context, toInsert []*model.Slot, summary *Summary) (inserted int) {
	batchSize := s.cfg.ReconcileInsertBatch

	for start := 0; start < len(toInsert); start += batchSize {
		end := min(start+batchSize, len(toInsert))

		count, err := s.store.InsertSlots(ctx, toInsert[start:end])
		if err != nil {
			summary.logf("insert batch %d-%d: insert failed, batch skipped: %v", start, end, err)
			s.cfg.Log.Warn("Slot insert batch failed", "error", err)
			continue
		}
		inserted += count
	}

	return inserted
}
