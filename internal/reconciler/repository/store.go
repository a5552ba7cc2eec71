package repository

import (
	"context"
	"fmt"
	"time"

	"flpsaude/pkg/config"
	"flpsaude/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ProfessionalsCollectionName = "Professionals"
	RulesCollectionName         = "Recurring_rules"
	OverridesCollectionName     = "Availability_overrides"
	SlotsCollectionName         = "Slots"
	AppointmentsCollectionName  = "Appointments"
)

// ReconcilerStore is the read/write surface the reconciliation run
// needs. Rules, overrides and appointments are read-only here; slots
// are the only collection it mutates.
type ReconcilerStore interface {
	ListProfessionals(ctx context.Context, professionalID string) ([]*model.Professional, error)
	ListRecurringRules(ctx context.Context, professionalID string) ([]*model.RecurringRule, error)
	ListOverrides(ctx context.Context, professionalID string, fromDate, toDate string) ([]*model.AvailabilityOverride, error)
	ListSlotsInRange(ctx context.Context, professionalID string, from, to time.Time) ([]*model.Slot, error)
	BookedSlotIDs(ctx context.Context, slotIDs []string) (map[string]struct{}, error)
	DeleteSlots(ctx context.Context, slotIDs []string) (int64, error)
	InsertSlots(ctx context.Context, slots []*model.Slot) (int, error)
}

type mongoReconcilerStore struct {
	cfg           *config.Config
	professionals *mongo.Collection
	rules         *mongo.Collection
	overrides     *mongo.Collection
	slots         *mongo.Collection
	appointments  *mongo.Collection
}

func NewMongoReconcilerStore(cfg *config.Config) ReconcilerStore {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReconcilerStore{
		cfg:           cfg,
		professionals: db.Collection(ProfessionalsCollectionName),
		rules:         db.Collection(RulesCollectionName),
		overrides:     db.Collection(OverridesCollectionName),
		slots:         db.Collection(SlotsCollectionName),
		appointments:  db.Collection(AppointmentsCollectionName),
	}
}

func (s *mongoReconcilerStore) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (s *mongoReconcilerStore) ListProfessionals(ctx context.Context, professionalID string) ([]*model.Professional, error) {
	ctx, cancel := s.withTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{}
	if professionalID != "" {
		objectID, err := primitive.ObjectIDFromHex(professionalID)
		if err != nil {
			return nil, fmt.Errorf("invalid professional ID %q: %w", professionalID, err)
		}
		filter["_id"] = objectID
	}

	cursor, err := s.professionals.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query professionals: %w", err)
	}
	defer cursor.Close(ctx)

	var professionals []*model.Professional
	if err = cursor.All(ctx, &professionals); err != nil {
		return nil, fmt.Errorf("failed to decode professionals: %w", err)
	}
	return professionals, nil
}

func (s *mongoReconcilerStore) ListRecurringRules(ctx context.Context, professionalID string) ([]*model.RecurringRule, error) {
	ctx, cancel := s.withTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	cursor, err := s.rules.Find(ctx, bson.M{"professional_id": professionalID})
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring rules: %w", err)
	}
	defer cursor.Close(ctx)

	var rules []*model.RecurringRule
	if err = cursor.All(ctx, &rules); err != nil {
		return nil, fmt.Errorf("failed to decode recurring rules: %w", err)
	}
	return rules, nil
}

// ListOverrides filters on the YYYY-MM-DD date strings directly; the
// format sorts lexicographically so a string range matches the date
// range.
func (s *mongoReconcilerStore) ListOverrides(ctx context.Context, professionalID string, fromDate, toDate string) ([]*model.AvailabilityOverride, error) {
	ctx, cancel := s.withTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"professional_id": professionalID,
		"override_date":   bson.M{"$gte": fromDate, "$lte": toDate},
	}

	cursor, err := s.overrides.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability overrides: %w", err)
	}
	defer cursor.Close(ctx)

	var overrides []*model.AvailabilityOverride
	if err = cursor.All(ctx, &overrides); err != nil {
		return nil, fmt.Errorf("failed to decode availability overrides: %w", err)
	}
	return overrides, nil
}

func (s *mongoReconcilerStore) ListSlotsInRange(ctx context.Context, professionalID string, from, to time.Time) ([]*model.Slot, error) {
	ctx, cancel := s.withTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"professional_id": professionalID,
		"start_time":      bson.M{"$gte": from, "$lte": to},
	}

	cursor, err := s.slots.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []*model.Slot
	if err = cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode slots: %w", err)
	}
	return slots, nil
}

// BookedSlotIDs returns the subset of the given slot IDs that carry a
// live appointment. Cancelled appointments do not count.
func (s *mongoReconcilerStore) BookedSlotIDs(ctx context.Context, slotIDs []string) (map[string]struct{}, error) {
	if len(slotIDs) == 0 {
		return map[string]struct{}{}, nil
	}

	ctx, cancel := s.withTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"slot_id": bson.M{"$in": slotIDs},
		"status":  bson.M{"$ne": model.AppointmentStatusCancelled},
	}

	ids, err := s.appointments.Distinct(ctx, "slot_id", filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query booked slots: %w", err)
	}

	booked := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if str, ok := id.(string); ok {
			booked[str] = struct{}{}
		}
	}
	return booked, nil
}

func (s *mongoReconcilerStore) DeleteSlots(ctx context.Context, slotIDs []string) (int64, error) {
	if len(slotIDs) == 0 {
		return 0, nil
	}

	ctx, cancel := s.withTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()

	objectIDs := make([]primitive.ObjectID, 0, len(slotIDs))
	for _, id := range slotIDs {
		objectID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return 0, fmt.Errorf("invalid slot ID %q: %w", id, err)
		}
		objectIDs = append(objectIDs, objectID)
	}

	result, err := s.slots.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": objectIDs}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete slots: %w", err)
	}
	return result.DeletedCount, nil
}

// InsertSlots inserts unordered and swallows duplicate key errors, so
// a concurrent run inserting the same (professional_id, start_time)
// pair is harmless. Returns the number of documents actually inserted.
func (s *mongoReconcilerStore) InsertSlots(ctx context.Context, slots []*model.Slot) (int, error) {
	if len(slots) == 0 {
		return 0, nil
	}

	ctx, cancel := s.withTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	docs := make([]interface{}, 0, len(slots))
	for _, slot := range slots {
		slot.CreatedAt = now
		docs = append(docs, slot)
	}

	result, err := s.slots.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			inserted := 0
			if result != nil {
				inserted = len(result.InsertedIDs)
			}
			return inserted, nil
		}
		return 0, fmt.Errorf("failed to insert slots: %w", err)
	}
	return len(result.InsertedIDs), nil
}
