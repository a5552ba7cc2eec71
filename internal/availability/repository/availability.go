package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	availabilityerrors "flpsaude/internal/availability/errors"
	"flpsaude/pkg/config"
	"flpsaude/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	RulesCollectionName     = "Recurring_rules"
	OverridesCollectionName = "Availability_overrides"
)

type mongoAvailabilityRepository struct {
	cfg       *config.Config
	db        *mongo.Database
	rules     *mongo.Collection
	overrides *mongo.Collection
}

type AvailabilityRepository interface {
	CreateRule(ctx context.Context, rule *model.RecurringRule) error
	FindRuleByID(ctx context.Context, id string) (*model.RecurringRule, error)
	FindRulesByProfessional(ctx context.Context, professionalID string) ([]*model.RecurringRule, error)
	UpdateRule(ctx context.Context, id string, rule *model.RecurringRule) error
	DeleteRule(ctx context.Context, id string) error

	CreateOverride(ctx context.Context, override *model.AvailabilityOverride) error
	FindOverrideByID(ctx context.Context, id string) (*model.AvailabilityOverride, error)
	FindOverridesByProfessional(ctx context.Context, professionalID string) ([]*model.AvailabilityOverride, error)
	UpdateOverride(ctx context.Context, id string, override *model.AvailabilityOverride) error
	DeleteOverride(ctx context.Context, id string) error
}

func NewMongoAvailabilityRepository(cfg *config.Config) AvailabilityRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAvailabilityRepository{
		cfg:       cfg,
		db:        db,
		rules:     db.Collection(RulesCollectionName),
		overrides: db.Collection(OverridesCollectionName),
	}
}

func (r *mongoAvailabilityRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoAvailabilityRepository) CreateRule(ctx context.Context, rule *model.RecurringRule) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	rule.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.rules.InsertOne(ctx, rule)
	if err != nil {
		return fmt.Errorf("failed to create recurring rule: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		rule.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAvailabilityRepository) FindRuleByID(ctx context.Context, id string) (*model.RecurringRule, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", availabilityerrors.ErrInvalidID, id)
	}

	var rule model.RecurringRule
	err = r.rules.FindOne(ctx, bson.M{"_id": objectID}).Decode(&rule)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", availabilityerrors.ErrRuleNotFound, id)
		}
		return nil, fmt.Errorf("failed to find recurring rule: %w", err)
	}

	return &rule, nil
}

func (r *mongoAvailabilityRepository) FindRulesByProfessional(ctx context.Context, professionalID string) ([]*model.RecurringRule, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{
		{Key: "day_of_week", Value: 1},
		{Key: "start_time", Value: 1},
	})

	cursor, err := r.rules.Find(ctx, bson.M{"professional_id": professionalID}, opts)
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

func (r *mongoAvailabilityRepository) UpdateRule(ctx context.Context, id string, rule *model.RecurringRule) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", availabilityerrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"day_of_week": rule.DayOfWeek,
			"start_time":  rule.StartTime,
			"end_time":    rule.EndTime,
		},
	}

	result, err := r.rules.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update recurring rule: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", availabilityerrors.ErrRuleNotFound, id)
	}
	return nil
}

func (r *mongoAvailabilityRepository) DeleteRule(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", availabilityerrors.ErrInvalidID, id)
	}

	result, err := r.rules.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete recurring rule: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", availabilityerrors.ErrRuleNotFound, id)
	}
	return nil
}

func (r *mongoAvailabilityRepository) CreateOverride(ctx context.Context, override *model.AvailabilityOverride) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	override.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.overrides.InsertOne(ctx, override)
	if err != nil {
		return fmt.Errorf("failed to create availability override: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		override.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAvailabilityRepository) FindOverrideByID(ctx context.Context, id string) (*model.AvailabilityOverride, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", availabilityerrors.ErrInvalidID, id)
	}

	var override model.AvailabilityOverride
	err = r.overrides.FindOne(ctx, bson.M{"_id": objectID}).Decode(&override)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", availabilityerrors.ErrOverrideNotFound, id)
		}
		return nil, fmt.Errorf("failed to find availability override: %w", err)
	}

	return &override, nil
}

func (r *mongoAvailabilityRepository) FindOverridesByProfessional(ctx context.Context, professionalID string) ([]*model.AvailabilityOverride, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{
		{Key: "override_date", Value: 1},
		{Key: "start_time", Value: 1},
	})

	cursor, err := r.overrides.Find(ctx, bson.M{"professional_id": professionalID}, opts)
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

func (r *mongoAvailabilityRepository) UpdateOverride(ctx context.Context, id string, override *model.AvailabilityOverride) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", availabilityerrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"override_date": override.OverrideDate,
			"start_time":    override.StartTime,
			"end_time":      override.EndTime,
			"is_available":  override.IsAvailable,
		},
	}

	result, err := r.overrides.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update availability override: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", availabilityerrors.ErrOverrideNotFound, id)
	}
	return nil
}

func (r *mongoAvailabilityRepository) DeleteOverride(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", availabilityerrors.ErrInvalidID, id)
	}

	result, err := r.overrides.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete availability override: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", availabilityerrors.ErrOverrideNotFound, id)
	}
	return nil
}
