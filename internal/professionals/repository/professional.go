package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	professionalerrors "flpsaude/internal/professionals/errors"
	"flpsaude/pkg/config"
	"flpsaude/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Professionals"
)

type mongoProfessionalRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

type ProfessionalRepository interface {
	Create(ctx context.Context, p *model.Professional) error
	FindByID(ctx context.Context, id string) (*model.Professional, error)
	FindAll(ctx context.Context, specialtyKey string, limit int, offset int) ([]*model.Professional, error)
	Update(ctx context.Context, id string, p *model.Professional) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, specialtyKey string) (int64, error)
}

func NewMongoProfessionalRepository(cfg *config.Config) ProfessionalRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoProfessionalRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// SessionContext cannot be wrapped without breaking transaction semantics.
func (r *mongoProfessionalRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoProfessionalRepository) Create(ctx context.Context, p *model.Professional) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	p.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to create professional: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid.Hex()
	}
	return nil
}

func (r *mongoProfessionalRepository) FindByID(ctx context.Context, id string) (*model.Professional, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", professionalerrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}

	var p model.Professional
	err = r.collection.FindOne(ctx, filter).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", professionalerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find professional: %w", err)
	}

	return &p, nil
}

func (r *mongoProfessionalRepository) FindAll(ctx context.Context, specialtyKey string, limit int, offset int) ([]*model.Professional, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64(offset)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, specialtyFilter(specialtyKey), opts)
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

func (r *mongoProfessionalRepository) Update(ctx context.Context, id string, p *model.Professional) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", professionalerrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}
	update := bson.M{
		"$set": bson.M{
			"name":          p.Name,
			"specialty":     p.Specialty,
			"specialty_key": p.SpecialtyKey,
			"phone":         p.Phone,
			"email":         p.Email,
			"active":        p.Active,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update professional: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, fmt.Errorf("%w: %s", professionalerrors.ErrNotFound, id)
	}

	return result, nil
}

func (r *mongoProfessionalRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", professionalerrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}
	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete professional: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", professionalerrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoProfessionalRepository) Count(ctx context.Context, specialtyKey string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, specialtyFilter(specialtyKey))
	if err != nil {
		return 0, fmt.Errorf("failed to count professionals: %w", err)
	}
	return count, nil
}

func specialtyFilter(specialtyKey string) bson.M {
	if specialtyKey == "" {
		return bson.M{}
	}
	return bson.M{"specialty_key": specialtyKey}
}
