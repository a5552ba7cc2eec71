package service

import (
	"context"
	"testing"
	"time"

	profvalidator "flpsaude/internal/professionals/validator"
	"flpsaude/pkg/config"
	apperrors "flpsaude/pkg/errors"
	"flpsaude/pkg/logger"
	"flpsaude/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type mockProfessionalRepository struct {
	createFunc   func(ctx context.Context, p *model.Professional) error
	findByIDFunc func(ctx context.Context, id string) (*model.Professional, error)
	findAllFunc  func(ctx context.Context, specialtyKey string, limit int, offset int) ([]*model.Professional, error)
	updateFunc   func(ctx context.Context, id string, p *model.Professional) (*mongo.UpdateResult, error)
	deleteFunc   func(ctx context.Context, id string) error
	countFunc    func(ctx context.Context, specialtyKey string) (int64, error)
}

func (m *mockProfessionalRepository) Create(ctx context.Context, p *model.Professional) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, p)
	}
	return nil
}

func (m *mockProfessionalRepository) FindByID(ctx context.Context, id string) (*model.Professional, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Professional{}, nil
}

func (m *mockProfessionalRepository) FindAll(ctx context.Context, specialtyKey string, limit int, offset int) ([]*model.Professional, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, specialtyKey, limit, offset)
	}
	return []*model.Professional{}, nil
}

func (m *mockProfessionalRepository) Update(ctx context.Context, id string, p *model.Professional) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, p)
	}
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockProfessionalRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockProfessionalRepository) Count(ctx context.Context, specialtyKey string) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, specialtyKey)
	}
	return 0, nil
}

func testConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:     "info",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	return &config.Config{
		Log:         log,
		ReadTimeout: 5 * time.Second,
	}
}

func TestCreate_SanitizesInput(t *testing.T) {
	cfg := testConfig()

	var captured *model.Professional
	mockRepo := &mockProfessionalRepository{
		createFunc: func(ctx context.Context, p *model.Professional) error {
			captured = p
			return nil
		},
	}

	svc := &professionalService{
		cfg:       cfg,
		repo:      mockRepo,
		validator: profvalidator.NewProfessionalValidator(cfg.Log),
	}

	p := &model.Professional{
		Name:      "  Dra.  Ana   Souza ",
		Specialty: "  Clínica   Geral ",
		Phone:     "+55 (11) 98765-4321",
		Active:    true,
	}

	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured.Name != "Dra. Ana Souza" {
		t.Errorf("expected normalized name, got %q", captured.Name)
	}
	if captured.Specialty != "Clínica Geral" {
		t.Errorf("expected normalized specialty, got %q", captured.Specialty)
	}
	if captured.SpecialtyKey != "clínica_geral" {
		t.Errorf("expected derived specialty key, got %q", captured.SpecialtyKey)
	}
	if captured.Phone != "+5511987654321" {
		t.Errorf("expected E.164 phone, got %q", captured.Phone)
	}
}

func TestCreate_ValidationFailure(t *testing.T) {
	cfg := testConfig()

	svc := &professionalService{
		cfg:       cfg,
		repo:      &mockProfessionalRepository{},
		validator: profvalidator.NewProfessionalValidator(cfg.Log),
	}

	p := &model.Professional{
		Name: "X", // below min length
	}

	err := svc.Create(context.Background(), p)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected code %s, got %s", apperrors.CodeValidation, appErr.Code)
	}
}

func TestGetAll_CombinesCountAndList(t *testing.T) {
	cfg := testConfig()

	mockRepo := &mockProfessionalRepository{
		countFunc: func(ctx context.Context, specialtyKey string) (int64, error) {
			time.Sleep(10 * time.Millisecond)
			return 3, nil
		},
		findAllFunc: func(ctx context.Context, specialtyKey string, limit int, offset int) ([]*model.Professional, error) {
			time.Sleep(10 * time.Millisecond)
			return []*model.Professional{
				{ID: "1", Name: "Dra. Ana Souza"},
			}, nil
		},
	}

	svc := &professionalService{
		cfg:       cfg,
		repo:      mockRepo,
		validator: profvalidator.NewProfessionalValidator(cfg.Log),
	}

	for i := 0; i < 20; i++ {
		professionals, count, err := svc.GetAll(context.Background(), "", 10, 0)
		if err != nil {
			t.Fatalf("iteration %d: unexpected error: %v", i, err)
		}
		if count != 3 {
			t.Errorf("iteration %d: expected count 3, got %d", i, count)
		}
		if len(professionals) != 1 {
			t.Errorf("iteration %d: expected 1 professional, got %d", i, len(professionals))
		}
	}
}

func TestGetAll_SpecialtyFilterIsNormalized(t *testing.T) {
	cfg := testConfig()

	var gotKey string
	mockRepo := &mockProfessionalRepository{
		countFunc: func(ctx context.Context, specialtyKey string) (int64, error) {
			return 1, nil
		},
		findAllFunc: func(ctx context.Context, specialtyKey string, limit int, offset int) ([]*model.Professional, error) {
			gotKey = specialtyKey
			return []*model.Professional{{ID: "1", Name: "Dra. Ana Souza"}}, nil
		},
	}

	svc := &professionalService{
		cfg:       cfg,
		repo:      mockRepo,
		validator: profvalidator.NewProfessionalValidator(cfg.Log),
	}

	if _, _, err := svc.GetAll(context.Background(), "  Clínica  Geral ", 10, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "clínica_geral" {
		t.Errorf("expected normalized specialty key filter, got %q", gotKey)
	}
}

func TestUpdate_MergePreservesUnsetFields(t *testing.T) {
	cfg := testConfig()

	existing := &model.Professional{
		ID:        "507f1f77bcf86cd799439011",
		Name:      "Dra. Ana Souza",
		Specialty: "Clínica Geral",
		Phone:     "+5511987654321",
		Active:    true,
	}

	var updated *model.Professional
	mockRepo := &mockProfessionalRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Professional, error) {
			return existing, nil
		},
		updateFunc: func(ctx context.Context, id string, p *model.Professional) (*mongo.UpdateResult, error) {
			updated = p
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}

	svc := &professionalService{
		cfg:       cfg,
		repo:      mockRepo,
		validator: profvalidator.NewProfessionalValidator(cfg.Log),
	}

	inactive := false
	err := svc.Update(context.Background(), existing.ID, &model.ProfessionalUpdate{
		Active: &inactive,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.Active {
		t.Error("expected professional to be deactivated")
	}
	if updated.Name != existing.Name {
		t.Errorf("expected name to be preserved, got %q", updated.Name)
	}
	if updated.Specialty != existing.Specialty {
		t.Errorf("expected specialty to be preserved, got %q", updated.Specialty)
	}
}
