package service

import (
	"context"
	"errors"
	"sync"

	professionalerrors "flpsaude/internal/professionals/errors"
	"flpsaude/internal/professionals/repository"
	"flpsaude/internal/professionals/validator"
	"flpsaude/pkg/config"
	apperrors "flpsaude/pkg/errors"
	"flpsaude/pkg/model"
	"flpsaude/pkg/sanitizer"
)

type ProfessionalService interface {
	Create(ctx context.Context, p *model.Professional) error
	GetByID(ctx context.Context, id string) (*model.Professional, error)
	GetAll(ctx context.Context, specialty string, limit int, offset int) ([]*model.Professional, int64, error)
	Update(ctx context.Context, id string, updates *model.ProfessionalUpdate) error
	Delete(ctx context.Context, id string) error
}

type professionalService struct {
	repo      repository.ProfessionalRepository
	validator *validator.ProfessionalValidator
	cfg       *config.Config
}

func NewProfessionalService(
	repo repository.ProfessionalRepository,
	validator *validator.ProfessionalValidator,
	cfg *config.Config,
) ProfessionalService {
	return &professionalService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *professionalService) Create(ctx context.Context, p *model.Professional) error {
	s.sanitize(p)

	if err := s.validator.Validate(p); err != nil {
		s.cfg.Log.Warn("Professional validation failed",
			"name", p.Name,
			"error", err,
		)
		return apperrors.Validation("Professional validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.cfg.Log.Error("Failed to create professional",
			"name", p.Name,
			"error", err,
		)
		return apperrors.Internal("Failed to create professional", err)
	}

	s.cfg.Log.Info("Professional created successfully",
		"id", p.ID,
		"name", p.Name,
		"specialty", p.Specialty,
	)
	return nil
}

func (s *professionalService) GetByID(ctx context.Context, id string) (*model.Professional, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Professional ID cannot be empty")
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, professionalerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Professional", id)
		}
		if errors.Is(err, professionalerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid professional ID format")
		}
		s.cfg.Log.Error("Failed to get professional by ID",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve professional", err)
	}

	return p, nil
}

func (s *professionalService) GetAll(ctx context.Context, specialty string, limit int, offset int) ([]*model.Professional, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	if offset < 0 {
		offset = 0
	}
	specialtyKey := sanitizer.SpecialtyKey(specialty)

	// Shared context so one failing read cancels its sibling
	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var professionals []*model.Professional
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(sharedCtx, specialtyKey)
		if err != nil {
			s.cfg.Log.Error("Failed to count professionals", "error", err)
			errCount = apperrors.Internal("Failed to count professionals", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		professionals, err = s.repo.FindAll(sharedCtx, specialtyKey, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get all professionals",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve professionals", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return professionals, count, nil
}

func (s *professionalService) Update(ctx context.Context, id string, updates *model.ProfessionalUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Professional ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, professionalerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Professional", id)
		}
		if errors.Is(err, professionalerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid professional ID format")
		}
		return apperrors.Internal("Failed to check professional existence", err)
	}

	s.sanitizeUpdate(updates)
	merged := s.mergeUpdates(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Professional validation failed",
			"id", id,
			"error", err,
		)
		return apperrors.Validation("Professional validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if _, err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, professionalerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Professional", id)
		}
		s.cfg.Log.Error("Failed to update professional",
			"id", id,
			"error", err,
		)
		return apperrors.Internal("Failed to update professional", err)
	}

	s.cfg.Log.Info("Professional updated successfully", "id", id, "name", merged.Name)
	return nil
}

func (s *professionalService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Professional ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, professionalerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Professional", id)
		}
		if errors.Is(err, professionalerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid professional ID format")
		}
		s.cfg.Log.Error("Failed to delete professional",
			"id", id,
			"error", err,
		)
		return apperrors.Internal("Failed to delete professional", err)
	}

	s.cfg.Log.Info("Professional deleted successfully", "id", id)
	return nil
}

func (s *professionalService) sanitize(p *model.Professional) {
	p.Name = sanitizer.NormalizeName(p.Name)
	p.Specialty = sanitizer.NormalizeSpecialty(p.Specialty)
	p.SpecialtyKey = sanitizer.SpecialtyKey(p.Specialty)
	if p.Phone != "" {
		p.Phone = sanitizer.NormalizePhone(p.Phone)
	}
}

func (s *professionalService) sanitizeUpdate(updates *model.ProfessionalUpdate) {
	if updates.Name != "" {
		updates.Name = sanitizer.NormalizeName(updates.Name)
	}
	if updates.Specialty != "" {
		updates.Specialty = sanitizer.NormalizeSpecialty(updates.Specialty)
	}
	if updates.Phone != "" {
		updates.Phone = sanitizer.NormalizePhone(updates.Phone)
	}
}

func (s *professionalService) mergeUpdates(existing *model.Professional, updates *model.ProfessionalUpdate) *model.Professional {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Specialty != "" {
		merged.Specialty = updates.Specialty
	}
	if updates.Phone != "" {
		merged.Phone = updates.Phone
	}
	if updates.Email != "" {
		merged.Email = updates.Email
	}
	if updates.Active != nil {
		merged.Active = *updates.Active
	}
	merged.SpecialtyKey = sanitizer.SpecialtyKey(merged.Specialty)

	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt
	return &merged
}
