package service

import (
	"context"
	"errors"

	availabilityerrors "flpsaude/internal/availability/errors"
	"flpsaude/internal/availability/publisher"
	"flpsaude/internal/availability/repository"
	"flpsaude/internal/availability/validator"
	"flpsaude/pkg/config"
	apperrors "flpsaude/pkg/errors"
	"flpsaude/pkg/model"
)

type AvailabilityService interface {
	CreateRule(ctx context.Context, rule *model.RecurringRule) error
	GetRulesByProfessional(ctx context.Context, professionalID string) ([]*model.RecurringRule, error)
	UpdateRule(ctx context.Context, id string, updates *model.RecurringRuleUpdate) error
	DeleteRule(ctx context.Context, id string) error

	CreateOverride(ctx context.Context, override *model.AvailabilityOverride) error
	GetOverridesByProfessional(ctx context.Context, professionalID string) ([]*model.AvailabilityOverride, error)
	UpdateOverride(ctx context.Context, id string, updates *model.AvailabilityOverrideUpdate) error
	DeleteOverride(ctx context.Context, id string) error
}

type availabilityService struct {
	repo      repository.AvailabilityRepository
	validator *validator.AvailabilityValidator
	publisher publisher.ChangePublisher
	cfg       *config.Config
}

func NewAvailabilityService(
	repo repository.AvailabilityRepository,
	validator *validator.AvailabilityValidator,
	changePublisher publisher.ChangePublisher,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		repo:      repo,
		validator: validator,
		publisher: changePublisher,
		cfg:       cfg,
	}
}

func (s *availabilityService) CreateRule(ctx context.Context, rule *model.RecurringRule) error {
	if err := s.validator.ValidateRule(rule); err != nil {
		s.cfg.Log.Warn("Recurring rule validation failed",
			"professional_id", rule.ProfessionalID,
			"error", err,
		)
		return apperrors.Validation("Recurring rule validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.CreateRule(ctx, rule); err != nil {
		s.cfg.Log.Error("Failed to create recurring rule",
			"professional_id", rule.ProfessionalID,
			"error", err,
		)
		return apperrors.Internal("Failed to create recurring rule", err)
	}

	s.cfg.Log.Info("Recurring rule created successfully",
		"id", rule.ID,
		"professional_id", rule.ProfessionalID,
		"day_of_week", rule.DayOfWeek,
	)
	s.notifyChanged(ctx, rule.ProfessionalID)
	return nil
}

func (s *availabilityService) GetRulesByProfessional(ctx context.Context, professionalID string) ([]*model.RecurringRule, error) {
	if professionalID == "" {
		return nil, apperrors.InvalidInput("Professional ID cannot be empty")
	}

	rules, err := s.repo.FindRulesByProfessional(ctx, professionalID)
	if err != nil {
		s.cfg.Log.Error("Failed to get recurring rules",
			"professional_id", professionalID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve recurring rules", err)
	}
	return rules, nil
}

func (s *availabilityService) UpdateRule(ctx context.Context, id string, updates *model.RecurringRuleUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Rule ID cannot be empty")
	}

	existing, err := s.repo.FindRuleByID(ctx, id)
	if err != nil {
		return s.translateRuleError(err, id)
	}

	merged := *existing
	if updates.DayOfWeek != nil {
		merged.DayOfWeek = *updates.DayOfWeek
	}
	if updates.StartTime != "" {
		merged.StartTime = updates.StartTime
	}
	if updates.EndTime != "" {
		merged.EndTime = updates.EndTime
	}

	if err := s.validator.ValidateRule(&merged); err != nil {
		return apperrors.Validation("Recurring rule validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.UpdateRule(ctx, id, &merged); err != nil {
		if translated := s.translateRuleError(err, id); apperrors.IsAppError(translated) {
			return translated
		}
		s.cfg.Log.Error("Failed to update recurring rule", "id", id, "error", err)
		return apperrors.Internal("Failed to update recurring rule", err)
	}

	s.cfg.Log.Info("Recurring rule updated successfully", "id", id)
	s.notifyChanged(ctx, existing.ProfessionalID)
	return nil
}

func (s *availabilityService) DeleteRule(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Rule ID cannot be empty")
	}

	existing, err := s.repo.FindRuleByID(ctx, id)
	if err != nil {
		return s.translateRuleError(err, id)
	}

	if err := s.repo.DeleteRule(ctx, id); err != nil {
		if translated := s.translateRuleError(err, id); apperrors.IsAppError(translated) {
			return translated
		}
		s.cfg.Log.Error("Failed to delete recurring rule", "id", id, "error", err)
		return apperrors.Internal("Failed to delete recurring rule", err)
	}

	s.cfg.Log.Info("Recurring rule deleted successfully", "id", id)
	s.notifyChanged(ctx, existing.ProfessionalID)
	return nil
}

func (s *availabilityService) CreateOverride(ctx context.Context, override *model.AvailabilityOverride) error {
	if err := s.validator.ValidateOverride(override); err != nil {
		s.cfg.Log.Warn("Availability override validation failed",
			"professional_id", override.ProfessionalID,
			"error", err,
		)
		return apperrors.Validation("Availability override validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.CreateOverride(ctx, override); err != nil {
		s.cfg.Log.Error("Failed to create availability override",
			"professional_id", override.ProfessionalID,
			"error", err,
		)
		return apperrors.Internal("Failed to create availability override", err)
	}

	s.cfg.Log.Info("Availability override created successfully",
		"id", override.ID,
		"professional_id", override.ProfessionalID,
		"override_date", override.OverrideDate,
		"is_available", override.IsAvailable,
	)
	s.notifyChanged(ctx, override.ProfessionalID)
	return nil
}

func (s *availabilityService) GetOverridesByProfessional(ctx context.Context, professionalID string) ([]*model.AvailabilityOverride, error) {
	if professionalID == "" {
		return nil, apperrors.InvalidInput("Professional ID cannot be empty")
	}

	overrides, err := s.repo.FindOverridesByProfessional(ctx, professionalID)
	if err != nil {
		s.cfg.Log.Error("Failed to get availability overrides",
			"professional_id", professionalID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve availability overrides", err)
	}
	return overrides, nil
}

func (s *availabilityService) UpdateOverride(ctx context.Context, id string, updates *model.AvailabilityOverrideUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Override ID cannot be empty")
	}

	existing, err := s.repo.FindOverrideByID(ctx, id)
	if err != nil {
		return s.translateOverrideError(err, id)
	}

	merged := *existing
	if updates.OverrideDate != "" {
		merged.OverrideDate = updates.OverrideDate
	}
	if updates.StartTime != "" {
		merged.StartTime = updates.StartTime
	}
	if updates.EndTime != "" {
		merged.EndTime = updates.EndTime
	}
	if updates.IsAvailable != nil {
		merged.IsAvailable = *updates.IsAvailable
	}

	if err := s.validator.ValidateOverride(&merged); err != nil {
		return apperrors.Validation("Availability override validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.UpdateOverride(ctx, id, &merged); err != nil {
		if translated := s.translateOverrideError(err, id); apperrors.IsAppError(translated) {
			return translated
		}
		s.cfg.Log.Error("Failed to update availability override", "id", id, "error", err)
		return apperrors.Internal("Failed to update availability override", err)
	}

	s.cfg.Log.Info("Availability override updated successfully", "id", id)
	s.notifyChanged(ctx, existing.ProfessionalID)
	return nil
}

func (s *availabilityService) DeleteOverride(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Override ID cannot be empty")
	}

	existing, err := s.repo.FindOverrideByID(ctx, id)
	if err != nil {
		return s.translateOverrideError(err, id)
	}

	if err := s.repo.DeleteOverride(ctx, id); err != nil {
		if translated := s.translateOverrideError(err, id); apperrors.IsAppError(translated) {
			return translated
		}
		s.cfg.Log.Error("Failed to delete availability override", "id", id, "error", err)
		return apperrors.Internal("Failed to delete availability override", err)
	}

	s.cfg.Log.Info("Availability override deleted successfully", "id", id)
	s.notifyChanged(ctx, existing.ProfessionalID)
	return nil
}

// notifyChanged publishes the change event. Publishing is best effort: the
// periodic reconcile run covers missed events, so a publish failure never
// fails the mutation.
func (s *availabilityService) notifyChanged(ctx context.Context, professionalID string) {
	if err := s.publisher.PublishAvailabilityChanged(ctx, professionalID); err != nil {
		s.cfg.Log.Warn("Availability change event not delivered",
			"professional_id", professionalID,
			"error", err,
		)
	}
}

func (s *availabilityService) translateRuleError(err error, id string) error {
	if errors.Is(err, availabilityerrors.ErrRuleNotFound) {
		return apperrors.NotFoundWithID("Recurring rule", id)
	}
	if errors.Is(err, availabilityerrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid rule ID format")
	}
	return apperrors.Internal("Failed to access recurring rule", err)
}

func (s *availabilityService) translateOverrideError(err error, id string) error {
	if errors.Is(err, availabilityerrors.ErrOverrideNotFound) {
		return apperrors.NotFoundWithID("Availability override", id)
	}
	if errors.Is(err, availabilityerrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid override ID format")
	}
	return apperrors.Internal("Failed to access availability override", err)
}
