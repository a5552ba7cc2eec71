package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	appointmentserrors "flpsaude/internal/appointments/errors"
	"flpsaude/internal/appointments/repository"
	"flpsaude/internal/appointments/validator"
	"flpsaude/pkg/config"
	dbmongo "flpsaude/pkg/db/mongo"
	apperrors "flpsaude/pkg/errors"
	"flpsaude/pkg/model"
	"flpsaude/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type AppointmentService interface {
	Book(ctx context.Context, appointment *model.Appointment) error
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	GetAll(ctx context.Context, professionalID string, limit int, offset int64) ([]*model.Appointment, int64, error)
	Update(ctx context.Context, id string, updates *model.AppointmentUpdate) error
	Cancel(ctx context.Context, id string) error
}

type appointmentService struct {
	repo      repository.AppointmentRepository
	lockRepo  repository.SlotLockRepository
	txManager dbmongo.TransactionManager
	validator *validator.AppointmentValidator
	cfg       *config.Config
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	lockRepo repository.SlotLockRepository,
	txManager dbmongo.TransactionManager,
	validator *validator.AppointmentValidator,
	cfg *config.Config,
) AppointmentService {
	return &appointmentService{
		repo:      repo,
		lockRepo:  lockRepo,
		txManager: txManager,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *appointmentService) Book(ctx context.Context, appointment *model.Appointment) error {
	s.applyDefaults(appointment)
	s.sanitize(appointment)
	if err := s.validate(appointment); err != nil {
		return err
	}

	// Acquire advisory lock so two requests cannot book the same slot
	lockID, err := s.acquireSlotLock(ctx, appointment.SlotID)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	slot, err := s.repo.FindSlotByID(ctx, appointment.SlotID)
	if err != nil {
		if errors.Is(err, appointmentserrors.ErrSlotNotFound) {
			return apperrors.NotFoundWithID("Slot", appointment.SlotID)
		}
		if errors.Is(err, appointmentserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid slot ID format")
		}
		return apperrors.Internal("Failed to verify slot", err)
	}
	if slot.ProfessionalID != appointment.ProfessionalID {
		return apperrors.InvalidInput("Slot does not belong to the given professional")
	}

	// The occupancy check and insert run in one transaction so a
	// cancelled-then-rebooked race cannot double-book the slot.
	err = s.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		taken, err := s.repo.HasActiveForSlot(sessCtx, appointment.SlotID)
		if err != nil {
			return apperrors.Internal("Failed to check slot occupancy", err)
		}
		if taken {
			return apperrors.Conflict("This slot is already booked")
		}

		if err := s.repo.Create(sessCtx, appointment); err != nil {
			return apperrors.Internal("Failed to create appointment", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create appointment",
			"professional_id", appointment.ProfessionalID,
			"slot_id", appointment.SlotID,
			"error", err,
		)
		return err
	}

	s.cfg.Log.Info("Appointment booked successfully",
		"id", appointment.ID,
		"professional_id", appointment.ProfessionalID,
		"slot_id", appointment.SlotID,
		"start_time", slot.StartTime,
	)
	return nil
}

func (s *appointmentService) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	appointment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateError(err, id)
	}

	return appointment, nil
}

func (s *appointmentService) GetAll(ctx context.Context, professionalID string, limit int, offset int64) ([]*model.Appointment, int64, error) {
	var count int64
	var appointments []*model.Appointment
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, professionalID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count appointments", "error", errCount)
			errCount = apperrors.Internal("Failed to count appointments", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		appointments, errFind = s.repo.FindAll(ctx, professionalID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list appointments", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve appointments", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return appointments, count, nil
}

func (s *appointmentService) Update(ctx context.Context, id string, updates *model.AppointmentUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.translateError(err, id)
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Appointment update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := *existing
	if updates.Status != "" {
		merged.Status = updates.Status
	}
	if updates.Notes != "" {
		merged.Notes = sanitizer.TrimAndNormalize(updates.Notes)
	}

	if err := s.repo.Update(ctx, id, &merged); err != nil {
		if translated := s.translateError(err, id); apperrors.IsAppError(translated) {
			return translated
		}
		s.cfg.Log.Error("Failed to update appointment", "id", id, "error", err)
		return apperrors.Internal("Failed to update appointment", err)
	}

	s.cfg.Log.Info("Appointment updated successfully", "id", id, "status", merged.Status)
	return nil
}

func (s *appointmentService) Cancel(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.translateError(err, id)
	}

	if existing.Status == model.AppointmentStatusCancelled {
		return nil
	}

	existing.Status = model.AppointmentStatusCancelled
	if err := s.repo.Update(ctx, id, existing); err != nil {
		s.cfg.Log.Error("Failed to cancel appointment", "id", id, "error", err)
		return apperrors.Internal("Failed to cancel appointment", err)
	}

	s.cfg.Log.Info("Appointment cancelled", "id", id, "slot_id", existing.SlotID)
	return nil
}

// --- Helpers ---

func (s *appointmentService) applyDefaults(a *model.Appointment) {
	if a.Status == "" {
		a.Status = model.AppointmentStatusScheduled
	}
}

func (s *appointmentService) sanitize(a *model.Appointment) {
	a.PatientName = sanitizer.NormalizeName(a.PatientName)
	a.PatientPhone = sanitizer.NormalizePhone(a.PatientPhone)
	a.Notes = sanitizer.TrimAndNormalize(a.Notes)
}

func (s *appointmentService) validate(a *model.Appointment) error {
	if err := s.validator.Validate(a); err != nil {
		s.cfg.Log.Warn("Appointment validation failed", "error", err)
		return apperrors.Validation("Appointment validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *appointmentService) translateError(err error, id string) error {
	if errors.Is(err, appointmentserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Appointment", id)
	}
	if errors.Is(err, appointmentserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid appointment ID format")
	}
	return apperrors.Internal("Failed to access appointment", err)
}

// acquireSlotLock creates an advisory lock for the slot being booked.
// Returns the lock ID if successful, or a conflict error if another
// request holds the lock.
func (s *appointmentService) acquireSlotLock(ctx context.Context, slotID string) (string, error) {
	lockID := fmt.Sprintf("slot_lock_%s", slotID)

	lock := &model.SlotLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.SlotLockTTL),
	}

	_, err := s.lockRepo.Create(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This slot is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire slot lock", err)
	}

	return lockID, nil
}

func (s *appointmentService) releaseSlotLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}
