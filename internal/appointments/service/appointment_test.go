package service

import (
	"context"
	"testing"
	"time"

	appointmentserrors "flpsaude/internal/appointments/errors"
	"flpsaude/internal/appointments/validator"
	"flpsaude/pkg/config"
	dbmongo "flpsaude/pkg/db/mongo"
	apperrors "flpsaude/pkg/errors"
	"flpsaude/pkg/logger"
	"flpsaude/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type mockAppointmentRepository struct {
	createFunc           func(ctx context.Context, appointment *model.Appointment) error
	findByIDFunc         func(ctx context.Context, id string) (*model.Appointment, error)
	findAllFunc          func(ctx context.Context, professionalID string, limit int, offset int64) ([]*model.Appointment, error)
	countFunc            func(ctx context.Context, professionalID string) (int64, error)
	updateFunc           func(ctx context.Context, id string, appointment *model.Appointment) error
	findSlotByIDFunc     func(ctx context.Context, slotID string) (*model.Slot, error)
	hasActiveForSlotFunc func(ctx context.Context, slotID string) (bool, error)
}

func (m *mockAppointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	return m.createFunc(ctx, appointment)
}

func (m *mockAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockAppointmentRepository) FindAll(ctx context.Context, professionalID string, limit int, offset int64) ([]*model.Appointment, error) {
	return m.findAllFunc(ctx, professionalID, limit, offset)
}

func (m *mockAppointmentRepository) Count(ctx context.Context, professionalID string) (int64, error) {
	return m.countFunc(ctx, professionalID)
}

func (m *mockAppointmentRepository) Update(ctx context.Context, id string, appointment *model.Appointment) error {
	return m.updateFunc(ctx, id, appointment)
}

func (m *mockAppointmentRepository) FindSlotByID(ctx context.Context, slotID string) (*model.Slot, error) {
	return m.findSlotByIDFunc(ctx, slotID)
}

func (m *mockAppointmentRepository) HasActiveForSlot(ctx context.Context, slotID string) (bool, error) {
	return m.hasActiveForSlotFunc(ctx, slotID)
}

// fakeTxManager runs the transaction body directly; the repository
// mocks ignore the session context.
type fakeTxManager struct{}

func (fakeTxManager) ExecuteTransaction(ctx context.Context, fn dbmongo.TransactionFunc) error {
	return fn(nil)
}

type mockSlotLockRepository struct {
	createFunc func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error)
	deleteFunc func(ctx context.Context, lockID string) error
	deleted    []string
}

func (m *mockSlotLockRepository) Create(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, lock)
	}
	return lock, nil
}

func (m *mockSlotLockRepository) Delete(ctx context.Context, lockID string) error {
	m.deleted = append(m.deleted, lockID)
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, lockID)
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		SlotLockTTL: 30 * time.Second,
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
	}
}

func newTestService(repo *mockAppointmentRepository, locks *mockSlotLockRepository) AppointmentService {
	cfg := testConfig()
	return NewAppointmentService(repo, locks, fakeTxManager{}, validator.NewAppointmentValidator(cfg.Log), cfg)
}

const (
	testProfessionalID = "507f1f77bcf86cd799439011"
	testSlotID         = "64b0c1a2e4b0f5a6d7c8b901"
)

func testSlot() *model.Slot {
	start := time.Date(2026, 9, 7, 12, 0, 0, 0, time.UTC)
	return &model.Slot{
		ID:             testSlotID,
		ProfessionalID: testProfessionalID,
		StartTime:      start,
		EndTime:        start.Add(30 * time.Minute),
	}
}

func TestBook_Success(t *testing.T) {
	var created *model.Appointment
	repo := &mockAppointmentRepository{
		findSlotByIDFunc: func(ctx context.Context, slotID string) (*model.Slot, error) {
			return testSlot(), nil
		},
		hasActiveForSlotFunc: func(ctx context.Context, slotID string) (bool, error) {
			return false, nil
		},
		createFunc: func(ctx context.Context, appointment *model.Appointment) error {
			appointment.ID = "appt-1"
			created = appointment
			return nil
		},
	}
	locks := &mockSlotLockRepository{}
	svc := newTestService(repo, locks)

	appointment := &model.Appointment{
		ProfessionalID: testProfessionalID,
		SlotID:         testSlotID,
		PatientName:    "  Maria   Clara Lima ",
		PatientPhone:   "(11) 98765-4321",
	}

	if err := svc.Book(context.Background(), appointment); err != nil {
		t.Fatalf("Book() unexpected error: %v", err)
	}

	if created == nil {
		t.Fatal("expected appointment to be created")
	}
	if created.PatientName != "Maria Clara Lima" {
		t.Errorf("patient name not normalized, got %q", created.PatientName)
	}
	if created.PatientPhone != "+5511987654321" {
		t.Errorf("patient phone not normalized, got %q", created.PatientPhone)
	}
	if created.Status != model.AppointmentStatusScheduled {
		t.Errorf("expected default status scheduled, got %q", created.Status)
	}
	if len(locks.deleted) != 1 {
		t.Errorf("expected slot lock to be released once, got %v", locks.deleted)
	}
}

func TestBook_SlotAlreadyBooked(t *testing.T) {
	repo := &mockAppointmentRepository{
		findSlotByIDFunc: func(ctx context.Context, slotID string) (*model.Slot, error) {
			return testSlot(), nil
		},
		hasActiveForSlotFunc: func(ctx context.Context, slotID string) (bool, error) {
			return true, nil
		},
		createFunc: func(ctx context.Context, appointment *model.Appointment) error {
			t.Fatal("create should not be called when the slot is taken")
			return nil
		},
	}
	locks := &mockSlotLockRepository{}
	svc := newTestService(repo, locks)

	appointment := &model.Appointment{
		ProfessionalID: testProfessionalID,
		SlotID:         testSlotID,
		PatientName:    "Maria Clara Lima",
		PatientPhone:   "+5511987654321",
	}

	err := svc.Book(context.Background(), appointment)
	if err == nil {
		t.Fatal("Book() expected conflict error, got nil")
	}

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected conflict error code, got %v", err)
	}
	if len(locks.deleted) != 1 {
		t.Errorf("lock must be released even on failure, got %v", locks.deleted)
	}
}

func TestBook_LockHeldByAnotherRequest(t *testing.T) {
	repo := &mockAppointmentRepository{
		findSlotByIDFunc: func(ctx context.Context, slotID string) (*model.Slot, error) {
			t.Fatal("slot lookup should not happen when the lock is held")
			return nil, nil
		},
	}
	locks := &mockSlotLockRepository{
		createFunc: func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
			return nil, mongo.WriteException{
				WriteErrors: []mongo.WriteError{{Code: 11000}},
			}
		},
	}
	svc := newTestService(repo, locks)

	appointment := &model.Appointment{
		ProfessionalID: testProfessionalID,
		SlotID:         testSlotID,
		PatientName:    "Maria Clara Lima",
		PatientPhone:   "+5511987654321",
	}

	err := svc.Book(context.Background(), appointment)
	if err == nil {
		t.Fatal("Book() expected conflict error, got nil")
	}

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected conflict error code, got %v", err)
	}
}

func TestBook_SlotBelongsToOtherProfessional(t *testing.T) {
	repo := &mockAppointmentRepository{
		findSlotByIDFunc: func(ctx context.Context, slotID string) (*model.Slot, error) {
			slot := testSlot()
			slot.ProfessionalID = "64b0c1a2e4b0f5a6d7c8b902"
			return slot, nil
		},
	}
	locks := &mockSlotLockRepository{}
	svc := newTestService(repo, locks)

	appointment := &model.Appointment{
		ProfessionalID: testProfessionalID,
		SlotID:         testSlotID,
		PatientName:    "Maria Clara Lima",
		PatientPhone:   "+5511987654321",
	}

	err := svc.Book(context.Background(), appointment)
	if err == nil {
		t.Fatal("Book() expected error, got nil")
	}

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected invalid input error code, got %v", err)
	}
}

func TestBook_SlotNotFound(t *testing.T) {
	repo := &mockAppointmentRepository{
		findSlotByIDFunc: func(ctx context.Context, slotID string) (*model.Slot, error) {
			return nil, appointmentserrors.ErrSlotNotFound
		},
	}
	locks := &mockSlotLockRepository{}
	svc := newTestService(repo, locks)

	appointment := &model.Appointment{
		ProfessionalID: testProfessionalID,
		SlotID:         testSlotID,
		PatientName:    "Maria Clara Lima",
		PatientPhone:   "+5511987654321",
	}

	err := svc.Book(context.Background(), appointment)
	if err == nil {
		t.Fatal("Book() expected not found error, got nil")
	}

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected not found error code, got %v", err)
	}
}

func TestCancel_Idempotent(t *testing.T) {
	updateCalls := 0
	repo := &mockAppointmentRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
			return &model.Appointment{
				ID:             id,
				ProfessionalID: testProfessionalID,
				SlotID:         testSlotID,
				PatientName:    "Maria Clara Lima",
				PatientPhone:   "+5511987654321",
				Status:         model.AppointmentStatusCancelled,
			}, nil
		},
		updateFunc: func(ctx context.Context, id string, appointment *model.Appointment) error {
			updateCalls++
			return nil
		},
	}
	locks := &mockSlotLockRepository{}
	svc := newTestService(repo, locks)

	if err := svc.Cancel(context.Background(), "appt-1"); err != nil {
		t.Fatalf("Cancel() unexpected error: %v", err)
	}
	if updateCalls != 0 {
		t.Errorf("cancelling an already cancelled appointment should be a no-op, got %d updates", updateCalls)
	}
}

func TestUpdate_InvalidStatusRejected(t *testing.T) {
	repo := &mockAppointmentRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
			return &model.Appointment{
				ID:             id,
				ProfessionalID: testProfessionalID,
				SlotID:         testSlotID,
				PatientName:    "Maria Clara Lima",
				PatientPhone:   "+5511987654321",
				Status:         model.AppointmentStatusScheduled,
			}, nil
		},
		updateFunc: func(ctx context.Context, id string, appointment *model.Appointment) error {
			t.Fatal("update should not be called with an invalid status")
			return nil
		},
	}
	locks := &mockSlotLockRepository{}
	svc := newTestService(repo, locks)

	err := svc.Update(context.Background(), "appt-1", &model.AppointmentUpdate{Status: "archived"})
	if err == nil {
		t.Fatal("Update() expected validation error, got nil")
	}

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected validation error code, got %v", err)
	}
}
