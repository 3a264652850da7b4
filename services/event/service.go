package event

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tech-arch1tect/secretsanta/config"
	"github.com/tech-arch1tect/secretsanta/services/logging"
)

var (
	ErrEventNotFound  = errors.New("event not found")
	ErrInvalidWindows = errors.New("event windows must be strictly increasing")
)

// Phase is the lifecycle state of an event at a given instant. It is
// always recomputed from the window instants, never stored.
type Phase string

const (
	PhaseNotYetOpen      Phase = "not_yet_open"
	PhasePreregistration Phase = "preregistration"
	PhaseRegistration    Phase = "registration"
	PhaseClosed          Phase = "closed"
)

type Service struct {
	config *config.Config
	db     *gorm.DB
	logger *logging.Service
	now    func() time.Time
}

func NewService(cfg *config.Config, db *gorm.DB, logger *logging.Service) *Service {
	return &Service{
		config: cfg,
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// NewServiceWithClock pins the clock for tests.
func NewServiceWithClock(cfg *config.Config, db *gorm.DB, logger *logging.Service, now func() time.Time) *Service {
	s := NewService(cfg, db, logger)
	s.now = now
	return s
}

// PhaseAt classifies an event against an instant. Pre-registration is
// [PreregistrationStart, RegistrationStart); registration is
// [RegistrationStart, RegistrationEnd).
func PhaseAt(e *Event, now time.Time) Phase {
	switch {
	case now.Before(e.PreregistrationStart):
		return PhaseNotYetOpen
	case now.Before(e.RegistrationStart):
		return PhasePreregistration
	case now.Before(e.RegistrationEnd):
		return PhaseRegistration
	default:
		return PhaseClosed
	}
}

// Phase classifies an event against the service clock.
func (s *Service) Phase(e *Event) Phase {
	return PhaseAt(e, s.now())
}

func validateWindows(e *Event) error {
	if !e.PreregistrationStart.Before(e.RegistrationStart) {
		return ErrInvalidWindows
	}
	if !e.RegistrationStart.Before(e.RegistrationEnd) {
		return ErrInvalidWindows
	}
	return nil
}

// Create validates the window ordering and allocates the next
// participant-facing sequence id inside the insert transaction.
func (s *Service) Create(e *Event) error {
	if err := validateWindows(e); err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var maxSeq uint
		// Unscoped so soft-deleted events still pin their number.
		row := tx.Unscoped().Model(&Event{}).Select("COALESCE(MAX(sequence_id), 0)").Row()
		if err := row.Scan(&maxSeq); err != nil {
			return err
		}
		e.SequenceID = maxSeq + 1
		return tx.Create(e).Error
	})
	if err != nil {
		return err
	}

	s.logger.Info("event created",
		zap.Uint("event_id", e.ID),
		zap.Uint("sequence_id", e.SequenceID))
	return nil
}

// Update replaces the editable fields of an existing event. Window
// ordering is re-validated; the sequence id never changes.
func (s *Service) Update(id uint, updated *Event) (*Event, error) {
	existing, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}

	existing.Name = updated.Name
	existing.Description = updated.Description
	existing.PreregistrationStart = updated.PreregistrationStart
	existing.RegistrationStart = updated.RegistrationStart
	existing.RegistrationEnd = updated.RegistrationEnd
	existing.StartsAt = updated.StartsAt
	existing.IsActive = updated.IsActive

	if err := validateWindows(existing); err != nil {
		return nil, err
	}
	if err := s.db.Save(existing).Error; err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *Service) FindByID(id uint) (*Event, error) {
	var e Event
	if err := s.db.First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (s *Service) List() ([]Event, error) {
	var events []Event
	if err := s.db.Order("sequence_id DESC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// Current returns the active event participants should see: the one with
// the earliest preregistration start among active events whose
// registration has not yet ended. No qualifying event returns (nil, nil).
func (s *Service) Current() (*Event, error) {
	var e Event
	err := s.db.
		Where("is_active = ?", true).
		Where("registration_end > ?", s.now()).
		Order("preregistration_start ASC").
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// SetActive flips the visibility toggle without touching the windows.
func (s *Service) SetActive(id uint, active bool) (*Event, error) {
	e, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}
	e.IsActive = active
	if err := s.db.Save(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) Delete(id uint) error {
	e, err := s.FindByID(id)
	if err != nil {
		return err
	}
	return s.db.Delete(e).Error
}
