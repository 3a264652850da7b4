package registration

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tech-arch1tect/secretsanta/config"
	"github.com/tech-arch1tect/secretsanta/services/account"
	"github.com/tech-arch1tect/secretsanta/services/event"
	"github.com/tech-arch1tect/secretsanta/services/logging"
)

var (
	ErrProfileIncomplete  = errors.New("profile must be completed before registering")
	ErrEventNotOpen       = errors.New("event is not open for registration")
	ErrUnknownKind        = errors.New("unknown registration kind")
	ErrKindMismatch       = errors.New("registration kind does not match the current window")
	ErrAlreadyRegistered  = errors.New("already registered for this event")
	ErrNotRegistered      = errors.New("no registration for this event")
	ErrAlreadyConfirmed   = errors.New("registration already confirmed")
	ErrConfirmationClosed = errors.New("confirmation is only possible during the registration window")
	ErrAddressRequired    = errors.New("delivery address is required")
)

type Service struct {
	config *config.Config
	db     *gorm.DB
	logger *logging.Service
	events *event.Service
	now    func() time.Time
}

func NewService(cfg *config.Config, db *gorm.DB, logger *logging.Service, events *event.Service) *Service {
	return &Service{
		config: cfg,
		db:     db,
		logger: logger,
		events: events,
		now:    time.Now,
	}
}

func NewServiceWithClock(cfg *config.Config, db *gorm.DB, logger *logging.Service, events *event.Service, now func() time.Time) *Service {
	s := NewService(cfg, db, logger, events)
	s.now = now
	return s
}

// Register admits an account into an event. The account needs a complete
// profile, the event must be active and inside one of its windows, and
// the pair must not already exist. The requested kind must match the
// current window; an empty kind takes the window's kind. A
// registration-kind entry is confirmed on the spot with the profile
// address as the delivery snapshot.
func (s *Service) Register(acc *account.Account, e *event.Event, kind string) (*Registration, error) {
	if !acc.ProfileCompleted {
		return nil, ErrProfileIncomplete
	}
	if !e.IsActive {
		return nil, ErrEventNotOpen
	}

	var windowKind string
	switch event.PhaseAt(e, s.now()) {
	case event.PhasePreregistration:
		windowKind = KindPreregistration
	case event.PhaseRegistration:
		windowKind = KindRegistration
	default:
		return nil, ErrEventNotOpen
	}

	switch kind {
	case "":
		kind = windowKind
	case KindPreregistration, KindRegistration:
		if kind != windowKind {
			return nil, ErrKindMismatch
		}
	default:
		return nil, ErrUnknownKind
	}

	existing, err := s.Find(acc.ID, e.ID)
	if err != nil && !errors.Is(err, ErrNotRegistered) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyRegistered
	}

	reg := &Registration{
		AccountID: acc.ID,
		EventID:   e.ID,
		Kind:      kind,
	}
	if kind == KindRegistration {
		now := s.now()
		reg.Confirmed = true
		reg.ConfirmedAt = &now
		reg.DeliveryAddress = acc.Address
	}

	if err := s.db.Create(reg).Error; err != nil {
		return nil, err
	}

	s.logger.Info("registration created",
		zap.Uint("account_id", acc.ID),
		zap.Uint("event_id", e.ID),
		zap.String("kind", kind))
	return reg, nil
}

// Confirm upgrades a preregistration during the registration window,
// capturing the delivery address. It happens at most once.
func (s *Service) Confirm(acc *account.Account, e *event.Event, address string) (*Registration, error) {
	reg, err := s.Find(acc.ID, e.ID)
	if err != nil {
		return nil, err
	}
	if reg.Confirmed {
		return nil, ErrAlreadyConfirmed
	}
	if event.PhaseAt(e, s.now()) != event.PhaseRegistration {
		return nil, ErrConfirmationClosed
	}
	if address == "" {
		return nil, ErrAddressRequired
	}

	now := s.now()
	reg.Confirmed = true
	reg.ConfirmedAt = &now
	reg.DeliveryAddress = address
	if err := s.db.Save(reg).Error; err != nil {
		return nil, err
	}

	s.logger.Info("registration confirmed",
		zap.Uint("account_id", acc.ID),
		zap.Uint("event_id", e.ID))
	return reg, nil
}

func (s *Service) Find(accountID, eventID uint) (*Registration, error) {
	var reg Registration
	err := s.db.Where("account_id = ? AND event_id = ?", accountID, eventID).First(&reg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotRegistered
		}
		return nil, err
	}
	return &reg, nil
}

// ListByEvent returns every registration for an event, confirmed or not.
func (s *Service) ListByEvent(eventID uint) ([]Registration, error) {
	var regs []Registration
	if err := s.db.Where("event_id = ?", eventID).Order("created_at ASC").Find(&regs).Error; err != nil {
		return nil, err
	}
	return regs, nil
}

// ConfirmedByEvent returns the confirmed registrations for an event,
// the pool assignment generation draws from.
func (s *Service) ConfirmedByEvent(eventID uint) ([]Registration, error) {
	var regs []Registration
	err := s.db.
		Where("event_id = ? AND confirmed = ?", eventID, true).
		Order("created_at ASC").
		Find(&regs).Error
	if err != nil {
		return nil, err
	}
	return regs, nil
}

func (s *Service) ListByAccount(accountID uint) ([]Registration, error) {
	var regs []Registration
	if err := s.db.Where("account_id = ?", accountID).Order("created_at DESC").Find(&regs).Error; err != nil {
		return nil, err
	}
	return regs, nil
}
