package assignment

import (
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tech-arch1tect/secretsanta/config"
	"github.com/tech-arch1tect/secretsanta/services/logging"
	"github.com/tech-arch1tect/secretsanta/services/registration"
)

var (
	ErrAlreadyGenerated         = errors.New("assignments already generated for this event")
	ErrInsufficientParticipants = errors.New("at least two confirmed participants are required")
	ErrAssignmentNotFound       = errors.New("assignment not found")
	ErrAlreadyApproved          = errors.New("assignment is already approved")
	ErrSelfAssignment           = errors.New("giver and receiver must differ")
	ErrNotApproved              = errors.New("assignment is not approved yet")
)

const notifyMaxRetries = 3

// Notifier tells a giver their assignment is ready. ApproveAll treats
// delivery as best effort.
type Notifier interface {
	NotifyGiver(giverID, receiverID, eventID uint) error
}

type Service struct {
	config        *config.Config
	db            *gorm.DB
	logger        *logging.Service
	registrations *registration.Service
	notifier      Notifier
}

func NewService(cfg *config.Config, db *gorm.DB, logger *logging.Service, registrations *registration.Service, notifier Notifier) *Service {
	return &Service{
		config:        cfg,
		db:            db,
		logger:        logger,
		registrations: registrations,
		notifier:      notifier,
	}
}

// Generate draws every confirmed participant of the event into a single
// cycle: each gives to the next, the last gives to the first. The
// construction cannot assign anyone to themselves. A second call for
// the same event fails; existing rows are the guard, so a crashed run
// that persisted nothing can simply be retried.
func (s *Service) Generate(eventID uint) ([]Assignment, error) {
	regs, err := s.registrations.ConfirmedByEvent(eventID)
	if err != nil {
		return nil, err
	}
	if len(regs) < 2 {
		return nil, ErrInsufficientParticipants
	}

	participants := make([]uint, len(regs))
	for i, reg := range regs {
		participants[i] = reg.AccountID
	}
	if err := shuffle(participants); err != nil {
		return nil, err
	}

	assignments := make([]Assignment, len(participants))
	for i, giver := range participants {
		assignments[i] = Assignment{
			EventID:    eventID,
			GiverID:    giver,
			ReceiverID: participants[(i+1)%len(participants)],
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Assignment{}).Where("event_id = ?", eventID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyGenerated
		}
		return tx.Create(&assignments).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("assignments generated",
		zap.Uint("event_id", eventID),
		zap.Int("count", len(assignments)))
	return assignments, nil
}

// shuffle is a Fisher-Yates over crypto/rand.
func shuffle(ids []uint) error {
	for i := len(ids) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return err
		}
		j := int(n.Int64())
		ids[i], ids[j] = ids[j], ids[i]
	}
	return nil
}

func (s *Service) FindByID(id uint) (*Assignment, error) {
	var a Assignment
	if err := s.db.First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (s *Service) ListByEvent(eventID uint) ([]Assignment, error) {
	var assignments []Assignment
	if err := s.db.Where("event_id = ?", eventID).Order("id ASC").Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// ForGiver returns the approved assignment a giver may see. Unapproved
// rows stay invisible to participants.
func (s *Service) ForGiver(giverID, eventID uint) (*Assignment, error) {
	var a Assignment
	err := s.db.Where("giver_id = ? AND event_id = ?", giverID, eventID).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if !a.Approved {
		return nil, ErrNotApproved
	}
	return &a, nil
}

// Reassign edits an unapproved assignment's giver and receiver. A zero
// id leaves that side unchanged. Admins use it to untangle households
// before approval; once approved an assignment is immutable.
func (s *Service) Reassign(id, giverID, receiverID uint) (*Assignment, error) {
	a, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}
	if a.Approved {
		return nil, ErrAlreadyApproved
	}

	if giverID != 0 {
		a.GiverID = giverID
	}
	if receiverID != 0 {
		a.ReceiverID = receiverID
	}
	if a.GiverID == a.ReceiverID {
		return nil, ErrSelfAssignment
	}

	if err := s.db.Save(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) approve(a *Assignment, adminID uint) error {
	now := time.Now()
	a.Approved = true
	a.ApprovedAt = &now
	a.ApprovedBy = &adminID
	return s.db.Save(a).Error
}

// Approve marks a single assignment approved.
func (s *Service) Approve(id, adminID uint) (*Assignment, error) {
	a, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}
	if a.Approved {
		return nil, ErrAlreadyApproved
	}
	if err := s.approve(a, adminID); err != nil {
		return nil, err
	}
	return a, nil
}

// ApproveAll approves every pending assignment for the event and
// notifies each giver. Notification failures are retried with backoff,
// then logged and dropped; they never undo an approval.
func (s *Service) ApproveAll(eventID, adminID uint) (int, error) {
	var pending []Assignment
	err := s.db.Where("event_id = ? AND approved = ?", eventID, false).Find(&pending).Error
	if err != nil {
		return 0, err
	}

	approved := 0
	for i := range pending {
		if err := s.approve(&pending[i], adminID); err != nil {
			return approved, err
		}
		approved++
		s.notify(&pending[i])
	}

	s.logger.Info("assignments approved",
		zap.Uint("event_id", eventID),
		zap.Int("approved", approved))
	return approved, nil
}

func (s *Service) notify(a *Assignment) {
	if s.notifier == nil {
		return
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), notifyMaxRetries)
	err := backoff.Retry(func() error {
		return s.notifier.NotifyGiver(a.GiverID, a.ReceiverID, a.EventID)
	}, policy)
	if err != nil {
		s.logger.Warn("failed to notify giver",
			zap.Error(err),
			zap.Uint("giver_id", a.GiverID),
			zap.Uint("event_id", a.EventID))
	}
}
