package settings

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/tech-arch1tect/secretsanta/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrSettingNotFound = errors.New("setting not found")

// Service is a plain key/value store over the settings table. The core
// only ever reads a value; administrators curate them.
type Service struct {
	db     *gorm.DB
	logger *logging.Service
}

func NewService(db *gorm.DB, logger *logging.Service) *Service {
	return &Service{db: db, logger: logger}
}

func (s *Service) Get(key string) (string, error) {
	var setting Setting
	if err := s.db.Where("key = ?", key).First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrSettingNotFound
		}
		return "", fmt.Errorf("failed to read setting %q: %w", key, err)
	}
	return setting.Value, nil
}

// GetOrDefault returns fallback when the key is absent.
func (s *Service) GetOrDefault(key, fallback string) string {
	value, err := s.Get(key)
	if err != nil {
		return fallback
	}
	return value
}

func (s *Service) GetInt(key string, fallback int) int {
	value, err := s.Get(key)
	if err != nil {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func (s *Service) Set(key, value string) error {
	var setting Setting
	err := s.db.Where("key = ?", key).First(&setting).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		setting = Setting{Key: key, Value: value}
		if err := s.db.Create(&setting).Error; err != nil {
			return fmt.Errorf("failed to create setting %q: %w", key, err)
		}
	case err != nil:
		return fmt.Errorf("failed to read setting %q: %w", key, err)
	default:
		setting.Value = value
		if err := s.db.Save(&setting).Error; err != nil {
			return fmt.Errorf("failed to update setting %q: %w", key, err)
		}
	}

	s.logger.Debug("setting updated", zap.String("key", key))
	return nil
}

func (s *Service) List() ([]Setting, error) {
	var all []Setting
	if err := s.db.Order("key").Find(&all).Error; err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return all, nil
}
