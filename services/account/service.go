package account

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/tech-arch1tect/secretsanta/config"
	"github.com/tech-arch1tect/secretsanta/services/logging"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrPasswordHashingFailed = errors.New("failed to hash password")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrEmailTaken            = errors.New("email is already registered")
	ErrAccountNotFound       = errors.New("account not found")
	ErrAccountBlocked        = errors.New("account is blocked")
	ErrInvalidPassword       = errors.New("password does not meet requirements")
)

type Service struct {
	config *config.Config
	db     *gorm.DB
	logger *logging.Service
}

func NewService(cfg *config.Config, db *gorm.DB, logger *logging.Service) *Service {
	if cfg.Auth.BcryptCost < bcrypt.MinCost || cfg.Auth.BcryptCost > bcrypt.MaxCost {
		cfg.Auth.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		config: cfg,
		db:     db,
		logger: logger,
	}
}

func (s *Service) ValidatePassword(password string) error {
	if len(password) < s.config.Auth.MinLength {
		return fmt.Errorf("password must be at least %d characters", s.config.Auth.MinLength)
	}

	var hasUpper, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	var missing []string
	if s.config.Auth.RequireUpper && !hasUpper {
		missing = append(missing, "one uppercase letter")
	}
	if s.config.Auth.RequireNumber && !hasNumber {
		missing = append(missing, "one number")
	}

	if len(missing) > 0 {
		return fmt.Errorf("password must contain at least %s", strings.Join(missing, ", "))
	}
	return nil
}

func (s *Service) HashPassword(password string) (string, error) {
	if err := s.ValidatePassword(password); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.Auth.BcryptCost)
	if err != nil {
		s.logger.Error("password hashing failed", zap.Error(err))
		return "", ErrPasswordHashingFailed
	}
	return string(hash), nil
}

func (s *Service) VerifyPassword(hashedPassword, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// RandomPassword returns a credential unusable for direct login: random
// hex that nobody knows in plain text. Used for accounts created by the
// federated handshake.
func (s *Service) RandomPassword() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random password: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

func (s *Service) Register(email, password string) (*Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if err := s.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPassword, err)
	}

	var count int64
	if err := s.db.Model(&Account{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	acc := &Account{
		Email:    email,
		Password: hash,
		Role:     RoleUser,
		IsActive: true,
	}
	if err := s.db.Create(acc).Error; err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Info("account registered", zap.Uint("account_id", acc.ID))
	return acc, nil
}

// CreateFederated creates an account for a handshake-authenticated
// character with an unusable random credential.
func (s *Service) CreateFederated(email, nickname string, gwarsID int64, profileURL string) (*Account, error) {
	password, err := s.RandomPassword()
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.Auth.BcryptCost)
	if err != nil {
		return nil, ErrPasswordHashingFailed
	}

	acc := &Account{
		Email:           email,
		Password:        string(hash),
		Role:            RoleUser,
		IsActive:        true,
		GWarsID:         &gwarsID,
		GWarsNickname:   nickname,
		GWarsProfileURL: &profileURL,
		GWarsVerified:   true,
	}
	if err := s.db.Create(acc).Error; err != nil {
		return nil, fmt.Errorf("failed to create federated account: %w", err)
	}

	s.logger.Info("federated account created",
		zap.Uint("account_id", acc.ID),
		zap.Int64("gwars_id", gwarsID))
	return acc, nil
}

func (s *Service) Authenticate(email, password string) (*Account, error) {
	acc, err := s.FindByEmail(email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.VerifyPassword(acc.Password, password); err != nil {
		s.logger.Warn("failed login attempt", zap.Uint("account_id", acc.ID))
		return nil, ErrInvalidCredentials
	}

	if !acc.IsActive {
		return nil, ErrAccountBlocked
	}

	return acc, nil
}

func (s *Service) FindByID(id uint) (*Account, error) {
	var acc Account
	if err := s.db.First(&acc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return &acc, nil
}

func (s *Service) FindByEmail(email string) (*Account, error) {
	var acc Account
	err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&acc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return &acc, nil
}

func (s *Service) FindByGWarsID(gwarsID int64) (*Account, error) {
	var acc Account
	err := s.db.Where("gwars_id = ?", gwarsID).First(&acc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return &acc, nil
}

func (s *Service) FindByProfileURL(url string) (*Account, error) {
	var acc Account
	err := s.db.Where("gwars_profile_url = ?", url).First(&acc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return &acc, nil
}

// Save persists changes made to a loaded account.
func (s *Service) Save(acc *Account) error {
	if err := s.db.Save(acc).Error; err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

func (s *Service) List() ([]Account, error) {
	var accounts []Account
	if err := s.db.Order("id").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

type ProfileUpdate struct {
	FullName         *string
	Address          *string
	Interests        *string
	Phone            *string
	TelegramNickname *string
	AvatarURL        *string
}

// UpdateProfile applies the given fields and recomputes the
// profile-completed flag the registration gate reads.
func (s *Service) UpdateProfile(id uint, update ProfileUpdate) (*Account, error) {
	acc, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}

	if update.FullName != nil {
		acc.FullName = *update.FullName
	}
	if update.Address != nil {
		acc.Address = *update.Address
	}
	if update.Interests != nil {
		acc.Interests = *update.Interests
	}
	if update.Phone != nil {
		acc.Phone = *update.Phone
	}
	if update.TelegramNickname != nil {
		acc.TelegramNickname = *update.TelegramNickname
	}
	if update.AvatarURL != nil {
		acc.AvatarURL = *update.AvatarURL
	}

	acc.ProfileCompleted = acc.FullName != "" && acc.Address != "" && acc.Interests != ""

	if err := s.db.Save(acc).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return acc, nil
}

func (s *Service) Block(id uint, reason string) error {
	acc, err := s.FindByID(id)
	if err != nil {
		return err
	}

	acc.IsActive = false
	acc.BlockReason = &reason
	if err := s.db.Save(acc).Error; err != nil {
		return fmt.Errorf("failed to block account: %w", err)
	}

	s.logger.Info("account blocked", zap.Uint("account_id", id), zap.String("reason", reason))
	return nil
}

func (s *Service) Unblock(id uint) error {
	acc, err := s.FindByID(id)
	if err != nil {
		return err
	}

	acc.IsActive = true
	acc.BlockReason = nil
	if err := s.db.Save(acc).Error; err != nil {
		return fmt.Errorf("failed to unblock account: %w", err)
	}
	return nil
}

func (s *Service) Promote(id uint) error {
	acc, err := s.FindByID(id)
	if err != nil {
		return err
	}

	acc.Role = RoleAdmin
	if err := s.db.Save(acc).Error; err != nil {
		return fmt.Errorf("failed to promote account: %w", err)
	}

	s.logger.Info("account promoted to admin", zap.Uint("account_id", id))
	return nil
}

// Purge hard-deletes an account and everything hanging off it:
// registrations, assignments where it gives or receives, and its
// verification token ledger.
func (s *Service) Purge(id uint) error {
	if _, err := s.FindByID(id); err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM registrations WHERE account_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM assignments WHERE giver_id = ? OR receiver_id = ?", id, id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM verification_tokens WHERE account_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&Account{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("failed to purge account: %w", err)
	}

	s.logger.Info("account purged", zap.Uint("account_id", id))
	return nil
}

// SeedDefaultAdmin creates the configured administrator when no admin
// exists yet. A blank configured password disables seeding.
func (s *Service) SeedDefaultAdmin() error {
	if s.config.Auth.AdminPassword == "" {
		return nil
	}

	var count int64
	if err := s.db.Model(&Account{}).Where("role = ?", RoleAdmin).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.config.Auth.AdminPassword), s.config.Auth.BcryptCost)
	if err != nil {
		return ErrPasswordHashingFailed
	}

	admin := &Account{
		Email:    strings.ToLower(s.config.Auth.AdminEmail),
		Password: string(hash),
		Role:     RoleAdmin,
		IsActive: true,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to seed default admin: %w", err)
	}

	s.logger.Info("default administrator seeded", zap.String("email", admin.Email))
	return nil
}

// RedactEmail masks an address for display to non-administrators, e.g.
// "someone@example.com" becomes "s***@e***".
func RedactEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" {
		return "***"
	}
	return string([]rune(local)[0]) + "***@" + string([]rune(domain)[0]) + "***"
}
