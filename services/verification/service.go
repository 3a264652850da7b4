package verification

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tech-arch1tect/secretsanta/config"
	"github.com/tech-arch1tect/secretsanta/services/account"
	"github.com/tech-arch1tect/secretsanta/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidProfileURL = errors.New("profile URL must look like https://www.gwars.io/info.php?id=<number>")
	ErrProfileURLClaimed = errors.New("profile URL is already claimed by another account")
	ErrGWarsIDClaimed    = errors.New("character is already bound to another account")
	ErrNoActiveChallenge = errors.New("no active challenge for this account")
)

// Word list and count can be overridden at runtime by administrators
// through the settings store.
const (
	SettingWordList   = "santa_word_list"
	SettingWordsCount = "santa_words_count"
)

type Diagnostic string

const (
	DiagnosticVerified     Diagnostic = "verified"
	DiagnosticNotFound     Diagnostic = "phrase_not_found"
	DiagnosticCaseMismatch Diagnostic = "token_case_mismatch"
	DiagnosticWrongToken   Diagnostic = "wrong_token"
	DiagnosticFetchFailed  Diagnostic = "fetch_failed"
	DiagnosticNoToken      Diagnostic = "no_active_token"
)

// Result is the outcome of a placement check. Network and matching
// problems are results, not errors; the negative case always carries a
// human-readable reason.
type Result struct {
	Verified   bool       `json:"verified"`
	Diagnostic Diagnostic `json:"diagnostic"`
	Reason     string     `json:"reason,omitempty"`
}

// SettingsReader is the narrow view of the settings collaborator the
// token generator needs.
type SettingsReader interface {
	GetOrDefault(key, fallback string) string
	GetInt(key string, fallback int) int
}

type Service struct {
	config   *config.Config
	db       *gorm.DB
	logger   *logging.Service
	accounts *account.Service
	settings SettingsReader
	fetcher  Fetcher
}

func NewService(cfg *config.Config, db *gorm.DB, logger *logging.Service, accounts *account.Service, settings SettingsReader, fetcher Fetcher) *Service {
	return &Service{
		config:   cfg,
		db:       db,
		logger:   logger,
		accounts: accounts,
		settings: settings,
		fetcher:  fetcher,
	}
}

// Phrase returns the exact text a character page must carry, minus the
// token itself.
func (s *Service) Phrase() string {
	return "I am " + s.config.Santa.RoleName + ": "
}

func (s *Service) wordList() []string {
	if s.settings != nil {
		if raw := s.settings.GetOrDefault(SettingWordList, ""); raw != "" {
			var words []string
			for _, w := range strings.Split(raw, ",") {
				if w = strings.TrimSpace(w); w != "" {
					words = append(words, w)
				}
			}
			if len(words) > 0 {
				return words
			}
		}
	}
	return s.config.Santa.WordList
}

func (s *Service) wordsPerToken() int {
	count := s.config.Santa.WordsPerToken
	if s.settings != nil {
		count = s.settings.GetInt(SettingWordsCount, count)
	}
	if count < 1 {
		count = 1
	}
	return count
}

func (s *Service) tokenTaken(tx *gorm.DB, token string) (bool, error) {
	var count int64
	if err := tx.Model(&VerificationToken{}).Where("value = ?", token).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check token uniqueness: %w", err)
	}
	if count > 0 {
		return true, nil
	}
	if err := tx.Model(&account.Account{}).Where("verification_token = ?", token).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check token uniqueness: %w", err)
	}
	return count > 0, nil
}

// IssueToken generates a token unique against the entire ledger,
// deactivates the account's prior active token and mirrors the new
// value onto the account for fast reads.
func (s *Service) IssueToken(accountID uint) (string, error) {
	if _, err := s.accounts.FindByID(accountID); err != nil {
		return "", err
	}

	words := s.wordList()
	count := s.wordsPerToken()

	var token string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for attempt := 0; attempt < maxTokenAttempts; attempt++ {
			if len(words) == 0 {
				break
			}
			candidate, err := composeWordToken(words, count)
			if err != nil {
				return err
			}
			taken, err := s.tokenTaken(tx, candidate)
			if err != nil {
				return err
			}
			if !taken {
				token = candidate
				break
			}
		}

		if token == "" {
			for {
				candidate, err := randomHexToken()
				if err != nil {
					return err
				}
				taken, err := s.tokenTaken(tx, candidate)
				if err != nil {
					return err
				}
				if !taken {
					token = candidate
					break
				}
			}
		}

		if err := tx.Model(&VerificationToken{}).
			Where("account_id = ? AND active = ?", accountID, true).
			Update("active", false).Error; err != nil {
			return fmt.Errorf("failed to deactivate prior tokens: %w", err)
		}

		if err := tx.Create(&VerificationToken{AccountID: accountID, Value: token, Active: true}).Error; err != nil {
			return fmt.Errorf("failed to record token: %w", err)
		}

		if err := tx.Model(&account.Account{}).
			Where("id = ?", accountID).
			Update("verification_token", token).Error; err != nil {
			return fmt.Errorf("failed to mirror token onto account: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("verification token issued", zap.Uint("account_id", accountID))
	return token, nil
}

func (s *Service) ActiveToken(accountID uint) (*VerificationToken, error) {
	var token VerificationToken
	err := s.db.Where("account_id = ? AND active = ?", accountID, true).
		Order("id DESC").First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveChallenge
		}
		return nil, fmt.Errorf("failed to load active token: %w", err)
	}
	return &token, nil
}

// ValidateProfileURL enforces the fixed path-and-query shape of a
// character page and returns the numeric character id.
func ValidateProfileURL(raw string) (int64, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return 0, ErrInvalidProfileURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return 0, ErrInvalidProfileURL
	}
	if u.Host != "www.gwars.io" && u.Host != "gwars.io" {
		return 0, ErrInvalidProfileURL
	}
	if u.Path != "/info.php" {
		return 0, ErrInvalidProfileURL
	}

	values := u.Query()
	if len(values) != 1 {
		return 0, ErrInvalidProfileURL
	}
	id, err := strconv.ParseInt(values.Get("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidProfileURL
	}
	return id, nil
}

// IssueChallenge starts (or restarts) proof-of-control for the claimed
// URL. The URL is recorded unverified; the caller must place the phrase
// and then ask for a placement check.
func (s *Service) IssueChallenge(accountID uint, claimedURL string) (string, error) {
	gwarsID, err := ValidateProfileURL(claimedURL)
	if err != nil {
		return "", err
	}

	if err := s.checkURLConflicts(accountID, claimedURL, gwarsID); err != nil {
		return "", err
	}

	if err := s.db.Model(&account.Account{}).
		Where("id = ?", accountID).
		Updates(map[string]any{"gwars_profile_url": claimedURL, "gwars_verified": false}).Error; err != nil {
		return "", fmt.Errorf("failed to record claimed URL: %w", err)
	}

	return s.IssueToken(accountID)
}

// RegenerateToken forces a fresh token for an account that already has
// a challenge in flight, without requiring a placement check first.
func (s *Service) RegenerateToken(accountID uint) (string, error) {
	acc, err := s.accounts.FindByID(accountID)
	if err != nil {
		return "", err
	}
	if acc.GWarsProfileURL == nil {
		return "", ErrNoActiveChallenge
	}
	return s.IssueToken(accountID)
}

func (s *Service) checkURLConflicts(accountID uint, claimedURL string, gwarsID int64) error {
	owner, err := s.accounts.FindByProfileURL(claimedURL)
	if err != nil && !errors.Is(err, account.ErrAccountNotFound) {
		return err
	}
	if owner != nil && owner.ID != accountID {
		return fmt.Errorf("%w (%s)", ErrProfileURLClaimed, account.RedactEmail(owner.Email))
	}

	owner, err = s.accounts.FindByGWarsID(gwarsID)
	if err != nil && !errors.Is(err, account.ErrAccountNotFound) {
		return err
	}
	if owner != nil && owner.ID != accountID {
		return fmt.Errorf("%w (%s)", ErrGWarsIDClaimed, account.RedactEmail(owner.Email))
	}
	return nil
}

// VerifyPlacement fetches the claimed page and looks for the exact,
// case-sensitive phrase followed by the active token. Network failures
// come back as a negative Result, never as an error.
func (s *Service) VerifyPlacement(ctx context.Context, accountID uint, claimedURL string) (Result, error) {
	gwarsID, err := ValidateProfileURL(claimedURL)
	if err != nil {
		return Result{}, err
	}

	if err := s.checkURLConflicts(accountID, claimedURL, gwarsID); err != nil {
		return Result{}, err
	}

	token, err := s.ActiveToken(accountID)
	if err != nil {
		if errors.Is(err, ErrNoActiveChallenge) {
			return Result{
				Diagnostic: DiagnosticNoToken,
				Reason:     "no active token: request a challenge first",
			}, nil
		}
		return Result{}, err
	}

	content, err := s.fetcher.Fetch(ctx, claimedURL)
	if err != nil {
		s.logger.Warn("profile fetch failed",
			zap.Uint("account_id", accountID),
			zap.Error(err))
		return Result{
			Diagnostic: DiagnosticFetchFailed,
			Reason:     "could not fetch profile page: " + err.Error(),
		}, nil
	}

	switch diag := scanForToken(content, s.Phrase(), token.Value); diag {
	case DiagnosticVerified:
		if err := s.bindVerified(accountID, claimedURL, gwarsID, token); err != nil {
			return Result{}, err
		}
		return Result{Verified: true, Diagnostic: DiagnosticVerified}, nil
	case DiagnosticCaseMismatch:
		return Result{
			Diagnostic: DiagnosticCaseMismatch,
			Reason:     "the phrase was found but the token differs in letter case: copy it exactly",
		}, nil
	case DiagnosticWrongToken:
		return Result{
			Diagnostic: DiagnosticWrongToken,
			Reason:     "the phrase was found but the token does not match the active one",
		}, nil
	default:
		return Result{
			Diagnostic: DiagnosticNotFound,
			Reason:     fmt.Sprintf("the phrase %q was not found on the page", s.Phrase()+token.Value),
		}, nil
	}
}

func (s *Service) bindVerified(accountID uint, claimedURL string, gwarsID int64, token *VerificationToken) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&account.Account{}).
			Where("id = ?", accountID).
			Updates(map[string]any{
				"gwars_profile_url": claimedURL,
				"gwars_id":          gwarsID,
				"gwars_verified":    true,
			}).Error; err != nil {
			return err
		}
		return tx.Model(token).Update("active", false).Error
	})
	if err != nil {
		return fmt.Errorf("failed to bind verified profile: %w", err)
	}

	s.logger.Info("profile verified",
		zap.Uint("account_id", accountID),
		zap.Int64("gwars_id", gwarsID))
	return nil
}

// scanForToken walks every occurrence of the phrase. An exact token
// match wins outright; otherwise the strongest diagnostic found is
// reported (case mismatch over wrong token over not found).
func scanForToken(content, phrase, token string) Diagnostic {
	diag := DiagnosticNotFound
	search := content
	for {
		idx := strings.Index(search, phrase)
		if idx < 0 {
			return diag
		}
		candidate := search[idx+len(phrase):]
		if strings.HasPrefix(candidate, token) {
			return DiagnosticVerified
		}
		if len(candidate) >= len(token) && strings.EqualFold(candidate[:len(token)], token) {
			diag = DiagnosticCaseMismatch
		} else if diag == DiagnosticNotFound {
			diag = DiagnosticWrongToken
		}
		search = candidate
	}
}
