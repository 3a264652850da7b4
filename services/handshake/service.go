// Package handshake validates the single-sign-on request the game
// server sends when a character logs into the portal: four chained
// signatures over overlapping field subsets, the last one salted with
// the current date so a captured handshake dies at midnight UTC.
package handshake

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gosimple/slug"
	"github.com/tech-arch1tect/secretsanta/config"
	"github.com/tech-arch1tect/secretsanta/services/account"
	"github.com/tech-arch1tect/secretsanta/services/jwt"
	"github.com/tech-arch1tect/secretsanta/services/logging"
	"github.com/tech-arch1tect/secretsanta/services/signature"
	"go.uber.org/zap"
)

var (
	ErrMissingFields   = errors.New("handshake is missing required fields")
	ErrStage1Signature = errors.New("stage 1 signature mismatch")
	ErrStage2Signature = errors.New("stage 2 signature mismatch")
	ErrStage3Signature = errors.New("stage 3 signature mismatch")
	ErrStage4Signature = errors.New("stage 4 signature mismatch")
	ErrAccountBlocked  = errors.New("account is blocked")
)

// Request carries everything the game server submits. Premium and
// Confirmed are signed-over inputs to stage 3 but have no meaning of
// their own here.
type Request struct {
	GWarsID   int64  `json:"gwars_id"`
	Nickname  string `json:"nickname"`
	Premium   string `json:"premium"`
	Confirmed string `json:"confirmed"`
	Sign1     string `json:"sign1"`
	Sign2     string `json:"sign2"`
	Sign3     string `json:"sign3"`
	Sign4     string `json:"sign4"`
}

type Service struct {
	config   *config.Config
	logger   *logging.Service
	verifier *signature.Verifier
	accounts *account.Service
	tokens   *jwt.Service
}

func NewService(cfg *config.Config, logger *logging.Service, verifier *signature.Verifier, accounts *account.Service, tokens *jwt.Service) *Service {
	return &Service{
		config:   cfg,
		logger:   logger,
		verifier: verifier,
		accounts: accounts,
		tokens:   tokens,
	}
}

// Verify checks all four stages independently. The first failing stage
// aborts with its own rejection so the game operators can tell which
// link of the chain broke.
func (s *Service) Verify(req Request) error {
	if req.GWarsID <= 0 || req.Nickname == "" {
		return ErrMissingFields
	}

	id := strconv.FormatInt(req.GWarsID, 10)

	if !s.verifier.Verify(s.verifier.Digest(id), req.Sign1) {
		return ErrStage1Signature
	}
	if !s.verifier.Verify(s.verifier.ShortDigest(id, req.Nickname), req.Sign2) {
		return ErrStage2Signature
	}

	sign3 := s.verifier.Digest(id, req.Nickname, req.Premium, req.Confirmed)
	if !s.verifier.Verify(sign3, req.Sign3) {
		return ErrStage3Signature
	}

	// Stage 4 chains over stage 3's own output, so forging it requires
	// already knowing the correct stage-3 digest.
	if !s.verifier.Verify(s.verifier.DatedDigest(sign3), req.Sign4) {
		return ErrStage4Signature
	}

	return nil
}

// Login runs the full handshake: verify, bind or create the local
// account, refresh the authoritative fields and issue a bearer token
// indistinguishable from a password login.
func (s *Service) Login(req Request) (*account.Account, string, error) {
	if err := s.Verify(req); err != nil {
		s.logger.Warn("handshake rejected",
			zap.Int64("gwars_id", req.GWarsID),
			zap.Error(err))
		return nil, "", err
	}

	acc, err := s.bindAccount(req)
	if err != nil {
		return nil, "", err
	}

	if !acc.IsActive {
		return nil, "", ErrAccountBlocked
	}

	token, err := s.tokens.GenerateToken(acc.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("handshake login",
		zap.Uint("account_id", acc.ID),
		zap.Int64("gwars_id", req.GWarsID))
	return acc, token, nil
}

func (s *Service) bindAccount(req Request) (*account.Account, error) {
	profileURL := ProfileURL(req.GWarsID)

	acc, err := s.accounts.FindByGWarsID(req.GWarsID)
	switch {
	case err == nil:
		return s.refresh(acc, req, profileURL)
	case !errors.Is(err, account.ErrAccountNotFound):
		return nil, err
	}

	// No account is bound to this character yet; derive the local
	// identifier and merge into an existing match or create fresh.
	email := SynthesizedEmail(req.GWarsID, req.Nickname)

	acc, err = s.accounts.FindByEmail(email)
	switch {
	case err == nil:
		gwarsID := req.GWarsID
		acc.GWarsID = &gwarsID
		return s.refresh(acc, req, profileURL)
	case !errors.Is(err, account.ErrAccountNotFound):
		return nil, err
	}

	return s.accounts.CreateFederated(email, req.Nickname, req.GWarsID, profileURL)
}

// refresh applies the fields the game server is authoritative on at
// every login.
func (s *Service) refresh(acc *account.Account, req Request, profileURL string) (*account.Account, error) {
	acc.GWarsNickname = req.Nickname
	acc.GWarsProfileURL = &profileURL
	acc.GWarsVerified = true

	if err := s.accounts.Save(acc); err != nil {
		return nil, err
	}
	return acc, nil
}

func ProfileURL(gwarsID int64) string {
	return fmt.Sprintf("https://www.gwars.io/info.php?id=%d", gwarsID)
}

// SynthesizedEmail derives the stable local identifier for a character
// that never registered by hand.
func SynthesizedEmail(gwarsID int64, nickname string) string {
	return fmt.Sprintf("%s-gw%d@gwars.local", slug.Make(nickname), gwarsID)
}
