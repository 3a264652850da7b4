package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	jwtmw "github.com/tech-arch1tect/secretsanta/middleware/jwt"
	"github.com/tech-arch1tect/secretsanta/services/account"
	"github.com/tech-arch1tect/secretsanta/services/verification"
)

type ProfileHandler struct {
	accounts     *account.Service
	verification *verification.Service
}

func NewProfileHandler(accounts *account.Service, verificationSvc *verification.Service) *ProfileHandler {
	return &ProfileHandler{
		accounts:     accounts,
		verification: verificationSvc,
	}
}

type profileRequest struct {
	FullName         *string `json:"full_name"`
	Address          *string `json:"address"`
	Interests        *string `json:"interests"`
	Phone            *string `json:"phone"`
	TelegramNickname *string `json:"telegram_nickname"`
	AvatarURL        *string `json:"avatar_url"`
}

type challengeRequest struct {
	ProfileURL string `json:"profile_url"`
}

type challengeResponse struct {
	Token       string `json:"token"`
	Placement   string `json:"placement"`
	Instruction string `json:"instruction"`
}

func (h *ProfileHandler) Update(c echo.Context) error {
	var req profileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	acc, err := h.accounts.UpdateProfile(jwtmw.GetAccountID(c), account.ProfileUpdate{
		FullName:         req.FullName,
		Address:          req.Address,
		Interests:        req.Interests,
		Phone:            req.Phone,
		TelegramNickname: req.TelegramNickname,
		AvatarURL:        req.AvatarURL,
	})
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "profile update failed")
	}

	return c.JSON(http.StatusOK, acc)
}

// Challenge starts proof-of-control: the caller claims a GWars profile
// URL and receives a token to place in that profile's public text.
func (h *ProfileHandler) Challenge(c echo.Context) error {
	var req challengeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	token, err := h.verification.IssueChallenge(jwtmw.GetAccountID(c), req.ProfileURL)
	if err != nil {
		return verificationError(err)
	}

	return c.JSON(http.StatusOK, h.challengeResponse(token))
}

func (h *ProfileHandler) RegenerateToken(c echo.Context) error {
	token, err := h.verification.RegenerateToken(jwtmw.GetAccountID(c))
	if err != nil {
		return verificationError(err)
	}

	return c.JSON(http.StatusOK, h.challengeResponse(token))
}

// Verify fetches the claimed profile page and scans it for the active
// token. A failed check is a 200 with diagnostics, not an error: the
// caller is expected to fix their profile text and retry.
func (h *ProfileHandler) Verify(c echo.Context) error {
	var req challengeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := h.verification.VerifyPlacement(c.Request().Context(), jwtmw.GetAccountID(c), req.ProfileURL)
	if err != nil {
		return verificationError(err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *ProfileHandler) challengeResponse(token string) challengeResponse {
	return challengeResponse{
		Token:       token,
		Placement:   h.verification.Phrase() + token,
		Instruction: "Add this line to your GWars profile text, then request verification.",
	}
}

func verificationError(err error) error {
	switch {
	case errors.Is(err, verification.ErrInvalidProfileURL):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, verification.ErrProfileURLClaimed),
		errors.Is(err, verification.ErrGWarsIDClaimed):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, verification.ErrNoActiveChallenge):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "verification failed")
	}
}
