package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	jwtmw "github.com/tech-arch1tect/secretsanta/middleware/jwt"
	"github.com/tech-arch1tect/secretsanta/services/account"
	"github.com/tech-arch1tect/secretsanta/services/handshake"
	"github.com/tech-arch1tect/secretsanta/services/jwt"
)

type AuthHandler struct {
	accounts  *account.Service
	jwt       *jwt.Service
	handshake *handshake.Service
}

func NewAuthHandler(accounts *account.Service, jwtSvc *jwt.Service, handshakeSvc *handshake.Service) *AuthHandler {
	return &AuthHandler{
		accounts:  accounts,
		jwt:       jwtSvc,
		handshake: handshakeSvc,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string           `json:"token"`
	ExpiresIn int              `json:"expires_in"`
	Account   *account.Account `json:"account"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email is required")
	}

	acc, err := h.accounts.Register(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrEmailTaken):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, account.ErrInvalidPassword):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "registration failed")
		}
	}

	return c.JSON(http.StatusCreated, acc)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	acc, err := h.accounts.Authenticate(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrAccountBlocked):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, account.ErrInvalidCredentials):
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
		}
	}

	token, err := h.jwt.GenerateToken(acc.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}

	return c.JSON(http.StatusOK, tokenResponse{
		Token:     token,
		ExpiresIn: h.jwt.AccessExpirySeconds(),
		Account:   acc,
	})
}

// GWarsLogin is the callback target of the federated handshake. The
// game server signs the parameters; a valid chain logs the character
// in, creating a local account on first visit.
func (h *AuthHandler) GWarsLogin(c echo.Context) error {
	var req handshake.Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	acc, token, err := h.handshake.Login(req)
	if err != nil {
		switch {
		case errors.Is(err, handshake.ErrAccountBlocked):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, handshake.ErrMissingFields):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, handshake.ErrStage1Signature),
			errors.Is(err, handshake.ErrStage2Signature),
			errors.Is(err, handshake.ErrStage3Signature),
			errors.Is(err, handshake.ErrStage4Signature):
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "handshake failed")
		}
	}

	return c.JSON(http.StatusOK, tokenResponse{
		Token:     token,
		ExpiresIn: h.jwt.AccessExpirySeconds(),
		Account:   acc,
	})
}

func (h *AuthHandler) Me(c echo.Context) error {
	acc, err := h.accounts.FindByID(jwtmw.GetAccountID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "account not found")
	}
	return c.JSON(http.StatusOK, acc)
}
