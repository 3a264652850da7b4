package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	jwtmw "github.com/tech-arch1tect/secretsanta/middleware/jwt"
	"github.com/tech-arch1tect/secretsanta/services/account"
)

type AdminUserHandler struct {
	accounts *account.Service
}

func NewAdminUserHandler(accounts *account.Service) *AdminUserHandler {
	return &AdminUserHandler{accounts: accounts}
}

type blockRequest struct {
	Reason string `json:"reason"`
}

func (h *AdminUserHandler) List(c echo.Context) error {
	accounts, err := h.accounts.List()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list accounts")
	}
	return c.JSON(http.StatusOK, accounts)
}

func (h *AdminUserHandler) Update(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req profileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	acc, err := h.accounts.UpdateProfile(id, account.ProfileUpdate{
		FullName:         req.FullName,
		Address:          req.Address,
		Interests:        req.Interests,
		Phone:            req.Phone,
		TelegramNickname: req.TelegramNickname,
		AvatarURL:        req.AvatarURL,
	})
	if err != nil {
		return accountError(err)
	}
	return c.JSON(http.StatusOK, acc)
}

func (h *AdminUserHandler) Block(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if id == jwtmw.GetAccountID(c) {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot block yourself")
	}

	var req blockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.accounts.Block(id, req.Reason); err != nil {
		return accountError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminUserHandler) Unblock(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.accounts.Unblock(id); err != nil {
		return accountError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminUserHandler) Promote(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.accounts.Promote(id); err != nil {
		return accountError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Purge hard-deletes an account and everything hanging off it. There is
// no undo.
func (h *AdminUserHandler) Purge(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if id == jwtmw.GetAccountID(c) {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot purge yourself")
	}

	if err := h.accounts.Purge(id); err != nil {
		return accountError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func accountError(err error) error {
	if errors.Is(err, account.ErrAccountNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "account operation failed")
}
