package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tech-arch1tect/secretsanta/services/settings"
)

type AdminSettingsHandler struct {
	settings *settings.Service
}

func NewAdminSettingsHandler(settingsSvc *settings.Service) *AdminSettingsHandler {
	return &AdminSettingsHandler{settings: settingsSvc}
}

type settingRequest struct {
	Value string `json:"value"`
}

func (h *AdminSettingsHandler) List(c echo.Context) error {
	all, err := h.settings.List()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list settings")
	}
	return c.JSON(http.StatusOK, all)
}

func (h *AdminSettingsHandler) Put(c echo.Context) error {
	key := c.Param("key")
	if key == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "setting key is required")
	}

	var req settingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.settings.Set(key, req.Value); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store setting")
	}
	return c.JSON(http.StatusOK, map[string]string{"key": key, "value": req.Value})
}
