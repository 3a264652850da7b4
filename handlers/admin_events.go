package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tech-arch1tect/secretsanta/services/account"
	"github.com/tech-arch1tect/secretsanta/services/event"
	"github.com/tech-arch1tect/secretsanta/services/registration"
)

type AdminEventHandler struct {
	accounts      *account.Service
	events        *event.Service
	registrations *registration.Service
}

func NewAdminEventHandler(accounts *account.Service, events *event.Service, registrations *registration.Service) *AdminEventHandler {
	return &AdminEventHandler{
		accounts:      accounts,
		events:        events,
		registrations: registrations,
	}
}

type eventRequest struct {
	Name                 string     `json:"name"`
	Description          string     `json:"description"`
	PreregistrationStart time.Time  `json:"preregistration_start"`
	RegistrationStart    time.Time  `json:"registration_start"`
	RegistrationEnd      time.Time  `json:"registration_end"`
	StartsAt             *time.Time `json:"starts_at"`
	IsActive             *bool      `json:"is_active"`
}

type participantResponse struct {
	AccountID     uint       `json:"account_id"`
	Email         string     `json:"email"`
	FullName      string     `json:"full_name"`
	GWarsVerified bool       `json:"gwars_verified"`
	Kind          string     `json:"kind"`
	Confirmed     bool       `json:"confirmed"`
	ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`
}

func (r *eventRequest) toEvent() *event.Event {
	e := &event.Event{
		Name:                 r.Name,
		Description:          r.Description,
		PreregistrationStart: r.PreregistrationStart,
		RegistrationStart:    r.RegistrationStart,
		RegistrationEnd:      r.RegistrationEnd,
		StartsAt:             r.StartsAt,
		IsActive:             true,
	}
	if r.IsActive != nil {
		e.IsActive = *r.IsActive
	}
	return e
}

func (h *AdminEventHandler) Create(c echo.Context) error {
	var req eventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	e := req.toEvent()
	if err := h.events.Create(e); err != nil {
		return eventError(err)
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *AdminEventHandler) Update(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req eventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	e, err := h.events.Update(id, req.toEvent())
	if err != nil {
		return eventError(err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *AdminEventHandler) Delete(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.events.Delete(id); err != nil {
		return eventError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Participants lists every registration for an event with the account
// details admins need to chase stragglers.
func (h *AdminEventHandler) Participants(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if _, err := h.events.FindByID(id); err != nil {
		return eventError(err)
	}

	regs, err := h.registrations.ListByEvent(id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list participants")
	}

	out := make([]participantResponse, 0, len(regs))
	for _, reg := range regs {
		acc, err := h.accounts.FindByID(reg.AccountID)
		if err != nil {
			continue
		}
		out = append(out, participantResponse{
			AccountID:     acc.ID,
			Email:         acc.Email,
			FullName:      acc.FullName,
			GWarsVerified: acc.GWarsVerified,
			Kind:          reg.Kind,
			Confirmed:     reg.Confirmed,
			ConfirmedAt:   reg.ConfirmedAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}

func eventError(err error) error {
	switch {
	case errors.Is(err, event.ErrEventNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, event.ErrInvalidWindows):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "event operation failed")
	}
}
