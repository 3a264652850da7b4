package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	jwtmw "github.com/tech-arch1tect/secretsanta/middleware/jwt"
	"github.com/tech-arch1tect/secretsanta/services/account"
	"github.com/tech-arch1tect/secretsanta/services/assignment"
	"github.com/tech-arch1tect/secretsanta/services/event"
	"github.com/tech-arch1tect/secretsanta/services/registration"
)

type EventHandler struct {
	accounts      *account.Service
	events        *event.Service
	registrations *registration.Service
	assignments   *assignment.Service
}

func NewEventHandler(accounts *account.Service, events *event.Service, registrations *registration.Service, assignments *assignment.Service) *EventHandler {
	return &EventHandler{
		accounts:      accounts,
		events:        events,
		registrations: registrations,
		assignments:   assignments,
	}
}

type eventResponse struct {
	*event.Event
	Phase event.Phase `json:"phase"`
}

type eventRegisterRequest struct {
	RegistrationType string `json:"registration_type"`
}

type confirmRequest struct {
	DeliveryAddress string `json:"delivery_address"`
}

func (h *EventHandler) respond(e *event.Event) eventResponse {
	return eventResponse{Event: e, Phase: h.events.Phase(e)}
}

// Current returns the event participants should act on, or 204 when
// nothing is open.
func (h *EventHandler) Current(c echo.Context) error {
	e, err := h.events.Current()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load current event")
	}
	if e == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, h.respond(e))
}

func (h *EventHandler) List(c echo.Context) error {
	events, err := h.events.List()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list events")
	}

	out := make([]eventResponse, len(events))
	for i := range events {
		out[i] = h.respond(&events[i])
	}
	return c.JSON(http.StatusOK, out)
}

func (h *EventHandler) Register(c echo.Context) error {
	acc, e, err := h.loadAccountAndEvent(c)
	if err != nil {
		return err
	}

	var req eventRegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	reg, err := h.registrations.Register(acc, e, req.RegistrationType)
	if err != nil {
		return registrationError(err)
	}
	return c.JSON(http.StatusCreated, reg)
}

func (h *EventHandler) Confirm(c echo.Context) error {
	acc, e, err := h.loadAccountAndEvent(c)
	if err != nil {
		return err
	}

	var req confirmRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	reg, err := h.registrations.Confirm(acc, e, req.DeliveryAddress)
	if err != nil {
		return registrationError(err)
	}
	return c.JSON(http.StatusOK, reg)
}

// MyAssignment shows the caller who they give to, once an admin has
// approved the draw.
func (h *EventHandler) MyAssignment(c echo.Context) error {
	eventID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	a, err := h.assignments.ForGiver(jwtmw.GetAccountID(c), eventID)
	if err != nil {
		switch {
		case errors.Is(err, assignment.ErrAssignmentNotFound),
			errors.Is(err, assignment.ErrNotApproved):
			return echo.NewHTTPError(http.StatusNotFound, "no assignment available")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to load assignment")
		}
	}

	receiver, err := h.accounts.FindByID(a.ReceiverID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load assignment")
	}

	reg, err := h.registrations.Find(a.ReceiverID, eventID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load assignment")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"receiver_name":    receiver.FullName,
		"receiver_address": reg.DeliveryAddress,
		"interests":        receiver.Interests,
	})
}

func (h *EventHandler) loadAccountAndEvent(c echo.Context) (*account.Account, *event.Event, error) {
	acc, err := h.accounts.FindByID(jwtmw.GetAccountID(c))
	if err != nil {
		return nil, nil, echo.NewHTTPError(http.StatusUnauthorized, "account not found")
	}

	eventID, err := paramID(c, "id")
	if err != nil {
		return nil, nil, err
	}
	e, err := h.events.FindByID(eventID)
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			return nil, nil, echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return nil, nil, echo.NewHTTPError(http.StatusInternalServerError, "failed to load event")
	}
	return acc, e, nil
}

func registrationError(err error) error {
	switch {
	case errors.Is(err, registration.ErrProfileIncomplete),
		errors.Is(err, registration.ErrConfirmationClosed),
		errors.Is(err, registration.ErrAddressRequired),
		errors.Is(err, registration.ErrUnknownKind),
		errors.Is(err, registration.ErrKindMismatch):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, registration.ErrEventNotOpen):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, registration.ErrAlreadyRegistered),
		errors.Is(err, registration.ErrAlreadyConfirmed):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, registration.ErrNotRegistered):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "registration failed")
	}
}

func paramID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}
