package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	jwtmw "github.com/tech-arch1tect/secretsanta/middleware/jwt"
	"github.com/tech-arch1tect/secretsanta/services/account"
	"github.com/tech-arch1tect/secretsanta/services/assignment"
	"github.com/tech-arch1tect/secretsanta/services/registration"
)

type AdminAssignmentHandler struct {
	accounts      *account.Service
	assignments   *assignment.Service
	registrations *registration.Service
}

func NewAdminAssignmentHandler(accounts *account.Service, assignments *assignment.Service, registrations *registration.Service) *AdminAssignmentHandler {
	return &AdminAssignmentHandler{
		accounts:      accounts,
		assignments:   assignments,
		registrations: registrations,
	}
}

type assignmentResponse struct {
	ID              uint       `json:"id"`
	GiverID         uint       `json:"giver_id"`
	GiverName       string     `json:"giver_name"`
	ReceiverID      uint       `json:"receiver_id"`
	ReceiverName    string     `json:"receiver_name"`
	ReceiverAddress string     `json:"receiver_address"`
	Approved        bool       `json:"approved"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
}

type reassignRequest struct {
	GiverID    uint `json:"giver_id"`
	ReceiverID uint `json:"receiver_id"`
}

type approveAllResponse struct {
	ApprovedCount int `json:"approved_count"`
}

func (h *AdminAssignmentHandler) List(c echo.Context) error {
	eventID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	assignments, err := h.assignments.ListByEvent(eventID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list assignments")
	}

	out := make([]assignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		resp := assignmentResponse{
			ID:         a.ID,
			GiverID:    a.GiverID,
			ReceiverID: a.ReceiverID,
			Approved:   a.Approved,
			ApprovedAt: a.ApprovedAt,
		}
		if giver, err := h.accounts.FindByID(a.GiverID); err == nil {
			resp.GiverName = giver.FullName
		}
		if receiver, err := h.accounts.FindByID(a.ReceiverID); err == nil {
			resp.ReceiverName = receiver.FullName
		}
		if reg, err := h.registrations.Find(a.ReceiverID, a.EventID); err == nil {
			resp.ReceiverAddress = reg.DeliveryAddress
		}
		out = append(out, resp)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminAssignmentHandler) Generate(c echo.Context) error {
	eventID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	assignments, err := h.assignments.Generate(eventID)
	if err != nil {
		return assignmentError(err)
	}
	return c.JSON(http.StatusCreated, map[string]int{"generated": len(assignments)})
}

func (h *AdminAssignmentHandler) ApproveAll(c echo.Context) error {
	eventID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	count, err := h.assignments.ApproveAll(eventID, jwtmw.GetAccountID(c))
	if err != nil {
		return assignmentError(err)
	}
	return c.JSON(http.StatusOK, approveAllResponse{ApprovedCount: count})
}

func (h *AdminAssignmentHandler) Approve(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	a, err := h.assignments.Approve(id, jwtmw.GetAccountID(c))
	if err != nil {
		return assignmentError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *AdminAssignmentHandler) Reassign(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req reassignRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	a, err := h.assignments.Reassign(id, req.GiverID, req.ReceiverID)
	if err != nil {
		return assignmentError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func assignmentError(err error) error {
	switch {
	case errors.Is(err, assignment.ErrAssignmentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, assignment.ErrAlreadyGenerated),
		errors.Is(err, assignment.ErrAlreadyApproved):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, assignment.ErrInsufficientParticipants),
		errors.Is(err, assignment.ErrSelfAssignment):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "assignment operation failed")
	}
}
