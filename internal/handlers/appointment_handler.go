package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/care-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/care-scheduler/internal/httperr"
	"github.com/BruksfildServices01/care-scheduler/internal/httpresp"
	ucappointment "github.com/BruksfildServices01/care-scheduler/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentManager interface {
	Execute(ctx context.Context, in ucappointment.ManageAppointmentInput) (*ucappointment.ManageAppointmentResult, error)
}

type AppointmentHandler struct {
	manage AppointmentManager
	logger *zap.Logger
}

func NewAppointmentHandler(manage AppointmentManager, logger *zap.Logger) *AppointmentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppointmentHandler{
		manage: manage,
		logger: logger,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type ManageAppointmentRequest struct {
	Action        string `json:"action"`
	AppointmentID string `json:"appointment_id"`
	Reason        string `json:"reason"`
	MeetLink      string `json:"meet_link"`
	DoctorName    string `json:"doctor_name"`
}

type ManageAppointmentResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ======================================================
// MANAGE
// ======================================================

func (h *AppointmentHandler) Manage(c *gin.Context) {
	var req ManageAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, domain.CodeInvalidRequest, "Solicitud inválida.")
		return
	}

	res, err := h.manage.Execute(c.Request.Context(), ucappointment.ManageAppointmentInput{
		Action:        req.Action,
		AppointmentID: req.AppointmentID,
		Reason:        req.Reason,
		MeetLink:      req.MeetLink,
		ActorName:     req.DoctorName,
	})
	if err != nil {
		h.writeError(c, req, err)
		return
	}

	httpresp.OK(c, ManageAppointmentResponse{
		Success: true,
		Status:  res.Status,
		Message: res.Message,
	})
}

func (h *AppointmentHandler) writeError(c *gin.Context, req ManageAppointmentRequest, err error) {
	switch httperr.Code(err) {
	case domain.CodeInvalidRequest:
		httperr.BadRequest(c, domain.CodeInvalidRequest, "Faltan parámetros requeridos: appointment_id y action.")
	case domain.CodeNotFound:
		httperr.BadRequest(c, domain.CodeNotFound, "Cita no encontrada.")
	case domain.CodeInvalidAction:
		httperr.BadRequest(c, domain.CodeInvalidAction, "Acción inválida.")
	case domain.CodeInvalidState:
		httperr.Conflict(c, domain.CodeInvalidState, "La cita no admite esta acción en su estado actual.")
	case domain.CodeConflict:
		httperr.Conflict(c, domain.CodeConflict, "La cita fue modificada por otra solicitud. Intenta nuevamente.")
	default:
		h.logger.Error("appointment update failed",
			zap.String("appointment_id", req.AppointmentID),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		_ = c.Error(err)
		httperr.Write(c, http.StatusBadRequest, "update_failed", "No se pudo actualizar la cita.")
	}
}
