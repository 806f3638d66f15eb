package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/care-scheduler/internal/httperr"
	"github.com/BruksfildServices01/care-scheduler/internal/httpresp"
)

type DeviceTokenStore interface {
	UpsertToken(ctx context.Context, userID, token, deviceInfo string) error
	DeleteToken(ctx context.Context, token string) error
}

type DeviceTokenHandler struct {
	store  DeviceTokenStore
	logger *zap.Logger
}

func NewDeviceTokenHandler(store DeviceTokenStore, logger *zap.Logger) *DeviceTokenHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeviceTokenHandler{store: store, logger: logger}
}

type RegisterDeviceTokenRequest struct {
	UserID     string `json:"user_id" binding:"required"`
	Token      string `json:"token" binding:"required"`
	DeviceInfo string `json:"device_info"`
}

type RemoveDeviceTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h *DeviceTokenHandler) Register(c *gin.Context) {
	var req RegisterDeviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "user_id y token son obligatorios.")
		return
	}

	userID := strings.TrimSpace(req.UserID)
	token := strings.TrimSpace(req.Token)
	if userID == "" || token == "" {
		httperr.BadRequest(c, "invalid_request", "user_id y token son obligatorios.")
		return
	}

	if err := h.store.UpsertToken(c.Request.Context(), userID, token, req.DeviceInfo); err != nil {
		h.logger.Error("device token upsert failed", zap.String("user_id", userID), zap.Error(err))
		httperr.Internal(c, "token_save_failed", "No se pudo registrar el dispositivo.")
		return
	}

	httpresp.OK(c, gin.H{"success": true})
}

func (h *DeviceTokenHandler) Remove(c *gin.Context) {
	var req RemoveDeviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "token es obligatorio.")
		return
	}

	if err := h.store.DeleteToken(c.Request.Context(), strings.TrimSpace(req.Token)); err != nil {
		h.logger.Error("device token delete failed", zap.Error(err))
		httperr.Internal(c, "token_delete_failed", "No se pudo eliminar el dispositivo.")
		return
	}

	httpresp.OK(c, gin.H{"success": true})
}
