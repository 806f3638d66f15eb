package handlers

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/care-scheduler/internal/httperr"
	"github.com/BruksfildServices01/care-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/care-scheduler/internal/push"
)

type PushDispatcher interface {
	Dispatch(ctx context.Context, rec push.Record) (*push.Outcome, error)
}

type PushHandler struct {
	dispatcher PushDispatcher
	logger     *zap.Logger
}

func NewPushHandler(dispatcher PushDispatcher, logger *zap.Logger) *PushHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PushHandler{dispatcher: dispatcher, logger: logger}
}

// PushWebhookRequest is the insert event of a notification row.
type PushWebhookRequest struct {
	Record push.Record `json:"record"`
}

// Send forwards the notification to the recipient's device. The gateway's
// answer is returned untouched, including its own error bodies.
func (h *PushHandler) Send(c *gin.Context) {
	var req PushWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Internal(c, "invalid_payload", err.Error())
		return
	}

	out, err := h.dispatcher.Dispatch(c.Request.Context(), req.Record)
	if err != nil {
		code := "push_failed"
		if errors.Is(err, push.ErrInvalidRecord) {
			code = "invalid_record"
		}
		_ = c.Error(err)
		httperr.Internal(c, code, err.Error())
		return
	}

	if out.NoToken {
		httpresp.OK(c, gin.H{"message": "User has no FCM token"})
		return
	}

	httpresp.Raw(c, out.Response.ContentType, out.Response.Body)
}
