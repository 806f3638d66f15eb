package push

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/care-scheduler/internal/metrics"
)

var ErrInvalidRecord = errors.New("push: record without user_id")

// Record is the inserted notification row that triggers a dispatch.
type Record struct {
	UserID string `json:"user_id"`
	Title  string `json:"titulo"`
	Body   string `json:"mensaje"`
}

type TokenLookup interface {
	LatestTokenForUser(ctx context.Context, userID string) (string, error)
}

type AccessTokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

type Sender interface {
	Send(ctx context.Context, accessToken, deviceToken, title, body string) (*GatewayResponse, error)
}

// Outcome of a dispatch. NoToken means the recipient has no registered
// device and nothing was sent.
type Outcome struct {
	NoToken  bool
	Response *GatewayResponse
}

type Dispatcher struct {
	tokens  TokenLookup
	creds   AccessTokenSource
	gateway Sender
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewDispatcher(
	tokens TokenLookup,
	creds AccessTokenSource,
	gateway Sender,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		tokens:  tokens,
		creds:   creds,
		gateway: gateway,
		metrics: m,
		logger:  logger,
	}
}

// Dispatch forwards rec to the recipient's device. There is no retry: a
// failed credential exchange or send is reported and the record is dropped.
func (d *Dispatcher) Dispatch(ctx context.Context, rec Record) (*Outcome, error) {
	userID := strings.TrimSpace(rec.UserID)
	if userID == "" {
		d.metrics.ObservePush("invalid")
		return nil, ErrInvalidRecord
	}

	deviceToken, err := d.tokens.LatestTokenForUser(ctx, userID)
	if err != nil {
		d.metrics.ObservePush("lookup_error")
		return nil, err
	}
	if deviceToken == "" {
		d.metrics.ObservePush("no_token")
		d.logger.Info("push skipped, user has no device token", zap.String("user_id", userID))
		return &Outcome{NoToken: true}, nil
	}

	accessToken, err := d.creds.AccessToken(ctx)
	if err != nil {
		d.metrics.ObservePush("credential_error")
		d.logger.Error("push credential exchange failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	resp, err := d.gateway.Send(ctx, accessToken, deviceToken, rec.Title, rec.Body)
	if err != nil {
		d.metrics.ObservePush("send_error")
		d.logger.Error("push send failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	if resp.StatusCode >= 300 {
		d.metrics.ObservePush("gateway_rejected")
		d.logger.Warn("push gateway rejected message",
			zap.String("user_id", userID),
			zap.Int("status", resp.StatusCode),
		)
	} else {
		d.metrics.ObservePush("sent")
	}

	return &Outcome{Response: resp}, nil
}
