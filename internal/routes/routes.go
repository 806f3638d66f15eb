package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/care-scheduler/internal/audit"
	"github.com/BruksfildServices01/care-scheduler/internal/config"
	domain "github.com/BruksfildServices01/care-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/care-scheduler/internal/handlers"
	infraRepo "github.com/BruksfildServices01/care-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/care-scheduler/internal/metrics"
	"github.com/BruksfildServices01/care-scheduler/internal/middleware"
	"github.com/BruksfildServices01/care-scheduler/internal/outbox"
	"github.com/BruksfildServices01/care-scheduler/internal/push"
	ucAppointment "github.com/BruksfildServices01/care-scheduler/internal/usecase/appointment"
)

type Options struct {
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	// Redis is optional; without it every push exchanges a fresh token.
	Redis   *redis.Client
	Account push.ServiceAccount
}

// Workers are the background parts main has to start and stop.
type Workers struct {
	Relay *outbox.Relay
	Audit *audit.Dispatcher
}

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, opts Options) (*Workers, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	policy, err := domain.ParsePolicy(cfg.TransitionPolicy)
	if err != nil {
		return nil, err
	}

	// ======================================================
	// MIDDLEWARE
	// ======================================================
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		middleware.CORSMiddleware(),
	)

	// ======================================================
	// INFRA
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(db)
	notificationRepo := infraRepo.NewNotificationGormRepository(db)
	deviceTokenRepo := infraRepo.NewDeviceTokenGormRepository(db)
	outboxRepo := infraRepo.NewOutboxGormRepository(db)

	auditDispatcher := audit.NewDispatcher(audit.New(db), cfg.AuditQueueSize, logger)

	exchangerOpts := []push.ExchangerOption{}
	if opts.Redis != nil {
		exchangerOpts = append(exchangerOpts, push.WithTokenCache(push.NewRedisTokenCache(opts.Redis)))
	}
	exchanger := push.NewTokenExchanger(opts.Account, logger, exchangerOpts...)
	gateway := push.NewGateway(cfg.FCM.BaseURL, opts.Account.ProjectID, nil)

	// ======================================================
	// USE CASES
	// ======================================================
	manageAppointmentUC := ucAppointment.NewManageAppointment(
		appointmentRepo,
		notificationRepo,
		outboxRepo,
		auditDispatcher,
		policy,
		opts.Metrics,
		logger,
	)

	pushDispatcher := push.NewDispatcher(
		deviceTokenRepo,
		exchanger,
		gateway,
		opts.Metrics,
		logger,
	)

	relay := outbox.NewRelay(outboxRepo, notificationRepo, opts.Metrics, logger).
		WithBatchSize(cfg.Outbox.BatchSize).
		WithInterval(cfg.Outbox.Interval).
		WithMaxAttempts(cfg.Outbox.MaxAttempts)

	// ======================================================
	// HANDLERS
	// ======================================================
	appointmentHandler := handlers.NewAppointmentHandler(manageAppointmentUC, logger)
	pushHandler := handlers.NewPushHandler(pushDispatcher, logger)
	deviceTokenHandler := handlers.NewDeviceTokenHandler(deviceTokenRepo, logger)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	// ======================================================
	// ROUTES
	// ======================================================
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	functions := r.Group("/functions/v1")
	{
		functions.POST("/manage-appointment", appointmentHandler.Manage)
		functions.POST("/push", pushHandler.Send)
	}

	api := r.Group("/api")
	{
		api.PUT("/device-tokens", deviceTokenHandler.Register)
		api.DELETE("/device-tokens", deviceTokenHandler.Remove)
		api.GET("/audit-logs", auditLogsHandler.List)
	}

	if !opts.Account.Configured() {
		logger.Warn("push service account not configured, /functions/v1/push will fail")
	}

	logger.Info("routes registered",
		zap.String("transition_policy", string(policy)),
		zap.Bool("push_token_cache", opts.Redis != nil),
	)

	return &Workers{Relay: relay, Audit: auditDispatcher}, nil
}

// Close stops the background writers. The relay stops with its context.
func (w *Workers) Close() {
	if w == nil {
		return
	}
	w.Audit.Close()
}
