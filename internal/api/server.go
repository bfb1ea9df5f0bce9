package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nerrad567/switchboard/internal/audit"
	"github.com/nerrad567/switchboard/internal/control"
	"github.com/nerrad567/switchboard/internal/device"
	"github.com/nerrad567/switchboard/internal/infrastructure/config"
	"github.com/nerrad567/switchboard/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// DeviceStore is the device repository as the API uses it.
// Satisfied by *device.Repository.
type DeviceStore interface {
	Create(ctx context.Context, props device.Properties, ownerUserID int64, typeID device.TypeID) (*device.Device, error)
	Update(ctx context.Context, id int64, props device.Properties) (*device.Device, error)
	Get(ctx context.Context, id int64) (*device.Device, error)
	Delete(ctx context.Context, id int64) error
	Name(ctx context.Context, id int64) (string, error)
}

// Ownership answers who owns what. Satisfied by *auth.Authority.
type Ownership interface {
	Devices(ctx context.Context, userID int64) ([]device.Device, error)
	DoesUserOwnDevice(ctx context.Context, userID, deviceID int64) (bool, error)
}

// Controller runs control requests. Satisfied by *control.Gateway.
type Controller interface {
	Control(ctx context.Context, req control.Request) (control.Outcome, error)
}

// AuditSink queues audit entries. Satisfied by *audit.Recorder.
type AuditSink interface {
	Record(entry *audit.Entry)
}

// HealthChecker is implemented by infrastructure clients.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	Security config.SecurityConfig
	Logger   *logging.Logger

	// DefaultType is assigned to created devices whose request names none.
	DefaultType device.TypeID

	Devices    DeviceStore
	Owners     Ownership
	Controller Controller

	// Audit and AuditLog are optional.
	Audit    AuditSink
	AuditLog audit.Repository

	// Gatherer backs /metrics. Defaults to the global registry.
	Gatherer prometheus.Gatherer

	// Health maps a component name to its checker for /health.
	Health map[string]HealthChecker

	Version string
}

// Server is the HTTP API server for Switchboard.
//
// It manages the HTTP listener, routes and middleware.
// The server is created with New() and started with Start().
type Server struct {
	cfg         config.APIConfig
	secCfg      config.SecurityConfig
	logger      *logging.Logger
	defaultType device.TypeID
	devices     DeviceStore
	owners      Ownership
	controller  Controller
	audit       AuditSink
	auditLog    audit.Repository
	gatherer    prometheus.Gatherer
	health      map[string]HealthChecker
	version     string
	server      *http.Server
}

// New creates a new API server with the given dependencies.
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Devices == nil || deps.Owners == nil {
		return nil, fmt.Errorf("device repository and ownership authority are required")
	}
	if deps.Controller == nil {
		return nil, fmt.Errorf("control gateway is required")
	}
	if deps.Security.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	return &Server{
		cfg:         deps.Config,
		secCfg:      deps.Security,
		logger:      deps.Logger,
		defaultType: deps.DefaultType,
		devices:     deps.Devices,
		owners:      deps.Owners,
		controller:  deps.Controller,
		audit:       deps.Audit,
		auditLog:    deps.AuditLog,
		gatherer:    gatherer,
		health:      deps.Health,
		version:     deps.Version,
	}, nil
}

// Handler returns the router without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start begins listening for HTTP connections in a background goroutine.
// The server can be stopped with Close().
func (s *Server) Start(_ context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server has been started.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
