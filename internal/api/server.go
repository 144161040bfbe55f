// Package api provides the HTTP REST API for the Attention Core backend.
//
// It exposes the user, tag, teacher, course and reading resources plus the
// administrative request log, all behind JWT bearer authentication.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/classense/attention-core/internal/auth"
	"github.com/classense/attention-core/internal/catalog"
	"github.com/classense/attention-core/internal/infrastructure/config"
	"github.com/classense/attention-core/internal/infrastructure/logging"
	"github.com/classense/attention-core/internal/reading"
	"github.com/classense/attention-core/internal/reqlog"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	Security config.SecurityConfig
	Logger   *logging.Logger
	Users    auth.UserRepository
	Tags     catalog.TagRepository
	Teachers catalog.TeacherRepository
	Courses  catalog.CourseRepository
	Readings *reading.Service
	Log      reqlog.Repository
	Recorder *reqlog.Recorder // optional: if nil, requests are not logged
	Version  string
}

// Server is the HTTP API server for Attention Core.
//
// It manages the HTTP listener, routes and middleware. The server is created
// with New() and started with Start().
type Server struct {
	cfg      config.APIConfig
	secCfg   config.SecurityConfig
	logger   *logging.Logger
	users    auth.UserRepository
	tags     catalog.TagRepository
	teachers catalog.TeacherRepository
	courses  catalog.CourseRepository
	readings *reading.Service
	log      reqlog.Repository
	recorder *reqlog.Recorder
	version  string
	server   *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if deps.Tags == nil || deps.Teachers == nil || deps.Courses == nil {
		return nil, fmt.Errorf("catalog repositories are required")
	}
	if deps.Readings == nil {
		return nil, fmt.Errorf("reading service is required")
	}
	if deps.Log == nil {
		return nil, fmt.Errorf("request log repository is required")
	}
	if deps.Security.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT secret is required")
	}

	return &Server{
		cfg:      deps.Config,
		secCfg:   deps.Security,
		logger:   deps.Logger,
		users:    deps.Users,
		tags:     deps.Tags,
		teachers: deps.Teachers,
		courses:  deps.Courses,
		readings: deps.Readings,
		log:      deps.Log,
		recorder: deps.Recorder,
		version:  deps.Version,
	}, nil
}

// Start begins listening for HTTP connections.
//
// It builds the router and launches the HTTP listener in a background
// goroutine. The server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	s.logger.Info("API server started",
		"address", s.server.Addr,
		"prefix", "/"+s.cfg.Version,
	)
	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to gracefulShutdownTimeout for in-flight requests to complete.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("API server shutdown: %w", err)
	}

	s.logger.Info("API server stopped")
	return nil
}
