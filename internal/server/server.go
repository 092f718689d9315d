package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/haskel/aguacate/internal/config"
	"github.com/haskel/aguacate/internal/engine"
	"github.com/haskel/aguacate/internal/imageio"
	"github.com/haskel/aguacate/internal/monitor"
	"github.com/haskel/aguacate/internal/server/middleware"
	"github.com/haskel/aguacate/internal/storage"
)

type Server struct {
	httpServer *http.Server
	engine     *engine.Engine
	history    *storage.Storage
	aggregator *monitor.Aggregator
	config     *config.Config
	logger     *slog.Logger
	version    string
	authConfig *middleware.AuthConfig

	imageSize int
	resampler imageio.Resampler
	maxPixels int
}

// New builds the HTTP server. history and agg may be nil, in which case
// the history endpoint reports 404 and /status omits runtime data.
func New(cfg *config.Config, eng *engine.Engine, history *storage.Storage, agg *monitor.Aggregator, logger *slog.Logger, version string) *Server {
	authConfig := middleware.NewAuthConfig(cfg.Auth.Enabled, cfg.Auth.User, cfg.Auth.Password)

	resampler, err := imageio.ParseResampler(cfg.Image.Resampler)
	if err != nil {
		logger.Warn("unknown resampler, using default",
			"resampler", cfg.Image.Resampler,
		)
		resampler = imageio.ResamplerLanczos3
	}

	s := &Server{
		engine:     eng,
		history:    history,
		aggregator: agg,
		config:     cfg,
		logger:     logger,
		version:    version,
		authConfig: authConfig,
		imageSize:  cfg.Image.WorkingSize,
		resampler:  resampler,
		maxPixels:  cfg.Image.MaxPixels,
	}

	mux := s.setupRoutes()

	handler := middleware.Chain(
		mux,
		middleware.Logging(logger),
		middleware.Recovery(logger),
		middleware.SecurityHeaders(),
		middleware.Auth(authConfig, "/health"),
		middleware.RateLimit(&middleware.RateLimitConfig{
			Enabled:           cfg.Server.RateLimit.Enabled,
			RequestsPerSecond: cfg.Server.RateLimit.RequestsPerSecond,
			Burst:             cfg.Server.RateLimit.Burst,
			PerClient:         cfg.Server.RateLimit.PerClient,
			Cost:              imageCost(cfg.Server.RateLimit.ImageCost),
		}),
		middleware.MaxBody(cfg.MaxBodyBytes()),
	)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ReloadConfig applies the settings that can change at runtime.
// Host, port and limits require a restart.
func (s *Server) ReloadConfig(cfg *config.Config) {
	s.logger.Info("reloading configuration")

	s.authConfig.Update(cfg.Auth.Enabled, cfg.Auth.User, cfg.Auth.Password)
	s.config = cfg

	s.logger.Info("configuration reloaded",
		"auth_enabled", cfg.Auth.Enabled,
	)
}

func (s *Server) Start() error {
	s.logger.Info("server starting",
		"addr", s.httpServer.Addr,
	)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// imageCost charges n rate limit tokens for requests that carry an image.
func imageCost(n int) func(*http.Request) int {
	return func(r *http.Request) int {
		switch r.URL.Path {
		case "/features", "/classify/image":
			return n
		}
		return 1
	}
}
