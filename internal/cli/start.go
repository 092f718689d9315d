package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/haskel/aguacate/internal/config"
	"github.com/haskel/aguacate/internal/engine"
	"github.com/haskel/aguacate/internal/logger"
	"github.com/haskel/aguacate/internal/monitor"
	"github.com/haskel/aguacate/internal/server"
	"github.com/haskel/aguacate/internal/storage"
)

// shutdownTimeout bounds how long in-flight requests may take on exit.
const shutdownTimeout = 30 * time.Second

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the aguacate server",
	Long: `Start the aguacate server in the foreground.

The networks are trained in the background. Until a task's network is
ready its requests are answered by the heuristic scorer. SIGHUP reloads
the auth settings; SIGINT or SIGTERM stop the server.`,
	Args: cobra.NoArgs,
	RunE: runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

// engineConfig maps the training section of the config file onto the
// engine parameters.
func engineConfig(cfg *config.Config) engine.Config {
	return engine.Config{
		Epochs:        cfg.Training.Epochs,
		LearningRate:  cfg.Training.LearningRate,
		Copies:        cfg.Training.AugmentCopies,
		Jitter:        cfg.Training.Jitter,
		ProgressEvery: cfg.Training.ProgressEvery,
		Seed:          cfg.Training.Seed,
		Hidden:        cfg.Training.HiddenSizes(),
	}
}

// service is everything runStart brings up, in start order.
type service struct {
	log     *slog.Logger
	monitor *monitor.Aggregator
	history *storage.Storage
	engine  *engine.Engine
	http    *server.Server
}

func newService(ctx context.Context, cfg *config.Config, log *slog.Logger) (*service, error) {
	s := &service{log: log}

	var dirs []string
	if cfg.History.Enabled {
		dirs = append(dirs, cfg.History.DataDir)
	}
	s.monitor = monitor.Default(dirs, monitor.DefaultInterval, logger.Component(log, "monitor"))
	if err := s.monitor.Start(ctx); err != nil {
		return nil, fmt.Errorf("start monitor: %w", err)
	}

	if cfg.History.Enabled {
		s.history = storage.New(cfg.History.DataDir, cfg.FlushInterval(), cfg.History.MaxRecords, logger.Component(log, "history"))
		if err := s.history.Load(); err != nil {
			log.Warn("prediction history not loaded, starting empty", "error", err)
		}
		s.history.Start(ctx)
	}

	s.engine = engine.New(engineConfig(cfg), logger.Component(log, "engine"))
	if cfg.Training.Enabled {
		s.engine.Initialize(ctx)
	} else {
		log.Info("training disabled, serving heuristic scores only")
	}

	s.http = server.New(cfg, s.engine, s.history, s.monitor, logger.Component(log, "server"), Version)
	return s, nil
}

// stop shuts the parts down in reverse start order.
func (s *service) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		s.log.Error("server shutdown", "error", err)
	}
	s.engine.Stop()
	if s.history != nil {
		if err := s.history.Stop(); err != nil {
			s.log.Error("history flush on shutdown", "error", err)
		}
	}
	_ = s.monitor.Stop()
}

// watchReload re-reads the config file on SIGHUP until ctx ends.
func (s *service) watchReload(ctx context.Context) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			next := config.LoadOrDefault(cfgFile)
			if err := next.Validate(); err != nil {
				s.log.Error("reload aborted, configuration invalid", "error", err)
				continue
			}
			s.http.ReloadConfig(next)
			s.log.Info("configuration reloaded")
		}
	}
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, source, err := config.Resolve(cfgFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = port
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = host
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("aguacate starting", "version", Version, "config", source)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := newService(ctx, cfg, log)
	if err != nil {
		return err
	}

	if path := cfg.Server.PIDFile; path != "" {
		if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
			log.Warn("PID file not written", "path", path, "error", err)
		} else {
			defer os.Remove(path)
		}
	}

	go svc.watchReload(ctx)

	served := make(chan error, 1)
	go func() {
		log.Info("aguacate ready", "addr", svc.http.Addr())
		served <- svc.http.Start()
	}()

	select {
	case err = <-served:
		// Listener failed before any signal, e.g. the port is taken.
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	stop()
	svc.stop()

	if err == nil {
		err = <-served
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("aguacate stopped")
	return nil
}
