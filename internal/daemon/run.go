package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"lattice/internal/config"
	"lattice/internal/ipc"
	"lattice/internal/logging"
	"lattice/internal/service"
)

// Options configures service process runtime behavior.
type Options struct {
	// Module selects which function module to register. Empty falls back to
	// the configured default.
	Module string

	// Port overrides the configured listen port when non-zero.
	Port int

	// LogLevel overrides the configured log level when set.
	LogLevel string
}

// Run hosts the lattice service until the context is canceled, a signal
// arrives, or a client requests shutdown.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return errors.New("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	module := opts.Module
	if module == "" {
		module = cfg.Server.Module
	}
	port := opts.Port
	if port == 0 {
		port = cfg.Server.Port
	}
	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}

	runID := time.Now().UTC().Format("20060102T150405")
	logPath := filepath.Join(cfg.Logging.Dir, fmt.Sprintf("latticed-%s.log", runID))
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	// One service instance per port; a second spawn against the same port
	// must fail fast instead of fighting over the listener.
	lock := flock.New(filepath.Join(cfg.Logging.Dir, fmt.Sprintf("latticed-%d.lock", port)))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire instance lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another lattice service already owns port %d", port)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("release instance lock", logging.Error(err))
		}
	}()

	pidPath := filepath.Join(cfg.Logging.Dir, fmt.Sprintf("latticed-%d.pid", port))
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	registry := service.NewRegistry(logger)
	if err := registerModule(registry, module); err != nil {
		return err
	}

	address := fmt.Sprintf("%s:%d", cfg.Server.Address, port)
	server, err := ipc.NewServer(signalCtx, address, registry, cancel, logger)
	if err != nil {
		return fmt.Errorf("start RPC server: %w", err)
	}
	defer server.Close()
	server.Serve()

	logger.Info("lattice service started",
		logging.String("address", address),
		logging.String("module", module),
		logging.Int("functions", len(registry.Names())))

	<-signalCtx.Done()
	logger.Info("lattice service shutting down")
	return nil
}

func registerModule(registry *service.Registry, module string) error {
	switch module {
	case service.GeometryModule:
		return service.RegisterGeometry(registry)
	default:
		return fmt.Errorf("unknown service module %q", module)
	}
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
