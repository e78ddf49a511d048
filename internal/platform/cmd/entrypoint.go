// Package cmd holds the startup plumbing shared by command entry points.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/louisbranch/whispering.depths/internal/platform/config"
	"github.com/louisbranch/whispering.depths/internal/platform/logging"
	"github.com/louisbranch/whispering.depths/internal/platform/otel"
)

const defaultOTelShutdownTimeout = 5 * time.Second

// ServiceDepths identifies the game server in startup telemetry.
const ServiceDepths = "depths"

// RunOptions controls shared entrypoint behavior for service commands.
type RunOptions struct {
	// ShutdownTimeout bounds the final span flush.
	ShutdownTimeout time.Duration
	// Logger receives startup and shutdown diagnostics. Nil discards them.
	Logger logrus.FieldLogger
}

// ParseConfig loads environment defaults into cfg, reading a .env file first
// when one exists in the working directory.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	return config.ParseEnv(cfg)
}

// ParseArgs parses command-line flags.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// RunWithTelemetry configures tracing and executes a service run loop.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error) error {
	return RunWithTelemetryAndOptions(ctx, service, RunOptions{}, run)
}

// RunWithTelemetryAndOptions configures tracing, executes run and flushes
// pending spans once run returns. The run error wins over a flush error.
func RunWithTelemetryAndOptions(ctx context.Context, service string, options RunOptions, run func(context.Context) error) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return fmt.Errorf("service name is required")
	}
	if run == nil {
		return fmt.Errorf("run function is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	log := logging.Component(options.Logger, "entrypoint").WithField("service", service)

	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return fmt.Errorf("%s telemetry: %w", service, err)
	}
	defer func() {
		timeout := options.ShutdownTimeout
		if timeout <= 0 {
			timeout = defaultOTelShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("otel shutdown")
		}
	}()

	log.Info("starting")
	err = run(ctx)
	if err != nil {
		log.WithError(err).Error("stopped")
	} else {
		log.Info("stopped")
	}
	return err
}
