// Package server assembles the game service and serves it over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/louisbranch/whispering.depths/internal/platform/logging"
	"github.com/louisbranch/whispering.depths/internal/platform/random"
	"github.com/louisbranch/whispering.depths/internal/platform/timeouts"
	httpapi "github.com/louisbranch/whispering.depths/internal/services/game/api/http"
	"github.com/louisbranch/whispering.depths/internal/services/game/app"
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/dice"
	"github.com/louisbranch/whispering.depths/internal/services/game/domain/session"
	"github.com/louisbranch/whispering.depths/internal/services/game/narrator"
	"github.com/louisbranch/whispering.depths/internal/services/game/observability/audit"
	"github.com/louisbranch/whispering.depths/internal/services/game/storage/sqlite"
)

// Config wires the game server.
type Config struct {
	Addr           string
	AllowedOrigins []string
	// AuditDBPath enables the sqlite audit trail when set.
	AuditDBPath string
	// DiceSeed fixes the dice sequence; zero draws a crypto seed.
	DiceSeed int64
	// Narrator configures the language-model narrator. An empty API key
	// selects the offline narrator.
	Narrator narrator.Config
	Logger   logrus.FieldLogger
}

// Server hosts the game API.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	auditStore *sqlite.Store
	log        logrus.FieldLogger
}

// New builds the game service and binds its listener.
func New(ctx context.Context, cfg Config) (*Server, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logging.Component(cfg.Logger, "server")

	seed, err := random.ResolveSeed(cfg.DiceSeed, nil)
	if err != nil {
		return nil, err
	}
	roller := dice.NewSource(seed)

	n, aiEnabled, err := buildNarrator(cfg.Narrator, cfg.Logger)
	if err != nil {
		return nil, err
	}

	var auditStore *sqlite.Store
	emitter := audit.NewEmitter(nil)
	if path := strings.TrimSpace(cfg.AuditDBPath); path != "" {
		auditStore, err = openAuditStore(ctx, path)
		if err != nil {
			return nil, err
		}
		emitter = audit.NewEmitter(auditStore)
	}

	store := session.NewStore(roller, session.WithLogger(cfg.Logger))
	svc := app.NewService(store, n, roller,
		app.WithAudit(emitter),
		app.WithLogger(cfg.Logger),
	)
	handler := httpapi.NewHandler(svc, httpapi.Config{
		AllowedOrigins: cfg.AllowedOrigins,
		AIEnabled:      aiEnabled,
		Logger:         cfg.Logger,
	})

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		if auditStore != nil {
			_ = auditStore.Close()
		}
		return nil, fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}

	log.WithFields(logrus.Fields{
		"ai_enabled": aiEnabled,
		"audit":      emitter.Enabled(),
	}).Info("game server configured")

	return &Server{
		listener: listener,
		httpServer: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		auditStore: auditStore,
		log:        log,
	}, nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("game server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.WithField("addr", s.Addr()).Info("game server listening")
		if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// Close releases the audit store.
func (s *Server) Close() {
	if s == nil || s.auditStore == nil {
		return
	}
	if err := s.auditStore.Close(); err != nil {
		s.log.WithError(err).Warn("close audit store")
	}
}

func buildNarrator(cfg narrator.Config, log logrus.FieldLogger) (narrator.Narrator, bool, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return narrator.NewOffline(), false, nil
	}
	if cfg.Logger == nil {
		cfg.Logger = log
	}
	n, err := narrator.NewOpenAI(cfg)
	if err != nil {
		return nil, false, fmt.Errorf("build narrator: %w", err)
	}
	return n, true, nil
}

func openAuditStore(ctx context.Context, path string) (*sqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open audit sqlite store: %w", err)
	}
	return store, nil
}
