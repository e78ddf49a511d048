// Package depths parses game server flags and starts the runtime.
package depths

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/whispering.depths/internal/platform/cmd"
	"github.com/louisbranch/whispering.depths/internal/platform/logging"
	"github.com/louisbranch/whispering.depths/internal/services/game/narrator"
	"github.com/louisbranch/whispering.depths/internal/services/game/server"
)

// Config holds game server configuration.
type Config struct {
	Port           int      `env:"DEPTHS_PORT" envDefault:"3001"`
	Addr           string   `env:"DEPTHS_ADDR"`
	AllowedOrigins []string `env:"DEPTHS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173" envSeparator:","`
	AuditDBPath    string   `env:"DEPTHS_AUDIT_DB_PATH"`
	LogLevel       string   `env:"DEPTHS_LOG_LEVEL" envDefault:"info"`
	LogFormat      string   `env:"DEPTHS_LOG_FORMAT" envDefault:"text"`
	DiceSeed       int64    `env:"DEPTHS_DICE_SEED"`

	NarratorAPIKey   string        `env:"GROQ_API_KEY"`
	NarratorBaseURL  string        `env:"DEPTHS_NARRATOR_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	NarratorModel    string        `env:"DEPTHS_NARRATOR_MODEL" envDefault:"llama-3.3-70b-versatile"`
	NarratorTimeout  time.Duration `env:"DEPTHS_NARRATOR_TIMEOUT" envDefault:"20s"`
	NarratorMaxTries uint          `env:"DEPTHS_NARRATOR_MAX_TRIES" envDefault:"2"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	origins := strings.Join(cfg.AllowedOrigins, ",")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The game server port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The game server listen address (overrides -port)")
	fs.StringVar(&origins, "allowed-origins", origins, "Comma-separated browser origins allowed by CORS")
	fs.StringVar(&cfg.AuditDBPath, "audit-db", cfg.AuditDBPath, "Path to the sqlite audit database (empty disables auditing)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text or json)")
	fs.Int64Var(&cfg.DiceSeed, "dice-seed", cfg.DiceSeed, "Fixed dice seed (0 draws a random seed)")
	fs.StringVar(&cfg.NarratorModel, "narrator-model", cfg.NarratorModel, "Narrator chat model")
	fs.DurationVar(&cfg.NarratorTimeout, "narrator-timeout", cfg.NarratorTimeout, "Narrator request timeout, retries included")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.AllowedOrigins = splitOrigins(origins)
	return cfg, nil
}

// ListenAddr returns Addr when set, otherwise all interfaces on Port.
func (c Config) ListenAddr() string {
	if addr := strings.TrimSpace(c.Addr); addr != "" {
		return addr
	}
	return fmt.Sprintf(":%d", c.Port)
}

// Run starts the game server.
func Run(ctx context.Context, cfg Config) error {
	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stderr})
	options := entrypoint.RunOptions{Logger: log}
	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceDepths, options, func(ctx context.Context) error {
		srv, err := server.New(ctx, server.Config{
			Addr:           cfg.ListenAddr(),
			AllowedOrigins: cfg.AllowedOrigins,
			AuditDBPath:    cfg.AuditDBPath,
			DiceSeed:       cfg.DiceSeed,
			Narrator: narrator.Config{
				APIKey:   cfg.NarratorAPIKey,
				BaseURL:  cfg.NarratorBaseURL,
				Model:    cfg.NarratorModel,
				Timeout:  cfg.NarratorTimeout,
				MaxTries: cfg.NarratorMaxTries,
			},
			Logger: log,
		})
		if err != nil {
			return err
		}
		defer srv.Close()
		return srv.ListenAndServe(ctx)
	})
}

func splitOrigins(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
