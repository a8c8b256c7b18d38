// Package config reads the process settings shared by every binary from
// the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HostIP    string `env:"HOST_IP" envDefault:"localhost"`
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	CoordinatorPort int `env:"COORDINATOR_PORT" envDefault:"8000"`
	// ColumnNodePorts holds one port per board column; its length is the
	// board width.
	ColumnNodePorts []int `env:"COLUMN_NODE_PORTS" envSeparator:"," envDefault:"8001,8002,8003,8004,8005,8006,8007"`
	ColumnID        int   `env:"COLUMN_ID" envDefault:"0"`
	PowerUpPort     int   `env:"POWER_UP_SERVICE_PORT" envDefault:"8010"`
	EventPort       int   `env:"RANDOM_EVENT_ENGINE_PORT" envDefault:"8020"`

	WinCheckTimeout time.Duration `env:"WIN_CHECK_TIMEOUT" envDefault:"2s"`
	SnapshotTTL     time.Duration `env:"SNAPSHOT_TTL" envDefault:"24h"`

	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string   `env:"LOG_FORMAT" envDefault:"text"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// Load reads the given .env files, ".env" when none are named, and then
// parses the environment. Missing files are ignored; variables already
// set win over file values.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if len(c.ColumnNodePorts) == 0 {
		return errors.New("COLUMN_NODE_PORTS must list at least one port")
	}
	if c.ColumnID < 0 || c.ColumnID >= len(c.ColumnNodePorts) {
		return fmt.Errorf("COLUMN_ID %d out of range [0,%d)", c.ColumnID, len(c.ColumnNodePorts))
	}
	if c.WinCheckTimeout <= 0 {
		return errors.New("WIN_CHECK_TIMEOUT must be positive")
	}
	return nil
}

func (c Config) url(port int) string {
	return fmt.Sprintf("http://%s:%d", c.HostIP, port)
}

// ColumnAddresses maps each column id to its service URL.
func (c Config) ColumnAddresses() map[int]string {
	addrs := make(map[int]string, len(c.ColumnNodePorts))
	for id, port := range c.ColumnNodePorts {
		addrs[id] = c.url(port)
	}
	return addrs
}

func (c Config) ColumnPort() int { return c.ColumnNodePorts[c.ColumnID] }

func (c Config) CoordinatorURL() string { return c.url(c.CoordinatorPort) }

func (c Config) PowerUpURL() string { return c.url(c.PowerUpPort) }

func (c Config) EventURL() string { return c.url(c.EventPort) }

// ListenAddr is the bind address for port on every interface.
func ListenAddr(port int) string { return fmt.Sprintf(":%d", port) }

// NewLogger builds a text or JSON slog logger at the configured level.
func NewLogger(c Config, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
