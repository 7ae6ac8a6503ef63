package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	PipeWireRemote string `env:"PIPEWIRE_REMOTE"` // overrides the socket path auto-detected from XDG_RUNTIME_DIR
	CaptureEnabled bool   `env:"CAPTURE_ENABLED" envDefault:"true"`
	PeakAttack     float64 `env:"PEAK_ATTACK" envDefault:"0.1"`
	PeakRelease    float64 `env:"PEAK_RELEASE" envDefault:"0.85"`

	HTTPAddr     string        `env:"HTTP_ADDR" envDefault:":9090"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`

	AuthEnabled        bool   `env:"AUTH_ENABLED" envDefault:"true"`
	AuthToken          string `env:"AUTH_TOKEN"`
	AuthTokenGenerated bool
	RateLimitRPS       float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst     int     `env:"RATE_LIMIT_BURST" envDefault:"40"`
	CORSOrigins        string  `env:"CORS_ORIGINS"`
	LogLevel           string  `env:"LOG_LEVEL" envDefault:"info"`

	// WebSocket transport
	ViewPushInterval time.Duration `env:"VIEW_PUSH_INTERVAL" envDefault:"33ms"`

	// Audit persistence (optional — disabled when AUDIT_DATABASE_URL is empty)
	AuditDatabaseURL string `env:"AUDIT_DATABASE_URL"`

	// Snapshot export (optional — disabled when SNAPSHOT_DIR and
	// SNAPSHOT_S3_BUCKET are both empty)
	SnapshotDir      string        `env:"SNAPSHOT_DIR"`
	SnapshotS3Bucket string        `env:"SNAPSHOT_S3_BUCKET"`
	SnapshotInterval time.Duration `env:"SNAPSHOT_INTERVAL" envDefault:"5m"`

	// Home-automation relay (optional — disabled when MQTT_BROKER_URL is empty)
	MQTTBrokerURL string `env:"MQTT_BROKER_URL"`
	MQTTTopic     string `env:"MQTT_TOPIC" envDefault:"mixerd/state"`
	MQTTClientID  string `env:"MQTT_CLIENT_ID" envDefault:"mixerd"`
	MQTTUsername  string `env:"MQTT_USERNAME"`
	MQTTPassword  string `env:"MQTT_PASSWORD"`
}

// Validate checks config invariants that can't be expressed as env tags.
func (c *Config) Validate() error {
	if c.PeakAttack < 0 || c.PeakAttack > 1 {
		return fmt.Errorf("PEAK_ATTACK must be in [0,1], got %v", c.PeakAttack)
	}
	if c.PeakRelease < 0 || c.PeakRelease > 1 {
		return fmt.Errorf("PEAK_RELEASE must be in [0,1], got %v", c.PeakRelease)
	}
	return nil
}

// Overrides holds CLI flag values that take priority over env vars.
type Overrides struct {
	EnvFile        string
	HTTPAddr       string
	LogLevel       string
	PipeWireRemote string
}

// Load reads configuration from a .env file, environment variables, and CLI
// overrides. Priority: CLI flags > environment variables > .env file >
// struct defaults.
func Load(overrides Overrides) (*Config, error) {
	envFile := overrides.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		_ = godotenv.Load(envFile)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if overrides.HTTPAddr != "" {
		cfg.HTTPAddr = overrides.HTTPAddr
	}
	if overrides.LogLevel != "" {
		cfg.LogLevel = overrides.LogLevel
	}
	if overrides.PipeWireRemote != "" {
		cfg.PipeWireRemote = overrides.PipeWireRemote
	}

	if !cfg.AuthEnabled {
		cfg.AuthToken = ""
	} else if cfg.AuthToken == "" {
		// Auto-generate a token so the debug API is never left wide open
		// by default. The token changes on each restart; set AUTH_TOKEN
		// for a persistent one.
		b := make([]byte, 32)
		if _, err := rand.Read(b); err == nil {
			cfg.AuthToken = base64.URLEncoding.EncodeToString(b)
			cfg.AuthTokenGenerated = true
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
