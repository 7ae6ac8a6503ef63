// Package audit optionally persists every executed command and surfaced
// error to Postgres, for post-hoc debugging of a mixing session. It is
// disabled entirely when no database URL is configured.
package audit

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/wiremix/mixerd/internal/pwire"
)

// Log is a durable record of command execution and errors, backed by a
// Postgres connection pool.
type Log struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// Connect dials databaseURL, applies pending migrations, and returns a
// ready-to-use Log.
func Connect(ctx context.Context, databaseURL string, log zerolog.Logger) (*Log, error) {
	if err := runMigrations(databaseURL); err != nil {
		return nil, err
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 8
	cfg.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info().Str("url", maskDSN(databaseURL)).Msg("audit log connected")
	return &Log{pool: pool, log: log.With().Str("component", "audit").Logger()}, nil
}

// RecordCommand inserts one row describing cmd. Failures are logged, never
// returned, since a broken audit log must never block mixer control flow.
func (l *Log) RecordCommand(ctx context.Context, cmd pwire.Command) {
	detail, err := json.Marshal(cmd)
	if err != nil {
		l.log.Warn().Err(err).Msg("failed to marshal command for audit")
		return
	}
	l.insert(ctx, commandKind(cmd), detail, "")
}

// RecordError inserts one row describing a recoverable session error.
func (l *Log) RecordError(ctx context.Context, ev pwire.Error) {
	detail, _ := json.Marshal(struct{ Op string }{ev.Op})
	errMsg := ""
	if ev.Err != nil {
		errMsg = ev.Err.Error()
	}
	l.insert(ctx, "error", detail, errMsg)
}

func (l *Log) insert(ctx context.Context, kind string, detail []byte, errMsg string) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_, err := l.pool.Exec(ctx,
		`INSERT INTO command_log (kind, detail, error) VALUES ($1, $2, NULLIF($3, ''))`,
		kind, detail, errMsg,
	)
	if err != nil {
		l.log.Warn().Err(err).Str("kind", kind).Msg("failed to write audit row")
	}
}

func commandKind(cmd pwire.Command) string {
	switch cmd.(type) {
	case pwire.SetNodeMute:
		return "set_node_mute"
	case pwire.SetNodeVolumes:
		return "set_node_volumes"
	case pwire.SetDeviceRouteMute:
		return "set_device_route_mute"
	case pwire.SetDeviceRouteVolumes:
		return "set_device_route_volumes"
	case pwire.SetRoute:
		return "set_route"
	case pwire.SetProfile:
		return "set_profile"
	case pwire.SetDefaultSink:
		return "set_default_sink"
	case pwire.SetDefaultSource:
		return "set_default_source"
	case pwire.SetNodeTarget:
		return "set_node_target"
	default:
		return "unknown"
	}
}

func (l *Log) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return l.pool.Ping(ctx)
}

func (l *Log) Close() {
	l.log.Info().Msg("closing audit log pool")
	l.pool.Close()
}

// Pool exposes the underlying connection pool for metrics.Collector.
func (l *Log) Pool() *pgxpool.Pool {
	return l.pool
}

func maskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "***"
	}
	if u.User != nil {
		if _, hasPass := u.User.Password(); hasPass {
			u.User = url.UserPassword(u.User.Username(), "***")
		}
	}
	return u.String()
}
