// Package snapshot periodically exports the current mixer View to local
// disk and/or an S3-compatible bucket, for post-hoc diagnostics of a
// mixing session. Both destinations are optional; an Exporter with neither
// configured is a no-op.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/wiremix/mixerd/internal/view"
)

// Config controls where snapshots land and how often.
type Config struct {
	LocalDir string
	S3Bucket string
	S3Prefix string
	Interval time.Duration
}

// Exporter writes periodic View snapshots to whichever destinations are
// configured.
type Exporter struct {
	cfg      Config
	s3Client *s3.Client
	log      zerolog.Logger
}

// New builds an Exporter. If cfg.S3Bucket is set, an S3 client is
// constructed from the ambient AWS config (env vars / shared config file /
// instance role) exactly as the teacher's S3 store did.
func New(ctx context.Context, cfg Config, log zerolog.Logger) (*Exporter, error) {
	e := &Exporter{cfg: cfg, log: log.With().Str("component", "snapshot").Logger()}
	if cfg.S3Bucket == "" {
		return e, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot: aws config: %w", err)
	}
	e.s3Client = s3.NewFromConfig(awsCfg)
	return e, nil
}

// Enabled reports whether any destination is configured.
func (e *Exporter) Enabled() bool {
	return e.cfg.LocalDir != "" || e.s3Client != nil
}

// Run exports a snapshot every Interval until ctx is cancelled. viewFn is
// called on each tick from this goroutine, so it must be safe to call
// concurrently with the session loop (a typical implementation reads an
// atomically-published last-rendered View rather than touching State
// directly).
func (e *Exporter) Run(ctx context.Context, viewFn func() view.View) {
	if !e.Enabled() {
		return
	}
	interval := e.cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := e.Export(ctx, viewFn()); err != nil {
				e.log.Warn().Err(err).Msg("snapshot export failed")
			}
		}
	}
}

// Export writes one snapshot of v to every configured destination.
func (e *Exporter) Export(ctx context.Context, v view.View) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	name := fmt.Sprintf("mixerd-%d.json", time.Now().UnixNano())

	if e.cfg.LocalDir != "" {
		if err := e.writeLocal(name, data); err != nil {
			return err
		}
	}
	if e.s3Client != nil {
		if err := e.writeS3(ctx, name, data); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) writeLocal(name string, data []byte) error {
	if err := os.MkdirAll(e.cfg.LocalDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(e.cfg.LocalDir, name), data, 0o644)
}

func (e *Exporter) writeS3(ctx context.Context, name string, data []byte) error {
	key := name
	if e.cfg.S3Prefix != "" {
		key = e.cfg.S3Prefix + "/" + name
	}
	_, err := e.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.cfg.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	return err
}
