package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/wiremix/mixerd/internal/api"
	"github.com/wiremix/mixerd/internal/audit"
	"github.com/wiremix/mixerd/internal/automation"
	"github.com/wiremix/mixerd/internal/config"
	"github.com/wiremix/mixerd/internal/metrics"
	"github.com/wiremix/mixerd/internal/pwire"
	"github.com/wiremix/mixerd/internal/session"
	"github.com/wiremix/mixerd/internal/snapshot"
	"github.com/wiremix/mixerd/internal/transport"
)

// version, commit, and buildTime are injected at build time via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	var overrides config.Overrides
	var showVersion bool
	flag.StringVar(&overrides.EnvFile, "env-file", "", "Path to .env file (default: .env)")
	flag.StringVar(&overrides.HTTPAddr, "listen", "", "HTTP listen address (overrides HTTP_ADDR)")
	flag.StringVar(&overrides.LogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	flag.StringVar(&overrides.PipeWireRemote, "pipewire-remote", "", "PipeWire socket path (overrides PIPEWIRE_REMOTE)")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("%s (commit=%s, built=%s)\n", version, commit, buildTime)
		os.Exit(0)
	}

	startTime := time.Now()

	cfg, err := config.Load(overrides)
	if err != nil {
		early := zerolog.New(os.Stderr).With().Timestamp().Logger()
		early.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)
	log.Info().
		Str("version", version).
		Str("commit", commit).
		Str("built", buildTime).
		Str("log_level", level.String()).
		Msg("mixerd starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	socketPath := cfg.PipeWireRemote
	if socketPath == "" {
		socketPath = session.DefaultSocketPath()
	}
	peakProcessor := pwire.NewBallisticsProcessor(float32(cfg.PeakAttack), float32(cfg.PeakRelease))
	backend := session.NewNativeBackend(socketPath, peakProcessor, log)
	sess := session.New(backend, cfg.CaptureEnabled, peakProcessor, log)

	// Audit persistence (optional)
	var auditLog *audit.Log
	if cfg.AuditDatabaseURL != "" {
		auditLog, err = audit.Connect(ctx, cfg.AuditDatabaseURL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect audit database")
		}
		defer auditLog.Close()
	} else {
		log.Info().Msg("audit persistence disabled (AUDIT_DATABASE_URL not set)")
	}

	// Home-automation relay (optional)
	var automationClient *automation.Client
	var automationRelay *automation.Relay
	if cfg.MQTTBrokerURL != "" {
		automationClient, err = automation.Connect(automation.Options{
			BrokerURL: cfg.MQTTBrokerURL,
			ClientID:  cfg.MQTTClientID,
			Username:  cfg.MQTTUsername,
			Password:  cfg.MQTTPassword,
			Log:       log.With().Str("component", "automation").Logger(),
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect automation relay broker")
		}
		defer automationClient.Close()
		automationRelay = automation.NewRelay(automationClient, cfg.MQTTTopic)
	} else {
		log.Info().Msg("automation relay disabled (MQTT_BROKER_URL not set)")
	}

	// Snapshot export (optional)
	snapshotExporter, err := snapshot.New(ctx, snapshot.Config{
		LocalDir: cfg.SnapshotDir,
		S3Bucket: cfg.SnapshotS3Bucket,
		Interval: cfg.SnapshotInterval,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize snapshot exporter")
	}
	if snapshotExporter.Enabled() {
		go snapshotExporter.Run(ctx, sess.LatestView)
	}

	// WebSocket transport
	hub := transport.NewHub(log.With().Str("component", "transport").Logger())
	bridge := transport.NewBridge(hub, sess, log)
	go bridge.Run(ctx, cfg.ViewPushInterval)

	// Every folded StateEvent fans out to whichever of these observers are
	// enabled; Session supports only one OnStateEvent callback, so main
	// composes them here rather than in the owning packages.
	sess.OnStateEvent(func(ev pwire.StateEvent) {
		bridge.HandleStateEvent(ev)
		if automationRelay != nil {
			automationRelay.Handle(ev)
		}
		if auditLog != nil {
			if errEv, ok := ev.(pwire.Error); ok {
				auditLog.RecordError(ctx, errEv)
			}
		}
		logStateEvent(log, ev)
	})

	sink := commandSink{session: sess, audit: auditLog}

	// Metrics
	var collector *metrics.Collector
	if auditLog != nil {
		collector = metrics.NewCollector(auditLog.Pool(), sess)
	} else {
		collector = metrics.NewCollector(nil, sess)
	}

	// Debug HTTP + WebSocket server
	httpLog := log.With().Str("component", "http").Logger()
	srv := api.NewServer(api.ServerOptions{
		Config:     cfg,
		View:       sess,
		Audit:      auditLog,
		Automation: automationClient,
		Version:    fmt.Sprintf("%s (commit=%s, built=%s)", version, commit, buildTime),
		StartTime:  startTime,
		Log:        httpLog,
		Collector:  collector,
		Hub:        hub,
		Sink:       sink,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()
	go runSessionWithReconnect(ctx, sess, socketPath, log)

	if !cfg.AuthEnabled {
		log.Warn().Msg("AUTH_ENABLED=false — debug API authentication is disabled")
	} else if cfg.AuthTokenGenerated {
		log.Info().Str("token", cfg.AuthToken).Msg("AUTH_TOKEN auto-generated (set AUTH_TOKEN in .env for a persistent token)")
	}

	log.Info().
		Str("listen", cfg.HTTPAddr).
		Str("pipewire_remote", socketPath).
		Dur("startup_ms", time.Since(startTime)).
		Msg("mixerd ready")

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("fatal error, shutting down")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
	}

	log.Info().Msg("mixerd stopped")
}

// commandSink wraps Session.Submit so every command arriving over the
// WebSocket transport is also recorded to the audit log before execution.
type commandSink struct {
	session *session.Session
	audit   *audit.Log
}

func (s commandSink) Submit(cmd pwire.Command) {
	if s.audit != nil {
		s.audit.RecordCommand(context.Background(), cmd)
	}
	s.session.Submit(cmd)
}

// runSessionWithReconnect drives sess.Run in a loop, redialing whenever the
// backend disconnects (PipeWire server restart, socket torn down). It waits
// on a SocketWatcher between attempts instead of polling, so a reconnect
// fires the instant the socket reappears rather than on the next fixed
// retry tick.
func runSessionWithReconnect(ctx context.Context, sess *session.Session, socketPath string, log zerolog.Logger) {
	for {
		if err := sess.Run(ctx); err != nil {
			log.Warn().Err(err).Msg("pipewire session ended, will reconnect")
		}
		if ctx.Err() != nil {
			return
		}

		watcher, err := pwire.NewSocketWatcher(socketPath, log)
		if err != nil {
			log.Error().Err(err).Msg("failed to watch pipewire socket directory, retrying on a timer instead")
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
				continue
			}
		}

		changes := make(chan bool, 1)
		watchCtx, cancelWatch := context.WithCancel(ctx)
		go watcher.Run(watchCtx, changes)

		select {
		case <-ctx.Done():
			cancelWatch()
			return
		case present := <-changes:
			cancelWatch()
			if !present {
				continue
			}
		}
	}
}

func logStateEvent(log zerolog.Logger, ev pwire.StateEvent) {
	if errEv, ok := ev.(pwire.Error); ok {
		log.Warn().Str("op", errEv.Op).Err(errEv.Err).Msg("recoverable session error")
	}
}
