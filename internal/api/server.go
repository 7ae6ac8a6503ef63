package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/wiremix/mixerd/internal/config"
	"github.com/wiremix/mixerd/internal/metrics"
	"github.com/wiremix/mixerd/internal/transport"
)

// Server is mixerd's small debug HTTP surface: health, the current View,
// and Prometheus metrics. Mutating control (Commands) only ever arrives
// over the WebSocket transport, never this router.
type Server struct {
	http *http.Server
	log  zerolog.Logger
}

// ServerOptions wires the debug API to the running session.
type ServerOptions struct {
	Config     *config.Config
	View       ViewSource
	Audit      AuditChecker      // nil if audit persistence disabled
	Automation AutomationChecker // nil if automation relay disabled
	Version    string
	StartTime  time.Time
	Log        zerolog.Logger
	Collector  *metrics.Collector

	// WebSocket transport (nil Hub/Sink disables the /ws route entirely)
	Hub  *transport.Hub
	Sink transport.CommandSink
}

func NewServer(opts ServerOptions) *Server {
	r := chi.NewRouter()

	var corsOrigins []string
	if opts.Config.CORSOrigins != "" {
		for _, o := range strings.Split(opts.Config.CORSOrigins, ",") {
			if s := strings.TrimSpace(o); s != "" {
				corsOrigins = append(corsOrigins, s)
			}
		}
	}

	r.Use(RequestID)
	r.Use(CORSWithOrigins(corsOrigins))
	r.Use(RateLimiter(int(opts.Config.RateLimitRPS), time.Second))
	r.Use(Recoverer)
	r.Use(Logger(opts.Log))
	r.Use(metrics.InstrumentHandler)

	// Unauthenticated endpoints, like the teacher's /health and /metrics.
	health := NewHealthHandler(opts.Audit, opts.Automation, opts.Version, opts.StartTime)
	r.Get("/healthz", health.ServeHTTP)

	if opts.Collector != nil {
		prometheus.MustRegister(opts.Collector)
	}
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	// Everything that exposes or mutates graph state requires a bearer
	// token when AuthEnabled leaves one configured.
	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(opts.Config.AuthToken))
		r.Get("/view", ViewHandler(opts.View))
		if opts.Hub != nil && opts.Sink != nil {
			r.Get("/ws", transport.ServeWS(opts.Hub, opts.Sink, transport.InitialViewFunc(opts.View), opts.Log))
		}
	})

	srv := &http.Server{
		Addr:         opts.Config.HTTPAddr,
		Handler:      r,
		ReadTimeout:  opts.Config.ReadTimeout,
		IdleTimeout:  opts.Config.IdleTimeout,
		WriteTimeout: opts.Config.WriteTimeout,
	}

	return &Server{http: srv, log: opts.Log}
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("debug http server starting")
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("debug http server shutting down")
	return s.http.Shutdown(ctx)
}
