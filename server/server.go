// Package server exposes the engine over HTTP: control API, frame websocket, health and metrics
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/lixenwraith/firehose/feed"
	"github.com/lixenwraith/firehose/flow"
	"github.com/lixenwraith/firehose/metrics"
	"github.com/lixenwraith/firehose/stream"
)

// entryStore is the slice of feed.Store the API needs
type entryStore interface {
	Insert(ctx context.Context, e feed.Entry) (int64, error)
	Ping(ctx context.Context) error
}

// Config wires the server to its collaborators, nil fields disable their routes
type Config struct {
	Addr string
	// APIKey guards mutating routes when set
	APIKey      string
	Logger      *zap.SugaredLogger
	Registry    *prometheus.Registry
	HTTPMetrics *metrics.HTTPMetrics
	Hub         *stream.Hub
	Store       entryStore
	Clock       clockwork.Clock
}

type Server struct {
	echo      *echo.Echo
	cfg       Config
	engine    *flow.Engine
	log       *zap.SugaredLogger
	clock     clockwork.Clock
	startTime time.Time
}

// New builds the echo instance and registers every route
func New(engine *flow.Engine, cfg Config) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	s := &Server{
		echo:      e,
		cfg:       cfg,
		engine:    engine,
		log:       log,
		clock:     clock,
		startTime: clock.Now(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the root handler, used by tests and embedding hosts
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until Shutdown, http.ErrServerClosed is swallowed
func (s *Server) Start() error {
	s.log.Infow("http server listening", "addr", s.cfg.Addr)
	if err := s.echo.Start(s.cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.cfg.Hub != nil {
		s.cfg.Hub.Close()
	}
	return s.echo.Shutdown(ctx)
}
