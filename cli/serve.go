package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lixenwraith/firehose/config"
	"github.com/lixenwraith/firehose/core"
	"github.com/lixenwraith/firehose/feed"
	"github.com/lixenwraith/firehose/flow"
	"github.com/lixenwraith/firehose/metrics"
	"github.com/lixenwraith/firehose/server"
	"github.com/lixenwraith/firehose/status"
	"github.com/lixenwraith/firehose/stream"
)

const shutdownTimeout = 10 * time.Second

// ServeOptions holds serve flags
type ServeOptions struct {
	Addr   string
	Width  float64
	Height float64
	NoFeed bool
	Replay bool
}

// NewServeCommand runs the engine behind the HTTP and websocket API
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve frames over websocket with an HTTP control API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rootOpts, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address, overrides server.addr")
	cmd.Flags().Float64Var(&opts.Width, "width", 1280, "logical viewport width")
	cmd.Flags().Float64Var(&opts.Height, "height", 720, "logical viewport height")
	cmd.Flags().BoolVar(&opts.NoFeed, "no-feed", false, "do not poll the entry store")
	cmd.Flags().BoolVar(&opts.Replay, "replay", false, "replay every stored entry instead of only new ones")

	return cmd
}

// serveApp is the wired server host
type serveApp struct {
	engine *flow.Engine
	hub    *stream.Hub
	server *server.Server
	store  feed.Store
	poller *feed.Poller
}

func buildServeApp(ctx context.Context, cfg *config.Config, opts *ServeOptions, log *zap.SugaredLogger) (*serveApp, error) {
	reg := metrics.NewRegistry()
	st := status.NewRegistry()
	metrics.NewEngineCollector(reg, st)
	wsMetrics := metrics.NewWebSocketMetrics(reg)
	httpMetrics := metrics.NewHTTPMetrics(reg)

	renderer := stream.NewRenderer(nil, opts.Width, opts.Height)
	engine := flow.New(renderer,
		flow.WithConfig(cfg.Engine),
		flow.WithStatus(st),
		flow.WithLogger(log.Named("engine")),
	)

	hub := stream.NewHub(stream.HubConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         log.Named("ws"),
		Metrics:        wsMetrics,
		Snapshot:       renderer.Snapshot,
		OnMessage: func(msg stream.ClientMessage) {
			if err := stream.Dispatch(engine, msg); err != nil {
				log.Debugw("client message rejected", "type", msg.Type, "error", err)
			}
		},
	})
	renderer.SetBroadcaster(hub)

	app := &serveApp{engine: engine, hub: hub}

	if !opts.NoFeed && cfg.Feed.DatabaseURL != "" {
		store, err := feed.Open(ctx, cfg.Feed.DatabaseURL)
		if err != nil {
			return nil, err
		}
		app.store = store
		feedCfg := cfg.Feed
		feedCfg.Replay = feedCfg.Replay || opts.Replay
		poller, err := newFeedPoller(ctx, store, engine, feedCfg, log.Named("feed"), st)
		if err != nil {
			app.close()
			return nil, err
		}
		app.poller = poller
	}

	addr := cfg.Server.Addr
	if opts.Addr != "" {
		addr = opts.Addr
	}
	srvCfg := server.Config{
		Addr:        addr,
		APIKey:      cfg.Server.APIKey,
		Logger:      log.Named("http"),
		Registry:    reg,
		HTTPMetrics: httpMetrics,
		Hub:         hub,
	}
	if app.store != nil {
		srvCfg.Store = app.store
	}
	app.server = server.New(engine, srvCfg)
	return app, nil
}

// newFeedPoller resumes after the store's newest entry unless cfg.Replay is set
func newFeedPoller(ctx context.Context, store feed.Store, sink feed.Sink, cfg config.Feed, log *zap.SugaredLogger, st *status.Registry) (*feed.Poller, error) {
	var after int64
	if !cfg.Replay {
		id, err := store.LatestID(ctx)
		if err != nil {
			return nil, fmt.Errorf("resume feed cursor: %w", err)
		}
		after = id
	}
	log.Infow("feed poller ready", "after_id", after, "replay", cfg.Replay)
	return feed.NewPoller(store, sink, feed.PollerConfig{
		Interval:     cfg.PollInterval,
		BatchSize:    cfg.BatchSize,
		LowWatermark: cfg.LowWatermark,
		AfterID:      after,
	}, nil, log, st), nil
}

func (a *serveApp) close() {
	a.engine.Destroy()
	if a.store != nil {
		_ = a.store.Close()
	}
}

func runServe(ctx context.Context, rootOpts *RootOptions, opts *ServeOptions) error {
	cfg, err := rootOpts.loadConfig()
	if err != nil {
		return err
	}
	log, err := rootOpts.logger(cfg, true)
	if err != nil {
		return err
	}
	defer log.Sync()

	app, err := buildServeApp(ctx, cfg, opts, log)
	if err != nil {
		return err
	}
	defer app.close()

	if app.poller != nil {
		core.Go(func() { _ = app.poller.Run(ctx) })
	}
	app.engine.Start()

	errCh := make(chan error, 1)
	core.Go(func() { errCh <- app.server.Start() })

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Infow("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("http server shutdown failed", "error", err)
	}
	return nil
}
