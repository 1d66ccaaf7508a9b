package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lixenwraith/firehose/audio"
	"github.com/lixenwraith/firehose/core"
	"github.com/lixenwraith/firehose/feed"
	"github.com/lixenwraith/firehose/flow"
	"github.com/lixenwraith/firehose/render"
	"github.com/lixenwraith/firehose/status"
)

// Keyboard step sizes
const (
	speedStep = 0.25
	spawnStep = 25 * time.Millisecond
)

// TUIOptions holds tui flags
type TUIOptions struct {
	Mode    string
	Tag     string
	Feed    bool
	Replay  bool
	NoSound bool
}

// NewTUICommand runs the engine in the terminal
func NewTUICommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TUIOptions{}

	cmd := &cobra.Command{
		Use:   "tui [file...]",
		Short: "Animate text in the terminal",
		Long: `Tui animates words from the given files ("-" reads stdin) and, with --feed,
from entries arriving in the configured store.

Keys: space start/stop, c clear, 1-0 modes, +/- speed, [/] spawn rate, q quit.
Click a word to select it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(rootOpts, opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Mode, "mode", "m", "", "initial motion mode")
	cmd.Flags().StringVar(&opts.Tag, "tag", "", "tag applied to file content")
	cmd.Flags().BoolVar(&opts.Feed, "feed", false, "stream entries from the configured store")
	cmd.Flags().BoolVar(&opts.NoSound, "no-sound", false, "disable sound effects")
	cmd.Flags().BoolVar(&opts.Replay, "replay", false, "with --feed, replay every stored entry")

	return cmd
}

func runTUI(rootOpts *RootOptions, opts *TUIOptions, args []string, cmd *cobra.Command) error {
	cfg, err := rootOpts.loadConfig()
	if err != nil {
		return err
	}
	if opts.Mode != "" {
		cfg.Engine.Mode = opts.Mode
	}
	log, err := rootOpts.logger(cfg, false)
	if err != nil {
		return err
	}
	defer log.Sync()

	texts, err := readInputs(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	core.RegisterCrashCleanup(screen.Fini)
	defer screen.Fini()
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()
	screen.EnableMouse()
	screen.HideCursor()

	var sound *audio.SoundManager
	if cfg.Terminal.Sound && !opts.NoSound {
		sound = audio.NewSoundManager(audio.DefaultConfig(), nil)
		if err := sound.Initialize(); err != nil {
			log.Warnw("audio initialization failed, continuing without sound", "error", err)
			sound = nil
		} else {
			defer sound.Cleanup()
		}
	}

	app := newTUIApp(screen, cfg.Engine, cfg.Terminal.CellWidth, cfg.Terminal.CellHeight, sound, log)
	defer app.engine.Destroy()
	for _, text := range texts {
		app.engine.AddContent(text, opts.Tag)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if opts.Feed {
		store, err := feed.Open(ctx, cfg.Feed.DatabaseURL)
		if err != nil {
			return err
		}
		defer store.Close()
		feedCfg := cfg.Feed
		feedCfg.Replay = feedCfg.Replay || opts.Replay
		poller, err := newFeedPoller(ctx, store, app.engine, feedCfg, log, app.status)
		if err != nil {
			return err
		}
		core.Go(func() { _ = poller.Run(ctx) })
	}

	app.engine.Start()
	app.run()
	return nil
}

// readInputs returns one string per non-empty line across files, "-" reads in
func readInputs(paths []string, in io.Reader) ([]string, error) {
	var out []string
	for _, path := range paths {
		var r io.Reader = in
		if path != "-" {
			f, err := os.Open(path)
			if err != nil {
				return nil, fmt.Errorf("open input: %w", err)
			}
			defer f.Close()
			r = f
		}
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			if line := sc.Text(); line != "" {
				out = append(out, line)
			}
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
	return out, nil
}

// tuiApp connects terminal input to the engine
type tuiApp struct {
	screen   tcell.Screen
	engine   *flow.Engine
	renderer *render.TerminalRenderer
	status   *status.Registry
	sound    *audio.SoundManager
	log      *zap.SugaredLogger
	modes    []string
	buttons  tcell.ButtonMask
	selected string
}

func newTUIApp(screen tcell.Screen, engineCfg flow.Config, cellW, cellH float64, sound *audio.SoundManager, log *zap.SugaredLogger, opts ...flow.Option) *tuiApp {
	a := &tuiApp{
		screen: screen,
		status: status.NewRegistry(),
		sound:  sound,
		log:    log,
	}
	a.renderer = render.NewTerminalRenderer(screen, cellW, cellH)

	base := []flow.Option{
		flow.WithConfig(engineCfg),
		flow.WithStatus(a.status),
		flow.WithLogger(log),
		flow.WithClickHandler(a.onClick),
	}
	if sound != nil {
		base = append(base, flow.WithSpawnHandler(func(ev flow.SpawnEvent) {
			sound.PlaySpawn(ev.Mode)
		}))
	}
	a.engine = flow.New(a.renderer, append(base, opts...)...)
	a.modes = a.engine.Modes()
	a.renderer.SetStatus(a.statusLine)
	return a
}

// statusLine runs inside Present, it reads only lock-free state
func (a *tuiApp) statusLine() string {
	state := "paused"
	if a.engine.Running() {
		state = "running"
	}
	line := fmt.Sprintf(" %s | %s | active %d | pending %d | speed %.2fx",
		a.status.Label(flow.StatMode).Load(),
		state,
		a.status.Gauge(flow.StatActive).Load(),
		a.status.Gauge(flow.StatPending).Load(),
		a.status.Float(flow.StatSpeed).Get(),
	)
	if sel := a.status.Label("tui.selected").Load(); sel != "" {
		line += " | " + sel
	}
	return line
}

func (a *tuiApp) onClick(ev flow.ClickEvent) {
	a.status.Label("tui.selected").Store(ev.Text)
	if a.sound != nil {
		a.sound.PlayClick()
	}
}

func (a *tuiApp) run() {
	eventCh := make(chan tcell.Event, 100)
	core.Go(func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				close(eventCh)
				return
			}
			eventCh <- ev
		}
	})

	for ev := range eventCh {
		if !a.handleEvent(ev) {
			return
		}
	}
}

// handleEvent applies one terminal event, false means quit
func (a *tuiApp) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKey(ev)

	case *tcell.EventMouse:
		buttons := ev.Buttons()
		pressed := buttons&tcell.Button1 != 0 && a.buttons&tcell.Button1 == 0
		a.buttons = buttons
		if pressed {
			x, y := ev.Position()
			if id, ok := a.renderer.HitTest(x, y); ok {
				a.engine.Click(id)
			}
		}

	case *tcell.EventResize:
		a.screen.Sync()
	}
	return true
}

func (a *tuiApp) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyRune:
	default:
		return true
	}

	cfg := a.engine.Config()
	switch r := ev.Rune(); {
	case r == 'q':
		return false
	case r == ' ':
		if a.engine.Running() {
			a.engine.Stop()
		} else {
			a.engine.Start()
		}
	case r == 'c':
		a.engine.Clear()
		a.status.Label("tui.selected").Store("")
	case r >= '0' && r <= '9':
		idx := int(r-'0') - 1
		if r == '0' {
			idx = 9
		}
		if idx < len(a.modes) {
			a.engine.SetMode(a.modes[idx])
		}
	case r == '+' || r == '=':
		a.engine.SetSpeed(cfg.Speed + speedStep)
	case r == '-':
		a.engine.SetSpeed(cfg.Speed - speedStep)
	case r == '[':
		a.engine.SetSpawnInterval(cfg.SpawnInterval + spawnStep)
	case r == ']':
		a.engine.SetSpawnInterval(cfg.SpawnInterval - spawnStep)
	}
	return true
}
