package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lixenwraith/firehose/core"
	"github.com/lixenwraith/firehose/flow"
	"github.com/lixenwraith/firehose/motion"
)

func newSimScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(80, 25)
	t.Cleanup(screen.Fini)
	return screen
}

func newTestApp(t *testing.T, opts ...flow.Option) (*tuiApp, tcell.SimulationScreen) {
	t.Helper()
	screen := newSimScreen(t)
	base := []flow.Option{flow.WithClock(clockwork.NewFakeClock())}
	app := newTUIApp(screen, flow.DefaultConfig(), 10, 20, nil, zap.NewNop().Sugar(), append(base, opts...)...)
	t.Cleanup(app.engine.Destroy)
	return app, screen
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestTUIQuitKeys(t *testing.T) {
	app, _ := newTestApp(t)

	assert.False(t, app.handleEvent(key('q')))
	assert.False(t, app.handleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
	assert.False(t, app.handleEvent(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModNone)))
	assert.True(t, app.handleEvent(key('x')))
}

func TestTUIModeKeys(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		key  rune
		mode string
	}{
		{'2', motion.Matrix},
		{'5', motion.Typewriter},
		{'0', motion.Firehose},
		{'1', motion.Wave},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			require.True(t, app.handleEvent(key(tt.key)))
			assert.Equal(t, tt.mode, app.engine.Mode())
		})
	}
}

func TestTUITuningKeys(t *testing.T) {
	app, _ := newTestApp(t)

	app.handleEvent(key('+'))
	app.handleEvent(key('+'))
	app.handleEvent(key('-'))
	assert.InDelta(t, 1.25, app.engine.Config().Speed, 1e-9)

	app.handleEvent(key('['))
	assert.Equal(t, 175*time.Millisecond, app.engine.Config().SpawnInterval)
	app.handleEvent(key(']'))
	app.handleEvent(key(']'))
	assert.Equal(t, 125*time.Millisecond, app.engine.Config().SpawnInterval)
}

func TestTUIStartStopAndClear(t *testing.T) {
	app, _ := newTestApp(t)
	app.engine.AddContent("one two three", "")

	app.handleEvent(key(' '))
	assert.True(t, app.engine.Running())
	app.handleEvent(key(' '))
	assert.False(t, app.engine.Running())

	app.handleEvent(key('c'))
	assert.Equal(t, 0, app.engine.Pending())
}

func pinnedRegistry() *motion.Registry {
	r := motion.NewRegistry()
	r.Register("pinned", func(motion.Env) motion.Strategy {
		return motion.Strategy{
			Reset: func() {},
			Initialize: func(p *core.Particle, w, h float64) {
				p.Pos.X, p.Pos.Y = 30, 40
				p.Opacity = 1
				p.Size = 1
			},
			Update: func(p *core.Particle, dt, speed, w, h float64) bool { return true },
		}
	})
	return r
}

func TestTUIMouseClickSelectsWord(t *testing.T) {
	app, screen := newTestApp(t, flow.WithRegistry(pinnedRegistry()))
	app.engine.AddContent("zebra", "")
	app.engine.Tick(200)

	mainc, _, _, _ := screen.GetContent(3, 2)
	require.Equal(t, 'z', mainc)

	app.handleEvent(tcell.NewEventMouse(4, 2, tcell.Button1, tcell.ModNone))
	// Held button does not click again
	app.handleEvent(tcell.NewEventMouse(4, 2, tcell.Button1, tcell.ModNone))
	app.handleEvent(tcell.NewEventMouse(4, 2, tcell.ButtonNone, tcell.ModNone))
	assert.Equal(t, int64(1), app.status.Counter(flow.StatClicks).Load())
	assert.Contains(t, app.statusLine(), "zebra")

	app.handleEvent(tcell.NewEventMouse(60, 10, tcell.Button1, tcell.ModNone))
	assert.Equal(t, int64(1), app.status.Counter(flow.StatClicks).Load())
}

func TestTUIStatusLine(t *testing.T) {
	app, screen := newTestApp(t)
	app.engine.AddContent("a b c", "")
	app.engine.Tick(16)

	line := app.statusLine()
	assert.Contains(t, line, motion.Wave)
	assert.Contains(t, line, "paused")
	assert.Contains(t, line, "pending 3")
	assert.Contains(t, line, "speed 1.00x")

	cells, w, h := screen.GetContents()
	var row strings.Builder
	for x := 0; x < w; x++ {
		if r := cells[(h-1)*w+x].Runes; len(r) > 0 {
			row.WriteRune(r[0])
		}
	}
	assert.Contains(t, row.String(), "pending 3")
}

func TestReadInputs(t *testing.T) {
	lines, err := readInputs([]string{"-"}, strings.NewReader("first line\n\nsecond\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"first line", "second"}, lines)

	_, err = readInputs([]string{"/does/not/exist"}, nil)
	assert.Error(t, err)
}
