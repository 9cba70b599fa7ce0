package main

import (
	"math"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/lixenwraith/fmodapi/audio/audiotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMonitor(t *testing.T, native *audiotest.Native) (*monitor, tcell.Screen) {
	t.Helper()
	clearEnv(t)
	opts := &RootOptions{ConfigPath: writeConfig(t, clientConfig), backend: audiotest.NewBackend(native)}

	a, err := newApp(opts)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(100, 40)
	t.Cleanup(screen.Fini)

	return newMonitor(a, screen, &MonitorOptions{Event: "event:/test", Radius: 5}), screen
}

// row reads one screen line as text
func row(screen tcell.Screen, y int) string {
	w, _ := screen.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := screen.GetContent(x, y)
		if r == 0 {
			r = ' '
		}
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " ")
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestMonitor_TickMovesListener(t *testing.T) {
	native := audiotest.New("event:/test")
	m, _ := newTestMonitor(t, native)

	m.tick()
	m.tick()
	assert.Equal(t, 2, native.ListenerPushes)
	assert.Equal(t, 2, native.Updates)
	require.NotNil(t, native.Listener)
	pos := native.Listener.Position
	assert.InDelta(t, 5, math.Hypot(pos.X, pos.Z), 1e-9, "listener stays on the orbit")
}

func TestMonitor_Keys(t *testing.T) {
	native := audiotest.New("event:/test")
	m, _ := newTestMonitor(t, native)
	e := m.app.engine()

	assert.True(t, m.handle(key('p')))
	assert.Equal(t, 1, e.ActiveInstances())
	assert.Contains(t, m.message, "started event:/test_")

	assert.True(t, m.handle(key(' ')))
	assert.Equal(t, "paused 1", m.message)
	assert.True(t, m.handle(key(' ')))
	assert.Equal(t, "resumed 1", m.message)

	assert.True(t, m.handle(key('s')))
	assert.Equal(t, "stopped 1", m.message)
	assert.Equal(t, 0, e.ActiveInstances())

	assert.True(t, m.handle(key('e')))
	assert.False(t, e.RoutingEnabled())
	assert.True(t, m.handle(key('e')))
	assert.True(t, e.RoutingEnabled())

	assert.True(t, m.handle(key('r')))
	assert.Equal(t, "reinitialized", m.message)
	assert.Equal(t, 2, native.Calls("CreateSystem"))

	assert.False(t, m.handle(key('q')))
	assert.False(t, m.handle(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
}

func TestMonitor_Draw(t *testing.T) {
	m, screen := newTestMonitor(t, audiotest.New("event:/test"))

	m.draw()
	assert.Equal(t, "=== FMOD API Status ===", row(screen, 0))
	assert.Contains(t, row(screen, 2), "Successfully initialized")
	assert.Contains(t, row(screen, 4), "FMOD")

	var all []string
	_, h := screen.Size()
	for y := 0; y < h; y++ {
		all = append(all, row(screen, y))
	}
	assert.Contains(t, strings.Join(all, "\n"), "engine.ready=true")
}
