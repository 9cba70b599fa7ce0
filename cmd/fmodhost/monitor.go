package main

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lixenwraith/fmodapi/audio"
	"github.com/lixenwraith/fmodapi/vmath"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	activeScreen   tcell.Screen
	activeScreenMu sync.Mutex
)

// restoreTerminal finalizes the monitor screen if one is active
func restoreTerminal() {
	activeScreenMu.Lock()
	defer activeScreenMu.Unlock()
	if activeScreen != nil {
		activeScreen.Fini()
		activeScreen = nil
	}
}

// MonitorOptions holds flags for the monitor command
type MonitorOptions struct {
	Banks  []string
	Event  string
	Radius float64
}

// newMonitorCommand creates the monitor command
func newMonitorCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MonitorOptions{}

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Live status screen driving the engine tick",
		Long: `Live status screen. The listener circles the origin every tick.

Keys: e toggle routing, r reinitialize, s stop all, p play test event,
space pause/resume, q or Esc quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()
			a.registerBanks(opts.Banks)

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("create screen: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("init screen: %w", err)
			}
			activeScreenMu.Lock()
			activeScreen = screen
			activeScreenMu.Unlock()
			defer restoreTerminal()

			return newMonitor(a, screen, opts).run()
		},
	}

	cmd.Flags().StringSliceVar(&opts.Banks, "bank", nil, "bank file to register (repeatable)")
	cmd.Flags().StringVar(&opts.Event, "event", "event:/test", "event played by the p key")
	cmd.Flags().Float64Var(&opts.Radius, "radius", 5, "listener orbit radius")
	return cmd
}

// monitor owns the screen loop; every engine call happens on its goroutine
type monitor struct {
	app    *app
	screen tcell.Screen
	opts   *MonitorOptions

	angle   float64
	paused  bool
	message string
}

func newMonitor(a *app, screen tcell.Screen, opts *MonitorOptions) *monitor {
	return &monitor{app: a, screen: screen, opts: opts}
}

func (m *monitor) run() error {
	e := m.app.engine()

	// Status changes wake the loop for an immediate redraw
	sub := e.Notifier().SubscribeFunc(func() {
		_ = m.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer e.Notifier().Unsubscribe(sub)

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := m.screen.PollEvent()
			if ev == nil {
				close(eventChan)
				return
			}
			eventChan <- ev
		}
	}()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	m.draw()
	for {
		select {
		case ev, ok := <-eventChan:
			if !ok {
				return nil
			}
			if !m.handle(ev) {
				return nil
			}
			m.draw()
		case <-ticker.C:
			m.tick()
			m.draw()
		}
	}
}

// tick advances the engine and moves the listener along its orbit
func (m *monitor) tick() {
	e := m.app.engine()
	if err := e.Update(); err != nil {
		audio.Logger().Debug("tick failed", zap.Error(err))
	}

	m.angle = math.Mod(m.angle+2, 360)
	rad := m.angle * math.Pi / 180
	r := m.opts.Radius
	e.UpdateListener(audio.Pose{
		Position: vmath.Vec3F{X: r * math.Cos(rad), Z: r * math.Sin(rad)},
		Velocity: vmath.Vec3F{X: -r * math.Sin(rad), Z: r * math.Cos(rad)},
		Yaw:      m.angle,
	})
}

// handle processes one screen event; false quits
func (m *monitor) handle(ev tcell.Event) bool {
	e := m.app.engine()

	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch ev.Rune() {
		case 'q':
			return false
		case 'e':
			if err := e.SetEnabled(!e.RoutingEnabled()); err != nil {
				m.message = err.Error()
			} else {
				m.message = fmt.Sprintf("routing %t", e.RoutingEnabled())
			}
		case 'r':
			if err := e.Reinit(); err != nil {
				m.message = err.Error()
			} else {
				m.message = "reinitialized"
			}
		case 's':
			m.message = fmt.Sprintf("stopped %d", e.StopAll())
		case ' ':
			if m.paused {
				m.message = fmt.Sprintf("resumed %d", e.ResumeAll())
			} else {
				m.message = fmt.Sprintf("paused %d", e.PauseAll())
			}
			m.paused = !m.paused
		case 'p':
			id, err := e.Play(audio.PlayRequest{Event: m.opts.Event, Position: &vmath.Vec3F{}})
			if err != nil {
				m.message = err.Error()
			} else {
				m.message = "started " + id
			}
		}
	case *tcell.EventResize:
		m.screen.Sync()
	}
	return true
}

func (m *monitor) draw() {
	e := m.app.engine()
	st := e.Status()
	m.screen.Clear()

	title := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	label := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	value := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	stateStyle := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	if st.State != audio.StateReady {
		stateStyle = tcell.StyleDefault.Foreground(tcell.ColorRed)
	}

	y := 0
	m.text(0, y, title, "=== FMOD API Status ===")
	y += 2
	rows := []struct {
		name  string
		value string
		style tcell.Style
	}{
		{"Status", st.Text, stateStyle},
		{"State", st.State.String(), stateStyle},
		{"Audio System", st.Backend, value},
		{"Error Code", describeCode(st.ErrorCode), value},
		{"Active Instances", fmt.Sprintf("%d/%d", e.ActiveInstances(), e.MaxInstances()), value},
		{"Routing", fmt.Sprintf("%t", e.RoutingEnabled()), value},
		{"Banks", fmt.Sprintf("%d/%d loaded", e.Banks().Loaded(), e.Banks().Len()), value},
	}
	for _, row := range rows {
		m.text(0, y, label, row.name+":")
		m.text(20, y, row.style, row.value)
		y++
	}

	y++
	for _, line := range m.app.status.Registry().Lines() {
		m.text(0, y, value, line)
		y++
	}

	y++
	m.text(0, y, label, "e routing  r reinit  s stop all  p play  space pause  q quit")
	if m.message != "" {
		m.text(0, y+1, value, m.message)
	}
	m.screen.Show()
}

func (m *monitor) text(x, y int, style tcell.Style, s string) {
	for i, r := range []rune(s) {
		m.screen.SetContent(x+i, y, r, nil, style)
	}
}
