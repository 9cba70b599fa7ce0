package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lixenwraith/fmodapi/audio"
	"github.com/lixenwraith/fmodapi/vmath"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// PlayOptions holds flags for the play command
type PlayOptions struct {
	Position string
	Volume   float32
	Pitch    float32
	Banks    []string
	Clips    string
	Timeout  time.Duration
}

// newPlayCommand creates the play command
func newPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{}

	cmd := &cobra.Command{
		Use:   "play <event>",
		Short: "Play an event and tick the engine until it finishes",
		Long: `Play an event through the engine. When the engine is unavailable the
event is played through the fallback speaker: a WAV clip named after the
event path from --clips, or a short tone cue.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, rootOpts, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Position, "pos", "", "emitter position x,y,z (2D when empty)")
	cmd.Flags().Float32Var(&opts.Volume, "volume", 1, "instance volume")
	cmd.Flags().Float32Var(&opts.Pitch, "pitch", 1, "instance pitch")
	cmd.Flags().StringSliceVar(&opts.Banks, "bank", nil, "bank file to register (repeatable)")
	cmd.Flags().StringVar(&opts.Clips, "clips", "", "directory of fallback WAV clips")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 10*time.Second, "stop the instance after this long")
	return cmd
}

func runPlay(cmd *cobra.Command, rootOpts *RootOptions, opts *PlayOptions, event string) error {
	req := audio.PlayRequest{Event: event, Volume: &opts.Volume, Pitch: &opts.Pitch}
	if opts.Position != "" {
		pos, err := parseVec(opts.Position)
		if err != nil {
			return err
		}
		req.Position = &pos
	}

	a, err := newApp(rootOpts)
	if err != nil {
		return err
	}
	defer a.Close()
	a.registerBanks(opts.Banks)

	e := a.engine()
	var fallback *audio.SoundManager
	if !e.IsAvailable() {
		var clips = os.DirFS(".")
		if opts.Clips != "" {
			clips = os.DirFS(opts.Clips)
		}
		fallback = audio.NewSoundManager(clips)
		if err := fallback.Initialize(); err != nil {
			audio.Logger().Warn("fallback speaker unavailable", zap.Error(err))
		}
		defer fallback.Cleanup()
	}

	id, route, err := audio.NewRouter(e, fallback).Play(req)
	if err != nil {
		return fmt.Errorf("play %s: %w", event, err)
	}

	out := cmd.OutOrStdout()
	switch route {
	case audio.RouteEngine:
		fmt.Fprintf(out, "Playing %s via %s (id %s)\n", audio.EventPath(event), route, id)
		finished := waitInstance(e, id, opts.Timeout)
		if !finished {
			e.Pool().Stop(id, true)
			fmt.Fprintln(out, "Stopped after timeout")
		}
	case audio.RouteFallback:
		fmt.Fprintf(out, "Playing %s via %s\n", audio.EventPath(event), route)
		waitFallback(fallback, opts.Timeout)
	}
	return nil
}

// waitInstance ticks the engine until id is reclaimed or timeout elapses
func waitInstance(e *audio.Engine, id string, timeout time.Duration) bool {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	deadline := time.After(timeout)

	for {
		select {
		case <-ticker.C:
			if err := e.Update(); err != nil {
				audio.Logger().Debug("tick failed", zap.Error(err))
			}
			if !e.Pool().Has(id) {
				return true
			}
		case <-deadline:
			return false
		}
	}
}

// waitFallback waits until the fallback speaker drained or timeout elapses
func waitFallback(sm *audio.SoundManager, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for sm.Active() > 0 && time.Now().Before(deadline) {
		time.Sleep(tickInterval)
	}
}

// parseVec parses "x,y,z"
func parseVec(s string) (vmath.Vec3F, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return vmath.Vec3F{}, fmt.Errorf("invalid position %q: want x,y,z", s)
	}
	var v [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return vmath.Vec3F{}, fmt.Errorf("invalid position %q: %w", s, err)
		}
		v[i] = f
	}
	return vmath.Vec3F{X: v[0], Y: v[1], Z: v[2]}, nil
}
