package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lixenwraith/fmodapi/audio"
	"github.com/lixenwraith/fmodapi/fmod"
	"github.com/lixenwraith/fmodapi/service"
	"github.com/lixenwraith/fmodapi/status"
	"go.uber.org/zap"
)

// tickInterval is the host tick period driving Engine.Update
const tickInterval = 50 * time.Millisecond

// app is the running host: the service hub and the services it owns
type app struct {
	cfg    audio.Config
	hub    *service.Hub
	status *status.Service
	audio  *audio.AudioService
}

// newApp wires the status and audio services and starts them
func newApp(opts *RootOptions) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	backend := opts.backend
	if backend == nil {
		backend = fmod.NewBackend(nil)
	}

	hub := service.NewHub()
	st := status.NewService()
	au := audio.NewService(cfg, backend, opts.engineOpts...)
	for _, svc := range []service.Service{st, au} {
		if err := hub.Register(svc); err != nil {
			return nil, err
		}
	}

	if err := hub.InitAll(); err != nil {
		return nil, err
	}
	if err := hub.StartAll(); err != nil {
		return nil, err
	}

	return &app{cfg: cfg, hub: hub, status: st, audio: au}, nil
}

func (a *app) engine() *audio.Engine {
	return a.audio.Engine()
}

// registerBanks registers bank files from disk
func (a *app) registerBanks(files []string) {
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			audio.Logger().Warn("bad bank path", zap.String("path", f), zap.Error(err))
			continue
		}
		a.engine().RegisterBank(os.DirFS(filepath.Dir(abs)), filepath.Base(abs))
	}
}

func (a *app) Close() {
	a.hub.StopAll()
}

// describeCode renders an error code with its native name
func describeCode(code int) string {
	switch {
	case code == audio.CodeOK:
		return fmt.Sprintf("%d (%s)", code, audio.DescribeCode(code))
	case code > 0:
		return fmt.Sprintf("%d (%s)", code, fmod.Result(code).Name())
	default:
		return fmt.Sprintf("%d (%s)", code, audio.DescribeCode(code))
	}
}
