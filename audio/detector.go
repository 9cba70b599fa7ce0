package audio

import (
	"errors"
	"fmt"

	"github.com/gen2brain/malgo"
	"go.uber.org/zap"
)

// ErrNoAudioBackend is returned when the host has no playback device
var ErrNoAudioBackend = errors.New("no audio output device")

// ProbeOutput reports whether the host has at least one playback device
// Used by the auto role to tell audio clients from headless processes
func ProbeOutput() (bool, error) {
	devices, err := PlaybackDevices()
	if err != nil {
		return false, err
	}
	if len(devices) == 0 {
		return false, ErrNoAudioBackend
	}
	return true, nil
}

// PlaybackDevices lists the names of the host playback devices
func PlaybackDevices() (names []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("device probe panicked: %v", r)
		}
	}()

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		debugLog("device context", zap.String("message", message))
	})
	if err != nil {
		return nil, fmt.Errorf("init device context: %w", err)
	}
	defer func() {
		_ = ctx.Uninit()
		ctx.Free()
	}()

	infos, err := ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("enumerate playback devices: %w", err)
	}

	names = make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name())
	}
	return names, nil
}
