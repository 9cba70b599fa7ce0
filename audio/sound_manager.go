package audio

import (
	"io/fs"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(48000)

	cueDuration = 150 * time.Millisecond
	cueFreq     = 440.0
)

// SoundManager plays fallback audio through the host speaker while the engine is unavailable
// Clips are WAV files named after the event path; unknown events play a short tone cue.
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	clips       *clipCache
	initialized bool
	played      int
}

// NewSoundManager creates a fallback player reading clips from src (may be nil)
func NewSoundManager(src fs.FS) *SoundManager {
	return &SoundManager{
		mixer: &beep.Mixer{},
		clips: newClipCache(src),
	}
}

// Initialize opens the speaker
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	// Initialize speaker with sample rate and buffer size
	err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100))
	if err != nil {
		return err
	}

	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Cleanup stops all sounds
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()

	// Note: beep doesn't provide a Close() method for speaker,
	// but clearing all streamers ensures no audio artifacts
	sm.initialized = false
}

// Play plays the clip for event, or a tone cue when no clip exists
// Returns false when the speaker is not initialized
func (sm *SoundManager) Play(event string, volume float32) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return false
	}

	var streamer beep.Streamer
	if buf := sm.clips.get(event); buf != nil {
		streamer = buf.Streamer(0, buf.Len())
	} else {
		streamer = beep.Take(sampleRate.N(cueDuration), NewToneGenerator(sampleRate, cueFreq))
	}

	speaker.Lock()
	sm.mixer.Add(withVolume(streamer, volume))
	speaker.Unlock()
	sm.played++
	return true
}

// Active returns the number of streamers still playing
func (sm *SoundManager) Active() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if !sm.initialized {
		return 0
	}
	speaker.Lock()
	defer speaker.Unlock()
	return sm.mixer.Len()
}

// Played returns the number of accepted Play calls
func (sm *SoundManager) Played() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.played
}

// withVolume scales s by a linear gain; zero or below is silent
func withVolume(s beep.Streamer, volume float32) beep.Streamer {
	if volume == 1 {
		return s
	}
	if volume <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{
		Streamer: s,
		Base:     2,
		Volume:   math.Log2(float64(volume)),
	}
}

// ToneGenerator generates a soft sine cue with harmonics
type ToneGenerator struct {
	sr   beep.SampleRate
	freq float64
	pos  int
}

// NewToneGenerator creates a tone cue generator
func NewToneGenerator(sr beep.SampleRate, freq float64) *ToneGenerator {
	return &ToneGenerator{
		sr:   sr,
		freq: freq,
	}
}

func (g *ToneGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		sample := 0.3 * math.Sin(2*math.Pi*g.freq*t)
		sample += 0.1 * math.Sin(2*math.Pi*g.freq*2*t)

		// Envelope to fade in/out
		envelope := math.Min(t/0.01, 1.0) * math.Exp(-t*6)
		sample *= envelope * 0.5

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *ToneGenerator) Err() error {
	return nil
}
