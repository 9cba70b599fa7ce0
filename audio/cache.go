package audio

import (
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// clipCache stores decoded fallback clips resampled to the speaker rate
// Missing clips are cached as nil so the filesystem is probed once per event
type clipCache struct {
	mu    sync.RWMutex
	src   fs.FS
	store map[string]*beep.Buffer
}

func newClipCache(src fs.FS) *clipCache {
	return &clipCache{
		src:   src,
		store: make(map[string]*beep.Buffer),
	}
}

// clipPath maps an event path to its clip file: event:/ui/click -> ui/click.wav
func clipPath(event string) string {
	name := strings.TrimPrefix(event, eventPrefix)
	name = strings.TrimPrefix(name, "/")
	if path.Ext(name) == "" {
		name += ".wav"
	}
	return name
}

// get returns the cached clip for event or decodes it on demand
func (c *clipCache) get(event string) *beep.Buffer {
	key := clipPath(event)

	c.mu.RLock()
	if buf, ok := c.store[key]; ok {
		c.mu.RUnlock()
		return buf
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if buf, ok := c.store[key]; ok {
		return buf
	}

	buf, err := c.decode(key)
	if err != nil {
		debugLog("fallback clip unavailable: " + err.Error())
	}
	c.store[key] = buf
	return buf
}

func (c *clipCache) decode(name string) (*beep.Buffer, error) {
	if c.src == nil {
		return nil, fmt.Errorf("no clip source for %s", name)
	}
	f, err := c.src.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	streamer, format, err := wav.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	defer streamer.Close()

	buf := beep.NewBuffer(beep.Format{SampleRate: sampleRate, NumChannels: 2, Precision: 2})
	if format.SampleRate != sampleRate {
		buf.Append(beep.Resample(4, format.SampleRate, sampleRate, streamer))
	} else {
		buf.Append(streamer)
	}
	return buf, nil
}

// len returns the number of cached entries, including misses
func (c *clipCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}
