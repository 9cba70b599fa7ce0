package audio

import (
	"sync/atomic"

	"github.com/lixenwraith/fmodapi/status"
)

// metrics caches registry pointers so hot paths write atomics directly
type metrics struct {
	state           *status.AtomicString
	ready           *atomic.Bool
	routing         *atomic.Bool
	initAttempts    *atomic.Int64
	initFailures    *atomic.Int64
	lastError       *status.AtomicString
	active          *atomic.Int64
	started         *atomic.Int64
	reaped          *atomic.Int64
	rejected        *atomic.Int64
	banksRegistered *atomic.Int64
	banksLoaded     *atomic.Int64
	bankFailures    *atomic.Int64
	listenerPushes  *atomic.Int64
	listenerSpeed   *status.AtomicFloat
	libraryTier     *status.AtomicString
}

func newMetrics(reg *status.Registry) *metrics {
	if reg == nil {
		reg = status.NewRegistry()
	}
	return &metrics{
		state:           reg.Strings.Get(status.KeyEngineState),
		ready:           reg.Bools.Get(status.KeyEngineReady),
		routing:         reg.Bools.Get(status.KeyRoutingEnabled),
		initAttempts:    reg.Ints.Get(status.KeyInitAttempts),
		initFailures:    reg.Ints.Get(status.KeyInitFailures),
		lastError:       reg.Strings.Get(status.KeyLastError),
		active:          reg.Ints.Get(status.KeyInstancesActive),
		started:         reg.Ints.Get(status.KeyInstancesStarted),
		reaped:          reg.Ints.Get(status.KeyInstancesReaped),
		rejected:        reg.Ints.Get(status.KeyPlayRejected),
		banksRegistered: reg.Ints.Get(status.KeyBanksRegistered),
		banksLoaded:     reg.Ints.Get(status.KeyBanksLoaded),
		bankFailures:    reg.Ints.Get(status.KeyBankFailures),
		listenerPushes:  reg.Ints.Get(status.KeyListenerPushes),
		listenerSpeed:   reg.Floats.Get(status.KeyListenerSpeed),
		libraryTier:     reg.Strings.Get(status.KeyLibraryTier),
	}
}
