package flowbus

import "sync/atomic"

var defaultBus atomic.Pointer[Bus]

// SetDefault installs b as the process-wide convenience instance returned by
// Default. Applications call it once at startup; libraries should accept a
// *Bus instead of reaching for Default.
func SetDefault(b *Bus) {
	defaultBus.Store(b)
}

// Default returns the instance installed by SetDefault, creating one with
// default options on first use if none was installed.
func Default() *Bus {
	if b := defaultBus.Load(); b != nil {
		return b
	}
	defaultBus.CompareAndSwap(nil, New())
	return defaultBus.Load()
}
