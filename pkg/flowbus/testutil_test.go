package flowbus_test

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/randalmurphal/flowbus/pkg/flowbus"
)

// quietLogger discards output so expected faults don't clutter test logs.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestBus(opts ...flowbus.Option) *flowbus.Bus {
	return flowbus.New(append([]flowbus.Option{flowbus.WithLogger(quietLogger())}, opts...)...)
}

// recorder collects deliveries in order.
type recorder struct {
	mu         sync.Mutex
	deliveries []flowbus.Delivery
}

func (r *recorder) listener() flowbus.Listener {
	return func(_ context.Context, d flowbus.Delivery) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.deliveries = append(r.deliveries, d)
		return nil
	}
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.deliveries)
}

func (r *recorder) last() flowbus.Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deliveries[len(r.deliveries)-1]
}

// tracking returns a listener that appends name to order.
func tracking(name string, order *[]string) flowbus.Listener {
	return func(context.Context, flowbus.Delivery) error {
		*order = append(*order, name)
		return nil
	}
}
