package notify

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/tenantauth/internal/logging"
)

// DefaultTimeout bounds a single background delivery.
const DefaultTimeout = 10 * time.Second

// Dispatcher delivers messages in the background. The caller's context
// contributes its values but not its cancellation, so a finished request
// does not abort the delivery it triggered.
type Dispatcher struct {
	notifier Notifier
	logger   logging.Logger
	timeout  time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(n Notifier, logger logging.Logger, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{notifier: n, logger: logger.With("module", "notify"), timeout: timeout}
}

// Send queues msg for delivery and returns immediately. Messages sent after
// Close are dropped.
func (d *Dispatcher) Send(ctx context.Context, msg Message) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Warn(ctx, "dispatcher closed, message dropped", "channel", string(msg.Channel), "to", msg.To)
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()

		if err := d.notifier.Deliver(ctx, msg); err != nil {
			d.logger.Error(ctx, "delivery failed", "channel", string(msg.Channel), "to", msg.To, "error", err)
			return
		}
		d.logger.Debug(ctx, "delivered", "channel", string(msg.Channel), "to", msg.To)
	}()
}

// Wait blocks until every accepted message has been handled.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close stops accepting messages and waits for in-flight deliveries.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.wg.Wait()
}
