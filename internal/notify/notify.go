// Package notify delivers best-effort seller notifications after a
// message has been stored. Delivery runs detached from the request and
// its result is only logged.
package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"marketplace-service/internal/logging"
)

// Notification is the payload for one buyer inquiry.
type Notification struct {
	ListingID   string `json:"listing_id"`
	SellerEmail string `json:"seller_email"`
	BuyerEmail  string `json:"buyer_email"`
	Message     string `json:"message"`
}

// Notifier performs the delivery.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification) error

func (f NotifierFunc) Notify(ctx context.Context, n Notification) error { return f(ctx, n) }

// Dispatcher runs each notification in its own goroutine. Dispatch
// never blocks and never reports failure to the caller.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	logger   *logging.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(n Notifier, timeout time.Duration, logger *logging.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{notifier: n, timeout: timeout, logger: logger}
}

// Dispatch starts delivery in the background. After Close it only logs.
func (d *Dispatcher) Dispatch(n Notification) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Warnw("notification dropped, dispatcher closed", "listing_id", n.ListingID)
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		log := d.logger.WithFields(map[string]interface{}{
			"listing_id":   n.ListingID,
			"seller_email": n.SellerEmail,
		})
		if err := d.notifier.Notify(ctx, n); err != nil {
			log.WithError(err).Error("failed to deliver notification")
			return
		}
		log.Debug("notification delivered")
	}()
}

// Close stops accepting work and waits for in-flight deliveries or ctx.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Join(errors.New("notifications still in flight"), ctx.Err())
	}
}

// LogNotifier only records the notification. It is the default driver.
type LogNotifier struct {
	Logger *logging.Logger
}

func (l LogNotifier) Notify(_ context.Context, n Notification) error {
	l.Logger.Infow("new message for seller",
		"listing_id", n.ListingID,
		"seller_email", n.SellerEmail,
		"buyer_email", n.BuyerEmail)
	return nil
}
