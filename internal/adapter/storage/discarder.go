package storage

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type deleter interface {
	Delete(ctx context.Context, handle string) error
}

// Discarder removes no-longer-referenced receipts in the background.
// Failures are logged and never reach the caller.
type Discarder struct {
	store   deleter
	log     *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDiscarder creates a Discarder over store.
func NewDiscarder(store deleter, logger *slog.Logger) *Discarder {
	return &Discarder{
		store:   store,
		log:     logger.With("component", "receipt_discarder"),
		timeout: 30 * time.Second,
	}
}

// Discard schedules removal of handle. Empty handles are ignored.
func (d *Discarder) Discard(handle string) {
	if handle == "" {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.store.Delete(ctx, handle); err != nil {
			d.log.Warn("discard receipt failed",
				slog.String("handle", handle),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// Wait blocks until all scheduled removals finished or ctx is done.
func (d *Discarder) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
