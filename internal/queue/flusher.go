package queue

import (
	"context"
	"log"
	"time"

	"github.com/devprompt93/clean-scan/internal/kv"
	"github.com/devprompt93/clean-scan/internal/notify"
)

// Flusher periodically retries the pending queue. Records leave the queue
// only on confirmed delivery, so the downstream endpoint must tolerate a
// duplicate when a crash lands between delivery and removal.
type Flusher struct {
	submitter *Submitter
	notifier  notify.Notifier
}

func NewFlusher(submitter *Submitter, notifier notify.Notifier) *Flusher {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Flusher{submitter: submitter, notifier: notifier}
}

// Run performs one flush pass.
func (f *Flusher) Run(ctx context.Context) error {
	delivered, remaining, err := f.submitter.Flush(ctx)
	if err != nil {
		return err
	}
	if delivered > 0 {
		log.Printf("queue flush delivered=%d remaining=%d", delivered, remaining)
		f.notifier.Notify(kv.SlotPendingCleanings)
	}
	return nil
}

// Start loops Run on the interval until the context is cancelled.
func Start(ctx context.Context, interval time.Duration, f *Flusher) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := f.Run(ctx); err != nil {
				log.Printf("queue flush error: %v", err)
			}
		}
	}
}
