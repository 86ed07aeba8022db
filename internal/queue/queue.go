// Package queue delivers cleaning submissions to the remote endpoint, with
// a durable offline queue when the network is down or slow. Delivery
// failure is never an error for the submitting caller; it becomes a retry
// obligation for the flusher.
package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/devprompt93/clean-scan/internal/kv"
	"github.com/devprompt93/clean-scan/internal/models"
)

const DefaultTimeout = 4 * time.Second

// Result reports what happened to one submission. Queued means the record
// was durably enqueued instead of delivered.
type Result struct {
	Delivered bool            `json:"delivered"`
	Queued    bool            `json:"queued"`
	Cleaning  models.Cleaning `json:"cleaning"`
}

type Submitter struct {
	kv       kv.Store
	client   *http.Client
	endpoint string
	now      func() time.Time
}

type Options struct {
	Timeout time.Duration
	Client  *http.Client
}

func NewSubmitter(store kv.Store, endpoint string, opts Options) *Submitter {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	// The timeout is the cancellation boundary: exceeding it aborts the
	// in-flight request and falls through to the offline path.
	client.Timeout = timeout
	return &Submitter{
		kv:       store,
		client:   client,
		endpoint: endpoint,
		now:      time.Now,
	}
}

// Submit attempts immediate delivery and enqueues on any failure. The
// cleaning gets a local_<millis> id when enqueued without one, and a
// submission timestamp when it lacks one. Only a slot-store write error is
// surfaced; delivery failure is absorbed into the queue.
func (s *Submitter) Submit(ctx context.Context, cleaning models.Cleaning) (Result, error) {
	if cleaning.Timestamp == "" {
		cleaning.Timestamp = s.now().UTC().Format(time.RFC3339)
	}
	if cleaning.Status == "" {
		cleaning.Status = models.CleaningStatusCompleted
	}

	if err := s.deliver(ctx, cleaning); err == nil {
		return Result{Delivered: true, Cleaning: cleaning}, nil
	}

	if cleaning.ID == "" {
		cleaning.ID = fmt.Sprintf("local_%d", s.now().UnixMilli())
	}
	pending := s.Pending(ctx)
	pending = append(pending, cleaning)
	if err := s.writePending(ctx, pending); err != nil {
		return Result{}, err
	}
	return Result{Queued: true, Cleaning: cleaning}, nil
}

// Pending returns the queued cleanings in FIFO order. Malformed slot
// contents degrade to an empty queue.
func (s *Submitter) Pending(ctx context.Context) []models.Cleaning {
	raw, ok, err := s.kv.Get(ctx, kv.SlotPendingCleanings)
	if err != nil || !ok {
		return nil
	}
	var pending []models.Cleaning
	if json.Unmarshal([]byte(raw), &pending) != nil {
		return nil
	}
	return pending
}

// Flush retries queued records in order and removes the delivered ones.
// It stops at the first failure so order is preserved and a dead endpoint
// is not hammered for the whole batch. Returns delivered and remaining
// counts.
func (s *Submitter) Flush(ctx context.Context) (int, int, error) {
	pending := s.Pending(ctx)
	if len(pending) == 0 {
		return 0, 0, nil
	}

	delivered := 0
	for _, cleaning := range pending {
		if err := s.deliver(ctx, cleaning); err != nil {
			break
		}
		delivered++
	}
	if delivered == 0 {
		return 0, len(pending), nil
	}

	remaining := pending[delivered:]
	if len(remaining) == 0 {
		if err := s.kv.Delete(ctx, kv.SlotPendingCleanings); err != nil {
			return delivered, 0, err
		}
		return delivered, 0, nil
	}
	if err := s.writePending(ctx, remaining); err != nil {
		return delivered, len(remaining), err
	}
	return delivered, len(remaining), nil
}

func (s *Submitter) writePending(ctx context.Context, pending []models.Cleaning) error {
	encoded, err := json.Marshal(pending)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, kv.SlotPendingCleanings, string(encoded))
}

func (s *Submitter) deliver(ctx context.Context, cleaning models.Cleaning) error {
	body, err := json.Marshal(cleaning)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("submit status %d", resp.StatusCode)
	}
	return nil
}
