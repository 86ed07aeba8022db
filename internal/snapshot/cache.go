// Package snapshot fetches the read-only reference collections (toilets,
// cleanings, users) and caches them in the slot store behind a TTL.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/devprompt93/clean-scan/internal/kv"
)

const DefaultTTL = 10 * time.Minute

// FetchError reports a failed remote fetch. Cache corruption never produces
// one; only the network round trip does.
type FetchError struct {
	Collection string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.Collection, e.Err)
	}
	return fmt.Sprintf("fetch %s: status %d", e.Collection, e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }

// envelope wraps a cached collection with its fetch time (unix millis).
type envelope struct {
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

type Cache struct {
	kv            kv.Store
	client        *http.Client
	baseURL       string
	ttl           time.Duration
	staleFallback bool
	now           func() time.Time
}

type Options struct {
	TTL           time.Duration
	StaleFallback bool
	Client        *http.Client
}

func New(store kv.Store, baseURL string, opts Options) *Cache {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Cache{
		kv:            store,
		client:        client,
		baseURL:       baseURL,
		ttl:           ttl,
		staleFallback: opts.StaleFallback,
		now:           time.Now,
	}
}

// Fetch decodes the named collection into v. A cached copy inside the TTL
// is returned without a network call unless force is set. A fresh fetch is
// persisted back to the slot store before returning. Malformed cache
// contents count as a miss, never as an error.
func (c *Cache) Fetch(ctx context.Context, collection string, force bool, v any) error {
	slot := kv.SnapshotSlot(collection)

	var cached *envelope
	if raw, ok, err := c.kv.Get(ctx, slot); err == nil && ok {
		var env envelope
		if json.Unmarshal([]byte(raw), &env) == nil && len(env.Data) > 0 {
			cached = &env
		}
	}

	if !force && cached != nil {
		age := c.now().UnixMilli() - cached.Timestamp
		if age < c.ttl.Milliseconds() {
			return json.Unmarshal(cached.Data, v)
		}
	}

	data, err := c.fetchRemote(ctx, collection)
	if err != nil {
		if c.staleFallback && cached != nil && json.Unmarshal(cached.Data, v) == nil {
			log.Printf("snapshot stale fallback collection=%s cached_at=%d error=%v", collection, cached.Timestamp, err)
			return nil
		}
		return err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return &FetchError{Collection: collection, Err: err}
	}

	env := envelope{Timestamp: c.now().UnixMilli(), Data: data}
	encoded, _ := json.Marshal(env)
	if err := c.kv.Set(ctx, slot, string(encoded)); err != nil {
		log.Printf("snapshot cache write error collection=%s error=%v", collection, err)
	}
	return nil
}

func (c *Cache) fetchRemote(ctx context.Context, collection string) ([]byte, error) {
	url := c.baseURL + "/" + collection + ".json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Collection: collection, Err: err}
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &FetchError{Collection: collection, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Collection: collection, StatusCode: resp.StatusCode}
	}

	var data json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, &FetchError{Collection: collection, Err: err}
	}
	return data, nil
}
