// Package notify is the in-process slot-change bus. Writes to the slot
// store do not announce themselves, so every workflow that mutates a slot
// publishes here and interested readers re-run their merge or reload logic.
package notify

import "sync"

// Notifier is the narrow capability mutating components depend on.
type Notifier interface {
	Notify(slot string)
}

// Bus fans a slot-change event out to the callbacks subscribed to that
// slot. Callbacks run synchronously on the notifying goroutine and must
// not block.
type Bus struct {
	mu   sync.RWMutex
	subs map[string][]func(slot string)
	all  []func(slot string)
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string][]func(string))}
}

// OnChange registers a callback for one slot.
func (b *Bus) OnChange(slot string, fn func(slot string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[slot] = append(b.subs[slot], fn)
}

// OnAnyChange registers a callback for every slot, used to bridge events
// to attached realtime clients.
func (b *Bus) OnAnyChange(fn func(slot string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, fn)
}

func (b *Bus) Notify(slot string) {
	b.mu.RLock()
	callbacks := make([]func(string), 0, len(b.subs[slot])+len(b.all))
	callbacks = append(callbacks, b.subs[slot]...)
	callbacks = append(callbacks, b.all...)
	b.mu.RUnlock()

	for _, fn := range callbacks {
		fn(slot)
	}
}

// Discard ignores every notification; used where a caller does not care.
type Discard struct{}

func (Discard) Notify(string) {}
