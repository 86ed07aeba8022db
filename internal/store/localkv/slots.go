package localkv

import (
	"context"
	"encoding/json"
	"log"

	"github.com/devprompt93/clean-scan/internal/kv"
	"github.com/devprompt93/clean-scan/internal/models"
)

// readSlot decodes a JSON array slot. Missing or corrupt slots degrade to
// an empty list so a bad write never wedges the merged view.
func readSlot[E any](ctx context.Context, store kv.Store, slot string) []E {
	raw, ok, err := store.Get(ctx, slot)
	if err != nil {
		log.Printf("kv read slot=%s err=%v", slot, err)
		return nil
	}
	if !ok {
		return nil
	}
	var out []E
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		log.Printf("kv corrupt slot=%s err=%v", slot, err)
		return nil
	}
	return out
}

func writeSlot(ctx context.Context, store kv.Store, slot string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return store.Set(ctx, slot, string(data))
}

func upsert[E any](records []E, record E, keyFn func(E) string) []E {
	key := keyFn(record)
	for i, existing := range records {
		if keyFn(existing) == key {
			records[i] = record
			return records
		}
	}
	return append(records, record)
}

func decodeAssignments(raw string) (models.Assignments, bool) {
	var assignments models.Assignments
	if err := json.Unmarshal([]byte(raw), &assignments); err != nil {
		log.Printf("kv corrupt slot=%s err=%v", kv.SlotAssignments, err)
		return nil, false
	}
	if assignments == nil {
		assignments = models.Assignments{}
	}
	return assignments, true
}

func decodeUser(raw string) (models.User, bool) {
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return models.User{}, false
	}
	return user, true
}
