// Package merge combines a remote snapshot collection with locally edited
// records into one logical view.
package merge

import "github.com/devprompt93/clean-scan/internal/models"

// Records merges local entries over remote ones keyed by keyFn. Precedence
// is whole-record local-wins: a local entry with the same key replaces the
// remote entry entirely, never field by field. Remote ordering is kept for
// keys the local set does not touch; local-only keys append in local order.
func Records[E any](remote, local []E, keyFn func(E) string) []E {
	index := make(map[string]int, len(remote)+len(local))
	out := make([]E, 0, len(remote)+len(local))

	for _, entry := range remote {
		key := keyFn(entry)
		if pos, ok := index[key]; ok {
			out[pos] = entry
			continue
		}
		index[key] = len(out)
		out = append(out, entry)
	}
	for _, entry := range local {
		key := keyFn(entry)
		if pos, ok := index[key]; ok {
			out[pos] = entry
			continue
		}
		index[key] = len(out)
		out = append(out, entry)
	}
	return out
}

// Toilets merges facility records keyed by id.
func Toilets(remote, local []models.Toilet) []models.Toilet {
	return Records(remote, local, func(t models.Toilet) string { return t.ID })
}

// Users merges user records keyed by email when present, id otherwise. The
// email key lets a local edit shadow a snapshot user whose local copy was
// stored before ids were assigned.
func Users(remote, local []models.User) []models.User {
	return Records(remote, local, UserKey)
}

// UserKey is the merge identity for a user record.
func UserKey(u models.User) string {
	if u.Email != "" {
		return u.Email
	}
	return u.ID
}
