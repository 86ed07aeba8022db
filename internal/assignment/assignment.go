// Package assignment implements the provider→facility ledger rules. The
// ledger is owned independently of Toilet.Provider; Reconcile brings the
// two back in line when the ledger is saved.
package assignment

import "github.com/devprompt93/clean-scan/internal/models"

// Toggle flips toiletID's membership in providerID's assigned set. The set
// semantics keep the list free of duplicates; order of the remaining ids is
// preserved. The input map is not mutated.
func Toggle(assignments models.Assignments, providerID, toiletID string) models.Assignments {
	next := make(models.Assignments, len(assignments)+1)
	for id, toilets := range assignments {
		next[id] = append([]string(nil), toilets...)
	}

	current := next[providerID]
	for i, id := range current {
		if id == toiletID {
			next[providerID] = append(current[:i:i], current[i+1:]...)
			return next
		}
	}
	next[providerID] = append(current, toiletID)
	return next
}

// Duplicates returns the toilet ids claimed by more than one provider.
// A non-empty result means the ledger cannot be saved as-is.
func Duplicates(assignments models.Assignments) []string {
	claims := make(map[string]int)
	for _, toilets := range assignments {
		for _, toiletID := range toilets {
			claims[toiletID]++
		}
	}
	var dupes []string
	for toiletID, count := range claims {
		if count > 1 {
			dupes = append(dupes, toiletID)
		}
	}
	return dupes
}

// Reconcile rewrites each toilet's Provider field from the ledger: the
// provider whose set contains the toilet's id wins, no entry clears the
// field. Callers must reject duplicate claims first (see Duplicates) so the
// winner is never arbitrary.
func Reconcile(toilets []models.Toilet, assignments models.Assignments) []models.Toilet {
	owner := make(map[string]string)
	for providerID, assigned := range assignments {
		for _, toiletID := range assigned {
			owner[toiletID] = providerID
		}
	}

	out := make([]models.Toilet, len(toilets))
	for i, toilet := range toilets {
		toilet.Provider = owner[toilet.ID]
		out[i] = toilet
	}
	return out
}
