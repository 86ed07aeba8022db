// Package localkv implements store.DataStore over the slot store, the
// remote snapshot cache, and the offline submission queue.
package localkv

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/devprompt93/clean-scan/internal/assignment"
	"github.com/devprompt93/clean-scan/internal/cities"
	"github.com/devprompt93/clean-scan/internal/kv"
	"github.com/devprompt93/clean-scan/internal/merge"
	"github.com/devprompt93/clean-scan/internal/models"
	"github.com/devprompt93/clean-scan/internal/notify"
	"github.com/devprompt93/clean-scan/internal/queue"
	"github.com/devprompt93/clean-scan/internal/snapshot"
	"github.com/devprompt93/clean-scan/internal/store"
)

const (
	collectionToilets   = "toilets"
	collectionCleanings = "cleanings"
	collectionUsers     = "users"
)

type Store struct {
	kv        kv.Store
	snapshots *snapshot.Cache
	queue     *queue.Submitter
	notifier  notify.Notifier
	now       func() time.Time
}

func New(kvStore kv.Store, snapshots *snapshot.Cache, submitter *queue.Submitter, notifier notify.Notifier) *Store {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Store{
		kv:        kvStore,
		snapshots: snapshots,
		queue:     submitter,
		notifier:  notifier,
		now:       time.Now,
	}
}

func (s *Store) localID() string {
	return fmt.Sprintf("local_%d", s.now().UnixMilli())
}

// Toilets returns the merged facility view: snapshot records shadowed by
// anything in the local override slot.
func (s *Store) Toilets(ctx context.Context, force bool) ([]models.Toilet, error) {
	var remote []models.Toilet
	if err := s.snapshots.Fetch(ctx, collectionToilets, force, &remote); err != nil {
		return nil, err
	}
	local := readSlot[models.Toilet](ctx, s.kv, kv.SlotLocalToilets)
	return merge.Toilets(remote, local), nil
}

func (s *Store) Toilet(ctx context.Context, id string) (models.Toilet, bool, error) {
	toilets, err := s.Toilets(ctx, false)
	if err != nil {
		return models.Toilet{}, false, err
	}
	for _, toilet := range toilets {
		if toilet.ID == id {
			return toilet, true, nil
		}
	}
	return models.Toilet{}, false, nil
}

// SaveToilet upserts a record into the local override slot. A record
// without an id is a new local facility; an edit of a snapshot record
// shadows it whole under the same id.
func (s *Store) SaveToilet(ctx context.Context, toilet models.Toilet) (models.Toilet, error) {
	if toilet.ID == "" {
		toilet.ID = s.localID()
		if toilet.Status == "" {
			toilet.Status = models.StatusPending
		}
	} else {
		_, found, err := s.Toilet(ctx, toilet.ID)
		if err != nil {
			return models.Toilet{}, err
		}
		if !found {
			return models.Toilet{}, store.ErrToiletNotFound
		}
	}

	local := readSlot[models.Toilet](ctx, s.kv, kv.SlotLocalToilets)
	local = upsert(local, toilet, func(t models.Toilet) string { return t.ID })
	if err := writeSlot(ctx, s.kv, kv.SlotLocalToilets, local); err != nil {
		return models.Toilet{}, err
	}
	s.notifier.Notify(kv.SlotLocalToilets)
	return toilet, nil
}

func (s *Store) ToiletsForProvider(ctx context.Context, providerID string) ([]models.Toilet, error) {
	toilets, err := s.Toilets(ctx, false)
	if err != nil {
		return nil, err
	}
	assignments, err := s.Assignments(ctx)
	if err != nil {
		return nil, err
	}
	assigned := make(map[string]bool)
	for _, toiletID := range assignments[providerID] {
		assigned[toiletID] = true
	}
	var out []models.Toilet
	for _, toilet := range toilets {
		if assigned[toilet.ID] {
			out = append(out, toilet)
		}
	}
	return out, nil
}

func (s *Store) Cleanings(ctx context.Context, force bool) ([]models.Cleaning, error) {
	var cleanings []models.Cleaning
	if err := s.snapshots.Fetch(ctx, collectionCleanings, force, &cleanings); err != nil {
		return nil, err
	}
	return cleanings, nil
}

// SubmitCleaning delegates to the offline queue and announces a queue
// change when the record was parked instead of delivered.
func (s *Store) SubmitCleaning(ctx context.Context, cleaning models.Cleaning) (queue.Result, error) {
	result, err := s.queue.Submit(ctx, cleaning)
	if err != nil {
		return queue.Result{}, err
	}
	if result.Queued {
		s.notifier.Notify(kv.SlotPendingCleanings)
	}
	return result, nil
}

func (s *Store) PendingCleanings(ctx context.Context) ([]models.Cleaning, error) {
	return s.queue.Pending(ctx), nil
}

// Users returns the merged user view, keyed by email when present.
func (s *Store) Users(ctx context.Context, force bool) ([]models.User, error) {
	var remote []models.User
	if err := s.snapshots.Fetch(ctx, collectionUsers, force, &remote); err != nil {
		return nil, err
	}
	local := readSlot[models.User](ctx, s.kv, kv.SlotLocalUsers)
	return merge.Users(remote, local), nil
}

// SaveUser upserts into the local override slot, maintaining the provider
// code: new providers get one, a city change retires the old number and
// mints a fresh one, and an unchanged city keeps the code as-is.
func (s *Store) SaveUser(ctx context.Context, user models.User) (models.User, error) {
	users, err := s.Users(ctx, false)
	if err != nil {
		return models.User{}, err
	}

	if user.ID == "" {
		user.ID = s.localID()
		user = cities.EnsureProviderCode(user, users)
	} else {
		previous, found := findUser(users, user.ID)
		if !found {
			return models.User{}, store.ErrUserNotFound
		}
		if user.Role != models.RoleProvider {
			user.ProviderCode = ""
			user.City = ""
		} else if previous.City != user.City {
			// City switches always mint a new number, even when the
			// prefixes happen to collide.
			user.ProviderCode = cities.NextProviderCode(user.City, users)
		} else {
			user = cities.EnsureProviderCode(user, users)
		}
	}

	local := readSlot[models.User](ctx, s.kv, kv.SlotLocalUsers)
	local = upsert(local, user, merge.UserKey)
	if err := writeSlot(ctx, s.kv, kv.SlotLocalUsers, local); err != nil {
		return models.User{}, err
	}
	s.notifier.Notify(kv.SlotLocalUsers)
	return user, nil
}

// DeleteUser removes the local override and the user's ledger entry. A
// user present in the remote snapshot reappears on the next merge; there
// are no tombstones.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	local := readSlot[models.User](ctx, s.kv, kv.SlotLocalUsers)
	filtered := local[:0:0]
	for _, u := range local {
		if u.ID != id {
			filtered = append(filtered, u)
		}
	}
	if err := writeSlot(ctx, s.kv, kv.SlotLocalUsers, filtered); err != nil {
		return err
	}

	assignments, err := s.Assignments(ctx)
	if err != nil {
		return err
	}
	if _, ok := assignments[id]; ok {
		delete(assignments, id)
		if err := writeSlot(ctx, s.kv, kv.SlotAssignments, assignments); err != nil {
			return err
		}
		s.notifier.Notify(kv.SlotAssignments)
	}
	s.notifier.Notify(kv.SlotLocalUsers)
	return nil
}

// Assignments returns the ledger. Without a saved ledger it is derived
// from the legacy assignedToilets lists on the merged provider records.
func (s *Store) Assignments(ctx context.Context) (models.Assignments, error) {
	raw, ok, err := s.kv.Get(ctx, kv.SlotAssignments)
	if err == nil && ok {
		if assignments, ok := decodeAssignments(raw); ok {
			return assignments, nil
		}
	}

	users, err := s.Users(ctx, false)
	if err != nil {
		return nil, err
	}
	assignments := models.Assignments{}
	for _, u := range users {
		if u.Role != models.RoleProvider {
			continue
		}
		assignments[u.ID] = append([]string(nil), u.AssignedToilets...)
	}
	return assignments, nil
}

// ToggleAssignment flips membership and persists the ledger. Toilet
// records are deliberately untouched until SaveAssignments reconciles
// them; the two views may diverge while edits are in progress.
func (s *Store) ToggleAssignment(ctx context.Context, providerID, toiletID string) (models.Assignments, error) {
	assignments, err := s.Assignments(ctx)
	if err != nil {
		return nil, err
	}
	assignments = assignment.Toggle(assignments, providerID, toiletID)
	if err := writeSlot(ctx, s.kv, kv.SlotAssignments, assignments); err != nil {
		return nil, err
	}
	s.notifier.Notify(kv.SlotAssignments)
	return assignments, nil
}

// SaveAssignments persists the full ledger and reconciles every toilet's
// provider field from it. A toilet claimed by two providers rejects the
// whole save. Consumers get two distinct change events: one for the
// toilet collection, one for the ledger.
func (s *Store) SaveAssignments(ctx context.Context, assignments models.Assignments) error {
	if dupes := assignment.Duplicates(assignments); len(dupes) > 0 {
		return fmt.Errorf("%w: %v", store.ErrDuplicateAssignment, dupes)
	}

	toilets, err := s.Toilets(ctx, false)
	if err != nil {
		return err
	}

	if err := writeSlot(ctx, s.kv, kv.SlotAssignments, assignments); err != nil {
		return err
	}
	reconciled := assignment.Reconcile(toilets, assignments)
	if err := writeSlot(ctx, s.kv, kv.SlotLocalToilets, reconciled); err != nil {
		return err
	}

	s.notifier.Notify(kv.SlotLocalToilets)
	s.notifier.Notify(kv.SlotAssignments)
	return nil
}

func (s *Store) Register(ctx context.Context, reg models.Registration) (models.Registration, error) {
	reg.ID = uuid.NewString()
	reg.CreatedAt = s.now().UTC().Format(time.RFC3339)

	pending := readSlot[models.Registration](ctx, s.kv, kv.SlotPendingRegistrations)
	pending = append(pending, reg)
	if err := writeSlot(ctx, s.kv, kv.SlotPendingRegistrations, pending); err != nil {
		return models.Registration{}, err
	}
	s.notifier.Notify(kv.SlotPendingRegistrations)
	return reg, nil
}

func (s *Store) PendingRegistrations(ctx context.Context) ([]models.Registration, error) {
	return readSlot[models.Registration](ctx, s.kv, kv.SlotPendingRegistrations), nil
}

// ApproveRegistration turns a pending request into a local provider record
// with a freshly ensured provider code, then removes the request.
func (s *Store) ApproveRegistration(ctx context.Context, id string) (models.User, error) {
	pending := readSlot[models.Registration](ctx, s.kv, kv.SlotPendingRegistrations)
	idx := -1
	for i, reg := range pending {
		if reg.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.User{}, store.ErrRegistrationNotFound
	}
	reg := pending[idx]

	users, err := s.Users(ctx, false)
	if err != nil {
		return models.User{}, err
	}
	user := models.User{
		ID:       s.localID(),
		Name:     reg.Name,
		Role:     models.RoleProvider,
		City:     reg.City,
		Email:    reg.Email,
		Password: reg.Password,
	}
	user = cities.EnsureProviderCode(user, users)

	local := readSlot[models.User](ctx, s.kv, kv.SlotLocalUsers)
	local = upsert(local, user, merge.UserKey)
	if err := writeSlot(ctx, s.kv, kv.SlotLocalUsers, local); err != nil {
		return models.User{}, err
	}
	if err := writeSlot(ctx, s.kv, kv.SlotPendingRegistrations, append(pending[:idx:idx], pending[idx+1:]...)); err != nil {
		return models.User{}, err
	}

	s.notifier.Notify(kv.SlotLocalUsers)
	s.notifier.Notify(kv.SlotPendingRegistrations)
	return user, nil
}

func (s *Store) RejectRegistration(ctx context.Context, id string) error {
	pending := readSlot[models.Registration](ctx, s.kv, kv.SlotPendingRegistrations)
	filtered := pending[:0:0]
	for _, reg := range pending {
		if reg.ID != id {
			filtered = append(filtered, reg)
		}
	}
	if len(filtered) == len(pending) {
		return store.ErrRegistrationNotFound
	}
	if err := writeSlot(ctx, s.kv, kv.SlotPendingRegistrations, filtered); err != nil {
		return err
	}
	s.notifier.Notify(kv.SlotPendingRegistrations)
	return nil
}

// Login matches credentials against the merged user list. Matching is
// plain text against the mock user records; there is no credential
// hardening in this system. The matched record becomes the session user.
func (s *Store) Login(ctx context.Context, email, password string) (models.User, error) {
	users, err := s.Users(ctx, false)
	if err != nil {
		return models.User{}, err
	}
	for _, u := range users {
		if u.Email == email && u.Password == password {
			if err := writeSlot(ctx, s.kv, kv.SlotCurrentUser, u); err != nil {
				return models.User{}, err
			}
			s.notifier.Notify(kv.SlotCurrentUser)
			return u, nil
		}
	}
	return models.User{}, store.ErrInvalidCredentials
}

// CurrentUser reads the session slot. A corrupt slot reads as logged out.
func (s *Store) CurrentUser(ctx context.Context) (models.User, bool, error) {
	raw, ok, err := s.kv.Get(ctx, kv.SlotCurrentUser)
	if err != nil {
		return models.User{}, false, err
	}
	if !ok {
		return models.User{}, false, nil
	}
	user, ok := decodeUser(raw)
	if !ok || user.ID == "" {
		return models.User{}, false, nil
	}
	return user, true, nil
}

func (s *Store) Logout(ctx context.Context) error {
	if err := s.kv.Delete(ctx, kv.SlotCurrentUser); err != nil {
		return err
	}
	s.notifier.Notify(kv.SlotCurrentUser)
	return nil
}

func findUser(users []models.User, id string) (models.User, bool) {
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}
