package store

import (
	"context"

	"github.com/devprompt93/clean-scan/internal/models"
	"github.com/devprompt93/clean-scan/internal/queue"
)

// DataStore is the single surface the HTTP layer talks to. Reads return
// the merged view (remote snapshot shadowed by local overrides); writes go
// to the local override slots and publish change notifications.
type DataStore interface {
	Toilets(ctx context.Context, force bool) ([]models.Toilet, error)
	Toilet(ctx context.Context, id string) (models.Toilet, bool, error)
	SaveToilet(ctx context.Context, toilet models.Toilet) (models.Toilet, error)
	ToiletsForProvider(ctx context.Context, providerID string) ([]models.Toilet, error)

	Cleanings(ctx context.Context, force bool) ([]models.Cleaning, error)
	SubmitCleaning(ctx context.Context, cleaning models.Cleaning) (queue.Result, error)
	PendingCleanings(ctx context.Context) ([]models.Cleaning, error)

	Users(ctx context.Context, force bool) ([]models.User, error)
	SaveUser(ctx context.Context, user models.User) (models.User, error)
	DeleteUser(ctx context.Context, id string) error

	Assignments(ctx context.Context) (models.Assignments, error)
	ToggleAssignment(ctx context.Context, providerID, toiletID string) (models.Assignments, error)
	SaveAssignments(ctx context.Context, assignments models.Assignments) error

	Register(ctx context.Context, reg models.Registration) (models.Registration, error)
	PendingRegistrations(ctx context.Context) ([]models.Registration, error)
	ApproveRegistration(ctx context.Context, id string) (models.User, error)
	RejectRegistration(ctx context.Context, id string) error

	Login(ctx context.Context, email, password string) (models.User, error)
	CurrentUser(ctx context.Context) (models.User, bool, error)
	Logout(ctx context.Context) error
}
