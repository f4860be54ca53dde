// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/tracker/internal/models"
)

var (
	// ErrNotFound is returned when a row does not exist or belongs to
	// another user. The two cases are indistinguishable on purpose.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a unique constraint would be violated.
	ErrConflict = errors.New("conflict")

	// ErrInvalidReference is returned when a row points at another row the
	// owner cannot see (for example an event's series).
	ErrInvalidReference = errors.New("invalid reference")
)

// ListFilter narrows list queries. Zero values mean "no bound".
type ListFilter struct {
	From *time.Time
	To   *time.Time
}

// Owned is the owner-scoped CRUD contract every record repository satisfies.
// Every method takes the owner's user ID; rows of other owners behave as if
// they did not exist.
type Owned[T any] interface {
	List(ctx context.Context, ownerID string, filter ListFilter) ([]*T, error)
	Get(ctx context.Context, ownerID, id string) (*T, error)

	// Create persists v under ownerID, assigning its ID and timestamps.
	Create(ctx context.Context, ownerID string, v *T) error

	// Update overwrites the mutable fields of the row identified by v's ID.
	Update(ctx context.Context, ownerID string, v *T) error

	Delete(ctx context.Context, ownerID, id string) error
}

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Store defines the full set of storage operations.
// This abstraction allows swapping storage backends without changing the
// service layer.
type Store interface {
	UserStore

	Events() Owned[models.Event]
	MedicalEvents() Owned[models.MedicalEvent]
	WorkEvents() Owned[models.WorkEvent]
	FinancialEvents() Owned[models.FinancialEvent]
	Transactions() Owned[models.Transaction]
	Series() Owned[models.EventSeries]

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
