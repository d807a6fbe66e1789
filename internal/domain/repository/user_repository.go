// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"ftpadmin/internal/domain/entity"
	"ftpadmin/internal/domain/service"
)

// ErrUserNotFound is a domain-specific error returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the standard operations for FTP account persistence.
// The application layer depends on this interface, not the concrete implementation.
type UserRepository interface {
	// FindByID retrieves a single user by row id.
	FindByID(ctx context.Context, id int64) (*entity.User, error)

	// FindByLogin retrieves a single user by login name.
	FindByLogin(ctx context.Context, login string) (*entity.User, error)

	// List retrieves all users ordered by row id ascending.
	List(ctx context.Context) ([]*entity.User, error)

	// ListByPrimaryGID retrieves the users whose main group is gid.
	ListByPrimaryGID(ctx context.Context, gid int64) ([]*entity.User, error)

	// Count returns the number of users; with onlyDisabled set, only
	// accounts flagged as disabled are counted.
	Count(ctx context.Context, onlyDisabled bool) (int64, error)

	// NextUID returns max(uid)+1, the uid the next account would get when
	// no default uid is configured.
	NextUID(ctx context.Context) (int64, error)

	// Create inserts the user row with the given credential and fills in
	// the generated row id on user.
	Create(ctx context.Context, user *entity.User, cred service.Credential) error

	// Update rewrites the mutable fields of the user row. A nil cred
	// leaves the stored password untouched.
	Update(ctx context.Context, user *entity.User, cred *service.Credential) error

	// ReassignPrimaryGID moves every user with main group oldGID to newGID.
	ReassignPrimaryGID(ctx context.Context, oldGID, newGID int64) error

	// Delete removes the user row. Membership entries in group rows are
	// not touched here; the service layer scrubs them.
	Delete(ctx context.Context, id int64) error
}
