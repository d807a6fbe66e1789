package repository

import (
	"context"
	"errors"

	"ftpadmin/internal/domain/entity"
)

// ErrGroupNotFound is a domain-specific error returned when a group is not found.
var ErrGroupNotFound = errors.New("group not found")

// GroupRepository defines the operations for FTP group persistence,
// including the members-column protocol.
type GroupRepository interface {
	// List retrieves all groups ordered by gid ascending.
	List(ctx context.Context) ([]*entity.Group, error)

	// FindByGID retrieves a single group by gid.
	FindByGID(ctx context.Context, gid int64) (*entity.Group, error)

	// Count returns the number of groups; with onlyEmpty set, only groups
	// with an empty members column are counted.
	Count(ctx context.Context, onlyEmpty bool) (int64, error)

	// NextGID returns max(gid)+1.
	NextGID(ctx context.Context) (int64, error)

	// Create inserts the group row.
	Create(ctx context.Context, group *entity.Group) error

	// UpdateGID renumbers the group row itself. Callers renumbering a
	// group must pair this with UserRepository.ReassignPrimaryGID inside
	// one transaction, or the two tables drift apart.
	UpdateGID(ctx context.Context, oldGID, newGID int64) error

	// Delete removes the group row only. Users referencing the gid as
	// their main group are left in place.
	Delete(ctx context.Context, gid int64) error

	// AddMember appends login to the group's members column unless it is
	// already present as an exact token. Idempotent.
	AddMember(ctx context.Context, login string, gid int64) error

	// RemoveMember deletes the exact token login from the members column.
	// Removing an absent member is not an error.
	RemoveMember(ctx context.Context, login string, gid int64) error
}

// ExistenceProber is a generalized existence probe over the mapped schema,
// used by validators for fast-path uniqueness checks. The authoritative
// uniqueness guarantee remains the database constraint.
type ExistenceProber interface {
	Exists(ctx context.Context, table, field string, value any) (bool, error)
}
