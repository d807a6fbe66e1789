package usecase

import (
	"context"

	"ftpadmin/internal/domain/entity"
)

// CreateGroupInput defines the data required to create a group. A zero GID
// means "not supplied" and the next free gid is assigned.
type CreateGroupInput struct {
	Name    string
	GID     int64
	Members []string
}

// CreateGroupOutput reports the created group.
type CreateGroupOutput struct {
	GID  int64
	Name string
}

// GroupStats carries the group counters shown on the overview page.
type GroupStats struct {
	Total int64
	Empty int64
}

// GroupUsecase defines the interface for FTP group management.
type GroupUsecase interface {
	CreateGroup(ctx context.Context, input *CreateGroupInput) (*CreateGroupOutput, error)
	ListGroups(ctx context.Context) ([]*entity.Group, error)
	GetGroup(ctx context.Context, gid int64) (*entity.Group, error)

	// RenumberGroup moves a group to a new gid and repoints every account
	// whose main group was the old gid, atomically.
	RenumberGroup(ctx context.Context, oldGID, newGID int64) error

	// DeleteGroup removes the group row only. Accounts keeping the gid as
	// their main group are left untouched.
	DeleteGroup(ctx context.Context, gid int64) error

	AddMember(ctx context.Context, login string, gid int64) error
	RemoveMember(ctx context.Context, login string, gid int64) error
	Stats(ctx context.Context) (*GroupStats, error)
}
