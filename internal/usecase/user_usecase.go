// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"ftpadmin/internal/domain/entity"
)

// --- Input DTOs ---

// CreateUserInput defines the data required to provision a new FTP account.
// A zero UID means "not supplied": the configured default applies, and when
// that is unset too the next free uid is assigned.
type CreateUserInput struct {
	Login             string
	Password          string
	UID               int64
	PrimaryGID        int64
	SupplementaryGIDs []int64
	Name              string
	Email             string
	Company           string
	Comment           string
	Disabled          bool
}

// UpdateUserInput rewrites the mutable fields of an existing account. An
// empty Password keeps the stored credential; anything else is re-hashed
// under the configured scheme.
type UpdateUserInput struct {
	ID         int64
	Password   string
	UID        int64
	PrimaryGID int64
	HomeDir    string
	Shell      string
	Name       string
	Email      string
	Company    string
	Comment    string
	Disabled   bool
}

// --- Output DTOs ---

// CreateUserOutput reports the provisioned account. Warnings carry
// non-fatal supplementary group linking problems; the account itself was
// created.
type CreateUserOutput struct {
	ID       int64
	UID      int64
	Login    string
	HomeDir  string
	Warnings []string
}

// RemoveUserOutput reports the removal. Warnings carry membership scrub
// problems; the account row itself was deleted.
type RemoveUserOutput struct {
	Login    string
	Warnings []string
}

// UserStats carries the account counters shown on the overview page.
type UserStats struct {
	Total    int64
	Disabled int64
}

// UserUsecase defines the interface for FTP account provisioning.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type UserUsecase interface {
	CreateUser(ctx context.Context, input *CreateUserInput) (*CreateUserOutput, error)
	UpdateUser(ctx context.Context, input *UpdateUserInput) (*entity.User, error)
	RemoveUser(ctx context.Context, id int64) (*RemoveUserOutput, error)
	GetUser(ctx context.Context, id int64) (*entity.User, error)
	ListUsers(ctx context.Context) ([]*entity.User, error)
	Stats(ctx context.Context) (*UserStats, error)

	// SuggestPassword returns a random alphanumeric password of the
	// configured default length, for pre-filling creation forms.
	SuggestPassword() (string, error)
}
