// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"regexp"

	"ftpadmin/config"
	"ftpadmin/internal/domain/entity"
	domainerrors "ftpadmin/internal/domain/errors"
	"ftpadmin/internal/domain/repository"
	"ftpadmin/internal/usecase"

	"github.com/pkg/errors"
)

// provisioningValidator runs the account and group admission checks.
// Every check runs; violations accumulate and are returned together, never
// fail-fast. Uniqueness checks here are only a fast path for friendly
// messages: the database unique constraints remain the real guarantee.
type provisioningValidator struct {
	policy       *config.ProvisioningConfig
	schema       *config.SchemaConfig
	prober       repository.ExistenceProber
	loginPattern *regexp.Regexp
}

func newProvisioningValidator(cfg *config.Config, prober repository.ExistenceProber) (*provisioningValidator, error) {
	pattern, err := regexp.Compile(cfg.Provisioning.UserIDRegex)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid userIdRegex %q", cfg.Provisioning.UserIDRegex)
	}

	return &provisioningValidator{
		policy:       cfg.Provisioning,
		schema:       cfg.Schema,
		prober:       prober,
		loginPattern: pattern,
	}, nil
}

// ValidateNewUser checks a creation request against the provisioning
// policy. uid is the effective uid after defaulting; groups is the current
// group list used for the main-group existence check. The returned error is
// a storage fault from the uniqueness probe, not a validation outcome.
func (v *provisioningValidator) ValidateNewUser(
	ctx context.Context,
	input *usecase.CreateUserInput,
	uid int64,
	groups []*entity.Group,
) (*domainerrors.ValidationErrors, error) {
	verrs := domainerrors.NewValidationErrors()

	if input.Login == "" ||
		!v.loginPattern.MatchString(input.Login) ||
		len(input.Login) > v.policy.MaxUserIDLength {
		verrs.Addf("Invalid user name; user name must contain only letters, numbers, hyphens, and underscores with a maximum of %d characters.", v.policy.MaxUserIDLength)
	}

	if uid <= 0 {
		verrs.Addf("Invalid UID; must be a positive integer.")
	}
	minUID, maxUID := v.policy.MinUID, v.policy.MaxUID
	switch {
	case minUID != -1 && maxUID != -1:
		if uid < minUID || uid > maxUID {
			verrs.Addf("Invalid UID; UID must be between %d and %d.", minUID, maxUID)
		}
	case maxUID != -1 && uid > maxUID:
		verrs.Addf("Invalid UID; UID must be at most %d.", maxUID)
	case minUID != -1 && uid < minUID:
		verrs.Addf("Invalid UID; UID must be at least %d.", minUID)
	}

	if input.PrimaryGID <= 0 {
		verrs.Addf("Invalid main group; GID must be a positive integer.")
	}

	if len(input.Password) < v.policy.MinPasswdLength {
		verrs.Addf("Password is too short; minimum length is %d characters.", v.policy.MinPasswdLength)
	}

	if v.policy.DefaultShell == "" {
		verrs.Addf("Invalid shell; shell cannot be empty.")
	}

	taken, err := v.prober.Exists(ctx, v.schema.Tables.Users, v.schema.Fields.Login, input.Login)
	if err != nil {
		return nil, errors.Wrap(err, "login uniqueness probe failed")
	}
	if taken {
		verrs.Addf("User name already exists; name must be unique.")
	}

	if input.PrimaryGID > 0 && !groupListContains(groups, input.PrimaryGID) {
		verrs.Addf("Main group does not exist; GID cannot be found in the database.")
	}

	return verrs, nil
}

// ValidateNewGroup checks a group creation request. gid is the effective
// gid after defaulting.
func (v *provisioningValidator) ValidateNewGroup(
	ctx context.Context,
	input *usecase.CreateGroupInput,
	gid int64,
) (*domainerrors.ValidationErrors, error) {
	verrs := domainerrors.NewValidationErrors()

	if input.Name == "" ||
		!v.loginPattern.MatchString(input.Name) ||
		len(input.Name) > v.policy.MaxUserIDLength {
		verrs.Addf("Invalid group name; group name must contain only letters, numbers, hyphens, and underscores with a maximum of %d characters.", v.policy.MaxUserIDLength)
	}

	if gid <= 0 {
		verrs.Addf("Invalid GID; GID must be a positive integer.")
	}

	if input.Name != "" {
		taken, err := v.prober.Exists(ctx, v.schema.Tables.Groups, v.schema.Fields.GroupName, input.Name)
		if err != nil {
			return nil, errors.Wrap(err, "group name uniqueness probe failed")
		}
		if taken {
			verrs.Addf("Group name already exists; name must be unique.")
		}
	}

	if gid > 0 {
		taken, err := v.prober.Exists(ctx, v.schema.Tables.Groups, v.schema.Fields.GID, gid)
		if err != nil {
			return nil, errors.Wrap(err, "gid uniqueness probe failed")
		}
		if taken {
			verrs.Addf("GID already exists; GID must be unique.")
		}
	}

	return verrs, nil
}

func groupListContains(groups []*entity.Group, gid int64) bool {
	for _, group := range groups {
		if group.GID == gid {
			return true
		}
	}

	return false
}
