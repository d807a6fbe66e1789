package impl

import (
	"context"
	"crypto/rand"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"ftpadmin/config"
	deliverycontext "ftpadmin/internal/delivery/context"
	"ftpadmin/internal/domain/entity"
	domainerrors "ftpadmin/internal/domain/errors"
	"ftpadmin/internal/domain/repository"
	"ftpadmin/internal/domain/service"
	"ftpadmin/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const passwordCharset = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// userService implements the UserUsecase interface.
type userService struct {
	userRepo  repository.UserRepository
	groupRepo repository.GroupRepository
	hasher    service.CredentialHasher
	validator *provisioningValidator
	policy    *config.ProvisioningConfig
	logger    *slog.Logger
}

// UserServiceParams holds dependencies for userService, injected by Fx.
type UserServiceParams struct {
	fx.In

	UserRepo  repository.UserRepository
	GroupRepo repository.GroupRepository
	Prober    repository.ExistenceProber
	Hasher    service.CredentialHasher
	Config    *config.Config
	Logger    *slog.Logger
}

// NewUserService is the constructor for userService. It receives all dependencies as interfaces.
func NewUserService(params UserServiceParams) (usecase.UserUsecase, error) {
	validator, err := newProvisioningValidator(params.Config, params.Prober)
	if err != nil {
		return nil, err
	}

	return &userService{
		userRepo:  params.UserRepo,
		groupRepo: params.GroupRepo,
		hasher:    params.Hasher,
		validator: validator,
		policy:    params.Config.Provisioning,
		logger:    params.Logger,
	}, nil
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// storageCtx bounds one storage call so a stuck connection surfaces as a
// failure instead of hanging the request.
func (srv *userService) storageCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, srv.policy.StorageTimeout)
}

// CreateUser provisions a new FTP account: validate, hash, insert, then
// link supplementary groups. Validation failures reject the request with
// no writes. Supplementary linking problems never fail the operation; they
// come back as warnings next to the created account.
func (srv *userService) CreateUser(ctx context.Context, input *usecase.CreateUserInput) (*usecase.CreateUserOutput, error) {
	srv.log(ctx).Info("Creating FTP account", slog.String("login", input.Login))

	groups, err := srv.listGroups(ctx)
	if err != nil {
		srv.log(ctx).Error("Failed to load groups for account creation", slog.Any("error", err))

		return nil, domainerrors.ErrUserCreationFailed
	}
	if len(groups) == 0 {
		verrs := domainerrors.NewValidationErrors()
		verrs.Addf("There are no groups in the database; please create at least one group before creating users.")

		return nil, verrs
	}

	uid, err := srv.effectiveUID(ctx, input.UID)
	if err != nil {
		srv.log(ctx).Error("Failed to determine uid for account creation", slog.Any("error", err))

		return nil, domainerrors.ErrUserCreationFailed
	}

	verrs, err := srv.validator.ValidateNewUser(ctx, input, uid, groups)
	if err != nil {
		srv.log(ctx).Error("Account validation probe failed", slog.Any("error", err))

		return nil, domainerrors.ErrUserCreationFailed
	}
	if verrs.HasAny() {
		srv.log(ctx).Warn("Account creation rejected",
			slog.String("login", input.Login),
			slog.Int("problems", len(verrs.Problems)))

		return nil, verrs
	}

	groupName := ""
	for _, group := range groups {
		if group.GID == input.PrimaryGID {
			groupName = group.Name

			break
		}
	}

	cred, err := srv.hasher.Hash(input.Password, input.Login)
	if err != nil {
		srv.log(ctx).Error("Failed to hash account credential", slog.Any("error", err))

		return nil, domainerrors.ErrHashingFailed
	}

	user := &entity.User{
		Login:      input.Login,
		UID:        uid,
		PrimaryGID: input.PrimaryGID,
		HomeDir:    joinHomePath(srv.policy.DefaultHomedir, groupName, input.Login),
		Shell:      srv.policy.DefaultShell,
		Name:       input.Name,
		Email:      input.Email,
		Company:    input.Company,
		Comment:    input.Comment,
		Disabled:   input.Disabled,
		CreatedAt:  time.Now(),
	}

	if err := srv.insertUser(ctx, user, cred); err != nil {
		if errors.Is(err, domainerrors.ErrLoginTaken) {
			return nil, err
		}
		srv.log(ctx).Error("Failed to insert FTP account",
			slog.String("login", input.Login),
			slog.Any("error", err))

		return nil, domainerrors.ErrUserCreationFailed
	}

	warnings := srv.linkSupplementaryGroups(ctx, input.Login, input.SupplementaryGIDs)

	srv.log(ctx).Info("FTP account created",
		slog.String("login", user.Login),
		slog.Int64("uid", user.UID),
		slog.Int64("id", user.ID))

	return &usecase.CreateUserOutput{
		ID:       user.ID,
		UID:      user.UID,
		Login:    user.Login,
		HomeDir:  user.HomeDir,
		Warnings: warnings,
	}, nil
}

// effectiveUID resolves the uid for a new account: the request value wins,
// then the configured default, then max(uid)+1 over the existing accounts.
func (srv *userService) effectiveUID(ctx context.Context, requested int64) (int64, error) {
	if requested != 0 {
		return requested, nil
	}
	if srv.policy.DefaultUID != 0 {
		return srv.policy.DefaultUID, nil
	}

	callCtx, cancel := srv.storageCtx(ctx)
	defer cancel()

	return srv.userRepo.NextUID(callCtx)
}

func (srv *userService) listGroups(ctx context.Context) ([]*entity.Group, error) {
	callCtx, cancel := srv.storageCtx(ctx)
	defer cancel()

	return srv.groupRepo.List(callCtx)
}

func (srv *userService) insertUser(ctx context.Context, user *entity.User, cred service.Credential) error {
	callCtx, cancel := srv.storageCtx(ctx)
	defer cancel()

	return srv.userRepo.Create(callCtx, user, cred)
}

// linkSupplementaryGroups adds the new login to each requested group's
// members column. Failures are reported as warnings, never as errors: the
// account already exists and partial linking is accepted.
func (srv *userService) linkSupplementaryGroups(ctx context.Context, login string, gids []int64) []string {
	var warnings []string
	invalidSeen := false

	for _, gid := range gids {
		if gid <= 0 {
			if !invalidSeen {
				warnings = append(warnings, "Adding additional group failed; at least one of the additional groups had an invalid GID.")
				invalidSeen = true
			}

			continue
		}

		callCtx, cancel := srv.storageCtx(ctx)
		err := srv.groupRepo.AddMember(callCtx, login, gid)
		cancel()
		if err != nil {
			srv.log(ctx).Warn("Failed to link account to additional group",
				slog.String("login", login),
				slog.Int64("gid", gid),
				slog.Any("error", err))
			warnings = append(warnings, "Adding additional group failed; check log files.")
		}
	}

	return warnings
}

// UpdateUser rewrites the mutable fields of an account. The credential is
// re-hashed only when a new password is supplied.
func (srv *userService) UpdateUser(ctx context.Context, input *usecase.UpdateUserInput) (*entity.User, error) {
	srv.log(ctx).Info("Updating FTP account", slog.Int64("id", input.ID))

	callCtx, cancel := srv.storageCtx(ctx)
	user, err := srv.userRepo.FindByID(callCtx, input.ID)
	cancel()
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}
		srv.log(ctx).Error("Failed to load account for update", slog.Int64("id", input.ID), slog.Any("error", err))

		return nil, domainerrors.ErrUserUpdateFailed
	}

	var cred *service.Credential
	if input.Password != "" {
		if len(input.Password) < srv.policy.MinPasswdLength {
			verrs := domainerrors.NewValidationErrors()
			verrs.Addf("Password is too short; minimum length is %d characters.", srv.policy.MinPasswdLength)

			return nil, verrs
		}

		hashed, err := srv.hasher.Hash(input.Password, user.Login)
		if err != nil {
			srv.log(ctx).Error("Failed to hash updated credential", slog.Any("error", err))

			return nil, domainerrors.ErrHashingFailed
		}
		cred = &hashed
	}

	user.UID = input.UID
	user.PrimaryGID = input.PrimaryGID
	user.HomeDir = input.HomeDir
	user.Shell = input.Shell
	user.Name = input.Name
	user.Email = input.Email
	user.Company = input.Company
	user.Comment = input.Comment
	user.Disabled = input.Disabled

	callCtx, cancel = srv.storageCtx(ctx)
	err = srv.userRepo.Update(callCtx, user, cred)
	cancel()
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}
		srv.log(ctx).Error("Failed to update FTP account", slog.Int64("id", input.ID), slog.Any("error", err))

		return nil, domainerrors.ErrUserUpdateFailed
	}

	return user, nil
}

// RemoveUser deletes the account row, then scrubs the login from every
// group's members column. The scrub is best effort: a failed group update
// becomes a warning, not a rollback of the delete.
func (srv *userService) RemoveUser(ctx context.Context, id int64) (*usecase.RemoveUserOutput, error) {
	srv.log(ctx).Info("Removing FTP account", slog.Int64("id", id))

	callCtx, cancel := srv.storageCtx(ctx)
	user, err := srv.userRepo.FindByID(callCtx, id)
	cancel()
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}
		srv.log(ctx).Error("Failed to load account for removal", slog.Int64("id", id), slog.Any("error", err))

		return nil, domainerrors.ErrUserRemovalFailed
	}

	callCtx, cancel = srv.storageCtx(ctx)
	err = srv.userRepo.Delete(callCtx, id)
	cancel()
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}
		srv.log(ctx).Error("Failed to delete FTP account", slog.Int64("id", id), slog.Any("error", err))

		return nil, domainerrors.ErrUserRemovalFailed
	}

	warnings := srv.scrubMemberships(ctx, user.Login)

	srv.log(ctx).Info("FTP account removed", slog.String("login", user.Login), slog.Int64("id", id))

	return &usecase.RemoveUserOutput{Login: user.Login, Warnings: warnings}, nil
}

func (srv *userService) scrubMemberships(ctx context.Context, login string) []string {
	groups, err := srv.listGroups(ctx)
	if err != nil {
		srv.log(ctx).Warn("Failed to list groups while scrubbing memberships",
			slog.String("login", login),
			slog.Any("error", err))

		return []string{"Removing user from groups failed; check log files."}
	}

	var warnings []string
	for _, group := range groups {
		if !group.Members.Contains(login) {
			continue
		}

		callCtx, cancel := srv.storageCtx(ctx)
		err := srv.groupRepo.RemoveMember(callCtx, login, group.GID)
		cancel()
		if err != nil {
			srv.log(ctx).Warn("Failed to scrub membership",
				slog.String("login", login),
				slog.Int64("gid", group.GID),
				slog.Any("error", err))
			warnings = append(warnings, "Removing user from groups failed; check log files.")
		}
	}

	return warnings
}

// GetUser retrieves one account by row id.
func (srv *userService) GetUser(ctx context.Context, id int64) (*entity.User, error) {
	callCtx, cancel := srv.storageCtx(ctx)
	defer cancel()

	user, err := srv.userRepo.FindByID(callCtx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}
		srv.log(ctx).Error("Failed to load account", slog.Int64("id", id), slog.Any("error", err))

		return nil, domainerrors.ErrInternalError
	}

	return user, nil
}

// ListUsers retrieves all accounts ordered by row id.
func (srv *userService) ListUsers(ctx context.Context) ([]*entity.User, error) {
	callCtx, cancel := srv.storageCtx(ctx)
	defer cancel()

	users, err := srv.userRepo.List(callCtx)
	if err != nil {
		srv.log(ctx).Error("Failed to list accounts", slog.Any("error", err))

		return nil, domainerrors.ErrInternalError
	}

	return users, nil
}

// Stats returns the total and disabled account counters.
func (srv *userService) Stats(ctx context.Context) (*usecase.UserStats, error) {
	callCtx, cancel := srv.storageCtx(ctx)
	defer cancel()

	total, err := srv.userRepo.Count(callCtx, false)
	if err != nil {
		srv.log(ctx).Error("Failed to count accounts", slog.Any("error", err))

		return nil, domainerrors.ErrInternalError
	}

	disabled, err := srv.userRepo.Count(callCtx, true)
	if err != nil {
		srv.log(ctx).Error("Failed to count disabled accounts", slog.Any("error", err))

		return nil, domainerrors.ErrInternalError
	}

	return &usecase.UserStats{Total: total, Disabled: disabled}, nil
}

// SuggestPassword returns a random alphanumeric password of the configured
// default length.
func (srv *userService) SuggestPassword() (string, error) {
	return randomString(srv.policy.DefaultPasswdLength)
}

func randomString(length int) (string, error) {
	if length <= 0 {
		return "", errors.Errorf("invalid random string length %d", length)
	}

	out := make([]byte, length)
	max := big.NewInt(int64(len(passwordCharset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", errors.Wrap(err, "failed to draw random index")
		}
		out[i] = passwordCharset[n.Int64()]
	}

	return string(out), nil
}

// joinHomePath builds base + "/" + group + "/" + login without doubling
// separators when the configured base carries a trailing slash.
func joinHomePath(base, groupName, login string) string {
	return strings.TrimRight(base, "/") + "/" + groupName + "/" + login
}
