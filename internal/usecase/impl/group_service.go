package impl

import (
	"context"
	"log/slog"

	"ftpadmin/config"
	deliverycontext "ftpadmin/internal/delivery/context"
	"ftpadmin/internal/domain/entity"
	domainerrors "ftpadmin/internal/domain/errors"
	"ftpadmin/internal/domain/repository"
	"ftpadmin/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// groupService implements the GroupUsecase interface.
type groupService struct {
	txManager repository.TransactionManager
	userRepo  repository.UserRepository
	groupRepo repository.GroupRepository
	validator *provisioningValidator
	policy    *config.ProvisioningConfig
	logger    *slog.Logger
}

// GroupServiceParams holds dependencies for groupService, injected by Fx.
type GroupServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	UserRepo  repository.UserRepository
	GroupRepo repository.GroupRepository
	Prober    repository.ExistenceProber
	Config    *config.Config
	Logger    *slog.Logger
}

// NewGroupService is the constructor for groupService.
func NewGroupService(params GroupServiceParams) (usecase.GroupUsecase, error) {
	validator, err := newProvisioningValidator(params.Config, params.Prober)
	if err != nil {
		return nil, err
	}

	return &groupService{
		txManager: params.TxManager,
		userRepo:  params.UserRepo,
		groupRepo: params.GroupRepo,
		validator: validator,
		policy:    params.Config.Provisioning,
		logger:    params.Logger,
	}, nil
}

func (srv *groupService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *groupService) storageCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, srv.policy.StorageTimeout)
}

// CreateGroup validates and inserts a new group. A zero gid in the input
// is replaced with max(gid)+1 before validation.
func (srv *groupService) CreateGroup(ctx context.Context, input *usecase.CreateGroupInput) (*usecase.CreateGroupOutput, error) {
	srv.log(ctx).Info("Creating FTP group", slog.String("name", input.Name))

	gid := input.GID
	if gid == 0 {
		callCtx, cancel := srv.storageCtx(ctx)
		next, err := srv.groupRepo.NextGID(callCtx)
		cancel()
		if err != nil {
			srv.log(ctx).Error("Failed to determine gid for group creation", slog.Any("error", err))

			return nil, domainerrors.ErrGroupCreationFailed
		}
		gid = next
	}

	verrs, err := srv.validator.ValidateNewGroup(ctx, input, gid)
	if err != nil {
		srv.log(ctx).Error("Group validation probe failed", slog.Any("error", err))

		return nil, domainerrors.ErrGroupCreationFailed
	}
	if verrs.HasAny() {
		srv.log(ctx).Warn("Group creation rejected",
			slog.String("name", input.Name),
			slog.Int("problems", len(verrs.Problems)))

		return nil, verrs
	}

	var members entity.MemberList
	for _, login := range input.Members {
		members = members.Add(login)
	}

	group := &entity.Group{GID: gid, Name: input.Name, Members: members}

	callCtx, cancel := srv.storageCtx(ctx)
	err = srv.groupRepo.Create(callCtx, group)
	cancel()
	if err != nil {
		if errors.Is(err, domainerrors.ErrGIDTaken) {
			return nil, err
		}
		srv.log(ctx).Error("Failed to insert FTP group",
			slog.String("name", input.Name),
			slog.Any("error", err))

		return nil, domainerrors.ErrGroupCreationFailed
	}

	srv.log(ctx).Info("FTP group created", slog.String("name", group.Name), slog.Int64("gid", group.GID))

	return &usecase.CreateGroupOutput{GID: group.GID, Name: group.Name}, nil
}

// ListGroups retrieves all groups ordered by gid.
func (srv *groupService) ListGroups(ctx context.Context) ([]*entity.Group, error) {
	callCtx, cancel := srv.storageCtx(ctx)
	defer cancel()

	groups, err := srv.groupRepo.List(callCtx)
	if err != nil {
		srv.log(ctx).Error("Failed to list groups", slog.Any("error", err))

		return nil, domainerrors.ErrInternalError
	}

	return groups, nil
}

// GetGroup retrieves one group by gid.
func (srv *groupService) GetGroup(ctx context.Context, gid int64) (*entity.Group, error) {
	callCtx, cancel := srv.storageCtx(ctx)
	defer cancel()

	group, err := srv.groupRepo.FindByGID(callCtx, gid)
	if err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return nil, domainerrors.ErrGroupNotFound
		}
		srv.log(ctx).Error("Failed to load group", slog.Int64("gid", gid), slog.Any("error", err))

		return nil, domainerrors.ErrInternalError
	}

	return group, nil
}

// RenumberGroup moves the group row to newGID and repoints every account
// whose main group was oldGID, in one transaction. Either both tables
// change or neither does.
func (srv *groupService) RenumberGroup(ctx context.Context, oldGID, newGID int64) error {
	srv.log(ctx).Info("Renumbering FTP group", slog.Int64("oldGid", oldGID), slog.Int64("newGid", newGID))

	if newGID <= 0 {
		verrs := domainerrors.NewValidationErrors()
		verrs.Addf("Invalid GID; GID must be a positive integer.")

		return verrs
	}

	callCtx, cancel := srv.storageCtx(ctx)
	defer cancel()

	err := srv.txManager.Execute(callCtx, func(txRepoFactory repository.RepositoryFactory) error {
		if err := txRepoFactory.Groups().UpdateGID(callCtx, oldGID, newGID); err != nil {
			return err
		}

		return txRepoFactory.Users().ReassignPrimaryGID(callCtx, oldGID, newGID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return domainerrors.ErrGroupNotFound
		}
		if errors.Is(err, domainerrors.ErrGIDTaken) {
			return domainerrors.ErrGIDTaken
		}
		srv.log(ctx).Error("Failed to renumber group",
			slog.Int64("oldGid", oldGID),
			slog.Int64("newGid", newGID),
			slog.Any("error", err))

		return domainerrors.ErrGroupUpdateFailed
	}

	return nil
}

// DeleteGroup removes the group row. Accounts whose main group pointed at
// the gid keep their dangling reference; membership of other groups is not
// touched either.
func (srv *groupService) DeleteGroup(ctx context.Context, gid int64) error {
	srv.log(ctx).Info("Deleting FTP group", slog.Int64("gid", gid))

	callCtx, cancel := srv.storageCtx(ctx)
	defer cancel()

	if err := srv.groupRepo.Delete(callCtx, gid); err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return domainerrors.ErrGroupNotFound
		}
		srv.log(ctx).Error("Failed to delete group", slog.Int64("gid", gid), slog.Any("error", err))

		return domainerrors.ErrGroupUpdateFailed
	}

	return nil
}

// AddMember links an existing account into the group's members column.
func (srv *groupService) AddMember(ctx context.Context, login string, gid int64) error {
	callCtx, cancel := srv.storageCtx(ctx)
	_, err := srv.userRepo.FindByLogin(callCtx, login)
	cancel()
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domainerrors.ErrUserNotFound
		}
		srv.log(ctx).Error("Failed to load account for membership", slog.String("login", login), slog.Any("error", err))

		return domainerrors.ErrGroupUpdateFailed
	}

	callCtx, cancel = srv.storageCtx(ctx)
	defer cancel()

	if err := srv.groupRepo.AddMember(callCtx, login, gid); err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return domainerrors.ErrGroupNotFound
		}
		srv.log(ctx).Error("Failed to add member",
			slog.String("login", login),
			slog.Int64("gid", gid),
			slog.Any("error", err))

		return domainerrors.ErrGroupUpdateFailed
	}

	return nil
}

// RemoveMember drops the exact login token from the group's members
// column. Removing an absent member succeeds.
func (srv *groupService) RemoveMember(ctx context.Context, login string, gid int64) error {
	callCtx, cancel := srv.storageCtx(ctx)
	defer cancel()

	if err := srv.groupRepo.RemoveMember(callCtx, login, gid); err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return domainerrors.ErrGroupNotFound
		}
		srv.log(ctx).Error("Failed to remove member",
			slog.String("login", login),
			slog.Int64("gid", gid),
			slog.Any("error", err))

		return domainerrors.ErrGroupUpdateFailed
	}

	return nil
}

// Stats returns the total and empty group counters.
func (srv *groupService) Stats(ctx context.Context) (*usecase.GroupStats, error) {
	callCtx, cancel := srv.storageCtx(ctx)
	defer cancel()

	total, err := srv.groupRepo.Count(callCtx, false)
	if err != nil {
		srv.log(ctx).Error("Failed to count groups", slog.Any("error", err))

		return nil, domainerrors.ErrInternalError
	}

	empty, err := srv.groupRepo.Count(callCtx, true)
	if err != nil {
		srv.log(ctx).Error("Failed to count empty groups", slog.Any("error", err))

		return nil, domainerrors.ErrInternalError
	}

	return &usecase.GroupStats{Total: total, Empty: empty}, nil
}
