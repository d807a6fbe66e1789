package postgres

import (
	"context"

	"ftpadmin/config"
	"ftpadmin/internal/domain/entity"
	domainerrors "ftpadmin/internal/domain/errors"
	"ftpadmin/internal/domain/repository"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// memberUpdateRetries bounds the compare-and-swap loop on the members
// column. Contention on a single group row is rare, so a small bound is
// plenty.
const memberUpdateRetries = 5

type groupRepository struct {
	db     *gorm.DB
	schema *config.SchemaConfig
}

// NewGroupRepository is the constructor for groupRepository.
// It returns the repository as a repository.GroupRepository interface, adhering to dependency inversion.
func NewGroupRepository(db *gorm.DB, cfg *config.Config) repository.GroupRepository {
	return &groupRepository{db: db, schema: cfg.Schema}
}

func (repo *groupRepository) groups() string {
	return repo.schema.Tables.Groups
}

func (repo *groupRepository) List(ctx context.Context) ([]*entity.Group, error) {
	f := repo.schema.Fields

	var rows []map[string]any
	err := repo.db.WithContext(ctx).
		Table(repo.groups()).
		Order(f.GID + " ASC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list groups")
	}

	groups := make([]*entity.Group, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, repo.toGroup(row))
	}

	return groups, nil
}

func (repo *groupRepository) FindByGID(ctx context.Context, gid int64) (*entity.Group, error) {
	f := repo.schema.Fields

	var row map[string]any
	err := repo.db.WithContext(ctx).
		Table(repo.groups()).
		Where(f.GID+" = ?", gid).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrGroupNotFound
		}

		return nil, errors.Wrap(err, "failed to find group by gid")
	}

	return repo.toGroup(row), nil
}

func (repo *groupRepository) Count(ctx context.Context, onlyEmpty bool) (int64, error) {
	f := repo.schema.Fields

	query := repo.db.WithContext(ctx).Table(repo.groups())
	if onlyEmpty {
		query = query.Where(f.Members+" = ?", "")
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count groups")
	}

	return count, nil
}

func (repo *groupRepository) NextGID(ctx context.Context) (int64, error) {
	max, err := scalarMax(ctx, repo.db, repo.groups(), repo.schema.Fields.GID)
	if err != nil {
		return 0, err
	}

	return max + 1, nil
}

func (repo *groupRepository) Create(ctx context.Context, group *entity.Group) error {
	f := repo.schema.Fields

	values := map[string]any{
		f.GID:       group.GID,
		f.GroupName: group.Name,
		f.Members:   group.Members.String(),
	}

	err := repo.db.WithContext(ctx).Table(repo.groups()).Create(values).Error
	if err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrGIDTaken.WrapMessage("gid or group name already exists")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create group")
	}

	return nil
}

func (repo *groupRepository) UpdateGID(ctx context.Context, oldGID, newGID int64) error {
	f := repo.schema.Fields

	result := repo.db.WithContext(ctx).
		Table(repo.groups()).
		Where(f.GID+" = ?", oldGID).
		Update(f.GID, newGID)
	if result.Error != nil {
		if isUniqueConstraintViolation(result.Error) {
			return domainerrors.ErrGIDTaken.WrapMessage("target gid already exists")
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to renumber group")
	}
	if result.RowsAffected == 0 {
		return repository.ErrGroupNotFound
	}

	return nil
}

func (repo *groupRepository) Delete(ctx context.Context, gid int64) error {
	f := repo.schema.Fields

	result := repo.db.WithContext(ctx).
		Table(repo.groups()).
		Where(f.GID+" = ?", gid).
		Delete(nil)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete group")
	}
	if result.RowsAffected == 0 {
		return repository.ErrGroupNotFound
	}

	return nil
}

func (repo *groupRepository) AddMember(ctx context.Context, login string, gid int64) error {
	return repo.mutateMembers(ctx, gid, func(members entity.MemberList) entity.MemberList {
		return members.Add(login)
	})
}

func (repo *groupRepository) RemoveMember(ctx context.Context, login string, gid int64) error {
	return repo.mutateMembers(ctx, gid, func(members entity.MemberList) entity.MemberList {
		return members.Remove(login)
	})
}

// mutateMembers applies fn to the group's member list with a
// compare-and-swap update: the write only lands when the column still
// holds the snapshot it was computed from, so concurrent membership
// changes never overwrite each other.
func (repo *groupRepository) mutateMembers(ctx context.Context, gid int64, fn func(entity.MemberList) entity.MemberList) error {
	f := repo.schema.Fields

	for attempt := 0; attempt < memberUpdateRetries; attempt++ {
		var row map[string]any
		err := repo.db.WithContext(ctx).
			Table(repo.groups()).
			Select(f.Members).
			Where(f.GID+" = ?", gid).
			Take(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.ErrGroupNotFound
			}

			return errors.Wrap(err, "failed to read group members")
		}

		before := asString(row[f.Members])
		after := fn(entity.ParseMembers(before)).String()
		if after == before {
			return nil
		}

		result := repo.db.WithContext(ctx).
			Table(repo.groups()).
			Where(f.GID+" = ? AND "+f.Members+" = ?", gid, before).
			Update(f.Members, after)
		if result.Error != nil {
			return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update group members")
		}
		if result.RowsAffected > 0 {
			return nil
		}
		// Lost the race against a concurrent membership change; re-read
		// and try again.
	}

	return errors.Errorf("group %d members update contended beyond %d attempts", gid, memberUpdateRetries)
}

func (repo *groupRepository) toGroup(row map[string]any) *entity.Group {
	f := repo.schema.Fields

	return &entity.Group{
		GID:     asInt64(row[f.GID]),
		Name:    asString(row[f.GroupName]),
		Members: entity.ParseMembers(asString(row[f.Members])),
	}
}
