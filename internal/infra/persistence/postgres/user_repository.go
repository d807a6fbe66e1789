package postgres

import (
	"context"

	"ftpadmin/config"
	"ftpadmin/internal/domain/entity"
	domainerrors "ftpadmin/internal/domain/errors"
	"ftpadmin/internal/domain/repository"
	"ftpadmin/internal/domain/service"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// userRepository implements repository.UserRepository over the mapped
// daemon schema using GORM.
type userRepository struct {
	db     *gorm.DB
	schema *config.SchemaConfig
}

// NewUserRepository is the constructor for userRepository.
// It returns the repository as a repository.UserRepository interface, adhering to dependency inversion.
func NewUserRepository(db *gorm.DB, cfg *config.Config) repository.UserRepository {
	return &userRepository{db: db, schema: cfg.Schema}
}

func (repo *userRepository) users() string {
	return repo.schema.Tables.Users
}

func (repo *userRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	f := repo.schema.Fields

	var row map[string]any
	err := repo.db.WithContext(ctx).
		Table(repo.users()).
		Where(f.ID+" = ?", id).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return repo.toUser(row), nil
}

func (repo *userRepository) FindByLogin(ctx context.Context, login string) (*entity.User, error) {
	f := repo.schema.Fields

	var row map[string]any
	err := repo.db.WithContext(ctx).
		Table(repo.users()).
		Where(f.Login+" = ?", login).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by login")
	}

	return repo.toUser(row), nil
}

func (repo *userRepository) List(ctx context.Context) ([]*entity.User, error) {
	f := repo.schema.Fields

	var rows []map[string]any
	err := repo.db.WithContext(ctx).
		Table(repo.users()).
		Order(f.ID + " ASC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}

	users := make([]*entity.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, repo.toUser(row))
	}

	return users, nil
}

func (repo *userRepository) ListByPrimaryGID(ctx context.Context, gid int64) ([]*entity.User, error) {
	f := repo.schema.Fields

	var rows []map[string]any
	err := repo.db.WithContext(ctx).
		Table(repo.users()).
		Where(f.PrimaryGID+" = ?", gid).
		Order(f.ID + " ASC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users by primary gid")
	}

	users := make([]*entity.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, repo.toUser(row))
	}

	return users, nil
}

func (repo *userRepository) Count(ctx context.Context, onlyDisabled bool) (int64, error) {
	f := repo.schema.Fields

	query := repo.db.WithContext(ctx).Table(repo.users())
	if onlyDisabled {
		query = query.Where(f.Disabled+" = ?", 1)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count users")
	}

	return count, nil
}

func (repo *userRepository) NextUID(ctx context.Context) (int64, error) {
	max, err := scalarMax(ctx, repo.db, repo.users(), repo.schema.Fields.UID)
	if err != nil {
		return 0, err
	}

	return max + 1, nil
}

func (repo *userRepository) Create(ctx context.Context, user *entity.User, cred service.Credential) error {
	f := repo.schema.Fields

	values := map[string]any{
		f.Login:      user.Login,
		f.UID:        user.UID,
		f.PrimaryGID: user.PrimaryGID,
		f.Passwd:     credentialValue(cred),
		f.Homedir:    user.HomeDir,
		f.Shell:      user.Shell,
		f.Name:       user.Name,
		f.Email:      user.Email,
		f.Company:    user.Company,
		f.Comment:    user.Comment,
		f.Disabled:   boolFlag(user.Disabled),
		f.CreateDate: user.CreatedAt,
	}

	err := repo.db.WithContext(ctx).Table(repo.users()).Create(values).Error
	if err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrLoginTaken.WrapMessage("login already exists")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrUserCreationFailed.WrapMessage("missing required user information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	// A map-based insert does not report the generated key, so read it
	// back through the unique login.
	var row map[string]any
	err = repo.db.WithContext(ctx).
		Table(repo.users()).
		Select(f.ID).
		Where(f.Login+" = ?", user.Login).
		Take(&row).Error
	if err != nil {
		return errors.Wrap(err, "failed to read back created user id")
	}
	user.ID = asInt64(row[f.ID])

	return nil
}

func (repo *userRepository) Update(ctx context.Context, user *entity.User, cred *service.Credential) error {
	f := repo.schema.Fields

	values := map[string]any{
		f.UID:        user.UID,
		f.PrimaryGID: user.PrimaryGID,
		f.Homedir:    user.HomeDir,
		f.Shell:      user.Shell,
		f.Name:       user.Name,
		f.Email:      user.Email,
		f.Company:    user.Company,
		f.Comment:    user.Comment,
		f.Disabled:   boolFlag(user.Disabled),
	}
	if cred != nil {
		values[f.Passwd] = credentialValue(*cred)
	}

	result := repo.db.WithContext(ctx).
		Table(repo.users()).
		Where(f.ID+" = ?", user.ID).
		Updates(values)
	if result.Error != nil {
		if isUniqueConstraintViolation(result.Error) {
			return domainerrors.ErrLoginTaken.WrapMessage("login already exists")
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update user")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

func (repo *userRepository) ReassignPrimaryGID(ctx context.Context, oldGID, newGID int64) error {
	f := repo.schema.Fields

	err := repo.db.WithContext(ctx).
		Table(repo.users()).
		Where(f.PrimaryGID+" = ?", oldGID).
		Update(f.PrimaryGID, newGID).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to reassign primary gid")
	}

	return nil
}

func (repo *userRepository) Delete(ctx context.Context, id int64) error {
	f := repo.schema.Fields

	result := repo.db.WithContext(ctx).
		Table(repo.users()).
		Where(f.ID+" = ?", id).
		Delete(nil)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete user")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// credentialValue renders a credential for a write: literal values are
// bound as ordinary data, expression credentials pass through to the
// storage engine.
func credentialValue(cred service.Credential) any {
	if cred.IsExpression() {
		expr, args := cred.Expression()

		return gorm.Expr(expr, args...)
	}

	return cred.Value()
}

// toUser maps a schema-mapped row onto the domain entity.
func (repo *userRepository) toUser(row map[string]any) *entity.User {
	f := repo.schema.Fields

	return &entity.User{
		ID:         asInt64(row[f.ID]),
		Login:      asString(row[f.Login]),
		UID:        asInt64(row[f.UID]),
		PrimaryGID: asInt64(row[f.PrimaryGID]),
		HomeDir:    asString(row[f.Homedir]),
		Shell:      asString(row[f.Shell]),
		Name:       asString(row[f.Name]),
		Email:      asString(row[f.Email]),
		Company:    asString(row[f.Company]),
		Comment:    asString(row[f.Comment]),
		Disabled:   asBool(row[f.Disabled]),
		CreatedAt:  asTime(row[f.CreateDate]),
	}
}
