package impl

import (
	"context"

	"ftpadmin/internal/domain/entity"
	"ftpadmin/internal/domain/repository"
	"ftpadmin/internal/domain/service"

	"github.com/stretchr/testify/mock"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	args := m.Called(ctx, id)
	if user := args.Get(0); user != nil {
		return user.(*entity.User), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockUserRepository) FindByLogin(ctx context.Context, login string) (*entity.User, error) {
	args := m.Called(ctx, login)
	if user := args.Get(0); user != nil {
		return user.(*entity.User), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockUserRepository) List(ctx context.Context) ([]*entity.User, error) {
	args := m.Called(ctx)
	if users := args.Get(0); users != nil {
		return users.([]*entity.User), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockUserRepository) ListByPrimaryGID(ctx context.Context, gid int64) ([]*entity.User, error) {
	args := m.Called(ctx, gid)
	if users := args.Get(0); users != nil {
		return users.([]*entity.User), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockUserRepository) Count(ctx context.Context, onlyDisabled bool) (int64, error) {
	args := m.Called(ctx, onlyDisabled)

	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserRepository) NextUID(ctx context.Context) (int64, error) {
	args := m.Called(ctx)

	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserRepository) Create(ctx context.Context, user *entity.User, cred service.Credential) error {
	args := m.Called(ctx, user, cred)

	return args.Error(0)
}

func (m *mockUserRepository) Update(ctx context.Context, user *entity.User, cred *service.Credential) error {
	args := m.Called(ctx, user, cred)

	return args.Error(0)
}

func (m *mockUserRepository) ReassignPrimaryGID(ctx context.Context, oldGID, newGID int64) error {
	args := m.Called(ctx, oldGID, newGID)

	return args.Error(0)
}

func (m *mockUserRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

type mockGroupRepository struct {
	mock.Mock
}

func (m *mockGroupRepository) List(ctx context.Context) ([]*entity.Group, error) {
	args := m.Called(ctx)
	if groups := args.Get(0); groups != nil {
		return groups.([]*entity.Group), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockGroupRepository) FindByGID(ctx context.Context, gid int64) (*entity.Group, error) {
	args := m.Called(ctx, gid)
	if group := args.Get(0); group != nil {
		return group.(*entity.Group), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockGroupRepository) Count(ctx context.Context, onlyEmpty bool) (int64, error) {
	args := m.Called(ctx, onlyEmpty)

	return args.Get(0).(int64), args.Error(1)
}

func (m *mockGroupRepository) NextGID(ctx context.Context) (int64, error) {
	args := m.Called(ctx)

	return args.Get(0).(int64), args.Error(1)
}

func (m *mockGroupRepository) Create(ctx context.Context, group *entity.Group) error {
	args := m.Called(ctx, group)

	return args.Error(0)
}

func (m *mockGroupRepository) UpdateGID(ctx context.Context, oldGID, newGID int64) error {
	args := m.Called(ctx, oldGID, newGID)

	return args.Error(0)
}

func (m *mockGroupRepository) Delete(ctx context.Context, gid int64) error {
	args := m.Called(ctx, gid)

	return args.Error(0)
}

func (m *mockGroupRepository) AddMember(ctx context.Context, login string, gid int64) error {
	args := m.Called(ctx, login, gid)

	return args.Error(0)
}

func (m *mockGroupRepository) RemoveMember(ctx context.Context, login string, gid int64) error {
	args := m.Called(ctx, login, gid)

	return args.Error(0)
}

type mockExistenceProber struct {
	mock.Mock
}

func (m *mockExistenceProber) Exists(ctx context.Context, table, field string, value any) (bool, error) {
	args := m.Called(ctx, table, field, value)

	return args.Bool(0), args.Error(1)
}

type mockCredentialHasher struct {
	mock.Mock
}

func (m *mockCredentialHasher) Hash(plaintext, login string) (service.Credential, error) {
	args := m.Called(plaintext, login)

	return args.Get(0).(service.Credential), args.Error(1)
}

// mockTransactionManager runs the callback against a factory handing out
// the given repositories, without any real transaction underneath.
type mockTransactionManager struct {
	users  repository.UserRepository
	groups repository.GroupRepository
}

func (m *mockTransactionManager) Execute(_ context.Context, fn func(txRepoFactory repository.RepositoryFactory) error) error {
	return fn(&mockRepositoryFactory{users: m.users, groups: m.groups})
}

type mockRepositoryFactory struct {
	users  repository.UserRepository
	groups repository.GroupRepository
}

func (f *mockRepositoryFactory) Users() repository.UserRepository {
	return f.users
}

func (f *mockRepositoryFactory) Groups() repository.GroupRepository {
	return f.groups
}
