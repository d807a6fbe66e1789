package postgres

import (
	"context"
	"testing"
	"time"

	"ftpadmin/config"
	"ftpadmin/internal/domain/entity"
	domainerrors "ftpadmin/internal/domain/errors"
	"ftpadmin/internal/domain/repository"
	"ftpadmin/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// The repositories only emit portable SQL through the schema mapping, so
// an in-memory SQLite database is enough to exercise them end to end.

func newTestDB(t *testing.T) (*gorm.DB, *config.Config) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	ddl := []string{
		`CREATE TABLE ftpuser (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			userid TEXT NOT NULL UNIQUE,
			uid INTEGER NOT NULL,
			gid INTEGER NOT NULL,
			passwd TEXT NOT NULL,
			homedir TEXT NOT NULL,
			shell TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			company TEXT NOT NULL DEFAULT '',
			comment TEXT NOT NULL DEFAULT '',
			disabled INTEGER NOT NULL DEFAULT 0,
			create_date DATETIME NOT NULL
		)`,
		`CREATE TABLE ftpgroup (
			groupname TEXT NOT NULL UNIQUE,
			gid INTEGER NOT NULL UNIQUE,
			members TEXT NOT NULL DEFAULT ''
		)`,
	}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}

	cfg := &config.Config{Schema: &config.SchemaConfig{}}
	cfg.Schema.ApplyDefaults()
	require.NoError(t, cfg.Schema.Validate())

	return db, cfg
}

func newTestUser(login string, uid, gid int64) *entity.User {
	return &entity.User{
		Login:      login,
		UID:        uid,
		PrimaryGID: gid,
		HomeDir:    "/srv/ftp/staff/" + login,
		Shell:      "/bin/false",
		Name:       "Test User",
		Email:      login + "@example.com",
		CreatedAt:  time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC),
	}
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	db, cfg := newTestDB(t)
	repo := NewUserRepository(db, cfg)
	ctx := context.Background()

	user := newTestUser("alice", 1001, 2001)
	require.NoError(t, repo.Create(ctx, user, service.LiteralCredential("hashed-secret")))
	assert.NotZero(t, user.ID, "generated row id should be filled in")

	found, err := repo.FindByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, "alice", found.Login)
	assert.Equal(t, int64(1001), found.UID)
	assert.Equal(t, int64(2001), found.PrimaryGID)
	assert.Equal(t, "/srv/ftp/staff/alice", found.HomeDir)
	assert.Equal(t, "alice@example.com", found.Email)
	assert.False(t, found.Disabled)

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, found.Login, byID.Login)
}

func TestUserRepository_CreateDuplicateLogin(t *testing.T) {
	db, cfg := newTestDB(t)
	repo := NewUserRepository(db, cfg)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestUser("bob", 1001, 2001), service.LiteralCredential("x")))

	err := repo.Create(ctx, newTestUser("bob", 1002, 2001), service.LiteralCredential("y"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrLoginTaken))
}

func TestUserRepository_ExpressionCredential(t *testing.T) {
	db, cfg := newTestDB(t)
	repo := NewUserRepository(db, cfg)
	ctx := context.Background()

	user := newTestUser("carol", 1001, 2001)
	cred := service.ExpressionCredential("upper(?)", "plain")
	require.NoError(t, repo.Create(ctx, user, cred))

	var stored string
	require.NoError(t, db.Table("ftpuser").
		Select("passwd").
		Where("userid = ?", "carol").
		Row().Scan(&stored))
	assert.Equal(t, "PLAIN", stored, "expression credentials are evaluated by the storage engine")
}

func TestUserRepository_FindMissing(t *testing.T) {
	db, cfg := newTestDB(t)
	repo := NewUserRepository(db, cfg)
	ctx := context.Background()

	_, err := repo.FindByLogin(ctx, "ghost")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	_, err = repo.FindByID(ctx, 424242)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepository_UpdateAndDelete(t *testing.T) {
	db, cfg := newTestDB(t)
	repo := NewUserRepository(db, cfg)
	ctx := context.Background()

	user := newTestUser("dave", 1001, 2001)
	require.NoError(t, repo.Create(ctx, user, service.LiteralCredential("old")))

	user.Shell = "/bin/bash"
	user.Disabled = true
	require.NoError(t, repo.Update(ctx, user, nil))

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "/bin/bash", found.Shell)
	assert.True(t, found.Disabled)

	var stored string
	require.NoError(t, db.Table("ftpuser").
		Select("passwd").
		Where("id = ?", user.ID).
		Row().Scan(&stored))
	assert.Equal(t, "old", stored, "nil credential must leave the password untouched")

	cred := service.LiteralCredential("new")
	require.NoError(t, repo.Update(ctx, user, &cred))
	require.NoError(t, db.Table("ftpuser").
		Select("passwd").
		Where("id = ?", user.ID).
		Row().Scan(&stored))
	assert.Equal(t, "new", stored)

	require.NoError(t, repo.Delete(ctx, user.ID))
	assert.ErrorIs(t, repo.Delete(ctx, user.ID), repository.ErrUserNotFound)
}

func TestUserRepository_CountAndNextUID(t *testing.T) {
	db, cfg := newTestDB(t)
	repo := NewUserRepository(db, cfg)
	ctx := context.Background()

	next, err := repo.NextUID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), next, "empty table starts numbering at 1")

	require.NoError(t, repo.Create(ctx, newTestUser("u1", 1005, 2001), service.LiteralCredential("x")))
	disabled := newTestUser("u2", 1010, 2001)
	disabled.Disabled = true
	require.NoError(t, repo.Create(ctx, disabled, service.LiteralCredential("x")))

	next, err = repo.NextUID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1011), next)

	total, err := repo.Count(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	off, err := repo.Count(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), off)
}

func TestUserRepository_ReassignPrimaryGID(t *testing.T) {
	db, cfg := newTestDB(t)
	repo := NewUserRepository(db, cfg)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestUser("m1", 1001, 3000), service.LiteralCredential("x")))
	require.NoError(t, repo.Create(ctx, newTestUser("m2", 1002, 3000), service.LiteralCredential("x")))
	require.NoError(t, repo.Create(ctx, newTestUser("m3", 1003, 4000), service.LiteralCredential("x")))

	require.NoError(t, repo.ReassignPrimaryGID(ctx, 3000, 3500))

	moved, err := repo.ListByPrimaryGID(ctx, 3500)
	require.NoError(t, err)
	assert.Len(t, moved, 2)

	untouched, err := repo.ListByPrimaryGID(ctx, 4000)
	require.NoError(t, err)
	assert.Len(t, untouched, 1)
}

func TestGroupRepository_CreateListFind(t *testing.T) {
	db, cfg := newTestDB(t)
	repo := NewGroupRepository(db, cfg)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.Group{GID: 2002, Name: "staff"}))
	require.NoError(t, repo.Create(ctx, &entity.Group{
		GID:     2001,
		Name:    "admins",
		Members: entity.MemberList{"alice", "bob"},
	}))

	groups, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, int64(2001), groups[0].GID, "listing is ordered by gid")
	assert.Equal(t, entity.MemberList{"alice", "bob"}, groups[0].Members)

	found, err := repo.FindByGID(ctx, 2002)
	require.NoError(t, err)
	assert.Equal(t, "staff", found.Name)
	assert.Empty(t, found.Members)

	_, err = repo.FindByGID(ctx, 9999)
	assert.ErrorIs(t, err, repository.ErrGroupNotFound)
}

func TestGroupRepository_CreateDuplicateGID(t *testing.T) {
	db, cfg := newTestDB(t)
	repo := NewGroupRepository(db, cfg)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.Group{GID: 2001, Name: "staff"}))

	err := repo.Create(ctx, &entity.Group{GID: 2001, Name: "other"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrGIDTaken))
}

func TestGroupRepository_Members(t *testing.T) {
	db, cfg := newTestDB(t)
	repo := NewGroupRepository(db, cfg)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.Group{GID: 2001, Name: "staff"}))

	require.NoError(t, repo.AddMember(ctx, "alice", 2001))
	require.NoError(t, repo.AddMember(ctx, "bob", 2001))
	require.NoError(t, repo.AddMember(ctx, "alice", 2001)) // idempotent

	group, err := repo.FindByGID(ctx, 2001)
	require.NoError(t, err)
	assert.Equal(t, entity.MemberList{"alice", "bob"}, group.Members)

	// Removing "bob" must not clip the longer login "bobby".
	require.NoError(t, repo.AddMember(ctx, "bobby", 2001))
	require.NoError(t, repo.RemoveMember(ctx, "bob", 2001))

	group, err = repo.FindByGID(ctx, 2001)
	require.NoError(t, err)
	assert.Equal(t, entity.MemberList{"alice", "bobby"}, group.Members)

	require.NoError(t, repo.RemoveMember(ctx, "ghost", 2001)) // absent member is fine

	assert.ErrorIs(t, repo.AddMember(ctx, "alice", 9999), repository.ErrGroupNotFound)
}

func TestGroupRepository_CountAndNextGID(t *testing.T) {
	db, cfg := newTestDB(t)
	repo := NewGroupRepository(db, cfg)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.Group{GID: 2001, Name: "staff"}))
	require.NoError(t, repo.Create(ctx, &entity.Group{
		GID:     2005,
		Name:    "admins",
		Members: entity.MemberList{"alice"},
	}))

	next, err := repo.NextGID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2006), next)

	total, err := repo.Count(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	empty, err := repo.Count(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), empty)
}

func TestGroupRepository_UpdateGIDAndDelete(t *testing.T) {
	db, cfg := newTestDB(t)
	repo := NewGroupRepository(db, cfg)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.Group{GID: 2001, Name: "staff"}))
	require.NoError(t, repo.Create(ctx, &entity.Group{GID: 2002, Name: "admins"}))

	err := repo.UpdateGID(ctx, 2001, 2002)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrGIDTaken))

	require.NoError(t, repo.UpdateGID(ctx, 2001, 2100))
	_, err = repo.FindByGID(ctx, 2001)
	assert.ErrorIs(t, err, repository.ErrGroupNotFound)
	renumbered, err := repo.FindByGID(ctx, 2100)
	require.NoError(t, err)
	assert.Equal(t, "staff", renumbered.Name)

	assert.ErrorIs(t, repo.UpdateGID(ctx, 9999, 1), repository.ErrGroupNotFound)

	require.NoError(t, repo.Delete(ctx, 2100))
	assert.ErrorIs(t, repo.Delete(ctx, 2100), repository.ErrGroupNotFound)
}

func TestTransactionManager_RenumberPairRollsBack(t *testing.T) {
	db, cfg := newTestDB(t)
	txManager := NewTransactionManager(db, cfg)
	groups := NewGroupRepository(db, cfg)
	users := NewUserRepository(db, cfg)
	ctx := context.Background()

	require.NoError(t, groups.Create(ctx, &entity.Group{GID: 3000, Name: "staff"}))
	require.NoError(t, users.Create(ctx, newTestUser("alice", 1001, 3000), service.LiteralCredential("x")))

	boom := errors.New("boom")
	err := txManager.Execute(ctx, func(txRepoFactory repository.RepositoryFactory) error {
		if err := txRepoFactory.Groups().UpdateGID(ctx, 3000, 3500); err != nil {
			return err
		}

		return boom
	})
	assert.ErrorIs(t, err, boom)

	// The rollback leaves the group on its original gid.
	_, err = groups.FindByGID(ctx, 3000)
	require.NoError(t, err)

	err = txManager.Execute(ctx, func(txRepoFactory repository.RepositoryFactory) error {
		if err := txRepoFactory.Groups().UpdateGID(ctx, 3000, 3500); err != nil {
			return err
		}

		return txRepoFactory.Users().ReassignPrimaryGID(ctx, 3000, 3500)
	})
	require.NoError(t, err)

	moved, err := users.ListByPrimaryGID(ctx, 3500)
	require.NoError(t, err)
	assert.Len(t, moved, 1)
	_, err = groups.FindByGID(ctx, 3500)
	require.NoError(t, err)
}

func TestExistenceProber(t *testing.T) {
	db, cfg := newTestDB(t)
	probe := NewExistenceProber(db)
	groups := NewGroupRepository(db, cfg)
	ctx := context.Background()

	require.NoError(t, groups.Create(ctx, &entity.Group{GID: 2001, Name: "staff"}))

	exists, err := probe.Exists(ctx, "ftpgroup", "gid", 2001)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = probe.Exists(ctx, "ftpgroup", "gid", 9999)
	require.NoError(t, err)
	assert.False(t, exists)
}
