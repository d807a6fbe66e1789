package postgres

import (
	"context"

	"ftpadmin/config"
	"ftpadmin/internal/domain/repository"

	"gorm.io/gorm"
)

// gormTransactionManager implements the TransactionManager interface using GORM.
type gormTransactionManager struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewTransactionManager creates a new transaction manager.
func NewTransactionManager(db *gorm.DB, cfg *config.Config) repository.TransactionManager {
	return &gormTransactionManager{db: db, cfg: cfg}
}

// Execute runs the given function within a database transaction.
func (tm *gormTransactionManager) Execute(ctx context.Context, fn func(txRepoFactory repository.RepositoryFactory) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepositoryFactory{tx: tx, cfg: tm.cfg})
	})
}

// gormRepositoryFactory hands out repositories bound to one transaction.
type gormRepositoryFactory struct {
	tx  *gorm.DB
	cfg *config.Config
}

func (f *gormRepositoryFactory) Users() repository.UserRepository {
	return NewUserRepository(f.tx, f.cfg)
}

func (f *gormRepositoryFactory) Groups() repository.GroupRepository {
	return NewGroupRepository(f.tx, f.cfg)
}
