package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusconnect/campusconnect-backend/internal/pkg/logger"
	"github.com/campusconnect/campusconnect-backend/internal/policy"
	"github.com/campusconnect/campusconnect-backend/internal/types"
)

type ModuleRepo interface {
	List(ctx context.Context, tx *gorm.DB, pred policy.Predicate) ([]*types.Module, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Module, error)
	GetScoped(ctx context.Context, tx *gorm.DB, id uuid.UUID, pred policy.Predicate) (*types.Module, error)
	Create(ctx context.Context, tx *gorm.DB, module *types.Module) (*types.Module, error)
	Update(ctx context.Context, tx *gorm.DB, module *types.Module) (*types.Module, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	ActiveEnrollmentCount(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) (int64, error)
}

type moduleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModuleRepo(db *gorm.DB, baseLog *logger.Logger) ModuleRepo {
	return &moduleRepo{db: db, log: baseLog.With("repo", "ModuleRepo")}
}

func (r *moduleRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *moduleRepo) List(ctx context.Context, tx *gorm.DB, pred policy.Predicate) ([]*types.Module, error) {
	var results []*types.Module
	if err := scoped(r.conn(tx).WithContext(ctx), pred).
		Order("code").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *moduleRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Module, error) {
	var module types.Module
	if err := r.conn(tx).WithContext(ctx).Where("id = ?", id).First(&module).Error; err != nil {
		return nil, notFound(err)
	}
	return &module, nil
}

func (r *moduleRepo) GetScoped(ctx context.Context, tx *gorm.DB, id uuid.UUID, pred policy.Predicate) (*types.Module, error) {
	var module types.Module
	if err := scoped(r.conn(tx).WithContext(ctx), pred).
		Where("id = ?", id).
		First(&module).Error; err != nil {
		return nil, notFound(err)
	}
	return &module, nil
}

func (r *moduleRepo) Create(ctx context.Context, tx *gorm.DB, module *types.Module) (*types.Module, error) {
	if err := r.conn(tx).WithContext(ctx).Create(module).Error; err != nil {
		return nil, err
	}
	return module, nil
}

func (r *moduleRepo) Update(ctx context.Context, tx *gorm.DB, module *types.Module) (*types.Module, error) {
	if err := r.conn(tx).WithContext(ctx).Save(module).Error; err != nil {
		return nil, err
	}
	return module, nil
}

func (r *moduleRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	res := r.conn(tx).WithContext(ctx).Where("id = ?", id).Delete(&types.Module{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return policy.ErrNotFound
	}
	return nil
}

func (r *moduleRepo) ActiveEnrollmentCount(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) (int64, error) {
	var count int64
	if err := r.conn(tx).WithContext(ctx).
		Model(&types.Enrollment{}).
		Where("module_id = ? AND is_active", moduleID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
