package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/campusconnect/campusconnect-backend/internal/pkg/logger"
	"github.com/campusconnect/campusconnect-backend/internal/policy"
	"github.com/campusconnect/campusconnect-backend/internal/types"
)

type EnrollmentRepo interface {
	List(ctx context.Context, tx *gorm.DB, pred policy.Predicate) ([]*types.Enrollment, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Enrollment, error)
	ActiveStudentIDs(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) ([]uuid.UUID, error)

	// EnrollActive runs the capacity-checked insert of a new active
	// enrollment in one transaction. It returns a policy invariant error
	// (ModuleInactive, AlreadyEnrolled, ModuleFull) when the enrollment is
	// infeasible.
	EnrollActive(ctx context.Context, studentID, moduleID uuid.UUID) (*types.Enrollment, error)

	// Deactivate is the soft delete: the row survives with is_active=false.
	Deactivate(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	Update(ctx context.Context, tx *gorm.DB, enrollment *types.Enrollment) (*types.Enrollment, error)
}

type enrollmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	return &enrollmentRepo{db: db, log: baseLog.With("repo", "EnrollmentRepo")}
}

func (r *enrollmentRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *enrollmentRepo) List(ctx context.Context, tx *gorm.DB, pred policy.Predicate) ([]*types.Enrollment, error) {
	var results []*types.Enrollment
	if err := scoped(r.conn(tx).WithContext(ctx), pred).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *enrollmentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Enrollment, error) {
	var enrollment types.Enrollment
	if err := r.conn(tx).WithContext(ctx).Where("id = ?", id).First(&enrollment).Error; err != nil {
		return nil, notFound(err)
	}
	return &enrollment, nil
}

func (r *enrollmentRepo) ActiveStudentIDs(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.conn(tx).WithContext(ctx).
		Model(&types.Enrollment{}).
		Where("module_id = ? AND is_active", moduleID).
		Pluck("student_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// EnrollActive locks the module row for the whole check-then-insert window,
// so two concurrent attempts on the same module serialize and the loser sees
// the winner's row. The partial unique index backstops any path that skips
// the lock.
func (r *enrollmentRepo) EnrollActive(ctx context.Context, studentID, moduleID uuid.UUID) (*types.Enrollment, error) {
	var out *types.Enrollment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var module types.Module
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", moduleID).
			First(&module).Error; err != nil {
			return notFound(err)
		}

		var existing *types.Enrollment
		var found types.Enrollment
		err := tx.Where("student_id = ? AND module_id = ? AND is_active", studentID, moduleID).
			First(&found).Error
		switch {
		case err == nil:
			existing = &found
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		var activeCount int64
		if err := tx.Model(&types.Enrollment{}).
			Where("module_id = ? AND is_active", moduleID).
			Count(&activeCount).Error; err != nil {
			return err
		}

		if err := policy.CheckEnrollment(policy.EnrollmentRequest{
			Module:      &module,
			Existing:    existing,
			ActiveCount: activeCount,
		}); err != nil {
			return err
		}

		enrollment := &types.Enrollment{
			StudentID: studentID,
			ModuleID:  moduleID,
			IsActive:  true,
		}
		if err := tx.Create(enrollment).Error; err != nil {
			if isUniqueViolation(err) {
				return policy.ErrAlreadyEnrolled
			}
			return err
		}
		out = enrollment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *enrollmentRepo) Deactivate(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	res := r.conn(tx).WithContext(ctx).
		Model(&types.Enrollment{}).
		Where("id = ? AND is_active", id).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return policy.ErrNotFound
	}
	return nil
}

func (r *enrollmentRepo) Update(ctx context.Context, tx *gorm.DB, enrollment *types.Enrollment) (*types.Enrollment, error) {
	if err := r.conn(tx).WithContext(ctx).Save(enrollment).Error; err != nil {
		return nil, err
	}
	return enrollment, nil
}
