package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/campusconnect/campusconnect-backend/internal/pkg/logger"
	"github.com/campusconnect/campusconnect-backend/internal/policy"
	"github.com/campusconnect/campusconnect-backend/internal/repos"
	"github.com/campusconnect/campusconnect-backend/internal/types"
)

type EnrollmentService interface {
	List(ctx context.Context, p policy.Principal, filters []policy.Filter) ([]*types.Enrollment, error)
	Enroll(ctx context.Context, p policy.Principal, moduleID uuid.UUID) (*types.Enrollment, error)
	Unenroll(ctx context.Context, p policy.Principal, enrollmentID uuid.UUID) error
	SetActive(ctx context.Context, p policy.Principal, enrollmentID uuid.UUID, active bool) (*types.Enrollment, error)
}

type enrollmentService struct {
	log            *logger.Logger
	engine         *policy.Engine
	enrollmentRepo repos.EnrollmentRepo
	moduleRepo     repos.ModuleRepo
}

func NewEnrollmentService(engine *policy.Engine, enrollmentRepo repos.EnrollmentRepo, moduleRepo repos.ModuleRepo, baseLog *logger.Logger) EnrollmentService {
	return &enrollmentService{
		log:            baseLog.With("service", "EnrollmentService"),
		engine:         engine,
		enrollmentRepo: enrollmentRepo,
		moduleRepo:     moduleRepo,
	}
}

func (s *enrollmentService) List(ctx context.Context, p policy.Principal, filters []policy.Filter) ([]*types.Enrollment, error) {
	pred, err := s.engine.Scope(p, policy.KindEnrollment, filters)
	if err != nil {
		return nil, err
	}
	return s.enrollmentRepo.List(ctx, nil, pred)
}

func (s *enrollmentService) Enroll(ctx context.Context, p policy.Principal, moduleID uuid.UUID) (*types.Enrollment, error) {
	proposed := &types.Enrollment{StudentID: p.ID, ModuleID: moduleID, IsActive: true}
	d := s.engine.Authorize(p, policy.ActionCreate, policy.Target{Kind: policy.KindEnrollment, Object: proposed})
	if d.Denied() {
		return nil, d.Err()
	}
	// EnrollActive runs the invariant check inside a module row lock so the
	// check-then-insert window cannot oversubscribe.
	created, err := s.enrollmentRepo.EnrollActive(ctx, p.ID, moduleID)
	if err != nil {
		return nil, err
	}
	s.log.Info("student enrolled", "student_id", p.ID, "module_id", moduleID)
	return created, nil
}

func (s *enrollmentService) Unenroll(ctx context.Context, p policy.Principal, enrollmentID uuid.UUID) error {
	current, err := s.enrollmentRepo.GetByID(ctx, nil, enrollmentID)
	if err != nil {
		return err
	}
	d := s.engine.Authorize(p, policy.ActionDelete, policy.Target{Kind: policy.KindEnrollment, Object: current})
	if d.Denied() {
		return d.Err()
	}
	if err := s.enrollmentRepo.Deactivate(ctx, nil, enrollmentID); err != nil {
		return err
	}
	s.log.Info("student unenrolled", "enrollment_id", enrollmentID, "student_id", current.StudentID)
	return nil
}

// SetActive is the teacher-side toggle. Reactivating an enrollment re-runs
// the same feasibility checks as a fresh enroll.
func (s *enrollmentService) SetActive(ctx context.Context, p policy.Principal, enrollmentID uuid.UUID, active bool) (*types.Enrollment, error) {
	current, err := s.enrollmentRepo.GetByID(ctx, nil, enrollmentID)
	if err != nil {
		return nil, err
	}
	module, err := s.moduleRepo.GetByID(ctx, nil, current.ModuleID)
	if err != nil {
		return nil, err
	}
	d := s.engine.Authorize(p, policy.ActionUpdate, policy.Target{Kind: policy.KindEnrollment, Object: current, Module: module})
	if d.Denied() {
		return nil, d.Err()
	}
	if active && !current.IsActive {
		count, err := s.moduleRepo.ActiveEnrollmentCount(ctx, nil, current.ModuleID)
		if err != nil {
			return nil, err
		}
		if err := policy.CheckEnrollment(policy.EnrollmentRequest{Module: module, ActiveCount: count}); err != nil {
			return nil, err
		}
	}
	current.IsActive = active
	return s.enrollmentRepo.Update(ctx, nil, current)
}
