package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/campusconnect/campusconnect-backend/internal/pkg/logger"
	"github.com/campusconnect/campusconnect-backend/internal/policy"
	"github.com/campusconnect/campusconnect-backend/internal/repos"
	"github.com/campusconnect/campusconnect-backend/internal/types"
)

type GradeService interface {
	List(ctx context.Context, p policy.Principal, filters []policy.Filter) ([]*types.Grade, error)
	Get(ctx context.Context, p policy.Principal, id uuid.UUID) (*types.Grade, error)
	Create(ctx context.Context, p policy.Principal, grade *types.Grade) (*types.Grade, error)
	Update(ctx context.Context, p policy.Principal, grade *types.Grade) (*types.Grade, error)
	Delete(ctx context.Context, p policy.Principal, id uuid.UUID) error
}

type gradeService struct {
	log        *logger.Logger
	engine     *policy.Engine
	gradeRepo  repos.GradeRepo
	moduleRepo repos.ModuleRepo
	fanout     Fanout
}

func NewGradeService(engine *policy.Engine, gradeRepo repos.GradeRepo, moduleRepo repos.ModuleRepo, fanout Fanout, baseLog *logger.Logger) GradeService {
	return &gradeService{
		log:        baseLog.With("service", "GradeService"),
		engine:     engine,
		gradeRepo:  gradeRepo,
		moduleRepo: moduleRepo,
		fanout:     fanout,
	}
}

func (s *gradeService) List(ctx context.Context, p policy.Principal, filters []policy.Filter) ([]*types.Grade, error) {
	pred, err := s.engine.Scope(p, policy.KindGrade, filters)
	if err != nil {
		return nil, err
	}
	return s.gradeRepo.List(ctx, nil, pred)
}

func (s *gradeService) Get(ctx context.Context, p policy.Principal, id uuid.UUID) (*types.Grade, error) {
	pred, err := s.engine.Scope(p, policy.KindGrade, nil)
	if err != nil {
		return nil, err
	}
	return s.gradeRepo.GetScoped(ctx, nil, id, pred)
}

func (s *gradeService) Create(ctx context.Context, p policy.Principal, grade *types.Grade) (*types.Grade, error) {
	module, err := s.moduleRepo.GetByID(ctx, nil, grade.ModuleID)
	if err != nil {
		return nil, err
	}
	d := s.engine.Authorize(p, policy.ActionCreate, policy.Target{Kind: policy.KindGrade, Object: grade, Module: module})
	if d.Denied() {
		return nil, d.Err()
	}
	grade.GraderID = p.ID
	created, err := s.gradeRepo.Create(ctx, nil, grade)
	if err != nil {
		return nil, err
	}
	s.log.Info("grade posted", "grade_id", created.ID, "module_id", created.ModuleID, "student_id", created.StudentID)
	s.fanout.GradePosted(ctx, created)
	return created, nil
}

func (s *gradeService) Update(ctx context.Context, p policy.Principal, grade *types.Grade) (*types.Grade, error) {
	current, err := s.gradeRepo.GetByID(ctx, nil, grade.ID)
	if err != nil {
		return nil, err
	}
	module, err := s.moduleRepo.GetByID(ctx, nil, current.ModuleID)
	if err != nil {
		return nil, err
	}
	d := s.engine.Authorize(p, policy.ActionUpdate, policy.Target{Kind: policy.KindGrade, Object: current, Module: module})
	if d.Denied() {
		return nil, d.Err()
	}
	if grade.ModuleID != current.ModuleID || grade.StudentID != current.StudentID {
		return nil, ErrImmutableField
	}
	grade.GraderID = current.GraderID
	return s.gradeRepo.Update(ctx, nil, grade)
}

func (s *gradeService) Delete(ctx context.Context, p policy.Principal, id uuid.UUID) error {
	current, err := s.gradeRepo.GetByID(ctx, nil, id)
	if err != nil {
		return err
	}
	var module *types.Module
	if !p.Role.IsAdmin() {
		module, err = s.moduleRepo.GetByID(ctx, nil, current.ModuleID)
		if err != nil {
			return err
		}
	}
	d := s.engine.Authorize(p, policy.ActionDelete, policy.Target{Kind: policy.KindGrade, Object: current, Module: module})
	if d.Denied() {
		return d.Err()
	}
	return s.gradeRepo.Delete(ctx, nil, id)
}
