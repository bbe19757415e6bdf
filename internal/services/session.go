package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/campusconnect/campusconnect-backend/internal/pkg/logger"
	"github.com/campusconnect/campusconnect-backend/internal/policy"
	"github.com/campusconnect/campusconnect-backend/internal/repos"
	"github.com/campusconnect/campusconnect-backend/internal/types"
)

type CourseSessionService interface {
	List(ctx context.Context, p policy.Principal, filters []policy.Filter) ([]*types.CourseSession, error)
	Get(ctx context.Context, p policy.Principal, id uuid.UUID) (*types.CourseSession, error)
	Create(ctx context.Context, p policy.Principal, session *types.CourseSession) (*types.CourseSession, error)
	Update(ctx context.Context, p policy.Principal, session *types.CourseSession) (*types.CourseSession, error)
	Delete(ctx context.Context, p policy.Principal, id uuid.UUID) error
}

type courseSessionService struct {
	log         *logger.Logger
	engine      *policy.Engine
	sessionRepo repos.CourseSessionRepo
	moduleRepo  repos.ModuleRepo
}

func NewCourseSessionService(engine *policy.Engine, sessionRepo repos.CourseSessionRepo, moduleRepo repos.ModuleRepo, baseLog *logger.Logger) CourseSessionService {
	return &courseSessionService{
		log:         baseLog.With("service", "CourseSessionService"),
		engine:      engine,
		sessionRepo: sessionRepo,
		moduleRepo:  moduleRepo,
	}
}

func (s *courseSessionService) List(ctx context.Context, p policy.Principal, filters []policy.Filter) ([]*types.CourseSession, error) {
	pred, err := s.engine.Scope(p, policy.KindCourseSession, filters)
	if err != nil {
		return nil, err
	}
	return s.sessionRepo.List(ctx, nil, pred)
}

func (s *courseSessionService) Get(ctx context.Context, p policy.Principal, id uuid.UUID) (*types.CourseSession, error) {
	pred, err := s.engine.Scope(p, policy.KindCourseSession, nil)
	if err != nil {
		return nil, err
	}
	return s.sessionRepo.GetScoped(ctx, nil, id, pred)
}

func (s *courseSessionService) Create(ctx context.Context, p policy.Principal, session *types.CourseSession) (*types.CourseSession, error) {
	if !session.EndsAt.After(session.StartsAt) {
		return nil, ErrInvalidSchedule
	}
	module, err := s.moduleRepo.GetByID(ctx, nil, session.ModuleID)
	if err != nil {
		return nil, err
	}
	d := s.engine.Authorize(p, policy.ActionCreate, policy.Target{Kind: policy.KindCourseSession, Object: session, Module: module})
	if d.Denied() {
		return nil, d.Err()
	}
	session.TeacherID = p.ID
	created, err := s.sessionRepo.Create(ctx, nil, session)
	if err != nil {
		return nil, err
	}
	s.log.Info("session scheduled", "session_id", created.ID, "module_id", created.ModuleID)
	return created, nil
}

func (s *courseSessionService) Update(ctx context.Context, p policy.Principal, session *types.CourseSession) (*types.CourseSession, error) {
	if !session.EndsAt.After(session.StartsAt) {
		return nil, ErrInvalidSchedule
	}
	current, err := s.sessionRepo.GetByID(ctx, nil, session.ID)
	if err != nil {
		return nil, err
	}
	module, err := s.moduleRepo.GetByID(ctx, nil, current.ModuleID)
	if err != nil {
		return nil, err
	}
	d := s.engine.Authorize(p, policy.ActionUpdate, policy.Target{Kind: policy.KindCourseSession, Object: current, Module: module})
	if d.Denied() {
		return nil, d.Err()
	}
	if session.ModuleID != current.ModuleID {
		return nil, ErrImmutableField
	}
	session.TeacherID = current.TeacherID
	return s.sessionRepo.Update(ctx, nil, session)
}

func (s *courseSessionService) Delete(ctx context.Context, p policy.Principal, id uuid.UUID) error {
	current, err := s.sessionRepo.GetByID(ctx, nil, id)
	if err != nil {
		return err
	}
	// An admin needs no module context; resolving it can fail for them
	// without blocking the delete.
	var module *types.Module
	if !p.Role.IsAdmin() {
		module, err = s.moduleRepo.GetByID(ctx, nil, current.ModuleID)
		if err != nil {
			return err
		}
	}
	d := s.engine.Authorize(p, policy.ActionDelete, policy.Target{Kind: policy.KindCourseSession, Object: current, Module: module})
	if d.Denied() {
		return d.Err()
	}
	return s.sessionRepo.Delete(ctx, nil, id)
}
