package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/campusconnect/campusconnect-backend/internal/pkg/logger"
	"github.com/campusconnect/campusconnect-backend/internal/policy"
	"github.com/campusconnect/campusconnect-backend/internal/repos"
	"github.com/campusconnect/campusconnect-backend/internal/types"
)

type CourseResourceService interface {
	List(ctx context.Context, p policy.Principal, filters []policy.Filter) ([]*types.CourseResource, error)
	Get(ctx context.Context, p policy.Principal, id uuid.UUID) (*types.CourseResource, error)
	Create(ctx context.Context, p policy.Principal, resource *types.CourseResource) (*types.CourseResource, error)
	Update(ctx context.Context, p policy.Principal, resource *types.CourseResource) (*types.CourseResource, error)
	Delete(ctx context.Context, p policy.Principal, id uuid.UUID) error
}

type courseResourceService struct {
	log          *logger.Logger
	engine       *policy.Engine
	resourceRepo repos.CourseResourceRepo
	moduleRepo   repos.ModuleRepo
}

func NewCourseResourceService(engine *policy.Engine, resourceRepo repos.CourseResourceRepo, moduleRepo repos.ModuleRepo, baseLog *logger.Logger) CourseResourceService {
	return &courseResourceService{
		log:          baseLog.With("service", "CourseResourceService"),
		engine:       engine,
		resourceRepo: resourceRepo,
		moduleRepo:   moduleRepo,
	}
}

func (s *courseResourceService) List(ctx context.Context, p policy.Principal, filters []policy.Filter) ([]*types.CourseResource, error) {
	pred, err := s.engine.Scope(p, policy.KindCourseResource, filters)
	if err != nil {
		return nil, err
	}
	return s.resourceRepo.List(ctx, nil, pred)
}

func (s *courseResourceService) Get(ctx context.Context, p policy.Principal, id uuid.UUID) (*types.CourseResource, error) {
	pred, err := s.engine.Scope(p, policy.KindCourseResource, nil)
	if err != nil {
		return nil, err
	}
	return s.resourceRepo.GetScoped(ctx, nil, id, pred)
}

func (s *courseResourceService) Create(ctx context.Context, p policy.Principal, resource *types.CourseResource) (*types.CourseResource, error) {
	module, err := s.moduleRepo.GetByID(ctx, nil, resource.ModuleID)
	if err != nil {
		return nil, err
	}
	d := s.engine.Authorize(p, policy.ActionCreate, policy.Target{Kind: policy.KindCourseResource, Object: resource, Module: module})
	if d.Denied() {
		return nil, d.Err()
	}
	resource.UploaderID = p.ID
	created, err := s.resourceRepo.Create(ctx, nil, resource)
	if err != nil {
		return nil, err
	}
	s.log.Info("resource attached", "resource_id", created.ID, "module_id", created.ModuleID)
	return created, nil
}

func (s *courseResourceService) Update(ctx context.Context, p policy.Principal, resource *types.CourseResource) (*types.CourseResource, error) {
	current, err := s.resourceRepo.GetByID(ctx, nil, resource.ID)
	if err != nil {
		return nil, err
	}
	module, err := s.moduleRepo.GetByID(ctx, nil, current.ModuleID)
	if err != nil {
		return nil, err
	}
	d := s.engine.Authorize(p, policy.ActionUpdate, policy.Target{Kind: policy.KindCourseResource, Object: current, Module: module})
	if d.Denied() {
		return nil, d.Err()
	}
	if resource.ModuleID != current.ModuleID {
		return nil, ErrImmutableField
	}
	resource.UploaderID = current.UploaderID
	return s.resourceRepo.Update(ctx, nil, resource)
}

func (s *courseResourceService) Delete(ctx context.Context, p policy.Principal, id uuid.UUID) error {
	current, err := s.resourceRepo.GetByID(ctx, nil, id)
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
	d := s.engine.Authorize(p, policy.ActionDelete, policy.Target{Kind: policy.KindCourseResource, Object: current, Module: module})
	if d.Denied() {
		return d.Err()
	}
	return s.resourceRepo.Delete(ctx, nil, id)
}
