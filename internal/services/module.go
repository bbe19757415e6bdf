package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/campusconnect/campusconnect-backend/internal/pkg/logger"
	"github.com/campusconnect/campusconnect-backend/internal/policy"
	"github.com/campusconnect/campusconnect-backend/internal/repos"
	"github.com/campusconnect/campusconnect-backend/internal/types"
)

type ModuleService interface {
	List(ctx context.Context, p policy.Principal, filters []policy.Filter) ([]*types.Module, error)
	Get(ctx context.Context, p policy.Principal, id uuid.UUID) (*types.Module, error)
	Create(ctx context.Context, p policy.Principal, module *types.Module) (*types.Module, error)
	Update(ctx context.Context, p policy.Principal, module *types.Module) (*types.Module, error)
	Delete(ctx context.Context, p policy.Principal, id uuid.UUID) error
}

type moduleService struct {
	log        *logger.Logger
	engine     *policy.Engine
	moduleRepo repos.ModuleRepo
}

func NewModuleService(engine *policy.Engine, moduleRepo repos.ModuleRepo, baseLog *logger.Logger) ModuleService {
	return &moduleService{
		log:        baseLog.With("service", "ModuleService"),
		engine:     engine,
		moduleRepo: moduleRepo,
	}
}

func (s *moduleService) List(ctx context.Context, p policy.Principal, filters []policy.Filter) ([]*types.Module, error) {
	pred, err := s.engine.Scope(p, policy.KindModule, filters)
	if err != nil {
		return nil, err
	}
	return s.moduleRepo.List(ctx, nil, pred)
}

func (s *moduleService) Get(ctx context.Context, p policy.Principal, id uuid.UUID) (*types.Module, error) {
	pred, err := s.engine.Scope(p, policy.KindModule, nil)
	if err != nil {
		return nil, err
	}
	return s.moduleRepo.GetScoped(ctx, nil, id, pred)
}

func (s *moduleService) Create(ctx context.Context, p policy.Principal, module *types.Module) (*types.Module, error) {
	d := s.engine.Authorize(p, policy.ActionCreate, policy.Target{Kind: policy.KindModule, Object: module})
	if d.Denied() {
		return nil, d.Err()
	}
	// Teachers create modules they teach; admins may assign anyone.
	if !p.Role.IsAdmin() {
		teacherID := p.ID
		module.TeacherID = &teacherID
	}
	created, err := s.moduleRepo.Create(ctx, nil, module)
	if err != nil {
		return nil, err
	}
	s.log.Info("module created", "module_id", created.ID, "code", created.Code)
	return created, nil
}

func (s *moduleService) Update(ctx context.Context, p policy.Principal, module *types.Module) (*types.Module, error) {
	current, err := s.moduleRepo.GetByID(ctx, nil, module.ID)
	if err != nil {
		return nil, err
	}
	d := s.engine.Authorize(p, policy.ActionUpdate, policy.Target{Kind: policy.KindModule, Object: current})
	if d.Denied() {
		return nil, d.Err()
	}
	return s.moduleRepo.Update(ctx, nil, module)
}

func (s *moduleService) Delete(ctx context.Context, p policy.Principal, id uuid.UUID) error {
	current, err := s.moduleRepo.GetByID(ctx, nil, id)
	if err != nil {
		return err
	}
	d := s.engine.Authorize(p, policy.ActionDelete, policy.Target{Kind: policy.KindModule, Object: current})
	if d.Denied() {
		return d.Err()
	}
	if err := s.moduleRepo.Delete(ctx, nil, id); err != nil {
		return err
	}
	s.log.Info("module deleted", "module_id", id)
	return nil
}
