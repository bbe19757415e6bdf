package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/campusconnect/campusconnect-backend/internal/pkg/logger"
	"github.com/campusconnect/campusconnect-backend/internal/policy"
	"github.com/campusconnect/campusconnect-backend/internal/repos"
	"github.com/campusconnect/campusconnect-backend/internal/types"
)

type AnnouncementService interface {
	List(ctx context.Context, p policy.Principal, filters []policy.Filter) ([]*types.Announcement, error)
	Get(ctx context.Context, p policy.Principal, id uuid.UUID) (*types.Announcement, error)
	Create(ctx context.Context, p policy.Principal, ann *types.Announcement) (*types.Announcement, error)
	Update(ctx context.Context, p policy.Principal, ann *types.Announcement) (*types.Announcement, error)
	Delete(ctx context.Context, p policy.Principal, id uuid.UUID) error
}

type announcementService struct {
	log              *logger.Logger
	engine           *policy.Engine
	announcementRepo repos.AnnouncementRepo
	moduleRepo       repos.ModuleRepo
	fanout           Fanout
}

func NewAnnouncementService(engine *policy.Engine, announcementRepo repos.AnnouncementRepo, moduleRepo repos.ModuleRepo, fanout Fanout, baseLog *logger.Logger) AnnouncementService {
	return &announcementService{
		log:              baseLog.With("service", "AnnouncementService"),
		engine:           engine,
		announcementRepo: announcementRepo,
		moduleRepo:       moduleRepo,
		fanout:           fanout,
	}
}

func (s *announcementService) List(ctx context.Context, p policy.Principal, filters []policy.Filter) ([]*types.Announcement, error) {
	pred, err := s.engine.Scope(p, policy.KindAnnouncement, filters)
	if err != nil {
		return nil, err
	}
	return s.announcementRepo.List(ctx, nil, pred)
}

func (s *announcementService) Get(ctx context.Context, p policy.Principal, id uuid.UUID) (*types.Announcement, error) {
	pred, err := s.engine.Scope(p, policy.KindAnnouncement, nil)
	if err != nil {
		return nil, err
	}
	return s.announcementRepo.GetScoped(ctx, nil, id, pred)
}

func (s *announcementService) Create(ctx context.Context, p policy.Principal, ann *types.Announcement) (*types.Announcement, error) {
	// Module announcements need authority over the target module; general
	// ones only the teacher role.
	var module *types.Module
	if ann.ModuleID != nil {
		var err error
		module, err = s.moduleRepo.GetByID(ctx, nil, *ann.ModuleID)
		if err != nil {
			return nil, err
		}
	}
	d := s.engine.Authorize(p, policy.ActionCreate, policy.Target{Kind: policy.KindAnnouncement, Object: ann, Module: module})
	if d.Denied() {
		return nil, d.Err()
	}
	ann.AuthorID = p.ID
	created, err := s.announcementRepo.Create(ctx, nil, ann)
	if err != nil {
		return nil, err
	}
	s.log.Info("announcement published", "announcement_id", created.ID)
	if created.IsActive {
		s.fanout.AnnouncementPublished(ctx, created)
	}
	return created, nil
}

func (s *announcementService) Update(ctx context.Context, p policy.Principal, ann *types.Announcement) (*types.Announcement, error) {
	current, err := s.announcementRepo.GetByID(ctx, nil, ann.ID)
	if err != nil {
		return nil, err
	}
	module, err := s.governingModule(ctx, p, current)
	if err != nil {
		return nil, err
	}
	d := s.engine.Authorize(p, policy.ActionUpdate, policy.Target{Kind: policy.KindAnnouncement, Object: current, Module: module})
	if d.Denied() {
		return nil, d.Err()
	}
	if !sameModuleRef(ann.ModuleID, current.ModuleID) {
		return nil, ErrImmutableField
	}
	ann.AuthorID = current.AuthorID
	return s.announcementRepo.Update(ctx, nil, ann)
}

func (s *announcementService) Delete(ctx context.Context, p policy.Principal, id uuid.UUID) error {
	current, err := s.announcementRepo.GetByID(ctx, nil, id)
	if err != nil {
		return err
	}
	module, err := s.governingModule(ctx, p, current)
	if err != nil {
		return err
	}
	d := s.engine.Authorize(p, policy.ActionDelete, policy.Target{Kind: policy.KindAnnouncement, Object: current, Module: module})
	if d.Denied() {
		return d.Err()
	}
	return s.announcementRepo.Delete(ctx, nil, id)
}

func sameModuleRef(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s *announcementService) governingModule(ctx context.Context, p policy.Principal, ann *types.Announcement) (*types.Module, error) {
	if p.Role.IsAdmin() || ann.ModuleID == nil {
		return nil, nil
	}
	return s.moduleRepo.GetByID(ctx, nil, *ann.ModuleID)
}
