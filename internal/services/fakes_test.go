package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/campusconnect/campusconnect-backend/internal/pkg/logger"
	"github.com/campusconnect/campusconnect-backend/internal/policy"
	"github.com/campusconnect/campusconnect-backend/internal/types"
)

func testLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// memStore is the shared backing store for the repo fakes. The single mutex
// is what makes the concurrent enrollment test honest: EnrollActive holds it
// across check and insert, mirroring the row lock the real repo takes.
type memStore struct {
	mu            sync.Mutex
	modules       map[uuid.UUID]*types.Module
	enrollments   map[uuid.UUID]*types.Enrollment
	messages      map[uuid.UUID]*types.ChatMessage
	notifications map[uuid.UUID]*types.Notification
	grades        map[uuid.UUID]*types.Grade
	announcements map[uuid.UUID]*types.Announcement
	sessions      map[uuid.UUID]*types.CourseSession
	resources     map[uuid.UUID]*types.CourseResource
}

func newMemStore() *memStore {
	return &memStore{
		modules:       map[uuid.UUID]*types.Module{},
		enrollments:   map[uuid.UUID]*types.Enrollment{},
		messages:      map[uuid.UUID]*types.ChatMessage{},
		notifications: map[uuid.UUID]*types.Notification{},
		grades:        map[uuid.UUID]*types.Grade{},
		announcements: map[uuid.UUID]*types.Announcement{},
		sessions:      map[uuid.UUID]*types.CourseSession{},
		resources:     map[uuid.UUID]*types.CourseResource{},
	}
}

// Rows implements policy.RowSource for subquery evaluation. Callers hold mu.
func (s *memStore) Rows(kind policy.ResourceKind) []policy.Row {
	var rows []policy.Row
	switch kind {
	case policy.KindModule:
		for _, m := range s.modules {
			rows = append(rows, moduleRow(m))
		}
	case policy.KindEnrollment:
		for _, e := range s.enrollments {
			rows = append(rows, enrollmentRow(e))
		}
	}
	return rows
}

func moduleRow(m *types.Module) policy.Row {
	return policy.Row{
		"id": m.ID, "code": m.Code, "teacher_id": m.TeacherID,
		"is_active": m.IsActive, "created_at": m.CreatedAt,
	}
}

func enrollmentRow(e *types.Enrollment) policy.Row {
	return policy.Row{
		"id": e.ID, "student_id": e.StudentID, "module_id": e.ModuleID,
		"is_active": e.IsActive, "created_at": e.CreatedAt,
	}
}

func messageRow(m *types.ChatMessage) policy.Row {
	return policy.Row{
		"id": m.ID, "sender_id": m.SenderID, "recipient_id": m.RecipientID,
		"is_read": m.IsRead, "created_at": m.CreatedAt,
	}
}

func notificationRow(n *types.Notification) policy.Row {
	return policy.Row{
		"id": n.ID, "recipient_id": n.RecipientID, "kind": string(n.Kind),
		"is_read": n.IsRead, "created_at": n.CreatedAt,
	}
}

func gradeRow(g *types.Grade) policy.Row {
	return policy.Row{
		"id": g.ID, "student_id": g.StudentID, "module_id": g.ModuleID,
		"created_at": g.CreatedAt,
	}
}

func sessionRow(s *types.CourseSession) policy.Row {
	return policy.Row{
		"id": s.ID, "module_id": s.ModuleID, "teacher_id": s.TeacherID,
		"starts_at": s.StartsAt, "ends_at": s.EndsAt, "created_at": s.CreatedAt,
	}
}

func resourceRow(r *types.CourseResource) policy.Row {
	return policy.Row{
		"id": r.ID, "module_id": r.ModuleID, "uploader_id": r.UploaderID,
		"is_public": r.IsPublic, "created_at": r.CreatedAt,
	}
}

func announcementRow(a *types.Announcement) policy.Row {
	return policy.Row{
		"id": a.ID, "author_id": a.AuthorID, "module_id": a.ModuleID,
		"is_active": a.IsActive, "expiry_at": a.ExpiryAt, "created_at": a.CreatedAt,
	}
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

type fakeModuleRepo struct{ s *memStore }

func (r *fakeModuleRepo) List(ctx context.Context, tx *gorm.DB, pred policy.Predicate) ([]*types.Module, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*types.Module
	for _, m := range r.s.modules {
		if pred.Match(moduleRow(m), r.s) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeModuleRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Module, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.modules[id]
	if !ok {
		return nil, policy.ErrNotFound
	}
	return m, nil
}

func (r *fakeModuleRepo) GetScoped(ctx context.Context, tx *gorm.DB, id uuid.UUID, pred policy.Predicate) (*types.Module, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.modules[id]
	if !ok || !pred.Match(moduleRow(m), r.s) {
		return nil, policy.ErrNotFound
	}
	return m, nil
}

func (r *fakeModuleRepo) Create(ctx context.Context, tx *gorm.DB, module *types.Module) (*types.Module, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&module.ID)
	r.s.modules[module.ID] = module
	return module, nil
}

func (r *fakeModuleRepo) Update(ctx context.Context, tx *gorm.DB, module *types.Module) (*types.Module, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.modules[module.ID]; !ok {
		return nil, policy.ErrNotFound
	}
	r.s.modules[module.ID] = module
	return module, nil
}

func (r *fakeModuleRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.modules[id]; !ok {
		return policy.ErrNotFound
	}
	delete(r.s.modules, id)
	return nil
}

func (r *fakeModuleRepo) ActiveEnrollmentCount(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.countActiveLocked(moduleID), nil
}

func (s *memStore) countActiveLocked(moduleID uuid.UUID) int64 {
	var n int64
	for _, e := range s.enrollments {
		if e.ModuleID == moduleID && e.IsActive {
			n++
		}
	}
	return n
}

type fakeEnrollmentRepo struct{ s *memStore }

func (r *fakeEnrollmentRepo) List(ctx context.Context, tx *gorm.DB, pred policy.Predicate) ([]*types.Enrollment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*types.Enrollment
	for _, e := range r.s.enrollments {
		if pred.Match(enrollmentRow(e), r.s) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEnrollmentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Enrollment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.enrollments[id]
	if !ok {
		return nil, policy.ErrNotFound
	}
	return e, nil
}

func (r *fakeEnrollmentRepo) ActiveStudentIDs(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []uuid.UUID
	for _, e := range r.s.enrollments {
		if e.ModuleID == moduleID && e.IsActive {
			ids = append(ids, e.StudentID)
		}
	}
	return ids, nil
}

func (r *fakeEnrollmentRepo) EnrollActive(ctx context.Context, studentID, moduleID uuid.UUID) (*types.Enrollment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	module := r.s.modules[moduleID]
	var existing *types.Enrollment
	for _, e := range r.s.enrollments {
		if e.StudentID == studentID && e.ModuleID == moduleID && e.IsActive {
			existing = e
			break
		}
	}
	req := policy.EnrollmentRequest{
		Module:      module,
		Existing:    existing,
		ActiveCount: r.s.countActiveLocked(moduleID),
	}
	if err := policy.CheckEnrollment(req); err != nil {
		return nil, err
	}
	e := &types.Enrollment{ID: uuid.New(), StudentID: studentID, ModuleID: moduleID, IsActive: true}
	r.s.enrollments[e.ID] = e
	return e, nil
}

func (r *fakeEnrollmentRepo) Deactivate(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.enrollments[id]
	if !ok {
		return policy.ErrNotFound
	}
	e.IsActive = false
	return nil
}

func (r *fakeEnrollmentRepo) Update(ctx context.Context, tx *gorm.DB, enrollment *types.Enrollment) (*types.Enrollment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.enrollments[enrollment.ID]; !ok {
		return nil, policy.ErrNotFound
	}
	r.s.enrollments[enrollment.ID] = enrollment
	return enrollment, nil
}

type fakeChatRepo struct{ s *memStore }

func (r *fakeChatRepo) List(ctx context.Context, tx *gorm.DB, pred policy.Predicate) ([]*types.ChatMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*types.ChatMessage
	for _, m := range r.s.messages {
		if pred.Match(messageRow(m), r.s) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeChatRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ChatMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.messages[id]
	if !ok {
		return nil, policy.ErrNotFound
	}
	return m, nil
}

func (r *fakeChatRepo) GetScoped(ctx context.Context, tx *gorm.DB, id uuid.UUID, pred policy.Predicate) (*types.ChatMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.messages[id]
	if !ok || !pred.Match(messageRow(m), r.s) {
		return nil, policy.ErrNotFound
	}
	return m, nil
}

func (r *fakeChatRepo) Create(ctx context.Context, tx *gorm.DB, message *types.ChatMessage) (*types.ChatMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&message.ID)
	r.s.messages[message.ID] = message
	return message, nil
}

func (r *fakeChatRepo) MarkRead(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.messages[id]
	if !ok {
		return policy.ErrNotFound
	}
	m.IsRead = true
	return nil
}

type fakeNotificationRepo struct{ s *memStore }

func (r *fakeNotificationRepo) List(ctx context.Context, tx *gorm.DB, pred policy.Predicate) ([]*types.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*types.Notification
	for _, n := range r.s.notifications {
		if pred.Match(notificationRow(n), r.s) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok {
		return nil, policy.ErrNotFound
	}
	return n, nil
}

func (r *fakeNotificationRepo) Create(ctx context.Context, tx *gorm.DB, notification *types.Notification) (*types.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&notification.ID)
	r.s.notifications[notification.ID] = notification
	return notification, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok {
		return policy.ErrNotFound
	}
	n.IsRead = true
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, tx *gorm.DB, recipientID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, notif := range r.s.notifications {
		if notif.RecipientID == recipientID && !notif.IsRead {
			notif.IsRead = true
			n++
		}
	}
	return n, nil
}

type fakeGradeRepo struct{ s *memStore }

func (r *fakeGradeRepo) List(ctx context.Context, tx *gorm.DB, pred policy.Predicate) ([]*types.Grade, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*types.Grade
	for _, g := range r.s.grades {
		if pred.Match(gradeRow(g), r.s) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *fakeGradeRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Grade, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.grades[id]
	if !ok {
		return nil, policy.ErrNotFound
	}
	return g, nil
}

func (r *fakeGradeRepo) GetScoped(ctx context.Context, tx *gorm.DB, id uuid.UUID, pred policy.Predicate) (*types.Grade, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.grades[id]
	if !ok || !pred.Match(gradeRow(g), r.s) {
		return nil, policy.ErrNotFound
	}
	return g, nil
}

func (r *fakeGradeRepo) Create(ctx context.Context, tx *gorm.DB, grade *types.Grade) (*types.Grade, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&grade.ID)
	r.s.grades[grade.ID] = grade
	return grade, nil
}

func (r *fakeGradeRepo) Update(ctx context.Context, tx *gorm.DB, grade *types.Grade) (*types.Grade, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.grades[grade.ID]; !ok {
		return nil, policy.ErrNotFound
	}
	r.s.grades[grade.ID] = grade
	return grade, nil
}

func (r *fakeGradeRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.grades[id]; !ok {
		return policy.ErrNotFound
	}
	delete(r.s.grades, id)
	return nil
}

type fakeSessionRepo struct{ s *memStore }

func (r *fakeSessionRepo) List(ctx context.Context, tx *gorm.DB, pred policy.Predicate) ([]*types.CourseSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*types.CourseSession
	for _, sess := range r.s.sessions {
		if pred.Match(sessionRow(sess), r.s) {
			out = append(out, sess)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CourseSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[id]
	if !ok {
		return nil, policy.ErrNotFound
	}
	return sess, nil
}

func (r *fakeSessionRepo) GetScoped(ctx context.Context, tx *gorm.DB, id uuid.UUID, pred policy.Predicate) (*types.CourseSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[id]
	if !ok || !pred.Match(sessionRow(sess), r.s) {
		return nil, policy.ErrNotFound
	}
	return sess, nil
}

func (r *fakeSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *types.CourseSession) (*types.CourseSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&session.ID)
	r.s.sessions[session.ID] = session
	return session, nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, tx *gorm.DB, session *types.CourseSession) (*types.CourseSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sessions[session.ID]; !ok {
		return nil, policy.ErrNotFound
	}
	r.s.sessions[session.ID] = session
	return session, nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sessions[id]; !ok {
		return policy.ErrNotFound
	}
	delete(r.s.sessions, id)
	return nil
}

type fakeResourceRepo struct{ s *memStore }

func (r *fakeResourceRepo) List(ctx context.Context, tx *gorm.DB, pred policy.Predicate) ([]*types.CourseResource, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*types.CourseResource
	for _, res := range r.s.resources {
		if pred.Match(resourceRow(res), r.s) {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *fakeResourceRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CourseResource, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.resources[id]
	if !ok {
		return nil, policy.ErrNotFound
	}
	return res, nil
}

func (r *fakeResourceRepo) GetScoped(ctx context.Context, tx *gorm.DB, id uuid.UUID, pred policy.Predicate) (*types.CourseResource, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.resources[id]
	if !ok || !pred.Match(resourceRow(res), r.s) {
		return nil, policy.ErrNotFound
	}
	return res, nil
}

func (r *fakeResourceRepo) Create(ctx context.Context, tx *gorm.DB, resource *types.CourseResource) (*types.CourseResource, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&resource.ID)
	r.s.resources[resource.ID] = resource
	return resource, nil
}

func (r *fakeResourceRepo) Update(ctx context.Context, tx *gorm.DB, resource *types.CourseResource) (*types.CourseResource, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.resources[resource.ID]; !ok {
		return nil, policy.ErrNotFound
	}
	r.s.resources[resource.ID] = resource
	return resource, nil
}

func (r *fakeResourceRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.resources[id]; !ok {
		return policy.ErrNotFound
	}
	delete(r.s.resources, id)
	return nil
}

type fakeAnnouncementRepo struct{ s *memStore }

func (r *fakeAnnouncementRepo) List(ctx context.Context, tx *gorm.DB, pred policy.Predicate) ([]*types.Announcement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*types.Announcement
	for _, a := range r.s.announcements {
		if pred.Match(announcementRow(a), r.s) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAnnouncementRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Announcement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.announcements[id]
	if !ok {
		return nil, policy.ErrNotFound
	}
	return a, nil
}

func (r *fakeAnnouncementRepo) GetScoped(ctx context.Context, tx *gorm.DB, id uuid.UUID, pred policy.Predicate) (*types.Announcement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.announcements[id]
	if !ok || !pred.Match(announcementRow(a), r.s) {
		return nil, policy.ErrNotFound
	}
	return a, nil
}

func (r *fakeAnnouncementRepo) Create(ctx context.Context, tx *gorm.DB, announcement *types.Announcement) (*types.Announcement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&announcement.ID)
	r.s.announcements[announcement.ID] = announcement
	return announcement, nil
}

func (r *fakeAnnouncementRepo) Update(ctx context.Context, tx *gorm.DB, announcement *types.Announcement) (*types.Announcement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.announcements[announcement.ID]; !ok {
		return nil, policy.ErrNotFound
	}
	r.s.announcements[announcement.ID] = announcement
	return announcement, nil
}

func (r *fakeAnnouncementRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.announcements[id]; !ok {
		return policy.ErrNotFound
	}
	delete(r.s.announcements, id)
	return nil
}

// recordingDispatch captures deliveries. err, when set, fails every call.
type recordingDispatch struct {
	mu         sync.Mutex
	err        error
	enqueued   []types.Notification
	broadcasts []types.NotificationKind
}

func (d *recordingDispatch) Enqueue(ctx context.Context, recipientID uuid.UUID, kind types.NotificationKind, related string, relatedID uuid.UUID, payload map[string]any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	rid := relatedID
	d.enqueued = append(d.enqueued, types.Notification{
		RecipientID: recipientID,
		Kind:        kind,
		RelatedKind: related,
		RelatedID:   &rid,
	})
	return nil
}

func (d *recordingDispatch) Broadcast(ctx context.Context, kind types.NotificationKind, payload map[string]any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.broadcasts = append(d.broadcasts, kind)
	return nil
}

func (d *recordingDispatch) sent() []types.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]types.Notification, len(d.enqueued))
	copy(out, d.enqueued)
	return out
}
