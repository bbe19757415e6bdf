package policy

import (
	"github.com/campusconnect/campusconnect-backend/internal/types"
)

// Target is the resolved subject of a single-object action. The caller loads
// the row from storage before asking for a decision; for create, Object
// carries the proposed row. Module is the governing module for kinds whose
// authority lives there (sessions, resources, grades, announcements,
// enrollment updates) and is resolved by the caller as well.
type Target struct {
	Kind   ResourceKind
	Object any
	Module *types.Module
}

// Authorize decides whether p may perform action on t. Rules are evaluated
// in a fixed order so two implementations agree on the same reason code:
// the system-only Notification create guard first, then the admin
// short-circuit, then role checks, then ownership checks.
//
// Read decisions exist only for Module; every other kind's reads are
// governed by Scope and a single-object read is "scope predicate AND id".
func (e *Engine) Authorize(p Principal, action Action, t Target) Decision {
	// Notifications are system-generated. Nobody, admins included, creates
	// them through the request path.
	if t.Kind == KindNotification && action == ActionCreate {
		return Deny(ReasonRoleNotPermitted)
	}

	if p.Role.IsAdmin() {
		return Allow()
	}

	switch t.Kind {
	case KindModule:
		return e.authorizeModule(p, action, t)
	case KindEnrollment:
		return e.authorizeEnrollment(p, action, t)
	case KindCourseSession, KindCourseResource, KindGrade:
		return e.authorizeModuleOwned(p, action, t)
	case KindAnnouncement:
		return e.authorizeAnnouncement(p, action, t)
	case KindChatMessage:
		return e.authorizeChatMessage(p, action, t)
	case KindNotification:
		return e.authorizeNotification(p, action, t)
	}
	return Deny(ReasonRoleNotPermitted)
}

func (e *Engine) authorizeModule(p Principal, action Action, t Target) Decision {
	if !p.Role.IsTeacher() {
		return Deny(ReasonRoleNotPermitted)
	}
	switch action {
	case ActionCreate, ActionRead:
		return Allow()
	case ActionUpdate, ActionDelete:
		m, _ := t.Object.(*types.Module)
		if m.TaughtBy(p.ID) {
			return Allow()
		}
		return Deny(ReasonNotOwner)
	}
	return Deny(ReasonRoleNotPermitted)
}

func (e *Engine) authorizeEnrollment(p Principal, action Action, t Target) Decision {
	enr, _ := t.Object.(*types.Enrollment)
	switch action {
	case ActionCreate:
		// Students enroll themselves; feasibility (capacity, duplicates,
		// module state) is CheckEnrollment's job, not authorization's.
		if !p.Role.IsStudent() {
			return Deny(ReasonRoleNotPermitted)
		}
		if enr != nil && enr.StudentID == p.ID {
			return Allow()
		}
		return Deny(ReasonNotOwner)
	case ActionUpdate:
		if !p.Role.IsTeacher() {
			return Deny(ReasonRoleNotPermitted)
		}
		if t.Module.TaughtBy(p.ID) {
			return Allow()
		}
		return Deny(ReasonNotOwner)
	case ActionDelete:
		// Soft delete: the enrolling student may unenroll themselves.
		if enr != nil && enr.StudentID == p.ID {
			return Allow()
		}
		return Deny(ReasonNotOwner)
	}
	return Deny(ReasonRoleNotPermitted)
}

// authorizeModuleOwned covers sessions, resources and grades: mutations
// require module authority, reads go through Scope.
func (e *Engine) authorizeModuleOwned(p Principal, action Action, t Target) Decision {
	switch action {
	case ActionCreate, ActionUpdate, ActionDelete:
		if !p.Role.IsTeacher() {
			return Deny(ReasonRoleNotPermitted)
		}
		if t.Module.TaughtBy(p.ID) {
			return Allow()
		}
		return Deny(ReasonNotOwner)
	}
	return Deny(ReasonRoleNotPermitted)
}

func (e *Engine) authorizeAnnouncement(p Principal, action Action, t Target) Decision {
	ann, _ := t.Object.(*types.Announcement)
	switch action {
	case ActionCreate:
		if !p.Role.IsTeacher() {
			return Deny(ReasonRoleNotPermitted)
		}
		// General announcements (no module) take the teacher role alone;
		// module announcements require authority over that module.
		if t.Module == nil || t.Module.TaughtBy(p.ID) {
			return Allow()
		}
		return Deny(ReasonNotOwner)
	case ActionUpdate, ActionDelete:
		// The original author keeps update/delete rights even after losing
		// the module.
		if p.Role.IsTeacher() {
			if (ann != nil && ann.AuthorID == p.ID) || t.Module.TaughtBy(p.ID) {
				return Allow()
			}
			return Deny(ReasonNotOwner)
		}
		if ann != nil && ann.AuthorID == p.ID {
			return Allow()
		}
		return Deny(ReasonRoleNotPermitted)
	}
	return Deny(ReasonRoleNotPermitted)
}

func (e *Engine) authorizeChatMessage(p Principal, action Action, t Target) Decision {
	msg, _ := t.Object.(*types.ChatMessage)
	switch action {
	case ActionCreate:
		// Any authenticated principal may message any other user. The
		// caller forces sender to self; messaging yourself is rejected.
		if msg != nil && msg.RecipientID != p.ID {
			return Allow()
		}
		return Deny(ReasonSelfMessage)
	case ActionMarkRead:
		if msg != nil && msg.RecipientID == p.ID {
			return Allow()
		}
		return Deny(ReasonNotRecipient)
	}
	// Message content is immutable: no update or delete for anyone but
	// admins (handled by the short-circuit above).
	return Deny(ReasonRoleNotPermitted)
}

func (e *Engine) authorizeNotification(p Principal, action Action, t Target) Decision {
	n, _ := t.Object.(*types.Notification)
	if action == ActionMarkRead {
		if n != nil && n.RecipientID == p.ID {
			return Allow()
		}
		return Deny(ReasonNotRecipient)
	}
	return Deny(ReasonRoleNotPermitted)
}
