package policy

// Scope returns the filter predicate confining a list query over kind to the
// rows p may see. Caller filters are ANDed on top of the role scope. The
// storage collaborator applies the result to the full table of kind.
func (e *Engine) Scope(p Principal, kind ResourceKind, filters []Filter) (Predicate, error) {
	pred := e.roleScope(p, kind)
	for _, f := range filters {
		fp, err := f.toPredicate(kind)
		if err != nil {
			return Predicate{}, err
		}
		pred = And(pred, fp)
	}
	return pred, nil
}

func (e *Engine) roleScope(p Principal, kind ResourceKind) Predicate {
	switch kind {
	// ChatMessage and Notification scopes apply to every role identically.
	// Admins get no widening here: private correspondence stays private.
	case KindChatMessage:
		return Or(Eq("sender_id", p.ID), Eq("recipient_id", p.ID))
	case KindNotification:
		return Eq("recipient_id", p.ID)
	}

	if p.Role.IsAdmin() {
		return All()
	}

	switch kind {
	case KindModule:
		if p.Role.IsTeacher() {
			return Or(Eq("teacher_id", p.ID), Eq("is_active", true))
		}
		return Eq("is_active", true)

	case KindEnrollment:
		if p.Role.IsTeacher() {
			return And(Eq("is_active", true), e.taughtModules(p, "module_id"))
		}
		return And(Eq("student_id", p.ID), Eq("is_active", true))

	case KindCourseSession:
		if p.Role.IsTeacher() {
			return e.taughtModules(p, "module_id")
		}
		return e.enrolledModules(p, "module_id")

	case KindCourseResource:
		if p.Role.IsTeacher() {
			return e.taughtModules(p, "module_id")
		}
		return And(e.enrolledModules(p, "module_id"), Eq("is_public", true))

	case KindGrade:
		if p.Role.IsTeacher() {
			return e.taughtModules(p, "module_id")
		}
		return Eq("student_id", p.ID)

	case KindAnnouncement:
		// Teachers see only what they authored, not other teachers'
		// announcements in their own modules.
		if p.Role.IsTeacher() {
			return Eq("author_id", p.ID)
		}
		audience := Or(IsNull("module_id"), e.enrolledModules(p, "module_id"))
		notExpired := Or(IsNull("expiry_at"), Gt("expiry_at", e.now().UTC()))
		return And(audience, Eq("is_active", true), notExpired)
	}

	return None()
}

// enrolledModules confines field to modules p holds an active enrollment in.
func (e *Engine) enrolledModules(p Principal, field string) Predicate {
	return InKind(field, KindEnrollment, "module_id",
		And(Eq("student_id", p.ID), Eq("is_active", true)))
}

// taughtModules confines field to modules p is the assigned teacher of.
func (e *Engine) taughtModules(p Principal, field string) Predicate {
	return InKind(field, KindModule, "id", Eq("teacher_id", p.ID))
}
