package policy

import "fmt"

// FilterOp is the comparison a caller-supplied filter applies.
type FilterOp string

const (
	FilterEq  FilterOp = "eq"
	FilterIn  FilterOp = "in"
	FilterGte FilterOp = "gte"
	FilterLte FilterOp = "lte"
)

// Filter is an optional caller-supplied restriction (module id, date range,
// read flag). Filters are ANDed after role scoping, so they can only narrow
// visibility, never widen it. Fields are validated against a per-kind
// allowlist; anything else is rejected rather than silently ignored.
type Filter struct {
	Field  string
	Op     FilterOp
	Value  any
	Values []any
}

// filterableFields lists, per kind, the columns callers may filter on.
var filterableFields = map[ResourceKind]map[string]bool{
	KindModule: {
		"code": true, "teacher_id": true, "is_active": true, "created_at": true,
	},
	KindEnrollment: {
		"module_id": true, "student_id": true, "created_at": true,
	},
	KindCourseSession: {
		"module_id": true, "teacher_id": true, "starts_at": true, "ends_at": true,
	},
	KindCourseResource: {
		"module_id": true, "is_public": true, "created_at": true,
	},
	KindGrade: {
		"module_id": true, "student_id": true, "created_at": true,
	},
	KindAnnouncement: {
		"module_id": true, "author_id": true, "created_at": true,
	},
	KindChatMessage: {
		"sender_id": true, "recipient_id": true, "is_read": true, "created_at": true,
	},
	KindNotification: {
		"kind": true, "is_read": true, "created_at": true,
	},
}

func (f Filter) toPredicate(kind ResourceKind) (Predicate, error) {
	allowed := filterableFields[kind]
	if !allowed[f.Field] {
		return Predicate{}, fmt.Errorf("%w: %q on %s", ErrInvalidFilter, f.Field, kind)
	}
	switch f.Op {
	case FilterEq, "":
		return Eq(f.Field, f.Value), nil
	case FilterIn:
		return In(f.Field, f.Values...), nil
	case FilterGte:
		return Gte(f.Field, f.Value), nil
	case FilterLte:
		return Lte(f.Field, f.Value), nil
	}
	return Predicate{}, fmt.Errorf("%w: op %q on %s.%s", ErrInvalidFilter, f.Op, kind, f.Field)
}
