// Package repos is the storage collaborator: per-entity repositories over
// GORM that apply policy predicates to queries. The policy engine never
// touches the database; repos compile its Predicate values to SQL here.
package repos

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/campusconnect/campusconnect-backend/internal/policy"
	"github.com/campusconnect/campusconnect-backend/internal/types"
)

// kindTable maps a policy resource kind to its table name.
func kindTable(kind policy.ResourceKind) string {
	switch kind {
	case policy.KindModule:
		return types.Module{}.TableName()
	case policy.KindEnrollment:
		return types.Enrollment{}.TableName()
	case policy.KindCourseSession:
		return types.CourseSession{}.TableName()
	case policy.KindCourseResource:
		return types.CourseResource{}.TableName()
	case policy.KindGrade:
		return types.Grade{}.TableName()
	case policy.KindAnnouncement:
		return types.Announcement{}.TableName()
	case policy.KindChatMessage:
		return types.ChatMessage{}.TableName()
	case policy.KindNotification:
		return types.Notification{}.TableName()
	}
	return ""
}

// predicateSQL compiles a policy predicate to a SQL condition with
// positional placeholders. Field names come from the fixed policy tables and
// the per-kind filter allowlist, never from raw request input.
func predicateSQL(p policy.Predicate) (string, []any) {
	switch p.Op {
	case policy.OpAll:
		return "1=1", nil
	case policy.OpNone:
		return "1=0", nil
	case policy.OpEq:
		return p.Field + " = ?", []any{p.Value}
	case policy.OpIn:
		return p.Field + " IN ?", []any{anySlice(p.Values)}
	case policy.OpInSubquery:
		where, args := predicateSQL(p.Sub.Where)
		sql := fmt.Sprintf("%s IN (SELECT %s FROM %s WHERE %s)",
			p.Field, p.Sub.Select, kindTable(p.Sub.Kind), where)
		return sql, args
	case policy.OpIsNull:
		return p.Field + " IS NULL", nil
	case policy.OpGt:
		return p.Field + " > ?", []any{p.Value}
	case policy.OpGte:
		return p.Field + " >= ?", []any{p.Value}
	case policy.OpLt:
		return p.Field + " < ?", []any{p.Value}
	case policy.OpLte:
		return p.Field + " <= ?", []any{p.Value}
	case policy.OpAnd:
		return joinPreds(p.Preds, " AND ")
	case policy.OpOr:
		return joinPreds(p.Preds, " OR ")
	}
	return "1=0", nil
}

func joinPreds(preds []policy.Predicate, sep string) (string, []any) {
	if len(preds) == 0 {
		// An empty conjunction is vacuously true, an empty disjunction
		// vacuously false; AND with no operands only appears when a scope
		// carries no caller filters.
		if sep == " AND " {
			return "1=1", nil
		}
		return "1=0", nil
	}
	parts := make([]string, 0, len(preds))
	var args []any
	for _, sub := range preds {
		sql, subArgs := predicateSQL(sub)
		parts = append(parts, "("+sql+")")
		args = append(args, subArgs...)
	}
	return strings.Join(parts, sep), args
}

func anySlice(values []any) []any {
	if values == nil {
		return []any{}
	}
	return values
}

// scoped applies a compiled policy predicate to a query.
func scoped(tx *gorm.DB, pred policy.Predicate) *gorm.DB {
	sql, args := predicateSQL(pred)
	return tx.Where(sql, args...)
}
