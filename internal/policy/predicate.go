package policy

import (
	"time"

	"github.com/google/uuid"
)

// Op enumerates the predicate primitives. The set is deliberately small:
// equality, membership, null tests, range comparisons and boolean
// composition are all the scope rules ever need.
type Op int

const (
	OpAll Op = iota
	OpNone
	OpEq
	OpIn
	OpInSubquery
	OpIsNull
	OpGt
	OpGte
	OpLt
	OpLte
	OpAnd
	OpOr
)

// Predicate is a filter over one resource kind's table, expressed as data so
// the storage collaborator can evaluate it however it likes (SQL, in-memory
// scan). Field names are the storage column names.
type Predicate struct {
	Op     Op
	Field  string
	Value  any
	Values []any
	Sub    *Subquery
	Preds  []Predicate
}

// Subquery restricts a field to values projected from another kind's rows.
// It is how membership relations ("modules the student is actively enrolled
// in") stay inside a pure predicate: the reference is symbolic and the
// storage collaborator resolves it at evaluation time.
type Subquery struct {
	Kind   ResourceKind
	Select string
	Where  Predicate
}

func All() Predicate  { return Predicate{Op: OpAll} }
func None() Predicate { return Predicate{Op: OpNone} }

func Eq(field string, value any) Predicate {
	return Predicate{Op: OpEq, Field: field, Value: value}
}

func In(field string, values ...any) Predicate {
	return Predicate{Op: OpIn, Field: field, Values: values}
}

// InKind restricts field to the values of sel over rows of kind matching
// where.
func InKind(field string, kind ResourceKind, sel string, where Predicate) Predicate {
	return Predicate{Op: OpInSubquery, Field: field, Sub: &Subquery{Kind: kind, Select: sel, Where: where}}
}

func IsNull(field string) Predicate {
	return Predicate{Op: OpIsNull, Field: field}
}

func Gt(field string, value any) Predicate {
	return Predicate{Op: OpGt, Field: field, Value: value}
}

func Gte(field string, value any) Predicate {
	return Predicate{Op: OpGte, Field: field, Value: value}
}

func Lt(field string, value any) Predicate {
	return Predicate{Op: OpLt, Field: field, Value: value}
}

func Lte(field string, value any) Predicate {
	return Predicate{Op: OpLte, Field: field, Value: value}
}

func And(preds ...Predicate) Predicate {
	return Predicate{Op: OpAnd, Preds: preds}
}

func Or(preds ...Predicate) Predicate {
	return Predicate{Op: OpOr, Preds: preds}
}

// Row is an entity snapshot keyed by column name. Nullable columns hold nil.
type Row = map[string]any

// RowSource resolves subquery references during in-memory evaluation.
type RowSource interface {
	Rows(kind ResourceKind) []Row
}

// Match evaluates the predicate against a single row. src may be nil when
// the predicate contains no subqueries.
func (p Predicate) Match(row Row, src RowSource) bool {
	switch p.Op {
	case OpAll:
		return true
	case OpNone:
		return false
	case OpEq:
		return equalValues(row[p.Field], p.Value)
	case OpIn:
		for _, v := range p.Values {
			if equalValues(row[p.Field], v) {
				return true
			}
		}
		return false
	case OpInSubquery:
		if src == nil || p.Sub == nil {
			return false
		}
		have := row[p.Field]
		if have == nil {
			return false
		}
		for _, sub := range src.Rows(p.Sub.Kind) {
			if p.Sub.Where.Match(sub, src) && equalValues(have, sub[p.Sub.Select]) {
				return true
			}
		}
		return false
	case OpIsNull:
		return isNilValue(row[p.Field])
	case OpGt, OpGte, OpLt, OpLte:
		c, ok := compareValues(row[p.Field], p.Value)
		if !ok {
			return false
		}
		switch p.Op {
		case OpGt:
			return c > 0
		case OpGte:
			return c >= 0
		case OpLt:
			return c < 0
		default:
			return c <= 0
		}
	case OpAnd:
		for _, sub := range p.Preds {
			if !sub.Match(row, src) {
				return false
			}
		}
		return true
	case OpOr:
		for _, sub := range p.Preds {
			if sub.Match(row, src) {
				return true
			}
		}
		return false
	}
	return false
}

func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case *uuid.UUID:
		return t == nil
	case *time.Time:
		return t == nil
	case *int:
		return t == nil
	}
	return false
}

// equalValues compares loosely enough to bridge pointer-nullable columns and
// their value forms.
func equalValues(a, b any) bool {
	if isNilValue(a) || isNilValue(b) {
		return isNilValue(a) && isNilValue(b)
	}
	a, b = deref(a), deref(b)
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Equal(tb)
		}
		return false
	}
	return a == b
}

// compareValues orders two values when both are times or both are numeric.
// The second return is false for incomparable operands; callers treat that
// as no match.
func compareValues(a, b any) (int, bool) {
	if isNilValue(a) || isNilValue(b) {
		return 0, false
	}
	a, b = deref(a), deref(b)
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return ta.Compare(tb), true
	}
	fa, ok := toFloat(a)
	if !ok {
		return 0, false
	}
	fb, ok := toFloat(b)
	if !ok {
		return 0, false
	}
	switch {
	case fa < fb:
		return -1, true
	case fa > fb:
		return 1, true
	}
	return 0, true
}

func deref(v any) any {
	switch t := v.(type) {
	case *uuid.UUID:
		return *t
	case *time.Time:
		return *t
	case *int:
		return *t
	}
	return v
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
