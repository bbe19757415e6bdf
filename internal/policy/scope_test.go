package policy

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/campusconnect/campusconnect-backend/internal/types"
)

var scopeNow = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

func testEngine() *Engine {
	return NewEngine(WithClock(func() time.Time { return scopeNow }))
}

// world is a randomly generated entity population used to assert the
// zero-leakage property of Scope against an independently written oracle.
type world struct {
	src      memSource
	students []uuid.UUID
	teachers []uuid.UUID
	admins   []uuid.UUID
}

func newWorld(rng *rand.Rand) *world {
	w := &world{src: memSource{}}
	for i := 0; i < 6; i++ {
		w.students = append(w.students, uuid.New())
	}
	for i := 0; i < 3; i++ {
		w.teachers = append(w.teachers, uuid.New())
	}
	w.admins = append(w.admins, uuid.New())

	pick := func(ids []uuid.UUID) uuid.UUID { return ids[rng.Intn(len(ids))] }

	var modules []uuid.UUID
	for i := 0; i < 5; i++ {
		id := uuid.New()
		modules = append(modules, id)
		var teacherID any
		if rng.Intn(5) > 0 {
			tid := pick(w.teachers)
			teacherID = tid
		}
		w.src[KindModule] = append(w.src[KindModule], Row{
			"id": id, "teacher_id": teacherID,
			"is_active": rng.Intn(4) > 0,
		})
	}

	for _, s := range w.students {
		for _, m := range modules {
			if rng.Intn(2) == 0 {
				continue
			}
			w.src[KindEnrollment] = append(w.src[KindEnrollment], Row{
				"id": uuid.New(), "student_id": s, "module_id": m,
				"is_active": rng.Intn(3) > 0,
			})
		}
	}

	for i := 0; i < 8; i++ {
		m := pick(modules)
		w.src[KindCourseSession] = append(w.src[KindCourseSession], Row{
			"id": uuid.New(), "module_id": m, "teacher_id": pick(w.teachers),
		})
		w.src[KindCourseResource] = append(w.src[KindCourseResource], Row{
			"id": uuid.New(), "module_id": pick(modules),
			"is_public": rng.Intn(2) == 0,
		})
		w.src[KindGrade] = append(w.src[KindGrade], Row{
			"id": uuid.New(), "student_id": pick(w.students),
			"module_id": pick(modules), "grader_id": pick(w.teachers),
		})

		var annModule any
		if rng.Intn(3) > 0 {
			annModule = pick(modules)
		}
		var expiry any
		switch rng.Intn(3) {
		case 0:
			expiry = scopeNow.Add(time.Hour)
		case 1:
			expiry = scopeNow.Add(-time.Hour)
		}
		w.src[KindAnnouncement] = append(w.src[KindAnnouncement], Row{
			"id": uuid.New(), "author_id": pick(w.teachers),
			"module_id": annModule, "is_active": rng.Intn(4) > 0,
			"expiry_at": expiry,
		})

		everyone := append(append(append([]uuid.UUID{}, w.students...), w.teachers...), w.admins...)
		sender := pick(everyone)
		recipient := pick(everyone)
		w.src[KindChatMessage] = append(w.src[KindChatMessage], Row{
			"id": uuid.New(), "sender_id": sender, "recipient_id": recipient,
			"is_read": rng.Intn(2) == 0,
		})
		w.src[KindNotification] = append(w.src[KindNotification], Row{
			"id": uuid.New(), "recipient_id": pick(everyone),
			"kind": "message", "is_read": rng.Intn(2) == 0,
		})
	}
	return w
}

func (w *world) principals() []Principal {
	var out []Principal
	for _, id := range w.students {
		out = append(out, Principal{ID: id, Role: types.RoleStudent})
	}
	for _, id := range w.teachers {
		out = append(out, Principal{ID: id, Role: types.RoleTeacher})
	}
	for _, id := range w.admins {
		out = append(out, Principal{ID: id, Role: types.RoleAdmin})
	}
	return out
}

func (w *world) activelyEnrolled(student uuid.UUID, module any) bool {
	for _, e := range w.src[KindEnrollment] {
		if e["student_id"] == student && equalValues(e["module_id"], module) && e["is_active"] == true {
			return true
		}
	}
	return false
}

func (w *world) moduleTaughtBy(module any, teacher uuid.UUID) bool {
	for _, m := range w.src[KindModule] {
		if equalValues(m["id"], module) {
			return equalValues(m["teacher_id"], teacher)
		}
	}
	return false
}

// oracleVisible restates the visibility table by hand, straight from the
// rules, without predicates. Divergence from Scope is a leak (or a hole).
func (w *world) oracleVisible(p Principal, kind ResourceKind, row Row) bool {
	admin := p.Role.IsAdmin()
	teacher := p.Role.IsTeacher()

	switch kind {
	case KindChatMessage:
		return row["sender_id"] == p.ID || row["recipient_id"] == p.ID
	case KindNotification:
		return row["recipient_id"] == p.ID
	}
	if admin {
		return true
	}

	switch kind {
	case KindModule:
		if teacher {
			return equalValues(row["teacher_id"], p.ID) || row["is_active"] == true
		}
		return row["is_active"] == true
	case KindEnrollment:
		if teacher {
			return row["is_active"] == true && w.moduleTaughtBy(row["module_id"], p.ID)
		}
		return row["student_id"] == p.ID && row["is_active"] == true
	case KindCourseSession:
		if teacher {
			return w.moduleTaughtBy(row["module_id"], p.ID)
		}
		return w.activelyEnrolled(p.ID, row["module_id"])
	case KindCourseResource:
		if teacher {
			return w.moduleTaughtBy(row["module_id"], p.ID)
		}
		return w.activelyEnrolled(p.ID, row["module_id"]) && row["is_public"] == true
	case KindGrade:
		if teacher {
			return w.moduleTaughtBy(row["module_id"], p.ID)
		}
		return row["student_id"] == p.ID
	case KindAnnouncement:
		if teacher {
			return equalValues(row["author_id"], p.ID)
		}
		if row["is_active"] != true {
			return false
		}
		if exp, ok := row["expiry_at"].(time.Time); ok && !exp.After(scopeNow) {
			return false
		}
		return isNilValue(row["module_id"]) || w.activelyEnrolled(p.ID, row["module_id"])
	}
	return false
}

func TestScopeLeaksNothing(t *testing.T) {
	engine := testEngine()
	kinds := []ResourceKind{
		KindModule, KindEnrollment, KindCourseSession, KindCourseResource,
		KindGrade, KindAnnouncement, KindChatMessage, KindNotification,
	}

	for _, seed := range []int64{1, 7, 42} {
		w := newWorld(rand.New(rand.NewSource(seed)))
		for _, p := range w.principals() {
			for _, kind := range kinds {
				pred, err := engine.Scope(p, kind, nil)
				if err != nil {
					t.Fatalf("seed=%d Scope(%s, %s): %v", seed, p, kind, err)
				}
				for _, row := range w.src[kind] {
					got := pred.Match(row, w.src)
					want := w.oracleVisible(p, kind, row)
					if got != want {
						t.Fatalf("seed=%d principal=%s kind=%s row=%v: want=%v got=%v",
							seed, p, kind, row["id"], want, got)
					}
				}
			}
		}
	}
}

// Grade visibility must not cross students sharing a module (scenario from
// the grade-privacy requirement).
func TestScopeGradePrivacyBetweenClassmates(t *testing.T) {
	engine := testEngine()
	s1 := Principal{ID: uuid.New(), Role: types.RoleStudent}
	s2id := uuid.New()
	module := uuid.New()

	src := memSource{
		KindEnrollment: {
			Row{"id": uuid.New(), "student_id": s1.ID, "module_id": module, "is_active": true},
			Row{"id": uuid.New(), "student_id": s2id, "module_id": module, "is_active": true},
		},
	}
	own := Row{"id": uuid.New(), "student_id": s1.ID, "module_id": module}
	classmates := Row{"id": uuid.New(), "student_id": s2id, "module_id": module}

	pred, err := engine.Scope(s1, KindGrade, nil)
	if err != nil {
		t.Fatalf("Scope: %v", err)
	}
	if !pred.Match(own, src) {
		t.Fatalf("student must see their own grade")
	}
	if pred.Match(classmates, src) {
		t.Fatalf("grade of a classmate leaked through an unfiltered query")
	}
}

func TestScopeSoftDeletedEnrollmentDisappears(t *testing.T) {
	engine := testEngine()
	student := Principal{ID: uuid.New(), Role: types.RoleStudent}
	module := uuid.New()

	active := Row{"id": uuid.New(), "student_id": student.ID, "module_id": module, "is_active": true}
	retired := Row{"id": uuid.New(), "student_id": student.ID, "module_id": module, "is_active": false}

	pred, err := engine.Scope(student, KindEnrollment, nil)
	if err != nil {
		t.Fatalf("Scope: %v", err)
	}
	if !pred.Match(active, nil) {
		t.Fatalf("active enrollment must be visible to its student")
	}
	if pred.Match(retired, nil) {
		t.Fatalf("soft-deleted enrollment must drop out of the student's scope")
	}
}

func TestScopeCallerFilters(t *testing.T) {
	engine := testEngine()
	student := Principal{ID: uuid.New(), Role: types.RoleStudent}
	moduleA := uuid.New()
	moduleB := uuid.New()

	pred, err := engine.Scope(student, KindGrade, []Filter{{Field: "module_id", Value: moduleA}})
	if err != nil {
		t.Fatalf("Scope: %v", err)
	}
	inA := Row{"student_id": student.ID, "module_id": moduleA}
	inB := Row{"student_id": student.ID, "module_id": moduleB}
	if !pred.Match(inA, nil) {
		t.Fatalf("filtered module must remain visible")
	}
	if pred.Match(inB, nil) {
		t.Fatalf("caller filter must narrow the scope")
	}

	// A filter can never widen visibility past the role scope.
	other := Row{"student_id": uuid.New(), "module_id": moduleA}
	if pred.Match(other, nil) {
		t.Fatalf("filter widened visibility to another student's grade")
	}
}

func TestScopeCallerFilterOps(t *testing.T) {
	engine := testEngine()
	student := Principal{ID: uuid.New(), Role: types.RoleStudent}
	moduleA, moduleB, moduleC := uuid.New(), uuid.New(), uuid.New()

	pred, err := engine.Scope(student, KindGrade, []Filter{
		{Field: "module_id", Op: FilterIn, Values: []any{moduleA, moduleB}},
	})
	if err != nil {
		t.Fatalf("Scope: %v", err)
	}
	if !pred.Match(Row{"student_id": student.ID, "module_id": moduleB}, nil) {
		t.Fatalf("module in the filter set must stay visible")
	}
	if pred.Match(Row{"student_id": student.ID, "module_id": moduleC}, nil) {
		t.Fatalf("module outside the filter set leaked through")
	}

	// Date-range filters: gte/lte are both inclusive.
	from := scopeNow.AddDate(0, -1, 0)
	pred, err = engine.Scope(student, KindGrade, []Filter{
		{Field: "created_at", Op: FilterGte, Value: from},
		{Field: "created_at", Op: FilterLte, Value: scopeNow},
	})
	if err != nil {
		t.Fatalf("Scope: %v", err)
	}
	mk := func(at time.Time) Row {
		return Row{"student_id": student.ID, "module_id": moduleA, "created_at": at}
	}
	if !pred.Match(mk(from.Add(time.Hour)), nil) {
		t.Fatalf("grade inside the range must stay visible")
	}
	if !pred.Match(mk(from), nil) || !pred.Match(mk(scopeNow), nil) {
		t.Fatalf("range bounds must be inclusive")
	}
	if pred.Match(mk(from.Add(-time.Hour)), nil) {
		t.Fatalf("grade before the range leaked through")
	}
	if pred.Match(mk(scopeNow.Add(time.Hour)), nil) {
		t.Fatalf("grade after the range leaked through")
	}
}

func TestScopeRejectsUnknownFilterField(t *testing.T) {
	engine := testEngine()
	p := Principal{ID: uuid.New(), Role: types.RoleStudent}

	_, err := engine.Scope(p, KindGrade, []Filter{{Field: "score", Value: 10}})
	if !errors.Is(err, ErrInvalidFilter) {
		t.Fatalf("want ErrInvalidFilter, got %v", err)
	}

	_, err = engine.Scope(p, KindNotification, []Filter{{Field: "is_read", Op: "like", Value: "x"}})
	if !errors.Is(err, ErrInvalidFilter) {
		t.Fatalf("want ErrInvalidFilter for bad op, got %v", err)
	}
}
