package types

import (
	"time"

	"github.com/google/uuid"
)

// Module is a course module. TeacherID is nullable: a module can exist before
// a teacher is assigned to it.
type Module struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Code        string     `gorm:"uniqueIndex;not null;column:code" json:"code"`
	Title       string     `gorm:"not null;column:title" json:"title"`
	Description string     `gorm:"column:description" json:"description,omitempty"`
	TeacherID   *uuid.UUID `gorm:"type:uuid;index;column:teacher_id" json:"teacher_id,omitempty"`
	Teacher     *User      `gorm:"foreignKey:TeacherID;references:ID" json:"teacher,omitempty"`
	IsActive    bool       `gorm:"not null;default:true;column:is_active" json:"is_active"`
	MaxStudents *int       `gorm:"column:max_students" json:"max_students,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (Module) TableName() string { return "module" }

// TaughtBy reports whether userID is the assigned teacher of the module.
func (m *Module) TaughtBy(userID uuid.UUID) bool {
	return m != nil && m.TeacherID != nil && *m.TeacherID == userID
}

// IsFull reports capacity given the current active-enrollment count.
// A nil MaxStudents means unlimited.
func (m *Module) IsFull(activeCount int64) bool {
	return m.MaxStudents != nil && activeCount >= int64(*m.MaxStudents)
}
