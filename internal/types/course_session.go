package types

import (
	"time"

	"github.com/google/uuid"
)

// CourseSession is a scheduled teaching slot of a module.
type CourseSession struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ModuleID  uuid.UUID `gorm:"type:uuid;not null;index;column:module_id" json:"module_id"`
	Module    *Module   `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModuleID;references:ID" json:"module,omitempty"`
	TeacherID uuid.UUID `gorm:"type:uuid;not null;index;column:teacher_id" json:"teacher_id"`
	Teacher   *User     `gorm:"foreignKey:TeacherID;references:ID" json:"teacher,omitempty"`
	Title     string    `gorm:"column:title" json:"title,omitempty"`
	Room      string    `gorm:"column:room" json:"room,omitempty"`
	StartsAt  time.Time `gorm:"not null;column:starts_at" json:"starts_at"`
	EndsAt    time.Time `gorm:"not null;column:ends_at" json:"ends_at"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (CourseSession) TableName() string { return "course_session" }
