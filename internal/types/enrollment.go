package types

import (
	"time"

	"github.com/google/uuid"
)

// Enrollment is a student's membership in a module. Rows are never hard
// deleted: unenrolling flips IsActive to false so grading history survives.
// At most one active row may exist per (student, module) pair; a partial
// unique index enforces this at the database level.
type Enrollment struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index;column:student_id" json:"student_id"`
	Student   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
	ModuleID  uuid.UUID `gorm:"type:uuid;not null;index;column:module_id" json:"module_id"`
	Module    *Module   `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModuleID;references:ID" json:"module,omitempty"`
	IsActive  bool      `gorm:"not null;default:true;column:is_active" json:"is_active"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Enrollment) TableName() string { return "enrollment" }
