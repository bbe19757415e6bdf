package types

import (
	"time"

	"github.com/google/uuid"
)

// Grade is strictly private: the graded student, the module's teacher and
// admins are the only readers.
type Grade struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index;column:student_id" json:"student_id"`
	Student   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
	ModuleID  uuid.UUID `gorm:"type:uuid;not null;index;column:module_id" json:"module_id"`
	Module    *Module   `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModuleID;references:ID" json:"module,omitempty"`
	GraderID  uuid.UUID `gorm:"type:uuid;not null;column:grader_id" json:"grader_id"`
	Score     float64   `gorm:"not null;column:score" json:"score"`
	MaxScore  float64   `gorm:"not null;default:20;column:max_score" json:"max_score"`
	Comment   string    `gorm:"column:comment" json:"comment,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Grade) TableName() string { return "grade" }
