package types

import (
	"time"

	"github.com/google/uuid"
)

type StudentProfile struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User           *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	StudentNumber  string     `gorm:"uniqueIndex;not null;column:student_number" json:"student_number"`
	EnrollmentDate *time.Time `gorm:"column:enrollment_date" json:"enrollment_date,omitempty"`
	Major          string     `gorm:"column:major" json:"major,omitempty"`
	Year           int        `gorm:"column:year" json:"year,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (StudentProfile) TableName() string { return "student_profile" }
