package types

import (
	"time"

	"github.com/google/uuid"
)

type TeacherProfile struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User           *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	EmployeeNumber string     `gorm:"uniqueIndex;not null;column:employee_number" json:"employee_number"`
	Department     string     `gorm:"column:department" json:"department,omitempty"`
	HireDate       *time.Time `gorm:"column:hire_date" json:"hire_date,omitempty"`
	Specialization string     `gorm:"column:specialization" json:"specialization,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (TeacherProfile) TableName() string { return "teacher_profile" }
