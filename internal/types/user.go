package types

import (
	"time"

	"github.com/google/uuid"
)

// Role is fixed at account creation. Role changes are an admin/back-office
// operation and never happen through the request path.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

func (r Role) IsStudent() bool { return r == RoleStudent }
func (r Role) IsTeacher() bool { return r == RoleTeacher }
func (r Role) IsAdmin() bool   { return r == RoleAdmin }

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null;column:username" json:"username"`
	Email     string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password  string    `gorm:"not null;column:password" json:"-"`
	FirstName string    `gorm:"column:first_name" json:"first_name"`
	LastName  string    `gorm:"column:last_name" json:"last_name"`
	Role      Role      `gorm:"not null;default:'student';column:role" json:"role"`
	Phone     string    `gorm:"column:phone" json:"phone,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string { return "user" }
