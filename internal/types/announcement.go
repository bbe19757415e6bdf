package types

import (
	"time"

	"github.com/google/uuid"
)

// Announcement targets a module's members, or everyone when ModuleID is nil
// (a "general" announcement). Expired or deactivated announcements stay in
// storage but drop out of every non-admin scope.
type Announcement struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AuthorID  uuid.UUID  `gorm:"type:uuid;not null;index;column:author_id" json:"author_id"`
	Author    *User      `gorm:"foreignKey:AuthorID;references:ID" json:"author,omitempty"`
	ModuleID  *uuid.UUID `gorm:"type:uuid;index;column:module_id" json:"module_id,omitempty"`
	Module    *Module    `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModuleID;references:ID" json:"module,omitempty"`
	Title     string     `gorm:"not null;column:title" json:"title"`
	Body      string     `gorm:"column:body" json:"body,omitempty"`
	IsActive  bool       `gorm:"not null;default:true;column:is_active" json:"is_active"`
	ExpiryAt  *time.Time `gorm:"column:expiry_at" json:"expiry_at,omitempty"`
	CreatedAt time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (Announcement) TableName() string { return "announcement" }
