package types

import (
	"time"

	"github.com/google/uuid"
)

// CourseResource is an uploaded document attached to a module. The file body
// lives in external storage; only the key is recorded here.
type CourseResource struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ModuleID   uuid.UUID `gorm:"type:uuid;not null;index;column:module_id" json:"module_id"`
	Module     *Module   `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModuleID;references:ID" json:"module,omitempty"`
	UploaderID uuid.UUID `gorm:"type:uuid;not null;column:uploader_id" json:"uploader_id"`
	Title      string    `gorm:"not null;column:title" json:"title"`
	StorageKey string    `gorm:"column:storage_key" json:"storage_key,omitempty"`
	IsPublic   bool      `gorm:"not null;default:false;column:is_public" json:"is_public"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (CourseResource) TableName() string { return "course_resource" }
