package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// NotificationKind tags the mutation that produced a notification.
type NotificationKind string

const (
	NotificationMessage      NotificationKind = "message"
	NotificationGrade        NotificationKind = "grade"
	NotificationAnnouncement NotificationKind = "announcement"
)

// Notification is system-generated, never user-authored, and strictly
// private to its recipient.
type Notification struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RecipientID uuid.UUID        `gorm:"type:uuid;not null;index;column:recipient_id" json:"recipient_id"`
	Recipient   *User            `gorm:"constraint:OnDelete:CASCADE;foreignKey:RecipientID;references:ID" json:"recipient,omitempty"`
	Kind        NotificationKind `gorm:"not null;column:kind" json:"kind"`
	RelatedKind string           `gorm:"column:related_kind" json:"related_kind,omitempty"`
	RelatedID   *uuid.UUID       `gorm:"type:uuid;column:related_id" json:"related_id,omitempty"`
	Payload     datatypes.JSON   `gorm:"column:payload;type:jsonb" json:"payload,omitempty"`
	IsRead      bool             `gorm:"not null;default:false;column:is_read" json:"is_read"`
	CreatedAt   time.Time        `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"not null;default:now()" json:"updated_at"`
}

func (Notification) TableName() string { return "notification" }
