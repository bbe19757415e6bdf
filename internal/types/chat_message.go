package types

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is a strict two-party direct message. There are no group
// semantics and no editing or deletion of message content.
type ChatMessage struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SenderID    uuid.UUID `gorm:"type:uuid;not null;index;column:sender_id" json:"sender_id"`
	Sender      *User     `gorm:"foreignKey:SenderID;references:ID" json:"sender,omitempty"`
	RecipientID uuid.UUID `gorm:"type:uuid;not null;index;column:recipient_id" json:"recipient_id"`
	Recipient   *User     `gorm:"foreignKey:RecipientID;references:ID" json:"recipient,omitempty"`
	Body        string    `gorm:"not null;column:body" json:"body"`
	IsRead      bool      `gorm:"not null;default:false;column:is_read" json:"is_read"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ChatMessage) TableName() string { return "chat_message" }
