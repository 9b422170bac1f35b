package models

import "time"

type MessageRole string

// Stored roles: "user"/"rotbot" for the snarky room, "safe" for both sides of safe space.
const (
	MessageRoleUser   MessageRole = "user"
	MessageRoleRotBot MessageRole = "rotbot"
	MessageRoleSafe   MessageRole = "safe"
)

type Message struct {
	ID        string      `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID    string      `gorm:"column:user_id;type:varchar(64);not null;index:idx_messages_user_created,priority:1" json:"user_id"`
	Role      MessageRole `gorm:"column:role;type:varchar(32);not null" json:"role"`
	// FromBot separates the two sides of a safe-space conversation, which share a role.
	FromBot   bool        `gorm:"column:from_bot;not null;default:false" json:"from_bot"`
	Content   string      `gorm:"column:content;type:text;not null" json:"content"`
	CreatedAt time.Time   `gorm:"index:idx_messages_user_created,priority:2" json:"created_at"`
}

func (Message) TableName() string { return "messages" }

// DiaryEntry is RotBot's private summary of a stretch of conversation.
type DiaryEntry struct {
	ID        string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID    string    `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (DiaryEntry) TableName() string { return "diary" }
