package models

import "time"

// Personality is a selectable RotBot persona. Name is unique and doubles as
// the join key carried in legacy checkout metadata.
type Personality struct {
	ID            string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Name          string    `gorm:"column:name;type:varchar(128);not null;uniqueIndex" json:"name"`
	Tagline       string    `gorm:"column:tagline;type:text" json:"tagline"`
	Description   string    `gorm:"column:description;type:text" json:"description"`
	IsPremium     bool      `gorm:"column:is_premium;not null;default:false" json:"is_premium"`
	SystemMessage string    `gorm:"column:system_message;type:text" json:"-"`
	AvatarURL     *string   `gorm:"column:avatar_url;type:text" json:"avatar_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Personality) TableName() string { return "personalities" }

// UserPersonality is a personality unlocked by a one-time purchase.
type UserPersonality struct {
	UserID        string    `gorm:"column:user_id;type:varchar(64);primaryKey" json:"user_id"`
	PersonalityID string    `gorm:"column:personality_id;type:uuid;primaryKey" json:"personality_id"`
	CreatedAt     time.Time `json:"created_at"`
}

func (UserPersonality) TableName() string { return "user_personalities" }

// Profile holds per-user preferences; the user row itself lives in the auth service.
type Profile struct {
	UserID                string    `gorm:"column:user_id;type:varchar(64);primaryKey" json:"user_id"`
	DisplayName           string    `gorm:"column:display_name;type:varchar(128)" json:"display_name"`
	SelectedPersonalityID *string   `gorm:"column:selected_personality_id;type:uuid" json:"selected_personality_id"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }
