package models

import "time"

// DecayLogEntry is a mood journal entry.
type DecayLogEntry struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"column:user_id;type:varchar(64);not null;index" json:"-"`
	Mood      string    `gorm:"column:mood;type:varchar(32);not null" json:"mood"`
	Note      string    `gorm:"column:note;type:text" json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

func (DecayLogEntry) TableName() string { return "decay_log" }
