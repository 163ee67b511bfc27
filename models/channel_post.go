package models

import "time"

// ChannelPost is a text excerpt from the broadcast channel associated with
// the group. The gateway records channel posts as they arrive; the most
// recent few are folded into the knowledge snapshot as "channel info".
type ChannelPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ChatID    int64     `gorm:"index" json:"chat_id"`
	MessageID int64     `json:"message_id"`
	Text      string    `gorm:"type:text" json:"text"`
	PostedAt  time.Time `gorm:"index" json:"posted_at"`
}

// TableName specifies the table name for the ChannelPost model.
func (ChannelPost) TableName() string {
	return "channel_posts"
}
