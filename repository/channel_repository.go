package repository

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/anasco119/QueriesShot/models"
)

// ChannelRepository stores excerpts of broadcast-channel posts and serves
// the most recent ones for the knowledge snapshot.
type ChannelRepository interface {
	Record(chatID, messageID int64, text string, postedAt time.Time) error
	Recent(limit int) ([]models.ChannelPost, error)
}

type channelRepository struct {
	db *gorm.DB
}

// NewChannelRepository creates a new instance of ChannelRepository.
func NewChannelRepository(db *gorm.DB) ChannelRepository {
	return &channelRepository{db: db}
}

// Record persists one channel post. Empty posts (media-only, stickers) are
// skipped silently since they carry nothing useful for the snapshot.
func (r *channelRepository) Record(chatID, messageID int64, text string, postedAt time.Time) error {
	if text == "" {
		return nil
	}
	post := models.ChannelPost{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
		PostedAt:  postedAt,
	}
	if err := r.db.Create(&post).Error; err != nil {
		log.Printf("ERROR: [ChannelRepository] Failed to record channel post %d/%d: %v", chatID, messageID, err)
		return fmt.Errorf("failed to record channel post: %w", err)
	}
	log.Printf("INFO: [ChannelRepository] Recorded channel post %d (%d chars).", messageID, len(text))
	return nil
}

// Recent returns up to limit posts, newest first.
func (r *channelRepository) Recent(limit int) ([]models.ChannelPost, error) {
	if limit <= 0 {
		limit = 5
	}
	var posts []models.ChannelPost
	if err := r.db.Order("posted_at desc").Limit(limit).Find(&posts).Error; err != nil {
		log.Printf("ERROR: [ChannelRepository] Failed to fetch recent channel posts: %v", err)
		return nil, fmt.Errorf("failed to fetch recent channel posts: %w", err)
	}
	return posts, nil
}
