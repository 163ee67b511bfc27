package repository

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/anasco119/QueriesShot/models"
)

// FAQRepository defines the interface for interacting with stored Q/A pairs.
// The message pipeline only calls ListAll; Add and Delete back the admin
// commands in the private chat.
type FAQRepository interface {
	ListAll() ([]models.FAQEntry, error)
	Add(question, answer, category string) (*models.FAQEntry, error)
	Delete(id uint) (bool, error)
}

type faqRepository struct {
	db *gorm.DB
}

// NewFAQRepository creates a new instance of FAQRepository.
func NewFAQRepository(db *gorm.DB) FAQRepository {
	return &faqRepository{db: db}
}

// ListAll returns every FAQ entry, oldest first.
func (r *faqRepository) ListAll() ([]models.FAQEntry, error) {
	var entries []models.FAQEntry
	if err := r.db.Order("id asc").Find(&entries).Error; err != nil {
		log.Printf("ERROR: [FAQRepository] Failed to list FAQ entries: %v", err)
		return nil, fmt.Errorf("failed to list FAQ entries: %w", err)
	}
	return entries, nil
}

// Add stores a new question/answer pair and returns the created entry.
func (r *faqRepository) Add(question, answer, category string) (*models.FAQEntry, error) {
	if question == "" || answer == "" {
		return nil, errors.New("question and answer cannot be empty")
	}
	entry := models.FAQEntry{Question: question, Answer: answer, Category: category}
	if err := r.db.Create(&entry).Error; err != nil {
		log.Printf("ERROR: [FAQRepository] Failed to add FAQ entry %q: %v", question, err)
		return nil, fmt.Errorf("failed to add FAQ entry: %w", err)
	}
	log.Printf("INFO: [FAQRepository] Added FAQ entry #%d: %q", entry.ID, question)
	return &entry, nil
}

// Delete removes the entry with the given id. It returns false (and no
// error) when no entry with that id exists.
func (r *faqRepository) Delete(id uint) (bool, error) {
	result := r.db.Delete(&models.FAQEntry{}, id)
	if result.Error != nil {
		log.Printf("ERROR: [FAQRepository] Failed to delete FAQ entry #%d: %v", id, result.Error)
		return false, fmt.Errorf("failed to delete FAQ entry #%d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		log.Printf("INFO: [FAQRepository] Delete requested for missing FAQ entry #%d.", id)
		return false, nil
	}
	log.Printf("INFO: [FAQRepository] Deleted FAQ entry #%d.", id)
	return true, nil
}
