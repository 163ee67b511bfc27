package models

import "time"

// FAQEntry represents one stored question/answer pair in the knowledge base.
// Entries are added and removed by the admin over the private chat; the
// message pipeline only ever reads them.
type FAQEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Question  string    `gorm:"type:text;not null" json:"question"`
	Answer    string    `gorm:"type:text;not null" json:"answer"`
	Category  string    `gorm:"index" json:"category"` // e.g. "grammar", "vocabulary", "course info"
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the FAQEntry model.
func (FAQEntry) TableName() string {
	return "faq"
}
