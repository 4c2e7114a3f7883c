package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShortLink maps a random slug to a full URL. original_url is unique so
// that creation is get-or-create keyed on the URL.
type ShortLink struct {
	ID          uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Slug        string    `gorm:"size:16;uniqueIndex;not null" json:"slug"`
	OriginalURL string    `gorm:"size:2048;uniqueIndex;not null" json:"original_url"`
}

func (ShortLink) TableName() string {
	return "short_links"
}

func (l *ShortLink) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
