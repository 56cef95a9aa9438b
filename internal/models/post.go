package models

import (
	"time"

	"gorm.io/gorm"
)

type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:256;not null" json:"title"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	PubDate     time.Time `gorm:"not null;index" json:"pub_date"` // May be in the future for scheduled posts
	Image       string    `gorm:"size:255" json:"image"`          // Path relative to the media dir
	IsPublished bool      `gorm:"not null;index" json:"is_published"`
	AuthorID    uint      `gorm:"not null;index" json:"author_id"`
	Author      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	LocationID  *uint     `gorm:"index" json:"location_id"`
	Location    *Location `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"location"`
	CategoryID  *uint     `gorm:"index" json:"category_id"`
	Category    *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Not a column; filled by services.FillCommentCounts
	CommentCount int `gorm:"-" json:"comment_count"`
}

// BeforeSave keeps pub_date in UTC so it compares correctly against the clock on every driver.
func (p *Post) BeforeSave(tx *gorm.DB) error {
	p.PubDate = p.PubDate.UTC()
	return nil
}

// VisibleAt reports whether the post may be shown to anyone at time now.
// The category must already be loaded when CategoryID is set.
func (p *Post) VisibleAt(now time.Time) bool {
	if !p.IsPublished || p.PubDate.After(now) {
		return false
	}
	if p.CategoryID != nil && (p.Category == nil || !p.Category.IsPublished) {
		return false
	}
	return true
}

// IsAuthor reports whether user wrote the post. A nil user is never the author.
func (p *Post) IsAuthor(user *User) bool {
	return user != nil && user.ID == p.AuthorID
}
