package services

import (
	"time"

	"gorm.io/gorm"
)

// Clock returns the current time. Handlers take one so scheduled posts can be tested.
type Clock func() time.Time

// SystemClock is the wall clock in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}

const visibleSQL = "posts.is_published = ? AND posts.pub_date <= ? AND " +
	"(posts.category_id IS NULL OR posts.category_id IN (SELECT id FROM categories WHERE is_published = ?))"

// Visible keeps posts anyone may see at time now: published, not scheduled for later,
// and either uncategorized or in a published category.
func Visible(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where(visibleSQL, true, now.UTC(), true)
	}
}

// VisibleOrOwnedBy is Visible, widened with every post written by userID.
// A zero userID (anonymous caller) owns nothing.
func VisibleOrOwnedBy(now time.Time, userID uint) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if userID == 0 {
			return Visible(now)(tx)
		}
		return tx.Where("(("+visibleSQL+") OR posts.author_id = ?)", true, now.UTC(), true, userID)
	}
}

func ByAuthor(userID uint) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("posts.author_id = ?", userID)
	}
}

func InCategory(categoryID uint) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("posts.category_id = ?", categoryID)
	}
}

// NewestFirst orders by publish date, newest first. The id breaks ties so pages are stable.
func NewestFirst(tx *gorm.DB) *gorm.DB {
	return tx.Order("posts.pub_date DESC").Order("posts.id DESC")
}

// WithRelations preloads everything a post card shows.
func WithRelations(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Author").Preload("Category").Preload("Location")
}
