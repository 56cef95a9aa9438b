package services

import (
	"blogicum/internal/models"

	"gorm.io/gorm"
)

// One grouped query for the whole page; posts without comments get 0.
func FillCommentCounts(tx *gorm.DB, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type CountResult struct {
		PostID uint
		Count  int
	}
	var results []CountResult
	err := tx.Model(&models.Comment{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&results).Error
	if err != nil {
		return err
	}

	countMap := make(map[uint]int, len(results))
	for _, r := range results {
		countMap[r.PostID] = r.Count
	}
	for i := range posts {
		posts[i].CommentCount = countMap[posts[i].ID]
	}
	return nil
}

// ListPosts counts the posts matched by scopes, clamps the requested page and loads it
// newest first with relations and comment counts.
func ListPosts(tx *gorm.DB, requestedPage int, scopes ...func(*gorm.DB) *gorm.DB) ([]models.Post, Page, error) {
	var total int64
	if err := tx.Model(&models.Post{}).Scopes(scopes...).Count(&total).Error; err != nil {
		return nil, Page{}, err
	}
	page := Paginate(requestedPage, total, PageSize)

	var posts []models.Post
	err := tx.Scopes(scopes...).
		Scopes(WithRelations, NewestFirst).
		Limit(page.PerPage).
		Offset(page.Offset()).
		Find(&posts).Error
	if err != nil {
		return nil, page, err
	}
	if err := FillCommentCounts(tx, posts); err != nil {
		return nil, page, err
	}
	return posts, page, nil
}
