package handlers

import (
	"log"
	"net/http"
	"strings"

	"blogicum/internal/forms"
	"blogicum/internal/middleware"
	"blogicum/internal/models"

	"github.com/gin-gonic/gin"
)

// ShowCreateComment - /posts/:id/comment/
func (h *PostHandler) ShowCreateComment(c *gin.Context) {
	post, err := h.findVisiblePost(c)
	if err != nil {
		storeError(c, err)
		return
	}
	h.renderCommentForm(c, http.StatusOK, post, nil, forms.CommentForm{}, forms.Errors{})
}

// CreateComment handles both the form under the post (/posts/:id/) and the
// standalone one (/posts/:id/comment/). Errors are shown on the page the form came from.
func (h *PostHandler) CreateComment(c *gin.Context) {
	user := middleware.CurrentUser(c)
	post, err := h.findVisiblePost(c)
	if err != nil {
		storeError(c, err)
		return
	}

	var form forms.CommentForm
	if errs := forms.Bind(c, &form); errs.Any() {
		if c.FullPath() == "/posts/:id/" {
			h.renderDetail(c, http.StatusBadRequest, post, form, errs)
		} else {
			h.renderCommentForm(c, http.StatusBadRequest, post, nil, form, errs)
		}
		return
	}

	comment := models.Comment{
		PostID:   post.ID,
		AuthorID: user.ID,
		Text:     form.Text,
	}
	if err := h.db.Create(&comment).Error; err != nil {
		storeError(c, err)
		return
	}
	log.Printf("Comment %d on post %d created by %s", comment.ID, post.ID, user.Username)

	if h.mailService != nil && post.AuthorID != user.ID {
		link := strings.TrimRight(h.siteURL, "/") + postURL(post.ID) + "#comment-" + idString(comment.ID)
		h.mailService.SendCommentNotification(post.Author.Email, user.Username, post.Title, comment.Text, link)
	}

	c.Redirect(http.StatusFound, postURL(post.ID))
}

// findOwnComment resolves :comment_id under :id. Like findOwnPost it answers the
// request itself when the comment is missing or not the caller's.
func (h *PostHandler) findOwnComment(c *gin.Context) *models.Comment {
	postID, ok := paramID(c, "id")
	if !ok {
		notFound(c)
		return nil
	}
	commentID, ok := paramID(c, "comment_id")
	if !ok {
		notFound(c)
		return nil
	}

	var comment models.Comment
	err := h.db.Preload("Post").Preload("Author").
		Where("id = ? AND post_id = ?", commentID, postID).
		First(&comment).Error
	if err != nil {
		storeError(c, err)
		return nil
	}
	if !comment.IsAuthor(middleware.CurrentUser(c)) {
		c.Redirect(http.StatusFound, postURL(postID))
		return nil
	}
	return &comment
}

func (h *PostHandler) renderCommentForm(c *gin.Context, code int, post *models.Post, comment *models.Comment, form forms.CommentForm, errs forms.Errors) {
	title := "New comment"
	if comment != nil {
		title = "Edit comment"
	}
	Render(c, code, "blog/comment.html", gin.H{
		"Title":   title,
		"Post":    post,
		"Comment": comment,
		"Form":    form,
		"Errors":  errs,
	})
}

// ShowEditComment - /posts/:id/comment/:comment_id/edit/
func (h *PostHandler) ShowEditComment(c *gin.Context) {
	comment := h.findOwnComment(c)
	if comment == nil {
		return
	}
	h.renderCommentForm(c, http.StatusOK, &comment.Post, comment, forms.CommentForm{Text: comment.Text}, forms.Errors{})
}

func (h *PostHandler) UpdateComment(c *gin.Context) {
	comment := h.findOwnComment(c)
	if comment == nil {
		return
	}

	var form forms.CommentForm
	if errs := forms.Bind(c, &form); errs.Any() {
		h.renderCommentForm(c, http.StatusBadRequest, &comment.Post, comment, form, errs)
		return
	}

	if err := h.db.Model(comment).Update("text", form.Text).Error; err != nil {
		storeError(c, err)
		return
	}
	c.Redirect(http.StatusFound, postURL(comment.PostID))
}

// ShowDeleteComment - /posts/:id/comment/:comment_id/delete/
func (h *PostHandler) ShowDeleteComment(c *gin.Context) {
	comment := h.findOwnComment(c)
	if comment == nil {
		return
	}
	Render(c, http.StatusOK, "blog/comment.html", gin.H{
		"Title":    "Delete comment",
		"Post":     &comment.Post,
		"Comment":  comment,
		"Form":     forms.CommentForm{Text: comment.Text},
		"Errors":   forms.Errors{},
		"Deleting": true,
	})
}

func (h *PostHandler) DeleteComment(c *gin.Context) {
	user := middleware.CurrentUser(c)
	comment := h.findOwnComment(c)
	if comment == nil {
		return
	}

	if err := h.db.Delete(&models.Comment{}, comment.ID).Error; err != nil {
		storeError(c, err)
		return
	}
	log.Printf("Comment %d deleted by %s", comment.ID, user.Username)
	c.Redirect(http.StatusFound, postURL(comment.PostID))
}
