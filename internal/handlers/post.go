package handlers

import (
	"errors"
	"log"
	"net/http"

	"blogicum/internal/forms"
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostHandler serves posts and the comments under them.
type PostHandler struct {
	db          *gorm.DB
	now         services.Clock
	images      *services.ImageStore
	mailService *services.MailService
	siteURL     string
}

func NewPostHandler(db *gorm.DB, clock services.Clock, images *services.ImageStore, mail *services.MailService, siteURL string) *PostHandler {
	if clock == nil {
		clock = services.SystemClock
	}
	return &PostHandler{db: db, now: clock, images: images, mailService: mail, siteURL: siteURL}
}

// Index - /
func (h *PostHandler) Index(c *gin.Context) {
	posts, page, err := services.ListPosts(h.db, services.ParsePage(c.Query("page")), services.Visible(h.now()))
	if err != nil {
		storeError(c, err)
		return
	}

	Render(c, http.StatusOK, "blog/index.html", gin.H{
		"Title": "Blogicum",
		"Posts": posts,
		"Page":  page,
	})
}

// Category - /category/:slug/
func (h *PostHandler) Category(c *gin.Context) {
	var category models.Category
	err := h.db.Where("slug = ? AND is_published = ?", c.Param("slug"), true).First(&category).Error
	if err != nil {
		storeError(c, err)
		return
	}

	posts, page, err := services.ListPosts(h.db, services.ParsePage(c.Query("page")),
		services.Visible(h.now()), services.InCategory(category.ID))
	if err != nil {
		storeError(c, err)
		return
	}

	Render(c, http.StatusOK, "blog/category.html", gin.H{
		"Title":    category.Title,
		"Category": category,
		"Posts":    posts,
		"Page":     page,
	})
}

// findVisiblePost resolves :id among the posts the caller may read. A hidden
// post and a missing one both come back as gorm.ErrRecordNotFound.
func (h *PostHandler) findVisiblePost(c *gin.Context) (*models.Post, error) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	var userID uint
	if user := middleware.CurrentUser(c); user != nil {
		userID = user.ID
	}

	var post models.Post
	err := h.db.Scopes(services.VisibleOrOwnedBy(h.now(), userID), services.WithRelations).
		First(&post, "posts.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// findOwnPost resolves :id for a mutation. It writes the response itself and
// returns nil when the post is missing (404) or belongs to someone else
// (redirect to the detail view).
func (h *PostHandler) findOwnPost(c *gin.Context) *models.Post {
	id, ok := paramID(c, "id")
	if !ok {
		notFound(c)
		return nil
	}
	var post models.Post
	if err := h.db.Scopes(services.WithRelations).First(&post, id).Error; err != nil {
		storeError(c, err)
		return nil
	}
	if !post.IsAuthor(middleware.CurrentUser(c)) {
		c.Redirect(http.StatusFound, postURL(post.ID))
		return nil
	}
	return &post
}

// Detail - /posts/:id/
func (h *PostHandler) Detail(c *gin.Context) {
	post, err := h.findVisiblePost(c)
	if err != nil {
		storeError(c, err)
		return
	}
	h.renderDetail(c, http.StatusOK, post, forms.CommentForm{}, forms.Errors{})
}

func (h *PostHandler) renderDetail(c *gin.Context, code int, post *models.Post, form forms.CommentForm, errs forms.Errors) {
	var comments []models.Comment
	err := h.db.Preload("Author").
		Where("post_id = ?", post.ID).
		Order("created_at ASC").Order("id ASC").
		Find(&comments).Error
	if err != nil {
		storeError(c, err)
		return
	}

	Render(c, code, "blog/detail.html", gin.H{
		"Title":    post.Title,
		"Post":     post,
		"CanEdit":  post.IsAuthor(middleware.CurrentUser(c)),
		"Comments": comments,
		"Form":     form,
		"Errors":   errs,
	})
}

func (h *PostHandler) formChoices() (categories []models.Category, locations []models.Location, err error) {
	if err = h.db.Where("is_published = ?", true).Order("title ASC").Find(&categories).Error; err != nil {
		return
	}
	err = h.db.Where("is_published = ?", true).Order("name ASC").Find(&locations).Error
	return
}

func (h *PostHandler) renderPostForm(c *gin.Context, code int, form forms.PostForm, errs forms.Errors, post *models.Post) {
	categories, locations, err := h.formChoices()
	if err != nil {
		storeError(c, err)
		return
	}
	title := "New post"
	if post != nil {
		title = "Edit post"
	}
	Render(c, code, "blog/create.html", gin.H{
		"Title":      title,
		"Form":       form,
		"Errors":     errs,
		"Post":       post,
		"Categories": categories,
		"Locations":  locations,
	})
}

// bindPost binds and validates the post form, including the existence of the
// chosen category and location.
func (h *PostHandler) bindPost(c *gin.Context) (forms.PostForm, forms.PostData, forms.Errors) {
	var form forms.PostForm
	errs := forms.Bind(c, &form)
	data, cleanErrs := form.Clean()
	errs.Merge(cleanErrs)

	if data.CategoryID != nil {
		var count int64
		h.db.Model(&models.Category{}).Where("id = ?", *data.CategoryID).Count(&count)
		if count == 0 {
			errs.Add("category", "Select a valid choice.")
		}
	}
	if data.LocationID != nil {
		var count int64
		h.db.Model(&models.Location{}).Where("id = ?", *data.LocationID).Count(&count)
		if count == 0 {
			errs.Add("location", "Select a valid choice.")
		}
	}
	return form, data, errs
}

// saveImage stores the optional upload. It returns "" when nothing was sent.
func (h *PostHandler) saveImage(c *gin.Context, errs forms.Errors) string {
	header, err := c.FormFile("image")
	if err != nil {
		return ""
	}
	rel, err := h.images.Save(header)
	if err != nil {
		if errors.Is(err, services.ErrNotAnImage) || errors.Is(err, services.ErrImageTooLarge) {
			errs.Add("image", "Upload a valid image. "+err.Error()+".")
		} else {
			log.Printf("Failed to store image: %v", err)
			errs.Add("image", "The image could not be saved.")
		}
		return ""
	}
	return rel
}

// ShowCreate - /posts/create/
func (h *PostHandler) ShowCreate(c *gin.Context) {
	form := forms.PostForm{PubDate: forms.FormatPubDate(h.now())}
	h.renderPostForm(c, http.StatusOK, form, forms.Errors{}, nil)
}

func (h *PostHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	form, data, errs := h.bindPost(c)
	if errs.Any() {
		h.renderPostForm(c, http.StatusBadRequest, form, errs, nil)
		return
	}
	image := h.saveImage(c, errs)
	if errs.Any() {
		h.renderPostForm(c, http.StatusBadRequest, form, errs, nil)
		return
	}

	post := models.Post{
		Title:       data.Title,
		Text:        data.Text,
		PubDate:     data.PubDate,
		Image:       image,
		IsPublished: true,
		AuthorID:    user.ID,
		LocationID:  data.LocationID,
		CategoryID:  data.CategoryID,
	}
	if err := h.db.Create(&post).Error; err != nil {
		h.images.Remove(image)
		storeError(c, err)
		return
	}

	log.Printf("Post %d created by %s", post.ID, user.Username)
	c.Redirect(http.StatusFound, profileURL(user.Username))
}

// ShowEdit - /posts/:id/edit/
func (h *PostHandler) ShowEdit(c *gin.Context) {
	post := h.findOwnPost(c)
	if post == nil {
		return
	}
	form := forms.PostForm{
		Title:   post.Title,
		Text:    post.Text,
		PubDate: forms.FormatPubDate(post.PubDate),
	}
	if post.CategoryID != nil {
		form.CategoryID = idString(*post.CategoryID)
	}
	if post.LocationID != nil {
		form.LocationID = idString(*post.LocationID)
	}
	h.renderPostForm(c, http.StatusOK, form, forms.Errors{}, post)
}

func (h *PostHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)
	post := h.findOwnPost(c)
	if post == nil {
		return
	}

	form, data, errs := h.bindPost(c)
	if errs.Any() {
		h.renderPostForm(c, http.StatusBadRequest, form, errs, post)
		return
	}
	image := h.saveImage(c, errs)
	if errs.Any() {
		h.renderPostForm(c, http.StatusBadRequest, form, errs, post)
		return
	}

	oldImage := post.Image
	post.Title = data.Title
	post.Text = data.Text
	post.PubDate = data.PubDate
	post.LocationID = data.LocationID
	post.CategoryID = data.CategoryID
	if image != "" {
		post.Image = image
	}
	post.Location, post.Category = nil, nil
	if err := h.db.Omit(clause.Associations).Save(post).Error; err != nil {
		h.images.Remove(image)
		storeError(c, err)
		return
	}
	if image != "" && oldImage != "" {
		h.images.Remove(oldImage)
	}

	log.Printf("Post %d updated by %s", post.ID, user.Username)
	c.Redirect(http.StatusFound, profileURL(user.Username))
}

// ShowDelete - /posts/:id/delete/
func (h *PostHandler) ShowDelete(c *gin.Context) {
	post := h.findOwnPost(c)
	if post == nil {
		return
	}
	form := forms.PostForm{Title: post.Title, Text: post.Text, PubDate: forms.FormatPubDate(post.PubDate)}
	Render(c, http.StatusOK, "blog/create.html", gin.H{
		"Title":    "Delete post",
		"Form":     form,
		"Errors":   forms.Errors{},
		"Post":     post,
		"Deleting": true,
	})
}

func (h *PostHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	post := h.findOwnPost(c)
	if post == nil {
		return
	}

	if err := h.db.Delete(&models.Post{}, post.ID).Error; err != nil {
		storeError(c, err)
		return
	}
	h.images.Remove(post.Image)

	log.Printf("Post %d deleted by %s", post.ID, user.Username)
	c.Redirect(http.StatusFound, profileURL(user.Username))
}
