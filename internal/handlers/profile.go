package handlers

import (
	"log"
	"net/http"

	"blogicum/internal/forms"
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProfileHandler struct {
	db  *gorm.DB
	now services.Clock
}

func NewProfileHandler(db *gorm.DB, clock services.Clock) *ProfileHandler {
	if clock == nil {
		clock = services.SystemClock
	}
	return &ProfileHandler{db: db, now: clock}
}

// Profile - /profile/:username/
// The owner also sees drafts, scheduled posts and posts in hidden categories.
func (h *ProfileHandler) Profile(c *gin.Context) {
	var profile models.User
	if err := h.db.Where("username = ?", c.Param("username")).First(&profile).Error; err != nil {
		storeError(c, err)
		return
	}

	viewer := middleware.CurrentUser(c)
	isOwner := viewer != nil && viewer.ID == profile.ID

	scopes := []func(*gorm.DB) *gorm.DB{services.ByAuthor(profile.ID)}
	if !isOwner {
		scopes = append(scopes, services.Visible(h.now()))
	}
	posts, page, err := services.ListPosts(h.db, services.ParsePage(c.Query("page")), scopes...)
	if err != nil {
		storeError(c, err)
		return
	}

	Render(c, http.StatusOK, "blog/profile.html", gin.H{
		"Title":   profile.DisplayName(),
		"Profile": profile,
		"IsOwner": isOwner,
		"Posts":   posts,
		"Page":    page,
	})
}

// ShowEdit - /profile/edit/
func (h *ProfileHandler) ShowEdit(c *gin.Context) {
	user := middleware.CurrentUser(c)
	form := forms.ProfileForm{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Username:  user.Username,
		Email:     user.Email,
	}
	h.renderForm(c, http.StatusOK, form, forms.Errors{})
}

func (h *ProfileHandler) renderForm(c *gin.Context, code int, form forms.ProfileForm, errs forms.Errors) {
	Render(c, code, "blog/user.html", gin.H{
		"Title":  "Edit profile",
		"Form":   form,
		"Errors": errs,
	})
}

func (h *ProfileHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var form forms.ProfileForm
	errs := forms.Bind(c, &form)
	if errs["username"] == "" {
		var taken int64
		h.db.Model(&models.User{}).Where("username = ? AND id <> ?", form.Username, user.ID).Count(&taken)
		if taken > 0 {
			errs.Add("username", "A user with that username already exists.")
		}
	}
	if errs.Any() {
		h.renderForm(c, http.StatusBadRequest, form, errs)
		return
	}

	updates := map[string]interface{}{
		"first_name": form.FirstName,
		"last_name":  form.LastName,
		"username":   form.Username,
		"email":      form.Email,
	}
	if err := h.db.Model(user).Updates(updates).Error; err != nil {
		storeError(c, err)
		return
	}

	log.Printf("Profile of user %d updated", user.ID)
	c.Redirect(http.StatusFound, profileURL(form.Username))
}
