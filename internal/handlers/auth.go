package handlers

import (
	"log"
	"net/http"
	"strings"

	"blogicum/internal/forms"
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	Render(c, http.StatusOK, "auth/registration.html", gin.H{
		"Title":  "Sign up",
		"Form":   forms.RegisterForm{},
		"Errors": forms.Errors{},
	})
}

// createUser stores a new account with a hashed password.
func (h *AuthHandler) createUser(username, email, password string) (*models.User, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: hash,
	}

	if err := h.db.Create(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (h *AuthHandler) Register(c *gin.Context) {
	var form forms.RegisterForm
	errs := forms.Bind(c, &form)
	if errs["username"] == "" {
		var taken int64
		h.db.Model(&models.User{}).Where("username = ?", form.Username).Count(&taken)
		if taken > 0 {
			errs.Add("username", "A user with that username already exists.")
		}
	}
	if errs.Any() {
		// Never echo passwords back into the page.
		form.Password1, form.Password2 = "", ""
		Render(c, http.StatusBadRequest, "auth/registration.html", gin.H{
			"Title":  "Sign up",
			"Form":   form,
			"Errors": errs,
		})
		return
	}

	user, err := h.createUser(form.Username, form.Email, form.Password1)
	if err != nil {
		storeError(c, err)
		return
	}
	log.Printf("User %s registered", user.Username)

	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, user.ID)
	session.Save()

	c.Redirect(http.StatusFound, profileURL(user.Username))
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", gin.H{
		"Title":  "Log in",
		"Form":   forms.LoginForm{},
		"Errors": forms.Errors{},
		"Next":   c.Query("next"),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	next := c.PostForm("next")
	renderLogin := func(code int, form forms.LoginForm, errs forms.Errors) {
		form.Password = ""
		Render(c, code, "auth/login.html", gin.H{
			"Title":  "Log in",
			"Form":   form,
			"Errors": errs,
			"Next":   next,
		})
	}

	var form forms.LoginForm
	if errs := forms.Bind(c, &form); errs.Any() {
		renderLogin(http.StatusBadRequest, form, errs)
		return
	}

	var user models.User
	if err := h.db.Where("username = ?", form.Username).First(&user).Error; err != nil ||
		!utils.CheckPasswordHash(form.Password, user.Password) {
		renderLogin(http.StatusUnauthorized, form, forms.Errors{
			forms.NonFieldErrors: "Please enter a correct username and password.",
		})
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, user.ID)
	session.Save()

	c.Redirect(http.StatusFound, safeRedirect(next))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/")
}

// safeRedirect only follows local paths; anything else goes to the index.
func safeRedirect(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
