package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"blogicum/internal/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	// Always present, possibly a nil *models.User, so templates can test it with {{if}}.
	obj["CurrentUser"] = middleware.CurrentUser(c)
	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// Error helper
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Title": http.StatusText(code), "Code": code, "Error": message})
}

func notFound(c *gin.Context) {
	RenderError(c, http.StatusNotFound, "The page you requested does not exist.")
}

// storeError answers a failed query: 404 for a missing record, 500 otherwise.
func storeError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		notFound(c)
		return
	}
	log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	RenderError(c, http.StatusInternalServerError, "Something went wrong. Please try again later.")
}

// paramID reads a positive numeric path parameter.
func paramID(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func postURL(id uint) string {
	return "/posts/" + idString(id) + "/"
}

func profileURL(username string) string {
	return "/profile/" + username + "/"
}
