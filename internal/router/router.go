package router

import (
	"net/http"

	"blogicum/internal/handlers"
	"blogicum/internal/middleware"
	"blogicum/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const sessionName = "blogicum_session"

// Options carries everything the HTTP layer depends on.
type Options struct {
	DB            *gorm.DB
	Clock         services.Clock
	Images        *services.ImageStore
	Mail          *services.MailService
	SessionSecret string
	SiteURL       string
	TemplatesDir  string
	StaticDir     string
	MediaDir      string
}

// New builds the engine: sessions, templates, static files and the route table.
func New(opts Options) *gin.Engine {
	r := gin.Default()

	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   14 * 24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	r.HTMLRender = LoadTemplates(opts.TemplatesDir)

	r.Static("/static", opts.StaticDir)
	r.Static("/media", opts.MediaDir)

	r.Use(middleware.LoadUser(opts.DB))

	RegisterRoutes(r, opts)

	r.NoRoute(func(c *gin.Context) {
		handlers.RenderError(c, http.StatusNotFound, "The page you requested does not exist.")
	})
	return r
}

func RegisterRoutes(r *gin.Engine, opts Options) {
	// Handlers
	postHandler := handlers.NewPostHandler(opts.DB, opts.Clock, opts.Images, opts.Mail, opts.SiteURL)
	profileHandler := handlers.NewProfileHandler(opts.DB, opts.Clock)
	authHandler := handlers.NewAuthHandler(opts.DB)
	seoHandler := handlers.NewSEOHandler(opts.DB, opts.Clock, opts.SiteURL)

	// Public Routes
	r.GET("/", postHandler.Index)
	r.GET("/category/:slug/", postHandler.Category)
	r.GET("/posts/:id/", postHandler.Detail)
	r.GET("/profile/:username/", profileHandler.Profile)
	r.GET("/feed.xml", seoHandler.RSSFeed)
	r.GET("/sitemap.xml", seoHandler.SitemapXML)
	r.GET("/robots.txt", seoHandler.RobotsTxt)

	auth := r.Group("/auth")
	{
		auth.GET("/registration/", authHandler.ShowRegister)
		auth.POST("/registration/", authHandler.Register)
		auth.GET("/login/", authHandler.ShowLogin)
		auth.POST("/login/", authHandler.Login)
		auth.GET("/logout/", authHandler.Logout)
		auth.POST("/logout/", authHandler.Logout)
	}

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/profile/edit/", profileHandler.ShowEdit)
		authorized.POST("/profile/edit/", profileHandler.Update)

		authorized.GET("/posts/create/", postHandler.ShowCreate)
		authorized.POST("/posts/create/", postHandler.Create)
		authorized.GET("/posts/:id/edit/", postHandler.ShowEdit)
		authorized.POST("/posts/:id/edit/", postHandler.Update)
		authorized.GET("/posts/:id/delete/", postHandler.ShowDelete)
		authorized.POST("/posts/:id/delete/", postHandler.Delete)

		authorized.POST("/posts/:id/", postHandler.CreateComment)
		authorized.GET("/posts/:id/comment/", postHandler.ShowCreateComment)
		authorized.POST("/posts/:id/comment/", postHandler.CreateComment)
		authorized.GET("/posts/:id/comment/:comment_id/edit/", postHandler.ShowEditComment)
		authorized.POST("/posts/:id/comment/:comment_id/edit/", postHandler.UpdateComment)
		authorized.GET("/posts/:id/comment/:comment_id/delete/", postHandler.ShowDeleteComment)
		authorized.POST("/posts/:id/comment/:comment_id/delete/", postHandler.DeleteComment)
	}
}
