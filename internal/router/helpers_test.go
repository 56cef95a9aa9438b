package router

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"blogicum/internal/db"
	"blogicum/internal/models"
	"blogicum/internal/services"
	"blogicum/internal/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "correct-horse"

type testApp struct {
	t        *testing.T
	db       *gorm.DB
	server   *httptest.Server
	mediaDir string

	mu  sync.Mutex
	now time.Time
}

func (a *testApp) clock() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.now
}

func (a *testApp) setNow(t time.Time) {
	a.mu.Lock()
	a.now = t
	a.mu.Unlock()
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.HashCost = bcrypt.MinCost

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", t.Name())
	gdb, err := db.Open(db.Options{Driver: "sqlite", DSN: dsn, LogLevel: logger.Silent})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	app := &testApp{
		t:        t,
		db:       gdb,
		mediaDir: t.TempDir(),
		now:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	engine := New(Options{
		DB:            gdb,
		Clock:         app.clock,
		Images:        services.NewImageStore(app.mediaDir),
		SessionSecret: "test-secret",
		SiteURL:       "http://blog.test",
		TemplatesDir:  "../../web/templates",
		StaticDir:     "../../web/static",
		MediaDir:      app.mediaDir,
	})
	app.server = httptest.NewServer(engine)

	t.Cleanup(func() {
		app.server.Close()
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return app
}

func (a *testApp) createUser(username string) models.User {
	a.t.Helper()
	hash, err := utils.HashPassword(testPassword)
	if err != nil {
		a.t.Fatal(err)
	}
	user := models.User{Username: username, Password: hash, Email: username + "@example.com"}
	if err := a.db.Create(&user).Error; err != nil {
		a.t.Fatalf("create user: %v", err)
	}
	return user
}

func (a *testApp) createCategory(slug string, published bool) models.Category {
	a.t.Helper()
	c := models.Category{Title: "Category " + slug, Slug: slug, IsPublished: published}
	if err := a.db.Create(&c).Error; err != nil {
		a.t.Fatalf("create category: %v", err)
	}
	return c
}

type postOpt func(*models.Post)

func pubAt(t time.Time) postOpt {
	return func(p *models.Post) { p.PubDate = t }
}

func unpublished() postOpt {
	return func(p *models.Post) { p.IsPublished = false }
}

func inCategory(c models.Category) postOpt {
	return func(p *models.Post) { p.CategoryID = &c.ID }
}

func (a *testApp) createPost(author models.User, title string, opts ...postOpt) models.Post {
	a.t.Helper()
	p := models.Post{
		Title:       title,
		Text:        "Text of " + title,
		PubDate:     a.clock().Add(-time.Hour),
		IsPublished: true,
		AuthorID:    author.ID,
	}
	for _, opt := range opts {
		opt(&p)
	}
	if err := a.db.Create(&p).Error; err != nil {
		a.t.Fatalf("create post: %v", err)
	}
	return p
}

func (a *testApp) createComment(post models.Post, author models.User, text string) models.Comment {
	a.t.Helper()
	c := models.Comment{PostID: post.ID, AuthorID: author.ID, Text: text}
	if err := a.db.Create(&c).Error; err != nil {
		a.t.Fatalf("create comment: %v", err)
	}
	return c
}

// client is a browser: it keeps the session cookie and does not follow redirects.
type client struct {
	app  *testApp
	http *http.Client
}

func (a *testApp) client() *client {
	jar, _ := cookiejar.New(nil)
	return &client{
		app: a,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// loggedIn returns a client with an active session for username.
func (a *testApp) loggedIn(username string) *client {
	a.t.Helper()
	c := a.client()
	resp, _ := c.postForm("/auth/login/", url.Values{"username": {username}, "password": {testPassword}})
	if resp.StatusCode != http.StatusFound {
		a.t.Fatalf("login as %s: expected 302, got %d", username, resp.StatusCode)
	}
	return c
}

func (c *client) do(req *http.Request) (*http.Response, string) {
	c.app.t.Helper()
	resp, err := c.http.Do(req)
	if err != nil {
		c.app.t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func (c *client) get(path string) (*http.Response, string) {
	c.app.t.Helper()
	req, _ := http.NewRequest(http.MethodGet, c.app.server.URL+path, nil)
	return c.do(req)
}

func (c *client) postForm(path string, values url.Values) (*http.Response, string) {
	c.app.t.Helper()
	req, _ := http.NewRequest(http.MethodPost, c.app.server.URL+path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) postMultipart(path string, values url.Values, fileField, filename string, content []byte) (*http.Response, string) {
	c.app.t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, vs := range values {
		for _, v := range vs {
			w.WriteField(k, v)
		}
	}
	part, _ := w.CreateFormFile(fileField, filename)
	part.Write(content)
	w.Close()

	req, _ := http.NewRequest(http.MethodPost, c.app.server.URL+path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req)
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("%s %s: expected status %d, got %d", resp.Request.Method, resp.Request.URL.Path, want, resp.StatusCode)
	}
}

func expectRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	expectStatus(t, resp, http.StatusFound)
	if got := resp.Header.Get("Location"); got != location {
		t.Fatalf("expected redirect to %s, got %s", location, got)
	}
}

func postPath(p models.Post, suffix string) string {
	return fmt.Sprintf("/posts/%d/%s", p.ID, suffix)
}
