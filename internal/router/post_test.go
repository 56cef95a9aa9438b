package router

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"blogicum/internal/models"
)

func TestScheduledPostVisibility(t *testing.T) {
	app := newTestApp(t)
	anna := app.createUser("anna")
	post := app.createPost(anna, "Tomorrow", pubAt(app.clock().Add(24*time.Hour)))

	resp, _ := app.loggedIn("anna").get(postPath(post, ""))
	expectStatus(t, resp, http.StatusOK)

	resp, _ = app.client().get(postPath(post, ""))
	expectStatus(t, resp, http.StatusNotFound)

	app.setNow(app.clock().Add(25 * time.Hour))
	resp, body := app.client().get(postPath(post, ""))
	expectStatus(t, resp, http.StatusOK)
	if !strings.Contains(body, "Text of Tomorrow") {
		t.Error("detail page should render the post text")
	}
}

func TestDetailNotFound(t *testing.T) {
	app := newTestApp(t)
	anna := app.createUser("anna")
	draft := app.createPost(anna, "Draft", unpublished())
	c := app.loggedIn(app.createUser("boris").Username)

	for _, path := range []string{"/posts/999/", "/posts/abc/", postPath(draft, "")} {
		resp, body := c.get(path)
		expectStatus(t, resp, http.StatusNotFound)
		if !strings.Contains(body, "404") {
			t.Errorf("%s: expected the error page", path)
		}
	}
}

func TestDetailSanitizesMarkdown(t *testing.T) {
	app := newTestApp(t)
	anna := app.createUser("anna")
	post := models.Post{
		Title: "XSS", Text: "**bold** <script>alert('x')</script>",
		PubDate: app.clock().Add(-time.Hour), IsPublished: true, AuthorID: anna.ID,
	}
	app.db.Create(&post)

	_, body := app.client().get(postPath(post, ""))
	if !strings.Contains(body, "<strong>bold</strong>") {
		t.Error("Expected rendered markdown")
	}
	if strings.Contains(body, "<script>alert") {
		t.Error("script tags must be stripped")
	}
}

func TestCreatePostRequiresLogin(t *testing.T) {
	app := newTestApp(t)
	resp, _ := app.client().get("/posts/create/")
	expectRedirect(t, resp, "/auth/login/?next=%2Fposts%2Fcreate%2F")
}

func TestCreatePost(t *testing.T) {
	app := newTestApp(t)
	anna := app.createUser("anna")
	travel := app.createCategory("travel", true)
	c := app.loggedIn("anna")

	resp, body := c.get("/posts/create/")
	expectStatus(t, resp, http.StatusOK)
	if !strings.Contains(body, `value="2024-05-01T12:00"`) {
		t.Error("pub_date should default to now")
	}

	resp, _ = c.postForm("/posts/create/", url.Values{
		"title":        {"Mountains"},
		"text":         {"Up we go"},
		"pub_date":     {"2024-05-01T09:30"},
		"category":     {idStr(travel.ID)},
		"is_published": {"false"},
		"author":       {"999"},
	})
	expectRedirect(t, resp, "/profile/anna/")

	var post models.Post
	if err := app.db.Where("title = ?", "Mountains").First(&post).Error; err != nil {
		t.Fatalf("post not saved: %v", err)
	}
	if post.AuthorID != anna.ID || !post.IsPublished {
		t.Errorf("author and published flag must not come from the form, got author=%d published=%v", post.AuthorID, post.IsPublished)
	}
	if post.CategoryID == nil || *post.CategoryID != travel.ID {
		t.Errorf("Expected category %d, got %v", travel.ID, post.CategoryID)
	}
	if want := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC); !post.PubDate.Equal(want) {
		t.Errorf("Expected pub date %v, got %v", want, post.PubDate)
	}
}

func TestCreatePostValidation(t *testing.T) {
	app := newTestApp(t)
	app.createUser("anna")
	c := app.loggedIn("anna")

	resp, body := c.postForm("/posts/create/", url.Values{
		"title":    {""},
		"text":     {"Body stays"},
		"pub_date": {"not a date"},
		"category": {"12345"},
	})
	expectStatus(t, resp, http.StatusBadRequest)
	for _, msg := range []string{"This field is required.", "Select a valid choice."} {
		if !strings.Contains(body, msg) {
			t.Errorf("Expected %q in the re-rendered form", msg)
		}
	}
	if !strings.Contains(body, "Body stays") {
		t.Error("submitted values should be kept")
	}

	var count int64
	app.db.Model(&models.Post{}).Count(&count)
	if count != 0 {
		t.Errorf("nothing should be saved, found %d posts", count)
	}
}

func TestCreatePostWithImage(t *testing.T) {
	app := newTestApp(t)
	app.createUser("anna")
	c := app.loggedIn("anna")

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	resp, _ := c.postMultipart("/posts/create/", url.Values{
		"title": {"Picture"}, "text": {"See image"}, "pub_date": {"2024-05-01T10:00"},
	}, "image", "photo.png", png)
	expectRedirect(t, resp, "/profile/anna/")

	var post models.Post
	app.db.Where("title = ?", "Picture").First(&post)
	if !strings.HasPrefix(post.Image, "posts_img/") {
		t.Fatalf("Expected stored image path, got %q", post.Image)
	}
	if _, err := os.Stat(filepath.Join(app.mediaDir, post.Image)); err != nil {
		t.Errorf("image file missing: %v", err)
	}

	resp, _ = c.get("/media/" + post.Image)
	expectStatus(t, resp, http.StatusOK)

	resp, body := c.postMultipart("/posts/create/", url.Values{
		"title": {"Not a picture"}, "text": {"x"}, "pub_date": {"2024-05-01T10:00"},
	}, "image", "notes.png", []byte("plain text"))
	expectStatus(t, resp, http.StatusBadRequest)
	if !strings.Contains(body, "Upload a valid image") {
		t.Error("Expected an image error")
	}
}

func TestEditPost(t *testing.T) {
	app := newTestApp(t)
	anna := app.createUser("anna")
	app.createUser("boris")
	post := app.createPost(anna, "Original")

	form := url.Values{"title": {"Changed"}, "text": {"New text"}, "pub_date": {"2024-04-30T08:00"}}

	// Someone else is sent back to the post and nothing changes.
	boris := app.loggedIn("boris")
	resp, _ := boris.get(postPath(post, "edit/"))
	expectRedirect(t, resp, postPath(post, ""))
	resp, _ = boris.postForm(postPath(post, "edit/"), form)
	expectRedirect(t, resp, postPath(post, ""))
	var reloaded models.Post
	app.db.First(&reloaded, post.ID)
	if reloaded.Title != "Original" {
		t.Fatalf("non-author changed the post: %q", reloaded.Title)
	}

	c := app.loggedIn("anna")
	resp, body := c.get(postPath(post, "edit/"))
	expectStatus(t, resp, http.StatusOK)
	if !strings.Contains(body, `value="Original"`) {
		t.Error("edit form should be pre-filled")
	}
	resp, _ = c.postForm(postPath(post, "edit/"), form)
	expectRedirect(t, resp, "/profile/anna/")
	app.db.First(&reloaded, post.ID)
	if reloaded.Title != "Changed" || reloaded.Text != "New text" {
		t.Errorf("post not updated: %+v", reloaded)
	}

	resp, _ = c.get("/posts/999/edit/")
	expectStatus(t, resp, http.StatusNotFound)
}

func TestDeletePost(t *testing.T) {
	app := newTestApp(t)
	anna := app.createUser("anna")
	boris := app.createUser("boris")
	post := app.createPost(anna, "Doomed")
	app.createComment(post, boris, "bye")

	resp, _ := app.loggedIn("boris").postForm(postPath(post, "delete/"), nil)
	expectRedirect(t, resp, postPath(post, ""))
	var count int64
	app.db.Model(&models.Post{}).Where("id = ?", post.ID).Count(&count)
	if count != 1 {
		t.Fatal("non-author deleted the post")
	}

	c := app.loggedIn("anna")
	resp, body := c.get(postPath(post, "delete/"))
	expectStatus(t, resp, http.StatusOK)
	if !strings.Contains(body, "Doomed") {
		t.Error("confirmation page should show the post")
	}

	resp, _ = c.postForm(postPath(post, "delete/"), nil)
	expectRedirect(t, resp, "/profile/anna/")
	app.db.Model(&models.Post{}).Where("id = ?", post.ID).Count(&count)
	if count != 0 {
		t.Error("post should be gone")
	}
	app.db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&count)
	if count != 0 {
		t.Error("comments should be deleted with the post")
	}

	resp, _ = c.postForm(postPath(post, "delete/"), nil)
	expectStatus(t, resp, http.StatusNotFound)
}

func idStr(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
