package handlers

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"blogicum/internal/models"
	"blogicum/internal/services"
	"blogicum/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// FeedSize is the number of posts in /feed.xml.
const FeedSize = 20

// SitemapSize caps the post entries in /sitemap.xml.
const SitemapSize = 500

// SEOHandler serves the machine-readable views: feed, sitemap and robots.txt.
// Each one only ever exposes publicly visible posts.
type SEOHandler struct {
	db      *gorm.DB
	now     services.Clock
	siteURL string
}

func NewSEOHandler(db *gorm.DB, clock services.Clock, siteURL string) *SEOHandler {
	if clock == nil {
		clock = services.SystemClock
	}
	return &SEOHandler{db: db, now: clock, siteURL: strings.TrimRight(siteURL, "/")}
}

// RobotsTxt - /robots.txt
func (h *SEOHandler) RobotsTxt(c *gin.Context) {
	content := fmt.Sprintf(`User-agent: *
Allow: /

Disallow: /auth/
Disallow: /profile/edit/
Disallow: /posts/create/

Sitemap: %s/sitemap.xml
`, h.siteURL)

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, content)
}

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// SitemapXML - /sitemap.xml
func (h *SEOHandler) SitemapXML(c *gin.Context) {
	now := h.now()

	sitemap := urlset{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	sitemap.URLs = append(sitemap.URLs, sitemapURL{
		Loc: h.siteURL + "/", LastMod: now.Format("2006-01-02"), ChangeFreq: "daily", Priority: "1.0",
	})

	var categories []models.Category
	if err := h.db.Where("is_published = ?", true).Order("id ASC").Find(&categories).Error; err != nil {
		storeError(c, err)
		return
	}
	for _, category := range categories {
		sitemap.URLs = append(sitemap.URLs, sitemapURL{
			Loc: h.siteURL + "/category/" + category.Slug + "/", ChangeFreq: "daily", Priority: "0.7",
		})
	}

	var posts []models.Post
	err := h.db.Scopes(services.Visible(now), services.NewestFirst).Limit(SitemapSize).Find(&posts).Error
	if err != nil {
		storeError(c, err)
		return
	}
	for _, post := range posts {
		// Fresh posts change more often (comments, edits).
		changefreq, priority := "weekly", "0.6"
		if now.Sub(post.PubDate) < 7*24*time.Hour {
			changefreq, priority = "daily", "0.8"
		}
		sitemap.URLs = append(sitemap.URLs, sitemapURL{
			Loc:        h.siteURL + postURL(post.ID),
			LastMod:    post.UpdatedAt.UTC().Format("2006-01-02"),
			ChangeFreq: changefreq,
			Priority:   priority,
		})
	}

	writeXML(c, "application/xml; charset=utf-8", sitemap)
}

type rss struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	Description string  `xml:"description"`
	Author      string  `xml:"author,omitempty"`
	Category    string  `xml:"category,omitempty"`
	PubDate     string  `xml:"pubDate"`
	GUID        rssGUID `xml:"guid"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// RSSFeed - /feed.xml, RSS 2.0 with the newest visible posts.
func (h *SEOHandler) RSSFeed(c *gin.Context) {
	now := h.now()

	var posts []models.Post
	err := h.db.Scopes(services.Visible(now), services.WithRelations, services.NewestFirst).
		Limit(FeedSize).
		Find(&posts).Error
	if err != nil {
		storeError(c, err)
		return
	}

	feed := rss{
		Version: "2.0",
		Channel: rssChannel{
			Title:         "Blogicum",
			Link:          h.siteURL + "/",
			Description:   "Latest posts",
			Language:      "en",
			LastBuildDate: now.Format(time.RFC1123Z),
		},
	}
	for _, post := range posts {
		link := h.siteURL + postURL(post.ID)
		item := rssItem{
			Title:       post.Title,
			Link:        link,
			Description: string(utils.Markdown(post.Text)),
			Author:      post.Author.Username,
			PubDate:     post.PubDate.Format(time.RFC1123Z),
			GUID:        rssGUID{IsPermaLink: true, Value: link},
		}
		if post.Category != nil {
			item.Category = post.Category.Title
		}
		feed.Channel.Items = append(feed.Channel.Items, item)
	}

	writeXML(c, "application/rss+xml; charset=utf-8", feed)
}

func writeXML(c *gin.Context, contentType string, v interface{}) {
	out, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		storeError(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, append([]byte(xml.Header), out...))
}
