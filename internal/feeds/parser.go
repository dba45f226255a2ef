package feeds

import (
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/hoanghai1803/bloglist/internal/models"
)

var htmlTagPattern = regexp.MustCompile("<[^>]*>")

// parseFeedItems converts gofeed items into blogs by author, taking at most
// maxItems of them. Items with an empty title or link, or whose year falls
// outside [MinBlogYear, now.Year()], are counted as skipped.
func parseFeedItems(feed *gofeed.Feed, author string, maxItems int, now time.Time) ([]models.NewBlog, int) {
	var (
		blogs   []models.NewBlog
		skipped int
	)
	for _, item := range feed.Items {
		if len(blogs) >= maxItems {
			break
		}

		title := strings.TrimSpace(stripHTML(item.Title))
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			skipped++
			continue
		}

		year := itemYear(item, now)
		if year < models.MinBlogYear || year > now.Year() {
			skipped++
			continue
		}

		blogs = append(blogs, models.NewBlog{
			Author: author,
			URL:    link,
			Title:  title,
			Year:   year,
		})
	}

	return blogs, skipped
}

// itemYear returns the year the item was published, or last updated, falling
// back to the current year when the feed carries neither.
func itemYear(item *gofeed.Item, now time.Time) int {
	switch {
	case item.PublishedParsed != nil:
		return item.PublishedParsed.Year()
	case item.UpdatedParsed != nil:
		return item.UpdatedParsed.Year()
	default:
		return now.Year()
	}
}

// stripHTML removes HTML tags from s and unescapes HTML entities.
func stripHTML(s string) string {
	clean := htmlTagPattern.ReplaceAllString(s, "")
	return html.UnescapeString(clean)
}
