package models

import "time"

// MinBlogYear is the earliest publication year a blog may carry.
const MinBlogYear = 1991

// Blog is a post as listed by GET /api/blogs. Author is a free-text username
// reference and may be null.
type Blog struct {
	ID     int64   `json:"id"`
	Title  string  `json:"title"`
	URL    string  `json:"url"`
	Likes  int64   `json:"likes"`
	Author *string `json:"author"`
	Year   int     `json:"year"`
}

// BlogRecord is a full blogs row including timestamps.
type BlogRecord struct {
	Blog
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBlog holds the fields needed to insert a blog.
type NewBlog struct {
	Author string
	URL    string
	Title  string
	Year   int
}

// BlogSummary is the short form of a blog embedded in a user listing.
type BlogSummary struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Likes int64  `json:"likes"`
}

// AuthorStats aggregates article count and total likes per resolved author
// name.
type AuthorStats struct {
	Author   *string `json:"author"`
	Articles int64   `json:"articles"`
	Likes    int64   `json:"likes"`
}
