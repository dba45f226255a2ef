package models

// ReadingListEntry is a reading list row joined with its user and blog.
type ReadingListEntry struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Title    string  `json:"title"`
	URL      string  `json:"url"`
	Author   *string `json:"author"`
	Year     int     `json:"year"`
	Read     bool    `json:"read"`
}

// ReadingListRef is the compact entry attached to a reading.
type ReadingListRef struct {
	Read bool  `json:"read"`
	ID   int64 `json:"id"`
}

// Reading is a blog authored by a user together with that user's reading
// list entry for it, if any.
type Reading struct {
	ID           int64            `json:"id"`
	URL          string           `json:"url"`
	Title        string           `json:"title"`
	Author       *string          `json:"author"`
	Likes        int64            `json:"likes"`
	Year         int              `json:"year"`
	ReadingLists []ReadingListRef `json:"readinglists"`
}

// ReadFilter narrows the readings returned for a single user.
type ReadFilter int

const (
	ReadAny ReadFilter = iota
	ReadOnly
	UnreadOnly
)
