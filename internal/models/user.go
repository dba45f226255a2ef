package models

import "time"

// User is the public view of a users row. The password hash is never
// serialized.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Disabled     bool      `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserWithBlogs is a user annotated with the blogs they authored.
type UserWithBlogs struct {
	User
	Blogs []BlogSummary `json:"blogs"`
}

// UserWithReadings is a single user enriched with their readings.
type UserWithReadings struct {
	User
	Readings []Reading `json:"readings"`
}

// Session links an issued token id to a user.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
