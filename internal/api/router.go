// Package api wires the HTTP routes and middleware of the bloglist server.
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hoanghai1803/bloglist/internal/api/handlers"
	"github.com/hoanghai1803/bloglist/internal/auth"
	"github.com/hoanghai1803/bloglist/internal/config"
	"github.com/hoanghai1803/bloglist/internal/feeds"
	"github.com/hoanghai1803/bloglist/internal/storage"
)

// NewRouter creates and configures the HTTP router with all API routes.
// Unknown paths get a plain-text 404 and known paths requested with the
// wrong method get a JSON 405.
func NewRouter(store *storage.Store, tokens *auth.Tokens, hasher auth.Hasher, importer *feeds.Importer, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(RequestLogger)
	r.Use(Recovery)
	r.Use(CORS)
	// /api/blogs/ routes like /api/blogs.
	r.Use(middleware.StripSlashes)

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	r.Get("/", handlers.Root())
	r.Get("/cli", handlers.CLI(store))

	r.Get("/api/blogs", handlers.ListBlogs(store))
	r.Post("/api/blogs", handlers.CreateBlog(store, tokens))
	r.Put("/api/blogs/{id}", handlers.UpdateBlogLikes(store))
	r.Delete("/api/blogs/{id}", handlers.DeleteBlog(store, tokens))

	// {user} is a numeric id for GET and the current username for PUT.
	r.Get("/api/users", handlers.ListUsers(store))
	r.Post("/api/users", handlers.CreateUser(store, hasher))
	r.Get("/api/users/{user}", handlers.GetUser(store))
	r.Put("/api/users/{user}", handlers.UpdateUser(store))

	r.Get("/api/authors", handlers.ListAuthors(store))

	r.Post("/api/login", handlers.Login(store, tokens, hasher))
	r.Delete("/api/logout", handlers.Logout(store, tokens))

	r.Get("/api/readinglists", handlers.GetReadingLists(store))
	r.Post("/api/readinglists", handlers.AddToReadingList(store))
	r.Put("/api/readinglists", handlers.UpdateReadingListEntry(store, tokens))
	r.Put("/api/readinglists/{id}", handlers.UpdateReadingListEntry(store, tokens))

	r.Post("/api/import", handlers.ImportFeeds(store, tokens, importer, cfg.Import.MaxFeeds))
	r.Post("/api/migrate", handlers.Migrate(store, cfg.Admin.MigrateKey))

	return r
}
