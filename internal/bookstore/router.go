package bookstore

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/go-llmstxt/llmstxt/pkg/llmstxt"
)

// Router creates a chi.Router for the Bookstore API. Every route carries
// llms.txt documentation. Write endpoints require a token from POST /token.
// Book reads are cached per cfg and any successful write empties the cache.
func Router(store *BookStore, tokens *TokenStore, cfg *Config) chi.Router {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cache := NewResponseCache(cfg.CacheEntries, cfg.CacheTTL)
	r := chi.NewRouter()

	auth := llmstxt.ParamsFrom(authHeader{})
	bookID := func(verb string) llmstxt.Param {
		return llmstxt.PathParam("bookId", "string", "The ID of the book to "+verb)
	}

	r.Method(http.MethodGet, "/", llmstxt.Describe(RootHandler(), llmstxt.Meta{
		Summary:     "Root endpoint",
		Description: "Returns a welcome message.",
	}))

	reads := r.With(cache.Middleware)

	reads.Method(http.MethodGet, "/books", llmstxt.Describe(ListBooksHandler(store, cfg), llmstxt.Meta{
		Summary:     "Get all books",
		Description: "Returns a list of all books in the database.",
		Params:      llmstxt.ParamsFrom(listBooksQuery{}),
	}))

	reads.Method(http.MethodGet, "/books/{bookId}", llmstxt.Describe(GetBookHandler(store), llmstxt.Meta{
		Summary:     "Get a book by ID",
		Description: "Returns detailed information about a specific book.",
		Params:      []llmstxt.Param{bookID("retrieve")},
	}))

	r.Method(http.MethodPost, "/token", llmstxt.Describe(LoginHandler(tokens), llmstxt.Meta{
		Summary:     "Login",
		Description: "Authenticate and get an access token.",
		Params:      llmstxt.ParamsFrom(loginRequest{}),
	}))

	r.Group(func(r chi.Router) {
		r.Use(RequireToken(tokens), cache.PurgeOnWrite)

		r.Method(http.MethodPost, "/books", llmstxt.Describe(CreateBookHandler(store), llmstxt.Meta{
			Summary:     "Create a new book",
			Description: "Adds a new book to the database.",
			Params:      append(append([]llmstxt.Param{}, auth...), llmstxt.ParamsFrom(bookRequest{})...),
		}))

		r.Method(http.MethodPut, "/books/{bookId}", llmstxt.Describe(UpdateBookHandler(store), llmstxt.Meta{
			Summary:     "Update a book",
			Description: "Updates an existing book's information. Only the fields provided are changed.",
			Params:      append(append([]llmstxt.Param{bookID("update")}, auth...), llmstxt.ParamsFrom(bookUpdateRequest{})...),
		}))

		r.Method(http.MethodDelete, "/books/{bookId}", llmstxt.Describe(DeleteBookHandler(store), llmstxt.Meta{
			Summary:     "Delete a book",
			Description: "Removes a book from the database.",
			Params:      append([]llmstxt.Param{bookID("delete")}, auth...),
		}))
	})

	return r
}
