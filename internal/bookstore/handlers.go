package bookstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// maxBodySize bounds request bodies of the write endpoints.
const maxBodySize = 1 << 20

// listBooksQuery holds the query parameters of GET /books.
type listBooksQuery struct {
	Genre     *Genre   `query:"genre" desc:"Filter books by genre"`
	MinPrice  *float64 `query:"minPrice" desc:"Minimum price filter"`
	MaxPrice  *float64 `query:"maxPrice" desc:"Maximum price filter"`
	PageSize  int      `query:"pageSize" default:"20" desc:"Maximum number of books to return"`
	PageToken string   `query:"pageToken" default:"" desc:"Token returned by a previous call to fetch the next page"`
}

func parseListQuery(r *http.Request) (listBooksQuery, error) {
	var q listBooksQuery
	values := r.URL.Query()

	if v := values.Get("genre"); v != "" {
		g := Genre(v)
		if !g.Valid() {
			return q, fmt.Errorf("unknown genre %q", v)
		}
		q.Genre = &g
	}
	for _, bound := range []struct {
		name string
		dst  **float64
	}{{"minPrice", &q.MinPrice}, {"maxPrice", &q.MaxPrice}} {
		v := values.Get(bound.name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return q, fmt.Errorf("invalid %s %q", bound.name, v)
		}
		*bound.dst = &f
	}
	if ps := values.Get("pageSize"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 {
			q.PageSize = v
		}
	}
	q.PageToken = values.Get("pageToken")
	return q, nil
}

// bookRequest is the body of POST /books.
type bookRequest struct {
	Title         string  `json:"title" desc:"The title of the book"`
	Author        string  `json:"author" desc:"The author of the book"`
	Genre         Genre   `json:"genre" desc:"The genre of the book"`
	YearPublished int     `json:"yearPublished" desc:"The year the book was published"`
	Price         float64 `json:"price" desc:"The price of the book in USD"`
}

func (b bookRequest) validate() error {
	var missing []string
	if strings.TrimSpace(b.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(b.Author) == "" {
		missing = append(missing, "author")
	}
	if b.Genre == "" {
		missing = append(missing, "genre")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if !b.Genre.Valid() {
		return fmt.Errorf("unknown genre %q", b.Genre)
	}
	if b.Price < 0 {
		return errors.New("price must not be negative")
	}
	return nil
}

// bookUpdateRequest is the body of PUT /books/{bookId}. Omitted fields are
// left unchanged.
type bookUpdateRequest struct {
	Title         *string  `json:"title,omitempty" desc:"The title of the book"`
	Author        *string  `json:"author,omitempty" desc:"The author of the book"`
	Genre         *Genre   `json:"genre,omitempty" desc:"The genre of the book"`
	YearPublished *int     `json:"yearPublished,omitempty" desc:"The year the book was published"`
	Price         *float64 `json:"price,omitempty" desc:"The price of the book in USD"`
}

func (b bookUpdateRequest) toUpdate() (BookUpdate, error) {
	if b.Genre != nil && !b.Genre.Valid() {
		return BookUpdate{}, fmt.Errorf("unknown genre %q", *b.Genre)
	}
	if b.Price != nil && *b.Price < 0 {
		return BookUpdate{}, errors.New("price must not be negative")
	}
	return BookUpdate{
		Title:         b.Title,
		Author:        b.Author,
		Genre:         b.Genre,
		YearPublished: b.YearPublished,
		Price:         b.Price,
	}, nil
}

// loginRequest is the body of POST /token.
type loginRequest struct {
	Username string `json:"username" desc:"The user to log in as"`
	Password string `json:"password" desc:"The user's password"`
}

// authHeader documents the header required by write endpoints.
type authHeader struct {
	Authorization string `header:"Authorization" desc:"Bearer token returned by POST /token"`
}

// RootHandler handles GET /
func RootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the Bookstore API!"})
	}
}

// ListBooksHandler handles GET /books
// Query params: genre, minPrice, maxPrice, pageSize, pageToken
func ListBooksHandler(store *BookStore, cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := parseListQuery(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		filter := BookListFilter{MinPrice: q.MinPrice, MaxPrice: q.MaxPrice}
		if q.Genre != nil {
			filter.Genre = *q.Genre
		}

		records, nextToken, total, err := store.List(r.Context(), filter, cfg.pageSize(q.PageSize), q.PageToken)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to list books: %v", err))
			return
		}

		books := make([]bookResponse, len(records))
		for i := range records {
			books[i] = bookToResponse(&records[i])
		}

		writeJSON(w, http.StatusOK, listBooksResponse{
			Books:         books,
			NextPageToken: nextToken,
			TotalSize:     total,
		})
	}
}

// GetBookHandler handles GET /books/{bookId}
func GetBookHandler(store *BookStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookID := chi.URLParam(r, "bookId")
		book, err := store.Get(r.Context(), bookID)
		if err != nil {
			writeStoreError(w, bookID, err)
			return
		}
		writeJSON(w, http.StatusOK, bookToResponse(book))
	}
}

// CreateBookHandler handles POST /books
func CreateBookHandler(store *BookStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bookRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		book, err := store.Create(r.Context(), &Book{
			Title:         req.Title,
			Author:        req.Author,
			Genre:         req.Genre,
			YearPublished: req.YearPublished,
			Price:         req.Price,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create book: %v", err))
			return
		}
		writeJSON(w, http.StatusCreated, bookToResponse(book))
	}
}

// UpdateBookHandler handles PUT /books/{bookId}
func UpdateBookHandler(store *BookStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookID := chi.URLParam(r, "bookId")

		var req bookUpdateRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		update, err := req.toUpdate()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		book, err := store.Update(r.Context(), bookID, update)
		if err != nil {
			writeStoreError(w, bookID, err)
			return
		}
		writeJSON(w, http.StatusOK, bookToResponse(book))
	}
}

// DeleteBookHandler handles DELETE /books/{bookId}
func DeleteBookHandler(store *BookStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookID := chi.URLParam(r, "bookId")
		if err := store.Delete(r.Context(), bookID); err != nil {
			writeStoreError(w, bookID, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// LoginHandler handles POST /token. Any non-empty credentials are accepted.
func LoginHandler(tokens *TokenStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Username == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "username and password are required")
			return
		}
		writeJSON(w, http.StatusOK, tokenResponse{
			AccessToken: tokens.Issue(),
			TokenType:   "bearer",
		})
	}
}

type bookResponse struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	Genre         string  `json:"genre"`
	YearPublished int     `json:"yearPublished"`
	Price         float64 `json:"price"`
}

type listBooksResponse struct {
	Books         []bookResponse `json:"books"`
	NextPageToken string         `json:"nextPageToken,omitempty"`
	TotalSize     int            `json:"totalSize"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func bookToResponse(book *Book) bookResponse {
	return bookResponse{
		ID:            book.ID,
		Title:         book.Title,
		Author:        book.Author,
		Genre:         string(book.Genre),
		YearPublished: book.YearPublished,
		Price:         book.Price,
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %v", err)
	}
	return nil
}

func writeStoreError(w http.ResponseWriter, bookID string, err error) {
	if errors.Is(err, ErrBookNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("book %q not found", bookID))
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
