package bookstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrBookNotFound is returned when no book has the requested ID.
var ErrBookNotFound = errors.New("book not found")

// BookStore provides database operations for books.
type BookStore struct {
	db *gorm.DB
}

// NewBookStore creates a new BookStore.
func NewBookStore(db *gorm.DB) *BookStore {
	return &BookStore{db: db}
}

// AutoMigrate creates or updates the books table.
func (s *BookStore) AutoMigrate() error {
	return s.db.AutoMigrate(&Book{})
}

// BookListFilter defines filters for listing books. Nil bounds are ignored.
type BookListFilter struct {
	Genre    Genre
	MinPrice *float64
	MaxPrice *float64
}

// Create inserts a book, assigning a new ID when it has none.
func (s *BookStore) Create(ctx context.Context, book *Book) (*Book, error) {
	if book.ID == "" {
		book.ID = uuid.New().String()
	}
	if err := s.db.WithContext(ctx).Create(book).Error; err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	return book, nil
}

// Get retrieves a book by ID.
func (s *BookStore) Get(ctx context.Context, id string) (*Book, error) {
	var book Book
	if err := s.db.WithContext(ctx).First(&book, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return &book, nil
}

// Update applies the non-nil fields of update and returns the stored book.
func (s *BookStore) Update(ctx context.Context, id string, update BookUpdate) (*Book, error) {
	var book Book
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&book, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return err
		}
		columns := update.columns()
		if len(columns) == 0 {
			return nil
		}
		if err := tx.Model(&book).Updates(columns).Error; err != nil {
			return err
		}
		return tx.First(&book, "id = ?", id).Error
	})
	if errors.Is(err, ErrBookNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}
	return &book, nil
}

// Delete removes a book by ID.
func (s *BookStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Book{})
	if result.Error != nil {
		return fmt.Errorf("delete book: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}

// List returns a page of books matching filter, ordered by title. The page
// token is the offset of the first book on the page.
func (s *BookStore) List(ctx context.Context, filter BookListFilter, pageSize int, pageToken string) ([]Book, string, int, error) {
	if pageSize <= 0 {
		pageSize = 20
	}

	buildQuery := func(base *gorm.DB) *gorm.DB {
		q := base.WithContext(ctx).Model(&Book{})
		if filter.Genre != "" {
			q = q.Where("genre = ?", filter.Genre)
		}
		if filter.MinPrice != nil {
			q = q.Where("price >= ?", *filter.MinPrice)
		}
		if filter.MaxPrice != nil {
			q = q.Where("price <= ?", *filter.MaxPrice)
		}
		return q
	}

	var totalSize int64
	if err := buildQuery(s.db).Count(&totalSize).Error; err != nil {
		return nil, "", 0, fmt.Errorf("count books: %w", err)
	}

	offset := 0
	if pageToken != "" {
		n, err := strconv.Atoi(pageToken)
		if err != nil || n < 0 {
			return nil, "", 0, fmt.Errorf("invalid page token %q", pageToken)
		}
		offset = n
	}

	var records []Book
	err := buildQuery(s.db).
		Order("title ASC").Order("id ASC").
		Offset(offset).Limit(pageSize + 1).
		Find(&records).Error
	if err != nil {
		return nil, "", 0, fmt.Errorf("list books: %w", err)
	}

	var nextToken string
	if len(records) > pageSize {
		nextToken = strconv.Itoa(offset + pageSize)
		records = records[:pageSize]
	}
	return records, nextToken, int(totalSize), nil
}

// Seed inserts the starter catalog into an empty table and returns the
// number of books added.
func (s *BookStore) Seed(ctx context.Context) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Book{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("seed books: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	books := seedBooks()
	for i := range books {
		books[i].ID = uuid.New().String()
	}
	if err := s.db.WithContext(ctx).Create(&books).Error; err != nil {
		return 0, fmt.Errorf("seed books: %w", err)
	}
	return len(books), nil
}
