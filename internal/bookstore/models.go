// Package bookstore is a small Bookstore API used to demonstrate the llms.txt
// generator. Books live in any database gorm supports.
package bookstore

import (
	"time"
)

// Genre is the genre of a book.
type Genre string

const (
	GenreFiction    Genre = "fiction"
	GenreNonFiction Genre = "non-fiction"
	GenreSciFi      Genre = "sci-fi"
	GenreMystery    Genre = "mystery"
	GenreBiography  Genre = "biography"
)

// Genres lists the known genres.
var Genres = []Genre{GenreFiction, GenreNonFiction, GenreSciFi, GenreMystery, GenreBiography}

// Valid reports whether g is a known genre.
func (g Genre) Valid() bool {
	for _, known := range Genres {
		if g == known {
			return true
		}
	}
	return false
}

// Book is the GORM model for a book.
type Book struct {
	ID            string    `gorm:"primaryKey;column:id;type:varchar(36)"`
	Title         string    `gorm:"column:title;not null"`
	Author        string    `gorm:"column:author;not null"`
	Genre         Genre     `gorm:"column:genre;index:idx_book_genre;not null"`
	YearPublished int       `gorm:"column:year_published"`
	Price         float64   `gorm:"column:price;index:idx_book_price"`
	CreatedAt     time.Time `gorm:"column:created_at;not null"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

// TableName returns the GORM table name.
func (Book) TableName() string { return "books" }

// BookUpdate holds the fields of a partial update. Nil fields are left
// unchanged.
type BookUpdate struct {
	Title         *string
	Author        *string
	Genre         *Genre
	YearPublished *int
	Price         *float64
}

func (u BookUpdate) columns() map[string]any {
	updates := map[string]any{}
	if u.Title != nil {
		updates["title"] = *u.Title
	}
	if u.Author != nil {
		updates["author"] = *u.Author
	}
	if u.Genre != nil {
		updates["genre"] = *u.Genre
	}
	if u.YearPublished != nil {
		updates["year_published"] = *u.YearPublished
	}
	if u.Price != nil {
		updates["price"] = *u.Price
	}
	return updates
}

// seedBooks is the catalog a fresh database starts with.
func seedBooks() []Book {
	return []Book{
		{Title: "To Kill a Mockingbird", Author: "Harper Lee", Genre: GenreFiction, YearPublished: 1960, Price: 14.99},
		{Title: "1984", Author: "George Orwell", Genre: GenreSciFi, YearPublished: 1949, Price: 11.99},
		{Title: "The Autobiography of Benjamin Franklin", Author: "Benjamin Franklin", Genre: GenreBiography, YearPublished: 1793, Price: 17.50},
	}
}
