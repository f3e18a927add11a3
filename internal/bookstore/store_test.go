package bookstore

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Each connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, NewBookStore(db).AutoMigrate())
	return db
}

func newTestBook(title string, genre Genre, price float64) *Book {
	return &Book{
		Title:         title,
		Author:        "Test Author",
		Genre:         genre,
		YearPublished: 2000,
		Price:         price,
	}
}

func ptr[T any](v T) *T { return &v }

func TestCreateAssignsID(t *testing.T) {
	store := NewBookStore(setupTestDB(t))
	ctx := context.Background()

	created, err := store.Create(ctx, newTestBook("Dune", GenreSciFi, 9.99))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, GenreSciFi, got.Genre)
}

func TestGetNotFound(t *testing.T) {
	store := NewBookStore(setupTestDB(t))

	_, err := store.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestUpdatePartial(t *testing.T) {
	store := NewBookStore(setupTestDB(t))
	ctx := context.Background()

	created, err := store.Create(ctx, newTestBook("Dune", GenreSciFi, 9.99))
	require.NoError(t, err)

	updated, err := store.Update(ctx, created.ID, BookUpdate{Price: ptr(12.5)})
	require.NoError(t, err)
	assert.Equal(t, 12.5, updated.Price)
	assert.Equal(t, "Dune", updated.Title)

	// An empty update is a no-op.
	same, err := store.Update(ctx, created.ID, BookUpdate{})
	require.NoError(t, err)
	assert.Equal(t, 12.5, same.Price)
}

func TestUpdateNotFound(t *testing.T) {
	store := NewBookStore(setupTestDB(t))

	_, err := store.Update(context.Background(), "nonexistent", BookUpdate{Title: ptr("x")})
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestDelete(t *testing.T) {
	store := NewBookStore(setupTestDB(t))
	ctx := context.Background()

	created, err := store.Create(ctx, newTestBook("Dune", GenreSciFi, 9.99))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, created.ID))
	_, err = store.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrBookNotFound)

	assert.ErrorIs(t, store.Delete(ctx, created.ID), ErrBookNotFound)
}

func TestListFilters(t *testing.T) {
	store := NewBookStore(setupTestDB(t))
	ctx := context.Background()

	for _, b := range []*Book{
		newTestBook("A", GenreFiction, 5),
		newTestBook("B", GenreFiction, 15),
		newTestBook("C", GenreMystery, 25),
	} {
		_, err := store.Create(ctx, b)
		require.NoError(t, err)
	}

	tests := []struct {
		name   string
		filter BookListFilter
		want   []string
	}{
		{"no filter", BookListFilter{}, []string{"A", "B", "C"}},
		{"genre", BookListFilter{Genre: GenreFiction}, []string{"A", "B"}},
		{"min price", BookListFilter{MinPrice: ptr(10.0)}, []string{"B", "C"}},
		{"max price", BookListFilter{MaxPrice: ptr(15.0)}, []string{"A", "B"}},
		{"price range", BookListFilter{MinPrice: ptr(10.0), MaxPrice: ptr(20.0)}, []string{"B"}},
		{"genre and price", BookListFilter{Genre: GenreMystery, MaxPrice: ptr(20.0)}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			books, next, total, err := store.List(ctx, tt.filter, 10, "")
			require.NoError(t, err)
			assert.Empty(t, next)
			assert.Equal(t, len(tt.want), total)

			var titles []string
			for _, b := range books {
				titles = append(titles, b.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestListPagination(t *testing.T) {
	store := NewBookStore(setupTestDB(t))
	ctx := context.Background()

	for _, title := range []string{"A", "B", "C", "D", "E"} {
		_, err := store.Create(ctx, newTestBook(title, GenreFiction, 10))
		require.NoError(t, err)
	}

	page1, next, total, err := store.List(ctx, BookListFilter{}, 2, "")
	require.NoError(t, err)
	assert.Len(t, page1, 2)
	assert.Equal(t, 5, total)
	assert.Equal(t, "A", page1[0].Title)
	require.NotEmpty(t, next)

	page2, next, _, err := store.List(ctx, BookListFilter{}, 2, next)
	require.NoError(t, err)
	assert.Equal(t, "C", page2[0].Title)
	require.NotEmpty(t, next)

	page3, next, _, err := store.List(ctx, BookListFilter{}, 2, next)
	require.NoError(t, err)
	assert.Len(t, page3, 1)
	assert.Equal(t, "E", page3[0].Title)
	assert.Empty(t, next)

	_, _, _, err = store.List(ctx, BookListFilter{}, 2, "not-a-token")
	assert.Error(t, err)
}

func TestSeed(t *testing.T) {
	store := NewBookStore(setupTestDB(t))
	ctx := context.Background()

	n, err := store.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// A populated table is left alone.
	n, err = store.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	books, _, total, err := store.List(ctx, BookListFilter{Genre: GenreSciFi}, 10, "")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "1984", books[0].Title)
}

func TestGenreValid(t *testing.T) {
	for _, g := range Genres {
		assert.True(t, g.Valid(), g)
	}
	assert.False(t, Genre("poetry").Valid())
	assert.False(t, Genre("").Valid())
}
