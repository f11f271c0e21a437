package books

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/libroapp/libro/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB, func()) {
	dbPath := "./test_books_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Book{},
		&entities.BorrowedBook{},
		&entities.ReturnedBook{},
	)
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, db, cleanup
}

func seedBook(t *testing.T, repo *Repository, title, author, category string, copies int) *entities.Book {
	t.Helper()
	book := &entities.Book{
		Title:          title,
		Author:         author,
		Category:       category,
		NumberOfCopies: copies,
		Available:      true,
	}
	require.NoError(t, repo.CreateBook(book))
	return book
}

func TestRepository_SearchBooks(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	seedBook(t, repo, "Dune", "Frank Herbert", "Science Fiction", 2)
	seedBook(t, repo, "Emma", "Jane Austen", "Classics", 1)
	seedBook(t, repo, "Neuromancer", "William Gibson", "Science Fiction", 1)

	t.Run("matches title case-insensitively", func(t *testing.T) {
		results, err := repo.SearchBooks("dUnE")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Dune", results[0].Title)
	})

	t.Run("matches author substring", func(t *testing.T) {
		results, err := repo.SearchBooks("austen")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Emma", results[0].Title)
	})

	t.Run("matches category and orders by title", func(t *testing.T) {
		results, err := repo.SearchBooks("science")
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "Dune", results[0].Title)
		assert.Equal(t, "Neuromancer", results[1].Title)
	})

	t.Run("no matches", func(t *testing.T) {
		results, err := repo.SearchBooks("poetry")
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestRepository_GetAllBooks_OrderedByTitle(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	seedBook(t, repo, "Zen", "A", "General", 1)
	seedBook(t, repo, "Atlas", "B", "General", 1)

	books, err := repo.GetAllBooks()
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Atlas", books[0].Title)
	assert.Equal(t, "Zen", books[1].Title)
}

func TestRepository_DecrementCopies(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	book := seedBook(t, repo, "Dune", "Frank Herbert", "Science Fiction", 1)

	require.NoError(t, repo.DecrementCopies(nil, book.ID))

	got, err := repo.GetBookByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.NumberOfCopies)

	// Guard keeps the count from going negative
	err = repo.DecrementCopies(nil, book.ID)
	assert.ErrorIs(t, err, ErrNoCopiesLeft)

	got, err = repo.GetBookByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.NumberOfCopies)
}

func TestRepository_IncrementCopies(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	// Drain to zero after the insert; the column default would swallow
	// a zero passed at create time.
	book := seedBook(t, repo, "Dune", "Frank Herbert", "Science Fiction", 1)
	require.NoError(t, db.Model(book).Update("number_of_copies", 0).Error)

	require.NoError(t, repo.IncrementCopies(nil, book.ID))

	got, err := repo.GetBookByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.NumberOfCopies)
}

func TestRepository_DeleteBook_CascadesDependentRows(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	book := seedBook(t, repo, "Dune", "Frank Herbert", "Science Fiction", 1)
	require.NoError(t, db.Create(&entities.BorrowedBook{UserID: 1, BookID: book.ID}).Error)
	require.NoError(t, db.Create(&entities.ReturnedBook{UserID: 1, BookID: book.ID}).Error)

	require.NoError(t, repo.DeleteBook(book.ID))

	var loans, history int64
	db.Model(&entities.BorrowedBook{}).Where("book_id = ?", book.ID).Count(&loans)
	db.Model(&entities.ReturnedBook{}).Where("book_id = ?", book.ID).Count(&history)
	assert.Zero(t, loans)
	assert.Zero(t, history)

	_, err := repo.GetBookByID(book.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestBook_EffectivelyAvailable(t *testing.T) {
	assert.True(t, (&entities.Book{Available: true, NumberOfCopies: 1}).EffectivelyAvailable())
	assert.False(t, (&entities.Book{Available: true, NumberOfCopies: 0}).EffectivelyAvailable())
	assert.False(t, (&entities.Book{Available: false, NumberOfCopies: 3}).EffectivelyAvailable())
}
