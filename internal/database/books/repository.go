// Package books provides database operations for the book catalog,
// including the copy-count bookkeeping used by the borrow workflow.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	results, err := repo.SearchBooks("dune")
package books

import (
	"errors"

	"gorm.io/gorm"

	"github.com/libroapp/libro/internal/entities"
)

// ErrNoCopiesLeft is returned by DecrementCopies when the guard predicate
// matched no row, i.e. the last copy was taken by someone else.
var ErrNoCopiesLeft = errors.New("no copies left")

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetBookByID retrieves a book by its ID.
func (r *Repository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetAllBooks retrieves the full catalog ordered by title.
func (r *Repository) GetAllBooks() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Order("title ASC").Find(&books).Error
	return books, err
}

// SearchBooks performs a case-insensitive substring match over title,
// author and category, ordered by title.
func (r *Repository) SearchBooks(query string) ([]entities.Book, error) {
	var books []entities.Book
	searchPattern := "%" + query + "%"
	err := r.db.
		Where("LOWER(title) LIKE LOWER(?) OR LOWER(author) LIKE LOWER(?) OR LOWER(category) LIKE LOWER(?)",
			searchPattern, searchPattern, searchPattern).
		Order("title ASC").
		Find(&books).Error
	return books, err
}

// CreateBook persists a new book.
func (r *Repository) CreateBook(book *entities.Book) error {
	return r.db.Create(book).Error
}

// UpdateBook saves the full book record.
func (r *Repository) UpdateBook(book *entities.Book) error {
	return r.db.Save(book).Error
}

// DeleteBook removes a book and its dependent loan and history rows.
func (r *Repository) DeleteBook(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", id).Delete(&entities.BorrowedBook{}).Error; err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", id).Delete(&entities.ReturnedBook{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Book{}, id).Error
	})
}

// DecrementCopies takes one copy off the shelf. The predicate keeps the
// count from ever going negative: when two borrowers race for the last
// copy only one UPDATE matches, and the loser gets ErrNoCopiesLeft.
// Pass the transaction handle when calling inside a borrow transaction.
func (r *Repository) DecrementCopies(tx *gorm.DB, id uint) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.Model(&entities.Book{}).
		Where("id = ? AND number_of_copies > 0", id).
		Update("number_of_copies", gorm.Expr("number_of_copies - 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoCopiesLeft
	}
	return nil
}

// IncrementCopies puts a copy back on the shelf.
func (r *Repository) IncrementCopies(tx *gorm.DB, id uint) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Model(&entities.Book{}).
		Where("id = ?", id).
		Update("number_of_copies", gorm.Expr("number_of_copies + 1")).Error
}

// CountBooks returns the total number of catalog entries.
func (r *Repository) CountBooks() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Count(&count).Error
	return count, err
}

// GetRecentBooks returns the most recently added books.
func (r *Repository) GetRecentBooks(limit int) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Order("created_at DESC").Limit(limit).Find(&books).Error
	return books, err
}
