// Package loans provides database operations for open loans and the
// append-only return history.
//
// # Usage
//
//	repo := loans.NewRepository(db)
//	loan, err := repo.GetActiveLoan(bookID, userID)
package loans

import (
	"time"

	"gorm.io/gorm"

	"github.com/libroapp/libro/internal/entities"
)

// Repository handles borrowed and returned book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new loans repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetLoanByID retrieves an open loan with its user and book.
func (r *Repository) GetLoanByID(id uint) (*entities.BorrowedBook, error) {
	var loan entities.BorrowedBook
	err := r.db.Preload("User").Preload("Book").First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// GetActiveLoan retrieves the open loan for a (book, user) pair.
func (r *Repository) GetActiveLoan(bookID, userID uint) (*entities.BorrowedBook, error) {
	var loan entities.BorrowedBook
	err := r.db.Preload("User").Preload("Book").
		Where("book_id = ? AND user_id = ?", bookID, userID).
		First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// HasActiveLoan reports whether the user currently holds this book.
// Returned loans move to returned_books, so this never blocks
// re-borrowing after a return.
func (r *Repository) HasActiveLoan(bookID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.BorrowedBook{}).
		Where("book_id = ? AND user_id = ?", bookID, userID).
		Count(&count).Error
	return count > 0, err
}

// HasReturnHistory reports whether the user has ever returned this book.
// Used to tell "already returned" apart from "never borrowed".
func (r *Repository) HasReturnHistory(bookID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.ReturnedBook{}).
		Where("book_id = ? AND user_id = ?", bookID, userID).
		Count(&count).Error
	return count > 0, err
}

// GetLoansByUser retrieves a user's open loans, most recent first.
func (r *Repository) GetLoansByUser(userID uint) ([]entities.BorrowedBook, error) {
	var loans []entities.BorrowedBook
	err := r.db.Preload("Book").
		Where("user_id = ?", userID).
		Order("borrowed_at DESC").
		Find(&loans).Error
	return loans, err
}

// GetAllLoans retrieves every open loan with user and book detail,
// newest first.
func (r *Repository) GetAllLoans() ([]entities.BorrowedBook, error) {
	var loans []entities.BorrowedBook
	err := r.db.Preload("User").Preload("Book").
		Order("created_at DESC").
		Find(&loans).Error
	return loans, err
}

// CreateLoan inserts an open loan row. Pass the transaction handle when
// called inside the borrow transaction.
func (r *Repository) CreateLoan(tx *gorm.DB, loan *entities.BorrowedBook) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(loan).Error
}

// DeleteLoan removes an open loan row. Reports gorm.ErrRecordNotFound
// when the row was already gone, so a return that lost the race can
// tell instead of blindly succeeding.
func (r *Repository) DeleteLoan(tx *gorm.DB, id uint) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.Delete(&entities.BorrowedBook{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateReturned appends a history record.
func (r *Repository) CreateReturned(tx *gorm.DB, returned *entities.ReturnedBook) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(returned).Error
}

// CountActiveLoans returns the number of open loans.
func (r *Repository) CountActiveLoans() (int64, error) {
	var count int64
	err := r.db.Model(&entities.BorrowedBook{}).Count(&count).Error
	return count, err
}

// CountDueBefore returns the number of open loans due before the cutoff.
func (r *Repository) CountDueBefore(cutoff time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&entities.BorrowedBook{}).
		Where("due_date <= ?", cutoff).
		Count(&count).Error
	return count, err
}

// GetRecentLoans returns the most recent open loans with user and book
// detail.
func (r *Repository) GetRecentLoans(limit int) ([]entities.BorrowedBook, error) {
	var loans []entities.BorrowedBook
	err := r.db.Preload("User").Preload("Book").
		Order("borrowed_at DESC").
		Limit(limit).
		Find(&loans).Error
	return loans, err
}
