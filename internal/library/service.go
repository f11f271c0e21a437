// Package library implements the lending workflow: browsing the
// catalog, borrowing and returning copies, and the admin-side book
// management that backs it.
package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/libroapp/libro/internal/config"
	"github.com/libroapp/libro/internal/database/books"
	"github.com/libroapp/libro/internal/database/loans"
	"github.com/libroapp/libro/internal/entities"
	"github.com/libroapp/libro/internal/storage"
)

// PricePerDay is the lending fee charged per day of the loan.
const PricePerDay = 2

var (
	ErrBookNotFound    = errors.New("book not found")
	ErrBookUnavailable = errors.New("book is not available")
	ErrAlreadyBorrowed = errors.New("book already borrowed by this user")
	ErrNotBorrowed     = errors.New("book is not borrowed by this user")
	ErrAlreadyReturned = errors.New("book has already been returned")
	ErrLoanNotFound    = errors.New("loan not found")
	ErrInvalidDates    = errors.New("end date must be after start date")
)

// Service coordinates catalog and loan operations.
type Service struct {
	db      *gorm.DB
	books   *books.Repository
	loans   *loans.Repository
	storage storage.Client
	buckets config.Storage
}

// NewService creates a library service.
func NewService(db *gorm.DB, bookRepo *books.Repository, loanRepo *loans.Repository, storageClient storage.Client, storageCfg config.Storage) *Service {
	return &Service{
		db:      db,
		books:   bookRepo,
		loans:   loanRepo,
		storage: storageClient,
		buckets: storageCfg,
	}
}

// LoanPrice computes the fee for a loan spanning the given dates:
// the whole number of days between them times the per-day rate.
func LoanPrice(startDate, endDate time.Time) float64 {
	days := int(endDate.Sub(startDate).Hours() / 24)
	return float64(days * PricePerDay)
}

// ListBooks returns the catalog, optionally filtered by a search query
// matched against title, author and category. Cover image keys are
// resolved to public URLs.
func (s *Service) ListBooks(query string) ([]entities.Book, error) {
	var (
		result []entities.Book
		err    error
	)
	if strings.TrimSpace(query) == "" {
		result, err = s.books.GetAllBooks()
	} else {
		result, err = s.books.SearchBooks(query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	for i := range result {
		s.resolveCover(&result[i])
	}
	return result, nil
}

// GetBook returns a single catalog entry with its cover URL resolved.
func (s *Service) GetBook(id uint) (*entities.Book, error) {
	book, err := s.books.GetBookByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	s.resolveCover(book)
	return book, nil
}

// GetBookRecord returns a catalog row as stored, with the cover image
// left as an object key. Used by update flows that write the row back.
func (s *Service) GetBookRecord(id uint) (*entities.Book, error) {
	book, err := s.books.GetBookByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return book, nil
}

// BorrowBook opens a loan for the user. The loan row and the copy
// decrement happen in one transaction, so two users racing for the
// last copy cannot both succeed.
func (s *Service) BorrowBook(userID, bookID uint, startDate, endDate time.Time, idCardKey string) (*entities.BorrowedBook, error) {
	if !endDate.After(startDate) {
		return nil, ErrInvalidDates
	}

	book, err := s.books.GetBookByID(bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	if !book.EffectivelyAvailable() {
		return nil, ErrBookUnavailable
	}

	hasLoan, err := s.loans.HasActiveLoan(bookID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check active loan: %w", err)
	}
	if hasLoan {
		return nil, ErrAlreadyBorrowed
	}

	loan := &entities.BorrowedBook{
		UserID:      userID,
		BookID:      bookID,
		BorrowedAt:  startDate,
		DueDate:     endDate,
		Price:       LoanPrice(startDate, endDate),
		IDCardImage: idCardKey,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.loans.CreateLoan(tx, loan); err != nil {
			return fmt.Errorf("failed to create loan: %w", err)
		}
		return s.books.DecrementCopies(tx, bookID)
	})
	if err != nil {
		if errors.Is(err, books.ErrNoCopiesLeft) {
			return nil, ErrBookUnavailable
		}
		return nil, err
	}
	return loan, nil
}

// ReturnBook closes the user's loan: a history row is written, the
// loan row removed and the copy put back, all in one transaction.
// Distinguishes a book already returned from one never borrowed.
func (s *Service) ReturnBook(userID, bookID uint) (*entities.ReturnedBook, error) {
	loan, err := s.loans.GetActiveLoan(bookID, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to look up loan: %w", err)
		}
		returned, histErr := s.loans.HasReturnHistory(bookID, userID)
		if histErr != nil {
			return nil, fmt.Errorf("failed to check return history: %w", histErr)
		}
		if returned {
			return nil, ErrAlreadyReturned
		}
		return nil, ErrNotBorrowed
	}
	return s.closeLoan(loan)
}

// ForceReturn closes a loan by its ID regardless of who holds it.
// Used by admins to resolve overdue loans.
func (s *Service) ForceReturn(loanID uint) (*entities.ReturnedBook, error) {
	loan, err := s.loans.GetLoanByID(loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	return s.closeLoan(loan)
}

func (s *Service) closeLoan(loan *entities.BorrowedBook) (*entities.ReturnedBook, error) {
	returned := &entities.ReturnedBook{
		UserID:      loan.UserID,
		BookID:      loan.BookID,
		BorrowedAt:  loan.BorrowedAt,
		DueDate:     loan.DueDate,
		ReturnedAt:  time.Now(),
		Price:       loan.Price,
		IDCardImage: loan.IDCardImage,
	}

	// The delete goes first: its affected-row count is the guard that
	// makes the return exactly-once. A request that lost the race finds
	// the loan row gone and writes neither the snapshot nor the
	// increment.
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.loans.DeleteLoan(tx, loan.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAlreadyReturned
			}
			return fmt.Errorf("failed to close loan: %w", err)
		}
		if err := s.loans.CreateReturned(tx, returned); err != nil {
			return fmt.Errorf("failed to record return: %w", err)
		}
		return s.books.IncrementCopies(tx, loan.BookID)
	})
	if err != nil {
		return nil, err
	}
	return returned, nil
}

// ListUserLoans returns the user's open loans with book details
// preloaded and cover URLs resolved.
func (s *Service) ListUserLoans(userID uint) ([]entities.BorrowedBook, error) {
	result, err := s.loans.GetLoansByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	for i := range result {
		s.resolveCover(&result[i].Book)
	}
	return result, nil
}

// ListAllLoans returns every open loan, newest first. Admin only.
func (s *Service) ListAllLoans() ([]entities.BorrowedBook, error) {
	result, err := s.loans.GetAllLoans()
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	for i := range result {
		s.resolveCover(&result[i].Book)
	}
	return result, nil
}

// CreateBook adds a catalog entry.
func (s *Service) CreateBook(book *entities.Book) error {
	if book.Category == "" {
		book.Category = "General"
	}
	if book.NumberOfCopies <= 0 {
		book.NumberOfCopies = 1
	}
	return s.books.CreateBook(book)
}

// UpdateBook persists changes to a catalog entry.
func (s *Service) UpdateBook(book *entities.Book) error {
	return s.books.UpdateBook(book)
}

// DeleteBook removes a catalog entry along with its loans, history
// and any stored cover image.
func (s *Service) DeleteBook(ctx context.Context, id uint) error {
	book, err := s.books.GetBookByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		return err
	}

	if err := s.books.DeleteBook(id); err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}

	if book.CoverImage != "" {
		if err := s.storage.Delete(ctx, s.buckets.CoversBucket, book.CoverImage); err != nil {
			// The catalog row is already gone; an orphaned object is
			// not worth failing the request over.
			log.Printf("Failed to delete cover object %s: %v", book.CoverImage, err)
		}
	}
	return nil
}

// UploadCover stores a cover image and returns its object key.
func (s *Service) UploadCover(ctx context.Context, bookID uint, filename string, content io.Reader, contentType string) (string, error) {
	key := fmt.Sprintf("%d_%s%s", bookID, uuid.NewString(), strings.ToLower(filepath.Ext(filename)))
	if err := s.storage.Upload(ctx, s.buckets.CoversBucket, key, content, contentType); err != nil {
		return "", fmt.Errorf("failed to upload cover: %w", err)
	}
	return key, nil
}

// UploadIDCard stores a borrower's ID card scan and returns its object
// key. Cards are namespaced per user.
func (s *Service) UploadIDCard(ctx context.Context, userID, bookID uint, filename string, content io.Reader, contentType string) (string, error) {
	key := fmt.Sprintf("%d/%d_%s%s", userID, bookID, uuid.NewString(), strings.ToLower(filepath.Ext(filename)))
	if err := s.storage.Upload(ctx, s.buckets.IDCardsBucket, key, content, contentType); err != nil {
		return "", fmt.Errorf("failed to upload ID card: %w", err)
	}
	return key, nil
}

// CoverURL resolves a stored cover key to its public URL. Returns the
// empty string for books without a cover.
func (s *Service) CoverURL(key string) string {
	if key == "" {
		return ""
	}
	return s.storage.PublicURL(s.buckets.CoversBucket, key)
}

// IDCardURL resolves a stored ID-card key to its public URL. Returns
// the empty string for loans without a card on file.
func (s *Service) IDCardURL(key string) string {
	if key == "" {
		return ""
	}
	return s.storage.PublicURL(s.buckets.IDCardsBucket, key)
}

func (s *Service) resolveCover(book *entities.Book) {
	if book.CoverImage != "" {
		book.CoverImage = s.storage.PublicURL(s.buckets.CoversBucket, book.CoverImage)
	}
}
