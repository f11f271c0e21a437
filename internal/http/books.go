package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/libroapp/libro/internal/auth"
	"github.com/libroapp/libro/internal/entities"
	"github.com/libroapp/libro/internal/library"
)

const dateLayout = "2006-01-02"

// BooksController serves the catalog and the lending endpoints.
type BooksController struct {
	library *library.Service
}

// NewBooksController creates a books controller.
func NewBooksController(libraryService *library.Service) *BooksController {
	return &BooksController{library: libraryService}
}

// loanResponse flattens a loan with its book details for API clients.
type loanResponse struct {
	ID         uint      `json:"id"`
	BookID     uint      `json:"book_id"`
	UserID     uint      `json:"user_id"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	CoverImage string    `json:"cover_image,omitempty"`
	BorrowedAt time.Time `json:"borrowed_at"`
	DueDate    time.Time `json:"due_date"`
	Price      float64   `json:"price"`
}

func toLoanResponse(loan *entities.BorrowedBook) loanResponse {
	return loanResponse{
		ID:         loan.ID,
		BookID:     loan.BookID,
		UserID:     loan.UserID,
		Title:      loan.Book.Title,
		Author:     loan.Book.Author,
		CoverImage: loan.Book.CoverImage,
		BorrowedAt: loan.BorrowedAt,
		DueDate:    loan.DueDate,
		Price:      loan.Price,
	}
}

// List returns the catalog, filtered by the q query parameter when set.
func (controller *BooksController) List(c *gin.Context) {
	listed, err := controller.library.ListBooks(c.Query("q"))
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": listed, "count": len(listed)})
}

// Get returns a single catalog entry.
func (controller *BooksController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := controller.library.GetBook(id)
	if err != nil {
		if errors.Is(err, library.ErrBookNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// Borrow opens a loan for the authenticated user. Expects a multipart
// form with start_date and end_date (YYYY-MM-DD) and an optional
// id_card image.
func (controller *BooksController) Borrow(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := auth.GetUserID(c)

	startDate, err := time.Parse(dateLayout, c.PostForm("start_date"))
	if err != nil {
		respondBadRequest(c, "start_date must be in YYYY-MM-DD format")
		return
	}
	endDate, err := time.Parse(dateLayout, c.PostForm("end_date"))
	if err != nil {
		respondBadRequest(c, "end_date must be in YYYY-MM-DD format")
		return
	}

	var idCardKey string
	if fileHeader, err := c.FormFile("id_card"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			respondBadRequest(c, "could not read id_card upload")
			return
		}
		defer file.Close()

		idCardKey, err = controller.library.UploadIDCard(
			c.Request.Context(), userID, bookID,
			fileHeader.Filename, file, fileHeader.Header.Get("Content-Type"))
		if err != nil {
			respondInternalError(c, err, "upload id card")
			return
		}
	}

	loan, err := controller.library.BorrowBook(userID, bookID, startDate, endDate, idCardKey)
	if err != nil {
		switch {
		case errors.Is(err, library.ErrInvalidDates):
			respondBadRequest(c, err.Error())
		case errors.Is(err, library.ErrBookNotFound):
			respondNotFound(c, "book")
		case errors.Is(err, library.ErrBookUnavailable):
			respondConflict(c, "book is not available")
		case errors.Is(err, library.ErrAlreadyBorrowed):
			respondConflict(c, "book already borrowed")
		default:
			respondInternalError(c, err, "borrow book")
		}
		return
	}

	book, getErr := controller.library.GetBook(bookID)
	if getErr == nil {
		loan.Book = *book
	}
	respondCreated(c, toLoanResponse(loan))
}

// Return closes the authenticated user's loan of the book.
func (controller *BooksController) Return(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	returned, err := controller.library.ReturnBook(auth.GetUserID(c), bookID)
	if err != nil {
		switch {
		case errors.Is(err, library.ErrNotBorrowed):
			respondBadRequest(c, "book is not borrowed")
		case errors.Is(err, library.ErrAlreadyReturned):
			respondConflict(c, "book has already been returned")
		default:
			respondInternalError(c, err, "return book")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "book returned",
		"returned_at": returned.ReturnedAt,
		"price":       returned.Price,
	})
}

// Borrowed lists the authenticated user's open loans.
func (controller *BooksController) Borrowed(c *gin.Context) {
	userLoans, err := controller.library.ListUserLoans(auth.GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list borrowed books")
		return
	}

	response := make([]loanResponse, 0, len(userLoans))
	for i := range userLoans {
		response = append(response, toLoanResponse(&userLoans[i]))
	}
	c.JSON(http.StatusOK, gin.H{"borrowed_books": response, "count": len(response)})
}
