package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/libroapp/libro/internal/entities"
	"github.com/libroapp/libro/internal/library"
)

// AdminBooksController handles catalog management.
type AdminBooksController struct {
	library *library.Service
}

// NewAdminBooksController creates an admin books controller.
func NewAdminBooksController(libraryService *library.Service) *AdminBooksController {
	return &AdminBooksController{library: libraryService}
}

// List returns the full catalog, including books flagged unavailable.
func (controller *AdminBooksController) List(c *gin.Context) {
	books, err := controller.library.ListBooks("")
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, books)
}

// Create adds a book. Expects a multipart form with the book fields
// and an optional cover image.
func (controller *AdminBooksController) Create(c *gin.Context) {
	title := c.PostForm("title")
	author := c.PostForm("author")
	if title == "" || author == "" {
		respondBadRequest(c, "title and author are required")
		return
	}

	book := &entities.Book{
		Title:       title,
		Author:      author,
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		Available:   true,
	}
	if yearStr := c.PostForm("published_year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			respondBadRequest(c, "invalid published_year")
			return
		}
		book.PublishedYear = year
	}
	if copiesStr := c.PostForm("number_of_copies"); copiesStr != "" {
		copies, err := strconv.Atoi(copiesStr)
		if err != nil || copies < 1 {
			respondBadRequest(c, "number_of_copies must be a positive integer")
			return
		}
		book.NumberOfCopies = copies
	}

	if err := controller.library.CreateBook(book); err != nil {
		respondInternalError(c, err, "create book")
		return
	}

	// The cover key embeds the book ID, so the upload happens after the row exists
	if fileHeader, err := c.FormFile("cover"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			respondBadRequest(c, "could not read cover upload")
			return
		}
		defer file.Close()

		key, err := controller.library.UploadCover(
			c.Request.Context(), book.ID,
			fileHeader.Filename, file, fileHeader.Header.Get("Content-Type"))
		if err != nil {
			respondInternalError(c, err, "upload cover")
			return
		}
		book.CoverImage = key
		if err := controller.library.UpdateBook(book); err != nil {
			respondInternalError(c, err, "save cover key")
			return
		}
	}

	respondCreated(c, book)
}

// updateBookRequest carries a partial update. String fields apply when
// non-empty; pointer fields apply when present, so zero values like
// an empty description or available=false can be set explicitly.
type updateBookRequest struct {
	Title          string  `json:"title"`
	Author         string  `json:"author"`
	Description    *string `json:"description"`
	PublishedYear  *int    `json:"published_year"`
	Category       string  `json:"category"`
	NumberOfCopies *int    `json:"number_of_copies"`
	Available      *bool   `json:"available"`
}

// Update applies a partial update to a book.
func (controller *AdminBooksController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	book, err := controller.library.GetBookRecord(id)
	if err != nil {
		if errors.Is(err, library.ErrBookNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}

	if req.Title != "" {
		book.Title = req.Title
	}
	if req.Author != "" {
		book.Author = req.Author
	}
	if req.Description != nil {
		book.Description = *req.Description
	}
	if req.PublishedYear != nil {
		book.PublishedYear = *req.PublishedYear
	}
	if req.Category != "" {
		book.Category = req.Category
	}
	if req.NumberOfCopies != nil {
		if *req.NumberOfCopies < 0 {
			respondBadRequest(c, "number_of_copies cannot be negative")
			return
		}
		book.NumberOfCopies = *req.NumberOfCopies
	}
	if req.Available != nil {
		book.Available = *req.Available
	}

	if err := controller.library.UpdateBook(book); err != nil {
		respondInternalError(c, err, "update book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// Delete removes a book, its loans and history, and its cover object.
func (controller *AdminBooksController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	err := controller.library.DeleteBook(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, library.ErrBookNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "delete book")
		return
	}
	respondSuccess(c, "book deleted")
}
