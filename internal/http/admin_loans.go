package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/libroapp/libro/internal/entities"
	"github.com/libroapp/libro/internal/library"
)

// AdminLoansController handles loan administration.
type AdminLoansController struct {
	library *library.Service
}

// NewAdminLoansController creates an admin loans controller.
func NewAdminLoansController(libraryService *library.Service) *AdminLoansController {
	return &AdminLoansController{library: libraryService}
}

// adminLoanResponse adds borrower details to the loan view.
type adminLoanResponse struct {
	loanResponse
	UserName    string `json:"user_name"`
	UserEmail   string `json:"user_email"`
	IDCardImage string `json:"id_card_image,omitempty"`
	Overdue     bool   `json:"overdue"`
}

func toAdminLoanResponse(loan *entities.BorrowedBook) adminLoanResponse {
	return adminLoanResponse{
		loanResponse: toLoanResponse(loan),
		UserName:     loan.User.Name,
		UserEmail:    loan.User.Email,
		Overdue:      time.Now().After(loan.DueDate),
	}
}

// List returns every open loan.
func (controller *AdminLoansController) List(c *gin.Context) {
	allLoans, err := controller.library.ListAllLoans()
	if err != nil {
		respondInternalError(c, err, "list loans")
		return
	}

	response := make([]adminLoanResponse, 0, len(allLoans))
	for i := range allLoans {
		resp := toAdminLoanResponse(&allLoans[i])
		resp.IDCardImage = controller.library.IDCardURL(allLoans[i].IDCardImage)
		response = append(response, resp)
	}
	c.JSON(http.StatusOK, gin.H{"borrows": response, "count": len(response)})
}

// ForceReturn closes a loan on behalf of its holder.
func (controller *AdminLoansController) ForceReturn(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	returned, err := controller.library.ForceReturn(id)
	if err != nil {
		if errors.Is(err, library.ErrLoanNotFound) {
			respondNotFound(c, "loan")
			return
		}
		respondInternalError(c, err, "force return")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "book returned",
		"returned_at": returned.ReturnedAt,
		"user_id":     returned.UserID,
		"book_id":     returned.BookID,
	})
}
