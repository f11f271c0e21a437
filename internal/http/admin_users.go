package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/libroapp/libro/internal/auth"
	"github.com/libroapp/libro/internal/database/users"
	"github.com/libroapp/libro/internal/entities"
)

// AdminUsersController handles user administration.
type AdminUsersController struct {
	users      *users.Repository
	bcryptCost int
}

// NewAdminUsersController creates an admin users controller.
func NewAdminUsersController(userRepo *users.Repository, bcryptCost int) *AdminUsersController {
	return &AdminUsersController{users: userRepo, bcryptCost: bcryptCost}
}

// List returns all registered users, newest first.
func (controller *AdminUsersController) List(c *gin.Context) {
	allUsers, err := controller.users.GetAllUsers()
	if err != nil {
		respondInternalError(c, err, "list users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": allUsers, "count": len(allUsers)})
}

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Create adds a user account directly. Accounts created here skip the
// verification email and start out verified.
func (controller *AdminUsersController) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondBadRequest(c, "name, email and password are required")
		return
	}

	role := entities.UserRole(req.Role)
	if req.Role == "" {
		role = entities.RoleUser
	}
	if !role.Valid() {
		respondBadRequest(c, "role must be 'user' or 'admin'")
		return
	}

	if _, err := controller.users.GetUserByEmail(req.Email); err == nil {
		respondConflict(c, "an account with this email already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		respondInternalError(c, err, "check existing user")
		return
	}

	passwordHash, err := auth.HashPassword(req.Password, controller.bcryptCost)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) || errors.Is(err, auth.ErrPasswordTooLong) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, err, "hash password")
		return
	}

	user := &entities.User{
		Name:          req.Name,
		Email:         req.Email,
		PasswordHash:  passwordHash,
		Role:          role,
		EmailVerified: true,
	}
	if err := controller.users.CreateUser(user); err != nil {
		respondInternalError(c, err, "create user")
		return
	}
	c.JSON(http.StatusCreated, user)
}

type updateUserRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Role          string `json:"role"`
	EmailVerified *bool  `json:"email_verified"`
}

// Update applies a partial update. String fields are only touched when
// non-empty; email_verified only when present. A new password is
// re-hashed before it is stored.
func (controller *AdminUsersController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	user, err := controller.users.GetUserByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "user")
			return
		}
		respondInternalError(c, err, "get user")
		return
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" && req.Email != user.Email {
		if _, err := controller.users.GetUserByEmail(req.Email); err == nil {
			respondConflict(c, "an account with this email already exists")
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			respondInternalError(c, err, "check existing user")
			return
		}
		user.Email = req.Email
	}
	if req.Role != "" {
		role := entities.UserRole(req.Role)
		if !role.Valid() {
			respondBadRequest(c, "role must be 'user' or 'admin'")
			return
		}
		user.Role = role
	}
	if req.Password != "" {
		passwordHash, err := auth.HashPassword(req.Password, controller.bcryptCost)
		if err != nil {
			if errors.Is(err, auth.ErrPasswordTooShort) || errors.Is(err, auth.ErrPasswordTooLong) {
				respondBadRequest(c, err.Error())
				return
			}
			respondInternalError(c, err, "hash password")
			return
		}
		user.PasswordHash = passwordHash
	}
	if req.EmailVerified != nil {
		user.EmailVerified = *req.EmailVerified
	}

	if err := controller.users.UpdateUser(user); err != nil {
		respondInternalError(c, err, "update user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// Get returns a single user account.
func (controller *AdminUsersController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := controller.users.GetUserByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "user")
			return
		}
		respondInternalError(c, err, "get user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// Delete removes a user along with their loans and history. Admins
// cannot delete their own account.
func (controller *AdminUsersController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if id == auth.GetUserID(c) {
		respondBadRequest(c, "cannot delete your own account")
		return
	}

	if _, err := controller.users.GetUserByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "user")
			return
		}
		respondInternalError(c, err, "get user")
		return
	}

	if err := controller.users.DeleteUser(id); err != nil {
		respondInternalError(c, err, "delete user")
		return
	}
	respondSuccess(c, "user deleted")
}
