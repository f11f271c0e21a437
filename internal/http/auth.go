package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/libroapp/libro/internal/auth"
)

// AuthController handles registration, login and email verification.
type AuthController struct {
	service *auth.Service
}

// NewAuthController creates an authentication controller.
func NewAuthController(service *auth.Service) *AuthController {
	return &AuthController{service: service}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyEmailRequest struct {
	Code string `json:"code"`
}

type resendVerificationRequest struct {
	Email string `json:"email"`
}

// Register creates an account and sends the verification code.
func (controller *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	result, err := controller.service.Register(req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			respondConflict(c, "an account with this email already exists")
		case errors.Is(err, auth.ErrNameRequired),
			errors.Is(err, auth.ErrEmailRequired),
			errors.Is(err, auth.ErrPasswordRequired),
			errors.Is(err, auth.ErrEmailInvalid),
			errors.Is(err, auth.ErrPasswordTooShort),
			errors.Is(err, auth.ErrPasswordTooLong):
			respondBadRequest(c, err.Error())
		default:
			respondInternalError(c, err, "register")
		}
		return
	}

	message := "registration successful, please verify your email"
	if !result.EmailSent {
		message = "registration successful, but the verification email could not be sent"
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":    message,
		"user":       result.User,
		"email_sent": result.EmailSent,
	})
}

// Login exchanges credentials for a bearer token.
func (controller *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	token, user, err := controller.service.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "invalid email or password")
		} else {
			respondInternalError(c, err, "login")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// VerifyEmail confirms an account with its emailed code.
func (controller *AuthController) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.Code == "" {
		respondBadRequest(c, "code is required")
		return
	}

	err := controller.service.VerifyEmail(req.Code)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrAlreadyVerified):
			respondConflict(c, "email already verified")
		case errors.Is(err, auth.ErrInvalidCode):
			respondBadRequest(c, "invalid verification code")
		case errors.Is(err, auth.ErrCodeUsed):
			respondConflict(c, "verification code already used")
		case errors.Is(err, auth.ErrCodeExpired):
			respondBadRequest(c, "verification code expired")
		default:
			respondInternalError(c, err, "verify email")
		}
		return
	}
	respondSuccess(c, "email verified")
}

// ResendVerification issues and emails a fresh verification code.
func (controller *AuthController) ResendVerification(c *gin.Context) {
	var req resendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.Email == "" {
		respondBadRequest(c, "email is required")
		return
	}

	err := controller.service.ResendVerification(req.Email)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			respondNotFound(c, "user")
		case errors.Is(err, auth.ErrAlreadyVerified):
			respondConflict(c, "email already verified")
		default:
			respondInternalError(c, err, "resend verification")
		}
		return
	}
	respondSuccess(c, "verification code sent")
}

// Profile returns the authenticated user's account.
func (controller *AuthController) Profile(c *gin.Context) {
	user, err := controller.service.GetProfile(auth.GetUserID(c))
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			respondNotFound(c, "user")
			return
		}
		respondInternalError(c, err, "profile")
		return
	}
	c.JSON(http.StatusOK, user)
}

// Logout acknowledges a logout. Tokens are stateless, so the client
// discards the token; nothing is revoked server side.
func (controller *AuthController) Logout(c *gin.Context) {
	respondSuccess(c, "logged out")
}
