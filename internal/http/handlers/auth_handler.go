// Account HTTP handlers: registration, login, current-user lookup.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/applicationtrack/applicationtrack-backend/internal/services"
)

// RegisterRequest is the JSON payload for creating an account.
type RegisterRequest struct {
	Username string `json:"username" binding:"required" example:"jane"`
	Email    string `json:"email" binding:"required,email" example:"jane@example.com"`
	Password string `json:"password" binding:"required" example:"hunter2hunter2"`
}

// LoginRequest is the JSON payload for logging in.
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"jane"`
	Password string `json:"password" binding:"required" example:"hunter2hunter2"`
}

// LoginResponse carries the access token and the account it belongs to.
type LoginResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

// Register godoc
// @ID          register
// @Summary     Create an account
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RegisterRequest  true  "Account payload"
//
// @Success     201  {object} domain.User
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     409  {object} handlers.ErrorResponse "Username or email taken"
// @Router      /auth/register [post]
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "username, email, and password are required")
		return
	}

	u, err := h.authSvc.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		var ve *services.ValidationError
		switch {
		case errors.As(err, &ve):
			fail(c, http.StatusBadRequest, ErrCodeValidationFailed, ve.Error())
		case errors.Is(err, services.ErrWeakPassword):
			fail(c, http.StatusBadRequest, ErrCodeValidationFailed, err.Error())
		case errors.Is(err, services.ErrUsernameTaken), errors.Is(err, services.ErrEmailTaken):
			fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, u)
}

// Login godoc
// @ID          login
// @Summary     Log in and obtain an access token
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.LoginRequest  true  "Credentials"
//
// @Success     200  {object} handlers.LoginResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Invalid credentials"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "username and password are required")
		return
	}

	token, u, err := h.authSvc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, LoginResponse{Token: token, User: u})
}
