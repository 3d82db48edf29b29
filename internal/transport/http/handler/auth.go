package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ccarlsson/todo-app/internal/domain"
	"github.com/ccarlsson/todo-app/internal/metrics"
	"github.com/ccarlsson/todo-app/internal/usecase"
	"github.com/ccarlsson/todo-app/internal/validation"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Register(ctx context.Context, input usecase.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, input usecase.LoginInput) (*usecase.AuthToken, error)
}

type AuthHandler struct {
	authUsecase authUsecaser
	logger      *slog.Logger
}

func NewAuthHandler(authUsecase authUsecaser, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		logger:      logger.With("component", "auth_handler"),
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authUsecase.Register(c.Request.Context(), usecase.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		var verr *validation.Error
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Violations})
		case errors.Is(err, domain.ErrEmailInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": errEmailTaken})
		default:
			h.logger.Error("register user", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	metrics.UsersRegisteredTotal.Inc()
	c.JSON(http.StatusCreated, registerResponse{ID: user.ID, Email: user.Email.String()})
}

// POST /auth/login
// A missing account and a wrong password both answer 401.
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.authUsecase.Login(c.Request.Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		var verr *validation.Error
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Violations})
		case errors.Is(err, domain.ErrEmailInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrInvalidCredentials):
			metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
			c.JSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
		default:
			h.logger.Error("login user", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, loginResponse{Token: token.Token, ExpiresIn: token.ExpiresIn})
}
