package service

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/tracker/internal/auth"
	"github.com/mmynk/tracker/internal/middleware"
	"github.com/mmynk/tracker/internal/storage"
)

// AuthService serves registration, token issue and refresh.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	users         storage.UserStore
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, users storage.UserStore, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		users:         users,
		logger:        logger,
	}
}

type registerRequest struct {
	Username string `json:"username" binding:"required,max=150,username"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// userResponse is the public view of a user account.
type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Register creates a new user account.
func (s *AuthService) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	s.logger.Info("Register request", "username", req.Username)

	user, err := s.authenticator.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameExists):
			s.logger.Warn("Registration failed", "username", req.Username, "error", err)
			c.JSON(http.StatusBadRequest, FieldErrors{"username": {"A user with that username already exists."}})
		case errors.Is(err, auth.ErrWeakPassword):
			s.logger.Warn("Registration failed", "username", req.Username, "error", err)
			c.JSON(http.StatusBadRequest, FieldErrors{"password": {"Ensure this field has at least 8 characters."}})
		case errors.Is(err, auth.ErrPasswordTooLong):
			s.logger.Warn("Registration failed", "username", req.Username, "error", err)
			c.JSON(http.StatusBadRequest, FieldErrors{"password": {"Ensure this field has no more than 72 bytes."}})
		default:
			s.logger.Error("Registration failed", "username", req.Username, "error", err)
			fail(c, err)
		}
		return
	}

	s.logger.Info("User registered successfully", "user_id", user.ID, "username", user.Username)
	c.JSON(http.StatusCreated, userResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
}

// Login authenticates a user and returns an access and refresh token.
func (s *AuthService) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	s.logger.Info("Login request", "username", req.Username)

	user, err := s.authenticator.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.logger.Warn("Login failed", "username", req.Username, "error", err)
		middleware.Unauthorized(c, "No active account found with the given credentials")
		return
	}

	pair, err := s.jwtManager.GeneratePair(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		fail(c, err)
		return
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID)
	c.JSON(http.StatusOK, pair)
}

// Refresh exchanges a refresh token for a new access token.
func (s *AuthService) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}

	access, err := s.jwtManager.Refresh(req.Refresh)
	if err != nil {
		s.logger.Warn("Token refresh failed", "error", err)
		middleware.Unauthorized(c, "Token is invalid or expired")
		return
	}

	c.JSON(http.StatusOK, gin.H{"access": access})
}

// Me returns the authenticated user's account.
func (s *AuthService) Me(c *gin.Context) {
	userID, ok := owner(c)
	if !ok {
		return
	}

	user, err := s.users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		// A valid token for a deleted account.
		if errors.Is(err, storage.ErrNotFound) {
			middleware.Unauthorized(c, "User not found")
			return
		}
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, userResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
}
