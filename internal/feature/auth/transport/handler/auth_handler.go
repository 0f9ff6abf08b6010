// Package handler provides the JSON API handlers for the auth feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"gym_backend/internal/feature/auth/domain/entity"
	"gym_backend/internal/feature/auth/transport/http/dto"
	"gym_backend/internal/feature/auth/usecase"
	jwtmw "gym_backend/internal/platform/jwt"
)

// AuthUsecase defines the auth operations the API exposes.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type AuthUsecase interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*entity.User, error)
	Login(ctx context.Context, email, password string, meta usecase.ClientMeta) (*usecase.LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	LogoutAll(ctx context.Context, userID uint) error
	ActiveSessions(ctx context.Context, userID uint) ([]*entity.Session, error)
	CurrentUser(ctx context.Context, userID uint) (*entity.User, error)
}

// AuthHandler handles HTTP requests for authentication operations.
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func internalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
}

// Signup handles user registration.
// 400 on validation errors, 409 for a taken email, 201 with the user on success.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("signup validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request"})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), usecase.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	switch {
	case err == nil:
	case errors.Is(err, usecase.ErrEmailAlreadyExists):
		slog.Warn("signup failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "email already exists"})
		return
	case errors.Is(err, usecase.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "password is too short"})
		return
	case errors.Is(err, usecase.ErrPasswordTooLong):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "password is too long"})
		return
	default:
		slog.Error("signup failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		internalError(c)
		return
	}

	slog.Info("user signup successful", "user_id", user.ID, "email", req.Email, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.NewUserResponse(user))
}

// Login authenticates the user and returns a session token.
// Unknown emails and wrong passwords share one 401 response.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request"})
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, usecase.ClientMeta{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			slog.Warn("login failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid email or password"})
			return
		}
		slog.Error("login failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		internalError(c)
		return
	}

	slog.Info("user login successful", "user_id", res.User.ID, "email", req.Email, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.LoginResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt.UTC(),
		User:      dto.NewUserResponse(res.User),
	})
}

// Logout revokes the session the request was authenticated with.
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID, ok := jwtmw.SessionID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
		return
	}

	if err := h.auth.Logout(c.Request.Context(), sessionID); err != nil && !errors.Is(err, usecase.ErrSessionNotFound) {
		slog.Error("logout failed", "error", err, "session_id", sessionID)
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "ok"})
}

// LogoutAll revokes every session of the caller.
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
		return
	}

	if err := h.auth.LogoutAll(c.Request.Context(), userID); err != nil {
		slog.Error("logout all failed", "error", err, "user_id", userID)
		internalError(c)
		return
	}
	slog.Info("all sessions revoked", "user_id", userID)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "ok"})
}

// Me returns the signed-in user.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
		return
	}

	user, err := h.auth.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
			return
		}
		slog.Error("current user lookup failed", "error", err, "user_id", userID)
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// Sessions lists the caller's active sessions.
func (h *AuthHandler) Sessions(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
		return
	}
	sessionID, _ := jwtmw.SessionID(c)

	sessions, err := h.auth.ActiveSessions(c.Request.Context(), userID)
	if err != nil {
		slog.Error("session listing failed", "error", err, "user_id", userID)
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, dto.NewSessionResponses(sessions, sessionID))
}
