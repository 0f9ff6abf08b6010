// Package handler serves the server-rendered login, registration and dashboard pages.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gym_backend/internal/feature/auth/domain/entity"
	"gym_backend/internal/feature/auth/usecase"
	"gym_backend/internal/feature/portal/domain"
	"gym_backend/internal/feature/portal/transport/http/form"
	"gym_backend/internal/feature/portal/transport/web"
	jwtmw "gym_backend/internal/platform/jwt"
)

// Notice texts shown to visitors.
const (
	NoticeInvalidCredentials = "Invalid email or password"
	NoticeEmailTaken         = "An account with this email already exists"
	NoticeRegistered         = "Registration successful. Please sign in."
	NoticeUnexpected         = "Something went wrong. Please try again."
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "gym_session"

// AuthUsecase is the subset of auth operations the pages need.
type AuthUsecase interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*entity.User, error)
	Login(ctx context.Context, email, password string, meta usecase.ClientMeta) (*usecase.LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	CurrentUser(ctx context.Context, userID uint) (*entity.User, error)
}

// PageHandler renders the portal pages. It expects jwtmw.Identify to run first.
type PageHandler struct {
	auth         AuthUsecase
	secureCookie bool
}

// NewPageHandler creates a PageHandler. secureCookie sets the Secure flag on the session cookie.
func NewPageHandler(auth AuthUsecase, secureCookie bool) *PageHandler {
	return &PageHandler{auth: auth, secureCookie: secureCookie}
}

// viewer resolves the visitor from the claims stored by the identify middleware.
func (h *PageHandler) viewer(c *gin.Context) (domain.Viewer, error) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		return domain.Anonymous{}, nil
	}
	user, err := h.auth.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			return domain.Anonymous{}, nil
		}
		return nil, err
	}
	sessionID, _ := jwtmw.SessionID(c)
	return domain.Authenticated{User: user, SessionID: sessionID}, nil
}

func (h *PageHandler) renderError(c *gin.Context, err error) {
	slog.Error("page request failed", "error", err, "path", c.Request.URL.Path, "remote_addr", c.ClientIP())
	c.HTML(http.StatusInternalServerError, "error.html", web.Page{
		Title:  "Error",
		Notice: &web.Notice{Kind: web.NoticeError, Text: NoticeUnexpected},
	})
}

// Dashboard serves GET /. Anonymous visitors are sent to the login page.
func (h *PageHandler) Dashboard(c *gin.Context) {
	v, err := h.viewer(c)
	if err != nil {
		h.renderError(c, err)
		return
	}

	switch v := v.(type) {
	case domain.Authenticated:
		d := domain.NewDashboard(v)
		c.HTML(http.StatusOK, "dashboard.html", web.Page{Title: "Dashboard", Dashboard: &d})
	default:
		c.Redirect(http.StatusFound, "/login")
	}
}

// redirectIfSignedIn sends authenticated visitors to the dashboard and reports whether it did.
func (h *PageHandler) redirectIfSignedIn(c *gin.Context) bool {
	v, err := h.viewer(c)
	if err != nil {
		h.renderError(c, err)
		return true
	}
	if _, ok := v.(domain.Authenticated); ok {
		c.Redirect(http.StatusFound, "/")
		return true
	}
	return false
}

// LoginPage serves GET /login.
func (h *PageHandler) LoginPage(c *gin.Context) {
	if h.redirectIfSignedIn(c) {
		return
	}

	page := web.Page{Title: "Sign in"}
	if c.Query("registered") == "1" {
		page.Notice = &web.Notice{Kind: web.NoticeSuccess, Text: NoticeRegistered}
	}
	c.HTML(http.StatusOK, "login.html", page)
}

// Login serves POST /login.
func (h *PageHandler) Login(c *gin.Context) {
	var f form.Login
	if err := c.ShouldBind(&f); err != nil {
		c.HTML(http.StatusBadRequest, "login.html", web.Page{
			Title:  "Sign in",
			Values: map[string]string{"email": f.Email},
			Errors: fieldErrors(err),
		})
		return
	}

	res, err := h.auth.Login(c.Request.Context(), f.Email, f.Password, usecase.ClientMeta{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		if !errors.Is(err, usecase.ErrInvalidCredentials) {
			h.renderError(c, err)
			return
		}
		slog.Warn("login failed", "error", err, "email", f.Email, "remote_addr", c.ClientIP())
		c.HTML(http.StatusUnauthorized, "login.html", web.Page{
			Title:  "Sign in",
			Notice: &web.Notice{Kind: web.NoticeError, Text: NoticeInvalidCredentials},
			Values: map[string]string{"email": f.Email},
		})
		return
	}

	slog.Info("user login successful", "user_id", res.User.ID, "email", f.Email, "remote_addr", c.ClientIP())
	h.setSessionCookie(c, res.Token, res.ExpiresAt)
	c.Redirect(http.StatusSeeOther, "/")
}

// RegisterPage serves GET /register.
func (h *PageHandler) RegisterPage(c *gin.Context) {
	if h.redirectIfSignedIn(c) {
		return
	}
	c.HTML(http.StatusOK, "register.html", web.Page{Title: "Register"})
}

// Register serves POST /register.
func (h *PageHandler) Register(c *gin.Context) {
	var f form.Register
	bindErr := c.ShouldBind(&f)
	values := map[string]string{"email": f.Email, "firstName": f.FirstName, "lastName": f.LastName}
	if bindErr != nil {
		c.HTML(http.StatusBadRequest, "register.html", web.Page{
			Title:  "Register",
			Values: values,
			Errors: fieldErrors(bindErr),
		})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), usecase.RegisterInput{
		Email:     f.Email,
		Password:  f.Password,
		FirstName: f.FirstName,
		LastName:  f.LastName,
	})
	switch {
	case err == nil:
	case errors.Is(err, usecase.ErrEmailAlreadyExists):
		slog.Warn("registration failed", "error", err, "email", f.Email, "remote_addr", c.ClientIP())
		c.HTML(http.StatusConflict, "register.html", web.Page{
			Title:  "Register",
			Notice: &web.Notice{Kind: web.NoticeError, Text: NoticeEmailTaken},
			Values: values,
		})
		return
	case errors.Is(err, usecase.ErrWeakPassword):
		c.HTML(http.StatusBadRequest, "register.html", web.Page{
			Title:  "Register",
			Values: values,
			Errors: map[string]string{"password": "Password is too short"},
		})
		return
	case errors.Is(err, usecase.ErrPasswordTooLong):
		c.HTML(http.StatusBadRequest, "register.html", web.Page{
			Title:  "Register",
			Values: values,
			Errors: map[string]string{"password": "Password is too long"},
		})
		return
	default:
		h.renderError(c, err)
		return
	}

	slog.Info("user registration successful", "user_id", user.ID, "email", f.Email, "remote_addr", c.ClientIP())
	c.Redirect(http.StatusSeeOther, "/login?registered=1")
}

// Logout serves POST /logout.
func (h *PageHandler) Logout(c *gin.Context) {
	if sessionID, ok := jwtmw.SessionID(c); ok {
		if err := h.auth.Logout(c.Request.Context(), sessionID); err != nil && !errors.Is(err, usecase.ErrSessionNotFound) {
			h.renderError(c, err)
			return
		}
	}
	h.clearSessionCookie(c)
	c.Redirect(http.StatusSeeOther, "/login")
}

func (h *PageHandler) setSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, maxAge, "/", "", h.secureCookie, true)
}

func (h *PageHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", h.secureCookie, true)
}

// fieldErrors falls back to a generic message when binding failed for a non-validation reason.
func fieldErrors(err error) map[string]string {
	if errs := form.FieldErrors(err); errs != nil {
		return errs
	}
	return map[string]string{"email": "Invalid form submission"}
}
